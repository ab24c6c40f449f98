package main

import (
	"fmt"
	"os"

	"github.com/de-tools/alert-atlas/pkg/runtime/terminal"
	"github.com/de-tools/alert-atlas/pkg/services/aggregate"
	"github.com/de-tools/alert-atlas/pkg/services/config"
	"github.com/de-tools/alert-atlas/pkg/services/filter"
	"github.com/de-tools/alert-atlas/pkg/services/registry"
	"github.com/de-tools/alert-atlas/pkg/store/duckdb"
	alertstore "github.com/de-tools/alert-atlas/pkg/store/duckdb/alert"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	db, err := duckdb.NewDB(duckdb.Settings{DbPath: cfg.DbPath})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	store, err := alertstore.NewStore(db)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	var regions registry.Registry
	if cfg.RegionsPath != "" {
		regions, err = registry.NewRegistry(cfg.RegionsPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	} else {
		regions = registry.NewDefaultRegistry()
	}

	cli := terminal.NewCLI(terminal.Options{
		Resolver: filter.NewResolver(regions),
		Store:    store,
		Engine:   aggregate.NewEngine(),
		Output:   os.Stdout,
	})

	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
