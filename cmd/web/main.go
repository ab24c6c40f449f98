package main

import (
	"fmt"
	"net"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/de-tools/alert-atlas/pkg/cache"
	"github.com/de-tools/alert-atlas/pkg/metrics"
	"github.com/de-tools/alert-atlas/pkg/models/domain"
	"github.com/de-tools/alert-atlas/pkg/server"
	"github.com/de-tools/alert-atlas/pkg/services/analytics"
	"github.com/de-tools/alert-atlas/pkg/services/aggregate"
	"github.com/de-tools/alert-atlas/pkg/services/config"
	"github.com/de-tools/alert-atlas/pkg/services/filter"
	"github.com/de-tools/alert-atlas/pkg/services/forecast"
	"github.com/de-tools/alert-atlas/pkg/services/registry"
	"github.com/de-tools/alert-atlas/pkg/services/scoring"
	"github.com/de-tools/alert-atlas/pkg/store/duckdb"
	alertstore "github.com/de-tools/alert-atlas/pkg/store/duckdb/alert"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "web",
		Short: "Start the Alert Atlas analytics API server",
		RunE:  runServer,
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Error loading .env file: %v\n", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	var regions registry.Registry
	if cfg.RegionsPath != "" {
		regions, err = registry.NewRegistry(cfg.RegionsPath)
		if err != nil {
			return fmt.Errorf("failed to load regions profile %s: %w", cfg.RegionsPath, err)
		}
	} else {
		regions = registry.NewDefaultRegistry()
	}

	db, err := duckdb.NewDB(duckdb.Settings{DbPath: cfg.DbPath})
	if err != nil {
		return fmt.Errorf("failed to open DuckDB instance: %w", err)
	}

	store, err := alertstore.NewStore(db)
	if err != nil {
		return fmt.Errorf("failed to create alert store: %w", err)
	}

	m := metrics.New()
	results := cache.New(cfg.CacheTTL, m)
	results.StartSweeper(cfg.CacheTTL)
	defer results.Stop()

	controller := analytics.NewController(
		filter.NewResolver(regions),
		store,
		aggregate.NewEngine(),
		forecast.NewEngine(cfg.MinHistory),
		results,
		m,
		analytics.Settings{
			DefaultGranularity: domain.Granularity(cfg.DefaultGranularity),
			DefaultHorizon:     cfg.DefaultHorizon,
			FetchTimeout:       cfg.FetchTimeout,
			MigrationThresholds: scoring.Thresholds{
				Watch: cfg.MigrationWatchThreshold,
				Surge: cfg.MigrationSurgeThreshold,
			},
		},
	)

	stats, err := store.Stats(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to read dataset stats: %w", err)
	}
	logger.Info().
		Int64("records", stats.RecordsCount).
		Str("db_path", cfg.DbPath).
		Msg("alert dataset loaded")

	addr := net.JoinHostPort(cfg.ServerHost, cfg.ServerPort)
	api := server.NewWebAPI(logger, server.Config{
		Addr: addr,
		Dependencies: server.Dependencies{
			Analytics:      controller,
			MetricsHandler: m.Handler(),
			Observer:       m,
		},
	})

	return api.Start()
}
