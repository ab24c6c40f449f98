package terminal

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/de-tools/alert-atlas/pkg/runtime/terminal/commands"
	"github.com/de-tools/alert-atlas/pkg/runtime/terminal/export"
	"github.com/de-tools/alert-atlas/pkg/services/aggregate"
	"github.com/de-tools/alert-atlas/pkg/services/filter"
	alertstore "github.com/de-tools/alert-atlas/pkg/store/duckdb/alert"
)

// CLI represents the command-line interface
type CLI struct {
	reporter *export.Reporter
	rootCmd  *cobra.Command
}

// Options contain configuration for the CLI
type Options struct {
	Resolver *filter.Resolver
	Store    alertstore.Store
	Engine   *aggregate.Engine
	Output   io.Writer
}

// NewCLI creates a new CLI instance
func NewCLI(opts Options) *CLI {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	cli := &CLI{
		reporter: export.NewReporter(opts.Output),
	}

	cli.rootCmd = cli.newRootCmd(opts)
	return cli
}

func (cli *CLI) Execute() error {
	return cli.rootCmd.Execute()
}

func (cli *CLI) newRootCmd(opts Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "alert-atlas",
		Short: "Alert analytics tool",
	}

	cmd.AddCommand(commands.NewImportCmd(opts.Store))
	cmd.AddCommand(commands.NewReportCmd(opts.Resolver, opts.Store, opts.Engine, cli.reporter))

	return cmd
}
