package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/de-tools/alert-atlas/pkg/adapters"
	"github.com/de-tools/alert-atlas/pkg/models/domain"
	"github.com/de-tools/alert-atlas/pkg/runtime/terminal/export"
	"github.com/de-tools/alert-atlas/pkg/services/aggregate"
	"github.com/de-tools/alert-atlas/pkg/services/filter"
	alertstore "github.com/de-tools/alert-atlas/pkg/store/duckdb/alert"
)

type reportFlags struct {
	start       string
	end         string
	regions     string
	categories  string
	granularity string
	format      string
}

// NewReportCmd computes one view's aggregate offline and renders it to
// the terminal as a table or CSV.
func NewReportCmd(
	resolver *filter.Resolver,
	store alertstore.Store,
	engine *aggregate.Engine,
	reporter *export.Reporter,
) *cobra.Command {
	flags := &reportFlags{}

	cmd := &cobra.Command{
		Use:   "report <view>",
		Short: "Compute a dashboard view aggregate and print it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			f, err := resolver.Resolve(ctx, filter.RawParams{
				Start:      flags.start,
				End:        flags.end,
				Regions:    flags.regions,
				Categories: flags.categories,
			})
			if err != nil {
				return err
			}
			granularity, err := resolver.ResolveGranularity(flags.granularity, domain.GranularityMonth)
			if err != nil {
				return err
			}

			records, err := store.Fetch(ctx, f)
			if err != nil {
				return err
			}

			result, err := engine.Aggregate(domain.View(args[0]), granularity, f, adapters.MapStoreAlertsToDomain(records))
			if err != nil {
				return err
			}

			switch flags.format {
			case "table":
				return reporter.Handle(result)
			case "csv":
				return reporter.HandleCSV(result)
			default:
				return fmt.Errorf("unsupported format %q (want table or csv)", flags.format)
			}
		},
	}

	cmd.Flags().StringVar(&flags.start, "start", "", "Range start (YYYY-MM-DD)")
	cmd.Flags().StringVar(&flags.end, "end", "", "Range end (YYYY-MM-DD)")
	cmd.Flags().StringVar(&flags.regions, "regions", "", "Comma-separated region codes")
	cmd.Flags().StringVar(&flags.categories, "categories", "", "Comma-separated categories")
	cmd.Flags().StringVar(&flags.granularity, "granularity", "month", "Time bucket width: day, week or month")
	cmd.Flags().StringVar(&flags.format, "format", "table", "Output format: table or csv")

	return cmd
}
