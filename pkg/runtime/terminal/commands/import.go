package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	alertstore "github.com/de-tools/alert-atlas/pkg/store/duckdb/alert"
)

// NewImportCmd bulk-loads a dataset CSV into the alert store.
func NewImportCmd(store alertstore.Store) *cobra.Command {
	return &cobra.Command{
		Use:   "import <csv-path>",
		Short: "Load alert records from a CSV file into the local store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			n, err := store.ImportCSV(ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to import %s: %w", args[0], err)
			}

			stats, err := store.Stats(ctx)
			if err != nil {
				return fmt.Errorf("failed to read dataset stats: %w", err)
			}

			cmd.Printf("imported %d records; dataset now holds %d\n", n, stats.RecordsCount)
			if stats.FirstRecordTime != nil && stats.LastRecordTime != nil {
				cmd.Printf("covered range: %s to %s\n",
					stats.FirstRecordTime.Format("2006-01-02"),
					stats.LastRecordTime.Format("2006-01-02"))
			}
			return nil
		},
	}
}
