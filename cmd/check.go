package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"calendar-sync/feature/recordstore/sqlstore"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	checkFix    bool
	checkOutput string
)

// checkCmd verifies SQL dataset tables against their registered schema.
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify dataset tables of the SQL record store",
	Long: `Compares every dataset registered in the SQL record store with its table
and reports missing columns. Only available with store.driver=sql.

Examples:
  check
  check --fix
  check --output report.json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		start := time.Now()

		d, err := setup(ctx)
		if err != nil {
			return err
		}
		defer d.logger.Sync()

		s, ok := d.store.(*sqlstore.Store)
		if !ok {
			return fmt.Errorf("check requires store.driver=sql, got %q", d.cfg.Store.Driver)
		}

		report, err := s.CheckIntegrity(ctx, checkFix)
		if err != nil {
			return err
		}

		for _, ds := range report.Datasets {
			d.logger.Info("Dataset checked",
				zap.String("title", ds.Title),
				zap.String("table", ds.Table),
				zap.String("status", ds.Status),
				zap.Strings("missing_columns", ds.MissingColumns),
				zap.String("error", ds.Error),
			)
		}
		d.logger.Info("Integrity check finished",
			zap.Int("datasets", len(report.Datasets)),
			zap.Bool("matched", report.Matched),
			zap.Duration("duration", time.Since(start)),
		)

		if checkOutput != "" {
			data, err := json.MarshalIndent(report, "", "  ")
			if err != nil {
				return err
			}
			if err := os.WriteFile(checkOutput, data, 0o644); err != nil {
				return fmt.Errorf("failed to write report: %w", err)
			}
			d.logger.Info("Detailed report saved", zap.String("path", checkOutput))
		}

		if !report.Matched {
			return fmt.Errorf("%d dataset(s) do not match their schema", countMismatched(report))
		}
		return nil
	},
}

func init() {
	checkCmd.Flags().BoolVar(&checkFix, "fix", false, "Add missing columns")
	checkCmd.Flags().StringVar(&checkOutput, "output", "", "Write the JSON report to this file")

	RootCmd.AddCommand(checkCmd)
}

func countMismatched(report *sqlstore.IntegrityReport) int {
	n := 0
	for _, ds := range report.Datasets {
		if ds.Status == "error" {
			n++
		}
	}
	return n
}
