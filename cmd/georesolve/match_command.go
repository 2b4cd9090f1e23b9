package main

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"georesolve/internal/match"
	"georesolve/internal/store"
)

func newMatchCommand(cctx *commandContext) *cobra.Command {
	var outputPath string
	var failedPath string
	var reportPath string
	var workers int

	cmd := &cobra.Command{
		Use:   "match <input.csv>",
		Short: "Resolve (country, state, city) rows against the built database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cctx.ensureConfig()
			if err != nil {
				return err
			}
			if workers <= 0 {
				workers = cfg.Matching.Workers
			}

			inputPath := args[0]
			if outputPath == "" {
				outputPath = derivePath(inputPath, "_matched.csv")
			}
			if failedPath == "" {
				failedPath = derivePath(inputPath, "_failed.csv")
			}
			if reportPath == "" {
				reportPath = derivePath(inputPath, "_report.json")
			}

			ctx := cmd.Context()
			logger := cctx.loggerValue()

			input, err := match.LoadCSV(inputPath, cfg.ColumnMapping())
			if err != nil {
				return err
			}

			s, err := store.Open(ctx, cfg.DatabasePath())
			if err != nil {
				return fmt.Errorf("open database (run build first?): %w", err)
			}
			defer func() { _ = s.Close() }()

			matcher := match.New(s, logger)
			batch, err := matcher.BatchMatch(ctx, input.Rows, workers)
			if err != nil {
				return err
			}

			if err := match.WriteResults(outputPath, input, batch.Results); err != nil {
				return err
			}
			failedCount, err := match.WriteFailed(failedPath, batch.Results)
			if err != nil {
				return err
			}
			report := match.BuildReport(batch.RunID, batch.Stats, batch.Elapsed)
			if err := match.WriteReport(reportPath, report); err != nil {
				return err
			}

			printMatchSummary(cmd, batch, report, outputPath, failedPath, reportPath, failedCount)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Matched output CSV path (default <input>_matched.csv)")
	cmd.Flags().StringVar(&failedPath, "failed", "", "Failed rows CSV path (default <input>_failed.csv)")
	cmd.Flags().StringVar(&reportPath, "report", "", "JSON report path (default <input>_report.json)")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "Worker pool size (default from config)")
	return cmd
}

func printMatchSummary(cmd *cobra.Command, batch *match.BatchResult, report match.Report, outputPath, failedPath, reportPath string, failedCount int) {
	stats := batch.Stats
	rows := [][]string{
		{"run id", batch.RunID},
		{"records", strconv.Itoa(stats.TotalRecords)},
		{"matched", fmt.Sprintf("%d (%.2f%%)", stats.SuccessfulMatches, report.Summary.SuccessRate)},
		{"state failures", strconv.Itoa(stats.StateFailures)},
		{"city failures", strconv.Itoa(stats.CityFailures)},
		{"queries", strconv.Itoa(stats.QueryCount)},
		{"elapsed", batch.Elapsed.Round(time.Millisecond).String()},
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Run", "Value"}, rows))

	fmt.Fprintf(cmd.OutOrStdout(), "Results written to %s\n", outputPath)
	if failedCount > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "Failed rows written to %s\n", failedPath)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s\n", reportPath)
	for _, rec := range report.Recommendations {
		fmt.Fprintf(cmd.OutOrStdout(), "  - %s\n", rec)
	}
}

// derivePath builds a sibling path from the input file, e.g. foo.csv to
// foo_matched.csv.
func derivePath(inputPath, suffix string) string {
	base := strings.TrimSuffix(inputPath, filepath.Ext(inputPath))
	return base + suffix
}
