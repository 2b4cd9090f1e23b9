package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"georesolve/internal/dupes"
	"georesolve/internal/store"
)

func newDupesCommand(cctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "dupes",
		Short: "Report aliases shared by more than one state or city",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cctx.ensureConfig()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			s, err := store.Open(ctx, cfg.DatabasePath())
			if err != nil {
				return fmt.Errorf("open database (run build first?): %w", err)
			}
			defer func() { _ = s.Close() }()

			report, err := dupes.Check(ctx, s, cctx.loggerValue())
			if err != nil {
				return err
			}
			if report.TotalGroups() == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No shared aliases found.")
				return nil
			}

			rows := make([][]string, 0, report.TotalGroups())
			for _, g := range report.StateGroups {
				rows = append(rows, []string{"state", g.CountryCode, g.Name, strconv.FormatInt(g.Entities, 10), g.GeonameIDs})
			}
			for _, g := range report.CityGroups {
				rows = append(rows, []string{"city", g.CountryCode, g.Name, strconv.FormatInt(g.Entities, 10), g.GeonameIDs})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Table", "Country", "Alias", "Entities", "Geoname IDs"}, rows))
			fmt.Fprintf(cmd.OutOrStdout(), "%d shared aliases (%d state, %d city)\n",
				report.TotalGroups(), len(report.StateGroups), len(report.CityGroups))
			return nil
		},
	}
}
