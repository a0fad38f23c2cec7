package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"mapwatch/internal/history"
	"mapwatch/internal/match"
	"mapwatch/internal/period"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var unitFlag string
	var categoryFlag string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Find the most recent archived file for a unit and category",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			resolver, unitRoster, err := ctx.newResolver()
			if err != nil {
				return err
			}

			unit, ok := unitRoster.UnitForAlias(unitFlag)
			if !ok {
				return fmt.Errorf("unknown unit %q", unitFlag)
			}

			var categories []string
			for _, cat := range resolver.Categories() {
				categories = append(categories, cat.Name)
			}
			if categoryFlag != "" {
				categories = []string{categoryFlag}
			}

			search := history.New(cfg.Paths.WorkspaceDir, resolver,
				cfg.Matching.LookbackDays, cfg.Matching.SearchWorkers, nil)

			out := cmd.OutOrStdout()
			upTo := period.Day(time.Now())
			for _, name := range categories {
				cat, found := categoryByName(resolver.Categories(), name)
				if !found {
					return fmt.Errorf("unknown category %q", name)
				}
				result, err := search.FindLastSatisfying(cmd.Context(), unit, cat, upTo)
				if err != nil {
					return err
				}
				if result.Strategy == match.StrategyNone {
					fmt.Fprintf(out, "%s / %s: nothing in the last %d days\n",
						unit.Name, cat.Name, cfg.Matching.LookbackDays)
					continue
				}
				fmt.Fprintf(out, "%s / %s: %s (effective %s, %s match)\n",
					unit.Name, cat.Name, result.Path,
					period.FormatDay(result.EffectiveDate), result.Strategy)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&unitFlag, "unit", "u", "", "Unit name or alias")
	cmd.Flags().StringVarP(&categoryFlag, "category", "t", "", "Limit to one category")
	cmd.MarkFlagRequired("unit") //nolint:errcheck
	return cmd
}
