package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"mapwatch/internal/roster"
)

func newRosterCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "roster",
		Short: "List the units the monitor expects files from",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			unitRoster, err := roster.Load(cfg.Paths.RosterPath)
			if err != nil {
				return fmt.Errorf("load roster %s: %w", cfg.Paths.RosterPath, err)
			}

			rows := make([][]string, 0, unitRoster.Len())
			for _, unit := range unitRoster.Units() {
				rows = append(rows, []string{
					strconv.Itoa(unit.Sequence),
					unit.Name,
					strconv.Itoa(unit.Team),
					unit.Leader,
					strings.Join(unit.Aliases, ", "),
				})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(
				[]string{"#", "Unit", "Team", "Leader", "Aliases"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft},
			))
			fmt.Fprintf(out, "%d units loaded from %s\n", unitRoster.Len(), cfg.Paths.RosterPath)
			return nil
		},
	}
}
