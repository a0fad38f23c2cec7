package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"mapwatch/internal/period"
)

func newMatchCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "match <filename> [filename...]",
		Short: "Classify filenames against the roster without filing them",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resolver, _, err := ctx.newResolver()
			if err != nil {
				return err
			}

			now := time.Now()
			out := cmd.OutOrStdout()
			for _, filename := range args {
				res, rej := resolver.Resolve(filename, now)
				if rej != nil {
					fmt.Fprintf(out, "%s: rejected (%s)", filename, rej.Reason)
					if rej.BestScore > 0 {
						fmt.Fprintf(out, " best score %.2f", rej.BestScore)
					}
					if rej.Detail != "" {
						fmt.Fprintf(out, ": %s", rej.Detail)
					}
					fmt.Fprintln(out)
					continue
				}
				fmt.Fprintf(out, "%s: %s / %s for %s via %s (score %.2f)\n",
					filename, res.Unit.Name, res.Category.Name,
					period.FormatDay(res.Date), res.Strategy, res.Score)
			}
			return nil
		},
	}
}
