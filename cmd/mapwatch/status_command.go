package main

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"mapwatch/internal/period"
	"mapwatch/internal/store"
)

// snapshotUnit mirrors the grid rows the daemon persists with each
// ledger snapshot.
type snapshotUnit struct {
	Unit    string
	Status  string
	Entries map[string]snapshotEntry
}

type snapshotEntry struct {
	Filename string
	At       time.Time
	Source   string
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var periodFlag string
	var showRejections bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show collection progress for a period",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			stamp := strings.TrimSpace(periodFlag)
			if stamp == "" {
				stamp = period.FormatDay(period.Day(time.Now()))
			} else {
				day, err := period.ParseDay(stamp)
				if err != nil {
					return fmt.Errorf("parse period %q: %w", stamp, err)
				}
				stamp = period.FormatDay(day)
			}

			ledger, err := store.Open(cfg.Paths.DatabaseDir)
			if err != nil {
				return fmt.Errorf("open ledger: %w", err)
			}
			defer ledger.Close() //nolint:errcheck

			snap, err := ledger.LatestSnapshot(cmd.Context(), stamp)
			if err != nil {
				return fmt.Errorf("read snapshot: %w", err)
			}

			out := cmd.OutOrStdout()
			if snap == nil {
				fmt.Fprintf(out, "No snapshot recorded for period %s\n", stamp)
				return nil
			}

			colorize := shouldColorize(out)
			fmt.Fprintf(out, "Period %s (recorded %s): %d pending, %d partial, %d satisfied\n",
				snap.Period, snap.CreatedAt.Local().Format("15:04:05"),
				snap.Pending, snap.Partial, snap.Satisfied)

			units, err := decodeSnapshotUnits(snap)
			if err != nil {
				return fmt.Errorf("decode snapshot payload: %w", err)
			}
			if len(units) > 0 {
				fmt.Fprintln(out, renderUnitTable(units, colorize))
			}

			if showRejections {
				rejections, err := ledger.RejectionsForPeriod(cmd.Context(), stamp)
				if err != nil {
					return fmt.Errorf("read rejections: %w", err)
				}
				if len(rejections) == 0 {
					fmt.Fprintln(out, "No rejections recorded")
				} else {
					fmt.Fprintln(out, renderRejectionTable(rejections))
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&periodFlag, "period", "p", "", "Collection period (yyyymmdd); defaults to today")
	cmd.Flags().BoolVar(&showRejections, "rejections", false, "Include rejected filenames for the period")
	return cmd
}

func decodeSnapshotUnits(snap *store.Snapshot) ([]snapshotUnit, error) {
	raw, ok := snap.Payload.(json.RawMessage)
	if !ok {
		data, err := json.Marshal(snap.Payload)
		if err != nil {
			return nil, err
		}
		raw = data
	}
	var units []snapshotUnit
	if err := json.Unmarshal(raw, &units); err != nil {
		return nil, err
	}
	return units, nil
}

func renderUnitTable(units []snapshotUnit, colorize bool) string {
	rows := make([][]string, 0, len(units))
	for _, unit := range units {
		categories := make([]string, 0, len(unit.Entries))
		for category := range unit.Entries {
			categories = append(categories, category)
		}
		sort.Strings(categories)

		delivered := make([]string, 0, len(categories))
		var latest time.Time
		for _, category := range categories {
			entry := unit.Entries[category]
			delivered = append(delivered, category)
			if entry.At.After(latest) {
				latest = entry.At
			}
		}

		lastSeen := ""
		if !latest.IsZero() {
			lastSeen = latest.Local().Format("15:04")
		}
		rows = append(rows, []string{
			unit.Unit,
			colorizeStatus(unit.Status, colorize),
			strings.Join(delivered, ", "),
			lastSeen,
		})
	}
	return renderTable(
		[]string{"Unit", "Status", "Delivered", "Last"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight},
	)
}

func renderRejectionTable(rejections []store.Rejection) string {
	rows := make([][]string, 0, len(rejections))
	for _, rej := range rejections {
		rows = append(rows, []string{
			rej.Filename,
			rej.Reason,
			fmt.Sprintf("%.2f", rej.BestScore),
			rej.ReceivedAt.Local().Format("15:04"),
		})
	}
	return renderTable(
		[]string{"Filename", "Reason", "Best score", "At"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight},
	)
}
