package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"mapwatch/internal/period"
	"mapwatch/internal/state"
	"mapwatch/internal/store"
)

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"config", "validate", "--path", env.configPath}, "")
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "is valid")

	tmp := t.TempDir()
	target := filepath.Join(tmp, "config.toml")
	out, _, err = runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")

	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}
}

func TestConfigShow(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"config", "show"}, env.configPath)
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	requireContains(t, out, "fuzzy_threshold")
	requireContains(t, out, env.cfg.Paths.InboxDir)
}

func TestMatchCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	today := period.FormatDay(period.Day(time.Now()))

	canonical := fmt.Sprintf("mahros_finished_points_and_tracks_%s.kmz", today)
	out, _, err := runCLI(t, []string{"match", canonical}, env.configPath)
	if err != nil {
		t.Fatalf("match: %v", err)
	}
	requireContains(t, out, "MAHROUS / finished")

	out, _, err = runCLI(t, []string{"match", "report.zip"}, env.configPath)
	if err != nil {
		t.Fatalf("match rejected file: %v", err)
	}
	requireContains(t, out, "rejected (unsupported_extension)")
}

func TestRosterCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"roster"}, env.configPath)
	if err != nil {
		t.Fatalf("roster: %v", err)
	}
	requireContains(t, out, "MAHROUS")
	requireContains(t, out, "altayrat")
	requireContains(t, out, "2 units loaded")
}

func TestStatusCommandEmptyAndRecorded(t *testing.T) {
	env := setupCLITestEnv(t)
	stamp := "20250830"

	out, _, err := runCLI(t, []string{"status", "--period", stamp}, env.configPath)
	if err != nil {
		t.Fatalf("status empty: %v", err)
	}
	requireContains(t, out, "No snapshot recorded")

	ledger, err := store.Open(env.cfg.Paths.DatabaseDir)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	grid := []state.UnitSnapshot{
		{Unit: "MAHROUS", Status: state.StatusSatisfied, Entries: map[string]state.Entry{
			"finished": {Filename: "mahrous_finished_points_and_tracks_20250830.kmz", At: time.Now(), Source: state.SourceLive},
			"plan":     {Filename: "mahrous_plan_routes_20250831.kmz", At: time.Now(), Source: state.SourceLive},
		}},
		{Unit: "ALTAIRAT", Status: state.StatusPending, Entries: map[string]state.Entry{}},
	}
	if _, err := ledger.RecordSnapshot(context.Background(), store.Snapshot{
		SessionID: "test-session",
		Period:    stamp,
		Pending:   1,
		Satisfied: 1,
		Payload:   grid,
	}); err != nil {
		t.Fatalf("RecordSnapshot: %v", err)
	}
	if err := ledger.Close(); err != nil {
		t.Fatalf("close ledger: %v", err)
	}

	out, _, err = runCLI(t, []string{"status", "--period", stamp, "--rejections"}, env.configPath)
	if err != nil {
		t.Fatalf("status recorded: %v", err)
	}
	requireContains(t, out, "1 pending")
	requireContains(t, out, "MAHROUS")
	requireContains(t, out, "satisfied")
	requireContains(t, out, "No rejections recorded")
}

func TestHistoryCommandFindsArchivedFile(t *testing.T) {
	env := setupCLITestEnv(t)

	day := period.Day(time.Now().AddDate(0, 0, -2))
	name := fmt.Sprintf("MAHROUS_finished_points_and_tracks_%s.kmz", period.FormatDay(day))
	path := filepath.Join(env.cfg.Paths.WorkspaceDir,
		period.FormatMonth(day), period.FormatDay(day), "Finished points", name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("kmz"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	out, _, err := runCLI(t, []string{"history", "--unit", "mahros", "--category", "finished"}, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, name)
	requireContains(t, out, "exact match")
}
