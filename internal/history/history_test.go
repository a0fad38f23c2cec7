package history

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"mapwatch/internal/fileutil"
	"mapwatch/internal/match"
	"mapwatch/internal/resolve"
	"mapwatch/internal/roster"
)

var upTo = time.Date(2025, 8, 30, 12, 0, 0, 0, time.UTC)

func testSearch(t *testing.T, root string) (*Search, *resolve.Resolver, *roster.Roster) {
	t.Helper()
	r, err := roster.New([]roster.Unit{
		{Name: "MAHROUS", Aliases: []string{"mahros"}},
		{Name: "ALTAIRAT"},
	})
	if err != nil {
		t.Fatal(err)
	}
	rv, err := resolve.New(r, resolve.Options{})
	if err != nil {
		t.Fatal(err)
	}
	return New(root, rv, 7, 2, nil), rv, r
}

func placeFile(t *testing.T, root string, day time.Time, dir, name string) string {
	t.Helper()
	path := filepath.Join(fileutil.DayDir(root, day, dir), name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func pair(t *testing.T, rv *resolve.Resolver, r *roster.Roster) (roster.Unit, resolve.Category) {
	t.Helper()
	unit, ok := r.UnitByName("MAHROUS")
	if !ok {
		t.Fatal("unit missing")
	}
	return unit, rv.Categories()[0]
}

func TestExactPassWalksBack(t *testing.T) {
	root := t.TempDir()
	s, rv, r := testSearch(t, root)
	unit, cat := pair(t, rv, r)

	day := upTo.AddDate(0, 0, -3)
	want := placeFile(t, root, day, cat.DirName, rv.CanonicalName(unit, cat, day))

	result, err := s.FindLastSatisfying(context.Background(), unit, cat, upTo)
	if err != nil {
		t.Fatal(err)
	}
	if result.Strategy != match.StrategyExact {
		t.Fatalf("strategy = %q, want exact", result.Strategy)
	}
	if result.Path != want {
		t.Errorf("path = %q, want %q", result.Path, want)
	}
	if result.EffectiveDate.Format("20060102") != "20250827" {
		t.Errorf("effective date = %v", result.EffectiveDate)
	}
}

func TestExactBeatsNewerFuzzy(t *testing.T) {
	root := t.TempDir()
	s, rv, r := testSearch(t, root)
	unit, cat := pair(t, rv, r)

	// A newer misspelled file and an older canonical one.
	placeFile(t, root, upTo.AddDate(0, 0, -1), cat.DirName, "mahros_finished_points_20250829.kmz")
	oldDay := upTo.AddDate(0, 0, -5)
	want := placeFile(t, root, oldDay, cat.DirName, rv.CanonicalName(unit, cat, oldDay))

	result, err := s.FindLastSatisfying(context.Background(), unit, cat, upTo)
	if err != nil {
		t.Fatal(err)
	}
	if result.Strategy != match.StrategyExact || result.Path != want {
		t.Errorf("result = %+v, want exact %q", result, want)
	}
}

func TestFuzzyPassPicksMostRecentStampedDate(t *testing.T) {
	root := t.TempDir()
	s, rv, r := testSearch(t, root)
	unit, cat := pair(t, rv, r)

	// Filed under the wrong day folders; only the stamped dates count.
	placeFile(t, root, upTo.AddDate(0, 0, -6), cat.DirName, "mahros_finished_points_20250829.kmz")
	want := placeFile(t, root, upTo.AddDate(0, 0, -2), "Planned routes", "mahros_finished_points_20250830.kmz")

	result, err := s.FindLastSatisfying(context.Background(), unit, cat, upTo)
	if err != nil {
		t.Fatal(err)
	}
	if result.Strategy != match.StrategyFuzzy {
		t.Fatalf("strategy = %q, want fuzzy", result.Strategy)
	}
	if result.Path != want {
		t.Errorf("path = %q, want %q", result.Path, want)
	}
	if result.EffectiveDate.Format("20060102") != "20250830" {
		t.Errorf("effective date = %v", result.EffectiveDate)
	}
}

func TestFuzzyTiePrefersLexicallyLaterName(t *testing.T) {
	root := t.TempDir()
	s, rv, r := testSearch(t, root)
	unit, cat := pair(t, rv, r)

	day := upTo.AddDate(0, 0, -2)
	placeFile(t, root, day, cat.DirName, "mahros_finished_points_20250828.kmz")
	want := placeFile(t, root, day, cat.DirName, "mahrous_completed_points_20250828.kmz")

	result, err := s.FindLastSatisfying(context.Background(), unit, cat, upTo)
	if err != nil {
		t.Fatal(err)
	}
	if result.Path != want {
		t.Errorf("path = %q, want %q", result.Path, want)
	}
}

func TestFuzzyIgnoresOtherUnits(t *testing.T) {
	root := t.TempDir()
	s, rv, r := testSearch(t, root)
	unit, cat := pair(t, rv, r)

	placeFile(t, root, upTo.AddDate(0, 0, -1), cat.DirName, "ALTAIRAT_finished_points_20250829.kmz")

	result, err := s.FindLastSatisfying(context.Background(), unit, cat, upTo)
	if err != nil {
		t.Fatal(err)
	}
	if result.Strategy != match.StrategyNone {
		t.Errorf("result = %+v, want none", result)
	}
}

func TestEmptyWindow(t *testing.T) {
	root := t.TempDir()
	s, rv, r := testSearch(t, root)
	unit, cat := pair(t, rv, r)

	result, err := s.FindLastSatisfying(context.Background(), unit, cat, upTo)
	if err != nil {
		t.Fatal(err)
	}
	if result.Strategy != match.StrategyNone || result.Path != "" {
		t.Errorf("result = %+v, want none", result)
	}
}

func TestCanceledContext(t *testing.T) {
	root := t.TempDir()
	s, rv, r := testSearch(t, root)
	unit, cat := pair(t, rv, r)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.FindLastSatisfying(ctx, unit, cat, upTo); err == nil {
		t.Error("expected context error")
	}
}
