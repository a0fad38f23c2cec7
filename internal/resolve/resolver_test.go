package resolve

import (
	"testing"
	"time"

	"mapwatch/internal/match"
	"mapwatch/internal/roster"
)

func testRoster(t *testing.T) *roster.Roster {
	t.Helper()
	r, err := roster.New([]roster.Unit{
		{Name: "MAHROUS", Leader: "Ahmed", Aliases: []string{"team 3"}},
		{Name: "ALTAIRAT"},
	})
	if err != nil {
		t.Fatalf("roster.New: %v", err)
	}
	return r
}

func testResolver(t *testing.T) *Resolver {
	t.Helper()
	rv, err := New(testRoster(t), Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return rv
}

var testNow = time.Date(2025, 8, 30, 15, 0, 0, 0, time.UTC)

func TestResolveCanonicalFilename(t *testing.T) {
	rv := testResolver(t)

	res, rej := rv.Resolve("MAHROUS_finished_points_and_tracks_20250830.kmz", testNow)
	if rej != nil {
		t.Fatalf("rejected: %+v", *rej)
	}
	if res.Unit.Name != "MAHROUS" {
		t.Errorf("unit = %q", res.Unit.Name)
	}
	if res.Category.Name != "finished" {
		t.Errorf("category = %q", res.Category.Name)
	}
	if res.Date.Format("20060102") != "20250830" {
		t.Errorf("date = %v", res.Date)
	}
	if res.Strategy != match.StrategyExact {
		t.Errorf("strategy = %q, want exact", res.Strategy)
	}
}

func TestResolveTypedIdentifier(t *testing.T) {
	rv := testResolver(t)

	res, rej := rv.Resolve("mahros_finished_points_20250830.kmz", testNow)
	if rej != nil {
		t.Fatalf("rejected: %+v", *rej)
	}
	if res.Unit.Name != "MAHROUS" {
		t.Errorf("unit = %q, want MAHROUS", res.Unit.Name)
	}
	if res.Strategy != match.StrategyFuzzy {
		t.Errorf("strategy = %q, want fuzzy", res.Strategy)
	}
}

func TestResolveStaleDateRejected(t *testing.T) {
	rv := testResolver(t)

	// Identifier and category both match; only the stamp is stale. The
	// file must be rejected, never filed under the wrong day.
	_, rej := rv.Resolve("MAHROUS_finished_points_and_tracks_20250829.kmz", testNow)
	if rej == nil {
		t.Fatal("expected rejection")
	}
	if rej.Reason != ReasonDateOutOfRange {
		t.Errorf("reason = %q, want %q", rej.Reason, ReasonDateOutOfRange)
	}
}

func TestResolveUnknownIdentifier(t *testing.T) {
	rv := testResolver(t)

	_, rej := rv.Resolve("zzqqxx_finished_points_20250830.kmz", testNow)
	if rej == nil {
		t.Fatal("expected rejection")
	}
	if rej.Reason != ReasonNoIdentifierMatch {
		t.Errorf("reason = %q, want %q", rej.Reason, ReasonNoIdentifierMatch)
	}
	if rej.BestScore <= 0 || rej.BestScore >= 0.65 {
		t.Errorf("best score %v should be positive but below threshold", rej.BestScore)
	}
}

func TestResolveUnsupportedExtension(t *testing.T) {
	rv := testResolver(t)

	_, rej := rv.Resolve("MAHROUS_finished_points_20250830.zip", testNow)
	if rej == nil {
		t.Fatal("expected rejection")
	}
	if rej.Reason != ReasonUnsupportedExtension {
		t.Errorf("reason = %q, want %q", rej.Reason, ReasonUnsupportedExtension)
	}
}

func TestResolveNoCategory(t *testing.T) {
	rv := testResolver(t)

	_, rej := rv.Resolve("MAHROUS_20250830.kmz", testNow)
	if rej == nil {
		t.Fatal("expected rejection")
	}
	if rej.Reason != ReasonNoCategoryMatch {
		t.Errorf("reason = %q, want %q", rej.Reason, ReasonNoCategoryMatch)
	}
}

func TestResolvePlanDateWindow(t *testing.T) {
	rv := testResolver(t)

	res, rej := rv.Resolve("MAHROUS_plan_routes_20250831.kmz", testNow)
	if rej != nil {
		t.Fatalf("rejected: %+v", *rej)
	}
	if res.Category.Name != "plan" {
		t.Errorf("category = %q", res.Category.Name)
	}
	if res.Date.Format("20060102") != "20250831" {
		t.Errorf("date = %v", res.Date)
	}
	// Counts toward the current period even though stamped for tomorrow.
	if res.Period.Format("20060102") != "20250830" {
		t.Errorf("period = %v", res.Period)
	}

	// Today's date is not a valid plan date.
	if _, rej := rv.Resolve("MAHROUS_plan_routes_20250830.kmz", testNow); rej == nil || rej.Reason != ReasonDateOutOfRange {
		t.Errorf("same-day plan: rej = %+v", rej)
	}
	// Beyond the 5-day window.
	if _, rej := rv.Resolve("MAHROUS_plan_routes_20250920.kmz", testNow); rej == nil || rej.Reason != ReasonDateOutOfRange {
		t.Errorf("far-future plan: rej = %+v", rej)
	}
}

func TestResolveMissingDate(t *testing.T) {
	rv := testResolver(t)

	_, rej := rv.Resolve("MAHROUS_finished_points.kmz", testNow)
	if rej == nil || rej.Reason != ReasonDateOutOfRange {
		t.Errorf("rej = %+v, want date rejection", rej)
	}
}

func TestIdentifyIgnoresRangeRules(t *testing.T) {
	rv := testResolver(t)

	unit, cat, day, ok := rv.Identify("mahros_finished_points_20250801.kmz")
	if !ok {
		t.Fatal("expected identification")
	}
	if unit.Name != "MAHROUS" || cat.Name != "finished" {
		t.Errorf("unit=%q cat=%q", unit.Name, cat.Name)
	}
	if day.Format("20060102") != "20250801" {
		t.Errorf("day = %v", day)
	}

	if _, _, _, ok := rv.Identify("nothing_useful.kmz"); ok {
		t.Error("expected no identification")
	}
}

func TestNewValidation(t *testing.T) {
	if _, err := New(nil, Options{}); err == nil {
		t.Error("expected error for nil roster")
	}
	_, err := New(testRoster(t), Options{Categories: []Category{
		{Name: "a", Keywords: []string{"same"}},
		{Name: "b", Keywords: []string{"same"}},
	}})
	if err == nil {
		t.Error("expected error for duplicate keyword")
	}
	if _, err := New(testRoster(t), Options{Categories: []Category{{Name: "a"}}}); err == nil {
		t.Error("expected error for keywordless category")
	}
}

func TestCanonicalName(t *testing.T) {
	rv := testResolver(t)
	unit, _ := rv.roster.UnitByName("MAHROUS")
	cats := rv.Categories()

	got := rv.CanonicalName(unit, cats[0], testNow)
	if got != "MAHROUS_finished_points_and_tracks_20250830.kmz" {
		t.Errorf("canonical = %q", got)
	}
	got = rv.CanonicalName(unit, cats[1], testNow.AddDate(0, 0, 1))
	if got != "MAHROUS_plan_routes_20250831.kmz" {
		t.Errorf("canonical = %q", got)
	}
}
