package period

import (
	"testing"
	"time"
)

func TestParseDayLayouts(t *testing.T) {
	want := time.Date(2025, 8, 30, 0, 0, 0, 0, time.UTC)
	for _, stamp := range []string{"20250830", "2025-08-30", "2025/08/30"} {
		got, err := ParseDay(stamp)
		if err != nil {
			t.Fatalf("ParseDay(%q): %v", stamp, err)
		}
		if !got.Equal(want) {
			t.Errorf("ParseDay(%q) = %v, want %v", stamp, got, want)
		}
	}
	if _, err := ParseDay("30-08-2025"); err == nil {
		t.Error("expected error for unrecognized layout")
	}
	if _, err := ParseDay(""); err == nil {
		t.Error("expected error for empty stamp")
	}
}

func TestFormatting(t *testing.T) {
	day := time.Date(2025, 8, 30, 14, 3, 0, 0, time.UTC)
	if got := FormatDay(day); got != "20250830" {
		t.Errorf("FormatDay = %q", got)
	}
	if got := FormatMonth(day); got != "202508" {
		t.Errorf("FormatMonth = %q", got)
	}
}

func TestWithinLookback(t *testing.T) {
	ref := time.Date(2025, 8, 30, 19, 0, 0, 0, time.UTC)
	cases := []struct {
		day  string
		days int
		want bool
	}{
		{"20250830", 7, true},
		{"20250823", 7, true},
		{"20250822", 7, false},
		{"20250831", 7, false},
	}
	for _, tc := range cases {
		day, err := ParseDay(tc.day)
		if err != nil {
			t.Fatal(err)
		}
		if got := WithinLookback(day, ref, tc.days); got != tc.want {
			t.Errorf("WithinLookback(%s, ref, %d) = %v, want %v", tc.day, tc.days, got, tc.want)
		}
	}
}

func TestWithinForward(t *testing.T) {
	ref := time.Date(2025, 8, 30, 0, 0, 0, 0, time.UTC)
	cases := []struct {
		day  string
		want bool
	}{
		{"20250830", false},
		{"20250831", true},
		{"20250904", true},
		{"20250905", false},
	}
	for _, tc := range cases {
		day, err := ParseDay(tc.day)
		if err != nil {
			t.Fatal(err)
		}
		if got := WithinForward(day, ref, 5); got != tc.want {
			t.Errorf("WithinForward(%s, ref, 5) = %v, want %v", tc.day, got, tc.want)
		}
	}
}

func TestDaysBack(t *testing.T) {
	ref := time.Date(2025, 8, 30, 12, 0, 0, 0, time.UTC)
	days := DaysBack(ref, 2)
	if len(days) != 3 {
		t.Fatalf("got %d days, want 3", len(days))
	}
	want := []string{"20250830", "20250829", "20250828"}
	for i, day := range days {
		if FormatDay(day) != want[i] {
			t.Errorf("days[%d] = %s, want %s", i, FormatDay(day), want[i])
		}
	}
}
