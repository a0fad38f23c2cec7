// Package period handles collection-period dates: parsing the date
// stamps embedded in filenames, formatting workspace folder names, and
// range checks for the lookback and planning windows.
package period

import (
	"errors"
	"fmt"
	"time"
)

const (
	// DayLayout is the canonical 8-digit date stamp used in filenames
	// and day folders.
	DayLayout = "20060102"
	// MonthLayout is the month folder name.
	MonthLayout = "200601"
)

// dayLayouts are the accepted filename date spellings, most common first.
var dayLayouts = []string{DayLayout, "2006-01-02", "2006/01/02"}

// ErrUnrecognizedDate indicates a date stamp in none of the accepted
// spellings.
var ErrUnrecognizedDate = errors.New("period: unrecognized date stamp")

// ParseDay parses a filename date stamp. The result is truncated to
// midnight UTC so days compare by equality.
func ParseDay(s string) (time.Time, error) {
	for _, layout := range dayLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrUnrecognizedDate, s)
}

// Day truncates a timestamp to its date, midnight UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// FormatDay renders the canonical 8-digit stamp.
func FormatDay(t time.Time) string { return t.Format(DayLayout) }

// FormatMonth renders the month folder name.
func FormatMonth(t time.Time) string { return t.Format(MonthLayout) }

// SameDay reports whether two timestamps fall on the same calendar day.
func SameDay(a, b time.Time) bool { return Day(a).Equal(Day(b)) }

// WithinLookback reports whether day falls inside [ref-days, ref].
func WithinLookback(day, ref time.Time, days int) bool {
	day, ref = Day(day), Day(ref)
	if day.After(ref) {
		return false
	}
	return !day.Before(ref.AddDate(0, 0, -days))
}

// WithinForward reports whether day falls inside (ref, ref+days]. Used
// for planned-route dates, which must be in the future but near.
func WithinForward(day, ref time.Time, days int) bool {
	day, ref = Day(day), Day(ref)
	if !day.After(ref) {
		return false
	}
	return !day.After(ref.AddDate(0, 0, days))
}

// DaysBack returns the days ref, ref-1, ... ref-n in walk-back order.
func DaysBack(ref time.Time, n int) []time.Time {
	ref = Day(ref)
	out := make([]time.Time, 0, n+1)
	for i := 0; i <= n; i++ {
		out = append(out, ref.AddDate(0, 0, -i))
	}
	return out
}
