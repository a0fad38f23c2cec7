// Package state tracks which work units have delivered which
// categories during the current collection period. Unit status only
// moves forward: pending, partially satisfied once any category
// arrives, satisfied once all have. Duplicate deliveries refresh the
// recorded filename and timestamp without any transition.
package state

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Status is a unit's progress through the period.
type Status string

const (
	StatusPending   Status = "pending"
	StatusPartial   Status = "partially_satisfied"
	StatusSatisfied Status = "satisfied"
)

// Source records how a requirement was satisfied.
type Source string

const (
	SourceLive     Source = "live"
	SourceBackfill Source = "backfill"
)

// Requirement is one (unit, category) cell the period expects a file for.
type Requirement struct {
	Unit     string
	Category string
}

// Entry records the file that satisfied a requirement.
type Entry struct {
	Filename string
	At       time.Time
	Source   Source
}

// UnitSnapshot is a read-only view of one unit's progress.
type UnitSnapshot struct {
	Unit    string
	Status  Status
	Entries map[string]Entry
}

var (
	ErrUnknownUnit     = errors.New("state: unknown unit")
	ErrUnknownCategory = errors.New("state: unknown category")
)

// Tracker holds the satisfaction grid for one period. All mutation goes
// through Satisfy; reads take the shared lock so the status surface can
// observe progress while the dispatch loop runs.
type Tracker struct {
	mu         sync.RWMutex
	units      []string
	categories []string
	entries    map[Requirement]Entry
}

// NewTracker builds an all-pending grid for the given units and
// categories, both kept in the order supplied.
func NewTracker(units, categories []string) *Tracker {
	return &Tracker{
		units:      append([]string(nil), units...),
		categories: append([]string(nil), categories...),
		entries:    make(map[Requirement]Entry),
	}
}

func (t *Tracker) hasUnit(unit string) bool {
	for _, u := range t.units {
		if u == unit {
			return true
		}
	}
	return false
}

func (t *Tracker) hasCategory(category string) bool {
	for _, c := range t.categories {
		if c == category {
			return true
		}
	}
	return false
}

// Satisfy records a delivery. It reports whether the requirement was
// newly satisfied; a repeat delivery refreshes the entry and reports
// false. The returned status is the unit's status after the update.
func (t *Tracker) Satisfy(unit, category, filename string, at time.Time, source Source) (bool, Status, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.hasUnit(unit) {
		return false, "", fmt.Errorf("%w: %q", ErrUnknownUnit, unit)
	}
	if !t.hasCategory(category) {
		return false, "", fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}

	req := Requirement{Unit: unit, Category: category}
	_, existed := t.entries[req]
	t.entries[req] = Entry{Filename: filename, At: at, Source: source}
	return !existed, t.statusLocked(unit), nil
}

func (t *Tracker) statusLocked(unit string) Status {
	have := 0
	for _, cat := range t.categories {
		if _, ok := t.entries[Requirement{Unit: unit, Category: cat}]; ok {
			have++
		}
	}
	switch {
	case have == 0:
		return StatusPending
	case have == len(t.categories):
		return StatusSatisfied
	default:
		return StatusPartial
	}
}

// UnitStatus returns a unit's current status. Unknown units are pending.
func (t *Tracker) UnitStatus(unit string) Status {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.statusLocked(unit)
}

// Unsatisfied lists every requirement still waiting for a file, in
// unit-then-category order.
func (t *Tracker) Unsatisfied() []Requirement {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var out []Requirement
	for _, unit := range t.units {
		for _, cat := range t.categories {
			req := Requirement{Unit: unit, Category: cat}
			if _, ok := t.entries[req]; !ok {
				out = append(out, req)
			}
		}
	}
	return out
}

// Remaining counts units not yet fully satisfied.
func (t *Tracker) Remaining() int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	n := 0
	for _, unit := range t.units {
		if t.statusLocked(unit) != StatusSatisfied {
			n++
		}
	}
	return n
}

// AllSatisfied reports whether every requirement has a file.
func (t *Tracker) AllSatisfied() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries) == len(t.units)*len(t.categories)
}

// Snapshot returns a copy of the whole grid in roster order.
func (t *Tracker) Snapshot() []UnitSnapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]UnitSnapshot, 0, len(t.units))
	for _, unit := range t.units {
		snap := UnitSnapshot{
			Unit:    unit,
			Status:  t.statusLocked(unit),
			Entries: make(map[string]Entry, len(t.categories)),
		}
		for _, cat := range t.categories {
			if entry, ok := t.entries[Requirement{Unit: unit, Category: cat}]; ok {
				snap.Entries[cat] = entry
			}
		}
		out = append(out, snap)
	}
	return out
}

// Counts aggregates unit statuses for status lines and notifications.
func (t *Tracker) Counts() (pending, partial, satisfied int) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	for _, unit := range t.units {
		switch t.statusLocked(unit) {
		case StatusPending:
			pending++
		case StatusPartial:
			partial++
		case StatusSatisfied:
			satisfied++
		}
	}
	return pending, partial, satisfied
}

// Categories returns the tracked category names.
func (t *Tracker) Categories() []string {
	return append([]string(nil), t.categories...)
}

// Units returns the tracked unit names.
func (t *Tracker) Units() []string {
	return append([]string(nil), t.units...)
}

// SortRequirements orders requirements by unit then category name, for
// deterministic logs.
func SortRequirements(reqs []Requirement) {
	sort.Slice(reqs, func(i, j int) bool {
		if reqs[i].Unit != reqs[j].Unit {
			return reqs[i].Unit < reqs[j].Unit
		}
		return reqs[i].Category < reqs[j].Category
	})
}
