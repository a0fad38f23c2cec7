// Package history answers "when did this unit last deliver this
// category" by searching the dated workspace tree backwards from a
// reference day. An exact pass probes for the canonical filename day by
// day; only if that fails does a fuzzy pass scan every archived file in
// the window with the same identity matching used for live arrivals.
package history

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"mapwatch/internal/fileutil"
	"mapwatch/internal/logging"
	"mapwatch/internal/match"
	"mapwatch/internal/period"
	"mapwatch/internal/resolve"
	"mapwatch/internal/roster"
)

// LookupResult reports where a satisfying file was found. Strategy is
// StrategyNone when the window holds nothing for the pair.
type LookupResult struct {
	Path          string
	Strategy      match.StrategyKind
	EffectiveDate time.Time
}

// Search scans the workspace tree. Safe for concurrent lookups.
type Search struct {
	root         string
	resolver     *resolve.Resolver
	lookbackDays int
	workers      int
	logger       *slog.Logger
}

// New builds a search over the workspace root. workers bounds the
// per-lookup folder scan fan-out.
func New(root string, rv *resolve.Resolver, lookbackDays, workers int, logger *slog.Logger) *Search {
	if lookbackDays < 1 {
		lookbackDays = 1
	}
	if workers < 1 {
		workers = 4
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Search{
		root:         root,
		resolver:     rv,
		lookbackDays: lookbackDays,
		workers:      workers,
		logger:       logger,
	}
}

// FindLastSatisfying returns the most recent file in the lookback
// window satisfying the pair. The exact canonical name wins over any
// fuzzy hit regardless of recency.
func (s *Search) FindLastSatisfying(ctx context.Context, unit roster.Unit, cat resolve.Category, upTo time.Time) (LookupResult, error) {
	if result, err := s.exactPass(ctx, unit, cat, upTo); err != nil || result.Strategy == match.StrategyExact {
		return result, err
	}
	return s.fuzzyPass(ctx, unit, cat, upTo)
}

func (s *Search) exactPass(ctx context.Context, unit roster.Unit, cat resolve.Category, upTo time.Time) (LookupResult, error) {
	for _, day := range period.DaysBack(upTo, s.lookbackDays) {
		if err := ctx.Err(); err != nil {
			return LookupResult{Strategy: match.StrategyNone}, err
		}
		expected := s.resolver.CanonicalName(unit, cat, day)
		path := filepath.Join(fileutil.DayDir(s.root, day, cat.DirName), expected)
		info, err := os.Stat(path)
		if err == nil && !info.IsDir() {
			return LookupResult{Path: path, Strategy: match.StrategyExact, EffectiveDate: day}, nil
		}
	}
	return LookupResult{Strategy: match.StrategyNone}, nil
}

type candidate struct {
	path string
	date time.Time
}

// fuzzyPass fans one worker out per day folder and funnels candidates
// to a single accumulator. Folder dates are ignored for effective-date
// purposes; the date stamped in the filename decides recency, with the
// folder day as fallback for undated names.
func (s *Search) fuzzyPass(ctx context.Context, unit roster.Unit, cat resolve.Category, upTo time.Time) (LookupResult, error) {
	days := period.DaysBack(upTo, s.lookbackDays)

	jobs := make(chan time.Time)
	results := make(chan candidate, s.workers)

	var wg sync.WaitGroup
	for i := 0; i < s.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for day := range jobs {
				s.scanDay(ctx, day, unit, cat, results)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, day := range days {
			select {
			case jobs <- day:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	var best *candidate
	for c := range results {
		c := c
		if best == nil {
			best = &c
			continue
		}
		switch {
		case c.date.After(best.date):
			best = &c
		case c.date.Equal(best.date) && filepath.Base(c.path) > filepath.Base(best.path):
			best = &c
		}
	}

	if err := ctx.Err(); err != nil {
		return LookupResult{Strategy: match.StrategyNone}, err
	}
	if best == nil {
		return LookupResult{Strategy: match.StrategyNone}, nil
	}
	return LookupResult{Path: best.path, Strategy: match.StrategyFuzzy, EffectiveDate: best.date}, nil
}

func (s *Search) scanDay(ctx context.Context, day time.Time, unit roster.Unit, cat resolve.Category, results chan<- candidate) {
	dayRoot := filepath.Join(s.root, period.FormatMonth(day), period.FormatDay(day))
	err := filepath.WalkDir(dayRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return filepath.SkipAll
			}
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return filepath.SkipAll
		}
		if d.IsDir() {
			return nil
		}

		gotUnit, gotCat, stamped, ok := s.resolver.Identify(d.Name())
		if !ok || gotUnit.Name != unit.Name || gotCat.Name != cat.Name {
			return nil
		}
		effective := stamped
		if effective.IsZero() {
			effective = day
		}
		select {
		case results <- candidate{path: path, date: effective}:
		case <-ctx.Done():
			return filepath.SkipAll
		}
		return nil
	})
	if err != nil {
		logging.WarnWithContext(s.logger, "historical scan failed", "history_scan_failed",
			logging.String("day", period.FormatDay(day)),
			logging.Error(err))
	}
}
