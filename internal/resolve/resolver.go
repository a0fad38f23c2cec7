package resolve

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"mapwatch/internal/match"
	"mapwatch/internal/period"
	"mapwatch/internal/roster"
)

// Target names inside the underlying matcher.
const (
	targetUnit      = "unit"
	targetCategory  = "category"
	targetDate      = "date"
	targetExtension = "extension"
)

// Reason classifies why a filename was rejected. Rejections are
// ordinary values, not errors; the monitor logs and records them and
// keeps running.
type Reason string

const (
	ReasonUnsupportedExtension Reason = "unsupported_extension"
	ReasonNoIdentifierMatch    Reason = "no_identifier_match"
	ReasonNoCategoryMatch      Reason = "no_category_match"
	ReasonDateOutOfRange       Reason = "date_out_of_range"
)

// Resolution is an accepted filename bound to its identity. Period is
// the collection day the file counts toward, which for future-dated
// categories differs from the date stamped in the name.
type Resolution struct {
	Filename string
	Unit     roster.Unit
	Category Category
	Date     time.Time
	Period   time.Time
	Strategy match.StrategyKind
	Score    float64
}

// Rejection explains why a filename was not accepted. BestScore is the
// closest identifier score seen, so near misses can be surfaced.
type Rejection struct {
	Filename  string
	Reason    Reason
	BestScore float64
	Detail    string
}

var (
	ErrNoCategories       = errors.New("resolve: no categories configured")
	ErrNoExtensions       = errors.New("resolve: no accepted extensions configured")
	ErrDuplicateKeyword   = errors.New("resolve: keyword appears in multiple categories")
	ErrRosterRequired     = errors.New("resolve: roster is required")
	ErrInvalidForwardDays = errors.New("resolve: forward window must be positive")
)

// Options tune the resolver. Zero values fall back to the defaults the
// daemon ships with.
type Options struct {
	Threshold   float64
	PrefixBias  float64
	Extensions  []string
	ForwardDays int
	Categories  []Category
}

// Resolver maps filenames to identities. Safe for concurrent use once
// constructed.
type Resolver struct {
	roster      *roster.Roster
	matcher     *match.Matcher
	categories  []Category
	byKeyword   map[string]int
	extensions  []string
	forwardDays int
}

// New builds a resolver for the given roster. Category keywords must be
// unique across categories so a matched keyword identifies exactly one.
func New(r *roster.Roster, opts Options) (*Resolver, error) {
	if r == nil {
		return nil, ErrRosterRequired
	}
	if opts.Threshold == 0 {
		opts.Threshold = 0.65
	}
	if opts.ForwardDays == 0 {
		opts.ForwardDays = 5
	}
	if opts.ForwardDays < 0 {
		return nil, ErrInvalidForwardDays
	}
	if len(opts.Categories) == 0 {
		opts.Categories = DefaultCategories()
	}
	if len(opts.Extensions) == 0 {
		opts.Extensions = []string{"kmz"}
	}
	for i, cat := range opts.Categories {
		if strings.TrimSpace(cat.Name) == "" || len(cat.Keywords) == 0 {
			return nil, fmt.Errorf("%w: category %d incomplete", ErrNoCategories, i)
		}
	}

	byKeyword := make(map[string]int)
	var keywords []string
	for i, cat := range opts.Categories {
		for _, kw := range cat.Keywords {
			if _, ok := byKeyword[kw]; ok {
				return nil, fmt.Errorf("%w: %q", ErrDuplicateKeyword, kw)
			}
			byKeyword[kw] = i
			keywords = append(keywords, kw)
		}
	}

	unitStrategy := match.NewHybridPrefixBiased(opts.Threshold, opts.PrefixBias)
	categoryStrategy := match.NewHybrid(opts.Threshold)

	matcher, err := match.NewMatcher(
		match.NameTarget(targetUnit, r.Aliases(), unitStrategy, true, 0.5),
		match.CategoryTarget(targetCategory, keywords, categoryStrategy, true, 0.2),
		match.DateTarget(targetDate, true, 0.2, nil),
		match.ExtensionTarget(targetExtension, opts.Extensions, true, 0.1),
	)
	if err != nil {
		return nil, fmt.Errorf("build matcher: %w", err)
	}

	return &Resolver{
		roster:      r,
		matcher:     matcher,
		categories:  opts.Categories,
		byKeyword:   byKeyword,
		extensions:  opts.Extensions,
		forwardDays: opts.ForwardDays,
	}, nil
}

// Categories returns the configured categories in order.
func (rv *Resolver) Categories() []Category {
	out := make([]Category, len(rv.categories))
	copy(out, rv.categories)
	return out
}

// Extensions returns the accepted archive extensions.
func (rv *Resolver) Extensions() []string {
	out := make([]string, len(rv.extensions))
	copy(out, rv.extensions)
	return out
}

// CanonicalName renders the expected filename for a unit, category and
// day using the first accepted extension.
func (rv *Resolver) CanonicalName(unit roster.Unit, cat Category, day time.Time) string {
	return cat.CanonicalName(unit.Name, day, rv.extensions[0])
}

// Resolve classifies a filename against the current period. A nil
// Rejection means the Resolution is valid. Files stamped with a date
// outside the category's window are rejected rather than filed under
// the wrong period.
func (rv *Resolver) Resolve(filename string, now time.Time) (Resolution, *Rejection) {
	agg := rv.matcher.Match(filename)

	if !agg.Matched(targetExtension) {
		return Resolution{}, &Rejection{
			Filename: filename,
			Reason:   ReasonUnsupportedExtension,
			Detail:   fmt.Sprintf("accepted extensions: %s", strings.Join(rv.extensions, ", ")),
		}
	}

	unitOutcome, _ := agg.Outcome(targetUnit)
	if !unitOutcome.IsMatch() {
		return Resolution{}, &Rejection{
			Filename:  filename,
			Reason:    ReasonNoIdentifierMatch,
			BestScore: unitOutcome.BestScore,
		}
	}
	unit, ok := rv.roster.UnitForAlias(unitOutcome.Matched)
	if !ok {
		// Matcher candidates come from the roster, so this means the
		// roster changed under us.
		return Resolution{}, &Rejection{
			Filename: filename,
			Reason:   ReasonNoIdentifierMatch,
			Detail:   fmt.Sprintf("alias %q not in roster", unitOutcome.Matched),
		}
	}

	catOutcome, _ := agg.Outcome(targetCategory)
	if !catOutcome.IsMatch() {
		return Resolution{}, &Rejection{
			Filename:  filename,
			Reason:    ReasonNoCategoryMatch,
			BestScore: catOutcome.BestScore,
		}
	}
	cat := rv.categories[rv.byKeyword[catOutcome.Matched]]

	day, rej := rv.resolveDate(agg, cat, filename, now)
	if rej != nil {
		return Resolution{}, rej
	}

	return Resolution{
		Filename: filename,
		Unit:     unit,
		Category: cat,
		Date:     day,
		Period:   period.Day(now),
		Strategy: unitOutcome.Strategy,
		Score:    agg.Score,
	}, nil
}

func (rv *Resolver) resolveDate(agg match.Aggregate, cat Category, filename string, now time.Time) (time.Time, *Rejection) {
	stamp := agg.Value(targetDate)
	if stamp == "" {
		return time.Time{}, &Rejection{
			Filename: filename,
			Reason:   ReasonDateOutOfRange,
			Detail:   "no date stamp in filename",
		}
	}
	day, err := period.ParseDay(stamp)
	if err != nil {
		return time.Time{}, &Rejection{
			Filename: filename,
			Reason:   ReasonDateOutOfRange,
			Detail:   err.Error(),
		}
	}

	if cat.FutureDated {
		if !period.WithinForward(day, now, rv.forwardDays) {
			return time.Time{}, &Rejection{
				Filename: filename,
				Reason:   ReasonDateOutOfRange,
				Detail:   fmt.Sprintf("%s must be within %d days after %s", stamp, rv.forwardDays, period.FormatDay(now)),
			}
		}
		return day, nil
	}

	if !period.SameDay(day, now) {
		return time.Time{}, &Rejection{
			Filename: filename,
			Reason:   ReasonDateOutOfRange,
			Detail:   fmt.Sprintf("%s is not the current period %s", stamp, period.FormatDay(now)),
		}
	}
	return day, nil
}

// Identify matches a filename's unit, category and stamped date without
// applying period range rules. Historical scans use it to classify
// files from earlier days.
func (rv *Resolver) Identify(filename string) (roster.Unit, Category, time.Time, bool) {
	agg := rv.matcher.Match(filename)

	unitOutcome, _ := agg.Outcome(targetUnit)
	catOutcome, _ := agg.Outcome(targetCategory)
	if !unitOutcome.IsMatch() || !catOutcome.IsMatch() {
		return roster.Unit{}, Category{}, time.Time{}, false
	}
	unit, ok := rv.roster.UnitForAlias(unitOutcome.Matched)
	if !ok {
		return roster.Unit{}, Category{}, time.Time{}, false
	}
	cat := rv.categories[rv.byKeyword[catOutcome.Matched]]

	var day time.Time
	if stamp := agg.Value(targetDate); stamp != "" {
		if parsed, err := period.ParseDay(stamp); err == nil {
			day = parsed
		}
	}
	return unit, cat, day, true
}
