package match

import (
	"fmt"
	"regexp"
)

// TargetKind classifies what a target extracts from the input.
type TargetKind string

const (
	KindName      TargetKind = "name"
	KindDate      TargetKind = "date"
	KindCategory  TargetKind = "category"
	KindExtension TargetKind = "extension"
	KindPattern   TargetKind = "pattern"
)

// Target is one named matching goal. Values are immutable once
// constructed; build them with the constructor helpers so each call site
// carries a single configuration object instead of loose arguments.
type Target struct {
	Name       string
	Kind       TargetKind
	Candidates []string
	Patterns   []*regexp.Regexp
	Strategy   Strategy
	Required   bool
	Weight     float64
	// Validate, when set, can veto a raw pattern or candidate hit (e.g. a
	// date string that parses but falls outside the collection period).
	Validate func(matched string) bool
}

func (t Target) validate() error {
	if t.Weight <= 0 {
		return fmt.Errorf("%w: target %q has weight %v", ErrInvalidWeight, t.Name, t.Weight)
	}
	return nil
}

// NameTarget matches one of a set of identifier aliases with the given
// strategy.
func NameTarget(name string, candidates []string, strategy Strategy, required bool, weight float64) Target {
	return Target{
		Name:       name,
		Kind:       KindName,
		Candidates: append([]string(nil), candidates...),
		Strategy:   strategy,
		Required:   required,
		Weight:     weight,
	}
}

// CategoryTarget matches one of a set of category keyword phrases.
func CategoryTarget(name string, keywords []string, strategy Strategy, required bool, weight float64) Target {
	target := NameTarget(name, keywords, strategy, required, weight)
	target.Kind = KindCategory
	return target
}

var dateLayouts = []*regexp.Regexp{
	regexp.MustCompile(`(\d{8})`),
	regexp.MustCompile(`(\d{4}-\d{2}-\d{2})`),
	regexp.MustCompile(`(\d{4}/\d{2}/\d{2})`),
}

// DateTarget extracts a date token via pattern matching. validate
// receives the raw matched text (e.g. "20250830") and should reject
// unparseable or out-of-range values.
func DateTarget(name string, required bool, weight float64, validate func(string) bool) Target {
	return Target{
		Name:     name,
		Kind:     KindDate,
		Patterns: dateLayouts,
		Required: required,
		Weight:   weight,
		Validate: validate,
	}
}

var extensionPattern = regexp.MustCompile(`\.([a-zA-Z0-9]+)$`)

// ExtensionTarget extracts the trailing extension and accepts it only when
// it appears in the accepted set (leading dot optional, case-insensitive).
func ExtensionTarget(name string, accepted []string, required bool, weight float64) Target {
	set := make(map[string]struct{}, len(accepted))
	for _, ext := range accepted {
		set[normalize(ext)] = struct{}{}
	}
	return Target{
		Name:     name,
		Kind:     KindExtension,
		Patterns: []*regexp.Regexp{extensionPattern},
		Required: required,
		Weight:   weight,
		Validate: func(matched string) bool {
			_, ok := set[normalize(matched)]
			return ok
		},
	}
}

// PatternTarget extracts the first capturing group of the first matching
// expression from an ordered list.
func PatternTarget(name string, patterns []*regexp.Regexp, required bool, weight float64, validate func(string) bool) Target {
	return Target{
		Name:     name,
		Kind:     KindPattern,
		Patterns: append([]*regexp.Regexp(nil), patterns...),
		Required: required,
		Weight:   weight,
		Validate: validate,
	}
}
