package match

import (
	"fmt"
	"sort"
)

// Matcher evaluates an ordered set of targets against input strings.
// Construction validates the configuration up front so a bad target set
// fails at startup rather than mid-monitoring.
type Matcher struct {
	targets []Target
}

// NewMatcher builds a matcher from the given targets. Target names must be
// unique and weights positive.
func NewMatcher(targets ...Target) (*Matcher, error) {
	if len(targets) == 0 {
		return nil, ErrNoTargets
	}
	seen := make(map[string]struct{}, len(targets))
	for _, target := range targets {
		if _, ok := seen[target.Name]; ok {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateTarget, target.Name)
		}
		seen[target.Name] = struct{}{}
		if err := target.validate(); err != nil {
			return nil, err
		}
	}
	return &Matcher{targets: append([]Target(nil), targets...)}, nil
}

// Match evaluates every target against input. All targets are always
// attempted, even after a required one misses, so one Aggregate carries
// full diagnostic information.
func (m *Matcher) Match(input string) Aggregate {
	agg := Aggregate{
		Input:    input,
		Outcomes: make(map[string]Outcome, len(m.targets)),
	}

	var weightSum, scoreSum float64
	for _, target := range m.targets {
		outcome := evaluateTarget(input, target)
		agg.Outcomes[target.Name] = outcome

		weightSum += target.Weight
		scoreSum += target.Weight * outcome.Score

		if target.Required && !outcome.IsMatch() {
			agg.MissingRequired = append(agg.MissingRequired, target.Name)
		}
	}

	if weightSum > 0 {
		agg.Score = scoreSum / weightSum
	}
	agg.Complete = len(agg.MissingRequired) == 0
	return agg
}

// MatchAll evaluates every input, preserving input order.
func (m *Matcher) MatchAll(inputs []string) []Aggregate {
	results := make([]Aggregate, 0, len(inputs))
	for _, input := range inputs {
		results = append(results, m.Match(input))
	}
	return results
}

// BestMatches returns the aggregates with overall score >= minScore,
// sorted by descending score. The sort is stable so equal scores keep
// input order.
func (m *Matcher) BestMatches(inputs []string, minScore float64) []Aggregate {
	results := m.MatchAll(inputs)
	filtered := results[:0]
	for _, result := range results {
		if result.Score >= minScore {
			filtered = append(filtered, result)
		}
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].Score > filtered[j].Score
	})
	return filtered
}

// Targets returns the configured target names in evaluation order.
func (m *Matcher) Targets() []string {
	names := make([]string, 0, len(m.targets))
	for _, target := range m.targets {
		names = append(names, target.Name)
	}
	return names
}

func evaluateTarget(input string, target Target) Outcome {
	if len(target.Patterns) > 0 {
		return evaluatePatterns(input, target)
	}
	if target.Strategy == nil {
		return noMatch(0)
	}
	outcome := target.Strategy.Match(input, target.Candidates)
	if outcome.IsMatch() && target.Validate != nil && !target.Validate(outcome.Matched) {
		return noMatch(outcome.Score)
	}
	return outcome
}

// evaluatePatterns applies the target's expressions in order and extracts
// the first capturing group (or the full match) of the first hit.
func evaluatePatterns(input string, target Target) Outcome {
	for _, pattern := range target.Patterns {
		loc := pattern.FindStringSubmatchIndex(input)
		if loc == nil {
			continue
		}
		start, end := loc[0], loc[1]
		if len(loc) >= 4 && loc[2] >= 0 {
			start, end = loc[2], loc[3]
		}
		matched := input[start:end]
		if target.Validate != nil && !target.Validate(matched) {
			continue
		}
		return Outcome{
			Matched: matched,
			Score:   1,
			// Pattern extraction proves shape, not identity, so confidence
			// sits below an exact candidate hit.
			Confidence: 0.9,
			Span:       &Span{Start: start, Length: end - start},
			Strategy:   StrategyPattern,
			BestScore:  1,
		}
	}
	return noMatch(0)
}
