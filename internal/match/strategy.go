package match

import (
	"strings"

	"mapwatch/internal/similarity"
)

// Strategy answers whether an input string identifies one of a set of
// candidate identifiers. Implementations are stateless and safe for
// concurrent use.
type Strategy interface {
	Match(input string, candidates []string) Outcome
}

// Exact matches when a candidate's normalized spelling is contained in the
// normalized input, or vice versa. Scores are always 0 or 1; confidence is
// 1 on a hit.
type Exact struct{}

// NewExact returns the exact containment strategy.
func NewExact() Exact { return Exact{} }

func (Exact) Match(input string, candidates []string) Outcome {
	normInput := normalize(input)
	if normInput == "" {
		return noMatch(0)
	}
	for _, candidate := range candidates {
		normCand := normalize(candidate)
		if normCand == "" {
			continue
		}
		if idx := strings.Index(normInput, normCand); idx >= 0 {
			return Outcome{
				Matched:    candidate,
				Score:      1,
				Confidence: 1,
				Span:       &Span{Start: idx, Length: len(normCand)},
				Strategy:   StrategyExact,
				BestScore:  1,
			}
		}
		// Hand-typed inputs are sometimes a fragment of the candidate.
		if strings.Contains(normCand, normInput) {
			return Outcome{
				Matched:    candidate,
				Score:      1,
				Confidence: 1,
				Span:       &Span{Start: 0, Length: len(normInput)},
				Strategy:   StrategyExact,
				BestScore:  1,
			}
		}
	}
	return noMatch(0)
}

// Fuzzy matches the best-scoring candidate at or above Threshold. Each
// candidate is compared against token windows of the input so a short
// identifier can be recovered from a long filename. PrefixBias > 0 blends
// in the prefix-aligned similarity with that weight, which suits filenames
// that place identifying tokens early.
type Fuzzy struct {
	Threshold  float64
	PrefixBias float64
}

// NewFuzzy returns a fuzzy strategy with the given threshold and no
// prefix bias.
func NewFuzzy(threshold float64) Fuzzy {
	return Fuzzy{Threshold: threshold}
}

func (f Fuzzy) Match(input string, candidates []string) Outcome {
	tokens := tokenize(input)
	if len(tokens) == 0 || len(candidates) == 0 {
		return noMatch(0)
	}

	best := noMatch(0)
	bestScore := -1.0

	for _, candidate := range candidates {
		normCand := normalize(candidate)
		if normCand == "" {
			continue
		}
		score, span := f.bestWindow(tokens, normCand)
		// Strictly-greater keeps the first candidate on ties, preserving the
		// caller's supplied ordering as the deterministic tie-break.
		if score > bestScore {
			bestScore = score
			if score >= f.Threshold {
				spanCopy := span
				best = Outcome{
					Matched:    candidate,
					Score:      score,
					Confidence: score,
					Span:       &spanCopy,
					Strategy:   StrategyFuzzy,
					BestScore:  score,
				}
			} else {
				best = noMatch(score)
			}
		}
	}
	return best
}

// bestWindow scores candidate against every run of input tokens whose
// length is within one token of the candidate's own token count, plus the
// whole input, and returns the best.
func (f Fuzzy) bestWindow(tokens []token, normCand string) (float64, Span) {
	candTokens := 1 + strings.Count(normCand, " ")
	minWin := candTokens - 1
	if minWin < 1 {
		minWin = 1
	}
	maxWin := candTokens + 1
	if maxWin > len(tokens) {
		maxWin = len(tokens)
	}

	bestScore := -1.0
	var bestSpan Span
	consider := func(text string, span Span) {
		score := f.score(text, normCand)
		if score > bestScore {
			bestScore = score
			bestSpan = span
		}
	}

	for size := minWin; size <= maxWin; size++ {
		for i := 0; i+size <= len(tokens); i++ {
			text, span := windowText(tokens, i, i+size)
			consider(text, span)
		}
	}
	if whole, span := windowText(tokens, 0, len(tokens)); whole != normCand {
		consider(whole, span)
	}
	if bestScore < 0 {
		bestScore = 0
	}
	return bestScore, bestSpan
}

func (f Fuzzy) score(a, b string) float64 {
	if f.PrefixBias <= 0 {
		return similarity.Score(a, b)
	}
	prefix, overall := similarity.PrefixScore(a, b)
	return prefix*f.PrefixBias + overall*(1-f.PrefixBias)
}

// Hybrid tries Exact first and falls back to Fuzzy. The outcome's Strategy
// field reports which sub-strategy produced the result.
type Hybrid struct {
	exact Exact
	fuzzy Fuzzy
}

// NewHybrid returns a hybrid strategy with the given fuzzy threshold.
func NewHybrid(threshold float64) Hybrid {
	return Hybrid{exact: NewExact(), fuzzy: NewFuzzy(threshold)}
}

// NewHybridPrefixBiased returns a hybrid strategy whose fuzzy fallback
// weights the prefix-aligned similarity with bias.
func NewHybridPrefixBiased(threshold, bias float64) Hybrid {
	return Hybrid{exact: NewExact(), fuzzy: Fuzzy{Threshold: threshold, PrefixBias: bias}}
}

func (h Hybrid) Match(input string, candidates []string) Outcome {
	if outcome := h.exact.Match(input, candidates); outcome.IsMatch() {
		return outcome
	}
	return h.fuzzy.Match(input, candidates)
}
