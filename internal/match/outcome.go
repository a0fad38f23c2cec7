package match

// StrategyKind identifies which strategy produced an outcome. Hybrid
// reports the sub-strategy that actually matched.
type StrategyKind string

const (
	StrategyNone    StrategyKind = "none"
	StrategyExact   StrategyKind = "exact"
	StrategyFuzzy   StrategyKind = "fuzzy"
	StrategyPattern StrategyKind = "pattern"
)

// Span locates a matched region within the evaluated string.
type Span struct {
	Start  int
	Length int
}

// Outcome is the result of attempting one target against one input.
// When Matched is empty, Score and Confidence are zero and Span is nil;
// BestScore keeps the highest below-threshold candidate score so rejections
// stay explainable.
type Outcome struct {
	Matched    string
	Score      float64
	Confidence float64
	Span       *Span
	Strategy   StrategyKind
	BestScore  float64
}

// IsMatch reports whether the target matched.
func (o Outcome) IsMatch() bool {
	return o.Matched != ""
}

func noMatch(bestScore float64) Outcome {
	return Outcome{Strategy: StrategyNone, BestScore: bestScore}
}

// Aggregate is one input evaluated against every configured target.
type Aggregate struct {
	Input    string
	Outcomes map[string]Outcome
	// Score is the weighted mean of per-target scores.
	Score float64
	// Complete is true iff every required target matched. It always equals
	// len(MissingRequired) == 0.
	Complete        bool
	MissingRequired []string
}

// Outcome returns the result for the named target.
func (a Aggregate) Outcome(target string) (Outcome, bool) {
	o, ok := a.Outcomes[target]
	return o, ok
}

// Matched reports whether the named target matched.
func (a Aggregate) Matched(target string) bool {
	o, ok := a.Outcomes[target]
	return ok && o.IsMatch()
}

// Value returns the matched substring for the named target, or "".
func (a Aggregate) Value(target string) string {
	return a.Outcomes[target].Matched
}
