// Package match implements the identity-matching engine: exact, fuzzy, and
// hybrid strategies over candidate sets, and a multi-target matcher that
// evaluates several named targets against one input string with weighted
// aggregate scoring.
//
// Inputs are normalized (lowercased, separator runs collapsed to single
// spaces) before candidate comparison; reported spans refer to the
// normalized form for candidate targets and to the raw input for pattern
// targets.
package match
