// Package similarity provides the normalized string-similarity score used
// by the fuzzy matching strategies. The score blends an alignment ratio
// over the longest matching blocks of the two strings, character-set
// overlap, and a length-difference penalty.
//
// All functions are pure and deterministic; callers may memoize results by
// (a, b) pair.
package similarity
