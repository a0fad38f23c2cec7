package match

import "errors"

var (
	// ErrNoTargets indicates a matcher was built without any targets.
	ErrNoTargets = errors.New("match: no targets configured")
	// ErrDuplicateTarget indicates two targets share a name.
	ErrDuplicateTarget = errors.New("match: duplicate target name")
	// ErrInvalidWeight indicates a target weight was not positive.
	ErrInvalidWeight = errors.New("match: target weight must be positive")
	// ErrInvalidThreshold indicates a fuzzy threshold outside [0, 1].
	ErrInvalidThreshold = errors.New("match: fuzzy threshold must be within [0, 1]")
)
