package roster

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

var foldCaser = cases.Fold()

var foldTransform = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
	width.Fold,
)

// Fold normalizes an alias for matching: case folding, diacritic
// removal, and half/full-width unification. Surrounding whitespace is
// trimmed. Folding is idempotent.
func Fold(alias string) string {
	folded := foldCaser.String(strings.TrimSpace(alias))
	out, _, err := transform.String(foldTransform, folded)
	if err != nil {
		return folded
	}
	return out
}
