package match

import "strings"

// token is a normalized word of the input with its position in the
// normalized string.
type token struct {
	text  string
	start int
}

func isSeparator(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z':
		return false
	case r >= 'A' && r <= 'Z':
		return false
	case r >= '0' && r <= '9':
		return false
	}
	return true
}

// normalize lowercases s and collapses separator runs into single spaces.
// "Mahros_finished-points.kmz" -> "mahros finished points kmz".
func normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	pendingSpace := false
	for _, r := range strings.ToLower(s) {
		if isSeparator(r) {
			if b.Len() > 0 {
				pendingSpace = true
			}
			continue
		}
		if pendingSpace {
			b.WriteByte(' ')
			pendingSpace = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

// tokenize splits the normalized form of s into tokens with positions.
func tokenize(s string) []token {
	norm := normalize(s)
	if norm == "" {
		return nil
	}
	tokens := make([]token, 0, 8)
	start := 0
	for i := 0; i <= len(norm); i++ {
		if i == len(norm) || norm[i] == ' ' {
			if i > start {
				tokens = append(tokens, token{text: norm[start:i], start: start})
			}
			start = i + 1
		}
	}
	return tokens
}

// windowText joins tokens[i:j] back into the normalized spelling and
// returns it with the window's span in the normalized string.
func windowText(tokens []token, i, j int) (string, Span) {
	parts := make([]string, 0, j-i)
	for _, tok := range tokens[i:j] {
		parts = append(parts, tok.text)
	}
	text := strings.Join(parts, " ")
	return text, Span{Start: tokens[i].start, Length: len(text)}
}
