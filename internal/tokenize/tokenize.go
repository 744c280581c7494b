// Package tokenize implements the single tokenizer contract shared by
// ingestion and query parsing: ASCII-lowercase, punctuation-stripped
// whitespace splitting.
package tokenize

import "strings"

// Tokenize splits text on ASCII whitespace, strips ASCII punctuation
// from each field, lowercases the result, and drops empty tokens. Index
// time and query time must use the same function so that term lookups
// agree.
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(text, isASCIISpace)
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		term := stripPunctuation(f)
		if term == "" {
			continue
		}
		out = append(out, term)
	}
	return out
}

func isASCIISpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	default:
		return false
	}
}

func stripPunctuation(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r - 'A' + 'a')
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			// ASCII punctuation (and any non-ASCII rune) is stripped.
		}
	}
	return b.String()
}
