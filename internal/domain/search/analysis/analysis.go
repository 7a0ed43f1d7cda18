// Package analysis holds the text analyzers shared by the query side and the
// in-process stores.
package analysis

import (
	"strings"
	"unicode"
)

// Standard splits s on every rune that is not a letter or digit and lower-cases
// the resulting terms.
func Standard(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for i, f := range fields {
		fields[i] = strings.ToLower(f)
	}
	return fields
}

// Lowercase is the keyword normalizer: the whole value, lower-cased, untokenized.
func Lowercase(s string) string {
	return strings.ToLower(s)
}
