// Package query models structured full-text search requests independently of
// the store that executes them.
package query

import "strings"

// Fuzziness is the allowed edit distance for a match clause.
// FuzzinessAuto scales the distance with the length of each term.
type Fuzziness int

// FuzzinessAuto picks 0, 1 or 2 edits depending on term length.
const FuzzinessAuto Fuzziness = -1

// Edits returns the edit distance allowed for a term of termLen runes.
func (f Fuzziness) Edits(termLen int) int {
	if f != FuzzinessAuto {
		if f < 0 {
			return 0
		}
		return int(f)
	}
	switch {
	case termLen <= 2:
		return 0
	case termLen <= 5:
		return 1
	default:
		return 2
	}
}

// Operator combines the terms of a match clause.
type Operator string

const (
	// OperatorOr matches when any term matches.
	OperatorOr Operator = "or"
	// OperatorAnd matches when every term matches.
	OperatorAnd Operator = "and"
)

// Clause is one condition of a Bool query.
type Clause interface {
	// Attribute is the index attribute the clause targets.
	Attribute() string
	isClause()
}

// Match is an analyzed, optionally fuzzy, term match on a TEXT field.
type Match struct {
	Field     string
	Text      string
	Fuzziness Fuzziness
	// PrefixLength is the number of leading runes that must match exactly.
	PrefixLength int
	Operator     Operator
}

// Attribute implements Clause.
func (m Match) Attribute() string { return m.Field }
func (Match) isClause()           {}

// Wildcard matches a glob pattern against the whole value of a keyword field.
// '*' matches any run of runes, '?' one rune, '\' escapes the next rune.
type Wildcard struct {
	Field string
	Value string
}

// Attribute implements Clause.
func (w Wildcard) Attribute() string { return w.Field }
func (Wildcard) isClause()           {}

// Bool is a disjunction of Should clauses; a document matches when at least
// MinimumShouldMatch of them match.
type Bool struct {
	Should             []Clause
	MinimumShouldMatch int
}

// IsEmpty reports whether the query has no clauses.
func (b Bool) IsEmpty() bool { return len(b.Should) == 0 }

var wildcardEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`)

// EscapeWildcard makes s match itself literally inside a Wildcard value.
func EscapeWildcard(s string) string {
	return wildcardEscaper.Replace(s)
}

// Contains returns a Wildcard value matching any value that contains s.
func Contains(s string) string {
	return "*" + EscapeWildcard(s) + "*"
}

// Segment is a literal run or a wildcard token of a parsed pattern.
type Segment struct {
	Literal string
	// Any is set for '*', One for '?'; Literal is empty for both.
	Any bool
	One bool
}

// ParseWildcard splits a Wildcard value into segments, resolving escapes.
func ParseWildcard(pattern string) []Segment {
	var (
		segs []Segment
		lit  strings.Builder
	)
	flush := func() {
		if lit.Len() > 0 {
			segs = append(segs, Segment{Literal: lit.String()})
			lit.Reset()
		}
	}
	escaped := false
	for _, r := range pattern {
		switch {
		case escaped:
			lit.WriteRune(r)
			escaped = false
		case r == '\\':
			escaped = true
		case r == '*':
			flush()
			if n := len(segs); n == 0 || !segs[n-1].Any {
				segs = append(segs, Segment{Any: true})
			}
		case r == '?':
			flush()
			segs = append(segs, Segment{One: true})
		default:
			lit.WriteRune(r)
		}
	}
	if escaped {
		lit.WriteRune('\\')
	}
	flush()
	return segs
}
