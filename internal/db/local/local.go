// Package local evaluates structured queries in process over hash documents.
// It backs the memory and badger stores and mirrors the scoring behavior of a
// BM25 text engine closely enough for relative ranking.
package local

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"

	"github.com/kailas-cloud/restodex/internal/db"
	"github.com/kailas-cloud/restodex/internal/domain/search/analysis"
	"github.com/kailas-cloud/restodex/internal/domain/search/query"
)

// BM25 parameters.
const (
	k1 = 1.2
	b  = 0.75
)

// constantScore is assigned to keyword and wildcard matches.
const constantScore = 1.0

// Document is a stored hash.
type Document struct {
	Key    string
	Fields map[string]string
}

// Search evaluates q over the documents covered by def. Entries are ordered
// by descending score; equal scores fall back to key order.
func Search(def *db.IndexDefinition, docs []Document, q *db.TextQuery) (*db.SearchResult, error) {
	if q.Query.IsEmpty() {
		return nil, errors.New("query has no clauses")
	}
	covered := coveredDocs(def, docs)
	c := newCorpus(def, covered)

	minMatch := max(q.Query.MinimumShouldMatch, 1)
	entries := make([]db.SearchEntry, 0)
	for i, doc := range covered {
		matched := 0
		score := 0.0
		for _, clause := range q.Query.Should {
			s, ok, err := c.evaluate(i, clause)
			if err != nil {
				return nil, err
			}
			if ok {
				matched++
				score += s
			}
		}
		if matched >= minMatch {
			entries = append(entries, db.SearchEntry{
				Key:    doc.Key,
				Score:  score,
				Fields: project(doc.Fields, q.ReturnFields),
			})
		}
	}

	slices.SortStableFunc(entries, func(x, y db.SearchEntry) int {
		if r := cmp.Compare(y.Score, x.Score); r != 0 {
			return r
		}
		return strings.Compare(x.Key, y.Key)
	})

	return &db.SearchResult{Total: len(entries), Entries: page(entries, q.Offset, q.Limit)}, nil
}

// List returns the documents covered by def in key order, without scores.
func List(def *db.IndexDefinition, docs []Document, offset, limit int) *db.SearchResult {
	covered := coveredDocs(def, docs)
	slices.SortFunc(covered, func(a, b Document) int { return strings.Compare(a.Key, b.Key) })

	entries := make([]db.SearchEntry, len(covered))
	for i, d := range covered {
		entries[i] = db.SearchEntry{Key: d.Key, Fields: project(d.Fields, nil)}
	}
	return &db.SearchResult{Total: len(entries), Entries: page(entries, offset, limit)}
}

func coveredDocs(def *db.IndexDefinition, docs []Document) []Document {
	out := make([]Document, 0, len(docs))
	for _, d := range docs {
		if def.Covers(d.Key) {
			out = append(out, d)
		}
	}
	return out
}

func page(entries []db.SearchEntry, offset, limit int) []db.SearchEntry {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(entries) || limit <= 0 {
		return nil
	}
	end := min(offset+limit, len(entries))
	return entries[offset:end]
}

func project(fields map[string]string, keep []string) map[string]string {
	if len(keep) == 0 {
		out := make(map[string]string, len(fields))
		for k, v := range fields {
			out[k] = v
		}
		return out
	}
	out := make(map[string]string, len(keep))
	for _, k := range keep {
		if v, ok := fields[k]; ok {
			out[k] = v
		}
	}
	return out
}

// corpus caches analyzed field values and collection statistics for one query.
type corpus struct {
	def  *db.IndexDefinition
	docs []Document

	terms  map[string][][]string     // attribute -> per-doc terms
	df     map[string]map[string]int // attribute -> term -> document frequency
	avgLen map[string]float64
}

func newCorpus(def *db.IndexDefinition, docs []Document) *corpus {
	return &corpus{
		def:    def,
		docs:   docs,
		terms:  make(map[string][][]string),
		df:     make(map[string]map[string]int),
		avgLen: make(map[string]float64),
	}
}

func (c *corpus) evaluate(i int, clause query.Clause) (float64, bool, error) {
	f, ok := c.def.Field(clause.Attribute())
	if !ok {
		return 0, false, fmt.Errorf("unknown attribute %q in index %s", clause.Attribute(), c.def.Name)
	}

	switch cl := clause.(type) {
	case query.Match:
		switch f.Type {
		case db.IndexFieldText:
			s, ok := c.matchText(i, f, cl)
			return s, ok, nil
		case db.IndexFieldTag:
			return constantScore, slices.Contains(tagValues(f, c.docs[i].Fields[f.Name]), tagValue(f, cl.Text)), nil
		default:
			return 0, false, fmt.Errorf("match on %s field %q is not supported", f.Type, f.Attribute())
		}
	case query.Wildcard:
		segs := normalizeSegments(f, query.ParseWildcard(cl.Value))
		switch f.Type {
		case db.IndexFieldTag:
			for _, tag := range tagValues(f, c.docs[i].Fields[f.Name]) {
				if matchSegments(segs, tag) {
					return constantScore, true, nil
				}
			}
			return 0, false, nil
		case db.IndexFieldText:
			for _, term := range c.docTerms(f)[i] {
				if matchSegments(segs, term) {
					return constantScore, true, nil
				}
			}
			return 0, false, nil
		default:
			return 0, false, fmt.Errorf("wildcard on %s field %q is not supported", f.Type, f.Attribute())
		}
	default:
		return 0, false, fmt.Errorf("unsupported clause %T", clause)
	}
}

func (c *corpus) matchText(i int, f *db.IndexField, m query.Match) (float64, bool) {
	tokens := analysis.Standard(m.Text)
	if len(tokens) == 0 {
		return 0, false
	}
	docTerms := c.docTerms(f)[i]
	df := c.df[f.Attribute()]
	avg := c.avgLen[f.Attribute()]
	n := float64(len(c.docs))

	total := 0.0
	matched := 0
	for _, tok := range tokens {
		term, boost, ok := bestTerm(tok, docTerms, m.Fuzziness, m.PrefixLength)
		if !ok {
			if m.Operator == query.OperatorAnd {
				return 0, false
			}
			continue
		}
		matched++

		tf := 0.0
		for _, t := range docTerms {
			if t == term {
				tf++
			}
		}
		d := float64(df[term])
		idf := math.Log(1 + (n-d+0.5)/(d+0.5))
		norm := tf * (k1 + 1) / (tf + k1*(1-b+b*float64(len(docTerms))/avg))
		total += idf * norm * boost
	}
	return total, matched > 0
}

// docTerms analyzes attribute values for every document once per query.
func (c *corpus) docTerms(f *db.IndexField) [][]string {
	attr := f.Attribute()
	if t, ok := c.terms[attr]; ok {
		return t
	}
	terms := make([][]string, len(c.docs))
	df := make(map[string]int)
	totalLen := 0
	for i, d := range c.docs {
		terms[i] = analysis.Standard(d.Fields[f.Name])
		totalLen += len(terms[i])
		seen := make(map[string]bool, len(terms[i]))
		for _, t := range terms[i] {
			if !seen[t] {
				seen[t] = true
				df[t]++
			}
		}
	}
	avg := 1.0
	if len(c.docs) > 0 && totalLen > 0 {
		avg = float64(totalLen) / float64(len(c.docs))
	}
	c.terms[attr] = terms
	c.df[attr] = df
	c.avgLen[attr] = avg
	return terms
}

// bestTerm finds the document term closest to tok within the allowed edits.
// boost scales down fuzzy hits relative to exact ones.
func bestTerm(tok string, terms []string, fz query.Fuzziness, prefixLen int) (string, float64, bool) {
	tokLen := utf8.RuneCountInString(tok)
	edits := fz.Edits(tokLen)
	best := ""
	bestDist := -1
	for _, t := range terms {
		if t == tok {
			return t, 1, true
		}
		if edits == 0 || !samePrefix(tok, t, prefixLen) {
			continue
		}
		tLen := utf8.RuneCountInString(t)
		if abs(tLen-tokLen) > edits {
			continue
		}
		d := levenshtein.ComputeDistance(tok, t)
		if d <= edits && (bestDist < 0 || d < bestDist) {
			best, bestDist = t, d
		}
	}
	if bestDist < 0 {
		return "", 0, false
	}
	return best, 1 - float64(bestDist)/float64(max(tokLen, 1)), true
}

func samePrefix(a, b string, n int) bool {
	for range n {
		ra, sa := utf8.DecodeRuneInString(a)
		rb, sb := utf8.DecodeRuneInString(b)
		if sa == 0 || sb == 0 || ra != rb {
			return false
		}
		a, b = a[sa:], b[sb:]
	}
	return true
}

// tagValues splits a stored value into normalized tags on the field separator.
func tagValues(f *db.IndexField, v string) []string {
	sep := f.TagSeparator
	if sep == "" {
		sep = db.DefaultTagSeparator
	}
	var tags []string
	for _, part := range strings.Split(v, sep) {
		if part = strings.TrimSpace(part); part != "" {
			tags = append(tags, tagValue(f, part))
		}
	}
	return tags
}

func tagValue(f *db.IndexField, v string) string {
	if f.TagCaseSensitive {
		return v
	}
	return analysis.Lowercase(v)
}

func normalizeSegments(f *db.IndexField, segs []query.Segment) []query.Segment {
	if f.Type == db.IndexFieldTag && f.TagCaseSensitive {
		return segs
	}
	for i := range segs {
		segs[i].Literal = analysis.Lowercase(segs[i].Literal)
	}
	return segs
}

// matchSegments reports whether s matches the whole pattern.
func matchSegments(segs []query.Segment, s string) bool {
	if len(segs) == 0 {
		return s == ""
	}
	seg := segs[0]
	switch {
	case seg.Any:
		for i := 0; ; {
			if matchSegments(segs[1:], s[i:]) {
				return true
			}
			if i == len(s) {
				return false
			}
			_, size := utf8.DecodeRuneInString(s[i:])
			i += size
		}
	case seg.One:
		if s == "" {
			return false
		}
		_, size := utf8.DecodeRuneInString(s)
		return matchSegments(segs[1:], s[size:])
	default:
		if !strings.HasPrefix(s, seg.Literal) {
			return false
		}
		return matchSegments(segs[1:], s[len(seg.Literal):])
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
