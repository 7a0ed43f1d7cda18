package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/restodex/internal/db"
	"github.com/kailas-cloud/restodex/internal/domain/search/analysis"
	"github.com/kailas-cloud/restodex/internal/domain/search/query"
)

// maxFuzzyEdits is the largest Levenshtein distance FT.SEARCH accepts (%%%term%%%).
const maxFuzzyEdits = 3

// Search runs a scored full-text query via FT.SEARCH WITHSCORES.
// Results come back ordered by descending BM25 score.
func (s *Store) Search(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error) {
	if q.IndexName == "" {
		return nil, fmt.Errorf("index name is required")
	}
	if q.Limit <= 0 {
		return nil, fmt.Errorf("limit must be positive")
	}

	queryStr, err := renderBool(q.Query)
	if err != nil {
		return nil, err
	}

	args := []string{q.IndexName, queryStr, "WITHSCORES"}

	if len(q.ReturnFields) > 0 {
		args = append(args, "RETURN", strconv.Itoa(len(q.ReturnFields)))
		args = append(args, q.ReturnFields...)
	}

	args = append(args,
		"LIMIT", strconv.Itoa(max(q.Offset, 0)), strconv.Itoa(q.Limit),
		"DIALECT", "2",
	)

	cmd := s.b().Arbitrary("FT.SEARCH").Args(args...).Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		return nil, searchErr(err)
	}

	return parseScoredResult(raw)
}

// SearchList returns every indexed document, unscored, via a match-all FT.SEARCH.
func (s *Store) SearchList(ctx context.Context, index string, offset, limit int) (*db.SearchResult, error) {
	args := []string{index, "*", "LIMIT", strconv.Itoa(offset), strconv.Itoa(limit), "DIALECT", "2"}

	cmd := s.b().Arbitrary("FT.SEARCH").Args(args...).Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		return nil, searchErr(err)
	}

	return parseListResult(raw)
}

func searchErr(err error) error {
	if isServerErr(err, "no such index", "unknown index name") {
		return &db.Error{Op: db.OpSearch, Err: db.ErrIndexNotFound}
	}
	return &db.Error{Op: db.OpSearch, Err: err}
}

// --- Result parsing ---

func parseScoredResult(raw []rueidis.RedisMessage) (*db.SearchResult, error) {
	if len(raw) == 0 {
		return &db.SearchResult{}, nil
	}

	total, err := raw[0].AsInt64()
	if err != nil {
		return nil, fmt.Errorf("parse total: %w", err)
	}
	if total == 0 {
		return &db.SearchResult{}, nil
	}

	entries := make([]db.SearchEntry, 0, total)
	// 3-stride: [total, key1, score1, fields1, key2, score2, fields2, ...]
	for i := 1; i+2 < len(raw); i += 3 {
		key, err := raw[i].ToString()
		if err != nil {
			continue
		}

		scoreStr, err := raw[i+1].ToString()
		if err != nil {
			continue
		}
		score, err := strconv.ParseFloat(scoreStr, 64)
		if err != nil {
			continue
		}

		fields, err := raw[i+2].ToArray()
		if err != nil {
			continue
		}

		entries = append(entries, db.SearchEntry{
			Key:    key,
			Score:  score,
			Fields: parseFieldPairs(fields),
		})
	}

	return &db.SearchResult{Total: int(total), Entries: entries}, nil
}

func parseListResult(raw []rueidis.RedisMessage) (*db.SearchResult, error) {
	if len(raw) == 0 {
		return &db.SearchResult{}, nil
	}

	total, err := raw[0].AsInt64()
	if err != nil {
		return nil, fmt.Errorf("parse total: %w", err)
	}
	if total == 0 {
		return &db.SearchResult{}, nil
	}

	entries := make([]db.SearchEntry, 0, total)
	// 2-stride: [total, key1, fields1, key2, fields2, ...]
	for i := 1; i+1 < len(raw); i += 2 {
		key, err := raw[i].ToString()
		if err != nil {
			continue
		}

		fields, err := raw[i+1].ToArray()
		if err != nil {
			continue
		}

		entries = append(entries, db.SearchEntry{
			Key:    key,
			Fields: parseFieldPairs(fields),
		})
	}

	return &db.SearchResult{Total: int(total), Entries: entries}, nil
}

func parseFieldPairs(fields []rueidis.RedisMessage) map[string]string {
	m := make(map[string]string, len(fields)/2)
	for j := 0; j+1 < len(fields); j += 2 {
		name, err := fields[j].ToString()
		if err != nil {
			continue
		}
		value, err := fields[j+1].ToString()
		if err != nil {
			continue
		}
		m[name] = value
	}
	return m
}

// --- Query rendering ---

// renderBool translates a should-only bool query into FT.SEARCH syntax:
// every clause becomes a parenthesized group joined by '|'.
func renderBool(b query.Bool) (string, error) {
	if b.IsEmpty() {
		return "", errors.New("query has no clauses")
	}
	if b.MinimumShouldMatch > 1 {
		return "", fmt.Errorf("minimum_should_match %d is not supported", b.MinimumShouldMatch)
	}

	parts := make([]string, 0, len(b.Should))
	for _, c := range b.Should {
		p, err := renderClause(c)
		if err != nil {
			return "", err
		}
		if p == "" {
			continue
		}
		parts = append(parts, "("+p+")")
	}
	if len(parts) == 0 {
		return "", errors.New("query has no searchable terms")
	}
	return strings.Join(parts, " | "), nil
}

func renderClause(c query.Clause) (string, error) {
	if !db.IsValidIdentifier(c.Attribute()) {
		return "", fmt.Errorf("invalid attribute %q", c.Attribute())
	}

	switch cl := c.(type) {
	case query.Match:
		return renderMatch(cl), nil
	case query.Wildcard:
		return renderWildcard(cl), nil
	default:
		return "", fmt.Errorf("unsupported clause %T", c)
	}
}

// renderMatch targets a TEXT field. Fuzzy terms are wrapped in one '%' per
// allowed edit. FT.SEARCH has no prefix length: the leading runes of a fuzzy
// term are not pinned.
func renderMatch(m query.Match) string {
	tokens := analysis.Standard(m.Text)
	if len(tokens) == 0 {
		return ""
	}

	terms := make([]string, len(tokens))
	for i, tok := range tokens {
		edits := min(m.Fuzziness.Edits(utf8.RuneCountInString(tok)), maxFuzzyEdits)
		pad := strings.Repeat("%", edits)
		terms[i] = pad + escapeQuery(tok) + pad
	}

	sep := " | "
	if m.Operator == query.OperatorAnd {
		sep = " "
	}
	return fmt.Sprintf("@%s:(%s)", m.Field, strings.Join(terms, sep))
}

// renderWildcard targets a TAG field using w'...' pattern matching.
// Case folding follows the field: non CASESENSITIVE tags fold the pattern too.
func renderWildcard(w query.Wildcard) string {
	var sb strings.Builder
	for _, seg := range query.ParseWildcard(w.Value) {
		switch {
		case seg.Any:
			sb.WriteByte('*')
		case seg.One:
			sb.WriteByte('?')
		default:
			sb.WriteString(patternEscaper.Replace(seg.Literal))
		}
	}
	return fmt.Sprintf("@%s:{w'%s'}", w.Field, sb.String())
}

var patternEscaper = strings.NewReplacer(
	`\`, `\\`,
	`'`, `\'`,
	`*`, `\*`,
	`?`, `\?`,
)

// --- Query helpers ---

func escapeQuery(s string) string {
	return queryEscaper.Replace(s)
}

var queryEscaper = strings.NewReplacer(
	`\`, `\\`,
	`'`, `\'`,
	`"`, `\"`,
	`@`, `\@`,
	`{`, `\{`,
	`}`, `\}`,
	`(`, `\(`,
	`)`, `\)`,
	`|`, `\|`,
	`-`, `\-`,
	`~`, `\~`,
	`*`, `\*`,
	`[`, `\[`,
	`]`, `\]`,
	`!`, `\!`,
	`%`, `\%`,
	`^`, `\^`,
	`$`, `\$`,
	`<`, `\<`,
	`>`, `\>`,
	`=`, `\=`,
	`;`, `\;`,
	`+`, `\+`,
)
