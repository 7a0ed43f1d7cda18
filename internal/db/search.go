package db

import "github.com/kailas-cloud/restodex/internal/domain/search/query"

// TextQuery is the input for a scored full-text search.
type TextQuery struct {
	IndexName    string
	Query        query.Bool
	Offset       int
	Limit        int
	ReturnFields []string
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search.
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}
