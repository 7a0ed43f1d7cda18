package domain

// SearchConfig holds query engine limits.
type SearchConfig struct {
	// MinQueryLength is the shortest trimmed query, in runes, that reaches the store.
	MinQueryLength int
	// MaxQueryLength caps the query length, in runes, before fuzzy and wildcard expansion.
	MaxQueryLength int
	// MaxResults bounds the hits returned by a single search.
	MaxResults int
	// ListLimit bounds the documents returned by a listing.
	ListLimit int
}

// DefaultSearchConfig returns the engine defaults. MaxResults matches the
// default page of the document store the service was first built against.
func DefaultSearchConfig() SearchConfig {
	return SearchConfig{
		MinQueryLength: 3,
		MaxQueryLength: 128,
		MaxResults:     10,
		ListLimit:      1000,
	}
}
