package result

import "github.com/kailas-cloud/restodex/internal/domain/restaurant"

// Result is a single search hit.
type Result struct {
	restaurant restaurant.Restaurant
	score      float64
	scored     bool
}

// New creates a ranked search result.
func New(r restaurant.Restaurant, score float64) Result {
	return Result{restaurant: r, score: score, scored: true}
}

// Unranked creates a listing entry that carries no relevance score.
func Unranked(r restaurant.Restaurant) Result {
	return Result{restaurant: r}
}

// ID returns the store-assigned document identifier.
func (r *Result) ID() string { return r.restaurant.ID() }

// Restaurant returns the matched document.
func (r *Result) Restaurant() restaurant.Restaurant { return r.restaurant }

// Score returns the relevance score, meaningful only within one result set.
func (r *Result) Score() float64 { return r.score }

// Scored reports whether the result came from a ranked search.
func (r *Result) Scored() bool { return r.scored }
