package restaurant

import (
	"errors"
	"strings"
)

// Rating bounds. Ratings outside them are stored but flagged by the service.
const (
	MinRating = 0.0
	MaxRating = 5.0
)

// PriceRange is a short case-sensitive token such as "$$".
type PriceRange string

// Restaurant is the restaurant aggregate (immutable value object).
type Restaurant struct {
	id         string
	name       string
	cuisine    string
	location   string
	rating     float64
	priceRange PriceRange
}

// New validates and creates a Restaurant without an id; the store assigns it.
func New(name, cuisine, location string, rating float64, priceRange PriceRange) (Restaurant, error) {
	if strings.TrimSpace(name) == "" {
		return Restaurant{}, errors.New("name is required")
	}
	return Restaurant{
		name:       name,
		cuisine:    cuisine,
		location:   location,
		rating:     rating,
		priceRange: priceRange,
	}, nil
}

// Reconstruct creates a Restaurant without validation (storage hydration).
func Reconstruct(id, name, cuisine, location string, rating float64, priceRange PriceRange) Restaurant {
	return Restaurant{
		id: id, name: name, cuisine: cuisine, location: location,
		rating: rating, priceRange: priceRange,
	}
}

// WithID returns a copy carrying the store-assigned id.
func (r Restaurant) WithID(id string) Restaurant {
	r.id = id
	return r
}

// ID returns the store-assigned identifier (empty before the first write).
func (r *Restaurant) ID() string { return r.id }

// Name returns the restaurant name.
func (r *Restaurant) Name() string { return r.name }

// Cuisine returns the cuisine description.
func (r *Restaurant) Cuisine() string { return r.cuisine }

// Location returns the free-text location.
func (r *Restaurant) Location() string { return r.location }

// Rating returns the average rating.
func (r *Restaurant) Rating() float64 { return r.rating }

// PriceRange returns the price category token.
func (r *Restaurant) PriceRange() PriceRange { return r.priceRange }

// RatingInRange reports whether the rating lies within [MinRating, MaxRating].
func (r *Restaurant) RatingInRange() bool {
	return r.rating >= MinRating && r.rating <= MaxRating
}

// Index attributes addressed by search queries.
const (
	AttrName        = "name"
	AttrNameKeyword = "name_keyword"
	AttrCuisine     = "cuisine"
	AttrLocation    = "location"
	AttrRating      = "rating"
	AttrPriceRange  = "priceRange"
)
