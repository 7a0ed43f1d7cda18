package domain

import "errors"

var (
	// ErrRestaurantNotFound signals a missing restaurant document.
	ErrRestaurantNotFound = errors.New("restaurant not found")
	// ErrInvalidRestaurant signals a restaurant that cannot be stored.
	ErrInvalidRestaurant = errors.New("invalid restaurant")
	// ErrInvalidQuery signals a search query the engine refuses to run.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrIndexNotFound signals that the search index has not been created.
	ErrIndexNotFound = errors.New("search index not found")
	// ErrIndexExists signals that another creator already built the index.
	ErrIndexExists = errors.New("search index already exists")
)
