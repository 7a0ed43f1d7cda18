// Package api holds the HTTP contract of the restaurant service: wire types,
// the ServerInterface implemented by the chi transport and the router glue
// that binds request parameters before a handler runs.
package api

// ErrorResponseCode is a machine-readable error code.
type ErrorResponseCode string

// Defines values for ErrorResponseCode.
const (
	ErrorResponseCodeBadRequest         ErrorResponseCode = "bad_request"
	ErrorResponseCodeUnauthorized       ErrorResponseCode = "unauthorized"
	ErrorResponseCodeValidationFailed   ErrorResponseCode = "validation_failed"
	ErrorResponseCodeInvalidQuery       ErrorResponseCode = "invalid_query"
	ErrorResponseCodeRestaurantNotFound ErrorResponseCode = "restaurant_not_found"
	ErrorResponseCodeIndexNotFound      ErrorResponseCode = "index_not_found"
	ErrorResponseCodeInternalError      ErrorResponseCode = "internal_error"
)

// ErrorResponse defines model for ErrorResponse.
type ErrorResponse struct {
	Code    ErrorResponseCode `json:"code"`
	Message string            `json:"message"`
}

// CreateRestaurantRequest defines model for CreateRestaurantRequest.
type CreateRestaurantRequest struct {
	Name       string   `json:"name"`
	Cuisine    *string  `json:"cuisine,omitempty"`
	Location   *string  `json:"location,omitempty"`
	Rating     *float64 `json:"rating,omitempty"`
	PriceRange *string  `json:"priceRange,omitempty"`
}

// Restaurant defines model for Restaurant. Score is present only on search hits.
type Restaurant struct {
	Id         string   `json:"id"`
	Name       string   `json:"name"`
	Cuisine    string   `json:"cuisine"`
	Location   string   `json:"location"`
	Rating     float64  `json:"rating"`
	PriceRange string   `json:"priceRange"`
	Score      *float64 `json:"score,omitempty"`
}

// WriteResultResult defines model for WriteResult.Result.
type WriteResultResult string

// Defines values for WriteResultResult.
const (
	WriteResultResultCreated WriteResultResult = "created"
	WriteResultResultDeleted WriteResultResult = "deleted"
)

// WriteResult defines model for WriteResult.
type WriteResult struct {
	Id     string            `json:"id"`
	Index  string            `json:"index"`
	Result WriteResultResult `json:"result"`
}

// HealthResponseStatus defines model for HealthResponse.Status.
type HealthResponseStatus string

// HealthResponseChecks defines model for HealthResponse.Checks.
type HealthResponseChecks string

// HealthResponse defines model for HealthResponse.
type HealthResponse struct {
	Status HealthResponseStatus            `json:"status"`
	Checks map[string]HealthResponseChecks `json:"checks"`
}

// SearchRestaurantsParams defines parameters for SearchRestaurants.
type SearchRestaurantsParams struct {
	// Q is the free-text query. A missing value behaves like an empty query.
	Q *string `form:"q,omitempty" json:"q,omitempty"`
}
