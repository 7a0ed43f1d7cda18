package restodex

import (
	"errors"
	"fmt"

	"github.com/kailas-cloud/restodex/internal/domain"
	"github.com/kailas-cloud/restodex/internal/transport/api"
)

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrRestaurantNotFound = domain.ErrRestaurantNotFound
	ErrInvalidRestaurant  = domain.ErrInvalidRestaurant
	ErrInvalidQuery       = domain.ErrInvalidQuery
	ErrIndexNotFound      = domain.ErrIndexNotFound
	ErrUnauthorized       = errors.New("unauthorized")
)

// APIError is a non-2xx answer from the service.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("restodex: %d %s: %s", e.StatusCode, e.Code, e.Message)
}

// Unwrap maps the error code onto the matching sentinel.
func (e *APIError) Unwrap() error {
	switch api.ErrorResponseCode(e.Code) {
	case api.ErrorResponseCodeRestaurantNotFound:
		return ErrRestaurantNotFound
	case api.ErrorResponseCodeValidationFailed:
		return ErrInvalidRestaurant
	case api.ErrorResponseCodeInvalidQuery:
		return ErrInvalidQuery
	case api.ErrorResponseCodeIndexNotFound:
		return ErrIndexNotFound
	case api.ErrorResponseCodeUnauthorized:
		return ErrUnauthorized
	default:
		return nil
	}
}
