package restaurant

import (
	"context"

	domrest "github.com/kailas-cloud/restodex/internal/domain/restaurant"
	"github.com/kailas-cloud/restodex/internal/domain/search/query"
	"github.com/kailas-cloud/restodex/internal/domain/search/result"
)

// Repository is the search index capability the engine runs against.
type Repository interface {
	// Query returns at most limit hits in descending score order.
	Query(ctx context.Context, q query.Bool, limit int) ([]result.Result, error)
	// Put stores a new document and returns its assigned id.
	Put(ctx context.Context, r domrest.Restaurant) (string, error)
	// Delete returns domain.ErrRestaurantNotFound for unknown ids.
	Delete(ctx context.Context, id string) error
	All(ctx context.Context, limit int) ([]result.Result, error)
}
