package index

import "context"

// Repository exposes the lifecycle of the configured search index.
type Repository interface {
	IndexName() string
	IndexExists(ctx context.Context) (bool, error)
	// CreateIndex returns domain.ErrIndexExists when another creator won.
	CreateIndex(ctx context.Context) error
}
