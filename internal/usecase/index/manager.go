package index

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/restodex/internal/domain"
	"github.com/kailas-cloud/restodex/internal/logger"
	"github.com/kailas-cloud/restodex/internal/metrics"
)

// Manager makes sure the search index exists. It takes no lock: concurrent
// creators race on the store and the loser sees "already exists".
type Manager struct {
	repo Repository
}

// New creates an index manager.
func New(repo Repository) *Manager {
	return &Manager{repo: repo}
}

// Ensure creates the index when it is missing. Safe to call repeatedly.
func (m *Manager) Ensure(ctx context.Context) error {
	ctx = logger.WithFields(ctx, zap.String("index", m.repo.IndexName()))
	log := logger.FromContext(ctx)

	exists, err := m.repo.IndexExists(ctx)
	if err != nil {
		metrics.IndexEnsureTotal.WithLabelValues(metrics.EnsureError).Inc()
		return fmt.Errorf("check index: %w", err)
	}
	if exists {
		metrics.IndexEnsureTotal.WithLabelValues(metrics.EnsureExists).Inc()
		log.Debug("Search index already present")
		return nil
	}

	if err := m.repo.CreateIndex(ctx); err != nil {
		if errors.Is(err, domain.ErrIndexExists) {
			metrics.IndexEnsureTotal.WithLabelValues(metrics.EnsureExists).Inc()
			log.Debug("Search index created concurrently")
			return nil
		}
		metrics.IndexEnsureTotal.WithLabelValues(metrics.EnsureError).Inc()
		return fmt.Errorf("create index: %w", err)
	}

	metrics.IndexEnsureTotal.WithLabelValues(metrics.EnsureCreated).Inc()
	log.Info("Search index created")
	return nil
}
