package restaurant

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/kailas-cloud/restodex/internal/db"
	"github.com/kailas-cloud/restodex/internal/domain"
	domrest "github.com/kailas-cloud/restodex/internal/domain/restaurant"
	"github.com/kailas-cloud/restodex/internal/domain/search/query"
	"github.com/kailas-cloud/restodex/internal/domain/search/result"
)

// store is the consumer interface for restaurants (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	Del(ctx context.Context, key string) error
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
	Search(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error)
	SearchList(ctx context.Context, index string, offset, limit int) (*db.SearchResult, error)
}

// Config names the index and the key namespace it covers.
type Config struct {
	IndexName string
	KeyPrefix string
}

// Repo implements usecase/restaurant.Repository and usecase/index.Repository.
type Repo struct {
	store store
	cfg   Config
	newID func() string
}

// New creates a restaurant repository.
func New(s store, cfg Config) *Repo {
	return &Repo{store: s, cfg: cfg, newID: uuid.NewString}
}

// WithIDGenerator replaces the uuid generator.
func (r *Repo) WithIDGenerator(fn func() string) *Repo {
	if fn != nil {
		r.newID = fn
	}
	return r
}

// IndexName returns the configured index name.
func (r *Repo) IndexName() string {
	return r.cfg.IndexName
}

// IndexExists reports whether the restaurant index has been created.
func (r *Repo) IndexExists(ctx context.Context) (bool, error) {
	ok, err := r.store.IndexExists(ctx, r.cfg.IndexName)
	if err != nil {
		return false, fmt.Errorf("index exists %s: %w", r.cfg.IndexName, err)
	}
	return ok, nil
}

// CreateIndex creates the restaurant index. A lost creation race surfaces as
// domain.ErrIndexExists.
func (r *Repo) CreateIndex(ctx context.Context) error {
	def, err := buildIndex(r.cfg.IndexName, r.cfg.KeyPrefix)
	if err != nil {
		return fmt.Errorf("build index: %w", err)
	}
	if err := r.store.CreateIndex(ctx, def); err != nil {
		if errors.Is(err, db.ErrIndexExists) {
			return domain.ErrIndexExists
		}
		return fmt.Errorf("create index %s: %w", r.cfg.IndexName, err)
	}
	return nil
}

// Query runs q and returns at most limit hits in store order.
func (r *Repo) Query(ctx context.Context, q query.Bool, limit int) ([]result.Result, error) {
	sr, err := r.store.Search(ctx, &db.TextQuery{
		IndexName: r.cfg.IndexName,
		Query:     q,
		Limit:     limit,
	})
	if err != nil {
		if errors.Is(err, db.ErrIndexNotFound) {
			return nil, domain.ErrIndexNotFound
		}
		return nil, fmt.Errorf("search %s: %w", r.cfg.IndexName, err)
	}

	results := make([]result.Result, 0, len(sr.Entries))
	for _, e := range sr.Entries {
		rest := parseHashFields(idFromKey(r.cfg.KeyPrefix, e.Key), e.Fields)
		results = append(results, result.New(rest, e.Score))
	}
	return results, nil
}

// Put stores a new restaurant under a fresh id and returns it.
func (r *Repo) Put(ctx context.Context, rest domrest.Restaurant) (string, error) {
	id := r.newID()
	key := r.key(id)
	if err := r.store.HSet(ctx, key, buildHashFields(&rest)); err != nil {
		return "", fmt.Errorf("hset %s: %w", key, err)
	}
	return id, nil
}

// Delete removes a restaurant by id.
func (r *Repo) Delete(ctx context.Context, id string) error {
	key := r.key(id)
	if err := r.store.Del(ctx, key); err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domain.ErrRestaurantNotFound
		}
		return fmt.Errorf("del %s: %w", key, err)
	}
	return nil
}

// All returns up to limit stored restaurants, unranked.
func (r *Repo) All(ctx context.Context, limit int) ([]result.Result, error) {
	sr, err := r.store.SearchList(ctx, r.cfg.IndexName, 0, limit)
	if err != nil {
		if errors.Is(err, db.ErrIndexNotFound) {
			return nil, domain.ErrIndexNotFound
		}
		return nil, fmt.Errorf("list %s: %w", r.cfg.IndexName, err)
	}

	results := make([]result.Result, 0, len(sr.Entries))
	for _, e := range sr.Entries {
		results = append(results, result.Unranked(parseHashFields(idFromKey(r.cfg.KeyPrefix, e.Key), e.Fields)))
	}
	return results, nil
}

func (r *Repo) key(id string) string {
	return r.cfg.KeyPrefix + id
}
