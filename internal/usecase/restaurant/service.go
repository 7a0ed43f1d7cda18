package restaurant

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/kailas-cloud/restodex/internal/domain"
	domrest "github.com/kailas-cloud/restodex/internal/domain/restaurant"
	"github.com/kailas-cloud/restodex/internal/domain/search/query"
	"github.com/kailas-cloud/restodex/internal/domain/search/result"
	"github.com/kailas-cloud/restodex/internal/logger"
	"github.com/kailas-cloud/restodex/internal/metrics"
)

// Service is the restaurant query engine.
type Service struct {
	repo Repository
	cfg  domain.SearchConfig
}

// New creates a restaurant service.
func New(repo Repository, cfg domain.SearchConfig) *Service {
	return &Service{repo: repo, cfg: cfg}
}

// Search runs a relevance search. Trimmed queries shorter than
// MinQueryLength runes return an empty slice without reaching the store.
func (s *Service) Search(ctx context.Context, raw string) ([]result.Result, error) {
	q := strings.TrimSpace(raw)
	n := utf8.RuneCountInString(q)

	if n < s.cfg.MinQueryLength {
		metrics.SearchQueriesTotal.WithLabelValues(metrics.OutcomeShortCircuit).Inc()
		return []result.Result{}, nil
	}
	if s.cfg.MaxQueryLength > 0 && n > s.cfg.MaxQueryLength {
		return nil, fmt.Errorf("%w: query longer than %d characters", domain.ErrInvalidQuery, s.cfg.MaxQueryLength)
	}

	results, err := s.repo.Query(ctx, BuildQuery(q), s.cfg.MaxResults)
	if err != nil {
		metrics.SearchQueriesTotal.WithLabelValues(metrics.OutcomeError).Inc()
		return nil, fmt.Errorf("search: %w", err)
	}

	metrics.SearchQueriesTotal.WithLabelValues(metrics.OutcomeOK).Inc()
	metrics.SearchResults.Observe(float64(len(results)))
	logger.FromContext(ctx).Debug("Search executed",
		zap.Int("query_runes", n),
		zap.Int("hits", len(results)),
	)

	if results == nil {
		results = []result.Result{}
	}
	return results, nil
}

// BuildQuery is the four-clause disjunction run for every search: fuzzy name
// (first rune pinned), substring on the keyword copy of name, fuzzy cuisine
// and fuzzy location. Any single clause is enough to match.
func BuildQuery(q string) query.Bool {
	return query.Bool{
		MinimumShouldMatch: 1,
		Should: []query.Clause{
			query.Match{
				Field:        domrest.AttrName,
				Text:         q,
				Fuzziness:    query.FuzzinessAuto,
				PrefixLength: 1,
				Operator:     query.OperatorOr,
			},
			query.Wildcard{
				Field: domrest.AttrNameKeyword,
				Value: query.Contains(strings.ToLower(q)),
			},
			query.Match{Field: domrest.AttrCuisine, Text: q, Fuzziness: query.FuzzinessAuto, Operator: query.OperatorOr},
			query.Match{Field: domrest.AttrLocation, Text: q, Fuzziness: query.FuzzinessAuto, Operator: query.OperatorOr},
		},
	}
}

// Create stores a restaurant and returns its assigned id. Duplicate names are allowed.
func (s *Service) Create(ctx context.Context, r domrest.Restaurant) (string, error) {
	if strings.TrimSpace(r.Name()) == "" {
		return "", fmt.Errorf("%w: name is required", domain.ErrInvalidRestaurant)
	}
	if !r.RatingInRange() {
		logger.FromContext(ctx).Warn("Rating outside expected range",
			zap.String("name", r.Name()),
			zap.Float64("rating", r.Rating()),
		)
	}

	id, err := s.repo.Put(ctx, r)
	if err != nil {
		return "", fmt.Errorf("put restaurant: %w", err)
	}
	return id, nil
}

// Delete removes a restaurant. Unknown ids propagate domain.ErrRestaurantNotFound.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete restaurant %s: %w", id, err)
	}
	return nil
}

// List returns stored restaurants without ranking or length gate.
func (s *Service) List(ctx context.Context) ([]result.Result, error) {
	results, err := s.repo.All(ctx, s.cfg.ListLimit)
	if err != nil {
		return nil, fmt.Errorf("list restaurants: %w", err)
	}
	if results == nil {
		results = []result.Result{}
	}
	return results, nil
}
