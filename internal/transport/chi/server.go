package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/restodex/internal/domain"
	domrest "github.com/kailas-cloud/restodex/internal/domain/restaurant"
	"github.com/kailas-cloud/restodex/internal/domain/search/result"
	"github.com/kailas-cloud/restodex/internal/transport/api"
	healthuc "github.com/kailas-cloud/restodex/internal/usecase/health"
	restaurantuc "github.com/kailas-cloud/restodex/internal/usecase/restaurant"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server implements api.ServerInterface for the chi router.
type Server struct {
	api.Unimplemented
	restaurants   *restaurantuc.Service
	health        *healthuc.Service
	index         string
	logger        *zap.Logger
	errorHandlers []errorHandler
}

var _ api.ServerInterface = (*Server)(nil)

// NewServer creates an HTTP API server. index is echoed in write envelopes.
func NewServer(
	restaurants *restaurantuc.Service,
	health *healthuc.Service,
	index string,
	logger *zap.Logger,
) *Server {
	s := &Server{
		restaurants: restaurants,
		health:      health,
		index:       index,
		logger:      logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrRestaurantNotFound, http.StatusNotFound, api.ErrorResponseCodeRestaurantNotFound),
		sentinelHandler(domain.ErrInvalidRestaurant, http.StatusBadRequest, api.ErrorResponseCodeValidationFailed),
		sentinelHandler(domain.ErrInvalidQuery, http.StatusBadRequest, api.ErrorResponseCodeInvalidQuery),
		sentinelHandler(domain.ErrIndexNotFound, http.StatusServiceUnavailable, api.ErrorResponseCodeIndexNotFound),
	}
	return s
}

// SearchRestaurants handles GET /restaurants/search.
func (s *Server) SearchRestaurants(w http.ResponseWriter, r *http.Request, params api.SearchRestaurantsParams) {
	var q string
	if params.Q != nil {
		q = *params.Q
	}

	results, err := s.restaurants.Search(r.Context(), q)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resultsToAPI(results))
}

// ListRestaurants handles GET /restaurants.
func (s *Server) ListRestaurants(w http.ResponseWriter, r *http.Request) {
	results, err := s.restaurants.List(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resultsToAPI(results))
}

// CreateRestaurant handles POST /restaurants.
func (s *Server) CreateRestaurant(w http.ResponseWriter, r *http.Request) {
	var req api.CreateRestaurantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, api.ErrorResponseCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	rest, err := restaurantFromAPI(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, api.ErrorResponseCodeValidationFailed, err.Error())
		return
	}

	id, err := s.restaurants.Create(r.Context(), rest)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, api.WriteResult{
		Id:     id,
		Index:  s.index,
		Result: api.WriteResultResultCreated,
	})
}

// DeleteRestaurant handles DELETE /restaurants/{id}.
func (s *Server) DeleteRestaurant(w http.ResponseWriter, r *http.Request, id string) {
	if err := s.restaurants.Delete(r.Context(), id); err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, api.WriteResult{
		Id:     id,
		Index:  s.index,
		Result: api.WriteResultResultDeleted,
	})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]api.HealthResponseChecks)
	for k, v := range report.Checks {
		checks[k] = api.HealthResponseChecks(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, api.HealthResponse{
		Status: api.HealthResponseStatus(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code api.ErrorResponseCode, message string) {
	writeJSON(w, status, api.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrRestaurantNotFound,
		domain.ErrInvalidRestaurant,
		domain.ErrInvalidQuery,
		domain.ErrIndexNotFound,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code api.ErrorResponseCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, api.ErrorResponseCodeInternalError, "internal error")
}

func restaurantFromAPI(req api.CreateRestaurantRequest) (domrest.Restaurant, error) {
	rest, err := domrest.New(
		req.Name,
		derefString(req.Cuisine),
		derefString(req.Location),
		derefFloat(req.Rating),
		domrest.PriceRange(derefString(req.PriceRange)),
	)
	if err != nil {
		return domrest.Restaurant{}, fmt.Errorf("build restaurant: %w", err)
	}
	return rest, nil
}

func resultsToAPI(results []result.Result) []api.Restaurant {
	items := make([]api.Restaurant, len(results))
	for i := range results {
		items[i] = resultToAPI(&results[i])
	}
	return items
}

func resultToAPI(r *result.Result) api.Restaurant {
	rest := r.Restaurant()
	item := api.Restaurant{
		Id:         r.ID(),
		Name:       rest.Name(),
		Cuisine:    rest.Cuisine(),
		Location:   rest.Location(),
		Rating:     rest.Rating(),
		PriceRange: string(rest.PriceRange()),
	}
	if r.Scored() {
		score := r.Score()
		item.Score = &score
	}
	return item
}

func derefString(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func derefFloat(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}
