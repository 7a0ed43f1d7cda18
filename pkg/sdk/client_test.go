package restodex

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kailas-cloud/restodex/internal/db/memory"
	"github.com/kailas-cloud/restodex/internal/domain"
	restaurantrepo "github.com/kailas-cloud/restodex/internal/repository/restaurant"
	"github.com/kailas-cloud/restodex/internal/transport/api"
	chiTransport "github.com/kailas-cloud/restodex/internal/transport/chi"
	healthuc "github.com/kailas-cloud/restodex/internal/usecase/health"
	indexuc "github.com/kailas-cloud/restodex/internal/usecase/index"
	restaurantuc "github.com/kailas-cloud/restodex/internal/usecase/restaurant"
)

// newTestServer runs the real HTTP stack over an in-process store.
func newTestServer(t *testing.T, ensure bool, apiKeys ...string) *httptest.Server {
	t.Helper()

	store := memory.NewStore()
	repo := restaurantrepo.New(store, restaurantrepo.Config{
		IndexName: "restaurants",
		KeyPrefix: "restodex:restaurants:",
	})
	if ensure {
		require.NoError(t, indexuc.New(repo).Ensure(context.Background()))
	}

	server := chiTransport.NewServer(
		restaurantuc.New(repo, domain.DefaultSearchConfig()),
		healthuc.New(store, repo),
		repo.IndexName(),
		zap.NewNop(),
	)
	r := chi.NewRouter()
	r.Use(chiTransport.BearerAuthMiddleware(apiKeys))
	api.HandlerWithOptions(server, api.ChiServerOptions{BaseRouter: r})

	ts := httptest.NewServer(r)
	t.Cleanup(ts.Close)
	return ts
}

func rating(v float64) *float64 { return &v }

func seed(t *testing.T, c *Client) (pizza, sushi string) {
	t.Helper()
	ctx := context.Background()

	res, err := c.Create(ctx, NewRestaurant{
		Name: "Pizza Palace", Cuisine: "Italian", Location: "Downtown", Rating: rating(4.5), PriceRange: "$$",
	})
	require.NoError(t, err)
	pizza = res.ID

	res, err = c.Create(ctx, NewRestaurant{
		Name: "Sushi Spot", Cuisine: "Japanese", Location: "Uptown", Rating: rating(3.2), PriceRange: "$$$",
	})
	require.NoError(t, err)
	sushi = res.ID
	return pizza, sushi
}

func TestNew_Validation(t *testing.T) {
	_, err := New("")
	require.Error(t, err)

	_, err = New("ftp://example.com")
	require.Error(t, err)

	c, err := New("http://localhost:8080/")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080", c.baseURL.String())
}

func TestClientOptions(t *testing.T) {
	cfg := &clientConfig{}
	hc := &http.Client{Timeout: time.Second}
	logger := slog.Default()
	reg := prometheus.NewRegistry()

	WithAPIKey("secret").apply(cfg)
	WithHTTPClient(hc).apply(cfg)
	WithLogger(logger).apply(cfg)
	WithPrometheus(reg).apply(cfg)

	assert.Equal(t, "secret", cfg.apiKey)
	assert.Same(t, hc, cfg.httpClient)
	assert.Same(t, logger, cfg.logger)
	assert.Equal(t, reg, cfg.metricsReg)
}

func TestClient_RoundTrip(t *testing.T) {
	ts := newTestServer(t, true)
	reg := prometheus.NewRegistry()
	c, err := New(ts.URL, WithPrometheus(reg))
	require.NoError(t, err)
	ctx := context.Background()

	pizza, sushi := seed(t, c)
	assert.NotEmpty(t, pizza)
	assert.NotEqual(t, pizza, sushi)

	hits, err := c.Search(ctx, "piza")
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	assert.Equal(t, pizza, hits[0].ID)
	require.NotNil(t, hits[0].Score)
	assert.Equal(t, "$$", hits[0].PriceRange)

	hits, err = c.Search(ctx, "xy")
	require.NoError(t, err)
	assert.Empty(t, hits)

	all, err := c.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	for _, r := range all {
		assert.Nil(t, r.Score, "listing carries no score")
	}

	res, err := c.Delete(ctx, sushi)
	require.NoError(t, err)
	assert.Equal(t, WriteResult{ID: sushi, Index: "restaurants", Result: "deleted"}, res)

	_, err = c.Delete(ctx, sushi)
	require.ErrorIs(t, err, ErrRestaurantNotFound)

	ops := testutil.ToFloat64(c.obs.metrics.operations.WithLabelValues("delete", "error"))
	assert.Equal(t, float64(1), ops)
}

func TestClient_Errors(t *testing.T) {
	ts := newTestServer(t, false)
	c, err := New(ts.URL)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = c.Search(ctx, "pizza")
	require.ErrorIs(t, err, ErrIndexNotFound)

	_, err = c.Create(ctx, NewRestaurant{Name: " "})
	require.ErrorIs(t, err, ErrInvalidRestaurant)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
}

func TestClient_Auth(t *testing.T) {
	ts := newTestServer(t, true, "secret")

	anon, err := New(ts.URL)
	require.NoError(t, err)
	_, err = anon.List(context.Background())
	require.ErrorIs(t, err, ErrUnauthorized)

	authed, err := New(ts.URL, WithAPIKey("secret"))
	require.NoError(t, err)
	_, err = authed.List(context.Background())
	require.NoError(t, err)
}

func TestClient_Health(t *testing.T) {
	healthy, err := New(newTestServer(t, true).URL)
	require.NoError(t, err)
	status, err := healthy.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ok", status.Status)
	assert.Equal(t, "ok", status.Checks["index"])

	degraded, err := New(newTestServer(t, false).URL)
	require.NoError(t, err)
	status, err = degraded.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "degraded", status.Status)
	assert.Equal(t, "error", status.Checks["index"])
}

func TestAPIError_Unwrap(t *testing.T) {
	tests := []struct {
		code string
		want error
	}{
		{"restaurant_not_found", ErrRestaurantNotFound},
		{"validation_failed", ErrInvalidRestaurant},
		{"invalid_query", ErrInvalidQuery},
		{"index_not_found", ErrIndexNotFound},
		{"unauthorized", ErrUnauthorized},
		{"internal_error", nil},
	}
	for _, tt := range tests {
		e := &APIError{StatusCode: 400, Code: tt.code}
		assert.Equal(t, tt.want, e.Unwrap(), tt.code)
	}
	assert.Contains(t, (&APIError{StatusCode: 404, Code: "restaurant_not_found", Message: "gone"}).Error(), "404")
}

func TestDebouncer_DrivesClient(t *testing.T) {
	c, err := New(newTestServer(t, true).URL)
	require.NoError(t, err)
	pizza, _ := seed(t, c)

	clock := newFakeClock()
	updates := make(chan Update, 4)
	d := NewDebouncer(c, func(u Update) { updates <- u }, WithClock(clock))
	defer d.Close()

	for _, q := range []string{"p", "pi", "piz", "piza"} {
		d.Input(q)
		clock.Advance(50 * time.Millisecond)
	}
	clock.Advance(DefaultQuietPeriod)

	u := recvUpdate(t, updates)
	require.NoError(t, u.Err)
	assert.Equal(t, "piza", u.Query)
	require.NotEmpty(t, u.Results)
	assert.Equal(t, pizza, u.Results[0].ID)
}

func TestObserver_NilSafe(t *testing.T) {
	var obs *observer
	obs.observe("search", time.Now(), nil)
}

func TestObserver_ReusesRegisteredMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	a, err := newObserver(nil, reg)
	require.NoError(t, err)
	b, err := newObserver(slog.Default(), reg)
	require.NoError(t, err)
	assert.Same(t, a.metrics.operations, b.metrics.operations)

	b.observe("list", time.Now(), nil)
	assert.Equal(t, float64(1), testutil.ToFloat64(a.metrics.operations.WithLabelValues("list", "ok")))
}
