package restodex

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kailas-cloud/restodex/internal/transport/api"
)

// Restaurant is a stored restaurant. Score is set on search hits only.
type Restaurant struct {
	ID         string
	Name       string
	Cuisine    string
	Location   string
	Rating     float64
	PriceRange string
	Score      *float64
}

// NewRestaurant is the payload of Create. The service assigns the id.
type NewRestaurant struct {
	Name       string   `json:"name"`
	Cuisine    string   `json:"cuisine,omitempty"`
	Location   string   `json:"location,omitempty"`
	Rating     *float64 `json:"rating,omitempty"`
	PriceRange string   `json:"priceRange,omitempty"`
}

// WriteResult acknowledges a create or delete.
type WriteResult struct {
	ID     string
	Index  string
	Result string
}

// HealthStatus represents the aggregated service health.
type HealthStatus struct {
	Status string            // "ok", "degraded", "error"
	Checks map[string]string // component -> "ok"/"error"
}

// Client talks to a restodex server over HTTP.
type Client struct {
	baseURL *url.URL
	apiKey  string
	http    *http.Client
	obs     *observer
}

// New creates a Client for the server at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("restodex: base URL required")
	}
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("restodex: parse base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("restodex: unsupported scheme %q", u.Scheme)
	}

	cfg := &clientConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}
	hc := cfg.httpClient
	if hc == nil {
		hc = &http.Client{}
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	return &Client{baseURL: u, apiKey: cfg.apiKey, http: hc, obs: obs}, nil
}

// Search runs a relevance search. Queries shorter than three characters
// come back empty without error.
func (c *Client) Search(ctx context.Context, q string) (_ []Restaurant, err error) {
	start := time.Now()
	defer func() { c.obs.observe("search", start, err) }()

	var items []api.Restaurant
	if err = c.do(ctx, http.MethodGet, "/restaurants/search", url.Values{"q": {q}}, nil, &items); err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	return fromAPIRestaurants(items), nil
}

// List returns every stored restaurant, unranked.
func (c *Client) List(ctx context.Context) (_ []Restaurant, err error) {
	start := time.Now()
	defer func() { c.obs.observe("list", start, err) }()

	var items []api.Restaurant
	if err = c.do(ctx, http.MethodGet, "/restaurants", nil, nil, &items); err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	return fromAPIRestaurants(items), nil
}

// Create stores a restaurant and returns the write acknowledgement.
func (c *Client) Create(ctx context.Context, r NewRestaurant) (_ WriteResult, err error) {
	start := time.Now()
	defer func() { c.obs.observe("create", start, err) }()

	var res api.WriteResult
	if err = c.do(ctx, http.MethodPost, "/restaurants", nil, r, &res); err != nil {
		return WriteResult{}, fmt.Errorf("create: %w", err)
	}
	return fromAPIWriteResult(res), nil
}

// Delete removes a restaurant. Unknown ids return an error matching ErrRestaurantNotFound.
func (c *Client) Delete(ctx context.Context, id string) (_ WriteResult, err error) {
	start := time.Now()
	defer func() { c.obs.observe("delete", start, err) }()

	var res api.WriteResult
	if err = c.do(ctx, http.MethodDelete, "/restaurants/"+url.PathEscape(id), nil, nil, &res); err != nil {
		return WriteResult{}, fmt.Errorf("delete %s: %w", id, err)
	}
	return fromAPIWriteResult(res), nil
}

// Health reports service health. A degraded service answers 503 but still
// carries a report, so it is returned without error.
func (c *Client) Health(ctx context.Context) (_ HealthStatus, err error) {
	start := time.Now()
	defer func() { c.obs.observe("health", start, err) }()

	var res api.HealthResponse
	err = c.do(ctx, http.MethodGet, "/health", nil, nil, &res)
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusServiceUnavailable && res.Status != "" {
		err = nil
	}
	if err != nil {
		return HealthStatus{}, fmt.Errorf("health: %w", err)
	}

	checks := make(map[string]string, len(res.Checks))
	for k, v := range res.Checks {
		checks[k] = string(v)
	}
	return HealthStatus{Status: string(res.Status), Checks: checks}, nil
}

// do sends one request and decodes a JSON answer into out. Non-2xx answers
// become *APIError; a 503 health body is still decoded into out.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := *c.baseURL
	u.Path += path
	if query != nil {
		u.RawQuery = query.Encode()
	}

	var reader io.Reader = http.NoBody
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode body: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	}

	if resp.StatusCode == http.StatusServiceUnavailable && path == "/health" {
		_ = json.Unmarshal(data, out)
	}
	apiErr := &APIError{StatusCode: resp.StatusCode, Code: "unknown", Message: strings.TrimSpace(string(data))}
	var er api.ErrorResponse
	if json.Unmarshal(data, &er) == nil && er.Code != "" {
		apiErr.Code = string(er.Code)
		apiErr.Message = er.Message
	}
	return apiErr
}

func fromAPIRestaurants(items []api.Restaurant) []Restaurant {
	out := make([]Restaurant, len(items))
	for i, it := range items {
		out[i] = Restaurant{
			ID:         it.Id,
			Name:       it.Name,
			Cuisine:    it.Cuisine,
			Location:   it.Location,
			Rating:     it.Rating,
			PriceRange: it.PriceRange,
			Score:      it.Score,
		}
	}
	return out
}

func fromAPIWriteResult(r api.WriteResult) WriteResult {
	return WriteResult{ID: r.Id, Index: r.Index, Result: string(r.Result)}
}
