package restodex

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	apiKey     string
	httpClient *http.Client

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithAPIKey sends the key as a Bearer token on every request.
func WithAPIKey(key string) Option {
	return optionFunc(func(c *clientConfig) {
		c.apiKey = key
	})
}

// WithHTTPClient replaces the default HTTP client. Requests carry no
// timeout of their own; bound them with the client or the context.
func WithHTTPClient(hc *http.Client) Option {
	return optionFunc(func(c *clientConfig) {
		c.httpClient = hc
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}

// Debouncer defaults.
const (
	DefaultQuietPeriod    = 300 * time.Millisecond
	DefaultMinQueryLength = 3
)

// DebounceOption configures a Debouncer.
type DebounceOption func(*Debouncer)

// WithQuietPeriod sets how long input must stay unchanged before a query is issued.
func WithQuietPeriod(d time.Duration) DebounceOption {
	return func(deb *Debouncer) {
		deb.quiet = d
	}
}

// WithMinQueryLength sets the shortest trimmed input, in runes, that is sent.
func WithMinQueryLength(n int) DebounceOption {
	return func(deb *Debouncer) {
		deb.minLen = n
	}
}

// WithClock injects the time source. Tests use it to drive timers by hand.
func WithClock(c Clock) DebounceOption {
	return func(deb *Debouncer) {
		deb.clock = c
	}
}

// WithDebounceMetrics counts debouncer events on the given registerer.
func WithDebounceMetrics(reg prometheus.Registerer) DebounceOption {
	return func(deb *Debouncer) {
		deb.metricsReg = reg
	}
}

// WithDebounceLogger logs discarded and failed queries.
func WithDebounceLogger(l *slog.Logger) DebounceOption {
	return func(deb *Debouncer) {
		deb.logger = l
	}
}
