package restodex

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/prometheus/client_golang/prometheus"
)

// Searcher runs one query. *Client satisfies it.
type Searcher interface {
	Search(ctx context.Context, q string) ([]Restaurant, error)
}

// SearchFunc adapts a function to Searcher.
type SearchFunc func(ctx context.Context, q string) ([]Restaurant, error)

// Search calls f.
func (f SearchFunc) Search(ctx context.Context, q string) ([]Restaurant, error) { return f(ctx, q) }

// Clock schedules callbacks. The default is the wall clock.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is a scheduled callback that can be stopped before it fires.
type Timer interface {
	Stop() bool
}

type wallClock struct{}

func (wallClock) AfterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }

// State is the debouncer state.
type State int

// Debouncer states.
const (
	StateIdle State = iota
	StatePending
	StateInFlight
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePending:
		return "pending"
	case StateInFlight:
		return "in_flight"
	default:
		return "unknown"
	}
}

// Update is what the caller should display.
type Update struct {
	// Generation of the query that produced the update. Zero for Cleared.
	Generation uint64
	Query      string
	// Cleared means the input became too short and results should be hidden.
	Cleared bool
	Results []Restaurant
	Err     error
}

// Debouncer turns keystrokes into at most one query per quiet period and
// displays a response only while its generation is the live one. Superseded
// requests are left running; their answers are dropped.
type Debouncer struct {
	search   Searcher
	onUpdate func(Update)

	quiet      time.Duration
	minLen     int
	clock      Clock
	ctx        context.Context
	logger     *slog.Logger
	metricsReg prometheus.Registerer
	events     *prometheus.CounterVec

	mu       sync.Mutex
	state    State
	snapshot string
	timer    Timer
	armed    uint64 // bumped on every Input so a stopped timer that already fired is ignored
	issued   uint64 // last generation handed to the searcher
	live     uint64 // generation whose answer may still be displayed, 0 if none
	closed   bool
	emitNext uint64 // next delivery ticket, taken under mu

	// Deliveries run in ticket order with no lock held, so onUpdate may call
	// back into the debouncer.
	emitMu   sync.Mutex
	emitCond *sync.Cond
	emitTurn uint64
}

// NewDebouncer creates a Debouncer that calls onUpdate with every change of
// displayed state. onUpdate runs on timer or request goroutines, one call at a
// time and in decision order. It may call Input, State and Generation.
func NewDebouncer(search Searcher, onUpdate func(Update), opts ...DebounceOption) *Debouncer {
	d := &Debouncer{
		search:   search,
		onUpdate: onUpdate,
		quiet:    DefaultQuietPeriod,
		minLen:   DefaultMinQueryLength,
		clock:    wallClock{},
		ctx:      context.Background(),
	}
	d.emitCond = sync.NewCond(&d.emitMu)
	for _, o := range opts {
		o(d)
	}
	if d.metricsReg != nil {
		events, err := newDebounceMetrics(d.metricsReg)
		if err != nil && d.logger != nil {
			d.logger.Warn("debounce metrics disabled", "error", err)
		}
		d.events = events
	}
	return d
}

// Input records the current text of the search box. It stops the pending
// timer, invalidates any in-flight query and arms a new timer.
func (d *Debouncer) Input(q string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.count(eventInput)

	if d.timer != nil {
		d.timer.Stop()
	}
	d.live = 0
	d.snapshot = q
	d.state = StatePending
	d.armed++
	token := d.armed
	d.timer = d.clock.AfterFunc(d.quiet, func() { d.fire(token) })
}

// State returns the current state.
func (d *Debouncer) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Generation returns the last issued generation.
func (d *Debouncer) Generation() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.issued
}

// Wait blocks until the debouncer is idle and every update decided so far
// has been delivered, or ctx is done. It must not be called from onUpdate.
func (d *Debouncer) Wait(ctx context.Context) error {
	tick := time.NewTicker(5 * time.Millisecond)
	defer tick.Stop()
	for {
		if d.settled() {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("wait for debouncer: %w", ctx.Err())
		case <-tick.C:
		}
	}
}

// Close stops the pending timer. Responses arriving afterwards are dropped.
func (d *Debouncer) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.closed = true
	d.live = 0
	d.state = StateIdle
}

func (d *Debouncer) fire(token uint64) {
	d.mu.Lock()
	if d.closed || token != d.armed {
		d.mu.Unlock()
		return
	}
	d.timer = nil

	q := strings.TrimSpace(d.snapshot)
	if utf8.RuneCountInString(q) < d.minLen {
		d.state = StateIdle
		d.count(eventCleared)
		d.emitLocked(Update{Query: q, Cleared: true})
		return
	}

	d.issued++
	gen := d.issued
	d.live = gen
	d.state = StateInFlight
	d.count(eventIssued)
	d.mu.Unlock()

	go d.run(gen, q)
}

func (d *Debouncer) run(gen uint64, q string) {
	results, err := d.search.Search(d.ctx, q)

	d.mu.Lock()
	if gen != d.live {
		d.count(eventStale)
		d.mu.Unlock()
		if d.logger != nil {
			d.logger.Debug("stale response dropped", "generation", gen, "query", q)
		}
		return
	}
	d.live = 0
	d.state = StateIdle
	if err != nil {
		d.count(eventFailed)
		if d.logger != nil {
			d.logger.Warn("search failed", "generation", gen, "query", q, "error", err)
		}
	} else {
		d.count(eventDisplayed)
	}
	d.emitLocked(Update{Generation: gen, Query: q, Results: results, Err: err})
}

// settled reports an idle state whose updates have all been delivered.
func (d *Debouncer) settled() bool {
	d.mu.Lock()
	idle := d.state == StateIdle
	taken := d.emitNext
	d.mu.Unlock()
	if !idle {
		return false
	}
	d.emitMu.Lock()
	defer d.emitMu.Unlock()
	return d.emitTurn == taken
}

// emitLocked hands u to the caller in decision order. It must be called with
// mu held; it takes a ticket, releases mu and delivers once the ticket is up.
func (d *Debouncer) emitLocked(u Update) {
	ticket := d.emitNext
	d.emitNext++
	d.mu.Unlock()

	d.emitMu.Lock()
	for d.emitTurn != ticket {
		d.emitCond.Wait()
	}
	d.emitMu.Unlock()

	defer func() {
		d.emitMu.Lock()
		d.emitTurn++
		d.emitCond.Broadcast()
		d.emitMu.Unlock()
	}()
	if d.onUpdate != nil {
		d.onUpdate(u)
	}
}

func (d *Debouncer) count(event string) {
	if d.events != nil {
		d.events.WithLabelValues(event).Inc()
	}
}
