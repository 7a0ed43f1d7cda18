package index

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kailas-cloud/restodex/internal/db/memory"
	"github.com/kailas-cloud/restodex/internal/domain"
	"github.com/kailas-cloud/restodex/internal/metrics"
	"github.com/kailas-cloud/restodex/internal/repository/restaurant"
)

// --- Mocks ---

type mockRepo struct {
	exists      bool
	existsErr   error
	createErr   error
	createCalls int
}

func (m *mockRepo) IndexName() string { return "restaurants" }

func (m *mockRepo) IndexExists(_ context.Context) (bool, error) {
	return m.exists, m.existsErr
}

func (m *mockRepo) CreateIndex(_ context.Context) error {
	m.createCalls++
	return m.createErr
}

// --- Tests ---

func TestEnsure_CreatesMissingIndex(t *testing.T) {
	repo := &mockRepo{}
	before := testutil.ToFloat64(metrics.IndexEnsureTotal.WithLabelValues(metrics.EnsureCreated))

	if err := New(repo).Ensure(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.createCalls != 1 {
		t.Errorf("expected one create, got %d", repo.createCalls)
	}
	after := testutil.ToFloat64(metrics.IndexEnsureTotal.WithLabelValues(metrics.EnsureCreated))
	if after-before != 1 {
		t.Errorf("expected created counter to grow by 1, got %f", after-before)
	}
}

func TestEnsure_ExistingIndexIsNoop(t *testing.T) {
	repo := &mockRepo{exists: true}
	if err := New(repo).Ensure(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.createCalls != 0 {
		t.Errorf("expected no create, got %d", repo.createCalls)
	}
}

func TestEnsure_LostRaceIsBenign(t *testing.T) {
	repo := &mockRepo{createErr: domain.ErrIndexExists}
	if err := New(repo).Ensure(context.Background()); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}

func TestEnsure_Errors(t *testing.T) {
	boom := errors.New("connection refused")

	repo := &mockRepo{existsErr: boom}
	if err := New(repo).Ensure(context.Background()); !errors.Is(err, boom) {
		t.Errorf("expected wrapped exists error, got %v", err)
	}

	repo = &mockRepo{createErr: boom}
	if err := New(repo).Ensure(context.Background()); !errors.Is(err, boom) {
		t.Errorf("expected wrapped create error, got %v", err)
	}
}

func TestEnsure_TwiceOnStore(t *testing.T) {
	store := memory.NewStore()
	repo := restaurant.New(store, restaurant.Config{IndexName: "restaurants", KeyPrefix: "r:"})
	m := New(repo)

	for i := range 2 {
		if err := m.Ensure(context.Background()); err != nil {
			t.Fatalf("ensure #%d: %v", i+1, err)
		}
	}
	ok, err := store.IndexExists(context.Background(), "restaurants")
	if err != nil || !ok {
		t.Errorf("IndexExists = %v, %v", ok, err)
	}
}

func TestEnsure_ConcurrentStartups(t *testing.T) {
	store := memory.NewStore()
	cfg := restaurant.Config{IndexName: "restaurants", KeyPrefix: "r:"}

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- New(restaurant.New(store, cfg)).Ensure(context.Background())
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	}
}
