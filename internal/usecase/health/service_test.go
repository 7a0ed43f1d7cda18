package health

import (
	"context"
	"errors"
	"testing"
)

// --- Mocks ---

type mockDBPinger struct {
	err error
}

func (m *mockDBPinger) Ping(_ context.Context) error { return m.err }

type mockIndexChecker struct {
	exists bool
	err    error
}

func (m *mockIndexChecker) IndexExists(_ context.Context) (bool, error) { return m.exists, m.err }

// --- Tests ---

func TestCheck(t *testing.T) {
	tests := []struct {
		name       string
		db         error
		index      *mockIndexChecker
		wantStatus Status
		wantDB     CheckResult
		wantIndex  CheckResult
	}{
		{"all healthy", nil, &mockIndexChecker{exists: true}, Healthy, CheckOK, CheckOK},
		{"index missing", nil, &mockIndexChecker{}, Degraded, CheckOK, CheckError},
		{"index error", nil, &mockIndexChecker{err: errors.New("timeout")}, Degraded, CheckOK, CheckError},
		{"db down", errors.New("conn refused"), &mockIndexChecker{err: errors.New("conn refused")}, Unhealthy, CheckError, CheckError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New(&mockDBPinger{err: tt.db}, tt.index).Check(context.Background())
			if r.Status != tt.wantStatus {
				t.Errorf("status = %q, want %q", r.Status, tt.wantStatus)
			}
			if r.Checks["database"] != tt.wantDB {
				t.Errorf("database = %q, want %q", r.Checks["database"], tt.wantDB)
			}
			if r.Checks["index"] != tt.wantIndex {
				t.Errorf("index = %q, want %q", r.Checks["index"], tt.wantIndex)
			}
		})
	}
}

func TestCheck_NoIndexChecker(t *testing.T) {
	r := New(&mockDBPinger{}, nil).Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	if _, ok := r.Checks["index"]; ok {
		t.Error("index check should be absent when checker is nil")
	}
}

func TestCheck_NoIndexChecker_DBError(t *testing.T) {
	r := New(&mockDBPinger{err: errors.New("fail")}, nil).Check(context.Background())

	if r.Status != Unhealthy {
		t.Errorf("expected %q, got %q", Unhealthy, r.Status)
	}
	if r.Checks["database"] != CheckError {
		t.Error("expected database error")
	}
}
