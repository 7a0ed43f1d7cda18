package result

import (
	"testing"

	"github.com/kailas-cloud/restodex/internal/domain/restaurant"
)

func TestNew(t *testing.T) {
	rest := restaurant.Reconstruct("doc-1", "Pizza Palace", "Italian", "Downtown", 4.5, "$$")
	r := New(rest, 1.25)

	if r.ID() != "doc-1" {
		t.Errorf("ID() = %q", r.ID())
	}
	if r.Score() != 1.25 {
		t.Errorf("Score() = %f", r.Score())
	}
	if !r.Scored() {
		t.Error("Scored() = false for a ranked result")
	}
	got := r.Restaurant()
	if got.Name() != "Pizza Palace" {
		t.Errorf("Restaurant().Name() = %q", got.Name())
	}
}

func TestUnranked(t *testing.T) {
	rest := restaurant.Reconstruct("doc-2", "Sushi Spot", "Japanese", "Uptown", 3.2, "$$$")
	r := Unranked(rest)

	if r.Scored() {
		t.Error("Scored() = true for a listing entry")
	}
	if r.Score() != 0 {
		t.Errorf("Score() = %f, want 0", r.Score())
	}
	if r.ID() != "doc-2" {
		t.Errorf("ID() = %q", r.ID())
	}
}
