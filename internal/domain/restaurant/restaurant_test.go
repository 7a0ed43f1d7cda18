package restaurant

import "testing"

func TestNew_Valid(t *testing.T) {
	r, err := New("Pizza Palace", "Italian", "Downtown", 4.5, "$$")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.ID() != "" {
		t.Errorf("ID() = %q, want empty before store assignment", r.ID())
	}
	if r.Name() != "Pizza Palace" || r.Cuisine() != "Italian" || r.Location() != "Downtown" {
		t.Errorf("unexpected fields: %+v", r)
	}
	if r.Rating() != 4.5 {
		t.Errorf("Rating() = %v", r.Rating())
	}
	if r.PriceRange() != "$$" {
		t.Errorf("PriceRange() = %q", r.PriceRange())
	}
}

func TestNew_EmptyName(t *testing.T) {
	for _, name := range []string{"", "   ", "\t\n"} {
		if _, err := New(name, "Italian", "Downtown", 4, "$"); err == nil {
			t.Errorf("expected error for name %q", name)
		}
	}
}

func TestNew_OutOfRangeRatingAccepted(t *testing.T) {
	r, err := New("Odd Place", "", "", 7.5, "$")
	if err != nil {
		t.Fatalf("out-of-range rating must not be rejected: %v", err)
	}
	if r.RatingInRange() {
		t.Error("RatingInRange() = true for 7.5")
	}
}

func TestRatingInRange_Bounds(t *testing.T) {
	for _, v := range []float64{0, 2.5, 5} {
		r := Reconstruct("id", "n", "", "", v, "")
		if !r.RatingInRange() {
			t.Errorf("RatingInRange(%v) = false", v)
		}
	}
	for _, v := range []float64{-0.1, 5.01} {
		r := Reconstruct("id", "n", "", "", v, "")
		if r.RatingInRange() {
			t.Errorf("RatingInRange(%v) = true", v)
		}
	}
}

func TestWithID_DoesNotMutateOriginal(t *testing.T) {
	r, _ := New("Sushi Spot", "Japanese", "Uptown", 3.2, "$$$")
	withID := r.WithID("abc")
	if withID.ID() != "abc" {
		t.Errorf("WithID().ID() = %q", withID.ID())
	}
	if r.ID() != "" {
		t.Errorf("original mutated: %q", r.ID())
	}
}
