package research

import (
	"errors"
	"testing"

	"github.com/chickenmaster/server/internal/domain/value"
)

func TestNewValidates(t *testing.T) {
	if _, err := New(KindRecipe, "", "desc", 10, 30); !errors.Is(err, value.ErrValidation) {
		t.Errorf("Expected ErrValidation for empty name, got %v", err)
	}
	if _, err := New(KindRecipe, "Glaze", "desc", 0, 30); !errors.Is(err, value.ErrValidation) {
		t.Errorf("Expected ErrValidation for zero difficulty, got %v", err)
	}
	if _, err := New(KindRecipe, "Glaze", "desc", 10, -1); !errors.Is(err, value.ErrValidation) {
		t.Errorf("Expected ErrValidation for negative requirement, got %v", err)
	}
}

func TestParseKind(t *testing.T) {
	cases := []struct {
		in   string
		want Kind
	}{
		{"recipe", KindRecipe},
		{"Equipment", KindEquipment},
		{" service ", KindService},
		{"FRANCHISE", KindFranchise},
	}
	for _, c := range cases {
		got, err := ParseKind(c.in)
		if err != nil {
			t.Errorf("ParseKind(%q) failed: %v", c.in, err)
		}
		if got != c.want {
			t.Errorf("Expected ParseKind(%q) = %s, got %s", c.in, c.want, got)
		}
	}

	if _, err := ParseKind("marketing"); !errors.Is(err, value.ErrValidation) {
		t.Errorf("Expected ErrValidation for an unknown kind, got %v", err)
	}
}

func TestDailyPoints(t *testing.T) {
	r, err := New(KindRecipe, "Honey Glaze", "Sweet and sticky.", 10, 30)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if got := r.DailyPoints(25); got != 0 {
		t.Errorf("Expected 0 points below the requirement, got %d", got)
	}
	if got := r.DailyPoints(30); got != 1 {
		t.Errorf("Expected the 1-point floor at the requirement, got %d", got)
	}
	if got := r.DailyPoints(55); got != 2 {
		t.Errorf("Expected (55-30)/10=2 points, got %d", got)
	}
}

func TestAdvanceCompletes(t *testing.T) {
	r, _ := New(KindEquipment, "Pressure Fryer", "Crispier.", 5, 0)

	r = r.Advance(60)
	if r.IsComplete() {
		t.Error("Expected 60 progress to be incomplete")
	}
	r = r.Advance(60)
	if !r.IsComplete() {
		t.Error("Expected capped progress to complete")
	}
	if r.Progress != 100 {
		t.Errorf("Expected progress capped at 100, got %d", r.Progress)
	}
}
