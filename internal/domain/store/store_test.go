package store

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/chickenmaster/server/internal/domain/value"
)

func TestDailyRentFloors(t *testing.T) {
	s, err := New("Kim's Fried Chicken", value.Money(100), uuid.New())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if got := s.DailyRent(); got != 3 {
		t.Errorf("Expected daily rent 3 for monthly 100, got %d", got)
	}
}

func TestNewRejectsBadInput(t *testing.T) {
	owner := uuid.New()
	if _, err := New("  ", value.Money(100), owner); !errors.Is(err, value.ErrValidation) {
		t.Errorf("Expected ErrValidation for blank name, got %v", err)
	}
	if _, err := New("Shop", value.Money(-1), owner); !errors.Is(err, value.ErrValidation) {
		t.Errorf("Expected ErrValidation for negative rent, got %v", err)
	}
}

func TestInventoryAddWeightedAverage(t *testing.T) {
	inv, err := NewInventory("chicken", 10, 80, value.Money(1000))
	if err != nil {
		t.Fatalf("NewInventory failed: %v", err)
	}

	merged, err := inv.Add(10, 60, value.Money(2000))
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	if merged.Quantity != 20 {
		t.Errorf("Expected quantity 20, got %d", merged.Quantity)
	}
	if merged.Quality != 70 {
		t.Errorf("Expected weighted quality 70, got %d", merged.Quality)
	}
	if merged.PurchasePrice != 1500 {
		t.Errorf("Expected weighted price 1500, got %d", merged.PurchasePrice)
	}
}

func TestInventoryAddFloorsAverages(t *testing.T) {
	inv, _ := NewInventory("flour", 3, 50, value.Money(100))

	merged, err := inv.Add(2, 75, value.Money(151))
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	// (3*50 + 2*75) / 5 = 60, (3*100 + 2*151) / 5 = 120.4 floored
	if merged.Quality != 60 {
		t.Errorf("Expected quality 60, got %d", merged.Quality)
	}
	if merged.PurchasePrice != 120 {
		t.Errorf("Expected floored price 120, got %d", merged.PurchasePrice)
	}
}

func TestInventoryAddRejectsInvalid(t *testing.T) {
	inv, _ := NewInventory("oil", 5, 50, value.Money(100))

	if _, err := inv.Add(0, 50, value.Money(100)); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for zero quantity, got %v", err)
	}
	if _, err := inv.Add(1, 101, value.Money(100)); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for quality over 100, got %v", err)
	}
	if _, err := inv.Add(1, 50, value.Money(-1)); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for negative price, got %v", err)
	}
}

func TestInventoryRemove(t *testing.T) {
	inv, _ := NewInventory("chicken", 10, 80, value.Money(1000))

	left, err := inv.Remove(4)
	if err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if left.Quantity != 6 {
		t.Errorf("Expected quantity 6 after removal, got %d", left.Quantity)
	}

	if _, err := inv.Remove(11); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for over-removal, got %v", err)
	}
	if _, err := inv.Remove(0); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for zero removal, got %v", err)
	}
}

func TestInventoryAddThenRemoveRestoresQuantity(t *testing.T) {
	cases := []struct {
		q1, quality1 int
		price1       value.Money
		q2, quality2 int
		price2       value.Money
	}{
		{10, 80, 1000, 5, 40, 500},
		{1, 0, 0, 99, 100, 9999},
		{7, 33, 12, 3, 77, 34},
	}
	for _, c := range cases {
		inv, err := NewInventory("stock", c.q1, c.quality1, c.price1)
		if err != nil {
			t.Fatalf("NewInventory failed: %v", err)
		}
		merged, err := inv.Add(c.q2, c.quality2, c.price2)
		if err != nil {
			t.Fatalf("Add failed: %v", err)
		}
		back, err := merged.Remove(c.q2)
		if err != nil {
			t.Fatalf("Remove failed: %v", err)
		}
		// Quantity is exact; quality/price averages need not restore.
		if back.Quantity != c.q1 {
			t.Errorf("Expected quantity %d restored after add/remove, got %d", c.q1, back.Quantity)
		}
	}
}

func TestInventoryMutationsDoNotAliasOriginal(t *testing.T) {
	inv, _ := NewInventory("chicken", 10, 80, value.Money(1000))

	if _, err := inv.Add(5, 40, value.Money(500)); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if inv.Quantity != 10 || inv.Quality != 80 {
		t.Errorf("Expected original inventory untouched, got quantity=%d quality=%d", inv.Quantity, inv.Quality)
	}
}
