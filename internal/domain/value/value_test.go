package value

import (
	"errors"
	"testing"
)

func TestMoneyArithmetic(t *testing.T) {
	m := Money(1000)

	if got := m.Add(500); got != 1500 {
		t.Errorf("Expected 1000+500=1500, got %d", got)
	}
	if got := m.Sub(1500); got != -500 {
		t.Errorf("Expected 1000-1500=-500, got %d", got)
	}
	if got := Money(1000).MulRatio(0.4); got != 400 {
		t.Errorf("Expected 1000*0.4=400, got %d", got)
	}
	if got := Money(100).DivFloor(30); got != 3 {
		t.Errorf("Expected 100/30 floored to 3, got %d", got)
	}
	if !Money(-1).IsNegative() {
		t.Error("Expected -1 to be negative")
	}
}

func TestMoneyFormat(t *testing.T) {
	if got := Money(1_000_000).Format(); got != "₩1,000,000" {
		t.Errorf("Expected ₩1,000,000, got %s", got)
	}
}

func TestNewPercentRejectsNegative(t *testing.T) {
	if _, err := NewPercent(-0.1); !errors.Is(err, ErrValidation) {
		t.Errorf("Expected ErrValidation for negative percent, got %v", err)
	}
}

func TestPercentSubFloorsAtZero(t *testing.T) {
	p := Percent(10)
	if got := p.Sub(25); got != 0 {
		t.Errorf("Expected 10-25 to floor at 0, got %v", got)
	}
}

func TestProgressAdvanceCaps(t *testing.T) {
	p := Progress(90)
	p = p.Advance(25)
	if p != ProgressMax {
		t.Errorf("Expected progress to cap at %d, got %d", ProgressMax, p)
	}
	if !p.IsComplete() {
		t.Error("Expected capped progress to be complete")
	}
}

func TestNewProgressRejectsOutOfRange(t *testing.T) {
	for _, v := range []int{-1, 101} {
		if _, err := NewProgress(v); !errors.Is(err, ErrValidation) {
			t.Errorf("Expected ErrValidation for progress %d, got %v", v, err)
		}
	}
}

func TestExperienceCarry(t *testing.T) {
	exp := Experience(80)

	got, levelUps := exp.Add(30)
	if levelUps != 1 {
		t.Errorf("Expected 1 level-up from 80+30, got %d", levelUps)
	}
	if got != 10 {
		t.Errorf("Expected remainder 10 from 80+30, got %d", got)
	}

	got, levelUps = Experience(50).Add(250)
	if levelUps != 3 {
		t.Errorf("Expected 3 level-ups from 50+250, got %d", levelUps)
	}
	if got != 0 {
		t.Errorf("Expected remainder 0 from 50+250, got %d", got)
	}
}

func TestStatValueLevelUp(t *testing.T) {
	s := StatValue{Base: 50, Exp: 90}
	s = s.AddExperience(15)

	if s.Base != 51 {
		t.Errorf("Expected base 51 after level-up, got %d", s.Base)
	}
	if s.Exp != 5 {
		t.Errorf("Expected remaining exp 5, got %d", s.Exp)
	}
}

func TestStatValueDiceBonus(t *testing.T) {
	if got := (StatValue{Base: 57}).DiceBonus(); got != 5 {
		t.Errorf("Expected dice bonus 5 for base 57, got %d", got)
	}
}

func TestStatValueHalved(t *testing.T) {
	s := StatValue{Base: 51, Exp: 30}
	h := s.Halved()
	if h.Base != 25 {
		t.Errorf("Expected halved base 25, got %d", h.Base)
	}
	if h.Exp != 30 {
		t.Errorf("Expected exp untouched by halving, got %d", h.Exp)
	}
}

func TestNewStatValueRejectsNegativeBase(t *testing.T) {
	if _, err := NewStatValue(-1, 0); !errors.Is(err, ErrValidation) {
		t.Errorf("Expected ErrValidation for negative base, got %v", err)
	}
}
