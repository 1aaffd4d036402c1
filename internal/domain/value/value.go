// Package value defines the validated scalar types shared by the game domain.
// This package is PURE and must NOT import any infrastructure packages.
package value

import (
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
)

// ErrValidation is wrapped by every construction or mutation failure in this
// package. Callers match it with errors.Is.
var ErrValidation = errors.New("validation failed")

// Money is an amount of won. Negative amounts are representable so that
// arithmetic intermediates (net profit) can go below zero; domain aggregates
// decide whether a negative balance is acceptable.
type Money int64

// Add returns the sum of two amounts.
func (m Money) Add(other Money) Money { return m + other }

// Sub returns the difference of two amounts.
func (m Money) Sub(other Money) Money { return m - other }

// MulRatio scales the amount by a ratio, truncating toward zero.
func (m Money) MulRatio(ratio float64) Money { return Money(float64(m) * ratio) }

// DivFloor divides the amount with integer floor semantics.
func (m Money) DivFloor(divisor int64) Money { return Money(int64(m) / divisor) }

// IsZero reports whether the amount is exactly zero.
func (m Money) IsZero() bool { return m == 0 }

// IsPositive reports whether the amount is above zero.
func (m Money) IsPositive() bool { return m > 0 }

// IsNegative reports whether the amount is below zero.
func (m Money) IsNegative() bool { return m < 0 }

// Format renders the amount in won with thousands separators, e.g. "₩1,000,000".
func (m Money) Format() string {
	return "₩" + humanize.Comma(int64(m))
}

// Percent is a never-negative percentage value. Fatigue and happiness use it;
// fatigue is unbounded above, happiness is capped by its own rules.
type Percent float64

// NewPercent validates that the value is not negative.
func NewPercent(v float64) (Percent, error) {
	if v < 0 {
		return 0, fmt.Errorf("%w: percent must not be negative, got %v", ErrValidation, v)
	}
	return Percent(v), nil
}

// Add returns the raised percentage.
func (p Percent) Add(delta Percent) Percent { return p + delta }

// Sub returns the lowered percentage, floored at zero.
func (p Percent) Sub(delta Percent) Percent {
	if delta >= p {
		return 0
	}
	return p - delta
}

// AtLeast reports whether the value reached the given threshold.
func (p Percent) AtLeast(threshold Percent) bool { return p >= threshold }

// Ratio converts the percentage to a 0.0-based ratio.
func (p Percent) Ratio() float64 { return float64(p) / 100.0 }

// Format renders the percentage with one decimal, e.g. "42.5%".
func (p Percent) Format() string { return fmt.Sprintf("%.1f%%", float64(p)) }

// ProgressMax is the completion point for Progress values.
const ProgressMax = 100

// Progress tracks completion of a long-running effort (research) in the
// 0..100 range.
type Progress int

// NewProgress validates the 0..100 range.
func NewProgress(v int) (Progress, error) {
	if v < 0 || v > ProgressMax {
		return 0, fmt.Errorf("%w: progress must be within 0..%d, got %d", ErrValidation, ProgressMax, v)
	}
	return Progress(v), nil
}

// Advance adds points, capping at the completion point.
func (p Progress) Advance(points int) Progress {
	next := int(p) + points
	if next > ProgressMax {
		next = ProgressMax
	}
	if next < 0 {
		next = 0
	}
	return Progress(next)
}

// IsComplete reports whether the effort finished.
func (p Progress) IsComplete() bool { return p >= ProgressMax }

// Ratio converts the progress to a 0.0..1.0 ratio.
func (p Progress) Ratio() float64 { return float64(p) / float64(ProgressMax) }

// ExpPerLevel is the experience needed for one stat level-up.
const ExpPerLevel = 100

// Experience accumulates toward stat level-ups in the 0..100 range.
type Experience int

// NewExperience validates the 0..100 range.
func NewExperience(v int) (Experience, error) {
	if v < 0 || v > ExpPerLevel {
		return 0, fmt.Errorf("%w: experience must be within 0..%d, got %d", ErrValidation, ExpPerLevel, v)
	}
	return Experience(v), nil
}

// Add accumulates experience and returns the remainder plus the number of
// level-ups earned by crossing the per-level boundary.
func (e Experience) Add(points int) (Experience, int) {
	if points < 0 {
		points = 0
	}
	total := int(e) + points
	return Experience(total % ExpPerLevel), total / ExpPerLevel
}

// StatValue is one player stat: a base value plus pending experience.
type StatValue struct {
	Base int
	Exp  Experience
}

// NewStatValue validates that the base value is not negative.
func NewStatValue(base int, exp Experience) (StatValue, error) {
	if base < 0 {
		return StatValue{}, fmt.Errorf("%w: stat base must not be negative, got %d", ErrValidation, base)
	}
	return StatValue{Base: base, Exp: exp}, nil
}

// AddExperience folds experience into the stat, converting level-ups into
// base value increases, and returns the new StatValue.
func (s StatValue) AddExperience(points int) StatValue {
	exp, levelUps := s.Exp.Add(points)
	return StatValue{Base: s.Base + levelUps, Exp: exp}
}

// Halved returns the stat with its base cut in half. Used for the knockout
// fatigue penalty.
func (s StatValue) Halved() StatValue {
	return StatValue{Base: s.Base / 2, Exp: s.Exp}
}

// DiceBonus is the flat roll bonus granted by this stat (one per 10 points).
func (s StatValue) DiceBonus() int { return s.Base / 10 }
