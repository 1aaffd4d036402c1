// Package research defines the research project entity.
// This package is PURE and must NOT import any infrastructure packages.
package research

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/chickenmaster/server/internal/domain/value"
)

// Kind is the research field.
type Kind string

const (
	KindRecipe    Kind = "recipe"
	KindEquipment Kind = "equipment"
	KindService   Kind = "service"
	KindFranchise Kind = "franchise"
)

// ParseKind maps a wire string to a research field.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindRecipe, KindEquipment, KindService, KindFranchise:
		return k, nil
	}
	return "", fmt.Errorf("%w: unknown research kind %q", value.ErrValidation, s)
}

// Research is an in-progress project. Advancing returns a new value.
type Research struct {
	ID          uuid.UUID      `json:"id"`
	Kind        Kind           `json:"kind"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Progress    value.Progress `json:"progress"`

	// Difficulty slows progress; RequiredStat gates starting at all.
	Difficulty   int `json:"difficulty"`
	RequiredStat int `json:"required_stat"`
}

// New validates and creates a research project at zero progress.
func New(kind Kind, name, description string, difficulty, requiredStat int) (Research, error) {
	if strings.TrimSpace(name) == "" {
		return Research{}, fmt.Errorf("%w: research name must not be empty", value.ErrValidation)
	}
	if difficulty <= 0 {
		return Research{}, fmt.Errorf("%w: research difficulty must be positive, got %d", value.ErrValidation, difficulty)
	}
	if requiredStat < 0 {
		return Research{}, fmt.Errorf("%w: required stat must not be negative, got %d", value.ErrValidation, requiredStat)
	}
	return Research{
		ID:           uuid.New(),
		Kind:         kind,
		Name:         name,
		Description:  description,
		Difficulty:   difficulty,
		RequiredStat: requiredStat,
	}, nil
}

// CanAdvance reports whether the stat value meets the project's requirement.
func (r Research) CanAdvance(statValue int) bool {
	return statValue >= r.RequiredStat
}

// DailyPoints computes the progress earned for one day of work at the given
// stat value. At least one point per day once the requirement is met.
func (r Research) DailyPoints(statValue int) int {
	if !r.CanAdvance(statValue) {
		return 0
	}
	points := (statValue - r.RequiredStat) / r.Difficulty
	if points < 1 {
		points = 1
	}
	return points
}

// Advance adds progress and returns the updated project.
func (r Research) Advance(points int) Research {
	r.Progress = r.Progress.Advance(points)
	return r
}

// IsComplete reports whether the project finished.
func (r Research) IsComplete() bool { return r.Progress.IsComplete() }
