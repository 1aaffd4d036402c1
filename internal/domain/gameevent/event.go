// Package gameevent defines the daily event content model. Event definitions
// are read-only: the engine never mutates them, only applies their effects to
// player values.
// This package is PURE and must NOT import any infrastructure packages.
package gameevent

import (
	"fmt"
	"strings"

	"github.com/chickenmaster/server/internal/domain/value"
)

// EffectType tags one auto-effect of an event.
type EffectType string

const (
	EffectMoneyChange     EffectType = "MONEY_CHANGE"
	EffectFatigueChange   EffectType = "FATIGUE_CHANGE"
	EffectHappinessChange EffectType = "HAPPINESS_CHANGE"
	EffectStatExp         EffectType = "STAT_EXP"
)

// Effect is one tagged, parameterized mutation applied to a player as part of
// an event outcome. Effects apply in list order.
type Effect struct {
	Type EffectType `json:"type"`
	// Value is the signed magnitude: won for money, percent points for
	// fatigue/happiness, experience points for stats.
	Value int `json:"value"`
	// Stat names the target stat for EffectStatExp.
	Stat string `json:"stat,omitempty"`
}

// Event is one daily event definition from the content source.
type Event struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	AutoEffects []Effect `json:"auto_effects"`

	// Condition gates the event against the current day and player. A nil
	// condition accepts every day; condition evaluation is the extension
	// point for future trigger logic.
	Condition Condition `json:"-"`
}

// Condition decides whether an event is eligible on the given day.
type Condition func(turnNumber int, fatigued bool) bool

// Eligible evaluates the trigger condition, defaulting to accept-all.
func (e Event) Eligible(turnNumber int, fatigued bool) bool {
	if e.Condition == nil {
		return true
	}
	return e.Condition(turnNumber, fatigued)
}

// Validate checks the definition before it enters the candidate pool.
func (e Event) Validate() error {
	if strings.TrimSpace(e.ID) == "" {
		return fmt.Errorf("%w: event id must not be empty", value.ErrValidation)
	}
	if strings.TrimSpace(e.Name) == "" {
		return fmt.Errorf("%w: event %s: name must not be empty", value.ErrValidation, e.ID)
	}
	if len(e.AutoEffects) == 0 {
		return fmt.Errorf("%w: event %s: at least one auto-effect is required", value.ErrValidation, e.ID)
	}
	return nil
}

// Loader is the event content collaborator. Implementations load the full
// candidate set; filtering and selection happen in the engine.
type Loader interface {
	LoadAllEvents() ([]Event, error)
}
