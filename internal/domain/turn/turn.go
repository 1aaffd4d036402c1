// Package turn defines the day/phase progression state machine. One turn is
// one in-game day, subdivided into a fixed ordered phase cycle. Turn values
// are immutable: transitions return new values so the history stays
// auditable.
// This package is PURE and must NOT import any infrastructure packages.
package turn

import (
	"fmt"
	"time"

	"github.com/chickenmaster/server/internal/domain/value"
)

// Phase is one named sub-step of a day, executed in fixed order.
type Phase int

const (
	PhasePlayerAction Phase = iota
	PhaseAIAction
	PhaseEvent
	PhaseSales
	PhaseSettlement
	PhaseCleanup

	phaseCount
)

// Phases returns the fixed daily phase sequence.
func Phases() []Phase {
	return []Phase{PhasePlayerAction, PhaseAIAction, PhaseEvent, PhaseSales, PhaseSettlement, PhaseCleanup}
}

func (p Phase) String() string {
	switch p {
	case PhasePlayerAction:
		return "player_action"
	case PhaseAIAction:
		return "ai_action"
	case PhaseEvent:
		return "event"
	case PhaseSales:
		return "sales"
	case PhaseSettlement:
		return "settlement"
	case PhaseCleanup:
		return "cleanup"
	default:
		return "unknown"
	}
}

// PhaseFromString parses a phase name, the inverse of String.
func PhaseFromString(name string) (Phase, error) {
	for _, p := range Phases() {
		if p.String() == name {
			return p, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown phase %q", value.ErrValidation, name)
}

// Turn is one in-game day. The phase pointer only moves forward; a completed
// turn is replaced by the next day's turn, never reused.
type Turn struct {
	Number     int       `json:"number"`
	GameDate   time.Time `json:"game_date"`
	Phase      Phase     `json:"phase"`
	IsComplete bool      `json:"is_complete"`
}

// ErrTurnComplete is returned when advancing a turn whose phases already ran out.
var ErrTurnComplete = fmt.Errorf("turn already complete")

// New creates a turn at the first phase of the given day.
func New(number int, gameDate time.Time) (Turn, error) {
	if number < 1 {
		return Turn{}, fmt.Errorf("%w: turn number must be at least 1, got %d", value.ErrValidation, number)
	}
	return Turn{
		Number:   number,
		GameDate: gameDate,
		Phase:    PhasePlayerAction,
	}, nil
}

// AdvancePhase moves to the next phase in sequence; past the last phase the
// turn is marked complete instead.
func (t Turn) AdvancePhase() (Turn, error) {
	if t.IsComplete {
		return t, ErrTurnComplete
	}
	if t.Phase >= phaseCount-1 {
		t.IsComplete = true
		return t, nil
	}
	t.Phase++
	return t, nil
}

// NextTurn rolls the calendar one day forward and restarts the phase cycle.
// Only a completed turn can produce its successor.
func (t Turn) NextTurn() (Turn, error) {
	if !t.IsComplete {
		return t, fmt.Errorf("%w: turn %d is not complete", value.ErrValidation, t.Number)
	}
	return Turn{
		Number:   t.Number + 1,
		GameDate: t.GameDate.AddDate(0, 0, 1),
		Phase:    PhasePlayerAction,
	}, nil
}

// ProgressPercent is the within-day completion: phase index over phase count,
// 100 once complete.
func (t Turn) ProgressPercent() float64 {
	if t.IsComplete {
		return 100.0
	}
	return float64(t.Phase) / float64(phaseCount) * 100.0
}

// DisplayInfo renders the turn for logs and status payloads.
func (t Turn) DisplayInfo() string {
	status := t.Phase.String()
	if t.IsComplete {
		status = "complete"
	}
	return fmt.Sprintf("turn %d (%s) - %s", t.Number, t.GameDate.Format("2006-01-02"), status)
}

// Calendar tracks the session's start date alongside the live turn.
type Calendar struct {
	StartDate time.Time `json:"start_date"`
	Current   Turn      `json:"current"`
}

// NewCalendar validates that the current turn does not predate the start.
func NewCalendar(startDate time.Time, current Turn) (Calendar, error) {
	if current.GameDate.Before(startDate) {
		return Calendar{}, fmt.Errorf("%w: game date %s predates start date %s",
			value.ErrValidation, current.GameDate.Format("2006-01-02"), startDate.Format("2006-01-02"))
	}
	return Calendar{StartDate: startDate, Current: current}, nil
}

// DaysElapsed counts full days since game start.
func (c Calendar) DaysElapsed() int {
	return int(c.Current.GameDate.Sub(c.StartDate).Hours() / 24)
}

// IsWeekend reports whether the current game date is Saturday or Sunday.
func (c Calendar) IsWeekend() bool {
	wd := c.Current.GameDate.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// IsMonthEnd reports whether the current game date is the last day of its month.
func (c Calendar) IsMonthEnd() bool {
	return c.Current.GameDate.AddDate(0, 0, 1).Month() != c.Current.GameDate.Month()
}

// WithTurn returns the calendar tracking the given turn.
func (c Calendar) WithTurn(t Turn) Calendar {
	c.Current = t
	return c
}
