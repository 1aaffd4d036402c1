package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/chickenmaster/server/internal/domain/gameevent"
	"github.com/chickenmaster/server/internal/domain/player"
	"github.com/chickenmaster/server/internal/domain/rules"
	"github.com/chickenmaster/server/internal/domain/turn"
	"github.com/chickenmaster/server/internal/domain/value"
	"github.com/chickenmaster/server/internal/platform/logger"
)

// ErrUnsupportedOperation marks declared-but-unimplemented paths, currently
// only the event choice branch.
var ErrUnsupportedOperation = errors.New("operation not supported")

// EventResult is the outcome of the daily event phase. It never aliases its
// inputs: Player is a new value, not the one passed in.
type EventResult struct {
	Occurred       bool             `json:"occurred"`
	Event          *gameevent.Event `json:"event,omitempty"`
	Message        string           `json:"message"`
	EffectsApplied []string         `json:"effects_applied,omitempty"`
	Player         player.Player    `json:"-"`
}

// EventSystem resolves the daily event phase: candidate filtering,
// probabilistic trigger and in-order effect application.
type EventSystem struct {
	repo   Repository
	loader gameevent.Loader
	rand   Rand
	logger *logger.Logger
}

// NewEventSystem creates the event phase handler.
func NewEventSystem(repo Repository, loader gameevent.Loader, rnd Rand, log *logger.Logger) *EventSystem {
	return &EventSystem{repo: repo, loader: loader, rand: rnd, logger: log}
}

// ProcessDailyEvents resolves at most one event for the given day.
// Re-invoking it for the same phase rolls the dice again; idempotency is
// deliberately not guaranteed.
func (es *EventSystem) ProcessDailyEvents(ctx context.Context, t turn.Turn, p player.Player) (EventResult, error) {
	events, err := es.loader.LoadAllEvents()
	if err != nil {
		return EventResult{}, fmt.Errorf("load events: %w", err)
	}

	var candidates []gameevent.Event
	for _, e := range events {
		if e.Eligible(t.Number, p.IsFatigued()) {
			candidates = append(candidates, e)
		}
	}

	if len(candidates) == 0 {
		return EventResult{
			Message: "A peaceful day passes.",
			Player:  p,
		}, nil
	}

	// The trigger roll throttles event frequency independent of how many
	// candidates qualified.
	if es.rand.Float64() > rules.EventTriggerProbability {
		return EventResult{
			Message: "The day goes by without incident.",
			Player:  p,
		}, nil
	}

	selected := candidates[es.rand.IntN(len(candidates))]

	updated := p
	messages := make([]string, 0, len(selected.AutoEffects))
	for _, effect := range selected.AutoEffects {
		var msg string
		updated, msg, err = es.applyEffect(effect, updated)
		if err != nil {
			return EventResult{}, fmt.Errorf("event %s: %w", selected.ID, err)
		}
		messages = append(messages, msg)
	}

	if err := es.repo.SavePlayer(ctx, updated); err != nil {
		return EventResult{}, fmt.Errorf("persist player after event: %w", err)
	}

	es.logger.Phase(turn.PhaseEvent.String(), t.Number, fmt.Sprintf("event %s fired: %s", selected.ID, selected.Name))

	return EventResult{
		Occurred:       true,
		Event:          &selected,
		Message:        fmt.Sprintf("[%s] %s", selected.Name, selected.Description),
		EffectsApplied: messages,
		Player:         updated,
	}, nil
}

// HandleEventChoice is the declared branch-selection path. It is not
// implemented yet and says so instead of failing quietly.
func (es *EventSystem) HandleEventChoice(eventID string, choiceIndex int, p player.Player) (EventResult, error) {
	return EventResult{Player: p}, fmt.Errorf("%w: event choices", ErrUnsupportedOperation)
}

// applyEffect applies one tagged effect and describes what happened. Each
// effect receives the player produced by the previous one.
func (es *EventSystem) applyEffect(effect gameevent.Effect, p player.Player) (player.Player, string, error) {
	switch effect.Type {
	case gameevent.EffectMoneyChange:
		if effect.Value >= 0 {
			amount := value.Money(effect.Value)
			return p.EarnMoney(amount), fmt.Sprintf("earned %s", amount.Format()), nil
		}
		loss := value.Money(-effect.Value)
		updated, debited := p.SpendMoneyClamped(loss)
		// The message reports the clamped amount, not the nominal effect.
		return updated, fmt.Sprintf("lost %s", debited.Format()), nil

	case gameevent.EffectFatigueChange:
		if effect.Value >= 0 {
			return p.ApplyFatigue(value.Percent(effect.Value)), fmt.Sprintf("fatigue up %d", effect.Value), nil
		}
		return p.RecoverFatigue(value.Percent(-effect.Value)), fmt.Sprintf("fatigue down %d", -effect.Value), nil

	case gameevent.EffectHappinessChange:
		return p.ApplyHappiness(float64(effect.Value)), fmt.Sprintf("happiness %+d", effect.Value), nil

	case gameevent.EffectStatExp:
		updated, err := p.GainStatExperience(player.StatKind(effect.Stat), effect.Value)
		if err != nil {
			return p, "", err
		}
		return updated, fmt.Sprintf("%s exp +%d", effect.Stat, effect.Value), nil

	default:
		return p, "", fmt.Errorf("%w: unknown effect type %q", value.ErrValidation, effect.Type)
	}
}
