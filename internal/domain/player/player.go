// Package player defines the protagonist aggregate of the game.
// This package is PURE and must NOT import any infrastructure packages.
package player

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/chickenmaster/server/internal/domain/rules"
	"github.com/chickenmaster/server/internal/domain/value"
)

// StatKind names one of the five base stats.
type StatKind string

const (
	StatCooking    StatKind = "cooking"
	StatManagement StatKind = "management"
	StatService    StatKind = "service"
	StatTech       StatKind = "tech"
	StatStamina    StatKind = "stamina"
)

// Stats is the full stat block.
type Stats struct {
	Cooking    value.StatValue `json:"cooking"`
	Management value.StatValue `json:"management"`
	Service    value.StatValue `json:"service"`
	Tech       value.StatValue `json:"tech"`
	Stamina    value.StatValue `json:"stamina"`
}

// Player is an immutable aggregate: every mutator returns a new value. The
// engine persists the returned value; nothing edits a Player in place.
type Player struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`

	Stats Stats `json:"stats"`

	Fatigue   value.Percent `json:"fatigue"`
	Happiness value.Percent `json:"happiness"`
	Money     value.Money   `json:"money"`

	// Owned aggregates are referenced by identifier only.
	StoreIDs    []uuid.UUID `json:"store_ids"`
	ResearchIDs []uuid.UUID `json:"research_ids"`
}

// ErrInsufficientFunds is returned by SpendMoney when the balance cannot
// cover the amount. Settlement and event losses never hit it; they go through
// SpendMoneyClamped instead.
var ErrInsufficientFunds = fmt.Errorf("insufficient funds")

// New creates a fresh player with default stats and one starting store.
func New(name string, storeID uuid.UUID) (Player, error) {
	if strings.TrimSpace(name) == "" {
		return Player{}, fmt.Errorf("%w: player name must not be empty", value.ErrValidation)
	}

	stat := value.StatValue{Base: rules.InitialStatValue}
	return Player{
		ID:   uuid.New(),
		Name: name,
		Stats: Stats{
			Cooking:    stat,
			Management: stat,
			Service:    stat,
			Tech:       stat,
			Stamina:    stat,
		},
		Fatigue:     0,
		Happiness:   50,
		Money:       rules.InitialMoney,
		StoreIDs:    []uuid.UUID{storeID},
		ResearchIDs: nil,
	}, nil
}

// EarnMoney credits the balance.
func (p Player) EarnMoney(amount value.Money) Player {
	p.Money = p.Money.Add(amount)
	return p.clone()
}

// SpendMoney debits the balance, failing if funds are insufficient.
func (p Player) SpendMoney(amount value.Money) (Player, error) {
	if p.Money < amount {
		return p, fmt.Errorf("%w: have %s, need %s", ErrInsufficientFunds, p.Money.Format(), amount.Format())
	}
	p.Money = p.Money.Sub(amount)
	return p.clone(), nil
}

// SpendMoneyClamped debits up to the available balance and returns the amount
// actually taken. The clamp policy lives in rules.ClampLoss.
func (p Player) SpendMoneyClamped(amount value.Money) (Player, value.Money) {
	debit := rules.ClampLoss(p.Money, amount)
	p.Money = p.Money.Sub(debit)
	return p.clone(), debit
}

// ApplyFatigue raises fatigue by the given delta.
func (p Player) ApplyFatigue(delta value.Percent) Player {
	p.Fatigue = p.Fatigue.Add(delta)
	return p.clone()
}

// RecoverFatigue lowers fatigue, flooring at zero.
func (p Player) RecoverFatigue(delta value.Percent) Player {
	p.Fatigue = p.Fatigue.Sub(delta)
	return p.clone()
}

// ApplyHappiness shifts happiness by the given delta, flooring at zero.
func (p Player) ApplyHappiness(delta float64) Player {
	if delta >= 0 {
		p.Happiness = p.Happiness.Add(value.Percent(delta))
	} else {
		p.Happiness = p.Happiness.Sub(value.Percent(-delta))
	}
	return p.clone()
}

// GainStatExperience adds experience to one stat, converting level-ups into
// base increases.
func (p Player) GainStatExperience(kind StatKind, points int) (Player, error) {
	switch kind {
	case StatCooking:
		p.Stats.Cooking = p.Stats.Cooking.AddExperience(points)
	case StatManagement:
		p.Stats.Management = p.Stats.Management.AddExperience(points)
	case StatService:
		p.Stats.Service = p.Stats.Service.AddExperience(points)
	case StatTech:
		p.Stats.Tech = p.Stats.Tech.AddExperience(points)
	case StatStamina:
		p.Stats.Stamina = p.Stats.Stamina.AddExperience(points)
	default:
		return p, fmt.Errorf("%w: unknown stat %q", value.ErrValidation, kind)
	}
	return p.clone(), nil
}

// AddStore appends a store reference.
func (p Player) AddStore(storeID uuid.UUID) Player {
	p.StoreIDs = append(p.StoreIDs[:len(p.StoreIDs):len(p.StoreIDs)], storeID)
	return p.clone()
}

// AddResearch appends a research reference.
func (p Player) AddResearch(researchID uuid.UUID) Player {
	p.ResearchIDs = append(p.ResearchIDs[:len(p.ResearchIDs):len(p.ResearchIDs)], researchID)
	return p.clone()
}

// FatigueLevel classifies the current exhaustion against the stamina stat.
func (p Player) FatigueLevel() rules.FatigueLevel {
	return rules.ClassifyFatigue(p.Fatigue, p.Stats.Stamina)
}

// IsFatigued reports the warning threshold (50% of stamina).
func (p Player) IsFatigued() bool { return p.FatigueLevel() >= rules.FatigueWarn }

// IsCriticallyFatigued reports the critical threshold (90% of stamina).
func (p Player) IsCriticallyFatigued() bool { return p.FatigueLevel() >= rules.FatigueCritical }

// IsKnockedOut reports the shutdown threshold (stamina exceeded); stats are
// halved in this state.
func (p Player) IsKnockedOut() bool { return p.FatigueLevel() >= rules.FatigueShutdown }

// IsExhausted reports the knockout threshold (double stamina); no actions are
// possible in this state.
func (p Player) IsExhausted() bool { return p.FatigueLevel() >= rules.FatigueKnockout }

// EffectiveStats returns the stat block with the fatigue penalty applied.
func (p Player) EffectiveStats() Stats {
	if !p.IsKnockedOut() {
		return p.Stats
	}
	return Stats{
		Cooking:    p.Stats.Cooking.Halved(),
		Management: p.Stats.Management.Halved(),
		Service:    p.Stats.Service.Halved(),
		Tech:       p.Stats.Tech.Halved(),
		Stamina:    p.Stats.Stamina.Halved(),
	}
}

// clone copies the slice fields so the returned value shares no mutable state
// with its predecessor.
func (p Player) clone() Player {
	p.StoreIDs = append([]uuid.UUID(nil), p.StoreIDs...)
	p.ResearchIDs = append([]uuid.UUID(nil), p.ResearchIDs...)
	return p
}
