// Package rules contains the pure calculation logic for game mechanics.
// This package is PURE and must NOT import any infrastructure packages.
package rules

import "github.com/chickenmaster/server/internal/domain/value"

// Fatigue thresholds, expressed as ratios of the stamina stat. Levels are
// always recomputed from the current fatigue value, never stored.
const (
	FatigueWarnRatio     = 0.5
	FatigueCriticalRatio = 0.9
	FatigueShutdownRatio = 1.0
	FatigueKnockoutRatio = 2.0
)

// Stat system bounds.
const (
	StatExpMin       = 0
	StatExpMax       = 100
	StatExpGain      = 10 // experience awarded for a successful action
	InitialStatValue = 50
)

// Economy constants.
const (
	// EventTriggerProbability throttles daily events independent of how many
	// candidates qualify.
	EventTriggerProbability = 0.30

	// IngredientCostRatio estimates variable ingredient cost as a share of
	// revenue until per-sale costing lands.
	IngredientCostRatio = 0.40

	// DaysPerMonth converts a store's monthly rent into a daily charge.
	DaysPerMonth = 30

	// InitialMoney is the starting balance for a new player.
	InitialMoney value.Money = 1_000_000

	// DefaultMonthlyRent is the rent of the starting store.
	DefaultMonthlyRent value.Money = 900_000
)

// Daily sales tuning. Customer demand and ticket size scale with the
// effective service and cooking stats.
const (
	BaseCustomersPerStore = 20
	CustomerVariance      = 15 // uniform extra customers per store, [0, n)

	BasePricePerCustomer value.Money = 8_000
	PricePerCookingBonus value.Money = 400 // per cooking dice bonus point
)

// Nightly recovery and work strain, in fatigue percent points.
const (
	DailySalesFatigue     = 10
	NightlyFatigueRecover = 20
	WeekendExtraRecover   = 10
)

// FatigueLevel classifies the player's current exhaustion.
type FatigueLevel int

const (
	FatigueNormal FatigueLevel = iota
	FatigueWarn
	FatigueCritical
	FatigueShutdown
	FatigueKnockout
)

func (l FatigueLevel) String() string {
	switch l {
	case FatigueNormal:
		return "normal"
	case FatigueWarn:
		return "warn"
	case FatigueCritical:
		return "critical"
	case FatigueShutdown:
		return "shutdown"
	case FatigueKnockout:
		return "knockout"
	default:
		return "unknown"
	}
}

// ClassifyFatigue recomputes the fatigue level from the raw fatigue value and
// the stamina stat it is measured against.
func ClassifyFatigue(fatigue value.Percent, stamina value.StatValue) FatigueLevel {
	base := float64(stamina.Base)
	f := float64(fatigue)
	switch {
	case f >= base*FatigueKnockoutRatio:
		return FatigueKnockout
	case f >= base*FatigueShutdownRatio:
		return FatigueShutdown
	case f >= base*FatigueCriticalRatio:
		return FatigueCritical
	case f >= base*FatigueWarnRatio:
		return FatigueWarn
	default:
		return FatigueNormal
	}
}

// ClampLoss is the single debt policy point. Today a loss the balance cannot
// cover is capped at the balance (the player bottoms out at zero); a future
// debt or bankruptcy mechanism replaces this function, not its call sites.
func ClampLoss(balance, loss value.Money) value.Money {
	if loss > balance {
		return balance
	}
	return loss
}
