package engine

import (
	"context"
	"fmt"

	"github.com/chickenmaster/server/internal/domain/player"
	"github.com/chickenmaster/server/internal/domain/rules"
	"github.com/chickenmaster/server/internal/domain/turn"
	"github.com/chickenmaster/server/internal/domain/value"
	"github.com/chickenmaster/server/internal/platform/logger"
)

// StoreSales is the per-store slice of a day's trade.
type StoreSales struct {
	StoreID   string      `json:"store_id"`
	StoreName string      `json:"store_name"`
	Customers int         `json:"customers"`
	Revenue   value.Money `json:"revenue"`
}

// SalesResult is the outcome of the sales phase, consumed by settlement.
type SalesResult struct {
	Revenue   value.Money   `json:"revenue"`
	Customers int           `json:"customers"`
	PerStore  []StoreSales  `json:"per_store"`
	Message   string        `json:"message"`
	Player    player.Player `json:"-"`
}

// SalesSystem simulates one day of trade across the player's stores.
// Customer demand scales with the effective service stat, the ticket size
// with the effective cooking stat.
type SalesSystem struct {
	repo   Repository
	rand   Rand
	logger *logger.Logger
}

// NewSalesSystem creates the sales phase handler.
func NewSalesSystem(repo Repository, rnd Rand, log *logger.Logger) *SalesSystem {
	return &SalesSystem{repo: repo, rand: rnd, logger: log}
}

// ProcessDailySales runs the day's trade. An exhausted player cannot open at
// all; a knocked-out one trades on halved stats via EffectiveStats.
func (ss *SalesSystem) ProcessDailySales(ctx context.Context, t turn.Turn, p player.Player) (SalesResult, error) {
	if p.IsExhausted() {
		ss.logger.Phase(turn.PhaseSales.String(), t.Number, "stores closed, owner exhausted")
		return SalesResult{
			Message: "Too exhausted to open. The stores stay dark today.",
			Player:  p,
		}, nil
	}

	stats := p.EffectiveStats()
	result := SalesResult{Player: p}

	for _, storeID := range p.StoreIDs {
		st, err := ss.repo.GetStore(ctx, storeID)
		if err != nil {
			return SalesResult{}, fmt.Errorf("load store %s: %w", storeID, err)
		}
		if st == nil {
			return SalesResult{}, fmt.Errorf("store %s referenced by player %s does not exist", storeID, p.ID)
		}

		customers := rules.BaseCustomersPerStore + stats.Service.DiceBonus() + ss.rand.IntN(rules.CustomerVariance)
		ticket := rules.BasePricePerCustomer.Add(rules.PricePerCookingBonus.MulRatio(float64(stats.Cooking.DiceBonus())))
		revenue := ticket.MulRatio(float64(customers))

		result.Customers += customers
		result.Revenue = result.Revenue.Add(revenue)
		result.PerStore = append(result.PerStore, StoreSales{
			StoreID:   st.ID.String(),
			StoreName: st.Name,
			Customers: customers,
			Revenue:   revenue,
		})
	}

	// A day behind the fryer costs fatigue; the nightly cleanup recovers it.
	updated := p.ApplyFatigue(rules.DailySalesFatigue)
	if err := ss.repo.SavePlayer(ctx, updated); err != nil {
		return SalesResult{}, fmt.Errorf("persist player after sales: %w", err)
	}
	result.Player = updated
	result.Message = fmt.Sprintf("Served %d customers for %s across %d stores.",
		result.Customers, result.Revenue.Format(), len(result.PerStore))

	ss.logger.Phase(turn.PhaseSales.String(), t.Number, result.Message)
	return result, nil
}
