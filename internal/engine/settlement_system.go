package engine

import (
	"context"
	"fmt"

	"github.com/chickenmaster/server/internal/domain/player"
	"github.com/chickenmaster/server/internal/domain/rules"
	"github.com/chickenmaster/server/internal/domain/turn"
	"github.com/chickenmaster/server/internal/domain/value"
	"github.com/chickenmaster/server/internal/platform/logger"
	"github.com/chickenmaster/server/internal/platform/metrics"
)

// SettlementResult is the full daily close-out breakdown.
type SettlementResult struct {
	Revenue         value.Money `json:"revenue"`
	RentCost        value.Money `json:"rent_cost"`
	IngredientCost  value.Money `json:"ingredient_cost"`
	LaborCost       value.Money `json:"labor_cost"`
	MaintenanceCost value.Money `json:"maintenance_cost"`
	TotalCost       value.Money `json:"total_cost"`
	NetProfit       value.Money `json:"net_profit"`

	// AppliedDelta is what actually hit the balance: equal to NetProfit on a
	// profitable day, possibly smaller in magnitude on a loss the balance
	// could not cover.
	AppliedDelta value.Money   `json:"applied_delta"`
	Message      string        `json:"message"`
	Player       player.Player `json:"-"`
}

// SettlementSystem closes out a day: rent and ingredient costs against the
// day's revenue, with the resulting profit or loss applied to the player.
type SettlementSystem struct {
	repo   Repository
	logger *logger.Logger
}

// NewSettlementSystem creates the settlement phase handler.
func NewSettlementSystem(repo Repository, log *logger.Logger) *SettlementSystem {
	return &SettlementSystem{repo: repo, logger: log}
}

// ProcessDailySettlement computes the day's costs, applies the net to the
// player balance and persists the result. Labor and maintenance are fixed at
// zero until staffing and equipment wear land.
func (st *SettlementSystem) ProcessDailySettlement(ctx context.Context, t turn.Turn, p player.Player, revenue value.Money) (SettlementResult, error) {
	var rent value.Money
	for _, storeID := range p.StoreIDs {
		s, err := st.repo.GetStore(ctx, storeID)
		if err != nil {
			return SettlementResult{}, fmt.Errorf("load store %s: %w", storeID, err)
		}
		if s == nil {
			return SettlementResult{}, fmt.Errorf("store %s referenced by player %s does not exist", storeID, p.ID)
		}
		rent = rent.Add(s.DailyRent())
	}

	ingredients := revenue.MulRatio(rules.IngredientCostRatio)
	var labor, maintenance value.Money
	totalCost := rent.Add(ingredients).Add(labor).Add(maintenance)
	netProfit := revenue.Sub(totalCost)

	var (
		updated player.Player
		applied value.Money
	)
	if netProfit.IsNegative() {
		loss := value.Money(0).Sub(netProfit)
		var debited value.Money
		updated, debited = p.SpendMoneyClamped(loss)
		applied = value.Money(0).Sub(debited)
	} else {
		updated = p.EarnMoney(netProfit)
		applied = netProfit
	}

	if err := st.repo.SavePlayer(ctx, updated); err != nil {
		return SettlementResult{}, fmt.Errorf("persist player after settlement: %w", err)
	}

	result := SettlementResult{
		Revenue:         revenue,
		RentCost:        rent,
		IngredientCost:  ingredients,
		LaborCost:       labor,
		MaintenanceCost: maintenance,
		TotalCost:       totalCost,
		NetProfit:       netProfit,
		AppliedDelta:    applied,
		Player:          updated,
	}
	result.Message = fmt.Sprintf("Revenue %s, costs %s (rent %s, ingredients %s), net %s. Balance %s.",
		revenue.Format(), totalCost.Format(), rent.Format(), ingredients.Format(),
		netProfit.Format(), updated.Money.Format())

	metrics.Get().RecordSettlement(int64(netProfit))
	st.logger.Phase(turn.PhaseSettlement.String(), t.Number, result.Message)
	return result, nil
}
