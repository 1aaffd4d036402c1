package engine

import (
	"context"
	"fmt"

	"github.com/chickenmaster/server/internal/domain/player"
	"github.com/chickenmaster/server/internal/domain/research"
	"github.com/chickenmaster/server/internal/domain/rules"
	"github.com/chickenmaster/server/internal/domain/turn"
	"github.com/chickenmaster/server/internal/domain/value"
	"github.com/chickenmaster/server/internal/platform/logger"
)

// CleanupResult is the outcome of the nightly cleanup phase.
type CleanupResult struct {
	FatigueRecovered  int                 `json:"fatigue_recovered"`
	ResearchAdvanced  []string            `json:"research_advanced,omitempty"`
	ResearchCompleted []string            `json:"research_completed,omitempty"`
	Message           string              `json:"message"`
	Player            player.Player       `json:"-"`
	Projects          []research.Research `json:"-"`
}

// CleanupSystem runs the end-of-day recovery: sleep restores fatigue and the
// player's ongoing research projects advance.
type CleanupSystem struct {
	repo   Repository
	logger *logger.Logger
}

// NewCleanupSystem creates the cleanup phase handler.
func NewCleanupSystem(repo Repository, log *logger.Logger) *CleanupSystem {
	return &CleanupSystem{repo: repo, logger: log}
}

// ProcessDailyCleanup restores fatigue (more on a weekend night) and advances
// every incomplete research project. Returns the updated projects alongside
// the persisted player; the caller owns the project list.
func (cs *CleanupSystem) ProcessDailyCleanup(ctx context.Context, cal turn.Calendar, p player.Player, projects []research.Research) (CleanupResult, error) {
	recovery := rules.NightlyFatigueRecover
	if cal.IsWeekend() {
		recovery += rules.WeekendExtraRecover
	}
	updated := p.RecoverFatigue(value.Percent(recovery))

	result := CleanupResult{FatigueRecovered: recovery}
	techBase := updated.EffectiveStats().Tech.Base

	out := make([]research.Research, 0, len(projects))
	for _, proj := range projects {
		if proj.IsComplete() {
			out = append(out, proj)
			continue
		}
		points := proj.DailyPoints(techBase)
		if points > 0 {
			proj = proj.Advance(points)
			result.ResearchAdvanced = append(result.ResearchAdvanced, proj.Name)
			if proj.IsComplete() {
				result.ResearchCompleted = append(result.ResearchCompleted, proj.Name)
			}
		}
		out = append(out, proj)
	}

	if err := cs.repo.SavePlayer(ctx, updated); err != nil {
		return CleanupResult{}, fmt.Errorf("persist player after cleanup: %w", err)
	}

	result.Player = updated
	result.Projects = out
	result.Message = fmt.Sprintf("Closed up for the night. Recovered %d fatigue; %d research projects advanced.",
		recovery, len(result.ResearchAdvanced))
	for _, name := range result.ResearchCompleted {
		result.Message += fmt.Sprintf(" Research complete: %s.", name)
	}

	cs.logger.Phase(turn.PhaseCleanup.String(), cal.Current.Number, result.Message)
	return result, nil
}
