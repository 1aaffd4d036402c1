package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/chickenmaster/server/internal/domain/gameevent"
	"github.com/chickenmaster/server/internal/domain/player"
	"github.com/chickenmaster/server/internal/domain/research"
	"github.com/chickenmaster/server/internal/domain/rules"
	"github.com/chickenmaster/server/internal/domain/store"
	"github.com/chickenmaster/server/internal/domain/turn"
	"github.com/chickenmaster/server/internal/domain/value"
	"github.com/chickenmaster/server/internal/gamelog"
	"github.com/chickenmaster/server/internal/platform/logger"
	"github.com/chickenmaster/server/internal/platform/metrics"
)

var (
	// ErrNoActiveGame is returned when no session has been started or loaded.
	ErrNoActiveGame = errors.New("no active game")
	// ErrGameNotRunning is returned when the session exists but was stopped.
	ErrGameNotRunning = errors.New("game is not running")
	// ErrGameAlreadyRunning is returned by StartNewGame during a live session.
	ErrGameAlreadyRunning = errors.New("game already running")
)

// PhaseResult is the outcome of executing one phase. Exactly one of the
// typed payloads is set, matching the phase that ran.
type PhaseResult struct {
	Turn       int               `json:"turn"`
	Phase      string            `json:"phase"`
	Message    string            `json:"message"`
	Event      *EventResult      `json:"event,omitempty"`
	Sales      *SalesResult      `json:"sales,omitempty"`
	Settlement *SettlementResult `json:"settlement,omitempty"`
	Cleanup    *CleanupResult    `json:"cleanup,omitempty"`
}

// Status is the read-only session snapshot served to clients.
type Status struct {
	Running         bool    `json:"running"`
	TurnNumber      int     `json:"turn_number"`
	GameDate        string  `json:"game_date"`
	Phase           string  `json:"phase"`
	TurnComplete    bool    `json:"turn_complete"`
	ProgressPercent float64 `json:"progress_percent"`
	DaysElapsed     int     `json:"days_elapsed"`
	Weekend         bool    `json:"weekend"`
	MonthEnd        bool    `json:"month_end"`
	PlayerName      string  `json:"player_name"`
	Money           string  `json:"money"`
	Fatigue         string  `json:"fatigue"`
	FatigueLevel    string  `json:"fatigue_level"`
}

// sessionSnapshot is the opaque save payload; only this package reads or
// writes it.
type sessionSnapshot struct {
	PlayerID uuid.UUID           `json:"player_id"`
	Calendar turn.Calendar       `json:"calendar"`
	Research []research.Research `json:"research"`
}

// GameLoop owns the live session: the current turn, the player reference and
// the dispatch from phase to subsystem. Executing a phase never moves the
// phase pointer; only AdvancePhase does, so a phase can be re-run or
// inspected before the day moves on.
type GameLoop struct {
	mu sync.Mutex

	repo    Repository
	events  *EventSystem
	sales   *SalesSystem
	settle  *SettlementSystem
	cleanup *CleanupSystem

	log    *gamelog.Log
	logger *logger.Logger

	started  bool
	running  bool
	playerID uuid.UUID
	calendar turn.Calendar
	projects []research.Research

	// lastSales carries the sales phase outcome into settlement within the
	// same day; it resets on day rollover.
	lastSales *SalesResult
}

// NewGameLoop wires the orchestrator and its phase subsystems.
func NewGameLoop(repo Repository, loader gameevent.Loader, rnd Rand, glog *gamelog.Log, log *logger.Logger) *GameLoop {
	return &GameLoop{
		repo:    repo,
		events:  NewEventSystem(repo, loader, rnd, log),
		sales:   NewSalesSystem(repo, rnd, log),
		settle:  NewSettlementSystem(repo, log),
		cleanup: NewCleanupSystem(repo, log),
		log:     glog,
		logger:  log,
	}
}

// StartNewGame creates a fresh player with one starting store and opens day 1.
func (gl *GameLoop) StartNewGame(ctx context.Context, playerName, storeName string) (Status, error) {
	gl.mu.Lock()
	defer gl.mu.Unlock()

	if gl.running {
		return Status{}, ErrGameAlreadyRunning
	}

	s, err := store.New(storeName, rules.DefaultMonthlyRent, uuid.Nil)
	if err != nil {
		return Status{}, err
	}
	p, err := player.New(playerName, s.ID)
	if err != nil {
		return Status{}, err
	}
	s.OwnerID = p.ID

	startDate := time.Now().Truncate(24 * time.Hour)
	firstTurn, err := turn.New(1, startDate)
	if err != nil {
		return Status{}, err
	}
	cal, err := turn.NewCalendar(startDate, firstTurn)
	if err != nil {
		return Status{}, err
	}

	if err := gl.repo.SaveStore(ctx, s); err != nil {
		return Status{}, fmt.Errorf("persist starting store: %w", err)
	}
	if err := gl.repo.SavePlayer(ctx, p); err != nil {
		return Status{}, fmt.Errorf("persist new player: %w", err)
	}
	if err := gl.repo.SaveTurn(ctx, firstTurn); err != nil {
		return Status{}, fmt.Errorf("persist first turn: %w", err)
	}

	gl.started = true
	gl.running = true
	gl.playerID = p.ID
	gl.calendar = cal
	gl.projects = nil
	gl.lastSales = nil

	gl.log.Append(gamelog.Record{
		Type:       gamelog.RecordGameStarted,
		TurnNumber: firstTurn.Number,
		Phase:      firstTurn.Phase.String(),
		Summary:    fmt.Sprintf("%s opened %s", p.Name, s.Name),
	})
	gl.logger.Info(fmt.Sprintf("new game: player %s, store %s, start %s",
		p.Name, s.Name, startDate.Format("2006-01-02")))

	return gl.statusLocked(p), nil
}

// SaveGame writes the session snapshot to a named slot.
func (gl *GameLoop) SaveGame(ctx context.Context, slot string) error {
	gl.mu.Lock()
	defer gl.mu.Unlock()

	if !gl.started {
		return ErrNoActiveGame
	}

	payload, err := json.Marshal(sessionSnapshot{
		PlayerID: gl.playerID,
		Calendar: gl.calendar,
		Research: gl.projects,
	})
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	start := time.Now()
	err = gl.repo.SaveGame(ctx, slot, payload)
	metrics.Get().RecordSave(time.Since(start), err)
	if err != nil {
		return fmt.Errorf("save slot %q: %w", slot, err)
	}
	return nil
}

// LoadGame restores a session from a named slot and resumes it running.
func (gl *GameLoop) LoadGame(ctx context.Context, slot string) (Status, error) {
	gl.mu.Lock()
	defer gl.mu.Unlock()

	payload, err := gl.repo.LoadGame(ctx, slot)
	if err != nil {
		return Status{}, fmt.Errorf("load slot %q: %w", slot, err)
	}
	if payload == nil {
		return Status{}, fmt.Errorf("save slot %q does not exist", slot)
	}

	var snap sessionSnapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return Status{}, fmt.Errorf("decode slot %q: %w", slot, err)
	}

	p, err := gl.repo.GetPlayer(ctx, snap.PlayerID)
	if err != nil {
		return Status{}, fmt.Errorf("load player %s: %w", snap.PlayerID, err)
	}
	if p == nil {
		return Status{}, fmt.Errorf("slot %q references missing player %s", slot, snap.PlayerID)
	}

	cal := snap.Calendar

	// The turn row is written on every advance, while the snapshot only
	// reflects save time. After a crash the row can be further along within
	// the same day; resume from it so no phase replays with stale state. A
	// row from a different day belongs to another session and is ignored.
	persisted, err := gl.repo.LoadCurrentTurn(ctx)
	if err != nil {
		return Status{}, fmt.Errorf("load current turn: %w", err)
	}
	if persisted != nil && persisted.Number == cal.Current.Number && persisted.Phase > cal.Current.Phase {
		cal = cal.WithTurn(*persisted)
	}

	gl.started = true
	gl.running = true
	gl.playerID = snap.PlayerID
	gl.calendar = cal
	gl.projects = snap.Research
	gl.lastSales = nil

	gl.log.Append(gamelog.Record{
		Type:       gamelog.RecordGameLoaded,
		TurnNumber: gl.calendar.Current.Number,
		Phase:      gl.calendar.Current.Phase.String(),
		Summary:    fmt.Sprintf("session restored from slot %q", slot),
	})
	gl.logger.Info(fmt.Sprintf("game loaded from slot %q at %s", slot, gl.calendar.Current.DisplayInfo()))

	return gl.statusLocked(*p), nil
}

// ExecuteTurnPhase runs the handler for the current phase without moving the
// phase pointer. Running the same phase twice re-runs the handler.
func (gl *GameLoop) ExecuteTurnPhase(ctx context.Context) (PhaseResult, error) {
	gl.mu.Lock()
	defer gl.mu.Unlock()

	if err := gl.requireRunning(); err != nil {
		return PhaseResult{}, err
	}

	t := gl.calendar.Current
	if t.IsComplete {
		return PhaseResult{}, fmt.Errorf("%w: advance to the next day first", turn.ErrTurnComplete)
	}

	p, err := gl.repo.GetPlayer(ctx, gl.playerID)
	if err != nil {
		return PhaseResult{}, fmt.Errorf("load player: %w", err)
	}
	if p == nil {
		return PhaseResult{}, fmt.Errorf("player %s disappeared from storage", gl.playerID)
	}

	start := time.Now()
	result := PhaseResult{Turn: t.Number, Phase: t.Phase.String()}

	switch t.Phase {
	case turn.PhasePlayerAction:
		// Player actions arrive through their own API calls during this
		// phase; executing it only acknowledges the window.
		result.Message = "The shop is open for your decisions."
		gl.logger.Phase(t.Phase.String(), t.Number, "player action window")

	case turn.PhaseAIAction:
		// Competitor simulation is stubbed; the phase exists so the day
		// cycle keeps its shape when it lands.
		result.Message = "Rival shops go about their business."
		gl.logger.Phase(t.Phase.String(), t.Number, "ai action stub")

	case turn.PhaseEvent:
		ev, err := gl.events.ProcessDailyEvents(ctx, t, *p)
		if err != nil {
			return PhaseResult{}, err
		}
		if ev.Occurred {
			metrics.Get().RecordEventTriggered()
		}
		result.Event = &ev
		result.Message = ev.Message

	case turn.PhaseSales:
		sr, err := gl.sales.ProcessDailySales(ctx, t, *p)
		if err != nil {
			return PhaseResult{}, err
		}
		gl.lastSales = &sr
		result.Sales = &sr
		result.Message = sr.Message

	case turn.PhaseSettlement:
		var revenue value.Money
		if gl.lastSales != nil {
			revenue = gl.lastSales.Revenue
		}
		st, err := gl.settle.ProcessDailySettlement(ctx, t, *p, revenue)
		if err != nil {
			return PhaseResult{}, err
		}
		result.Settlement = &st
		result.Message = st.Message

	case turn.PhaseCleanup:
		cr, err := gl.cleanup.ProcessDailyCleanup(ctx, gl.calendar, *p, gl.projects)
		if err != nil {
			return PhaseResult{}, err
		}
		gl.projects = cr.Projects
		result.Cleanup = &cr
		result.Message = cr.Message

	default:
		return PhaseResult{}, fmt.Errorf("no handler for phase %s", t.Phase)
	}

	metrics.Get().RecordPhase(time.Since(start))
	gl.log.Append(gamelog.Record{
		Type:       gamelog.RecordPhaseRun,
		TurnNumber: t.Number,
		Phase:      t.Phase.String(),
		Summary:    result.Message,
		Payload:    result,
	})

	return result, nil
}

// AdvancePhase moves the phase pointer forward. Completing the last phase
// rolls the day: the finished turn is persisted, the next day's turn replaces
// it and the within-day sales carry-over resets.
func (gl *GameLoop) AdvancePhase(ctx context.Context) (Status, error) {
	gl.mu.Lock()
	defer gl.mu.Unlock()

	if err := gl.requireRunning(); err != nil {
		return Status{}, err
	}

	t, err := gl.calendar.Current.AdvancePhase()
	if err != nil {
		return Status{}, err
	}

	if t.IsComplete {
		if err := gl.repo.SaveTurn(ctx, t); err != nil {
			return Status{}, fmt.Errorf("persist completed turn: %w", err)
		}
		next, err := t.NextTurn()
		if err != nil {
			return Status{}, err
		}
		if err := gl.repo.SaveTurn(ctx, next); err != nil {
			return Status{}, fmt.Errorf("persist next turn: %w", err)
		}

		gl.calendar = gl.calendar.WithTurn(next)
		gl.lastSales = nil

		metrics.Get().RecordDayCompleted()
		gl.log.Append(gamelog.Record{
			Type:       gamelog.RecordDayCompleted,
			TurnNumber: t.Number,
			Summary:    fmt.Sprintf("day %d complete, %s begins", t.Number, next.DisplayInfo()),
		})
		gl.logger.Info(fmt.Sprintf("day rollover: %s", next.DisplayInfo()))
	} else {
		if err := gl.repo.SaveTurn(ctx, t); err != nil {
			return Status{}, fmt.Errorf("persist turn: %w", err)
		}
		gl.calendar = gl.calendar.WithTurn(t)
	}

	p, err := gl.repo.GetPlayer(ctx, gl.playerID)
	if err != nil {
		return Status{}, fmt.Errorf("load player: %w", err)
	}
	if p == nil {
		return Status{}, fmt.Errorf("player %s disappeared from storage", gl.playerID)
	}
	return gl.statusLocked(*p), nil
}

// CurrentTurn returns the live turn value.
func (gl *GameLoop) CurrentTurn() (turn.Turn, error) {
	gl.mu.Lock()
	defer gl.mu.Unlock()
	if !gl.started {
		return turn.Turn{}, ErrNoActiveGame
	}
	return gl.calendar.Current, nil
}

// CurrentPhase returns the live phase.
func (gl *GameLoop) CurrentPhase() (turn.Phase, error) {
	t, err := gl.CurrentTurn()
	if err != nil {
		return 0, err
	}
	return t.Phase, nil
}

// Status reports the session for clients.
func (gl *GameLoop) Status(ctx context.Context) (Status, error) {
	gl.mu.Lock()
	defer gl.mu.Unlock()

	if !gl.started {
		return Status{}, ErrNoActiveGame
	}
	p, err := gl.repo.GetPlayer(ctx, gl.playerID)
	if err != nil {
		return Status{}, fmt.Errorf("load player: %w", err)
	}
	if p == nil {
		return Status{}, fmt.Errorf("player %s disappeared from storage", gl.playerID)
	}
	return gl.statusLocked(*p), nil
}

// StopGame halts the session, saving it to the autosave slot first.
func (gl *GameLoop) StopGame(ctx context.Context) error {
	gl.mu.Lock()
	if !gl.started {
		gl.mu.Unlock()
		return ErrNoActiveGame
	}
	if !gl.running {
		gl.mu.Unlock()
		return ErrGameNotRunning
	}
	gl.mu.Unlock()

	if err := gl.SaveGame(ctx, "autosave"); err != nil {
		return err
	}

	gl.mu.Lock()
	defer gl.mu.Unlock()
	gl.running = false
	gl.log.Append(gamelog.Record{
		Type:       gamelog.RecordGameStopped,
		TurnNumber: gl.calendar.Current.Number,
		Phase:      gl.calendar.Current.Phase.String(),
		Summary:    "session stopped",
	})
	gl.logger.Info("game stopped")
	return nil
}

// HandleEventChoice forwards the choice-branch path; see EventSystem.
func (gl *GameLoop) HandleEventChoice(ctx context.Context, eventID string, choiceIndex int) (EventResult, error) {
	gl.mu.Lock()
	defer gl.mu.Unlock()

	if err := gl.requireRunning(); err != nil {
		return EventResult{}, err
	}
	p, err := gl.repo.GetPlayer(ctx, gl.playerID)
	if err != nil {
		return EventResult{}, fmt.Errorf("load player: %w", err)
	}
	if p == nil {
		return EventResult{}, fmt.Errorf("player %s disappeared from storage", gl.playerID)
	}
	return gl.events.HandleEventChoice(eventID, choiceIndex, *p)
}

// StartResearch adds a project to the session and links it to the player.
func (gl *GameLoop) StartResearch(ctx context.Context, kind research.Kind, name, description string, difficulty, requiredStat int) (research.Research, error) {
	gl.mu.Lock()
	defer gl.mu.Unlock()

	if err := gl.requireRunning(); err != nil {
		return research.Research{}, err
	}

	proj, err := research.New(kind, name, description, difficulty, requiredStat)
	if err != nil {
		return research.Research{}, err
	}

	p, err := gl.repo.GetPlayer(ctx, gl.playerID)
	if err != nil {
		return research.Research{}, fmt.Errorf("load player: %w", err)
	}
	if p == nil {
		return research.Research{}, fmt.Errorf("player %s disappeared from storage", gl.playerID)
	}
	updated := p.AddResearch(proj.ID)
	if err := gl.repo.SavePlayer(ctx, updated); err != nil {
		return research.Research{}, fmt.Errorf("persist player: %w", err)
	}

	gl.projects = append(gl.projects, proj)
	gl.logger.Info(fmt.Sprintf("research started: %s (%s)", proj.Name, proj.Kind))
	return proj, nil
}

func (gl *GameLoop) requireRunning() error {
	if !gl.started {
		return ErrNoActiveGame
	}
	if !gl.running {
		return ErrGameNotRunning
	}
	return nil
}

// statusLocked builds the status snapshot; callers hold the mutex.
func (gl *GameLoop) statusLocked(p player.Player) Status {
	t := gl.calendar.Current
	return Status{
		Running:         gl.running,
		TurnNumber:      t.Number,
		GameDate:        t.GameDate.Format("2006-01-02"),
		Phase:           t.Phase.String(),
		TurnComplete:    t.IsComplete,
		ProgressPercent: t.ProgressPercent(),
		DaysElapsed:     gl.calendar.DaysElapsed(),
		Weekend:         gl.calendar.IsWeekend(),
		MonthEnd:        gl.calendar.IsMonthEnd(),
		PlayerName:      p.Name,
		Money:           p.Money.Format(),
		Fatigue:         p.Fatigue.Format(),
		FatigueLevel:    p.FatigueLevel().String(),
	}
}
