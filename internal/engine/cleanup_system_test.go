package engine

import (
	"context"
	"testing"

	"github.com/chickenmaster/server/internal/domain/research"
	"github.com/chickenmaster/server/internal/domain/rules"
	"github.com/chickenmaster/server/internal/domain/turn"
	"github.com/chickenmaster/server/internal/domain/value"
)

func testCalendar(t *testing.T) turn.Calendar {
	t.Helper()
	cal, err := turn.NewCalendar(testDate(), testTurn(t))
	if err != nil {
		t.Fatalf("NewCalendar failed: %v", err)
	}
	return cal
}

func TestCleanupRecoversFatigue(t *testing.T) {
	repo := newFakeRepo()
	ctx := context.Background()
	p := testPlayer(t, repo, 1000)
	p.Fatigue = 35
	repo.SavePlayer(ctx, p)

	cs := NewCleanupSystem(repo, testLogger())
	result, err := cs.ProcessDailyCleanup(ctx, testCalendar(t), p, nil)
	if err != nil {
		t.Fatalf("ProcessDailyCleanup failed: %v", err)
	}

	if result.FatigueRecovered != rules.NightlyFatigueRecover {
		t.Errorf("Expected weekday recovery %d, got %d", rules.NightlyFatigueRecover, result.FatigueRecovered)
	}
	if result.Player.Fatigue != 15 {
		t.Errorf("Expected fatigue 35-20=15, got %v", result.Player.Fatigue)
	}
}

func TestCleanupWeekendRecoversMore(t *testing.T) {
	repo := newFakeRepo()
	ctx := context.Background()
	p := testPlayer(t, repo, 1000)
	p.Fatigue = 100
	repo.SavePlayer(ctx, p)

	saturday := turn.Turn{Number: 6, GameDate: testDate().AddDate(0, 0, 5), Phase: turn.PhaseCleanup}
	cal, err := turn.NewCalendar(testDate(), saturday)
	if err != nil {
		t.Fatalf("NewCalendar failed: %v", err)
	}

	cs := NewCleanupSystem(repo, testLogger())
	result, err := cs.ProcessDailyCleanup(ctx, cal, p, nil)
	if err != nil {
		t.Fatalf("ProcessDailyCleanup failed: %v", err)
	}

	want := rules.NightlyFatigueRecover + rules.WeekendExtraRecover
	if result.FatigueRecovered != want {
		t.Errorf("Expected weekend recovery %d, got %d", want, result.FatigueRecovered)
	}
	if result.Player.Fatigue != value.Percent(100-want) {
		t.Errorf("Expected fatigue %d, got %v", 100-want, result.Player.Fatigue)
	}
}

func TestCleanupAdvancesResearch(t *testing.T) {
	repo := newFakeRepo()
	ctx := context.Background()
	p := testPlayer(t, repo, 1000) // tech base 50

	// Requirement 30, difficulty 10: (50-30)/10 = 2 points per night.
	proj, err := research.New(research.KindRecipe, "Honey Glaze", "Sweet and sticky.", 10, 30)
	if err != nil {
		t.Fatalf("research.New failed: %v", err)
	}
	// Out of reach: requirement above the tech stat.
	locked, err := research.New(research.KindEquipment, "Smart Fryer", "Needs more tech.", 1, 90)
	if err != nil {
		t.Fatalf("research.New failed: %v", err)
	}

	cs := NewCleanupSystem(repo, testLogger())
	result, err := cs.ProcessDailyCleanup(ctx, testCalendar(t), p, []research.Research{proj, locked})
	if err != nil {
		t.Fatalf("ProcessDailyCleanup failed: %v", err)
	}

	if len(result.Projects) != 2 {
		t.Fatalf("Expected 2 projects back, got %d", len(result.Projects))
	}
	if result.Projects[0].Progress != 2 {
		t.Errorf("Expected honey glaze at progress 2, got %d", result.Projects[0].Progress)
	}
	if result.Projects[1].Progress != 0 {
		t.Errorf("Expected locked project untouched, got %d", result.Projects[1].Progress)
	}
	if len(result.ResearchAdvanced) != 1 {
		t.Errorf("Expected 1 advanced project, got %d", len(result.ResearchAdvanced))
	}
}

func TestCleanupReportsCompletion(t *testing.T) {
	repo := newFakeRepo()
	ctx := context.Background()
	p := testPlayer(t, repo, 1000)

	proj, _ := research.New(research.KindRecipe, "Final Touch", "Nearly done.", 10, 30)
	proj = proj.Advance(99)

	cs := NewCleanupSystem(repo, testLogger())
	result, err := cs.ProcessDailyCleanup(ctx, testCalendar(t), p, []research.Research{proj})
	if err != nil {
		t.Fatalf("ProcessDailyCleanup failed: %v", err)
	}

	if len(result.ResearchCompleted) != 1 {
		t.Fatalf("Expected 1 completed project, got %d", len(result.ResearchCompleted))
	}
	if !result.Projects[0].IsComplete() {
		t.Error("Expected project to be complete")
	}
}
