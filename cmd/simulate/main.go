// Package main - simulate
// Headless day-runner: plays N in-game days against a throwaway database and
// prints the per-day settlement summaries. Useful for balancing the economy
// without a frontend.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/chickenmaster/server/internal/domain/research"
	"github.com/chickenmaster/server/internal/domain/turn"
	"github.com/chickenmaster/server/internal/engine"
	"github.com/chickenmaster/server/internal/gamelog"
	"github.com/chickenmaster/server/internal/infra/eventloader"
	"github.com/chickenmaster/server/internal/infra/storage"
	"github.com/chickenmaster/server/internal/platform/logger"
)

func main() {
	days := flag.Int("days", 30, "Number of in-game days to simulate")
	seed := flag.Int64("seed", 0, "RNG seed (0 = random)")
	eventsCSV := flag.String("events", "content/events.csv", "Event content sheet")
	playerName := flag.String("player", "Chicken Kim", "Player name")
	storeName := flag.String("store", "Kim's Fried Chicken", "Starting store name")
	researchName := flag.String("research", "", "Start a recipe research project with this name on day 1")
	keepDB := flag.String("db", "", "Database path (empty = temp file, removed after run)")
	flag.Parse()

	dbPath := *keepDB
	if dbPath == "" {
		dbPath = filepath.Join(os.TempDir(), fmt.Sprintf("chickenmaster-sim-%d.db", os.Getpid()))
		defer os.Remove(dbPath)
	}

	db, err := storage.Open(dbPath)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	appLogger := logger.NewLogger()
	gameLog := gamelog.NewLog(nil)
	loader := eventloader.NewCSVLoader(*eventsCSV)
	rnd := engine.NewRand(*seed)
	loop := engine.NewGameLoop(db, loader, rnd, gameLog, appLogger)

	ctx := context.Background()

	status, err := loop.StartNewGame(ctx, *playerName, *storeName)
	if err != nil {
		log.Fatalf("start game: %v", err)
	}
	fmt.Printf("=== %s opens %s with %s ===\n", *playerName, *storeName, status.Money)

	if *researchName != "" {
		proj, err := loop.StartResearch(ctx, research.KindRecipe, *researchName, "Simulated project.", 10, 0)
		if err != nil {
			log.Fatalf("start research: %v", err)
		}
		fmt.Printf("=== research started: %s ===\n", proj.Name)
	}

	for day := 1; day <= *days; day++ {
		for range turn.Phases() {
			result, err := loop.ExecuteTurnPhase(ctx)
			if err != nil {
				log.Fatalf("day %d: execute phase: %v", day, err)
			}

			switch {
			case result.Event != nil && result.Event.Occurred:
				fmt.Printf("  day %3d event:      %s\n", day, result.Event.Message)
			case result.Settlement != nil:
				s := result.Settlement
				fmt.Printf("  day %3d settlement: revenue %s, costs %s, net %s (balance %s)\n",
					day, s.Revenue.Format(), s.TotalCost.Format(), s.NetProfit.Format(),
					s.Player.Money.Format())
			case result.Cleanup != nil && len(result.Cleanup.ResearchCompleted) > 0:
				fmt.Printf("  day %3d research:   completed %v\n", day, result.Cleanup.ResearchCompleted)
			}

			if _, err := loop.AdvancePhase(ctx); err != nil {
				log.Fatalf("day %d: advance phase: %v", day, err)
			}
		}
	}

	final, err := loop.Status(ctx)
	if err != nil {
		log.Fatalf("final status: %v", err)
	}
	fmt.Printf("=== after %d days: balance %s, fatigue %s (%s) ===\n",
		*days, final.Money, final.Fatigue, final.FatigueLevel)

	if err := loop.StopGame(ctx); err != nil {
		log.Fatalf("stop game: %v", err)
	}
}
