// Package main is the entry point for the Chickenmaster game server.
// It only handles dependency injection and server initialization.
// NO business logic belongs here.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/gorilla/websocket"

	"github.com/chickenmaster/server/internal/domain/research"
	"github.com/chickenmaster/server/internal/domain/value"
	"github.com/chickenmaster/server/internal/engine"
	"github.com/chickenmaster/server/internal/gamelog"
	"github.com/chickenmaster/server/internal/infra/eventloader"
	"github.com/chickenmaster/server/internal/infra/storage"
	"github.com/chickenmaster/server/internal/network"
	"github.com/chickenmaster/server/internal/platform/config"
	"github.com/chickenmaster/server/internal/platform/logger"
	"github.com/chickenmaster/server/internal/platform/metrics"
)

func main() {
	log.Println("[GAME-SERVER] Initializing Chickenmaster Authoritative Server...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	appLogger := logger.NewLogger()

	appLogger.Info("Initializing SQLite database " + cfg.DBPath + "...")
	db, err := storage.Open(cfg.DBPath)
	if err != nil {
		appLogger.Error("Failed to initialize SQLite: " + err.Error())
		os.Exit(1)
	}
	defer db.Close()

	appLogger.Info("Bootstrapping Game Log...")
	gameLog := gamelog.NewLog(db)

	appLogger.Info("Loading event content from " + cfg.EventsCSVPath + "...")
	loader := eventloader.NewCSVLoader(cfg.EventsCSVPath)

	appLogger.Info("Bootstrapping Game Loop...")
	rnd := engine.NewRand(cfg.RNGSeed)
	loop := engine.NewGameLoop(db, loader, rnd, gameLog, appLogger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appLogger.Info("Bootstrapping WebSocket Hub...")
	hub := network.NewHub(loop, appLogger)
	go hub.Run(ctx)
	hub.StartRecordPoller(ctx, gameLog)

	mux := newServeMux(loop, db, hub, appLogger)

	go func() {
		log.Println("[GAME-SERVER] HTTP API & WS Server listening on " + cfg.Addr)
		if err := http.ListenAndServe(cfg.Addr, mux); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	log.Println("[GAME-SERVER] Server running. Press Ctrl+C to exit.")

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("[GAME-SERVER] Shutting down...")
}

// newServeMux wires the HTTP API routes onto the game loop.
func newServeMux(loop *engine.GameLoop, db *storage.DB, hub *network.Hub, appLogger *logger.Logger) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		serveWs(hub, w, r, appLogger)
	})

	mux.HandleFunc("/metrics", metrics.Handler())

	mux.HandleFunc("/api/game/start", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		type requestParams struct {
			PlayerName string `json:"player_name"`
			StoreName  string `json:"store_name"`
		}
		var req requestParams
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid payload", http.StatusBadRequest)
			return
		}
		if req.PlayerName == "" {
			http.Error(w, "player_name is required", http.StatusBadRequest)
			return
		}
		if req.StoreName == "" {
			req.StoreName = req.PlayerName + "'s Chicken"
		}

		status, err := loop.StartNewGame(r.Context(), req.PlayerName, req.StoreName)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, status)
	})

	mux.HandleFunc("/api/game/load", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req struct {
			Slot string `json:"slot"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Slot == "" {
			http.Error(w, "slot is required", http.StatusBadRequest)
			return
		}
		status, err := loop.LoadGame(r.Context(), req.Slot)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, status)
	})

	mux.HandleFunc("/api/game/save", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req struct {
			Slot string `json:"slot"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Slot == "" {
			http.Error(w, "slot is required", http.StatusBadRequest)
			return
		}
		if err := loop.SaveGame(r.Context(), req.Slot); err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, map[string]string{"status": "ok", "slot": req.Slot})
	})

	mux.HandleFunc("/api/game/saves", func(w http.ResponseWriter, r *http.Request) {
		slots, err := db.ListSavedGames(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, map[string]interface{}{"slots": slots})
	})

	mux.HandleFunc("/api/game/phase/execute", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		result, err := loop.ExecuteTurnPhase(r.Context())
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, result)
	})

	mux.HandleFunc("/api/game/phase/advance", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		status, err := loop.AdvancePhase(r.Context())
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, status)
	})

	mux.HandleFunc("/api/game/status", func(w http.ResponseWriter, r *http.Request) {
		status, err := loop.Status(r.Context())
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, status)
	})

	mux.HandleFunc("/api/game/event/choice", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req struct {
			EventID string `json:"event_id"`
			Choice  int    `json:"choice"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.EventID == "" {
			http.Error(w, "event_id is required", http.StatusBadRequest)
			return
		}
		result, err := loop.HandleEventChoice(r.Context(), req.EventID, req.Choice)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, result)
	})

	mux.HandleFunc("/api/game/research/start", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req struct {
			Kind         string `json:"kind"`
			Name         string `json:"name"`
			Description  string `json:"description"`
			Difficulty   int    `json:"difficulty"`
			RequiredStat int    `json:"required_stat"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid payload", http.StatusBadRequest)
			return
		}
		kind, err := research.ParseKind(req.Kind)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		proj, err := loop.StartResearch(r.Context(), kind, req.Name, req.Description, req.Difficulty, req.RequiredStat)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, proj)
	})

	mux.HandleFunc("/api/game/log", func(w http.ResponseWriter, r *http.Request) {
		turnNumber, err := strconv.Atoi(r.URL.Query().Get("turn"))
		if err != nil || turnNumber < 1 {
			http.Error(w, "turn query parameter is required", http.StatusBadRequest)
			return
		}
		records, err := db.LoadRecords(r.Context(), turnNumber)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, map[string]interface{}{"turn": turnNumber, "records": records})
	})

	mux.HandleFunc("/api/game/stop", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if err := loop.StopGame(r.Context()); err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, map[string]string{"status": "stopped"})
	})

	return mux
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

// writeEngineError maps engine sentinel errors to HTTP status codes.
func writeEngineError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, engine.ErrNoActiveGame), errors.Is(err, engine.ErrGameNotRunning):
		status = http.StatusConflict
	case errors.Is(err, engine.ErrGameAlreadyRunning):
		status = http.StatusConflict
	case errors.Is(err, engine.ErrUnsupportedOperation):
		status = http.StatusNotImplemented
	case errors.Is(err, value.ErrValidation):
		status = http.StatusBadRequest
	}
	http.Error(w, err.Error(), status)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow cross-origin requests for the frontend dev server
	},
}

// serveWs handles websocket requests from the peer.
func serveWs(hub *network.Hub, w http.ResponseWriter, r *http.Request, log *logger.Logger) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("Failed to upgrade websocket connection")
		return
	}

	client := network.NewClient(hub, conn)
	client.Register()

	// Allow collection of memory referenced by the caller by doing all work in
	// new goroutines.
	go client.WritePump()
	go client.ReadPump()
}
