package network

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/chickenmaster/server/internal/engine"
	"github.com/chickenmaster/server/internal/gamelog"
	"github.com/chickenmaster/server/internal/platform/logger"
	"github.com/chickenmaster/server/internal/platform/metrics"
)

// Client represents an active WebSocket connection.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	lastCommandTime time.Time
}

// Hub maintains the set of active clients and broadcasts game records to them.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	mu         sync.Mutex
	loop       *engine.GameLoop
	logger     *logger.Logger
}

// NewHub initializes a new WebSocket Hub bound to the game loop.
func NewHub(loop *engine.GameLoop, log *logger.Logger) *Hub {
	return &Hub{
		broadcast:  make(chan []byte),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		loop:       loop,
		logger:     log,
	}
}

// Run starts the Hub's main loop to handle client connections and broadcasts.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.logger.Info("WebSocket Hub shutting down.")
			return
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			metrics.Get().RecordWSConnection(1)
			h.logger.Info("New WebSocket client connected")
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				metrics.Get().RecordWSConnection(-1)
				h.logger.Info("WebSocket client disconnected")
			}
			h.mu.Unlock()
		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
					metrics.Get().RecordWSMessage(false)
				default:
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// BroadcastRecord serializes a game-log record and sends it to all clients.
func (h *Hub) BroadcastRecord(record gamelog.Record) {
	payload, err := json.Marshal(record)
	if err != nil {
		metrics.Get().RecordWSError()
		h.logger.Error("Failed to serialize record for WebSocket broadcast: " + err.Error())
		return
	}
	h.broadcast <- payload
}

// StartRecordPoller spawns a goroutine that polls the game log and pushes new
// records to the Hub. The hub runs independently of the engine's phase
// dispatch while still picking up every record.
func (h *Hub) StartRecordPoller(ctx context.Context, log *gamelog.Log) {
	go func() {
		pollInterval := time.NewTicker(200 * time.Millisecond)
		defer pollInterval.Stop()

		lastProcessed := 0

		for {
			select {
			case <-ctx.Done():
				return
			case <-pollInterval.C:
				all := log.Replay()
				if len(all) > lastProcessed {
					for _, record := range all[lastProcessed:] {
						h.BroadcastRecord(record)
					}
					lastProcessed = len(all)
				}
			}
		}
	}()
}
