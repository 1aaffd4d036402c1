package network

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/gorilla/websocket"

	"github.com/chickenmaster/server/internal/platform/metrics"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second
	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second
	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10
	// Maximum message size allowed from peer.
	maxMessageSize = 512

	// Minimum gap between two commands from the same client.
	commandCooldown = 500 * time.Millisecond
)

// NewClient creates a new WebSocket client and returns it.
func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		hub:  hub,
		conn: conn,
		send: make(chan []byte, 256),
	}
}

// Command is an incoming instruction from a presentation client.
type Command struct {
	Type string `json:"type"` // "EXECUTE_PHASE", "ADVANCE_PHASE", "STATUS"
}

// commandReply wraps a command outcome sent back to the issuing client only.
type commandReply struct {
	Type   string      `json:"type"`
	OK     bool        `json:"ok"`
	Error  string      `json:"error,omitempty"`
	Result interface{} `json:"result,omitempty"`
}

// Register adds the client to the hub.
func (c *Client) Register() {
	c.hub.register <- c
}

// ReadPump pumps messages from the websocket connection to the hub.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("error: %v", err)
				metrics.Get().RecordWSError()
			}
			break
		}
		metrics.Get().RecordWSMessage(true)

		var cmd Command
		if err := json.Unmarshal(message, &cmd); err != nil {
			c.hub.logger.Error("Failed to parse command from WebSocket. err: " + err.Error())
			continue
		}

		c.handleCommand(cmd)
	}
}

func (c *Client) handleCommand(cmd Command) {
	// Rate limiting: phase commands are cheap but not free.
	if time.Since(c.lastCommandTime) < commandCooldown {
		c.hub.logger.Warn("Rate limit exceeded for client command " + cmd.Type)
		return
	}
	c.lastCommandTime = time.Now()

	ctx := context.Background()
	reply := commandReply{Type: cmd.Type, OK: true}

	switch cmd.Type {
	case "EXECUTE_PHASE":
		result, err := c.hub.loop.ExecuteTurnPhase(ctx)
		if err != nil {
			reply.OK = false
			reply.Error = err.Error()
		} else {
			reply.Result = result
		}
	case "ADVANCE_PHASE":
		status, err := c.hub.loop.AdvancePhase(ctx)
		if err != nil {
			reply.OK = false
			reply.Error = err.Error()
		} else {
			reply.Result = status
		}
	case "STATUS":
		status, err := c.hub.loop.Status(ctx)
		if err != nil {
			reply.OK = false
			reply.Error = err.Error()
		} else {
			reply.Result = status
		}
	default:
		c.hub.logger.Warn("Unknown command type: " + cmd.Type)
		reply.OK = false
		reply.Error = "unknown command type"
	}

	payload, err := json.Marshal(reply)
	if err != nil {
		metrics.Get().RecordWSError()
		return
	}
	select {
	case c.send <- payload:
		metrics.Get().RecordWSMessage(false)
	default:
	}
}

// WritePump pumps messages from the hub to the websocket connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Add queued messages to the current websocket message.
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
