// Package metrics provides observability for the game server.
// Counters cover phase execution, save writes and WebSocket traffic.
package metrics

import (
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// Collector gathers engine performance metrics.
type Collector struct {
	// Phase metrics
	PhasesExecuted  int64
	PhaseLatencySum int64 // nanoseconds
	PhaseLatencyMax int64
	LastPhaseTime   time.Time

	// Days completed and game events that actually fired
	DaysCompleted   int64
	EventsTriggered int64
	Settlements     int64
	NetProfitTotal  int64 // won, signed

	// Persistence metrics
	SavesWritten    int64
	SaveLatencySum  int64
	SaveLatencyMax  int64
	SaveWriteErrors int64

	// WebSocket metrics
	WSConnectionsActive int64
	WSMessagesIn        int64
	WSMessagesOut       int64
	WSErrors            int64

	// System
	StartTime time.Time
	mu        sync.RWMutex
}

// Global collector instance
var collector = &Collector{
	StartTime: time.Now(),
}

// Get returns the global collector.
func Get() *Collector {
	return collector
}

// RecordPhase records a completed phase execution.
func (c *Collector) RecordPhase(latency time.Duration) {
	atomic.AddInt64(&c.PhasesExecuted, 1)
	atomic.AddInt64(&c.PhaseLatencySum, int64(latency))

	// Update max (non-atomic but acceptable for metrics)
	if int64(latency) > atomic.LoadInt64(&c.PhaseLatencyMax) {
		atomic.StoreInt64(&c.PhaseLatencyMax, int64(latency))
	}

	c.mu.Lock()
	c.LastPhaseTime = time.Now()
	c.mu.Unlock()
}

// RecordDayCompleted records a full day rollover.
func (c *Collector) RecordDayCompleted() {
	atomic.AddInt64(&c.DaysCompleted, 1)
}

// RecordEventTriggered records a daily event that actually fired.
func (c *Collector) RecordEventTriggered() {
	atomic.AddInt64(&c.EventsTriggered, 1)
}

// RecordSettlement records a daily close-out and its net profit.
func (c *Collector) RecordSettlement(netProfit int64) {
	atomic.AddInt64(&c.Settlements, 1)
	atomic.AddInt64(&c.NetProfitTotal, netProfit)
}

// RecordSave records a repository write.
func (c *Collector) RecordSave(latency time.Duration, err error) {
	atomic.AddInt64(&c.SavesWritten, 1)
	atomic.AddInt64(&c.SaveLatencySum, int64(latency))

	if int64(latency) > atomic.LoadInt64(&c.SaveLatencyMax) {
		atomic.StoreInt64(&c.SaveLatencyMax, int64(latency))
	}

	if err != nil {
		atomic.AddInt64(&c.SaveWriteErrors, 1)
	}
}

// RecordWSConnection records WebSocket connection changes.
func (c *Collector) RecordWSConnection(delta int64) {
	atomic.AddInt64(&c.WSConnectionsActive, delta)
}

// RecordWSMessage records WebSocket messages.
func (c *Collector) RecordWSMessage(incoming bool) {
	if incoming {
		atomic.AddInt64(&c.WSMessagesIn, 1)
	} else {
		atomic.AddInt64(&c.WSMessagesOut, 1)
	}
}

// RecordWSError records a WebSocket error.
func (c *Collector) RecordWSError() {
	atomic.AddInt64(&c.WSErrors, 1)
}

// Snapshot returns current metrics as a map.
func (c *Collector) Snapshot() map[string]interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	phases := atomic.LoadInt64(&c.PhasesExecuted)
	saves := atomic.LoadInt64(&c.SavesWritten)

	var phaseAvg, saveAvg float64
	if phases > 0 {
		phaseAvg = float64(atomic.LoadInt64(&c.PhaseLatencySum)) / float64(phases) / 1e6 // ms
	}
	if saves > 0 {
		saveAvg = float64(atomic.LoadInt64(&c.SaveLatencySum)) / float64(saves) / 1e6
	}

	return map[string]interface{}{
		"uptime_seconds": time.Since(c.StartTime).Seconds(),

		"phases": map[string]interface{}{
			"executed":       phases,
			"avg_latency_ms": phaseAvg,
			"max_latency_ms": float64(atomic.LoadInt64(&c.PhaseLatencyMax)) / 1e6,
			"last_phase":     c.LastPhaseTime.Format(time.RFC3339),
		},

		"game": map[string]interface{}{
			"days_completed":   atomic.LoadInt64(&c.DaysCompleted),
			"events_triggered": atomic.LoadInt64(&c.EventsTriggered),
			"settlements":      atomic.LoadInt64(&c.Settlements),
			"net_profit_total": atomic.LoadInt64(&c.NetProfitTotal),
		},

		"saves": map[string]interface{}{
			"written":          saves,
			"avg_write_lat_ms": saveAvg,
			"max_write_lat_ms": float64(atomic.LoadInt64(&c.SaveLatencyMax)) / 1e6,
			"errors":           atomic.LoadInt64(&c.SaveWriteErrors),
		},

		"websocket": map[string]interface{}{
			"active_connections": atomic.LoadInt64(&c.WSConnectionsActive),
			"messages_in":        atomic.LoadInt64(&c.WSMessagesIn),
			"messages_out":       atomic.LoadInt64(&c.WSMessagesOut),
			"errors":             atomic.LoadInt64(&c.WSErrors),
		},
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-cache")

		snapshot := collector.Snapshot()
		json.NewEncoder(w).Encode(snapshot)
	}
}
