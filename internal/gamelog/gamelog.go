// Package gamelog provides the append-only record of phase outcomes. It is
// the audit trail of the day cycle: every executed phase and day rollover is
// appended here, persisted write-through, and replayed for spectators.
package gamelog

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// RecordType categorizes a log record.
type RecordType string

const (
	RecordGameStarted  RecordType = "GAME_STARTED"
	RecordGameLoaded   RecordType = "GAME_LOADED"
	RecordGameStopped  RecordType = "GAME_STOPPED"
	RecordPhaseRun     RecordType = "PHASE_RUN"
	RecordDayCompleted RecordType = "DAY_COMPLETED"
)

// Record is an immutable entry describing one engine transition.
type Record struct {
	ID         string      `json:"id"`
	Timestamp  time.Time   `json:"timestamp"`
	Type       RecordType  `json:"type"`
	TurnNumber int         `json:"turn_number"`
	Phase      string      `json:"phase"`
	Summary    string      `json:"summary"`
	Payload    interface{} `json:"payload,omitempty"`
}

// Persister defines how a record is durably stored.
type Persister interface {
	AppendRecord(record Record) error
}

// Log is the in-memory append-only log with optional write-through
// persistence.
type Log struct {
	mu        sync.RWMutex
	records   []Record
	persister Persister
}

// NewLog creates a log with an optional persister.
func NewLog(persister Persister) *Log {
	return &Log{
		records:   make([]Record, 0),
		persister: persister,
	}
}

// Append adds a record. Records are immutable once appended; the persister
// write happens asynchronously so a slow disk never stalls a phase.
func (l *Log) Append(record Record) {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now()
	}

	l.mu.Lock()
	l.records = append(l.records, record)
	l.mu.Unlock()

	if l.persister != nil {
		go func(r Record) {
			_ = l.persister.AppendRecord(r)
		}(record)
	}
}

// ByTurn returns all records from a specific turn.
func (l *Log) ByTurn(turnNumber int) []Record {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var result []Record
	for _, r := range l.records {
		if r.TurnNumber == turnNumber {
			result = append(result, r)
		}
	}
	return result
}

// Replay returns the full history of records.
func (l *Log) Replay() []Record {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Record, len(l.records))
	copy(out, l.records)
	return out
}

// Len returns the number of appended records.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.records)
}
