package gamelog

import (
	"sync"
	"testing"
)

type memPersister struct {
	mu      sync.Mutex
	records []Record
	done    chan struct{}
}

func (m *memPersister) AppendRecord(record Record) error {
	m.mu.Lock()
	m.records = append(m.records, record)
	m.mu.Unlock()
	if m.done != nil {
		m.done <- struct{}{}
	}
	return nil
}

func TestAppendAssignsIDAndTimestamp(t *testing.T) {
	log := NewLog(nil)

	log.Append(Record{Type: RecordPhaseRun, TurnNumber: 1, Phase: "sales", Summary: "sold chicken"})

	records := log.Replay()
	if len(records) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(records))
	}
	if records[0].ID == "" {
		t.Error("Expected an assigned record ID")
	}
	if records[0].Timestamp.IsZero() {
		t.Error("Expected an assigned timestamp")
	}
}

func TestByTurnFilters(t *testing.T) {
	log := NewLog(nil)
	log.Append(Record{Type: RecordPhaseRun, TurnNumber: 1, Phase: "sales"})
	log.Append(Record{Type: RecordPhaseRun, TurnNumber: 2, Phase: "sales"})
	log.Append(Record{Type: RecordDayCompleted, TurnNumber: 1})

	day1 := log.ByTurn(1)
	if len(day1) != 2 {
		t.Errorf("Expected 2 records for turn 1, got %d", len(day1))
	}
	if log.Len() != 3 {
		t.Errorf("Expected 3 records total, got %d", log.Len())
	}
}

func TestReplayReturnsCopy(t *testing.T) {
	log := NewLog(nil)
	log.Append(Record{Type: RecordGameStarted, TurnNumber: 1})

	first := log.Replay()
	first[0].Summary = "tampered"

	if log.Replay()[0].Summary == "tampered" {
		t.Error("Expected Replay to return an independent copy")
	}
}

func TestWriteThroughPersister(t *testing.T) {
	p := &memPersister{done: make(chan struct{}, 1)}
	log := NewLog(p)

	log.Append(Record{Type: RecordGameStarted, TurnNumber: 1, Summary: "opened shop"})
	<-p.done

	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.records) != 1 {
		t.Fatalf("Expected 1 persisted record, got %d", len(p.records))
	}
	if p.records[0].Summary != "opened shop" {
		t.Errorf("Expected persisted summary, got %q", p.records[0].Summary)
	}
}
