package eventloader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/chickenmaster/server/internal/domain/gameevent"
)

func writeSheet(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "events.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write sheet: %v", err)
	}
	return path
}

func TestLoadAllEvents(t *testing.T) {
	path := writeSheet(t, `id,name,description,effects
EVT001,Inspection,A surprise inspection.,MONEY_CHANGE:-50000;STAT_EXP:management:10
EVT002,Quiet Day,Rain keeps everyone home.,FATIGUE_CHANGE:-15
`)

	loader := NewCSVLoader(path)
	events, err := loader.LoadAllEvents()
	if err != nil {
		t.Fatalf("LoadAllEvents failed: %v", err)
	}

	if len(events) != 2 {
		t.Fatalf("Expected 2 events, got %d", len(events))
	}

	first := events[0]
	if first.ID != "EVT001" {
		t.Errorf("Expected id EVT001, got %s", first.ID)
	}
	if len(first.AutoEffects) != 2 {
		t.Fatalf("Expected 2 effects, got %d", len(first.AutoEffects))
	}
	if first.AutoEffects[0].Type != gameevent.EffectMoneyChange || first.AutoEffects[0].Value != -50000 {
		t.Errorf("Expected MONEY_CHANGE:-50000 first, got %+v", first.AutoEffects[0])
	}
	if first.AutoEffects[1].Stat != "management" || first.AutoEffects[1].Value != 10 {
		t.Errorf("Expected STAT_EXP:management:10 second, got %+v", first.AutoEffects[1])
	}
}

func TestLoadCachesResult(t *testing.T) {
	path := writeSheet(t, `id,name,description,effects
EVT001,Inspection,A surprise inspection.,MONEY_CHANGE:-50000
`)

	loader := NewCSVLoader(path)
	if _, err := loader.LoadAllEvents(); err != nil {
		t.Fatalf("first load failed: %v", err)
	}

	// Removing the file must not break subsequent loads.
	os.Remove(path)
	events, err := loader.LoadAllEvents()
	if err != nil {
		t.Fatalf("cached load failed: %v", err)
	}
	if len(events) != 1 {
		t.Errorf("Expected cached single event, got %d", len(events))
	}
}

func TestLoadRejectsBadHeader(t *testing.T) {
	path := writeSheet(t, `identifier,name,description,effects
EVT001,Inspection,A surprise inspection.,MONEY_CHANGE:-50000
`)

	if _, err := NewCSVLoader(path).LoadAllEvents(); err == nil {
		t.Error("Expected error for a bad header")
	}
}

func TestLoadRejectsMalformedEffect(t *testing.T) {
	path := writeSheet(t, `id,name,description,effects
EVT001,Inspection,A surprise inspection.,MONEY_CHANGE
`)

	if _, err := NewCSVLoader(path).LoadAllEvents(); err == nil {
		t.Error("Expected error for a malformed effect")
	}
}

func TestLoadRejectsMissingFile(t *testing.T) {
	if _, err := NewCSVLoader("does-not-exist.csv").LoadAllEvents(); err == nil {
		t.Error("Expected error for a missing file")
	}
}

func TestLoadRejectsEventWithoutEffects(t *testing.T) {
	path := writeSheet(t, `id,name,description,effects
EVT001,Inspection,A surprise inspection.,
`)

	if _, err := NewCSVLoader(path).LoadAllEvents(); err == nil {
		t.Error("Expected error for an event with no effects")
	}
}
