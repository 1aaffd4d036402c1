package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	"github.com/chickenmaster/server/internal/domain/research"
	"github.com/chickenmaster/server/internal/engine"
	"github.com/chickenmaster/server/internal/gamelog"
	"github.com/chickenmaster/server/internal/infra/eventloader"
	"github.com/chickenmaster/server/internal/infra/storage"
	"github.com/chickenmaster/server/internal/network"
	"github.com/chickenmaster/server/internal/platform/logger"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	db, err := storage.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("storage.Open failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	appLogger := logger.NewLogger()
	gameLog := gamelog.NewLog(db)
	loader := eventloader.NewCSVLoader(filepath.Join(t.TempDir(), "missing.csv"))
	loop := engine.NewGameLoop(db, loader, engine.NewRand(1), gameLog, appLogger)
	hub := network.NewHub(loop, appLogger)

	srv := httptest.NewServer(newServeMux(loop, db, hub, appLogger))
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url, body string) (int, []byte) {
	t.Helper()
	resp, err := http.Post(url, "application/json", bytes.NewBufferString(body))
	if err != nil {
		t.Fatalf("POST %s failed: %v", url, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("Reading response body failed: %v", err)
	}
	return resp.StatusCode, data
}

func TestEventChoiceRoute(t *testing.T) {
	srv := newTestServer(t)

	// Without a session the route reports the conflict, not 404.
	status, _ := postJSON(t, srv.URL+"/api/game/event/choice", `{"event_id":"EVT001","choice":0}`)
	if status != http.StatusConflict {
		t.Errorf("Expected 409 before a game starts, got %d", status)
	}

	if status, _ := postJSON(t, srv.URL+"/api/game/start", `{"player_name":"Chicken Kim"}`); status != http.StatusOK {
		t.Fatalf("Expected 200 from start, got %d", status)
	}

	status, _ = postJSON(t, srv.URL+"/api/game/event/choice", `{"event_id":"EVT001","choice":0}`)
	if status != http.StatusNotImplemented {
		t.Errorf("Expected 501 for the choice branch, got %d", status)
	}

	if status, _ := postJSON(t, srv.URL+"/api/game/event/choice", `{"choice":0}`); status != http.StatusBadRequest {
		t.Errorf("Expected 400 without an event id, got %d", status)
	}
}

func TestResearchStartRoute(t *testing.T) {
	srv := newTestServer(t)

	if status, _ := postJSON(t, srv.URL+"/api/game/start", `{"player_name":"Chicken Kim"}`); status != http.StatusOK {
		t.Fatalf("Expected 200 from start, got %d", status)
	}

	status, body := postJSON(t, srv.URL+"/api/game/research/start",
		`{"kind":"recipe","name":"Honey Glaze","description":"Sweet and sticky.","difficulty":10,"required_stat":30}`)
	if status != http.StatusOK {
		t.Fatalf("Expected 200 from research start, got %d: %s", status, body)
	}

	var proj research.Research
	if err := json.Unmarshal(body, &proj); err != nil {
		t.Fatalf("Decoding research response failed: %v", err)
	}
	if proj.ID == uuid.Nil {
		t.Error("Expected the started project to carry an id")
	}
	if proj.Kind != research.KindRecipe {
		t.Errorf("Expected kind recipe, got %s", proj.Kind)
	}

	if status, _ := postJSON(t, srv.URL+"/api/game/research/start",
		`{"kind":"marketing","name":"Flyers"}`); status != http.StatusBadRequest {
		t.Errorf("Expected 400 for an unknown kind, got %d", status)
	}
	if status, _ := postJSON(t, srv.URL+"/api/game/research/start",
		`{"kind":"recipe","name":"","difficulty":10}`); status != http.StatusBadRequest {
		t.Errorf("Expected 400 for an empty name, got %d", status)
	}
}
