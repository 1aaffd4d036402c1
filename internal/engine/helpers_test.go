package engine

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/chickenmaster/server/internal/domain/gameevent"
	"github.com/chickenmaster/server/internal/domain/player"
	"github.com/chickenmaster/server/internal/domain/store"
	"github.com/chickenmaster/server/internal/domain/turn"
	"github.com/chickenmaster/server/internal/domain/value"
	"github.com/chickenmaster/server/internal/platform/logger"
)

// fakeRepo is the in-memory Repository used by the engine tests.
type fakeRepo struct {
	mu      sync.Mutex
	players map[uuid.UUID]player.Player
	stores  map[uuid.UUID]store.Store
	current *turn.Turn
	saves   map[string][]byte
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		players: make(map[uuid.UUID]player.Player),
		stores:  make(map[uuid.UUID]store.Store),
		saves:   make(map[string][]byte),
	}
}

func (r *fakeRepo) SavePlayer(_ context.Context, p player.Player) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.players[p.ID] = p
	return nil
}

func (r *fakeRepo) GetPlayer(_ context.Context, id uuid.UUID) (*player.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.players[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *fakeRepo) SaveStore(_ context.Context, s store.Store) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stores[s.ID] = s
	return nil
}

func (r *fakeRepo) GetStore(_ context.Context, id uuid.UUID) (*store.Store, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.stores[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (r *fakeRepo) SaveTurn(_ context.Context, t turn.Turn) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.current = &t
	return nil
}

func (r *fakeRepo) LoadCurrentTurn(_ context.Context) (*turn.Turn, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current, nil
}

func (r *fakeRepo) SaveGame(_ context.Context, slot string, payload []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saves[slot] = append([]byte(nil), payload...)
	return nil
}

func (r *fakeRepo) LoadGame(_ context.Context, slot string) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saves[slot], nil
}

func (r *fakeRepo) ListSavedGames(_ context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	slots := make([]string, 0, len(r.saves))
	for slot := range r.saves {
		slots = append(slots, slot)
	}
	return slots, nil
}

// fakeLoader serves a fixed event list.
type fakeLoader struct {
	events []gameevent.Event
	err    error
}

func (l *fakeLoader) LoadAllEvents() ([]gameevent.Event, error) {
	return l.events, l.err
}

// stubRand plays back scripted values. Exhausted scripts repeat the last
// value so tests control exactly the rolls they care about.
type stubRand struct {
	floats []float64
	ints   []int
}

func (s *stubRand) Float64() float64 {
	if len(s.floats) == 0 {
		return 0.99
	}
	v := s.floats[0]
	if len(s.floats) > 1 {
		s.floats = s.floats[1:]
	}
	return v
}

func (s *stubRand) IntN(n int) int {
	if len(s.ints) == 0 {
		return 0
	}
	v := s.ints[0]
	if len(s.ints) > 1 {
		s.ints = s.ints[1:]
	}
	if v >= n {
		v = n - 1
	}
	return v
}

func testPlayer(t *testing.T, repo *fakeRepo, money value.Money) player.Player {
	t.Helper()

	s, err := store.New("Test Chicken", value.Money(900_000), uuid.Nil)
	if err != nil {
		t.Fatalf("store.New failed: %v", err)
	}
	p, err := player.New("Tester", s.ID)
	if err != nil {
		t.Fatalf("player.New failed: %v", err)
	}
	s.OwnerID = p.ID
	p.Money = money

	if err := repo.SaveStore(context.Background(), s); err != nil {
		t.Fatalf("SaveStore failed: %v", err)
	}
	if err := repo.SavePlayer(context.Background(), p); err != nil {
		t.Fatalf("SavePlayer failed: %v", err)
	}
	return p
}

func testDate() time.Time {
	return time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC) // a Monday
}

func testTurn(t *testing.T) turn.Turn {
	t.Helper()
	tn, err := turn.New(1, testDate())
	if err != nil {
		t.Fatalf("turn.New failed: %v", err)
	}
	return tn
}

func testLogger() *logger.Logger {
	return logger.NewLogger()
}
