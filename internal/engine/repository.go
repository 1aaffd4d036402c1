package engine

import (
	"context"

	"github.com/google/uuid"

	"github.com/chickenmaster/server/internal/domain/player"
	"github.com/chickenmaster/server/internal/domain/store"
	"github.com/chickenmaster/server/internal/domain/turn"
)

// Repository is the narrow persistence collaborator consumed by the engine.
// The SQLite implementation lives in infra/storage; tests use an in-memory
// fake. Save payloads are opaque to this layer.
type Repository interface {
	SavePlayer(ctx context.Context, p player.Player) error
	GetPlayer(ctx context.Context, id uuid.UUID) (*player.Player, error)

	SaveStore(ctx context.Context, s store.Store) error
	GetStore(ctx context.Context, id uuid.UUID) (*store.Store, error)

	SaveTurn(ctx context.Context, t turn.Turn) error
	LoadCurrentTurn(ctx context.Context) (*turn.Turn, error)

	SaveGame(ctx context.Context, slot string, payload []byte) error
	LoadGame(ctx context.Context, slot string) ([]byte, error)
	ListSavedGames(ctx context.Context) ([]string, error)
}
