// Package storage provides the persistence layer for the game server.
// This package implements the repository pattern to keep the domain pure:
// the engine consumes narrow interfaces and this package maps aggregates to
// SQLite rows.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/chickenmaster/server/internal/domain/player"
	"github.com/chickenmaster/server/internal/domain/store"
	"github.com/chickenmaster/server/internal/domain/turn"
	"github.com/chickenmaster/server/internal/domain/value"
	"github.com/chickenmaster/server/internal/gamelog"
)

// DB wraps the SQLite connection and implements the repository interfaces
// consumed by the engine.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates the SQLite database at the given path and creates
// the schema.
func Open(path string) (*DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS players (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		fatigue REAL NOT NULL,
		happiness REAL NOT NULL,
		money INTEGER NOT NULL,
		stats_json TEXT NOT NULL,
		store_ids_json TEXT NOT NULL,
		research_ids_json TEXT NOT NULL,
		last_updated DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS stores (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		monthly_rent INTEGER NOT NULL,
		owner_id TEXT NOT NULL,
		inventories_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS current_turn (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		number INTEGER NOT NULL,
		game_date TEXT NOT NULL,
		phase TEXT NOT NULL,
		is_complete INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS saves (
		slot TEXT PRIMARY KEY,
		payload TEXT NOT NULL,
		saved_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS game_log (
		id TEXT PRIMARY KEY,
		timestamp DATETIME NOT NULL,
		type TEXT NOT NULL,
		turn_number INTEGER NOT NULL,
		phase TEXT NOT NULL,
		summary TEXT NOT NULL,
		payload TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_stores_owner ON stores(owner_id);
	CREATE INDEX IF NOT EXISTS idx_game_log_turn ON game_log(turn_number);
	`
	_, err := db.conn.Exec(schema)
	return err
}

type playerRow struct {
	ID              string    `db:"id"`
	Name            string    `db:"name"`
	Fatigue         float64   `db:"fatigue"`
	Happiness       float64   `db:"happiness"`
	Money           int64     `db:"money"`
	StatsJSON       string    `db:"stats_json"`
	StoreIDsJSON    string    `db:"store_ids_json"`
	ResearchIDsJSON string    `db:"research_ids_json"`
	LastUpdated     time.Time `db:"last_updated"`
}

// SavePlayer upserts the player aggregate.
func (db *DB) SavePlayer(ctx context.Context, p player.Player) error {
	stats, err := json.Marshal(p.Stats)
	if err != nil {
		return fmt.Errorf("marshal stats: %w", err)
	}
	storeIDs, err := json.Marshal(p.StoreIDs)
	if err != nil {
		return fmt.Errorf("marshal store ids: %w", err)
	}
	researchIDs, err := json.Marshal(p.ResearchIDs)
	if err != nil {
		return fmt.Errorf("marshal research ids: %w", err)
	}

	row := playerRow{
		ID:              p.ID.String(),
		Name:            p.Name,
		Fatigue:         float64(p.Fatigue),
		Happiness:       float64(p.Happiness),
		Money:           int64(p.Money),
		StatsJSON:       string(stats),
		StoreIDsJSON:    string(storeIDs),
		ResearchIDsJSON: string(researchIDs),
		LastUpdated:     time.Now(),
	}

	_, err = db.conn.NamedExecContext(ctx, `
		INSERT INTO players (id, name, fatigue, happiness, money, stats_json, store_ids_json, research_ids_json, last_updated)
		VALUES (:id, :name, :fatigue, :happiness, :money, :stats_json, :store_ids_json, :research_ids_json, :last_updated)
		ON CONFLICT(id) DO UPDATE SET
			name=excluded.name,
			fatigue=excluded.fatigue,
			happiness=excluded.happiness,
			money=excluded.money,
			stats_json=excluded.stats_json,
			store_ids_json=excluded.store_ids_json,
			research_ids_json=excluded.research_ids_json,
			last_updated=excluded.last_updated
	`, row)
	if err != nil {
		return fmt.Errorf("save player: %w", err)
	}
	return nil
}

// GetPlayer loads a player by id; nil when absent.
func (db *DB) GetPlayer(ctx context.Context, id uuid.UUID) (*player.Player, error) {
	var row playerRow
	err := db.conn.GetContext(ctx, &row, `SELECT * FROM players WHERE id = ?`, id.String())
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get player: %w", err)
	}
	return rowToPlayer(row)
}

func rowToPlayer(row playerRow) (*player.Player, error) {
	id, err := uuid.Parse(row.ID)
	if err != nil {
		return nil, fmt.Errorf("parse player id: %w", err)
	}

	p := player.Player{
		ID:        id,
		Name:      row.Name,
		Fatigue:   value.Percent(row.Fatigue),
		Happiness: value.Percent(row.Happiness),
		Money:     value.Money(row.Money),
	}
	if err := json.Unmarshal([]byte(row.StatsJSON), &p.Stats); err != nil {
		return nil, fmt.Errorf("unmarshal stats: %w", err)
	}
	if err := json.Unmarshal([]byte(row.StoreIDsJSON), &p.StoreIDs); err != nil {
		return nil, fmt.Errorf("unmarshal store ids: %w", err)
	}
	if err := json.Unmarshal([]byte(row.ResearchIDsJSON), &p.ResearchIDs); err != nil {
		return nil, fmt.Errorf("unmarshal research ids: %w", err)
	}
	return &p, nil
}

type storeRow struct {
	ID              string `db:"id"`
	Name            string `db:"name"`
	MonthlyRent     int64  `db:"monthly_rent"`
	OwnerID         string `db:"owner_id"`
	InventoriesJSON string `db:"inventories_json"`
}

// SaveStore upserts a store aggregate, inventories included.
func (db *DB) SaveStore(ctx context.Context, s store.Store) error {
	inventories, err := json.Marshal(s.Inventories)
	if err != nil {
		return fmt.Errorf("marshal inventories: %w", err)
	}
	row := storeRow{
		ID:              s.ID.String(),
		Name:            s.Name,
		MonthlyRent:     int64(s.MonthlyRent),
		OwnerID:         s.OwnerID.String(),
		InventoriesJSON: string(inventories),
	}
	_, err = db.conn.NamedExecContext(ctx, `
		INSERT INTO stores (id, name, monthly_rent, owner_id, inventories_json)
		VALUES (:id, :name, :monthly_rent, :owner_id, :inventories_json)
		ON CONFLICT(id) DO UPDATE SET
			name=excluded.name,
			monthly_rent=excluded.monthly_rent,
			owner_id=excluded.owner_id,
			inventories_json=excluded.inventories_json
	`, row)
	if err != nil {
		return fmt.Errorf("save store: %w", err)
	}
	return nil
}

// GetStore loads a store by id; nil when absent.
func (db *DB) GetStore(ctx context.Context, id uuid.UUID) (*store.Store, error) {
	var row storeRow
	err := db.conn.GetContext(ctx, &row, `SELECT * FROM stores WHERE id = ?`, id.String())
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get store: %w", err)
	}
	return rowToStore(row)
}

func rowToStore(row storeRow) (*store.Store, error) {
	id, err := uuid.Parse(row.ID)
	if err != nil {
		return nil, fmt.Errorf("parse store id: %w", err)
	}
	ownerID, err := uuid.Parse(row.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("parse owner id: %w", err)
	}
	s := store.Store{
		ID:          id,
		Name:        row.Name,
		MonthlyRent: value.Money(row.MonthlyRent),
		OwnerID:     ownerID,
	}
	if err := json.Unmarshal([]byte(row.InventoriesJSON), &s.Inventories); err != nil {
		return nil, fmt.Errorf("unmarshal inventories: %w", err)
	}
	return &s, nil
}

type turnRow struct {
	ID         int    `db:"id"`
	Number     int    `db:"number"`
	GameDate   string `db:"game_date"`
	Phase      string `db:"phase"`
	IsComplete bool   `db:"is_complete"`
}

// SaveTurn persists the live turn. There is exactly one current turn per
// database; history lives in the game log.
func (db *DB) SaveTurn(ctx context.Context, t turn.Turn) error {
	row := turnRow{
		ID:         1,
		Number:     t.Number,
		GameDate:   t.GameDate.Format(time.RFC3339),
		Phase:      t.Phase.String(),
		IsComplete: t.IsComplete,
	}
	_, err := db.conn.NamedExecContext(ctx, `
		INSERT INTO current_turn (id, number, game_date, phase, is_complete)
		VALUES (:id, :number, :game_date, :phase, :is_complete)
		ON CONFLICT(id) DO UPDATE SET
			number=excluded.number,
			game_date=excluded.game_date,
			phase=excluded.phase,
			is_complete=excluded.is_complete
	`, row)
	if err != nil {
		return fmt.Errorf("save turn: %w", err)
	}
	return nil
}

// LoadCurrentTurn restores the live turn; nil when no game was ever saved.
func (db *DB) LoadCurrentTurn(ctx context.Context) (*turn.Turn, error) {
	var row turnRow
	err := db.conn.GetContext(ctx, &row, `SELECT * FROM current_turn WHERE id = 1`)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load turn: %w", err)
	}

	gameDate, err := time.Parse(time.RFC3339, row.GameDate)
	if err != nil {
		return nil, fmt.Errorf("parse game date: %w", err)
	}
	phase, err := turn.PhaseFromString(row.Phase)
	if err != nil {
		return nil, err
	}
	return &turn.Turn{
		Number:     row.Number,
		GameDate:   gameDate,
		Phase:      phase,
		IsComplete: row.IsComplete,
	}, nil
}

// SaveGame writes an opaque session snapshot under a named slot. The engine
// owns the payload layout; this layer only stores and returns it verbatim.
func (db *DB) SaveGame(ctx context.Context, slot string, payload []byte) error {
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO saves (slot, payload, saved_at) VALUES (?, ?, ?)
		ON CONFLICT(slot) DO UPDATE SET payload=excluded.payload, saved_at=excluded.saved_at
	`, slot, string(payload), time.Now())
	if err != nil {
		return fmt.Errorf("save game: %w", err)
	}
	return nil
}

// LoadGame restores a snapshot from a slot; nil when the slot is empty.
func (db *DB) LoadGame(ctx context.Context, slot string) ([]byte, error) {
	var data string
	err := db.conn.GetContext(ctx, &data, `SELECT payload FROM saves WHERE slot = ?`, slot)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load game: %w", err)
	}
	return []byte(data), nil
}

// ListSavedGames returns the save slot names, most recent first.
func (db *DB) ListSavedGames(ctx context.Context) ([]string, error) {
	var slots []string
	err := db.conn.SelectContext(ctx, &slots, `SELECT slot FROM saves ORDER BY saved_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list saved games: %w", err)
	}
	return slots, nil
}

type recordRow struct {
	ID         string    `db:"id"`
	Timestamp  time.Time `db:"timestamp"`
	Type       string    `db:"type"`
	TurnNumber int       `db:"turn_number"`
	Phase      string    `db:"phase"`
	Summary    string    `db:"summary"`
	Payload    string    `db:"payload"`
}

// LoadRecords returns the persisted audit records for one turn, oldest first.
// Payloads come back as their stored JSON.
func (db *DB) LoadRecords(ctx context.Context, turnNumber int) ([]gamelog.Record, error) {
	var rows []recordRow
	err := db.conn.SelectContext(ctx, &rows,
		`SELECT * FROM game_log WHERE turn_number = ? ORDER BY timestamp ASC`, turnNumber)
	if err != nil {
		return nil, fmt.Errorf("load records: %w", err)
	}

	records := make([]gamelog.Record, 0, len(rows))
	for _, row := range rows {
		record := gamelog.Record{
			ID:         row.ID,
			Timestamp:  row.Timestamp,
			Type:       gamelog.RecordType(row.Type),
			TurnNumber: row.TurnNumber,
			Phase:      row.Phase,
			Summary:    row.Summary,
		}
		if row.Payload != "" {
			record.Payload = json.RawMessage(row.Payload)
		}
		records = append(records, record)
	}
	return records, nil
}

// AppendRecord implements gamelog.Persister: write-through for the audit log.
func (db *DB) AppendRecord(record gamelog.Record) error {
	payload := ""
	if record.Payload != nil {
		data, err := json.Marshal(record.Payload)
		if err != nil {
			return fmt.Errorf("marshal record payload: %w", err)
		}
		payload = string(data)
	}
	_, err := db.conn.Exec(`
		INSERT INTO game_log (id, timestamp, type, turn_number, phase, summary, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, record.ID, record.Timestamp, string(record.Type), record.TurnNumber, record.Phase, record.Summary, payload)
	if err != nil {
		return fmt.Errorf("append record: %w", err)
	}
	return nil
}
