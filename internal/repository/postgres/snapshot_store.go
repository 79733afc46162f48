package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/andresuchdata/stockledger/internal/domain"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

const defaultSnapshotName = "default"

const createSnapshotTable = `
	CREATE TABLE IF NOT EXISTS ledger_snapshots (
		name       TEXT PRIMARY KEY,
		schema     TEXT NOT NULL,
		payload    JSONB NOT NULL,
		taken_at   TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)
`

const upsertSnapshot = `
	INSERT INTO ledger_snapshots (name, schema, payload, taken_at, updated_at)
	VALUES ($1, $2, $3, $4, NOW())
	ON CONFLICT (name)
	DO UPDATE SET
		schema = EXCLUDED.schema,
		payload = EXCLUDED.payload,
		taken_at = EXCLUDED.taken_at,
		updated_at = NOW()
`

const selectSnapshot = `
	SELECT name, schema, payload, taken_at
	FROM ledger_snapshots
	WHERE name = $1
`

type snapshotRow struct {
	Name    string    `db:"name"`
	Schema  string    `db:"schema"`
	Payload []byte    `db:"payload"`
	TakenAt time.Time `db:"taken_at"`
}

// SnapshotStore keeps the whole ledger in one JSONB row keyed by name.
type SnapshotStore struct {
	db   *DB
	name string
}

func NewSnapshotStore(db *DB) *SnapshotStore {
	return &SnapshotStore{db: db, name: defaultSnapshotName}
}

// EnsureSchema creates the snapshot table if it does not exist.
func (s *SnapshotStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, createSnapshotTable); err != nil {
		return fmt.Errorf("create ledger_snapshots: %w", err)
	}
	return nil
}

func (s *SnapshotStore) Save(ctx context.Context, snap *domain.Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	return s.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, upsertSnapshot, s.name, snap.Schema, payload, snap.TakenAt); err != nil {
			return fmt.Errorf("failed to upsert snapshot: %w", err)
		}
		return nil
	})
}

func (s *SnapshotStore) Load(ctx context.Context) (*domain.Snapshot, error) {
	var row snapshotRow
	err := s.db.GetContext(ctx, &row, selectSnapshot, s.name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}

	var snap domain.Snapshot
	if err := json.Unmarshal(row.Payload, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	log.Debug().Str("name", row.Name).Time("taken_at", row.TakenAt).Msg("loaded ledger snapshot")
	return &snap, nil
}

func (s *SnapshotStore) Close() error {
	return s.db.Close()
}
