package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// TableSnapshotRow is a point-in-time serialization of a table's
// configuration and players, from which a crashed process can rehydrate
// its registry without replaying the full hand history. cmd/pokerd does
// not construct a TableSnapshotStore, so no rows are written by it.
type TableSnapshotRow struct {
	TableID    string
	ConfigJSON []byte
	PlayerJSON []byte
	UpdatedAt  time.Time
}

// TableSnapshotStore persists table snapshots to PostgreSQL, adapted from
// a prior AlertPostgresStorage (CreateTable bootstrap + parameterized
// INSERT/UPDATE/SELECT), retargeted from fraud alert rows onto table
// snapshots.
type TableSnapshotStore struct {
	db *sql.DB
}

// NewTableSnapshotStore wraps an existing *sql.DB.
func NewTableSnapshotStore(db *sql.DB) *TableSnapshotStore {
	return &TableSnapshotStore{db: db}
}

// CreateTable bootstraps the table_snapshots table.
func (s *TableSnapshotStore) CreateTable(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS table_snapshots (
			table_id    VARCHAR(64) PRIMARY KEY,
			config_json JSONB NOT NULL,
			player_json JSONB NOT NULL,
			updated_at  TIMESTAMPTZ NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("table snapshot store: create table: %w", err)
	}
	return nil
}

// Save upserts a table's current snapshot.
func (s *TableSnapshotStore) Save(ctx context.Context, row TableSnapshotRow) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO table_snapshots (table_id, config_json, player_json, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (table_id) DO UPDATE SET
			config_json = EXCLUDED.config_json,
			player_json = EXCLUDED.player_json,
			updated_at  = EXCLUDED.updated_at
	`, row.TableID, row.ConfigJSON, row.PlayerJSON, row.UpdatedAt)
	if err != nil {
		return fmt.Errorf("table snapshot store: save: %w", err)
	}
	return nil
}

// Load retrieves a table's last-written snapshot.
func (s *TableSnapshotStore) Load(ctx context.Context, tableID string) (TableSnapshotRow, error) {
	var row TableSnapshotRow
	row.TableID = tableID
	err := s.db.QueryRowContext(ctx, `
		SELECT config_json, player_json, updated_at
		FROM table_snapshots
		WHERE table_id = $1
	`, tableID).Scan(&row.ConfigJSON, &row.PlayerJSON, &row.UpdatedAt)
	if err != nil {
		return TableSnapshotRow{}, fmt.Errorf("table snapshot store: load: %w", err)
	}
	return row, nil
}

// Delete removes a table's snapshot once the table is torn down.
func (s *TableSnapshotStore) Delete(ctx context.Context, tableID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM table_snapshots WHERE table_id = $1`, tableID)
	if err != nil {
		return fmt.Errorf("table snapshot store: delete: %w", err)
	}
	return nil
}
