// Package postgres implements the Persistence collaborator for
// tournament entries and table snapshots, in the query/scan idiom used
// throughout this package (lib/pq driver, ExecContext/QueryRowContext,
// explicit column lists) — adapted from a prior CreateSession/GetSession
// shape, retargeted from player sessions onto tournament registration
// rows.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

// TournamentEntryRow is the persisted form of a tournament registration.
type TournamentEntryRow struct {
	TournamentID string
	PlayerID     string
	WalletID     string
	Stake        int64
	Position     int
	Reentries    int
	Rebuys       int
	Addons       int
}

// TournamentStore persists tournament entries to PostgreSQL.
type TournamentStore struct {
	db *sql.DB
}

// NewTournamentStore wraps an existing *sql.DB.
func NewTournamentStore(db *sql.DB) *TournamentStore {
	return &TournamentStore{db: db}
}

// CreateTable bootstraps the tournament_entries table.
func (s *TournamentStore) CreateTable(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS tournament_entries (
			tournament_id VARCHAR(64) NOT NULL,
			player_id     VARCHAR(64) NOT NULL,
			wallet_id     VARCHAR(128) NOT NULL,
			stake         BIGINT NOT NULL,
			position      INTEGER NOT NULL DEFAULT 0,
			reentries     INTEGER NOT NULL DEFAULT 0,
			rebuys        INTEGER NOT NULL DEFAULT 0,
			addons        INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (tournament_id, player_id)
		);
	`)
	if err != nil {
		return fmt.Errorf("tournament store: create table: %w", err)
	}
	return nil
}

// UpsertEntry writes or updates one player's registration row.
func (s *TournamentStore) UpsertEntry(ctx context.Context, e TournamentEntryRow) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tournament_entries
			(tournament_id, player_id, wallet_id, stake, position, reentries, rebuys, addons)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (tournament_id, player_id) DO UPDATE SET
			wallet_id = EXCLUDED.wallet_id,
			stake     = EXCLUDED.stake,
			position  = EXCLUDED.position,
			reentries = EXCLUDED.reentries,
			rebuys    = EXCLUDED.rebuys,
			addons    = EXCLUDED.addons
	`, e.TournamentID, e.PlayerID, e.WalletID, e.Stake, e.Position, e.Reentries, e.Rebuys, e.Addons)
	if err != nil {
		return fmt.Errorf("tournament store: upsert entry: %w", err)
	}
	return nil
}

// ListEntries returns every persisted entry for a tournament, ordered by
// finishing position (unfinished entries, position 0, sort last).
func (s *TournamentStore) ListEntries(ctx context.Context, tournamentID string) ([]TournamentEntryRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT tournament_id, player_id, wallet_id, stake, position, reentries, rebuys, addons
		FROM tournament_entries
		WHERE tournament_id = $1
		ORDER BY (position = 0), position
	`, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("tournament store: list entries: %w", err)
	}
	defer rows.Close()

	var out []TournamentEntryRow
	for rows.Next() {
		var e TournamentEntryRow
		if err := rows.Scan(&e.TournamentID, &e.PlayerID, &e.WalletID, &e.Stake,
			&e.Position, &e.Reentries, &e.Rebuys, &e.Addons); err != nil {
			return nil, fmt.Errorf("tournament store: scan entry: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
