package analytics

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
)

// ClickHouseConfig mirrors the connection config once carried by
// internal/storage/clickhouse.go.
type ClickHouseConfig struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string
	Secure   bool
}

// Sink batch-inserts settled hand and tournament events into ClickHouse,
// in the same Open/Ping/CreateTables/batch-insert shape the prior
// ClickHouseAnalytics used, with a hand/action schema in place of its
// hand_analytics + fraud_alerts_analytics tables.
type Sink struct {
	db clickhouse.Conn
}

// NewSink dials ClickHouse and verifies connectivity.
func NewSink(ctx context.Context, cfg ClickHouseConfig) (*Sink, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		Settings: clickhouse.Settings{"max_execution_time": 60},
		TLS:      &tls.Config{InsecureSkipVerify: cfg.Secure},
	})
	if err != nil {
		return nil, fmt.Errorf("analytics: connect clickhouse: %w", err)
	}
	if err := conn.Ping(ctx); err != nil {
		return nil, fmt.Errorf("analytics: ping clickhouse: %w", err)
	}
	return &Sink{db: conn}, nil
}

// CreateTables bootstraps the hand/tournament event table.
func (s *Sink) CreateTables(ctx context.Context) error {
	return s.db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS table_events (
			event_id      String,
			event_type    String,
			table_id      String,
			tournament_id String,
			hand_number   Int64,
			pot_size      Int64,
			rake_amount   Int64,
			currency      String,
			timestamp     DateTime64(3)
		) ENGINE = ReplacingMergeTree(timestamp)
		ORDER BY (table_id, timestamp)`)
}

// Insert appends one settled event. Callers batch by calling Insert in a
// loop inside a single ctx, since clickhouse-go buffers writes internally
// per connection.
func (s *Sink) Insert(ctx context.Context, ev HandEvent) error {
	return s.db.Exec(ctx, `
		INSERT INTO table_events
		(event_id, event_type, table_id, tournament_id, hand_number, pot_size, rake_amount, currency, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ev.EventID, ev.EventType, ev.TableID, ev.TournamentID, ev.HandNumber,
		ev.PotSize, ev.RakeAmount, ev.Currency, ev.Timestamp)
}

// Close releases the underlying connection.
func (s *Sink) Close() error { return s.db.Close() }

// nowEventID mirrors the prior fmt.Sprintf("action_%d", time.Now().UnixNano())
// id scheme, scoped to one caller-supplied instant instead of time.Now()
// so callers stay testable against a clock.Clock.
func nowEventID(prefix string, at time.Time) string {
	return fmt.Sprintf("%s_%d", prefix, at.UnixNano())
}
