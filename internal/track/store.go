package track

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema is the tracker table layout. The goose migrations under
// migrations/ carry the same statements for managed deployments; the
// constant lets tests and small installs create the table directly.
const Schema = `
CREATE TABLE IF NOT EXISTS stream_events (
    id BIGSERIAL PRIMARY KEY,
    event_name TEXT NOT NULL,
    character_id BIGINT NOT NULL DEFAULT 0,
    attacker_id BIGINT NOT NULL DEFAULT 0,
    world_id BIGINT NOT NULL DEFAULT 0,
    zone_id BIGINT NOT NULL DEFAULT 0,
    event_time TIMESTAMPTZ NOT NULL,
    payload JSONB NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_stream_events_character ON stream_events (character_id, event_time DESC);
CREATE INDEX IF NOT EXISTS idx_stream_events_attacker ON stream_events (attacker_id, event_time DESC);
CREATE INDEX IF NOT EXISTS idx_stream_events_name ON stream_events (event_name, event_time DESC);
CREATE INDEX IF NOT EXISTS idx_stream_events_time ON stream_events (event_time DESC);
`

// StoredEvent is one stream event at rest.
type StoredEvent struct {
	ID          int64           `json:"id"`
	EventName   string          `json:"event_name"`
	CharacterID int64           `json:"character_id,omitempty"`
	AttackerID  int64           `json:"attacker_id,omitempty"`
	WorldID     int64           `json:"world_id,omitempty"`
	ZoneID      int64           `json:"zone_id,omitempty"`
	EventTime   time.Time       `json:"event_time"`
	Payload     json.RawMessage `json:"payload"`
	CreatedAt   time.Time       `json:"created_at"`
}

// EventFilter narrows Recent queries. Zero values mean no constraint.
type EventFilter struct {
	CharacterID int64
	EventName   string
	Since       time.Time
	Limit       int
}

// TypeCount is one row of the per-type event stats.
type TypeCount struct {
	EventName string `json:"event_name"`
	Count     int64  `json:"count"`
}

// Store persists stream events.
type Store interface {
	InsertEvent(ctx context.Context, e StoredEvent) error
	EventsByCharacter(ctx context.Context, characterID int64, limit int) ([]StoredEvent, error)
	EventsByType(ctx context.Context, eventName string, limit int) ([]StoredEvent, error)
	Recent(ctx context.Context, filter EventFilter) ([]StoredEvent, error)
	CountByType(ctx context.Context) ([]TypeCount, error)
	CleanupBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// NewPool creates a PostgreSQL connection pool and verifies connectivity.
func NewPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToParseDBURL, err)
	}

	config.MaxConns = DefaultMaxConns
	config.MinConns = DefaultMinConns
	config.MaxConnIdleTime = DefaultMaxConnIdleTime
	config.MaxConnLifetime = DefaultMaxConnLifetime

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToCreatePool, err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToPingDatabase, err)
	}

	slog.Default().Info(LogMsgDatabaseConnected)
	return pool, nil
}

type pgxStore struct {
	db *pgxpool.Pool
}

// NewStore creates a PostgreSQL backed event store.
func NewStore(db *pgxpool.Pool) Store {
	return &pgxStore{db: db}
}

// InsertEvent stores a single stream event.
func (s *pgxStore) InsertEvent(ctx context.Context, e StoredEvent) error {
	query := `
		INSERT INTO stream_events (event_name, character_id, attacker_id, world_id, zone_id, event_time, payload)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	payload := e.Payload
	if payload == nil {
		payload = json.RawMessage(`{}`)
	}

	_, err := s.db.Exec(ctx, query,
		e.EventName, e.CharacterID, e.AttackerID, e.WorldID, e.ZoneID, e.EventTime, payload)
	return err
}

// EventsByCharacter retrieves events where the character appears as the
// subject or the attacker.
func (s *pgxStore) EventsByCharacter(ctx context.Context, characterID int64, limit int) ([]StoredEvent, error) {
	query := `
		SELECT id, event_name, character_id, attacker_id, world_id, zone_id, event_time, payload, created_at
		FROM stream_events
		WHERE character_id = $1 OR attacker_id = $1
		ORDER BY event_time DESC
		LIMIT $2
	`

	rows, err := s.db.Query(ctx, query, characterID, clampLimit(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return s.scanEvents(rows)
}

// EventsByType retrieves events of a single type.
func (s *pgxStore) EventsByType(ctx context.Context, eventName string, limit int) ([]StoredEvent, error) {
	query := `
		SELECT id, event_name, character_id, attacker_id, world_id, zone_id, event_time, payload, created_at
		FROM stream_events
		WHERE event_name = $1
		ORDER BY event_time DESC
		LIMIT $2
	`

	rows, err := s.db.Query(ctx, query, eventName, clampLimit(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return s.scanEvents(rows)
}

// Recent retrieves the newest events matching the filter.
func (s *pgxStore) Recent(ctx context.Context, filter EventFilter) ([]StoredEvent, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`
		SELECT id, event_name, character_id, attacker_id, world_id, zone_id, event_time, payload, created_at
		FROM stream_events
		WHERE 1=1`)

	args := []interface{}{}
	argNum := 1

	if filter.CharacterID != 0 {
		fmt.Fprintf(&queryBuilder, " AND (character_id = $%d OR attacker_id = $%d)", argNum, argNum)
		args = append(args, filter.CharacterID)
		argNum++
	}

	if filter.EventName != "" {
		fmt.Fprintf(&queryBuilder, " AND event_name = $%d", argNum)
		args = append(args, filter.EventName)
		argNum++
	}

	if !filter.Since.IsZero() {
		fmt.Fprintf(&queryBuilder, " AND event_time >= $%d", argNum)
		args = append(args, filter.Since)
		argNum++
	}

	queryBuilder.WriteString(" ORDER BY event_time DESC")

	fmt.Fprintf(&queryBuilder, " LIMIT $%d", argNum)
	args = append(args, clampLimit(filter.Limit))

	rows, err := s.db.Query(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return s.scanEvents(rows)
}

// CountByType returns event counts grouped by type, busiest first.
func (s *pgxStore) CountByType(ctx context.Context) ([]TypeCount, error) {
	query := `
		SELECT event_name, COUNT(*)
		FROM stream_events
		GROUP BY event_name
		ORDER BY COUNT(*) DESC, event_name
	`

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []TypeCount
	for rows.Next() {
		var tc TypeCount
		if err := rows.Scan(&tc.EventName, &tc.Count); err != nil {
			return nil, err
		}
		counts = append(counts, tc)
	}

	return counts, rows.Err()
}

// CleanupBefore removes events older than the cutoff and reports how many
// rows went away.
func (s *pgxStore) CleanupBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `DELETE FROM stream_events WHERE event_time < $1`

	result, err := s.db.Exec(ctx, query, cutoff)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected(), nil
}

// scanEvents scans rows into StoredEvent structs.
func (s *pgxStore) scanEvents(rows pgx.Rows) ([]StoredEvent, error) {
	var events []StoredEvent

	for rows.Next() {
		var evt StoredEvent
		var payload []byte

		err := rows.Scan(
			&evt.ID,
			&evt.EventName,
			&evt.CharacterID,
			&evt.AttackerID,
			&evt.WorldID,
			&evt.ZoneID,
			&evt.EventTime,
			&payload,
			&evt.CreatedAt,
		)
		if err != nil {
			return nil, err
		}

		evt.Payload = json.RawMessage(payload)
		events = append(events, evt)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return events, nil
}

// clampLimit folds a requested limit into the allowed range.
func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultQueryLimit
	}
	if limit > MaxQueryLimit {
		return MaxQueryLimit
	}
	return limit
}
