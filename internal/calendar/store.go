package calendar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is the subset of pgxpool.Pool the store needs; pgxmock satisfies it
// in tests.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// StateStore persists the durable subset of the connection state.
type StateStore interface {
	Save(ctx context.Context, state PersistedState) error
	// Load returns nil when no record exists yet.
	Load(ctx context.Context) (*PersistedState, error)
	Delete(ctx context.Context) error
}

// PostgresStore keeps the connection record in the calendar_connections
// table, keyed by StorageKey.
type PostgresStore struct {
	pool Querier
}

// NewPostgresStore creates a Postgres-backed store.
func NewPostgresStore(pool Querier) *PostgresStore {
	if pool == nil {
		return nil
	}
	return &PostgresStore{pool: pool}
}

// Save upserts the durable subset.
func (s *PostgresStore) Save(ctx context.Context, state PersistedState) error {
	status, err := json.Marshal(state.SyncStatus)
	if err != nil {
		return fmt.Errorf("calendar: marshal sync status: %w", err)
	}

	query := `
		INSERT INTO calendar_connections (storage_key, is_connected, sync_status, last_sync_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (storage_key) DO UPDATE SET
			is_connected = EXCLUDED.is_connected,
			sync_status = EXCLUDED.sync_status,
			last_sync_at = EXCLUDED.last_sync_at,
			updated_at = NOW()
	`
	var lastSync *time.Time
	if state.LastSyncAt != nil {
		t := state.LastSyncAt.UTC()
		lastSync = &t
	}
	if _, err := s.pool.Exec(ctx, query, StorageKey, state.IsConnected, status, lastSync); err != nil {
		return fmt.Errorf("calendar: save connection state: %w", err)
	}
	return nil
}

// Load reads the durable subset, or nil when nothing was persisted yet.
func (s *PostgresStore) Load(ctx context.Context) (*PersistedState, error) {
	query := `
		SELECT is_connected, sync_status, last_sync_at
		FROM calendar_connections
		WHERE storage_key = $1
	`
	var (
		state  PersistedState
		status []byte
	)
	err := s.pool.QueryRow(ctx, query, StorageKey).Scan(&state.IsConnected, &status, &state.LastSyncAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("calendar: load connection state: %w", err)
	}
	if len(status) > 0 {
		if err := json.Unmarshal(status, &state.SyncStatus); err != nil {
			return nil, fmt.Errorf("calendar: decode sync status: %w", err)
		}
	}
	return &state, nil
}

// Delete removes the persisted record entirely.
func (s *PostgresStore) Delete(ctx context.Context) error {
	query := `DELETE FROM calendar_connections WHERE storage_key = $1`
	if _, err := s.pool.Exec(ctx, query, StorageKey); err != nil {
		return fmt.Errorf("calendar: delete connection state: %w", err)
	}
	return nil
}

var _ StateStore = (*PostgresStore)(nil)
