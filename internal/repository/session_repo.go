package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// ErrSessionRowNotFound indicates an update targeted a session the journal
// never recorded.
var ErrSessionRowNotFound = errors.New("repository: session row not found")

// SessionRepository persists session lifecycle transitions.
type SessionRepository struct {
	db *sql.DB
}

// NewSessionRepository returns repository.
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Start records a freshly opened session. The ledger core allocates the ID,
// so an identical replay just refreshes the row.
func (r *SessionRepository) Start(ctx context.Context, sessionID, stationID int64, holder string, start time.Time) error {
	const query = `
		INSERT INTO charging_sessions (id, station_id, holder, status, start_time, created_at, updated_at)
		VALUES ($1, $2, $3, 'active', $4, NOW(), NOW())
		ON CONFLICT (id) DO UPDATE SET
			station_id = EXCLUDED.station_id,
			holder = EXCLUDED.holder,
			status = EXCLUDED.status,
			start_time = EXCLUDED.start_time,
			updated_at = NOW()
	`
	_, err := r.db.ExecContext(ctx, query, sessionID, stationID, holder, start)
	return err
}

// End fixes the session end time.
func (r *SessionRepository) End(ctx context.Context, sessionID int64, end time.Time) error {
	const query = `
		UPDATE charging_sessions
		SET end_time = $2,
		    status = 'ended',
		    updated_at = NOW()
		WHERE id = $1
	`
	return r.exec(ctx, query, sessionID, end)
}

// Settle marks the session paid with its final amount in micro-units.
func (r *SessionRepository) Settle(ctx context.Context, sessionID, amount int64) error {
	const query = `
		UPDATE charging_sessions
		SET status = 'settled',
		    paid = TRUE,
		    amount = $2,
		    updated_at = NOW()
		WHERE id = $1
	`
	return r.exec(ctx, query, sessionID, amount)
}

func (r *SessionRepository) exec(ctx context.Context, query string, args ...any) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrSessionRowNotFound
	}
	return nil
}
