package repository

import (
	"context"
	"database/sql"
	"time"
)

// ReservationRepository persists booked slots for audit and reporting.
type ReservationRepository struct {
	db *sql.DB
}

// NewReservationRepository returns repository.
func NewReservationRepository(db *sql.DB) *ReservationRepository {
	return &ReservationRepository{db: db}
}

// Create inserts a booked slot.
func (r *ReservationRepository) Create(ctx context.Context, stationID int64, holder string, start, end time.Time) error {
	const query = `
		INSERT INTO reservations (station_id, holder, start_time, end_time, active, created_at)
		VALUES ($1, $2, $3, $4, TRUE, NOW())
	`
	_, err := r.db.ExecContext(ctx, query, stationID, holder, start, end)
	return err
}

