// Package repository journals ledger transitions into Postgres. The journal
// is write-behind: the in-memory ledger stays authoritative and a journal
// failure never fails the operation that produced it.
package repository

import (
	"context"
	"database/sql"

	"chargeledger/internal/ledger"
)

// Journal routes transition events into the reservation and session tables.
type Journal struct {
	reservations *ReservationRepository
	sessions     *SessionRepository
}

// NewJournal builds the journal over one database handle.
func NewJournal(db *sql.DB) *Journal {
	return &Journal{
		reservations: NewReservationRepository(db),
		sessions:     NewSessionRepository(db),
	}
}

// Notify applies one transition event to the journal tables.
func (j *Journal) Notify(ctx context.Context, ev ledger.Event) error {
	switch ev.Kind {
	case ledger.EventReservationCreated:
		return j.reservations.Create(ctx, ev.Station, ev.Holder, ev.Start, ev.End)
	case ledger.EventSessionStarted:
		return j.sessions.Start(ctx, ev.SessionID, ev.Station, ev.Holder, ev.Start)
	case ledger.EventSessionEnded:
		return j.sessions.End(ctx, ev.SessionID, ev.End)
	case ledger.EventSessionSettled:
		return j.sessions.Settle(ctx, ev.SessionID, ev.Amount)
	default:
		return nil
	}
}
