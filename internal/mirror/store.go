// Package mirror maintains a read-optimized copy of ledger state in Redis.
// It consumes transition events and is eventually consistent; the ledger
// never depends on it for correctness.
package mirror

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"chargeledger/internal/ledger"
)

// SessionRecord is the cached shape of a session.
type SessionRecord struct {
	ID      int64     `json:"id"`
	Holder  string    `json:"holder"`
	Station int64     `json:"station_id"`
	Status  string    `json:"status"`
	Start   time.Time `json:"start_time"`
	End     time.Time `json:"end_time,omitempty"`
	Amount  int64     `json:"amount,omitempty"`
}

// ReservationRecord is the cached shape of a booked slot.
type ReservationRecord struct {
	Holder  string    `json:"holder"`
	Station int64     `json:"station_id"`
	Start   time.Time `json:"start_time"`
	End     time.Time `json:"end_time"`
}

// Store writes ledger transitions into Redis keys.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStore returns a Redis-backed mirror. Entries expire after ttl so the
// mirror never outlives its usefulness as a hot cache.
func NewStore(client *redis.Client, ttl time.Duration) *Store {
	return &Store{client: client, ttl: ttl}
}

func sessionKey(id int64) string {
	return fmt.Sprintf("ledger:session:%d", id)
}

func reservationKey(station int64, start time.Time) string {
	return fmt.Sprintf("ledger:reservation:%d:%d", station, start.Unix())
}

// Notify applies one transition event to the mirror.
func (s *Store) Notify(ctx context.Context, ev ledger.Event) error {
	switch ev.Kind {
	case ledger.EventReservationCreated:
		rec := ReservationRecord{
			Holder:  ev.Holder,
			Station: ev.Station,
			Start:   ev.Start,
			End:     ev.End,
		}
		return s.set(ctx, reservationKey(ev.Station, ev.Start), rec)
	case ledger.EventSessionStarted:
		rec := SessionRecord{
			ID:      ev.SessionID,
			Holder:  ev.Holder,
			Station: ev.Station,
			Status:  ledger.SessionStatusActive,
			Start:   ev.Start,
		}
		return s.set(ctx, sessionKey(ev.SessionID), rec)
	case ledger.EventSessionEnded:
		rec := SessionRecord{
			ID:      ev.SessionID,
			Holder:  ev.Holder,
			Station: ev.Station,
			Status:  ledger.SessionStatusEnded,
			Start:   ev.Start,
			End:     ev.End,
		}
		return s.set(ctx, sessionKey(ev.SessionID), rec)
	case ledger.EventSessionSettled:
		rec := SessionRecord{
			ID:      ev.SessionID,
			Holder:  ev.Holder,
			Station: ev.Station,
			Status:  ledger.SessionStatusSettled,
			Start:   ev.Start,
			End:     ev.End,
			Amount:  ev.Amount,
		}
		return s.set(ctx, sessionKey(ev.SessionID), rec)
	default:
		return nil
	}
}

func (s *Store) set(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, key, data, s.ttl).Err()
}
