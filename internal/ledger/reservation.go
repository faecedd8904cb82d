package ledger

import "time"

// Reservation status values derived from the slot relative to a point in time.
const (
	ReservationStatusPending = "pending"
	ReservationStatusActive  = "active"
	ReservationStatusExpired = "expired"
)

// Reservation is one booked slot on a station. Slots are half-open
// [Start, End): a slot ending exactly when another begins does not conflict.
// The Active flag is set once at creation and never cleared; there is no
// cancellation, a booked slot stays booked for its whole window.
type Reservation struct {
	Holder  string    `json:"holder"`
	Station int64     `json:"station_id"`
	Start   time.Time `json:"start_time"`
	End     time.Time `json:"end_time"`
	Active  bool      `json:"active"`
}

// overlaps reports whether the slot intersects [start, end).
func (r Reservation) overlaps(start, end time.Time) bool {
	return start.Before(r.End) && r.Start.Before(end)
}

// Contains reports whether t falls inside the slot.
func (r Reservation) Contains(t time.Time) bool {
	return !t.Before(r.Start) && t.Before(r.End)
}

// Status classifies the slot relative to now.
func (r Reservation) Status(now time.Time) string {
	switch {
	case now.Before(r.Start):
		return ReservationStatusPending
	case now.Before(r.End):
		return ReservationStatusActive
	default:
		return ReservationStatusExpired
	}
}
