package ledger

import "time"

// Session status values. A session only ever moves active -> ended -> settled.
const (
	SessionStatusActive  = "active"
	SessionStatusEnded   = "ended"
	SessionStatusSettled = "settled"
)

// Session is one metered use of a station. IDs are 1-based and strictly
// increasing; 0 never identifies a session.
type Session struct {
	ID      int64     `json:"id"`
	Holder  string    `json:"holder"`
	Station int64     `json:"station_id"`
	Start   time.Time `json:"start_time"`
	End     time.Time `json:"end_time"` // zero while active
	Active  bool      `json:"active"`
	Paid    bool      `json:"paid"`
	Amount  int64     `json:"amount"` // settled fee in micro-units, 0 until settled
}

// Status returns the lifecycle state as a string.
func (s Session) Status() string {
	switch {
	case s.Active:
		return SessionStatusActive
	case s.Paid:
		return SessionStatusSettled
	default:
		return SessionStatusEnded
	}
}

// Duration is the metered span of an ended session, zero while active.
func (s Session) Duration() time.Duration {
	if s.Active || s.End.IsZero() {
		return 0
	}
	return s.End.Sub(s.Start)
}
