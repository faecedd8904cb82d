package ledger

import "time"

// EventKind identifies a committed ledger state transition.
type EventKind string

const (
	EventReservationCreated EventKind = "reservation.created"
	EventSessionStarted     EventKind = "session.started"
	EventSessionEnded       EventKind = "session.ended"
	EventSessionSettled     EventKind = "session.settled"
)

// Event describes one committed state transition. The ledger emits exactly
// one per successful mutating operation; mirrors and feeds consume them to
// stay eventually consistent. Events carry no correctness weight, the ledger
// itself is authoritative.
type Event struct {
	Kind      EventKind `json:"kind"`
	At        time.Time `json:"at"`
	Holder    string    `json:"holder"`
	Station   int64     `json:"station_id"`
	SessionID int64     `json:"session_id,omitempty"`
	Start     time.Time `json:"start_time,omitempty"`
	End       time.Time `json:"end_time,omitempty"`
	Amount    int64     `json:"amount,omitempty"`
	Refund    int64     `json:"refund,omitempty"`
}
