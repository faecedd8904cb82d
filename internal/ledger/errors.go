package ledger

import "errors"

// Failure taxonomy. Every operation either fully commits or returns one of
// these sentinels with ledger state untouched. None of them is retryable by
// the core itself; retry policy belongs to the gateway.
var (
	ErrInvalidStation      = errors.New("ledger: invalid station")
	ErrInvalidTimeRange    = errors.New("ledger: invalid time range")
	ErrDurationOutOfBounds = errors.New("ledger: duration out of bounds")
	ErrSlotConflict        = errors.New("ledger: slot conflict")
	ErrNoActiveReservation = errors.New("ledger: no active reservation")
	ErrUnknownSession      = errors.New("ledger: unknown session")
	ErrSessionNotActive    = errors.New("ledger: session not active")
	ErrSessionStillActive  = errors.New("ledger: session still active")
	ErrAlreadyPaid         = errors.New("ledger: session already paid")
	ErrNotSessionOwner     = errors.New("ledger: not session owner")
	ErrInsufficientPayment = errors.New("ledger: insufficient payment")
	ErrNotOwner            = errors.New("ledger: not ledger owner")
)
