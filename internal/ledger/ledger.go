package ledger

import "time"

// Ledger is the authoritative record of who reserved what, who used what,
// for how long, and who has paid. It performs no I/O and never reads the
// wall clock; every operation takes the current time from the caller and
// either fully commits or returns a sentinel error with state untouched.
//
// The ledger is not safe for concurrent use. Whoever hosts it must
// serialize calls, one operation runs to completion at a time.
type Ledger struct {
	owner        string
	reservations map[int64][]Reservation
	sessions     []Session // sessions[i] has ID i+1
	balance      int64
}

// New returns an empty ledger owned by the given identity. The owner is
// fixed for the ledger's lifetime and is the only identity allowed to
// withdraw collected funds.
func New(owner string) *Ledger {
	return &Ledger{
		owner:        owner,
		reservations: make(map[int64][]Reservation),
	}
}

// Reserve books the half-open slot [start, end) on a station for holder.
// The slot must lie in the future, last between MinReservationDuration and
// MaxReservationDuration, and not overlap any active reservation already
// recorded for that station. The overlap check scans every active
// reservation ever recorded for the station; expired slots are never pruned.
func (l *Ledger) Reserve(stationID int64, start, end time.Time, holder string, now time.Time) (Reservation, Event, error) {
	if stationID <= 0 {
		return Reservation{}, Event{}, ErrInvalidStation
	}
	if !start.After(now) || !end.After(start) {
		return Reservation{}, Event{}, ErrInvalidTimeRange
	}
	d := end.Sub(start)
	if d < MinReservationDuration || d > MaxReservationDuration {
		return Reservation{}, Event{}, ErrDurationOutOfBounds
	}
	for _, r := range l.reservations[stationID] {
		if r.Active && r.overlaps(start, end) {
			return Reservation{}, Event{}, ErrSlotConflict
		}
	}

	res := Reservation{
		Holder:  holder,
		Station: stationID,
		Start:   start,
		End:     end,
		Active:  true,
	}
	l.reservations[stationID] = append(l.reservations[stationID], res)

	ev := Event{
		Kind:    EventReservationCreated,
		At:      now,
		Holder:  holder,
		Station: stationID,
		Start:   start,
		End:     end,
	}
	return res, ev, nil
}

// StartSession opens a metered session on a station. The caller must hold
// an active reservation for that station whose slot contains now; this is
// what makes booking meaningful rather than advisory.
func (l *Ledger) StartSession(stationID int64, holder string, now time.Time) (Session, Event, error) {
	authorized := false
	for _, r := range l.reservations[stationID] {
		if r.Active && r.Holder == holder && r.Contains(now) {
			authorized = true
			break
		}
	}
	if !authorized {
		return Session{}, Event{}, ErrNoActiveReservation
	}

	s := Session{
		ID:      int64(len(l.sessions)) + 1,
		Holder:  holder,
		Station: stationID,
		Start:   now,
		Active:  true,
	}
	l.sessions = append(l.sessions, s)

	ev := Event{
		Kind:      EventSessionStarted,
		At:        now,
		Holder:    holder,
		Station:   stationID,
		SessionID: s.ID,
		Start:     now,
	}
	return s, ev, nil
}

// EndSession closes an active session held by the caller. The end time is
// fixed at now and immutable afterwards.
func (l *Ledger) EndSession(sessionID int64, holder string, now time.Time) (Session, Event, error) {
	s, err := l.lookup(sessionID)
	if err != nil {
		return Session{}, Event{}, err
	}
	if !s.Active {
		return Session{}, Event{}, ErrSessionNotActive
	}
	if s.Holder != holder {
		return Session{}, Event{}, ErrNotSessionOwner
	}

	s.End = now
	s.Active = false

	ev := Event{
		Kind:      EventSessionEnded,
		At:        now,
		Holder:    holder,
		Station:   s.Station,
		SessionID: s.ID,
		Start:     s.Start,
		End:       s.End,
	}
	return *s, ev, nil
}

// Settlement is the outcome of a successful payment: the fee collected and
// the excess tender returned to the payer. Both commit atomically with the
// paid flag, there is no window where one holds without the other.
type Settlement struct {
	Session   Session `json:"session"`
	AmountDue int64   `json:"amount_due"`
	Refund    int64   `json:"refund"`
}

// PaySession settles an ended, unpaid session held by the caller. The fee
// is Fee(End-Start); tendered must cover it and any excess is refunded.
// On success the fee is added to the ledger balance and the session is
// settled for good.
func (l *Ledger) PaySession(sessionID int64, holder string, tendered int64, now time.Time) (Settlement, Event, error) {
	s, err := l.lookup(sessionID)
	if err != nil {
		return Settlement{}, Event{}, err
	}
	if s.Active {
		return Settlement{}, Event{}, ErrSessionStillActive
	}
	if s.Paid {
		return Settlement{}, Event{}, ErrAlreadyPaid
	}
	if s.Holder != holder {
		return Settlement{}, Event{}, ErrNotSessionOwner
	}

	due := Fee(s.End.Sub(s.Start))
	if tendered < due {
		return Settlement{}, Event{}, ErrInsufficientPayment
	}

	s.Paid = true
	s.Amount = due
	l.balance += due

	settlement := Settlement{
		Session:   *s,
		AmountDue: due,
		Refund:    tendered - due,
	}
	ev := Event{
		Kind:      EventSessionSettled,
		At:        now,
		Holder:    holder,
		Station:   s.Station,
		SessionID: s.ID,
		Start:     s.Start,
		End:       s.End,
		Amount:    due,
		Refund:    settlement.Refund,
	}
	return settlement, ev, nil
}

// Withdraw sweeps the entire accumulated balance to the owner. Only the
// owner may call it; partial withdrawal is not supported.
func (l *Ledger) Withdraw(caller string) (int64, error) {
	if caller != l.owner {
		return 0, ErrNotOwner
	}
	amount := l.balance
	l.balance = 0
	return amount, nil
}

// Session returns the full record for a session ID. It never mutates state.
func (l *Ledger) Session(sessionID int64) (Session, error) {
	s, err := l.lookup(sessionID)
	if err != nil {
		return Session{}, err
	}
	return *s, nil
}

// AmountDue previews the fee owed for an ended, unpaid session.
func (l *Ledger) AmountDue(sessionID int64) (int64, error) {
	s, err := l.lookup(sessionID)
	if err != nil {
		return 0, err
	}
	if s.Active {
		return 0, ErrSessionStillActive
	}
	if s.Paid {
		return 0, ErrAlreadyPaid
	}
	return Fee(s.End.Sub(s.Start)), nil
}

// SessionsByHolder returns every session created by the given identity, in
// creation order.
func (l *Ledger) SessionsByHolder(holder string) []Session {
	var out []Session
	for _, s := range l.sessions {
		if s.Holder == holder {
			out = append(out, s)
		}
	}
	return out
}

// ReservationsByHolder returns every reservation booked by the given
// identity, grouped by station in no particular station order.
func (l *Ledger) ReservationsByHolder(holder string) []Reservation {
	var out []Reservation
	for _, slots := range l.reservations {
		for _, r := range slots {
			if r.Holder == holder {
				out = append(out, r)
			}
		}
	}
	return out
}

// StationFree reports whether [start, end) is clear of active reservations
// on the station. A probe only; it books nothing.
func (l *Ledger) StationFree(stationID int64, start, end time.Time) bool {
	for _, r := range l.reservations[stationID] {
		if r.Active && r.overlaps(start, end) {
			return false
		}
	}
	return true
}

// Balance returns the accumulated, not yet withdrawn funds.
func (l *Ledger) Balance() int64 {
	return l.balance
}

// Owner returns the identity fixed at construction.
func (l *Ledger) Owner() string {
	return l.owner
}

// SessionCount returns the number of sessions ever created.
func (l *Ledger) SessionCount() int64 {
	return int64(len(l.sessions))
}

func (l *Ledger) lookup(sessionID int64) (*Session, error) {
	if sessionID < 1 || sessionID > int64(len(l.sessions)) {
		return nil, ErrUnknownSession
	}
	return &l.sessions[sessionID-1], nil
}
