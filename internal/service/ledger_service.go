package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"chargeledger/internal/clock"
	"chargeledger/internal/ledger"
)

// TransitionSink consumes committed ledger state transitions. Sinks are
// best-effort: a sink error is logged and never fails the operation that
// produced the event.
type TransitionSink interface {
	Notify(ctx context.Context, ev ledger.Event) error
}

// LedgerService serializes access to the ledger core and fans committed
// transitions out to sinks (mirror, journal, feed, metrics). All mutating
// operations run to completion under one mutex; no interleaving is ever
// observable.
type LedgerService struct {
	mu     sync.Mutex
	core   *ledger.Ledger
	clock  clock.Clock
	sinks  []TransitionSink
	logger *zap.Logger
}

// NewLedgerService builds the service around an owned core.
func NewLedgerService(core *ledger.Ledger, clk clock.Clock, logger *zap.Logger, sinks ...TransitionSink) *LedgerService {
	return &LedgerService{
		core:   core,
		clock:  clk,
		sinks:  sinks,
		logger: logger,
	}
}

// Reserve books a slot on a station for holder.
func (s *LedgerService) Reserve(ctx context.Context, stationID int64, start, end time.Time, holder string) (ledger.Reservation, error) {
	s.mu.Lock()
	res, ev, err := s.core.Reserve(stationID, start, end, holder, s.clock.Now())
	s.mu.Unlock()
	if err != nil {
		return ledger.Reservation{}, err
	}

	s.logger.Info("reservation created",
		zap.Int64("station_id", stationID),
		zap.String("holder", holder),
		zap.Time("start", start),
		zap.Time("end", end),
	)
	s.publish(ctx, ev)
	return res, nil
}

// StartSession opens a session for holder on a reserved station.
func (s *LedgerService) StartSession(ctx context.Context, stationID int64, holder string) (ledger.Session, error) {
	s.mu.Lock()
	session, ev, err := s.core.StartSession(stationID, holder, s.clock.Now())
	s.mu.Unlock()
	if err != nil {
		return ledger.Session{}, err
	}

	s.logger.Info("session started",
		zap.Int64("session_id", session.ID),
		zap.Int64("station_id", stationID),
		zap.String("holder", holder),
	)
	s.publish(ctx, ev)
	return session, nil
}

// EndSession closes holder's active session.
func (s *LedgerService) EndSession(ctx context.Context, sessionID int64, holder string) (ledger.Session, error) {
	s.mu.Lock()
	session, ev, err := s.core.EndSession(sessionID, holder, s.clock.Now())
	s.mu.Unlock()
	if err != nil {
		return ledger.Session{}, err
	}

	s.logger.Info("session ended",
		zap.Int64("session_id", sessionID),
		zap.String("holder", holder),
		zap.Duration("duration", session.Duration()),
	)
	s.publish(ctx, ev)
	return session, nil
}

// PaySession settles holder's ended session with the tendered amount.
func (s *LedgerService) PaySession(ctx context.Context, sessionID int64, holder string, tendered int64) (ledger.Settlement, error) {
	s.mu.Lock()
	settlement, ev, err := s.core.PaySession(sessionID, holder, tendered, s.clock.Now())
	s.mu.Unlock()
	if err != nil {
		return ledger.Settlement{}, err
	}

	s.logger.Info("session settled",
		zap.Int64("session_id", sessionID),
		zap.String("holder", holder),
		zap.Int64("amount", settlement.AmountDue),
		zap.Int64("refund", settlement.Refund),
	)
	s.publish(ctx, ev)
	return settlement, nil
}

// Withdraw sweeps the accumulated balance to the owner.
func (s *LedgerService) Withdraw(caller string) (int64, error) {
	s.mu.Lock()
	amount, err := s.core.Withdraw(caller)
	s.mu.Unlock()
	if err != nil {
		return 0, err
	}

	s.logger.Info("balance withdrawn",
		zap.String("caller", caller),
		zap.Int64("amount", amount),
	)
	return amount, nil
}

// Session returns the full record for a session ID.
func (s *LedgerService) Session(sessionID int64) (ledger.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.core.Session(sessionID)
}

// AmountDue previews the fee for an ended, unpaid session.
func (s *LedgerService) AmountDue(sessionID int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.core.AmountDue(sessionID)
}

// SessionsByHolder returns holder's session history.
func (s *LedgerService) SessionsByHolder(holder string) []ledger.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.core.SessionsByHolder(holder)
}

// ReservationsByHolder returns holder's reservations.
func (s *LedgerService) ReservationsByHolder(holder string) []ledger.Reservation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.core.ReservationsByHolder(holder)
}

// StationFree probes a station window without booking it.
func (s *LedgerService) StationFree(stationID int64, start, end time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.core.StationFree(stationID, start, end)
}

// Balance returns the accumulated, not yet withdrawn funds.
func (s *LedgerService) Balance() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.core.Balance()
}

// Now exposes the service clock, so the gateway can derive statuses from the
// same time source the ledger is driven with.
func (s *LedgerService) Now() time.Time {
	return s.clock.Now()
}

func (s *LedgerService) publish(ctx context.Context, ev ledger.Event) {
	for _, sink := range s.sinks {
		if err := sink.Notify(ctx, ev); err != nil {
			s.logger.Warn("transition sink failed",
				zap.String("kind", string(ev.Kind)),
				zap.Error(err),
			)
		}
	}
}
