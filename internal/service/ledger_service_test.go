package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"chargeledger/internal/clock"
	"chargeledger/internal/ledger"
)

type recordingSink struct {
	events []ledger.Event
	err    error
}

func (r *recordingSink) Notify(_ context.Context, ev ledger.Event) error {
	r.events = append(r.events, ev)
	return r.err
}

var testBase = time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

func newService(sinks ...TransitionSink) (*LedgerService, *clock.Manual) {
	clk := clock.NewManual(testBase)
	core := ledger.New("owner")
	return NewLedgerService(core, clk, zap.NewNop(), sinks...), clk
}

func TestServicePublishesOneEventPerTransition(t *testing.T) {
	sink := &recordingSink{}
	svc, clk := newService(sink)
	ctx := context.Background()

	start := testBase.Add(100 * time.Minute)
	end := testBase.Add(200 * time.Minute)
	if _, err := svc.Reserve(ctx, 1, start, end, "alice"); err != nil {
		t.Fatalf("reserve: %v", err)
	}

	clk.Set(testBase.Add(120 * time.Minute))
	session, err := svc.StartSession(ctx, 1, "alice")
	if err != nil {
		t.Fatalf("start session: %v", err)
	}

	clk.Set(testBase.Add(160 * time.Minute))
	if _, err := svc.EndSession(ctx, session.ID, "alice"); err != nil {
		t.Fatalf("end session: %v", err)
	}

	due, err := svc.AmountDue(session.ID)
	if err != nil {
		t.Fatalf("amount due: %v", err)
	}
	if _, err := svc.PaySession(ctx, session.ID, "alice", due); err != nil {
		t.Fatalf("pay session: %v", err)
	}

	kinds := []ledger.EventKind{
		ledger.EventReservationCreated,
		ledger.EventSessionStarted,
		ledger.EventSessionEnded,
		ledger.EventSessionSettled,
	}
	if len(sink.events) != len(kinds) {
		t.Fatalf("got %d events, want %d", len(sink.events), len(kinds))
	}
	for i, want := range kinds {
		if sink.events[i].Kind != want {
			t.Fatalf("event %d: got %s, want %s", i, sink.events[i].Kind, want)
		}
	}
}

func TestServiceFailedOperationsPublishNothing(t *testing.T) {
	sink := &recordingSink{}
	svc, _ := newService(sink)
	ctx := context.Background()

	if _, err := svc.StartSession(ctx, 1, "alice"); !errors.Is(err, ledger.ErrNoActiveReservation) {
		t.Fatalf("got %v, want ErrNoActiveReservation", err)
	}
	if _, err := svc.Reserve(ctx, 0, testBase, testBase, "alice"); !errors.Is(err, ledger.ErrInvalidStation) {
		t.Fatalf("got %v, want ErrInvalidStation", err)
	}
	if len(sink.events) != 0 {
		t.Fatalf("failed operations published %d events", len(sink.events))
	}
}

func TestServiceSinkErrorDoesNotFailOperation(t *testing.T) {
	broken := &recordingSink{err: errors.New("mirror down")}
	svc, _ := newService(broken)
	ctx := context.Background()

	start := testBase.Add(100 * time.Minute)
	end := testBase.Add(200 * time.Minute)
	res, err := svc.Reserve(ctx, 1, start, end, "alice")
	if err != nil {
		t.Fatalf("reserve failed on sink error: %v", err)
	}
	if !res.Active {
		t.Fatalf("reservation not committed: %+v", res)
	}
}

func TestServiceStampsNowFromClock(t *testing.T) {
	svc, clk := newService()
	ctx := context.Background()

	start := testBase.Add(100 * time.Minute)
	end := testBase.Add(200 * time.Minute)
	if _, err := svc.Reserve(ctx, 1, start, end, "alice"); err != nil {
		t.Fatalf("reserve: %v", err)
	}

	inside := testBase.Add(110 * time.Minute)
	clk.Set(inside)
	session, err := svc.StartSession(ctx, 1, "alice")
	if err != nil {
		t.Fatalf("start session: %v", err)
	}
	if !session.Start.Equal(inside) {
		t.Fatalf("session start %v, want %v", session.Start, inside)
	}
}
