package metrics

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"chargeledger/internal/ledger"
)

func TestCollectorCountsTransitions(t *testing.T) {
	c := NewCollector()
	ctx := context.Background()

	events := []ledger.Event{
		{Kind: ledger.EventReservationCreated},
		{Kind: ledger.EventSessionStarted},
		{Kind: ledger.EventSessionEnded},
		{Kind: ledger.EventSessionSettled, Amount: 666, Refund: 10},
		{Kind: ledger.EventSessionSettled, Amount: 1000},
	}
	for _, ev := range events {
		if err := c.Notify(ctx, ev); err != nil {
			t.Fatalf("notify %s: %v", ev.Kind, err)
		}
	}

	if got := testutil.ToFloat64(c.transitions.WithLabelValues(string(ledger.EventSessionSettled))); got != 2 {
		t.Fatalf("settled transitions: got %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.settled); got != 1666 {
		t.Fatalf("settled value: got %v, want 1666", got)
	}
	if got := testutil.ToFloat64(c.refunded); got != 10 {
		t.Fatalf("refunded value: got %v, want 10", got)
	}
}
