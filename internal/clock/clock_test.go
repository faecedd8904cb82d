package clock

import (
	"testing"
	"time"
)

func TestManualClock(t *testing.T) {
	start := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	clk := NewManual(start)

	if !clk.Now().Equal(start) {
		t.Fatalf("now: got %v, want %v", clk.Now(), start)
	}

	// Time only moves when told to.
	if !clk.Now().Equal(clk.Now()) {
		t.Fatal("manual clock drifted on its own")
	}

	updated := clk.Advance(90 * time.Minute)
	if !updated.Equal(start.Add(90 * time.Minute)) {
		t.Fatalf("advance: got %v", updated)
	}

	pinned := start.Add(24 * time.Hour)
	clk.Set(pinned)
	if !clk.Now().Equal(pinned) {
		t.Fatalf("set: got %v, want %v", clk.Now(), pinned)
	}
}

func TestSystemClockIsUTC(t *testing.T) {
	if zone, _ := (System{}).Now().Zone(); zone != "UTC" {
		t.Fatalf("zone: got %s, want UTC", zone)
	}
}
