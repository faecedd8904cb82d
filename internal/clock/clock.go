// Package clock supplies the current time to components that must not read
// the wall clock directly. The ledger core only ever receives explicit time
// values, so fixing the clock fixes the whole system's notion of now.
package clock

import (
	"sync"
	"time"
)

// Clock yields the current instant.
type Clock interface {
	Now() time.Time
}

// System reads the wall clock in UTC.
type System struct{}

// Now returns the current UTC time.
func (System) Now() time.Time {
	return time.Now().UTC()
}

// Manual is a settable clock for tests.
type Manual struct {
	mu      sync.Mutex
	current time.Time
}

// NewManual returns a manual clock pinned to start.
func NewManual(start time.Time) *Manual {
	return &Manual{current: start}
}

// Now returns the pinned instant.
func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Set pins the clock to t.
func (m *Manual) Set(t time.Time) {
	m.mu.Lock()
	m.current = t
	m.mu.Unlock()
}

// Advance moves the clock forward by d and returns the updated time.
func (m *Manual) Advance(d time.Duration) time.Time {
	m.mu.Lock()
	m.current = m.current.Add(d)
	updated := m.current
	m.mu.Unlock()
	return updated
}
