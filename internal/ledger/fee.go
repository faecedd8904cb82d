package ledger

import "time"

// Monetary amounts are int64 counts of micro-units (1e-6 of the base
// currency unit). RatePerHour is the reference 0.001/hour tariff.
const (
	RatePerHour int64 = 1000

	MinReservationDuration = 15 * time.Minute
	MaxReservationDuration = 24 * time.Hour
)

// Fee returns the amount owed for a session of the given duration.
// Integer arithmetic truncates toward zero: partial hours are charged
// proportionally and never rounded up.
func Fee(d time.Duration) int64 {
	if d <= 0 {
		return 0
	}
	seconds := int64(d / time.Second)
	return seconds * RatePerHour / 3600
}
