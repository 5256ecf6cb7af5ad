// Package timefmt formats message timestamps for display.
package timefmt

import "time"

const (
	layout12h = "3:04 PM"
	layout24h = "15:04"
)

// Formatter renders the hour and minute of an instant in the local zone of
// the time value.
type Formatter struct {
	Hour24 bool
}

// Format returns the clock representation of t, e.g. "1:05 PM" or "13:05".
func (f Formatter) Format(t time.Time) string {
	if f.Hour24 {
		return t.Format(layout24h)
	}
	return t.Format(layout12h)
}

// Clock formats t using the en-US 12-hour convention.
func Clock(t time.Time) string {
	return Formatter{}.Format(t)
}
