// Package clock exposes a monotonic high-resolution counter.
//
// Counter values are ticks; Frequency is ticks per second. The core never
// reads the clock itself; profilers and tools do.
package clock

import "time"

// Clock is a monotonic tick source.
type Clock interface {
	Counter() uint64
	Frequency() uint64
}

// Monotonic is the platform clock. Ticks are nanoseconds.
type Monotonic struct{}

// Frequency returns ticks per second.
func (Monotonic) Frequency() uint64 {
	return uint64(time.Second)
}

// Elapsed converts a counter interval into a duration.
func Elapsed(c Clock, start, end uint64) time.Duration {
	if end <= start {
		return 0
	}
	ticks := end - start
	freq := c.Frequency()
	secs := ticks / freq
	rem := ticks % freq
	return time.Duration(secs)*time.Second + time.Duration(rem*uint64(time.Second)/freq)
}

// Manual is a Clock advanced by hand, for tests.
type Manual struct {
	Ticks uint64
	Hz    uint64
}

// Counter returns the current tick count.
func (m *Manual) Counter() uint64 { return m.Ticks }

// Frequency returns Hz, defaulting to 1000.
func (m *Manual) Frequency() uint64 {
	if m.Hz == 0 {
		return 1000
	}
	return m.Hz
}

// Advance adds n ticks.
func (m *Manual) Advance(n uint64) { m.Ticks += n }

var (
	_ Clock = Monotonic{}
	_ Clock = (*Manual)(nil)
)
