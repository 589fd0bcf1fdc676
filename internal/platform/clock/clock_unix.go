//go:build unix

package clock

import "golang.org/x/sys/unix"

// Counter returns CLOCK_MONOTONIC in nanoseconds.
func (Monotonic) Counter() uint64 {
	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_MONOTONIC, &ts); err != nil {
		return fallbackCounter()
	}
	return uint64(ts.Nano())
}
