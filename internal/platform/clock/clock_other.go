//go:build !unix

package clock

// Counter returns nanoseconds since process start.
func (Monotonic) Counter() uint64 {
	return fallbackCounter()
}
