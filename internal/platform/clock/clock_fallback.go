package clock

import "time"

// epoch anchors the portable counter; time.Since reads the runtime's
// monotonic reading.
var epoch = time.Now()

func fallbackCounter() uint64 {
	return uint64(time.Since(epoch))
}
