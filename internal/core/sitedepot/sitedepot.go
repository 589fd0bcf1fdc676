// Package sitedepot stores deduplicated allocation-site stack traces.
//
// When site tracking is enabled, the object runtime captures the caller's
// stack on every tracked allocation and keeps only its 64-bit hash on the
// live-object record. Identical stacks are stored once.
//
// Design:
//   - Fixed-size stack traces (8 frames, 64 bytes per stack)
//   - Hash-based deduplication (FNV-1a over program counters)
//   - One depot per runtime, guarded by sync.Map
//
// Usage:
//
//	d := sitedepot.New()
//	hash := d.Capture(1) // skip the caller's own frame
//	...
//	fmt.Print(d.Get(hash).Format())
package sitedepot

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"runtime"
	"strings"
	"sync"
)

// MaxFrames is the number of stack frames kept per site.
// Eight frames reach from the allocation helper into the caller's code
// for typical engine call chains.
const MaxFrames = 8

// StackTrace is a captured allocation site.
type StackTrace struct {
	PC [MaxFrames]uintptr
}

// Depot deduplicates stack traces by hash.
//
// Thread Safety: Capture and Get are safe for concurrent calls. Reset is not.
type Depot struct {
	stacks sync.Map // uint64 (hash) -> *StackTrace
}

// New returns an empty depot.
func New() *Depot {
	return &Depot{}
}

// Capture records the current goroutine's stack and returns its hash.
//
// skip is the number of frames above Capture's caller to drop; 0 starts
// the trace at the function that called Capture.
//
// Returns 0 if no frames are available.
func (d *Depot) Capture(skip int) uint64 {
	var pcs [MaxFrames]uintptr
	// +2 skips runtime.Callers and Capture itself.
	n := runtime.Callers(skip+2, pcs[:])
	if n == 0 {
		return 0
	}

	hash := hashStack(pcs[:n])
	if _, exists := d.stacks.Load(hash); exists {
		return hash
	}
	d.stacks.Store(hash, &StackTrace{PC: pcs})
	return hash
}

// Get returns the stack stored under hash, or nil.
func (d *Depot) Get(hash uint64) *StackTrace {
	if hash == 0 {
		return nil
	}
	val, ok := d.stacks.Load(hash)
	if !ok {
		return nil
	}
	return val.(*StackTrace)
}

// Len returns the number of unique stacks stored.
func (d *Depot) Len() int {
	n := 0
	d.stacks.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// Reset forgets every stored stack. Not safe for concurrent use.
func (d *Depot) Reset() {
	d.stacks = sync.Map{}
}

func hashStack(pcs []uintptr) uint64 {
	h := fnv.New64a()
	var buf [8]byte
	for _, pc := range pcs {
		binary.LittleEndian.PutUint64(buf[:], uint64(pc))
		_, _ = h.Write(buf[:])
	}
	return h.Sum64()
}

// Format renders the trace one frame per two lines, skipping runtime
// frames:
//
//	main.spawnEnemies()
//	    /src/game/spawn.go:45
func (st *StackTrace) Format() string {
	if st == nil {
		return "  <unknown>\n"
	}

	frames := runtime.CallersFrames(trimZero(st.PC[:]))
	var buf strings.Builder
	for {
		frame, more := frames.Next()
		if frame.PC == 0 {
			break
		}
		if !strings.HasPrefix(frame.Function, "runtime.") {
			fmt.Fprintf(&buf, "  %s()\n", frame.Function)
			fmt.Fprintf(&buf, "      %s:%d\n", frame.File, frame.Line)
		}
		if !more {
			break
		}
	}

	if buf.Len() == 0 {
		return "  <runtime internal>\n"
	}
	return buf.String()
}

// trimZero drops trailing unused slots.
func trimZero(pcs []uintptr) []uintptr {
	n := len(pcs)
	for n > 0 && pcs[n-1] == 0 {
		n--
	}
	return pcs[:n]
}
