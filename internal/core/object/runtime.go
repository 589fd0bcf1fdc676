package object

import (
	"fmt"
	"log/slog"
	"sync"
	"unsafe"

	"github.com/google/uuid"

	"github.com/kolkov/enginecore/internal/core/alloctable"
	"github.com/kolkov/enginecore/internal/core/errs"
	"github.com/kolkov/enginecore/internal/core/sitedepot"
	"github.com/kolkov/enginecore/internal/core/typeinfo"
	"github.com/kolkov/enginecore/internal/logging"
)

// ABIVersion stamps manifests exported by registries the runtime creates.
const ABIVersion = "v1.0.0"

// BaseSize is the footprint of Base, used as the root Type's size.
const BaseSize = unsafe.Sizeof(Base{})

// Options configures NewRuntime. The zero value is a single-goroutine
// runtime with no budget, no logging and no site tracking.
type Options struct {
	// Log receives runtime diagnostics. Nil discards them.
	Log logging.Sink

	// Types is the registry objects report their types from. Nil creates
	// a fresh registry holding only the root Type.
	Types *typeinfo.Registry

	// MemoryBudget caps the bytes charged by New and NewArray.
	// Zero means unlimited.
	MemoryBudget uint64

	// Concurrent selects a mutex-guarded allocation table and serializes
	// runtime bookkeeping so that one runtime can serve several goroutines.
	Concurrent bool

	// TrackSites records the allocation stack of every tracked object for
	// leak reports.
	TrackSites bool
}

// Stats is a snapshot of runtime counters.
type Stats struct {
	ID         string
	Live       int    // Tracked objects not yet destroyed.
	Created    uint64 // Tracked objects constructed.
	Destroyed  uint64 // Tracked objects destroyed.
	Placed     uint64 // Placement constructions.
	Arrays     uint64 // Array allocations.
	Failed     uint64 // Creations that returned an error.
	BytesInUse uint64
	Budget     uint64
	Sites      int // Unique allocation sites recorded.
	Table      alloctable.Stats
}

// liveObject pins a tracked object until it is destroyed. The allocation
// table only holds addresses, which do not keep memory alive.
type liveObject struct {
	obj Object
}

// Runtime is the explicit context behind object creation: one allocation
// table, one type registry, one budget.
//
// Create it once at startup and pass it to whatever creates objects.
type Runtime struct {
	id    uuid.UUID
	log   logging.Sink
	table alloctable.Tracker
	types *typeinfo.Registry
	sites *sitedepot.Depot

	concurrent bool
	mu         sync.Mutex
	live       map[uintptr]liveObject
	budget     uint64
	inUse      uint64
	closed     bool

	created   uint64
	destroyed uint64
	placed    uint64
	arrays    uint64
	failed    uint64
	overflow  bool
}

// NewRuntime creates a runtime.
func NewRuntime(opts Options) *Runtime {
	rt := &Runtime{
		id:         uuid.New(),
		log:        opts.Log,
		types:      opts.Types,
		budget:     opts.MemoryBudget,
		concurrent: opts.Concurrent,
		live:       make(map[uintptr]liveObject),
	}
	if rt.types == nil {
		rt.types = typeinfo.NewRegistry(BaseSize, ABIVersion)
	}
	if opts.Concurrent {
		rt.table = alloctable.NewSynchronized()
	} else {
		rt.table = alloctable.New()
	}
	if opts.TrackSites {
		rt.sites = sitedepot.New()
	}
	rt.logf(slog.LevelDebug, "runtime %s started (budget=%d concurrent=%t sites=%t)",
		rt.id, rt.budget, rt.concurrent, opts.TrackSites)
	return rt
}

// ID returns the runtime's session identifier.
func (rt *Runtime) ID() uuid.UUID {
	return rt.id
}

// Types returns the type registry.
func (rt *Runtime) Types() *typeinfo.Registry {
	return rt.types
}

// Table returns the allocation table. Exposed for diagnostics and tests;
// mutating it directly breaks the runtime's bookkeeping.
func (rt *Runtime) Table() alloctable.Tracker {
	return rt.table
}

// Stats returns a snapshot of the runtime counters.
func (rt *Runtime) Stats() Stats {
	rt.lock()
	defer rt.unlock()

	s := Stats{
		ID:         rt.id.String(),
		Live:       len(rt.live),
		Created:    rt.created,
		Destroyed:  rt.destroyed,
		Placed:     rt.placed,
		Arrays:     rt.arrays,
		Failed:     rt.failed,
		BytesInUse: rt.inUse,
		Budget:     rt.budget,
		Table:      rt.table.Stats(),
	}
	if rt.sites != nil {
		s.Sites = rt.sites.Len()
	}
	return s
}

// Close reports leaked objects, drops every table entry and refuses
// further allocations. It returns the number of tracked objects still
// alive. Leaked objects are not destroyed; their memory is left to the
// garbage collector.
func (rt *Runtime) Close() int {
	leaks := rt.Leaks()

	rt.lock()
	defer rt.unlock()
	if rt.closed {
		return 0
	}
	rt.closed = true

	for _, l := range leaks {
		rt.logf(slog.LevelWarn, "leaked %s at 0x%x (refs=%d)", l.Type, l.Addr, l.Refs)
	}
	dropped := rt.table.Close()
	clear(rt.live)
	rt.inUse = 0
	rt.logf(slog.LevelDebug, "runtime %s closed (%d table entries dropped)", rt.id, dropped)
	return len(leaks)
}

func (rt *Runtime) lock() {
	if rt.concurrent {
		rt.mu.Lock()
	}
}

func (rt *Runtime) unlock() {
	if rt.concurrent {
		rt.mu.Unlock()
	}
}

// charge reserves size bytes against the budget. Caller holds the lock.
func (rt *Runtime) charge(size uint64) error {
	if rt.closed {
		return errs.New(errs.KindGeneric, "runtime is closed")
	}
	if rt.budget != 0 && (size > rt.budget || rt.inUse > rt.budget-size) {
		rt.failed++
		return errs.OutOfMemory("budget of %d bytes exhausted (requested %d, in use %d)", rt.budget, size, rt.inUse)
	}
	rt.inUse += size
	return nil
}

// refund returns size bytes to the budget. Caller holds the lock.
func (rt *Runtime) refund(size uint64) {
	if size > rt.inUse {
		size = rt.inUse
	}
	rt.inUse -= size
}

// construct sets up b for obj at addr and seeds the count from the table:
// a tracked address starts at 0 and waits for its first owner; any other
// address starts pinned at 1.
func (rt *Runtime) construct(obj Object, addr, size uintptr, site uint64) error {
	b := obj.objectBase()
	if b.rt != nil {
		return errs.Newf(errs.KindGeneric, "object already constructed", "0x%x", addr)
	}

	b.rt = rt
	b.self = obj
	b.addr = addr
	b.size = size
	b.site = site
	b.destroyed = false

	rt.lock()
	// An object placed at the start of a live tracked object shares its
	// address; only the first one owns the table entry.
	_, taken := rt.live[addr]
	b.tracked = !taken && rt.table.Contains(addr)
	if b.tracked {
		b.refs.Store(0)
		rt.live[addr] = liveObject{obj: obj}
		rt.created++
		if !rt.overflow && rt.table.Stats().Overflow > 0 {
			rt.overflow = true
			rt.logf(slog.LevelDebug, "allocation table pool exhausted, using heap nodes")
		}
	} else {
		b.refs.Store(1)
		rt.placed++
	}
	rt.unlock()

	if in, ok := obj.(Initializer); ok {
		if err := in.Init(); err != nil {
			rt.abort(b)
			return err
		}
	}
	return nil
}

// abort undoes construct after a failed Init. The object is not destroyed:
// Destroy never runs for an object whose constructor failed.
func (rt *Runtime) abort(b *Base) {
	rt.lock()
	if b.tracked {
		rt.table.CheckAndRemove(b.addr)
		delete(rt.live, b.addr)
		rt.refund(uint64(b.size))
		rt.created--
	} else {
		rt.placed--
	}
	rt.failed++
	rt.unlock()

	b.destroyed = true
	b.refs.Store(0)
}

// free runs after Destroy when the count reaches zero.
func (rt *Runtime) free(b *Base) {
	rt.lock()
	defer rt.unlock()

	if !b.tracked {
		return
	}
	if !rt.table.CheckAndRemove(b.addr) && !rt.closed {
		rt.logf(slog.LevelError, "destroyed object at 0x%x was missing from the allocation table", b.addr)
	}
	delete(rt.live, b.addr)
	rt.refund(uint64(b.size))
	rt.destroyed++
}

func (rt *Runtime) logf(level slog.Level, format string, args ...any) {
	if rt.log == nil {
		return
	}
	file, line := logging.Caller(1)
	rt.log.Log(level, fmt.Sprintf(format, args...), file, line)
}
