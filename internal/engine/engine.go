// Package engine wires the object runtime, the type registry and the
// window system into one context and drives the frame loop.
package engine

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/kolkov/enginecore/internal/config"
	"github.com/kolkov/enginecore/internal/core/object"
	"github.com/kolkov/enginecore/internal/core/typeinfo"
	"github.com/kolkov/enginecore/internal/logging"
	"github.com/kolkov/enginecore/internal/platform/clock"
	"github.com/kolkov/enginecore/internal/platform/window"
)

// Engine owns one runtime and the objects created at startup.
type Engine struct {
	cfg   config.Config
	log   *slog.Logger
	rt    *object.Runtime
	sys   window.System
	clock clock.Clock

	windowType *typeinfo.Type
	main       *object.Pointer[*Window]

	frames     uint64
	lastFrame  time.Duration
	totalFrame time.Duration

	// Published for readers on other goroutines.
	snapshot atomic.Pointer[Stats]
	manifest atomic.Pointer[typeinfo.Manifest]
}

// Stats summarizes the frame loop and the runtime.
type Stats struct {
	Frames    uint64
	LastFrame time.Duration
	AvgFrame  time.Duration
	Runtime   object.Stats
}

// New builds an engine from cfg. log may be nil; clk nil selects the
// monotonic clock.
func New(cfg config.Config, sys window.System, log *slog.Logger, clk clock.Clock) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logging.Discard()
	}
	if clk == nil {
		clk = clock.Monotonic{}
	}

	sink := &logging.SlogSink{L: log}
	rt := object.NewRuntime(object.Options{
		Log:          sink,
		MemoryBudget: cfg.Runtime.MemoryBudget,
		Concurrent:   cfg.Runtime.Concurrent,
		TrackSites:   cfg.Runtime.TrackSites,
	})
	log = log.With(slog.String("runtime", rt.ID().String()))
	sink.L = log

	e := &Engine{
		cfg:   cfg,
		log:   log,
		rt:    rt,
		sys:   sys,
		clock: clk,
	}
	if err := e.registerTypes(); err != nil {
		return nil, err
	}
	e.publish()
	return e, nil
}

func (e *Engine) registerTypes() error {
	t, err := e.rt.Types().Register(WindowTypeName, windowSize, e.rt.Types().Root(), func() (any, error) {
		w, err := e.newWindow(e.cfg.Window)
		if err != nil {
			return nil, err
		}
		return w, nil
	})
	if err != nil {
		return fmt.Errorf("engine: %w", err)
	}
	e.windowType = t
	return nil
}

// Runtime returns the object runtime.
func (e *Engine) Runtime() *object.Runtime { return e.rt }

// Types returns the type registry.
func (e *Engine) Types() *typeinfo.Registry { return e.rt.Types() }

// WindowType returns the registered Window type.
func (e *Engine) WindowType() *typeinfo.Type { return e.windowType }

// Main returns a new handle to the main window, or an empty handle
// before Start.
func (e *Engine) Main() *object.Pointer[*Window] {
	if e.main == nil {
		return object.Empty[*Window]()
	}
	return e.main.Clone()
}

// Start opens the main window.
func (e *Engine) Start() error {
	if e.main.Valid() {
		return nil
	}
	w, err := e.OpenWindow(e.cfg.Window)
	if err != nil {
		return err
	}
	e.main = w
	e.publish()
	e.log.Info("main window opened",
		slog.Int("width", e.cfg.Window.Width),
		slog.Int("height", e.cfg.Window.Height))
	return nil
}

// Run drives frames until the main window closes, frames is reached
// (0 means no limit) or ctx is done.
func (e *Engine) Run(ctx context.Context, frames int) error {
	if err := e.Start(); err != nil {
		return err
	}
	main := e.main.MustGet()

	for n := 0; frames == 0 || n < frames; n++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		start := e.clock.Counter()
		if main.Pump() {
			e.log.Info("main window closed", slog.Uint64("frames", e.frames))
			return nil
		}
		if err := main.Present(); err != nil {
			return err
		}
		dt := clock.Elapsed(e.clock, start, e.clock.Counter())

		e.frames++
		e.lastFrame = dt
		e.totalFrame += dt
		e.log.Debug("frame", slog.Uint64("n", e.frames), slog.Duration("dt", dt))
		e.publish()
	}
	return nil
}

// Stats returns frame and runtime counters.
func (e *Engine) Stats() Stats {
	s := Stats{
		Frames:    e.frames,
		LastFrame: e.lastFrame,
		Runtime:   e.rt.Stats(),
	}
	if e.frames > 0 {
		s.AvgFrame = e.totalFrame / time.Duration(e.frames)
	}
	return s
}

// Snapshot returns the Stats published at the end of the last frame.
// Unlike Stats it is safe to call from any goroutine.
func (e *Engine) Snapshot() Stats {
	if s := e.snapshot.Load(); s != nil {
		return *s
	}
	return Stats{}
}

// Manifest returns the type manifest published before the first frame. Safe
// to call from any goroutine.
func (e *Engine) Manifest() typeinfo.Manifest {
	if m := e.manifest.Load(); m != nil {
		return *m
	}
	return typeinfo.Manifest{}
}

// publish runs on the engine goroutine.
func (e *Engine) publish() {
	s := e.Stats()
	e.snapshot.Store(&s)
	if e.manifest.Load() == nil || e.frames == 0 {
		m := e.rt.Types().Export()
		e.manifest.Store(&m)
	}
}

// Close releases the main window and closes the runtime. Leaked objects
// are reported to w when it is not nil. It returns the number of leaks.
func (e *Engine) Close(w io.Writer) int {
	if e.main != nil {
		e.main.Release()
	}
	if w != nil {
		if _, err := e.rt.LeakReport(w); err != nil {
			e.log.Error("leak report", slog.Any("err", err))
		}
	}
	leaks := e.rt.Close()
	if leaks > 0 {
		e.log.Warn("engine closed with leaked objects", slog.Int("leaks", leaks))
	}
	return leaks
}

// DumpTypes writes the registry as an indented tree.
func DumpTypes(w io.Writer, r *typeinfo.Registry) error {
	var sb strings.Builder
	var walk func(t *typeinfo.Type)
	walk = func(t *typeinfo.Type) {
		kind := ""
		if t.IsAbstract() {
			kind = " (abstract)"
		}
		fmt.Fprintf(&sb, "%s%s size=%d%s\n", strings.Repeat("  ", t.Depth()), t.Name(), t.Size(), kind)
		for _, c := range r.Children(t) {
			walk(c)
		}
	}
	walk(r.Root())
	_, err := io.WriteString(w, sb.String())
	return err
}
