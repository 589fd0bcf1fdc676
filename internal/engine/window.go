package engine

import (
	"log/slog"
	"unsafe"

	"github.com/kolkov/enginecore/internal/core/errs"
	"github.com/kolkov/enginecore/internal/core/object"
	"github.com/kolkov/enginecore/internal/core/typeinfo"
	"github.com/kolkov/enginecore/internal/platform/window"
)

// WindowTypeName is the registered name of the Window type.
const WindowTypeName = "Window"

var windowSize = unsafe.Sizeof(Window{})

// Window is an engine object owning one platform window. The platform
// window is destroyed together with the object.
type Window struct {
	object.Base

	engine *Engine
	win    window.Window
	closed bool
	events uint64
}

// GetType returns the engine's Window type.
func (w *Window) GetType() *typeinfo.Type {
	if w.engine == nil {
		return w.Base.GetType()
	}
	return w.engine.windowType
}

// Destroy closes the platform window.
func (w *Window) Destroy() {
	if w.win == nil {
		return
	}
	if err := w.engine.sys.Destroy(w.win); err != nil {
		w.engine.log.Error("destroy window", slog.Any("err", err))
	}
	w.win = nil
}

// Platform returns the underlying window, nil once destroyed.
func (w *Window) Platform() window.Window { return w.win }

// Closed reports whether a close event has been received.
func (w *Window) Closed() bool { return w.closed }

// Events returns the number of events pumped so far.
func (w *Window) Events() uint64 { return w.events }

// Pump drains pending events and reports whether the window was asked to
// close.
func (w *Window) Pump() bool {
	if w.win == nil {
		return true
	}
	for {
		ev, ok := w.win.NextEvent()
		if !ok {
			return w.closed
		}
		w.events++
		switch ev.Kind {
		case window.EventClose:
			w.closed = true
		case window.EventResize:
			w.engine.log.Debug("window resized", slog.Int("width", ev.X), slog.Int("height", ev.Y))
		}
	}
}

// Present swaps the window's buffers.
func (w *Window) Present() error {
	if w.win == nil {
		return errs.InvalidDereference("destroyed window")
	}
	return w.win.SwapBuffers()
}

// OpenWindow creates a platform window and returns the owning handle.
func (e *Engine) OpenWindow(cfg window.Config) (*object.Pointer[*Window], error) {
	w, err := e.newWindow(cfg)
	if err != nil {
		return nil, err
	}
	return object.NewPointer(w), nil
}

// newWindow returns an unowned Window (count 0).
func (e *Engine) newWindow(cfg window.Config) (*Window, error) {
	w, err := object.New[Window](e.rt)
	if err != nil {
		return nil, err
	}
	pw, err := e.sys.Create(cfg)
	if err != nil {
		// Take and drop a reference so the object goes through release.
		w.AddReference()
		w.DropReference()
		return nil, err
	}
	w.engine = e
	w.win = pw
	return w, nil
}
