// Package window defines the window-system capability set the engine
// consumes, plus a headless backend.
//
// Platform backends implement System and Window. The object core has no
// dependency on this package; engine-level entities that own a window
// hold it behind a shared handle.
package window

import (
	"fmt"

	"github.com/kolkov/enginecore/internal/core/errs"
)

// Config describes a window to create.
type Config struct {
	Fullscreen   bool `usage:"open the window fullscreen"`
	DoubleBuffer bool `usage:"use a double-buffered surface"`
	VSync        bool `usage:"synchronize buffer swaps with vertical refresh"`
	ColorBits    int  `usage:"color buffer bit depth"`
	DepthBits    int  `usage:"depth buffer bit depth"`
	StencilBits  int  `usage:"stencil buffer bit depth"`
	Samples      int  `usage:"antialiasing sample count (0 disables)"`
	Width        int  `usage:"window width in pixels"`
	Height       int  `usage:"window height in pixels"`
}

// DefaultConfig returns a 1280x720 double-buffered, vsynced window.
func DefaultConfig() Config {
	return Config{
		DoubleBuffer: true,
		VSync:        true,
		ColorBits:    32,
		DepthBits:    24,
		StencilBits:  8,
		Width:        1280,
		Height:       720,
	}
}

// Validate checks every field against its documented domain.
func (c Config) Validate() error {
	switch c.ColorBits {
	case 16, 24, 32:
	default:
		return errs.OutOfRange("color bits %d, want 16, 24 or 32", c.ColorBits)
	}
	if c.DepthBits < 0 || c.DepthBits > 32 {
		return errs.OutOfRange("depth bits %d, want 0..32", c.DepthBits)
	}
	if c.StencilBits < 0 || c.StencilBits > 8 {
		return errs.OutOfRange("stencil bits %d, want 0..8", c.StencilBits)
	}
	if c.Samples < 0 || c.Samples > 16 || (c.Samples != 0 && c.Samples&(c.Samples-1) != 0) {
		return errs.OutOfRange("samples %d, want 0 or a power of two up to 16", c.Samples)
	}
	if c.Width <= 0 || c.Height <= 0 {
		return errs.OutOfRange("size %dx%d, want positive dimensions", c.Width, c.Height)
	}
	return nil
}

// EventKind identifies an event.
type EventKind int

const (
	EventNone EventKind = iota
	EventClose
	EventResize
	EventKeyDown
	EventKeyUp
	EventMouseMove
	EventFocus
)

func (k EventKind) String() string {
	switch k {
	case EventNone:
		return "none"
	case EventClose:
		return "close"
	case EventResize:
		return "resize"
	case EventKeyDown:
		return "key-down"
	case EventKeyUp:
		return "key-up"
	case EventMouseMove:
		return "mouse-move"
	case EventFocus:
		return "focus"
	default:
		return fmt.Sprintf("event(%d)", int(k))
	}
}

// Event is one input or window-state change.
type Event struct {
	Kind EventKind
	X, Y int // resize: new size; mouse: position
	Key  int
}

// Window is a created platform window.
type Window interface {
	Width() int
	Height() int
	SwapBuffers() error
	// NextEvent pops the oldest pending event. ok is false when none is queued.
	NextEvent() (ev Event, ok bool)
	PendingEvents() int
}

// System creates and destroys windows.
type System interface {
	Create(cfg Config) (Window, error)
	Destroy(w Window) error
}
