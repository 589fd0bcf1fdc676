package window

import (
	"github.com/kolkov/enginecore/internal/core/errs"
)

// Headless is a System with no display. Windows keep an in-memory event
// queue that tests and tools feed with Push.
type Headless struct {
	open    map[*HeadlessWindow]struct{}
	created int
}

// NewHeadless returns an empty headless system.
func NewHeadless() *Headless {
	return &Headless{open: make(map[*HeadlessWindow]struct{})}
}

// Create validates cfg and opens a window.
func (h *Headless) Create(cfg Config) (Window, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	h.created++
	w := &HeadlessWindow{cfg: cfg, id: h.created}
	h.open[w] = struct{}{}
	return w, nil
}

// Destroy closes w. Destroying a window twice, or one from another
// system, is an error.
func (h *Headless) Destroy(w Window) error {
	hw, ok := w.(*HeadlessWindow)
	if !ok {
		return errs.Newf(errs.KindGeneric, "foreign window", "%T", w)
	}
	if _, open := h.open[hw]; !open {
		return errs.Newf(errs.KindGeneric, "window not open", "window #%d", hw.id)
	}
	delete(h.open, hw)
	hw.closed = true
	return nil
}

// Open returns the number of open windows.
func (h *Headless) Open() int {
	return len(h.open)
}

// HeadlessWindow is a window created by Headless.
type HeadlessWindow struct {
	cfg    Config
	id     int
	queue  []Event
	swaps  int
	closed bool
}

// Width returns the current width.
func (w *HeadlessWindow) Width() int { return w.cfg.Width }

// Height returns the current height.
func (w *HeadlessWindow) Height() int { return w.cfg.Height }

// SwapBuffers counts a presented frame.
func (w *HeadlessWindow) SwapBuffers() error {
	if w.closed {
		return errs.Newf(errs.KindGeneric, "swap on closed window", "window #%d", w.id)
	}
	w.swaps++
	return nil
}

// Swaps returns how many frames were presented.
func (w *HeadlessWindow) Swaps() int { return w.swaps }

// Push queues an event. Resize events take effect when popped.
func (w *HeadlessWindow) Push(ev Event) {
	w.queue = append(w.queue, ev)
}

// NextEvent pops the oldest event in FIFO order.
func (w *HeadlessWindow) NextEvent() (Event, bool) {
	if len(w.queue) == 0 {
		return Event{}, false
	}
	ev := w.queue[0]
	w.queue[0] = Event{}
	w.queue = w.queue[1:]
	if ev.Kind == EventResize && ev.X > 0 && ev.Y > 0 {
		w.cfg.Width, w.cfg.Height = ev.X, ev.Y
	}
	return ev, true
}

// PendingEvents returns the queue length.
func (w *HeadlessWindow) PendingEvents() int {
	return len(w.queue)
}

var (
	_ System = (*Headless)(nil)
	_ Window = (*HeadlessWindow)(nil)
)
