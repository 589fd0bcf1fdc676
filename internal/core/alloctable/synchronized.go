package alloctable

import "sync"

// Synchronized guards a Table with a mutex so that it can be shared by
// goroutines. Every method takes the lock for its whole duration,
// including the callback walk in Each.
type Synchronized struct {
	mu sync.Mutex
	t  Table
}

// NewSynchronized returns an empty mutex-guarded table.
func NewSynchronized() *Synchronized {
	return &Synchronized{}
}

// Allocate registers addr. See Table.Allocate.
func (s *Synchronized) Allocate(addr uintptr) {
	s.mu.Lock()
	s.t.Allocate(addr)
	s.mu.Unlock()
}

// CheckAndRemove reports whether addr was registered, removing it if so.
func (s *Synchronized) CheckAndRemove(addr uintptr) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.t.CheckAndRemove(addr)
}

// Contains reports whether addr is registered.
func (s *Synchronized) Contains(addr uintptr) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.t.Contains(addr)
}

// Len returns the number of tracked addresses.
func (s *Synchronized) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.t.Len()
}

// Stats returns an occupancy snapshot.
func (s *Synchronized) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.t.Stats()
}

// Each walks tracked addresses under the lock. fn must not call back into s.
func (s *Synchronized) Each(fn func(addr uintptr) bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.t.Each(fn)
}

// Close destroys every remaining node.
func (s *Synchronized) Close() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.t.Close()
}

var (
	_ Tracker = (*Table)(nil)
	_ Tracker = (*Synchronized)(nil)
)
