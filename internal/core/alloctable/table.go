package alloctable

import "math/bits"

const (
	// PoolSize is the number of inline bookkeeping slots.
	// Must not exceed the width of the occupancy mask.
	PoolSize = 32

	// allPooled is the occupancy mask with every slot taken.
	allPooled = ^uint32(0)

	// heapSlot marks a node that does not live in the pool.
	heapSlot = -1
)

// Tracker is the method set shared by Table and Synchronized.
type Tracker interface {
	Allocate(addr uintptr)
	CheckAndRemove(addr uintptr) bool
	Contains(addr uintptr) bool
	Len() int
	Stats() Stats
	Each(fn func(addr uintptr) bool)
	Close() int
}

// Allocation is one tracked address, linked into the table's list.
//
// location is a lookup key only; the table never dereferences it and does
// not keep the memory behind it alive.
type Allocation struct {
	location uintptr
	next     *Allocation
	prev     *Allocation
	slot     int // pool index, or heapSlot
}

// Location returns the tracked address.
func (a *Allocation) Location() uintptr {
	return a.location
}

// Pooled reports whether the node lives in the inline pool.
func (a *Allocation) Pooled() bool {
	return a.slot != heapSlot
}

// unlink detaches the node from its neighbours. List connectivity is
// preserved for every other node.
func (a *Allocation) unlink() {
	if a.prev != nil {
		a.prev.next = a.next
	}
	if a.next != nil {
		a.next.prev = a.prev
	}
	a.next = nil
	a.prev = nil
}

// Stats is a snapshot of table occupancy.
type Stats struct {
	Live      int    // Tracked addresses.
	Pooled    int    // Of those, nodes resident in the inline pool.
	Overflow  int    // Of those, heap-resident nodes.
	PoolMask  uint32 // Occupancy mask.
	Allocated uint64 // Lifetime Allocate calls.
	Removed   uint64 // Lifetime successful CheckAndRemove calls.
	Misses    uint64 // Lifetime CheckAndRemove calls for unknown addresses.
}

// Table records addresses of tracked allocations.
//
// The zero value is an empty, ready-to-use table. A Table must not be
// copied after first use: list nodes point into its inline pool.
type Table struct {
	pool       [PoolSize]Allocation
	usedInPool uint32
	head       *Allocation

	live      int
	overflow  int
	allocated uint64
	removed   uint64
	misses    uint64
}

// New returns an empty table.
func New() *Table {
	return &Table{}
}

// Allocate registers addr.
//
// The node comes from the first free pool slot (slots 0..31 in order) or,
// when the pool is full, from the heap. The node becomes the new list
// head. Allocate performs no duplicate check; the runtime registers each
// address once, between acquisition and release.
func (t *Table) Allocate(addr uintptr) {
	var node *Allocation
	if t.usedInPool != allPooled {
		i := bits.TrailingZeros32(^t.usedInPool)
		t.usedInPool |= 1 << uint(i)
		node = &t.pool[i]
		*node = Allocation{location: addr, slot: i}
	} else {
		node = &Allocation{location: addr, slot: heapSlot}
		t.overflow++
	}

	node.next = t.head
	if t.head != nil {
		t.head.prev = node
	}
	t.head = node

	t.live++
	t.allocated++
}

// CheckAndRemove reports whether addr was registered, removing it if so.
//
// A false result leaves the table untouched. It is the expected answer
// for any address that did not come through the tracked path.
func (t *Table) CheckAndRemove(addr uintptr) bool {
	node := t.find(addr)
	if node == nil {
		t.misses++
		return false
	}
	t.destroy(node)
	t.removed++
	return true
}

// Contains reports whether addr is registered without modifying the table.
func (t *Table) Contains(addr uintptr) bool {
	return t.find(addr) != nil
}

// Len returns the number of tracked addresses.
func (t *Table) Len() int {
	return t.live
}

// Pooled returns the number of tracked addresses with pool-resident nodes.
func (t *Table) Pooled() int {
	return bits.OnesCount32(t.usedInPool)
}

// Overflow returns the number of tracked addresses with heap-resident nodes.
func (t *Table) Overflow() int {
	return t.overflow
}

// Stats returns an occupancy snapshot.
func (t *Table) Stats() Stats {
	return Stats{
		Live:      t.live,
		Pooled:    t.Pooled(),
		Overflow:  t.overflow,
		PoolMask:  t.usedInPool,
		Allocated: t.allocated,
		Removed:   t.removed,
		Misses:    t.misses,
	}
}

// Each calls fn for every tracked address, most recent first, until fn
// returns false. fn must not modify the table.
func (t *Table) Each(fn func(addr uintptr) bool) {
	for n := t.head; n != nil; n = n.next {
		if !fn(n.location) {
			return
		}
	}
}

// Close destroys every remaining node and returns how many there were.
// The table is empty and reusable afterwards.
func (t *Table) Close() int {
	dropped := 0
	for t.head != nil {
		t.destroy(t.head)
		dropped++
	}
	return dropped
}

func (t *Table) find(addr uintptr) *Allocation {
	for n := t.head; n != nil; n = n.next {
		if n.location == addr {
			return n
		}
	}
	return nil
}

// destroy unlinks node and applies the teardown matching its residency.
func (t *Table) destroy(node *Allocation) {
	if t.head == node {
		t.head = node.next
	}
	node.unlink()

	if node.Pooled() {
		t.usedInPool &^= 1 << uint(node.slot)
		*node = Allocation{}
	} else {
		t.overflow--
	}
	t.live--
}
