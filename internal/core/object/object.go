package object

import (
	"sync/atomic"

	"github.com/kolkov/enginecore/internal/core/errs"
	"github.com/kolkov/enginecore/internal/core/typeinfo"
)

// Object is the capability set of every engine entity.
//
// The unexported method is provided only by Base, so a type is an Object
// exactly when it embeds Base.
type Object interface {
	// AddReference increments the reference count.
	AddReference()
	// DropReference decrements the reference count, destroying the object
	// when it reaches zero.
	DropReference()
	// GetReferenceCount returns the current count. Diagnostic only.
	GetReferenceCount() int64
	// GetType reports the object's runtime type. Types embedding Base
	// override it to return their own node.
	GetType() *typeinfo.Type

	objectBase() *Base
}

// Destroyer is implemented by objects that need teardown. Destroy runs
// exactly once, when the reference count drops to zero, before the
// address leaves the allocation table.
type Destroyer interface {
	Destroy()
}

// Initializer is implemented by objects with a fallible constructor.
// Init runs after the base is set up. An error aborts creation: the table
// entry and budget charge are rolled back and the error is returned.
type Initializer interface {
	Init() error
}

// Base carries the reference count and runtime bookkeeping.
//
// The count is an atomic cell so it can change through any view of the
// object, independently of the object's own state.
type Base struct {
	refs atomic.Int64

	rt        *Runtime
	self      Object
	addr      uintptr
	size      uintptr
	site      uint64
	tracked   bool
	destroyed bool
}

func (b *Base) objectBase() *Base { return b }

// AddReference increments the reference count.
func (b *Base) AddReference() {
	b.refs.Add(1)
}

// DropReference decrements the reference count. The transition from 1 to
// 0 destroys the object. Dropping below zero is a programming error and
// panics.
func (b *Base) DropReference() {
	n := b.refs.Add(-1)
	switch {
	case n == 0:
		b.release()
	case n < 0:
		panic(errs.Newf(errs.KindGeneric, "reference count underflow", "object at 0x%x dropped to %d", b.addr, n))
	}
}

// GetReferenceCount returns the current reference count.
func (b *Base) GetReferenceCount() int64 {
	return b.refs.Load()
}

// GetType returns the root Type of the owning runtime's registry, or nil
// for an object that was never constructed.
func (b *Base) GetType() *typeinfo.Type {
	if b.rt == nil {
		return nil
	}
	return b.rt.types.Root()
}

// Runtime returns the runtime that constructed the object.
func (b *Base) Runtime() *Runtime {
	return b.rt
}

// Address returns the address recorded at construction.
func (b *Base) Address() uintptr {
	return b.addr
}

// Tracked reports whether the object came through the tracked path.
func (b *Base) Tracked() bool {
	return b.tracked
}

// Destroyed reports whether the object has been torn down.
func (b *Base) Destroyed() bool {
	return b.destroyed
}

// typeOf reports the dynamic type through the outermost object, so that
// overrides are honoured.
func (b *Base) typeOf() *typeinfo.Type {
	if b.self != nil {
		return b.self.GetType()
	}
	return b.GetType()
}

func (b *Base) release() {
	if b.destroyed {
		return
	}
	b.destroyed = true
	if d, ok := b.self.(Destroyer); ok {
		d.Destroy()
	}
	if b.rt != nil {
		b.rt.free(b)
	}
}
