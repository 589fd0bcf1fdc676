package object

import (
	"log/slog"
	"unsafe"

	"github.com/kolkov/enginecore/internal/core/errs"
	"github.com/kolkov/enginecore/internal/core/typeinfo"
)

// objectPtr constrains PT to *T implementing Object, which lets callers
// write New[Pawn](rt) and get a *Pawn back.
type objectPtr[T any] interface {
	*T
	Object
}

// New allocates and constructs a tracked T.
//
// Flow:
//  1. Charge sizeof(T) against the budget (KindOutOfMemory when exhausted)
//  2. Obtain zeroed memory for T
//  3. Record the address in the allocation table
//  4. Construct: the table recognizes the address, so the count starts at 0
//  5. Run Init, if T implements Initializer
//
// The caller should hand the result to NewPointer at once; an object with
// count 0 is owned by nobody.
func New[T any, PT objectPtr[T]](rt *Runtime) (PT, error) {
	size := unsafe.Sizeof(*new(T))

	rt.lock()
	err := rt.charge(uint64(size))
	rt.unlock()
	if err != nil {
		return nil, err
	}

	p := PT(new(T))
	addr := uintptr(unsafe.Pointer(p))
	rt.table.Allocate(addr)

	var site uint64
	if rt.sites != nil {
		site = rt.sites.Capture(1)
	}
	// A failed Init has already been rolled back by construct.
	if err := rt.construct(p, addr, size, site); err != nil {
		return nil, err
	}
	return p, nil
}

// Construct builds obj in place. obj's memory did not come from New, so
// its address is not in the table and the count starts pinned at 1:
// Pointers may share it but never destroy it.
func Construct[T any, PT objectPtr[T]](rt *Runtime, obj PT) error {
	if obj == nil {
		return errs.InvalidDereference("Construct of nil object")
	}
	rt.lock()
	closed := rt.closed
	rt.unlock()
	if closed {
		return errs.New(errs.KindGeneric, "runtime is closed")
	}
	return rt.construct(obj, uintptr(unsafe.Pointer(obj)), unsafe.Sizeof(*obj), 0)
}

// NewArray allocates n elements of T. The allocation is charged against
// the budget as a whole but never enters the allocation table: each
// element is constructed pinned, like a placement construction.
func NewArray[T any, PT objectPtr[T]](rt *Runtime, n int) ([]T, error) {
	if n < 0 {
		return nil, errs.OutOfRange("array length %d", n)
	}
	size := uint64(unsafe.Sizeof(*new(T))) * uint64(n)

	rt.lock()
	err := rt.charge(size)
	if err == nil {
		rt.arrays++
	}
	rt.unlock()
	if err != nil {
		return nil, err
	}

	arr := make([]T, n)
	for i := range arr {
		p := PT(&arr[i])
		if err := rt.construct(p, uintptr(unsafe.Pointer(p)), unsafe.Sizeof(arr[i]), 0); err != nil {
			releaseElements[T, PT](arr[:i])
			rt.lock()
			rt.refund(size)
			rt.unlock()
			return nil, err
		}
	}
	return arr, nil
}

// ReleaseArray drops the array's pin on every element and returns the
// array's charge to the budget. Elements nobody else holds are destroyed
// now; an element still shared by a Pointer lives until its last handle
// is released.
func ReleaseArray[T any, PT objectPtr[T]](rt *Runtime, arr []T) {
	for i := range arr {
		b := PT(&arr[i]).objectBase()
		if b.destroyed {
			continue
		}
		if n := b.GetReferenceCount(); n > 1 {
			rt.logf(slog.LevelWarn, "array element at 0x%x released with %d handles outstanding", b.addr, n-1)
		}
		b.DropReference()
	}
	rt.lock()
	rt.refund(uint64(unsafe.Sizeof(*new(T))) * uint64(len(arr)))
	rt.unlock()
}

func releaseElements[T any, PT objectPtr[T]](arr []T) {
	for i := range arr {
		PT(&arr[i]).objectBase().release()
	}
}

// Create instantiates t through its factory and returns a shared handle.
// An abstract type yields an empty handle and no error.
func Create(t *typeinfo.Type) (*Pointer[Object], error) {
	v, err := t.Create()
	if err != nil {
		return nil, err
	}
	if v == nil {
		return Empty[Object](), nil
	}
	obj, ok := v.(Object)
	if !ok {
		return nil, errs.Newf(errs.KindGeneric, "factory returned a non-object", "type %s produced %T", t.Name(), v)
	}
	return NewPointer(obj), nil
}

// RegisterType adds a concrete Type for T under parent. Its factory
// creates tracked instances through rt.
func RegisterType[T any, PT objectPtr[T]](rt *Runtime, name string, parent *typeinfo.Type) (*typeinfo.Type, error) {
	return rt.types.Register(name, unsafe.Sizeof(*new(T)), parent, func() (any, error) {
		p, err := New[T, PT](rt)
		if err != nil {
			return nil, err
		}
		return p, nil
	})
}

// RegisterAbstract adds a Type for T under parent with no factory.
func RegisterAbstract[T any](rt *Runtime, name string, parent *typeinfo.Type) (*typeinfo.Type, error) {
	return rt.types.Register(name, unsafe.Sizeof(*new(T)), parent, nil)
}
