package object

import (
	"reflect"

	"github.com/kolkov/enginecore/internal/core/errs"
	"github.com/kolkov/enginecore/internal/core/typeinfo"
)

// Pointer is a shared-ownership handle to an Object. While a Pointer holds
// an object it owns exactly one of the object's references.
//
// The zero value is an empty handle. A Pointer must not be copied by value
// after first use; Clone it instead.
type Pointer[T Object] struct {
	obj   T
	valid bool
}

// NewPointer takes a reference to obj. A nil obj yields an empty handle.
func NewPointer[T Object](obj T) *Pointer[T] {
	p := &Pointer[T]{}
	p.Set(obj)
	return p
}

// Empty returns a handle that holds nothing.
func Empty[T Object]() *Pointer[T] {
	return &Pointer[T]{}
}

// Clone returns a second handle sharing the same pointee. Cloning a nil or
// empty handle yields an empty handle.
func (p *Pointer[T]) Clone() *Pointer[T] {
	if !p.Valid() {
		return Empty[T]()
	}
	return NewPointer(p.obj)
}

// Set replaces the pointee with obj. The new reference is taken before
// the old one is dropped, so setting the current pointee is harmless.
func (p *Pointer[T]) Set(obj T) {
	var fresh bool
	if !isNil(obj) {
		obj.AddReference()
		fresh = true
	}
	old, had := p.obj, p.valid
	p.obj, p.valid = obj, fresh
	if !fresh {
		var zero T
		p.obj = zero
	}
	if had {
		old.DropReference()
	}
}

// Assign makes p share other's pointee. Assigning a handle to itself, or
// to another handle with the same pointee, leaves the count unchanged.
func (p *Pointer[T]) Assign(other *Pointer[T]) {
	if other == nil || !other.valid {
		p.Release()
		return
	}
	p.Set(other.obj)
}

// Release drops the handle's reference and empties it. Releasing a nil or
// empty handle does nothing.
func (p *Pointer[T]) Release() {
	if !p.Valid() {
		return
	}
	old := p.obj
	var zero T
	p.obj, p.valid = zero, false
	old.DropReference()
}

// Get returns the pointee, or a KindInvalidDereference error for a nil or
// empty handle.
func (p *Pointer[T]) Get() (T, error) {
	if !p.Valid() {
		var zero T
		return zero, errs.InvalidDereference("Pointer[" + reflect.TypeFor[T]().String() + "]")
	}
	return p.obj, nil
}

// MustGet is like Get but panics on an empty handle.
func (p *Pointer[T]) MustGet() T {
	obj, err := p.Get()
	if err != nil {
		panic(err)
	}
	return obj
}

// Valid reports whether the handle holds an object.
func (p *Pointer[T]) Valid() bool {
	return p != nil && p.valid
}

// Equal reports whether both handles hold the same object, or are both
// empty.
func (p *Pointer[T]) Equal(other *Pointer[T]) bool {
	if !p.Valid() || !other.Valid() {
		return p.Valid() == other.Valid()
	}
	return p.obj.objectBase() == other.obj.objectBase()
}

// Same reports whether the handle holds obj.
func (p *Pointer[T]) Same(obj Object) bool {
	if !p.Valid() || isNil(obj) {
		return false
	}
	return p.obj.objectBase() == obj.objectBase()
}

// Upcast returns a new handle of type U sharing p's pointee. It fails with
// KindGeneric when the pointee does not implement U. An empty p yields an
// empty handle.
func Upcast[U, T Object](p *Pointer[T]) (*Pointer[U], error) {
	if !p.Valid() {
		return Empty[U](), nil
	}
	u, ok := any(p.obj).(U)
	if !ok {
		return nil, errs.Newf(errs.KindGeneric, "incompatible handle conversion",
			"%T is not %s", p.obj, reflect.TypeFor[U]())
	}
	return NewPointer(u), nil
}

// UpcastChecked is Upcast with an additional check against the type graph:
// the pointee's runtime type must be target or derive from it.
func UpcastChecked[U, T Object](p *Pointer[T], target *typeinfo.Type) (*Pointer[U], error) {
	if p.Valid() {
		if got := p.obj.objectBase().typeOf(); !got.IsA(target) {
			return nil, errs.Newf(errs.KindGeneric, "incompatible handle conversion",
				"%s is not a %s", got, target)
		}
	}
	return Upcast[U](p)
}

// isNil reports whether obj is nil, including a typed nil pointer stored
// in an interface.
func isNil(obj any) bool {
	if obj == nil {
		return true
	}
	v := reflect.ValueOf(obj)
	return v.Kind() == reflect.Pointer && v.IsNil()
}
