package core

import (
	"github.com/kolkov/enginecore/internal/core/errs"
	"github.com/kolkov/enginecore/internal/core/object"
	"github.com/kolkov/enginecore/internal/core/typeinfo"
)

type (
	// Object is implemented by every type embedding Base.
	Object = object.Object
	// Base carries the reference count. Embed it to make an Object.
	Base = object.Base
	// Destroyer is implemented by objects that need teardown.
	Destroyer = object.Destroyer
	// Initializer is implemented by objects with a fallible constructor.
	Initializer = object.Initializer

	Runtime = object.Runtime
	Options = object.Options
	Stats   = object.Stats
	Leak    = object.Leak

	Type     = typeinfo.Type
	Registry = typeinfo.Registry
	Manifest = typeinfo.Manifest

	// Error is the error type returned by the runtime.
	Error = errs.Error
)

// Pointer is a shared-ownership handle to an Object.
type Pointer[T Object] = object.Pointer[T]

// Error kinds, for use with errors.Is.
var (
	ErrGeneric            = errs.ErrGeneric
	ErrOutOfMemory        = errs.ErrOutOfMemory
	ErrInvalidDereference = errs.ErrInvalidDereference
	ErrOutOfRange         = errs.ErrOutOfRange
)

// NewRuntime creates a runtime. Close it when done to report leaks.
func NewRuntime(opts Options) *Runtime {
	return object.NewRuntime(opts)
}

// NewRegistry creates a type registry holding only the root Type, for
// sharing between runtimes through Options.Types.
func NewRegistry() *Registry {
	return typeinfo.NewRegistry(object.BaseSize, object.ABIVersion)
}

// New allocates a tracked T. Hand the result to NewPointer.
func New[T any, PT interface {
	*T
	Object
}](rt *Runtime) (PT, error) {
	return object.New[T, PT](rt)
}

// Construct builds obj in place; the count starts pinned at 1.
func Construct[T any, PT interface {
	*T
	Object
}](rt *Runtime, obj PT) error {
	return object.Construct[T, PT](rt, obj)
}

// NewArray allocates n pinned elements of T.
func NewArray[T any, PT interface {
	*T
	Object
}](rt *Runtime, n int) ([]T, error) {
	return object.NewArray[T, PT](rt, n)
}

// ReleaseArray drops the array pin on each element of an array from
// NewArray. Elements still held by a Pointer outlive the call.
func ReleaseArray[T any, PT interface {
	*T
	Object
}](rt *Runtime, arr []T) {
	object.ReleaseArray[T, PT](rt, arr)
}

// Create instantiates t through its factory. Abstract types yield an
// empty handle.
func Create(t *Type) (*Pointer[Object], error) {
	return object.Create(t)
}

// NewPointer takes a reference to obj.
func NewPointer[T Object](obj T) *Pointer[T] {
	return object.NewPointer(obj)
}

// Empty returns a handle holding nothing.
func Empty[T Object]() *Pointer[T] {
	return object.Empty[T]()
}

// Upcast returns a handle of type U sharing p's pointee.
func Upcast[U, T Object](p *Pointer[T]) (*Pointer[U], error) {
	return object.Upcast[U](p)
}

// UpcastChecked is Upcast that also requires the pointee's Type to be
// target or derive from it.
func UpcastChecked[U, T Object](p *Pointer[T], target *Type) (*Pointer[U], error) {
	return object.UpcastChecked[U](p, target)
}

// RegisterType adds a concrete Type for T whose factory creates tracked
// instances through rt.
func RegisterType[T any, PT interface {
	*T
	Object
}](rt *Runtime, name string, parent *Type) (*Type, error) {
	return object.RegisterType[T, PT](rt, name, parent)
}

// RegisterAbstract adds a Type for T with no factory.
func RegisterAbstract[T any](rt *Runtime, name string, parent *Type) (*Type, error) {
	return object.RegisterAbstract[T](rt, name, parent)
}
