// Package typeinfo implements runtime type descriptors for engine objects.
//
// A Type is one node of a single-inheritance class tree. Types are built
// explicitly (usually through a Registry during startup) and answer
// ancestry questions without relying on the native type system:
//
//	root := reg.Root()                                  // "Object"
//	actor, _ := reg.Register("Actor", 48, root, nil)     // abstract
//	pawn, _ := reg.Register("Pawn", 64, actor, newPawn) // concrete
//
//	root.IsBaseOf(pawn)      // true
//	pawn.IsDerivedFrom(root) // true
//	actor.IsParentClassOf(pawn) // true
//
// Equality is by value (name, size, parent identity) so that descriptors
// rebuilt from a manifest compare equal to the local ones.
//
// Types are immutable once built and safe to read from any goroutine.
// A Registry is not safe for concurrent Register calls.
package typeinfo

import "strings"

// CreateFunc produces a default-constructed instance of a type.
// The object runtime wraps the result in a shared handle.
type CreateFunc func() (any, error)

// Type describes one class in the runtime hierarchy.
type Type struct {
	name   string
	size   uintptr
	parent *Type
	create CreateFunc
}

// New builds a Type. parent is nil for a root; create is nil for an
// abstract (non-instantiable) type.
func New(name string, size uintptr, parent *Type, create CreateFunc) *Type {
	return &Type{
		name:   strings.Clone(name),
		size:   size,
		parent: parent,
		create: create,
	}
}

// Name returns the descriptive class name.
func (t *Type) Name() string { return t.name }

// Size returns the byte footprint of the class.
func (t *Type) Size() uintptr { return t.size }

// Parent returns the parent Type, or nil for the root.
func (t *Type) Parent() *Type { return t.parent }

// IsAbstract reports whether the type has no factory.
func (t *Type) IsAbstract() bool { return t.create == nil }

// IsRoot reports whether the type has no parent.
func (t *Type) IsRoot() bool {
	return t.parent == nil
}

// IsParentClassOf reports whether t is the direct parent of other.
func (t *Type) IsParentClassOf(other *Type) bool {
	if other == nil || other.parent == nil {
		return false
	}
	return other.parent.IsEqualTo(t)
}

// IsChildClassOf reports whether other is the direct parent of t.
func (t *Type) IsChildClassOf(other *Type) bool {
	return other != nil && other.IsParentClassOf(t)
}

// IsBaseOf reports whether t is a strict ancestor of other.
//
// The walk starts at other and checks each parent link one level at a
// time. other itself is never compared against t, so no Type is its own
// base.
func (t *Type) IsBaseOf(other *Type) bool {
	for n := other; n != nil && !n.IsRoot(); n = n.parent {
		if t.IsParentClassOf(n) {
			return true
		}
	}
	return false
}

// IsDerivedFrom reports whether other is a strict ancestor of t.
func (t *Type) IsDerivedFrom(other *Type) bool {
	return other != nil && other.IsBaseOf(t)
}

// IsA reports whether t is other or derives from it.
func (t *Type) IsA(other *Type) bool {
	return t.IsEqualTo(other) || t.IsDerivedFrom(other)
}

// IsEqualTo reports value equality: same size, same parent identity and
// same name. Two distinct nodes describing the same class are equal.
func (t *Type) IsEqualTo(other *Type) bool {
	if t == other {
		return true
	}
	if t == nil || other == nil {
		return false
	}
	return t.size == other.size && t.parent == other.parent && t.name == other.name
}

// Create invokes the factory. It returns (nil, nil) for abstract types.
func (t *Type) Create() (any, error) {
	if t.create == nil {
		return nil, nil
	}
	return t.create()
}

// Depth returns the number of parent links between t and its root.
func (t *Type) Depth() int {
	d := 0
	for n := t.parent; n != nil; n = n.parent {
		d++
	}
	return d
}

// Ancestors returns the parent chain, nearest first, ending at the root.
func (t *Type) Ancestors() []*Type {
	var out []*Type
	for n := t.parent; n != nil; n = n.parent {
		out = append(out, n)
	}
	return out
}

// String returns the class path from the root, e.g. "Object/Actor/Pawn".
func (t *Type) String() string {
	if t == nil {
		return "<nil>"
	}
	chain := t.Ancestors()
	parts := make([]string, 0, len(chain)+1)
	for i := len(chain) - 1; i >= 0; i-- {
		parts = append(parts, chain[i].name)
	}
	return strings.Join(append(parts, t.name), "/")
}
