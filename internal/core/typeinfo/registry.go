package typeinfo

import (
	"github.com/google/btree"

	"github.com/kolkov/enginecore/internal/core/errs"
)

const (
	// RootName is the name of the root Type every Registry starts with.
	RootName = "Object"

	// btreeDegree matches the degree used for the other in-memory indexes.
	btreeDegree = 32
)

// Registry owns the Type nodes of one runtime, indexed by name.
//
// A Registry replaces per-class static descriptors: it is constructed
// once at startup, populated in dependency order (parents before
// children), and then treated as read-only. Because a parent must already
// be a member when a child is registered, the graph is always a tree
// rooted at Root().
type Registry struct {
	root   *Type
	byName *btree.BTreeG[*Type]
	abi    string
}

// NewRegistry returns a registry holding only the root Type.
//
// rootSize is the byte footprint of the object base; abi is the semantic
// version stamped on exported manifests (e.g. "v1.2.0").
func NewRegistry(rootSize uintptr, abi string) *Registry {
	r := &Registry{
		byName: btree.NewG(btreeDegree, func(a, b *Type) bool { return a.name < b.name }),
		abi:    abi,
	}
	r.root = New(RootName, rootSize, nil, nil)
	r.byName.ReplaceOrInsert(r.root)
	return r
}

// Root returns the root Type.
func (r *Registry) Root() *Type {
	return r.root
}

// ABI returns the registry's manifest version.
func (r *Registry) ABI() string {
	return r.abi
}

// Len returns the number of registered Types, root included.
func (r *Registry) Len() int {
	return r.byName.Len()
}

// Register adds a Type under parent.
//
// Errors (KindGeneric):
//   - empty name
//   - a Type with the same name already exists
//   - parent is nil or not a member of this registry
func (r *Registry) Register(name string, size uintptr, parent *Type, create CreateFunc) (*Type, error) {
	if name == "" {
		return nil, errs.New(errs.KindGeneric, "type name must not be empty")
	}
	if _, exists := r.byName.Get(&Type{name: name}); exists {
		return nil, errs.Newf(errs.KindGeneric, "duplicate type", "%q is already registered", name)
	}
	if parent == nil {
		return nil, errs.Newf(errs.KindGeneric, "missing parent", "type %q needs a parent; only %q is a root", name, RootName)
	}
	if !r.owns(parent) {
		return nil, errs.Newf(errs.KindGeneric, "foreign parent", "parent %q of %q is not in this registry", parent.name, name)
	}

	t := New(name, size, parent, create)
	r.byName.ReplaceOrInsert(t)
	return t, nil
}

// Lookup returns the Type registered under name.
func (r *Registry) Lookup(name string) (*Type, bool) {
	return r.byName.Get(&Type{name: name})
}

// MustLookup is like Lookup but panics when name is unknown. Intended for
// Types registered during startup and queried from GetType overrides.
func (r *Registry) MustLookup(name string) *Type {
	t, ok := r.Lookup(name)
	if !ok {
		panic(errs.Newf(errs.KindGeneric, "unknown type", "%q is not registered", name))
	}
	return t
}

// Walk calls fn for every Type in ascending name order until fn returns false.
func (r *Registry) Walk(fn func(t *Type) bool) {
	r.byName.Ascend(fn)
}

// Children returns the direct children of t in name order.
func (r *Registry) Children(t *Type) []*Type {
	var out []*Type
	r.byName.Ascend(func(c *Type) bool {
		if c.parent == t {
			out = append(out, c)
		}
		return true
	})
	return out
}

// owns reports whether t is the exact node stored under its name.
func (r *Registry) owns(t *Type) bool {
	got, ok := r.byName.Get(t)
	return ok && got == t
}
