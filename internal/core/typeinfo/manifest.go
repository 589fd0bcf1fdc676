package typeinfo

import (
	"fmt"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
	"golang.org/x/mod/semver"

	"github.com/kolkov/enginecore/internal/core/errs"
)

// Descriptor is the serialized identity of one Type.
type Descriptor struct {
	Name   string  `json:"name"`
	Size   uintptr `json:"size"`
	Parent string  `json:"parent,omitempty"`
}

// Manifest lists Type identities exported by one registry, parents
// before children.
type Manifest struct {
	ABI   string       `json:"abi"`
	Types []Descriptor `json:"types"`
}

// Export describes every Type in the registry, root first, each parent
// ahead of its children.
func (r *Registry) Export() Manifest {
	m := Manifest{ABI: r.abi}
	var visit func(t *Type)
	visit = func(t *Type) {
		d := Descriptor{Name: t.name, Size: t.size}
		if t.parent != nil {
			d.Parent = t.parent.name
		}
		m.Types = append(m.Types, d)
		for _, c := range r.Children(t) {
			visit(c)
		}
	}
	visit(r.root)
	return m
}

// MarshalManifest encodes m as indented JSON.
func MarshalManifest(m Manifest) ([]byte, error) {
	return json.Marshal(m, jsontext.WithIndent("  "))
}

// UnmarshalManifest decodes a manifest produced by MarshalManifest.
func UnmarshalManifest(data []byte) (Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("typeinfo: decode manifest: %w", err)
	}
	return m, nil
}

// Compatible reports whether a manifest stamped with abi can be loaded by
// the registry: both must be valid semantic versions with the same major
// version, and the manifest must not be newer than the registry.
func (r *Registry) Compatible(abi string) bool {
	if !semver.IsValid(abi) || !semver.IsValid(r.abi) {
		return false
	}
	return semver.Major(abi) == semver.Major(r.abi) && semver.Compare(abi, r.abi) <= 0
}

// Import rebuilds the Types described by m and reconciles them with the
// registry.
//
// Each descriptor is reconstructed as a fresh node whose parent is the
// registry's own node of that name. A reconstructed node that shares a
// name with a registered Type must be IsEqualTo it; otherwise Import
// fails without registering anything. Names the registry does not know
// yet are registered as abstract Types.
//
// Import returns the reconstructed nodes in manifest order.
func (r *Registry) Import(m Manifest) ([]*Type, error) {
	if !r.Compatible(m.ABI) {
		return nil, errs.Newf(errs.KindOutOfRange, "incompatible manifest ABI", "manifest %q, registry %q", m.ABI, r.abi)
	}

	// Resolve against local nodes first, then against nodes staged earlier
	// in this manifest.
	staged := make(map[string]*Type, len(m.Types))
	resolve := func(name string) *Type {
		if t, ok := r.Lookup(name); ok {
			return t
		}
		return staged[name]
	}

	rebuilt := make([]*Type, 0, len(m.Types))
	var added []*Type
	for _, d := range m.Types {
		var parent *Type
		if d.Parent != "" {
			parent = resolve(d.Parent)
			if parent == nil {
				return nil, errs.Newf(errs.KindGeneric, "unresolved parent", "%q names parent %q, which is not declared before it", d.Name, d.Parent)
			}
		}
		node := New(d.Name, d.Size, parent, nil)

		if local, ok := r.Lookup(d.Name); ok {
			if !node.IsEqualTo(local) {
				return nil, errs.Newf(errs.KindGeneric, "type identity mismatch", "manifest %s does not match local %s", describe(node), describe(local))
			}
		} else {
			if parent == nil {
				return nil, errs.Newf(errs.KindGeneric, "second root", "%q has no parent", d.Name)
			}
			if _, dup := staged[d.Name]; dup {
				return nil, errs.Newf(errs.KindGeneric, "duplicate type", "%q declared twice in manifest", d.Name)
			}
			staged[d.Name] = node
			added = append(added, node)
		}
		rebuilt = append(rebuilt, node)
	}

	// Every check passed: adopt the new nodes. They were built with
	// parents that are either registry members or earlier adopted nodes.
	for _, t := range added {
		r.byName.ReplaceOrInsert(t)
	}
	return rebuilt, nil
}

func describe(t *Type) string {
	parent := "-"
	if t.parent != nil {
		parent = t.parent.name
	}
	return fmt.Sprintf("%s(size=%d, parent=%s)", t.name, t.size, parent)
}
