package typeinfo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kolkov/enginecore/internal/core/errs"
)

func TestManifest_ExportOrder(t *testing.T) {
	r := newTestRegistry(t)
	m := r.Export()

	assert.Equal(t, "v1.2.0", m.ABI)
	require.Len(t, m.Types, 4)
	assert.Equal(t, Descriptor{Name: "Object", Size: 16}, m.Types[0])

	pos := make(map[string]int)
	for i, d := range m.Types {
		pos[d.Name] = i
	}
	for _, d := range m.Types {
		if d.Parent != "" {
			assert.Less(t, pos[d.Parent], pos[d.Name], "%s exported before its parent", d.Name)
		}
	}
}

func TestManifest_JSONRoundTripRebuildsEqualTypes(t *testing.T) {
	src := newTestRegistry(t)
	data, err := MarshalManifest(src.Export())
	require.NoError(t, err)
	assert.Contains(t, string(data), `"abi"`)
	assert.Contains(t, string(data), `"v1.2.0"`)

	m, err := UnmarshalManifest(data)
	require.NoError(t, err)

	rebuilt, err := src.Import(m)
	require.NoError(t, err)
	require.Len(t, rebuilt, 4)
	for _, node := range rebuilt {
		local := src.MustLookup(node.Name())
		assert.NotSame(t, local, node)
		assert.True(t, node.IsEqualTo(local), "%s", node.Name())
	}
	assert.Equal(t, 4, src.Len(), "known types must not be re-registered")
}

func TestManifest_ImportRegistersUnknownTypesAsAbstract(t *testing.T) {
	src := newTestRegistry(t)
	_, err := src.Register("Controller", 40, src.MustLookup("Actor"), nil)
	require.NoError(t, err)

	dst := NewRegistry(16, "v1.3.0")
	_, err = dst.Import(src.Export())
	require.NoError(t, err)

	assert.Equal(t, 5, dst.Len())
	pawn := dst.MustLookup("Pawn")
	assert.True(t, pawn.IsAbstract(), "imported types carry no factory")
	assert.True(t, pawn.IsDerivedFrom(dst.MustLookup("Actor")))
	assert.True(t, dst.Root().IsBaseOf(dst.MustLookup("Controller")))
}

func TestManifest_IdentityMismatchRegistersNothing(t *testing.T) {
	dst := newTestRegistry(t)
	m := Manifest{ABI: "v1.0.0", Types: []Descriptor{
		{Name: "Object", Size: 16},
		{Name: "Sound", Size: 8, Parent: "Object"},
		{Name: "Pawn", Size: 99, Parent: "Actor"},
	}}

	_, err := dst.Import(m)
	assert.ErrorContains(t, err, "identity mismatch")
	_, ok := dst.Lookup("Sound")
	assert.False(t, ok, "import must be all-or-nothing")
}

func TestManifest_Compatibility(t *testing.T) {
	r := NewRegistry(16, "v1.2.0")

	assert.True(t, r.Compatible("v1.0.0"))
	assert.True(t, r.Compatible("v1.2.0"))
	assert.False(t, r.Compatible("v1.3.0"), "newer minor")
	assert.False(t, r.Compatible("v2.0.0"), "different major")
	assert.False(t, r.Compatible("1.2.0"), "not semver without v prefix")

	_, err := r.Import(Manifest{ABI: "v2.0.0"})
	assert.ErrorIs(t, err, errs.ErrOutOfRange)
}

func TestManifest_UnresolvedParent(t *testing.T) {
	r := NewRegistry(16, "v1.0.0")
	_, err := r.Import(Manifest{ABI: "v1.0.0", Types: []Descriptor{
		{Name: "Child", Size: 8, Parent: "Missing"},
	}})
	assert.ErrorContains(t, err, "unresolved parent")

	_, err = r.Import(Manifest{ABI: "v1.0.0", Types: []Descriptor{{Name: "Island", Size: 8}}})
	assert.ErrorContains(t, err, "second root")
}

func TestManifest_UnmarshalError(t *testing.T) {
	_, err := UnmarshalManifest([]byte("{not json"))
	assert.ErrorContains(t, err, "decode manifest")
}
