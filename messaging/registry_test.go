package messaging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type customOwner struct{}

func TestRegistry_TagDensity(t *testing.T) {
	catalog := NewCatalog()
	catalog.Register(Descriptor{Name: "zzz.Last", OwnerBinding: Unbound(), Receive: pingReceive})
	catalog.Register(Descriptor{Name: "aaa.First", OwnerBinding: Unbound(), Receive: pingReceive})
	catalog.Register(Descriptor{Name: "mmm.Middle", OwnerBinding: Unbound(), Receive: pingReceive})

	registry, err := NewRegistry(DefaultOwner{}, catalog)
	require.NoError(t, err)
	require.Equal(t, 3, registry.Len())

	seen := make(map[MessageTag]bool)
	for tag := MessageTag(0); int(tag) < registry.Len(); tag++ {
		_, ok := registry.NameFor(tag)
		require.True(t, ok)
		seen[tag] = true
	}
	assert.Len(t, seen, 3)

	// sorted by name: aaa.First=0, mmm.Middle=1, zzz.Last=2
	tag, ok := registry.TagFor("aaa.First")
	require.True(t, ok)
	assert.Equal(t, MessageTag(0), tag)

	tag, ok = registry.TagFor("zzz.Last")
	require.True(t, ok)
	assert.Equal(t, MessageTag(2), tag)
}

func TestRegistry_TagStability(t *testing.T) {
	build := func() *Registry {
		catalog := NewCatalog()
		catalog.Register(pingDescriptor())
		catalog.Register(sizedDescriptor())
		registry, err := NewRegistry(DefaultOwner{}, catalog)
		require.NoError(t, err)
		return registry
	}

	r1 := build()
	r2 := build()

	for name := range r1.byName {
		tag1, _ := r1.TagFor(name)
		tag2, _ := r2.TagFor(name)
		assert.Equal(t, tag1, tag2, "tag for %s should be stable across independent builds", name)
	}
}

func TestRegistry_InvalidMessageStructure(t *testing.T) {
	catalog := NewCatalog()
	catalog.Register(Descriptor{Name: "broken.Message", OwnerBinding: Unbound(), Receive: nil})

	_, err := NewRegistry(DefaultOwner{}, catalog)
	assert.ErrorIs(t, err, ErrInvalidMessageStructure)
}

func TestRegistry_OwnerBinding(t *testing.T) {
	catalog := NewCatalog()
	catalog.Register(Descriptor{Name: "default.Only", OwnerBinding: Unbound(), Receive: pingReceive})
	catalog.Register(Descriptor{Name: "custom.Only", OwnerBinding: BoundTo(customOwner{}), Receive: pingReceive})

	defaultRegistry, err := NewRegistry(DefaultOwner{}, catalog)
	require.NoError(t, err)
	assert.Equal(t, 1, defaultRegistry.Len())
	_, ok := defaultRegistry.TagFor("default.Only")
	assert.True(t, ok)

	customRegistry, err := NewRegistry(customOwner{}, catalog)
	require.NoError(t, err)
	assert.Equal(t, 1, customRegistry.Len())
	_, ok = customRegistry.TagFor("custom.Only")
	assert.True(t, ok)
}

func TestRegistry_NilOwnerTreatedAsDefault(t *testing.T) {
	catalog := NewCatalog()
	catalog.Register(Descriptor{Name: "default.Only", OwnerBinding: Unbound(), Receive: pingReceive})

	registry, err := NewRegistry(nil, catalog)
	require.NoError(t, err)
	assert.Equal(t, 1, registry.Len())
}

func TestRegistry_MaxMessageTypes(t *testing.T) {
	// Tag is a uint8, so 256 distinct types is the ceiling; this is a
	// data-model assertion, not a registry enforcement (the registry
	// would wrap tags past 255 back to 0, colliding with earlier types,
	// if asked to admit more, which callers must avoid by keeping their
	// catalog bounded).
	var maxTag MessageTag = 255
	assert.Equal(t, uint8(255), uint8(maxTag))
}
