package hostregistry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aledsdavies/escript/script/value"
)

func TestRegisterRejectsNilDescriptor(t *testing.T) {
	r := New()
	err := r.Register("x", Property, nil, nil, nil)
	require.Error(t, err)
}

func TestRegisterReplacesExistingAndReleasesOld(t *testing.T) {
	r := New()
	released := false
	oldDesc := &value.Descriptor{
		ReleaseHandle: func(any, any) { released = true },
	}
	require.NoError(t, r.Register("hostValue", Property, "old-handle", oldDesc, nil))

	newDesc := &value.Descriptor{}
	require.NoError(t, r.Register("hostValue", Property, "new-handle", newDesc, nil))

	assert.True(t, released)
	sym, ok := r.Lookup("hostValue")
	require.True(t, ok)
	assert.Equal(t, "new-handle", sym.Handle)
}

func TestUnregisterReleasesAndRemoves(t *testing.T) {
	r := New()
	released := false
	desc := &value.Descriptor{ReleaseHandle: func(any, any) { released = true }}
	require.NoError(t, r.Register("s", ArrayKind, "h", desc, nil))

	r.Unregister("s")
	assert.True(t, released)
	_, ok := r.Lookup("s")
	assert.False(t, ok)
}

func TestGetPropertyPreparesResult(t *testing.T) {
	desc := &value.Descriptor{
		GetProperty: func(ctx any, name string) (value.Value, error) {
			return value.BorrowedString("native"), nil
		},
	}
	r := New()
	require.NoError(t, r.Register("hostValue", Property, nil, desc, nil))
	sym, _ := r.Lookup("hostValue")

	v, err := GetProperty(sym)
	require.NoError(t, err)
	assert.True(t, v.OwnsPayload)
	assert.Equal(t, "native", v.Str)
}

func TestGetElementRequiresDescriptorEntry(t *testing.T) {
	desc := &value.Descriptor{}
	r := New()
	require.NoError(t, r.Register("hosts", ArrayKind, nil, desc, nil))
	sym, _ := r.Lookup("hosts")

	_, err := GetElement(sym, 0)
	require.Error(t, err)
}

func TestClearReleasesEverySymbol(t *testing.T) {
	r := New()
	count := 0
	desc := &value.Descriptor{ReleaseHandle: func(any, any) { count++ }}
	require.NoError(t, r.Register("a", Property, "h", desc, nil))
	require.NoError(t, r.Register("b", Property, "h", desc, nil))

	r.Clear()
	assert.Equal(t, 2, count)
	_, ok := r.Lookup("a")
	assert.False(t, ok)
}
