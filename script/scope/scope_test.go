package scope

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aledsdavies/escript/script/value"
)

func TestSetInsertsLocalWhenAbsent(t *testing.T) {
	g := NewGlobal()
	g.Set("x", value.Int32(3))

	v, ok := g.FindLocal("x")
	require.True(t, ok)
	assert.Equal(t, int32(3), v.Value.Int)
}

func TestSetOverwritesOuterBindingNoShadowing(t *testing.T) {
	g := NewGlobal()
	g.Set("x", value.Int32(1))

	child := g.NewChild()
	child.Set("x", value.Int32(2))

	// The write landed on the global binding; the child has no local copy.
	_, ok := child.FindLocal("x")
	assert.False(t, ok)

	v, ok := g.FindLocal("x")
	require.True(t, ok)
	assert.Equal(t, int32(2), v.Value.Int)
}

func TestFindWalksParentChain(t *testing.T) {
	g := NewGlobal()
	g.Set("y", value.NewString("global"))
	child := g.NewChild()

	v, ok := child.Find("y")
	require.True(t, ok)
	assert.Equal(t, "global", v.Value.Str)
}

func TestDeleteOnlyTouchesLocalScope(t *testing.T) {
	g := NewGlobal()
	g.Set("z", value.Int32(5))
	child := g.NewChild()

	child.Delete("z") // no-op: z lives in g, not child
	_, ok := g.Find("z")
	assert.True(t, ok)

	g.Delete("z")
	_, ok = g.Find("z")
	assert.False(t, ok)
}

func TestSetDuplicatesStringPayload(t *testing.T) {
	g := NewGlobal()
	source := "caller owned buffer"
	g.Set("s", value.BorrowedString(source))

	v, _ := g.Find("s")
	assert.True(t, v.Value.OwnsPayload)
	assert.Equal(t, source, v.Value.Str)
}

func TestNamesIsVisibleAcrossParentChain(t *testing.T) {
	g := NewGlobal()
	g.Set("alpha", value.Int32(1))
	child := g.NewChild()
	child.Set("beta", value.Int32(2))

	names := child.Names()
	assert.Contains(t, names, "alpha")
	assert.Contains(t, names, "beta")
}

func TestGlobalScopeHasNoParent(t *testing.T) {
	g := NewGlobal()
	assert.Nil(t, g.Parent())
	assert.Equal(t, 0, g.Level())
}
