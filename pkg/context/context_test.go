package context

import (
	"testing"

	"github.com/apica-run/apica-core/pkg/element"
	"github.com/apica-run/apica-core/pkg/value"
	"github.com/stretchr/testify/require"
)

func TestPopScopeNoOpAtRoot(t *testing.T) {
	c := New()
	require.Equal(t, 1, c.Depth())
	c.PopScope()
	require.Equal(t, 1, c.Depth())
}

func TestScopingHidesInnerBindingAfterPop(t *testing.T) {
	c := New()
	c.PushScope()
	require.True(t, c.SetElement("x", element.New(element.ModNone, value.U8Of(1)), false))
	_, ok := c.GetElement("x", false)
	require.True(t, ok)

	c.PopScope()
	_, ok = c.GetElement("x", false)
	require.False(t, ok)
}

func TestSetElementFailsOnCollisionInSameScope(t *testing.T) {
	c := New()
	require.True(t, c.SetElement("x", element.New(element.ModNone, value.U8Of(1)), false))
	require.False(t, c.SetElement("x", element.New(element.ModNone, value.U8Of(2)), false))
}

func TestGlobalPersistsAcrossScopes(t *testing.T) {
	c := New()
	require.True(t, c.SetElement("g", element.New(element.ModGlobal, value.StringOf("hi")), true))

	c.PushScope()
	e, ok := c.GetElement("g", true)
	require.True(t, ok)
	s, _ := e.Value.Str()
	require.Equal(t, "hi", s)
	c.PopScope()

	e, ok = c.GetElement("g", true)
	require.True(t, ok)
}

func TestNonGlobalLookupWalksInnermostFirst(t *testing.T) {
	c := New()
	require.True(t, c.SetElement("x", element.New(element.ModNone, value.U8Of(1)), false))
	c.PushScope()
	require.True(t, c.SetElement("x", element.New(element.ModNone, value.U8Of(2)), false))

	e, ok := c.GetElement("x", false)
	require.True(t, ok)
	n, _ := e.Value.U8()
	require.Equal(t, uint8(2), n)

	c.PopScope()
	e, ok = c.GetElement("x", false)
	require.True(t, ok)
	n, _ = e.Value.U8()
	require.Equal(t, uint8(1), n)
}

func TestMutateElementWritesBackToOwningScope(t *testing.T) {
	c := New()
	require.True(t, c.SetElement("x", element.New(element.ModNone, value.U8Of(1)), false))

	updated, ok := c.MutateElement("x", false, func(e element.Element) element.Element {
		n, _ := e.Value.U8()
		return element.New(e.Modifier, value.U8Of(n+1))
	})
	require.True(t, ok)
	n, _ := updated.Value.U8()
	require.Equal(t, uint8(2), n)

	e, _ := c.GetElement("x", false)
	n, _ = e.Value.U8()
	require.Equal(t, uint8(2), n)
}

func TestMutateElementMissingNameFails(t *testing.T) {
	c := New()
	_, ok := c.MutateElement("nope", false, func(e element.Element) element.Element { return e })
	require.False(t, ok)
}

func TestResetDropsInnerScopesAndClearsGlobal(t *testing.T) {
	c := New()
	require.True(t, c.SetElement("g", element.New(element.ModGlobal, value.U8Of(1)), true))
	c.PushScope()
	c.PushScope()
	require.Equal(t, 3, c.Depth())

	c.Reset()
	require.Equal(t, 1, c.Depth())
	_, ok := c.GetElement("g", true)
	require.False(t, ok)
}
