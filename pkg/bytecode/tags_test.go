package bytecode

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTagFromUint64(t *testing.T) {
	tag, ok := TagFromUint64(uint64(TagWhile))
	require.True(t, ok)
	require.Equal(t, TagWhile, tag)

	_, ok = TagFromUint64(uint64(tagCount) + 100)
	require.False(t, ok)
}

func TestTagString(t *testing.T) {
	require.Equal(t, "While", TagWhile.String())
	require.Equal(t, "Tag(9999)", Tag(9999).String())
}

func TestEntrypointFromUint64(t *testing.T) {
	e, ok := EntrypointFromUint64(1)
	require.True(t, ok)
	require.Equal(t, EntrypointUpdate, e)

	_, ok = EntrypointFromUint64(5)
	require.False(t, ok)
}

func TestBuiltinFromUint64(t *testing.T) {
	b, ok := BuiltinFromUint64(uint64(BuiltinIsKeyPressed))
	require.True(t, ok)
	require.Equal(t, BuiltinIsKeyPressed, b)

	_, ok = BuiltinFromUint64(uint64(builtinCount))
	require.False(t, ok)
}

func TestTypeFromUint64(t *testing.T) {
	ty, ok := TypeFromUint64(uint64(TypeString))
	require.True(t, ok)
	require.Equal(t, TypeString, ty)

	_, ok = TypeFromUint64(uint64(typeCount))
	require.False(t, ok)
}
