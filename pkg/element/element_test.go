package element

import (
	"testing"

	"github.com/apica-run/apica-core/pkg/value"
	"github.com/stretchr/testify/require"
)

func TestModifierComposition(t *testing.T) {
	e := New(ModConst|ModGlobal, value.U8Of(1))
	require.True(t, e.Has(ModConst))
	require.True(t, e.Has(ModGlobal))
	require.False(t, e.Has(ModError))
	require.False(t, e.IsErrorOrController())
}

func TestCreateControllerCodes(t *testing.T) {
	for _, code := range []uint8{ControlReturn, ControlBreak, ControlContinue} {
		e := CreateController(code)
		require.True(t, e.Has(ModController))
		require.True(t, e.IsErrorOrController())
		require.Equal(t, code, e.ControllerCode())
	}
}

func TestCreateErrorIsErrorOrController(t *testing.T) {
	e := CreateError(value.ErrorOfKind(value.ErrType))
	require.True(t, e.Has(ModError))
	require.True(t, e.IsErrorOrController())
}

func TestWithConstPreservesExistingBits(t *testing.T) {
	e := New(ModGlobal, value.U8Of(1)).WithConst()
	require.True(t, e.Has(ModConst))
	require.True(t, e.Has(ModGlobal))
}

func TestAutoConvertStripsAttributeModifiers(t *testing.T) {
	e := New(ModConst|ModGlobal, value.U8Of(5))
	out := e.AutoConvert(value.KindU32)
	require.False(t, out.Has(ModConst))
	require.False(t, out.Has(ModGlobal))
	n, ok := out.Value.U32()
	require.True(t, ok)
	require.Equal(t, uint32(5), n)
}

func TestAutoConvertSetsErrorOnFailure(t *testing.T) {
	e := New(ModNone, value.StringOf("not a number"))
	out := e.AutoConvert(value.KindU8)
	require.True(t, out.Has(ModError))
	require.True(t, out.IsErrorOrController())
}

func TestCheckConvertMatchesAutoConvert(t *testing.T) {
	e := New(ModConst, value.StringOf("nope"))
	require.Equal(t, e.AutoConvert(value.KindU32).Has(ModError), e.CheckConvert(value.KindU32).Has(ModError))

	e2 := New(ModConst, value.U8Of(9))
	out := e2.CheckConvert(value.KindU32)
	require.False(t, out.Has(ModConst))
	n, ok := out.Value.U32()
	require.True(t, ok)
	require.Equal(t, uint32(9), n)
}
