package rights

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewFSMStartsInSpecialInitWithMainMenu(t *testing.T) {
	f := New()
	require.Equal(t, SpecialInit, f.Mode())
	require.True(t, f.HasRight(MainMenu))
	require.True(t, f.IsRunning())
}

func TestQuitAppRequiresAppRight(t *testing.T) {
	f := New()
	f.SetRight(RightMainMenu)
	f.QuitApp()
	require.NotEqual(t, Quit, f.Mode())

	f.SetRight(App)
	f.QuitApp()
	require.Equal(t, Quit, f.Mode())
}

func TestSpecialQuitStopsRunning(t *testing.T) {
	f := New()
	f.SetMode(SpecialQuit)
	require.False(t, f.IsRunning())
}

func TestHasRightRequiresAllBits(t *testing.T) {
	f := New()
	f.SetRight(RightApp)
	require.False(t, f.HasRight(App))
	f.AddRight(RightMod)
	require.True(t, f.HasRight(App))
}
