package runtime

import (
	"testing"

	"github.com/apica-run/apica-core/pkg/bytecode"
	"github.com/apica-run/apica-core/pkg/host"
	"github.com/apica-run/apica-core/pkg/rights"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeApps serves in-memory .apb byte streams built by encodeApp, so
// tests never touch a real AppsDir on disk.
type fakeApps struct {
	data map[string][]byte
}

func (f *fakeApps) ReadApp(name string) ([]byte, error) {
	return f.data[name], nil
}

type fakeLogger struct {
	opened []string
	errs   []string
}

func (l *fakeLogger) CreateFileFor(appName string) error { l.opened = append(l.opened, appName); return nil }
func (l *fakeLogger) SystemLognSuccess(string)            {}
func (l *fakeLogger) SystemLognError(msg string)          { l.errs = append(l.errs, msg) }
func (l *fakeLogger) LogInfo([]string)                    {}
func (l *fakeLogger) LognInfo([]string)                   {}
func (l *fakeLogger) LogSuccess([]string)                 {}
func (l *fakeLogger) LognSuccess([]string)                {}
func (l *fakeLogger) LogWarning([]string)                 {}
func (l *fakeLogger) LognWarning([]string)                {}
func (l *fakeLogger) LogError([]string)                   {}
func (l *fakeLogger) LognError([]string)                  {}

type fakeWindow struct {
	title string
}

func (w *fakeWindow) SetTitle(t string)        { w.title = t }
func (w *fakeWindow) SetResizable(bool)        {}

type fakeInputs struct{}

func (fakeInputs) HandleKeyEvent(uint32, bool)   {}
func (fakeInputs) IsKeyReleased(uint32) bool     { return false }
func (fakeInputs) IsKeyJustPressed(uint32) bool  { return false }
func (fakeInputs) IsKeyPressed(uint32) bool      { return false }

var _ host.Logger = (*fakeLogger)(nil)
var _ host.Window = (*fakeWindow)(nil)
var _ host.Inputs = fakeInputs{}

// encodeApp builds a minimal .apb-shaped byte stream declaring a
// GlobalScope VarDecl for "title" inside Init, and nothing else, using
// the real bytecode tags so reader.Decode exercises the same decoder
// the rest of the suite already covers.
func encodeApp(t *testing.T, titleValue string) []byte {
	t.Helper()
	var buf []byte
	putU64 := func(v uint64) {
		b := make([]byte, 8)
		for i := 0; i < 8; i++ {
			b[i] = byte(v >> (8 * i))
		}
		buf = append(buf, b...)
	}
	putString := func(s string) {
		buf = append(buf, []byte(s)...)
		buf = append(buf, 0)
	}

	// Entrypoint Init
	putU64(uint64(bytecode.TagEntrypoint))
	putU64(uint64(bytecode.EntrypointInit))

	// GlobalScope { VarDecl "title": String = Literal(titleValue) }
	putU64(uint64(bytecode.TagGlobalScope))
	putU64(uint64(bytecode.TagVarDecl))
	putString("title")
	putU64(uint64(bytecode.TypeString))
	putU64(uint64(bytecode.TagLiteral))
	putU64(uint64(bytecode.TypeString))
	putString(titleValue)
	putU64(uint64(bytecode.TagEndOfBlock)) // end GlobalScope's inner compound
	putU64(uint64(bytecode.TagEndOfBlock)) // end Init entry body

	putU64(uint64(bytecode.TagEndOfFile))
	return buf
}

func newTestRuntime(t *testing.T, data map[string][]byte) (*Runtime, *fakeLogger, *fakeWindow) {
	t.Helper()
	logger := &fakeLogger{}
	window := &fakeWindow{}
	ops := zap.NewNop()
	rt := New(&fakeApps{data: data}, nil, logger, ops, window, fakeInputs{}, nil)
	return rt, logger, window
}

func TestLoadAppRequiresAppRight(t *testing.T) {
	rt, _, _ := newTestRuntime(t, nil)
	rt.fsm.SetRight(0)
	err := rt.LoadApp("APICA_MENU")
	require.Error(t, err)
}

func TestSpecialInitLoadsMainMenuAndAdvancesToInit(t *testing.T) {
	rt, logger, _ := newTestRuntime(t, map[string][]byte{
		mainMenuAppName: encodeApp(t, "Menu"),
	})
	require.Equal(t, rights.SpecialInit, rt.fsm.Mode())

	rt.Tick()

	require.Equal(t, rights.Init, rt.fsm.Mode())
	require.Equal(t, []string{mainMenuAppName}, logger.opened)
	require.Equal(t, mainMenuAppName, rt.loadedApp)
}

func TestInitRunsEntrypointAppliesTitleAndAdvancesToUpdate(t *testing.T) {
	rt, _, window := newTestRuntime(t, map[string][]byte{
		mainMenuAppName: encodeApp(t, "Hello Menu"),
	})
	rt.Tick() // SpecialInit -> Init, loads app
	rt.Tick() // Init -> Update

	require.Equal(t, rights.Update, rt.fsm.Mode())
	require.Equal(t, "Hello Menu", window.title)
}

func TestUpdateWithoutEntrypointAdvancesToQuit(t *testing.T) {
	rt, logger, _ := newTestRuntime(t, map[string][]byte{
		mainMenuAppName: encodeApp(t, "Menu"),
	})
	rt.Tick() // SpecialInit -> Init
	rt.Tick() // Init -> Update
	rt.Tick() // Update (no Update entrypoint declared) -> Quit

	require.Equal(t, rights.Quit, rt.fsm.Mode())
	require.NotEmpty(t, logger.errs)
}

func TestQuitWithMainMenuRightStopsTheRuntime(t *testing.T) {
	rt, _, _ := newTestRuntime(t, map[string][]byte{
		mainMenuAppName: encodeApp(t, "Menu"),
	})
	rt.Tick() // SpecialInit -> Init
	rt.Tick() // Init -> Update
	rt.Tick() // Update -> Quit
	require.True(t, rt.IsRunning())
	rt.Tick() // Quit, MainMenuRight held -> SpecialQuit

	require.False(t, rt.IsRunning())
	require.Equal(t, rights.SpecialQuit, rt.fsm.Mode())
}

func TestQuitWithOnlyAppRightReloadsMainMenu(t *testing.T) {
	rt, _, _ := newTestRuntime(t, map[string][]byte{
		mainMenuAppName: encodeApp(t, "Menu"),
		"GAME":          encodeApp(t, "Game"),
	})
	rt.fsm.SetRight(rights.App) // AppRight + ModRight, no MainMenuRight
	require.NoError(t, rt.LoadApp("GAME"))
	rt.fsm.SetMode(rights.Quit)

	rt.Tick()

	require.Equal(t, rights.Init, rt.fsm.Mode())
	require.Equal(t, rights.MainMenu, rt.fsm.Right())
	require.Equal(t, mainMenuAppName, rt.loadedApp)
}
