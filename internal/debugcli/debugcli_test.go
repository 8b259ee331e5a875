package debugcli

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/apica-run/apica-core/pkg/bytecode"
	"github.com/apica-run/apica-core/pkg/host"
	"github.com/apica-run/apica-core/pkg/runtime"
	"github.com/chzyer/readline"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// readCloser adapts a bytes.Buffer into readline's Stdin, the same
// shape cli/vm/cli_test.go uses to drive its CLI headlessly.
type readCloser struct {
	sync.Mutex
	bytes.Buffer
}

func (r *readCloser) Close() error { return nil }
func (r *readCloser) Read(p []byte) (int, error) {
	r.Lock()
	defer r.Unlock()
	return r.Buffer.Read(p)
}
func (r *readCloser) WriteString(s string) {
	r.Lock()
	defer r.Unlock()
	r.Buffer.WriteString(s)
}

type fakeApps struct{ data map[string][]byte }

func (f *fakeApps) ReadApp(name string) ([]byte, error) { return f.data[name], nil }

type fakeLogger struct{}

func (fakeLogger) CreateFileFor(string) error  { return nil }
func (fakeLogger) SystemLognSuccess(string)    {}
func (fakeLogger) SystemLognError(string)      {}
func (fakeLogger) LogInfo([]string)            {}
func (fakeLogger) LognInfo([]string)           {}
func (fakeLogger) LogSuccess([]string)         {}
func (fakeLogger) LognSuccess([]string)        {}
func (fakeLogger) LogWarning([]string)         {}
func (fakeLogger) LognWarning([]string)        {}
func (fakeLogger) LogError([]string)           {}
func (fakeLogger) LognError([]string)          {}

type fakeWindow struct{ title string }

func (w *fakeWindow) SetTitle(t string) { w.title = t }
func (w *fakeWindow) SetResizable(bool) {}

type fakeInputs struct{}

func (fakeInputs) HandleKeyEvent(uint32, bool)  {}
func (fakeInputs) IsKeyReleased(uint32) bool    { return false }
func (fakeInputs) IsKeyJustPressed(uint32) bool { return false }
func (fakeInputs) IsKeyPressed(uint32) bool     { return false }

var _ host.Logger = fakeLogger{}
var _ host.Window = (*fakeWindow)(nil)
var _ host.Inputs = fakeInputs{}

// encodeApp mirrors pkg/runtime's test fixture builder: an Init
// entrypoint declaring a global "title" string, then EndOfFile.
func encodeApp(t *testing.T, title string) []byte {
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
	putU64(uint64(bytecode.TagEntrypoint))
	putU64(uint64(bytecode.EntrypointInit))
	putU64(uint64(bytecode.TagGlobalScope))
	putU64(uint64(bytecode.TagVarDecl))
	putString("title")
	putU64(uint64(bytecode.TypeString))
	putU64(uint64(bytecode.TagLiteral))
	putU64(uint64(bytecode.TypeString))
	putString(title)
	putU64(uint64(bytecode.TagEndOfBlock))
	putU64(uint64(bytecode.TagEndOfBlock))
	putU64(uint64(bytecode.TagEndOfFile))
	return buf
}

type testConsole struct {
	in  *readCloser
	out *bytes.Buffer
	cli *CLI
}

func newTestConsole(t *testing.T, data map[string][]byte) *testConsole {
	t.Helper()
	rt := runtime.New(&fakeApps{data: data}, nil, fakeLogger{}, zap.NewNop(), &fakeWindow{}, fakeInputs{}, nil)

	tc := &testConsole{in: &readCloser{}, out: bytes.NewBuffer(nil)}
	cli, err := New(rt, &readline.Config{
		Prompt:         "",
		Stdin:          tc.in,
		Stdout:         tc.out,
		Stderr:         tc.out,
		FuncIsTerminal: func() bool { return false },
	})
	require.NoError(t, err)
	tc.cli = cli
	return tc
}

func (tc *testConsole) run(t *testing.T, lines ...string) {
	t.Helper()
	tc.in.WriteString(strings.Join(lines, "\n") + "\n")
	done := make(chan error, 1)
	go func() { done <- tc.cli.Run() }()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(4 * time.Second):
		t.Fatal("console command took too long")
	}
}

func TestLoadThenRightsReportsInstance(t *testing.T) {
	tc := newTestConsole(t, map[string][]byte{"GAME": encodeApp(t, "Game")})
	tc.run(t, "load GAME", "rights")

	out := tc.out.String()
	require.Contains(t, out, "loaded GAME")
	require.Contains(t, out, "mode=")
}

func TestTickAdvancesMode(t *testing.T) {
	tc := newTestConsole(t, map[string][]byte{"APICA_MENU": encodeApp(t, "Menu")})
	tc.run(t, "tick", "tick")

	out := tc.out.String()
	require.Contains(t, out, "mode=Init")
	require.Contains(t, out, "mode=Update")
}

func TestScopesJSONDumpIncludesDeclaredTitle(t *testing.T) {
	tc := newTestConsole(t, map[string][]byte{"APICA_MENU": encodeApp(t, "Hello")})
	tc.run(t, "tick", "tick", "scopes --json")

	out := tc.out.String()
	require.Contains(t, out, `"name": "title"`)
	require.Contains(t, out, `"value": "Hello"`)
}

func TestAppsReportsNothingBeforeLoad(t *testing.T) {
	tc := newTestConsole(t, nil)
	tc.run(t, "apps")

	require.Contains(t, tc.out.String(), "loaded: \n")
}

func TestUnknownCommandPrintsErrorButDoesNotStopConsole(t *testing.T) {
	tc := newTestConsole(t, map[string][]byte{"APICA_MENU": encodeApp(t, "Menu")})
	tc.run(t, "bogus-command", "tick")

	out := tc.out.String()
	require.Contains(t, out, "mode=Init")
}
