// Package debugcli implements the operator console (SPEC_FULL.md
// §A.4), grounded directly on cli/vm/cli.go's readline prompt loop: a
// github.com/chzyer/readline instance feeding lines through
// github.com/kballard/go-shellquote tokenization into a
// github.com/urfave/cli (v1) command table, the same shape the
// teacher's VM CLI uses for its own load/estack/break/... commands.
package debugcli

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/apica-run/apica-core/pkg/element"
	"github.com/apica-run/apica-core/pkg/reader"
	"github.com/apica-run/apica-core/pkg/rights"
	"github.com/apica-run/apica-core/pkg/runtime"
	"github.com/chzyer/readline"
	shellquote "github.com/kballard/go-shellquote"
	orderedjson "github.com/nspcc-dev/go-ordered-json"
	"github.com/urfave/cli"
)

const runtimeKey = "runtime"

func getRuntime(app *cli.App) *runtime.Runtime {
	return app.Metadata[runtimeKey].(*runtime.Runtime)
}

// CLI wraps a readline prompt over an already-booted runtime.Runtime,
// mirroring the teacher's CLI{chain, shell} shape.
type CLI struct {
	rt    *runtime.Runtime
	shell *cli.App
	rl    *readline.Instance
}

var commands = []cli.Command{
	{
		Name:      "load",
		Usage:     "Load an app by name",
		UsageText: "load <app>",
		Action:    handleLoad,
	},
	{
		Name:      "tick",
		Usage:     "Advance the runtime by N ticks (default 1)",
		UsageText: "tick [n]",
		Action:    handleTick,
	},
	{
		Name:      "scopes",
		Usage:     "Dump the Context's scope stack",
		UsageText: "scopes [--json]",
		Flags:     []cli.Flag{cli.BoolFlag{Name: "json"}},
		Action:    handleScopes,
	},
	{
		Name:      "rights",
		Usage:     "Show the current ApicaMode and ApicaRight bitset",
		UsageText: "rights [--json]",
		Flags:     []cli.Flag{cli.BoolFlag{Name: "json"}},
		Action:    handleRights,
	},
	{
		Name:      "apps",
		Usage:     "List known apps and their last reader-cache outcome",
		UsageText: "apps [--json]",
		Flags:     []cli.Flag{cli.BoolFlag{Name: "json"}},
		Action:    handleApps,
	},
	{
		Name:      "quit",
		Usage:     "Exit the debug console",
		UsageText: "quit",
		Action:    handleQuit,
	},
}

var errQuit = errors.New("quit requested")

// New builds a CLI over rt. rlCfg is an already-configured readline.Config
// (matching cli/vm/cli.go's NewWithConfig signature), so callers can
// point history/stdio wherever cmd/apica needs it.
func New(rt *runtime.Runtime, rlCfg *readline.Config) (*CLI, error) {
	rl, err := readline.NewEx(rlCfg)
	if err != nil {
		return nil, fmt.Errorf("debugcli: failed to create readline instance: %w", err)
	}

	app := cli.NewApp()
	app.Name = "apica-debug"
	app.HelpName = ""
	app.UsageText = ""
	app.Usage = "Interactive console for the apica runtime"
	app.Writer = rl.Stdout()
	app.ErrWriter = rl.Stderr()
	app.ExitErrHandler = func(*cli.Context, error) {}
	app.Commands = commands
	app.Metadata = map[string]interface{}{runtimeKey: rt}

	return &CLI{rt: rt, shell: app, rl: rl}, nil
}

// Run is cli/vm/cli.go's Run loop verbatim in shape: EOF/interrupt
// stop cleanly, a tokenizer failure is non-fatal, a dispatch error is
// printed but also non-fatal -- except the `quit` command's sentinel
// error, which ends the loop.
func (c *CLI) Run() error {
	for {
		line, err := c.rl.Readline()
		if errors.Is(err, io.EOF) || errors.Is(err, readline.ErrInterrupt) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("debugcli: failed to read input: %w", err)
		}

		args, err := shellquote.Split(line)
		if err != nil {
			fmt.Fprintln(c.shell.ErrWriter, err)
			continue
		}
		if len(args) == 0 {
			continue
		}

		err = c.shell.Run(append([]string{"apica-debug"}, args...))
		if errors.Is(err, errQuit) {
			return nil
		}
		if err != nil {
			fmt.Fprintln(c.shell.ErrWriter, err)
		}
	}
}

func handleLoad(c *cli.Context) error {
	if c.NArg() != 1 {
		return errors.New("load: expected exactly one app name")
	}
	rt := getRuntime(c.App)
	if err := rt.LoadApp(c.Args()[0]); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "loaded %s\n", c.Args()[0])
	return nil
}

func handleTick(c *cli.Context) error {
	rt := getRuntime(c.App)
	n := 1
	if c.NArg() == 1 {
		parsed, err := parseTickCount(c.Args()[0])
		if err != nil {
			return err
		}
		n = parsed
	}
	for i := 0; i < n; i++ {
		rt.Tick()
	}
	fmt.Fprintf(c.App.Writer, "mode=%s running=%t\n", rt.Rights().Mode(), rt.IsRunning())
	return nil
}

// binding is one name/value pair in a scopes dump. A slice of these
// (in sorted-name order, built by sortedNames) keeps the --json output
// deterministic regardless of Go's randomized map iteration -- the
// same determinism concern go-ordered-json's own README calls out for
// decoded JSON objects.
type binding struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type scopeDump struct {
	Index    int       `json:"index"`
	Bindings []binding `json:"bindings"`
}

func handleScopes(c *cli.Context) error {
	rt := getRuntime(c.App)
	scopes := rt.Context().Snapshot()

	if c.Bool("json") {
		dump := make([]scopeDump, 0, len(scopes))
		for i, scope := range scopes {
			dump = append(dump, scopeDump{Index: i, Bindings: bindingsOf(scope)})
		}
		b, err := orderedjson.MarshalIndent(dump, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(c.App.Writer, string(b))
		return nil
	}

	for i, scope := range scopes {
		fmt.Fprintf(c.App.Writer, "scope %d:\n", i)
		for _, b := range bindingsOf(scope) {
			fmt.Fprintf(c.App.Writer, "  %s = %s\n", b.Name, b.Value)
		}
	}
	return nil
}

type rightsDump struct {
	Mode     string `json:"mode"`
	MainMenu bool   `json:"main_menu"`
	App      bool   `json:"app"`
	Mod      bool   `json:"mod"`
	Instance string `json:"instance"`
}

func handleRights(c *cli.Context) error {
	rt := getRuntime(c.App)
	fsm := rt.Rights()
	dump := rightsDump{
		Mode:     fsm.Mode().String(),
		MainMenu: fsm.HasRight(rights.RightMainMenu),
		App:      fsm.HasRight(rights.RightApp),
		Mod:      fsm.HasRight(rights.RightMod),
		Instance: rt.InstanceID(),
	}

	if c.Bool("json") {
		b, err := orderedjson.MarshalIndent(dump, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(c.App.Writer, string(b))
		return nil
	}

	fmt.Fprintf(c.App.Writer, "mode=%s main_menu=%t app=%t mod=%t instance=%s\n",
		dump.Mode, dump.MainMenu, dump.App, dump.Mod, dump.Instance)
	return nil
}

type appsDump struct {
	Loaded      string           `json:"loaded"`
	LastOutcome *reader.Outcome  `json:"last_outcome,omitempty"`
}

func handleApps(c *cli.Context) error {
	rt := getRuntime(c.App)
	cache := rt.Cache()
	loaded := rt.LoadedApp()

	dump := appsDump{Loaded: loaded}
	if cache != nil && loaded != "" {
		if outcome, ok := cache.LastOutcome(loaded); ok {
			dump.LastOutcome = &outcome
		}
	}

	if c.Bool("json") {
		b, err := orderedjson.MarshalIndent(dump, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(c.App.Writer, string(b))
		return nil
	}

	fmt.Fprintf(c.App.Writer, "loaded: %s\n", dump.Loaded)
	if dump.LastOutcome != nil {
		fmt.Fprintf(c.App.Writer, "last outcome: %d entries, %d errors, decoded at %s\n",
			dump.LastOutcome.Entries, len(dump.LastOutcome.Errors), dump.LastOutcome.DecodedAt)
	}
	return nil
}

func handleQuit(*cli.Context) error {
	return errQuit
}

func bindingsOf(scope map[string]element.Element) []binding {
	out := make([]binding, 0, len(scope))
	for _, name := range sortedNames(scope) {
		out = append(out, binding{Name: name, Value: scope[name].Value.Format()})
	}
	return out
}

func sortedNames(scope map[string]element.Element) []string {
	names := make([]string, 0, len(scope))
	for name := range scope {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func parseTickCount(s string) (int, error) {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("tick: invalid count %q", s)
		}
		n = n*10 + int(r-'0')
	}
	if n <= 0 {
		return 0, fmt.Errorf("tick: count must be positive, got %q", s)
	}
	return n, nil
}
