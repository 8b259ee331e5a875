// Package runtime implements the ApicaSystem mode-dispatch loop (spec
// §3, §9.7), grounded on original_source/src/systems/apica.rs's
// ApicaSystem struct, load_app, and update_system. The winit
// ApplicationHandler glue (resumed/window_event/about_to_wait) is
// out-of-scope per SPEC_FULL.md §1 — Tick replaces about_to_wait's
// "update_system then check is_running" step for a driver loop that
// isn't tied to any particular windowing backend.
package runtime

import (
	"bytes"
	"fmt"
	"time"

	"github.com/apica-run/apica-core/pkg/ast"
	"github.com/apica-run/apica-core/pkg/bytecode"
	"github.com/apica-run/apica-core/pkg/context"
	"github.com/apica-run/apica-core/pkg/element"
	"github.com/apica-run/apica-core/pkg/eval"
	"github.com/apica-run/apica-core/pkg/host"
	"github.com/apica-run/apica-core/pkg/metrics"
	"github.com/apica-run/apica-core/pkg/reader"
	"github.com/apica-run/apica-core/pkg/rights"
	"github.com/google/uuid"
	"github.com/mr-tron/base58"
	"go.uber.org/zap"
)

// AppReader abstracts "fetch appName's raw .apb bytes", so tests can
// supply an in-memory set without touching a real AppsDir.
type AppReader interface {
	ReadApp(appName string) ([]byte, error)
}

// Runtime is the process-wide ApicaSystem: one Context, one Reader
// cache, one FSM, and the host adapters the Evaluator drives. Per
// §9.7 it is the only mutable state the process needs; there is one
// Runtime per running process and no package-level state anywhere in
// this tree.
type Runtime struct {
	apps   AppReader
	cache  *reader.Cache
	ctx    *context.Context
	fsm    *rights.FSM
	logger host.Logger
	ops    *zap.Logger
	window host.Window
	inputs host.Inputs
	eval   *eval.Evaluator
	stats  *metrics.Collectors

	entries    map[bytecode.EntrypointTag]*ast.Compound
	loadedApp  string
	instanceID string
}

// New builds a Runtime over already-constructed systems. It starts in
// the FSM's SpecialInit mode holding MainMenu rights, matching
// RightSystem::init via rights.New.
func New(apps AppReader, cache *reader.Cache, logger host.Logger, ops *zap.Logger, window host.Window, inputs host.Inputs, stats *metrics.Collectors) *Runtime {
	ctx := context.New()
	fsm := rights.New()
	ev := eval.New(ctx, logger, fsm, window, inputs)
	ev.SetMetrics(stats)
	return &Runtime{
		apps:   apps,
		cache:  cache,
		ctx:    ctx,
		fsm:    fsm,
		logger: logger,
		ops:    ops,
		window: window,
		inputs: inputs,
		eval:   ev,
		stats:  stats,
	}
}

// IsRunning reports whether the process should keep calling Tick.
func (r *Runtime) IsRunning() bool { return r.fsm.IsRunning() }

// Context exposes the shared scope stack, read-only introspection for
// internal/debugcli's `scopes` command.
func (r *Runtime) Context() *context.Context { return r.ctx }

// Rights exposes the FSM, read-only introspection for
// internal/debugcli's `rights` command.
func (r *Runtime) Rights() *rights.FSM { return r.fsm }

// LoadedApp returns the name of the currently loaded app, or "" before
// the first LoadApp call.
func (r *Runtime) LoadedApp() string { return r.loadedApp }

// InstanceID returns the uuid stamped on the most recent LoadApp call.
func (r *Runtime) InstanceID() string { return r.instanceID }

// Cache exposes the reader cache, read-only introspection for
// internal/debugcli's `apps` command. May be nil.
func (r *Runtime) Cache() *reader.Cache { return r.cache }

// LoadApp is ApicaSystem::load_app: guarded by AppRight, it resets the
// shared Context, opens a fresh per-app log file, and decodes the app's
// bytecode. It does not set the window title itself.
//
// The original calls self.reader.get_data("title") here, but that
// method does not exist anywhere in original_source/src/systems --
// reader.rs only exposes init/clear_nodes/get_entry_node/read_app and
// its private read_* helpers. Rather than carry over a call to a
// method that was apparently never implemented in its own source
// tree, the runtime resolves the title the one way the rest of the
// original's data model supports: a top-level "title" String binding
// left in the global scope by the app's Init entrypoint, read back
// after Init runs (see applyDeclaredTitle, called from Tick's Init
// handling).
func (r *Runtime) LoadApp(appName string) error {
	if !r.fsm.HasRight(rights.RightApp) {
		return fmt.Errorf("load_app %q: AppRight not held", appName)
	}

	r.ctx.Reset()

	instance := uuid.New()
	r.instanceID = instance.String()
	log := r.ops.With(zap.String("instance", r.instanceID), zap.String("app", appName))

	if err := r.logger.CreateFileFor(appName); err != nil {
		log.Warn("could not open app log file", zap.Error(err))
		return fmt.Errorf("load_app %q: %w", appName, err)
	}

	data, err := r.apps.ReadApp(appName)
	if err != nil {
		log.Warn("could not read app bytecode", zap.Error(err))
		return fmt.Errorf("load_app %q: %w", appName, err)
	}

	entries, decodeErrs := reader.Decode(bytes.NewReader(data))
	for _, e := range decodeErrs {
		log.Warn("decode warning", zap.Error(e))
	}

	if r.cache != nil {
		outcome := r.cache.Record(appName, data, len(entries), decodeErrs)
		fingerprint := base58.Encode(uint64ToBytes(outcome.ContentKey))
		log.Info("loaded app", zap.String("fingerprint", fingerprint), zap.Int("entries", outcome.Entries))
	}

	r.entries = entries
	r.loadedApp = appName
	return nil
}

// Tick is ApicaSystem::update_system, replacing the winit
// ApplicationHandler::about_to_wait glue with a plain method the
// caller invokes in a loop. Each call handles the current mode once
// and advances the FSM by at most one step, mirroring the original's
// single match per call.
func (r *Runtime) Tick() {
	mode := r.fsm.Mode()
	if r.stats != nil {
		r.stats.TicksTotal.WithLabelValues(mode.String()).Inc()
	}

	switch mode {
	case rights.SpecialQuit:
		// Nothing left to do; IsRunning will report false.

	case rights.SpecialInit:
		r.fsm.SetMode(rights.Init)
		if err := r.LoadApp(mainMenuAppName); err != nil {
			r.ops.Warn("could not load main menu", zap.Error(err))
		}

	case rights.Init:
		r.runEntrypoint(bytecode.EntrypointInit)
		r.applyDeclaredTitle()
		r.fsm.SetMode(rights.Update)

	case rights.Update:
		if !r.runEntrypoint(bytecode.EntrypointUpdate) {
			r.fsm.SetMode(rights.Quit)
		}

	case rights.Quit:
		r.runEntrypoint(bytecode.EntrypointQuit)
		switch {
		case r.fsm.HasRight(rights.RightMainMenu):
			r.fsm.SetMode(rights.SpecialQuit)
		case r.fsm.HasRight(rights.RightApp):
			r.fsm.SetMode(rights.Init)
			r.fsm.SetRight(rights.MainMenu)
			if err := r.LoadApp(mainMenuAppName); err != nil {
				r.ops.Warn("could not reload main menu", zap.Error(err))
			}
		}
	}
}

// runEntrypoint evaluates the named entrypoint if the loaded app
// declares one, logging an operational error and returning false when
// it does not -- the caller decides per-mode whether a missing
// entrypoint is fatal to the current mode (Update is; Init and Quit
// merely log and move on).
func (r *Runtime) runEntrypoint(tag bytecode.EntrypointTag) bool {
	root, ok := r.entries[tag]
	if !ok {
		r.logger.SystemLognError(fmt.Sprintf("entrypoint not found -> %s", tag))
		return false
	}

	start := time.Now()
	result := r.eval.Evaluate(root)
	if r.stats != nil {
		r.stats.ObserveEval(time.Since(start))
		if result.Has(element.ModError) {
			kind, _, _ := result.Value.ErrorInfo()
			r.stats.ErrorsTotal.WithLabelValues(string(kind)).Inc()
		}
	}
	return true
}

// applyDeclaredTitle looks up a global "title" String binding left by
// the app's Init entrypoint and forwards it to the bound Window, the
// same "???"-on-absence fallback the original's load_app used for its
// (never-implemented) reader.get_data("title") lookup.
func (r *Runtime) applyDeclaredTitle() {
	title := "???"
	if found, ok := r.ctx.GetElement("title", true); ok {
		if s, ok := found.Value.Str(); ok {
			title = s
		}
	}
	r.window.SetTitle(title)
}

// mainMenuAppName is the app LoadApp falls back to whenever the
// runtime regains MainMenu rights, matching the original's MAIN_MENU
// constant.
const mainMenuAppName = "APICA_MENU"

func uint64ToBytes(v uint64) []byte {
	b := make([]byte, 8)
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * (7 - i)))
	}
	return b
}
