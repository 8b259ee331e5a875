// Command apica is the runtime's process entrypoint (SPEC_FULL.md
// §A.3), grounded on cli/vm/vm.go's NewCommand() cli.Command shape: a
// top-level urfave/cli (v1) app with a `run` command that boots the
// runtime and pumps ticks, and a `debug` command that drops into
// internal/debugcli's interactive REPL instead.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/apica-run/apica-core/internal/debugcli"
	"github.com/apica-run/apica-core/internal/logging"
	"github.com/apica-run/apica-core/pkg/config"
	"github.com/apica-run/apica-core/pkg/host"
	"github.com/apica-run/apica-core/pkg/host/window/wsdebug"
	"github.com/apica-run/apica-core/pkg/metrics"
	"github.com/apica-run/apica-core/pkg/reader"
	"github.com/apica-run/apica-core/pkg/rights"
	"github.com/apica-run/apica-core/pkg/runtime"
	"github.com/chzyer/readline"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli"
	"go.uber.org/zap"
)

var configFlag = cli.StringFlag{
	Name:  "config, c",
	Usage: "path to the runtime's YAML config file",
	Value: "apica.yml",
}

func main() {
	app := cli.NewApp()
	app.Name = "apica"
	app.Usage = "run the apica bytecode runtime"
	app.Commands = []cli.Command{
		newRunCommand(),
		newDebugCommand(),
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRunCommand() cli.Command {
	return cli.Command{
		Name:   "run",
		Usage:  "boot the runtime and pump ticks until it quits",
		Flags:  []cli.Flag{configFlag},
		Action: runAction,
	}
}

func newDebugCommand() cli.Command {
	return cli.Command{
		Name:   "debug",
		Usage:  "boot the runtime and drop into the interactive debug console",
		Flags:  []cli.Flag{configFlag},
		Action: debugAction,
	}
}

// process wires together everything a booted Runtime needs: the
// operational zap logger, the per-app file logger, the reader cache,
// the metrics collectors (nil when disabled), and an optional metrics
// HTTP server. close stops the metrics server (if any) and flushes the
// operational logger; it does not close the reader cache, the per-app
// log file, or the wsdebug listener.
type process struct {
	cfg     config.Config
	ops     *zap.Logger
	rt      *runtime.Runtime
	metrics *metricsServer
}

type metricsServer struct {
	srv *metrics.Server
}

func boot(cfgPath string) (*process, error) {
	cfg, err := config.LoadFile(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("apica: failed to load config: %w", err)
	}

	ops, err := logging.New(cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("apica: failed to build logger: %w", err)
	}

	appLogger := host.NewZapLogger(ops, cfg.LogsDir)
	inputs := host.NewKeyTable()
	window := wsdebug.New()

	var collectors *metrics.Collectors
	var ms *metricsServer
	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		collectors = metrics.New(reg)
		srv := metrics.NewServer(cfg.Metrics.Address, reg)
		srv.Start()
		ms = &metricsServer{srv: srv}
	}

	var cache *reader.Cache
	if cfg.Debug.Enabled || cfg.Metrics.Enabled {
		cache, err = reader.OpenCache(filepath.Join(cfg.LogsDir, "reader-cache.db"), 64)
		if err != nil {
			ops.Warn("could not open reader cache, continuing without it", zap.Error(err))
			cache = nil
		}
	}

	if cfg.Debug.Enabled && cfg.Debug.ListenWS != "" {
		go func() {
			if err := serveWebsocket(cfg.Debug.ListenWS, window); err != nil {
				ops.Warn("wsdebug listener stopped", zap.Error(err))
			}
		}()
	}

	rt := runtime.New(runtime.NewFileAppReader(cfg.AppsDir), cache, appLogger, ops, window, inputs, collectors)

	return &process{cfg: cfg, ops: ops, rt: rt, metrics: ms}, nil
}

func (p *process) close() {
	if p.metrics != nil {
		_ = p.metrics.srv.Shutdown(context.Background())
	}
	_ = p.ops.Sync()
}

// serveWebsocket exposes win's Handler over addr so a debug viewer can
// connect and observe SetTitle/SetResizable broadcasts.
func serveWebsocket(addr string, win *wsdebug.Window) error {
	mux := http.NewServeMux()
	mux.Handle("/", win.Handler())
	return http.ListenAndServe(addr, mux)
}

func runAction(c *cli.Context) error {
	p, err := boot(c.String("config"))
	if err != nil {
		return err
	}
	defer p.close()

	if err := p.rt.LoadApp(p.cfg.DefaultApp); err != nil {
		p.ops.Warn("could not load default app, falling back to main menu", zap.Error(err))
	} else {
		// Skip SpecialInit, whose first tick would reload the main menu
		// over the app just loaded.
		p.rt.Rights().SetMode(rights.Init)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	for p.rt.IsRunning() {
		select {
		case <-stop:
			p.ops.Info("received shutdown signal")
			return nil
		default:
			p.rt.Tick()
		}
	}
	return nil
}

func debugAction(c *cli.Context) error {
	p, err := boot(c.String("config"))
	if err != nil {
		return err
	}
	defer p.close()

	cons, err := debugcli.New(p.rt, &readline.Config{
		Prompt:      "apica> ",
		HistoryFile: filepath.Join(os.TempDir(), "apica_debug_history"),
	})
	if err != nil {
		return fmt.Errorf("apica: failed to start debug console: %w", err)
	}
	return cons.Run()
}
