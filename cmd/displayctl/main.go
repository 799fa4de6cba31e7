// Command displayctl drives simulated monitors through the monitor access
// reliability layer.
//
// This command demonstrates:
//   - Configuration file support (YAML or TOML)
//   - Persistent per-monitor customizations (JSON file or SQLite)
//   - Access capture to a CBOR log readable by displayctl-log
//   - Background rescans after hardware access failures
//   - An interactive shell with failure injection
//
// Usage:
//
//	displayctl [flags]
//
// Flags:
//
//	-config string      Configuration file path (.yaml, .yml or .toml)
//	-store string       Customization store (.db/.sqlite for SQLite, otherwise JSON; empty keeps them in memory)
//	-access-log string  Write captured monitor access events to this file
//	-log-level string   Log level: debug, info, warn, error (default "info")
//	-interactive        Start the interactive shell
//
// Examples:
//
//	# Two default monitors, interactive
//	displayctl -interactive
//
//	# Monitors from a config file, customizations in SQLite
//	displayctl -config monitors.toml -store ~/.displayctl/state.db -access-log access.cbor
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/displayctl/displayctl-go/cmd/displayctl/interactive"
	"github.com/displayctl/displayctl-go/pkg/control"
	alog "github.com/displayctl/displayctl-go/pkg/log"
	"github.com/displayctl/displayctl-go/pkg/rescan"
	"github.com/displayctl/displayctl-go/pkg/simulate"
)

// Options holds the command line flags.
type Options struct {
	ConfigFile  string
	Store       string
	AccessLog   string
	LogLevel    string
	Interactive bool
}

var opts Options

func init() {
	flag.StringVar(&opts.ConfigFile, "config", "", "Configuration file path (.yaml, .yml or .toml)")
	flag.StringVar(&opts.Store, "store", "", "Customization store path (.db/.sqlite for SQLite, otherwise JSON)")
	flag.StringVar(&opts.AccessLog, "access-log", "", "Write captured monitor access events to this file")
	flag.StringVar(&opts.LogLevel, "log-level", "", "Log level: debug, info, warn, error")
	flag.BoolVar(&opts.Interactive, "interactive", false, "Start the interactive shell")
}

func main() {
	flag.Parse()

	cfg := DefaultFileConfig()
	if opts.ConfigFile != "" {
		var err error
		if cfg, err = LoadFileConfig(opts.ConfigFile); err != nil {
			log.Fatalf("Invalid configuration: %v", err)
		}
	}
	applyFlags(&cfg, opts)

	logger, clogger := newLogger(os.Stderr, cfg.LogLevel)

	app, err := newApp(cfg, logger)
	if err != nil {
		log.Fatalf("Failed to start: %v", err)
	}
	defer app.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	result := app.Discover()
	logger.Info("monitors discovered", "added", len(result.Added), "rejected", len(result.Rejected))
	app.Refresh()

	if opts.Interactive {
		shell, err := interactive.New(app.registry, app.fleet, app.worker)
		if err != nil {
			log.Fatalf("Failed to start interactive mode: %v", err)
		}
		clogger.SetOutput(shell.Stdout())
		go shell.Run(ctx, cancel)
	} else {
		for _, s := range app.registry.Sessions() {
			logger.Info("monitor", "name", s.Name(), "kind", s.Kind(),
				"brightness", s.BrightnessPercentage(), "controllable", s.Controllable(), "reason", s.Reason())
		}
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		logger.Info("received signal", "signal", sig)
	case <-ctx.Done():
	}
	logger.Info("shutting down")
}

// applyFlags lets explicitly set flags override the config file.
func applyFlags(cfg *FileConfig, o Options) {
	if o.Store != "" {
		cfg.Store = o.Store
	}
	if o.AccessLog != "" {
		cfg.AccessLog = o.AccessLog
	}
	if o.LogLevel != "" {
		cfg.LogLevel = o.LogLevel
	}
}

// App wires simulated monitors, the registry and the rescan worker.
type App struct {
	logger   *slog.Logger
	fleet    *simulate.Fleet
	registry *control.Registry
	worker   *rescan.Worker
	capture  *alog.FileLogger
	closers  []func() error
}

func newApp(cfg FileConfig, logger *slog.Logger) (*App, error) {
	monitors, err := cfg.SimulatedMonitors()
	if err != nil {
		return nil, err
	}
	fleet, err := simulate.NewFleet(monitors)
	if err != nil {
		return nil, err
	}

	a := &App{logger: logger, fleet: fleet}

	store, storeCloser, err := openStore(cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	a.closers = append(a.closers, storeCloser.Close)

	accessLoggers := []alog.Logger{}
	if cfg.AccessLog != "" {
		fl, err := alog.NewFileLogger(cfg.AccessLog)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("open access log: %w", err)
		}
		a.capture = fl
		a.closers = append(a.closers, fl.Close)
		accessLoggers = append(accessLoggers, fl)
	}
	if isDebug(cfg.LogLevel) {
		accessLoggers = append(accessLoggers, alog.NewSlogAdapter(logger.With("component", "access")))
	}

	wc := cfg.RescanWorkerConfig()
	wc.Logger = logger.With("component", "rescan")
	a.worker = rescan.NewWorker(a.scan, wc)

	cc := cfg.ControlConfig()
	cc.Store = store
	cc.Rescanner = a.worker
	cc.Logger = logger.With("component", "control")
	if len(accessLoggers) > 0 {
		cc.AccessLogger = alog.NewMultiLogger(accessLoggers...)
	}
	a.registry = control.NewRegistry(cc)

	a.worker.Start()
	return a, nil
}

// Discover registers the monitors present at startup.
func (a *App) Discover() control.SyncResult {
	return a.registry.Sync(a.fleet.Handles())
}

// Refresh reads every attribute once so sessions start with known values.
func (a *App) Refresh() {
	for _, s := range a.registry.Sessions() {
		if err := s.UpdateBrightness(-1); err != nil {
			a.logger.Warn("initial brightness read failed", "monitor", s.DeviceInstanceID(), "error", err)
		}
		if s.IsContrastSupported() {
			_ = s.UpdateContrast()
		}
		if s.IsInputSourceSupported() {
			_ = s.UpdateInputSource()
		}
	}
}

func (a *App) scan(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	result := a.registry.Sync(a.fleet.Scan())
	a.logger.Info("rescan applied",
		"added", len(result.Added), "replaced", len(result.Replaced),
		"rejected", len(result.Rejected), "removed", len(result.Removed))
	if len(result.Rejected) > 0 {
		return fmt.Errorf("rescan: %d monitor(s) rejected their new handle", len(result.Rejected))
	}
	return nil
}

// Close stops the worker, closes all sessions and releases stores and logs.
func (a *App) Close() {
	if a.worker != nil {
		a.worker.Close()
	}
	if a.registry != nil {
		a.registry.Close()
	}
	if a.capture != nil {
		written, dropped := a.capture.Counts()
		a.logger.Info("access capture closed", "path", a.capture.Path(), "events", written, "dropped", dropped)
		a.capture = nil
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("close failed", "error", err)
		}
	}
	a.closers = nil
}
