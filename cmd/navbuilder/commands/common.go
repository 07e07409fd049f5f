package commands

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/navbuilder/internal/broker"
	"git.home.luguber.info/inful/navbuilder/internal/build"
	"git.home.luguber.info/inful/navbuilder/internal/config"
	"git.home.luguber.info/inful/navbuilder/internal/eventstore"
	"git.home.luguber.info/inful/navbuilder/internal/logfields"
	"git.home.luguber.info/inful/navbuilder/internal/metrics"
)

// logLevelEnv overrides the configured log level unless -v is given.
const logLevelEnv = "NAVBUILDER_LOG_LEVEL"

// Global is shared state passed to every subcommand.
type Global struct {
	// Out receives user-facing output; nil means stdout.
	Out io.Writer
}

func (g *Global) out() io.Writer {
	if g == nil || g.Out == nil {
		return os.Stdout
	}
	return g.Out
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"navbuilder.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build    BuildCmd    `cmd:"" help:"Resolve navigation and write the site data"`
	Resolve  ResolveCmd  `cmd:"" help:"Print the resolved navigation trees"`
	Validate ValidateCmd `cmd:"" help:"Check configuration and links without writing output"`
	Page     PageCmd     `cmd:"" help:"Print the metadata computed for one content page"`
	Init     InitCmd     `cmd:"" help:"Write an example configuration file"`
	Watch    WatchCmd    `cmd:"" help:"Build, then rebuild whenever configuration or content changes"`
	History  HistoryCmd  `cmd:"" help:"List recent builds from the event store"`
}

// AfterApply runs after flag parsing and sets up logging before any
// configuration is read.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	setupLogging(os.Stderr, c.Verbose, config.LoggingConfig{})
	return nil
}

// loadConfig loads the file named by --config and applies its logging
// settings.
func (c *CLI) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return nil, err
	}
	setupLogging(os.Stderr, c.Verbose, cfg.Monitoring.Logging)
	return cfg, nil
}

// parseLogLevel picks the level: -v wins, then NAVBUILDER_LOG_LEVEL, then
// the configuration.
func parseLogLevel(verbose bool, configured config.LogLevel) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	if env := os.Getenv(logLevelEnv); env != "" {
		return config.NormalizeLogLevel(env).SlogLevel()
	}
	return configured.SlogLevel()
}

func setupLogging(w io.Writer, verbose bool, lc config.LoggingConfig) {
	opts := &slog.HandlerOptions{Level: parseLogLevel(verbose, lc.Level)}
	var h slog.Handler
	if lc.Format == config.LogFormatJSON {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	slog.SetDefault(slog.New(h))
}

// newService wires the build service with the event store and publisher the
// configuration asks for. The returned cleanup closes them.
func newService(ctx context.Context, cfg *config.Config, recorder metrics.Recorder) (*build.DefaultService, func(), error) {
	svc := build.NewService().WithRecorder(recorder)

	var closers []func() error
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				slog.Warn("Cleanup failed", logfields.Error(err))
			}
		}
	}

	if cfg.Events.Store != "" {
		store, err := eventstore.NewSQLiteStore(cfg.Events.Store)
		if err != nil {
			return nil, nil, err
		}
		svc.WithEventStore(store)
		closers = append(closers, store.Close)
	}

	if cfg.Events.NATS.Enabled {
		pub, err := broker.NewNATSPublisher(ctx, cfg.Events.NATS)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		svc.WithPublisher(pub)
		closers = append(closers, pub.Close)
	}

	return svc, cleanup, nil
}
