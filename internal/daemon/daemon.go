// Package daemon implements watch mode: an initial build, rebuilds on file
// changes and on a schedule, and an optional admin HTTP server.
package daemon

import (
	"context"
	"log/slog"
	"net/http"

	"golang.org/x/sync/errgroup"

	"git.home.luguber.info/inful/navbuilder/internal/build"
	"git.home.luguber.info/inful/navbuilder/internal/config"
	"git.home.luguber.info/inful/navbuilder/internal/logfields"
	"git.home.luguber.info/inful/navbuilder/internal/metrics"

	ferrors "git.home.luguber.info/inful/navbuilder/internal/foundation/errors"
)

// Rebuild triggers.
const (
	TriggerStartup  = "startup"
	TriggerFile     = "file"
	TriggerSchedule = "schedule"
)

// Options configures a Daemon.
type Options struct {
	ConfigPath string
	Service    build.Service
	Recorder   metrics.Recorder
	// MetricsHandler serves /metrics on the admin server.
	MetricsHandler http.Handler
	// LoadConfig defaults to config.Load.
	LoadConfig func(path string) (*config.Config, error)
}

// Daemon runs builds in watch mode. Every rebuild loads the configuration
// afresh.
type Daemon struct {
	opts    Options
	state   *buildState
	watcher *Watcher
	rebuild chan string
	admin   *AdminServer
}

// New creates a daemon.
func New(opts Options) (*Daemon, error) {
	if opts.Service == nil {
		return nil, ferrors.ValidationError("build service is required").Build()
	}
	if opts.ConfigPath == "" {
		return nil, ferrors.ValidationError("config path is required").Build()
	}
	if opts.Recorder == nil {
		opts.Recorder = metrics.NoopRecorder{}
	}
	if opts.LoadConfig == nil {
		opts.LoadConfig = config.Load
	}
	return &Daemon{
		opts:    opts,
		state:   &buildState{},
		rebuild: make(chan string, 1),
	}, nil
}

// Run builds once, then watches until ctx is done. Only an unreadable initial
// configuration or a failing server ends Run early; failed builds are logged
// and the previous output keeps being served.
func (d *Daemon) Run(ctx context.Context) error {
	cfg, err := d.opts.LoadConfig(d.opts.ConfigPath)
	if err != nil {
		return err
	}

	d.watcher, err = NewWatcher(cfg.Watch.Debounce, func(path string) {
		slog.Info("Change detected; rebuilding", logfields.Path(path))
		d.Trigger(TriggerFile)
	})
	if err != nil {
		return err
	}
	d.watch(cfg)

	var sched *Scheduler
	if cfg.Watch.RefreshInterval > 0 {
		if sched, err = NewScheduler(); err == nil {
			_, err = sched.SchedulePeriodicRebuild(cfg.Watch.RefreshInterval, func() { d.Trigger(TriggerSchedule) })
		}
		if err != nil {
			d.watcher.close()
			return err
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return d.watcher.Run(gctx) })

	if sched != nil {
		sched.Start()
		g.Go(func() error {
			<-gctx.Done()
			return sched.Stop(context.Background())
		})
	}

	if cfg.Monitoring.Metrics.Enabled {
		d.admin = newAdminServer(cfg.Monitoring.Metrics.Addr, cfg.Monitoring.Metrics.Path, d.opts.MetricsHandler, d.state)
		g.Go(func() error { return d.admin.Serve(gctx) })
	}

	d.Trigger(TriggerStartup)
	g.Go(func() error { return d.loop(gctx) })

	slog.Info("Watching for changes", logfields.File(d.opts.ConfigPath))
	return g.Wait()
}

// Trigger requests a rebuild. Requests made while a build is pending or
// running collapse into one follow-up build.
func (d *Daemon) Trigger(reason string) {
	select {
	case d.rebuild <- reason:
	default:
	}
}

// Status reports the latest build state.
func (d *Daemon) Status() StatusSnapshot { return d.state.snapshot() }

func (d *Daemon) loop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case reason := <-d.rebuild:
			d.runBuild(ctx, reason)
		}
	}
}

func (d *Daemon) runBuild(ctx context.Context, reason string) {
	d.opts.Recorder.IncRebuildTrigger(reason)
	cfg, err := d.opts.LoadConfig(d.opts.ConfigPath)
	if err != nil {
		slog.Error("Configuration reload failed; keeping previous output", logfields.Error(err))
		d.state.record(nil, err)
		return
	}
	d.watch(cfg)

	res, err := d.opts.Service.Run(ctx, build.Request{Config: cfg, Trigger: reason})
	if ctx.Err() != nil {
		return
	}
	d.state.record(res, err)
	if err != nil {
		slog.Warn("Rebuild failed; keeping previous output", logfields.Trigger(reason), logfields.Error(err))
	}
}

// watch registers every path the configuration depends on. Registration is
// idempotent so it runs after each reload to pick up new paths.
func (d *Daemon) watch(cfg *config.Config) {
	for _, f := range cfg.WatchedFiles() {
		if f == "" {
			continue
		}
		if err := d.watcher.WatchFile(f); err != nil {
			slog.Warn("Cannot watch file", logfields.File(f), logfields.Error(err))
		}
	}
	d.watcher.Ignore(cfg.Output.Directory, cfg.Events.Store)
	if cfg.Content.Dir != "" {
		if err := d.watcher.WatchTree(cfg.Content.Dir); err != nil {
			slog.Warn("Cannot watch content", logfields.Path(cfg.Content.Dir), logfields.Error(err))
		}
	}
}
