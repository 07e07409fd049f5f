package commands

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"git.home.luguber.info/inful/navbuilder/internal/daemon"
	"git.home.luguber.info/inful/navbuilder/internal/logfields"
	"git.home.luguber.info/inful/navbuilder/internal/metrics"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct{}

func (w *WatchCmd) Run(_ *Global, root *CLI) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var (
		recorder metrics.Recorder = metrics.NoopRecorder{}
		handler  http.Handler
	)
	if cfg.Monitoring.Metrics.Enabled {
		reg := metrics.NewRegistry()
		recorder = metrics.NewPrometheusRecorder(reg)
		handler = metrics.HTTPHandler(reg)
	}

	svc, cleanup, err := newService(ctx, cfg, recorder)
	if err != nil {
		return err
	}
	defer cleanup()

	d, err := daemon.New(daemon.Options{
		ConfigPath:     root.Config,
		Service:        svc,
		Recorder:       recorder,
		MetricsHandler: handler,
	})
	if err != nil {
		return err
	}

	slog.Info("Starting watch mode", logfields.Path(cfg.Path()), "metrics", cfg.Monitoring.Metrics.Enabled)
	if err := d.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	slog.Info("Watch stopped")
	return nil
}
