package commands

import (
	"context"
	"fmt"
	"log/slog"

	"git.home.luguber.info/inful/navbuilder/internal/build"
	"git.home.luguber.info/inful/navbuilder/internal/logfields"
	"git.home.luguber.info/inful/navbuilder/internal/metrics"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Output string `short:"o" help:"Override output.directory"`
	DryRun bool   `name:"dry-run" help:"Run every stage except writing output"`
}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	if b.Output != "" {
		cfg.Output.Directory = b.Output
	}

	ctx := context.Background()
	svc, cleanup, err := newService(ctx, cfg, metrics.NoopRecorder{})
	if err != nil {
		return err
	}
	defer cleanup()

	slog.Info("Starting navigation build", logfields.Path(cfg.Path()), "output", cfg.Output.Directory, "dry_run", b.DryRun)
	res, err := svc.Run(ctx, build.Request{Config: cfg, Trigger: "cli", DryRun: b.DryRun})
	printDangling(g, res.Dangling)
	if res.Report != nil {
		_, _ = fmt.Fprintln(g.out(), res.Report.Summary())
	}
	return err
}

func printDangling(g *Global, dangling []build.DanglingLink) {
	for _, d := range dangling {
		_, _ = fmt.Fprintf(g.out(), "dangling link %s\n", d)
	}
}
