package commands

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"

	"git.home.luguber.info/inful/navbuilder/internal/eventstore"

	ferrors "git.home.luguber.info/inful/navbuilder/internal/foundation/errors"
)

// HistoryCmd implements the 'history' command.
type HistoryCmd struct {
	Limit int `short:"n" help:"Number of builds to list" default:"10"`
}

func (h *HistoryCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	if cfg.Events.Store == "" {
		return ferrors.ConfigError("events.store is not set; build history is not recorded").Build()
	}

	store, err := eventstore.NewSQLiteStore(cfg.Events.Store)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	builds, err := eventstore.History(context.Background(), store, h.Limit)
	if err != nil {
		return err
	}
	if len(builds) == 0 {
		_, _ = fmt.Fprintln(g.out(), "no builds recorded")
		return nil
	}

	tw := tabwriter.NewWriter(g.out(), 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "BUILD\tTRIGGER\tSTATUS\tSTARTED\tDURATION\tROUTES\tPAGES\tNOTE")
	for _, b := range builds {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
			shortID(b.BuildID),
			b.Trigger,
			b.Status,
			humanize.Time(b.StartedAt),
			formatDuration(b.Duration),
			b.NavbarRoutes+b.SidebarRoutes,
			humanize.Comma(int64(b.Pages)),
			historyNote(b),
		)
	}
	return tw.Flush()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func formatDuration(d time.Duration) string {
	if d == 0 {
		return "-"
	}
	return d.Round(time.Millisecond).String()
}

func historyNote(b eventstore.BuildSummary) string {
	switch {
	case b.Error != "":
		return fmt.Sprintf("%s: %s", b.FailedStage, b.Error)
	case b.DanglingLinks > 0:
		return fmt.Sprintf("%d dangling", b.DanglingLinks)
	case b.Warnings > 0:
		return english.Plural(b.Warnings, "warning", "")
	default:
		return ""
	}
}
