package commands

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/navbuilder/internal/build"
	"git.home.luguber.info/inful/navbuilder/internal/content"
	"git.home.luguber.info/inful/navbuilder/internal/logfields"
	"git.home.luguber.info/inful/navbuilder/internal/pagemeta"

	ferrors "git.home.luguber.info/inful/navbuilder/internal/foundation/errors"
)

// PageCmd implements the 'page' command.
type PageCmd struct {
	Target string `arg:"" name:"page" help:"Route (/posts/a) or file path of the page"`
}

func (p *PageCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	if cfg.Content.Dir == "" {
		return ferrors.ConfigError("content.dir is not set").Build()
	}

	ix, err := content.Discover(cfg.Content.Dir, cfg.Content.Extensions)
	if err != nil {
		return err
	}
	page, ok := findPage(ix, p.Target)
	if !ok {
		return ferrors.NotFoundError("page not found in content").WithContext("page", p.Target).Build()
	}

	slog.Debug("Collecting page metadata", logfields.Page(page.Route), logfields.File(page.Path))
	opts, warning := build.MetadataOptions(cfg, ix.Root(), slog.Default())
	if warning != "" {
		slog.Warn(warning)
	}
	pd, err := pagemeta.NewCollector(opts).Page(page)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(pd, "", "  ")
	if err != nil {
		return ferrors.InternalError("encode page data").WithCause(err).Build()
	}
	_, err = fmt.Fprintln(g.out(), string(data))
	return err
}

// findPage accepts a route, a path relative to the content root or a file
// system path inside it.
func findPage(ix *content.Index, target string) (*content.Page, bool) {
	if strings.HasPrefix(target, "/") {
		if page, ok := ix.Lookup(target); ok {
			return page, true
		}
	}
	rel := target
	abs, err1 := filepath.Abs(target)
	rootAbs, err2 := filepath.Abs(ix.Root())
	if err1 == nil && err2 == nil {
		if r, err := filepath.Rel(rootAbs, abs); err == nil && !strings.HasPrefix(r, "..") {
			rel = r
		}
	}
	return ix.Lookup(content.RouteFor(filepath.ToSlash(rel)))
}
