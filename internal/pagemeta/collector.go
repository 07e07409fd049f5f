package pagemeta

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"git.home.luguber.info/inful/navbuilder/internal/content"
	"git.home.luguber.info/inful/navbuilder/internal/gitinfo"
	"git.home.luguber.info/inful/navbuilder/internal/logfields"
	"git.home.luguber.info/inful/navbuilder/internal/markdown"

	ferrors "git.home.luguber.info/inful/navbuilder/internal/foundation/errors"
)

// ErrKeyCollision is returned when two routes hash to the same page key.
var ErrKeyCollision = errors.New("page key collision")

// Options configures a Collector.
type Options struct {
	Site           SiteInfo
	WordsPerMinute int
	ExcerptLength  int
	// Concurrency bounds parallel page processing; 0 means GOMAXPROCS.
	Concurrency int
	// Git supplies history; nil leaves PageData.Git empty.
	Git *gitinfo.Repo
}

// Collector computes PageData for content pages.
type Collector struct {
	opts Options
}

// NewCollector creates a collector.
func NewCollector(opts Options) *Collector {
	if opts.Concurrency <= 0 {
		opts.Concurrency = runtime.GOMAXPROCS(0)
	}
	return &Collector{opts: opts}
}

// Page computes the metadata of one page.
func (c *Collector) Page(p *content.Page) (PageData, error) {
	pd := PageData{
		Key:              KeyFor(p.Route),
		Path:             p.Route,
		Title:            p.Title,
		Lang:             c.opts.Site.Lang,
		Frontmatter:      p.Frontmatter,
		FilePathRelative: p.RelPath,
	}
	if pd.Frontmatter == nil {
		pd.Frontmatter = map[string]any{}
	}
	if lang, ok := p.Frontmatter["lang"].(string); ok && lang != "" {
		pd.Lang = lang
	}
	if pd.Title == "" {
		pd.Title = titleFromPath(p.RelPath)
	}
	pd.Headers = nestHeaders(markdown.Headings(p.Body, 3))

	rendered, err := markdown.RenderHTML(p.Body)
	if err != nil {
		return PageData{}, ferrors.ContentError("render page").WithCause(err).WithContext("file", p.RelPath).Build()
	}
	pd.ReadingTime = ReadingTimeFor(CountWords(rendered), c.opts.WordsPerMinute)
	pd.Excerpt, err = Excerpt(rendered, c.opts.ExcerptLength)
	if err != nil {
		return PageData{}, ferrors.ContentError("extract excerpt").WithCause(err).WithContext("file", p.RelPath).Build()
	}
	pd.Description, _ = p.Frontmatter["description"].(string)
	if pd.Description == "" {
		pd.Description = pd.Excerpt
	}

	pd.Fingerprint, err = Fingerprint(p.Frontmatter, p.Body)
	if err != nil {
		return PageData{}, ferrors.ContentError("fingerprint page").WithCause(err).WithContext("file", p.RelPath).Build()
	}

	if c.opts.Git != nil {
		info, ok, err := c.opts.Git.File(p.Path)
		switch {
		case err != nil:
			slog.Warn("Git history unavailable", logfields.File(p.RelPath), logfields.Error(err))
		case ok:
			pd.Git = &info
		}
	}

	pd.Head = HeadTags(c.opts.Site, pd)
	return pd, nil
}

// Collect computes metadata for every page concurrently. Results are sorted
// by route. The first failure cancels the remaining work.
func (c *Collector) Collect(ctx context.Context, pages []*content.Page) ([]PageData, error) {
	out := make([]PageData, len(pages))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.opts.Concurrency)
	for i, p := range pages {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			pd, err := c.Page(p)
			if err != nil {
				return err
			}
			out[i] = pd
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	seen := make(map[string]string, len(out))
	for _, pd := range out {
		if other, dup := seen[pd.Key]; dup {
			return nil, ferrors.BuildError("two pages share a key").WithCause(ErrKeyCollision).
				WithContext("key", pd.Key).WithContext("routes", other+", "+pd.Path).Build()
		}
		seen[pd.Key] = pd.Path
	}
	return out, nil
}

// Summaries returns the pages.json index for collected pages.
func Summaries(pages []PageData) []Summary {
	out := make([]Summary, len(pages))
	for i, pd := range pages {
		out[i] = Summary{Key: pd.Key, Path: pd.Path, Title: pd.Title}
	}
	return out
}

func nestHeaders(hs []markdown.Heading) []Header {
	out := []Header{}
	for _, h := range hs {
		header := Header{Level: h.Level, Title: h.Title, Slug: h.Slug, Link: "#" + h.Slug, Children: []Header{}}
		switch {
		case h.Level == 2:
			out = append(out, header)
		case h.Level == 3 && len(out) > 0:
			last := &out[len(out)-1]
			last.Children = append(last.Children, header)
		case h.Level == 3:
			out = append(out, header)
		}
	}
	return out
}

// titleFromPath derives a title from a file name when a page has neither a
// frontmatter title nor a heading.
func titleFromPath(rel string) string {
	name := rel[strings.LastIndex(rel, "/")+1:]
	if i := strings.LastIndex(name, "."); i > 0 {
		name = name[:i]
	}
	if strings.EqualFold(name, "readme") || strings.EqualFold(name, "index") {
		dir := strings.TrimSuffix(rel, "/"+rel[strings.LastIndex(rel, "/")+1:])
		if dir == rel {
			return "Home"
		}
		return dir[strings.LastIndex(dir, "/")+1:]
	}
	return name
}
