package nav

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// TitleLookup returns the page title for a resolved internal link.
type TitleLookup func(link string) (string, bool)

// Options controls resolution.
type Options struct {
	PrefixMode PrefixMode
	// Titles fills the text of entries that do not set one.
	Titles TitleLookup
	// Lang drives title-casing of texts derived from path segments.
	Lang language.Tag
}

// Resolver turns nav bar and sidebar specifications into route trees. It holds
// no state between calls.
type Resolver struct {
	opts Options
}

// NewResolver creates a resolver. An empty PrefixMode means PrefixCompose.
func NewResolver(opts Options) *Resolver {
	if opts.PrefixMode == "" {
		opts.PrefixMode = PrefixCompose
	}
	return &Resolver{opts: opts}
}

// resolution carries per-call state; cases.Caser is not safe for reuse across
// goroutines so each call builds its own.
type resolution struct {
	opts  Options
	caser cases.Caser
}

func (r *Resolver) begin() *resolution {
	return &resolution{opts: r.opts, caser: cases.Title(r.opts.Lang)}
}

// ResolveNavbar resolves a nav bar. Top-level entries are resolved against the
// site root.
func (r *Resolver) ResolveNavbar(entries []Entry) ([]ResolvedRoute, error) {
	return r.begin().entries(entries, "", "navbar")
}

// ResolveSidebar resolves every section of a sidebar spec. Each section's base
// is the initial prefix for its entries.
func (r *Resolver) ResolveSidebar(spec SidebarSpec) (Sidebars, error) {
	res := r.begin()
	seen := make(map[string]struct{}, len(spec))
	out := make(Sidebars, 0, len(spec))
	for _, sec := range spec {
		loc := fmt.Sprintf("sidebar[%q]", sec.Base)
		if !strings.HasPrefix(sec.Base, "/") {
			return nil, entryError(ErrInvalidSidebarKey, loc, sec.Pos, "invalid sidebar base")
		}
		base, err := JoinPath("", sec.Base, PrefixCompose)
		if err != nil {
			return nil, entryError(err, loc, sec.Pos, "invalid sidebar base")
		}
		if _, dup := seen[base]; dup {
			return nil, entryError(ErrDuplicateBase, loc, sec.Pos, "duplicate sidebar base")
		}
		seen[base] = struct{}{}

		routes, err := res.entries(sec.Entries, base, loc)
		if err != nil {
			return nil, err
		}
		out = append(out, Sidebar{Base: base, Routes: routes})
	}
	return out, nil
}

func (res *resolution) entries(entries []Entry, prefix, loc string) ([]ResolvedRoute, error) {
	out := make([]ResolvedRoute, 0, len(entries))
	for i, e := range entries {
		route, err := res.entry(e, prefix, fmt.Sprintf("%s[%d]", loc, i))
		if err != nil {
			return nil, err
		}
		out = append(out, route)
	}
	return out, nil
}

func (res *resolution) entry(e Entry, prefix, loc string) (ResolvedRoute, error) {
	switch e.Kind {
	case KindPath:
		return res.leaf(e, e.Link, prefix, loc)
	case KindLink:
		if strings.TrimSpace(e.Link) == "" {
			return ResolvedRoute{}, entryError(ErrMissingLink, loc, e.Pos, "link entry is missing its link")
		}
		return res.leaf(e, e.Link, prefix, loc)
	case KindGroup:
		return res.group(e, prefix, loc)
	default:
		return ResolvedRoute{}, entryError(ErrEmptyEntry, loc, e.Pos, "entry is empty")
	}
}

func (res *resolution) leaf(e Entry, target, prefix, loc string) (ResolvedRoute, error) {
	route := ResolvedRoute{
		Text:        e.Text,
		Icon:        e.Icon,
		Collapsible: deref(e.Collapsible),
		Collapsed:   deref(e.Collapsed),
		Source:      loc,
	}
	if IsExternal(target) {
		route.Link = target
		route.External = true
		if route.Text == "" {
			route.Text = target
		}
		return route, nil
	}
	link, err := JoinPath(prefix, target, res.opts.PrefixMode)
	if err != nil {
		return ResolvedRoute{}, entryError(err, loc, e.Pos, fmt.Sprintf("malformed link %q", target))
	}
	route.Link = link
	if route.Text == "" {
		route.Text = res.text(link)
	}
	return route, nil
}

func (res *resolution) group(e Entry, prefix, loc string) (ResolvedRoute, error) {
	if strings.TrimSpace(e.Prefix) == "" {
		for _, c := range e.Children {
			if c.Kind != KindPath {
				return ResolvedRoute{}, entryError(ErrMissingPrefix, loc, e.Pos, "group is missing its prefix")
			}
		}
	}
	childPrefix, err := JoinPath(prefix, e.Prefix, res.opts.PrefixMode)
	if err != nil {
		return ResolvedRoute{}, entryError(err, loc, e.Pos, fmt.Sprintf("malformed prefix %q", e.Prefix))
	}

	route := ResolvedRoute{
		Text:        e.Text,
		Icon:        e.Icon,
		Prefix:      childPrefix,
		Collapsible: deref(e.Collapsible),
		Collapsed:   deref(e.Collapsed),
		Source:      loc,
	}
	if e.Link != "" {
		if IsExternal(e.Link) {
			route.Link, route.External = e.Link, true
		} else if route.Link, err = JoinPath(childPrefix, e.Link, res.opts.PrefixMode); err != nil {
			return ResolvedRoute{}, entryError(err, loc, e.Pos, fmt.Sprintf("malformed link %q", e.Link))
		}
	}
	if route.Text == "" {
		route.Text = res.text(childPrefix)
	}

	children, err := res.entries(e.Children, childPrefix, loc+".children")
	if err != nil {
		return ResolvedRoute{}, err
	}
	route.Children = children
	return route, nil
}

// text picks the page title for link, falling back to its last path segment.
func (res *resolution) text(link string) string {
	if res.opts.Titles != nil {
		if title, ok := res.opts.Titles(link); ok && title != "" {
			return title
		}
	}
	trimmed := strings.Trim(link, "/")
	if trimmed == "" {
		return "Home"
	}
	seg := trimmed[strings.LastIndex(trimmed, "/")+1:]
	seg = strings.TrimSuffix(strings.TrimSuffix(seg, ".md"), ".html")
	seg = strings.NewReplacer("-", " ", "_", " ").Replace(seg)
	return res.caser.String(seg)
}

func deref(b *bool) bool { return b != nil && *b }
