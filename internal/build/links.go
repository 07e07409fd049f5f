package build

import (
	"fmt"
	"strings"

	"git.home.luguber.info/inful/navbuilder/internal/content"
	"git.home.luguber.info/inful/navbuilder/internal/nav"

	ferrors "git.home.luguber.info/inful/navbuilder/internal/foundation/errors"
)

// DanglingLink is a resolved internal link with no page behind it.
type DanglingLink struct {
	Link  string `json:"link"`
	Entry string `json:"entry"`
}

func (d DanglingLink) String() string { return d.Entry + ": " + d.Link }

// CheckLinks returns every internal link of the nav bar and sidebars that
// does not reach an indexed page, in configuration order. A group prefix
// must name a section: an index page at the prefix or pages below it.
func CheckLinks(ix *content.Index, navbar []nav.ResolvedRoute, sidebars nav.Sidebars) []DanglingLink {
	var out []DanglingLink
	check := func(routes []nav.ResolvedRoute) {
		nav.Walk(routes, func(r nav.ResolvedRoute) bool {
			if r.IsGroup() && r.Prefix != "" && !nav.IsExternal(r.Prefix) && !ix.HasSection(r.Prefix) {
				out = append(out, DanglingLink{Link: r.Prefix, Entry: r.Source})
			}
			if r.Link == "" || r.External {
				return true
			}
			if _, ok := ix.Lookup(r.Link); !ok {
				out = append(out, DanglingLink{Link: r.Link, Entry: r.Source})
			}
			return true
		})
	}
	check(navbar)
	for _, sb := range sidebars {
		check(sb.Routes)
	}
	return out
}

func danglingError(links []DanglingLink) error {
	parts := make([]string, len(links))
	for i, l := range links {
		parts[i] = l.String()
	}
	return ferrors.ConfigError(fmt.Sprintf("%d dangling link(s): %s", len(links), strings.Join(parts, "; "))).
		WithCause(ErrDanglingLinks).
		WithContext("entry", links[0].Entry).
		Fatal().
		Build()
}

// cleanLinks rewrites internal links to their route form, dropping .md and
// .html suffixes and README/index file names. Query and fragment are kept.
func cleanLinks(routes []nav.ResolvedRoute) []nav.ResolvedRoute {
	if routes == nil {
		return nil
	}
	out := make([]nav.ResolvedRoute, len(routes))
	for i, r := range routes {
		if r.Link != "" && !r.External {
			r.Link = cleanLink(r.Link)
		}
		r.Children = cleanLinks(r.Children)
		out[i] = r
	}
	return out
}

func cleanLink(link string) string {
	path, tail := link, ""
	if i := strings.IndexAny(link, "?#"); i >= 0 {
		path, tail = link[:i], link[i:]
	}
	route, ok := content.NormalizeLink(path)
	if !ok {
		return link
	}
	return route + tail
}

func countRoutes(routes []nav.ResolvedRoute) int {
	n := 0
	nav.Walk(routes, func(nav.ResolvedRoute) bool {
		n++
		return true
	})
	return n
}
