package content

import (
	"path"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Page is one Markdown file in the content tree.
type Page struct {
	// Route is the site path the page is served at: "/a/b" for a/b.md and
	// "/a/" for a/README.md or a/index.md.
	Route string
	// RelPath is the slash-separated path relative to the content root.
	RelPath string
	// Path is the absolute file path.
	Path string
	// Title is the frontmatter title, else the first level-one heading.
	Title       string
	Frontmatter map[string]any
	Body        []byte
	// Draft is set by `draft: true`.
	Draft bool
	// Indexed is false when frontmatter says `index: false`.
	Indexed bool
	// Hash is the sha256 of the raw file.
	Hash string
}

// IsDirIndex reports whether the page is the index page of its directory.
func (p *Page) IsDirIndex() bool { return strings.HasSuffix(p.Route, "/") }

// RouteFor maps a slash-separated relative file path to its route.
func RouteFor(rel string) string {
	rel = norm.NFC.String(strings.TrimPrefix(path.Clean("/"+rel), "/"))
	dir, file := path.Split(rel)
	name := strings.TrimSuffix(file, path.Ext(file))
	if strings.EqualFold(name, "readme") || strings.EqualFold(name, "index") {
		return "/" + dir
	}
	return "/" + dir + name
}
