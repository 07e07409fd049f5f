package content

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"

	"git.home.luguber.info/inful/navbuilder/internal/frontmatter"
	"git.home.luguber.info/inful/navbuilder/internal/logfields"
	"git.home.luguber.info/inful/navbuilder/internal/markdown"

	ferrors "git.home.luguber.info/inful/navbuilder/internal/foundation/errors"
)

// Index is the set of pages below a content root, keyed by route.
type Index struct {
	root    string
	pages   []*Page
	byRoute map[string]*Page
}

var skippedDirs = map[string]struct{}{"node_modules": {}}

// Discover walks root and indexes every file whose extension is in exts.
// Hidden files and directories and node_modules are skipped.
func Discover(root string, exts []string) (*Index, error) {
	if st, err := os.Stat(root); err != nil || !st.IsDir() {
		return nil, ferrors.ContentError("content directory not found").
			WithCause(errors.Join(ErrContentDirNotFound, err)).WithContext("path", root).Build()
	}
	extSet := make(map[string]struct{}, len(exts))
	for _, e := range exts {
		extSet[strings.ToLower(e)] = struct{}{}
	}

	ix := &Index{root: root, byRoute: map[string]*Page{}}
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if d.IsDir() {
			if p != root && (strings.HasPrefix(name, ".") || isSkipped(name)) {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, ".") {
			return nil
		}
		if _, ok := extSet[strings.ToLower(filepath.Ext(name))]; !ok {
			return nil
		}
		page, err := loadPage(root, p)
		if err != nil {
			return err
		}
		if prev, dup := ix.byRoute[page.Route]; dup {
			return ferrors.ContentError("two files map to the same route").
				WithCause(ErrPathCollision).
				WithContext("route", page.Route).
				WithContext("files", prev.RelPath+", "+page.RelPath).Build()
		}
		ix.byRoute[page.Route] = page
		ix.pages = append(ix.pages, page)
		slog.Debug("Indexed page", logfields.File(page.RelPath), logfields.Route(page.Route))
		return nil
	})
	if err != nil {
		if ferrors.IsClassified(err) {
			return nil, err
		}
		return nil, ferrors.FileSystemError("walk content directory").
			WithCause(errors.Join(ErrWalkFailed, err)).WithContext("path", root).Build()
	}
	sort.Slice(ix.pages, func(i, j int) bool { return ix.pages[i].Route < ix.pages[j].Route })
	slog.Info("Content indexed", logfields.Path(root), logfields.Count(len(ix.pages)))
	return ix, nil
}

func isSkipped(name string) bool {
	_, ok := skippedDirs[name]
	return ok
}

func loadPage(root, p string) (*Page, error) {
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, ferrors.FileSystemError("read page").WithCause(err).WithContext("file", p).Build()
	}
	rel, err := filepath.Rel(root, p)
	if err != nil {
		return nil, ferrors.InternalError("relative page path").WithCause(err).WithContext("file", p).Build()
	}
	rel = norm.NFC.String(filepath.ToSlash(rel))

	doc, err := frontmatter.Parse(data)
	if err != nil {
		return nil, ferrors.ContentError("invalid frontmatter").WithCause(err).WithContext("file", rel).Build()
	}
	sum := sha256.Sum256(data)
	page := &Page{
		Route:       RouteFor(rel),
		RelPath:     rel,
		Path:        p,
		Title:       doc.String("title"),
		Frontmatter: doc.Fields,
		Body:        doc.Body,
		Draft:       doc.Bool("draft", false),
		Indexed:     doc.Bool("index", true),
		Hash:        hex.EncodeToString(sum[:]),
	}
	if page.Title == "" {
		page.Title = markdown.Title(doc.Body)
	}
	return page, nil
}

// Root returns the indexed directory.
func (ix *Index) Root() string { return ix.root }

// Pages returns all pages sorted by route.
func (ix *Index) Pages() []*Page { return ix.pages }

// Len returns the number of indexed pages.
func (ix *Index) Len() int { return len(ix.pages) }

// Lookup finds the page a resolved link points at. The link is normalized
// first: query and fragment dropped, percent-encoding undone, NFC applied and
// .md/.html stripped. A link to a directory matches its index page with or
// without the trailing slash.
func (ix *Index) Lookup(link string) (*Page, bool) {
	route, ok := NormalizeLink(link)
	if !ok {
		return nil, false
	}
	if p, ok := ix.byRoute[route]; ok {
		return p, true
	}
	if !strings.HasSuffix(route, "/") {
		p, ok := ix.byRoute[route+"/"]
		return p, ok
	}
	return nil, false
}

// HasSection reports whether prefix names a section of the site: a page at
// the prefix route itself or at least one page below it.
func (ix *Index) HasSection(prefix string) bool {
	if _, ok := ix.Lookup(prefix); ok {
		return true
	}
	route, ok := NormalizeLink(prefix)
	if !ok {
		return false
	}
	if !strings.HasSuffix(route, "/") {
		route += "/"
	}
	for _, p := range ix.pages {
		if strings.HasPrefix(p.Route, route) {
			return true
		}
	}
	return false
}

// Title implements nav.TitleLookup.
func (ix *Index) Title(link string) (string, bool) {
	p, ok := ix.Lookup(link)
	if !ok || p.Title == "" {
		return "", false
	}
	return p.Title, true
}

// Hash fingerprints the whole tree: routes and file contents.
func (ix *Index) Hash() string {
	h := sha256.New()
	for _, p := range ix.pages {
		fmt.Fprintf(h, "%s\x00%s\n", p.Route, p.Hash)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// NormalizeLink reduces an internal link to the route form used by the index.
// It reports false for links that cannot name a page.
func NormalizeLink(link string) (string, bool) {
	if i := strings.IndexAny(link, "?#"); i >= 0 {
		link = link[:i]
	}
	if link == "" || !strings.HasPrefix(link, "/") {
		return "", false
	}
	if unescaped, err := url.PathUnescape(link); err == nil {
		link = unescaped
	}
	link = norm.NFC.String(link)
	if strings.HasSuffix(link, "/") {
		return link, true
	}
	lower := strings.ToLower(link)
	for _, ext := range []string{".md", ".html"} {
		if strings.HasSuffix(lower, ext) {
			link = link[:len(link)-len(ext)]
			break
		}
	}
	return RouteFor(strings.TrimPrefix(link, "/") + ".md"), true
}
