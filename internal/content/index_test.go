package content

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/unicode/norm"

	ferrors "git.home.luguber.info/inful/navbuilder/internal/foundation/errors"
)

func writePage(t *testing.T, root, rel, content string) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
}

func siteTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writePage(t, root, "README.md", "---\ntitle: 博客主页\n---\n# Home\n")
	writePage(t, root, "posts/项目管理/0-目录.md", "# 目录\n\n正文\n")
	writePage(t, root, "posts/项目管理/01-流程管理/1-项目规划.md", "---\ntitle: 项目规划\ndraft: true\n---\n")
	writePage(t, root, "posts/flutter/index.md", "---\nindex: false\n---\nno heading\n")
	writePage(t, root, ".vuepress/config.md", "# hidden\n")
	writePage(t, root, "node_modules/pkg/README.md", "# dep\n")
	writePage(t, root, "posts/image.png", "png")
	return root
}

func TestRouteFor(t *testing.T) {
	tests := map[string]string{
		"README.md":          "/",
		"index.md":           "/",
		"a/README.md":        "/a/",
		"a/Index.md":         "/a/",
		"a/b.md":             "/a/b",
		"posts/v1.2.md":      "/posts/v1.2",
		"posts/项目管理/0-目录.md": "/posts/项目管理/0-目录",
	}
	for rel, want := range tests {
		assert.Equal(t, want, RouteFor(rel), rel)
	}
}

func TestDiscover(t *testing.T) {
	ix, err := Discover(siteTree(t), []string{".md"})
	require.NoError(t, err)

	routes := make([]string, 0, ix.Len())
	for _, p := range ix.Pages() {
		routes = append(routes, p.Route)
	}
	assert.Equal(t, []string{
		"/",
		"/posts/flutter/",
		"/posts/项目管理/0-目录",
		"/posts/项目管理/01-流程管理/1-项目规划",
	}, routes)

	home, ok := ix.Lookup("/")
	require.True(t, ok)
	assert.Equal(t, "博客主页", home.Title)
	assert.True(t, home.IsDirIndex())

	toc, ok := ix.Lookup("/posts/项目管理/0-目录")
	require.True(t, ok)
	assert.Equal(t, "目录", toc.Title, "falls back to the first heading")
	assert.Equal(t, "posts/项目管理/0-目录.md", toc.RelPath)

	plan, _ := ix.Lookup("/posts/项目管理/01-流程管理/1-项目规划")
	assert.True(t, plan.Draft)
	flutter, _ := ix.Lookup("/posts/flutter/")
	assert.False(t, flutter.Indexed)
	assert.Empty(t, flutter.Title)
}

func TestLookupNormalization(t *testing.T) {
	ix, err := Discover(siteTree(t), []string{".md"})
	require.NoError(t, err)

	for _, link := range []string{
		"/posts/项目管理/0-目录.md",
		"/posts/项目管理/0-目录.html",
		"/posts/项目管理/0-目录#section",
		"/posts/%E9%A1%B9%E7%9B%AE%E7%AE%A1%E7%90%86/0-%E7%9B%AE%E5%BD%95",
		norm.NFD.String("/posts/项目管理/0-目录"),
	} {
		p, ok := ix.Lookup(link)
		if assert.True(t, ok, link) {
			assert.Equal(t, "/posts/项目管理/0-目录", p.Route)
		}
	}

	_, ok := ix.Lookup("/posts/flutter")
	assert.True(t, ok, "directory without trailing slash")
	_, ok = ix.Lookup("/posts/flutter/README.md")
	assert.True(t, ok)
	_, ok = ix.Lookup("/posts/missing")
	assert.False(t, ok)
	_, ok = ix.Lookup("relative/link")
	assert.False(t, ok)
}

func TestHasSection(t *testing.T) {
	ix, err := Discover(siteTree(t), []string{".md"})
	require.NoError(t, err)

	for _, prefix := range []string{"/", "/posts/", "/posts", "/posts/项目管理/01-流程管理/", "/posts/flutter/"} {
		assert.True(t, ix.HasSection(prefix), prefix)
	}
	for _, prefix := range []string{"/no-such-section/", "/post/", "/posts/项目", "relative/"} {
		assert.False(t, ix.HasSection(prefix), prefix)
	}
}

func TestTitleLookup(t *testing.T) {
	ix, err := Discover(siteTree(t), []string{".md"})
	require.NoError(t, err)
	title, ok := ix.Title("/")
	assert.True(t, ok)
	assert.Equal(t, "博客主页", title)
	_, ok = ix.Title("/posts/flutter/")
	assert.False(t, ok, "pages without a title are not a title source")
}

func TestDiscoverErrors(t *testing.T) {
	_, err := Discover(filepath.Join(t.TempDir(), "missing"), []string{".md"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrContentDirNotFound)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryContent))

	root := t.TempDir()
	writePage(t, root, "a/README.md", "# a\n")
	writePage(t, root, "a/index.md", "# a\n")
	_, err = Discover(root, []string{".md"})
	assert.ErrorIs(t, err, ErrPathCollision)

	root = t.TempDir()
	writePage(t, root, "bad.md", "---\ntitle: [unclosed\n---\n")
	_, err = Discover(root, []string{".md"})
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryContent))
}

func TestHashChangesWithContent(t *testing.T) {
	root := siteTree(t)
	a, err := Discover(root, []string{".md"})
	require.NoError(t, err)
	b, err := Discover(root, []string{".md"})
	require.NoError(t, err)
	assert.Equal(t, a.Hash(), b.Hash())

	writePage(t, root, "posts/flutter/index.md", "changed\n")
	c, err := Discover(root, []string{".md"})
	require.NoError(t, err)
	assert.NotEqual(t, a.Hash(), c.Hash())
}
