package build

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/navbuilder/internal/content"
	"git.home.luguber.info/inful/navbuilder/internal/nav"
)

func TestCheckLinks(t *testing.T) {
	ix, err := content.Discover(contentTree(t), []string{".md"})
	require.NoError(t, err)

	navbar := []nav.ResolvedRoute{
		{Text: "Home", Link: "/", Source: "navbar[0]"},
		{Text: "Ext", Link: "https://example.com", External: true, Source: "navbar[1]"},
		{Text: "Posts", Prefix: "/posts/", Source: "navbar[2]", Children: []nav.ResolvedRoute{
			{Text: "目录", Link: "/posts/项目管理/0-目录.html", Source: "navbar[2].children[0]"},
			{Text: "Gone", Link: "/posts/gone", Source: "navbar[2].children[1]"},
		}},
	}
	sidebars := nav.Sidebars{{Base: "/posts/", Routes: []nav.ResolvedRoute{
		{Text: "Dir", Link: "/posts/项目管理/01-流程管理/1-项目规划#top", Source: `sidebar["/posts/"][0]`},
		{Text: "Nope", Link: "/posts/nope/", Source: `sidebar["/posts/"][1]`},
	}}}

	got := CheckLinks(ix, navbar, sidebars)
	assert.Equal(t, []DanglingLink{
		{Link: "/posts/gone", Entry: "navbar[2].children[1]"},
		{Link: "/posts/nope/", Entry: `sidebar["/posts/"][1]`},
	}, got)
}

func TestCheckLinks_GroupPrefix(t *testing.T) {
	ix, err := content.Discover(contentTree(t), []string{".md"})
	require.NoError(t, err)

	navbar := []nav.ResolvedRoute{
		{Text: "Home", Link: "/", Source: "navbar[0]"},
		{Text: "Missing", Prefix: "/no-such-section/", Source: "navbar[1]", Children: []nav.ResolvedRoute{
			{Text: "ext", Link: "https://example.com", External: true, Source: "navbar[1].children[0]"},
		}},
		{Text: "Empty", Prefix: "/empty/", Source: "navbar[2]", Children: []nav.ResolvedRoute{}},
		{Text: "项目管理", Prefix: "/posts/项目管理/", Source: "navbar[3]", Children: []nav.ResolvedRoute{
			{Text: "流程管理", Prefix: "/posts/项目管理/01-流程管理/", Source: "navbar[3].children[0]", Children: []nav.ResolvedRoute{}},
		}},
	}

	got := CheckLinks(ix, navbar, nil)
	assert.Equal(t, []DanglingLink{
		{Link: "/no-such-section/", Entry: "navbar[1]"},
		{Link: "/empty/", Entry: "navbar[2]"},
	}, got)
}

func TestCleanLink(t *testing.T) {
	tests := map[string]string{
		"/":                 "/",
		"/a/b.md":           "/a/b",
		"/a/b.html?x=1":     "/a/b?x=1",
		"/a/README.md":      "/a/",
		"/a/index.html#top": "/a/#top",
		"/a/b":              "/a/b",
		"relative":          "relative",
	}
	for in, want := range tests {
		assert.Equal(t, want, cleanLink(in), in)
	}
}

func TestCountRoutes(t *testing.T) {
	routes := []nav.ResolvedRoute{
		{Link: "/"},
		{Prefix: "/a/", Children: []nav.ResolvedRoute{{Link: "/a/1"}, {Link: "/a/2"}}},
	}
	assert.Equal(t, 4, countRoutes(routes))
	assert.Equal(t, 0, countRoutes(nil))
}
