package nav

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	ferrors "git.home.luguber.info/inful/navbuilder/internal/foundation/errors"
)

func TestResolveNavbarScenarios(t *testing.T) {
	r := NewResolver(Options{})

	t.Run("bare string children", func(t *testing.T) {
		routes, err := r.ResolveNavbar([]Entry{Group("Posts", "/posts/", Path("flutter/"), Path("golang/"))})
		require.NoError(t, err)
		require.Len(t, routes, 1)
		children := routes[0].Children
		require.Len(t, children, 2)
		assert.Equal(t, "/posts/flutter/", children[0].Link)
		assert.Equal(t, "/posts/golang/", children[1].Link)
		assert.Equal(t, "Flutter", children[0].Text)
	})

	t.Run("link child under prefix", func(t *testing.T) {
		routes, err := r.ResolveNavbar([]Entry{Group("文章", "/posts/项目管理/", Link("目录", "0-目录"))})
		require.NoError(t, err)
		child := routes[0].Children[0]
		assert.Equal(t, "目录", child.Text)
		assert.Equal(t, "/posts/项目管理/0-目录", child.Link)
		assert.Equal(t, "navbar[0].children[0]", child.Source)
	})

	t.Run("top level string", func(t *testing.T) {
		routes, err := r.ResolveNavbar([]Entry{Path("/")})
		require.NoError(t, err)
		assert.Equal(t, "/", routes[0].Link)
		assert.Equal(t, "Home", routes[0].Text)
	})

	t.Run("nested groups compose prefixes", func(t *testing.T) {
		routes, err := r.ResolveNavbar([]Entry{
			Group("Docs", "/docs/", Group("Guide", "guide/", Group("Deep", "deep", Link("Leaf", "leaf.md")))),
		})
		require.NoError(t, err)
		leaf := routes[0].Children[0].Children[0].Children[0]
		assert.Equal(t, "/docs/guide/deep/leaf.md", leaf.Link)
		assert.Equal(t, "/docs/guide/deep", routes[0].Children[0].Children[0].Prefix)
	})

	t.Run("external links pass through", func(t *testing.T) {
		routes, err := r.ResolveNavbar([]Entry{Group("More", "/more/", Link("GitHub", "https://github.com/deantook"))})
		require.NoError(t, err)
		child := routes[0].Children[0]
		assert.Equal(t, "https://github.com/deantook", child.Link)
		assert.True(t, child.External)
		assert.Empty(t, Links(routes))
	})

	t.Run("group link resolves under its own prefix", func(t *testing.T) {
		g := Group("Guide", "/guide/", Path("install"))
		g.Link = "README.md"
		routes, err := r.ResolveNavbar([]Entry{g})
		require.NoError(t, err)
		assert.Equal(t, "/guide/README.md", routes[0].Link)
	})
}

func TestResolveNavbarErrors(t *testing.T) {
	r := NewResolver(Options{})

	t.Run("group without prefix and object children", func(t *testing.T) {
		routes, err := r.ResolveNavbar([]Entry{
			Path("/"),
			Group("Broken", "", Link("a", "a")),
		})
		require.Error(t, err)
		assert.Nil(t, routes, "no partial navigation on error")
		assert.ErrorIs(t, err, ErrMissingPrefix)
		assert.True(t, ferrors.HasCategory(err, ferrors.CategoryConfig))
		c, ok := ferrors.AsClassified(err)
		require.True(t, ok)
		entry, _ := c.Context().GetString("entry")
		assert.Equal(t, "navbar[1]", entry)
	})

	t.Run("group without prefix and only strings inherits", func(t *testing.T) {
		routes, err := r.ResolveNavbar([]Entry{Group("Posts", "/posts/", Group("Inner", "", Path("a"), Path("b/")))})
		require.NoError(t, err)
		inner := routes[0].Children[0]
		assert.Equal(t, "/posts/a", inner.Children[0].Link)
		assert.Equal(t, "/posts/b/", inner.Children[1].Link)
	})

	t.Run("link without target", func(t *testing.T) {
		_, err := r.ResolveNavbar([]Entry{Group("Posts", "/posts/", Link("orphan", "  "))})
		assert.ErrorIs(t, err, ErrMissingLink)
		c, _ := ferrors.AsClassified(err)
		entry, _ := c.Context().GetString("entry")
		assert.Equal(t, "navbar[0].children[0]", entry)
	})

	t.Run("malformed prefix", func(t *testing.T) {
		_, err := r.ResolveNavbar([]Entry{Group("Posts", "/posts//x/", Path("a"))})
		assert.ErrorIs(t, err, ErrEmptySegment)
	})

	t.Run("line numbers from yaml", func(t *testing.T) {
		var entries []Entry
		require.NoError(t, yaml.Unmarshal([]byte("- /\n- text: no link\n  icon: x\n"), &entries))
		_, err := r.ResolveNavbar(entries)
		require.Error(t, err)
		c, _ := ferrors.AsClassified(err)
		line, ok := c.Context().Get("line")
		require.True(t, ok)
		assert.Equal(t, 2, line)
	})
}

const originalSidebarYAML = `
/:
  - ""
  - text: 项目管理
    collapsible: true
    prefix: /posts/项目管理/
    children:
      - text: 目录
        link: 0-目录
      - text: 流程管理
        collapsible: true
        prefix: /posts/项目管理/01-流程管理
        children:
          - text: 项目规划
            link: 1-项目规划
          - text: 敏捷方法
            link: 2-敏捷方法
`

func TestResolveSidebar(t *testing.T) {
	var spec SidebarSpec
	require.NoError(t, yaml.Unmarshal([]byte(originalSidebarYAML), &spec))

	t.Run("absolute mode reproduces the live site", func(t *testing.T) {
		sidebars, err := NewResolver(Options{PrefixMode: PrefixAbsolute}).ResolveSidebar(spec)
		require.NoError(t, err)
		require.Len(t, sidebars, 1)
		routes := sidebars[0].Routes
		assert.Equal(t, "/", routes[0].Link)

		group := routes[1]
		assert.True(t, group.Collapsible)
		assert.False(t, group.Collapsed)
		assert.Equal(t, "/posts/项目管理/0-目录", group.Children[0].Link)
		assert.Equal(t, "/posts/项目管理/01-流程管理/1-项目规划", group.Children[1].Children[0].Link)
		assert.Equal(t, "/posts/项目管理/01-流程管理/2-敏捷方法", group.Children[1].Children[1].Link)
	})

	t.Run("compose mode joins every prefix", func(t *testing.T) {
		sidebars, err := NewResolver(Options{}).ResolveSidebar(spec)
		require.NoError(t, err)
		nested := sidebars[0].Routes[1].Children[1].Children[0]
		assert.Equal(t, "/posts/项目管理/posts/项目管理/01-流程管理/1-项目规划", nested.Link)
	})

	t.Run("defaults", func(t *testing.T) {
		sidebars, err := NewResolver(Options{}).ResolveSidebar(SidebarSpec{{Base: "/guide/", Entries: []Entry{
			Group("Plain", "a/", Path("x")),
		}}})
		require.NoError(t, err)
		g := sidebars[0].Routes[0]
		assert.False(t, g.Collapsible)
		assert.False(t, g.Collapsed)
		assert.Equal(t, "/guide/a/x", g.Children[0].Link)
	})

	t.Run("invalid and duplicate bases", func(t *testing.T) {
		_, err := NewResolver(Options{}).ResolveSidebar(SidebarSpec{{Base: "guide/"}})
		assert.ErrorIs(t, err, ErrInvalidSidebarKey)

		_, err = NewResolver(Options{}).ResolveSidebar(SidebarSpec{{Base: "/a/"}, {Base: "/a//"}})
		assert.ErrorIs(t, err, ErrDuplicateBase)
	})

	t.Run("titles come from lookup", func(t *testing.T) {
		titles := func(link string) (string, bool) {
			if link == "/" {
				return "deantook", true
			}
			return "", false
		}
		sidebars, err := NewResolver(Options{PrefixMode: PrefixAbsolute, Titles: titles}).ResolveSidebar(spec)
		require.NoError(t, err)
		assert.Equal(t, "deantook", sidebars[0].Routes[0].Text)
		assert.Equal(t, "目录", sidebars[0].Routes[1].Children[0].Text, "explicit text wins")
	})
}

func TestEmptyGroupKeepsChildrenInJSON(t *testing.T) {
	routes, err := NewResolver(Options{}).ResolveNavbar([]Entry{
		Path("/"),
		Group("Empty", "/posts/"),
	})
	require.NoError(t, err)
	require.True(t, routes[1].IsGroup())

	data, err := json.Marshal(routes)
	require.NoError(t, err)
	assert.JSONEq(t,
		`[{"text":"Home","link":"/","collapsible":false,"collapsed":false},`+
			`{"text":"Empty","prefix":"/posts/","collapsible":false,"collapsed":false,"children":[]}]`,
		string(data))

	var back []ResolvedRoute
	require.NoError(t, json.Unmarshal(data, &back))
	assert.False(t, back[0].IsGroup())
	assert.True(t, back[1].IsGroup())
}

func TestSidebarsForAndJSON(t *testing.T) {
	sidebars := Sidebars{
		{Base: "/", Routes: []ResolvedRoute{{Text: "Home", Link: "/"}}},
		{Base: "/posts/", Routes: []ResolvedRoute{{Text: "Posts", Link: "/posts/"}}},
	}
	sb, ok := sidebars.For("/posts/a")
	require.True(t, ok)
	assert.Equal(t, "/posts/", sb.Base)
	sb, _ = sidebars.For("/posts")
	assert.Equal(t, "/posts/", sb.Base)
	sb, _ = sidebars.For("/notes/redis/")
	assert.Equal(t, "/", sb.Base)

	_, ok = Sidebars{{Base: "/posts/"}}.For("/notes/")
	assert.False(t, ok)

	unslashed := Sidebars{{Base: "/"}, {Base: "/posts"}}
	sb, _ = unslashed.For("/postscript/x")
	assert.Equal(t, "/", sb.Base, "base must match whole segments")
	sb, _ = unslashed.For("/posts/a")
	assert.Equal(t, "/posts", sb.Base)
	sb, _ = unslashed.For("/posts")
	assert.Equal(t, "/posts", sb.Base)
	_, ok = Sidebars{{Base: "/posts/"}}.For("/postscript/x")
	assert.False(t, ok)

	data, err := json.Marshal(sidebars)
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"/":[{"text":"Home","link":"/","collapsible":false,"collapsed":false}],"/posts/":[{"text":"Posts","link":"/posts/","collapsible":false,"collapsed":false}]}`,
		string(data))
	assert.Equal(t, byte('{'), data[0])
	assert.Contains(t, string(data), `{"/":`, "configuration order preserved")
}
