package nav

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const navbarYAML = `
- /
- text: 文章
  prefix: /posts/
  children:
    - text: 项目管理
      link: 项目管理/0-目录
`

func TestEntryUnmarshalYAML(t *testing.T) {
	var entries []Entry
	require.NoError(t, yaml.Unmarshal([]byte(navbarYAML), &entries))
	require.Len(t, entries, 2)

	assert.Equal(t, KindPath, entries[0].Kind)
	assert.Equal(t, "/", entries[0].Link)
	assert.Equal(t, 2, entries[0].Pos.Line)

	group := entries[1]
	assert.Equal(t, KindGroup, group.Kind)
	assert.Equal(t, "/posts/", group.Prefix)
	require.Len(t, group.Children, 1)
	assert.Equal(t, KindLink, group.Children[0].Kind)
	assert.Equal(t, "项目管理/0-目录", group.Children[0].Link)
	assert.Nil(t, group.Collapsible)
}

func TestEntryUnmarshalYAMLKinds(t *testing.T) {
	src := `
- text: empty group
  prefix: /x/
  children: []
- text: prefix only
  prefix: /y/
- text: flags
  prefix: /z/
  collapsible: true
  collapsed: false
  children: [a]
`
	var entries []Entry
	require.NoError(t, yaml.Unmarshal([]byte(src), &entries))
	assert.Equal(t, KindGroup, entries[0].Kind)
	assert.NotNil(t, entries[0].Children)
	// Without children the mapping is a link, which will fail resolution for lack of a link.
	assert.Equal(t, KindLink, entries[1].Kind)
	require.NotNil(t, entries[2].Collapsible)
	assert.True(t, *entries[2].Collapsible)
	require.NotNil(t, entries[2].Collapsed)
	assert.False(t, *entries[2].Collapsed)
}

func TestEntryUnmarshalYAMLRejects(t *testing.T) {
	var entries []Entry
	err := yaml.Unmarshal([]byte("- text: typo\n  prefx: /a/\n  children: []\n"), &entries)
	assert.ErrorIs(t, err, ErrUnknownField)

	require.NoError(t, yaml.Unmarshal([]byte("- a\n- ~\n"), &entries))
	assert.Equal(t, KindInvalid, entries[1].Kind)
	_, err = NewResolver(Options{}).ResolveNavbar(entries)
	assert.ErrorIs(t, err, ErrEmptyEntry)

	err = yaml.Unmarshal([]byte("- [a, b]\n"), &entries)
	assert.Error(t, err)
}

func TestEntryMarshalRoundTrip(t *testing.T) {
	in := []Entry{
		Path(""),
		Group("项目管理", "/posts/项目管理/",
			Link("目录", "0-目录"),
			Group("流程管理", "01-流程管理/", Link("项目规划", "1-项目规划")).WithCollapse(true, false),
		).WithCollapse(true, false),
		Group("empty", "/e/"),
	}
	data, err := yaml.Marshal(in)
	require.NoError(t, err)

	var out []Entry
	require.NoError(t, yaml.Unmarshal(data, &out))

	r := NewResolver(Options{})
	want, err := r.ResolveNavbar(in)
	require.NoError(t, err)
	got, err := r.ResolveNavbar(out)
	require.NoError(t, err)
	assert.Equal(t, stripSources(want), stripSources(got))
}

func TestSidebarSpecKeepsOrder(t *testing.T) {
	src := `
/zeta/: [a]
/: [""]
/alpha/: [b]
`
	var spec SidebarSpec
	require.NoError(t, yaml.Unmarshal([]byte(src), &spec))
	require.Len(t, spec, 3)
	assert.Equal(t, []string{"/zeta/", "/", "/alpha/"}, []string{spec[0].Base, spec[1].Base, spec[2].Base})

	data, err := yaml.Marshal(spec)
	require.NoError(t, err)
	var again SidebarSpec
	require.NoError(t, yaml.Unmarshal(data, &again))
	assert.Equal(t, spec[0].Base, again[0].Base)
	assert.Equal(t, spec[2].Entries[0].Link, again[2].Entries[0].Link)
}

func TestSidebarSpecSequenceForm(t *testing.T) {
	var spec SidebarSpec
	require.NoError(t, yaml.Unmarshal([]byte("- intro\n- guide/\n"), &spec))
	require.Len(t, spec, 1)
	assert.Equal(t, "/", spec[0].Base)
	assert.Len(t, spec[0].Entries, 2)
}

func stripSources(routes []ResolvedRoute) []ResolvedRoute {
	out := make([]ResolvedRoute, len(routes))
	for i, r := range routes {
		r.Source = ""
		if r.Children != nil {
			r.Children = stripSources(r.Children)
		}
		out[i] = r
	}
	return out
}
