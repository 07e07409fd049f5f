package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ferrors "git.home.luguber.info/inful/navbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/navbuilder/internal/nav"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

const minimalConfig = `site:
  title: deantook
  lang: zh-CN
navbar:
  - /
  - text: 文章
    prefix: /posts/
    children:
      - text: 项目管理
        link: 项目管理/0-目录
sidebar:
  /:
    - ""
    - text: 项目管理
      collapsible: true
      prefix: /posts/项目管理/
      children:
        - text: 目录
          link: 0-目录
`

func TestLoadAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "navbuilder.yaml", minimalConfig)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, path, cfg.Path())
	assert.Equal(t, "deantook", cfg.Site.Title)
	assert.Equal(t, "zh-CN", cfg.Site.Lang)
	assert.Equal(t, "/", cfg.Site.Base)
	assert.Equal(t, nav.PrefixCompose, cfg.Resolve.PrefixMode)
	assert.True(t, cfg.Content.StrictLinks)
	assert.Equal(t, []string{".md"}, cfg.Content.Extensions)
	assert.True(t, cfg.Metadata.Enabled)
	assert.Equal(t, 300, cfg.Metadata.WordsPerMinute)
	assert.Equal(t, 180, cfg.Metadata.ExcerptLength)
	assert.Equal(t, filepath.Join(dir, "dist", "nav"), cfg.Output.Directory)
	assert.True(t, cfg.Output.Clean)
	assert.Equal(t, LogLevelInfo, cfg.Monitoring.Logging.Level)
	assert.Equal(t, LogFormatText, cfg.Monitoring.Logging.Format)
	assert.Equal(t, 500*time.Millisecond, cfg.Watch.Debounce)

	require.Len(t, cfg.Navbar, 2)
	assert.Equal(t, nav.KindPath, cfg.Navbar[0].Kind)
	assert.Equal(t, nav.KindGroup, cfg.Navbar[1].Kind)
	require.Len(t, cfg.Sidebar, 1)
	assert.Equal(t, "/", cfg.Sidebar[0].Base)
}

func TestLoadExplicitFalseSurvivesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "navbuilder.yaml", minimalConfig+`content:
  strict_links: false
metadata:
  enabled: false
output:
  clean: false
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.False(t, cfg.Content.StrictLinks)
	assert.False(t, cfg.Metadata.Enabled)
	assert.False(t, cfg.Output.Clean)
}

func TestLoadExpandsEnvironment(t *testing.T) {
	t.Setenv("NAVBUILDER_TEST_TITLE", "from env")
	dir := t.TempDir()
	path := writeFile(t, dir, "navbuilder.yaml", `site:
  title: ${NAVBUILDER_TEST_TITLE}
navbar: ["/"]
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from env", cfg.Site.Title)
}

func TestLoadResolvesRelativePaths(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "conf/navbuilder.yaml", minimalConfig+`content:
  dir: ../src
output:
  directory: /tmp/navbuilder-out
events:
  store: state/events.db
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "src"), cfg.Content.Dir)
	assert.Equal(t, "/tmp/navbuilder-out", cfg.Output.Directory)
	assert.Equal(t, filepath.Join(dir, "conf", "state", "events.db"), cfg.Events.Store)
}

func TestLoadNavigationFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "nav/navbar.yaml", "- /\n- text: Go\n  link: /posts/golang/\n")
	writeFile(t, dir, "nav/sidebar.yaml", "/posts/:\n  - flutter/\n  - golang/\n")
	path := writeFile(t, dir, "navbuilder.yaml", `site:
  title: t
navbar_file: nav/navbar.yaml
sidebar_file: nav/sidebar.yaml
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Len(t, cfg.Navbar, 2)
	assert.Equal(t, "/posts/golang/", cfg.Navbar[1].Link)
	require.Len(t, cfg.Sidebar, 1)
	assert.Equal(t, "/posts/", cfg.Sidebar[0].Base)
	assert.Equal(t, []string{path, filepath.Join(dir, "nav", "navbar.yaml"), filepath.Join(dir, "nav", "sidebar.yaml")}, cfg.WatchedFiles())
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		field   string
	}{
		{"missing title", "navbar: [/]\n", "site.title"},
		{"bad base", "site: {title: t, base: docs}\nnavbar: [/]\n", "site.base"},
		{"bad hostname", "site: {title: t, hostname: example.com}\nnavbar: [/]\n", "site.hostname"},
		{"no navigation", "site: {title: t}\n", "navbar"},
		{"inline and file", "site: {title: t}\nnavbar: [/]\nnavbar_file: x.yaml\n", "navbar_file"},
		{"nats without url", "site: {title: t}\nnavbar: [/]\nevents: {nats: {enabled: true}}\n", "events.nats.url"},
		{"output equals content", "site: {title: t}\nnavbar: [/]\ncontent: {dir: out}\noutput: {directory: out}\n", "output.directory"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "navbuilder.yaml", tt.content)
			_, err := Load(path)
			require.Error(t, err)
			c, ok := ferrors.AsClassified(err)
			require.True(t, ok, "expected classified error, got %v", err)
			assert.Equal(t, ferrors.CategoryConfig, c.Category())
			field, _ := c.Context().GetString("field")
			assert.Equal(t, tt.field, field)
		})
	}
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	path := writeFile(t, t.TempDir(), "navbuilder.yaml", "site: {title: t}\nnavbar: [/]\nsidebars: {}\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryConfig))
	assert.Contains(t, err.Error(), "sidebars")
}

func TestLoadRejectsUnknownEntryField(t *testing.T) {
	path := writeFile(t, t.TempDir(), "navbuilder.yaml", "site: {title: t}\nnavbar:\n  - text: a\n    href: /a\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, nav.ErrUnknownField)
}

func TestLoadRejectsUnknownPrefixMode(t *testing.T) {
	path := writeFile(t, t.TempDir(), "navbuilder.yaml", minimalConfig+"resolve:\n  prefix_mode: relative\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryConfig))
	assert.Contains(t, err.Error(), "compose")
}

func TestLoadMissingAndEmptyFile(t *testing.T) {
	dir := t.TempDir()
	_, err := Load(filepath.Join(dir, "absent.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryConfig))

	_, err = Load(writeFile(t, dir, "empty.yaml", ""))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty")
}

func TestLoadEnvFileDoesNotOverride(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".env", "NAVBUILDER_TEST_A=file\nNAVBUILDER_TEST_B=file\n")
	t.Setenv("NAVBUILDER_TEST_A", "process")
	t.Chdir(dir)
	t.Cleanup(func() { _ = os.Unsetenv("NAVBUILDER_TEST_B") })

	path := writeFile(t, dir, "navbuilder.yaml", "site:\n  title: ${NAVBUILDER_TEST_A}-${NAVBUILDER_TEST_B}\nnavbar: [/]\n")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "process-file", cfg.Site.Title)
}

func TestInit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "navbuilder.yaml")
	require.NoError(t, Init(path, false))

	err := Init(path, false)
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryValidation))
	require.NoError(t, Init(path, true))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "zh-CN", cfg.Site.Lang)
	require.Len(t, cfg.Sidebar, 1)
	group := cfg.Sidebar[0].Entries[1]
	require.NotNil(t, group.Collapsible)
	assert.True(t, *group.Collapsible)
	assert.Equal(t, Example().Navbar[1].Children[0].Link, cfg.Navbar[1].Children[0].Link)
}
