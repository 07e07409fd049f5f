package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	ferrors "git.home.luguber.info/inful/navbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/navbuilder/internal/nav"
)

// Load reads, expands, decodes, normalizes and validates the configuration at
// configPath. Relative paths inside the file resolve against its directory.
// Every failure is a classified config error.
func Load(configPath string) (*Config, error) {
	loadEnvFiles()

	abs, err := filepath.Abs(configPath)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "invalid configuration path").
			WithContext("file", configPath).Fatal().Build()
	}
	cfg := Default()
	cfg.path = abs
	if err := decodeFile(abs, cfg); err != nil {
		return nil, err
	}

	dir := filepath.Dir(abs)
	if err := cfg.loadNavigationFiles(dir); err != nil {
		return nil, err
	}

	nres, err := NormalizeConfig(cfg)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "normalize configuration").
			WithContext("file", abs).Fatal().UserAction().Build()
	}
	for _, w := range nres.Warnings {
		slog.Warn("Config normalization", slog.String("detail", w))
	}
	applyDefaults(cfg)
	cfg.resolvePaths(dir)

	if err := ValidateConfig(cfg); err != nil {
		if c, ok := ferrors.AsClassified(err); ok {
			return nil, c.WithContext("file", abs)
		}
		return nil, err
	}
	return cfg, nil
}

// decodeFile expands ${VAR} references in path and decodes it into out,
// rejecting unknown fields.
func decodeFile(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ferrors.ConfigError("configuration file not found").WithCause(err).WithContext("file", path).Build()
		}
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "read configuration file").WithContext("file", path).Build()
	}
	dec := yaml.NewDecoder(bytes.NewReader([]byte(os.ExpandEnv(string(data)))))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return ferrors.ConfigError("configuration file is empty").WithContext("file", path).Build()
		}
		if c, ok := ferrors.AsClassified(err); ok {
			return c.WithContext("file", path)
		}
		return ferrors.ConfigError("parse configuration").WithCause(err).WithContext("file", path).Build()
	}
	return nil
}

// loadNavigationFiles reads navbar_file and sidebar_file. Each tree may be
// given inline or in its own file, not both.
func (c *Config) loadNavigationFiles(dir string) error {
	if c.NavbarFile != "" {
		if len(c.Navbar) > 0 {
			return invalid("navbar_file", "navbar and navbar_file are mutually exclusive")
		}
		c.NavbarFile = resolveAgainst(dir, c.NavbarFile)
		if err := decodeFile(c.NavbarFile, &c.Navbar); err != nil {
			return err
		}
	}
	if c.SidebarFile != "" {
		if len(c.Sidebar) > 0 {
			return invalid("sidebar_file", "sidebar and sidebar_file are mutually exclusive")
		}
		c.SidebarFile = resolveAgainst(dir, c.SidebarFile)
		if err := decodeFile(c.SidebarFile, &c.Sidebar); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) resolvePaths(dir string) {
	if c.Content.Dir != "" {
		c.Content.Dir = resolveAgainst(dir, c.Content.Dir)
	}
	c.Output.Directory = resolveAgainst(dir, c.Output.Directory)
	if c.Events.Store != "" {
		c.Events.Store = resolveAgainst(dir, c.Events.Store)
	}
}

func resolveAgainst(dir, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(dir, p)
}

// Init writes an example configuration to configPath.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return ferrors.ValidationError("configuration file already exists (use --force to overwrite)").
			WithContext("file", configPath).Build()
	}

	data, err := yaml.Marshal(Example())
	if err != nil {
		return ferrors.InternalError("marshal example configuration").WithCause(err).Build()
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return ferrors.FileSystemError("write configuration file").WithCause(err).WithContext("file", configPath).Build()
	}
	return nil
}

// Example returns the configuration written by Init: a Chinese-language blog
// with a posts menu and a project-management sidebar.
func Example() *Config {
	cfg := Default()
	cfg.Site = SiteConfig{
		Title:       "deantook",
		Description: "deantook",
		Lang:        "zh-CN",
		Base:        "/",
		Hostname:    "https://example.com",
	}
	cfg.Navbar = []nav.Entry{
		nav.Path("/"),
		nav.Group("文章", "/posts/", nav.Link("项目管理", "项目管理/0-目录")),
	}
	cfg.Sidebar = nav.SidebarSpec{{
		Base: "/",
		Entries: []nav.Entry{
			nav.Path(""),
			nav.Group("项目管理", "posts/项目管理/",
				nav.Link("目录", "0-目录"),
				nav.Group("流程管理", "01-流程管理",
					nav.Link("项目规划", "1-项目规划"),
					nav.Link("敏捷方法", "2-敏捷方法"),
					nav.Link("风险管理", "3-风险管理"),
				).WithCollapse(true, false),
				nav.Group("技术领导力", "02-技术领导力",
					nav.Link("架构决策", "01-架构决策"),
					nav.Link("系统监控与性能", "02-系统监控与性能"),
				).WithCollapse(true, false),
			).WithCollapse(true, false),
		},
	}}
	cfg.Content.Dir = "src"
	cfg.Output.Directory = "dist/nav"
	cfg.Events.Store = ".navbuilder/events.db"
	return cfg
}

// String renders a short description for logs.
func (c *Config) String() string {
	return fmt.Sprintf("config(%s, navbar=%d, sidebars=%d)", c.path, len(c.Navbar), len(c.Sidebar))
}
