package config

import (
	"net/url"
	"path/filepath"
	"strings"

	ferrors "git.home.luguber.info/inful/navbuilder/internal/foundation/errors"
)

// ValidateConfig checks cross-field constraints after defaults are applied.
// The first violation is returned as a classified config error.
func ValidateConfig(c *Config) error {
	v := configurationValidator{cfg: c}
	for _, check := range []func() error{
		v.validateSite,
		v.validateNavigation,
		v.validateMetadata,
		v.validatePaths,
		v.validateMonitoring,
		v.validateEvents,
		v.validateWatch,
	} {
		if err := check(); err != nil {
			return err
		}
	}
	return nil
}

type configurationValidator struct {
	cfg *Config
}

func invalid(field, msg string) error {
	return ferrors.ConfigError(msg).WithContext("field", field).Build()
}

func (v configurationValidator) validateSite() error {
	s := v.cfg.Site
	if strings.TrimSpace(s.Title) == "" {
		return invalid("site.title", "site title is required")
	}
	if !strings.HasPrefix(s.Base, "/") || !strings.HasSuffix(s.Base, "/") {
		return invalid("site.base", "site base must start and end with '/'")
	}
	if s.Hostname != "" {
		u, err := url.Parse(s.Hostname)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return invalid("site.hostname", "site hostname must be an absolute http(s) URL")
		}
	}
	return nil
}

func (v configurationValidator) validateNavigation() error {
	if len(v.cfg.Navbar) == 0 && len(v.cfg.Sidebar) == 0 {
		return invalid("navbar", "at least one of navbar or sidebar must be configured")
	}
	return nil
}

func (v configurationValidator) validateMetadata() error {
	m := v.cfg.Metadata
	if m.WordsPerMinute <= 0 {
		return invalid("metadata.words_per_minute", "words per minute must be positive")
	}
	return nil
}

func (v configurationValidator) validatePaths() error {
	out := filepath.Clean(v.cfg.Output.Directory)
	if dir := v.cfg.Content.Dir; dir != "" {
		content := filepath.Clean(dir)
		if out == content {
			return invalid("output.directory", "output directory must differ from content.dir")
		}
		if rel, err := filepath.Rel(out, content); err == nil && !strings.HasPrefix(rel, "..") {
			return invalid("output.directory", "output directory must not contain content.dir")
		}
	}
	return nil
}

func (v configurationValidator) validateMonitoring() error {
	m := v.cfg.Monitoring.Metrics
	if m.Enabled && !strings.HasPrefix(m.Path, "/") {
		return invalid("monitoring.metrics.path", "metrics path must start with '/'")
	}
	return nil
}

func (v configurationValidator) validateEvents() error {
	n := v.cfg.Events.NATS
	if !n.Enabled {
		return nil
	}
	if strings.TrimSpace(n.URL) == "" {
		return invalid("events.nats.url", "NATS URL is required when NATS publishing is enabled")
	}
	if strings.ContainsAny(n.Subject, " \t*>") {
		return invalid("events.nats.subject", "NATS subject must be a literal subject")
	}
	return nil
}

func (v configurationValidator) validateWatch() error {
	w := v.cfg.Watch
	if w.Debounce < 0 {
		return invalid("watch.debounce", "debounce must not be negative")
	}
	if w.RefreshInterval < 0 {
		return invalid("watch.refresh_interval", "refresh interval must not be negative")
	}
	return nil
}
