package config

import (
	"strings"
	"time"

	"git.home.luguber.info/inful/navbuilder/internal/nav"
)

const (
	defaultLang           = "en-US"
	defaultBase           = "/"
	defaultOutputDir      = "./dist/nav"
	defaultWordsPerMinute = 300
	defaultExcerptLength  = 180
	defaultMetricsAddr    = "127.0.0.1:9464"
	defaultMetricsPath    = "/metrics"
	defaultNATSSubject    = "navbuilder.builds"
	defaultKVBucket       = "navbuilder"
	defaultDebounce       = 500 * time.Millisecond
)

// Default returns a configuration with every default applied. Load decodes on
// top of it so explicit false values survive.
func Default() *Config {
	return &Config{
		Site:     SiteConfig{Lang: defaultLang, Base: defaultBase},
		Resolve:  ResolveConfig{PrefixMode: nav.PrefixCompose},
		Content:  ContentConfig{StrictLinks: true, Extensions: []string{".md"}},
		Metadata: MetadataConfig{Enabled: true, Git: true, WordsPerMinute: defaultWordsPerMinute, ExcerptLength: defaultExcerptLength},
		Output:   OutputConfig{Directory: defaultOutputDir, Clean: true},
		Monitoring: MonitoringConfig{
			Logging: LoggingConfig{Level: LogLevelInfo, Format: LogFormatText},
			Metrics: MetricsConfig{Addr: defaultMetricsAddr, Path: defaultMetricsPath},
		},
		Events: EventsConfig{NATS: NATSConfig{Subject: defaultNATSSubject, KVBucket: defaultKVBucket}},
		Watch:  WatchConfig{Debounce: defaultDebounce},
	}
}

// applyDefaults fills values a config file blanked out explicitly.
func applyDefaults(c *Config) {
	if strings.TrimSpace(c.Site.Lang) == "" {
		c.Site.Lang = defaultLang
	}
	if c.Site.Base == "" {
		c.Site.Base = defaultBase
	}
	if len(c.Content.Extensions) == 0 {
		c.Content.Extensions = []string{".md"}
	}
	if c.Metadata.WordsPerMinute == 0 {
		c.Metadata.WordsPerMinute = defaultWordsPerMinute
	}
	if c.Output.Directory == "" {
		c.Output.Directory = defaultOutputDir
	}
	if c.Monitoring.Metrics.Addr == "" {
		c.Monitoring.Metrics.Addr = defaultMetricsAddr
	}
	if c.Monitoring.Metrics.Path == "" {
		c.Monitoring.Metrics.Path = defaultMetricsPath
	}
	if c.Events.NATS.Subject == "" {
		c.Events.NATS.Subject = defaultNATSSubject
	}
	if c.Events.NATS.KVBucket == "" {
		c.Events.NATS.KVBucket = defaultKVBucket
	}
	if c.Watch.Debounce == 0 {
		c.Watch.Debounce = defaultDebounce
	}
}
