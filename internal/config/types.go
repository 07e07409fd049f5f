package config

import (
	"time"

	"git.home.luguber.info/inful/navbuilder/internal/nav"
)

// Config is the complete navbuilder configuration. It is immutable once Load
// returns; consumers receive it explicitly.
type Config struct {
	Site        SiteConfig      `yaml:"site"`
	Navbar      []nav.Entry     `yaml:"navbar,omitempty"`
	NavbarFile  string          `yaml:"navbar_file,omitempty"`
	Sidebar     nav.SidebarSpec `yaml:"sidebar,omitempty"`
	SidebarFile string          `yaml:"sidebar_file,omitempty"`

	Resolve    ResolveConfig    `yaml:"resolve"`
	Content    ContentConfig    `yaml:"content"`
	Metadata   MetadataConfig   `yaml:"metadata"`
	Output     OutputConfig     `yaml:"output"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Events     EventsConfig     `yaml:"events"`
	Watch      WatchConfig      `yaml:"watch"`

	// path is the file the configuration was loaded from.
	path string
}

// SiteConfig holds site-wide settings handed to the renderer.
type SiteConfig struct {
	Title       string `yaml:"title" json:"title"`
	Description string `yaml:"description,omitempty" json:"description"`
	Lang        string `yaml:"lang,omitempty" json:"lang"`
	Base        string `yaml:"base,omitempty" json:"base"`
	Hostname    string `yaml:"hostname,omitempty" json:"hostname,omitempty"`
}

// ResolveConfig controls navigation resolution.
type ResolveConfig struct {
	PrefixMode nav.PrefixMode `yaml:"prefix_mode,omitempty"`
}

// ContentConfig points at the Markdown tree links are checked against.
type ContentConfig struct {
	Dir         string   `yaml:"dir,omitempty"`
	StrictLinks bool     `yaml:"strict_links"`
	Extensions  []string `yaml:"extensions,omitempty"`
}

// MetadataConfig controls per-page metadata collection.
type MetadataConfig struct {
	Enabled        bool `yaml:"enabled"`
	Git            bool `yaml:"git"`
	WordsPerMinute int  `yaml:"words_per_minute,omitempty"`
	ExcerptLength  int  `yaml:"excerpt_length,omitempty"`
	// Concurrency bounds parallel page processing; 0 means GOMAXPROCS.
	Concurrency int `yaml:"concurrency,omitempty"`
}

// OutputConfig describes where build results are written.
type OutputConfig struct {
	Directory string `yaml:"directory"`
	Clean     bool   `yaml:"clean"`
	// CleanURLs strips .md/.html from resolved links in the output.
	CleanURLs bool `yaml:"clean_urls"`
}

// MonitoringConfig groups logging and metrics settings.
type MonitoringConfig struct {
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig selects log level and format.
type LoggingConfig struct {
	Level  LogLevel  `yaml:"level,omitempty"`
	Format LogFormat `yaml:"format,omitempty"`
}

// MetricsConfig controls the admin HTTP server of watch mode.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr,omitempty"`
	Path    string `yaml:"path,omitempty"`
}

// EventsConfig controls build event recording and publication.
type EventsConfig struct {
	// Store is the SQLite database path; empty disables the event store.
	Store string     `yaml:"store,omitempty"`
	NATS  NATSConfig `yaml:"nats"`
}

// NATSConfig configures JetStream publication of build results.
type NATSConfig struct {
	Enabled  bool   `yaml:"enabled"`
	URL      string `yaml:"url,omitempty"`
	Subject  string `yaml:"subject,omitempty"`
	KVBucket string `yaml:"kv_bucket,omitempty"`
}

// WatchConfig tunes watch mode.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce,omitempty"`
	// RefreshInterval triggers periodic rebuilds; zero disables them.
	RefreshInterval time.Duration `yaml:"refresh_interval,omitempty"`
}

// Path returns the file the configuration was loaded from.
func (c *Config) Path() string { return c.path }

// WatchedFiles lists the configuration files a rebuild depends on.
func (c *Config) WatchedFiles() []string {
	files := []string{c.path}
	if c.NavbarFile != "" {
		files = append(files, c.NavbarFile)
	}
	if c.SidebarFile != "" {
		files = append(files, c.SidebarFile)
	}
	return files
}
