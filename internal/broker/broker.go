// Package broker publishes completed builds to NATS JetStream so remote
// renderers can pick up the latest navigation without reading the output
// directory.
package broker

import (
	"context"
	"encoding/json"
	"time"
)

// KV keys holding the latest resolved trees.
const (
	KeyNavbar  = "navbar.json"
	KeySidebar = "sidebar.json"
	KeyLatest  = "latest"
)

// Notification describes a completed build.
type Notification struct {
	BuildID     string          `json:"build_id"`
	CompletedAt time.Time       `json:"completed_at"`
	SiteTitle   string          `json:"site_title"`
	Pages       int             `json:"pages"`
	Routes      int             `json:"routes"`
	ContentHash string          `json:"content_hash,omitempty"`
	OutputDir   string          `json:"output_dir"`
	Navbar      json.RawMessage `json:"-"`
	Sidebar     json.RawMessage `json:"-"`
}

// Publisher sends build notifications.
type Publisher interface {
	PublishBuild(ctx context.Context, n Notification) error
	Close() error
}

// Noop discards notifications.
type Noop struct{}

func (Noop) PublishBuild(context.Context, Notification) error { return nil }
func (Noop) Close() error                                     { return nil }
