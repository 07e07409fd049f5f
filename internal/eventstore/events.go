package eventstore

import (
	"encoding/json"
	"time"

	ferrors "git.home.luguber.info/inful/navbuilder/internal/foundation/errors"
)

// BuildStartedPayload is the body of a BuildStarted event.
type BuildStartedPayload struct {
	Trigger    string `json:"trigger"`
	ConfigPath string `json:"config_path"`
}

// NavigationResolvedPayload is the body of a NavigationResolved event.
type NavigationResolvedPayload struct {
	NavbarRoutes  int            `json:"navbar_routes"`
	SidebarRoutes map[string]int `json:"sidebar_routes"`
}

// BuildCompletedPayload is the body of a BuildCompleted event.
type BuildCompletedPayload struct {
	DurationMS    int64    `json:"duration_ms"`
	Pages         int      `json:"pages"`
	Routes        int      `json:"routes"`
	OutputDir     string   `json:"output_dir"`
	ContentHash   string   `json:"content_hash,omitempty"`
	Warnings      []string `json:"warnings,omitempty"`
	DanglingLinks int      `json:"dangling_links"`
}

// BuildFailedPayload is the body of a BuildFailed event.
type BuildFailedPayload struct {
	Stage      string `json:"stage"`
	Error      string `json:"error"`
	Category   string `json:"category,omitempty"`
	DurationMS int64  `json:"duration_ms"`
}

// NewBuildStarted creates a BuildStarted event.
func NewBuildStarted(buildID string, p BuildStartedPayload) (*BaseEvent, error) {
	return newEvent(buildID, TypeBuildStarted, p)
}

// NewNavigationResolved creates a NavigationResolved event.
func NewNavigationResolved(buildID string, p NavigationResolvedPayload) (*BaseEvent, error) {
	return newEvent(buildID, TypeNavigationResolved, p)
}

// NewBuildCompleted creates a BuildCompleted event.
func NewBuildCompleted(buildID string, p BuildCompletedPayload) (*BaseEvent, error) {
	return newEvent(buildID, TypeBuildCompleted, p)
}

// NewBuildFailed creates a BuildFailed event.
func NewBuildFailed(buildID string, p BuildFailedPayload) (*BaseEvent, error) {
	return newEvent(buildID, TypeBuildFailed, p)
}

func newEvent(buildID, eventType string, payload any) (*BaseEvent, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryEventStore, "failed to marshal event payload").
			WithContext("event_type", eventType).
			Build()
	}
	return &BaseEvent{
		EventBuildID:   buildID,
		EventType:      eventType,
		EventTimestamp: time.Now(),
		EventPayload:   data,
		EventMetadata:  make(map[string]string),
	}, nil
}

// DecodePayload unmarshals the payload of e into v.
func DecodePayload(e Event, v any) error {
	if err := json.Unmarshal(e.Payload(), v); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryEventStore, "failed to decode event payload").
			WithContext("event_type", e.Type()).
			WithContext("build_id", e.BuildID()).
			Build()
	}
	return nil
}
