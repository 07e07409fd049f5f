package eventstore

import (
	"context"
	"time"
)

// Build outcomes reported by BuildSummary.
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// BuildSummary is the history view of a single build.
type BuildSummary struct {
	BuildID       string
	Trigger       string
	Status        string
	StartedAt     time.Time
	FinishedAt    time.Time
	Duration      time.Duration
	NavbarRoutes  int
	SidebarRoutes int
	Pages         int
	DanglingLinks int
	Warnings      int
	FailedStage   string
	Error         string
}

// Apply folds one event into the summary.
func (s *BuildSummary) Apply(e Event) error {
	switch e.Type() {
	case TypeBuildStarted:
		var p BuildStartedPayload
		if err := DecodePayload(e, &p); err != nil {
			return err
		}
		s.Trigger = p.Trigger
		s.StartedAt = e.Timestamp()
		s.Status = StatusRunning
	case TypeNavigationResolved:
		var p NavigationResolvedPayload
		if err := DecodePayload(e, &p); err != nil {
			return err
		}
		s.NavbarRoutes = p.NavbarRoutes
		s.SidebarRoutes = 0
		for _, n := range p.SidebarRoutes {
			s.SidebarRoutes += n
		}
	case TypeBuildCompleted:
		var p BuildCompletedPayload
		if err := DecodePayload(e, &p); err != nil {
			return err
		}
		s.Status = StatusCompleted
		s.FinishedAt = e.Timestamp()
		s.Duration = time.Duration(p.DurationMS) * time.Millisecond
		s.Pages = p.Pages
		s.DanglingLinks = p.DanglingLinks
		s.Warnings = len(p.Warnings)
	case TypeBuildFailed:
		var p BuildFailedPayload
		if err := DecodePayload(e, &p); err != nil {
			return err
		}
		s.Status = StatusFailed
		s.FinishedAt = e.Timestamp()
		s.Duration = time.Duration(p.DurationMS) * time.Millisecond
		s.FailedStage = p.Stage
		s.Error = p.Error
	}
	return nil
}

// Summarize builds the summary of one build from its events.
func Summarize(buildID string, events []Event) (BuildSummary, error) {
	s := BuildSummary{BuildID: buildID}
	for _, e := range events {
		if err := s.Apply(e); err != nil {
			return s, err
		}
	}
	return s, nil
}

// History returns summaries of up to limit recent builds, newest first.
func History(ctx context.Context, store Store, limit int) ([]BuildSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	ids, err := store.RecentBuildIDs(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make([]BuildSummary, 0, len(ids))
	for _, id := range ids {
		events, err := store.GetByBuildID(ctx, id)
		if err != nil {
			return nil, err
		}
		s, err := Summarize(id, events)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}
