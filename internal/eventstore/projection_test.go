package eventstore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func appendAll(t *testing.T, store Store, events ...*BaseEvent) {
	t.Helper()
	for _, e := range events {
		require.NoError(t, store.Append(t.Context(), e))
	}
}

func must(t *testing.T) func(*BaseEvent, error) *BaseEvent {
	return func(e *BaseEvent, err error) *BaseEvent {
		t.Helper()
		require.NoError(t, err)
		return e
	}
}

func TestHistory_CompletedAndFailedBuilds(t *testing.T) {
	store := newTestStore(t)
	store.now = fixedClock(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	m := must(t)

	appendAll(t, store,
		m(NewBuildStarted("ok", BuildStartedPayload{Trigger: "cli"})),
		m(NewNavigationResolved("ok", NavigationResolvedPayload{
			NavbarRoutes:  4,
			SidebarRoutes: map[string]int{"/": 6, "/posts/": 2},
		})),
		m(NewBuildCompleted("ok", BuildCompletedPayload{
			DurationMS:    1500,
			Pages:         12,
			DanglingLinks: 1,
			Warnings:      []string{"dangling link /missing"},
		})),
		m(NewBuildStarted("bad", BuildStartedPayload{Trigger: "watch"})),
		m(NewBuildFailed("bad", BuildFailedPayload{Stage: "resolve_sidebar", Error: "group without prefix", DurationMS: 20})),
	)

	history, err := History(t.Context(), store, 10)
	require.NoError(t, err)
	require.Len(t, history, 2)

	bad := history[0]
	assert.Equal(t, "bad", bad.BuildID)
	assert.Equal(t, StatusFailed, bad.Status)
	assert.Equal(t, "watch", bad.Trigger)
	assert.Equal(t, "resolve_sidebar", bad.FailedStage)
	assert.Equal(t, "group without prefix", bad.Error)
	assert.Equal(t, 20*time.Millisecond, bad.Duration)

	ok := history[1]
	assert.Equal(t, StatusCompleted, ok.Status)
	assert.Equal(t, 4, ok.NavbarRoutes)
	assert.Equal(t, 8, ok.SidebarRoutes)
	assert.Equal(t, 12, ok.Pages)
	assert.Equal(t, 1, ok.DanglingLinks)
	assert.Equal(t, 1, ok.Warnings)
	assert.Equal(t, 1500*time.Millisecond, ok.Duration)
	assert.True(t, ok.FinishedAt.After(ok.StartedAt))
}

func TestSummarize_RunningBuild(t *testing.T) {
	e := must(t)(NewBuildStarted("run", BuildStartedPayload{Trigger: "schedule"}))
	s, err := Summarize("run", []Event{e})
	require.NoError(t, err)
	assert.Equal(t, StatusRunning, s.Status)
	assert.Equal(t, "schedule", s.Trigger)
}

func TestSummarize_BadPayload(t *testing.T) {
	e := &BaseEvent{EventBuildID: "x", EventType: TypeBuildCompleted, EventPayload: []byte("{")}
	_, err := Summarize("x", []Event{e})
	require.Error(t, err)
}

func TestHistory_DefaultLimit(t *testing.T) {
	store := newTestStore(t)
	history, err := History(t.Context(), store, 0)
	require.NoError(t, err)
	assert.Empty(t, history)
}
