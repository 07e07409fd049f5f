package daemon

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestScheduler_RunsPeriodicRebuild(t *testing.T) {
	s, err := NewScheduler()
	require.NoError(t, err)

	calls := make(chan struct{}, 10)
	id, err := s.SchedulePeriodicRebuild(50*time.Millisecond, func() { calls <- struct{}{} })
	require.NoError(t, err)
	require.NotEmpty(t, id)

	s.Start()
	select {
	case <-calls:
	case <-time.After(5 * time.Second):
		t.Fatal("scheduled rebuild did not run")
	}
	require.NoError(t, s.Stop(t.Context()))
}

func TestScheduler_RejectsInvalidInterval(t *testing.T) {
	s, err := NewScheduler()
	require.NoError(t, err)
	defer func() { _ = s.Stop(t.Context()) }()

	_, err = s.SchedulePeriodicRebuild(0, func() {})
	require.Error(t, err)
}
