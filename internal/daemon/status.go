package daemon

import (
	"encoding/json"
	"sync"
	"time"

	"git.home.luguber.info/inful/navbuilder/internal/build"
)

// buildState holds the outcome of the latest build and the trees of the
// latest good one.
type buildState struct {
	mu sync.RWMutex

	builds    int
	failures  int
	lastID    string
	lastAt    time.Time
	lastState build.Status
	lastErr   string

	goodID  string
	navbar  []byte
	sidebar []byte
}

func (s *buildState) record(res *build.Result, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.builds++
	s.lastAt = time.Now()
	s.lastErr = ""
	if res != nil {
		s.lastID = res.BuildID
		s.lastState = res.Status
	}
	if err != nil {
		s.failures++
		s.lastErr = err.Error()
		if res == nil {
			s.lastState = build.StatusFailed
		}
		return
	}
	navbar, nerr := json.Marshal(res.Navbar)
	sidebar, serr := json.Marshal(res.Sidebars)
	if nerr != nil || serr != nil {
		return
	}
	s.goodID = res.BuildID
	s.navbar = navbar
	s.sidebar = sidebar
}

// trees returns the latest good navbar and sidebar JSON, or false before the
// first successful build.
func (s *buildState) trees() (navbar, sidebar []byte, buildID string, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.goodID == "" {
		return nil, nil, "", false
	}
	return s.navbar, s.sidebar, s.goodID, true
}

// StatusSnapshot is the build part of the health response.
type StatusSnapshot struct {
	Builds       int          `json:"builds"`
	Failures     int          `json:"failures"`
	LastBuildID  string       `json:"last_build_id,omitempty"`
	LastBuildAt  time.Time    `json:"last_build_at,omitzero"`
	LastStatus   build.Status `json:"last_status,omitempty"`
	LastError    string       `json:"last_error,omitempty"`
	ServingBuild string       `json:"serving_build_id,omitempty"`
}

func (s *buildState) snapshot() StatusSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return StatusSnapshot{
		Builds:       s.builds,
		Failures:     s.failures,
		LastBuildID:  s.lastID,
		LastBuildAt:  s.lastAt,
		LastStatus:   s.lastState,
		LastError:    s.lastErr,
		ServingBuild: s.goodID,
	}
}
