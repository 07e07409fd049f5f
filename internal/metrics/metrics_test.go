package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ Recorder = NoopRecorder{}
var _ Recorder = (*PrometheusRecorder)(nil)

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.ObserveStageDuration("resolve_navbar", 150*time.Millisecond)
	pr.ObserveBuildDuration(500 * time.Millisecond)
	pr.IncStageResult("resolve_navbar", ResultSuccess)
	pr.IncBuildOutcome(BuildOutcomeSuccess)
	pr.SetRoutes("navbar", 3)
	pr.SetRoutes("/", 12)
	pr.SetPages(40)
	pr.IncDanglingLinks(2)
	pr.IncRebuildTrigger("fsnotify")

	mfs, err := reg.Gather()
	require.NoError(t, err)
	values := map[string]float64{}
	for _, mf := range mfs {
		for _, m := range mf.GetMetric() {
			switch {
			case m.GetGauge() != nil:
				values[mf.GetName()] += m.GetGauge().GetValue()
			case m.GetCounter() != nil:
				values[mf.GetName()] += m.GetCounter().GetValue()
			}
		}
	}
	assert.InDelta(t, 1, values["navbuilder_stage_results_total"], 0)
	assert.InDelta(t, 15, values["navbuilder_resolved_routes"], 0)
	assert.InDelta(t, 40, values["navbuilder_content_pages"], 0)
	assert.InDelta(t, 2, values["navbuilder_dangling_links_total"], 0)
	assert.InDelta(t, 1, values["navbuilder_rebuild_triggers_total"], 0)
}

func TestHTTPHandler(t *testing.T) {
	reg := NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.IncBuildOutcome(BuildOutcomeFailed)

	srv := httptest.NewServer(HTTPHandler(reg))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `navbuilder_build_outcomes_total{outcome="failed"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}
