package build

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// ReportSchemaVersion is bumped on incompatible build-report.json changes.
const ReportSchemaVersion = 1

// Report is the machine readable summary of a build, written as
// build-report.json.
type Report struct {
	SchemaVersion  int                      `json:"schema_version"`
	BuildID        string                   `json:"build_id"`
	Trigger        string                   `json:"trigger,omitempty"`
	Start          time.Time                `json:"start"`
	End            time.Time                `json:"end"`
	StageDurations map[string]time.Duration `json:"-"`
	NavbarRoutes   int                      `json:"navbar_routes"`
	SidebarRoutes  map[string]int           `json:"sidebar_routes"`
	Pages          int                      `json:"pages"`
	DanglingLinks  []DanglingLink           `json:"dangling_links"`
	Warnings       []string                 `json:"warnings"`
	ContentHash    string                   `json:"content_hash,omitempty"`
	OutputBytes    int64                    `json:"output_bytes"`
	Outcome        Status                   `json:"outcome"`
	FailedStage    string                   `json:"failed_stage,omitempty"`
	Error          string                   `json:"error,omitempty"`
}

func newReport(buildID, trigger string, start time.Time) *Report {
	return &Report{
		SchemaVersion:  ReportSchemaVersion,
		BuildID:        buildID,
		Trigger:        trigger,
		Start:          start,
		StageDurations: make(map[string]time.Duration),
		SidebarRoutes:  make(map[string]int),
		DanglingLinks:  []DanglingLink{},
		Warnings:       []string{},
	}
}

// MarshalJSON adds stage durations in milliseconds.
func (r *Report) MarshalJSON() ([]byte, error) {
	type plain Report
	ms := make(map[string]float64, len(r.StageDurations))
	for k, d := range r.StageDurations {
		ms[k] = float64(d.Microseconds()) / 1000
	}
	return json.Marshal(struct {
		*plain
		StageDurationsMS map[string]float64 `json:"stage_durations_ms"`
	}{(*plain)(r), ms})
}

// Duration is the wall time of the build.
func (r *Report) Duration() time.Duration {
	if r.End.IsZero() {
		return 0
	}
	return r.End.Sub(r.Start)
}

// SidebarRouteTotal sums routes across sidebars.
func (r *Report) SidebarRouteTotal() int {
	n := 0
	for _, c := range r.SidebarRoutes {
		n += c
	}
	return n
}

// Summary is a one-paragraph human readable report, written as
// build-report.txt.
func (r *Report) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "build %s: %s in %s\n", r.BuildID, r.Outcome, r.Duration().Round(time.Millisecond))
	fmt.Fprintf(&b, "navbar: %d routes\n", r.NavbarRoutes)
	bases := make([]string, 0, len(r.SidebarRoutes))
	for base := range r.SidebarRoutes {
		bases = append(bases, base)
	}
	sort.Strings(bases)
	for _, base := range bases {
		fmt.Fprintf(&b, "sidebar %s: %d routes\n", base, r.SidebarRoutes[base])
	}
	fmt.Fprintf(&b, "pages: %s\n", humanize.Comma(int64(r.Pages)))
	if r.OutputBytes > 0 {
		fmt.Fprintf(&b, "output: %s\n", humanize.Bytes(uint64(r.OutputBytes)))
	}
	if n := len(r.DanglingLinks); n > 0 {
		fmt.Fprintf(&b, "dangling links: %d\n", n)
	}
	for _, w := range r.Warnings {
		fmt.Fprintf(&b, "warning: %s\n", w)
	}
	if r.Error != "" {
		fmt.Fprintf(&b, "failed in %s: %s\n", r.FailedStage, r.Error)
	}
	return strings.TrimRight(b.String(), "\n")
}
