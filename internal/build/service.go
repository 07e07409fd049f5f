package build

import (
	"context"
	"time"

	"git.home.luguber.info/inful/navbuilder/internal/config"
	"git.home.luguber.info/inful/navbuilder/internal/nav"
	"git.home.luguber.info/inful/navbuilder/internal/pagemeta"
)

// Stage names used for timing, metrics and reports.
const (
	StageContent  = "content"
	StageNavbar   = "resolve_navbar"
	StageSidebar  = "resolve_sidebar"
	StageLinks    = "validate_links"
	StageMetadata = "metadata"
	StageWrite    = "write"
)

// Service executes builds.
type Service interface {
	Run(ctx context.Context, req Request) (*Result, error)
}

// Request holds the inputs of one build.
type Request struct {
	Config *config.Config

	// Trigger names what started the build (cli, watch, schedule).
	Trigger string

	// DryRun runs every stage except writing output.
	DryRun bool
}

// Result is the outcome of a build. It is returned for failed builds too,
// with whatever stages completed.
type Result struct {
	BuildID   string
	Status    Status
	Navbar    []nav.ResolvedRoute
	Sidebars  nav.Sidebars
	Pages     []pagemeta.PageData
	Dangling  []DanglingLink
	Report    *Report
	OutputDir string
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
}

// Status is the final state of a build.
type Status string

const (
	StatusSuccess  Status = "success"
	StatusWarning  Status = "warning"
	StatusFailed   Status = "failed"
	StatusCanceled Status = "canceled"
)

// IsSuccess reports whether the build produced output.
func (s Status) IsSuccess() bool {
	return s == StatusSuccess || s == StatusWarning
}
