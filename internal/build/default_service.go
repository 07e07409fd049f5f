package build

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"path"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/language"

	"git.home.luguber.info/inful/navbuilder/internal/broker"
	"git.home.luguber.info/inful/navbuilder/internal/config"
	"git.home.luguber.info/inful/navbuilder/internal/content"
	"git.home.luguber.info/inful/navbuilder/internal/eventstore"
	"git.home.luguber.info/inful/navbuilder/internal/gitinfo"
	"git.home.luguber.info/inful/navbuilder/internal/logfields"
	"git.home.luguber.info/inful/navbuilder/internal/metrics"
	"git.home.luguber.info/inful/navbuilder/internal/nav"
	"git.home.luguber.info/inful/navbuilder/internal/pagemeta"

	ferrors "git.home.luguber.info/inful/navbuilder/internal/foundation/errors"
)

// DefaultService is the standard Service implementation.
type DefaultService struct {
	recorder  metrics.Recorder
	events    eventstore.Store
	publisher broker.Publisher
	now       func() time.Time
	newID     func() string
}

// NewService creates a service with no event store, no publisher and a
// no-op metrics recorder.
func NewService() *DefaultService {
	return &DefaultService{
		recorder:  metrics.NoopRecorder{},
		publisher: broker.Noop{},
		now:       time.Now,
		newID:     func() string { return uuid.NewString() },
	}
}

// WithRecorder sets the metrics recorder.
func (s *DefaultService) WithRecorder(r metrics.Recorder) *DefaultService {
	if r != nil {
		s.recorder = r
	}
	return s
}

// WithEventStore records build lifecycle events in store.
func (s *DefaultService) WithEventStore(store eventstore.Store) *DefaultService {
	s.events = store
	return s
}

// WithPublisher publishes completed builds through p.
func (s *DefaultService) WithPublisher(p broker.Publisher) *DefaultService {
	if p != nil {
		s.publisher = p
	}
	return s
}

// run is the state of one build.
type run struct {
	svc    *DefaultService
	req    Request
	cfg    *config.Config
	result *Result
	report *Report
	log    *slog.Logger
	index  *content.Index
}

// Run executes the pipeline. The returned Result is never nil.
func (s *DefaultService) Run(ctx context.Context, req Request) (*Result, error) {
	start := s.now()
	buildID := s.newID()
	if req.Trigger == "" {
		req.Trigger = "cli"
	}
	result := &Result{BuildID: buildID, StartTime: start}
	r := &run{
		svc:    s,
		req:    req,
		cfg:    req.Config,
		result: result,
		report: newReport(buildID, req.Trigger, start),
		log:    slog.With(logfields.BuildID(buildID)),
	}
	result.Report = r.report

	if req.Config == nil {
		err := ferrors.ConfigError("configuration required").WithCause(ErrNoConfig).Build()
		return result, r.finish(ctx, "", err)
	}
	result.OutputDir = req.Config.Output.Directory

	ev, evErr := eventstore.NewBuildStarted(buildID, eventstore.BuildStartedPayload{
		Trigger:    req.Trigger,
		ConfigPath: req.Config.Path(),
	})
	s.recordEvent(ctx, r.log, ev, evErr)
	r.log.Info("Build started", logfields.Trigger(req.Trigger))

	stage, err := r.execute(ctx)
	return result, r.finish(ctx, stage, err)
}

// execute runs the stages in order and returns the failing stage, if any.
func (r *run) execute(ctx context.Context) (string, error) {
	cfg := r.cfg

	if cfg.Content.Dir != "" {
		if err := r.stage(ctx, StageContent, func() error {
			ix, err := content.Discover(cfg.Content.Dir, cfg.Content.Extensions)
			if err != nil {
				return err
			}
			r.index = ix
			r.report.ContentHash = ix.Hash()
			r.svc.recorder.SetPages(ix.Len())
			return nil
		}); err != nil {
			return StageContent, err
		}
	}

	opts := nav.Options{PrefixMode: cfg.Resolve.PrefixMode, Lang: language.Make(cfg.Site.Lang)}
	if r.index != nil {
		opts.Titles = r.index.Title
	}
	resolver := nav.NewResolver(opts)

	if err := r.stage(ctx, StageNavbar, func() error {
		routes, err := resolver.ResolveNavbar(cfg.Navbar)
		if err != nil {
			return err
		}
		r.result.Navbar = routes
		r.report.NavbarRoutes = countRoutes(routes)
		r.svc.recorder.SetRoutes("navbar", r.report.NavbarRoutes)
		return nil
	}); err != nil {
		return StageNavbar, err
	}

	if err := r.stage(ctx, StageSidebar, func() error {
		sidebars, err := resolver.ResolveSidebar(cfg.Sidebar)
		if err != nil {
			return err
		}
		r.result.Sidebars = sidebars
		for _, sb := range sidebars {
			n := countRoutes(sb.Routes)
			r.report.SidebarRoutes[sb.Base] = n
			r.svc.recorder.SetRoutes(sb.Base, n)
			r.log.Debug("Resolved sidebar", logfields.Base(sb.Base), logfields.Count(n))
		}
		return nil
	}); err != nil {
		return StageSidebar, err
	}

	ev, evErr := eventstore.NewNavigationResolved(r.result.BuildID, eventstore.NavigationResolvedPayload{
		NavbarRoutes:  r.report.NavbarRoutes,
		SidebarRoutes: r.report.SidebarRoutes,
	})
	r.svc.recordEvent(ctx, r.log, ev, evErr)

	if r.index != nil {
		if err := r.stage(ctx, StageLinks, r.validateLinks); err != nil {
			return StageLinks, err
		}
	}

	if cfg.Metadata.Enabled && r.index != nil {
		if err := r.stage(ctx, StageMetadata, func() error { return r.collectMetadata(ctx) }); err != nil {
			return StageMetadata, err
		}
	}

	if cfg.Output.CleanURLs {
		r.result.Navbar = cleanLinks(r.result.Navbar)
		for i := range r.result.Sidebars {
			r.result.Sidebars[i].Routes = cleanLinks(r.result.Sidebars[i].Routes)
		}
	}

	if r.req.DryRun {
		return "", nil
	}
	if err := r.stage(ctx, StageWrite, r.write); err != nil {
		return StageWrite, err
	}
	return "", nil
}

// stage times fn and records its result. A canceled context stops the
// build before the stage starts.
func (r *run) stage(ctx context.Context, name string, fn func() error) error {
	if err := ctx.Err(); err != nil {
		r.svc.recorder.IncStageResult(name, metrics.ResultCanceled)
		return err
	}
	start := time.Now()
	err := fn()
	d := time.Since(start)
	r.report.StageDurations[name] = d
	r.svc.recorder.ObserveStageDuration(name, d)

	log := r.log.With(logfields.Stage(name), logfields.DurationMS(float64(d.Microseconds())/1000))
	switch {
	case err == nil:
		r.svc.recorder.IncStageResult(name, metrics.ResultSuccess)
		log.Debug("Stage complete")
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		r.svc.recorder.IncStageResult(name, metrics.ResultCanceled)
		log.Warn("Stage canceled")
	default:
		r.svc.recorder.IncStageResult(name, metrics.ResultFatal)
		log.Error("Stage failed", logfields.Error(err))
	}
	return err
}

func (r *run) validateLinks() error {
	dangling := CheckLinks(r.index, r.result.Navbar, r.result.Sidebars)
	r.result.Dangling = dangling
	r.report.DanglingLinks = append(r.report.DanglingLinks, dangling...)
	if len(dangling) == 0 {
		return nil
	}
	r.svc.recorder.IncDanglingLinks(len(dangling))
	if r.cfg.Content.StrictLinks {
		return danglingError(dangling)
	}
	for _, d := range dangling {
		r.log.Warn("Dangling link", logfields.Link(d.Link), logfields.Entry(d.Entry))
		r.report.Warnings = append(r.report.Warnings, "dangling link "+d.String())
	}
	return nil
}

func (r *run) collectMetadata(ctx context.Context) error {
	opts, warning := MetadataOptions(r.cfg, r.index.Root(), r.log)
	if warning != "" {
		r.report.Warnings = append(r.report.Warnings, warning)
	}
	pages, err := pagemeta.NewCollector(opts).Collect(ctx, r.index.Pages())
	if err != nil {
		return err
	}
	r.result.Pages = pages
	r.report.Pages = len(pages)
	return nil
}

// MetadataOptions derives collector options from cfg. Git history is opened
// at root when enabled; a failure to open it is returned as a warning and
// leaves git metadata out.
func MetadataOptions(cfg *config.Config, root string, log *slog.Logger) (pagemeta.Options, string) {
	opts := pagemeta.Options{
		Site: pagemeta.SiteInfo{
			Title:    cfg.Site.Title,
			Lang:     cfg.Site.Lang,
			Base:     cfg.Site.Base,
			Hostname: cfg.Site.Hostname,
		},
		WordsPerMinute: cfg.Metadata.WordsPerMinute,
		ExcerptLength:  cfg.Metadata.ExcerptLength,
		Concurrency:    cfg.Metadata.Concurrency,
	}
	if !cfg.Metadata.Git {
		return opts, ""
	}
	repo, err := gitinfo.Open(root)
	switch {
	case err == nil:
		opts.Git = repo
	case errors.Is(err, gitinfo.ErrNoRepository):
		log.Debug("Content is not in a git repository; skipping git metadata", logfields.Path(root))
	default:
		log.Warn("Git metadata unavailable", logfields.Error(err))
		return opts, "git metadata unavailable: " + err.Error()
	}
	return opts, ""
}

func (r *run) write() error {
	st, err := beginStaging(r.cfg.Output.Directory)
	if err != nil {
		return err
	}
	if err := r.writeFiles(st); err != nil {
		st.abort()
		return err
	}
	if err := st.promote(); err != nil {
		st.abort()
		return err
	}
	return nil
}

func (r *run) writeFiles(st *staging) error {
	navbar := r.result.Navbar
	if navbar == nil {
		navbar = []nav.ResolvedRoute{}
	}
	files := []struct {
		name string
		v    any
	}{
		{"site.json", r.cfg.Site},
		{"navbar.json", navbar},
		{"sidebar.json", r.result.Sidebars},
	}
	if r.cfg.Metadata.Enabled && r.index != nil {
		files = append(files, struct {
			name string
			v    any
		}{"pages.json", pagemeta.Summaries(r.result.Pages)})
		for _, pd := range r.result.Pages {
			files = append(files, struct {
				name string
				v    any
			}{path.Join("pages", pd.Key+".json"), pd})
		}
	}
	for _, f := range files {
		if err := st.writeJSON(f.name, f.v); err != nil {
			return err
		}
	}
	if !r.cfg.Output.Clean {
		if err := st.carryOver(); err != nil {
			return stagingError(ErrStaging, err, r.cfg.Output.Directory)
		}
	}

	// The report is written last so it can describe the rest of the output.
	r.report.End = time.Now()
	r.report.Outcome = r.outcome()
	r.report.OutputBytes = st.bytes
	if err := st.writeJSON("build-report.json", r.report); err != nil {
		return err
	}
	return st.writeFile("build-report.txt", []byte(r.report.Summary()+"\n"))
}

func (r *run) outcome() Status {
	if len(r.report.Warnings) > 0 {
		return StatusWarning
	}
	return StatusSuccess
}

// finish derives the status, records metrics and events and publishes
// successful builds.
func (r *run) finish(ctx context.Context, failedStage string, err error) error {
	res, rep, s := r.result, r.report, r.svc
	res.EndTime = s.now()
	res.Duration = res.EndTime.Sub(res.StartTime)
	if rep.End.IsZero() || err != nil {
		rep.End = res.EndTime
	}

	switch {
	case err == nil:
		res.Status = r.outcome()
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		res.Status = StatusCanceled
	default:
		res.Status = StatusFailed
	}
	rep.Outcome = res.Status
	s.recorder.ObserveBuildDuration(res.Duration)
	s.recorder.IncBuildOutcome(outcomeLabel(res.Status))

	if err != nil {
		rep.FailedStage = failedStage
		rep.Error = err.Error()
		r.log.Error("Build failed", logfields.Stage(failedStage), logfields.Error(err))
		ev, evErr := eventstore.NewBuildFailed(res.BuildID, eventstore.BuildFailedPayload{
			Stage:      failedStage,
			Error:      err.Error(),
			Category:   string(ferrors.GetCategory(err)),
			DurationMS: res.Duration.Milliseconds(),
		})
		// A canceled build still gets its failure recorded.
		s.recordEvent(context.WithoutCancel(ctx), r.log, ev, evErr)
		return err
	}

	r.log.Info("Build complete",
		logfields.Outcome(string(res.Status)),
		logfields.Count(rep.Pages),
		logfields.DurationMS(float64(res.Duration.Microseconds())/1000))
	ev, evErr := eventstore.NewBuildCompleted(res.BuildID, eventstore.BuildCompletedPayload{
		DurationMS:    res.Duration.Milliseconds(),
		Pages:         rep.Pages,
		Routes:        rep.NavbarRoutes + rep.SidebarRouteTotal(),
		OutputDir:     res.OutputDir,
		ContentHash:   rep.ContentHash,
		Warnings:      rep.Warnings,
		DanglingLinks: len(rep.DanglingLinks),
	})
	s.recordEvent(ctx, r.log, ev, evErr)
	if !r.req.DryRun {
		r.publish(ctx)
	}
	return nil
}

func (r *run) publish(ctx context.Context) {
	res := r.result
	navbar, err := json.Marshal(res.Navbar)
	if err != nil {
		r.log.Warn("Failed to encode navbar for publication", logfields.Error(err))
		return
	}
	sidebar, err := json.Marshal(res.Sidebars)
	if err != nil {
		r.log.Warn("Failed to encode sidebar for publication", logfields.Error(err))
		return
	}
	err = r.svc.publisher.PublishBuild(ctx, broker.Notification{
		BuildID:     res.BuildID,
		CompletedAt: res.EndTime,
		SiteTitle:   r.cfg.Site.Title,
		Pages:       r.report.Pages,
		Routes:      r.report.NavbarRoutes + r.report.SidebarRouteTotal(),
		ContentHash: r.report.ContentHash,
		OutputDir:   res.OutputDir,
		Navbar:      navbar,
		Sidebar:     sidebar,
	})
	if err != nil {
		r.log.Warn("Failed to publish build", logfields.Error(err))
	}
}

// recordEvent appends an event when an event store is configured. Store
// failures are logged and never fail the build.
func (s *DefaultService) recordEvent(ctx context.Context, log *slog.Logger, e *eventstore.BaseEvent, err error) {
	if s.events == nil {
		return
	}
	if err == nil {
		err = s.events.Append(ctx, e)
	}
	if err != nil {
		log.Warn("Failed to record build event", logfields.Error(err))
	}
}

func outcomeLabel(s Status) metrics.BuildOutcomeLabel {
	switch s {
	case StatusSuccess:
		return metrics.BuildOutcomeSuccess
	case StatusWarning:
		return metrics.BuildOutcomeWarning
	case StatusCanceled:
		return metrics.BuildOutcomeCanceled
	default:
		return metrics.BuildOutcomeFailed
	}
}
