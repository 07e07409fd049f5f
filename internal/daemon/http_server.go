package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"git.home.luguber.info/inful/navbuilder/internal/logfields"
	"git.home.luguber.info/inful/navbuilder/internal/version"

	ferrors "git.home.luguber.info/inful/navbuilder/internal/foundation/errors"
)

const (
	readTimeout     = 10 * time.Second
	writeTimeout    = 10 * time.Second
	idleTimeout     = 60 * time.Second
	shutdownTimeout = 5 * time.Second
)

// HealthStatus is the overall state reported by /healthz.
type HealthStatus string

const (
	HealthStatusHealthy  HealthStatus = "healthy"
	HealthStatusDegraded HealthStatus = "degraded"
	HealthStatusStarting HealthStatus = "starting"
)

// HealthResponse is the body of /healthz.
type HealthResponse struct {
	Status    HealthStatus   `json:"status"`
	Timestamp time.Time      `json:"timestamp"`
	Uptime    string         `json:"uptime"`
	Version   string         `json:"version"`
	Build     StatusSnapshot `json:"build"`
}

// AdminServer exposes metrics, health and the latest resolved trees.
type AdminServer struct {
	addr    string
	mux     *http.ServeMux
	state   *buildState
	errs    *ferrors.HTTPErrorAdapter
	started time.Time

	mu       sync.RWMutex
	listener net.Listener
}

func newAdminServer(addr, metricsPath string, metricsHandler http.Handler, state *buildState) *AdminServer {
	s := &AdminServer{addr: addr, mux: http.NewServeMux(), state: state, errs: ferrors.NewHTTPErrorAdapter(nil), started: time.Now()}
	if metricsHandler != nil {
		s.mux.Handle("GET "+metricsPath, metricsHandler)
	}
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	s.mux.HandleFunc("GET /navbar.json", s.handleTree(func(n, _ []byte) []byte { return n }))
	s.mux.HandleFunc("GET /sidebar.json", s.handleTree(func(_, sb []byte) []byte { return sb }))
	return s
}

// Handler returns the server's routes.
func (s *AdminServer) Handler() http.Handler { return s.mux }

// Addr returns the bound address once Serve is listening.
func (s *AdminServer) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Serve listens and serves until ctx is done, then shuts down gracefully.
func (s *AdminServer) Serve(ctx context.Context) error {
	srv := &http.Server{
		Handler:        s.mux,
		ReadTimeout:    readTimeout,
		WriteTimeout:   writeTimeout,
		IdleTimeout:    idleTimeout,
		MaxHeaderBytes: 1 << 20,
	}
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryRuntime, "failed to listen").WithContext("addr", s.addr).Build()
	}
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()
	slog.Info("Admin server listening", slog.String("addr", ln.Addr().String()))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return ferrors.WrapError(err, ferrors.CategoryRuntime, "admin server failed").Build()
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		slog.Info("Shutting down admin server")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func (s *AdminServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	snap := s.state.snapshot()
	status := HealthStatusHealthy
	switch {
	case snap.Builds == 0:
		status = HealthStatusStarting
	case snap.LastError != "":
		status = HealthStatusDegraded
	}
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    status,
		Timestamp: time.Now(),
		Uptime:    time.Since(s.started).Round(time.Second).String(),
		Version:   version.Version,
		Build:     snap,
	})
}

func (s *AdminServer) handleTree(pick func(navbar, sidebar []byte) []byte) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		navbar, sidebar, buildID, ok := s.state.trees()
		if !ok {
			s.errs.WriteErrorResponse(w, r, ferrors.BuildError("no successful build yet").Retryable().Build())
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Navbuilder-Build", buildID)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(pick(navbar, sidebar))
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("Failed to write response", logfields.Error(err))
	}
}
