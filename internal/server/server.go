// Package server exposes the sidebar transforms over HTTP alongside the
// health, readiness and metrics endpoints.
package server

import (
	"context"
	stderrors "errors"
	"net/http"
	"sort"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"chime-sidebar/internal/common/config"
	"chime-sidebar/internal/common/logger"
	"chime-sidebar/internal/sidebar/parscache"
	downloadlink "chime-sidebar/internal/workers/sidebar/download-link"
	updateparameters "chime-sidebar/internal/workers/sidebar/update-parameters"
)

// CheckFunc reports whether a dependency is reachable.
type CheckFunc func(ctx context.Context) error

// Deps are the collaborators behind the API routes. Cache and Checks may be
// empty.
type Deps struct {
	Parameters *updateparameters.Handler
	Link       *downloadlink.Handler
	Cache      *parscache.Store
	Checks     map[string]CheckFunc
	Metrics    http.Handler
}

type Server struct {
	deps   Deps
	logger logger.Logger
	http   *http.Server
	now    func() time.Time
}

func New(cfg config.ServerConfig, deps Deps, log logger.Logger) *Server {
	if deps.Metrics == nil {
		deps.Metrics = promhttp.Handler()
	}
	s := &Server{
		deps:   deps,
		logger: log.WithFields(map[string]interface{}{"component": "http"}),
		now:    time.Now,
	}
	s.http = &http.Server{
		Addr:         cfg.Addr(),
		Handler:      s.Handler(),
		ReadTimeout:  config.GetDuration(cfg.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.WriteTimeout),
	}
	return s
}

// Handler returns the routed handler with logging and panic recovery.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/sidebar/inputs", s.handleInputs)
	mux.HandleFunc("POST /api/sidebar/parameters", s.handleParameters)
	mux.HandleFunc("POST /api/sidebar/download-link", s.handleDownloadLink)
	mux.HandleFunc("GET /api/sidebar/pars/{key}", s.handlePars)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /ready", s.handleReady)
	mux.Handle("GET /metrics", s.deps.Metrics)
	return s.recoverer(s.logRequests(mux))
}

// Start serves until Shutdown; it returns nil after a clean shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server listening", map[string]interface{}{"addr": s.http.Addr})
	if err := s.http.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   s.now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	names := make([]string, 0, len(s.deps.Checks))
	for name := range s.deps.Checks {
		names = append(names, name)
	}
	sort.Strings(names)

	checks := make(map[string]string, len(names))
	status := http.StatusOK
	for _, name := range names {
		if err := s.deps.Checks[name](r.Context()); err != nil {
			checks[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}

	state := "ready"
	if status != http.StatusOK {
		state = "not_ready"
	}
	writeJSON(w, status, map[string]interface{}{
		"status": state,
		"checks": checks,
		"time":   s.now().UTC().Format(time.RFC3339),
	})
}
