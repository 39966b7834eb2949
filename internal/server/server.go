// Package server exposes the raw series and derived views over HTTP, plus
// per-client dashboard sessions that hold their own cursor and filters.
package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/Iron-Ham/flightdash/internal/dashboard"
	"github.com/Iron-Ham/flightdash/internal/errors"
	"github.com/Iron-Ham/flightdash/internal/logging"
	"github.com/Iron-Ham/flightdash/internal/series"
	"github.com/Iron-Ham/flightdash/internal/source"
	"github.com/Iron-Ham/flightdash/internal/view"
)

// Config configures a Server.
type Config struct {
	Addr    string
	Source  source.Source
	Options view.Options
	Timeout time.Duration
	Logger  *logging.Logger

	// MaxSessions caps concurrent client sessions. Zero means no limit.
	MaxSessions int
}

// Server serves the flightdash HTTP API.
type Server struct {
	cfg    Config
	server *http.Server
	logger *logging.Logger

	// base backs the stateless endpoints.
	base *dashboard.Session

	mu       sync.RWMutex
	sessions map[string]*dashboard.Session
}

// New creates a Server. Call Load before serving the views endpoint.
func New(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = logging.NopLogger()
	}
	s := &Server{
		cfg:      cfg,
		logger:   cfg.Logger.With("component", "server"),
		sessions: make(map[string]*dashboard.Session),
	}
	s.base = s.newSession()
	s.server = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) newSession() *dashboard.Session {
	return dashboard.NewSession(s.cfg.Source, dashboard.Config{
		Options: s.cfg.Options,
		Timeout: s.cfg.Timeout,
		Logger:  s.cfg.Logger,
	})
}

// Base returns the session behind the stateless endpoints.
func (s *Server) Base() *dashboard.Session { return s.base }

// Load fetches the base session's data.
func (s *Server) Load(ctx context.Context) error {
	return s.base.Load(ctx)
}

// Refresh reloads the base session and every client session.
func (s *Server) Refresh(ctx context.Context) error {
	var errs []error
	if err := s.base.Refresh(ctx); err != nil {
		errs = append(errs, err)
	}
	s.mu.RLock()
	sessions := make([]*dashboard.Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		sessions = append(sessions, sess)
	}
	s.mu.RUnlock()
	for _, sess := range sessions {
		if err := sess.Refresh(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Handler returns the API routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)

	mux.HandleFunc("GET /api/trajectory", s.handleTrajectory)
	mux.HandleFunc("GET /api/losses", s.handleLosses)
	mux.HandleFunc("GET /api/feature-loss-matrix", s.handleMatrix)
	mux.HandleFunc("GET /api/features", s.handleFeatures)
	mux.HandleFunc("GET /api/views", s.handleViews)

	mux.HandleFunc("POST /api/sessions", s.handleCreateSession)
	mux.HandleFunc("GET /api/sessions", s.handleListSessions)
	mux.HandleFunc("GET /api/sessions/{id}", s.handleGetSession)
	mux.HandleFunc("DELETE /api/sessions/{id}", s.handleDeleteSession)
	mux.HandleFunc("POST /api/sessions/{id}/cursor", s.handleSetCursor)
	mux.HandleFunc("POST /api/sessions/{id}/filter", s.handleSetFilter)
	mux.HandleFunc("POST /api/sessions/{id}/reset", s.handleReset)
	mux.HandleFunc("POST /api/sessions/{id}/refresh", s.handleRefresh)

	return s.logRequests(mux)
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "addr", s.cfg.Addr)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn("HTTP server shutdown error", "error", err.Error())
		_ = s.server.Close()
	}
	s.closeSessions()
	return nil
}

func (s *Server) closeSessions() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, sess := range s.sessions {
		sess.Close()
		delete(s.sessions, id)
	}
	s.base.Close()
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("request", "method", r.Method, "path", r.URL.Path, "duration_ms", time.Since(start).Milliseconds())
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeInvalidInput rejects a malformed request with 400.
func writeInvalidInput(w http.ResponseWriter, err error) {
	if !errors.Is(err, errors.ErrInvalidInput) {
		err = fmt.Errorf("%w: %v", errors.ErrInvalidInput, err)
	}
	writeJSONError(w, http.StatusBadRequest, err.Error())
}

// writeSourceError maps a fetch failure to a status code.
func writeSourceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errors.ErrMalformedSeries):
		writeJSONError(w, http.StatusUnprocessableEntity, errors.UserMessage(err))
	case errors.IsRetryable(err):
		writeJSONError(w, http.StatusServiceUnavailable, errors.UserMessage(err))
	default:
		writeJSONError(w, http.StatusBadGateway, errors.UserMessage(err))
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"source":   s.cfg.Source.Name(),
		"sessions": s.sessionCount(),
	})
}

func (s *Server) handleTrajectory(w http.ResponseWriter, r *http.Request) {
	tr, err := s.cfg.Source.Trajectory(r.Context())
	if err != nil {
		writeSourceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tr)
}

// lossesPayload mirrors the columnar layout clients expect.
type lossesPayload struct {
	Time    []int     `json:"time"`
	AvgLoss []float64 `json:"avgLoss"`
}

func (s *Server) handleLosses(w http.ResponseWriter, r *http.Request) {
	ls, err := s.cfg.Source.Losses(r.Context())
	if err != nil {
		writeSourceError(w, err)
		return
	}
	p := lossesPayload{Time: make([]int, len(ls)), AvgLoss: ls.Values()}
	for i, pt := range ls {
		p.Time[i] = pt.T
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleMatrix(w http.ResponseWriter, r *http.Request) {
	m, err := s.cfg.Source.FeatureMatrix(r.Context())
	if err != nil {
		writeSourceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) handleFeatures(w http.ResponseWriter, r *http.Request) {
	groups, err := s.cfg.Source.FeatureGroups(r.Context())
	if err != nil {
		writeSourceError(w, err)
		return
	}
	if groups == nil {
		groups = []series.FeatureGroup{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"groups": groups})
}

// handleViews derives all views for the query parameters cursor, time and
// alt against the base session without changing its state.
func (s *Server) handleViews(w http.ResponseWriter, r *http.Request) {
	q, ok := parseQuery(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.base.ViewsFor(q))
}

func parseQuery(w http.ResponseWriter, r *http.Request) (dashboard.Query, bool) {
	v := r.URL.Query()
	q, err := dashboard.ParseQuery(v.Get("cursor"), v.Get("time"), v.Get("alt"))
	if err != nil {
		writeInvalidInput(w, err)
		return dashboard.Query{}, false
	}
	return q, true
}
