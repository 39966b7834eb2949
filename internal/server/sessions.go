package server

import (
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"github.com/goccy/go-json"

	"github.com/Iron-Ham/flightdash/internal/cursor"
	"github.com/Iron-Ham/flightdash/internal/dashboard"
	"github.com/Iron-Ham/flightdash/internal/series"
)

// maxRequestBody bounds session mutation payloads.
const maxRequestBody = 1 << 16

// SessionInfo summarizes a client session.
type SessionInfo struct {
	ID        string          `json:"id"`
	CreatedAt time.Time       `json:"created_at"`
	Snapshot  cursor.Snapshot `json:"snapshot"`
}

// CursorRequest sets or clears a session's cursor.
type CursorRequest struct {
	Cursor *int `json:"cursor"`
}

// FilterRequest commits or clears one filter.
type FilterRequest struct {
	Dimension string   `json:"dimension"`
	Min       *float64 `json:"min,omitempty"`
	Max       *float64 `json:"max,omitempty"`
	Clear     bool     `json:"clear,omitempty"`
}

func infoOf(sess *dashboard.Session) SessionInfo {
	return SessionInfo{ID: sess.ID, CreatedAt: sess.CreatedAt, Snapshot: sess.Store().Snapshot()}
}

func (s *Server) sessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*dashboard.Session, bool) {
	id := r.PathValue("id")
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		writeJSONError(w, http.StatusNotFound, "session not found: "+id)
	}
	return sess, ok
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
	if err != nil {
		writeInvalidInput(w, fmt.Errorf("read body: %w", err))
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		writeInvalidInput(w, fmt.Errorf("invalid JSON: %w", err))
		return false
	}
	return true
}

// atCapacity reports whether another session would exceed MaxSessions.
// Callers hold s.mu.
func (s *Server) atCapacity() bool {
	return s.cfg.MaxSessions > 0 && len(s.sessions) >= s.cfg.MaxSessions
}

func (s *Server) writeTooManySessions(w http.ResponseWriter) {
	s.logger.Warn("session limit reached", "max_sessions", s.cfg.MaxSessions)
	writeJSONError(w, http.StatusTooManyRequests, fmt.Sprintf("session limit of %d reached", s.cfg.MaxSessions))
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	full := s.atCapacity()
	s.mu.RUnlock()
	if full {
		s.writeTooManySessions(w)
		return
	}

	sess := s.newSession()
	if err := sess.Load(r.Context()); err != nil {
		sess.Close()
		writeJSONError(w, http.StatusServiceUnavailable, err.Error())
		return
	}

	// Concurrent creates may have filled the table during Load.
	s.mu.Lock()
	if s.atCapacity() {
		s.mu.Unlock()
		sess.Close()
		s.writeTooManySessions(w)
		return
	}
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	s.logger.Info("session created", "session_id", sess.ID)
	writeJSON(w, http.StatusCreated, infoOf(sess))
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	infos := make([]SessionInfo, 0, len(s.sessions))
	for _, sess := range s.sessions {
		infos = append(infos, infoOf(sess))
	}
	s.mu.RUnlock()

	sort.Slice(infos, func(i, j int) bool { return infos[i].CreatedAt.Before(infos[j].CreatedAt) })
	writeJSON(w, http.StatusOK, infos)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sess.Views())
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	delete(s.sessions, sess.ID)
	s.mu.Unlock()
	sess.Close()

	s.logger.Info("session deleted", "session_id", sess.ID)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSetCursor(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	var req CursorRequest
	if !decodeBody(w, r, &req) {
		return
	}
	sess.Store().SetCursor(req.Cursor)
	writeJSON(w, http.StatusOK, sess.Views())
}

func (s *Server) handleSetFilter(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	var req FilterRequest
	if !decodeBody(w, r, &req) {
		return
	}
	dim, ok := series.ParseDimension(req.Dimension)
	if !ok {
		writeInvalidInput(w, fmt.Errorf("unknown dimension: %q", req.Dimension))
		return
	}

	switch {
	case req.Clear:
		sess.Store().SetFilter(dim, nil)
	case req.Min != nil && req.Max != nil:
		sess.Store().SetFilter(dim, &series.Range{Min: *req.Min, Max: *req.Max})
	default:
		writeInvalidInput(w, fmt.Errorf("filter needs min and max, or clear"))
		return
	}
	writeJSON(w, http.StatusOK, sess.Views())
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	sess.Controls().Reset()
	writeJSON(w, http.StatusOK, sess.Views())
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	if err := sess.Refresh(r.Context()); err != nil {
		writeJSONError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, sess.Views())
}
