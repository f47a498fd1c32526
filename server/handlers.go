package server

import (
	"net/http"
	"time"

	"github.com/ChristianF88/burstx/navigation"
	"github.com/ChristianF88/burstx/output"
	"github.com/ChristianF88/burstx/pools"
	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

// maxEventBytes bounds the body of an event request.
const maxEventBytes = 64 << 10

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": s.SessionCount(),
	})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	sess, err := s.createSession()
	if err != nil {
		jsonError(w, "failed to create session: "+err.Error(), http.StatusInternalServerError)
		return
	}
	s.log.Debug("session created", zap.String("session", sess.id))

	sess.mu.Lock()
	defer sess.mu.Unlock()
	writeJSON(w, http.StatusCreated, s.state(sess, start))
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	sess, ok := s.sessionFromRequest(w, r)
	if !ok {
		return
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	writeJSON(w, http.StatusOK, s.state(sess, start))
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFromRequest(w, r)
	if !ok {
		return
	}
	s.sessions.Del(sess.id)
	s.log.Debug("session deleted", zap.String("session", sess.id))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleEvent(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	sess, ok := s.sessionFromRequest(w, r)
	if !ok {
		return
	}

	var ev navigation.Event
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxEventBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&ev); err != nil {
		jsonError(w, "invalid event body: "+err.Error(), http.StatusBadRequest)
		return
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if err := sess.nav.Apply(ev); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, s.state(sess, start))
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFromRequest(w, r)
	if !ok {
		return
	}

	sess.mu.Lock()
	rows := sess.nav.Frame().ExportRows()
	sess.mu.Unlock()

	data, err := output.ExportJSON(rows, true)
	if err != nil {
		jsonError(w, "failed to encode export: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFromRequest(w, r)
	if !ok {
		return
	}

	sess.mu.Lock()
	nav := sess.nav
	opts := output.ChartOptions{
		Title:    s.opts.Title,
		Subtitle: nav.BreadcrumbText(" > "),
		Palette:  s.opts.Palette,
		Depth:    nav.Depth(),
	}
	nodes := nav.Frame().Nodes
	sess.mu.Unlock()

	// Render into a buffer so a failure can still produce an error status.
	buf := pools.Buffers.Get()
	defer pools.Buffers.Put(buf)
	if err := output.RenderSunburst(buf, nodes, opts); err != nil {
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

func (s *Server) sessionFromRequest(w http.ResponseWriter, r *http.Request) (*session, bool) {
	id := chi.URLParam(r, "sessionID")
	sess, ok := s.lookup(id)
	if !ok {
		jsonError(w, "session not found: "+id, http.StatusNotFound)
		return nil, false
	}
	return sess, true
}

// state must be called with sess.mu held.
func (s *Server) state(sess *session, start time.Time) *output.JSONOutput {
	out := output.NewJSONOutput(s.opts.Title, start)
	out.Metadata.DataFile = s.opts.DataFile
	out.Metadata.SessionID = sess.id
	out.SetState(sess.nav)
	if sess.nav.Frame().Len() == 0 && sess.nav.Keyword() != "" {
		out.AddWarning("filter", "no segment matches "+sess.nav.Keyword(), 0)
	}
	out.UpdateDuration(start)
	return out
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}
