// Package server exposes navigator sessions over HTTP. Each session owns one
// Navigator; requests for the same session are serialized by its mutex.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/ChristianF88/burstx/navigation"
	"github.com/ChristianF88/burstx/palette"
	"github.com/ChristianF88/burstx/tree"
	"github.com/alphadose/haxmap"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

// Options describe how sessions are built and labelled.
type Options struct {
	Title     string
	DataFile  string
	RootLabel string
	Palette   *palette.Palette
}

type session struct {
	mu      sync.Mutex
	id      string
	nav     *navigation.Navigator
	created time.Time
}

// Server is the HTTP API server for burstx.
type Server struct {
	router   chi.Router
	sessions *haxmap.Map[string, *session]
	opts     Options
	log      *zap.Logger

	mu   sync.RWMutex
	root []*tree.Node
}

// New validates root and configures the routes.
func New(root []*tree.Node, opts Options, log *zap.Logger) (*Server, error) {
	if err := tree.Validate(root); err != nil {
		return nil, fmt.Errorf("invalid tree: %w", err)
	}
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{
		sessions: haxmap.New[string, *session](),
		opts:     opts,
		log:      log,
		root:     root,
	}
	s.setupRoutes()
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	r.Get("/health", s.handleHealth)

	r.Route("/api/sessions", func(r chi.Router) {
		r.Post("/", s.handleCreateSession)
		r.Route("/{sessionID}", func(r chi.Router) {
			r.Get("/", s.handleGetSession)
			r.Delete("/", s.handleDeleteSession)
			r.Post("/events", s.handleEvent)
			r.Get("/export", s.handleExport)
			r.Get("/chart", s.handleChart)
		})
	})

	s.router = r
}

func (s *Server) newNavigator(root []*tree.Node) (*navigation.Navigator, error) {
	return navigation.New(root,
		navigation.WithPalette(s.opts.Palette),
		navigation.WithRootLabel(s.opts.RootLabel),
		navigation.WithLogger(s.log),
	)
}

// createSession holds the read lock until the session is stored, so a
// concurrent Reload either sees it or has already swapped the root.
func (s *Server) createSession() (*session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	nav, err := s.newNavigator(s.root)
	if err != nil {
		return nil, err
	}
	sess := &session{id: uuid.NewString(), nav: nav, created: time.Now()}
	s.sessions.Set(sess.id, sess)
	return sess, nil
}

func (s *Server) lookup(id string) (*session, bool) {
	return s.sessions.Get(id)
}

// SessionCount returns the number of live sessions.
func (s *Server) SessionCount() int {
	return int(s.sessions.Len())
}

// Reload swaps in a new tree and resets every session onto it.
func (s *Server) Reload(root []*tree.Node) error {
	if err := tree.Validate(root); err != nil {
		return fmt.Errorf("invalid tree: %w", err)
	}

	s.mu.Lock()
	s.root = root
	s.mu.Unlock()

	var failed error
	reset := 0
	s.sessions.ForEach(func(id string, sess *session) bool {
		nav, err := s.newNavigator(root)
		if err != nil {
			failed = err
			return false
		}
		sess.mu.Lock()
		sess.nav = nav
		sess.mu.Unlock()
		reset++
		return true
	})
	if failed != nil {
		return failed
	}

	s.log.Info("tree reloaded", zap.Int("nodes", tree.Count(root)), zap.Int("sessions_reset", reset))
	return nil
}

// ApplyTree is Reload for callers that only log failures, such as file watchers.
func (s *Server) ApplyTree(root []*tree.Node) {
	if err := s.Reload(root); err != nil {
		s.log.Error("reload rejected", zap.Error(err))
	}
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.log.Info("shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}
