// Package server exposes route editor sessions over an HTTP JSON API.
//
// Routes live under /api/v1 and operate on one session each:
//
//	POST   /api/v1/sessions                       create and load
//	GET    /api/v1/sessions/{id}                  snapshot
//	POST   /api/v1/sessions/{id}/move             {"direction": "right"}
//	POST   /api/v1/sessions/{id}/tap              {"target": "3", "modifier": true}
//	GET    /api/v1/sessions/{id}/diagram.svg      export
//
// Every mutation responds with the session's new snapshot. Errors use the
// body {"error": {"code": "...", "message": "..."}} with codes from
// pkg/errors.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/matzehuels/motorrutas/pkg/editor"
	"github.com/matzehuels/motorrutas/pkg/session"
)

const shutdownTimeout = 5 * time.Second

// Options configures a Server.
type Options struct {
	Store      session.Store
	NewEditor  func() *editor.Editor
	SessionTTL time.Duration

	AllowedOrigins []string
	Logger         *log.Logger
	// Metrics enables /metrics and request instrumentation when non-nil.
	Metrics *Metrics
}

// Server is the HTTP API.
type Server struct {
	store      session.Store
	newEditor  func() *editor.Editor
	sessionTTL time.Duration
	origins    []string
	logger     *log.Logger
	metrics    *Metrics
}

// New creates a Server. Store and NewEditor are required.
func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = session.DefaultTTL
	}
	return &Server{
		store:      opts.Store,
		newEditor:  opts.NewEditor,
		sessionTTL: opts.SessionTTL,
		origins:    opts.AllowedOrigins,
		logger:     opts.Logger,
		metrics:    opts.Metrics,
	}
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(requestLogger(s.logger))
	if s.metrics != nil {
		r.Use(instrument)
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", s.health)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	r.Route("/api/v1/sessions", func(r chi.Router) {
		r.Post("/", s.createSession)
		r.Route("/{sessionID}", func(r chi.Router) {
			r.Get("/", s.getSession)
			r.Delete("/", s.deleteSession)
			r.Post("/toggle", s.toggle)
			r.Post("/move", s.move)
			r.Post("/tap", s.tap)
			r.Post("/edges", s.connect)
			r.Delete("/edges", s.clearEdges)
			r.Delete("/edges/{edgeID}", s.deleteEdge)
			r.Post("/center", s.center)
			r.Post("/reload", s.reload)
			r.Put("/form", s.setForm)
			r.Get("/diagram.dot", s.diagramDOT)
			r.Get("/diagram.svg", s.diagramSVG)
		})
	})

	return r
}

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.logger.Info("listening", "addr", addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
