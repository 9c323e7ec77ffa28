// Package server exposes the badge pipeline over HTTP.
//
// # Endpoints
//
//	GET    /                                service info
//	GET    /api/v1/health                   liveness probe
//	POST   /api/v1/badge/generate           document → JSON with a base64 PNG data URI
//	POST   /api/v1/badge/render             document → raw image (?format=png|jpeg)
//	GET    /api/v1/templates                list templates
//	GET    /api/v1/templates/{name}         get one template
//	PUT    /api/v1/templates/{name}         create or replace a template
//	DELETE /api/v1/templates/{name}         delete a stored template
//	POST   /api/v1/templates/{name}/render  render a template (?format=png|jpeg)
//
// Every response carries X-Request-ID and X-Process-Time headers. Errors are
// JSON objects with success=false, a message and the error code; caller
// mistakes map to 400, missing templates to 404 and render timeouts to 504.
package server

import (
	"context"
	stderrors "errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/badgeforge/pkg/config"
	"github.com/matzehuels/badgeforge/pkg/pipeline"
	"github.com/matzehuels/badgeforge/pkg/store"
)

// Server serves badge renders and templates.
type Server struct {
	runner    *pipeline.Runner
	templates store.Store
	base      pipeline.Options
	cfg       config.ServerConfig
	logger    *log.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request and error logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithConfig sets addresses, timeouts, body limits and CORS origins.
func WithConfig(c config.ServerConfig) Option {
	return func(s *Server) { s.cfg = c }
}

// New creates a Server. base supplies the render limits and asset resolver
// applied to every request; the request only chooses the output format.
func New(runner *pipeline.Runner, templates store.Store, base pipeline.Options, opts ...Option) *Server {
	s := &Server{
		runner:    runner,
		templates: templates,
		base:      base,
		cfg:       config.Default().Server,
		logger:    log.NewWithOptions(io.Discard, log.Options{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.templates == nil {
		s.templates = store.WithBuiltins(store.NewMemoryStore())
	}
	if s.base.Logger == nil {
		s.base.Logger = s.logger
	}
	return s
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(processTime)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors(s.cfg.CORSOrigins))
	if s.cfg.RenderTimeout > 0 {
		r.Use(middleware.Timeout(s.cfg.RenderTimeout))
	}

	r.Get("/", s.handleInfo)
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Post("/badge/generate", s.handleGenerate)
		r.Post("/badge/render", s.handleRender)

		r.Route("/templates", func(r chi.Router) {
			r.Get("/", s.handleListTemplates)
			r.Route("/{name}", func(r chi.Router) {
				r.Get("/", s.handleGetTemplate)
				r.Put("/", s.handlePutTemplate)
				r.Delete("/", s.handleDeleteTemplate)
				r.Post("/render", s.handleRenderTemplate)
			})
		})
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorResponse{Message: "route not found", Code: "NOT_FOUND"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Message: "method not allowed", Code: "METHOD_NOT_ALLOWED"})
	})
	return r
}

// ListenAndServe serves on the configured address until ctx is cancelled,
// then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.cfg.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
