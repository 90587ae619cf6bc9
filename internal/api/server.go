// Package api exposes the section store over HTTP and streams committed
// change sets over a websocket.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"dwellingcore/internal/core"
	"dwellingcore/internal/export"
	"dwellingcore/pkg/domain"
)

// Server serves the document API.
type Server struct {
	svc      *core.Service
	exporter *export.Exporter
	metrics  http.Handler
	logger   core.Logger
	feed     feedOptions
}

// Option configures a Server.
type Option func(*Server)

// WithExporter enables the export endpoints.
func WithExporter(e *export.Exporter) Option {
	return func(s *Server) { s.exporter = e }
}

// WithMetricsHandler mounts h at /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) { s.metrics = h }
}

// WithLogger sets the request logger.
func WithLogger(l core.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithFeedBuffer sets how many change sets a websocket client may lag behind
// before it is disconnected.
func WithFeedBuffer(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.feed.buffer = n
		}
	}
}

// NewServer builds a server over svc.
func NewServer(svc *core.Service, opts ...Option) *Server {
	s := &Server{
		svc:    svc,
		logger: nopLogger{},
		feed:   feedOptions{buffer: 64, writeTimeout: 5 * time.Second},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Routes returns the HTTP handler.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		s.writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "version": s.svc.Store().Version()})
	})
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics)
	}

	r.Route("/v1", func(r chi.Router) {
		r.Get("/document", s.getDocument)
		r.Get("/report", s.getReport)
		r.Get("/resolved", s.getResolved)
		r.Post("/reset", s.reset)
		r.Post("/revalidate", s.revalidate)
		r.Get("/changes", s.changes)

		r.Route("/sections/{path}", func(r chi.Router) {
			r.Get("/", s.getSection)
			r.Post("/complete", s.markSectionComplete)
			r.Put("/drafts", s.commitDraft)
			r.Post("/items", s.addItem)
			r.Route("/items/{index}", func(r chi.Router) {
				r.Patch("/", s.updateItem)
				r.Delete("/", s.removeItem)
				r.Post("/duplicate", s.duplicateItem)
				r.Post("/complete", s.completeItem)
			})
		})

		r.Route("/exports", func(r chi.Router) {
			r.Get("/", s.listExports)
			r.Post("/", s.createExport)
		})
	})
	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

type sectionResponse struct {
	Path     domain.SectionPath `json:"path"`
	Status   domain.Status      `json:"status"`
	Items    []domain.Item      `json:"data"`
	Complete bool               `json:"complete"`
}
