// Package server exposes one editing session over a local HTTP API. It is
// the transport the desktop shell talks to; every route delegates to the
// session, which owns all state and ordering.
package server

import (
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/nodemap/nodemap/pkg/cache"
	"github.com/nodemap/nodemap/pkg/session"
)

// Server wires a session and a render cache into an HTTP handler.
type Server struct {
	session *session.Session
	cache   cache.Cache
	logger  *log.Logger
	ttl     time.Duration
}

// Options configures a server.
type Options struct {
	// Cache backs rendered exports. Defaults to a NullCache.
	Cache cache.Cache

	// CacheTTL is the lifetime of cached exports. Zero means no expiry.
	CacheTTL time.Duration

	// Logger receives request and error logs. Defaults to log.Default().
	Logger *log.Logger
}

// New creates a server around an existing session.
func New(s *session.Session, opts Options) *Server {
	c := opts.Cache
	if c == nil {
		c = cache.NewNullCache()
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Server{session: s, cache: c, logger: logger, ttl: opts.CacheTTL}
}

// Handler builds the route tree.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/graph", s.handleGraph)
		r.Get("/status", s.handleStatus)

		r.Route("/nodes", func(r chi.Router) {
			r.Post("/", s.handleAddNode)
			r.Delete("/{nodeID}", s.handleDeleteNode)
			r.Post("/{nodeID}/tag", s.handleRetag)
			r.Post("/{nodeID}/select", s.handleSelectNode)
			r.Get("/{nodeID}/note", s.handleGetNote)
			r.Put("/{nodeID}/note", s.handlePutNote)
		})

		r.Route("/edges", func(r chi.Router) {
			r.Post("/", s.handleConnect)
			r.Delete("/{edgeID}", s.handleDeleteEdge)
			r.Post("/{edgeID}/toggle", s.handleToggleEdge)
			r.Post("/{edgeID}/select", s.handleSelectEdge)
		})

		r.Route("/tags", func(r chi.Router) {
			r.Get("/", s.handleTags)
			r.Post("/", s.handleCreateTag)
		})

		r.Delete("/selection", s.handleClearSelection)
		r.Post("/layout", s.handleLayout)

		r.Post("/document/open", s.handleOpen)
		r.Post("/document/new", s.handleNew)
		r.Post("/document/save", s.handleSave)
		r.Post("/document/save-as", s.handleSaveAs)

		r.Get("/export.svg", s.handleExportSVG)
	})

	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
		)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
