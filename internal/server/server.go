// Package server exposes the editor operations over a JSON HTTP API.
//
// Every request names a document in the URL and carries the context stack
// it operates at, either as a "context" field in the body or as a
// slash-separated "context" query parameter ("stage/inner"). The server
// keeps no per-client state.
package server

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/matzehuels/hiernet/pkg/buildinfo"
	"github.com/matzehuels/hiernet/pkg/editor"
	"github.com/matzehuels/hiernet/pkg/errors"
	hio "github.com/matzehuels/hiernet/pkg/io"
	"github.com/matzehuels/hiernet/pkg/observability"
)

// Options configures a [Server].
type Options struct {
	// AllowedOrigins lists CORS origins. Empty allows none.
	AllowedOrigins []string
	// Logger receives one line per request. Nil discards.
	Logger *log.Logger
	// Hooks observe requests. Nil uses the globally registered hooks.
	Hooks observability.HTTPHooks
}

// Server serves the HTTP API for a runner.
type Server struct {
	runner *editor.Runner
	opts   Options
	logger *log.Logger
	hooks  observability.HTTPHooks
}

// New creates a server for r.
func New(r *editor.Runner, opts Options) *Server {
	s := &Server{runner: r, opts: opts, logger: opts.Logger, hooks: opts.Hooks}
	if s.logger == nil {
		s.logger = log.New(io.Discard)
	}
	if s.hooks == nil {
		s.hooks = observability.HTTP()
	}
	return s
}

// Handler returns the routed API.
func (s *Server) Handler() http.Handler {
	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(requestLogger(s.logger, s.hooks))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.opts.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	router.Get("/healthz", s.healthz)

	router.Route("/documents", func(r chi.Router) {
		r.Get("/", s.listDocuments)
		r.Route("/{name}", func(r chi.Router) {
			r.Get("/", s.getDocument)
			r.Post("/", s.createDocument)
			r.Put("/", s.putDocument)
			r.Delete("/", s.deleteDocument)

			r.Post("/nodes", s.addNode)
			r.Patch("/nodes/{id}", s.updateNode)
			r.Delete("/nodes", s.deleteNodes)

			r.Post("/edges", s.addEdge)
			r.Patch("/edges/{id}", s.updateEdge)
			r.Delete("/edges", s.deleteEdges)

			r.Post("/fold", s.fold)
			r.Post("/export", s.export)
			r.Post("/instantiate", s.instantiate)

			r.Get("/ports", s.ports)
			r.Get("/check", s.check)
			r.Get("/dot", s.dot)
			r.Get("/render", s.render)
		})
	})

	return router
}

// ListenAndServe serves on addr until ctx is cancelled, then drains open
// requests for up to five seconds.
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
		return errors.Wrap(errors.ErrCodeNetwork, err, "listen on %s", addr)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "shutdown")
	}
	s.logger.Info("server stopped")
	return ctx.Err()
}

type healthResponse struct {
	Status          string         `json:"status"`
	Build           buildinfo.Info `json:"build"`
	DocumentVersion int            `json:"documentVersion"`
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, healthResponse{Status: "ok", Build: buildinfo.Get(), DocumentVersion: hio.Version})
}
