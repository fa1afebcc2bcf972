// ABOUTME: The FormPilot HTTP server: chi router wiring session store, driver, and schema catalog.
package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/formpilot/formpilot-ai/orchestrator"
	"github.com/formpilot/formpilot-ai/session"
)

// Config configures a Server.
type Config struct {
	SchemasDir         string
	CORSAllowedOrigins []string
	MetricsEnabled     bool
	MetricsGatherer    prometheus.Gatherer // nil uses prometheus.DefaultGatherer
}

// Server is the FormPilot HTTP transport adapter: it holds no orchestration
// logic of its own, only routing and request/response marshaling over a
// *session.Store and an *orchestrator.Driver.
type Server struct {
	Store  *session.Store
	Driver *orchestrator.Driver

	schemasDir string
	router     chi.Router
}

// NewServer builds a Server and its router. store and driver must already
// be constructed; NewServer only wires the HTTP surface over them.
func NewServer(store *session.Store, driver *orchestrator.Driver, cfg Config) *Server {
	if cfg.SchemasDir == "" {
		cfg.SchemasDir = "./schemas"
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		cfg.CORSAllowedOrigins = []string{"*"}
	}

	s := &Server{
		Store:      store,
		Driver:     driver,
		schemasDir: cfg.SchemasDir,
	}
	s.router = s.buildRouter(cfg)
	return s
}

// ServeHTTP makes Server an http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) buildRouter(cfg Config) chi.Router {
	r := chi.NewRouter()

	r.Use(requestIDMiddleware)
	r.Use(webRequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(corsMiddleware(cfg.CORSAllowedOrigins))

	r.Route("/api", func(r chi.Router) {
		r.Post("/chat", s.handleChat)
		r.Get("/schemas", s.handleListSchemas)
		r.Get("/schemas/{filename}", s.handleGetSchema)
		r.Post("/sessions/reset", s.handleResetSession)
		r.Get("/health", s.handleHealth)
	})

	if cfg.MetricsEnabled {
		gatherer := cfg.MetricsGatherer
		if gatherer == nil {
			gatherer = prometheus.DefaultGatherer
		}
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	return r
}
