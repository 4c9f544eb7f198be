package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/me/quantsched/internal/config"
	"github.com/me/quantsched/pkg/model"
)

// SystemMonitor is the resource-monitor surface the server exposes.
type SystemMonitor interface {
	Summary(ctx context.Context) (model.Summary, error)
}

// EventSource is the queue surface the server reads and streams from.
type EventSource interface {
	Status(owner string) model.QueueStatus
	Subscribe() chan model.Event
	Unsubscribe(ch chan model.Event)
}

// Server is the QuantSched REST/SSE API server. It only observes the
// scheduler core; job submission belongs to the job routers built on top.
type Server struct {
	router    chi.Router
	logger    *slog.Logger
	config    config.ServerConfig
	startTime time.Time
	monitor   SystemMonitor
	queue     EventSource

	// heartbeatInterval is how long an SSE connection may sit idle before
	// a heartbeat with a fresh resource summary is pushed.
	heartbeatInterval time.Duration
}

// New creates a new Server with all routes registered.
func New(cfg config.ServerConfig, monitor SystemMonitor, queue EventSource, logger *slog.Logger) *Server {
	s := &Server{
		router:            chi.NewRouter(),
		logger:            logger.With("component", "server"),
		config:            cfg,
		startTime:         time.Now(),
		monitor:           monitor,
		queue:             queue,
		heartbeatInterval: 5 * time.Second,
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Handler returns the http.Handler for this server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() {
	r := s.router

	// Global middleware
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(s.logger))

	r.Route("/api/v1", func(r chi.Router) {
		// Discovery
		r.Get("/", s.handleDiscovery)

		// Health
		r.Get("/health", s.handleHealth)

		// System observability
		r.Route("/system", func(r chi.Router) {
			r.Get("/resources", s.handleSystemResources)
			r.Get("/hardware", s.handleHardware)
			r.Get("/queue", s.handleQueueStatus)
		})

		// SSE endpoint for real-time scheduler events
		r.Route("/sse", func(r chi.Router) {
			r.Get("/events", s.handleSSEEvents)
		})
	})
}
