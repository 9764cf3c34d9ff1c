// Package server wires the chi router, the middleware chain and the routes
// of the telehealth API, and manages the HTTP server lifecycle.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	_ "net/http/pprof"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/giygas/telehealth-api/config"
	"github.com/giygas/telehealth-api/interfaces"
	"github.com/giygas/telehealth-api/logging"
	"github.com/giygas/telehealth-api/metrics"
	"github.com/giygas/telehealth-api/session"
)

const rateLimitCleanupInterval = 30 * time.Minute

type Server struct {
	server  *http.Server
	router  chi.Router
	handler interfaces.HTTPHandler
	config  *config.Config
	limiter *RateLimiter
}

func NewServer(cfg *config.Config, handler interfaces.HTTPHandler) *Server {
	router := chi.NewRouter()

	s := &Server{
		server: &http.Server{
			Handler:      router,
			Addr:         net.JoinHostPort(cfg.Address, cfg.Port),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		router:  router,
		handler: handler,
		config:  cfg,
		limiter: NewRateLimiter(),
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(RealIPMiddleware)
	s.router.Use(logging.LoggingMiddleware(logging.Logger()))
	s.router.Use(middleware.RedirectSlashes)
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.config.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", session.Header},
		ExposedHeaders:   []string{session.Header, "Content-Disposition", "X-RateLimit-Remaining", "Retry-After"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	s.router.Use(RequestSizeMiddleware(s.config))
	s.router.Use(s.limiter.Handler)
	s.router.Use(metrics.Metrics)
	s.router.Use(middleware.Compress(5, "application/json"))
}

func (s *Server) setupRoutes() {
	h := s.handler

	s.router.Get("/health", h.HealthCheck)
	s.router.Handle("/metrics", promhttp.Handler())

	s.router.Post("/sessions", h.CreateSession)
	s.router.Delete("/sessions", h.EndSession)
	s.router.Post("/risk/assess", h.AssessRisk)

	s.router.Post("/diagnosis", h.ResolveDiagnosis)
	s.router.Get("/diagnoses", h.ListDiagnoses)
	s.router.Get("/diagnoses/{label}/medicines", h.DiagnosisMedicines)

	s.router.Route("/cart", func(r chi.Router) {
		r.Get("/", h.GetCart)
		r.Post("/items", h.AddCartItem)
		r.Post("/quantity/{id}", h.ChangeQuantity)
		r.Post("/checkout", h.Checkout)
	})

	s.router.Get("/camera/permission", h.GetCameraPermission)
	s.router.Post("/camera/permission", h.SetCameraPermission)

	s.router.Post("/login", h.Login)
	s.router.Post("/logout", h.Logout)

	s.router.Route("/dashboard", func(r chi.Router) {
		r.Get("/appointments", h.DashboardAppointments)
		r.Get("/appointments/export", h.ExportAppointments)
		r.Post("/appointments/{id}/status", h.UpdateAppointmentStatus)
		r.Get("/patients", h.DashboardPatients)
		r.Get("/counts", h.DashboardCounts)
	})

	s.router.Route("/calls", func(r chi.Router) {
		r.Post("/", h.StartCall)
		r.Get("/{id}", h.GetCall)
		r.Post("/{id}/toggle/{kind}", h.ToggleCall)
		r.Delete("/{id}", h.EndCall)
	})
}

// Router exposes the configured router, mainly for tests
func (s *Server) Router() http.Handler {
	return s.router
}

// Start listens until Shutdown. It returns nil after a graceful shutdown.
func (s *Server) Start() error {
	if s.config.Env == config.EnvDevelopment {
		s.startProfilingServer()
	}
	s.limiter.StartCleanup(rateLimitCleanupInterval)

	logging.Info("Starting server", "address", s.server.Addr, "env", s.config.Env.String())
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and forces the server closed when ctx
// expires first
func (s *Server) Shutdown(ctx context.Context) error {
	logging.Info("Shutting down server...")
	s.limiter.Stop()

	if err := s.server.Shutdown(ctx); err != nil {
		logging.Error("Server forced to shutdown", "error", err)
		if err := s.server.Close(); err != nil {
			logging.Error("Server close error", "error", err)
			return err
		}
	}

	logging.Info("Server shutdown complete")
	return nil
}

// startProfilingServer serves pprof on localhost in development
func (s *Server) startProfilingServer() {
	go func() {
		logging.Info("Profiling server started at http://localhost:6060/debug/pprof/")
		if err := http.ListenAndServe("localhost:6060", nil); err != nil {
			logging.Warn("Profiling server failed", "error", err)
		}
	}()
}
