package server

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"parking-allocator/internal/config"
)

type Server struct {
	httpServer *http.Server
	handler    *Handler
}

func New(cfg *config.Config, engine Engine) *Server {
	handler := NewHandler(engine)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      NewRouter(handler),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return &Server{
		httpServer: httpServer,
		handler:    handler,
	}
}

// NewRouter mounts all routes and middleware on a fresh chi router.
func NewRouter(handler *Handler) chi.Router {
	r := chi.NewRouter()

	r.Use(RecoveryMiddleware)
	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware)
	r.Use(TracingMiddleware)
	r.Use(CORSMiddleware)

	r.Get("/health", handler.HealthCheck)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	r.Route("/api/parking", func(r chi.Router) {
		r.Post("/spots", handler.RegisterSpot)
		r.Post("/park", handler.Park)
		r.Post("/exit", handler.Exit)
		r.Get("/status", handler.GetStatus)
		r.Get("/tickets", handler.ListTickets)
		r.Get("/vehicles/{plate}", handler.FindVehicle)
	})

	r.Route("/api/reservations", func(r chi.Router) {
		r.Post("/", handler.Reserve)
		r.Get("/", handler.ListReservations)
		r.Post("/{id}/activate", handler.ActivateReservation)
		r.Post("/{id}/complete", handler.CompleteReservation)
		r.Post("/{id}/cancel", handler.CancelReservation)
	})

	return r
}

func (s *Server) Start() error {
	logrus.WithField("addr", s.httpServer.Addr).Info("starting HTTP server")
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	logrus.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}
