package worker

import (
	"net/http"
	"time"

	"roundup/src/config"
	"roundup/src/utils"
	handlers "roundup/src/worker/handlers"

	"github.com/go-chi/chi/v5"
)

type Server struct {
	Router  *chi.Mux
	Handler *handlers.Handler
	Port    string
}

// NewServer builds the worker and registers its cron schedules, so jobs run
// from boot without any manual kick.
func NewServer(cfg *config.Config) (*Server, error) {
	handler, err := handlers.NewHandler(cfg)
	if err != nil {
		return nil, err
	}
	if err := handler.Controller.StartScheduledJobs(); err != nil {
		return nil, err
	}
	server := &Server{
		Router:  chi.NewRouter(),
		Handler: handler,
		Port:    cfg.Service.Port,
	}
	server.InitRoutes()
	return server, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}

func (s *Server) InitRoutes() {
	// Manual triggers share the scheduled jobs' logger.
	s.Router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(utils.WithLogger(r.Context(), s.Handler.Controller.Logger)))
		})
	})

	s.Router.Get("/alive", handlers.Healthcheck)

	s.Router.Route("/api/jobs", func(r chi.Router) {
		r.Get("/", s.Handler.GetScheduledJobs)
		r.Post("/start", s.Handler.StartScheduledJobs)
		r.Post("/settle", s.Handler.RunSettlement)
		r.Post("/renewals", s.Handler.RunRenewals)
		r.Post("/reconcile", s.Handler.RunReconciliation)
	})
}

func NewHTTPServer(server *Server) *http.Server {
	port := server.Port
	if port == "" {
		port = "8000"
	}
	httpServer := &http.Server{
		Addr:         ":" + port,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 3 * time.Minute,
		Handler:      server,
	}
	return httpServer
}
