package api

import (
	"net/http"
	"time"

	handlers "roundup/src/api/handlers"
	"roundup/src/config"
	"roundup/src/utils"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

type Server struct {
	Router  *chi.Mux
	Handler *handlers.Handler
	Port    string
}

func NewServer(cfg *config.Config) (*Server, error) {
	handler, err := handlers.NewHandler(cfg)
	if err != nil {
		return nil, err
	}
	server := &Server{
		Router:  chi.NewRouter(),
		Handler: handler,
		Port:    cfg.Service.Port,
	}
	server.InitRoutes(utils.NewLogger(cfg.Logging.Level))
	return server, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}

func (s *Server) InitRoutes(logger *logrus.Logger) {
	s.Router.Use(requestLogger(logger))

	s.Router.Get("/alive", handlers.Healthcheck)

	s.Router.Route("/api/transactions", func(r chi.Router) {
		r.Get("/", s.Handler.GetAllTransactions)
		r.Post("/", s.Handler.CreateTransaction)
		r.Get("/{id}", s.Handler.GetTransactionByID)
	})

	s.Router.Route("/api/roundups", func(r chi.Router) {
		r.Get("/", s.Handler.GetLedgerEntries)
		r.Post("/build", s.Handler.BuildRoundups)
		r.Post("/stage", s.Handler.StageQueue)
	})

	s.Router.Route("/api/queue", func(r chi.Router) {
		r.Get("/", s.Handler.GetQueueItems)
		r.Post("/execute", s.Handler.ExecuteQueue)
		r.Post("/requeue-stuck", s.Handler.RequeueStuck)
	})

	s.Router.Route("/api/subscriptions", func(r chi.Router) {
		r.Get("/", s.Handler.GetAllSubscriptions)
		r.Post("/", s.Handler.CreateSubscription)
		r.Get("/{id}", s.Handler.GetSubscriptionByID)
		r.Post("/{id}/cancel", s.Handler.CancelSubscription)
		r.Get("/{id}/history", s.Handler.GetSubscriptionHistory)
	})

	s.Router.Route("/api/renewals", func(r chi.Router) {
		r.Get("/", s.Handler.GetRenewalQueue)
		r.Get("/history", s.Handler.GetRenewalHistory)
		r.Post("/run", s.Handler.RunDueRenewals)
		r.Post("/{subscriptionID}/attempt", s.Handler.AttemptRenewal)
	})

	s.Router.Route("/api/costs", func(r chi.Router) {
		r.Get("/", s.Handler.GetOperatingCosts)
		r.Post("/", s.Handler.CreateOperatingCost)
	})

	s.Router.Route("/api/financials", func(r chi.Router) {
		r.Get("/revenue", s.Handler.GetRevenueView)
		r.Get("/pnl", s.Handler.GetProfitAndLossView)
		r.Get("/cashflow", s.Handler.GetCashFlowView)
		r.Get("/balance-sheet", s.Handler.GetBalanceSheet)
	})

	s.Router.Get("/api/reconciliation", s.Handler.CheckFees)
}

// requestLogger injects the service logger into every request context.
func requestLogger(logger *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(utils.WithLogger(r.Context(), logger)))
		})
	}
}

func NewHTTPServer(server *Server) *http.Server {
	port := server.Port
	if port == "" {
		port = "8000"
	}
	return &http.Server{
		Addr:         ":" + port,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		Handler:      server,
	}
}
