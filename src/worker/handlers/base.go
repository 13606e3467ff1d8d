package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"roundup/src/clients/broker"
	"roundup/src/clients/payments"
	"roundup/src/config"
	"roundup/src/database"
	"roundup/src/repositories"
	"roundup/src/services"
	"roundup/src/utils"
	aws_handler "roundup/src/utils/aws"
	"roundup/src/worker/controllers"
)

type Handler struct {
	Controller *controllers.Controller
}

func NewHandler(cfg *config.Config) (*Handler, error) {
	db, err := database.SetupDB(cfg)
	if err != nil {
		return nil, err
	}

	transactionRepo := repositories.NewTransactionRepository(db)
	ledgerRepo := repositories.NewRoundupLedgerRepository(db)
	queueRepo := repositories.NewMarketQueueRepository(db)
	subscriptionRepo := repositories.NewSubscriptionRepository(db)
	renewalQueueRepo := repositories.NewRenewalQueueRepository(db)
	historyRepo := repositories.NewRenewalHistoryRepository(db)

	brokerClient, err := broker.NewClient(cfg)
	if err != nil {
		return nil, err
	}

	var awsHandler *aws_handler.AWSHandler
	if cfg.ExternalClients.Payments.APIKeySecret != "" {
		awsHandler, err = aws_handler.NewAWSHandler(cfg.AWS.Region)
		if err != nil {
			return nil, err
		}
	}
	paymentsClient, err := payments.NewClient(cfg, awsHandler)
	if err != nil {
		return nil, err
	}

	roundupService, err := services.NewRoundupService(cfg, db, transactionRepo, ledgerRepo)
	if err != nil {
		return nil, err
	}
	queueService := services.NewQueueService(cfg, db, queueRepo, transactionRepo, ledgerRepo, brokerClient)
	renewalService := services.NewRenewalService(cfg, db, subscriptionRepo, renewalQueueRepo, historyRepo, paymentsClient)
	reconciliationService := services.NewReconciliationService(db, transactionRepo, ledgerRepo)

	logger := utils.NewLogger(cfg.Logging.Level)
	controller := controllers.NewController(cfg, roundupService, queueService, renewalService, reconciliationService, logger)
	return &Handler{Controller: controller}, nil
}

func (h *Handler) respond(w http.ResponseWriter, _ *http.Request, data interface{}, status int) {
	res, err := json.Marshal(data)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_, _ = w.Write(res)
}

func (h *Handler) HandleErrors(w http.ResponseWriter, err error) {
	var httpErr *utils.HTTPError
	switch {
	case err == nil:
		h.respond(w, nil, map[string]string{"error": "Unhandled error"}, http.StatusInternalServerError)
	case errors.As(err, &httpErr):
		h.respond(w, nil, map[string]string{"error": httpErr.Message}, httpErr.Code)
	case errors.Is(err, utils.ErrNotFound):
		h.respond(w, nil, map[string]string{"error": err.Error()}, http.StatusNotFound)
	case utils.IsTransient(err):
		h.respond(w, nil, map[string]string{"error": err.Error()}, http.StatusServiceUnavailable)
	case errors.Is(err, context.DeadlineExceeded):
		h.respond(w, nil, map[string]string{"error": "Request timed out"}, http.StatusGatewayTimeout)
	default:
		h.respond(w, nil, map[string]string{"error": err.Error()}, http.StatusInternalServerError)
	}
}
