package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"roundup/src/api/controllers"
	"roundup/src/clients/broker"
	"roundup/src/clients/payments"
	"roundup/src/config"
	"roundup/src/database"
	"roundup/src/repositories"
	"roundup/src/services"
	"roundup/src/utils"
	aws_handler "roundup/src/utils/aws"
	redis_utils "roundup/src/utils/redis"
)

type Handler struct {
	TransactionsController controllers.TransactionsControllerI
	SettlementController   controllers.SettlementControllerI
	RenewalsController     controllers.RenewalsControllerI
	FinancialsController   controllers.FinancialsControllerI
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
	costRepo := repositories.NewOperatingCostRepository(db)

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

	var redisHandler *redis_utils.RedisHandler
	if cfg.Databases.Redis.Enabled {
		redisHandler, err = redis_utils.NewRedisHandler(cfg)
		if err != nil {
			return nil, err
		}
	}

	roundupService, err := services.NewRoundupService(cfg, db, transactionRepo, ledgerRepo)
	if err != nil {
		return nil, err
	}
	queueService := services.NewQueueService(cfg, db, queueRepo, transactionRepo, ledgerRepo, brokerClient)
	renewalService := services.NewRenewalService(cfg, db, subscriptionRepo, renewalQueueRepo, historyRepo, paymentsClient)
	reconciliationService := services.NewReconciliationService(db, transactionRepo, ledgerRepo)
	financialService := services.NewFinancialService()

	return &Handler{
		TransactionsController: controllers.NewTransactionsController(transactionRepo),
		SettlementController: controllers.NewSettlementController(
			roundupService, queueService, reconciliationService, ledgerRepo, queueRepo),
		RenewalsController: controllers.NewRenewalsController(
			renewalService, subscriptionRepo, renewalQueueRepo, historyRepo),
		FinancialsController: controllers.NewFinancialsController(
			db, financialService, subscriptionRepo, historyRepo, renewalQueueRepo, ledgerRepo, queueRepo, costRepo, redisHandler),
	}, nil
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

// HandleErrors maps domain sentinels onto HTTP status codes.
func (h *Handler) HandleErrors(w http.ResponseWriter, err error) {
	var httpErr *utils.HTTPError
	switch {
	case err == nil:
		h.respond(w, nil, map[string]string{"error": "Unhandled error"}, http.StatusInternalServerError)
	case errors.As(err, &httpErr):
		h.respond(w, nil, map[string]string{"error": httpErr.Message}, httpErr.Code)
	case errors.Is(err, utils.ErrInvalidAmount):
		h.respond(w, nil, map[string]string{"error": err.Error()}, http.StatusUnprocessableEntity)
	case errors.Is(err, utils.ErrNotFound):
		h.respond(w, nil, map[string]string{"error": err.Error()}, http.StatusNotFound)
	case errors.Is(err, utils.ErrAlreadyTerminal):
		h.respond(w, nil, map[string]string{"error": err.Error()}, http.StatusConflict)
	case utils.IsTransient(err):
		h.respond(w, nil, map[string]string{"error": err.Error()}, http.StatusServiceUnavailable)
	case errors.Is(err, context.DeadlineExceeded):
		h.respond(w, nil, map[string]string{"error": "Request timed out"}, http.StatusGatewayTimeout)
	default:
		h.respond(w, nil, map[string]string{"error": err.Error()}, http.StatusInternalServerError)
	}
}

// pagination reads limit and offset query parameters, clamping to sane bounds.
func pagination(r *http.Request) (limit, offset int) {
	limit, offset = 100, 0
	if value := r.URL.Query().Get("limit"); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 && parsed <= 1000 {
			limit = parsed
		}
	}
	if value := r.URL.Query().Get("offset"); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed >= 0 {
			offset = parsed
		}
	}
	return limit, offset
}
