package controllers

import (
	"sync"

	"roundup/src/config"
	"roundup/src/scheduler"
	"roundup/src/services"

	"github.com/sirupsen/logrus"
)

type Controller struct {
	RoundupService        services.RoundupServiceI
	QueueService          services.QueueServiceI
	RenewalService        services.RenewalServiceI
	ReconciliationService services.ReconciliationServiceI
	Logger                *logrus.Logger

	Jobs           config.JobsConfig
	SchedulerMutex sync.Mutex
	Schedulers     map[string]*scheduler.ScheduledTask
}

func NewController(
	cfg *config.Config,
	roundupService services.RoundupServiceI,
	queueService services.QueueServiceI,
	renewalService services.RenewalServiceI,
	reconciliationService services.ReconciliationServiceI,
	logger *logrus.Logger,
) *Controller {
	return &Controller{
		RoundupService:        roundupService,
		QueueService:          queueService,
		RenewalService:        renewalService,
		ReconciliationService: reconciliationService,
		Logger:                logger,
		Jobs:                  cfg.Jobs,
		SchedulerMutex:        sync.Mutex{},
		Schedulers:            map[string]*scheduler.ScheduledTask{},
	}
}

func (c *Controller) GetSchedulers() map[string]*scheduler.ScheduledTask {
	return c.Schedulers
}
