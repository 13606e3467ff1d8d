package controllers

import (
	"context"
	"time"

	"roundup/src/scheduler"
	"roundup/src/schemas"
	"roundup/src/utils"
)

const (
	SettleJob    = "settle"
	RenewalsJob  = "run_renewals"
	ReconcileJob = "reconcile"
)

// jobTimeout bounds one scheduled run. Batches report per-item errors, so a
// run that hits the deadline only loses its tail.
const jobTimeout = 5 * time.Minute

// RunSettlement walks the whole pipeline once: pending transactions get
// ledger entries, built ones are staged, stuck items are requeued and the
// queue is executed against the broker.
func (c *Controller) RunSettlement(ctx context.Context) (*schemas.SettlementRunResult, error) {
	build, err := c.RoundupService.BuildPendingEntries(ctx)
	if err != nil {
		return nil, err
	}

	stage, err := c.QueueService.StageTransactions(ctx)
	if err != nil {
		return nil, err
	}

	requeue, err := c.QueueService.RequeueStuck(ctx)
	if err != nil {
		return nil, err
	}

	execute, err := c.QueueService.ExecuteQueue(ctx)
	if err != nil {
		return nil, err
	}

	return &schemas.SettlementRunResult{
		Build:   build,
		Stage:   stage,
		Requeue: requeue,
		Execute: execute,
	}, nil
}

func (c *Controller) RunRenewals(ctx context.Context) (*schemas.RunRenewalsResult, error) {
	return c.RenewalService.RunDueRenewals(ctx)
}

func (c *Controller) RunReconciliation(ctx context.Context) (*schemas.ReconciliationReport, error) {
	report, err := c.ReconciliationService.CheckFees(ctx)
	if err != nil {
		return nil, err
	}
	if !report.Reconciled {
		c.Logger.WithField("drift", report.Drift.String()).Warn("fee totals drifted apart")
	}
	return report, nil
}

// StartScheduledJobs registers the cron entries from config. Jobs without a
// cron spec stay manual-only.
func (c *Controller) StartScheduledJobs() error {
	if spec := c.Jobs.SettleCron; spec != "" {
		if err := c.scheduleJob(SettleJob, spec, func(ctx context.Context) error {
			_, err := c.RunSettlement(ctx)
			return err
		}); err != nil {
			return err
		}
	}
	if spec := c.Jobs.RenewalsCron; spec != "" {
		if err := c.scheduleJob(RenewalsJob, spec, func(ctx context.Context) error {
			_, err := c.RunRenewals(ctx)
			return err
		}); err != nil {
			return err
		}
	}
	if spec := c.Jobs.ReconcileCron; spec != "" {
		if err := c.scheduleJob(ReconcileJob, spec, func(ctx context.Context) error {
			_, err := c.RunReconciliation(ctx)
			return err
		}); err != nil {
			return err
		}
	}
	return nil
}

// scheduleJob replaces any existing schedule under the same name.
func (c *Controller) scheduleJob(name, cronSpec string, run func(ctx context.Context) error) error {
	c.SchedulerMutex.Lock()
	if existingTask, exists := c.Schedulers[name]; exists {
		existingTask.Cancel()
		delete(c.Schedulers, name)
	}
	c.SchedulerMutex.Unlock()

	newTask, err := scheduler.NewScheduledTask(name, cronSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()
		ctx = utils.WithLogger(ctx, c.Logger)

		if err := run(ctx); err != nil {
			c.Logger.WithError(err).Errorf("scheduled job %s failed", name)
		}
	})
	if err != nil {
		return err
	}

	c.SchedulerMutex.Lock()
	c.Schedulers[name] = newTask
	c.SchedulerMutex.Unlock()

	return nil
}
