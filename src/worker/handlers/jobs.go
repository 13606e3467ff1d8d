package handlers

import (
	"context"
	"net/http"
	"time"
)

// jobRequestTimeout bounds a manually triggered run. Scheduled runs get a
// wider deadline from the controller.
const jobRequestTimeout = 2 * time.Minute

// StartScheduledJobs (re)registers the cron schedules from config.
func (h *Handler) StartScheduledJobs(w http.ResponseWriter, r *http.Request) {
	if err := h.Controller.StartScheduledJobs(); err != nil {
		h.HandleErrors(w, err)
		return
	}

	h.respond(w, r, h.scheduledJobs(), 200)
}

// GetScheduledJobs lists the registered cron entries.
func (h *Handler) GetScheduledJobs(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, h.scheduledJobs(), 200)
}

type jobSchedule struct {
	Spec    string    `json:"spec"`
	NextRun time.Time `json:"next_run"`
}

func (h *Handler) scheduledJobs() map[string]jobSchedule {
	h.Controller.SchedulerMutex.Lock()
	defer h.Controller.SchedulerMutex.Unlock()

	jobs := map[string]jobSchedule{}
	for name, task := range h.Controller.GetSchedulers() {
		jobs[name] = jobSchedule{Spec: task.Spec, NextRun: task.Next()}
	}
	return jobs
}

// RunSettlement triggers one full pipeline pass right now.
func (h *Handler) RunSettlement(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), jobRequestTimeout)
	defer cancel()

	result, err := h.Controller.RunSettlement(ctx)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	h.respond(w, r, result, 200)
}

// RunRenewals charges every renewal due today.
func (h *Handler) RunRenewals(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), jobRequestTimeout)
	defer cancel()

	result, err := h.Controller.RunRenewals(ctx)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	h.respond(w, r, result, 200)
}

// RunReconciliation rebuilds the fee reconciliation report.
func (h *Handler) RunReconciliation(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), jobRequestTimeout)
	defer cancel()

	report, err := h.Controller.RunReconciliation(ctx)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	h.respond(w, r, report, 200)
}
