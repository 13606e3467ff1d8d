package scheduler

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// ScheduledTask wraps one cron entry with its own runner and cancel signal,
// so a single job can be replaced without touching the others.
type ScheduledTask struct {
	Name   string
	Spec   string
	cronID cron.EntryID
	cron   *cron.Cron
	cancel chan struct{}
}

func NewScheduledTask(name, cronSpec string, taskFunc func()) (*ScheduledTask, error) {
	c := cron.New()
	cancel := make(chan struct{})
	task := &ScheduledTask{
		Name:   name,
		Spec:   cronSpec,
		cron:   c,
		cancel: cancel,
	}

	id, err := c.AddFunc(cronSpec, func() {
		select {
		case <-cancel:
			return
		default:
			taskFunc()
		}
	})
	if err != nil {
		return nil, fmt.Errorf("scheduling %s: %w", name, err)
	}

	task.cronID = id
	c.Start()
	return task, nil
}

// Next reports when the entry fires again.
func (s *ScheduledTask) Next() time.Time {
	return s.cron.Entry(s.cronID).Next
}

// Cancel removes the entry and stops its runner. A run already in flight
// finishes, the cancel channel only stops future fires.
func (s *ScheduledTask) Cancel() {
	s.cron.Remove(s.cronID)
	s.cron.Stop()
	close(s.cancel)
}
