// File: internal/wellness/scheduler.go
package wellness

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/psyche-voyage/launchpad/pkg/utils"
)

// Scheduler posts wellness content on a cron schedule
type Scheduler struct {
	manager *Manager
	cron    *cron.Cron
	spec    string
	timeout time.Duration
	logger  *logrus.Logger
}

// NewScheduler creates a scheduler driving the given manager
func NewScheduler(manager *Manager, spec string, timeout time.Duration) *Scheduler {
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &Scheduler{
		manager: manager,
		cron:    cron.New(),
		spec:    spec,
		timeout: timeout,
		logger:  utils.GetLogger(),
	}
}

// Start registers the cron entry and begins scheduling
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc(s.spec, s.run)
	if err != nil {
		return utils.NewAppError(utils.ErrCodeConfiguration, "Invalid wellness cron spec", err.Error())
	}
	s.cron.Start()
	s.logger.WithField("spec", s.spec).Info("Wellness scheduler started")
	return nil
}

// Stop halts scheduling and waits for a running job to finish
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("Wellness scheduler stopped")
}

func (s *Scheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if _, err := s.manager.GenerateAndPost(ctx); err != nil {
		s.logger.WithField("error", err.Error()).Error("Scheduled wellness post failed")
	}
}
