// Package scheduler runs the wallet accrual pass on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dailyyield/apiserver/config"
	"github.com/dailyyield/apiserver/internal/services"
	"github.com/dailyyield/apiserver/types"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const defaultRunTimeout = 10 * time.Minute

// AccrualRunner applies one accrual pass.
type AccrualRunner interface {
	RunAccrual(ctx context.Context, trigger string) (types.AccrualSummary, error)
}

type Scheduler struct {
	cron       *cron.Cron
	runner     AccrualRunner
	logger     logrus.FieldLogger
	runTimeout time.Duration
	ctx        context.Context
	cancel     context.CancelFunc
}

// New registers the accrual job. Overlapping runs are skipped rather than queued.
func New(cfg config.AccrualConfig, runner AccrualRunner, logger logrus.FieldLogger) (*Scheduler, error) {
	tz := strings.TrimSpace(cfg.Timezone)
	if tz == "" {
		tz = "UTC"
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("load accrual timezone: %w", err)
	}

	cronLogger := cron.PrintfLogger(logger)
	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
		),
		runner:     runner,
		logger:     logger,
		runTimeout: defaultRunTimeout,
		ctx:        ctx,
		cancel:     cancel,
	}

	if _, err := s.cron.AddFunc(cfg.Schedule, s.runOnce); err != nil {
		cancel()
		return nil, fmt.Errorf("parse accrual schedule %q: %w", cfg.Schedule, err)
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.WithField("next_run", s.NextRun()).Info("accrual scheduler started")
}

// Stop prevents new runs, cancels the one in flight and waits for it until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) error {
	stopped := s.cron.Stop()
	s.cancel()
	select {
	case <-stopped.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// NextRun returns the next scheduled time, or zero when not started.
func (s *Scheduler) NextRun() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

func (s *Scheduler) runOnce() {
	ctx, cancel := context.WithTimeout(s.ctx, s.runTimeout)
	defer cancel()

	if _, err := s.runner.RunAccrual(ctx, services.TriggerSchedule); err != nil {
		s.logger.WithError(err).Error("scheduled accrual failed")
	}
}
