// Package jobs runs recurring background work on a cron schedule.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/sidesales/sidesales-backend/internal/logger"
)

// jobTimeout bounds a single run so a stuck query cannot pile up runs.
const jobTimeout = time.Minute

// SessionPurger removes sessions whose tokens have expired.
type SessionPurger interface {
	PurgeExpiredSessions(ctx context.Context) (int64, error)
}

// Scheduler wraps a cron runner. Runs of the same job never overlap.
type Scheduler struct {
	cron *cron.Cron
}

// NewScheduler creates a Scheduler using UTC schedules.
func NewScheduler() *Scheduler {
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithChain(cron.Recover(cronLogger{}), cron.SkipIfStillRunning(cronLogger{})),
		),
	}
}

// AddSessionPurge schedules purger on spec, e.g. "@hourly" or "*/15 * * * *".
func (s *Scheduler) AddSessionPurge(spec string, purger SessionPurger) error {
	_, err := s.cron.AddFunc(spec, func() {
		PurgeSessions(context.Background(), purger)
	})
	if err != nil {
		return fmt.Errorf("invalid session purge schedule %q: %w", spec, err)
	}
	return nil
}

// Start runs the scheduler in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop prevents new runs and waits for running jobs until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		logger.L.Warn("scheduler stopped before jobs finished", "error", ctx.Err())
	}
}

// PurgeSessions performs one purge run and logs its outcome.
func PurgeSessions(ctx context.Context, purger SessionPurger) {
	ctx, cancel := context.WithTimeout(ctx, jobTimeout)
	defer cancel()

	n, err := purger.PurgeExpiredSessions(ctx)
	if err != nil {
		logger.L.Error("session purge failed", "error", err)
		return
	}
	if n > 0 {
		logger.L.Info("purged expired sessions", "count", n)
	}
}

// cronLogger adapts the application logger to cron.Logger.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...any) {
	logger.L.Debug("cron: "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...any) {
	logger.L.Error("cron: "+msg, append([]any{"error", err}, keysAndValues...)...)
}
