// Package scheduler runs the monthly interest batch on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultSchedule fires at midnight on the first day of every month.
const DefaultSchedule = "@monthly"

// Applier credits interest to every eligible account.
type Applier interface {
	ApplyInterestToAll(ctx context.Context) (int, error)
}

type Scheduler struct {
	applier Applier
	logger  *slog.Logger
	cron    *cron.Cron
	spec    string
	timeout time.Duration
}

// New parses spec as a standard five field cron expression (descriptors such
// as @monthly are accepted too) and registers the interest job. The job does
// not run until Start is called.
func New(applier Applier, spec string, logger *slog.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if spec == "" {
		spec = DefaultSchedule
	}
	s := &Scheduler{
		applier: applier,
		logger:  logger,
		spec:    spec,
		timeout: 5 * time.Minute,
		cron:    cron.New(cron.WithLogger(cronLogger{logger})),
	}
	if _, err := s.cron.AddFunc(spec, s.run); err != nil {
		return nil, fmt.Errorf("interest schedule %q: %w", spec, err)
	}
	return s, nil
}

func (s *Scheduler) Spec() string { return s.spec }

// Next reports when the interest job will fire next. It is zero before Start.
func (s *Scheduler) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("interest scheduler started", "schedule", s.spec, "next", s.Next())
}

// Stop prevents further runs and waits for a running batch to finish or for
// ctx to be done.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.logger.Info("interest scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunOnce applies interest immediately, outside the schedule.
func (s *Scheduler) RunOnce(ctx context.Context) (int, error) {
	start := time.Now()
	n, err := s.applier.ApplyInterestToAll(ctx)
	if err != nil {
		s.logger.Error("interest run failed", "error", err, "elapsed", time.Since(start))
		return 0, err
	}
	s.logger.Info("interest run finished", "credited", n, "elapsed", time.Since(start))
	return n, nil
}

func (s *Scheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	_, _ = s.RunOnce(ctx)
}

// cronLogger adapts slog to cron's logr-style interface.
type cronLogger struct{ l *slog.Logger }

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debug("cron: "+msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Error("cron: "+msg, append([]interface{}{"error", err}, keysAndValues...)...)
}
