package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Job is the work run on every tick.
type Job func(ctx context.Context)

// Scheduler runs a job on a cron schedule. A tick that fires while the previous
// one is still running is skipped.
type Scheduler struct {
	cron   *cron.Cron
	logger *zap.Logger
	id     cron.EntryID
	ctx    context.Context
	cancel context.CancelFunc
}

// New parses spec (standard 5-field cron or a descriptor such as "@every 1h")
// and prepares a scheduler for job. It does not start ticking.
func New(spec string, job Job, logger *zap.Logger) (*Scheduler, error) {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}

	s.cron = cron.New(cron.WithChain(
		cron.Recover(cronLogger{logger}),
		cron.SkipIfStillRunning(cronLogger{logger}),
	))

	id, err := s.cron.AddFunc(spec, func() {
		logger.Debug("Scheduled job triggered", zap.String("schedule", spec))
		job(s.ctx)
	})
	if err != nil {
		cancel()
		return nil, fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	s.id = id

	return s, nil
}

// Start begins ticking in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("Scheduler started", zap.Time("next_run", s.Next()))
}

// Next returns the next activation time, zero before Start.
func (s *Scheduler) Next() time.Time {
	return s.cron.Entry(s.id).Next
}

// Stop stops ticking, cancels the job context and waits for a running job to
// return or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	s.cancel()

	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	l *zap.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Sugar().Debugw(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}
