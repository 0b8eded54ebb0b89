package replication

import (
	"context"
	"errors"

	"region-sync/core/archive"
	"region-sync/core/reconcile"
	"region-sync/core/stats"

	"go.uber.org/zap"
)

// ErrArchiveDisabled is returned by report lookups when no archive is configured.
var ErrArchiveDisabled = errors.New("run report archive is disabled")

// Engine is the part of the reconciliation engine exposed over HTTP.
type Engine interface {
	TriggerManual(ctx context.Context) reconcile.RunOutcome
	Plan(ctx context.Context) *reconcile.Plan
}

// Reports reads archived run reports.
type Reports interface {
	List(ctx context.Context, limit int) ([]archive.Entry, error)
	Get(ctx context.Context, name string) (reconcile.RunOutcome, error)
}

// Service exposes manual runs, dry-run plans, stats and archived reports.
type Service struct {
	engine  Engine
	stats   *stats.Collector
	reports Reports
	logger  *zap.Logger
}

// NewService creates a sync service. reports may be nil when archiving is off.
func NewService(engine Engine, collector *stats.Collector, reports Reports, logger *zap.Logger) *Service {
	return &Service{
		engine:  engine,
		stats:   collector,
		reports: reports,
		logger:  logger,
	}
}

// Trigger runs a reconciliation now.
func (s *Service) Trigger(ctx context.Context) reconcile.RunOutcome {
	return s.engine.TriggerManual(ctx)
}

// Plan returns what a run would write, without writing.
func (s *Service) Plan(ctx context.Context) *reconcile.Plan {
	return s.engine.Plan(ctx)
}

// Stats returns the current counters.
func (s *Service) Stats() stats.Snapshot {
	return s.stats.Snapshot()
}

// ResetStats zeroes every counter and the run history.
func (s *Service) ResetStats() {
	s.stats.Reset()
}

// Reports lists archived reports, newest first.
func (s *Service) Reports(ctx context.Context, limit int) ([]archive.Entry, error) {
	if s.reports == nil {
		return nil, ErrArchiveDisabled
	}
	return s.reports.List(ctx, limit)
}

// Report returns one archived report.
func (s *Service) Report(ctx context.Context, name string) (reconcile.RunOutcome, error) {
	if s.reports == nil {
		return reconcile.RunOutcome{}, ErrArchiveDisabled
	}
	return s.reports.Get(ctx, name)
}
