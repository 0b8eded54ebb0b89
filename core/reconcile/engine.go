package reconcile

import (
	"context"
	"fmt"
	"sync"
	"time"

	"region-sync/core/logger"
	"region-sync/core/record"
	"region-sync/core/region"
	"region-sync/core/stats"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Observer receives the outcome of every run.
type Observer func(RunOutcome)

// Engine reconciles a fixed, ordered set of regions.
type Engine struct {
	replicas  []region.Replica
	sink      stats.Sink
	logger    *zap.Logger
	timeout   time.Duration
	coalesce  bool
	observers []Observer
	sf        singleflight.Group
}

// Option configures an Engine.
type Option func(*Engine)

// WithRegionTimeout bounds every individual store call. Zero disables the bound.
func WithRegionTimeout(d time.Duration) Option {
	return func(e *Engine) {
		e.timeout = d
	}
}

// WithCoalescing makes overlapping triggers share the run already in flight.
func WithCoalescing(enabled bool) Option {
	return func(e *Engine) {
		e.coalesce = enabled
	}
}

// WithObserver registers a callback invoked after every run.
func WithObserver(o Observer) Option {
	return func(e *Engine) {
		e.observers = append(e.observers, o)
	}
}

// New creates an engine over replicas. The replica order is the tie-break priority.
func New(replicas []region.Replica, sink stats.Sink, logger *zap.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Engine{
		replicas: append([]region.Replica(nil), replicas...),
		sink:     sink,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Replicas returns the regions reconciled by the engine, in priority order.
func (e *Engine) Replicas() []region.Replica {
	return append([]region.Replica(nil), e.replicas...)
}

// TriggerManual runs a reconciliation on behalf of a caller.
func (e *Engine) TriggerManual(ctx context.Context) RunOutcome {
	return e.RunOnce(ctx)
}

// RunOnce performs one full reconciliation pass across every region.
// It never panics and never returns an error: failures are reported in the
// outcome, through the stats sink and in the logs.
func (e *Engine) RunOnce(ctx context.Context) RunOutcome {
	if !e.coalesce {
		return e.run(ctx)
	}

	v, _, shared := e.sf.Do("run", func() (any, error) {
		return e.run(ctx), nil
	})
	if shared {
		e.logger.Debug("Joined reconciliation run already in progress")
	}
	return v.(RunOutcome)
}

// Plan reads every region and returns the propagations a run would perform.
// It writes nothing and records no stats.
func (e *Engine) Plan(ctx context.Context) *Plan {
	indexes := e.readAll(ctx, false)
	actions, total := planActions(indexes)

	plan := &Plan{
		Actions: actions,
		Summary: summarize(actions, total),
	}
	for _, idx := range indexes {
		if idx.err != nil {
			if plan.Unreachable == nil {
				plan.Unreachable = make(map[string]string)
			}
			plan.Unreachable[idx.label] = idx.err.Error()
		}
	}
	if plan.Actions == nil {
		plan.Actions = []Action{}
	}
	return plan
}

func (e *Engine) run(ctx context.Context) (out RunOutcome) {
	token := e.sink.StartRun()
	out = RunOutcome{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
	}
	l := logger.WithRun(e.logger, out.RunID)
	l.Info("Reconciliation run started", zap.Int("regions", len(e.replicas)))

	defer func() {
		if r := recover(); r != nil {
			out.Success = false
			out.Err = fmt.Errorf("%w: %v", ErrRunCriticalFailure, r)
			out.ErrorSummary = out.Err.Error()
			l.Error("Reconciliation run aborted", zap.Any("panic", r))
			e.sink.EndRunFailure(token, out.ErrorSummary)
		}
		out.Duration = time.Since(out.StartedAt)
		e.notify(out)
	}()

	regionErrs := e.pass(ctx, &out)

	if len(regionErrs) > 0 {
		out.RegionErrors = make(map[string]string, len(regionErrs))
		var combined error
		for _, r := range e.replicas {
			if err, ok := regionErrs[r.Label]; ok {
				out.RegionErrors[r.Label] = err.Error()
				combined = multierr.Append(combined, err)
			}
		}
		out.Err = fmt.Errorf("%w: %v", ErrRunPartialFailure, combined)
		out.ErrorSummary = out.Err.Error()
		e.sink.EndRunFailure(token, out.ErrorSummary)
		l.Warn("Reconciliation run completed with errors",
			zap.Int("propagations", out.Propagations),
			zap.Int("total_records", out.TotalRecords),
			zap.Strings("failed_regions", keys(out.RegionErrors, e.replicas)),
			zap.Error(combined),
		)
		return out
	}

	out.Success = true
	e.sink.EndRunSuccess(token)
	l.Info("Reconciliation run completed",
		zap.Int("propagations", out.Propagations),
		zap.Int("total_records", out.TotalRecords),
	)
	return out
}

// pass reads, merges and propagates. It returns the errors attributed to each region.
func (e *Engine) pass(ctx context.Context, out *RunOutcome) map[string]error {
	regionErrs := make(map[string]error)

	indexes := e.readAll(ctx, true)
	for _, idx := range indexes {
		if idx.err != nil {
			regionErrs[idx.label] = idx.err
		}
	}

	actions, total := planActions(indexes)

	written, writeErrs := e.propagate(ctx, actions)
	out.Propagations = written
	for label, err := range writeErrs {
		regionErrs[label] = err
	}

	out.TotalRecords = total
	e.sink.SetTotalRecords(int64(total))

	return regionErrs
}

// readAll lists every region concurrently. All reads complete before it returns.
func (e *Engine) readAll(ctx context.Context, track bool) []regionIndex {
	indexes := make([]regionIndex, len(e.replicas))

	var wg sync.WaitGroup
	wg.Add(len(e.replicas))
	for i, r := range e.replicas {
		go func(i int, r region.Replica) {
			defer wg.Done()
			defer func() {
				if p := recover(); p != nil {
					e.logger.Error("Region read worker panicked",
						zap.String("region", r.Label),
						zap.Any("panic", p),
					)
					indexes[i] = regionIndex{label: r.Label, err: fmt.Errorf("%s: read worker panicked: %v", r.Label, p)}
				}
			}()

			callCtx, cancel := e.callContext(ctx)
			defer cancel()

			rows, err := listAll(callCtx, r.Store)
			if err != nil {
				e.logger.Error("Failed to read region",
					zap.String("region", r.Label),
					zap.Error(err),
				)
				indexes[i] = regionIndex{label: r.Label, err: fmt.Errorf("%s: read: %w", r.Label, err)}
				if track {
					e.sink.RecordRegionError(r.Label)
				}
				return
			}

			indexes[i] = buildIndex(r.Label, rows)
			if track {
				e.sink.RecordRegionAccess(r.Label)
			}
		}(i, r)
	}
	wg.Wait()

	return indexes
}

// propagate writes actions, one goroutine per target region and sequentially
// within a region. A failed write never stops the remaining ones.
func (e *Engine) propagate(ctx context.Context, actions []Action) (int, map[string]error) {
	groups := groupByTarget(actions)

	var (
		mu      sync.Mutex
		written int
		errs    = make(map[string]error)
		wg      sync.WaitGroup
	)

	for _, r := range e.replicas {
		group, ok := groups[r.Label]
		if !ok {
			continue
		}

		wg.Add(1)
		go func(r region.Replica, group []Action) {
			defer wg.Done()

			var (
				done     int
				failed   int
				firstErr error
			)
			defer func() {
				p := recover()
				if p != nil {
					e.logger.Error("Region write worker panicked",
						zap.String("region", r.Label),
						zap.Any("panic", p),
					)
				}

				mu.Lock()
				defer mu.Unlock()
				written += done
				switch {
				case p != nil:
					errs[r.Label] = fmt.Errorf("%s: write worker panicked after %d of %d writes: %v", r.Label, done+failed, len(group), p)
				case failed > 0:
					errs[r.Label] = fmt.Errorf("%s: %d of %d writes failed: %w", r.Label, failed, len(group), firstErr)
				}
			}()

			for _, a := range group {
				callCtx, cancel := e.callContext(ctx)
				err := save(callCtx, r.Store, a.Record)
				cancel()

				if err != nil {
					failed++
					if firstErr == nil {
						firstErr = err
					}
					e.logger.Error("Failed to propagate record",
						zap.String("region", r.Label),
						zap.String("id", a.ID.String()),
						zap.String("source", a.Source),
						zap.Error(err),
					)
					e.sink.RecordRegionError(r.Label)
					continue
				}
				done++
				e.logger.Debug("Propagated record",
					zap.String("region", r.Label),
					zap.String("id", a.ID.String()),
					zap.String("source", a.Source),
					zap.String("reason", string(a.Reason)),
					zap.Bool("deleted", a.Record.Deleted),
				)
			}
		}(r, group)
	}
	wg.Wait()

	return written, errs
}

// listAll and save turn a panicking store into an ordinary region failure.
// The worker goroutines recover the same way around stats sink calls.
func listAll(ctx context.Context, s region.Store) (rows []record.Record, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("store panicked: %v", p)
		}
	}()
	return s.ListAll(ctx)
}

func save(ctx context.Context, s region.Store, rec record.Record) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("store panicked: %v", p)
		}
	}()
	_, err = s.Save(ctx, rec)
	return err
}

func (e *Engine) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.timeout > 0 {
		return context.WithTimeout(ctx, e.timeout)
	}
	return context.WithCancel(ctx)
}

func (e *Engine) notify(out RunOutcome) {
	for _, o := range e.observers {
		func() {
			defer func() {
				if r := recover(); r != nil {
					e.logger.Error("Run observer panicked", zap.Any("panic", r))
				}
			}()
			o(out)
		}()
	}
}

// keys returns the labels present in m, in replica order.
func keys(m map[string]string, replicas []region.Replica) []string {
	var out []string
	for _, r := range replicas {
		if _, ok := m[r.Label]; ok {
			out = append(out, r.Label)
		}
	}
	return out
}
