package stats

import (
	"sync"
	"sync/atomic"
	"time"
)

// HistorySize is the number of runs kept in the history ring.
const HistorySize = 10

const (
	StatusUnknown = "UNKNOWN"
	StatusOnline  = "ONLINE"
	StatusWarning = "WARNING"
	StatusOffline = "OFFLINE"
)

const (
	onlineWindow  = 2 * time.Minute
	warningWindow = 10 * time.Minute
)

// Sink is the write surface used by the replication engine.
type Sink interface {
	StartRun() RunToken
	EndRunSuccess(token RunToken)
	EndRunFailure(token RunToken, errorMessage string)
	RecordRegionAccess(region string)
	RecordRegionError(region string)
	SetTotalRecords(count int64)
}

// RunToken marks the start of a run.
type RunToken struct {
	started time.Time
}

// StartedAt returns when the run started.
func (t RunToken) StartedAt() time.Time {
	return t.started
}

// RunRecord is one entry of the run history.
type RunRecord struct {
	Timestamp  time.Time `json:"timestamp"`
	Success    bool      `json:"success"`
	DurationMs int64     `json:"duration"`
	Error      *string   `json:"error"`
}

// RegionStats is the per-region part of a snapshot.
type RegionStats struct {
	Errors     int64      `json:"errors"`
	LastAccess *time.Time `json:"lastAccess"`
	Status     string     `json:"status"`
}

// Snapshot is a point-in-time read of every counter.
type Snapshot struct {
	TotalSyncs         int64                  `json:"totalSyncs"`
	SuccessfulSyncs    int64                  `json:"successfulSyncs"`
	FailedSyncs        int64                  `json:"failedSyncs"`
	SuccessRate        float64                `json:"successRate"`
	LastSyncTime       *time.Time             `json:"lastSyncTime"`
	LastSuccessfulSync *time.Time             `json:"lastSuccessfulSync"`
	LastSyncDurationMs *int64                 `json:"lastSyncDuration"`
	LastFailure        *string                `json:"lastFailure"`
	Regions            map[string]RegionStats `json:"regions"`
	TotalRecords       int64                  `json:"totalRecords"`
	RecordsCreated     int64                  `json:"recordsCreated"`
	RecordsUpdated     int64                  `json:"recordsUpdated"`
	RecordsDeleted     int64                  `json:"recordsDeleted"`
	SyncHistory        []RunRecord            `json:"syncHistory"`
}

type regionCounters struct {
	errors     atomic.Int64
	lastAccess atomic.Pointer[time.Time]
}

// Collector is the process-wide Sink implementation.
type Collector struct {
	now     func() time.Time
	regions []string
	byName  sync.Map // region label -> *regionCounters

	totalSyncs      atomic.Int64
	successfulSyncs atomic.Int64
	failedSyncs     atomic.Int64
	lastSyncTime    atomic.Pointer[time.Time]
	lastSuccess     atomic.Pointer[time.Time]
	lastDuration    atomic.Pointer[int64]
	lastFailure     atomic.Pointer[string]

	totalRecords   atomic.Int64
	recordsCreated atomic.Int64
	recordsUpdated atomic.Int64
	recordsDeleted atomic.Int64

	historyMu sync.Mutex
	history   []RunRecord
}

// Option configures a Collector.
type Option func(*Collector)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(c *Collector) {
		c.now = now
	}
}

// NewCollector creates a collector reporting on the given regions, in order.
func NewCollector(regions []string, opts ...Option) *Collector {
	c := &Collector{
		now:     time.Now,
		regions: append([]string(nil), regions...),
		history: make([]RunRecord, 0, HistorySize),
	}
	for _, opt := range opts {
		opt(c)
	}
	for _, r := range c.regions {
		c.byName.Store(r, &regionCounters{})
	}
	return c
}

func (c *Collector) region(name string) *regionCounters {
	v, _ := c.byName.LoadOrStore(name, &regionCounters{})
	return v.(*regionCounters)
}

func (c *Collector) StartRun() RunToken {
	now := c.now()
	c.totalSyncs.Add(1)
	c.lastSyncTime.Store(&now)
	return RunToken{started: now}
}

func (c *Collector) EndRunSuccess(token RunToken) {
	now := c.now()
	c.successfulSyncs.Add(1)
	c.lastSuccess.Store(&now)
	duration := c.finish(token, now)
	c.appendHistory(RunRecord{Timestamp: now, Success: true, DurationMs: duration})
}

func (c *Collector) EndRunFailure(token RunToken, errorMessage string) {
	now := c.now()
	c.failedSyncs.Add(1)
	c.lastFailure.Store(&errorMessage)
	duration := c.finish(token, now)
	msg := errorMessage
	c.appendHistory(RunRecord{Timestamp: now, Success: false, DurationMs: duration, Error: &msg})
}

func (c *Collector) finish(token RunToken, now time.Time) int64 {
	duration := now.Sub(token.started).Milliseconds()
	if duration < 0 {
		duration = 0
	}
	c.lastDuration.Store(&duration)
	return duration
}

// appendHistory inserts at the front and truncates to HistorySize as one step.
func (c *Collector) appendHistory(rec RunRecord) {
	c.historyMu.Lock()
	defer c.historyMu.Unlock()

	c.history = append(c.history, RunRecord{})
	copy(c.history[1:], c.history)
	c.history[0] = rec
	if len(c.history) > HistorySize {
		c.history = c.history[:HistorySize]
	}
}

func (c *Collector) RecordRegionAccess(region string) {
	now := c.now()
	c.region(region).lastAccess.Store(&now)
}

func (c *Collector) RecordRegionError(region string) {
	c.region(region).errors.Add(1)
}

func (c *Collector) SetTotalRecords(count int64) {
	c.totalRecords.Store(count)
}

// RecordCreated counts a record created through the write path.
func (c *Collector) RecordCreated() {
	c.recordsCreated.Add(1)
}

// RecordUpdated counts a record updated through the write path.
func (c *Collector) RecordUpdated() {
	c.recordsUpdated.Add(1)
}

// RecordDeleted counts a record soft-deleted through the write path.
func (c *Collector) RecordDeleted() {
	c.recordsDeleted.Add(1)
}

// Snapshot returns the current value of every counter.
func (c *Collector) Snapshot() Snapshot {
	now := c.now()

	s := Snapshot{
		TotalSyncs:         c.totalSyncs.Load(),
		SuccessfulSyncs:    c.successfulSyncs.Load(),
		FailedSyncs:        c.failedSyncs.Load(),
		LastSyncTime:       c.lastSyncTime.Load(),
		LastSuccessfulSync: c.lastSuccess.Load(),
		LastSyncDurationMs: c.lastDuration.Load(),
		LastFailure:        c.lastFailure.Load(),
		TotalRecords:       c.totalRecords.Load(),
		RecordsCreated:     c.recordsCreated.Load(),
		RecordsUpdated:     c.recordsUpdated.Load(),
		RecordsDeleted:     c.recordsDeleted.Load(),
		Regions:            make(map[string]RegionStats, len(c.regions)),
	}
	s.SuccessRate = SuccessRate(s.SuccessfulSyncs, s.TotalSyncs)

	for _, name := range c.regions {
		rc := c.region(name)
		last := rc.lastAccess.Load()
		s.Regions[name] = RegionStats{
			Errors:     rc.errors.Load(),
			LastAccess: last,
			Status:     RegionStatus(last, now),
		}
	}

	c.historyMu.Lock()
	s.SyncHistory = append([]RunRecord(nil), c.history...)
	c.historyMu.Unlock()

	return s
}

// Reset zeroes every counter and clears the history.
func (c *Collector) Reset() {
	c.totalSyncs.Store(0)
	c.successfulSyncs.Store(0)
	c.failedSyncs.Store(0)
	c.lastFailure.Store(nil)
	c.recordsCreated.Store(0)
	c.recordsUpdated.Store(0)
	c.recordsDeleted.Store(0)
	for _, name := range c.regions {
		c.region(name).errors.Store(0)
	}

	c.historyMu.Lock()
	c.history = c.history[:0]
	c.historyMu.Unlock()
}

// SuccessRate returns successes as a percentage of total, 0 when total is 0.
func SuccessRate(successes, total int64) float64 {
	if total == 0 {
		return 0
	}
	return float64(successes) * 100 / float64(total)
}

// RegionStatus derives a region's liveness from its last successful access.
func RegionStatus(lastAccess *time.Time, now time.Time) string {
	if lastAccess == nil {
		return StatusUnknown
	}
	since := now.Sub(*lastAccess)
	switch {
	case since < onlineWindow:
		return StatusOnline
	case since < warningWindow:
		return StatusWarning
	default:
		return StatusOffline
	}
}
