package reconcile

import (
	"errors"
	"time"

	"region-sync/core/record"

	"github.com/google/uuid"
)

var (
	// ErrRunPartialFailure marks a run in which at least one region read or write failed.
	ErrRunPartialFailure = errors.New("reconciliation run partially failed")
	// ErrRunCriticalFailure marks a run aborted outside the per-region error boundaries.
	ErrRunCriticalFailure = errors.New("reconciliation run aborted")
)

// RunOutcome is the result of one reconciliation run.
type RunOutcome struct {
	// RunID identifies the run in logs and archived reports.
	RunID string `json:"run_id"`

	// Success is true when every region was read and every propagation was written.
	Success bool `json:"success"`

	// ErrorSummary is the aggregated failure message, empty on success.
	ErrorSummary string `json:"error_summary,omitempty"`

	// Err wraps ErrRunPartialFailure or ErrRunCriticalFailure on failure.
	Err error `json:"-"`

	// Propagations counts the records written into stale or missing regions.
	Propagations int `json:"propagations"`

	// TotalRecords is the number of distinct ids seen across reachable regions.
	TotalRecords int `json:"total_records"`

	// RegionErrors maps a region label to the failure attributed to it.
	RegionErrors map[string]string `json:"region_errors,omitempty"`

	// StartedAt is when the run began.
	StartedAt time.Time `json:"started_at"`

	// Duration is the wall time of the run.
	Duration time.Duration `json:"duration"`
}

// Reason explains why a record is propagated to a region.
type Reason string

const (
	// ReasonMissing means the target region has no row for the id.
	ReasonMissing Reason = "missing"
	// ReasonStale means the target region holds an older version.
	ReasonStale Reason = "stale"
)

// Action is one planned propagation.
type Action struct {
	// ID is the record id.
	ID uuid.UUID `json:"id"`

	// Target is the region that receives the winning version.
	Target string `json:"target"`

	// Source is the region that holds the winning version.
	Source string `json:"source"`

	// Reason explains why the write is needed.
	Reason Reason `json:"reason"`

	// Record is the winner relabelled for Target.
	Record record.Record `json:"record"`
}

// Plan lists the propagations a run would perform, without writing anything.
type Plan struct {
	// Actions contains the planned writes, ordered by id then region priority.
	Actions []Action `json:"actions"`

	// Unreachable maps regions that could not be read to their error.
	Unreachable map[string]string `json:"unreachable,omitempty"`

	// Summary provides aggregate counts.
	Summary PlanSummary `json:"summary"`
}

// PlanSummary provides aggregate statistics for a plan.
type PlanSummary struct {
	// TotalRecords is the number of distinct ids across reachable regions.
	TotalRecords int `json:"total_records"`

	// Propagations is the number of planned writes.
	Propagations int `json:"propagations"`

	// Missing counts writes into regions that lack the id.
	Missing int `json:"missing"`

	// Stale counts writes into regions holding an older version.
	Stale int `json:"stale"`

	// Tombstones counts writes that carry a deletion.
	Tombstones int `json:"tombstones"`

	// ByRegion counts planned writes per target region.
	ByRegion map[string]int `json:"by_region"`
}
