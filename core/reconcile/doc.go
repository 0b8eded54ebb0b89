// Package reconcile keeps the regional sales stores eventually consistent.
//
// A run reads every region, builds a union of record ids, picks the version with
// the latest UpdatedAt for each id, and writes that version into every region
// that is missing it or holds an older one. Soft-delete tombstones are ordinary
// field values, so deletions propagate exactly like updates.
//
// # Architecture
//
// 1. Read: every region is listed concurrently (one goroutine per region) and
//    indexed by id. A region that cannot be read contributes nothing to the merge
//    and receives no writes for the rest of the run.
//
// 2. Merge: for each id in the union the winner is the candidate with the
//    greatest UpdatedAt. Equal timestamps resolve to the earliest region in the
//    engine's priority order.
//
// 3. Propagate: writes fan out per target region and run sequentially within a
//    region. A failed write is logged and attributed to its region; the run keeps
//    going.
//
// # Outcome
//
// RunOnce never returns an error. A run is successful when every read and write
// succeeded; otherwise the outcome wraps ErrRunPartialFailure, or
// ErrRunCriticalFailure when the pass itself was aborted. Every outcome is also
// reported to the stats sink.
//
// # Usage Example
//
//	engine := reconcile.New(replicas, collector, logger,
//	    reconcile.WithRegionTimeout(10*time.Second),
//	    reconcile.WithCoalescing(true),
//	)
//
//	// Full reconciliation
//	outcome := engine.RunOnce(ctx)
//
//	// Dry run
//	plan := engine.Plan(ctx)
package reconcile
