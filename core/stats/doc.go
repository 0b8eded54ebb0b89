// Package stats collects process-wide replication counters and run history.
//
// The engine writes through the narrow Sink interface; the sales write path
// increments the CRUD counters; reporting reads a consistent Snapshot.
//
// Counters are independent atomics. The run history is a fixed ring of the ten
// most recent runs, newest first, guarded by its own mutex so overlapping runs can
// append safely.
//
// # Region status
//
// A region's status is derived from the last time the engine read it
// successfully: never → UNKNOWN, under two minutes → ONLINE, under ten minutes →
// WARNING, otherwise OFFLINE. It is a liveness heuristic, not a health check.
//
// # Prometheus
//
// NewPrometheusCollector exposes a Collector's snapshot as Prometheus metrics.
package stats
