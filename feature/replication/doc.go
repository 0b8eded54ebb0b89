// Package replication exposes the reconciliation engine and its stats over HTTP.
//
// # HTTP Endpoints
//
//   - POST /sync : Runs a reconciliation now and returns the run outcome.
//   - GET /sync/plan : Dry run; lists the writes the next run would perform.
//   - GET /sync/stats : Counters, region status and the last ten runs.
//   - POST /sync/stats/reset : Zeroes every counter and the run history.
//   - GET /sync/reports : Archived run reports, newest first (supports ?limit=N).
//   - GET /sync/reports/* : One archived run report.
//
// The report endpoints answer 404 when the archive is disabled.
package replication
