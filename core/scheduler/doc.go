// Package scheduler triggers periodic reconciliation runs with robfig/cron.
//
// The default schedule is "@every 1h". Overlapping ticks are skipped and a
// panicking job is recovered and logged.
package scheduler
