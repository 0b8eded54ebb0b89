// Package archive keeps a JSON report of every reconciliation run in object storage.
//
// The Archiver plugs into the engine as an observer. The observer only queues
// the outcome; a single worker started with Start uploads it and prunes old
// reports, so slow object storage never holds up a run. Stop drains the queue
// on shutdown. Report names start with
// the run's UTC start time, so a lexical listing is chronological. Retention is
// bounded by Config.Keep.
package archive
