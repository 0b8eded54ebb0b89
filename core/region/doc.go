// Package region defines the per-region record store used by the replication
// engine and by the sales read/write path.
//
// Every region exposes the same Store capability. The engine only ever sees an
// ordered slice of Replica values, so adding a region is a configuration change,
// not a code change. The slice order doubles as the tie-break priority when two
// regions hold versions with identical timestamps.
//
// # Implementations
//
//   - GormStore: one GORM connection per region (MySQL, PostgreSQL or SQLite).
//   - MemoryStore: in-process map, used by tests and the "memory" driver.
//
// # Errors
//
// Any failure reaching the backing store is wrapped with ErrStoreUnavailable.
// Targeted lookups of a missing id return ErrRecordNotFound.
package region
