// Package cache provides a small TTL cache with stampede protection.
//
// Values are loaded on demand through a caller-supplied function. Concurrent
// misses for the same key are collapsed into one load with singleflight, and
// entries expire after the configured TTL or when invalidated explicitly
// (the sales read path invalidates after every write and every sync run).
package cache
