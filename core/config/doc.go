// Package config provides configuration management for region-sync.
//
// Values come from struct `default` tags, a .env file and environment
// variables, in increasing order of precedence. Nested keys map to
// underscore-joined variables: sync.region_timeout_seconds is read from
// SYNC_REGION_TIMEOUT_SECONDS, regions.saint_louis.host from
// REGIONS_SAINT_LOUIS_HOST.
//
// # Configuration Structure
//
//   - Server: HTTP port and API key
//   - Log: level and format
//   - Regions: one database connection per region (dakar, thies, saint_louis)
//   - Sync: schedule, per-region timeout, run coalescing, listing cache TTL
//   - Archive: MinIO/S3 run report archive
//   - Metrics: Prometheus endpoint
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Sync.Schedule)
package config
