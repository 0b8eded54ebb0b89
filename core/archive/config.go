package archive

import "region-sync/core/storage"

// Config holds configuration for the run report archive.
type Config struct {
	// Enabled uploads a report after every run.
	Enabled bool `mapstructure:"enabled" default:"false"`
	// Prefix is prepended to every report object name.
	Prefix string `mapstructure:"prefix" default:"runs/"`
	// Keep is the number of newest reports retained; 0 keeps everything.
	Keep int `mapstructure:"keep" default:"500"`
	// Storage is the object store the reports are written to.
	Storage storage.Config `mapstructure:"storage"`
}
