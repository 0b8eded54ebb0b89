package config

import (
	"os"
	"path/filepath"
	"testing"

	"region-sync/core/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "@every 1h", cfg.Sync.Schedule)
	assert.True(t, cfg.Sync.Enabled)
	assert.True(t, cfg.Sync.Coalesce)
	assert.Equal(t, 30, cfg.Sync.RegionTimeoutSeconds)
	assert.Equal(t, database.DriverMySQL, cfg.Regions.Dakar.Driver)
	assert.Equal(t, "sales", cfg.Regions.SaintLouis.Name)
	assert.False(t, cfg.Archive.Enabled)
	assert.Equal(t, "sync-reports", cfg.Archive.Storage.Bucket)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
}

func TestLoadConfig_Environment(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("SYNC_SCHEDULE", "*/5 * * * *")
	t.Setenv("SYNC_COALESCE", "false")
	t.Setenv("REGIONS_SAINT_LOUIS_HOST", "db.stl.internal")
	t.Setenv("REGIONS_THIES_DRIVER", "postgres")
	t.Setenv("ARCHIVE_STORAGE_BUCKET", "audit")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "*/5 * * * *", cfg.Sync.Schedule)
	assert.False(t, cfg.Sync.Coalesce)
	assert.Equal(t, "db.stl.internal", cfg.Regions.SaintLouis.Host)
	assert.Equal(t, "localhost", cfg.Regions.Dakar.Host)
	assert.Equal(t, database.DriverPostgres, cfg.Regions.Thies.Driver)
	assert.Equal(t, "audit", cfg.Archive.Storage.Bucket)
}

func TestLoadConfig_DotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("LOG_LEVEL=debug\nREGIONS_DAKAR_DRIVER=memory\n"), 0o600))
	t.Cleanup(func() {
		os.Unsetenv("LOG_LEVEL")
		os.Unsetenv("REGIONS_DAKAR_DRIVER")
	})

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, database.DriverMemory, cfg.Regions.Dakar.Driver)
}
