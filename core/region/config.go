package region

import (
	"fmt"

	"region-sync/core/database"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Config holds one database connection per region.
type Config struct {
	Dakar      database.Config `mapstructure:"dakar"`
	Thies      database.Config `mapstructure:"thies"`
	SaintLouis database.Config `mapstructure:"saint_louis"`
}

// Entry pairs a region label with its connection settings.
type Entry struct {
	Label    string
	Database database.Config
}

// Entries returns the configured regions in priority order.
func (c Config) Entries() []Entry {
	return []Entry{
		{Label: Dakar, Database: c.Dakar},
		{Label: Thies, Database: c.Thies},
		{Label: SaintLouis, Database: c.SaintLouis},
	}
}

// Open builds one replica per configured region, in priority order. Regions
// using the memory driver get a MemoryStore; the others get a lazy GormStore.
// A region whose database cannot be reached now is still returned and logged:
// its store retries the connection on every call until the database answers.
func Open(cfg Config, logger *zap.Logger) []Replica {
	entries := cfg.Entries()
	out := make([]Replica, 0, len(entries))

	for _, e := range entries {
		if e.Database.Driver == database.DriverMemory {
			out = append(out, Replica{Label: e.Label, Store: NewMemoryStore(e.Label)})
			continue
		}

		dbCfg := e.Database
		store := NewLazyGormStore(e.Label, func() (*gorm.DB, error) {
			return database.Connect(dbCfg)
		})
		if err := store.Connect(); err != nil {
			logger.Warn("Region database connection failed; retrying on next access",
				zap.String("region", e.Label),
				zap.String("driver", e.Database.Driver),
				zap.Error(err),
			)
		} else {
			logger.Info("Connected to region database",
				zap.String("region", e.Label),
				zap.String("driver", e.Database.Driver),
			)
		}
		out = append(out, Replica{Label: e.Label, Store: store})
	}

	return out
}

// Close releases every database connection held by replicas.
func Close(replicas []Replica) error {
	var combined error
	for _, r := range replicas {
		closer, ok := r.Store.(interface{ Close() error })
		if !ok {
			continue
		}
		if err := closer.Close(); err != nil {
			combined = multierr.Append(combined, fmt.Errorf("%s: close: %w", r.Label, err))
		}
	}
	return combined
}
