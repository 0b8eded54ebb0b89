package region

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"region-sync/core/record"

	"github.com/google/uuid"
)

var (
	// ErrStoreUnavailable is returned when a region's backing store cannot be reached.
	ErrStoreUnavailable = errors.New("region store unavailable")
	// ErrRecordNotFound is returned by targeted lookups for an id the region does not hold.
	ErrRecordNotFound = errors.New("record not found")
	// ErrUnknownRegion is returned when a label does not name a configured region.
	ErrUnknownRegion = errors.New("unknown region")
)

const (
	Dakar      = "Dakar"
	Thies      = "Thies"
	SaintLouis = "Saint-Louis"
)

// Labels lists the regions in their default priority order.
var Labels = []string{Dakar, Thies, SaintLouis}

var aliases = map[string]string{
	"dakar":       Dakar,
	"thies":       Thies,
	"saint-louis": SaintLouis,
	"saint_louis": SaintLouis,
	"saintlouis":  SaintLouis,
	"stl":         SaintLouis,
}

// ParseLabel resolves a canonical label or a lowercase alias (e.g. "stl").
func ParseLabel(s string) (string, error) {
	if label, ok := aliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return label, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownRegion, s)
}

// Store is the capability every region exposes.
type Store interface {
	// ListAll returns every row held by the region, tombstones included.
	ListAll(ctx context.Context) ([]record.Record, error)
	// ExistsByID reports whether the region holds a row for id.
	ExistsByID(ctx context.Context, id uuid.UUID) (bool, error)
	// Save upserts rec by id and returns the stored row.
	// UpdatedAt is persisted exactly as given.
	Save(ctx context.Context, rec record.Record) (record.Record, error)
	// FindByID returns the row for id or ErrRecordNotFound.
	FindByID(ctx context.Context, id uuid.UUID) (record.Record, error)
	// DeleteByID physically removes the row for id. Only cleanup paths use it.
	DeleteByID(ctx context.Context, id uuid.UUID) error
}

// Replica pairs a region label with its store.
type Replica struct {
	Label string
	Store Store
}

// Find returns the replica with the given label.
func Find(replicas []Replica, label string) (Replica, bool) {
	for _, r := range replicas {
		if r.Label == label {
			return r, true
		}
	}
	return Replica{}, false
}

// unavailable wraps both ErrStoreUnavailable and the cause, so callers can
// still match context.DeadlineExceeded on per-region timeouts.
func unavailable(label, op string, err error) error {
	return fmt.Errorf("%w: %s %s: %w", ErrStoreUnavailable, label, op, err)
}
