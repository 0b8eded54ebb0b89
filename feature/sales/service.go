package sales

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"region-sync/core/cache"
	"region-sync/core/record"
	"region-sync/core/region"
	"region-sync/core/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

var (
	// ErrInvalidRegion is returned when a route names no configured region.
	ErrInvalidRegion = errors.New("invalid region")
	// ErrInvalidInput is returned for malformed ids or request bodies.
	ErrInvalidInput = errors.New("invalid input")
)

const (
	dateLayout = "2006-01-02"
	listingKey = "all"
)

// Counter receives the write path counters.
type Counter interface {
	RecordCreated()
	RecordUpdated()
	RecordDeleted()
}

// Input is the body of create and update requests.
type Input struct {
	// BusinessDate is the sale day (YYYY-MM-DD). Empty means today.
	BusinessDate string `json:"business_date"`
	// Amount accepts a JSON number or a decimal string.
	Amount any `json:"amount"`
	// Product is the product label.
	Product string `json:"product"`
}

// Listing is the merged read across every region.
type Listing struct {
	Records     []record.Record   `json:"records"`
	Unreachable map[string]string `json:"unreachable,omitempty"`
}

// RegionSummary aggregates the sales held by one region.
type RegionSummary struct {
	Region  string          `json:"region"`
	Active  int             `json:"active"`
	Deleted int             `json:"deleted"`
	Total   decimal.Decimal `json:"total"`
	Error   string          `json:"error,omitempty"`
}

// Service implements the per-region write path and the cross-region read path.
type Service struct {
	replicas []region.Replica
	counter  Counter
	listing  *cache.Cache[Listing]
	logger   *zap.Logger
	now      func() time.Time
}

// NewService creates a sales service over replicas. The merged listing is cached for ttl.
func NewService(replicas []region.Replica, counter Counter, ttl time.Duration, logger *zap.Logger) *Service {
	return &Service{
		replicas: replicas,
		counter:  counter,
		listing:  cache.New[Listing](ttl),
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// InvalidateCache drops the cached merged listing.
func (s *Service) InvalidateCache() {
	s.listing.Invalidate(listingKey)
}

func (s *Service) replica(label string) (region.Replica, error) {
	canonical, err := region.ParseLabel(label)
	if err != nil {
		return region.Replica{}, fmt.Errorf("%w: %v", ErrInvalidRegion, err)
	}
	r, ok := region.Find(s.replicas, canonical)
	if !ok {
		return region.Replica{}, fmt.Errorf("%w: %s is not configured", ErrInvalidRegion, canonical)
	}
	return r, nil
}

// ParseID parses a record id from a route parameter.
func ParseID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: id %q", ErrInvalidInput, raw)
	}
	return id, nil
}

func (in Input) parse(today time.Time) (time.Time, decimal.Decimal, string, error) {
	product := strings.TrimSpace(in.Product)
	if product == "" {
		return time.Time{}, decimal.Zero, "", fmt.Errorf("%w: product is required", ErrInvalidInput)
	}

	if in.Amount == nil {
		return time.Time{}, decimal.Zero, "", fmt.Errorf("%w: amount is required", ErrInvalidInput)
	}
	amount, err := utils.ToDecimal(in.Amount)
	if err != nil {
		return time.Time{}, decimal.Zero, "", fmt.Errorf("%w: amount: %v", ErrInvalidInput, err)
	}
	if amount.IsNegative() {
		return time.Time{}, decimal.Zero, "", fmt.Errorf("%w: amount must not be negative", ErrInvalidInput)
	}

	date := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	if in.BusinessDate != "" {
		date, err = time.Parse(dateLayout, in.BusinessDate)
		if err != nil {
			return time.Time{}, decimal.Zero, "", fmt.Errorf("%w: business_date must be YYYY-MM-DD", ErrInvalidInput)
		}
	}

	return date, amount.Round(2), product, nil
}

// Create stores a new sale in the named region.
func (s *Service) Create(ctx context.Context, label string, in Input) (record.Record, error) {
	r, err := s.replica(label)
	if err != nil {
		return record.Record{}, err
	}

	now := s.now()
	date, amount, product, err := in.parse(now)
	if err != nil {
		return record.Record{}, err
	}

	saved, err := r.Store.Save(ctx, record.New(r.Label, date, amount, product, now))
	if err != nil {
		return record.Record{}, err
	}

	s.counter.RecordCreated()
	s.InvalidateCache()
	return saved, nil
}

// Update replaces the business fields of an active sale in the named region.
func (s *Service) Update(ctx context.Context, label string, id uuid.UUID, in Input) (record.Record, error) {
	r, err := s.replica(label)
	if err != nil {
		return record.Record{}, err
	}

	rec, err := r.Store.FindByID(ctx, id)
	if err != nil {
		return record.Record{}, err
	}
	if !rec.IsActive() {
		return record.Record{}, fmt.Errorf("%w: %s is deleted", region.ErrRecordNotFound, id)
	}

	now := s.now()
	date, amount, product, err := in.parse(now)
	if err != nil {
		return record.Record{}, err
	}
	if in.BusinessDate == "" {
		date = rec.Date()
	}

	rec = rec.CloneFor(r.Label)
	rec.BusinessDate = datatypes.Date(date)
	rec.Amount = amount
	rec.Product = product
	rec.Touch(now)

	saved, err := r.Store.Save(ctx, rec)
	if err != nil {
		return record.Record{}, err
	}

	s.counter.RecordUpdated()
	s.InvalidateCache()
	return saved, nil
}

// Delete soft-deletes a sale in the named region. The tombstone reaches the
// other regions on the next reconciliation run. Deleting a tombstone is a no-op.
func (s *Service) Delete(ctx context.Context, label string, id uuid.UUID) (record.Record, error) {
	r, err := s.replica(label)
	if err != nil {
		return record.Record{}, err
	}

	rec, err := r.Store.FindByID(ctx, id)
	if err != nil {
		return record.Record{}, err
	}
	if !rec.IsActive() {
		return rec, nil
	}

	rec.MarkDeleted(s.now())
	saved, err := r.Store.Save(ctx, rec)
	if err != nil {
		return record.Record{}, err
	}

	s.counter.RecordDeleted()
	s.InvalidateCache()
	return saved, nil
}

// ListRegion returns the sales held by one region, tombstones only when includeDeleted.
func (s *Service) ListRegion(ctx context.Context, label string, includeDeleted bool) ([]record.Record, error) {
	r, err := s.replica(label)
	if err != nil {
		return nil, err
	}

	rows, err := r.Store.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	if includeDeleted {
		return rows, nil
	}
	return active(rows), nil
}

// ListAll returns the active sales of every region, in region order. Regions
// that cannot be read are reported in the listing; the call fails only when no
// region can be read.
func (s *Service) ListAll(ctx context.Context) (Listing, error) {
	return s.listing.Get(ctx, listingKey, s.loadListing)
}

func (s *Service) loadListing(ctx context.Context) (Listing, error) {
	rows := make([][]record.Record, len(s.replicas))
	errs := make([]error, len(s.replicas))

	var wg sync.WaitGroup
	wg.Add(len(s.replicas))
	for i, r := range s.replicas {
		go func(i int, r region.Replica) {
			defer wg.Done()
			rows[i], errs[i] = r.Store.ListAll(ctx)
		}(i, r)
	}
	wg.Wait()

	listing := Listing{Records: []record.Record{}}
	var combined error
	for i, r := range s.replicas {
		if errs[i] != nil {
			s.logger.Warn("Region excluded from listing", zap.String("region", r.Label), zap.Error(errs[i]))
			if listing.Unreachable == nil {
				listing.Unreachable = make(map[string]string)
			}
			listing.Unreachable[r.Label] = errs[i].Error()
			combined = multierr.Append(combined, errs[i])
			continue
		}
		listing.Records = append(listing.Records, active(rows[i])...)
	}

	if len(s.replicas) > 0 && len(listing.Unreachable) == len(s.replicas) {
		return Listing{}, combined
	}
	return listing, nil
}

// FindByID looks the id up in every region and returns the newest version,
// earlier regions winning ties. A tombstoned winner is reported as not found.
func (s *Service) FindByID(ctx context.Context, id uuid.UUID) (record.Record, error) {
	var (
		best     *record.Record
		failures error
	)

	for _, r := range s.replicas {
		rec, err := r.Store.FindByID(ctx, id)
		if errors.Is(err, region.ErrRecordNotFound) {
			continue
		}
		if err != nil {
			s.logger.Warn("Region lookup failed", zap.String("region", r.Label), zap.Error(err))
			failures = multierr.Append(failures, err)
			continue
		}
		if best == nil || rec.NewerThan(*best) {
			found := rec
			best = &found
		}
	}

	if best == nil {
		if failures != nil {
			return record.Record{}, failures
		}
		return record.Record{}, fmt.Errorf("%w: %s", region.ErrRecordNotFound, id)
	}
	if !best.IsActive() {
		return record.Record{}, fmt.Errorf("%w: %s is deleted", region.ErrRecordNotFound, id)
	}
	return *best, nil
}

// Purge physically removes the id from every region. Regions that fail are
// listed in the returned error; the others are still purged.
func (s *Service) Purge(ctx context.Context, id uuid.UUID) error {
	var combined error
	for _, r := range s.replicas {
		if err := r.Store.DeleteByID(ctx, id); err != nil {
			s.logger.Error("Failed to purge record", zap.String("region", r.Label), zap.String("id", id.String()), zap.Error(err))
			combined = multierr.Append(combined, fmt.Errorf("%s: %w", r.Label, err))
		}
	}
	s.InvalidateCache()
	return combined
}

// Summary aggregates counts and totals per region.
func (s *Service) Summary(ctx context.Context) []RegionSummary {
	out := make([]RegionSummary, len(s.replicas))
	for i, r := range s.replicas {
		sum := RegionSummary{Region: r.Label, Total: decimal.Zero}
		rows, err := r.Store.ListAll(ctx)
		if err != nil {
			sum.Error = err.Error()
			out[i] = sum
			continue
		}
		for _, rec := range rows {
			if !rec.IsActive() {
				sum.Deleted++
				continue
			}
			sum.Active++
			sum.Total = sum.Total.Add(rec.Amount)
		}
		out[i] = sum
	}
	return out
}

func active(rows []record.Record) []record.Record {
	out := make([]record.Record, 0, len(rows))
	for _, rec := range rows {
		if rec.IsActive() {
			out = append(out, rec)
		}
	}
	return out
}
