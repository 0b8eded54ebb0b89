package record

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Record is a single sale as stored in one region.
type Record struct {
	// ID identifies the same logical sale in every region.
	ID uuid.UUID `gorm:"column:id;type:varchar(36);primaryKey" json:"id"`
	// BusinessDate is the calendar day of the sale.
	BusinessDate datatypes.Date `gorm:"column:business_date" json:"business_date"`
	// Amount is the sale amount.
	Amount decimal.Decimal `gorm:"column:amount;type:decimal(15,2)" json:"amount"`
	// Product is a free text label.
	Product string `gorm:"column:product;size:255" json:"product"`
	// Region is the region this copy was last written into.
	Region string `gorm:"column:region;size:64" json:"region"`
	// UpdatedAt is the time of the last mutation and the conflict-resolution key.
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime:false;index" json:"updated_at"`
	// Deleted marks the record as a tombstone.
	Deleted bool `gorm:"column:deleted;not null" json:"deleted"`
	// DeletedAt is set when Deleted becomes true.
	DeletedAt *time.Time `gorm:"column:deleted_at" json:"deleted_at"`
}

// TableName binds Record to the sales table in every region.
func (Record) TableName() string {
	return "sales"
}

// New creates a record with a fresh id, owned by region and stamped with now.
func New(region string, businessDate time.Time, amount decimal.Decimal, product string, now time.Time) Record {
	return Record{
		ID:           uuid.New(),
		BusinessDate: datatypes.Date(businessDate),
		Amount:       amount,
		Product:      product,
		Region:       region,
		UpdatedAt:    now,
	}
}

// Touch stamps the record as mutated at now.
func (r *Record) Touch(now time.Time) {
	r.UpdatedAt = now
}

// MarkDeleted turns the record into a tombstone.
func (r *Record) MarkDeleted(now time.Time) {
	r.Deleted = true
	deletedAt := now
	r.DeletedAt = &deletedAt
	r.UpdatedAt = now
}

// IsActive reports whether the record should appear on read paths.
func (r Record) IsActive() bool {
	return !r.Deleted
}

// NewerThan reports whether r was mutated strictly after other.
func (r Record) NewerThan(other Record) bool {
	return r.UpdatedAt.After(other.UpdatedAt)
}

// CloneFor returns a copy of r relabelled for region. Every other field,
// including the tombstone and UpdatedAt, is copied verbatim.
func (r Record) CloneFor(region string) Record {
	clone := r
	clone.Region = region
	if r.DeletedAt != nil {
		deletedAt := *r.DeletedAt
		clone.DeletedAt = &deletedAt
	}
	return clone
}

// Date returns the business date as a time.Time.
func (r Record) Date() time.Time {
	return time.Time(r.BusinessDate)
}
