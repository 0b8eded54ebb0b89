package database

import (
	"fmt"

	"region-sync/core/record"

	"gorm.io/gorm"
)

// SalesColumns lists the columns every region's sales table must carry.
var SalesColumns = []string{"id", "business_date", "amount", "product", "region", "updated_at", "deleted", "deleted_at"}

// Migrate creates or updates the sales table.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&record.Record{}); err != nil {
		return fmt.Errorf("failed to migrate sales table: %w", err)
	}
	return nil
}

// CheckSchema returns the sales columns missing from db.
func CheckSchema(db *gorm.DB) ([]string, error) {
	return MissingColumns(db, record.Record{}.TableName(), SalesColumns)
}
