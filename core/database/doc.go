// Package database handles region database connections and schema checks.
//
// Each region owns an independent database. Connect opens one GORM connection per
// region for MySQL, PostgreSQL or SQLite; the "memory" driver is handled by the
// caller and never reaches this package.
//
// # Schema
//
// Migrate creates the sales table from the record model. CheckSchema inspects the
// live table and reports any expected column that is missing, which lets an
// operator verify a region before it joins replication.
//
// # Usage
//
//	db, err := database.Connect(cfg.Regions.Dakar)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
//
//	missing, err := database.CheckSchema(db)
package database
