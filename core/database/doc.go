// Package database handles database connections and schema inspection for the
// SQL-backed record store.
//
// It provides a wrapper around GORM to configure MySQL (production) or SQLite
// (local runs and tests) connections from the application's configuration.
//
// # Schema Inspection
//
// TableColumns and ColumnSet report the columns of a table so that schema
// upgrades can add only what is missing.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
//
//	columns, err := database.ColumnSet(db, "calsync_datasets")
package database
