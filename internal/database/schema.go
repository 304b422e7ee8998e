package database

import (
	"context"
	"database/sql"
	"fmt"
)

// theatersDDL creates the theaters table when it does not exist yet.  It is
// a bootstrap for fresh databases, not a migration: existing tables are
// left untouched.
var theatersDDL = map[string]string{
	"mysql": `CREATE TABLE IF NOT EXISTS theaters (
		id       INT AUTO_INCREMENT PRIMARY KEY,
		name     VARCHAR(100) NOT NULL,
		location TEXT NOT NULL,
		notes    TEXT NULL
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	"sqlite": `CREATE TABLE IF NOT EXISTS theaters (
		id       INTEGER PRIMARY KEY AUTOINCREMENT,
		name     TEXT NOT NULL,
		location TEXT NOT NULL,
		notes    TEXT NULL
	)`,
}

// EnsureSchema runs the theaters DDL for driver.
func EnsureSchema(ctx context.Context, db *sql.DB, driver string) error {
	ddl, ok := theatersDDL[driver]
	if !ok {
		return fmt.Errorf("database: no schema for driver %q", driver)
	}
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("database: ensure schema: %w", err)
	}
	return nil
}
