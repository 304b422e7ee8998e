package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite" // pure go sqlite driver

	"github.com/iliyamo/theater-service/internal/config"
)

// Open connects to the configured SQL backend and verifies the connection.
// The memory driver has no SQL handle and is rejected here.
func Open(cfg config.DBConfig) (*sql.DB, error) {
	var (
		db  *sql.DB
		err error
	)
	switch cfg.Driver {
	case "mysql":
		db, err = sql.Open("mysql", mysqlDSN(cfg))
	case "sqlite":
		db, err = sql.Open("sqlite", cfg.Path)
	default:
		return nil, fmt.Errorf("database: unsupported sql driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}

	// Pool settings
	if cfg.Driver == "sqlite" {
		// a second or recycled connection to ":memory:" would see an empty database
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
		db.SetMaxIdleConns(cfg.MaxOpenConns)
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	// Ping with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// mysqlDSN builds the driver DSN.  parseTime keeps DATETIME as time.Time,
// clientFoundRows makes RowsAffected count matched rows on UPDATE.
func mysqlDSN(cfg config.DBConfig) string {
	mc := mysql.NewConfig()
	mc.User = cfg.User
	mc.Passwd = cfg.Pass
	mc.Net = "tcp"
	mc.Addr = cfg.Host + ":" + cfg.Port
	mc.DBName = cfg.Name
	mc.ParseTime = true
	mc.Loc = time.UTC
	mc.ClientFoundRows = true
	mc.Params = map[string]string{"charset": "utf8mb4"}
	return mc.FormatDSN()
}
