package db

import (
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

const (
	defaultMaxOpenConns = 25
	defaultMaxIdleConns = 5
	connMaxIdleTime     = 5 * time.Minute
)

// DatabaseConfig holds database connection config / Contient la config de connexion BD
type DatabaseConfig struct {
	Type         DatabaseType
	DSN          string
	MaxOpenConns int
	MaxIdleConns int
}

// DatabaseInitializer opens and tunes a connection pool for one backend.
type DatabaseInitializer interface {
	Initialize(config DatabaseConfig) (*sql.DB, error)
	Type() DatabaseType
}

// NewDatabaseInitializer returns the initializer for dbType, MySQL by default.
// Retourne l'initialiseur du type de BD, MySQL par défaut.
func NewDatabaseInitializer(dbType DatabaseType) DatabaseInitializer {
	if dbType == SQLite {
		return sqliteInitializer{}
	}
	return mysqlInitializer{}
}

// openPool opens driver, sizes the pool, runs tune, then pings.
func openPool(driver string, config DatabaseConfig, tune func(*sql.DB) error) (*sql.DB, error) {
	db, err := sql.Open(driver, config.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s connection: %w", driver, err)
	}

	maxOpen, maxIdle := config.MaxOpenConns, config.MaxIdleConns
	if maxOpen <= 0 {
		maxOpen = defaultMaxOpenConns
	}
	if maxIdle <= 0 {
		maxIdle = defaultMaxIdleConns
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)

	if err := tune(db); err != nil {
		db.Close()
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping %s: %w", driver, err)
	}

	slog.Info("database connected", "driver", driver, "max_open_conns", maxOpen)
	return db, nil
}

// mysqlInitializer targets the plant MySQL server. Session settings
// (parseTime, loc, multiStatements) come from the DSN so every pooled
// connection gets them.
type mysqlInitializer struct{}

func (mysqlInitializer) Initialize(config DatabaseConfig) (*sql.DB, error) {
	return openPool("mysql", config, func(db *sql.DB) error {
		// Recycle before the server's wait_timeout drops idle connections.
		db.SetConnMaxIdleTime(connMaxIdleTime)
		return nil
	})
}

func (mysqlInitializer) Type() DatabaseType { return MySQL }

// sqliteInitializer serves local development and tests.
type sqliteInitializer struct{}

func (sqliteInitializer) Initialize(config DatabaseConfig) (*sql.DB, error) {
	memory := isMemoryDSN(config.DSN)
	if memory {
		// The database lives only as long as its single connection.
		config.MaxOpenConns, config.MaxIdleConns = 1, 1
	}
	config.DSN = sqliteDSN(config.DSN)

	return openPool("sqlite", config, func(db *sql.DB) error {
		if memory {
			_, err := db.Exec("PRAGMA foreign_keys=ON")
			return err
		}
		// journal_mode is stored in the file, once is enough.
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			slog.Warn("failed to enable WAL", "err", err)
		}
		return nil
	})
}

func (sqliteInitializer) Type() DatabaseType { return SQLite }

// connectionPragmas must hold on every pooled connection, not only the first.
var connectionPragmas = []string{
	"foreign_keys(1)",
	"busy_timeout(5000)",
	"synchronous(NORMAL)",
	"trusted_schema(OFF)",
}

func isMemoryDSN(dsn string) bool {
	return dsn == ":memory:" || strings.Contains(dsn, "mode=memory")
}

// sqliteDSN appends connectionPragmas to a file DSN. Memory DSNs and DSNs that
// already carry pragmas are returned as is.
func sqliteDSN(dsn string) string {
	if isMemoryDSN(dsn) || strings.Contains(dsn, "_pragma=") {
		return dsn
	}
	params := make([]string, len(connectionPragmas))
	for i, p := range connectionPragmas {
		params[i] = "_pragma=" + p
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + strings.Join(params, "&")
}
