package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
)

// MigrationsTable records the applied schema version / Table de version du schéma
const MigrationsTable = "prodtrack_migrations"

// mysqlLockTimeout bounds the wait on the migration lock when several
// instances start together.
const mysqlLockTimeout = 30 * time.Second

// DriverConfig binds a migrate driver constructor to its settings.
type DriverConfig[T any] struct {
	Name   string
	DBType DatabaseType
	Open   func(*sql.DB, T) (database.Driver, error)
	Config T
}

// MigrationDriver is a DriverConfig ready to be registered.
type MigrationDriver[T any] struct {
	config DriverConfig[T]
}

func NewMigrationDriver[T any](config DriverConfig[T]) *MigrationDriver[T] {
	return &MigrationDriver[T]{config: config}
}

func (d *MigrationDriver[T]) CreateDriver(db *sql.DB) (database.Driver, error) {
	return d.config.Open(db, d.config.Config)
}

func (d *MigrationDriver[T]) DriverName() string  { return d.config.Name }
func (d *MigrationDriver[T]) Type() DatabaseType { return d.config.DBType }

// MigrationDriverFactory creates migration drivers / Crée les drivers de migration
type MigrationDriverFactory interface {
	CreateDriver(db *sql.DB) (database.Driver, error)
	DriverName() string
	Type() DatabaseType
}

// MigrationDriverRegistry maps each supported database to its migrate driver.
type MigrationDriverRegistry struct {
	factories map[DatabaseType]MigrationDriverFactory
}

// NewMigrationDriverRegistry registers the sqlite and mysql drivers, both
// tracking versions in MigrationsTable.
func NewMigrationDriverRegistry() *MigrationDriverRegistry {
	registry := &MigrationDriverRegistry{factories: make(map[DatabaseType]MigrationDriverFactory, 2)}

	registry.Register(NewMigrationDriver(DriverConfig[*sqlite.Config]{
		Name:   "sqlite",
		DBType: SQLite,
		Open:   sqlite.WithInstance,
		Config: &sqlite.Config{MigrationsTable: MigrationsTable},
	}))
	registry.Register(NewMigrationDriver(DriverConfig[*mysql.Config]{
		Name:   "mysql",
		DBType: MySQL,
		Open:   mysql.WithInstance,
		Config: &mysql.Config{
			MigrationsTable:  MigrationsTable,
			StatementTimeout: mysqlLockTimeout,
		},
	}))
	return registry
}

func (r *MigrationDriverRegistry) Register(factory MigrationDriverFactory) {
	r.factories[factory.Type()] = factory
}

// GetFactory retrieves migration driver factory / Récupère la factory de migration
func (r *MigrationDriverRegistry) GetFactory(dbType DatabaseType) (MigrationDriverFactory, error) {
	factory, ok := r.factories[dbType]
	if !ok {
		return nil, fmt.Errorf("unsupported database type for migrations: %s", dbType)
	}
	return factory, nil
}
