package db

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Olprog59/go-prodtrack/migrations"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// RunMigrations applies the embedded migrations of dbType / Applique les migrations embarquées
//
// MySQL DSNs must enable multiStatements=true, each file holds several statements.
func RunMigrations(database *sql.DB, dbType DatabaseType) error {
	driverFactory, err := NewMigrationDriverRegistry().GetFactory(dbType)
	if err != nil {
		return err
	}

	driver, err := driverFactory.CreateDriver(database)
	if err != nil {
		return fmt.Errorf("could not create %s migration driver: %w", dbType, err)
	}

	source, err := iofs.New(migrations.FS, dbType.String())
	if err != nil {
		return fmt.Errorf("could not open embedded migrations: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, driverFactory.DriverName(), driver)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	slog.Info("applying database migrations", "type", dbType)
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration failed: %w", err)
	}

	version, dirty, _ := m.Version()
	slog.Info("database migrations applied", "version", version, "dirty", dirty)
	return nil
}
