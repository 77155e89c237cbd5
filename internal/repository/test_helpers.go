package repository

import (
	"database/sql"
	"testing"

	"github.com/Olprog59/go-prodtrack/internal/repository/db"
	_ "modernc.org/sqlite" // SQLite driver
)

// NewTestDB opens a migrated in-memory SQLite database closed with the test.
// Ouvre une base SQLite en mémoire migrée, fermée à la fin du test.
func NewTestDB(tb testing.TB) *sql.DB {
	tb.Helper()

	database, err := db.NewDatabaseInitializer(db.SQLite).Initialize(db.DatabaseConfig{
		Type: db.SQLite,
		DSN:  ":memory:",
	})
	if err != nil {
		tb.Fatalf("failed to open in-memory database: %v", err)
	}
	tb.Cleanup(func() { database.Close() })

	if err := db.RunMigrations(database, db.SQLite); err != nil {
		tb.Fatalf("failed to migrate in-memory database: %v", err)
	}
	return database
}

// NewTestAdapter returns a SQLite adapter over NewTestDB / Retourne un adapter SQLite sur NewTestDB
func NewTestAdapter(tb testing.TB) (*sql.DB, *Adapter) {
	tb.Helper()
	database := NewTestDB(tb)
	return database, NewAdapter(database, db.SQLite.String())
}
