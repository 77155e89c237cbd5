package sqlite

import (
	"errors"
	"log/slog"

	"github.com/Olprog59/go-prodtrack/internal/repository/db"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var (
	ErrBusy   = errors.New("database is busy")   // Database busy / Base de données occupée
	ErrLocked = errors.New("database is locked") // Database locked / Base de données verrouillée
)

// handleError translates SQLite errors to typed errors / Traduit les erreurs SQLite en erreurs typées
func handleError(err error) error {
	var liteErr *sqlite.Error
	if !errors.As(err, &liteErr) {
		return err
	}
	code := liteErr.Code()
	switch code {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return db.ErrDuplicate
	case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
		return db.ErrForeignKeyViolation
	case sqlite3.SQLITE_BUSY:
		slog.Warn("database is busy", "err", liteErr.Error())
		return ErrBusy
	case sqlite3.SQLITE_LOCKED:
		slog.Warn("database is locked", "err", liteErr.Error())
		return ErrLocked
	}
	slog.Debug("unmapped sqlite error", "code", code, "err", liteErr.Error())
	return err
}
