// Package sqlstore implements the repositories with SQL portable across the
// supported dialects. Driver-specific error codes are mapped by the
// db.ErrorTranslator each dialect package injects.
package sqlstore

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/Olprog59/go-prodtrack/internal/repository/db"
)

type scanner interface {
	Scan(dest ...any) error
}

// now is the timestamp written in created_at/updated_at columns.
// Truncated to the second, the precision of MySQL DATETIME.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}

// translator wraps the dialect mapper with the sql.ErrNoRows case.
func translator(dialect db.ErrorTranslator) db.ErrorTranslator {
	return func(err error) error {
		if err == nil {
			return nil
		}
		if errors.Is(err, sql.ErrNoRows) {
			return db.ErrNoRecord
		}
		if dialect != nil {
			return dialect(err)
		}
		return err
	}
}

// expectRows returns db.ErrNoRecord when a statement touched nothing.
func expectRows(res sql.Result, handleError db.ErrorTranslator) error {
	n, err := res.RowsAffected()
	if err != nil {
		return handleError(err)
	}
	if n == 0 {
		return db.ErrNoRecord
	}
	return nil
}

type where struct {
	clauses []string
	args    []any
}

// eq adds "column = ?" when value is not the zero value.
func (w *where) eq(column string, value any) {
	switch v := value.(type) {
	case string:
		if v == "" {
			return
		}
	case int64:
		if v == 0 {
			return
		}
	}
	w.add(column+" = ?", value)
}

func (w *where) add(clause string, args ...any) {
	w.clauses = append(w.clauses, clause)
	w.args = append(w.args, args...)
}

func (w *where) String() string {
	if len(w.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.clauses, " AND ")
}
