package db

import "strings"

// DatabaseType names a supported SQL backend / Base de données supportée
type DatabaseType string

const (
	SQLite DatabaseType = "sqlite"
	MySQL  DatabaseType = "mysql"
)

// ParseDatabaseType reads the configured type. Empty means the plant MySQL
// server; "sqlite3" is accepted for the local dev database.
func ParseDatabaseType(s string) DatabaseType {
	switch t := DatabaseType(strings.ToLower(strings.TrimSpace(s))); t {
	case "":
		return MySQL
	case "sqlite3":
		return SQLite
	default:
		return t
	}
}

func (dt DatabaseType) String() string { return string(dt) }

// IsValid reports whether migrations and an initializer exist for dt.
func (dt DatabaseType) IsValid() bool {
	return dt == SQLite || dt == MySQL
}
