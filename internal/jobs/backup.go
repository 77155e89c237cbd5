package jobs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ErrBackupUnsupported is returned for databases VACUUM INTO cannot copy.
var ErrBackupUnsupported = errors.New("backup requires a file based sqlite database")

const backupMarker = ".backup-"

// Backup copies a sqlite database into a directory and prunes old copies.
// Copie une base sqlite dans un répertoire et supprime les anciennes copies.
type Backup struct {
	db            *sql.DB
	dbFile        string
	dir           string
	retentionDays int
	now           func() time.Time
}

// NewBackup prepares a backup of the sqlite database opened from dsn.
func NewBackup(database *sql.DB, dsn, dir string, retentionDays int) (*Backup, error) {
	file := dsn
	if idx := strings.Index(file, "?"); idx >= 0 {
		file = file[:idx]
	}
	file = strings.TrimPrefix(file, "file:")
	if file == "" || file == ":memory:" || strings.Contains(dsn, "mode=memory") {
		return nil, ErrBackupUnsupported
	}
	if dir == "" {
		return nil, fmt.Errorf("backup path is required")
	}
	return &Backup{db: database, dbFile: file, dir: dir, retentionDays: retentionDays, now: time.Now}, nil
}

// Run creates a new backup then removes the expired ones.
func (b *Backup) Run(ctx context.Context) error {
	path, err := b.create(ctx)
	if err != nil {
		return err
	}
	slog.Info("database backup created", "path", path)

	removed, err := b.prune()
	if err != nil {
		return fmt.Errorf("backup cleanup: %w", err)
	}
	if removed > 0 {
		slog.Info("old backups removed", "count", removed)
	}
	return nil
}

func (b *Backup) create(ctx context.Context) (string, error) {
	if err := os.MkdirAll(b.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	name := fmt.Sprintf("%s%s%s.db", filepath.Base(b.dbFile), backupMarker, b.now().UTC().Format("20060102-150405"))
	path := filepath.Join(b.dir, name)

	// VACUUM INTO takes a literal, not a bound parameter.
	query := fmt.Sprintf("VACUUM INTO '%s'", strings.ReplaceAll(path, "'", "''"))
	if _, err := b.db.ExecContext(ctx, query); err != nil {
		return "", fmt.Errorf("backup execution failed: %w", err)
	}
	return path, nil
}

// prune deletes backups older than the retention. Zero keeps everything.
func (b *Backup) prune() (int, error) {
	if b.retentionDays <= 0 {
		return 0, nil
	}
	cutoff := b.now().AddDate(0, 0, -b.retentionDays)

	entries, err := os.ReadDir(b.dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read backup directory: %w", err)
	}

	removed := 0
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.Contains(name, backupMarker) || !strings.HasSuffix(name, ".db") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			slog.Warn("failed to stat backup", "file", name, "err", err)
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(b.dir, name)); err != nil {
			slog.Warn("failed to delete old backup", "file", name, "err", err)
			continue
		}
		removed++
	}
	return removed, nil
}
