package jobs

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func openFileDB(t *testing.T) (*sql.DB, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "prodtrack.db")
	database, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	_, err = database.Exec(`CREATE TABLE ouvriers (matricule INTEGER PRIMARY KEY, nom_prenom TEXT)`)
	require.NoError(t, err)
	_, err = database.Exec(`INSERT INTO ouvriers VALUES (1001, 'DUPONT Jean')`)
	require.NoError(t, err)
	return database, path
}

func TestNewBackup_RejectsMemoryDatabases(t *testing.T) {
	for _, dsn := range []string{"", ":memory:", "file:test?mode=memory&cache=shared"} {
		_, err := NewBackup(nil, dsn, t.TempDir(), 7)
		assert.ErrorIs(t, err, ErrBackupUnsupported, dsn)
	}

	_, err := NewBackup(nil, "data/prodtrack.db", "", 7)
	assert.Error(t, err)
}

func TestBackup_Run(t *testing.T) {
	database, path := openFileDB(t)
	dir := filepath.Join(t.TempDir(), "backups")

	b, err := NewBackup(database, path+"?_pragma=foreign_keys(1)", dir, 7)
	require.NoError(t, err)
	b.now = func() time.Time { return time.Date(2025, 2, 3, 4, 5, 6, 0, time.UTC) }

	require.NoError(t, b.Run(context.Background()))

	copyPath := filepath.Join(dir, "prodtrack.db.backup-20250203-040506.db")
	require.FileExists(t, copyPath)

	copied, err := sql.Open("sqlite", copyPath)
	require.NoError(t, err)
	defer copied.Close()

	var nom string
	require.NoError(t, copied.QueryRow(`SELECT nom_prenom FROM ouvriers WHERE matricule = 1001`).Scan(&nom))
	assert.Equal(t, "DUPONT Jean", nom)
}

func TestBackup_PruneKeepsRecentAndForeignFiles(t *testing.T) {
	dir := t.TempDir()
	b := &Backup{dir: dir, retentionDays: 7, now: time.Now}

	write := func(name string, age time.Duration) string {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte("x"), 0o644))
		mod := time.Now().Add(-age)
		require.NoError(t, os.Chtimes(p, mod, mod))
		return p
	}

	old := write("prodtrack.db.backup-20240101-000000.db", 30*24*time.Hour)
	recent := write("prodtrack.db.backup-20250101-000000.db", 24*time.Hour)
	foreign := write("notes.db", 30*24*time.Hour)

	removed, err := b.prune()
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.NoFileExists(t, old)
	assert.FileExists(t, recent)
	assert.FileExists(t, foreign)

	b.retentionDays = 0
	removed, err = b.prune()
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestBackup_QuotesPath(t *testing.T) {
	database, path := openFileDB(t)
	dir := filepath.Join(t.TempDir(), "it's here")

	b, err := NewBackup(database, path, dir, 0)
	require.NoError(t, err)
	created, err := b.create(context.Background())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(filepath.Base(created), "prodtrack.db"+backupMarker))
	assert.FileExists(t, created)
}
