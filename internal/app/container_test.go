package app_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/Olprog59/go-prodtrack/internal/app"
	"github.com/Olprog59/go-prodtrack/internal/config"
	"github.com/Olprog59/go-prodtrack/internal/jobs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func testConfig(dsn string) *config.Config {
	return &config.Config{
		Environment: "development",
		Database: config.DatabaseConfig{
			Type: "sqlite",
			DSN:  dsn,
		},
		Auth: config.AuthConfig{
			JWTSecret:            "test-secret-must-be-at-least-32-characters-long",
			AccessTokenDuration:  time.Minute,
			RefreshTokenDuration: time.Hour,
		},
		Security: config.SecurityConfig{
			BcryptCost:        bcrypt.MinCost,
			MaxFailedAttempts: 5,
			LockoutDuration:   time.Minute,
		},
		Production: config.ProductionConfig{DeltaTolerance: 1, MaxHeuresJour: 8},
		Jobs: config.JobsConfig{
			TokenPurgeSchedule:    "0 3 * * *",
			ActivityPurgeSchedule: "30 3 * * *",
			ActivityRetention:     90 * 24 * time.Hour,
		},
		Bootstrap: config.BootstrapConfig{
			AdminEmail:    "admin@usine.fr",
			AdminPassword: "Admin#2025pass",
			AdminNom:      "Admin",
		},
	}
}

func TestNewContainer(t *testing.T) {
	container, err := app.NewContainer(testConfig(":memory:"))
	require.NoError(t, err)
	require.NotNil(t, container)
	defer container.Close()

	assert.NotNil(t, container.DB)
	assert.NotNil(t, container.Registry)
	assert.NotNil(t, container.UserRepo)
	assert.NotNil(t, container.AuthSvc)
	assert.NotNil(t, container.PlanificationSvc)
	assert.NotNil(t, container.StatsSvc)
	assert.NotNil(t, container.ActivitySvc)

	require.NoError(t, container.DB.Ping())

	// Migrations applied and bootstrap admin created
	users, total, err := container.UserSvc.ListUsers(context.Background(), 1, 10)
	require.NoError(t, err)
	require.Equal(t, 1, total)
	assert.Equal(t, "admin@usine.fr", users[0].Email)
	assert.True(t, users[0].IsAdmin())

	assert.ElementsMatch(t, []string{jobs.TokenPurgeJob, jobs.ActivityPurgeJob}, container.Scheduler.Jobs())
}

func TestNewContainer_BackupJob(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(filepath.Join(dir, "prodtrack.db"))
	cfg.Jobs.ActivityPurgeSchedule = ""
	cfg.Backup = config.BackupConfig{
		Enabled:       true,
		Schedule:      "@daily",
		Path:          filepath.Join(dir, "backups"),
		RetentionDays: 7,
	}

	container, err := app.NewContainer(cfg)
	require.NoError(t, err)
	defer container.Close()

	assert.ElementsMatch(t, []string{jobs.TokenPurgeJob, jobs.BackupJob}, container.Scheduler.Jobs())
}

func TestNewContainer_BackupSkippedInMemory(t *testing.T) {
	cfg := testConfig(":memory:")
	cfg.Backup = config.BackupConfig{Enabled: true, Schedule: "@daily", Path: t.TempDir()}

	container, err := app.NewContainer(cfg)
	require.NoError(t, err)
	defer container.Close()

	assert.NotContains(t, container.Scheduler.Jobs(), jobs.BackupJob)
}

func TestNewContainer_InvalidSchedule(t *testing.T) {
	cfg := testConfig(":memory:")
	cfg.Jobs.TokenPurgeSchedule = "every day"

	_, err := app.NewContainer(cfg)
	assert.ErrorContains(t, err, "jobs init")
}

func TestContainer_CloseWithoutScheduler(t *testing.T) {
	c := &app.Container{}
	assert.NoError(t, c.Close())
}
