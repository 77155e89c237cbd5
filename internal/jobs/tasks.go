package jobs

import (
	"context"
	"log/slog"
	"time"
)

// Job names, also used as metric labels / Noms des tâches
const (
	TokenPurgeJob    = "token_purge"
	ActivityPurgeJob = "activity_purge"
	BackupJob        = "database_backup"
)

// TokenPurger deletes expired refresh tokens.
type TokenPurger interface {
	PurgeExpiredTokens(ctx context.Context) (int64, error)
}

// ActivityPurger deletes audit entries older than a retention.
type ActivityPurger interface {
	Purge(ctx context.Context, retention time.Duration) (int64, error)
}

// TokenPurge returns the refresh token purge job.
func TokenPurge(p TokenPurger) Func {
	return func(ctx context.Context) error {
		n, err := p.PurgeExpiredTokens(ctx)
		if err != nil {
			return err
		}
		slog.Info("expired refresh tokens purged", "count", n)
		return nil
	}
}

// ActivityPurge returns the activity log purge job / Purge du journal d'activité
func ActivityPurge(p ActivityPurger, retention time.Duration) Func {
	return func(ctx context.Context) error {
		_, err := p.Purge(ctx, retention)
		return err
	}
}
