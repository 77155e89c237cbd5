package ports

import (
	"context"
	"time"

	"github.com/Olprog59/go-prodtrack/internal/domain"
)

// RefreshTokenStore persists refresh tokens / Stocke les refresh tokens
//
// Callers pass raw token values; implementations store and look up their
// SHA-256 digest only.
type RefreshTokenStore interface {
	Save(ctx context.Context, token *domain.RefreshToken) error
	Get(ctx context.Context, token string) (*domain.RefreshToken, error)
	Revoke(ctx context.Context, token string) error
	// RevokeAllForUser runs at login and logout so one session stays active.
	RevokeAllForUser(ctx context.Context, userID int64) error
	// PurgeExpired deletes tokens that expired before the cutoff, for the purge job.
	PurgeExpired(ctx context.Context, before time.Time) (int64, error)
	WithTx(dbtx DBTX) RefreshTokenStore
}
