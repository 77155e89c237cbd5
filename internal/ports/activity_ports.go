package ports

import (
	"context"
	"time"

	"github.com/Olprog59/go-prodtrack/internal/domain"
)

// ActivityRepository stores the audit log / Stocke le journal d'audit
type ActivityRepository interface {
	Create(ctx context.Context, a *domain.UserActivity) error
	List(ctx context.Context, filter domain.ActivityFilter, offset, limit int) ([]*domain.UserActivity, int, error)
	// PurgeBefore deletes entries older than the cutoff / Supprime les entrées antérieures
	PurgeBefore(ctx context.Context, before time.Time) (int64, error)
}
