package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/Olprog59/go-prodtrack/internal/domain"
	"github.com/Olprog59/go-prodtrack/internal/ports"
)

// ActivityService keeps the audit log of mutating requests / Tient le journal d'audit
type ActivityService struct {
	repo ports.ActivityRepository
}

func NewActivityService(repo ports.ActivityRepository) *ActivityService {
	return &ActivityService{repo: repo}
}

// Record stores an entry. Failures are logged only, auditing never fails a request.
func (s *ActivityService) Record(ctx context.Context, a *domain.UserActivity) {
	if err := s.repo.Create(ctx, a); err != nil {
		slog.Error("failed to record activity", "user_id", a.UserID, "action", a.Action, "err", err)
	}
}

// List returns a page of entries, newest first, and the total count.
func (s *ActivityService) List(ctx context.Context, filter domain.ActivityFilter, page, limit int) ([]*domain.UserActivity, int, error) {
	offset, size := pagination(page, limit)
	list, total, err := s.repo.List(ctx, filter, offset, size)
	if err != nil {
		return nil, 0, repoError("activity", err)
	}
	return list, total, nil
}

// Purge deletes entries older than retention / Supprime les entrées plus anciennes que la rétention
func (s *ActivityService) Purge(ctx context.Context, retention time.Duration) (int64, error) {
	if retention <= 0 {
		return 0, invalid("retention", "must be positive")
	}
	n, err := s.repo.PurgeBefore(ctx, time.Now().Add(-retention))
	if err != nil {
		return 0, repoError("activity", err)
	}
	slog.Info("activity purged", "count", n, "retention", retention)
	return n, nil
}
