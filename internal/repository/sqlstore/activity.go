package sqlstore

import (
	"context"
	"time"

	"github.com/Olprog59/go-prodtrack/internal/domain"
	"github.com/Olprog59/go-prodtrack/internal/ports"
	"github.com/Olprog59/go-prodtrack/internal/repository/db"
)

var _ ports.ActivityRepository = (*activityRepository)(nil)

type activityRepository struct {
	db          ports.DBTX
	handleError db.ErrorTranslator
}

// NewActivityRepository creates audit log repository / Crée le repository du journal d'audit
func NewActivityRepository(database ports.DBTX, dialect db.ErrorTranslator) ports.ActivityRepository {
	return &activityRepository{db: database, handleError: translator(dialect)}
}

func (r *activityRepository) Create(ctx context.Context, a *domain.UserActivity) error {
	createdAt := a.CreatedAt
	if createdAt.IsZero() {
		createdAt = now()
	}
	query := `INSERT INTO user_activities (user_id, action, path, entity_id, status_code, ip_hash, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query, a.UserID, a.Action, a.Path, a.EntityID, a.StatusCode, a.IPHash, createdAt.UTC())
	if err != nil {
		return r.handleError(err)
	}
	if id, err := res.LastInsertId(); err == nil {
		a.ID = id
	}
	a.CreatedAt = createdAt
	return nil
}

// List returns the newest entries first with the filtered total.
func (r *activityRepository) List(ctx context.Context, filter domain.ActivityFilter, offset, limit int) ([]*domain.UserActivity, int, error) {
	w := &where{}
	w.eq("user_id", filter.UserID)
	w.eq("action", filter.Action)

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM user_activities`+w.String(), w.args...).Scan(&total); err != nil {
		return nil, 0, r.handleError(err)
	}

	query := `SELECT id, user_id, action, path, entity_id, status_code, ip_hash, created_at
		FROM user_activities` + w.String() + ` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`
	args := append(append([]any{}, w.args...), limit, offset)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, r.handleError(err)
	}
	defer rows.Close()

	list := make([]*domain.UserActivity, 0)
	for rows.Next() {
		a := &domain.UserActivity{}
		if err := rows.Scan(&a.ID, &a.UserID, &a.Action, &a.Path, &a.EntityID, &a.StatusCode, &a.IPHash, &a.CreatedAt); err != nil {
			return nil, 0, r.handleError(err)
		}
		list = append(list, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, r.handleError(err)
	}
	return list, total, nil
}

func (r *activityRepository) PurgeBefore(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM user_activities WHERE created_at < ?`, before.UTC())
	if err != nil {
		return 0, r.handleError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, r.handleError(err)
	}
	return n, nil
}
