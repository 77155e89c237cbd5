package sqlstore

import (
	"context"

	"github.com/Olprog59/go-prodtrack/internal/domain"
	"github.com/Olprog59/go-prodtrack/internal/ports"
	"github.com/Olprog59/go-prodtrack/internal/repository/db"
)

var _ ports.CommentaireRepository = (*commentaireRepository)(nil)

type commentaireRepository struct {
	db          ports.DBTX
	handleError db.ErrorTranslator
}

// NewCommentaireRepository creates comment catalog repository / Crée le repository des commentaires
func NewCommentaireRepository(database ports.DBTX, dialect db.ErrorTranslator) ports.CommentaireRepository {
	return &commentaireRepository{db: database, handleError: translator(dialect)}
}

func (r *commentaireRepository) Create(ctx context.Context, c *domain.Commentaire) (*domain.Commentaire, error) {
	res, err := r.db.ExecContext(ctx, `INSERT INTO commentaires (commentaire, created_at) VALUES (?, ?)`, c.Commentaire, now())
	if err != nil {
		return nil, r.handleError(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, r.handleError(err)
	}
	return r.GetByID(ctx, id)
}

func (r *commentaireRepository) GetByID(ctx context.Context, id int64) (*domain.Commentaire, error) {
	c := &domain.Commentaire{}
	query := `SELECT id, commentaire, created_at FROM commentaires WHERE id = ?`
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&c.ID, &c.Commentaire, &c.CreatedAt); err != nil {
		return nil, r.handleError(err)
	}
	return c, nil
}

func (r *commentaireRepository) List(ctx context.Context) ([]*domain.Commentaire, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, commentaire, created_at FROM commentaires ORDER BY commentaire`)
	if err != nil {
		return nil, r.handleError(err)
	}
	defer rows.Close()

	list := make([]*domain.Commentaire, 0)
	for rows.Next() {
		c := &domain.Commentaire{}
		if err := rows.Scan(&c.ID, &c.Commentaire, &c.CreatedAt); err != nil {
			return nil, r.handleError(err)
		}
		list = append(list, c)
	}
	return list, r.handleError(rows.Err())
}

func (r *commentaireRepository) Update(ctx context.Context, c *domain.Commentaire) error {
	_, err := r.db.ExecContext(ctx, `UPDATE commentaires SET commentaire = ? WHERE id = ?`, c.Commentaire, c.ID)
	return r.handleError(err)
}

func (r *commentaireRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM commentaires WHERE id = ?`, id)
	if err != nil {
		return r.handleError(err)
	}
	return expectRows(res, r.handleError)
}

func (r *commentaireRepository) InUse(ctx context.Context, id int64) (bool, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM non_conformites WHERE commentaire_id = ?`, id).Scan(&n); err != nil {
		return false, r.handleError(err)
	}
	return n > 0, nil
}
