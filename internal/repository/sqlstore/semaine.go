package sqlstore

import (
	"context"
	"time"

	"github.com/Olprog59/go-prodtrack/internal/domain"
	"github.com/Olprog59/go-prodtrack/internal/ports"
	"github.com/Olprog59/go-prodtrack/internal/repository/db"
)

var _ ports.SemaineRepository = (*semaineRepository)(nil)

const semaineColumns = `id, nom, date_debut, date_fin, created_at`

type semaineRepository struct {
	db          ports.DBTX
	handleError db.ErrorTranslator
}

// NewSemaineRepository creates week repository / Crée le repository semaine
func NewSemaineRepository(database ports.DBTX, dialect db.ErrorTranslator) ports.SemaineRepository {
	return &semaineRepository{db: database, handleError: translator(dialect)}
}

func scanSemaine(row scanner) (*domain.Semaine, error) {
	s := &domain.Semaine{}
	if err := row.Scan(&s.ID, &s.Nom, &s.DateDebut, &s.DateFin, &s.CreatedAt); err != nil {
		return nil, err
	}
	s.DateDebut = domain.DateOnly(s.DateDebut)
	s.DateFin = domain.DateOnly(s.DateFin)
	return s, nil
}

func (r *semaineRepository) Create(ctx context.Context, s *domain.Semaine) (*domain.Semaine, error) {
	query := `INSERT INTO semaines (nom, date_debut, date_fin, created_at) VALUES (?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query, s.Nom, domain.DateOnly(s.DateDebut), domain.DateOnly(s.DateFin), now())
	if err != nil {
		return nil, r.handleError(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, r.handleError(err)
	}
	return r.GetByID(ctx, id)
}

func (r *semaineRepository) GetByID(ctx context.Context, id int64) (*domain.Semaine, error) {
	s, err := scanSemaine(r.db.QueryRowContext(ctx, `SELECT `+semaineColumns+` FROM semaines WHERE id = ?`, id))
	if err != nil {
		return nil, r.handleError(err)
	}
	return s, nil
}

func (r *semaineRepository) GetByNom(ctx context.Context, nom string) (*domain.Semaine, error) {
	s, err := scanSemaine(r.db.QueryRowContext(ctx, `SELECT `+semaineColumns+` FROM semaines WHERE nom = ?`, nom))
	if err != nil {
		return nil, r.handleError(err)
	}
	return s, nil
}

// GetContaining returns the latest week whose range covers date.
func (r *semaineRepository) GetContaining(ctx context.Context, date time.Time) (*domain.Semaine, error) {
	d := domain.DateOnly(date)
	query := `SELECT ` + semaineColumns + ` FROM semaines
		WHERE date_debut <= ? AND date_fin >= ?
		ORDER BY date_debut DESC LIMIT 1`
	s, err := scanSemaine(r.db.QueryRowContext(ctx, query, d, d))
	if err != nil {
		return nil, r.handleError(err)
	}
	return s, nil
}

func (r *semaineRepository) List(ctx context.Context) ([]*domain.Semaine, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+semaineColumns+` FROM semaines ORDER BY date_debut, id`)
	if err != nil {
		return nil, r.handleError(err)
	}
	defer rows.Close()

	semaines := make([]*domain.Semaine, 0)
	for rows.Next() {
		s, err := scanSemaine(rows)
		if err != nil {
			return nil, r.handleError(err)
		}
		semaines = append(semaines, s)
	}
	return semaines, r.handleError(rows.Err())
}

// Update changes the dates only, the name is referenced by planifications.
func (r *semaineRepository) Update(ctx context.Context, s *domain.Semaine) error {
	query := `UPDATE semaines SET date_debut = ?, date_fin = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, domain.DateOnly(s.DateDebut), domain.DateOnly(s.DateFin), s.ID)
	return r.handleError(err)
}

func (r *semaineRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM semaines WHERE id = ?`, id)
	if err != nil {
		return r.handleError(err)
	}
	return expectRows(res, r.handleError)
}
