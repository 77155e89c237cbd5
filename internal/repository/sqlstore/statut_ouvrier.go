package sqlstore

import (
	"context"
	"errors"
	"time"

	"github.com/Olprog59/go-prodtrack/internal/domain"
	"github.com/Olprog59/go-prodtrack/internal/ports"
	"github.com/Olprog59/go-prodtrack/internal/repository/db"
)

var _ ports.StatutOuvrierRepository = (*statutOuvrierRepository)(nil)

const statutColumns = `id, matricule, nom_prenom, date_statut, statut, created_at, updated_at`

type statutOuvrierRepository struct {
	db          ports.DBTX
	handleError db.ErrorTranslator
}

// NewStatutOuvrierRepository creates attendance repository / Crée le repository des statuts
func NewStatutOuvrierRepository(database ports.DBTX, dialect db.ErrorTranslator) ports.StatutOuvrierRepository {
	return &statutOuvrierRepository{db: database, handleError: translator(dialect)}
}

func scanStatut(row scanner) (*domain.StatutOuvrier, error) {
	s := &domain.StatutOuvrier{}
	if err := row.Scan(&s.ID, &s.Matricule, &s.NomPrenom, &s.Date, &s.Statut, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	s.Date = domain.DateOnly(s.Date)
	return s, nil
}

// Upsert inserts the statut, or replaces it when the day is already recorded.
func (r *statutOuvrierRepository) Upsert(ctx context.Context, s *domain.StatutOuvrier) (*domain.StatutOuvrier, error) {
	date := domain.DateOnly(s.Date)
	ts := now()

	insert := `INSERT INTO statuts_ouvriers (matricule, nom_prenom, date_statut, statut, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, insert, s.Matricule, s.NomPrenom, date, s.Statut, ts, ts)
	if err != nil {
		err = r.handleError(err)
		if !errors.Is(err, db.ErrDuplicate) {
			return nil, err
		}
		update := `UPDATE statuts_ouvriers SET nom_prenom = ?, statut = ?, updated_at = ?
			WHERE matricule = ? AND date_statut = ?`
		if _, err := r.db.ExecContext(ctx, update, s.NomPrenom, s.Statut, ts, s.Matricule, date); err != nil {
			return nil, r.handleError(err)
		}
	}
	return r.Get(ctx, s.Matricule, date)
}

func (r *statutOuvrierRepository) Get(ctx context.Context, matricule int64, date time.Time) (*domain.StatutOuvrier, error) {
	query := `SELECT ` + statutColumns + ` FROM statuts_ouvriers WHERE matricule = ? AND date_statut = ?`
	s, err := scanStatut(r.db.QueryRowContext(ctx, query, matricule, domain.DateOnly(date)))
	if err != nil {
		return nil, r.handleError(err)
	}
	return s, nil
}

func (r *statutOuvrierRepository) ListByDate(ctx context.Context, date time.Time) ([]*domain.StatutOuvrier, error) {
	query := `SELECT ` + statutColumns + ` FROM statuts_ouvriers WHERE date_statut = ? ORDER BY nom_prenom, matricule`
	return r.list(ctx, query, domain.DateOnly(date))
}

// ListByMatricule returns a worker's statuts between from and to, both inclusive.
func (r *statutOuvrierRepository) ListByMatricule(ctx context.Context, matricule int64, from, to time.Time) ([]*domain.StatutOuvrier, error) {
	query := `SELECT ` + statutColumns + ` FROM statuts_ouvriers
		WHERE matricule = ? AND date_statut >= ? AND date_statut <= ?
		ORDER BY date_statut`
	return r.list(ctx, query, matricule, domain.DateOnly(from), domain.DateOnly(to))
}

func (r *statutOuvrierRepository) list(ctx context.Context, query string, args ...any) ([]*domain.StatutOuvrier, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, r.handleError(err)
	}
	defer rows.Close()

	list := make([]*domain.StatutOuvrier, 0)
	for rows.Next() {
		s, err := scanStatut(rows)
		if err != nil {
			return nil, r.handleError(err)
		}
		list = append(list, s)
	}
	return list, r.handleError(rows.Err())
}

func (r *statutOuvrierRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM statuts_ouvriers WHERE id = ?`, id)
	if err != nil {
		return r.handleError(err)
	}
	return expectRows(res, r.handleError)
}
