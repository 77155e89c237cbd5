package sqlstore

import (
	"context"

	"github.com/Olprog59/go-prodtrack/internal/domain"
	"github.com/Olprog59/go-prodtrack/internal/ports"
	"github.com/Olprog59/go-prodtrack/internal/repository/db"
)

var _ ports.SelectionRepository = (*selectionRepository)(nil)

const selectionColumns = `id, semaine, jour, ligne, reference, matricule, nom_prenom, phase, heures, created_at`

type selectionRepository struct {
	db          ports.DBTX
	handleError db.ErrorTranslator
}

// NewSelectionRepository creates planning selection repository / Crée le repository des sélections
func NewSelectionRepository(database ports.DBTX, dialect db.ErrorTranslator) ports.SelectionRepository {
	return &selectionRepository{db: database, handleError: translator(dialect)}
}

func (r *selectionRepository) WithTx(dbtx ports.DBTX) ports.SelectionRepository {
	return &selectionRepository{db: dbtx, handleError: r.handleError}
}

func scanSelection(row scanner) (*domain.PlanningSelection, error) {
	s := &domain.PlanningSelection{}
	err := row.Scan(&s.ID, &s.Semaine, &s.Jour, &s.Ligne, &s.Reference, &s.Matricule,
		&s.NomPrenom, &s.Phase, &s.Heures, &s.CreatedAt)
	return s, err
}

func (r *selectionRepository) Create(ctx context.Context, s *domain.PlanningSelection) (*domain.PlanningSelection, error) {
	query := `INSERT INTO planning_selections (semaine, jour, ligne, reference, matricule, nom_prenom, phase, heures, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query, s.Semaine, s.Jour, s.Ligne, s.Reference, s.Matricule,
		s.NomPrenom, s.Phase, s.Heures, now())
	if err != nil {
		return nil, r.handleError(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, r.handleError(err)
	}
	return r.GetByID(ctx, id)
}

func (r *selectionRepository) GetByID(ctx context.Context, id int64) (*domain.PlanningSelection, error) {
	s, err := scanSelection(r.db.QueryRowContext(ctx, `SELECT `+selectionColumns+` FROM planning_selections WHERE id = ?`, id))
	if err != nil {
		return nil, r.handleError(err)
	}
	return s, nil
}

func (r *selectionRepository) List(ctx context.Context, filter domain.SelectionFilter) ([]*domain.PlanningSelection, error) {
	w := &where{}
	w.eq("semaine", filter.Semaine)
	w.eq("jour", string(filter.Jour))
	w.eq("ligne", filter.Ligne)

	query := `SELECT ` + selectionColumns + ` FROM planning_selections` + w.String() +
		` ORDER BY ligne, reference, nom_prenom, id`
	rows, err := r.db.QueryContext(ctx, query, w.args...)
	if err != nil {
		return nil, r.handleError(err)
	}
	defer rows.Close()

	list := make([]*domain.PlanningSelection, 0)
	for rows.Next() {
		s, err := scanSelection(rows)
		if err != nil {
			return nil, r.handleError(err)
		}
		list = append(list, s)
	}
	return list, r.handleError(rows.Err())
}

func (r *selectionRepository) SumHeures(ctx context.Context, semaine string, jour domain.Jour, matricule int64) (float64, error) {
	var total float64
	query := `SELECT COALESCE(SUM(heures), 0) FROM planning_selections WHERE semaine = ? AND jour = ? AND matricule = ?`
	if err := r.db.QueryRowContext(ctx, query, semaine, jour, matricule).Scan(&total); err != nil {
		return 0, r.handleError(err)
	}
	return total, nil
}

func (r *selectionRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM planning_selections WHERE id = ?`, id)
	if err != nil {
		return r.handleError(err)
	}
	return expectRows(res, r.handleError)
}
