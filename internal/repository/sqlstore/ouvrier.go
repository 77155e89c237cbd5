package sqlstore

import (
	"context"

	"github.com/Olprog59/go-prodtrack/internal/domain"
	"github.com/Olprog59/go-prodtrack/internal/ports"
	"github.com/Olprog59/go-prodtrack/internal/repository/db"
)

var _ ports.OuvrierRepository = (*ouvrierRepository)(nil)

const ouvrierColumns = `matricule, nom_prenom, ligne, poste, created_at`

type ouvrierRepository struct {
	db          ports.DBTX
	handleError db.ErrorTranslator
}

// NewOuvrierRepository creates worker repository / Crée le repository ouvrier
func NewOuvrierRepository(database ports.DBTX, dialect db.ErrorTranslator) ports.OuvrierRepository {
	return &ouvrierRepository{db: database, handleError: translator(dialect)}
}

func scanOuvrier(row scanner) (*domain.Ouvrier, error) {
	o := &domain.Ouvrier{}
	err := row.Scan(&o.Matricule, &o.NomPrenom, &o.Ligne, &o.Poste, &o.CreatedAt)
	return o, err
}

func (r *ouvrierRepository) Create(ctx context.Context, o *domain.Ouvrier) (*domain.Ouvrier, error) {
	query := `INSERT INTO ouvriers (matricule, nom_prenom, ligne, poste, created_at) VALUES (?, ?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, query, o.Matricule, o.NomPrenom, o.Ligne, o.Poste, now()); err != nil {
		return nil, r.handleError(err)
	}
	return r.GetByMatricule(ctx, o.Matricule)
}

func (r *ouvrierRepository) GetByMatricule(ctx context.Context, matricule int64) (*domain.Ouvrier, error) {
	o, err := scanOuvrier(r.db.QueryRowContext(ctx, `SELECT `+ouvrierColumns+` FROM ouvriers WHERE matricule = ?`, matricule))
	if err != nil {
		return nil, r.handleError(err)
	}
	return o, nil
}

func (r *ouvrierRepository) List(ctx context.Context, filter domain.OuvrierFilter) ([]*domain.Ouvrier, error) {
	w := &where{}
	w.eq("ligne", filter.Ligne)
	if filter.Search != "" {
		w.add("nom_prenom LIKE ?", "%"+filter.Search+"%")
	}

	query := `SELECT ` + ouvrierColumns + ` FROM ouvriers` + w.String() + ` ORDER BY nom_prenom, matricule`
	rows, err := r.db.QueryContext(ctx, query, w.args...)
	if err != nil {
		return nil, r.handleError(err)
	}
	defer rows.Close()

	list := make([]*domain.Ouvrier, 0)
	for rows.Next() {
		o, err := scanOuvrier(rows)
		if err != nil {
			return nil, r.handleError(err)
		}
		list = append(list, o)
	}
	return list, r.handleError(rows.Err())
}

func (r *ouvrierRepository) Update(ctx context.Context, o *domain.Ouvrier) error {
	query := `UPDATE ouvriers SET nom_prenom = ?, ligne = ?, poste = ? WHERE matricule = ?`
	_, err := r.db.ExecContext(ctx, query, o.NomPrenom, o.Ligne, o.Poste, o.Matricule)
	return r.handleError(err)
}

func (r *ouvrierRepository) Delete(ctx context.Context, matricule int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM ouvriers WHERE matricule = ?`, matricule)
	if err != nil {
		return r.handleError(err)
	}
	return expectRows(res, r.handleError)
}
