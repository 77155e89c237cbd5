package sqlstore

import (
	"context"

	"github.com/Olprog59/go-prodtrack/internal/domain"
	"github.com/Olprog59/go-prodtrack/internal/ports"
	"github.com/Olprog59/go-prodtrack/internal/repository/db"
)

var _ ports.PlanificationRepository = (*planificationRepository)(nil)

const planificationColumns = `id, semaine, jour, ligne, reference, of_number, qte_planifiee,
	qte_modifiee, dec_production, dec_magasin, declared, delta_prod, pcs_prod,
	nb_operateurs, nb_heures_planifiees, emballage, created_at, updated_at`

type planificationRepository struct {
	db          ports.DBTX
	handleError db.ErrorTranslator
}

// NewPlanificationRepository creates planification repository / Crée le repository planification
func NewPlanificationRepository(database ports.DBTX, dialect db.ErrorTranslator) ports.PlanificationRepository {
	return &planificationRepository{db: database, handleError: translator(dialect)}
}

func (r *planificationRepository) WithTx(dbtx ports.DBTX) ports.PlanificationRepository {
	return &planificationRepository{db: dbtx, handleError: r.handleError}
}

func scanPlanification(row scanner) (*domain.Planification, error) {
	p := &domain.Planification{}
	err := row.Scan(
		&p.ID,
		&p.Semaine,
		&p.Jour,
		&p.Ligne,
		&p.Reference,
		&p.OF,
		&p.QtePlanifiee,
		&p.QteModifiee,
		&p.DecProduction,
		&p.DecMagasin,
		&p.Declared,
		&p.DeltaProd,
		&p.PcsProd,
		&p.NbOperateurs,
		&p.NbHeuresPlanifiees,
		&p.Emballage,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	return p, err
}

func (r *planificationRepository) Create(ctx context.Context, p *domain.Planification) (*domain.Planification, error) {
	ts := now()
	query := `INSERT INTO planifications (semaine, jour, ligne, reference, of_number, qte_planifiee,
		qte_modifiee, dec_production, dec_magasin, declared, delta_prod, pcs_prod,
		nb_operateurs, nb_heures_planifiees, emballage, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query,
		p.Semaine, p.Jour, p.Ligne, p.Reference, p.OF, p.QtePlanifiee,
		p.QteModifiee, p.DecProduction, p.DecMagasin, p.Declared, p.DeltaProd, p.PcsProd,
		p.NbOperateurs, p.NbHeuresPlanifiees, p.Emballage, ts, ts,
	)
	if err != nil {
		return nil, r.handleError(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, r.handleError(err)
	}
	return r.GetByID(ctx, id)
}

func (r *planificationRepository) GetByID(ctx context.Context, id int64) (*domain.Planification, error) {
	query := `SELECT ` + planificationColumns + ` FROM planifications WHERE id = ?`
	p, err := scanPlanification(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, r.handleError(err)
	}
	return p, nil
}

func (r *planificationRepository) GetBySlot(ctx context.Context, semaine string, jour domain.Jour, ligne, reference string) (*domain.Planification, error) {
	query := `SELECT ` + planificationColumns + ` FROM planifications
		WHERE semaine = ? AND jour = ? AND ligne = ? AND reference = ?`
	p, err := scanPlanification(r.db.QueryRowContext(ctx, query, semaine, jour, ligne, reference))
	if err != nil {
		return nil, r.handleError(err)
	}
	return p, nil
}

func (r *planificationRepository) List(ctx context.Context, filter domain.PlanificationFilter) ([]*domain.Planification, error) {
	w := &where{}
	w.eq("semaine", filter.Semaine)
	w.eq("jour", string(filter.Jour))
	w.eq("ligne", filter.Ligne)
	w.eq("reference", filter.Reference)

	query := `SELECT ` + planificationColumns + ` FROM planifications` + w.String() +
		` ORDER BY semaine, ligne, reference, id`
	rows, err := r.db.QueryContext(ctx, query, w.args...)
	if err != nil {
		return nil, r.handleError(err)
	}
	defer rows.Close()

	list := make([]*domain.Planification, 0)
	for rows.Next() {
		p, err := scanPlanification(rows)
		if err != nil {
			return nil, r.handleError(err)
		}
		list = append(list, p)
	}
	return list, r.handleError(rows.Err())
}

func (r *planificationRepository) Update(ctx context.Context, p *domain.Planification) error {
	query := `UPDATE planifications SET
		of_number = ?, qte_planifiee = ?, qte_modifiee = ?, dec_production = ?, dec_magasin = ?,
		declared = ?, delta_prod = ?, pcs_prod = ?, nb_operateurs = ?, nb_heures_planifiees = ?,
		emballage = ?, updated_at = ?
		WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query,
		p.OF, p.QtePlanifiee, p.QteModifiee, p.DecProduction, p.DecMagasin,
		p.Declared, p.DeltaProd, p.PcsProd, p.NbOperateurs, p.NbHeuresPlanifiees,
		p.Emballage, now(), p.ID,
	)
	return r.handleError(err)
}

func (r *planificationRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM planifications WHERE id = ?`, id)
	if err != nil {
		return r.handleError(err)
	}
	return expectRows(res, r.handleError)
}
