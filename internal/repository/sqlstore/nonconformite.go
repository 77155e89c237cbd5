package sqlstore

import (
	"context"
	"database/sql"

	"github.com/Olprog59/go-prodtrack/internal/domain"
	"github.com/Olprog59/go-prodtrack/internal/ports"
	"github.com/Olprog59/go-prodtrack/internal/repository/db"
)

var _ ports.NonConformiteRepository = (*nonConformiteRepository)(nil)

const nonConformiteColumns = `id, planification_id, semaine, jour, ligne, reference, delta_prod,
	matiere_premiere, absence, rendement, methode, maintenance, qualite, environnement, total,
	reference_matiere_premiere, reference_qualite, commentaire_id, commentaire, statut,
	created_at, updated_at`

type nonConformiteRepository struct {
	db          ports.DBTX
	handleError db.ErrorTranslator
}

// NewNonConformiteRepository creates non-conformity repository / Crée le repository non-conformité
func NewNonConformiteRepository(database ports.DBTX, dialect db.ErrorTranslator) ports.NonConformiteRepository {
	return &nonConformiteRepository{db: database, handleError: translator(dialect)}
}

func (r *nonConformiteRepository) WithTx(dbtx ports.DBTX) ports.NonConformiteRepository {
	return &nonConformiteRepository{db: dbtx, handleError: r.handleError}
}

func scanNonConformite(row scanner) (*domain.NonConformite, error) {
	var (
		nc            domain.NonConformite
		commentaireID sql.NullInt64
		commentaire   sql.NullString
	)
	err := row.Scan(
		&nc.ID,
		&nc.PlanificationID,
		&nc.Semaine,
		&nc.Jour,
		&nc.Ligne,
		&nc.Reference,
		&nc.DeltaProd,
		&nc.Causes.MatierePremiere,
		&nc.Causes.Absence,
		&nc.Causes.Rendement,
		&nc.Causes.Methode,
		&nc.Causes.Maintenance,
		&nc.Causes.Qualite,
		&nc.Causes.Environnement,
		&nc.Total,
		&nc.ReferenceMatierePremiere,
		&nc.ReferenceQualite,
		&commentaireID,
		&commentaire,
		&nc.Statut,
		&nc.CreatedAt,
		&nc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if commentaireID.Valid {
		nc.CommentaireID = &commentaireID.Int64
	}
	nc.Commentaire = commentaire.String
	return &nc, nil
}

func nullableID(id *int64) sql.NullInt64 {
	if id == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *id, Valid: true}
}

func (r *nonConformiteRepository) Create(ctx context.Context, nc *domain.NonConformite) (*domain.NonConformite, error) {
	ts := now()
	c := nc.Causes
	query := `INSERT INTO non_conformites (planification_id, semaine, jour, ligne, reference, delta_prod,
		matiere_premiere, absence, rendement, methode, maintenance, qualite, environnement, total,
		reference_matiere_premiere, reference_qualite, commentaire_id, commentaire, statut,
		created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query,
		nc.PlanificationID, nc.Semaine, nc.Jour, nc.Ligne, nc.Reference, nc.DeltaProd,
		c.MatierePremiere, c.Absence, c.Rendement, c.Methode, c.Maintenance, c.Qualite, c.Environnement, c.Total(),
		nc.ReferenceMatierePremiere, nc.ReferenceQualite, nullableID(nc.CommentaireID), nc.Commentaire, nc.Statut,
		ts, ts,
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

func (r *nonConformiteRepository) GetByID(ctx context.Context, id int64) (*domain.NonConformite, error) {
	query := `SELECT ` + nonConformiteColumns + ` FROM non_conformites WHERE id = ?`
	nc, err := scanNonConformite(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, r.handleError(err)
	}
	return nc, nil
}

func (r *nonConformiteRepository) GetByPlanification(ctx context.Context, planificationID int64) (*domain.NonConformite, error) {
	query := `SELECT ` + nonConformiteColumns + ` FROM non_conformites WHERE planification_id = ?`
	nc, err := scanNonConformite(r.db.QueryRowContext(ctx, query, planificationID))
	if err != nil {
		return nil, r.handleError(err)
	}
	return nc, nil
}

func (r *nonConformiteRepository) List(ctx context.Context, filter domain.NonConfFilter) ([]*domain.NonConformite, error) {
	w := &where{}
	w.eq("semaine", filter.Semaine)
	w.eq("ligne", filter.Ligne)
	w.eq("statut", string(filter.Statut))

	query := `SELECT ` + nonConformiteColumns + ` FROM non_conformites` + w.String() +
		` ORDER BY semaine, ligne, reference, id`
	rows, err := r.db.QueryContext(ctx, query, w.args...)
	if err != nil {
		return nil, r.handleError(err)
	}
	defer rows.Close()

	list := make([]*domain.NonConformite, 0)
	for rows.Next() {
		nc, err := scanNonConformite(rows)
		if err != nil {
			return nil, r.handleError(err)
		}
		list = append(list, nc)
	}
	return list, r.handleError(rows.Err())
}

func (r *nonConformiteRepository) UpdateDelta(ctx context.Context, id int64, deltaProd int64, statut domain.NonConfStatut) error {
	query := `UPDATE non_conformites SET delta_prod = ?, statut = ?, updated_at = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, deltaProd, statut, now(), id)
	return r.handleError(err)
}

func (r *nonConformiteRepository) UpdateCauses(ctx context.Context, nc *domain.NonConformite) error {
	c := nc.Causes
	query := `UPDATE non_conformites SET
		matiere_premiere = ?, absence = ?, rendement = ?, methode = ?, maintenance = ?,
		qualite = ?, environnement = ?, total = ?, reference_matiere_premiere = ?,
		reference_qualite = ?, commentaire_id = ?, commentaire = ?, statut = ?, updated_at = ?
		WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query,
		c.MatierePremiere, c.Absence, c.Rendement, c.Methode, c.Maintenance,
		c.Qualite, c.Environnement, c.Total(), nc.ReferenceMatierePremiere,
		nc.ReferenceQualite, nullableID(nc.CommentaireID), nc.Commentaire, nc.Statut, now(),
		nc.ID,
	)
	return r.handleError(err)
}

func (r *nonConformiteRepository) Delete(ctx context.Context, id int64) error {
	// History rows go first, sqlite only cascades with foreign_keys enabled.
	if _, err := r.db.ExecContext(ctx, `DELETE FROM saisies_non_conf WHERE non_conformite_id = ?`, id); err != nil {
		return r.handleError(err)
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM non_conformites WHERE id = ?`, id)
	if err != nil {
		return r.handleError(err)
	}
	return expectRows(res, r.handleError)
}

func (r *nonConformiteRepository) AddSaisie(ctx context.Context, s *domain.SaisieNonConf) (*domain.SaisieNonConf, error) {
	c := s.Causes
	ts := now()
	query := `INSERT INTO saisies_non_conf (non_conformite_id, user_id, matiere_premiere, absence,
		rendement, methode, maintenance, qualite, environnement, total, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query,
		s.NonConformiteID, s.UserID, c.MatierePremiere, c.Absence,
		c.Rendement, c.Methode, c.Maintenance, c.Qualite, c.Environnement, c.Total(), ts,
	)
	if err != nil {
		return nil, r.handleError(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, r.handleError(err)
	}
	saved := *s
	saved.ID = id
	saved.Total = c.Total()
	saved.CreatedAt = ts
	return &saved, nil
}

func (r *nonConformiteRepository) ListSaisies(ctx context.Context, nonConformiteID int64) ([]*domain.SaisieNonConf, error) {
	query := `SELECT id, non_conformite_id, user_id, matiere_premiere, absence, rendement, methode,
		maintenance, qualite, environnement, total, created_at
		FROM saisies_non_conf WHERE non_conformite_id = ? ORDER BY created_at, id`
	rows, err := r.db.QueryContext(ctx, query, nonConformiteID)
	if err != nil {
		return nil, r.handleError(err)
	}
	defer rows.Close()

	list := make([]*domain.SaisieNonConf, 0)
	for rows.Next() {
		s := &domain.SaisieNonConf{}
		if err := rows.Scan(
			&s.ID, &s.NonConformiteID, &s.UserID,
			&s.Causes.MatierePremiere, &s.Causes.Absence, &s.Causes.Rendement, &s.Causes.Methode,
			&s.Causes.Maintenance, &s.Causes.Qualite, &s.Causes.Environnement, &s.Total, &s.CreatedAt,
		); err != nil {
			return nil, r.handleError(err)
		}
		list = append(list, s)
	}
	return list, r.handleError(rows.Err())
}
