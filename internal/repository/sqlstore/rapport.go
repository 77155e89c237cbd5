package sqlstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Olprog59/go-prodtrack/internal/domain"
	"github.com/Olprog59/go-prodtrack/internal/ports"
	"github.com/Olprog59/go-prodtrack/internal/repository/db"
)

var _ ports.RapportRepository = (*rapportRepository)(nil)

const rapportColumns = `id, semaine, jour, ligne, matricule, nom_prenom, phases, total_heures, created_at, updated_at`

type rapportRepository struct {
	db          ports.DBTX
	handleError db.ErrorTranslator
}

// NewRapportRepository creates daily report repository / Crée le repository des rapports
func NewRapportRepository(database ports.DBTX, dialect db.ErrorTranslator) ports.RapportRepository {
	return &rapportRepository{db: database, handleError: translator(dialect)}
}

func scanRapport(row scanner) (*domain.SaisieRapport, error) {
	var (
		r      domain.SaisieRapport
		phases string
	)
	if err := row.Scan(&r.ID, &r.Semaine, &r.Jour, &r.Ligne, &r.Matricule, &r.NomPrenom,
		&phases, &r.TotalHeures, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(phases), &r.Phases); err != nil {
		return nil, fmt.Errorf("decode phases of rapport %d: %w", r.ID, err)
	}
	return &r, nil
}

// Upsert inserts the report, or replaces phases and total of the existing one.
func (r *rapportRepository) Upsert(ctx context.Context, rp *domain.SaisieRapport) (*domain.SaisieRapport, error) {
	phases, err := json.Marshal(rp.Phases)
	if err != nil {
		return nil, fmt.Errorf("encode phases: %w", err)
	}
	ts := now()

	insert := `INSERT INTO saisies_rapport (semaine, jour, ligne, matricule, nom_prenom, phases, total_heures, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, insert, rp.Semaine, rp.Jour, rp.Ligne, rp.Matricule, rp.NomPrenom,
		string(phases), rp.TotalHeures, ts, ts)
	if err != nil {
		err = r.handleError(err)
		if !errors.Is(err, db.ErrDuplicate) {
			return nil, err
		}
		update := `UPDATE saisies_rapport SET nom_prenom = ?, phases = ?, total_heures = ?, updated_at = ?
			WHERE semaine = ? AND jour = ? AND ligne = ? AND matricule = ?`
		if _, err := r.db.ExecContext(ctx, update, rp.NomPrenom, string(phases), rp.TotalHeures, ts,
			rp.Semaine, rp.Jour, rp.Ligne, rp.Matricule); err != nil {
			return nil, r.handleError(err)
		}
	}

	query := `SELECT ` + rapportColumns + ` FROM saisies_rapport
		WHERE semaine = ? AND jour = ? AND ligne = ? AND matricule = ?`
	saved, err := scanRapport(r.db.QueryRowContext(ctx, query, rp.Semaine, rp.Jour, rp.Ligne, rp.Matricule))
	if err != nil {
		return nil, r.handleError(err)
	}
	return saved, nil
}

func (r *rapportRepository) GetByID(ctx context.Context, id int64) (*domain.SaisieRapport, error) {
	rp, err := scanRapport(r.db.QueryRowContext(ctx, `SELECT `+rapportColumns+` FROM saisies_rapport WHERE id = ?`, id))
	if err != nil {
		return nil, r.handleError(err)
	}
	return rp, nil
}

func (r *rapportRepository) List(ctx context.Context, filter domain.SelectionFilter) ([]*domain.SaisieRapport, error) {
	w := &where{}
	w.eq("semaine", filter.Semaine)
	w.eq("jour", string(filter.Jour))
	w.eq("ligne", filter.Ligne)

	query := `SELECT ` + rapportColumns + ` FROM saisies_rapport` + w.String() + ` ORDER BY ligne, nom_prenom, id`
	rows, err := r.db.QueryContext(ctx, query, w.args...)
	if err != nil {
		return nil, r.handleError(err)
	}
	defer rows.Close()

	list := make([]*domain.SaisieRapport, 0)
	for rows.Next() {
		rp, err := scanRapport(rows)
		if err != nil {
			return nil, r.handleError(err)
		}
		list = append(list, rp)
	}
	return list, r.handleError(rows.Err())
}

func (r *rapportRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM saisies_rapport WHERE id = ?`, id)
	if err != nil {
		return r.handleError(err)
	}
	return expectRows(res, r.handleError)
}
