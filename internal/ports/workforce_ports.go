package ports

import (
	"context"
	"time"

	"github.com/Olprog59/go-prodtrack/internal/domain"
)

// OuvrierRepository manages workers / Gère les ouvriers
type OuvrierRepository interface {
	Create(ctx context.Context, o *domain.Ouvrier) (*domain.Ouvrier, error)
	GetByMatricule(ctx context.Context, matricule int64) (*domain.Ouvrier, error)
	List(ctx context.Context, filter domain.OuvrierFilter) ([]*domain.Ouvrier, error)
	Update(ctx context.Context, o *domain.Ouvrier) error
	Delete(ctx context.Context, matricule int64) error
}

// StatutOuvrierRepository manages daily attendance statuts / Gère les statuts de présence
type StatutOuvrierRepository interface {
	// Upsert inserts or replaces the statut of (matricule, date) / Insère ou remplace le statut
	Upsert(ctx context.Context, s *domain.StatutOuvrier) (*domain.StatutOuvrier, error)
	Get(ctx context.Context, matricule int64, date time.Time) (*domain.StatutOuvrier, error)
	ListByDate(ctx context.Context, date time.Time) ([]*domain.StatutOuvrier, error)
	ListByMatricule(ctx context.Context, matricule int64, from, to time.Time) ([]*domain.StatutOuvrier, error)
	Delete(ctx context.Context, id int64) error
}

// SelectionRepository manages planning selections / Gère les sélections de planning
type SelectionRepository interface {
	Create(ctx context.Context, s *domain.PlanningSelection) (*domain.PlanningSelection, error)
	GetByID(ctx context.Context, id int64) (*domain.PlanningSelection, error)
	List(ctx context.Context, filter domain.SelectionFilter) ([]*domain.PlanningSelection, error)
	// SumHeures totals a worker's selected hours for a day / Total des heures d'un ouvrier sur un jour
	SumHeures(ctx context.Context, semaine string, jour domain.Jour, matricule int64) (float64, error)
	Delete(ctx context.Context, id int64) error
	WithTx(dbtx DBTX) SelectionRepository
}

// RapportRepository manages worker daily reports / Gère les rapports journaliers
type RapportRepository interface {
	// Upsert inserts or replaces the report of (semaine, jour, ligne, matricule)
	Upsert(ctx context.Context, r *domain.SaisieRapport) (*domain.SaisieRapport, error)
	GetByID(ctx context.Context, id int64) (*domain.SaisieRapport, error)
	List(ctx context.Context, filter domain.SelectionFilter) ([]*domain.SaisieRapport, error)
	Delete(ctx context.Context, id int64) error
}
