package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"sync"

	"github.com/Olprog59/go-prodtrack/internal/config"
	"github.com/Olprog59/go-prodtrack/internal/domain"
	"github.com/Olprog59/go-prodtrack/internal/ports"
	"github.com/Olprog59/go-prodtrack/internal/repository"
)

// SelectionService assigns workers to planification slots / Affecte les ouvriers aux créneaux planifiés
type SelectionService struct {
	db         ports.TxBeginner
	selections ports.SelectionRepository
	plans      ports.PlanificationRepository
	semaines   ports.SemaineRepository
	ouvriers   ports.OuvrierRepository
	statuts    ports.StatutOuvrierRepository
	conf       *config.Config

	// locks serializes the hours check and insert per worker.
	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func NewSelectionService(
	db ports.TxBeginner,
	selections ports.SelectionRepository,
	plans ports.PlanificationRepository,
	semaines ports.SemaineRepository,
	ouvriers ports.OuvrierRepository,
	statuts ports.StatutOuvrierRepository,
	conf *config.Config,
) *SelectionService {
	return &SelectionService{
		db:         db,
		selections: selections,
		plans:      plans,
		semaines:   semaines,
		ouvriers:   ouvriers,
		statuts:    statuts,
		conf:       conf,
		locks:      make(map[int64]*sync.Mutex),
	}
}

// ouvrierLock returns the mutex of one worker. The map is bounded by the
// plant's headcount and is never swept.
func (s *SelectionService) ouvrierLock(matricule int64) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[matricule]
	if !ok {
		l = &sync.Mutex{}
		s.locks[matricule] = l
	}
	return l
}

// SelectionInput is a worker assignment / Affectation d'un ouvrier
type SelectionInput struct {
	Semaine   string
	Jour      string
	Ligne     string
	Reference string
	Matricule int64
	Phase     string
	Heures    float64
}

// Create assigns a worker to an existing planification slot. The worker must
// be available that day and stay within the daily hours limit.
func (s *SelectionService) Create(ctx context.Context, in SelectionInput) (*domain.PlanningSelection, error) {
	jour, ok := domain.ParseJour(in.Jour)
	if !ok {
		return nil, invalid("jour", "unknown day %q", in.Jour)
	}
	if in.Heures <= 0 {
		return nil, invalid("heures", "must be > 0")
	}
	if in.Matricule <= 0 {
		return nil, invalid("matricule", "must be a positive number")
	}
	semaine := strings.TrimSpace(in.Semaine)
	ligne := strings.TrimSpace(in.Ligne)
	reference := strings.TrimSpace(in.Reference)

	if _, err := s.plans.GetBySlot(ctx, semaine, jour, ligne, reference); err != nil {
		return nil, repoError("planification", err)
	}
	sem, err := s.semaines.GetByNom(ctx, semaine)
	if err != nil {
		return nil, repoError("semaine", err)
	}
	date, err := sem.DateOf(jour)
	if err != nil {
		return nil, invalid("jour", "%s is outside of %s", jour, semaine)
	}
	ouvrier, err := s.ouvriers.GetByMatricule(ctx, in.Matricule)
	if err != nil {
		return nil, repoError("ouvrier", err)
	}

	statut, err := s.statuts.Get(ctx, in.Matricule, date)
	switch {
	case err == nil && statut.Statut.Unavailable():
		return nil, conflict("ouvrier %d is %s on %s", in.Matricule, statut.Statut, date.Format("2006-01-02"))
	case err != nil && !errors.Is(err, repository.ErrNoRecord):
		return nil, repoError("statut", err)
	}

	lock := s.ouvrierLock(in.Matricule)
	lock.Lock()
	defer lock.Unlock()

	var created *domain.PlanningSelection
	err = withTx(ctx, s.db, func(tx *sql.Tx) error {
		selections := s.selections.WithTx(tx)
		planned, err := selections.SumHeures(ctx, semaine, jour, in.Matricule)
		if err != nil {
			return repoError("selection", err)
		}
		limit := s.conf.Production.MaxHeuresJour
		if domain.Round2(planned+in.Heures) > limit {
			return conflict("ouvrier %d would work %.2fh on %s, limit is %.2fh", in.Matricule, planned+in.Heures, jour, limit)
		}

		created, err = selections.Create(ctx, &domain.PlanningSelection{
			Semaine:   semaine,
			Jour:      jour,
			Ligne:     ligne,
			Reference: reference,
			Matricule: ouvrier.Matricule,
			NomPrenom: ouvrier.NomPrenom,
			Phase:     strings.TrimSpace(in.Phase),
			Heures:    in.Heures,
		})
		if errors.Is(err, repository.ErrDuplicate) {
			return conflict("ouvrier %d is already selected for this slot", in.Matricule)
		}
		return repoError("selection", err)
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *SelectionService) List(ctx context.Context, filter domain.SelectionFilter) ([]*domain.PlanningSelection, error) {
	if filter.Jour != "" && !filter.Jour.IsValid() {
		return nil, invalid("jour", "unknown day %q", filter.Jour)
	}
	list, err := s.selections.List(ctx, filter)
	if err != nil {
		return nil, repoError("selection", err)
	}
	return list, nil
}

func (s *SelectionService) Delete(ctx context.Context, id int64) error {
	return repoError("selection", s.selections.Delete(ctx, id))
}
