package service

import (
	"context"
	"errors"
	"time"

	"github.com/Olprog59/go-prodtrack/internal/domain"
	"github.com/Olprog59/go-prodtrack/internal/ports"
	"github.com/Olprog59/go-prodtrack/internal/repository"
)

// SemaineService manages production weeks / Gère les semaines de production
type SemaineService struct {
	repo       ports.SemaineRepository
	plans      ports.PlanificationRepository
	selections ports.SelectionRepository
	rapports   ports.RapportRepository
}

func NewSemaineService(
	repo ports.SemaineRepository,
	plans ports.PlanificationRepository,
	selections ports.SelectionRepository,
	rapports ports.RapportRepository,
) *SemaineService {
	return &SemaineService{repo: repo, plans: plans, selections: selections, rapports: rapports}
}

func validateRange(debut, fin time.Time) error {
	if debut.IsZero() {
		return invalid("dateDebut", "is required")
	}
	if fin.IsZero() {
		return invalid("dateFin", "is required")
	}
	s := domain.Semaine{DateDebut: debut, DateFin: fin}
	if !s.ValidRange() {
		return invalid("dateFin", "must be between dateDebut and dateDebut + 6 days")
	}
	return nil
}

// Create registers a week / Enregistre une semaine
func (s *SemaineService) Create(ctx context.Context, nom string, debut, fin time.Time) (*domain.Semaine, error) {
	n, err := required("nom", nom)
	if err != nil {
		return nil, err
	}
	if err := validateRange(debut, fin); err != nil {
		return nil, err
	}
	created, err := s.repo.Create(ctx, &domain.Semaine{
		Nom:       n,
		DateDebut: domain.DateOnly(debut),
		DateFin:   domain.DateOnly(fin),
	})
	if err != nil {
		return nil, repoError("semaine", err)
	}
	return created, nil
}

func (s *SemaineService) Get(ctx context.Context, id int64) (*domain.Semaine, error) {
	sem, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, repoError("semaine", err)
	}
	return sem, nil
}

func (s *SemaineService) GetByNom(ctx context.Context, nom string) (*domain.Semaine, error) {
	sem, err := s.repo.GetByNom(ctx, nom)
	if err != nil {
		return nil, repoError("semaine", err)
	}
	return sem, nil
}

// Current returns the week containing date / Retourne la semaine contenant la date
func (s *SemaineService) Current(ctx context.Context, date time.Time) (*domain.Semaine, error) {
	sem, err := s.repo.GetContaining(ctx, domain.DateOnly(date))
	if err != nil {
		return nil, repoError("semaine", err)
	}
	return sem, nil
}

func (s *SemaineService) List(ctx context.Context) ([]*domain.Semaine, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, repoError("semaine", err)
	}
	return list, nil
}

// Update moves the week's dates. The name is the key planifications refer to
// and cannot change. A range that would leave a stored jour outside the week
// is refused.
func (s *SemaineService) Update(ctx context.Context, id int64, debut, fin time.Time) (*domain.Semaine, error) {
	if err := validateRange(debut, fin); err != nil {
		return nil, err
	}
	sem, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, repoError("semaine", err)
	}
	moved := *sem
	moved.DateDebut = domain.DateOnly(debut)
	moved.DateFin = domain.DateOnly(fin)

	jours, err := s.usedJours(ctx, sem.Nom)
	if err != nil {
		return nil, err
	}
	for _, j := range jours {
		if _, err := moved.DateOf(j); err != nil {
			return nil, conflict("%s has records on %s, outside of the new range", sem.Nom, j)
		}
	}

	sem = &moved
	if err := s.repo.Update(ctx, sem); err != nil {
		return nil, repoError("semaine", err)
	}
	return sem, nil
}

// usedJours lists the days of semaine referenced by planifications,
// selections or rapports.
func (s *SemaineService) usedJours(ctx context.Context, semaine string) ([]domain.Jour, error) {
	seen := make(map[domain.Jour]bool)

	plans, err := s.plans.List(ctx, domain.PlanificationFilter{Semaine: semaine})
	if err != nil {
		return nil, repoError("planification", err)
	}
	for _, p := range plans {
		seen[p.Jour] = true
	}

	selections, err := s.selections.List(ctx, domain.SelectionFilter{Semaine: semaine})
	if err != nil {
		return nil, repoError("selection", err)
	}
	for _, sel := range selections {
		seen[sel.Jour] = true
	}

	rapports, err := s.rapports.List(ctx, domain.SelectionFilter{Semaine: semaine})
	if err != nil {
		return nil, repoError("rapport", err)
	}
	for _, r := range rapports {
		seen[r.Jour] = true
	}

	jours := make([]domain.Jour, 0, len(seen))
	for _, j := range domain.Jours() {
		if seen[j] {
			jours = append(jours, j)
		}
	}
	return jours, nil
}

// Delete removes a week without planifications / Supprime une semaine sans planification
func (s *SemaineService) Delete(ctx context.Context, id int64) error {
	err := s.repo.Delete(ctx, id)
	if errors.Is(err, repository.ErrForeignKeyViolation) {
		return conflict("semaine still has planifications")
	}
	return repoError("semaine", err)
}
