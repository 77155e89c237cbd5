package service

import (
	"context"
	"strings"

	"github.com/Olprog59/go-prodtrack/internal/config"
	"github.com/Olprog59/go-prodtrack/internal/domain"
	"github.com/Olprog59/go-prodtrack/internal/ports"
)

// RapportService stores worker daily reports / Enregistre les rapports journaliers
type RapportService struct {
	rapports ports.RapportRepository
	semaines ports.SemaineRepository
	ouvriers ports.OuvrierRepository
	conf     *config.Config
}

func NewRapportService(
	rapports ports.RapportRepository,
	semaines ports.SemaineRepository,
	ouvriers ports.OuvrierRepository,
	conf *config.Config,
) *RapportService {
	return &RapportService{rapports: rapports, semaines: semaines, ouvriers: ouvriers, conf: conf}
}

// RapportInput is a worker's report for a day on a line.
type RapportInput struct {
	Semaine   string
	Jour      string
	Ligne     string
	Matricule int64
	Phases    []domain.Phase
}

// Save creates or replaces the report of (semaine, jour, ligne, matricule).
// Crée ou remplace le rapport de (semaine, jour, ligne, matricule).
func (s *RapportService) Save(ctx context.Context, in RapportInput) (*domain.SaisieRapport, error) {
	jour, ok := domain.ParseJour(in.Jour)
	if !ok {
		return nil, invalid("jour", "unknown day %q", in.Jour)
	}
	ligne, err := required("ligne", in.Ligne)
	if err != nil {
		return nil, err
	}
	if len(in.Phases) == 0 {
		return nil, invalid("phases", "at least one phase is required")
	}
	phases := make([]domain.Phase, 0, len(in.Phases))
	for _, p := range in.Phases {
		name := strings.TrimSpace(p.Phase)
		if name == "" {
			return nil, invalid("phases", "phase name is required")
		}
		if p.Heures <= 0 {
			return nil, invalid("phases", "heures of %s must be > 0", name)
		}
		phases = append(phases, domain.Phase{Phase: name, Heures: p.Heures})
	}
	total := domain.SumHeures(phases)
	if limit := s.conf.Production.MaxHeuresJour; total > limit {
		return nil, invalid("phases", "total %.2fh exceeds the daily limit of %.2fh", total, limit)
	}

	sem, err := s.semaines.GetByNom(ctx, strings.TrimSpace(in.Semaine))
	if err != nil {
		return nil, repoError("semaine", err)
	}
	if _, err := sem.DateOf(jour); err != nil {
		return nil, invalid("jour", "%s is outside of %s", jour, sem.Nom)
	}
	ouvrier, err := s.ouvriers.GetByMatricule(ctx, in.Matricule)
	if err != nil {
		return nil, repoError("ouvrier", err)
	}

	saved, err := s.rapports.Upsert(ctx, &domain.SaisieRapport{
		Semaine:     sem.Nom,
		Jour:        jour,
		Ligne:       ligne,
		Matricule:   ouvrier.Matricule,
		NomPrenom:   ouvrier.NomPrenom,
		Phases:      phases,
		TotalHeures: total,
	})
	if err != nil {
		return nil, repoError("rapport", err)
	}
	return saved, nil
}

func (s *RapportService) Get(ctx context.Context, id int64) (*domain.SaisieRapport, error) {
	r, err := s.rapports.GetByID(ctx, id)
	if err != nil {
		return nil, repoError("rapport", err)
	}
	return r, nil
}

func (s *RapportService) List(ctx context.Context, filter domain.SelectionFilter) ([]*domain.SaisieRapport, error) {
	if filter.Jour != "" && !filter.Jour.IsValid() {
		return nil, invalid("jour", "unknown day %q", filter.Jour)
	}
	list, err := s.rapports.List(ctx, filter)
	if err != nil {
		return nil, repoError("rapport", err)
	}
	return list, nil
}

func (s *RapportService) Delete(ctx context.Context, id int64) error {
	return repoError("rapport", s.rapports.Delete(ctx, id))
}
