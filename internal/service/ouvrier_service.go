package service

import (
	"context"
	"strings"
	"time"

	"github.com/Olprog59/go-prodtrack/internal/domain"
	"github.com/Olprog59/go-prodtrack/internal/ports"
)

// OuvrierService manages workers and their daily statuts / Gère les ouvriers et leurs statuts journaliers
type OuvrierService struct {
	ouvriers ports.OuvrierRepository
	statuts  ports.StatutOuvrierRepository
}

func NewOuvrierService(ouvriers ports.OuvrierRepository, statuts ports.StatutOuvrierRepository) *OuvrierService {
	return &OuvrierService{ouvriers: ouvriers, statuts: statuts}
}

// OuvrierInput holds worker fields / Champs d'un ouvrier
type OuvrierInput struct {
	Matricule int64
	NomPrenom string
	Ligne     string
	Poste     string
}

func buildOuvrier(in OuvrierInput) (*domain.Ouvrier, error) {
	if in.Matricule <= 0 {
		return nil, invalid("matricule", "must be a positive number")
	}
	nom, err := required("nomPrenom", in.NomPrenom)
	if err != nil {
		return nil, err
	}
	return &domain.Ouvrier{
		Matricule: in.Matricule,
		NomPrenom: nom,
		Ligne:     strings.TrimSpace(in.Ligne),
		Poste:     strings.TrimSpace(in.Poste),
	}, nil
}

func (s *OuvrierService) Create(ctx context.Context, in OuvrierInput) (*domain.Ouvrier, error) {
	o, err := buildOuvrier(in)
	if err != nil {
		return nil, err
	}
	created, err := s.ouvriers.Create(ctx, o)
	if err != nil {
		return nil, repoError("ouvrier", err)
	}
	return created, nil
}

func (s *OuvrierService) Get(ctx context.Context, matricule int64) (*domain.Ouvrier, error) {
	o, err := s.ouvriers.GetByMatricule(ctx, matricule)
	if err != nil {
		return nil, repoError("ouvrier", err)
	}
	return o, nil
}

// List filters workers by line and name substring / Filtre par ligne et nom
func (s *OuvrierService) List(ctx context.Context, filter domain.OuvrierFilter) ([]*domain.Ouvrier, error) {
	filter.Ligne = strings.TrimSpace(filter.Ligne)
	filter.Search = strings.TrimSpace(filter.Search)
	list, err := s.ouvriers.List(ctx, filter)
	if err != nil {
		return nil, repoError("ouvrier", err)
	}
	return list, nil
}

// Update replaces the worker's fields; the matricule is the key.
func (s *OuvrierService) Update(ctx context.Context, matricule int64, in OuvrierInput) (*domain.Ouvrier, error) {
	in.Matricule = matricule
	o, err := buildOuvrier(in)
	if err != nil {
		return nil, err
	}
	if _, err := s.Get(ctx, matricule); err != nil {
		return nil, err
	}
	if err := s.ouvriers.Update(ctx, o); err != nil {
		return nil, repoError("ouvrier", err)
	}
	return s.Get(ctx, matricule)
}

// Delete removes a worker; statuts, selections and reports cascade.
func (s *OuvrierService) Delete(ctx context.Context, matricule int64) error {
	return repoError("ouvrier", s.ouvriers.Delete(ctx, matricule))
}

// SetStatut records a worker's statut for a date, replacing any previous one.
// Enregistre le statut d'un ouvrier pour une date, en remplaçant le précédent.
func (s *OuvrierService) SetStatut(ctx context.Context, matricule int64, date time.Time, code domain.StatutCode) (*domain.StatutOuvrier, error) {
	code = domain.StatutCode(strings.ToUpper(strings.TrimSpace(string(code))))
	if !code.IsValid() {
		return nil, invalid("statut", "must be one of P, AB, C, M, S")
	}
	if date.IsZero() {
		return nil, invalid("date", "is required")
	}
	o, err := s.Get(ctx, matricule)
	if err != nil {
		return nil, err
	}

	st, err := s.statuts.Upsert(ctx, &domain.StatutOuvrier{
		Matricule: o.Matricule,
		NomPrenom: o.NomPrenom,
		Date:      domain.DateOnly(date),
		Statut:    code,
	})
	if err != nil {
		return nil, repoError("statut", err)
	}
	return st, nil
}

func (s *OuvrierService) StatutsByDate(ctx context.Context, date time.Time) ([]*domain.StatutOuvrier, error) {
	list, err := s.statuts.ListByDate(ctx, domain.DateOnly(date))
	if err != nil {
		return nil, repoError("statut", err)
	}
	return list, nil
}

// StatutsByMatricule lists a worker's statuts between from and to inclusive.
func (s *OuvrierService) StatutsByMatricule(ctx context.Context, matricule int64, from, to time.Time) ([]*domain.StatutOuvrier, error) {
	from, to = domain.DateOnly(from), domain.DateOnly(to)
	if to.Before(from) {
		return nil, invalid("to", "must not be before from")
	}
	if _, err := s.Get(ctx, matricule); err != nil {
		return nil, err
	}
	list, err := s.statuts.ListByMatricule(ctx, matricule, from, to)
	if err != nil {
		return nil, repoError("statut", err)
	}
	return list, nil
}

// Summary counts statuts of a date and the absenteeism rate.
// Compte les statuts d'une date et le taux d'absentéisme.
func (s *OuvrierService) Summary(ctx context.Context, date time.Time) (domain.AttendanceSummary, error) {
	list, err := s.StatutsByDate(ctx, date)
	if err != nil {
		return domain.AttendanceSummary{}, err
	}
	return domain.SummarizeAttendance(date, list), nil
}

func (s *OuvrierService) DeleteStatut(ctx context.Context, id int64) error {
	return repoError("statut", s.statuts.Delete(ctx, id))
}
