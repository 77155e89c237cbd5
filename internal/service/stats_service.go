package service

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/Olprog59/go-prodtrack/internal/domain"
	"github.com/Olprog59/go-prodtrack/internal/export"
	"github.com/Olprog59/go-prodtrack/internal/ports"
)

// StatsService builds production reports in memory over repository results.
// Construit les rapports de production en mémoire à partir des repositories.
type StatsService struct {
	semaines ports.SemaineRepository
	plans    ports.PlanificationRepository
	ncs      ports.NonConformiteRepository
	statuts  ports.StatutOuvrierRepository
	metrics  ProductionMetricsRecorder
}

func NewStatsService(
	semaines ports.SemaineRepository,
	plans ports.PlanificationRepository,
	ncs ports.NonConformiteRepository,
	statuts ports.StatutOuvrierRepository,
	metrics ProductionMetricsRecorder,
) *StatsService {
	return &StatsService{
		semaines: semaines,
		plans:    plans,
		ncs:      ncs,
		statuts:  statuts,
		metrics:  metrics,
	}
}

func (s *StatsService) requireSemaine(ctx context.Context, nom string) (*domain.Semaine, error) {
	n, err := required("semaine", nom)
	if err != nil {
		return nil, err
	}
	sem, err := s.semaines.GetByNom(ctx, n)
	if err != nil {
		return nil, repoError("semaine", err)
	}
	return sem, nil
}

// Semaine reports production per line for a week / Production par ligne d'une semaine
func (s *StatsService) Semaine(ctx context.Context, semaine string) (domain.SemaineStats, error) {
	sem, err := s.requireSemaine(ctx, semaine)
	if err != nil {
		return domain.SemaineStats{}, err
	}
	plans, err := s.plans.List(ctx, domain.PlanificationFilter{Semaine: sem.Nom})
	if err != nil {
		return domain.SemaineStats{}, repoError("planification", err)
	}
	return buildSemaineStats(sem.Nom, plans), nil
}

func buildSemaineStats(semaine string, plans []*domain.Planification) domain.SemaineStats {
	stats := domain.SemaineStats{Semaine: semaine, Lignes: []domain.LigneStats{}}
	index := make(map[string]int)
	for _, p := range plans {
		i, ok := index[p.Ligne]
		if !ok {
			i = len(stats.Lignes)
			index[p.Ligne] = i
			stats.Lignes = append(stats.Lignes, domain.LigneStats{Ligne: p.Ligne})
		}
		stats.Lignes[i].Add(p)
		stats.Total.Add(p)
	}
	for i := range stats.Lignes {
		stats.Lignes[i].Finish()
	}
	stats.Total.Finish()
	sort.Slice(stats.Lignes, func(a, b int) bool { return stats.Lignes[a].Ligne < stats.Lignes[b].Ligne })
	return stats
}

// Causes breaks the week's non-conformities down by 7M category, optionally
// for a single line.
func (s *StatsService) Causes(ctx context.Context, semaine, ligne string) (domain.CauseStats, error) {
	sem, err := s.requireSemaine(ctx, semaine)
	if err != nil {
		return domain.CauseStats{}, err
	}
	ncs, err := s.ncs.List(ctx, domain.NonConfFilter{Semaine: sem.Nom, Ligne: ligne})
	if err != nil {
		return domain.CauseStats{}, repoError("non-conformity", err)
	}
	stats := domain.BuildCauseStats(ncs)
	stats.Semaine = sem.Nom
	stats.Ligne = ligne
	return stats, nil
}

// References reports PCS per reference for a week / PCS par référence d'une semaine
func (s *StatsService) References(ctx context.Context, semaine, ligne string) ([]domain.ReferenceStats, error) {
	sem, err := s.requireSemaine(ctx, semaine)
	if err != nil {
		return nil, err
	}
	plans, err := s.plans.List(ctx, domain.PlanificationFilter{Semaine: sem.Nom, Ligne: ligne})
	if err != nil {
		return nil, repoError("planification", err)
	}
	return buildReferenceStats(plans), nil
}

func buildReferenceStats(plans []*domain.Planification) []domain.ReferenceStats {
	type key struct{ ligne, reference string }
	out := []domain.ReferenceStats{}
	index := make(map[key]int)
	for _, p := range plans {
		k := key{p.Ligne, p.Reference}
		i, ok := index[k]
		if !ok {
			i = len(out)
			index[k] = i
			out = append(out, domain.ReferenceStats{Ligne: p.Ligne, Reference: p.Reference})
		}
		out[i].Add(p)
	}
	for i := range out {
		out[i].Finish()
	}
	sort.Slice(out, func(a, b int) bool {
		if out[a].Ligne != out[b].Ligne {
			return out[a].Ligne < out[b].Ligne
		}
		return out[a].Reference < out[b].Reference
	})
	return out
}

// Ligne reports a line's PCS week by week, ordered by start date.
// PCS d'une ligne semaine par semaine, triées par date de début.
func (s *StatsService) Ligne(ctx context.Context, ligne string) (domain.LigneHistory, error) {
	l, err := required("ligne", ligne)
	if err != nil {
		return domain.LigneHistory{}, err
	}
	semaines, err := s.semaines.List(ctx)
	if err != nil {
		return domain.LigneHistory{}, repoError("semaine", err)
	}
	plans, err := s.plans.List(ctx, domain.PlanificationFilter{Ligne: l})
	if err != nil {
		return domain.LigneHistory{}, repoError("planification", err)
	}

	bySemaine := make(map[string]*domain.ProductionTotals)
	for _, p := range plans {
		t, ok := bySemaine[p.Semaine]
		if !ok {
			t = &domain.ProductionTotals{}
			bySemaine[p.Semaine] = t
		}
		t.Add(p)
	}

	history := domain.LigneHistory{Ligne: l, Semaines: []domain.SemainePcs{}}
	for _, sem := range semaines {
		t, ok := bySemaine[sem.Nom]
		if !ok {
			continue
		}
		t.Finish()
		history.Semaines = append(history.Semaines, domain.SemainePcs{
			Semaine:          sem.Nom,
			DateDebut:        sem.DateDebut,
			ProductionTotals: *t,
		})
	}
	return history, nil
}

// Mois reports production and 7M breakdown for each month of a year. A
// planification belongs to the month of its calendar date.
func (s *StatsService) Mois(ctx context.Context, annee int) (domain.AnneeStats, error) {
	if annee < 2000 || annee > 2100 {
		return domain.AnneeStats{}, invalid("annee", "must be between 2000 and 2100")
	}
	semaines, err := s.semaines.List(ctx)
	if err != nil {
		return domain.AnneeStats{}, repoError("semaine", err)
	}
	bySemaine := make(map[string]*domain.Semaine, len(semaines))
	for _, sem := range semaines {
		bySemaine[sem.Nom] = sem
	}

	// month returns 1..12 for dates in annee, 0 otherwise.
	month := func(semaine string, jour domain.Jour) int {
		sem, ok := bySemaine[semaine]
		if !ok {
			return 0
		}
		d, err := sem.DateOf(jour)
		if err != nil || d.Year() != annee {
			return 0
		}
		return int(d.Month())
	}

	plans, err := s.plans.List(ctx, domain.PlanificationFilter{})
	if err != nil {
		return domain.AnneeStats{}, repoError("planification", err)
	}
	ncs, err := s.ncs.List(ctx, domain.NonConfFilter{})
	if err != nil {
		return domain.AnneeStats{}, repoError("non-conformity", err)
	}

	var totals [13]domain.ProductionTotals
	var ncsByMonth [13][]*domain.NonConformite
	for _, p := range plans {
		if m := month(p.Semaine, p.Jour); m > 0 {
			totals[m].Add(p)
		}
	}
	for _, nc := range ncs {
		if m := month(nc.Semaine, nc.Jour); m > 0 {
			ncsByMonth[m] = append(ncsByMonth[m], nc)
		}
	}

	out := domain.AnneeStats{Annee: annee, Mois: make([]domain.MoisStats, 0, 12)}
	for m := 1; m <= 12; m++ {
		totals[m].Finish()
		out.Mois = append(out.Mois, domain.MoisStats{
			Mois:             m,
			ProductionTotals: totals[m],
			Causes:           domain.BuildCauseStats(ncsByMonth[m]),
		})
	}
	return out, nil
}

// Dashboard summarizes a week and today's attendance / Synthèse d'une semaine et de la présence du jour
func (s *StatsService) Dashboard(ctx context.Context, semaine string, today time.Time) (domain.Dashboard, error) {
	week, err := s.Semaine(ctx, semaine)
	if err != nil {
		return domain.Dashboard{}, err
	}
	ncs, err := s.ncs.List(ctx, domain.NonConfFilter{Semaine: week.Semaine})
	if err != nil {
		return domain.Dashboard{}, repoError("non-conformity", err)
	}
	statuts, err := s.statuts.ListByDate(ctx, domain.DateOnly(today))
	if err != nil {
		return domain.Dashboard{}, repoError("statut", err)
	}

	parStatut := map[domain.NonConfStatut]int{
		domain.NonConfASaisir: 0,
		domain.NonConfSaisie:  0,
	}
	for _, nc := range ncs {
		parStatut[nc.Statut]++
	}

	return domain.Dashboard{
		Semaine:          week.Semaine,
		Production:       week.Total,
		NonConfParStatut: parStatut,
		TopCause:         domain.BuildCauseStats(ncs).Top(),
		Presence:         domain.SummarizeAttendance(today, statuts),
	}, nil
}

// Export renders the week's PCS, 7M and reference sheets as xlsx.
func (s *StatsService) Export(ctx context.Context, semaine string) ([]byte, error) {
	week, err := s.Semaine(ctx, semaine)
	if err != nil {
		return nil, err
	}
	causes, err := s.Causes(ctx, semaine, "")
	if err != nil {
		return nil, err
	}
	refs, err := s.References(ctx, semaine, "")
	if err != nil {
		return nil, err
	}

	data, err := export.StatsWorkbook(week, causes, refs)
	if err != nil {
		slog.Error("failed to build stats workbook", "semaine", semaine, "err", err)
		return nil, errInternal
	}
	s.metrics.RecordExport("stats")
	return data, nil
}
