package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Olprog59/go-prodtrack/internal/config"
	"github.com/Olprog59/go-prodtrack/internal/domain"
	"github.com/Olprog59/go-prodtrack/internal/export"
	"github.com/Olprog59/go-prodtrack/internal/ports"
	"github.com/Olprog59/go-prodtrack/internal/repository"
)

// ProductionMetricsRecorder records production metrics / Enregistre les métriques de production
type ProductionMetricsRecorder interface {
	RecordProductionDeclaration()
	RecordNonConformitySync(action string)
	RecordCauseDeclaration(result string)
	RecordExport(kind string)
}

// PlanificationService manages planned production orders and their
// declaration. Every declared change re-syncs the non-conformity in the same
// transaction.
type PlanificationService struct {
	db       ports.TxBeginner
	plans    ports.PlanificationRepository
	ncs      ports.NonConformiteRepository
	semaines ports.SemaineRepository
	products ports.ProductRepository
	conf     *config.Config
	metrics  ProductionMetricsRecorder
}

func NewPlanificationService(
	db ports.TxBeginner,
	plans ports.PlanificationRepository,
	ncs ports.NonConformiteRepository,
	semaines ports.SemaineRepository,
	products ports.ProductRepository,
	conf *config.Config,
	metrics ProductionMetricsRecorder,
) *PlanificationService {
	return &PlanificationService{
		db:       db,
		plans:    plans,
		ncs:      ncs,
		semaines: semaines,
		products: products,
		conf:     conf,
		metrics:  metrics,
	}
}

// PlanificationInput holds the planning fields of an order / Champs de planification d'un ordre
type PlanificationInput struct {
	Semaine            string
	Jour               string
	Ligne              string
	Reference          string
	OF                 string
	QtePlanifiee       int64
	QteModifiee        int64
	NbOperateurs       int
	NbHeuresPlanifiees float64
	Emballage          string
}

// PlanningUpdate holds the fields editable after creation. The slot is fixed.
type PlanningUpdate struct {
	OF                 string
	QtePlanifiee       int64
	QteModifiee        int64
	NbOperateurs       int
	NbHeuresPlanifiees float64
	Emballage          string
}

func validatePlanning(qtePlanifiee, qteModifiee int64, nbOperateurs int, heures float64) error {
	switch {
	case qtePlanifiee < 0:
		return invalid("qtePlanifiee", "must be >= 0")
	case qteModifiee < 0:
		return invalid("qteModifiee", "must be >= 0")
	case nbOperateurs < 0:
		return invalid("nbOperateurs", "must be >= 0")
	case heures < 0:
		return invalid("nbHeuresPlanifiees", "must be >= 0")
	}
	return nil
}

// build validates an input against the referential / Valide une saisie contre le référentiel
func (s *PlanificationService) build(ctx context.Context, in PlanificationInput) (*domain.Planification, error) {
	semaine, err := required("semaine", in.Semaine)
	if err != nil {
		return nil, err
	}
	jour, ok := domain.ParseJour(in.Jour)
	if !ok {
		return nil, invalid("jour", "unknown day %q", in.Jour)
	}
	ligne, err := required("ligne", in.Ligne)
	if err != nil {
		return nil, err
	}
	reference, err := required("reference", in.Reference)
	if err != nil {
		return nil, err
	}
	if err := validatePlanning(in.QtePlanifiee, in.QteModifiee, in.NbOperateurs, in.NbHeuresPlanifiees); err != nil {
		return nil, err
	}

	sem, err := s.semaines.GetByNom(ctx, semaine)
	if errors.Is(err, repository.ErrNoRecord) {
		return nil, invalid("semaine", "unknown semaine %q", semaine)
	} else if err != nil {
		return nil, repoError("semaine", err)
	}
	if _, err := sem.DateOf(jour); err != nil {
		return nil, invalid("jour", "%s is outside of %s", jour, semaine)
	}

	exists, err := s.products.Exists(ctx, ligne, reference)
	if err != nil {
		return nil, repoError("product", err)
	}
	if !exists {
		return nil, invalid("reference", "%s is not a product of line %s", reference, ligne)
	}

	return &domain.Planification{
		Semaine:            semaine,
		Jour:               jour,
		Ligne:              ligne,
		Reference:          reference,
		OF:                 strings.TrimSpace(in.OF),
		QtePlanifiee:       in.QtePlanifiee,
		QteModifiee:        in.QteModifiee,
		NbOperateurs:       in.NbOperateurs,
		NbHeuresPlanifiees: in.NbHeuresPlanifiees,
		Emballage:          strings.TrimSpace(in.Emballage),
	}, nil
}

func planificationError(err error) error {
	if errors.Is(err, repository.ErrDuplicate) {
		return conflict("a planification already exists for this semaine, jour, ligne and reference")
	}
	return repoError("planification", err)
}

// Create plans one order / Planifie un ordre
func (s *PlanificationService) Create(ctx context.Context, in PlanificationInput) (*domain.Planification, error) {
	p, err := s.build(ctx, in)
	if err != nil {
		return nil, err
	}
	created, err := s.plans.Create(ctx, p)
	if err != nil {
		return nil, planificationError(err)
	}
	return created, nil
}

// CreateBatch plans several orders, all or none / Planifie plusieurs ordres, tout ou rien
func (s *PlanificationService) CreateBatch(ctx context.Context, inputs []PlanificationInput) ([]*domain.Planification, error) {
	if len(inputs) == 0 {
		return nil, invalid("planifications", "at least one planification is required")
	}

	built := make([]*domain.Planification, 0, len(inputs))
	for i, in := range inputs {
		p, err := s.build(ctx, in)
		if err != nil {
			return nil, fmt.Errorf("planification %d: %w", i, err)
		}
		built = append(built, p)
	}

	created := make([]*domain.Planification, 0, len(built))
	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		plans := s.plans.WithTx(tx)
		for i, p := range built {
			c, err := plans.Create(ctx, p)
			if err != nil {
				return fmt.Errorf("planification %d: %w", i, planificationError(err))
			}
			created = append(created, c)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *PlanificationService) Get(ctx context.Context, id int64) (*domain.Planification, error) {
	p, err := s.plans.GetByID(ctx, id)
	if err != nil {
		return nil, repoError("planification", err)
	}
	return p, nil
}

// List returns planifications matching filter; empty fields match everything.
func (s *PlanificationService) List(ctx context.Context, filter domain.PlanificationFilter) ([]*domain.Planification, error) {
	if filter.Jour != "" && !filter.Jour.IsValid() {
		return nil, invalid("jour", "unknown day %q", filter.Jour)
	}
	list, err := s.plans.List(ctx, filter)
	if err != nil {
		return nil, repoError("planification", err)
	}
	return list, nil
}

// Update changes planning fields; a declared planification is recomputed and
// its non-conformity re-synced.
func (s *PlanificationService) Update(ctx context.Context, id int64, in PlanningUpdate) (*domain.Planification, error) {
	if err := validatePlanning(in.QtePlanifiee, in.QteModifiee, in.NbOperateurs, in.NbHeuresPlanifiees); err != nil {
		return nil, err
	}
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	p.OF = strings.TrimSpace(in.OF)
	p.QtePlanifiee = in.QtePlanifiee
	p.QteModifiee = in.QteModifiee
	p.NbOperateurs = in.NbOperateurs
	p.NbHeuresPlanifiees = in.NbHeuresPlanifiees
	p.Emballage = strings.TrimSpace(in.Emballage)

	if err := s.save(ctx, p); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// DeclareProduction records the produced and stored quantities.
// Enregistre les quantités produites et livrées au magasin.
func (s *PlanificationService) DeclareProduction(ctx context.Context, id, decProduction, decMagasin int64) (*domain.Planification, error) {
	if decProduction < 0 {
		return nil, invalid("decProduction", "must be >= 0")
	}
	if decMagasin < 0 {
		return nil, invalid("decMagasin", "must be >= 0")
	}
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	p.DecProduction = decProduction
	p.DecMagasin = decMagasin
	p.Declared = true

	if err := s.save(ctx, p); err != nil {
		return nil, err
	}
	s.metrics.RecordProductionDeclaration()
	slog.Info("production declared", "planification_id", id, "delta_prod", p.DeltaProd, "pcs", p.PcsProd)
	return s.Get(ctx, id)
}

// save recomputes derived fields then persists p and syncs its
// non-conformity atomically.
func (s *PlanificationService) save(ctx context.Context, p *domain.Planification) error {
	p.Recompute()

	var action domain.SyncAction
	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.plans.WithTx(tx).Update(ctx, p); err != nil {
			return repoError("planification", err)
		}
		var err error
		action, err = syncNonConformite(ctx, s.ncs.WithTx(tx), p, s.conf.Production.DeltaTolerance)
		return err
	})
	if err != nil {
		return err
	}

	if action != domain.SyncNone {
		s.metrics.RecordNonConformitySync(action.String())
		slog.Info("non-conformity synced", "planification_id", p.ID, "action", action.String())
	}
	return nil
}

// syncNonConformite applies the deltaProd rules:
//   - delta < 0 without non-conformity: create one to fill in
//   - delta < 0 with one: refresh the delta, back to a_saisir if causes no longer match
//   - delta >= 0 with one: delete it
func syncNonConformite(ctx context.Context, ncs ports.NonConformiteRepository, p *domain.Planification, tolerance int64) (domain.SyncAction, error) {
	existing, err := ncs.GetByPlanification(ctx, p.ID)
	if err != nil && !errors.Is(err, repository.ErrNoRecord) {
		return domain.SyncNone, repoError("non-conformity", err)
	}
	exists := err == nil

	action := domain.DecideSync(exists, p.DeltaProd)
	switch action {
	case domain.SyncCreate:
		_, err = ncs.Create(ctx, &domain.NonConformite{
			PlanificationID: p.ID,
			Semaine:         p.Semaine,
			Jour:            p.Jour,
			Ligne:           p.Ligne,
			Reference:       p.Reference,
			DeltaProd:       p.DeltaProd,
			Statut:          domain.NonConfASaisir,
		})
	case domain.SyncUpdate:
		statut := existing.Statut
		if statut == domain.NonConfSaisie && !domain.CausesMatchDelta(existing.Total, p.DeltaProd, tolerance) {
			statut = domain.NonConfASaisir
		}
		if statut == existing.Statut && p.DeltaProd == existing.DeltaProd {
			return domain.SyncNone, nil
		}
		err = ncs.UpdateDelta(ctx, existing.ID, p.DeltaProd, statut)
	case domain.SyncDelete:
		err = ncs.Delete(ctx, existing.ID)
	}
	if err != nil {
		return domain.SyncNone, repoError("non-conformity", err)
	}
	return action, nil
}

// Delete removes a planification with its non-conformity / Supprime une planification et sa non-conformité
func (s *PlanificationService) Delete(ctx context.Context, id int64) error {
	return withTx(ctx, s.db, func(tx *sql.Tx) error {
		ncs := s.ncs.WithTx(tx)
		nc, err := ncs.GetByPlanification(ctx, id)
		switch {
		case err == nil:
			if err := ncs.Delete(ctx, nc.ID); err != nil {
				return repoError("non-conformity", err)
			}
		case !errors.Is(err, repository.ErrNoRecord):
			return repoError("non-conformity", err)
		}
		return repoError("planification", s.plans.WithTx(tx).Delete(ctx, id))
	})
}

// Export renders the planifications of a week as xlsx / Exporte les planifications d'une semaine
func (s *PlanificationService) Export(ctx context.Context, semaine string) ([]byte, error) {
	if _, err := s.semaines.GetByNom(ctx, semaine); err != nil {
		return nil, repoError("semaine", err)
	}
	plans, err := s.plans.List(ctx, domain.PlanificationFilter{Semaine: semaine})
	if err != nil {
		return nil, repoError("planification", err)
	}
	data, err := export.PlanificationWorkbook(semaine, plans)
	if err != nil {
		slog.Error("failed to build planification workbook", "semaine", semaine, "err", err)
		return nil, errInternal
	}
	s.metrics.RecordExport("planification")
	return data, nil
}
