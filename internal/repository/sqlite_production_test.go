package repository

import (
	"context"
	"testing"
	"time"

	"github.com/Olprog59/go-prodtrack/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var monday = time.Date(2025, time.February, 3, 0, 0, 0, 0, time.UTC)

// seedSlot creates a week, a product and one planification on it.
func seedSlot(t *testing.T, adapter *Adapter) *domain.Planification {
	t.Helper()
	ctx := context.Background()

	_, err := adapter.SemaineRepository().Create(ctx, &domain.Semaine{
		Nom: "semaine6", DateDebut: monday, DateFin: monday.AddDate(0, 0, 5),
	})
	require.NoError(t, err)
	_, err = adapter.ProductRepository().Create(ctx, &domain.Product{Ligne: "L1", Reference: "REF-A"})
	require.NoError(t, err)

	p, err := adapter.PlanificationRepository().Create(ctx, &domain.Planification{
		Semaine: "semaine6", Jour: domain.Lundi, Ligne: "L1", Reference: "REF-A",
		OF: "OF-001", QtePlanifiee: 100, NbOperateurs: 3, NbHeuresPlanifiees: 7.5,
	})
	require.NoError(t, err)
	return p
}

func TestProductRepository(t *testing.T) {
	_, adapter := NewTestAdapter(t)
	repo := adapter.ProductRepository()
	ctx := context.Background()

	for _, p := range []domain.Product{{Ligne: "L2", Reference: "B"}, {Ligne: "L1", Reference: "A"}, {Ligne: "L1", Reference: "C"}} {
		_, err := repo.Create(ctx, &p)
		require.NoError(t, err)
	}

	_, err := repo.Create(ctx, &domain.Product{Ligne: "L1", Reference: "A"})
	assert.ErrorIs(t, err, ErrDuplicate)

	lignes, err := repo.ListLignes(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"L1", "L2"}, lignes)

	refs, err := repo.List(ctx, "L1")
	require.NoError(t, err)
	require.Len(t, refs, 2)
	assert.Equal(t, "A", refs[0].Reference)

	ok, err := repo.Exists(ctx, "L2", "B")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, _ = repo.Exists(ctx, "L2", "A")
	assert.False(t, ok)
}

func TestSemaineRepository(t *testing.T) {
	_, adapter := NewTestAdapter(t)
	repo := adapter.SemaineRepository()
	ctx := context.Background()

	s6, err := repo.Create(ctx, &domain.Semaine{Nom: "semaine6", DateDebut: monday, DateFin: monday.AddDate(0, 0, 6)})
	require.NoError(t, err)
	_, err = repo.Create(ctx, &domain.Semaine{Nom: "semaine5", DateDebut: monday.AddDate(0, 0, -7), DateFin: monday.AddDate(0, 0, -1)})
	require.NoError(t, err)

	got, err := repo.GetByNom(ctx, "semaine6")
	require.NoError(t, err)
	assert.True(t, got.DateDebut.Equal(monday))

	containing, err := repo.GetContaining(ctx, monday.AddDate(0, 0, 2).Add(15*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, s6.ID, containing.ID)

	_, err = repo.GetContaining(ctx, monday.AddDate(0, 1, 0))
	assert.ErrorIs(t, err, ErrNoRecord)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "semaine5", all[0].Nom)
}

func TestPlanificationRepository(t *testing.T) {
	database, adapter := NewTestAdapter(t)
	repo := adapter.PlanificationRepository()
	ctx := context.Background()

	p := seedSlot(t, adapter)
	assert.Equal(t, "OF-001", p.OF)
	assert.False(t, p.Declared)

	_, err := repo.Create(ctx, &domain.Planification{Semaine: "semaine6", Jour: domain.Lundi, Ligne: "L1", Reference: "REF-A"})
	assert.ErrorIs(t, err, ErrDuplicate)

	_, err = repo.Create(ctx, &domain.Planification{Semaine: "semaine99", Jour: domain.Lundi, Ligne: "L1", Reference: "REF-A"})
	assert.ErrorIs(t, err, ErrForeignKeyViolation)

	p.DecProduction = 90
	p.Declared = true
	p.Recompute()
	require.NoError(t, repo.Update(ctx, p))

	got, err := repo.GetBySlot(ctx, "semaine6", domain.Lundi, "L1", "REF-A")
	require.NoError(t, err)
	assert.True(t, got.Declared)
	assert.Equal(t, int64(-10), got.DeltaProd)
	assert.Equal(t, 90.0, got.PcsProd)
	assert.Equal(t, 7.5, got.NbHeuresPlanifiees)

	list, err := repo.List(ctx, domain.PlanificationFilter{Semaine: "semaine6", Jour: domain.Mardi})
	require.NoError(t, err)
	assert.Empty(t, list)

	// Transaction rollback discards the delete
	tx, err := database.Begin()
	require.NoError(t, err)
	require.NoError(t, repo.WithTx(tx).Delete(ctx, p.ID))
	require.NoError(t, tx.Rollback())
	_, err = repo.GetByID(ctx, p.ID)
	assert.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, p.ID))
	assert.ErrorIs(t, repo.Delete(ctx, p.ID), ErrNoRecord)
}

func TestNonConformiteRepository(t *testing.T) {
	_, adapter := NewTestAdapter(t)
	repo := adapter.NonConformiteRepository()
	comments := adapter.CommentaireRepository()
	ctx := context.Background()

	p := seedSlot(t, adapter)
	nc, err := repo.Create(ctx, &domain.NonConformite{
		PlanificationID: p.ID, Semaine: p.Semaine, Jour: p.Jour, Ligne: p.Ligne, Reference: p.Reference,
		DeltaProd: -10, Statut: domain.NonConfASaisir,
	})
	require.NoError(t, err)
	assert.Nil(t, nc.CommentaireID)

	_, err = repo.Create(ctx, &domain.NonConformite{PlanificationID: p.ID, Statut: domain.NonConfASaisir})
	assert.ErrorIs(t, err, ErrDuplicate, "one non-conformity per planification")

	com, err := comments.Create(ctx, &domain.Commentaire{Commentaire: "Défaut d'aspect"})
	require.NoError(t, err)

	nc.Causes = domain.Causes{Qualite: 6, Absence: 4}
	nc.ReferenceQualite = "Q-12"
	nc.CommentaireID = &com.ID
	nc.Statut = domain.NonConfSaisie
	require.NoError(t, repo.UpdateCauses(ctx, nc))
	_, err = repo.AddSaisie(ctx, &domain.SaisieNonConf{NonConformiteID: nc.ID, UserID: 1, Causes: nc.Causes})
	require.NoError(t, err)

	got, err := repo.GetByPlanification(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(10), got.Total)
	require.NotNil(t, got.CommentaireID)
	assert.Equal(t, com.ID, *got.CommentaireID)
	assert.Equal(t, domain.NonConfSaisie, got.Statut)

	inUse, err := comments.InUse(ctx, com.ID)
	require.NoError(t, err)
	assert.True(t, inUse)
	assert.ErrorIs(t, comments.Delete(ctx, com.ID), ErrForeignKeyViolation)

	require.NoError(t, repo.UpdateDelta(ctx, nc.ID, -20, domain.NonConfASaisir))
	list, err := repo.List(ctx, domain.NonConfFilter{Statut: domain.NonConfASaisir})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, int64(-20), list[0].DeltaProd)

	history, err := repo.ListSaisies(ctx, nc.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, int64(10), history[0].Total)

	require.NoError(t, repo.Delete(ctx, nc.ID))
	history, _ = repo.ListSaisies(ctx, nc.ID)
	assert.Empty(t, history)
}

func TestWorkforceRepositories(t *testing.T) {
	_, adapter := NewTestAdapter(t)
	ouvriers := adapter.OuvrierRepository()
	statuts := adapter.StatutOuvrierRepository()
	selections := adapter.SelectionRepository()
	rapports := adapter.RapportRepository()
	ctx := context.Background()

	o, err := ouvriers.Create(ctx, &domain.Ouvrier{Matricule: 1042, NomPrenom: "DUPONT Jean", Ligne: "L1", Poste: "Monteur"})
	require.NoError(t, err)
	_, err = ouvriers.Create(ctx, &domain.Ouvrier{Matricule: 1042, NomPrenom: "Doublon"})
	assert.ErrorIs(t, err, ErrDuplicate)
	_, err = ouvriers.Create(ctx, &domain.Ouvrier{Matricule: 2001, NomPrenom: "MARTIN Paul", Ligne: "L2"})
	require.NoError(t, err)

	found, err := ouvriers.List(ctx, domain.OuvrierFilter{Search: "dupont"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, o.Matricule, found[0].Matricule)

	// Statut upsert keeps one row per day
	day := monday.Add(9 * time.Hour)
	first, err := statuts.Upsert(ctx, &domain.StatutOuvrier{Matricule: 1042, NomPrenom: o.NomPrenom, Date: day, Statut: domain.StatutPresent})
	require.NoError(t, err)
	second, err := statuts.Upsert(ctx, &domain.StatutOuvrier{Matricule: 1042, NomPrenom: o.NomPrenom, Date: monday, Statut: domain.StatutMaladie})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, domain.StatutMaladie, second.Statut)

	_, err = statuts.Upsert(ctx, &domain.StatutOuvrier{Matricule: 9999, Date: monday, Statut: domain.StatutPresent})
	assert.ErrorIs(t, err, ErrForeignKeyViolation)

	byDate, err := statuts.ListByDate(ctx, monday)
	require.NoError(t, err)
	assert.Len(t, byDate, 1)
	byMatricule, err := statuts.ListByMatricule(ctx, 1042, monday.AddDate(0, 0, -1), monday)
	require.NoError(t, err)
	assert.Len(t, byMatricule, 1)

	// Selections
	sel := &domain.PlanningSelection{Semaine: "semaine6", Jour: domain.Lundi, Ligne: "L1", Reference: "REF-A", Matricule: 1042, Phase: "montage", Heures: 3.5}
	_, err = selections.Create(ctx, sel)
	require.NoError(t, err)
	_, err = selections.Create(ctx, sel)
	assert.ErrorIs(t, err, ErrDuplicate)
	sel2 := *sel
	sel2.Reference = "REF-B"
	sel2.Heures = 2
	_, err = selections.Create(ctx, &sel2)
	require.NoError(t, err)

	total, err := selections.SumHeures(ctx, "semaine6", domain.Lundi, 1042)
	require.NoError(t, err)
	assert.Equal(t, 5.5, total)
	total, err = selections.SumHeures(ctx, "semaine6", domain.Mardi, 1042)
	require.NoError(t, err)
	assert.Zero(t, total)

	// Rapports upsert replaces phases
	rp := &domain.SaisieRapport{Semaine: "semaine6", Jour: domain.Lundi, Ligne: "L1", Matricule: 1042,
		Phases: []domain.Phase{{Phase: "montage", Heures: 4}}, TotalHeures: 4}
	saved, err := rapports.Upsert(ctx, rp)
	require.NoError(t, err)
	rp.Phases = append(rp.Phases, domain.Phase{Phase: "controle", Heures: 2.5})
	rp.TotalHeures = 6.5
	replaced, err := rapports.Upsert(ctx, rp)
	require.NoError(t, err)
	assert.Equal(t, saved.ID, replaced.ID)
	assert.Len(t, replaced.Phases, 2)
	assert.Equal(t, 6.5, replaced.TotalHeures)

	list, err := rapports.List(ctx, domain.SelectionFilter{Semaine: "semaine6", Ligne: "L1"})
	require.NoError(t, err)
	assert.Len(t, list, 1)

	// Deleting the worker cascades
	require.NoError(t, ouvriers.Delete(ctx, 1042))
	remaining, err := selections.List(ctx, domain.SelectionFilter{Semaine: "semaine6"})
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestActivityRepository(t *testing.T) {
	_, adapter := NewTestAdapter(t)
	repo := adapter.ActivityRepository()
	ctx := context.Background()

	old := time.Now().AddDate(0, 0, -100)
	require.NoError(t, repo.Create(ctx, &domain.UserActivity{UserID: 1, Action: "planification.create", Path: "/api/planifications", StatusCode: 201, CreatedAt: old}))
	require.NoError(t, repo.Create(ctx, &domain.UserActivity{UserID: 1, Action: "planification.declare", StatusCode: 200}))
	require.NoError(t, repo.Create(ctx, &domain.UserActivity{UserID: 2, Action: "planification.create", StatusCode: 201}))

	list, total, err := repo.List(ctx, domain.ActivityFilter{UserID: 1}, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, list, 2)
	assert.Equal(t, "planification.declare", list[0].Action, "newest first")

	_, total, err = repo.List(ctx, domain.ActivityFilter{Action: "planification.create"}, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, total)

	n, err := repo.PurgeBefore(ctx, time.Now().AddDate(0, 0, -90))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
