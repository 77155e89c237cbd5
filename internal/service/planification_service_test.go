package service

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/Olprog59/go-prodtrack/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestPlanificationService_Create(t *testing.T) {
	env := newTestEnv(t)
	env.seedReferentiel(t)
	ctx := context.Background()

	base := PlanificationInput{Semaine: "semaine6", Jour: "Lundi", Ligne: "L1", Reference: "REF-A", QtePlanifiee: 100}

	tests := []struct {
		name      string
		mutate    func(in *PlanificationInput)
		wantField string
	}{
		{name: "missing semaine", mutate: func(in *PlanificationInput) { in.Semaine = " " }, wantField: "semaine"},
		{name: "unknown jour", mutate: func(in *PlanificationInput) { in.Jour = "funday" }, wantField: "jour"},
		{name: "jour outside semaine", mutate: func(in *PlanificationInput) { in.Jour = "dimanche" }, wantField: "jour"},
		{name: "unknown semaine", mutate: func(in *PlanificationInput) { in.Semaine = "semaine99" }, wantField: "semaine"},
		{name: "reference not on line", mutate: func(in *PlanificationInput) { in.Reference = "REF-C" }, wantField: "reference"},
		{name: "negative quantity", mutate: func(in *PlanificationInput) { in.QtePlanifiee = -1 }, wantField: "qtePlanifiee"},
		{name: "negative operators", mutate: func(in *PlanificationInput) { in.NbOperateurs = -2 }, wantField: "nbOperateurs"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := base
			tt.mutate(&in)
			_, err := env.planifications.Create(ctx, in)
			assertValidation(t, err, tt.wantField)
		})
	}

	t.Run("creates undeclared planification", func(t *testing.T) {
		p, err := env.planifications.Create(ctx, base)
		require.NoError(t, err)
		assert.NotZero(t, p.ID)
		assert.Equal(t, domain.Lundi, p.Jour)
		assert.False(t, p.Declared)
		assert.Zero(t, p.DeltaProd)
	})

	t.Run("duplicate slot conflicts", func(t *testing.T) {
		_, err := env.planifications.Create(ctx, base)
		assert.ErrorIs(t, err, ErrConflict)
	})
}

func TestPlanificationService_CreateBatch(t *testing.T) {
	env := newTestEnv(t)
	env.seedReferentiel(t)
	ctx := context.Background()

	t.Run("empty batch", func(t *testing.T) {
		_, err := env.planifications.CreateBatch(ctx, nil)
		assertValidation(t, err, "planifications")
	})

	t.Run("duplicate inside batch rolls everything back", func(t *testing.T) {
		in := PlanificationInput{Semaine: "semaine6", Jour: "mardi", Ligne: "L1", Reference: "REF-A", QtePlanifiee: 50}
		_, err := env.planifications.CreateBatch(ctx, []PlanificationInput{in, in})
		require.ErrorIs(t, err, ErrConflict)
		assert.Contains(t, err.Error(), "planification 1")

		list, err := env.planifications.List(ctx, domain.PlanificationFilter{Semaine: "semaine6"})
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("invalid item reports its index", func(t *testing.T) {
		_, err := env.planifications.CreateBatch(ctx, []PlanificationInput{
			{Semaine: "semaine6", Jour: "mardi", Ligne: "L1", Reference: "REF-A"},
			{Semaine: "semaine6", Jour: "mardi", Ligne: "L1", Reference: "NOPE"},
		})
		assertValidation(t, err, "reference")
		assert.Contains(t, err.Error(), "planification 1")
	})

	t.Run("creates all", func(t *testing.T) {
		created, err := env.planifications.CreateBatch(ctx, []PlanificationInput{
			{Semaine: "semaine6", Jour: "mardi", Ligne: "L1", Reference: "REF-A", QtePlanifiee: 10},
			{Semaine: "semaine6", Jour: "mardi", Ligne: "L1", Reference: "REF-B", QtePlanifiee: 20},
			{Semaine: "semaine6", Jour: "mardi", Ligne: "L2", Reference: "REF-C", QtePlanifiee: 30},
		})
		require.NoError(t, err)
		assert.Len(t, created, 3)

		list, err := env.planifications.List(ctx, domain.PlanificationFilter{Semaine: "semaine6", Ligne: "L1"})
		require.NoError(t, err)
		assert.Len(t, list, 2)
	})
}

func TestPlanificationService_List_InvalidJour(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.planifications.List(context.Background(), domain.PlanificationFilter{Jour: "someday"})
	assertValidation(t, err, "jour")
}

func TestPlanificationService_DeclareProduction_SyncsNonConformite(t *testing.T) {
	env := newTestEnv(t)
	env.seedReferentiel(t)
	ctx := context.Background()
	p := env.plan(t, "lundi", "L1", "REF-A", 100)

	ncFor := func(t *testing.T) (*domain.NonConformite, error) {
		t.Helper()
		return env.nonConfs.GetByPlanification(ctx, p.ID)
	}

	t.Run("negative quantities rejected", func(t *testing.T) {
		_, err := env.planifications.DeclareProduction(ctx, p.ID, -1, 0)
		assertValidation(t, err, "decProduction")
		_, err = env.planifications.DeclareProduction(ctx, p.ID, 0, -1)
		assertValidation(t, err, "decMagasin")
	})

	t.Run("unknown planification", func(t *testing.T) {
		_, err := env.planifications.DeclareProduction(ctx, 9999, 10, 10)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("shortfall creates a non-conformity", func(t *testing.T) {
		got, err := env.planifications.DeclareProduction(ctx, p.ID, 80, 75)
		require.NoError(t, err)
		assert.True(t, got.Declared)
		assert.Equal(t, int64(-20), got.DeltaProd)
		assert.InDelta(t, 80.0, got.PcsProd, 0.001)

		nc, err := ncFor(t)
		require.NoError(t, err)
		assert.Equal(t, int64(-20), nc.DeltaProd)
		assert.Equal(t, domain.NonConfASaisir, nc.Statut)
		assert.Equal(t, "semaine6", nc.Semaine)
		assert.Equal(t, 1, env.metrics.NonConformitySync["created"])
	})

	t.Run("same declaration is a no-op for the non-conformity", func(t *testing.T) {
		_, err := env.planifications.DeclareProduction(ctx, p.ID, 80, 75)
		require.NoError(t, err)
		assert.Zero(t, env.metrics.NonConformitySync["updated"])
	})

	t.Run("saisie goes back to a_saisir when delta moves", func(t *testing.T) {
		nc, err := ncFor(t)
		require.NoError(t, err)
		_, err = env.nonConfs.DeclareCauses(ctx, nc.ID, CausesInput{Causes: domain.Causes{Absence: 20}}, 0)
		require.NoError(t, err)

		_, err = env.planifications.DeclareProduction(ctx, p.ID, 60, 60)
		require.NoError(t, err)

		nc, err = ncFor(t)
		require.NoError(t, err)
		assert.Equal(t, int64(-40), nc.DeltaProd)
		assert.Equal(t, domain.NonConfASaisir, nc.Statut)
		assert.Equal(t, int64(20), nc.Total)
		assert.Equal(t, 1, env.metrics.NonConformitySync["updated"])
	})

	t.Run("target reached deletes the non-conformity", func(t *testing.T) {
		got, err := env.planifications.DeclareProduction(ctx, p.ID, 100, 100)
		require.NoError(t, err)
		assert.Zero(t, got.DeltaProd)

		_, err = ncFor(t)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.Equal(t, 1, env.metrics.NonConformitySync["deleted"])
	})

	assert.Equal(t, 4, env.metrics.ProductionDeclarations)
}

func TestPlanificationService_Update_UsesModifiedQuantity(t *testing.T) {
	env := newTestEnv(t)
	env.seedReferentiel(t)
	ctx := context.Background()
	p := env.plan(t, "mercredi", "L1", "REF-B", 100)

	_, err := env.planifications.DeclareProduction(ctx, p.ID, 90, 90)
	require.NoError(t, err)

	// Lowering the target below production clears the shortfall.
	got, err := env.planifications.Update(ctx, p.ID, PlanningUpdate{QtePlanifiee: 100, QteModifiee: 90, OF: " OF-1 "})
	require.NoError(t, err)
	assert.Equal(t, "OF-1", got.OF)
	assert.Zero(t, got.DeltaProd)
	assert.InDelta(t, 100.0, got.PcsProd, 0.001)

	_, err = env.nonConfs.GetByPlanification(ctx, p.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = env.planifications.Update(ctx, p.ID, PlanningUpdate{QtePlanifiee: -5})
	assertValidation(t, err, "qtePlanifiee")
}

func TestPlanificationService_Update_UndeclaredHasNoNonConformite(t *testing.T) {
	env := newTestEnv(t)
	env.seedReferentiel(t)
	ctx := context.Background()
	p := env.plan(t, "jeudi", "L2", "REF-C", 40)

	got, err := env.planifications.Update(ctx, p.ID, PlanningUpdate{QtePlanifiee: 400, NbOperateurs: 3, NbHeuresPlanifiees: 7.5})
	require.NoError(t, err)
	assert.Equal(t, int64(400), got.QtePlanifiee)
	assert.Equal(t, 3, got.NbOperateurs)
	assert.Zero(t, got.DeltaProd)

	_, err = env.nonConfs.GetByPlanification(ctx, p.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, env.metrics.NonConformitySync)
}

func TestPlanificationService_Delete(t *testing.T) {
	env := newTestEnv(t)
	env.seedReferentiel(t)
	ctx := context.Background()
	p := env.plan(t, "vendredi", "L1", "REF-A", 10)

	_, err := env.planifications.DeclareProduction(ctx, p.ID, 5, 5)
	require.NoError(t, err)

	require.NoError(t, env.planifications.Delete(ctx, p.ID))

	_, err = env.planifications.Get(ctx, p.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	ncs, err := env.nonConfs.List(ctx, domain.NonConfFilter{})
	require.NoError(t, err)
	assert.Empty(t, ncs)

	err = env.planifications.Delete(ctx, p.ID)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestPlanificationService_Export(t *testing.T) {
	env := newTestEnv(t)
	env.seedReferentiel(t)
	ctx := context.Background()
	env.plan(t, "lundi", "L1", "REF-A", 10)
	env.plan(t, "mardi", "L2", "REF-C", 20)

	_, err := env.planifications.Export(ctx, "semaine42")
	assert.ErrorIs(t, err, ErrNotFound)

	data, err := env.planifications.Export(ctx, "semaine6")
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	require.NoError(t, err)
	assert.Len(t, rows, 3)
	assert.Equal(t, 1, env.metrics.Exports["planification"])
}
