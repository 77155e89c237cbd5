package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Olprog59/go-prodtrack/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (e *testEnv) ouvrier(t *testing.T, matricule int64, nom, ligne string) *domain.Ouvrier {
	t.Helper()
	o, err := e.ouvriers.Create(context.Background(), OuvrierInput{Matricule: matricule, NomPrenom: nom, Ligne: ligne})
	require.NoError(t, err)
	return o
}

func TestOuvrierService_CRUD(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.ouvriers.Create(ctx, OuvrierInput{Matricule: 0, NomPrenom: "X"})
	assertValidation(t, err, "matricule")
	_, err = env.ouvriers.Create(ctx, OuvrierInput{Matricule: 1, NomPrenom: "  "})
	assertValidation(t, err, "nomPrenom")

	env.ouvrier(t, 1001, "DUPONT Jean", "L1")
	env.ouvrier(t, 1002, "MARTIN Léa", "L2")

	_, err = env.ouvriers.Create(ctx, OuvrierInput{Matricule: 1001, NomPrenom: "Autre"})
	assert.ErrorIs(t, err, ErrConflict)

	list, err := env.ouvriers.List(ctx, domain.OuvrierFilter{Ligne: " L2 "})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, int64(1002), list[0].Matricule)

	list, err = env.ouvriers.List(ctx, domain.OuvrierFilter{Search: "dupont"})
	require.NoError(t, err)
	assert.Len(t, list, 1)

	updated, err := env.ouvriers.Update(ctx, 1001, OuvrierInput{NomPrenom: "DUPONT Jean", Ligne: "L2", Poste: "régleur"})
	require.NoError(t, err)
	assert.Equal(t, "L2", updated.Ligne)
	assert.Equal(t, "régleur", updated.Poste)

	_, err = env.ouvriers.Update(ctx, 4242, OuvrierInput{NomPrenom: "Nobody"})
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, env.ouvriers.Delete(ctx, 1002))
	_, err = env.ouvriers.Get(ctx, 1002)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOuvrierService_Statuts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.ouvrier(t, 1, "A", "L1")
	env.ouvrier(t, 2, "B", "L1")
	env.ouvrier(t, 3, "C", "L1")
	env.ouvrier(t, 4, "D", "L1")

	t.Run("rejects unknown code", func(t *testing.T) {
		_, err := env.ouvriers.SetStatut(ctx, 1, monday, "X")
		assertValidation(t, err, "statut")
	})

	t.Run("rejects unknown ouvrier", func(t *testing.T) {
		_, err := env.ouvriers.SetStatut(ctx, 99, monday, domain.StatutPresent)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("upsert replaces the statut of the day", func(t *testing.T) {
		_, err := env.ouvriers.SetStatut(ctx, 1, monday.Add(10*time.Hour), "p")
		require.NoError(t, err)
		st, err := env.ouvriers.SetStatut(ctx, 1, monday, "ab")
		require.NoError(t, err)
		assert.Equal(t, domain.StatutAbsent, st.Statut)

		day, err := env.ouvriers.StatutsByDate(ctx, monday)
		require.NoError(t, err)
		assert.Len(t, day, 1)
	})

	t.Run("summary computes absenteeism", func(t *testing.T) {
		for m, code := range map[int64]domain.StatutCode{2: "M", 3: "P", 4: "C"} {
			_, err := env.ouvriers.SetStatut(ctx, m, monday, code)
			require.NoError(t, err)
		}
		sum, err := env.ouvriers.Summary(ctx, monday)
		require.NoError(t, err)
		assert.Equal(t, 4, sum.Total)
		assert.Equal(t, 1, sum.ParStatut[domain.StatutPresent])
		assert.InDelta(t, 50.0, sum.Absenteisme, 0.001)
	})

	t.Run("history by matricule", func(t *testing.T) {
		_, err := env.ouvriers.SetStatut(ctx, 1, monday.AddDate(0, 0, 1), domain.StatutPresent)
		require.NoError(t, err)
		list, err := env.ouvriers.StatutsByMatricule(ctx, 1, monday, monday.AddDate(0, 0, 6))
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, domain.StatutAbsent, list[0].Statut)

		_, err = env.ouvriers.StatutsByMatricule(ctx, 1, monday, monday.AddDate(0, 0, -1))
		assertValidation(t, err, "to")

		require.NoError(t, env.ouvriers.DeleteStatut(ctx, list[1].ID))
		assert.ErrorIs(t, env.ouvriers.DeleteStatut(ctx, list[1].ID), ErrNotFound)
	})
}

func TestSelectionService_Create(t *testing.T) {
	env := newTestEnv(t)
	env.seedReferentiel(t)
	ctx := context.Background()
	env.plan(t, "lundi", "L1", "REF-A", 100)
	env.plan(t, "lundi", "L1", "REF-B", 100)
	env.ouvrier(t, 10, "PRESENT Paul", "L1")
	env.ouvrier(t, 11, "MALADE Marc", "L1")
	_, err := env.ouvriers.SetStatut(ctx, 11, monday, domain.StatutMaladie)
	require.NoError(t, err)

	sel := func(reference string, matricule int64, heures float64) SelectionInput {
		return SelectionInput{Semaine: "semaine6", Jour: "lundi", Ligne: "L1", Reference: reference, Matricule: matricule, Phase: "montage", Heures: heures}
	}

	t.Run("first assignment", func(t *testing.T) {
		got, err := env.selections.Create(ctx, sel("REF-A", 10, 5))
		require.NoError(t, err)
		assert.Equal(t, "PRESENT Paul", got.NomPrenom)
	})

	tests := []struct {
		name    string
		in      SelectionInput
		wantErr error
		field   string
	}{
		{name: "bad jour", in: SelectionInput{Jour: "x", Matricule: 10, Heures: 1}, field: "jour"},
		{name: "zero heures", in: sel("REF-A", 10, 0), field: "heures"},
		{name: "no planification", in: sel("REF-Z", 10, 1), wantErr: ErrNotFound},
		{name: "unknown ouvrier", in: sel("REF-B", 77, 1), wantErr: ErrNotFound},
		{name: "ouvrier sick", in: sel("REF-B", 11, 1), wantErr: ErrConflict},
		{name: "daily limit exceeded", in: sel("REF-B", 10, 3.5), wantErr: ErrConflict},
		{name: "already selected", in: sel("REF-A", 10, 1), wantErr: ErrConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.selections.Create(ctx, tt.in)
			if tt.field != "" {
				assertValidation(t, err, tt.field)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	t.Run("fills up to the limit", func(t *testing.T) {
		_, err := env.selections.Create(ctx, sel("REF-B", 10, 3))
		require.NoError(t, err)

		list, err := env.selections.List(ctx, domain.SelectionFilter{Semaine: "semaine6", Jour: domain.Lundi})
		require.NoError(t, err)
		require.Len(t, list, 2)

		require.NoError(t, env.selections.Delete(ctx, list[0].ID))
		assert.ErrorIs(t, env.selections.Delete(ctx, list[0].ID), ErrNotFound)
	})
}

func TestSelectionService_Create_ConcurrentHoursLimit(t *testing.T) {
	env := newTestEnv(t)
	env.seedReferentiel(t)
	ctx := context.Background()
	env.plan(t, "mardi", "L1", "REF-A", 100)
	env.plan(t, "mardi", "L1", "REF-B", 100)
	env.ouvrier(t, 12, "DUPONT Jeanne", "L1")

	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for _, ref := range []string{"REF-A", "REF-B"} {
		wg.Add(1)
		go func(reference string) {
			defer wg.Done()
			_, err := env.selections.Create(ctx, SelectionInput{
				Semaine: "semaine6", Jour: "mardi", Ligne: "L1", Reference: reference,
				Matricule: 12, Phase: "montage", Heures: 5,
			})
			errs <- err
		}(ref)
	}
	wg.Wait()
	close(errs)

	var accepted, refused int
	for err := range errs {
		switch {
		case err == nil:
			accepted++
		case errors.Is(err, ErrConflict):
			refused++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, accepted)
	assert.Equal(t, 1, refused)

	list, err := env.selections.List(ctx, domain.SelectionFilter{Semaine: "semaine6", Jour: domain.Mardi})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestRapportService_Save(t *testing.T) {
	env := newTestEnv(t)
	env.seedReferentiel(t)
	ctx := context.Background()
	env.ouvrier(t, 20, "ROBERT Alice", "L1")

	base := RapportInput{Semaine: "semaine6", Jour: "mardi", Ligne: "L1", Matricule: 20}

	tests := []struct {
		name   string
		phases []domain.Phase
	}{
		{name: "no phase"},
		{name: "unnamed phase", phases: []domain.Phase{{Heures: 2}}},
		{name: "zero hours", phases: []domain.Phase{{Phase: "soudure"}}},
		{name: "over the daily limit", phases: []domain.Phase{{Phase: "soudure", Heures: 5}, {Phase: "contrôle", Heures: 3.5}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := base
			in.Phases = tt.phases
			_, err := env.rapports.Save(ctx, in)
			assertValidation(t, err, "phases")
		})
	}

	t.Run("unknown ouvrier", func(t *testing.T) {
		in := base
		in.Matricule = 21
		in.Phases = []domain.Phase{{Phase: "soudure", Heures: 1}}
		_, err := env.rapports.Save(ctx, in)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("save then replace", func(t *testing.T) {
		in := base
		in.Phases = []domain.Phase{{Phase: " soudure ", Heures: 4.25}, {Phase: "contrôle", Heures: 2}}
		first, err := env.rapports.Save(ctx, in)
		require.NoError(t, err)
		assert.InDelta(t, 6.25, first.TotalHeures, 0.001)
		assert.Equal(t, "soudure", first.Phases[0].Phase)

		in.Phases = []domain.Phase{{Phase: "rangement", Heures: 8}}
		second, err := env.rapports.Save(ctx, in)
		require.NoError(t, err)
		assert.InDelta(t, 8.0, second.TotalHeures, 0.001)

		list, err := env.rapports.List(ctx, domain.SelectionFilter{Semaine: "semaine6"})
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Len(t, list[0].Phases, 1)

		require.NoError(t, env.rapports.Delete(ctx, list[0].ID))
		_, err = env.rapports.Get(ctx, list[0].ID)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}
