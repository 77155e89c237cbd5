package service

import (
	"context"
	"math"
	"testing"

	"github.com/Olprog59/go-prodtrack/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// shortfall declares a production of 70 out of 100 and returns the
// resulting non-conformity (deltaProd -30).
func (e *testEnv) shortfall(t *testing.T, jour string) *domain.NonConformite {
	t.Helper()
	ctx := context.Background()
	p := e.plan(t, jour, "L1", "REF-A", 100)
	_, err := e.planifications.DeclareProduction(ctx, p.ID, 70, 70)
	require.NoError(t, err)
	nc, err := e.nonConfs.GetByPlanification(ctx, p.ID)
	require.NoError(t, err)
	return nc
}

func TestNonConformiteService_DeclareCauses_Validation(t *testing.T) {
	env := newTestEnv(t)
	env.seedReferentiel(t)
	ctx := context.Background()
	nc := env.shortfall(t, "lundi")
	com, err := env.commentaires.Create(ctx, "Défaut d'aspect")
	require.NoError(t, err)
	missing := int64(404)

	tests := []struct {
		name      string
		in        CausesInput
		wantField string
	}{
		{
			name:      "negative cause",
			in:        CausesInput{Causes: domain.Causes{Absence: 31, Methode: -1}},
			wantField: "methode",
		},
		{
			name:      "total too low",
			in:        CausesInput{Causes: domain.Causes{Absence: 10}},
			wantField: "causes",
		},
		{
			name:      "total too high",
			in:        CausesInput{Causes: domain.Causes{Absence: 32}},
			wantField: "causes",
		},
		{
			name:      "total wrapping around int64",
			in:        CausesInput{Causes: domain.Causes{Absence: math.MaxInt64, Rendement: math.MaxInt64, Methode: 32}},
			wantField: "causes",
		},
		{
			name:      "matiere premiere without reference",
			in:        CausesInput{Causes: domain.Causes{MatierePremiere: 30}},
			wantField: "referenceMatierePremiere",
		},
		{
			name:      "qualite without reference",
			in:        CausesInput{Causes: domain.Causes{Qualite: 30}, CommentaireID: &com.ID},
			wantField: "referenceQualite",
		},
		{
			name:      "qualite without commentaire",
			in:        CausesInput{Causes: domain.Causes{Qualite: 30}, ReferenceQualite: "RQ-1"},
			wantField: "commentaireId",
		},
		{
			name:      "unknown commentaire",
			in:        CausesInput{Causes: domain.Causes{Absence: 30}, CommentaireID: &missing},
			wantField: "commentaireId",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.nonConfs.DeclareCauses(ctx, nc.ID, tt.in, 1)
			assertValidation(t, err, tt.wantField)
		})
	}

	assert.Equal(t, len(tests), env.metrics.CauseDeclarations["rejected"])
	assert.Zero(t, env.metrics.CauseDeclarations["accepted"])

	history, err := env.nonConfs.History(ctx, nc.ID)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestNonConformiteService_DeclareCauses(t *testing.T) {
	env := newTestEnv(t)
	env.seedReferentiel(t)
	ctx := context.Background()
	nc := env.shortfall(t, "mardi")
	userID := env.seedUser(t)
	com, err := env.commentaires.Create(ctx, "Rayure")
	require.NoError(t, err)

	t.Run("within tolerance", func(t *testing.T) {
		got, err := env.nonConfs.DeclareCauses(ctx, nc.ID, CausesInput{
			Causes:                   domain.Causes{MatierePremiere: 10, Absence: 19},
			ReferenceMatierePremiere: " MP-7 ",
		}, userID)
		require.NoError(t, err)
		assert.Equal(t, domain.NonConfSaisie, got.Statut)
		assert.Equal(t, int64(29), got.Total)
		assert.Equal(t, "MP-7", got.ReferenceMatierePremiere)
	})

	t.Run("redeclaration replaces causes and keeps history", func(t *testing.T) {
		got, err := env.nonConfs.DeclareCauses(ctx, nc.ID, CausesInput{
			Causes:           domain.Causes{Qualite: 20, Maintenance: 10},
			ReferenceQualite: "RQ-2",
			CommentaireID:    &com.ID,
			Commentaire:      "lot rebuté",
		}, userID)
		require.NoError(t, err)
		assert.Equal(t, int64(30), got.Total)
		assert.Zero(t, got.Causes.MatierePremiere)
		require.NotNil(t, got.CommentaireID)
		assert.Equal(t, com.ID, *got.CommentaireID)

		history, err := env.nonConfs.History(ctx, nc.ID)
		require.NoError(t, err)
		require.Len(t, history, 2)
		assert.Equal(t, int64(29), history[0].Total)
		assert.Equal(t, int64(30), history[1].Total)
		assert.Equal(t, userID, history[1].UserID)
	})

	t.Run("listing by statut", func(t *testing.T) {
		saisies, err := env.nonConfs.List(ctx, domain.NonConfFilter{Statut: domain.NonConfSaisie})
		require.NoError(t, err)
		assert.Len(t, saisies, 1)

		_, err = env.nonConfs.List(ctx, domain.NonConfFilter{Statut: "done"})
		assertValidation(t, err, "statut")
	})

	t.Run("commentaire in use cannot be deleted", func(t *testing.T) {
		err := env.commentaires.Delete(ctx, com.ID)
		assert.ErrorIs(t, err, ErrConflict)
	})

	assert.Equal(t, 2, env.metrics.CauseDeclarations["accepted"])

	_, err = env.nonConfs.DeclareCauses(ctx, 9999, CausesInput{}, userID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCommentaireService(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.commentaires.Create(ctx, "   ")
	assertValidation(t, err, "commentaire")

	c, err := env.commentaires.Create(ctx, " Bavure ")
	require.NoError(t, err)
	assert.Equal(t, "Bavure", c.Commentaire)

	updated, err := env.commentaires.Update(ctx, c.ID, "Bavure moule 3")
	require.NoError(t, err)
	assert.Equal(t, "Bavure moule 3", updated.Commentaire)

	_, err = env.commentaires.Update(ctx, 9999, "x")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, env.commentaires.Delete(ctx, c.ID))
	list, err := env.commentaires.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}
