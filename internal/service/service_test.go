package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/Olprog59/go-prodtrack/internal/config"
	"github.com/Olprog59/go-prodtrack/internal/domain"
	"github.com/Olprog59/go-prodtrack/internal/mocks"
	"github.com/Olprog59/go-prodtrack/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// monday is the first day of semaine6 in every fixture.
var monday = time.Date(2025, time.February, 3, 0, 0, 0, 0, time.UTC)

func testConfig() *config.Config {
	return &config.Config{
		Environment: "test",
		Auth: config.AuthConfig{
			JWTSecret:            "test-secret-key-min-32-chars-long-1234567890",
			AccessTokenDuration:  15 * time.Minute,
			RefreshTokenDuration: 24 * time.Hour,
		},
		Security: config.SecurityConfig{
			MaxFailedAttempts: 3,
			LockoutDuration:   15 * time.Minute,
			BcryptCost:        bcrypt.MinCost,
		},
		Production: config.ProductionConfig{DeltaTolerance: 1, MaxHeuresJour: 8},
	}
}

// testEnv wires every production service over a migrated in-memory database.
type testEnv struct {
	db      *sql.DB
	adapter *repository.Adapter
	conf    *config.Config
	metrics *mocks.MockMetrics

	products       *ProductService
	semaines       *SemaineService
	planifications *PlanificationService
	nonConfs       *NonConformiteService
	commentaires   *CommentaireService
	ouvriers       *OuvrierService
	selections     *SelectionService
	rapports       *RapportService
	activity       *ActivityService
	stats          *StatsService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	database, a := repository.NewTestAdapter(t)
	conf := testConfig()
	m := mocks.NewMockMetrics()

	return &testEnv{
		db:             database,
		adapter:        a,
		conf:           conf,
		metrics:        m,
		products:       NewProductService(a.ProductRepository()),
		semaines:       NewSemaineService(a.SemaineRepository(), a.PlanificationRepository(), a.SelectionRepository(), a.RapportRepository()),
		planifications: NewPlanificationService(database, a.PlanificationRepository(), a.NonConformiteRepository(), a.SemaineRepository(), a.ProductRepository(), conf, m),
		nonConfs:       NewNonConformiteService(database, a.NonConformiteRepository(), a.CommentaireRepository(), conf, m),
		commentaires:   NewCommentaireService(a.CommentaireRepository()),
		ouvriers:       NewOuvrierService(a.OuvrierRepository(), a.StatutOuvrierRepository()),
		selections:     NewSelectionService(database, a.SelectionRepository(), a.PlanificationRepository(), a.SemaineRepository(), a.OuvrierRepository(), a.StatutOuvrierRepository(), conf),
		rapports:       NewRapportService(a.RapportRepository(), a.SemaineRepository(), a.OuvrierRepository(), conf),
		activity:       NewActivityService(a.ActivityRepository()),
		stats:          NewStatsService(a.SemaineRepository(), a.PlanificationRepository(), a.NonConformiteRepository(), a.StatutOuvrierRepository(), m),
	}
}

// seedReferentiel creates semaine6 (monday to saturday) and products
// L1/REF-A, L1/REF-B and L2/REF-C.
func (e *testEnv) seedReferentiel(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	_, err := e.semaines.Create(ctx, "semaine6", monday, monday.AddDate(0, 0, 5))
	require.NoError(t, err)
	for _, p := range [][2]string{{"L1", "REF-A"}, {"L1", "REF-B"}, {"L2", "REF-C"}} {
		_, err := e.products.Create(ctx, p[0], p[1])
		require.NoError(t, err)
	}
}

func (e *testEnv) plan(t *testing.T, jour, ligne, reference string, qte int64) *domain.Planification {
	t.Helper()
	p, err := e.planifications.Create(context.Background(), PlanificationInput{
		Semaine: "semaine6", Jour: jour, Ligne: ligne, Reference: reference, QtePlanifiee: qte,
	})
	require.NoError(t, err)
	return p
}

// seedUser inserts a user directly, foreign keys of history rows need one.
func (e *testEnv) seedUser(t *testing.T) int64 {
	t.Helper()
	u, err := e.adapter.UserRepository().Create(context.Background(), &domain.User{
		Email: "chef@plant.local", Nom: "Chef", Password: "x",
	})
	require.NoError(t, err)
	return u.ID
}

func assertValidation(t *testing.T, err error, field string) {
	t.Helper()
	var verr *ValidationError
	if assert.True(t, errors.As(err, &verr), "expected *ValidationError, got %v", err) {
		assert.Equal(t, field, verr.Field)
	}
}
