package repository

import (
	"strings"

	"github.com/Olprog59/go-prodtrack/internal/ports"
	"github.com/Olprog59/go-prodtrack/internal/repository/mysql"
	"github.com/Olprog59/go-prodtrack/internal/repository/sqlite"
)

// Compile-time checks: a Factory missing a repository won't compile
// Vérifications à la compilation : une Factory incomplète ne compile pas
var (
	_ DatabaseFactory = (*sqlite.Factory)(nil)
	_ DatabaseFactory = (*mysql.Factory)(nil)
)

// factoryRegistry holds all database factories / Registre de toutes les factories de BD
var factoryRegistry = map[string]DatabaseFactory{
	"sqlite":  &sqlite.Factory{},
	"sqlite3": &sqlite.Factory{},
	"mysql":   &mysql.Factory{},
}

// Adapter adapts database connection to repositories / Adapte la connexion BD vers les repositories
type Adapter struct {
	db      ports.DBTX
	factory DatabaseFactory
}

// NewAdapter creates repository adapter, MySQL when driver is unknown.
// Crée l'adapteur de repositories, MySQL si le driver est inconnu.
func NewAdapter(db ports.DBTX, driver string) *Adapter {
	factory := factoryRegistry[strings.ToLower(driver)]
	if factory == nil {
		factory = &mysql.Factory{}
	}

	return &Adapter{
		db:      db,
		factory: factory,
	}
}

func (a *Adapter) UserRepository() ports.UserRepository {
	return a.factory.NewUserRepository(a.db)
}

func (a *Adapter) RefreshTokenStore() ports.RefreshTokenStore {
	return a.factory.NewRefreshTokenStore(a.db)
}

func (a *Adapter) ProductRepository() ports.ProductRepository {
	return a.factory.NewProductRepository(a.db)
}

func (a *Adapter) SemaineRepository() ports.SemaineRepository {
	return a.factory.NewSemaineRepository(a.db)
}

func (a *Adapter) PlanificationRepository() ports.PlanificationRepository {
	return a.factory.NewPlanificationRepository(a.db)
}

func (a *Adapter) NonConformiteRepository() ports.NonConformiteRepository {
	return a.factory.NewNonConformiteRepository(a.db)
}

func (a *Adapter) CommentaireRepository() ports.CommentaireRepository {
	return a.factory.NewCommentaireRepository(a.db)
}

func (a *Adapter) OuvrierRepository() ports.OuvrierRepository {
	return a.factory.NewOuvrierRepository(a.db)
}

func (a *Adapter) StatutOuvrierRepository() ports.StatutOuvrierRepository {
	return a.factory.NewStatutOuvrierRepository(a.db)
}

func (a *Adapter) SelectionRepository() ports.SelectionRepository {
	return a.factory.NewSelectionRepository(a.db)
}

func (a *Adapter) RapportRepository() ports.RapportRepository {
	return a.factory.NewRapportRepository(a.db)
}

func (a *Adapter) ActivityRepository() ports.ActivityRepository {
	return a.factory.NewActivityRepository(a.db)
}
