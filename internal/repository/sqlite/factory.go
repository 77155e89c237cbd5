package sqlite

import (
	"github.com/Olprog59/go-prodtrack/internal/ports"
	"github.com/Olprog59/go-prodtrack/internal/repository/sqlstore"
)

// Factory implements DatabaseFactory for SQLite / Implémente DatabaseFactory pour SQLite
// The compile-time check is in adapter.go to avoid import cycles
// La vérification à la compilation est dans adapter.go pour éviter les cycles d'imports
type Factory struct{}

func (f *Factory) NewUserRepository(db ports.DBTX) ports.UserRepository {
	return sqlstore.NewUserRepository(db, handleError)
}

func (f *Factory) NewRefreshTokenStore(db ports.DBTX) ports.RefreshTokenStore {
	return sqlstore.NewRefreshTokenStore(db, handleError)
}

func (f *Factory) NewProductRepository(db ports.DBTX) ports.ProductRepository {
	return sqlstore.NewProductRepository(db, handleError)
}

func (f *Factory) NewSemaineRepository(db ports.DBTX) ports.SemaineRepository {
	return sqlstore.NewSemaineRepository(db, handleError)
}

func (f *Factory) NewPlanificationRepository(db ports.DBTX) ports.PlanificationRepository {
	return sqlstore.NewPlanificationRepository(db, handleError)
}

func (f *Factory) NewNonConformiteRepository(db ports.DBTX) ports.NonConformiteRepository {
	return sqlstore.NewNonConformiteRepository(db, handleError)
}

func (f *Factory) NewCommentaireRepository(db ports.DBTX) ports.CommentaireRepository {
	return sqlstore.NewCommentaireRepository(db, handleError)
}

func (f *Factory) NewOuvrierRepository(db ports.DBTX) ports.OuvrierRepository {
	return sqlstore.NewOuvrierRepository(db, handleError)
}

func (f *Factory) NewStatutOuvrierRepository(db ports.DBTX) ports.StatutOuvrierRepository {
	return sqlstore.NewStatutOuvrierRepository(db, handleError)
}

func (f *Factory) NewSelectionRepository(db ports.DBTX) ports.SelectionRepository {
	return sqlstore.NewSelectionRepository(db, handleError)
}

func (f *Factory) NewRapportRepository(db ports.DBTX) ports.RapportRepository {
	return sqlstore.NewRapportRepository(db, handleError)
}

func (f *Factory) NewActivityRepository(db ports.DBTX) ports.ActivityRepository {
	return sqlstore.NewActivityRepository(db, handleError)
}
