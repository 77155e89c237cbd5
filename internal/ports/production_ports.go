package ports

import (
	"context"
	"time"

	"github.com/Olprog59/go-prodtrack/internal/domain"
)

// ProductRepository manages the (ligne, reference) catalog / Gère le catalogue (ligne, référence)
type ProductRepository interface {
	Create(ctx context.Context, p *domain.Product) (*domain.Product, error)
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	// Exists reports whether the pair is in the catalog / Indique si le couple existe
	Exists(ctx context.Context, ligne, reference string) (bool, error)
	List(ctx context.Context, ligne string) ([]*domain.Product, error)
	ListLignes(ctx context.Context) ([]string, error)
	Update(ctx context.Context, p *domain.Product) error
	Delete(ctx context.Context, id int64) error
}

// SemaineRepository manages production weeks / Gère les semaines de production
type SemaineRepository interface {
	Create(ctx context.Context, s *domain.Semaine) (*domain.Semaine, error)
	GetByID(ctx context.Context, id int64) (*domain.Semaine, error)
	GetByNom(ctx context.Context, nom string) (*domain.Semaine, error)
	// GetContaining returns the week whose range holds the date / Retourne la semaine contenant la date
	GetContaining(ctx context.Context, date time.Time) (*domain.Semaine, error)
	// List returns all weeks ordered by start date / Retourne les semaines triées par date de début
	List(ctx context.Context) ([]*domain.Semaine, error)
	Update(ctx context.Context, s *domain.Semaine) error
	Delete(ctx context.Context, id int64) error
}

// PlanificationRepository manages planned production orders / Gère les ordres de production planifiés
type PlanificationRepository interface {
	Create(ctx context.Context, p *domain.Planification) (*domain.Planification, error)
	GetByID(ctx context.Context, id int64) (*domain.Planification, error)
	// GetBySlot finds a planification by its unique (semaine, jour, ligne, reference) key
	GetBySlot(ctx context.Context, semaine string, jour domain.Jour, ligne, reference string) (*domain.Planification, error)
	List(ctx context.Context, filter domain.PlanificationFilter) ([]*domain.Planification, error)
	// Update persists planning, declaration and derived fields / Persiste tous les champs modifiables
	Update(ctx context.Context, p *domain.Planification) error
	Delete(ctx context.Context, id int64) error
	WithTx(dbtx DBTX) PlanificationRepository
}

// NonConformiteRepository manages non-conformities and their cause history
// Gère les non-conformités et l'historique des saisies de causes
type NonConformiteRepository interface {
	Create(ctx context.Context, nc *domain.NonConformite) (*domain.NonConformite, error)
	GetByID(ctx context.Context, id int64) (*domain.NonConformite, error)
	GetByPlanification(ctx context.Context, planificationID int64) (*domain.NonConformite, error)
	List(ctx context.Context, filter domain.NonConfFilter) ([]*domain.NonConformite, error)
	// UpdateDelta refreshes the copied delta and statut / Met à jour le delta copié et le statut
	UpdateDelta(ctx context.Context, id int64, deltaProd int64, statut domain.NonConfStatut) error
	// UpdateCauses stores a cause declaration / Enregistre une saisie des causes
	UpdateCauses(ctx context.Context, nc *domain.NonConformite) error
	Delete(ctx context.Context, id int64) error
	// AddSaisie appends a history row / Ajoute une ligne d'historique
	AddSaisie(ctx context.Context, s *domain.SaisieNonConf) (*domain.SaisieNonConf, error)
	ListSaisies(ctx context.Context, nonConformiteID int64) ([]*domain.SaisieNonConf, error)
	WithTx(dbtx DBTX) NonConformiteRepository
}

// CommentaireRepository manages the quality comment catalog / Gère le catalogue des commentaires qualité
type CommentaireRepository interface {
	Create(ctx context.Context, c *domain.Commentaire) (*domain.Commentaire, error)
	GetByID(ctx context.Context, id int64) (*domain.Commentaire, error)
	List(ctx context.Context) ([]*domain.Commentaire, error)
	Update(ctx context.Context, c *domain.Commentaire) error
	// Delete fails with db.ErrForeignKeyViolation when referenced / Échoue si référencé
	Delete(ctx context.Context, id int64) error
	// InUse reports whether a non-conformity references the comment
	InUse(ctx context.Context, id int64) (bool, error)
}
