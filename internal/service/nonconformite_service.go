package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"

	"github.com/Olprog59/go-prodtrack/internal/config"
	"github.com/Olprog59/go-prodtrack/internal/domain"
	"github.com/Olprog59/go-prodtrack/internal/ports"
	"github.com/Olprog59/go-prodtrack/internal/repository"
)

// NonConformiteService handles 7M cause declarations / Gère les saisies de causes 7M
type NonConformiteService struct {
	db           ports.TxBeginner
	ncs          ports.NonConformiteRepository
	commentaires ports.CommentaireRepository
	conf         *config.Config
	metrics      ProductionMetricsRecorder
}

func NewNonConformiteService(
	db ports.TxBeginner,
	ncs ports.NonConformiteRepository,
	commentaires ports.CommentaireRepository,
	conf *config.Config,
	metrics ProductionMetricsRecorder,
) *NonConformiteService {
	return &NonConformiteService{
		db:           db,
		ncs:          ncs,
		commentaires: commentaires,
		conf:         conf,
		metrics:      metrics,
	}
}

// CausesInput is a cause declaration / Saisie des causes
type CausesInput struct {
	Causes                   domain.Causes
	ReferenceMatierePremiere string
	ReferenceQualite         string
	CommentaireID            *int64
	Commentaire              string
}

func (s *NonConformiteService) Get(ctx context.Context, id int64) (*domain.NonConformite, error) {
	nc, err := s.ncs.GetByID(ctx, id)
	if err != nil {
		return nil, repoError("non-conformity", err)
	}
	return nc, nil
}

// GetByPlanification returns the non-conformity of a planification.
func (s *NonConformiteService) GetByPlanification(ctx context.Context, planificationID int64) (*domain.NonConformite, error) {
	nc, err := s.ncs.GetByPlanification(ctx, planificationID)
	if err != nil {
		return nil, repoError("non-conformity", err)
	}
	return nc, nil
}

func (s *NonConformiteService) List(ctx context.Context, filter domain.NonConfFilter) ([]*domain.NonConformite, error) {
	if filter.Statut != "" && !filter.Statut.IsValid() {
		return nil, invalid("statut", "must be a_saisir or saisie")
	}
	list, err := s.ncs.List(ctx, filter)
	if err != nil {
		return nil, repoError("non-conformity", err)
	}
	return list, nil
}

// History lists the cause declarations of a non-conformity, oldest first.
func (s *NonConformiteService) History(ctx context.Context, id int64) ([]*domain.SaisieNonConf, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	list, err := s.ncs.ListSaisies(ctx, id)
	if err != nil {
		return nil, repoError("non-conformity", err)
	}
	return list, nil
}

// DeclareCauses stores the 7M breakdown of a shortfall and appends it to the
// history. The causes must cover |deltaProd| within the configured tolerance.
// Enregistre la répartition 7M d'un écart et l'ajoute à l'historique.
func (s *NonConformiteService) DeclareCauses(ctx context.Context, id int64, in CausesInput, userID int64) (*domain.NonConformite, error) {
	nc, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.validateCauses(ctx, nc, &in); err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			s.metrics.RecordCauseDeclaration("rejected")
		}
		return nil, err
	}

	nc.Causes = in.Causes
	nc.Total = in.Causes.Total()
	nc.ReferenceMatierePremiere = in.ReferenceMatierePremiere
	nc.ReferenceQualite = in.ReferenceQualite
	nc.CommentaireID = in.CommentaireID
	nc.Commentaire = in.Commentaire
	nc.Statut = domain.NonConfSaisie

	err = withTx(ctx, s.db, func(tx *sql.Tx) error {
		ncs := s.ncs.WithTx(tx)
		if err := ncs.UpdateCauses(ctx, nc); err != nil {
			return repoError("non-conformity", err)
		}
		_, err := ncs.AddSaisie(ctx, &domain.SaisieNonConf{
			NonConformiteID: nc.ID,
			UserID:          userID,
			Causes:          nc.Causes,
			Total:           nc.Total,
		})
		return repoError("non-conformity history", err)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordCauseDeclaration("accepted")
	slog.Info("causes declared", "non_conformite_id", nc.ID, "total", nc.Total, "user_id", userID)
	return s.Get(ctx, id)
}

// validateCauses normalizes in and checks the declaration rules.
func (s *NonConformiteService) validateCauses(ctx context.Context, nc *domain.NonConformite, in *CausesInput) error {
	for _, c := range domain.AllCauses() {
		if in.Causes.Get(c) < 0 {
			return invalid(string(c), "must be >= 0")
		}
	}

	in.ReferenceMatierePremiere = strings.TrimSpace(in.ReferenceMatierePremiere)
	in.ReferenceQualite = strings.TrimSpace(in.ReferenceQualite)
	in.Commentaire = strings.TrimSpace(in.Commentaire)

	tolerance := s.conf.Production.DeltaTolerance
	total, ok := in.Causes.CheckedTotal()
	if !ok {
		return invalid("causes", "total overflows, |deltaProd| is %d", domain.Abs64(nc.DeltaProd))
	}
	if !domain.CausesMatchDelta(total, nc.DeltaProd, tolerance) {
		return invalid("causes", "total %d must equal |deltaProd| %d within %d", total, domain.Abs64(nc.DeltaProd), tolerance)
	}

	if in.Causes.MatierePremiere > 0 && in.ReferenceMatierePremiere == "" {
		return invalid("referenceMatierePremiere", "is required when matierePremiere > 0")
	}

	if in.Causes.Qualite > 0 {
		if in.ReferenceQualite == "" {
			return invalid("referenceQualite", "is required when qualite > 0")
		}
		if in.CommentaireID == nil {
			return invalid("commentaireId", "is required when qualite > 0")
		}
	}

	if in.CommentaireID != nil {
		_, err := s.commentaires.GetByID(ctx, *in.CommentaireID)
		if errors.Is(err, repository.ErrNoRecord) {
			return invalid("commentaireId", "unknown commentaire %d", *in.CommentaireID)
		} else if err != nil {
			return repoError("commentaire", err)
		}
	}
	return nil
}

// Delete removes a non-conformity and its history.
func (s *NonConformiteService) Delete(ctx context.Context, id int64) error {
	return repoError("non-conformity", s.ncs.Delete(ctx, id))
}

// CommentaireService manages the quality comment catalog / Gère le catalogue des commentaires qualité
type CommentaireService struct {
	repo ports.CommentaireRepository
}

func NewCommentaireService(repo ports.CommentaireRepository) *CommentaireService {
	return &CommentaireService{repo: repo}
}

func (s *CommentaireService) Create(ctx context.Context, text string) (*domain.Commentaire, error) {
	t, err := required("commentaire", text)
	if err != nil {
		return nil, err
	}
	c, err := s.repo.Create(ctx, &domain.Commentaire{Commentaire: t})
	if err != nil {
		return nil, repoError("commentaire", err)
	}
	return c, nil
}

func (s *CommentaireService) Get(ctx context.Context, id int64) (*domain.Commentaire, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, repoError("commentaire", err)
	}
	return c, nil
}

func (s *CommentaireService) List(ctx context.Context) ([]*domain.Commentaire, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, repoError("commentaire", err)
	}
	return list, nil
}

func (s *CommentaireService) Update(ctx context.Context, id int64, text string) (*domain.Commentaire, error) {
	t, err := required("commentaire", text)
	if err != nil {
		return nil, err
	}
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	c.Commentaire = t
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, repoError("commentaire", err)
	}
	return c, nil
}

// Delete refuses to remove a comment referenced by a non-conformity.
func (s *CommentaireService) Delete(ctx context.Context, id int64) error {
	inUse, err := s.repo.InUse(ctx, id)
	if err != nil {
		return repoError("commentaire", err)
	}
	if inUse {
		return conflict("commentaire is used by non-conformities")
	}
	return repoError("commentaire", s.repo.Delete(ctx, id))
}
