package dto

import (
	"time"

	"github.com/Olprog59/go-prodtrack/internal/domain"
	"github.com/Olprog59/go-prodtrack/internal/service"
)

// PlanificationDTOReq is one planned order / Un ordre planifié
type PlanificationDTOReq struct {
	Semaine            string  `json:"semaine"`
	Jour               string  `json:"jour"`
	Ligne              string  `json:"ligne"`
	Reference          string  `json:"reference"`
	OF                 string  `json:"of"`
	QtePlanifiee       int64   `json:"qtePlanifiee"`
	QteModifiee        int64   `json:"qteModifiee"`
	NbOperateurs       int     `json:"nbOperateurs"`
	NbHeuresPlanifiees float64 `json:"nbHeuresPlanifiees"`
	Emballage          string  `json:"emballage"`
}

func (r PlanificationDTOReq) ToInput() service.PlanificationInput {
	return service.PlanificationInput{
		Semaine:            r.Semaine,
		Jour:               r.Jour,
		Ligne:              r.Ligne,
		Reference:          r.Reference,
		OF:                 r.OF,
		QtePlanifiee:       r.QtePlanifiee,
		QteModifiee:        r.QteModifiee,
		NbOperateurs:       r.NbOperateurs,
		NbHeuresPlanifiees: r.NbHeuresPlanifiees,
		Emballage:          r.Emballage,
	}
}

// PlanningUpdateDTOReq edits the planning fields of an order. The slot is fixed.
type PlanningUpdateDTOReq struct {
	OF                 string  `json:"of"`
	QtePlanifiee       int64   `json:"qtePlanifiee"`
	QteModifiee        int64   `json:"qteModifiee"`
	NbOperateurs       int     `json:"nbOperateurs"`
	NbHeuresPlanifiees float64 `json:"nbHeuresPlanifiees"`
	Emballage          string  `json:"emballage"`
}

func (r PlanningUpdateDTOReq) ToUpdate() service.PlanningUpdate {
	return service.PlanningUpdate{
		OF:                 r.OF,
		QtePlanifiee:       r.QtePlanifiee,
		QteModifiee:        r.QteModifiee,
		NbOperateurs:       r.NbOperateurs,
		NbHeuresPlanifiees: r.NbHeuresPlanifiees,
		Emballage:          r.Emballage,
	}
}

// DeclarationDTOReq is a production declaration / Déclaration de production
type DeclarationDTOReq struct {
	DecProduction int64 `json:"decProduction"`
	DecMagasin    int64 `json:"decMagasin"`
}

type PlanificationDTOResponse struct {
	ID                 int64     `json:"id"`
	Semaine            string    `json:"semaine"`
	Jour               string    `json:"jour"`
	Ligne              string    `json:"ligne"`
	Reference          string    `json:"reference"`
	OF                 string    `json:"of"`
	QtePlanifiee       int64     `json:"qtePlanifiee"`
	QteModifiee        int64     `json:"qteModifiee"`
	DecProduction      int64     `json:"decProduction"`
	DecMagasin         int64     `json:"decMagasin"`
	Declared           bool      `json:"declared"`
	DeltaProd          int64     `json:"deltaProd"`
	PcsProd            float64   `json:"pcsProd"`
	NbOperateurs       int       `json:"nbOperateurs"`
	NbHeuresPlanifiees float64   `json:"nbHeuresPlanifiees"`
	Emballage          string    `json:"emballage"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

func PlanificationToDTO(p *domain.Planification) PlanificationDTOResponse {
	return PlanificationDTOResponse{
		ID:                 p.ID,
		Semaine:            p.Semaine,
		Jour:               string(p.Jour),
		Ligne:              p.Ligne,
		Reference:          p.Reference,
		OF:                 p.OF,
		QtePlanifiee:       p.QtePlanifiee,
		QteModifiee:        p.QteModifiee,
		DecProduction:      p.DecProduction,
		DecMagasin:         p.DecMagasin,
		Declared:           p.Declared,
		DeltaProd:          p.DeltaProd,
		PcsProd:            p.PcsProd,
		NbOperateurs:       p.NbOperateurs,
		NbHeuresPlanifiees: p.NbHeuresPlanifiees,
		Emballage:          p.Emballage,
		UpdatedAt:          p.UpdatedAt,
	}
}

// CausesDTOReq is a 7M declaration / Saisie des causes 7M
// The seven quantities are flattened from domain.Causes.
type CausesDTOReq struct {
	domain.Causes
	ReferenceMatierePremiere string `json:"referenceMatierePremiere"`
	ReferenceQualite         string `json:"referenceQualite"`
	CommentaireID            *int64 `json:"commentaireId"`
	Commentaire              string `json:"commentaire"`
}

func (r CausesDTOReq) ToInput() service.CausesInput {
	return service.CausesInput{
		Causes:                   r.Causes,
		ReferenceMatierePremiere: r.ReferenceMatierePremiere,
		ReferenceQualite:         r.ReferenceQualite,
		CommentaireID:            r.CommentaireID,
		Commentaire:              r.Commentaire,
	}
}

type NonConformiteDTOResponse struct {
	ID                       int64         `json:"id"`
	PlanificationID          int64         `json:"planificationId"`
	Semaine                  string        `json:"semaine"`
	Jour                     string        `json:"jour"`
	Ligne                    string        `json:"ligne"`
	Reference                string        `json:"reference"`
	DeltaProd                int64         `json:"deltaProd"`
	Causes                   domain.Causes `json:"causes"`
	Total                    int64         `json:"total"`
	ReferenceMatierePremiere string        `json:"referenceMatierePremiere,omitempty"`
	ReferenceQualite         string        `json:"referenceQualite,omitempty"`
	CommentaireID            *int64        `json:"commentaireId,omitempty"`
	Commentaire              string        `json:"commentaire,omitempty"`
	Statut                   string        `json:"statut"`
	UpdatedAt                time.Time     `json:"updatedAt"`
}

func NonConformiteToDTO(n *domain.NonConformite) NonConformiteDTOResponse {
	return NonConformiteDTOResponse{
		ID:                       n.ID,
		PlanificationID:          n.PlanificationID,
		Semaine:                  n.Semaine,
		Jour:                     string(n.Jour),
		Ligne:                    n.Ligne,
		Reference:                n.Reference,
		DeltaProd:                n.DeltaProd,
		Causes:                   n.Causes,
		Total:                    n.Total,
		ReferenceMatierePremiere: n.ReferenceMatierePremiere,
		ReferenceQualite:         n.ReferenceQualite,
		CommentaireID:            n.CommentaireID,
		Commentaire:              n.Commentaire,
		Statut:                   string(n.Statut),
		UpdatedAt:                n.UpdatedAt,
	}
}

// SaisieDTOResponse is one entry of a non-conformity history.
type SaisieDTOResponse struct {
	ID        int64         `json:"id"`
	UserID    int64         `json:"userId"`
	Causes    domain.Causes `json:"causes"`
	Total     int64         `json:"total"`
	CreatedAt time.Time     `json:"createdAt"`
}

func SaisieToDTO(s *domain.SaisieNonConf) SaisieDTOResponse {
	return SaisieDTOResponse{
		ID:        s.ID,
		UserID:    s.UserID,
		Causes:    s.Causes,
		Total:     s.Total,
		CreatedAt: s.CreatedAt,
	}
}
