package dto

import (
	"time"

	"github.com/Olprog59/go-prodtrack/internal/domain"
	"github.com/Olprog59/go-prodtrack/internal/service"
)

// OuvrierDTO is a worker of the plant / Ouvrier de l'usine
type OuvrierDTO struct {
	Matricule int64     `json:"matricule"`
	NomPrenom string    `json:"nomPrenom"`
	Ligne     string    `json:"ligne"`
	Poste     string    `json:"poste"`
	CreatedAt time.Time `json:"createdAt,omitzero"`
}

func (o OuvrierDTO) ToInput() service.OuvrierInput {
	return service.OuvrierInput{
		Matricule: o.Matricule,
		NomPrenom: o.NomPrenom,
		Ligne:     o.Ligne,
		Poste:     o.Poste,
	}
}

func OuvrierToDTO(o *domain.Ouvrier) OuvrierDTO {
	return OuvrierDTO{
		Matricule: o.Matricule,
		NomPrenom: o.NomPrenom,
		Ligne:     o.Ligne,
		Poste:     o.Poste,
		CreatedAt: o.CreatedAt,
	}
}

// StatutDTOReq sets the attendance of a worker for a day / Statut d'un ouvrier pour un jour
type StatutDTOReq struct {
	Matricule int64  `json:"matricule"`
	Date      string `json:"date"`
	Statut    string `json:"statut"`
}

type StatutDTOResponse struct {
	ID        int64  `json:"id"`
	Matricule int64  `json:"matricule"`
	NomPrenom string `json:"nomPrenom"`
	Date      string `json:"date"`
	Statut    string `json:"statut"`
}

func StatutToDTO(s *domain.StatutOuvrier) StatutDTOResponse {
	return StatutDTOResponse{
		ID:        s.ID,
		Matricule: s.Matricule,
		NomPrenom: s.NomPrenom,
		Date:      formatDate(s.Date),
		Statut:    string(s.Statut),
	}
}

// SelectionDTO assigns a worker to a planned slot / Affecte un ouvrier à un créneau planifié
type SelectionDTO struct {
	ID        int64   `json:"id,omitempty"`
	Semaine   string  `json:"semaine"`
	Jour      string  `json:"jour"`
	Ligne     string  `json:"ligne"`
	Reference string  `json:"reference"`
	Matricule int64   `json:"matricule"`
	NomPrenom string  `json:"nomPrenom,omitempty"`
	Phase     string  `json:"phase"`
	Heures    float64 `json:"heures"`
}

func (s SelectionDTO) ToInput() service.SelectionInput {
	return service.SelectionInput{
		Semaine:   s.Semaine,
		Jour:      s.Jour,
		Ligne:     s.Ligne,
		Reference: s.Reference,
		Matricule: s.Matricule,
		Phase:     s.Phase,
		Heures:    s.Heures,
	}
}

func SelectionToDTO(s *domain.PlanningSelection) SelectionDTO {
	return SelectionDTO{
		ID:        s.ID,
		Semaine:   s.Semaine,
		Jour:      string(s.Jour),
		Ligne:     s.Ligne,
		Reference: s.Reference,
		Matricule: s.Matricule,
		NomPrenom: s.NomPrenom,
		Phase:     s.Phase,
		Heures:    s.Heures,
	}
}

// RapportDTO is a worker's daily report / Rapport journalier d'un ouvrier
type RapportDTO struct {
	ID          int64          `json:"id,omitempty"`
	Semaine     string         `json:"semaine"`
	Jour        string         `json:"jour"`
	Ligne       string         `json:"ligne"`
	Matricule   int64          `json:"matricule"`
	NomPrenom   string         `json:"nomPrenom,omitempty"`
	Phases      []domain.Phase `json:"phases"`
	TotalHeures float64        `json:"totalHeures,omitempty"`
}

func (r RapportDTO) ToInput() service.RapportInput {
	return service.RapportInput{
		Semaine:   r.Semaine,
		Jour:      r.Jour,
		Ligne:     r.Ligne,
		Matricule: r.Matricule,
		Phases:    r.Phases,
	}
}

func RapportToDTO(r *domain.SaisieRapport) RapportDTO {
	return RapportDTO{
		ID:          r.ID,
		Semaine:     r.Semaine,
		Jour:        string(r.Jour),
		Ligne:       r.Ligne,
		Matricule:   r.Matricule,
		NomPrenom:   r.NomPrenom,
		Phases:      r.Phases,
		TotalHeures: r.TotalHeures,
	}
}
