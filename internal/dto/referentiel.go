package dto

import (
	"fmt"
	"strings"
	"time"

	"github.com/Olprog59/go-prodtrack/internal/domain"
)

// DateLayout is the calendar date format used on the wire / Format des dates échangées
const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD date in UTC.
func ParseDate(field, s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(s), time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: expected a date formatted as YYYY-MM-DD", field)
	}
	return t, nil
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(DateLayout)
}

// ProductDTO is a (ligne, reference) pair of the catalog / Couple (ligne, référence) du catalogue
type ProductDTO struct {
	ID        int64     `json:"id,omitempty"`
	Ligne     string    `json:"ligne"`
	Reference string    `json:"reference"`
	CreatedAt time.Time `json:"createdAt,omitzero"`
}

func ProductToDTO(p *domain.Product) ProductDTO {
	return ProductDTO{ID: p.ID, Ligne: p.Ligne, Reference: p.Reference, CreatedAt: p.CreatedAt}
}

// SemaineDTOReq creates or updates a week / Crée ou modifie une semaine
type SemaineDTOReq struct {
	Nom       string `json:"nom"`
	DateDebut string `json:"dateDebut"`
	DateFin   string `json:"dateFin"`
}

// Dates parses both bounds of the week.
func (r SemaineDTOReq) Dates() (debut, fin time.Time, err error) {
	if debut, err = ParseDate("dateDebut", r.DateDebut); err != nil {
		return
	}
	fin, err = ParseDate("dateFin", r.DateFin)
	return
}

type SemaineDTOResponse struct {
	ID        int64  `json:"id"`
	Nom       string `json:"nom"`
	DateDebut string `json:"dateDebut"`
	DateFin   string `json:"dateFin"`
}

func SemaineToDTO(s *domain.Semaine) SemaineDTOResponse {
	return SemaineDTOResponse{
		ID:        s.ID,
		Nom:       s.Nom,
		DateDebut: formatDate(s.DateDebut),
		DateFin:   formatDate(s.DateFin),
	}
}

// CommentaireDTO is a predefined quality comment / Commentaire qualité prédéfini
type CommentaireDTO struct {
	ID          int64     `json:"id,omitempty"`
	Commentaire string    `json:"commentaire"`
	CreatedAt   time.Time `json:"createdAt,omitzero"`
}

func CommentaireToDTO(c *domain.Commentaire) CommentaireDTO {
	return CommentaireDTO{ID: c.ID, Commentaire: c.Commentaire, CreatedAt: c.CreatedAt}
}

// ListToDTO maps a slice with the given converter.
func ListToDTO[T any, R any](items []T, conv func(T) R) []R {
	out := make([]R, 0, len(items))
	for _, it := range items {
		out = append(out, conv(it))
	}
	return out
}
