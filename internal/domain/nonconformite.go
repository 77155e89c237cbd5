package domain

import (
	"math"
	"time"
)

// Cause identifies one of the 7M root-cause categories / Catégorie de cause 7M
type Cause string

const (
	CauseMatierePremiere Cause = "matiere_premiere"
	CauseAbsence         Cause = "absence"
	CauseRendement       Cause = "rendement"
	CauseMethode         Cause = "methode"
	CauseMaintenance     Cause = "maintenance"
	CauseQualite         Cause = "qualite"
	CauseEnvironnement   Cause = "environnement"
)

// AllCauses returns the 7M causes in display order.
func AllCauses() []Cause {
	return []Cause{
		CauseMatierePremiere,
		CauseAbsence,
		CauseRendement,
		CauseMethode,
		CauseMaintenance,
		CauseQualite,
		CauseEnvironnement,
	}
}

// Causes holds the quantities lost per 7M category / Quantités perdues par catégorie 7M
type Causes struct {
	MatierePremiere int64 `json:"matierePremiere"`
	Absence         int64 `json:"absence"`
	Rendement       int64 `json:"rendement"`
	Methode         int64 `json:"methode"`
	Maintenance     int64 `json:"maintenance"`
	Qualite         int64 `json:"qualite"`
	Environnement   int64 `json:"environnement"`
}

// Total sums all causes / Somme de toutes les causes
func (c Causes) Total() int64 {
	return c.MatierePremiere + c.Absence + c.Rendement + c.Methode +
		c.Maintenance + c.Qualite + c.Environnement
}

// CheckedTotal sums all causes and reports false when the sum overflows int64.
func (c Causes) CheckedTotal() (int64, bool) {
	var total int64
	for _, cause := range AllCauses() {
		v := c.Get(cause)
		if (v > 0 && total > math.MaxInt64-v) || (v < 0 && total < math.MinInt64-v) {
			return 0, false
		}
		total += v
	}
	return total, true
}

// Get returns the quantity of a single cause.
func (c Causes) Get(cause Cause) int64 {
	switch cause {
	case CauseMatierePremiere:
		return c.MatierePremiere
	case CauseAbsence:
		return c.Absence
	case CauseRendement:
		return c.Rendement
	case CauseMethode:
		return c.Methode
	case CauseMaintenance:
		return c.Maintenance
	case CauseQualite:
		return c.Qualite
	case CauseEnvironnement:
		return c.Environnement
	}
	return 0
}

// Add returns the field-wise sum of two cause sets.
func (c Causes) Add(o Causes) Causes {
	return Causes{
		MatierePremiere: c.MatierePremiere + o.MatierePremiere,
		Absence:         c.Absence + o.Absence,
		Rendement:       c.Rendement + o.Rendement,
		Methode:         c.Methode + o.Methode,
		Maintenance:     c.Maintenance + o.Maintenance,
		Qualite:         c.Qualite + o.Qualite,
		Environnement:   c.Environnement + o.Environnement,
	}
}

// NonConfStatut tracks whether causes were declared / Indique si les causes ont été saisies
type NonConfStatut string

const (
	NonConfASaisir NonConfStatut = "a_saisir"
	NonConfSaisie  NonConfStatut = "saisie"
)

// IsValid checks if statut is known / Vérifie si le statut est connu
func (s NonConfStatut) IsValid() bool {
	return s == NonConfASaisir || s == NonConfSaisie
}

// NonConformite is the production shortfall report of one planification.
// NonConformite est le rapport d'écart de production d'une planification.
type NonConformite struct {
	ID                       int64
	PlanificationID          int64
	Semaine                  string
	Jour                     Jour
	Ligne                    string
	Reference                string
	DeltaProd                int64
	Causes                   Causes
	Total                    int64
	ReferenceMatierePremiere string
	ReferenceQualite         string
	CommentaireID            *int64
	Commentaire              string
	Statut                   NonConfStatut
	CreatedAt                time.Time
	UpdatedAt                time.Time
}

// Matches reports whether the declared total covers |DeltaProd| within tolerance.
func (n *NonConformite) Matches(tolerance int64) bool {
	return CausesMatchDelta(n.Total, n.DeltaProd, tolerance)
}

// CausesMatchDelta checks |total - |delta|| <= tolerance.
func CausesMatchDelta(total, delta, tolerance int64) bool {
	diff := total - Abs64(delta)
	return Abs64(diff) <= tolerance
}

// Abs64 returns |v|.
func Abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

// SyncAction is what must happen to a planification's non-conformity after its deltaProd changed.
type SyncAction int

const (
	SyncNone SyncAction = iota
	SyncCreate
	SyncUpdate
	SyncDelete
)

func (a SyncAction) String() string {
	switch a {
	case SyncCreate:
		return "created"
	case SyncUpdate:
		return "updated"
	case SyncDelete:
		return "deleted"
	}
	return "none"
}

// DecideSync picks the non-conformity action for a new deltaProd.
// DecideSync choisit l'action sur la non-conformité pour un nouveau deltaProd.
func DecideSync(exists bool, delta int64) SyncAction {
	switch {
	case delta < 0 && !exists:
		return SyncCreate
	case delta < 0 && exists:
		return SyncUpdate
	case delta >= 0 && exists:
		return SyncDelete
	}
	return SyncNone
}

// NonConfFilter narrows non-conformity listings.
type NonConfFilter struct {
	Semaine string
	Ligne   string
	Statut  NonConfStatut
}

// SaisieNonConf is one cause-declaration submission, kept as history.
// SaisieNonConf est une saisie de causes, conservée en historique.
type SaisieNonConf struct {
	ID              int64
	NonConformiteID int64
	UserID          int64
	Causes          Causes
	Total           int64
	CreatedAt       time.Time
}

// Commentaire is a predefined quality comment / Commentaire qualité prédéfini
type Commentaire struct {
	ID          int64
	Commentaire string
	CreatedAt   time.Time
}
