package domain

import "time"

// Phase is the time a worker spent on one operation / Temps passé sur une opération
type Phase struct {
	Phase  string  `json:"phase"`
	Heures float64 `json:"heures"`
}

// SaisieRapport is a worker's daily report on a line.
// SaisieRapport est le rapport journalier d'un ouvrier sur une ligne.
type SaisieRapport struct {
	ID          int64
	Semaine     string
	Jour        Jour
	Ligne       string
	Matricule   int64
	NomPrenom   string
	Phases      []Phase
	TotalHeures float64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// SumHeures returns the total hours of all phases, rounded to 2 places.
func SumHeures(phases []Phase) float64 {
	var total float64
	for _, p := range phases {
		total += p.Heures
	}
	return Round2(total)
}
