package domain

import "time"

// PlanningSelection assigns a worker to a planification slot.
// PlanningSelection affecte un ouvrier à un créneau de planification.
type PlanningSelection struct {
	ID        int64
	Semaine   string
	Jour      Jour
	Ligne     string
	Reference string
	Matricule int64
	NomPrenom string
	Phase     string
	Heures    float64
	CreatedAt time.Time
}

// SelectionFilter narrows selection listings.
type SelectionFilter struct {
	Semaine string
	Jour    Jour
	Ligne   string
}
