package domain

import "time"

// Ouvrier is a plant worker identified by badge number / Ouvrier identifié par son matricule
type Ouvrier struct {
	Matricule int64
	NomPrenom string
	Ligne     string
	Poste     string
	CreatedAt time.Time
}

// OuvrierFilter narrows worker listings.
type OuvrierFilter struct {
	Ligne  string
	Search string // substring of NomPrenom
}

// StatutCode is a worker's attendance status for a day / Statut de présence journalier
type StatutCode string

const (
	StatutPresent StatutCode = "P"
	StatutAbsent  StatutCode = "AB"
	StatutConge   StatutCode = "C"
	StatutMaladie StatutCode = "M"
	StatutSortie  StatutCode = "S"
)

// AllStatuts returns known statuts in display order.
func AllStatuts() []StatutCode {
	return []StatutCode{StatutPresent, StatutAbsent, StatutConge, StatutMaladie, StatutSortie}
}

// IsValid checks if code is known / Vérifie si le code est connu
func (s StatutCode) IsValid() bool {
	for _, k := range AllStatuts() {
		if s == k {
			return true
		}
	}
	return false
}

// Unavailable reports whether a worker with this statut cannot be planned.
func (s StatutCode) Unavailable() bool {
	return s == StatutAbsent || s == StatutConge || s == StatutMaladie || s == StatutSortie
}

// StatutOuvrier records a worker's status on a date.
type StatutOuvrier struct {
	ID        int64
	Matricule int64
	NomPrenom string
	Date      time.Time
	Statut    StatutCode
	CreatedAt time.Time
	UpdatedAt time.Time
}

// AttendanceSummary aggregates statuts of a day / Synthèse de présence d'un jour
type AttendanceSummary struct {
	Date        time.Time          `json:"date"`
	Total       int                `json:"total"`
	ParStatut   map[StatutCode]int `json:"parStatut"`
	Absenteisme float64            `json:"absenteisme"`
}

// SummarizeAttendance counts statuts; absenteeism counts AB and M.
func SummarizeAttendance(date time.Time, statuts []*StatutOuvrier) AttendanceSummary {
	sum := AttendanceSummary{
		Date:      DateOnly(date),
		ParStatut: make(map[StatutCode]int, len(AllStatuts())),
	}
	for _, code := range AllStatuts() {
		sum.ParStatut[code] = 0
	}
	for _, s := range statuts {
		sum.ParStatut[s.Statut]++
		sum.Total++
	}
	absents := sum.ParStatut[StatutAbsent] + sum.ParStatut[StatutMaladie]
	sum.Absenteisme = Percent(int64(absents), int64(sum.Total))
	return sum
}
