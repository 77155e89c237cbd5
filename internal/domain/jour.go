package domain

import "strings"

// Jour is a day of the production week / Jour de la semaine de production
type Jour string

const (
	Lundi    Jour = "lundi"
	Mardi    Jour = "mardi"
	Mercredi Jour = "mercredi"
	Jeudi    Jour = "jeudi"
	Vendredi Jour = "vendredi"
	Samedi   Jour = "samedi"
	Dimanche Jour = "dimanche"
)

var jours = []Jour{Lundi, Mardi, Mercredi, Jeudi, Vendredi, Samedi, Dimanche}

// Jours returns the days in week order / Retourne les jours dans l'ordre de la semaine
func Jours() []Jour {
	out := make([]Jour, len(jours))
	copy(out, jours)
	return out
}

// ParseJour normalizes a day name / Normalise un nom de jour
func ParseJour(s string) (Jour, bool) {
	j := Jour(strings.ToLower(strings.TrimSpace(s)))
	return j, j.IsValid()
}

// IsValid checks if day is known / Vérifie si le jour est connu
func (j Jour) IsValid() bool {
	return j.Offset() >= 0
}

// Offset returns the number of days from the week start, -1 if unknown.
func (j Jour) Offset() int {
	for i, d := range jours {
		if d == j {
			return i
		}
	}
	return -1
}
