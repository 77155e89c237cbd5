package domain

import "time"

// ProductionTotals aggregates declared planifications / Agrège les planifications déclarées
// Only declared planifications contribute to quantities.
type ProductionTotals struct {
	Source           int64   `json:"source"`
	Declared         int64   `json:"declared"`
	Delta            int64   `json:"delta"`
	Pcs              float64 `json:"pcs"`
	NbPlanifications int     `json:"nbPlanifications"`
	NbDeclarees      int     `json:"nbDeclarees"`
}

// Add accumulates one planification. Pcs must be refreshed with Finish.
func (t *ProductionTotals) Add(p *Planification) {
	t.NbPlanifications++
	if !p.Declared {
		return
	}
	t.NbDeclarees++
	t.Source += p.SourceQuantity()
	t.Declared += p.DecProduction
	t.Delta += p.DeltaProd
}

// Finish computes Pcs from the accumulated quantities.
func (t *ProductionTotals) Finish() {
	t.Pcs = Percent(t.Declared, t.Source)
}

// LigneStats is the production of one line / Production d'une ligne
type LigneStats struct {
	Ligne string `json:"ligne"`
	ProductionTotals
}

// SemaineStats is the weekly production report / Rapport de production hebdomadaire
type SemaineStats struct {
	Semaine string           `json:"semaine"`
	Lignes  []LigneStats     `json:"lignes"`
	Total   ProductionTotals `json:"total"`
}

// CauseShare is one 7M category of a breakdown / Part d'une catégorie 7M
type CauseShare struct {
	Cause    Cause   `json:"cause"`
	Quantite int64   `json:"quantite"`
	Percent  float64 `json:"percent"`
}

// CauseStats is a 7M breakdown over non-conformities / Répartition 7M des non-conformités
// Percentages are relative to TotalCauses.
type CauseStats struct {
	Semaine          string       `json:"semaine,omitempty"`
	Ligne            string       `json:"ligne,omitempty"`
	Causes           []CauseShare `json:"causes"`
	TotalCauses      int64        `json:"totalCauses"`
	TotalDelta       int64        `json:"totalDelta"` // Σ|deltaProd|
	NbNonConformites int          `json:"nbNonConformites"`
	NbSaisies        int          `json:"nbSaisies"`
}

// BuildCauseStats sums causes of the given non-conformities.
func BuildCauseStats(ncs []*NonConformite) CauseStats {
	var sum Causes
	stats := CauseStats{}
	for _, nc := range ncs {
		sum = sum.Add(nc.Causes)
		stats.TotalDelta += Abs64(nc.DeltaProd)
		stats.NbNonConformites++
		if nc.Statut == NonConfSaisie {
			stats.NbSaisies++
		}
	}
	stats.TotalCauses = sum.Total()
	stats.Causes = make([]CauseShare, 0, len(AllCauses()))
	for _, c := range AllCauses() {
		q := sum.Get(c)
		stats.Causes = append(stats.Causes, CauseShare{
			Cause:    c,
			Quantite: q,
			Percent:  Percent(q, stats.TotalCauses),
		})
	}
	return stats
}

// Top returns the cause with the largest quantity, "" when all are zero.
// Ties keep display order.
func (s CauseStats) Top() Cause {
	var top CauseShare
	for _, c := range s.Causes {
		if c.Quantite > top.Quantite {
			top = c
		}
	}
	return top.Cause
}

// ReferenceStats is the PCS of one reference / PCS d'une référence
type ReferenceStats struct {
	Ligne     string `json:"ligne"`
	Reference string `json:"reference"`
	ProductionTotals
}

// SemainePcs is the production of a line over one week.
type SemainePcs struct {
	Semaine   string    `json:"semaine"`
	DateDebut time.Time `json:"dateDebut"`
	ProductionTotals
}

// LigneHistory is the PCS of a line across weeks / PCS d'une ligne sur les semaines
type LigneHistory struct {
	Ligne    string       `json:"ligne"`
	Semaines []SemainePcs `json:"semaines"`
}

// MoisStats is the production and 7M breakdown of a month / Production et 7M d'un mois
type MoisStats struct {
	Mois int `json:"mois"`
	ProductionTotals
	Causes CauseStats `json:"causes"`
}

// AnneeStats holds the twelve months of a year.
type AnneeStats struct {
	Annee int         `json:"annee"`
	Mois  []MoisStats `json:"mois"`
}

// Dashboard is the landing page summary / Synthèse de la page d'accueil
type Dashboard struct {
	Semaine          string                `json:"semaine"`
	Production       ProductionTotals      `json:"production"`
	NonConfParStatut map[NonConfStatut]int `json:"nonConfParStatut"`
	TopCause         Cause                 `json:"topCause,omitempty"`
	Presence         AttendanceSummary     `json:"presence"`
}
