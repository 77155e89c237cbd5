package domain

import "time"

// Planification is a planned production order for a week/day/line/reference.
// Planification est un ordre de production planifié pour semaine/jour/ligne/référence.
type Planification struct {
	ID                 int64
	Semaine            string
	Jour               Jour
	Ligne              string
	Reference          string
	OF                 string // ordre de fabrication
	QtePlanifiee       int64
	QteModifiee        int64 // 0 means the planned quantity was not modified
	DecProduction      int64
	DecMagasin         int64
	Declared           bool
	DeltaProd          int64
	PcsProd            float64
	NbOperateurs       int
	NbHeuresPlanifiees float64
	Emballage          string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// SourceQuantity is the quantity production is measured against / Quantité de référence
func (p *Planification) SourceQuantity() int64 {
	if p.QteModifiee > 0 {
		return p.QteModifiee
	}
	return p.QtePlanifiee
}

// Recompute refreshes DeltaProd and PcsProd from the declared production.
// Recompute met à jour DeltaProd et PcsProd depuis la production déclarée.
func (p *Planification) Recompute() {
	if !p.Declared {
		p.DeltaProd = 0
		p.PcsProd = 0
		return
	}
	src := p.SourceQuantity()
	p.DeltaProd = p.DecProduction - src
	p.PcsProd = Percent(p.DecProduction, src)
}

// PlanificationFilter narrows planification listings / Filtre des planifications
type PlanificationFilter struct {
	Semaine   string
	Jour      Jour
	Ligne     string
	Reference string
}
