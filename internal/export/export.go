// Package export renders planifications and production statistics as Excel
// workbooks.
package export

import (
	"fmt"

	"github.com/Olprog59/go-prodtrack/internal/domain"
	"github.com/xuri/excelize/v2"
)

// ContentType is the MIME type of generated workbooks.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Sheet names / Noms des feuilles
const (
	SheetPlanification = "Planification"
	SheetPCS           = "PCS"
	Sheet7M            = "7M"
	SheetReferences    = "References"
)

var planificationHeader = []any{
	"Semaine", "Jour", "Ligne", "Référence", "OF", "Qté planifiée", "Qté modifiée",
	"Déc. production", "Déc. magasin", "Delta", "PCS %", "Nb opérateurs",
	"Heures planifiées", "Emballage",
}

// PlanificationWorkbook lists the planifications of a week, one per row.
// Liste les planifications d'une semaine, une par ligne.
func PlanificationWorkbook(semaine string, plans []*domain.Planification) ([]byte, error) {
	b, err := newBook(SheetPlanification)
	if err != nil {
		return nil, err
	}
	defer b.f.Close()

	b.header(SheetPlanification, planificationHeader)
	for _, p := range plans {
		if p.Semaine != semaine {
			continue
		}
		b.row(SheetPlanification, []any{
			p.Semaine, string(p.Jour), p.Ligne, p.Reference, p.OF, p.QtePlanifiee, p.QteModifiee,
			p.DecProduction, p.DecMagasin, p.DeltaProd, p.PcsProd, p.NbOperateurs,
			p.NbHeuresPlanifiees, p.Emballage,
		})
	}
	return b.bytes()
}

// StatsWorkbook writes the weekly PCS per line, the 7M breakdown and the PCS
// per reference.
func StatsWorkbook(week domain.SemaineStats, causes domain.CauseStats, refs []domain.ReferenceStats) ([]byte, error) {
	b, err := newBook(SheetPCS)
	if err != nil {
		return nil, err
	}
	defer b.f.Close()

	b.header(SheetPCS, []any{"Ligne", "Source", "Déclarée", "Delta", "PCS %", "Planifications", "Déclarées"})
	for _, l := range week.Lignes {
		b.row(SheetPCS, totalsRow(l.Ligne, l.ProductionTotals))
	}
	b.row(SheetPCS, totalsRow("Total", week.Total))

	if _, err := b.f.NewSheet(Sheet7M); err != nil {
		return nil, err
	}
	b.header(Sheet7M, []any{"Cause", "Quantité", "%"})
	for _, c := range causes.Causes {
		b.row(Sheet7M, []any{string(c.Cause), c.Quantite, c.Percent})
	}
	b.row(Sheet7M, []any{"Total causes", causes.TotalCauses, nil})
	b.row(Sheet7M, []any{"Σ |delta|", causes.TotalDelta, nil})

	if _, err := b.f.NewSheet(SheetReferences); err != nil {
		return nil, err
	}
	b.header(SheetReferences, []any{"Ligne", "Référence", "Source", "Déclarée", "PCS %"})
	for _, r := range refs {
		b.row(SheetReferences, []any{r.Ligne, r.Reference, r.Source, r.Declared, r.Pcs})
	}
	return b.bytes()
}

func totalsRow(label string, t domain.ProductionTotals) []any {
	return []any{label, t.Source, t.Declared, t.Delta, t.Pcs, t.NbPlanifications, t.NbDeclarees}
}

// book wraps an excelize file with a row cursor per sheet. The first write
// error is kept and reported by bytes.
type book struct {
	f      *excelize.File
	bold   int
	cursor map[string]int
	err    error
}

func newBook(first string) (*book, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", first); err != nil {
		f.Close()
		return nil, err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, err
	}
	return &book{f: f, bold: bold, cursor: make(map[string]int)}, nil
}

func (b *book) header(sheet string, cols []any) {
	b.row(sheet, cols)
	if b.err != nil {
		return
	}
	last, err := excelize.CoordinatesToCellName(len(cols), 1)
	if err != nil {
		b.err = err
		return
	}
	b.err = b.f.SetCellStyle(sheet, "A1", last, b.bold)
}

func (b *book) row(sheet string, values []any) {
	if b.err != nil {
		return
	}
	b.cursor[sheet]++
	cell, err := excelize.CoordinatesToCellName(1, b.cursor[sheet])
	if err != nil {
		b.err = err
		return
	}
	b.err = b.f.SetSheetRow(sheet, cell, &values)
}

func (b *book) bytes() ([]byte, error) {
	if b.err != nil {
		return nil, fmt.Errorf("write workbook: %w", b.err)
	}
	b.f.SetActiveSheet(0)
	buf, err := b.f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
