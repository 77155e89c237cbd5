package domain

import "github.com/shopspring/decimal"

// Percent returns num/den*100 rounded to 2 places, 0 when den is 0.
// Percent retourne num/den*100 arrondi à 2 décimales, 0 si den vaut 0.
func Percent(num, den int64) float64 {
	if den == 0 {
		return 0
	}
	p := decimal.NewFromInt(num).
		Mul(decimal.NewFromInt(100)).
		DivRound(decimal.NewFromInt(den), 8).
		Round(2)
	f, _ := p.Float64()
	return f
}

// Round2 rounds half away from zero to 2 places / Arrondit à 2 décimales
func Round2(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}
