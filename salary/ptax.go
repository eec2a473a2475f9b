package salary

import (
	"github.com/shopspring/decimal"
)

var monthsPerYear = decimal.NewFromInt(12)

// ProfessionalTax estimates annual professional tax for an annual gross.
//
// The monthly gross selects a slab; the slab's monthly tax is annualized.
// This is a preview figure only. Saved breakdowns always carry the manually
// entered professional tax.
func (r Rules) ProfessionalTax(annualGross decimal.Decimal) decimal.Decimal {
	if annualGross.IsNegative() {
		annualGross = decimal.Zero
	}
	monthly := annualGross.Div(monthsPerYear)
	for _, slab := range r.ProfessionalTaxSlabs {
		if slab.UpTo == nil || monthly.LessThanOrEqual(*slab.UpTo) {
			return slab.Monthly.Mul(monthsPerYear)
		}
	}
	return decimal.Zero
}

// ProfessionalTax uses the default slab table.
func ProfessionalTax(annualGross decimal.Decimal) decimal.Decimal {
	return DefaultRules().ProfessionalTax(annualGross)
}
