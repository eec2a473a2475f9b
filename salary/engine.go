package salary

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// ENGINE
// =============================================================================

// Engine computes salary breakdowns under a fixed rule set.
// An Engine holds no mutable state and is safe for concurrent use.
type Engine struct {
	Rules Rules
}

// NewEngine creates an engine bound to rules.
func NewEngine(rules Rules) *Engine {
	return &Engine{Rules: rules}
}

// Compute runs mode selection, component calculation and pro-rata
// adjustment in one pass.
func (e *Engine) Compute(in Inputs, mode CalculationMode, staff StaffType) Breakdown {
	set := SelectCalculator(mode, staff)(e.Rules, in)
	b := Prorate(set, in.WorkingDays, in.TotalMonthDays, e.Rules.DefaultMonthDays)
	b.Mode = mode
	if mode != SixthPayCommission {
		b.Mode = ActualSalary
	}
	b.StaffType = staff
	return b
}

// Preview is a breakdown plus the professional tax the slab table would
// suggest for it. The estimate is advisory; Breakdown.Deductions.PT stays
// the manual figure.
type Preview struct {
	Breakdown         Breakdown       `json:"breakdown"`
	MonthlyPTEstimate decimal.Decimal `json:"monthly_pt_estimate"`
	AnnualPTEstimate  decimal.Decimal `json:"annual_pt_estimate"`
}

// Preview computes the breakdown and the professional tax estimate from the
// same calculation used for saving.
func (e *Engine) Preview(in Inputs, mode CalculationMode, staff StaffType) Preview {
	b := e.Compute(in, mode, staff)
	annual := e.Rules.ProfessionalTax(b.FullMonthSalary.Mul(monthsPerYear))
	return Preview{
		Breakdown:         b,
		MonthlyPTEstimate: annual.Div(monthsPerYear),
		AnnualPTEstimate:  annual,
	}
}

var defaultEngine = NewEngine(DefaultRules())

// Compute uses the default rule set.
func Compute(in Inputs, mode CalculationMode, staff StaffType) Breakdown {
	return defaultEngine.Compute(in, mode, staff)
}
