/*
components.go - Per-mode derivation of earning components

SIXTH PAY COMMISSION:
  Teaching:     base = basic + AGP,        DA = base x 1.64
  NonTeaching:  base = basic + grade pay,  DA = base x 0.90
  Both:         HRA = base x HRARate(city)
  NonTeaching TA and CLA default to 800 and 120 when left blank.

ACTUAL SALARY (strategies tried in order):
  1. Decided salary + entered components  -> entered components win
  2. Decided salary, nothing entered      -> auto-distribution
  3. No decided salary                    -> entered components

  Teaching auto-distribution puts the whole decided salary into basic.
  NonTeaching auto-distribution splits by Rules.Distribution and lets
  Others absorb rounding loss so the parts always sum to the decided salary.

  Teaching staff never get DA in this mode. NonTeaching DA is the manual
  da_rate amount, unchanged.

DEDUCTIONS:
  Always the entered amounts. Professional tax is the manual figure, never
  the slab estimate from ptax.go.
*/
package salary

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// SIXTH PAY COMMISSION
// =============================================================================

func sixthPayTeaching(rules Rules, in Inputs) ComponentSet {
	base := in.BasicSalary.Add(in.AGP)
	return ComponentSet{
		Earnings: Earnings{
			Basic:   in.BasicSalary,
			AGP:     in.AGP,
			DA:      base.Mul(rules.TeachingDARate),
			HRA:     base.Mul(rules.HRARate(in.City)),
			TA:      in.TransportAllowance,
			CLA:     in.CLAAllowance,
			Medical: in.MedicalAllowance,
			Others:  in.OtherAllowances,
		},
		Deductions: enteredDeductions(in),
		Strategy:   StrategySixthPay,
	}
}

func sixthPayNonTeaching(rules Rules, in Inputs) ComponentSet {
	base := in.BasicSalary.Add(in.GradePay)
	return ComponentSet{
		Earnings: Earnings{
			Basic:    in.BasicSalary,
			GradePay: in.GradePay,
			DA:       base.Mul(rules.NonTeachingDARate),
			HRA:      base.Mul(rules.HRARate(in.City)),
			TA:       orDefault(in.TransportAllowance, rules.NonTeachingDefaultTA),
			CLA:      orDefault(in.CLAAllowance, rules.NonTeachingDefaultCLA),
			Medical:  in.MedicalAllowance,
			Others:   in.OtherAllowances,
		},
		Deductions: enteredDeductions(in),
		Strategy:   StrategySixthPay,
	}
}

// =============================================================================
// ACTUAL SALARY
// =============================================================================

func actualSalaryTeaching(rules Rules, in Inputs) ComponentSet {
	entered := enteredEarnings(in, Teaching)
	set := ComponentSet{Deductions: enteredDeductions(in)}

	switch {
	case in.DecidedSalary.IsPositive() && entered.Total().IsPositive():
		set.Earnings, set.Strategy = entered, StrategyEnteredComponents
	case in.DecidedSalary.IsPositive():
		set.Earnings = Earnings{Basic: in.DecidedSalary}
		set.Strategy = StrategyDecidedDistribution
	default:
		set.Earnings, set.Strategy = entered, StrategyComponentsOnly
	}
	return set
}

func actualSalaryNonTeaching(rules Rules, in Inputs) ComponentSet {
	entered := enteredEarnings(in, NonTeaching)
	set := ComponentSet{Deductions: enteredDeductions(in)}

	switch {
	case in.DecidedSalary.IsPositive() && entered.Total().IsPositive():
		set.Earnings, set.Strategy = entered, StrategyEnteredComponents
	case in.DecidedSalary.IsPositive():
		set.Earnings = DistributeDecided(rules.Distribution, in.DecidedSalary)
		set.Strategy = StrategyDecidedDistribution
	default:
		set.Earnings, set.Strategy = entered, StrategyComponentsOnly
	}
	return set
}

// DistributeDecided splits a decided monthly salary into named components.
// Each share is rounded to whole rupees; Others takes what is left, so the
// components sum to decided exactly whenever the shares do not overshoot it.
func DistributeDecided(d Distribution, decided decimal.Decimal) Earnings {
	basic := decided.Mul(d.BasicShare).Round(0)
	e := Earnings{
		Basic:   basic,
		DA:      basic.Mul(d.DAOfBasic).Round(0),
		HRA:     basic.Mul(d.HRAOfBasic).Round(0),
		TA:      decided.Mul(d.TAShare).Round(0),
		CLA:     decided.Mul(d.CLAShare).Round(0),
		Medical: decided.Mul(d.MedicalShare).Round(0),
	}
	e.Others = decimal.Max(decimal.Zero, decided.Sub(e.Total()))
	return e
}

// =============================================================================
// HELPERS
// =============================================================================

// enteredEarnings collects the individually entered earning components.
// The grade component and DA depend on staff type.
func enteredEarnings(in Inputs, staff StaffType) Earnings {
	e := Earnings{
		Basic:      in.BasicSalary,
		HRA:        in.HRARate,
		TA:         in.TransportAllowance,
		CLA:        in.CLAAllowance,
		Medical:    in.MedicalAllowance,
		Special:    in.SpecialAllowance,
		Conveyance: in.ConveyanceAllowance,
		Others:     in.OtherAllowances,
	}
	if staff == Teaching {
		e.AGP = in.AGP
	} else {
		e.GradePay = in.GradePay
		e.DA = in.DARate
	}
	return e
}

func enteredDeductions(in Inputs) Deductions {
	return Deductions{
		TDS:       in.TDSDeduction,
		EPF:       in.EPFDeduction,
		Advance:   in.Advance,
		PT:        in.ProfessionalTax,
		ESI:       in.ESIDeduction,
		Loan:      in.LoanDeduction,
		Insurance: in.InsuranceDeduction,
		Other:     in.OtherDeductions,
	}
}

func orDefault(v, fallback decimal.Decimal) decimal.Decimal {
	if v.IsZero() {
		return fallback
	}
	return v
}
