/*
Package salary provides the payroll computation engine.

PURPOSE:
  Turns raw salary inputs into a fully itemized monthly breakdown. The engine
  is a set of pure functions: no I/O, no shared state, deterministic for a
  given (Inputs, CalculationMode, StaffType) triple.

KEY CONCEPTS IN THIS FILE (types.go):
  - StaffType: Teaching or NonTeaching, fixed for one calculation
  - CalculationMode: SixthPay (pay-commission formulas) or ActualSalary
  - CityCategory: X/Y/Z, keyed into the HRA rate table
  - Inputs: normalized, non-negative input values
  - Earnings/Deductions: itemized components
  - Breakdown: terminal output, scaled for partial attendance

PIPELINE:
  SelectCalculator(mode, staff)  -> Calculator
  Calculator(rules, inputs)      -> ComponentSet (full month)
  Prorate(set, days, monthDays)  -> Breakdown

DESIGN PRINCIPLES:
  1. Precision: all money is decimal.Decimal
  2. Normalize at the boundary: ParseInputs is the only place raw strings
     become numbers, calculators never see malformed values
  3. One path: preview and save both go through Engine.Compute

SEE ALSO:
  - mode.go: Calculator dispatch
  - components.go: Per-mode component derivation
  - prorata.go: Partial-month scaling and totals
  - ptax.go: Professional tax slab lookup
*/
package salary

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// ENUMS
// =============================================================================

// StaffType distinguishes teaching from non-teaching staff.
type StaffType string

const (
	Teaching    StaffType = "teaching"
	NonTeaching StaffType = "non_teaching"
)

// CalculationMode selects which component calculator runs.
type CalculationMode string

const (
	SixthPayCommission CalculationMode = "sixth_pay"
	ActualSalary       CalculationMode = "actual_salary"
)

// CityCategory is the city classification used for the HRA rate lookup.
type CityCategory string

const (
	CityX CityCategory = "X"
	CityY CityCategory = "Y"
	CityZ CityCategory = "Z"
)

// Strategy records which branch produced the components.
type Strategy string

const (
	StrategySixthPay            Strategy = "sixth_pay"
	StrategyEnteredComponents   Strategy = "entered_components"
	StrategyDecidedDistribution Strategy = "decided_distribution"
	StrategyComponentsOnly      Strategy = "components_only"
)

// =============================================================================
// INPUTS
// =============================================================================

// Inputs holds normalized salary inputs. Every amount is non-negative.
//
// HRARate and DARate are manual amounts used only in ActualSalary mode;
// SixthPay derives HRA and DA from the rules.
type Inputs struct {
	BasicSalary decimal.Decimal `json:"basic_salary"`
	GradePay    decimal.Decimal `json:"grade_pay"`
	AGP         decimal.Decimal `json:"agp"`
	HRARate     decimal.Decimal `json:"hra_rate"`
	DARate      decimal.Decimal `json:"da_rate"`
	City        CityCategory    `json:"city"`

	TransportAllowance  decimal.Decimal `json:"transport_allowance"`
	CLAAllowance        decimal.Decimal `json:"cla_allowance"`
	MedicalAllowance    decimal.Decimal `json:"medical_allowance"`
	OtherAllowances     decimal.Decimal `json:"other_allowances"`
	SpecialAllowance    decimal.Decimal `json:"special_allowance"`
	ConveyanceAllowance decimal.Decimal `json:"conveyance_allowance"`

	TDSDeduction       decimal.Decimal `json:"tds_deduction"`
	EPFDeduction       decimal.Decimal `json:"epf_deduction"`
	Advance            decimal.Decimal `json:"advance"`
	ProfessionalTax    decimal.Decimal `json:"professional_tax"`
	ESIDeduction       decimal.Decimal `json:"esi_deduction"`
	LoanDeduction      decimal.Decimal `json:"loan_deduction"`
	InsuranceDeduction decimal.Decimal `json:"insurance_deduction"`
	OtherDeductions    decimal.Decimal `json:"other_deductions"`

	WorkingDays    decimal.Decimal `json:"working_days"`
	TotalMonthDays decimal.Decimal `json:"total_month_days"`
	DecidedSalary  decimal.Decimal `json:"decided_salary"`
}

// =============================================================================
// COMPONENTS
// =============================================================================

// Earnings is the itemized earning side of a salary.
// Teaching staff carry AGP, non-teaching staff carry GradePay.
type Earnings struct {
	Basic      decimal.Decimal `json:"basic"`
	AGP        decimal.Decimal `json:"agp"`
	GradePay   decimal.Decimal `json:"grade_pay"`
	DA         decimal.Decimal `json:"da"`
	HRA        decimal.Decimal `json:"hra"`
	TA         decimal.Decimal `json:"ta"`
	CLA        decimal.Decimal `json:"cla"`
	Medical    decimal.Decimal `json:"medical"`
	Special    decimal.Decimal `json:"special"`
	Conveyance decimal.Decimal `json:"conveyance"`
	Others     decimal.Decimal `json:"others"`
}

// Total sums every earning component.
func (e Earnings) Total() decimal.Decimal {
	return decimal.Sum(e.Basic, e.AGP, e.GradePay, e.DA, e.HRA, e.TA,
		e.CLA, e.Medical, e.Special, e.Conveyance, e.Others)
}

// Scale multiplies every component by ratio.
func (e Earnings) Scale(ratio decimal.Decimal) Earnings {
	return Earnings{
		Basic:      e.Basic.Mul(ratio),
		AGP:        e.AGP.Mul(ratio),
		GradePay:   e.GradePay.Mul(ratio),
		DA:         e.DA.Mul(ratio),
		HRA:        e.HRA.Mul(ratio),
		TA:         e.TA.Mul(ratio),
		CLA:        e.CLA.Mul(ratio),
		Medical:    e.Medical.Mul(ratio),
		Special:    e.Special.Mul(ratio),
		Conveyance: e.Conveyance.Mul(ratio),
		Others:     e.Others.Mul(ratio),
	}
}

// Deductions is the itemized deduction side of a salary.
type Deductions struct {
	TDS       decimal.Decimal `json:"tds"`
	EPF       decimal.Decimal `json:"epf"`
	Advance   decimal.Decimal `json:"advance"`
	PT        decimal.Decimal `json:"pt"`
	ESI       decimal.Decimal `json:"esi"`
	Loan      decimal.Decimal `json:"loan"`
	Insurance decimal.Decimal `json:"insurance"`
	Other     decimal.Decimal `json:"other"`
}

func (d Deductions) Total() decimal.Decimal {
	return decimal.Sum(d.TDS, d.EPF, d.Advance, d.PT, d.ESI, d.Loan, d.Insurance, d.Other)
}

func (d Deductions) Scale(ratio decimal.Decimal) Deductions {
	return Deductions{
		TDS:       d.TDS.Mul(ratio),
		EPF:       d.EPF.Mul(ratio),
		Advance:   d.Advance.Mul(ratio),
		PT:        d.PT.Mul(ratio),
		ESI:       d.ESI.Mul(ratio),
		Loan:      d.Loan.Mul(ratio),
		Insurance: d.Insurance.Mul(ratio),
		Other:     d.Other.Mul(ratio),
	}
}

// ComponentSet is the full-month output of a Calculator, before pro-rata.
type ComponentSet struct {
	Earnings   Earnings
	Deductions Deductions
	Strategy   Strategy
}

// =============================================================================
// BREAKDOWN - Terminal output
// =============================================================================

// Breakdown is a fully itemized, attendance-adjusted salary.
// Produced fresh on every call; never mutated afterwards.
type Breakdown struct {
	Mode      CalculationMode `json:"mode"`
	StaffType StaffType       `json:"staff_type"`
	Strategy  Strategy        `json:"strategy"`

	Earnings Earnings        `json:"earnings"`
	Gross    decimal.Decimal `json:"gross"`

	Deductions      Deductions      `json:"deductions"`
	TotalDeductions decimal.Decimal `json:"total_deductions"`
	NetSalary       decimal.Decimal `json:"net_salary"`

	FullMonthSalary decimal.Decimal `json:"full_month_salary"`
	PerDayRate      decimal.Decimal `json:"per_day_rate"`
	WorkingDays     decimal.Decimal `json:"working_days"`
	TotalMonthDays  decimal.Decimal `json:"total_month_days"`
	DailyRatio      decimal.Decimal `json:"daily_ratio"`
	IsProRata       bool            `json:"is_pro_rata"`
}

// IsNegativeNet reports over-deduction. Not an error; callers flag it.
func (b Breakdown) IsNegativeNet() bool {
	return b.NetSalary.IsNegative()
}
