package salary

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// RULES - Rates, defaults and slabs used by the calculators
// =============================================================================

// Rules carries every constant the calculators depend on.
// DefaultRules returns the current rule set; factory/ can load overrides.
type Rules struct {
	// SixthPay DA rates, fraction of (basic + AGP/grade pay).
	TeachingDARate    decimal.Decimal
	NonTeachingDARate decimal.Decimal

	// HRA rate per city. Missing cities fall back to DefaultHRARate.
	HRARates       map[CityCategory]decimal.Decimal
	DefaultHRARate decimal.Decimal

	// Implicit SixthPay non-teaching allowances when the input is absent.
	NonTeachingDefaultTA  decimal.Decimal
	NonTeachingDefaultCLA decimal.Decimal

	Distribution Distribution

	DefaultMonthDays decimal.Decimal

	ProfessionalTaxSlabs []PTSlab
}

// Distribution is the decided-salary split for non-teaching staff in
// ActualSalary mode. Basic is a share of the decided salary; DA and HRA are
// shares of basic; TA, CLA and Medical are shares of the decided salary.
// Others absorbs the remainder.
type Distribution struct {
	BasicShare   decimal.Decimal
	DAOfBasic    decimal.Decimal
	HRAOfBasic   decimal.Decimal
	TAShare      decimal.Decimal
	CLAShare     decimal.Decimal
	MedicalShare decimal.Decimal
}

// PTSlab is one row of the professional tax table. UpTo is the inclusive
// monthly gross ceiling; nil marks the open-ended top slab.
type PTSlab struct {
	UpTo    *decimal.Decimal
	Monthly decimal.Decimal
}

// DefaultRules returns the rule set in force.
//
// All three cities share a 15% HRA rate. The table is kept per city so
// differentiated rates only need a rules change.
func DefaultRules() Rules {
	hra := decimal.RequireFromString("0.15")
	return Rules{
		TeachingDARate:    decimal.RequireFromString("1.64"),
		NonTeachingDARate: decimal.RequireFromString("0.90"),
		HRARates: map[CityCategory]decimal.Decimal{
			CityX: hra,
			CityY: hra,
			CityZ: hra,
		},
		DefaultHRARate:        hra,
		NonTeachingDefaultTA:  decimal.NewFromInt(800),
		NonTeachingDefaultCLA: decimal.NewFromInt(120),
		Distribution: Distribution{
			BasicShare:   decimal.RequireFromString("0.40"),
			DAOfBasic:    decimal.RequireFromString("0.90"),
			HRAOfBasic:   decimal.RequireFromString("0.15"),
			TAShare:      decimal.RequireFromString("0.05"),
			CLAShare:     decimal.RequireFromString("0.03"),
			MedicalShare: decimal.RequireFromString("0.02"),
		},
		DefaultMonthDays:     decimal.NewFromInt(30),
		ProfessionalTaxSlabs: DefaultPTSlabs(),
	}
}

// DefaultPTSlabs returns the monthly professional tax table.
func DefaultPTSlabs() []PTSlab {
	return []PTSlab{
		{UpTo: ceiling(10000), Monthly: decimal.Zero},
		{UpTo: ceiling(15000), Monthly: decimal.NewFromInt(110)},
		{UpTo: ceiling(25000), Monthly: decimal.NewFromInt(130)},
		{UpTo: ceiling(40000), Monthly: decimal.NewFromInt(150)},
		{UpTo: nil, Monthly: decimal.NewFromInt(200)},
	}
}

func ceiling(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

// HRARate returns the HRA rate for a city.
func (r Rules) HRARate(city CityCategory) decimal.Decimal {
	if rate, ok := r.HRARates[city]; ok {
		return rate
	}
	return r.DefaultHRARate
}
