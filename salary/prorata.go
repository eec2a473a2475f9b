package salary

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// PRO-RATA ADJUSTMENT
// =============================================================================

// Prorate scales a full-month component set by attendance and computes the
// totals. Scaling applies only when both day counts are supplied and
// 0 < workingDays < totalMonthDays. A missing totalMonthDays leaves the month
// unscaled and falls back to defaultMonthDays for the per-day rate.
//
// Net salary is not clamped; a negative net is valid output.
func Prorate(set ComponentSet, workingDays, totalMonthDays, defaultMonthDays decimal.Decimal) Breakdown {
	isProRata := workingDays.IsPositive() && totalMonthDays.IsPositive() &&
		workingDays.LessThan(totalMonthDays)

	if !totalMonthDays.IsPositive() {
		totalMonthDays = defaultMonthDays
	}
	if !totalMonthDays.IsPositive() {
		totalMonthDays = decimal.NewFromInt(30)
	}

	full := set.Earnings.Total()
	ratio := decimal.NewFromInt(1)
	earnings, deductions := set.Earnings, set.Deductions

	if isProRata {
		ratio = workingDays.Div(totalMonthDays)
		earnings = earnings.Scale(ratio)
		deductions = deductions.Scale(ratio)
	} else if workingDays.IsZero() {
		workingDays = totalMonthDays
	}

	gross := earnings.Total()
	totalDed := deductions.Total()

	return Breakdown{
		Strategy:        set.Strategy,
		Earnings:        earnings,
		Gross:           gross,
		Deductions:      deductions,
		TotalDeductions: totalDed,
		NetSalary:       gross.Sub(totalDed),
		FullMonthSalary: full,
		PerDayRate:      full.Div(totalMonthDays),
		WorkingDays:     workingDays,
		TotalMonthDays:  totalMonthDays,
		DailyRatio:      ratio,
		IsProRata:       isProRata,
	}
}
