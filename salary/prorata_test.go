package salary_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/warp/salary-engine/salary"
)

func TestProrate_WorkedExample(t *testing.T) {
	// GIVEN: full-month gross 100000, 20 of 30 days worked, TDS 3000
	// THEN: ratio 2/3, gross ~66667, net = gross - deductions

	in := salary.ParseInputs(salary.RawInputs{
		"basic_salary":     "100000",
		"tds_deduction":    "3000",
		"working_days":     "20",
		"total_month_days": "30",
	})

	b := salary.Compute(in, salary.ActualSalary, salary.NonTeaching)

	assert.True(t, b.IsProRata)
	assertAmount(t, "0.6667", b.DailyRatio.Round(4))
	assertAmount(t, "66667", b.Gross.Round(0))
	assertAmount(t, "2000", b.TotalDeductions.Round(2))
	assert.True(t, b.Gross.Sub(b.TotalDeductions).Equal(b.NetSalary))
	assertAmount(t, "100000", b.FullMonthSalary)
	assertAmount(t, "3333.33", b.PerDayRate.Round(2))
}

func TestProrate_EveryComponentScalesLinearly(t *testing.T) {
	set := salary.ComponentSet{
		Earnings: salary.Earnings{
			Basic: d("30000"), AGP: d("5000"), DA: d("57400"), HRA: d("5250"),
			TA: d("3200"), CLA: d("240"), Medical: d("1250"), Special: d("100"),
			Conveyance: d("800"), Others: d("77"),
		},
		Deductions: salary.Deductions{
			TDS: d("2000"), EPF: d("1800"), Advance: d("500"), PT: d("200"),
			ESI: d("110"), Loan: d("1000"), Insurance: d("300"), Other: d("45"),
		},
	}
	full := set

	b := salary.Prorate(set, d("11"), d("31"), d("30"))

	ratio := d("11").Div(d("31"))
	assert.True(t, b.IsProRata)
	assert.True(t, ratio.Equal(b.DailyRatio))

	want := earningsList(full.Earnings)
	for i, got := range earningsList(b.Earnings) {
		assert.True(t, want[i].Mul(ratio).Equal(got), "earning %d", i)
	}
	wantDed := deductionsList(full.Deductions)
	for i, got := range deductionsList(b.Deductions) {
		assert.True(t, wantDed[i].Mul(ratio).Equal(got), "deduction %d", i)
	}
	assert.True(t, full.Earnings.Total().Equal(b.FullMonthSalary), "full month salary is unscaled")
}

func TestProrate_NoScalingBoundaries(t *testing.T) {
	set := salary.ComponentSet{
		Earnings:   salary.Earnings{Basic: d("45000"), HRA: d("5000")},
		Deductions: salary.Deductions{EPF: d("1800")},
	}

	cases := []struct {
		name            string
		working, total  string
		wantWorkingDays string
		wantTotalDays   string
	}{
		{"full attendance", "30", "30", "30", "30"},
		{"more days than month", "31", "30", "31", "30"},
		{"no attendance data", "0", "31", "31", "31"},
		{"nothing supplied", "0", "0", "30", "30"},
		{"no month length", "20", "0", "20", "30"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := salary.Prorate(set, d(tc.working), d(tc.total), d("30"))

			assert.False(t, b.IsProRata)
			assertAmount(t, "1", b.DailyRatio)
			assertAmount(t, "50000", b.Gross)
			assertAmount(t, "1800", b.TotalDeductions)
			assertAmount(t, "48200", b.NetSalary)
			assertAmount(t, tc.wantWorkingDays, b.WorkingDays)
			assertAmount(t, tc.wantTotalDays, b.TotalMonthDays)
		})
	}
}

func TestProrate_MissingMonthLengthDoesNotScale(t *testing.T) {
	// GIVEN: working days but no month length
	// THEN: the full month is paid; the default only feeds the per-day rate

	in := salary.ParseInputs(salary.RawInputs{"basic_salary": "30000", "working_days": "20"})

	b := salary.Compute(in, salary.ActualSalary, salary.NonTeaching)

	assert.False(t, b.IsProRata)
	assertAmount(t, "30000", b.Gross)
	assertAmount(t, "30000", b.FullMonthSalary)
	assertAmount(t, "1", b.DailyRatio)
	assertAmount(t, "30", b.TotalMonthDays)
	assertAmount(t, "1000", b.PerDayRate)
}

func TestProrate_ZeroMonthDaysNeverDividesByZero(t *testing.T) {
	set := salary.ComponentSet{Earnings: salary.Earnings{Basic: d("30000")}}

	b := salary.Prorate(set, decimal.Zero, decimal.Zero, decimal.Zero)

	assertAmount(t, "30", b.TotalMonthDays)
	assertAmount(t, "1000", b.PerDayRate)
}
