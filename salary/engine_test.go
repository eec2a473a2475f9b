package salary_test

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/salary-engine/salary"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertAmount(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	if !d(want).Equal(got) {
		assert.Fail(t, fmt.Sprintf("amount mismatch: want %s, got %s", want, got), msgAndArgs...)
	}
}

func earningsList(e salary.Earnings) []decimal.Decimal {
	return []decimal.Decimal{e.Basic, e.AGP, e.GradePay, e.DA, e.HRA, e.TA,
		e.CLA, e.Medical, e.Special, e.Conveyance, e.Others}
}

func deductionsList(x salary.Deductions) []decimal.Decimal {
	return []decimal.Decimal{x.TDS, x.EPF, x.Advance, x.PT, x.ESI, x.Loan, x.Insurance, x.Other}
}

func sum(values []decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}

// =============================================================================
// SIXTH PAY
// =============================================================================

func TestCompute_SixthPayTeaching_WorkedExample(t *testing.T) {
	// GIVEN: basic 40000, AGP 8000, city X, TA 3000, CLA 1000, medical 500
	// WHEN: computing under SixthPay for teaching staff
	// THEN: DA is 164% and HRA 15% of basic+AGP, gross 138420

	in := salary.ParseInputs(salary.RawInputs{
		"basic_salary":        "40000",
		"agp":                 "8000",
		"city":                "X",
		"transport_allowance": "3000",
		"cla_allowance":       "1000",
		"medical_allowance":   "500",
		"other_allowances":    "0",
	})

	b := salary.Compute(in, salary.SixthPayCommission, salary.Teaching)

	assertAmount(t, "40000", b.Earnings.Basic)
	assertAmount(t, "8000", b.Earnings.AGP)
	assertAmount(t, "78720", b.Earnings.DA)
	assertAmount(t, "7200", b.Earnings.HRA)
	assertAmount(t, "138420", b.Gross)
	assertAmount(t, "138420", b.FullMonthSalary)
	assertAmount(t, "138420", b.NetSalary)
	assert.False(t, b.IsProRata)
	assert.Equal(t, salary.StrategySixthPay, b.Strategy)
	assert.Equal(t, salary.SixthPayCommission, b.Mode)
}

func TestCompute_SixthPayTeaching_IgnoresManualRates(t *testing.T) {
	// GIVEN: manual HRA/DA amounts and special/conveyance on a SixthPay form
	// THEN: SixthPay derives DA/HRA itself and reports no special/conveyance

	in := salary.ParseInputs(salary.RawInputs{
		"basic_salary":         "10000",
		"hra_rate":             "999",
		"da_rate":              "999",
		"special_allowance":    "500",
		"conveyance_allowance": "500",
	})

	b := salary.Compute(in, salary.SixthPayCommission, salary.Teaching)

	assertAmount(t, "16400", b.Earnings.DA)
	assertAmount(t, "1500", b.Earnings.HRA)
	assert.True(t, b.Earnings.Special.IsZero())
	assert.True(t, b.Earnings.Conveyance.IsZero())
	assertAmount(t, "27900", b.Gross)
}

func TestCompute_SixthPayNonTeaching_DefaultsTAAndCLA(t *testing.T) {
	// GIVEN: basic 20000, grade pay 2000, no TA/CLA entered
	// THEN: DA is 90%, HRA 15%, TA 800 and CLA 120 by default

	in := salary.ParseInputs(salary.RawInputs{
		"basic_salary": "20000",
		"grade_pay":    "2000",
		"city":         "y",
	})

	b := salary.Compute(in, salary.SixthPayCommission, salary.NonTeaching)

	assertAmount(t, "2000", b.Earnings.GradePay)
	assert.True(t, b.Earnings.AGP.IsZero())
	assertAmount(t, "19800", b.Earnings.DA)
	assertAmount(t, "3300", b.Earnings.HRA)
	assertAmount(t, "800", b.Earnings.TA)
	assertAmount(t, "120", b.Earnings.CLA)
	assertAmount(t, "46020", b.Gross)
}

func TestCompute_SixthPayNonTeaching_EnteredTAOverridesDefault(t *testing.T) {
	in := salary.ParseInputs(salary.RawInputs{
		"basic_salary":        "20000",
		"transport_allowance": "1500",
		"cla_allowance":       "300",
	})

	b := salary.Compute(in, salary.SixthPayCommission, salary.NonTeaching)

	assertAmount(t, "1500", b.Earnings.TA)
	assertAmount(t, "300", b.Earnings.CLA)
}

func TestCompute_SixthPayTeaching_NoImplicitTA(t *testing.T) {
	in := salary.ParseInputs(salary.RawInputs{"basic_salary": "20000"})

	b := salary.Compute(in, salary.SixthPayCommission, salary.Teaching)

	assert.True(t, b.Earnings.TA.IsZero())
	assert.True(t, b.Earnings.CLA.IsZero())
}

// =============================================================================
// ACTUAL SALARY
// =============================================================================

func TestCompute_NonTeachingDecidedDistribution_WorkedExample(t *testing.T) {
	// GIVEN: decided salary 90000 and no components entered
	// WHEN: computing ActualSalary for non-teaching staff
	// THEN: components follow the distribution and sum to 90000

	in := salary.ParseInputs(salary.RawInputs{"decided_salary": "90000"})

	b := salary.Compute(in, salary.ActualSalary, salary.NonTeaching)

	assertAmount(t, "36000", b.Earnings.Basic)
	assertAmount(t, "32400", b.Earnings.DA)
	assertAmount(t, "5400", b.Earnings.HRA)
	assertAmount(t, "4500", b.Earnings.TA)
	assertAmount(t, "2700", b.Earnings.CLA)
	assertAmount(t, "1800", b.Earnings.Medical)
	assertAmount(t, "7200", b.Earnings.Others)
	assertAmount(t, "90000", b.Gross)
	assert.Equal(t, salary.StrategyDecidedDistribution, b.Strategy)
}

func TestDistributeDecided_SumsToDecided(t *testing.T) {
	// GIVEN: whole-rupee decided salaries, including ones that round badly
	// THEN: the distributed components always sum to the decided salary

	dist := salary.DefaultRules().Distribution
	for _, v := range []int64{0, 1, 2, 3, 7, 99, 101, 12345, 33333, 54321, 90000, 123457, 999999} {
		decided := decimal.NewFromInt(v)
		e := salary.DistributeDecided(dist, decided)
		assert.True(t, e.Total().Equal(decided), "decided %d: got %s", v, e.Total())
		assert.False(t, e.Others.IsNegative(), "decided %d: negative others", v)
	}
}

func TestDistributeDecided_FractionalCanOvershoot(t *testing.T) {
	// GIVEN: a decided salary of 1.50
	// THEN: basic and DA each round up to 1, Others stays at zero and the
	// components total 2, over the decided figure

	e := salary.DistributeDecided(salary.DefaultRules().Distribution, d("1.5"))

	assertAmount(t, "1", e.Basic)
	assertAmount(t, "1", e.DA)
	assertAmount(t, "0", e.Others)
	assertAmount(t, "2", e.Total())
}

func TestCompute_TeachingDecidedSalary_AllBasic(t *testing.T) {
	in := salary.ParseInputs(salary.RawInputs{"decided_salary": "75000", "da_rate": ""})

	b := salary.Compute(in, salary.ActualSalary, salary.Teaching)

	assertAmount(t, "75000", b.Earnings.Basic)
	for i, v := range earningsList(b.Earnings)[1:] {
		assert.True(t, v.IsZero(), "component %d should be zero, got %s", i+1, v)
	}
	assertAmount(t, "75000", b.Gross)
}

func TestCompute_DecidedSalaryWithEnteredComponents(t *testing.T) {
	// GIVEN: decided salary plus entered components
	// THEN: entered components are used as-is; decided salary is informational

	in := salary.ParseInputs(salary.RawInputs{
		"decided_salary":    "90000",
		"basic_salary":      "50000",
		"da_rate":           "10000",
		"hra_rate":          "5000",
		"special_allowance": "2500",
	})

	b := salary.Compute(in, salary.ActualSalary, salary.NonTeaching)

	assert.Equal(t, salary.StrategyEnteredComponents, b.Strategy)
	assertAmount(t, "50000", b.Earnings.Basic)
	assertAmount(t, "10000", b.Earnings.DA)
	assertAmount(t, "5000", b.Earnings.HRA)
	assertAmount(t, "2500", b.Earnings.Special)
	assertAmount(t, "67500", b.Gross)
}

func TestCompute_TeachingActualSalary_NeverGetsDA(t *testing.T) {
	in := salary.ParseInputs(salary.RawInputs{
		"basic_salary": "30000",
		"agp":          "6000",
		"da_rate":      "12000",
	})

	b := salary.Compute(in, salary.ActualSalary, salary.Teaching)

	assert.Equal(t, salary.StrategyComponentsOnly, b.Strategy)
	assert.True(t, b.Earnings.DA.IsZero())
	assertAmount(t, "6000", b.Earnings.AGP)
	assertAmount(t, "36000", b.Gross)
}

func TestCompute_NonTeachingComponentsOnly_DAVerbatim(t *testing.T) {
	in := salary.ParseInputs(salary.RawInputs{
		"basic_salary":         "25000",
		"grade_pay":            "2400",
		"da_rate":              "4321.50",
		"conveyance_allowance": "1600",
	})

	b := salary.Compute(in, salary.ActualSalary, salary.NonTeaching)

	assertAmount(t, "4321.50", b.Earnings.DA)
	assertAmount(t, "2400", b.Earnings.GradePay)
	assertAmount(t, "33321.5", b.Gross)
}

func TestCompute_UnknownModeRunsActualSalary(t *testing.T) {
	in := salary.ParseInputs(salary.RawInputs{"decided_salary": "90000"})

	b := salary.Compute(in, salary.CalculationMode("legacy"), salary.NonTeaching)

	assert.Equal(t, salary.ActualSalary, b.Mode)
	assert.Equal(t, salary.StrategyDecidedDistribution, b.Strategy)
}

// =============================================================================
// CROSS-MODE INVARIANTS
// =============================================================================

func TestCompute_GrossEqualsSumOfEarnings(t *testing.T) {
	inputs := []salary.RawInputs{
		{"basic_salary": "40000", "agp": "8000", "grade_pay": "1900", "transport_allowance": "3000", "special_allowance": "700"},
		{"decided_salary": "61234"},
		{"decided_salary": "50000", "medical_allowance": "1000"},
		{"basic_salary": "18000", "da_rate": "2000", "hra_rate": "1800", "working_days": "17", "total_month_days": "31"},
	}
	modes := []salary.CalculationMode{salary.SixthPayCommission, salary.ActualSalary}
	staff := []salary.StaffType{salary.Teaching, salary.NonTeaching}

	for _, raw := range inputs {
		in := salary.ParseInputs(raw)
		for _, m := range modes {
			for _, s := range staff {
				b := salary.Compute(in, m, s)
				assert.True(t, sum(earningsList(b.Earnings)).Equal(b.Gross), "%s/%s %v", m, s, raw)
				assert.True(t, sum(deductionsList(b.Deductions)).Equal(b.TotalDeductions), "%s/%s %v", m, s, raw)
				assert.True(t, b.Gross.Sub(b.TotalDeductions).Equal(b.NetSalary), "%s/%s %v", m, s, raw)
			}
		}
	}
}

func TestCompute_ProfessionalTaxIsManual(t *testing.T) {
	// GIVEN: a gross that falls in the 200/month slab, PT entered as 75
	// THEN: the breakdown deducts 75, not the slab value

	in := salary.ParseInputs(salary.RawInputs{
		"basic_salary":     "60000",
		"professional_tax": "75",
	})

	b := salary.Compute(in, salary.ActualSalary, salary.NonTeaching)

	assertAmount(t, "75", b.Deductions.PT)
	assertAmount(t, "59925", b.NetSalary)
}

func TestCompute_NegativeNetIsNotClamped(t *testing.T) {
	in := salary.ParseInputs(salary.RawInputs{
		"basic_salary":   "10000",
		"loan_deduction": "12500",
	})

	b := salary.Compute(in, salary.ActualSalary, salary.Teaching)

	assertAmount(t, "-2500", b.NetSalary)
	assert.True(t, b.IsNegativeNet())
}

func TestEngine_Preview_SharesComputePath(t *testing.T) {
	engine := salary.NewEngine(salary.DefaultRules())
	in := salary.ParseInputs(salary.RawInputs{
		"basic_salary":     "20000",
		"professional_tax": "0",
		"working_days":     "15",
	})

	p := engine.Preview(in, salary.ActualSalary, salary.NonTeaching)
	b := engine.Compute(in, salary.ActualSalary, salary.NonTeaching)

	require.True(t, p.Breakdown.Gross.Equal(b.Gross))
	// 20000/month falls in the 130 slab, estimated on the full month
	assertAmount(t, "1560", p.AnnualPTEstimate)
	assertAmount(t, "130", p.MonthlyPTEstimate)
	assert.True(t, p.Breakdown.Deductions.PT.IsZero(), "estimate must not replace manual PT")
}
