package factory_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/salary-engine/factory"
	"github.com/warp/salary-engine/salary"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestParseRules_EmptyDocumentIsDefault(t *testing.T) {
	rules, err := factory.NewRulesFactory().ParseRules(`{}`)
	require.NoError(t, err)

	def := salary.DefaultRules()
	assert.True(t, def.TeachingDARate.Equal(rules.TeachingDARate))
	assert.True(t, def.NonTeachingDARate.Equal(rules.NonTeachingDARate))
	assert.Len(t, rules.ProfessionalTaxSlabs, len(def.ProfessionalTaxSlabs))
	assert.True(t, rules.HRARate(salary.CityZ).Equal(dec("0.15")))
}

func TestParseRules_OverlaysOnlyGivenFields(t *testing.T) {
	// GIVEN: a document that only differentiates city Y
	// THEN: Y changes, X/Z and every other rule keep their defaults

	rules, err := factory.NewRulesFactory().ParseRules(`{"hra_rates": {"y": 0.10}}`)
	require.NoError(t, err)

	assert.True(t, rules.HRARate(salary.CityY).Equal(dec("0.1")))
	assert.True(t, rules.HRARate(salary.CityX).Equal(dec("0.15")))
	assert.True(t, rules.NonTeachingDefaultTA.Equal(dec("800")))

	// The default table is untouched by the override
	assert.True(t, salary.DefaultRules().HRARate(salary.CityY).Equal(dec("0.15")))
}

func TestParseRules_OverridesFlowIntoEngine(t *testing.T) {
	rules, err := factory.NewRulesFactory().ParseRules(`{
		"da_rates": {"teaching": 2.0},
		"non_teaching_defaults": {"ta": 1000},
		"professional_tax": [{"up_to": 20000, "monthly": 0}, {"monthly": 300}]
	}`)
	require.NoError(t, err)

	engine := salary.NewEngine(rules)
	in := salary.ParseInputs(salary.RawInputs{"basic_salary": "10000"})

	teaching := engine.Compute(in, salary.SixthPayCommission, salary.Teaching)
	assert.True(t, teaching.Earnings.DA.Equal(dec("20000")))

	nonTeaching := engine.Compute(in, salary.SixthPayCommission, salary.NonTeaching)
	assert.True(t, nonTeaching.Earnings.TA.Equal(dec("1000")))

	assert.True(t, rules.ProfessionalTax(dec("240000")).IsZero())
	assert.True(t, rules.ProfessionalTax(dec("240012")).Equal(dec("3600")))
}

func TestParseRulesYAML(t *testing.T) {
	doc := `
distribution:
  basic_share: 0.5
default_month_days: 26
professional_tax:
  - up_to: 10000
    monthly: 0
  - monthly: 175
`
	rules, err := factory.NewRulesFactory().ParseRulesYAML(doc)
	require.NoError(t, err)

	assert.True(t, rules.Distribution.BasicShare.Equal(dec("0.5")))
	assert.True(t, rules.DefaultMonthDays.Equal(dec("26")))
	require.Len(t, rules.ProfessionalTaxSlabs, 2)
	assert.Nil(t, rules.ProfessionalTaxSlabs[1].UpTo)
	assert.True(t, rules.ProfessionalTaxSlabs[1].Monthly.Equal(dec("175")))
}

func TestLoadFile_PicksFormatByExtension(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "rules.yaml")
	jsonPath := filepath.Join(dir, "rules.json")
	require.NoError(t, os.WriteFile(yamlPath, []byte("default_month_days: 31\n"), 0o600))
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"default_month_days": 28}`), 0o600))

	f := factory.NewRulesFactory()

	fromYAML, err := f.LoadFile(yamlPath)
	require.NoError(t, err)
	assert.True(t, fromYAML.DefaultMonthDays.Equal(dec("31")))

	fromJSON, err := f.LoadFile(jsonPath)
	require.NoError(t, err)
	assert.True(t, fromJSON.DefaultMonthDays.Equal(dec("28")))

	_, err = f.LoadFile(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestParseRules_Validation(t *testing.T) {
	cases := map[string]string{
		"negative rate":         `{"da_rates": {"teaching": -1}}`,
		"negative hra":          `{"hra_rates": {"X": -0.1}}`,
		"zero month days":       `{"default_month_days": 0}`,
		"shares overshoot":      `{"distribution": {"basic_share": 0.9}}`,
		"unordered slabs":       `{"professional_tax": [{"up_to": 20000, "monthly": 0}, {"up_to": 10000, "monthly": 100}, {"monthly": 200}]}`,
		"open slab not last":    `{"professional_tax": [{"monthly": 0}, {"up_to": 10000, "monthly": 100}]}`,
		"negative monthly slab": `{"professional_tax": [{"monthly": -5}]}`,
		"closed top slab":       `{"professional_tax": [{"up_to": 10000, "monthly": 0}, {"up_to": 20000, "monthly": 200}]}`,
		"unknown city":          `{"hra_rates": {"W": 0.2}}`,
	}

	f := factory.NewRulesFactory()
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.ParseRules(doc)
			require.Error(t, err)
			assert.ErrorIs(t, err, factory.ErrInvalidRules)

			var ruleErr *factory.RuleError
			assert.ErrorAs(t, err, &ruleErr)
			assert.NotEmpty(t, ruleErr.Field)
		})
	}
}

func TestValidate_RejectsUnknownCityAndClosedTable(t *testing.T) {
	rules := salary.DefaultRules()
	rules.HRARates["W"] = dec("0.2")
	assert.ErrorIs(t, factory.Validate(rules), factory.ErrInvalidRules)

	rules = salary.DefaultRules()
	upTo := dec("10000")
	rules.ProfessionalTaxSlabs = []salary.PTSlab{{UpTo: &upTo, Monthly: dec("0")}}
	err := factory.Validate(rules)
	var ruleErr *factory.RuleError
	require.ErrorAs(t, err, &ruleErr)
	assert.Equal(t, "professional_tax[0]", ruleErr.Field)
}

func TestParseRules_MalformedJSON(t *testing.T) {
	_, err := factory.NewRulesFactory().ParseRules(`{"da_rates": `)
	require.Error(t, err)
	assert.NotErrorIs(t, err, factory.ErrInvalidRules)
}

func TestToJSON_RoundTripsDefaults(t *testing.T) {
	f := factory.NewRulesFactory()

	doc := f.ToJSON(salary.DefaultRules())
	rules, err := f.FromJSON(doc)
	require.NoError(t, err)

	assert.Equal(t, 0.15, doc.HRARates["X"])
	require.Len(t, doc.ProfessionalTax, 5)
	assert.Nil(t, doc.ProfessionalTax[4].UpTo)
	assert.True(t, rules.ProfessionalTax(dec("600000")).Equal(dec("2400")))
}
