/*
Package factory provides JSON/YAML to Go rule-set conversion.

PURPOSE:
  Converts rule documents into salary.Rules. Rates, implicit allowances,
  the decided-salary split and the professional tax table can change
  without a code change: payroll admins edit a document, the factory
  overlays it on salary.DefaultRules().

OVERLAY SEMANTICS:
  Every field is optional. Omitted fields keep the default value, so a
  document that only sets hra_rates.Y changes nothing else. A non-empty
  professional_tax list replaces the whole table.

DOCUMENT SCHEMA (JSON shown, YAML uses the same keys):
  {
    "da_rates": {"teaching": 1.64, "non_teaching": 0.90},
    "hra_rates": {"X": 0.15, "Y": 0.15, "Z": 0.15},
    "default_hra_rate": 0.15,
    "non_teaching_defaults": {"ta": 800, "cla": 120},
    "distribution": {
      "basic_share": 0.40, "da_of_basic": 0.90, "hra_of_basic": 0.15,
      "ta_share": 0.05, "cla_share": 0.03, "medical_share": 0.02
    },
    "default_month_days": 30,
    "professional_tax": [
      {"up_to": 10000, "monthly": 0},
      {"up_to": 15000, "monthly": 110},
      {"monthly": 200}
    ]
  }

VALIDATION:
  - rates, shares and amounts must be non-negative
  - distribution shares must not exceed the whole decided salary
  - default_month_days must be positive
  - hra_rates keys must be X, Y or Z
  - slab ceilings must be strictly increasing and the last slab, and only
    the last slab, must be open-ended

SEE ALSO:
  - salary/rules.go: Rules and DefaultRules
  - cmd/server/main.go: -rules flag
*/
package factory

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/warp/salary-engine/salary"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// DOCUMENT TYPES
// =============================================================================

// RulesJSON is the document representation of a rule set.
type RulesJSON struct {
	DARates             *DARatesJSON           `json:"da_rates,omitempty" yaml:"da_rates,omitempty"`
	HRARates            map[string]float64     `json:"hra_rates,omitempty" yaml:"hra_rates,omitempty"`
	DefaultHRARate      *float64               `json:"default_hra_rate,omitempty" yaml:"default_hra_rate,omitempty"`
	NonTeachingDefaults *AllowanceDefaultsJSON `json:"non_teaching_defaults,omitempty" yaml:"non_teaching_defaults,omitempty"`
	Distribution        *DistributionJSON      `json:"distribution,omitempty" yaml:"distribution,omitempty"`
	DefaultMonthDays    *float64               `json:"default_month_days,omitempty" yaml:"default_month_days,omitempty"`
	ProfessionalTax     []PTSlabJSON           `json:"professional_tax,omitempty" yaml:"professional_tax,omitempty"`
}

// DARatesJSON holds the SixthPay DA rates.
type DARatesJSON struct {
	Teaching    *float64 `json:"teaching,omitempty" yaml:"teaching,omitempty"`
	NonTeaching *float64 `json:"non_teaching,omitempty" yaml:"non_teaching,omitempty"`
}

// AllowanceDefaultsJSON holds implicit non-teaching allowances.
type AllowanceDefaultsJSON struct {
	TA  *float64 `json:"ta,omitempty" yaml:"ta,omitempty"`
	CLA *float64 `json:"cla,omitempty" yaml:"cla,omitempty"`
}

// DistributionJSON holds the decided-salary split.
type DistributionJSON struct {
	BasicShare   *float64 `json:"basic_share,omitempty" yaml:"basic_share,omitempty"`
	DAOfBasic    *float64 `json:"da_of_basic,omitempty" yaml:"da_of_basic,omitempty"`
	HRAOfBasic   *float64 `json:"hra_of_basic,omitempty" yaml:"hra_of_basic,omitempty"`
	TAShare      *float64 `json:"ta_share,omitempty" yaml:"ta_share,omitempty"`
	CLAShare     *float64 `json:"cla_share,omitempty" yaml:"cla_share,omitempty"`
	MedicalShare *float64 `json:"medical_share,omitempty" yaml:"medical_share,omitempty"`
}

// PTSlabJSON is one professional tax slab. A nil UpTo is open-ended.
type PTSlabJSON struct {
	UpTo    *float64 `json:"up_to,omitempty" yaml:"up_to,omitempty"`
	Monthly float64  `json:"monthly" yaml:"monthly"`
}

// =============================================================================
// RULES FACTORY
// =============================================================================

// RulesFactory converts rule documents to salary.Rules.
type RulesFactory struct{}

// NewRulesFactory creates a new rules factory.
func NewRulesFactory() *RulesFactory {
	return &RulesFactory{}
}

// ParseRules parses a JSON document.
func (f *RulesFactory) ParseRules(jsonStr string) (salary.Rules, error) {
	var rj RulesJSON
	if err := json.Unmarshal([]byte(jsonStr), &rj); err != nil {
		return salary.Rules{}, fmt.Errorf("failed to parse rules JSON: %w", err)
	}
	return f.FromJSON(rj)
}

// ParseRulesYAML parses a YAML document.
func (f *RulesFactory) ParseRulesYAML(yamlStr string) (salary.Rules, error) {
	var rj RulesJSON
	if err := yaml.Unmarshal([]byte(yamlStr), &rj); err != nil {
		return salary.Rules{}, fmt.Errorf("failed to parse rules YAML: %w", err)
	}
	return f.FromJSON(rj)
}

// LoadFile reads a rule document from disk. Files ending in .yaml or .yml
// are parsed as YAML, everything else as JSON.
func (f *RulesFactory) LoadFile(path string) (salary.Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return salary.Rules{}, fmt.Errorf("failed to read rules file: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return f.ParseRulesYAML(string(data))
	default:
		return f.ParseRules(string(data))
	}
}

// FromJSON overlays a document on the default rules and validates the result.
func (f *RulesFactory) FromJSON(rj RulesJSON) (salary.Rules, error) {
	rules := salary.DefaultRules()

	if rj.DARates != nil {
		overlay(&rules.TeachingDARate, rj.DARates.Teaching)
		overlay(&rules.NonTeachingDARate, rj.DARates.NonTeaching)
	}

	for label, rate := range rj.HRARates {
		city := salary.CityCategory(strings.ToUpper(strings.TrimSpace(label)))
		if !knownCity(city) {
			return salary.Rules{}, &RuleError{Field: "hra_rates." + label, Reason: "unknown city category"}
		}
		rules.HRARates[city] = decimal.NewFromFloat(rate)
	}
	overlay(&rules.DefaultHRARate, rj.DefaultHRARate)

	if rj.NonTeachingDefaults != nil {
		overlay(&rules.NonTeachingDefaultTA, rj.NonTeachingDefaults.TA)
		overlay(&rules.NonTeachingDefaultCLA, rj.NonTeachingDefaults.CLA)
	}

	if dj := rj.Distribution; dj != nil {
		overlay(&rules.Distribution.BasicShare, dj.BasicShare)
		overlay(&rules.Distribution.DAOfBasic, dj.DAOfBasic)
		overlay(&rules.Distribution.HRAOfBasic, dj.HRAOfBasic)
		overlay(&rules.Distribution.TAShare, dj.TAShare)
		overlay(&rules.Distribution.CLAShare, dj.CLAShare)
		overlay(&rules.Distribution.MedicalShare, dj.MedicalShare)
	}

	overlay(&rules.DefaultMonthDays, rj.DefaultMonthDays)

	if len(rj.ProfessionalTax) > 0 {
		rules.ProfessionalTaxSlabs = make([]salary.PTSlab, len(rj.ProfessionalTax))
		for i, sj := range rj.ProfessionalTax {
			slab := salary.PTSlab{Monthly: decimal.NewFromFloat(sj.Monthly)}
			if sj.UpTo != nil {
				upTo := decimal.NewFromFloat(*sj.UpTo)
				slab.UpTo = &upTo
			}
			rules.ProfessionalTaxSlabs[i] = slab
		}
	}

	if err := Validate(rules); err != nil {
		return salary.Rules{}, err
	}
	return rules, nil
}

// ToJSON converts rules to their document representation.
func (f *RulesFactory) ToJSON(rules salary.Rules) RulesJSON {
	rj := RulesJSON{
		DARates: &DARatesJSON{
			Teaching:    floatPtr(rules.TeachingDARate),
			NonTeaching: floatPtr(rules.NonTeachingDARate),
		},
		HRARates:       make(map[string]float64, len(rules.HRARates)),
		DefaultHRARate: floatPtr(rules.DefaultHRARate),
		NonTeachingDefaults: &AllowanceDefaultsJSON{
			TA:  floatPtr(rules.NonTeachingDefaultTA),
			CLA: floatPtr(rules.NonTeachingDefaultCLA),
		},
		Distribution: &DistributionJSON{
			BasicShare:   floatPtr(rules.Distribution.BasicShare),
			DAOfBasic:    floatPtr(rules.Distribution.DAOfBasic),
			HRAOfBasic:   floatPtr(rules.Distribution.HRAOfBasic),
			TAShare:      floatPtr(rules.Distribution.TAShare),
			CLAShare:     floatPtr(rules.Distribution.CLAShare),
			MedicalShare: floatPtr(rules.Distribution.MedicalShare),
		},
		DefaultMonthDays: floatPtr(rules.DefaultMonthDays),
	}
	for city, rate := range rules.HRARates {
		rj.HRARates[string(city)] = rate.InexactFloat64()
	}
	for _, slab := range rules.ProfessionalTaxSlabs {
		sj := PTSlabJSON{Monthly: slab.Monthly.InexactFloat64()}
		if slab.UpTo != nil {
			sj.UpTo = floatPtr(*slab.UpTo)
		}
		rj.ProfessionalTax = append(rj.ProfessionalTax, sj)
	}
	return rj
}

// =============================================================================
// VALIDATION
// =============================================================================

// Validate checks a rule set for values the engine cannot use.
func Validate(rules salary.Rules) error {
	nonNegative := map[string]decimal.Decimal{
		"da_rates.teaching":          rules.TeachingDARate,
		"da_rates.non_teaching":      rules.NonTeachingDARate,
		"default_hra_rate":           rules.DefaultHRARate,
		"non_teaching_defaults.ta":   rules.NonTeachingDefaultTA,
		"non_teaching_defaults.cla":  rules.NonTeachingDefaultCLA,
		"distribution.basic_share":   rules.Distribution.BasicShare,
		"distribution.da_of_basic":   rules.Distribution.DAOfBasic,
		"distribution.hra_of_basic":  rules.Distribution.HRAOfBasic,
		"distribution.ta_share":      rules.Distribution.TAShare,
		"distribution.cla_share":     rules.Distribution.CLAShare,
		"distribution.medical_share": rules.Distribution.MedicalShare,
	}
	for city, rate := range rules.HRARates {
		if !knownCity(city) {
			return &RuleError{Field: "hra_rates." + string(city), Reason: "unknown city category"}
		}
		nonNegative["hra_rates."+string(city)] = rate
	}

	// Sorted so the reported field is stable.
	fields := make([]string, 0, len(nonNegative))
	for field := range nonNegative {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	for _, field := range fields {
		if nonNegative[field].IsNegative() {
			return &RuleError{Field: field, Reason: "must not be negative"}
		}
	}

	dist := rules.Distribution
	share := dist.BasicShare.Mul(decimal.NewFromInt(1).Add(dist.DAOfBasic).Add(dist.HRAOfBasic)).
		Add(dist.TAShare).Add(dist.CLAShare).Add(dist.MedicalShare)
	if share.GreaterThan(decimal.NewFromInt(1)) {
		return &RuleError{Field: "distribution", Reason: "shares exceed the decided salary"}
	}

	if !rules.DefaultMonthDays.IsPositive() {
		return &RuleError{Field: "default_month_days", Reason: "must be positive"}
	}

	slabs := rules.ProfessionalTaxSlabs
	if len(slabs) == 0 {
		return &RuleError{Field: "professional_tax", Reason: "at least one slab is required"}
	}
	var prev *decimal.Decimal
	for i, slab := range slabs {
		field := fmt.Sprintf("professional_tax[%d]", i)
		if slab.Monthly.IsNegative() {
			return &RuleError{Field: field, Reason: "monthly tax must not be negative"}
		}
		if slab.UpTo == nil {
			if i != len(slabs)-1 {
				return &RuleError{Field: field, Reason: "only the last slab may be open-ended"}
			}
			continue
		}
		if prev != nil && !slab.UpTo.GreaterThan(*prev) {
			return &RuleError{Field: field, Reason: "ceilings must be strictly increasing"}
		}
		prev = slab.UpTo
	}
	if slabs[len(slabs)-1].UpTo != nil {
		field := fmt.Sprintf("professional_tax[%d]", len(slabs)-1)
		return &RuleError{Field: field, Reason: "the last slab must be open-ended"}
	}
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

func knownCity(c salary.CityCategory) bool {
	return c == salary.CityX || c == salary.CityY || c == salary.CityZ
}

func overlay(dst *decimal.Decimal, v *float64) {
	if v != nil {
		*dst = decimal.NewFromFloat(*v)
	}
}

func floatPtr(d decimal.Decimal) *float64 {
	v := d.InexactFloat64()
	return &v
}
