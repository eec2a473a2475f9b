package salary

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// BOUNDARY NORMALIZATION
// =============================================================================

// RawInputs are form values keyed by the snake_case field names of Inputs.
type RawInputs map[string]string

// Bounds on what a form value may hold. Anything outside them is treated as
// unparsable, so exponent notation can't smuggle in a number with millions
// of digits.
const (
	maxAmountLength  = 32
	maxFractionScale = 10
	maxIntegerDigits = 15
)

// ParseNonNegative converts a raw form value into a non-negative amount.
// Blank, unparsable, out-of-range and negative values all become zero so a
// partially filled form never blocks a preview.
func ParseNonNegative(raw string) decimal.Decimal {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "₹")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)
	if s == "" || len(s) > maxAmountLength {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return decimal.Zero
	}
	exp := int(d.Exponent())
	if exp < -maxFractionScale || exp > maxIntegerDigits || d.NumDigits()+exp > maxIntegerDigits {
		return decimal.Zero
	}
	return d
}

// ParseInputs normalizes every field of a raw form. Unknown keys are ignored.
func ParseInputs(raw RawInputs) Inputs {
	n := func(key string) decimal.Decimal { return ParseNonNegative(raw[key]) }
	return Inputs{
		BasicSalary: n("basic_salary"),
		GradePay:    n("grade_pay"),
		AGP:         n("agp"),
		HRARate:     n("hra_rate"),
		DARate:      n("da_rate"),
		City:        ParseCity(raw["city"]),

		TransportAllowance:  n("transport_allowance"),
		CLAAllowance:        n("cla_allowance"),
		MedicalAllowance:    n("medical_allowance"),
		OtherAllowances:     n("other_allowances"),
		SpecialAllowance:    n("special_allowance"),
		ConveyanceAllowance: n("conveyance_allowance"),

		TDSDeduction:       n("tds_deduction"),
		EPFDeduction:       n("epf_deduction"),
		Advance:            n("advance"),
		ProfessionalTax:    n("professional_tax"),
		ESIDeduction:       n("esi_deduction"),
		LoanDeduction:      n("loan_deduction"),
		InsuranceDeduction: n("insurance_deduction"),
		OtherDeductions:    n("other_deductions"),

		WorkingDays:    n("working_days"),
		TotalMonthDays: n("total_month_days"),
		DecidedSalary:  n("decided_salary"),
	}
}

// ParseCity maps a city label to its category; anything unrecognized is X.
func ParseCity(raw string) CityCategory {
	switch CityCategory(strings.ToUpper(strings.TrimSpace(raw))) {
	case CityY:
		return CityY
	case CityZ:
		return CityZ
	default:
		return CityX
	}
}

// ParseCalculationMode resolves a mode label. Unknown labels resolve to
// ActualSalary, the default branch of the mode selector.
func ParseCalculationMode(raw string) CalculationMode {
	switch normalizeLabel(raw) {
	case "sixth_pay", "sixth_pay_commission", "6th_pay", "sixthpay":
		return SixthPayCommission
	default:
		return ActualSalary
	}
}

// ParseStaffType resolves a staff type label.
func ParseStaffType(raw string) (StaffType, error) {
	switch normalizeLabel(raw) {
	case "teaching":
		return Teaching, nil
	case "non_teaching", "nonteaching":
		return NonTeaching, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownStaffType, raw)
	}
}

func normalizeLabel(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
