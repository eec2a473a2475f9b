package salary

// Calculator derives the full-month component set for one mode/staff pair.
type Calculator func(rules Rules, in Inputs) ComponentSet

// SelectCalculator returns the calculator for a mode and staff type.
// Every combination resolves; anything that is not SixthPay runs the
// ActualSalary branch.
func SelectCalculator(mode CalculationMode, staff StaffType) Calculator {
	switch mode {
	case SixthPayCommission:
		if staff == Teaching {
			return sixthPayTeaching
		}
		return sixthPayNonTeaching
	default:
		if staff == Teaching {
			return actualSalaryTeaching
		}
		return actualSalaryNonTeaching
	}
}
