package salary

import "errors"

// The engine itself never fails; degenerate inputs are normalized.
// These errors belong to label parsing at the caller boundary.
var (
	// ErrUnknownStaffType is returned by ParseStaffType for unrecognized labels.
	ErrUnknownStaffType = errors.New("unknown staff type")
)
