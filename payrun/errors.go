package payrun

import "errors"

var (
	// ErrEmployeeRequired is returned when a breakdown is saved without
	// naming the employee it belongs to.
	ErrEmployeeRequired = errors.New("employee is required")

	// ErrZeroGross is returned when a breakdown with no earnings is saved.
	ErrZeroGross = errors.New("gross salary is zero")

	// ErrDuplicateEmployee is returned when a pay run lists an employee more
	// than once.
	ErrDuplicateEmployee = errors.New("employee appears more than once in pay run")
)
