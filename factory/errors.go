package factory

import (
	"errors"
	"fmt"
)

// ErrInvalidRules is returned when a rule document describes values the
// engine cannot use.
var ErrInvalidRules = errors.New("invalid salary rules")

// RuleError names the offending field of a rule document.
type RuleError struct {
	Field  string
	Reason string
}

func (e *RuleError) Error() string {
	return fmt.Sprintf("invalid salary rules: %s %s", e.Field, e.Reason)
}

func (e *RuleError) Unwrap() error {
	return ErrInvalidRules
}
