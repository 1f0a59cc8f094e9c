// Package validator provides small composable validation rules with
// field-level error reporting.
//
// Rules are values; Apply evaluates a batch and returns every failure
// at once as ValidationErrors, so a registration form reports all of
// its problems in a single round trip.
package validator

import (
	"fmt"
	"strings"
)

// ValidationError is a single field-level validation failure.
type ValidationError struct {
	Field   string
	Message string
}

// ValidationErrors collects all failures from one Apply call.
type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "validation failed"
	}
	parts := make([]string, len(ve))
	for i, err := range ve {
		parts[i] = fmt.Sprintf("%s: %s", err.Field, err.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Has reports whether any failure concerns the given field.
func (ve ValidationErrors) Has(field string) bool {
	for _, err := range ve {
		if err.Field == field {
			return true
		}
	}
	return false
}

// Rule pairs a predicate with the error reported when it fails.
type Rule struct {
	Check func() bool
	Error ValidationError
}

// Apply evaluates every rule and returns the accumulated failures, or
// nil when all pass.
func Apply(rules ...Rule) error {
	var errs ValidationErrors
	for _, rule := range rules {
		if !rule.Check() {
			errs = append(errs, rule.Error)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}
