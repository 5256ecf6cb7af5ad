// Package validate provides shared validation functions.
package validate

import (
	"fmt"
	"regexp"
	"strings"
)

// Input validates that a prompt is non-empty after trimming whitespace.
func Input(input string) error {
	if strings.TrimSpace(input) == "" {
		return fmt.Errorf("input is required")
	}
	return nil
}

var namePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

// Name validates an optional label for a batch entry: lowercase letters,
// digits, dashes and underscores, starting with a letter or digit.
func Name(name string) error {
	if name == "" {
		return nil
	}
	if !namePattern.MatchString(name) {
		return fmt.Errorf("name %q must be lowercase alphanumeric (dashes and underscores allowed)", name)
	}
	return nil
}
