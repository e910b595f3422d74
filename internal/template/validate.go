// internal/template/validate.go
package template

import (
	"fmt"
	"strings"
)

// ValidationResult is the structured outcome of authoring-time validation.
// Problems are accumulated, never thrown, so a UI can display all of them at
// once.
type ValidationResult struct {
	IsValid   bool     `json:"isValid"`
	Errors    []string `json:"errors,omitempty"`
	Warnings  []string `json:"warnings,omitempty"`
	Variables []string `json:"variables,omitempty"`
}

// Validate checks a single template string against the available-variable
// catalog and the declared variable list. Placeholders outside the catalog
// are errors, declared variables never referenced are warnings, unbalanced
// delimiters are syntax errors. Validation never mutates state.
func Validate(tmpl string, declared []string) *ValidationResult {
	result := &ValidationResult{IsValid: true}

	if strings.Count(tmpl, "{{") != strings.Count(tmpl, "}}") {
		result.IsValid = false
		result.Errors = append(result.Errors, "unbalanced placeholder delimiters")
	}

	result.Variables = ExtractPlaceholders(tmpl)

	for _, path := range result.Variables {
		if !isAvailableVariable(path) {
			result.IsValid = false
			result.Errors = append(result.Errors, fmt.Sprintf("unknown variable %q", path))
		}
	}

	used := map[string]bool{}
	for _, path := range result.Variables {
		used[path] = true
	}
	for _, decl := range declared {
		if !used[decl] {
			result.Warnings = append(result.Warnings, fmt.Sprintf("declared variable %q is never referenced", decl))
		}
	}

	return result
}

// ValidateChannels validates every field of every channel block, merging the
// per-field results into one.
func ValidateChannels(channels map[string]map[string]string, declared []string) *ValidationResult {
	merged := &ValidationResult{IsValid: true}
	seen := map[string]bool{}

	for channel, fields := range channels {
		for field, tmpl := range fields {
			r := Validate(tmpl, nil)
			if !r.IsValid {
				merged.IsValid = false
			}
			for _, e := range r.Errors {
				merged.Errors = append(merged.Errors, fmt.Sprintf("%s.%s: %s", channel, field, e))
			}
			for _, v := range r.Variables {
				if !seen[v] {
					seen[v] = true
					merged.Variables = append(merged.Variables, v)
				}
			}
		}
	}

	for _, decl := range declared {
		if !seen[decl] {
			merged.Warnings = append(merged.Warnings, fmt.Sprintf("declared variable %q is never referenced", decl))
		}
	}

	return merged
}
