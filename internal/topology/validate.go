package topology

import (
	"errors"
	"fmt"
	"strings"
)

// FieldError names a declaration field that failed a structural check.
type FieldError struct {
	Field   string
	Problem string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Problem)
}

// Report captures validation results for a declaration.
type Report struct {
	Path     string
	Errors   []error
	Warnings []string
}

// IsValid reports whether the declaration passed every fatal check.
func (r *Report) IsValid() bool {
	return r != nil && len(r.Errors) == 0
}

// Err joins the fatal errors, or returns nil when there are none.
func (r *Report) Err() error {
	if r == nil || len(r.Errors) == 0 {
		return nil
	}
	return errors.Join(r.Errors...)
}

// Validate checks the structural minimums of a declaration. Missing or
// mis-shaped required fields are errors; optional fields that are absent or
// unusable produce warnings. Service and integration names are not checked.
func Validate(decl Declaration) *Report {
	report := &Report{}
	raw, ok := decl["environment"]
	if !ok || raw == nil {
		report.Errors = append(report.Errors, &FieldError{Field: "environment", Problem: "no environment specified"})
		return report
	}
	env, ok := asMap(raw)
	if !ok {
		report.Errors = append(report.Errors, &FieldError{Field: "environment", Problem: "must be a mapping"})
		return report
	}
	if scalarString(env["project"]) == "" {
		report.Errors = append(report.Errors, &FieldError{Field: "environment.project", Problem: "no project specified"})
	}
	if services, present := env["services"]; !present || services == nil {
		report.Errors = append(report.Errors, &FieldError{Field: "environment.services", Problem: "no services specified"})
	} else if _, ok := asMap(services); !ok {
		report.Errors = append(report.Errors, &FieldError{Field: "environment.services", Problem: "must be a mapping of service to plan"})
	}
	if integrations, present := env["integrations"]; !present {
		report.Warnings = append(report.Warnings, "no integrations specified")
	} else if integrations != nil {
		if _, ok := asMap(integrations); !ok {
			report.Errors = append(report.Errors, &FieldError{Field: "environment.integrations", Problem: "must be a mapping of service to integration list"})
		}
	}
	if networking, present := env["networking"]; present {
		mode := scalarString(networking)
		if !ValidNetworking(strings.ToLower(mode)) {
			report.Warnings = append(report.Warnings, fmt.Sprintf(
				"ignoring invalid networking %q: must be one of %q, %q, %q",
				mode, NetworkingPublic, NetworkingVPC, NetworkingPrivateLink))
		}
	}
	return report
}

// ValidateFile loads and validates a declaration file.
func ValidateFile(path string) (*Report, Declaration, error) {
	decl, err := LoadDeclarationFile(path)
	if err != nil {
		return nil, nil, err
	}
	report := Validate(decl)
	report.Path = path
	return report, decl, nil
}
