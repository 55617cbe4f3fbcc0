package topology

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func mustParse(t *testing.T, payload string) Declaration {
	t.Helper()
	decl, err := ParseDeclaration([]byte(payload), FormatYAML)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return decl
}

func TestValidateRequiresEnvironment(t *testing.T) {
	report := Validate(mustParse(t, "prefix: demo\n"))
	if report.IsValid() {
		t.Fatalf("expected missing environment to fail")
	}
	var fieldErr *FieldError
	if !errors.As(report.Err(), &fieldErr) || fieldErr.Field != "environment" {
		t.Fatalf("expected environment field error, got %v", report.Err())
	}
}

func TestValidateRejectsServicesList(t *testing.T) {
	report := Validate(mustParse(t, `
environment:
  project: acme
  services:
    - kafka
    - pg
  integrations: {}
`))
	if report.IsValid() {
		t.Fatalf("expected list of services to fail")
	}
	if !strings.Contains(report.Err().Error(), "environment.services") {
		t.Fatalf("diagnostic should name services, got %v", report.Err())
	}
}

func TestValidateRequiresProjectAndServices(t *testing.T) {
	report := Validate(mustParse(t, `
environment:
  cloud: aws-eu-west-1
`))
	if len(report.Errors) != 2 {
		t.Fatalf("expected project and services errors, got %v", report.Errors)
	}
}

func TestValidateWarnsWithoutBlocking(t *testing.T) {
	report := Validate(mustParse(t, `
environment:
  project: acme
  networking: satellite
  services:
    kafka: business-4
`))
	if !report.IsValid() {
		t.Fatalf("warnings must not fail validation: %v", report.Err())
	}
	if len(report.Warnings) != 2 {
		t.Fatalf("expected integrations and networking warnings, got %v", report.Warnings)
	}
}

func TestValidateAcceptsEmptyServices(t *testing.T) {
	report := Validate(mustParse(t, `
environment:
  project: acme
  services: {}
  integrations: {}
`))
	if !report.IsValid() || len(report.Warnings) != 0 {
		t.Fatalf("empty services should be valid without warnings: %+v", report)
	}
}

func TestValidateFileSetsPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "definition.yml")
	if err := os.WriteFile(path, []byte(sampleDeclaration), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	report, decl, err := ValidateFile(path)
	if err != nil {
		t.Fatalf("validate file: %v", err)
	}
	if report.Path != path || !report.IsValid() || decl == nil {
		t.Fatalf("unexpected report: %+v", report)
	}
}
