// This file adds a lightweight linter/validator for Pipeline values. It
// performs static checks over a decoded Pipeline and returns a list of
// issues (errors and warnings) that callers can surface in a CLI or tests.
package config

import (
	"fmt"
	"strings"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that should block execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning indicates a finding that should be surfaced to users
	// but does not necessarily block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation finding for a Pipeline.
//
// Path is a dotted path into the config (e.g. "storage.kind"). Message is
// human-readable.
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a
// single error in contexts that expect one.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// HasErrors reports whether any issue in the list is an error.
func HasErrors(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}

// ValidatePipeline performs static validation of a Pipeline. It does not
// mutate the pipeline; callers decide whether to treat warnings as fatal.
func ValidatePipeline(p Pipeline) []Issue {
	var issues []Issue

	if strings.TrimSpace(p.Job) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "job",
			Message:  "job must not be empty; it labels metrics and identifies runs",
		})
	}
	if strings.TrimSpace(p.CSVDir) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "csv_dir",
			Message:  "csv_dir must not be empty",
		})
	}

	issues = append(issues, validateSource(p.Source)...)
	issues = append(issues, validateStorage(p.Storage)...)
	issues = append(issues, validateMetrics(p.Metrics)...)
	return issues
}

func validateSource(s Source) []Issue {
	var issues []Issue
	if strings.TrimSpace(s.ZipCode) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "source.zip_code",
			Message:  "source.zip_code must not be empty",
		})
	}
	if strings.TrimSpace(s.APIKey) == "" {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "source.api_key",
			Message:  "no API key configured; set API_KEY in the environment before extracting",
		})
	}
	if s.MaxAddresses > s.Limit {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "source.max_addresses",
			Message: fmt.Sprintf("max_addresses (%d) exceeds the search limit (%d); the extra slots can never fill",
				s.MaxAddresses, s.Limit),
		})
	}
	return issues
}

func validateStorage(s Storage) []Issue {
	var issues []Issue

	if strings.TrimSpace(s.Kind) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.kind",
			Message:  "storage.kind must not be empty",
		})
		return issues
	}

	// Unknown kinds are warnings for forward compatibility; registration
	// happens at runtime.
	known := map[string]struct{}{
		"postgres": {},
		"sqlite":   {},
	}
	if _, ok := known[s.Kind]; !ok {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "storage.kind",
			Message:  fmt.Sprintf("unknown storage kind %q; ensure a matching backend is registered", s.Kind),
		})
	}

	if strings.TrimSpace(s.DSN) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.dsn",
			Message:  "storage.dsn must not be empty; set DATABASE_URL in the environment or dsn in the file",
		})
	}
	if strings.TrimSpace(s.Schema) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.schema",
			Message:  "storage.schema must not be empty",
		})
	}
	return issues
}

func validateMetrics(m Metrics) []Issue {
	var issues []Issue
	switch m.Backend {
	case "", "none", "pushgateway", "datadog":
	default:
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "metrics.backend",
			Message:  fmt.Sprintf("unknown metrics backend %q; metrics will be dropped", m.Backend),
		})
	}
	if m.Backend == "pushgateway" && strings.TrimSpace(m.GatewayURL) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "metrics.gateway_url",
			Message:  "gateway_url is required when metrics.backend is \"pushgateway\"",
		})
	}
	if m.Backend == "datadog" && strings.TrimSpace(m.StatsdAddr) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "metrics.statsd_addr",
			Message:  "statsd_addr is required when metrics.backend is \"datadog\"",
		})
	}
	return issues
}
