package model

import (
	"fmt"
	"time"
)

// CheckSpec is a named verification command (e.g. lint, tests).
type CheckSpec struct {
	Name    string
	Command Command
}

// Validate validates the check spec.
func (c CheckSpec) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("check name is required: %w", ErrNotValid)
	}
	if err := c.Command.Validate(); err != nil {
		return fmt.Errorf("check %q: %w", c.Name, err)
	}
	return nil
}

// DefaultChecks returns the verification checks used when none are configured.
func DefaultChecks() []CheckSpec {
	return []CheckSpec{
		{Name: "lint", Command: Command{Name: "flake8", Args: []string{"."}}},
		{Name: "tests", Command: Command{Name: "pytest", Args: []string{"-q"}}},
	}
}

// CheckResult represents the result of a single verification check.
type CheckResult struct {
	Name     string
	OK       bool
	Output   string // Captured stdout.
	Error    string // Captured stderr, or the reason the check could not run.
	ExitCode int
	TimedOut bool
	Duration time.Duration
}

// AllChecksOK returns true if every check passed.
func AllChecksOK(results []CheckResult) bool {
	for _, r := range results {
		if !r.OK {
			return false
		}
	}
	return true
}

// CountChecks counts check results by outcome.
func CountChecks(results []CheckResult) (passed, failed int) {
	for _, r := range results {
		if r.OK {
			passed++
		} else {
			failed++
		}
	}
	return
}

// PreflightStatus represents the status of a doctor check.
type PreflightStatus string

const (
	// PreflightStatusOK indicates the check passed.
	PreflightStatusOK PreflightStatus = "ok"
	// PreflightStatusWarning indicates the check passed with a warning.
	PreflightStatusWarning PreflightStatus = "warning"
	// PreflightStatusError indicates the check failed.
	PreflightStatusError PreflightStatus = "error"
)

// PreflightResult represents the result of a single environment preflight check.
type PreflightResult struct {
	ID      string          // Unique identifier for the check (e.g., "binary_git").
	Message string          // Human-readable description of the result.
	Status  PreflightStatus // Status of the check.
}

// CountPreflights counts preflight results by status.
func CountPreflights(results []PreflightResult) (ok, warnings, errors int) {
	for _, r := range results {
		switch r.Status {
		case PreflightStatusOK:
			ok++
		case PreflightStatusWarning:
			warnings++
		case PreflightStatusError:
			errors++
		}
	}
	return
}
