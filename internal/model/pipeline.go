package model

// PatchResult is the result of running the patch tool in apply mode.
type PatchResult struct {
	Applied bool
	Stdout  string
	Stderr  string
}

// ValidateResult is the result of a dry-run validation.
type ValidateResult struct {
	OK      bool
	Stdout  string
	Stderr  string
	Preview string
}

// ApplyResult is the result of the apply and verify pipeline.
type ApplyResult struct {
	Applied bool
	// Stdout and Stderr are the patch tool output, only set when the patch was not applied.
	Stdout string
	Stderr string
	// Checks are the verification results in configured order, nil when not applied.
	Checks []CheckResult
}

// Passed returns true if the patch was applied and all the checks passed.
func (a ApplyResult) Passed() bool {
	return a.Applied && AllChecksOK(a.Checks)
}
