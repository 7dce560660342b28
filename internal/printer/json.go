package printer

import (
	"encoding/json"
	"io"

	"github.com/slok/patchcheck/internal/model"
)

// JSONPrinter prints pipeline results in JSON format, one object per result.
type JSONPrinter struct {
	writer io.Writer
}

// NewJSONPrinter creates a new JSON printer.
func NewJSONPrinter(w io.Writer) *JSONPrinter {
	return &JSONPrinter{writer: w}
}

type validateOutput struct {
	OK      bool   `json:"ok"`
	Stdout  string `json:"stdout"`
	Stderr  string `json:"stderr"`
	Preview string `json:"preview"`
}

// notAppliedOutput has the patch tool output of a diff that didn't apply.
type notAppliedOutput struct {
	Applied bool   `json:"applied"`
	Stdout  string `json:"stdout"`
	Stderr  string `json:"stderr"`
}

// appliedOutput has the verification checks of an applied diff.
type appliedOutput struct {
	Applied bool          `json:"applied"`
	Checks  []checkOutput `json:"checks"`
}

type checkOutput struct {
	Name     string  `json:"name"`
	OK       bool    `json:"ok"`
	Output   string  `json:"output"`
	Error    string  `json:"error"`
	ExitCode int     `json:"exit_code"`
	TimedOut bool    `json:"timed_out,omitempty"`
	Duration float64 `json:"duration_seconds"`
}

type preflightOutput struct {
	ID      string `json:"id"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// PrintValidate prints the validation result in JSON format.
func (j *JSONPrinter) PrintValidate(_ string, res model.ValidateResult) error {
	return j.encode(validateOutput{
		OK:      res.OK,
		Stdout:  res.Stdout,
		Stderr:  res.Stderr,
		Preview: res.Preview,
	})
}

// PrintApply prints the apply result in JSON format.
func (j *JSONPrinter) PrintApply(_ string, res model.ApplyResult) error {
	if !res.Applied {
		return j.encode(notAppliedOutput{
			Applied: false,
			Stdout:  res.Stdout,
			Stderr:  res.Stderr,
		})
	}

	// Always an array, even without checks.
	checks := make([]checkOutput, 0, len(res.Checks))
	for _, c := range res.Checks {
		checks = append(checks, checkOutput{
			Name:     c.Name,
			OK:       c.OK,
			Output:   c.Output,
			Error:    c.Error,
			ExitCode: c.ExitCode,
			TimedOut: c.TimedOut,
			Duration: c.Duration.Seconds(),
		})
	}

	return j.encode(appliedOutput{Applied: true, Checks: checks})
}

// PrintPreflight prints the preflight results in JSON format.
func (j *JSONPrinter) PrintPreflight(results []model.PreflightResult) error {
	out := make([]preflightOutput, 0, len(results))
	for _, r := range results {
		out = append(out, preflightOutput{ID: r.ID, Status: string(r.Status), Message: r.Message})
	}
	return j.encode(out)
}

func (j *JSONPrinter) encode(v any) error {
	enc := json.NewEncoder(j.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
