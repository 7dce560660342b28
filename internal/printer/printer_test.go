package printer_test

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/patchcheck/internal/model"
	"github.com/slok/patchcheck/internal/printer"
)

func TestJSONPrinterPrintValidate(t *testing.T) {
	var buf bytes.Buffer
	p := printer.NewJSONPrinter(&buf)

	err := p.PrintValidate("fix.diff", model.ValidateResult{OK: false, Stderr: "error: corrupt patch", Preview: "--- a/x"})
	require.NoError(t, err)

	assert.JSONEq(t, `{"ok": false, "stdout": "", "stderr": "error: corrupt patch", "preview": "--- a/x"}`, buf.String())
}

func TestJSONPrinterPrintApply(t *testing.T) {
	tests := map[string]struct {
		res     model.ApplyResult
		expJSON string
	}{
		"A not applied diff should print the patch tool output.": {
			res:     model.ApplyResult{Applied: false, Stderr: "error: patch failed"},
			expJSON: `{"applied": false, "stdout": "", "stderr": "error: patch failed"}`,
		},

		"An applied diff should print the checks.": {
			res: model.ApplyResult{Applied: true, Checks: []model.CheckResult{
				{Name: "lint", OK: true, Duration: 1500 * time.Millisecond},
				{Name: "tests", OK: false, Output: "1 failed", ExitCode: 1, TimedOut: true},
			}},
			expJSON: `{"applied": true, "checks": [
				{"name": "lint", "ok": true, "output": "", "error": "", "exit_code": 0, "duration_seconds": 1.5},
				{"name": "tests", "ok": false, "output": "1 failed", "error": "", "exit_code": 1, "timed_out": true, "duration_seconds": 0}
			]}`,
		},

		"An applied diff without checks should print an empty list.": {
			res:     model.ApplyResult{Applied: true},
			expJSON: `{"applied": true, "checks": []}`,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			p := printer.NewJSONPrinter(&buf)

			err := p.PrintApply("fix.diff", test.res)
			require.NoError(t, err)
			assert.JSONEq(t, test.expJSON, buf.String())
		})
	}
}

func TestJSONPrinterPrintPreflight(t *testing.T) {
	var buf bytes.Buffer
	p := printer.NewJSONPrinter(&buf)

	err := p.PrintPreflight([]model.PreflightResult{{ID: "binary_git", Message: "git found", Status: model.PreflightStatusOK}})
	require.NoError(t, err)

	var got []map[string]string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, []map[string]string{{"id": "binary_git", "status": "ok", "message": "git found"}}, got)
}

func TestTablePrinterPrintValidate(t *testing.T) {
	var buf bytes.Buffer
	p := printer.NewTablePrinter(&buf)

	err := p.PrintValidate("fix.diff", model.ValidateResult{OK: false, Stderr: "error: corrupt patch\n"})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Diff:       fix.diff")
	assert.Contains(t, out, "Valid:      no")
	assert.Contains(t, out, "Stderr:\n  error: corrupt patch\n")
	assert.NotContains(t, out, "Stdout:")
}

func TestTablePrinterPrintApply(t *testing.T) {
	var buf bytes.Buffer
	p := printer.NewTablePrinter(&buf)

	err := p.PrintApply("fix.diff", model.ApplyResult{Applied: true, Checks: []model.CheckResult{
		{Name: "lint", OK: true, Duration: 350 * time.Millisecond},
		{Name: "tests", OK: false, ExitCode: -1, TimedOut: true, Error: "killed"},
	}})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Applied:    yes")
	assert.Contains(t, out, "Checks:     1 passed, 1 failed")
	assert.Regexp(t, `lint\s+pass\s+0\s+350ms`, out)
	assert.Regexp(t, `tests\s+timeout\s+-1\s+0s`, out)
	assert.Contains(t, out, "--- tests\nError:\n  killed\n")
}

func TestTablePrinterPrintPreflight(t *testing.T) {
	tests := map[string]struct {
		results    []model.PreflightResult
		expSummary string
	}{
		"All passing preflights should print a success summary.": {
			results:    []model.PreflightResult{{ID: "binary_git", Status: model.PreflightStatusOK}},
			expSummary: "All checks passed!",
		},

		"Failing preflights should be counted on the summary.": {
			results: []model.PreflightResult{
				{ID: "binary_git", Status: model.PreflightStatusError},
				{ID: "binary_flake8", Status: model.PreflightStatusError},
				{ID: "docker", Status: model.PreflightStatusWarning},
			},
			expSummary: "2 error(s), 1 warning(s)",
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			p := printer.NewTablePrinter(&buf)

			require.NoError(t, p.PrintPreflight(test.results))
			assert.Contains(t, buf.String(), test.expSummary)
		})
	}
}

func TestFormatDuration(t *testing.T) {
	tests := map[string]struct {
		d   time.Duration
		exp string
	}{
		"Zero should be 0s.":                 {d: 0, exp: "0s"},
		"Sub second should be milliseconds.": {d: 350 * time.Millisecond, exp: "350ms"},
		"Seconds should have one decimal.":   {d: 2500 * time.Millisecond, exp: "2.5s"},
		"Minutes should be rounded.":         {d: 90*time.Second + 400*time.Millisecond, exp: "1m30s"},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, test.exp, printer.FormatDuration(test.d))
		})
	}
}
