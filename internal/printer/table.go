package printer

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/slok/patchcheck/internal/model"
)

// TablePrinter prints pipeline results in a human readable format.
type TablePrinter struct {
	writer io.Writer
}

// NewTablePrinter creates a new table printer.
func NewTablePrinter(w io.Writer) *TablePrinter {
	return &TablePrinter{writer: w}
}

// PrintValidate prints the validation result.
func (t *TablePrinter) PrintValidate(source string, res model.ValidateResult) error {
	fmt.Fprintf(t.writer, "Diff:       %s\n", source)
	fmt.Fprintf(t.writer, "Valid:      %s\n", yesNo(res.OK))
	printOutput(t.writer, "Stdout", res.Stdout)
	printOutput(t.writer, "Stderr", res.Stderr)
	fmt.Fprintln(t.writer)

	return nil
}

// PrintApply prints the apply result with a row per check.
func (t *TablePrinter) PrintApply(source string, res model.ApplyResult) error {
	fmt.Fprintf(t.writer, "Diff:       %s\n", source)
	fmt.Fprintf(t.writer, "Applied:    %s\n", yesNo(res.Applied))

	if !res.Applied {
		printOutput(t.writer, "Stdout", res.Stdout)
		printOutput(t.writer, "Stderr", res.Stderr)
		return nil
	}

	if len(res.Checks) == 0 {
		fmt.Fprintln(t.writer, "Checks:     none")
		return nil
	}

	passed, failed := model.CountChecks(res.Checks)
	fmt.Fprintf(t.writer, "Checks:     %d passed, %d failed\n\n", passed, failed)

	tw := tabwriter.NewWriter(t.writer, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CHECK\tRESULT\tEXIT CODE\tDURATION")
	for _, c := range res.Checks {
		result := "pass"
		switch {
		case c.TimedOut:
			result = "timeout"
		case !c.OK:
			result = "fail"
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", c.Name, result, c.ExitCode, FormatDuration(c.Duration))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	// Failed checks output so the reason is visible without JSON.
	for _, c := range res.Checks {
		if c.OK {
			continue
		}
		fmt.Fprintf(t.writer, "\n--- %s\n", c.Name)
		printOutput(t.writer, "Output", c.Output)
		printOutput(t.writer, "Error", c.Error)
	}

	return nil
}

// PrintPreflight prints the preflight results with a status icon and a summary.
func (t *TablePrinter) PrintPreflight(results []model.PreflightResult) error {
	for _, r := range results {
		fmt.Fprintf(t.writer, "  %s %-20s %s\n", statusIcon(r.Status), r.ID, r.Message)
	}

	fmt.Fprintln(t.writer)
	_, warnings, errors := model.CountPreflights(results)
	if errors == 0 && warnings == 0 {
		fmt.Fprintln(t.writer, "All checks passed!")
		return nil
	}

	var summary []string
	if errors > 0 {
		summary = append(summary, fmt.Sprintf("%d error(s)", errors))
	}
	if warnings > 0 {
		summary = append(summary, fmt.Sprintf("%d warning(s)", warnings))
	}
	fmt.Fprintln(t.writer, strings.Join(summary, ", "))

	return nil
}

func printOutput(w io.Writer, title, out string) {
	out = strings.TrimRight(out, "\n")
	if out == "" {
		return
	}

	fmt.Fprintf(w, "%s:\n", title)
	for _, line := range strings.Split(out, "\n") {
		fmt.Fprintf(w, "  %s\n", line)
	}
}

func statusIcon(status model.PreflightStatus) string {
	switch status {
	case model.PreflightStatusOK:
		return "OK"
	case model.PreflightStatusWarning:
		return "!!"
	case model.PreflightStatusError:
		return "XX"
	default:
		return "??"
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// FormatDuration returns a short human-readable duration.
// Examples: "0s", "350ms", "2.5s", "1m30s".
func FormatDuration(d time.Duration) string {
	switch {
	case d <= 0:
		return "0s"
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	default:
		return d.Round(time.Second).String()
	}
}
