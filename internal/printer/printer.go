package printer

import (
	"io"

	"github.com/slok/patchcheck/internal/model"
)

const (
	// FormatJSON prints results as JSON.
	FormatJSON = "json"
	// FormatTable prints results in a human readable table format.
	FormatTable = "table"
)

// Printer knows how to print pipeline results in different formats.
type Printer interface {
	// PrintValidate prints the validation result of the diff read from source.
	PrintValidate(source string, res model.ValidateResult) error
	PrintApply(source string, res model.ApplyResult) error
	PrintPreflight(results []model.PreflightResult) error
}

// New returns the printer for the format.
func New(format string, w io.Writer) Printer {
	if format == FormatTable {
		return NewTablePrinter(w)
	}
	return NewJSONPrinter(w)
}
