package printer

import (
	"io"

	"github.com/slok/progtree/internal/model"
)

// Printer knows how to print runs, action trees and checks in different formats.
type Printer interface {
	PrintRunList(runs []model.Run) error
	PrintRun(run model.Run) error
	PrintTree(tree model.ActionTree) error
	PrintChecks(results []model.CheckResult) error
	PrintMessage(msg string) error
}

// New returns the printer for the format, unknown formats use the table printer.
func New(format string, w io.Writer) Printer {
	switch format {
	case FormatJSON:
		return NewJSONPrinter(w)
	default:
		return NewTablePrinter(w)
	}
}

const (
	// FormatTable is the human readable table format.
	FormatTable = "table"
	// FormatJSON is the JSON format.
	FormatJSON = "json"
)
