package importer

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

const reportSheet = "Errores"

// WriteFailureReport renders the failed rows of a result as a small
// workbook so ward staff can fix the offending cells and re-import. The
// report carries the same 1-based row numbers as the source spreadsheet.
func WriteFailureReport(w io.Writer, result *ImportResult) error {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName(f.GetSheetName(0), reportSheet)

	if err := f.SetSheetRow(reportSheet, "A1", &[]any{"Fila", "Error"}); err != nil {
		return fmt.Errorf("writing report header: %w", err)
	}
	for i, re := range result.Errors {
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(reportSheet, cell, &[]any{re.Row, re.Message}); err != nil {
			return fmt.Errorf("writing report row %d: %w", re.Row, err)
		}
	}

	if result.ErrorCount > len(result.Errors) {
		cell := fmt.Sprintf("A%d", len(result.Errors)+2)
		note := fmt.Sprintf("... y %d errores mas", result.ErrorCount-len(result.Errors))
		if err := f.SetSheetRow(reportSheet, cell, &[]any{"", note}); err != nil {
			return fmt.Errorf("writing report footer: %w", err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}

// Summary renders a one-line human-readable outcome for CLI output.
func Summary(result *ImportResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "sheet %q: %d created, %d updated, %d skipped, %d errors",
		result.Sheet, result.Created, result.Updated, result.Skipped, result.ErrorCount)
	if result.ErrorCount > len(result.Errors) {
		fmt.Fprintf(&b, " (%d shown)", len(result.Errors))
	}
	return b.String()
}
