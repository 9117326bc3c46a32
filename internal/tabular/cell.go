// Package tabular models loosely-structured spreadsheet input: typed cells,
// a generic sheet source, heuristic header-row detection and keyword-based
// column mapping.
//
// The package has no knowledge of the clinical domain beyond the keyword
// vocabularies used to locate headers and columns; everything downstream of
// a mapped row lives in the importer.
package tabular

import (
	"strconv"
	"strings"
	"time"
)

// CellKind discriminates the variant held by a Cell.
type CellKind int

const (
	CellEmpty CellKind = iota
	CellText
	CellNumber
	CellTime
)

// Cell is one spreadsheet cell as a tagged variant. Source adapters decide
// the kind once; consumers switch on Kind instead of probing types at
// runtime.
type Cell struct {
	Kind   CellKind
	Text   string
	Number float64
	Time   time.Time
}

// Source is a tabular input: a workbook-like container of named sheets.
// Rows returns all rows of a sheet starting at the given zero-based row
// offset.
type Source interface {
	Sheets() ([]string, error)
	Rows(sheet string, start int) ([][]Cell, error)
}

// TextCell builds a text cell, classifying empty strings as CellEmpty.
func TextCell(s string) Cell {
	if strings.TrimSpace(s) == "" {
		return Cell{Kind: CellEmpty}
	}
	return Cell{Kind: CellText, Text: s}
}

// NumberCell builds a numeric cell.
func NumberCell(f float64) Cell {
	return Cell{Kind: CellNumber, Number: f}
}

// TimeCell builds a temporal cell.
func TimeCell(t time.Time) Cell {
	return Cell{Kind: CellTime, Time: t}
}

// IsEmpty reports whether the cell carries no value.
func (c Cell) IsEmpty() bool {
	return c.Kind == CellEmpty
}

// String renders the cell for keyword matching and diagnostics. Numbers use
// the shortest round-trip representation; times use RFC 3339.
func (c Cell) String() string {
	switch c.Kind {
	case CellText:
		return c.Text
	case CellNumber:
		return strconv.FormatFloat(c.Number, 'f', -1, 64)
	case CellTime:
		return c.Time.Format(time.RFC3339)
	default:
		return ""
	}
}

// ClassifyText converts a raw string cell into the best-fitting variant:
// empty, number, or text. Used by adapters whose underlying reader only
// exposes strings.
func ClassifyText(s string) Cell {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return Cell{Kind: CellEmpty}
	}
	if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return Cell{Kind: CellNumber, Number: f, Text: trimmed}
	}
	return Cell{Kind: CellText, Text: trimmed}
}
