package tabular

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// XLSXSource adapts an Excel workbook (via excelize) to the Source
// interface. Cell values arrive from excelize as display strings; they are
// classified into typed cells with ClassifyText.
type XLSXSource struct {
	file *excelize.File
}

// OpenWorkbook reads a workbook from r. The returned source must be closed.
func OpenWorkbook(r io.Reader) (*XLSXSource, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	return &XLSXSource{file: f}, nil
}

// OpenWorkbookFile reads a workbook from disk. The returned source must be
// closed.
func OpenWorkbookFile(path string) (*XLSXSource, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	return &XLSXSource{file: f}, nil
}

// Close releases the underlying workbook.
func (s *XLSXSource) Close() error {
	return s.file.Close()
}

// Sheets returns the workbook's sheet names in workbook order.
func (s *XLSXSource) Sheets() ([]string, error) {
	names := s.file.GetSheetList()
	if len(names) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	return names, nil
}

// Rows returns all rows of the sheet starting at the zero-based offset.
// Trailing cells excelize omits on short rows are simply absent; callers
// must bounds-check column indices.
func (s *XLSXSource) Rows(sheet string, start int) ([][]Cell, error) {
	raw, err := s.file.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	if start >= len(raw) {
		return nil, nil
	}

	rows := make([][]Cell, 0, len(raw)-start)
	for _, r := range raw[start:] {
		cells := make([]Cell, len(r))
		for i, v := range r {
			cells[i] = ClassifyText(v)
		}
		rows = append(rows, cells)
	}
	return rows, nil
}
