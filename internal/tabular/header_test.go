package tabular

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func textRow(values ...string) []Cell {
	row := make([]Cell, len(values))
	for i, v := range values {
		row[i] = TextCell(v)
	}
	return row
}

func TestDetectHeader_BannerAboveHeader(t *testing.T) {
	rows := [][]Cell{
		textRow("HOSPITAL REGIONAL"),
		textRow("Registro de atenciones"),
		textRow(""),
		textRow("RUT", "NOMBRE PACIENTE", "EDAD", "FECHA PARTO", "HORA", "PESO"),
		textRow("12345678-5", "MARIA PEREZ SOTO", "28", "2026-08-20", "14:30", "3200"),
	}

	det := DetectHeader(rows)
	assert.Equal(t, 3, det.Row)
	assert.Greater(t, det.Score, 0)
}

func TestDetectHeader_TieKeepsEarliestRow(t *testing.T) {
	rows := [][]Cell{
		textRow("RUT", "NOMBRE"),
		textRow("RUT", "NOMBRE"),
	}

	det := DetectHeader(rows)
	assert.Equal(t, 0, det.Row)
}

func TestDetectHeader_NoKeywordsDefaultsToFirstRow(t *testing.T) {
	rows := [][]Cell{
		textRow("a", "b"),
		textRow("c", "d"),
	}

	det := DetectHeader(rows)
	assert.Equal(t, 0, det.Row)
	assert.Equal(t, 0, det.Score)
}

func TestDetectHeader_ScanWindowBound(t *testing.T) {
	rows := make([][]Cell, 0, HeaderScanRows+2)
	for i := 0; i < HeaderScanRows; i++ {
		rows = append(rows, textRow("filler"))
	}
	// A perfect header row past the scan window must not be considered.
	rows = append(rows, textRow("RUT", "NOMBRE", "EDAD", "FECHA", "HORA", "PESO"))

	det := DetectHeader(rows)
	assert.Equal(t, 0, det.Row)
	assert.Equal(t, 0, det.Score)
}

func TestDetectHeader_EmptyInput(t *testing.T) {
	det := DetectHeader(nil)
	assert.Equal(t, 0, det.Row)
}
