package tabular

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapColumns_TypicalExport(t *testing.T) {
	header := textRow(
		"RUT",
		"NOMBRE PACIENTE",
		"EDAD",
		"FECHA DE PARTO",
		"HORA PARTO",
		"TIPO DE PARTO",
		"SEMANAS",
		"SEXO RN",
		"PESO (GR)",
		"TALLA",
		"APGAR 1 MIN",
		"APGAR 5 MIN",
	)

	m := MapColumns(header)

	want := map[Field]int{
		FieldIdentifier:    0,
		FieldFullName:      1,
		FieldMaternalAge:   2,
		FieldEventDate:     3,
		FieldEventTime:     4,
		FieldDeliveryType:  5,
		FieldGestationalWk: 6,
		FieldSex:           7,
		FieldWeight:        8,
		FieldLength:        9,
		FieldApgar1:        10,
		FieldApgar5:        11,
	}
	for field, idx := range want {
		got, ok := m.Col(field)
		require.True(t, ok, "field %s not mapped", field)
		assert.Equal(t, idx, got, "field %s", field)
	}
}

func TestMapColumns_SpecificLabelWinsOverGeneric(t *testing.T) {
	// "FECHA NAC" would match the generic "FECHA" candidate, but the more
	// specific "FECHA PARTO" candidate is tried first across all labels.
	header := textRow("RUT", "FECHA NAC", "FECHA PARTO")

	m := MapColumns(header)
	idx, ok := m.Col(FieldEventDate)
	require.True(t, ok)
	assert.Equal(t, 2, idx)
}

func TestMapColumns_MultilineAndDottedLabels(t *testing.T) {
	header := textRow("R.U.T.", "NOMBRE\nPACIENTE", "peso rn")

	m := MapColumns(header)

	_, ok := m.Col(FieldIdentifier)
	assert.True(t, ok)
	_, ok = m.Col(FieldFullName)
	assert.True(t, ok)
	_, ok = m.Col(FieldWeight)
	assert.True(t, ok)
}

func TestMapColumns_UnmatchedFieldAbsent(t *testing.T) {
	header := textRow("RUT", "NOMBRE")

	m := MapColumns(header)
	_, ok := m.Col(FieldApgar5)
	assert.False(t, ok)
}

func TestColumnMap_CellBoundsChecks(t *testing.T) {
	m := ColumnMap{FieldWeight: 5}

	// Row shorter than the bound index yields an empty cell.
	c := m.Cell(textRow("a", "b"), FieldWeight)
	assert.True(t, c.IsEmpty())

	// Unbound field yields an empty cell.
	c = m.Cell(textRow("a", "b"), FieldSex)
	assert.True(t, c.IsEmpty())
}

func TestNormalizeLabel(t *testing.T) {
	assert.Equal(t, "RUT", NormalizeLabel(" r.u.t. "))
	assert.Equal(t, "NOMBRE PACIENTE", NormalizeLabel("Nombre\nPaciente"))
}
