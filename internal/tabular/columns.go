package tabular

import "strings"

// Field identifies a logical clinical field the importer understands.
// The set is fixed: the pipeline does not infer schema beyond it.
type Field string

const (
	FieldIdentifier    Field = "identifier"
	FieldFullName      Field = "full_name"
	FieldMaternalAge   Field = "maternal_age"
	FieldEventDate     Field = "event_date"
	FieldEventTime     Field = "event_time"
	FieldAddress       Field = "address"
	FieldInsurance     Field = "insurance"
	FieldDeliveryType  Field = "delivery_type"
	FieldGestationalWk Field = "gestational_weeks"
	FieldSex           Field = "sex"
	FieldWeight        Field = "weight"
	FieldLength        Field = "length"
	FieldApgar1        Field = "apgar_1"
	FieldApgar5        Field = "apgar_5"
)

// fieldCandidates lists, per logical field, the header substrings that bind
// a column to it. Candidates are tried in order against every header cell
// and the first containing cell wins, so the most specific label must come
// first ("FECHA PARTO" before bare "FECHA").
var fieldCandidates = map[Field][]string{
	FieldIdentifier:    {"RUT", "IDENTIFICACION"},
	FieldFullName:      {"NOMBRE", "PACIENTE"},
	FieldMaternalAge:   {"EDAD"},
	FieldEventDate:     {"FECHA PARTO", "FECHA DE PARTO", "FECHA"},
	FieldEventTime:     {"HORA PARTO", "HORA DE PARTO", "HORA"},
	FieldAddress:       {"COMUNA", "PROCEDENCIA", "DIRECCION"},
	FieldInsurance:     {"PREVISION"},
	FieldDeliveryType:  {"TIPO DE PARTO", "TIPO PARTO", "VIA DE PARTO", "VIA PARTO"},
	FieldGestationalWk: {"SEMANAS", "EDAD GESTACIONAL"},
	FieldSex:           {"SEXO", "GENERO"},
	FieldWeight:        {"PESO"},
	FieldApgar1:        {"APGAR 1 MIN", "APGAR 1", "APGAR1"},
	FieldApgar5:        {"APGAR 5 MIN", "APGAR 5", "APGAR5"},
	FieldLength:        {"TALLA", "LONGITUD"},
}

// ColumnMap binds logical fields to zero-based column indices of the
// detected header row. Fields with no matching header cell are absent.
type ColumnMap map[Field]int

// MapColumns resolves each logical field against the header row's cells.
// Header labels are normalized before matching: uppercased, trimmed, with
// newlines and periods removed (multi-line and abbreviated labels are
// common in ward exports).
func MapColumns(header []Cell) ColumnMap {
	labels := make([]string, len(header))
	for i, c := range header {
		labels[i] = NormalizeLabel(c.String())
	}

	m := make(ColumnMap)
	for field, candidates := range fieldCandidates {
		if idx, ok := findColumn(labels, candidates); ok {
			m[field] = idx
		}
	}
	return m
}

// Col returns the column index for a field and whether it is bound.
func (m ColumnMap) Col(f Field) (int, bool) {
	idx, ok := m[f]
	return idx, ok
}

// Cell returns the cell bound to field f in row, or an empty cell when the
// field is unbound or the row is too short.
func (m ColumnMap) Cell(row []Cell, f Field) Cell {
	idx, ok := m[f]
	if !ok || idx >= len(row) {
		return Cell{Kind: CellEmpty}
	}
	return row[idx]
}

// NormalizeLabel prepares a header label for candidate matching.
func NormalizeLabel(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, ".", "")
	return s
}

// findColumn tries each candidate, in priority order, against every label.
func findColumn(labels []string, candidates []string) (int, bool) {
	for _, cand := range candidates {
		for i, label := range labels {
			if label == "" {
				continue
			}
			if strings.Contains(label, cand) {
				return i, true
			}
		}
	}
	return 0, false
}
