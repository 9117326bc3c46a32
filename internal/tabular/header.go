package tabular

import "strings"

// HeaderScanRows is how many leading rows are scanned for a header row.
// Hospital exports routinely stack titles, logos and merged banners above
// the real column labels.
const HeaderScanRows = 20

// headerKeywords is the vocabulary used to score candidate header rows.
// Matching is case-insensitive substring containment over the joined row
// text, so short keywords double as matches for their longer variants
// ("FECHA" matches "FECHA DE PARTO").
var headerKeywords = []string{
	"RUT",
	"IDENTIFICACION",
	"NOMBRE",
	"PACIENTE",
	"EDAD",
	"PARTO",
	"PESO",
	"FECHA",
	"HORA",
	"MATRONA",
	"DIAGNOSTICO",
}

// HeaderDetection is the outcome of scanning for a header row. Score is
// exposed for diagnostics only; a zero score still yields Row 0 as a
// last-resort default.
type HeaderDetection struct {
	Row   int
	Score int
}

// DetectHeader scores each of the first HeaderScanRows rows by counting how
// many known keywords appear in the row's joined, uppercased text. The row
// with the strictly greatest count wins; ties keep the earliest row.
func DetectHeader(rows [][]Cell) HeaderDetection {
	best := HeaderDetection{Row: 0, Score: 0}

	limit := len(rows)
	if limit > HeaderScanRows {
		limit = HeaderScanRows
	}

	for i := 0; i < limit; i++ {
		text := joinRow(rows[i])
		score := 0
		for _, kw := range headerKeywords {
			if strings.Contains(text, kw) {
				score++
			}
		}
		if score > best.Score {
			best = HeaderDetection{Row: i, Score: score}
		}
	}

	return best
}

// joinRow builds the uppercase, space-joined representation of a row's
// non-empty cells.
func joinRow(cells []Cell) string {
	parts := make([]string, 0, len(cells))
	for _, c := range cells {
		if c.IsEmpty() {
			continue
		}
		parts = append(parts, strings.ToUpper(c.String()))
	}
	return strings.Join(parts, " ")
}
