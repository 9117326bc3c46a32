package importer

import (
	"strings"
	"time"

	"github.com/saludaustral/partoreg/internal/tabular"
)

// Temporal parsing is deliberately lenient: ward exports mix ISO dates,
// day-first dates, bare hours and typed cells in the same column. Malformed
// input degrades to a defined fallback instead of failing the row, and every
// fallback is reported to the caller so data-quality loss stays visible.

var dateLayouts = []string{
	"2006-01-02",
	"02-01-2006",
	"02/01/2006",
	"2006/01/02",
}

var timeLayouts = []string{
	"15:04:05",
	"15:04",
	"15",
}

// parseDate converts a cell to a date. Typed temporal cells pass through;
// numeric and text cells are tried against the known layouts. The boolean
// reports success; on failure the caller substitutes its clock's now.
func parseDate(c tabular.Cell) (time.Time, bool) {
	switch c.Kind {
	case tabular.CellTime:
		return c.Time, true
	case tabular.CellText, tabular.CellNumber:
		s := strings.TrimSpace(c.String())
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

// parseTime converts a cell to a time-of-day. Unit suffixes such as "hrs"
// are stripped before trying the known layouts. The boolean reports
// success; on failure the time is left unset.
func parseTime(c tabular.Cell) (time.Time, bool) {
	switch c.Kind {
	case tabular.CellTime:
		return c.Time, true
	case tabular.CellText, tabular.CellNumber:
		s := strings.TrimSpace(c.String())
		s = strings.TrimSuffix(strings.ToLower(s), "hrs")
		s = strings.TrimSuffix(s, "hr")
		s = strings.TrimSpace(s)
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

// combine merges a date with a time-of-day into one timestamp in the
// date's location.
func combine(date, tod time.Time) time.Time {
	return time.Date(
		date.Year(), date.Month(), date.Day(),
		tod.Hour(), tod.Minute(), tod.Second(), 0,
		date.Location(),
	)
}
