package importer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saludaustral/partoreg/internal/tabular"
)

func TestParseDate_Layouts(t *testing.T) {
	want := time.Date(2026, time.August, 20, 0, 0, 0, 0, time.UTC)

	for _, in := range []string{
		"2026-08-20",
		"20-08-2026",
		"20/08/2026",
		"2026/08/20",
	} {
		got, ok := parseDate(tabular.TextCell(in))
		require.True(t, ok, "input %q", in)
		assert.True(t, got.Equal(want), "input %q: got %v", in, got)
	}
}

func TestParseDate_TypedCellPassesThrough(t *testing.T) {
	ts := time.Date(2026, time.August, 20, 14, 30, 0, 0, time.UTC)
	got, ok := parseDate(tabular.TimeCell(ts))
	require.True(t, ok)
	assert.True(t, got.Equal(ts))
}

func TestParseDate_Malformed(t *testing.T) {
	for _, in := range []string{"", "agosto 20", "20.08.2026", "45000"} {
		_, ok := parseDate(tabular.ClassifyText(in))
		assert.False(t, ok, "input %q", in)
	}
}

func TestParseTime_Layouts(t *testing.T) {
	tests := []struct {
		in   string
		hour int
		min  int
	}{
		{"14:30", 14, 30},
		{"14:30:45", 14, 30},
		{"14", 14, 0},
		{"14 hrs", 14, 0},
		{"14HRS", 14, 0},
		{"9:05", 9, 5},
	}

	for _, tt := range tests {
		got, ok := parseTime(tabular.ClassifyText(tt.in))
		require.True(t, ok, "input %q", tt.in)
		assert.Equal(t, tt.hour, got.Hour(), "input %q", tt.in)
		assert.Equal(t, tt.min, got.Minute(), "input %q", tt.in)
	}
}

func TestParseTime_Malformed(t *testing.T) {
	for _, in := range []string{"", "mediodia", "99:99"} {
		_, ok := parseTime(tabular.ClassifyText(in))
		assert.False(t, ok, "input %q", in)
	}
}

func TestCombine(t *testing.T) {
	date := time.Date(2026, time.August, 20, 0, 0, 0, 0, time.UTC)
	tod := time.Date(0, time.January, 1, 14, 30, 45, 0, time.UTC)

	got := combine(date, tod)
	want := time.Date(2026, time.August, 20, 14, 30, 45, 0, time.UTC)
	assert.True(t, got.Equal(want), "got %v", got)
}
