package importer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saludaustral/partoreg/internal/clinical"
	"github.com/saludaustral/partoreg/internal/tabular"
)

func extractOne(t *testing.T, values ...string) rowCandidate {
	t.Helper()
	cols := tabular.MapColumns(wardHeader())
	cand, ok := extractRow(row(values...), cols, importNow)
	require.True(t, ok)
	return cand
}

func TestExtractRow_SingleTokenNameGetsPlaceholderSurname(t *testing.T) {
	cand := extractOne(t, "12.345.678-5", "MARIA", "28", "2026-08-20", "14:30",
		"VAGINAL", "39", "F", "3200", "50", "9", "10")

	assert.Equal(t, "MARIA", cand.triple.Mother.GivenNames)
	assert.Equal(t, ".", cand.triple.Mother.Surnames)
}

func TestExtractRow_DeliveryTypeMapping(t *testing.T) {
	tests := []struct {
		in   string
		want clinical.DeliveryType
	}{
		{"CESAREA DE URGENCIA", clinical.DeliveryCesarean},
		{"CESÁREA", clinical.DeliveryCesarean},
		{"FORCEPS", clinical.DeliveryForceps},
		{"PARTO VAGINAL", clinical.DeliveryVaginal},
		{"EUTOCICO", clinical.DeliveryVaginal},
	}

	for _, tt := range tests {
		cand := extractOne(t, "12.345.678-5", "MARIA PEREZ", "28", "2026-08-20", "14:30",
			tt.in, "39", "F", "3200", "50", "9", "10")
		assert.Equal(t, tt.want, cand.triple.Event.DeliveryType, "input %q", tt.in)
	}
}

func TestExtractRow_BirthDateDerivedFromAge(t *testing.T) {
	cand := extractOne(t, "12.345.678-5", "MARIA PEREZ", "34", "2026-08-20", "14:30",
		"VAGINAL", "39", "F", "3200", "50", "9", "10")

	want := time.Date(importNow.Year()-34, time.January, 1, 0, 0, 0, 0, time.UTC)
	assert.True(t, cand.triple.Mother.BirthDate.Equal(want))
	assert.NotContains(t, cand.defaulted, string(tabular.FieldMaternalAge))
}

func TestExtractRow_MissingAgeFallsBackToEpoch(t *testing.T) {
	cand := extractOne(t, "12.345.678-5", "MARIA PEREZ", "", "2026-08-20", "14:30",
		"VAGINAL", "39", "F", "3200", "50", "9", "10")

	assert.True(t, cand.triple.Mother.BirthDate.Equal(defaultBirthDate))
	assert.Contains(t, cand.defaulted, string(tabular.FieldMaternalAge))
}

func TestExtractRow_WeightAlreadyInKilograms(t *testing.T) {
	cand := extractOne(t, "12.345.678-5", "MARIA PEREZ", "28", "2026-08-20", "14:30",
		"VAGINAL", "39", "F", "3,250", "50", "9", "10")

	assert.InDelta(t, 3.25, cand.triple.Newborn.WeightKg, 0.0001)
}

func TestExtractRow_MalformedDateFallsBackToNow(t *testing.T) {
	cand := extractOne(t, "12.345.678-5", "MARIA PEREZ", "28", "proximamente", "14:30",
		"VAGINAL", "39", "F", "3200", "50", "9", "10")

	assert.Equal(t, importNow.Year(), cand.triple.Event.Timestamp.Year())
	assert.Contains(t, cand.defaulted, string(tabular.FieldEventDate))
	// The parsed time still lands on the fallback date.
	assert.Equal(t, 14, cand.triple.Event.Timestamp.Hour())
	assert.Equal(t, 30, cand.triple.Event.Timestamp.Minute())
}

func TestExtractRow_ShapeFixesIdentifier(t *testing.T) {
	cols := tabular.MapColumns(wardHeader())
	cand, ok := extractRow(row("123456785", "MARIA PEREZ", "28", "2026-08-20", "14:30",
		"VAGINAL", "39", "F", "3200", "50", "9", "10"), cols, importNow)
	require.True(t, ok)
	assert.Equal(t, "12345678-5", cand.triple.Mother.RUT)
	assert.True(t, cand.triple.Mother.IdentifierVerified)
}

func TestExtractRow_UnparseableIdentifierSkips(t *testing.T) {
	cols := tabular.MapColumns(wardHeader())
	_, ok := extractRow(row("S/R", "MARIA PEREZ"), cols, importNow)
	assert.False(t, ok)
}

func TestExtractRow_SexHeuristic(t *testing.T) {
	tests := []struct {
		in        string
		want      clinical.Sex
		defaulted bool
	}{
		{"F", clinical.SexFemale, false},
		{"FEMENINO", clinical.SexFemale, false},
		{"MUJER", clinical.SexFemale, false},
		{"M", clinical.SexMale, false},
		{"MASCULINO", clinical.SexMale, false},
		{"X", clinical.SexMale, true},
		{"", clinical.SexMale, true},
	}

	for _, tt := range tests {
		cand := extractOne(t, "12.345.678-5", "MARIA PEREZ", "28", "2026-08-20", "14:30",
			"VAGINAL", "39", tt.in, "3200", "50", "9", "10")
		assert.Equal(t, tt.want, cand.triple.Newborn.Sex, "input %q", tt.in)
		if tt.defaulted {
			assert.Contains(t, cand.defaulted, string(tabular.FieldSex), "input %q", tt.in)
		} else {
			assert.NotContains(t, cand.defaulted, string(tabular.FieldSex), "input %q", tt.in)
		}
	}
}
