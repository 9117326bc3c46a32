package clinical

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, time.August, 30, 12, 0, 0, 0, time.UTC)

// validTriple builds a triple that passes every rule under the lenient
// import posture at testNow.
func validTriple() *Triple {
	weeks := 39
	return &Triple{
		Mother: Mother{
			RUT:       "12345678-5",
			BirthDate: time.Date(1998, time.March, 15, 0, 0, 0, 0, time.UTC),
		},
		Event: BirthEvent{
			Timestamp:        time.Date(2026, time.August, 30, 10, 0, 0, 0, time.UTC),
			DeliveryType:     DeliveryVaginal,
			GestationalWeeks: &weeks,
		},
		Newborn: Newborn{
			BirthTime: time.Date(2026, time.August, 30, 10, 0, 0, 0, time.UTC),
			Sex:       SexFemale,
			WeightKg:  3.2,
			LengthCm:  50,
			Apgar1:    9,
			Apgar5:    10,
			Status:    LifeAlive,
		},
	}
}

var lenient = Options{AllowHistorical: true}

func requireRule(t *testing.T, err error, rule Rule) {
	t.Helper()
	require.Error(t, err)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, rule, verr.Rule)
}

func TestValidateTriple_ValidPasses(t *testing.T) {
	require.NoError(t, ValidateTriple(validTriple(), lenient, testNow))
}

func TestValidateTriple_IdentifierChecksum(t *testing.T) {
	tr := validTriple()
	tr.Mother.RUT = "12345678-4"

	// Lenient posture accepts an unverified identifier.
	require.NoError(t, ValidateTriple(tr, lenient, testNow))

	strict := Options{RequireVerifiedIdentifier: true}
	tr.Event.Timestamp = testNow.Add(-2 * time.Hour)
	tr.Newborn.BirthTime = tr.Event.Timestamp
	requireRule(t, ValidateTriple(tr, strict, testNow), RuleIdentifierChecksum)
}

func TestValidateTriple_MotherAgeRange(t *testing.T) {
	tests := []struct {
		name      string
		birthYear int
		ok        bool
	}{
		{"age 11 too young", testNow.Year() - 11, false},
		{"age 12 lower bound", testNow.Year() - 12, true},
		{"age 60 upper bound", testNow.Year() - 60, true},
		{"age 61 too old", testNow.Year() - 61, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := validTriple()
			tr.Mother.BirthDate = time.Date(tt.birthYear, time.January, 1, 0, 0, 0, 0, time.UTC)
			err := ValidateTriple(tr, lenient, testNow)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				requireRule(t, err, RuleMotherAgeRange)
			}
		})
	}
}

func TestValidateTriple_ZeroBirthDateSkipsAgeCheck(t *testing.T) {
	tr := validTriple()
	tr.Mother.BirthDate = time.Time{}
	assert.NoError(t, ValidateTriple(tr, lenient, testNow))
}

func TestValidateTriple_EventInFuture(t *testing.T) {
	tr := validTriple()
	tr.Event.Timestamp = testNow.Add(time.Hour)
	tr.Newborn.BirthTime = tr.Event.Timestamp
	requireRule(t, ValidateTriple(tr, lenient, testNow), RuleEventInFuture)
}

func TestValidateTriple_FreshnessWindow(t *testing.T) {
	tr := validTriple()
	tr.Event.Timestamp = testNow.Add(-72 * time.Hour)
	tr.Newborn.BirthTime = tr.Event.Timestamp

	// Historical events need the bypass.
	requireRule(t, ValidateTriple(tr, Options{}, testNow), RuleEventTooOld)
	assert.NoError(t, ValidateTriple(tr, lenient, testNow))

	// Within the window the strict posture also passes.
	tr.Event.Timestamp = testNow.Add(-24 * time.Hour)
	tr.Newborn.BirthTime = tr.Event.Timestamp
	assert.NoError(t, ValidateTriple(tr, Options{}, testNow))
}

func TestValidateTriple_GestationalRange(t *testing.T) {
	for _, tt := range []struct {
		weeks int
		ok    bool
	}{
		{19, false},
		{20, true},
		{45, true},
		{46, false},
	} {
		tr := validTriple()
		*tr.Event.GestationalWeeks = tt.weeks
		// Keep the weight plausible for the gestational age under test.
		if tt.weeks < 37 {
			tr.Newborn.WeightKg = 1.5
		}
		err := ValidateTriple(tr, lenient, testNow)
		if tt.ok {
			assert.NoError(t, err, "weeks %d", tt.weeks)
		} else {
			requireRule(t, err, RuleGestationalRange)
		}
	}
}

func TestValidateTriple_BirthTimeDrift(t *testing.T) {
	tr := validTriple()
	tr.Newborn.BirthTime = tr.Event.Timestamp.Add(85 * time.Minute)
	assert.NoError(t, ValidateTriple(tr, lenient, testNow))

	tr.Newborn.BirthTime = tr.Event.Timestamp.Add(95 * time.Minute)
	requireRule(t, ValidateTriple(tr, lenient, testNow), RuleBirthTimeDrift)
}

func TestValidateTriple_WeightBounds(t *testing.T) {
	tr := validTriple()
	tr.Newborn.WeightKg = 0.05
	requireRule(t, ValidateTriple(tr, lenient, testNow), RuleWeightBounds)

	tr.Newborn.WeightKg = 6.5
	requireRule(t, ValidateTriple(tr, lenient, testNow), RuleWeightBounds)

	// A zero weight means "not recorded" and skips the bounds checks.
	tr.Newborn.WeightKg = 0
	assert.NoError(t, ValidateTriple(tr, lenient, testNow))
}

func TestValidateTriple_WeightForGestation(t *testing.T) {
	// Term delivery with a preterm-range weight is implausible.
	tr := validTriple()
	tr.Newborn.WeightKg = 1.5
	requireRule(t, ValidateTriple(tr, lenient, testNow), RuleWeightForTerm)

	// The same weight is plausible at 30 weeks.
	tr = validTriple()
	*tr.Event.GestationalWeeks = 30
	tr.Newborn.WeightKg = 1.5
	assert.NoError(t, ValidateTriple(tr, lenient, testNow))

	// A heavy newborn at 30 weeks is implausible.
	tr.Newborn.WeightKg = 4.5
	requireRule(t, ValidateTriple(tr, lenient, testNow), RuleWeightForTerm)
}

func TestValidateTriple_ApgarRules(t *testing.T) {
	tr := validTriple()
	tr.Newborn.Apgar1 = 11
	requireRule(t, ValidateTriple(tr, lenient, testNow), RuleApgarRange)

	tr = validTriple()
	tr.Newborn.Apgar1 = 9
	tr.Newborn.Apgar5 = 8
	requireRule(t, ValidateTriple(tr, lenient, testNow), RuleApgarMonotonic)

	tr = validTriple()
	tr.Newborn.Apgar1 = 0
	tr.Newborn.Apgar5 = 0
	tr.Newborn.Status = LifeAlive
	requireRule(t, ValidateTriple(tr, lenient, testNow), RuleApgarVitality)

	// The same scores are admissible for a deceased newborn.
	tr.Newborn.Status = LifeDeceased
	assert.NoError(t, ValidateTriple(tr, lenient, testNow))
}
