package clinical

import (
	"fmt"
	"time"

	"github.com/saludaustral/partoreg/internal/rut"
)

// Entity names the record a validation rule applies to.
type Entity string

const (
	EntityMother  Entity = "mother"
	EntityEvent   Entity = "birth_event"
	EntityNewborn Entity = "newborn"
)

// Rule identifies a single validation rule. Rules are stable identifiers;
// callers may switch on them to drive remediation flows.
type Rule string

const (
	RuleIdentifierChecksum Rule = "identifier_checksum"
	RuleMotherAgeRange     Rule = "mother_age_range"
	RuleEventInFuture      Rule = "event_in_future"
	RuleEventTooOld        Rule = "event_too_old"
	RuleGestationalRange   Rule = "gestational_weeks_range"
	RuleBirthTimeDrift     Rule = "birth_time_drift"
	RuleWeightBounds       Rule = "weight_bounds"
	RuleWeightForTerm      Rule = "weight_for_gestation"
	RuleApgarRange         Rule = "apgar_range"
	RuleApgarMonotonic     Rule = "apgar_monotonic"
	RuleApgarVitality      Rule = "apgar_vitality"
)

// ValidationError reports which rule failed on which entity. It does not
// wrap another error; the triple simply does not satisfy the invariant.
type ValidationError struct {
	Entity  Entity
	Rule    Rule
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Entity, e.Rule, e.Message)
}

// Options selects the per-call-site bypasses. The rule set itself is fixed;
// interactive entry and bulk import differ only in which bypasses are set.
type Options struct {
	// AllowHistorical admits events older than the live-entry freshness
	// window. Bulk import sets it; interactive entry does not.
	AllowHistorical bool

	// RequireVerifiedIdentifier enforces the RUT check digit. Interactive
	// entry sets it; bulk import accepts shape-fixed identifiers since ward
	// exports are often transcribed without a verifiable check digit.
	RequireVerifiedIdentifier bool
}

// Validation thresholds. Weights are kilograms, ages are years.
const (
	motherAgeMin = 12
	motherAgeMax = 60

	freshnessWindow = 48 * time.Hour

	gestationalWeeksMin = 20
	gestationalWeeksMax = 45
	termWeeks           = 37

	birthTimeMaxDrift = 90 * time.Minute

	weightAbsMinKg     = 0.1
	weightAbsMaxKg     = 6.0
	termWeightMinKg    = 2.0
	termWeightMaxKg    = 5.0
	pretermWeightMinKg = 0.3
	pretermWeightMaxKg = 4.0
)

// ValidateTriple enforces every cross-entity invariant against a candidate
// triple. now is the validation instant supplied by the caller; no ambient
// clock is consulted. Returns nil when the triple is admissible, or the
// first *ValidationError encountered (mother, then event, then newborn).
func ValidateTriple(t *Triple, opts Options, now time.Time) error {
	if err := validateMother(&t.Mother, opts, now); err != nil {
		return err
	}
	if err := validateEvent(&t.Event, opts, now); err != nil {
		return err
	}
	return validateNewborn(&t.Newborn, &t.Event)
}

func validateMother(m *Mother, opts Options, now time.Time) error {
	if opts.RequireVerifiedIdentifier && !rut.Validate(m.RUT) {
		return &ValidationError{
			Entity:  EntityMother,
			Rule:    RuleIdentifierChecksum,
			Message: fmt.Sprintf("identifier %q fails check-digit validation", m.RUT),
		}
	}

	if !m.BirthDate.IsZero() {
		age := m.AgeAt(now)
		if age < motherAgeMin || age > motherAgeMax {
			return &ValidationError{
				Entity:  EntityMother,
				Rule:    RuleMotherAgeRange,
				Message: fmt.Sprintf("derived age %d outside [%d, %d]", age, motherAgeMin, motherAgeMax),
			}
		}
	}

	return nil
}

func validateEvent(e *BirthEvent, opts Options, now time.Time) error {
	if e.Timestamp.After(now) {
		return &ValidationError{
			Entity:  EntityEvent,
			Rule:    RuleEventInFuture,
			Message: "event timestamp is in the future",
		}
	}

	if !opts.AllowHistorical && e.Timestamp.Before(now.Add(-freshnessWindow)) {
		return &ValidationError{
			Entity:  EntityEvent,
			Rule:    RuleEventTooOld,
			Message: fmt.Sprintf("event is older than %v; historical records require the import path", freshnessWindow),
		}
	}

	if e.GestationalWeeks != nil {
		if w := *e.GestationalWeeks; w < gestationalWeeksMin || w > gestationalWeeksMax {
			return &ValidationError{
				Entity:  EntityEvent,
				Rule:    RuleGestationalRange,
				Message: fmt.Sprintf("gestational weeks %d outside [%d, %d]", w, gestationalWeeksMin, gestationalWeeksMax),
			}
		}
	}

	return nil
}

func validateNewborn(n *Newborn, e *BirthEvent) error {
	if !n.BirthTime.IsZero() {
		drift := birthTimeDrift(n.BirthTime, e.Timestamp)
		if drift > birthTimeMaxDrift {
			return &ValidationError{
				Entity:  EntityNewborn,
				Rule:    RuleBirthTimeDrift,
				Message: fmt.Sprintf("birth time differs from event timestamp by %v (max %v)", drift, birthTimeMaxDrift),
			}
		}
	}

	if n.WeightKg != 0 {
		if n.WeightKg < weightAbsMinKg || n.WeightKg > weightAbsMaxKg {
			return &ValidationError{
				Entity:  EntityNewborn,
				Rule:    RuleWeightBounds,
				Message: fmt.Sprintf("weight %.3f kg outside [%.1f, %.1f]", n.WeightKg, weightAbsMinKg, weightAbsMaxKg),
			}
		}
		if e.GestationalWeeks != nil {
			if err := validateWeightForGestation(n.WeightKg, *e.GestationalWeeks); err != nil {
				return err
			}
		}
	}

	if n.Apgar1 < 0 || n.Apgar1 > 10 || n.Apgar5 < 0 || n.Apgar5 > 10 {
		return &ValidationError{
			Entity:  EntityNewborn,
			Rule:    RuleApgarRange,
			Message: fmt.Sprintf("apgar scores (%d, %d) outside [0, 10]", n.Apgar1, n.Apgar5),
		}
	}

	if n.Apgar5 < n.Apgar1 {
		return &ValidationError{
			Entity:  EntityNewborn,
			Rule:    RuleApgarMonotonic,
			Message: fmt.Sprintf("5-minute apgar %d below 1-minute apgar %d", n.Apgar5, n.Apgar1),
		}
	}

	if n.Apgar1 == 0 && n.Status == LifeAlive {
		return &ValidationError{
			Entity:  EntityNewborn,
			Rule:    RuleApgarVitality,
			Message: "1-minute apgar of 0 is incompatible with life status alive",
		}
	}

	return nil
}

func validateWeightForGestation(weightKg float64, weeks int) error {
	if weeks >= termWeeks {
		if weightKg < termWeightMinKg || weightKg > termWeightMaxKg {
			return &ValidationError{
				Entity:  EntityNewborn,
				Rule:    RuleWeightForTerm,
				Message: fmt.Sprintf("weight %.3f kg implausible for term delivery (%d weeks)", weightKg, weeks),
			}
		}
		return nil
	}
	if weightKg < pretermWeightMinKg || weightKg > pretermWeightMaxKg {
		return &ValidationError{
			Entity:  EntityNewborn,
			Rule:    RuleWeightForTerm,
			Message: fmt.Sprintf("weight %.3f kg implausible for preterm delivery (%d weeks)", weightKg, weeks),
		}
	}
	return nil
}

// birthTimeDrift measures how far the newborn's time-of-day sits from the
// event timestamp, placing both on the event's date.
func birthTimeDrift(birthTime, eventTS time.Time) time.Duration {
	combined := time.Date(
		eventTS.Year(), eventTS.Month(), eventTS.Day(),
		birthTime.Hour(), birthTime.Minute(), birthTime.Second(), 0,
		eventTS.Location(),
	)
	d := combined.Sub(eventTS)
	if d < 0 {
		d = -d
	}
	return d
}
