package importer

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/saludaustral/partoreg/internal/clinical"
	"github.com/saludaustral/partoreg/internal/rut"
	"github.com/saludaustral/partoreg/internal/tabular"
)

// Extraction defaults for cells that are absent or unparseable. Values match
// the ward's typical delivery so a sparse row still yields a plausible
// candidate; every substitution is recorded on the row.
const (
	defaultGestationalWeeks = 39
	defaultWeightKg         = 3.0
	defaultLengthCm         = 50.0
	defaultApgar1           = 9
	defaultApgar5           = 10
)

// defaultBirthDate stands in when neither a birth date nor an age column
// yields one.
var defaultBirthDate = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

// rowCandidate is one extracted triple plus the list of fields whose values
// were substituted rather than read.
type rowCandidate struct {
	triple    clinical.Triple
	defaulted []string
}

// nullSentinels are text values ward exports use for "no value". Rows whose
// identifier cell holds one are skipped, and other cells holding one are
// treated as empty.
func isNullSentinel(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "nan", "nat", "none":
		return true
	}
	return false
}

func cellValue(c tabular.Cell) (string, bool) {
	s := strings.TrimSpace(c.String())
	if c.IsEmpty() || isNullSentinel(s) {
		return "", false
	}
	return s, true
}

// extractRow turns one mapped data row into a candidate triple. The second
// return is false when the row carries no usable identifier and must be
// skipped. now is the extraction instant used for temporal fallbacks and
// age-derived birth dates.
func extractRow(row []tabular.Cell, cols tabular.ColumnMap, now time.Time) (rowCandidate, bool) {
	var cand rowCandidate

	raw, ok := cellValue(cols.Cell(row, tabular.FieldIdentifier))
	if !ok {
		return cand, false
	}
	canonical, err := rut.Normalize(raw)
	if err != nil {
		return cand, false
	}

	mother := &cand.triple.Mother
	event := &cand.triple.Event
	newborn := &cand.triple.Newborn

	mother.RUT = canonical
	mother.IdentifierVerified = rut.Validate(canonical)
	mother.MaritalStatus = clinical.MaritalSingle

	cand.extractName(row, cols)
	cand.extractBirthDate(row, cols, now)

	if addr, ok := cellValue(cols.Cell(row, tabular.FieldAddress)); ok {
		mother.Address = addr
	}
	cand.extractInsurance(row, cols)

	cand.extractTimestamp(row, cols, now)
	cand.extractDeliveryType(row, cols)
	cand.extractGestationalWeeks(row, cols)

	// The newborn's time-of-day is the event timestamp's; a separate birth
	// time column is not part of the export vocabulary.
	newborn.BirthTime = event.Timestamp
	newborn.Status = clinical.LifeAlive

	cand.extractSex(row, cols)
	cand.extractWeight(row, cols)
	cand.extractLength(row, cols)
	cand.extractApgar(row, cols)

	return cand, true
}

func (c *rowCandidate) markDefaulted(field tabular.Field) {
	c.defaulted = append(c.defaulted, string(field))
}

// extractName splits a single full-name cell at its midpoint: the first half
// of the tokens become given names, the rest surnames. A one-token name gets
// a placeholder surname so the record stays storable.
func (c *rowCandidate) extractName(row []tabular.Cell, cols tabular.ColumnMap) {
	full, ok := cellValue(cols.Cell(row, tabular.FieldFullName))
	if !ok {
		return
	}
	tokens := strings.Fields(full)
	switch {
	case len(tokens) == 1:
		c.triple.Mother.GivenNames = tokens[0]
		c.triple.Mother.Surnames = "."
	default:
		mid := len(tokens) / 2
		c.triple.Mother.GivenNames = strings.Join(tokens[:mid], " ")
		c.triple.Mother.Surnames = strings.Join(tokens[mid:], " ")
	}
}

// extractBirthDate derives the mother's birth date from the maternal-age
// column when present: January 1st of (current year - age). Exports carry
// ages, not birth dates, so the derivation is approximate by construction.
// Without a usable age the fixed epoch default applies and is recorded.
func (c *rowCandidate) extractBirthDate(row []tabular.Cell, cols tabular.ColumnMap, now time.Time) {
	if s, ok := cellValue(cols.Cell(row, tabular.FieldMaternalAge)); ok {
		if age, err := strconv.Atoi(s); err == nil && age > 0 {
			c.triple.Mother.BirthDate = time.Date(now.Year()-age, time.January, 1, 0, 0, 0, 0, time.UTC)
			return
		}
	}
	c.triple.Mother.BirthDate = defaultBirthDate
	c.markDefaulted(tabular.FieldMaternalAge)
}

func (c *rowCandidate) extractInsurance(row []tabular.Cell, cols tabular.ColumnMap) {
	s, ok := cellValue(cols.Cell(row, tabular.FieldInsurance))
	if !ok {
		c.triple.Mother.Insurance = clinical.InsuranceFonasaA
		return
	}
	upper := strings.ToUpper(s)
	switch {
	case strings.Contains(upper, "ISAPRE"):
		c.triple.Mother.Insurance = clinical.InsuranceIsapre
	case strings.Contains(upper, "PARTICULAR"):
		c.triple.Mother.Insurance = clinical.InsurancePrivate
	case strings.Contains(upper, "PRAIS"):
		c.triple.Mother.Insurance = clinical.InsurancePrais
	case strings.Contains(upper, "FONASA B"), strings.HasSuffix(upper, " B"):
		c.triple.Mother.Insurance = clinical.InsuranceFonasaB
	case strings.Contains(upper, "FONASA C"), strings.HasSuffix(upper, " C"):
		c.triple.Mother.Insurance = clinical.InsuranceFonasaC
	case strings.Contains(upper, "FONASA D"), strings.HasSuffix(upper, " D"):
		c.triple.Mother.Insurance = clinical.InsuranceFonasaD
	case strings.Contains(upper, "FONASA"):
		c.triple.Mother.Insurance = clinical.InsuranceFonasaA
	default:
		c.triple.Mother.Insurance = clinical.InsuranceFonasaA
		c.markDefaulted(tabular.FieldInsurance)
	}
}

// extractTimestamp builds the event timestamp from the date and time
// columns. A missing or unparseable date falls back to now; a missing or
// unparseable time leaves the date's own time component in place.
func (c *rowCandidate) extractTimestamp(row []tabular.Cell, cols tabular.ColumnMap, now time.Time) {
	date, ok := parseDate(cols.Cell(row, tabular.FieldEventDate))
	if !ok {
		date = now
		c.markDefaulted(tabular.FieldEventDate)
	}

	timeCell := cols.Cell(row, tabular.FieldEventTime)
	if tod, ok := parseTime(timeCell); ok {
		date = combine(date, tod)
	} else if !timeCell.IsEmpty() {
		c.markDefaulted(tabular.FieldEventTime)
	}

	c.triple.Event.Timestamp = date
}

func (c *rowCandidate) extractDeliveryType(row []tabular.Cell, cols tabular.ColumnMap) {
	s, ok := cellValue(cols.Cell(row, tabular.FieldDeliveryType))
	if !ok {
		c.triple.Event.DeliveryType = clinical.DeliveryVaginal
		c.markDefaulted(tabular.FieldDeliveryType)
		return
	}
	upper := strings.ToUpper(s)
	switch {
	case strings.Contains(upper, "CESAREA"), strings.Contains(upper, "CESÁREA"):
		c.triple.Event.DeliveryType = clinical.DeliveryCesarean
	case strings.Contains(upper, "FORCEPS"), strings.Contains(upper, "FÓRCEPS"):
		c.triple.Event.DeliveryType = clinical.DeliveryForceps
	default:
		c.triple.Event.DeliveryType = clinical.DeliveryVaginal
	}
}

func (c *rowCandidate) extractGestationalWeeks(row []tabular.Cell, cols tabular.ColumnMap) {
	weeks := defaultGestationalWeeks
	if s, ok := cellValue(cols.Cell(row, tabular.FieldGestationalWk)); ok {
		if f, err := strconv.ParseFloat(s, 64); err == nil && f > 0 {
			weeks = int(f)
		} else {
			c.markDefaulted(tabular.FieldGestationalWk)
		}
	} else {
		c.markDefaulted(tabular.FieldGestationalWk)
	}
	c.triple.Event.GestationalWeeks = &weeks
}

// extractSex maps female markers to F and everything else to M. Only an
// explicit male marker counts as read; empty or unrecognized cells default.
func (c *rowCandidate) extractSex(row []tabular.Cell, cols tabular.ColumnMap) {
	s, ok := cellValue(cols.Cell(row, tabular.FieldSex))
	if !ok {
		c.triple.Newborn.Sex = clinical.SexMale
		c.markDefaulted(tabular.FieldSex)
		return
	}
	upper := strings.ToUpper(s)
	switch {
	case upper == "F", strings.Contains(upper, "MUJER"), strings.Contains(upper, "FEMENINO"), strings.Contains(upper, "FEMENINA"):
		c.triple.Newborn.Sex = clinical.SexFemale
	case upper == "M", strings.Contains(upper, "HOMBRE"), strings.Contains(upper, "MASCULINO"):
		c.triple.Newborn.Sex = clinical.SexMale
	default:
		c.triple.Newborn.Sex = clinical.SexMale
		c.markDefaulted(tabular.FieldSex)
	}
}

// extractWeight reads the weight, inferring the unit: exports mix kilograms
// and grams in the same column, so values above 100 are taken as grams.
func (c *rowCandidate) extractWeight(row []tabular.Cell, cols tabular.ColumnMap) {
	s, ok := cellValue(cols.Cell(row, tabular.FieldWeight))
	if ok {
		s = strings.ReplaceAll(s, ",", ".")
		if f, err := strconv.ParseFloat(s, 64); err == nil && f > 0 {
			if f > 100 {
				f /= 1000
			}
			c.triple.Newborn.WeightKg = math.Round(f*1000) / 1000
			return
		}
	}
	c.triple.Newborn.WeightKg = defaultWeightKg
	c.markDefaulted(tabular.FieldWeight)
}

func (c *rowCandidate) extractLength(row []tabular.Cell, cols tabular.ColumnMap) {
	s, ok := cellValue(cols.Cell(row, tabular.FieldLength))
	if ok {
		s = strings.ReplaceAll(s, ",", ".")
		if f, err := strconv.ParseFloat(s, 64); err == nil && f > 0 {
			c.triple.Newborn.LengthCm = math.Round(f*10) / 10
			return
		}
	}
	c.triple.Newborn.LengthCm = defaultLengthCm
	c.markDefaulted(tabular.FieldLength)
}

func (c *rowCandidate) extractApgar(row []tabular.Cell, cols tabular.ColumnMap) {
	c.triple.Newborn.Apgar1 = c.apgarScore(row, cols, tabular.FieldApgar1, defaultApgar1)
	c.triple.Newborn.Apgar5 = c.apgarScore(row, cols, tabular.FieldApgar5, defaultApgar5)
}

func (c *rowCandidate) apgarScore(row []tabular.Cell, cols tabular.ColumnMap, field tabular.Field, fallback int) int {
	if s, ok := cellValue(cols.Cell(row, field)); ok {
		if f, err := strconv.ParseFloat(s, 64); err == nil && f >= 0 {
			return int(f)
		}
	}
	c.markDefaulted(field)
	return fallback
}
