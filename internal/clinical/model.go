// Package clinical defines the normalized birth-ward record model and the
// validation engine that gates every write to the record store.
package clinical

import (
	"time"

	"github.com/google/uuid"
)

// MaritalStatus categorizes a mother's civil state.
type MaritalStatus string

const (
	MaritalSingle   MaritalStatus = "single"
	MaritalMarried  MaritalStatus = "married"
	MaritalWidowed  MaritalStatus = "widowed"
	MaritalDivorced MaritalStatus = "divorced"
	MaritalCohabit  MaritalStatus = "cohabiting"
)

// Insurance categorizes the mother's health coverage.
type Insurance string

const (
	InsuranceFonasaA Insurance = "fonasa_a"
	InsuranceFonasaB Insurance = "fonasa_b"
	InsuranceFonasaC Insurance = "fonasa_c"
	InsuranceFonasaD Insurance = "fonasa_d"
	InsuranceIsapre  Insurance = "isapre"
	InsurancePrivate Insurance = "private"
	InsurancePrais   Insurance = "prais"
	InsuranceOther   Insurance = "other"
)

// DeliveryType categorizes how the delivery concluded.
type DeliveryType string

const (
	DeliveryVaginal  DeliveryType = "vaginal"
	DeliveryCesarean DeliveryType = "cesarean"
	DeliveryForceps  DeliveryType = "forceps"
)

// RobsonGroup is the WHO Robson ten-group classification of the delivery.
type RobsonGroup string

const (
	Robson1  RobsonGroup = "group_1"
	Robson2A RobsonGroup = "group_2a"
	Robson2B RobsonGroup = "group_2b"
	Robson3  RobsonGroup = "group_3"
	Robson4A RobsonGroup = "group_4a"
	Robson4B RobsonGroup = "group_4b"
	Robson5A RobsonGroup = "group_5a"
	Robson5B RobsonGroup = "group_5b"
	Robson6  RobsonGroup = "group_6"
	Robson7  RobsonGroup = "group_7"
	Robson8  RobsonGroup = "group_8"
	Robson10 RobsonGroup = "group_10"
)

// Companion categorizes who accompanied the mother during delivery.
type Companion string

const (
	CompanionPartner Companion = "partner"
	CompanionSibling Companion = "sibling"
	CompanionParent  Companion = "parent"
	CompanionAuntcle Companion = "aunt_uncle"
	CompanionInLaw   Companion = "in_law"
)

// Sex categorizes a newborn's recorded sex.
type Sex string

const (
	SexFemale Sex = "F"
	SexMale   Sex = "M"
)

// LifeStatus categorizes a newborn's vitality at registration.
type LifeStatus string

const (
	LifeAlive    LifeStatus = "alive"
	LifeDeceased LifeStatus = "deceased"
)

// Mother is the maternal patient record, keyed by her canonical RUT.
type Mother struct {
	ID         int64
	RUT        string // canonical "NNNNNNNN-V" form; uniqueness key
	GivenNames string
	Surnames   string
	BirthDate  time.Time

	MaritalStatus MaritalStatus
	Address       string
	Phone         string
	Insurance     Insurance

	// IdentifierVerified records whether the RUT passed check-digit
	// validation at write time. Bulk imports shape-fix identifiers without
	// enforcing the checksum, so reconciliation against official registries
	// needs to know which records to trust.
	IdentifierVerified bool

	CreatedAt time.Time
	UpdatedAt time.Time
	CreatedBy uuid.NullUUID
}

// AgeAt returns the mother's age in whole years at the given instant.
func (m *Mother) AgeAt(now time.Time) int {
	age := now.Year() - m.BirthDate.Year()
	if now.YearDay() < m.BirthDate.YearDay() {
		age--
	}
	return age
}

// BirthEvent is one delivery episode. Its natural key for reconciliation is
// (MotherID, Timestamp).
type BirthEvent struct {
	ID        int64
	MotherID  int64
	Timestamp time.Time

	// Labor attributes. Pointers mark clinically-optional values where
	// absence is distinct from zero/false.
	Parity               *int
	ObstetricWeeks       *int
	ObstetricWeeksDays   *int
	Monitored            *bool
	LaborTestConducted   *bool
	Induced              *bool
	DeliveryType         DeliveryType
	ManagedThirdStage    *bool
	RobsonClassification RobsonGroup

	// Companion attributes.
	Accompanied          *bool
	UnaccompaniedReason  string
	Companion            Companion
	CompanionCutCord     *bool

	// Professional attributes.
	ProfessionalInCharge string
	CesareanCause        string

	// Administrative attributes.
	UsedSAIPRoom         *bool
	MemorialLawNotes     string
	PlacentaWithdrawn    *bool
	PlacentaStamped      *bool
	ValidFolio           string
	VoidFolios           string
	NonPharmaPainMgmt    string

	GestationalWeeks *int
	Anesthesia       string
	Complications    string
	Notes            string

	CreatedAt time.Time
	UpdatedAt time.Time
	CreatedBy uuid.NullUUID
}

// Newborn is one infant record tied to a BirthEvent. The batch import path
// upserts at most one newborn per event; multiple-newborn events are an
// extension point for the interactive path.
type Newborn struct {
	ID      int64
	EventID int64

	BirthTime time.Time // time-of-day; the date component is the event's
	Sex       Sex
	WeightKg  float64 // 3 decimal places
	LengthCm  float64 // 1 decimal place
	Apgar1    int
	Apgar5    int
	Status    LifeStatus
	Notes     string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Triple is a candidate (Mother, BirthEvent, Newborn) awaiting validation
// and reconciliation. The BirthEvent and Newborn are not yet linked by IDs;
// linkage happens during the upsert.
type Triple struct {
	Mother  Mother
	Event   BirthEvent
	Newborn Newborn
}
