package records

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saludaustral/partoreg/internal/clinical"
	"github.com/saludaustral/partoreg/internal/store"
)

var entryNow = time.Date(2026, time.August, 30, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return entryNow }

func freshTriple() *clinical.Triple {
	weeks := 39
	ts := entryNow.Add(-6 * time.Hour)
	return &clinical.Triple{
		Mother: clinical.Mother{
			RUT:           "12.345.678-5",
			GivenNames:    "MARIA",
			Surnames:      "PEREZ SOTO",
			BirthDate:     time.Date(1998, time.March, 15, 0, 0, 0, 0, time.UTC),
			MaritalStatus: clinical.MaritalSingle,
			Insurance:     clinical.InsuranceFonasaB,
		},
		Event: clinical.BirthEvent{
			Timestamp:        ts,
			DeliveryType:     clinical.DeliveryVaginal,
			GestationalWeeks: &weeks,
		},
		Newborn: clinical.Newborn{
			BirthTime: ts,
			Sex:       clinical.SexFemale,
			WeightKg:  3.2,
			LengthCm:  50,
			Apgar1:    9,
			Apgar5:    10,
			Status:    clinical.LifeAlive,
		},
	}
}

func TestRegister_CreatesVerifiedRecords(t *testing.T) {
	mem := store.NewMemory()
	svc := NewService(mem, fixedClock)
	actor := uuid.NullUUID{UUID: uuid.New(), Valid: true}

	created, err := svc.Register(context.Background(), freshTriple(), actor)
	require.NoError(t, err)
	assert.True(t, created)

	require.Len(t, mem.Mothers(), 1)
	mother := mem.Mothers()[0]
	assert.Equal(t, "12345678-5", mother.RUT)
	assert.True(t, mother.IdentifierVerified)
	assert.Equal(t, actor, mother.CreatedBy)

	require.Len(t, mem.Events(), 1)
	require.Len(t, mem.Newborns(), 1)
}

func TestRegister_SameEventUpdates(t *testing.T) {
	mem := store.NewMemory()
	svc := NewService(mem, fixedClock)

	created, err := svc.Register(context.Background(), freshTriple(), uuid.NullUUID{})
	require.NoError(t, err)
	assert.True(t, created)

	again := freshTriple()
	again.Newborn.WeightKg = 3.4
	created, err = svc.Register(context.Background(), again, uuid.NullUUID{})
	require.NoError(t, err)
	assert.False(t, created)

	require.Len(t, mem.Events(), 1)
	require.Len(t, mem.Newborns(), 1)
	assert.InDelta(t, 3.4, mem.Newborns()[0].WeightKg, 0.0001)
}

func TestRegister_RejectsBadCheckDigit(t *testing.T) {
	mem := store.NewMemory()
	svc := NewService(mem, fixedClock)

	tr := freshTriple()
	tr.Mother.RUT = "12.345.678-4"

	_, err := svc.Register(context.Background(), tr, uuid.NullUUID{})
	var verr *clinical.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, clinical.RuleIdentifierChecksum, verr.Rule)
	assert.Empty(t, mem.Mothers())
}

func TestRegister_RejectsStaleEvent(t *testing.T) {
	mem := store.NewMemory()
	svc := NewService(mem, fixedClock)

	tr := freshTriple()
	tr.Event.Timestamp = entryNow.Add(-72 * time.Hour)
	tr.Newborn.BirthTime = tr.Event.Timestamp

	_, err := svc.Register(context.Background(), tr, uuid.NullUUID{})
	var verr *clinical.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, clinical.RuleEventTooOld, verr.Rule)
	assert.Empty(t, mem.Events())
}

func TestRegister_RejectsMalformedIdentifier(t *testing.T) {
	mem := store.NewMemory()
	svc := NewService(mem, fixedClock)

	tr := freshTriple()
	tr.Mother.RUT = "x"

	_, err := svc.Register(context.Background(), tr, uuid.NullUUID{})
	require.Error(t, err)
	assert.Empty(t, mem.Mothers())
}
