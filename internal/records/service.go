// Package records is the interactive entry path for clinical records. It
// applies the strict validation posture: fresh events only and verified
// identifiers, with no lenient defaulting. The batch import path lives in
// the importer package.
package records

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/saludaustral/partoreg/internal/clinical"
	"github.com/saludaustral/partoreg/internal/rut"
	"github.com/saludaustral/partoreg/internal/store"
)

// entryOptions is the interactive posture: events must fall inside the
// freshness window and identifiers must carry a valid check digit.
var entryOptions = clinical.Options{
	AllowHistorical:           false,
	RequireVerifiedIdentifier: true,
}

// Service registers interactively-entered triples against the record
// store. The clock is injected for reproducible freshness checks.
type Service struct {
	store store.Store
	clock func() time.Time
}

func NewService(st store.Store, clock func() time.Time) *Service {
	if clock == nil {
		clock = time.Now
	}
	return &Service{store: st, clock: clock}
}

// Register normalizes, validates and upserts one triple. The mother's
// identifier must pass check-digit validation; registered mothers are
// marked verified. Returns whether a new birth event was created.
func (s *Service) Register(ctx context.Context, t *clinical.Triple, actor uuid.NullUUID) (created bool, err error) {
	canonical, err := rut.Normalize(t.Mother.RUT)
	if err != nil {
		return false, fmt.Errorf("normalizing identifier: %w", err)
	}
	t.Mother.RUT = canonical
	t.Mother.IdentifierVerified = rut.Validate(canonical)

	now := s.clock()
	if err := clinical.ValidateTriple(t, entryOptions, now); err != nil {
		return false, err
	}

	scope, err := s.store.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("opening scope: %w", err)
	}
	defer scope.Rollback(ctx)

	mother, err := scope.MotherByRUT(ctx, t.Mother.RUT)
	switch {
	case errors.Is(err, store.ErrNotFound):
		t.Mother.CreatedAt = now
		t.Mother.UpdatedAt = now
		t.Mother.CreatedBy = actor
		if err := scope.CreateMother(ctx, &t.Mother); err != nil {
			return false, fmt.Errorf("creating mother: %w", err)
		}
		mother = &t.Mother
	case err != nil:
		return false, fmt.Errorf("looking up mother: %w", err)
	default:
		// Interactive entry is authoritative for the mother's demographics.
		t.Mother.ID = mother.ID
		t.Mother.CreatedAt = mother.CreatedAt
		t.Mother.CreatedBy = mother.CreatedBy
		t.Mother.UpdatedAt = now
		if err := scope.UpdateMother(ctx, &t.Mother); err != nil {
			return false, fmt.Errorf("updating mother: %w", err)
		}
		mother = &t.Mother
	}

	event, err := scope.EventByKey(ctx, mother.ID, t.Event.Timestamp)
	switch {
	case errors.Is(err, store.ErrNotFound):
		t.Event.MotherID = mother.ID
		t.Event.CreatedAt = now
		t.Event.UpdatedAt = now
		t.Event.CreatedBy = actor
		if err := scope.CreateEvent(ctx, &t.Event); err != nil {
			return false, fmt.Errorf("creating event: %w", err)
		}
		created = true
	case err != nil:
		return false, fmt.Errorf("looking up event: %w", err)
	default:
		t.Event.ID = event.ID
		t.Event.MotherID = mother.ID
		t.Event.CreatedAt = event.CreatedAt
		t.Event.CreatedBy = event.CreatedBy
		t.Event.UpdatedAt = now
		if err := scope.UpdateEvent(ctx, &t.Event); err != nil {
			return false, fmt.Errorf("updating event: %w", err)
		}
	}

	newborn, err := scope.NewbornByEvent(ctx, t.Event.ID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		t.Newborn.EventID = t.Event.ID
		t.Newborn.CreatedAt = now
		t.Newborn.UpdatedAt = now
		if err := scope.CreateNewborn(ctx, &t.Newborn); err != nil {
			return false, fmt.Errorf("creating newborn: %w", err)
		}
	case err != nil:
		return false, fmt.Errorf("looking up newborn: %w", err)
	default:
		t.Newborn.ID = newborn.ID
		t.Newborn.EventID = t.Event.ID
		t.Newborn.CreatedAt = newborn.CreatedAt
		t.Newborn.UpdatedAt = now
		if err := scope.UpdateNewborn(ctx, &t.Newborn); err != nil {
			return false, fmt.Errorf("updating newborn: %w", err)
		}
	}

	if err := scope.Commit(ctx); err != nil {
		return false, fmt.Errorf("committing: %w", err)
	}
	return created, nil
}
