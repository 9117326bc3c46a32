// Package importer turns ward-exported workbooks into reconciled clinical
// records: header detection, column mapping, lenient row extraction,
// validation and per-row upsert against the record store.
package importer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/saludaustral/partoreg/internal/clinical"
	"github.com/saludaustral/partoreg/internal/logging"
	"github.com/saludaustral/partoreg/internal/store"
	"github.com/saludaustral/partoreg/internal/tabular"
)

// MaxReportedErrors caps the per-row errors carried on an ImportResult.
// ErrorCount still reflects the full total so truncation is visible.
const MaxReportedErrors = 20

// importOptions is the fixed validation posture of the batch path: ward
// exports are historical by nature and their identifiers are transcribed,
// so neither freshness nor the check digit is enforced here.
var importOptions = clinical.Options{
	AllowHistorical:           true,
	RequireVerifiedIdentifier: false,
}

// RowError is one failed source row. Row is the 1-based row number as seen
// in the spreadsheet, header offset included, so users can jump straight to
// the cell that failed.
type RowError struct {
	Row     int
	Message string
}

// RowDefaults lists the fields whose values were substituted while
// extracting one row.
type RowDefaults struct {
	Row    int
	Fields []string
}

// ImportResult summarizes one workbook import.
type ImportResult struct {
	Sheet     string
	HeaderRow int // zero-based detected header row

	Created int
	Updated int
	Skipped int

	// Errors holds at most MaxReportedErrors entries; ErrorCount is the
	// full total.
	Errors     []RowError
	ErrorCount int

	Defaulted []RowDefaults
}

// Service runs workbook imports against a record store. The clock is
// injected so temporal fallbacks and freshness checks are reproducible
// under test.
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

// ImportWorkbook processes the first sheet of src: detects the header row,
// maps columns, then extracts, validates and reconciles each data row in
// its own transaction. Row failures are collected; only an unreadable
// source fails the whole operation.
func (s *Service) ImportWorkbook(ctx context.Context, src tabular.Source, actor uuid.NullUUID) (*ImportResult, error) {
	ctx = logging.WithBatchID(ctx, uuid.NewString())
	log := logging.FromContext(ctx)

	sheets, err := src.Sheets()
	if err != nil {
		return nil, fmt.Errorf("reading workbook: %w", err)
	}
	sheet := sheets[0]

	preview, err := src.Rows(sheet, 0)
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheet, err)
	}

	det := tabular.DetectHeader(preview)
	result := &ImportResult{Sheet: sheet, HeaderRow: det.Row}

	if det.Row >= len(preview) {
		log.Warn("sheet has no rows", "sheet", sheet)
		return result, nil
	}

	cols := tabular.MapColumns(preview[det.Row])
	log = logging.WithFields(ctx, "sheet", sheet, "header_row", det.Row, "columns", len(cols))
	log.Info("import started")

	rows, err := src.Rows(sheet, det.Row+1)
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheet, err)
	}

	if _, ok := cols.Col(tabular.FieldIdentifier); !ok {
		// Without an identifier column no row can be keyed; everything is
		// skipped rather than failing the operation.
		result.Skipped = len(rows)
		log.Warn("no identifier column found; all rows skipped", "rows", len(rows))
		return result, nil
	}

	now := s.clock()
	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		// 1-based spreadsheet numbering: data starts one past the header.
		rowNum := det.Row + i + 2

		cand, ok := extractRow(row, cols, now)
		if !ok {
			result.Skipped++
			continue
		}
		if len(cand.defaulted) > 0 {
			result.Defaulted = append(result.Defaulted, RowDefaults{Row: rowNum, Fields: cand.defaulted})
		}

		if err := clinical.ValidateTriple(&cand.triple, importOptions, now); err != nil {
			s.recordError(result, rowNum, err.Error())
			log.Warn("row rejected", "row", rowNum, "error", err)
			continue
		}

		created, err := s.reconcileRow(ctx, &cand.triple, actor, now)
		if err != nil {
			s.recordError(result, rowNum, FormatUserError(err))
			log.Error("row failed", "row", rowNum, "error", err)
			continue
		}
		if created {
			result.Created++
		} else {
			result.Updated++
		}
	}

	log.Info("import finished",
		"created", result.Created,
		"updated", result.Updated,
		"skipped", result.Skipped,
		"errors", result.ErrorCount,
	)
	return result, nil
}

func (s *Service) recordError(result *ImportResult, rowNum int, msg string) {
	result.ErrorCount++
	if len(result.Errors) < MaxReportedErrors {
		result.Errors = append(result.Errors, RowError{Row: rowNum, Message: msg})
	}
}

// reconcileRow upserts one triple inside its own transaction. A row counts
// as created when its birth event is new; touching an existing event counts
// as updated regardless of what changed on the mother.
func (s *Service) reconcileRow(ctx context.Context, t *clinical.Triple, actor uuid.NullUUID, now time.Time) (created bool, err error) {
	scope, err := s.store.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("opening row scope: %w", err)
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
		mother.GivenNames = t.Mother.GivenNames
		mother.Surnames = t.Mother.Surnames
		mother.BirthDate = t.Mother.BirthDate
		mother.Address = t.Mother.Address
		mother.Insurance = t.Mother.Insurance
		// Verification only upgrades: a later row with a bad check digit
		// must not unverify an identifier already proven good.
		mother.IdentifierVerified = mother.IdentifierVerified || t.Mother.IdentifierVerified
		mother.UpdatedAt = now
		if err := scope.UpdateMother(ctx, mother); err != nil {
			return false, fmt.Errorf("updating mother: %w", err)
		}
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
		event = &t.Event
		created = true
	case err != nil:
		return false, fmt.Errorf("looking up event: %w", err)
	default:
		event.DeliveryType = t.Event.DeliveryType
		event.GestationalWeeks = t.Event.GestationalWeeks
		event.UpdatedAt = now
		if err := scope.UpdateEvent(ctx, event); err != nil {
			return false, fmt.Errorf("updating event: %w", err)
		}
	}

	newborn, err := scope.NewbornByEvent(ctx, event.ID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		t.Newborn.EventID = event.ID
		t.Newborn.CreatedAt = now
		t.Newborn.UpdatedAt = now
		if err := scope.CreateNewborn(ctx, &t.Newborn); err != nil {
			return false, fmt.Errorf("creating newborn: %w", err)
		}
	case err != nil:
		return false, fmt.Errorf("looking up newborn: %w", err)
	default:
		newborn.BirthTime = t.Newborn.BirthTime
		newborn.Sex = t.Newborn.Sex
		newborn.WeightKg = t.Newborn.WeightKg
		newborn.LengthCm = t.Newborn.LengthCm
		newborn.Apgar1 = t.Newborn.Apgar1
		newborn.Apgar5 = t.Newborn.Apgar5
		newborn.Status = t.Newborn.Status
		newborn.UpdatedAt = now
		if err := scope.UpdateNewborn(ctx, newborn); err != nil {
			return false, fmt.Errorf("updating newborn: %w", err)
		}
	}

	if err := scope.Commit(ctx); err != nil {
		return false, fmt.Errorf("committing row: %w", err)
	}
	return created, nil
}
