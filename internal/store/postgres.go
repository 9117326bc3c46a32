package store

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/saludaustral/partoreg/internal/clinical"
)

//go:embed schema.sql
var schemaSQL string

// PG is the Postgres-backed record store.
type PG struct {
	pool *pgxpool.Pool
}

// NewPG wraps a connection pool.
func NewPG(pool *pgxpool.Pool) *PG {
	return &PG{pool: pool}
}

// EnsureSchema creates the record-store tables if they do not exist.
func (p *PG) EnsureSchema(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// Begin opens a per-row transactional scope.
func (p *PG) Begin(ctx context.Context) (RowScope, error) {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin row scope: %w", err)
	}
	return &pgScope{tx: tx}, nil
}

type pgScope struct {
	tx pgx.Tx
}

func (s *pgScope) Commit(ctx context.Context) error {
	return s.tx.Commit(ctx)
}

func (s *pgScope) Rollback(ctx context.Context) error {
	err := s.tx.Rollback(ctx)
	if errors.Is(err, pgx.ErrTxClosed) {
		return nil
	}
	return err
}

const motherColumns = `id, rut, given_names, surnames, birth_date, marital_status,
	address, phone, insurance, identifier_verified, created_at, updated_at, created_by`

func (s *pgScope) MotherByRUT(ctx context.Context, canonical string) (*clinical.Mother, error) {
	row := s.tx.QueryRow(ctx,
		`SELECT `+motherColumns+` FROM mothers WHERE rut = $1`, canonical)

	var m clinical.Mother
	err := row.Scan(&m.ID, &m.RUT, &m.GivenNames, &m.Surnames, &m.BirthDate,
		&m.MaritalStatus, &m.Address, &m.Phone, &m.Insurance,
		&m.IdentifierVerified, &m.CreatedAt, &m.UpdatedAt, &m.CreatedBy)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("mother by rut: %w", err)
	}
	return &m, nil
}

func (s *pgScope) CreateMother(ctx context.Context, m *clinical.Mother) error {
	err := s.tx.QueryRow(ctx, `
		INSERT INTO mothers (rut, given_names, surnames, birth_date, marital_status,
			address, phone, insurance, identifier_verified, created_at, updated_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id`,
		m.RUT, m.GivenNames, m.Surnames, m.BirthDate, m.MaritalStatus,
		m.Address, m.Phone, m.Insurance, m.IdentifierVerified,
		m.CreatedAt, m.UpdatedAt, m.CreatedBy,
	).Scan(&m.ID)
	if err != nil {
		return fmt.Errorf("create mother: %w", err)
	}
	return nil
}

func (s *pgScope) UpdateMother(ctx context.Context, m *clinical.Mother) error {
	_, err := s.tx.Exec(ctx, `
		UPDATE mothers SET given_names = $2, surnames = $3, birth_date = $4,
			marital_status = $5, address = $6, phone = $7, insurance = $8,
			identifier_verified = $9, updated_at = $10
		WHERE id = $1`,
		m.ID, m.GivenNames, m.Surnames, m.BirthDate, m.MaritalStatus,
		m.Address, m.Phone, m.Insurance, m.IdentifierVerified, m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update mother: %w", err)
	}
	return nil
}

const eventColumns = `id, mother_id, event_ts, parity, obstetric_weeks, obstetric_weeks_days,
	monitored, labor_test_conducted, induced, delivery_type, managed_third_stage,
	robson_classification, accompanied, unaccompanied_reason, companion, companion_cut_cord,
	professional_in_charge, cesarean_cause, used_saip_room, memorial_law_notes,
	placenta_withdrawn, placenta_stamped, valid_folio, void_folios, non_pharma_pain_mgmt,
	gestational_weeks, anesthesia, complications, notes, created_at, updated_at, created_by`

func (s *pgScope) EventByKey(ctx context.Context, motherID int64, ts time.Time) (*clinical.BirthEvent, error) {
	row := s.tx.QueryRow(ctx,
		`SELECT `+eventColumns+` FROM birth_events WHERE mother_id = $1 AND event_ts = $2`,
		motherID, ts)

	var e clinical.BirthEvent
	err := row.Scan(&e.ID, &e.MotherID, &e.Timestamp, &e.Parity, &e.ObstetricWeeks,
		&e.ObstetricWeeksDays, &e.Monitored, &e.LaborTestConducted, &e.Induced,
		&e.DeliveryType, &e.ManagedThirdStage, &e.RobsonClassification,
		&e.Accompanied, &e.UnaccompaniedReason, &e.Companion, &e.CompanionCutCord,
		&e.ProfessionalInCharge, &e.CesareanCause, &e.UsedSAIPRoom, &e.MemorialLawNotes,
		&e.PlacentaWithdrawn, &e.PlacentaStamped, &e.ValidFolio, &e.VoidFolios,
		&e.NonPharmaPainMgmt, &e.GestationalWeeks, &e.Anesthesia, &e.Complications,
		&e.Notes, &e.CreatedAt, &e.UpdatedAt, &e.CreatedBy)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("event by key: %w", err)
	}
	return &e, nil
}

func (s *pgScope) CreateEvent(ctx context.Context, e *clinical.BirthEvent) error {
	err := s.tx.QueryRow(ctx, `
		INSERT INTO birth_events (mother_id, event_ts, parity, obstetric_weeks,
			obstetric_weeks_days, monitored, labor_test_conducted, induced, delivery_type,
			managed_third_stage, robson_classification, accompanied, unaccompanied_reason,
			companion, companion_cut_cord, professional_in_charge, cesarean_cause,
			used_saip_room, memorial_law_notes, placenta_withdrawn, placenta_stamped,
			valid_folio, void_folios, non_pharma_pain_mgmt, gestational_weeks, anesthesia,
			complications, notes, created_at, updated_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16,
			$17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29, $30, $31)
		RETURNING id`,
		e.MotherID, e.Timestamp, e.Parity, e.ObstetricWeeks, e.ObstetricWeeksDays,
		e.Monitored, e.LaborTestConducted, e.Induced, e.DeliveryType, e.ManagedThirdStage,
		e.RobsonClassification, e.Accompanied, e.UnaccompaniedReason, e.Companion,
		e.CompanionCutCord, e.ProfessionalInCharge, e.CesareanCause, e.UsedSAIPRoom,
		e.MemorialLawNotes, e.PlacentaWithdrawn, e.PlacentaStamped, e.ValidFolio,
		e.VoidFolios, e.NonPharmaPainMgmt, e.GestationalWeeks, e.Anesthesia,
		e.Complications, e.Notes, e.CreatedAt, e.UpdatedAt, e.CreatedBy,
	).Scan(&e.ID)
	if err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}

func (s *pgScope) UpdateEvent(ctx context.Context, e *clinical.BirthEvent) error {
	_, err := s.tx.Exec(ctx, `
		UPDATE birth_events SET parity = $2, obstetric_weeks = $3, obstetric_weeks_days = $4,
			monitored = $5, labor_test_conducted = $6, induced = $7, delivery_type = $8,
			managed_third_stage = $9, robson_classification = $10, accompanied = $11,
			unaccompanied_reason = $12, companion = $13, companion_cut_cord = $14,
			professional_in_charge = $15, cesarean_cause = $16, used_saip_room = $17,
			memorial_law_notes = $18, placenta_withdrawn = $19, placenta_stamped = $20,
			valid_folio = $21, void_folios = $22, non_pharma_pain_mgmt = $23,
			gestational_weeks = $24, anesthesia = $25, complications = $26, notes = $27,
			updated_at = $28
		WHERE id = $1`,
		e.ID, e.Parity, e.ObstetricWeeks, e.ObstetricWeeksDays, e.Monitored,
		e.LaborTestConducted, e.Induced, e.DeliveryType, e.ManagedThirdStage,
		e.RobsonClassification, e.Accompanied, e.UnaccompaniedReason, e.Companion,
		e.CompanionCutCord, e.ProfessionalInCharge, e.CesareanCause, e.UsedSAIPRoom,
		e.MemorialLawNotes, e.PlacentaWithdrawn, e.PlacentaStamped, e.ValidFolio,
		e.VoidFolios, e.NonPharmaPainMgmt, e.GestationalWeeks, e.Anesthesia,
		e.Complications, e.Notes, e.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	return nil
}

const newbornColumns = `id, event_id, birth_time, sex, weight_kg, length_cm,
	apgar_1, apgar_5, status, notes, created_at, updated_at`

func (s *pgScope) NewbornByEvent(ctx context.Context, eventID int64) (*clinical.Newborn, error) {
	row := s.tx.QueryRow(ctx,
		`SELECT `+newbornColumns+` FROM newborns WHERE event_id = $1 ORDER BY id LIMIT 1`,
		eventID)

	var n clinical.Newborn
	var birth pgtype.Time
	err := row.Scan(&n.ID, &n.EventID, &birth, &n.Sex, &n.WeightKg, &n.LengthCm,
		&n.Apgar1, &n.Apgar5, &n.Status, &n.Notes, &n.CreatedAt, &n.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("newborn by event: %w", err)
	}
	n.BirthTime = fromTimeOfDay(birth)
	return &n, nil
}

func (s *pgScope) CreateNewborn(ctx context.Context, n *clinical.Newborn) error {
	err := s.tx.QueryRow(ctx, `
		INSERT INTO newborns (event_id, birth_time, sex, weight_kg, length_cm,
			apgar_1, apgar_5, status, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id`,
		n.EventID, toTimeOfDay(n.BirthTime), n.Sex, n.WeightKg, n.LengthCm,
		n.Apgar1, n.Apgar5, n.Status, n.Notes, n.CreatedAt, n.UpdatedAt,
	).Scan(&n.ID)
	if err != nil {
		return fmt.Errorf("create newborn: %w", err)
	}
	return nil
}

func (s *pgScope) UpdateNewborn(ctx context.Context, n *clinical.Newborn) error {
	_, err := s.tx.Exec(ctx, `
		UPDATE newborns SET birth_time = $2, sex = $3, weight_kg = $4, length_cm = $5,
			apgar_1 = $6, apgar_5 = $7, status = $8, notes = $9, updated_at = $10
		WHERE id = $1`,
		n.ID, toTimeOfDay(n.BirthTime), n.Sex, n.WeightKg, n.LengthCm,
		n.Apgar1, n.Apgar5, n.Status, n.Notes, n.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update newborn: %w", err)
	}
	return nil
}

// toTimeOfDay maps a time.Time onto the Postgres TIME column, keeping only
// the time-of-day component.
func toTimeOfDay(t time.Time) pgtype.Time {
	if t.IsZero() {
		return pgtype.Time{Valid: true}
	}
	us := int64(t.Hour())*3600_000_000 +
		int64(t.Minute())*60_000_000 +
		int64(t.Second())*1_000_000
	return pgtype.Time{Microseconds: us, Valid: true}
}

// fromTimeOfDay converts a TIME column value back to a wall-clock time on
// the zero date.
func fromTimeOfDay(t pgtype.Time) time.Time {
	if !t.Valid {
		return time.Time{}
	}
	us := t.Microseconds
	h := us / 3600_000_000
	us -= h * 3600_000_000
	m := us / 60_000_000
	us -= m * 60_000_000
	sec := us / 1_000_000
	return time.Date(1, time.January, 1, int(h), int(m), int(sec), 0, time.UTC)
}
