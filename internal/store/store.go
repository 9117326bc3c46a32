// Package store defines the record-store contract the pipeline writes
// through, plus its Postgres implementation.
//
// All mutation is scoped: callers open a RowScope, perform the lookups and
// writes for exactly one logical record, then commit or roll back. The
// import pipeline opens one scope per source row so a failed row never
// disturbs its neighbors.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/saludaustral/partoreg/internal/clinical"
)

// ErrNotFound is returned by the lookup methods when no record matches the
// natural key.
var ErrNotFound = errors.New("store: record not found")

// Store hands out per-row transactional scopes.
type Store interface {
	Begin(ctx context.Context) (RowScope, error)
}

// RowScope is one isolated transactional unit. Every method operates inside
// the same underlying transaction; Commit makes the row's writes durable,
// Rollback discards all of them. Rollback after Commit is a no-op so scopes
// can be cleaned up with defer.
type RowScope interface {
	MotherByRUT(ctx context.Context, canonical string) (*clinical.Mother, error)
	CreateMother(ctx context.Context, m *clinical.Mother) error
	UpdateMother(ctx context.Context, m *clinical.Mother) error

	EventByKey(ctx context.Context, motherID int64, ts time.Time) (*clinical.BirthEvent, error)
	CreateEvent(ctx context.Context, e *clinical.BirthEvent) error
	UpdateEvent(ctx context.Context, e *clinical.BirthEvent) error

	NewbornByEvent(ctx context.Context, eventID int64) (*clinical.Newborn, error)
	CreateNewborn(ctx context.Context, n *clinical.Newborn) error
	UpdateNewborn(ctx context.Context, n *clinical.Newborn) error

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}
