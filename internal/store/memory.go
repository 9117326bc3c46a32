package store

import (
	"context"
	"sync"
	"time"

	"github.com/saludaustral/partoreg/internal/clinical"
)

// Memory is an in-process Store used by tests and dry runs. Scopes buffer
// their writes and apply them atomically on Commit, mirroring the
// transactional behavior of the Postgres implementation.
type Memory struct {
	mu      sync.Mutex
	nextID  int64
	mothers map[int64]clinical.Mother
	events  map[int64]clinical.BirthEvent
	infants map[int64]clinical.Newborn
}

func NewMemory() *Memory {
	return &Memory{
		nextID:  1,
		mothers: make(map[int64]clinical.Mother),
		events:  make(map[int64]clinical.BirthEvent),
		infants: make(map[int64]clinical.Newborn),
	}
}

func (m *Memory) Begin(ctx context.Context) (RowScope, error) {
	return &memScope{db: m}, nil
}

// Mothers returns a snapshot of all committed mothers.
func (m *Memory) Mothers() []clinical.Mother {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]clinical.Mother, 0, len(m.mothers))
	for _, v := range m.mothers {
		out = append(out, v)
	}
	return out
}

// Events returns a snapshot of all committed birth events.
func (m *Memory) Events() []clinical.BirthEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]clinical.BirthEvent, 0, len(m.events))
	for _, v := range m.events {
		out = append(out, v)
	}
	return out
}

// Newborns returns a snapshot of all committed newborns.
func (m *Memory) Newborns() []clinical.Newborn {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]clinical.Newborn, 0, len(m.infants))
	for _, v := range m.infants {
		out = append(out, v)
	}
	return out
}

type memScope struct {
	db   *Memory
	done bool

	// Buffered writes, applied on Commit in order.
	writes []func(db *Memory)
}

func (s *memScope) Commit(ctx context.Context) error {
	if s.done {
		return nil
	}
	s.done = true
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, w := range s.writes {
		w(s.db)
	}
	return nil
}

func (s *memScope) Rollback(ctx context.Context) error {
	s.done = true
	s.writes = nil
	return nil
}

func (s *memScope) MotherByRUT(ctx context.Context, canonical string) (*clinical.Mother, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, m := range s.db.mothers {
		if m.RUT == canonical {
			cp := m
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (s *memScope) CreateMother(ctx context.Context, m *clinical.Mother) error {
	m.ID = s.allocID()
	cp := *m
	s.writes = append(s.writes, func(db *Memory) { db.mothers[cp.ID] = cp })
	return nil
}

func (s *memScope) UpdateMother(ctx context.Context, m *clinical.Mother) error {
	cp := *m
	s.writes = append(s.writes, func(db *Memory) { db.mothers[cp.ID] = cp })
	return nil
}

func (s *memScope) EventByKey(ctx context.Context, motherID int64, ts time.Time) (*clinical.BirthEvent, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, e := range s.db.events {
		if e.MotherID == motherID && e.Timestamp.Equal(ts) {
			cp := e
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (s *memScope) CreateEvent(ctx context.Context, e *clinical.BirthEvent) error {
	e.ID = s.allocID()
	cp := *e
	s.writes = append(s.writes, func(db *Memory) { db.events[cp.ID] = cp })
	return nil
}

func (s *memScope) UpdateEvent(ctx context.Context, e *clinical.BirthEvent) error {
	cp := *e
	s.writes = append(s.writes, func(db *Memory) { db.events[cp.ID] = cp })
	return nil
}

func (s *memScope) NewbornByEvent(ctx context.Context, eventID int64) (*clinical.Newborn, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, n := range s.db.infants {
		if n.EventID == eventID {
			cp := n
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (s *memScope) CreateNewborn(ctx context.Context, n *clinical.Newborn) error {
	n.ID = s.allocID()
	cp := *n
	s.writes = append(s.writes, func(db *Memory) { db.infants[cp.ID] = cp })
	return nil
}

func (s *memScope) UpdateNewborn(ctx context.Context, n *clinical.Newborn) error {
	cp := *n
	s.writes = append(s.writes, func(db *Memory) { db.infants[cp.ID] = cp })
	return nil
}

func (s *memScope) allocID() int64 {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	id := s.db.nextID
	s.db.nextID++
	return id
}
