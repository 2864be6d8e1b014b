package store

import (
	"context"
	"errors"
	"strconv"
	"sync"

	"github.com/mjoubert/kraken-sync/internal/record"
)

var errSessionClosed = errors.New("session closed")

// MemoryStore keeps rows in process memory. It backs dry runs and tests.
type MemoryStore struct {
	mu     sync.Mutex
	tables map[record.Entity]map[string]record.Fields
	seq    int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tables: make(map[record.Entity]map[string]record.Fields)}
}

func (s *MemoryStore) Begin(ctx context.Context) (Session, error) {
	return &memSession{
		store:   s,
		overlay: make(map[record.Entity]map[string]record.Fields),
		rows:    make(map[record.Entity]map[string]*Row),
	}, nil
}

func (s *MemoryStore) Close() {}

// Snapshot returns a deep copy of every committed table, keyed by entity and
// natural key.
func (s *MemoryStore) Snapshot() map[record.Entity]map[string]record.Fields {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[record.Entity]map[string]record.Fields, len(s.tables))
	for entity, rows := range s.tables {
		t := make(map[string]record.Fields, len(rows))
		for key, fields := range rows {
			t[key] = fields.Clone()
		}
		out[entity] = t
	}
	return out
}

func (s *MemoryStore) lookup(entity record.Entity, key string) (record.Fields, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fields, ok := s.tables[entity][key]
	if !ok {
		return record.Fields{}, false
	}
	return fields.Clone(), true
}

func (s *MemoryStore) nextSeq() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	return s.seq
}

type pendingInsert struct {
	entity record.Entity
	key    string
	fields record.Fields
}

// memSession overlays uncommitted writes on the store. Flushed rows live in
// the overlay until Commit merges them into the store's tables.
type memSession struct {
	store   *MemoryStore
	overlay map[record.Entity]map[string]record.Fields
	rows    map[record.Entity]map[string]*Row
	pending []pendingInsert
	done    bool
}

func (s *memSession) Lookup(ctx context.Context, entity record.Entity, key string) (*Row, error) {
	if s.done {
		return nil, errSessionClosed
	}
	if row, ok := s.rows[entity][key]; ok {
		return row, nil
	}

	fields, ok := s.overlay[entity][key]
	if ok {
		fields = fields.Clone()
	} else if fields, ok = s.store.lookup(entity, key); !ok {
		return nil, nil
	}

	row := newRow(fields)
	if s.rows[entity] == nil {
		s.rows[entity] = make(map[string]*Row)
	}
	s.rows[entity][key] = row
	return row, nil
}

func (s *memSession) Insert(entity record.Entity, key string, fields record.Fields) {
	s.pending = append(s.pending, pendingInsert{entity: entity, key: key, fields: fields.Clone()})
}

// Flush applies staged inserts and dirty rows to the overlay. A key
// collision discards every staged insert and reports *DuplicateKeyError.
func (s *memSession) Flush(ctx context.Context) error {
	if s.done {
		return errSessionClosed
	}

	for _, p := range s.pending {
		key := p.key
		if key == "" {
			key = strconv.FormatInt(s.store.nextSeq(), 10)
		}
		if s.exists(p.entity, key) {
			s.pending = nil
			return &DuplicateKeyError{Entity: p.entity, Key: key}
		}
		if s.overlay[p.entity] == nil {
			s.overlay[p.entity] = make(map[string]record.Fields)
		}
		s.overlay[p.entity][key] = p.fields
	}
	s.pending = nil

	for entity, rows := range s.rows {
		for key, row := range rows {
			if !row.Dirty() {
				continue
			}
			if s.overlay[entity] == nil {
				s.overlay[entity] = make(map[string]record.Fields)
			}
			s.overlay[entity][key] = row.fields.Clone()
			row.clearDirty()
		}
	}
	return nil
}

func (s *memSession) exists(entity record.Entity, key string) bool {
	if _, ok := s.overlay[entity][key]; ok {
		return true
	}
	_, ok := s.store.lookup(entity, key)
	return ok
}

func (s *memSession) Commit(ctx context.Context) error {
	if s.done {
		return errSessionClosed
	}
	if err := s.Flush(ctx); err != nil {
		return err
	}
	s.done = true

	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	for entity, rows := range s.overlay {
		if s.store.tables[entity] == nil {
			s.store.tables[entity] = make(map[string]record.Fields, len(rows))
		}
		for key, fields := range rows {
			s.store.tables[entity][key] = fields
		}
	}
	return nil
}

func (s *memSession) Rollback(ctx context.Context) error {
	s.done = true
	s.pending = nil
	return nil
}
