package store

import (
	"context"
	"fmt"

	"github.com/mjoubert/kraken-sync/internal/record"
)

// DuplicateKeyError reports an insert that collided with an existing row.
// The session discards the staged insert and stays usable.
type DuplicateKeyError struct {
	Entity record.Entity
	Key    string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate key: %s %q already exists", e.Entity, e.Key)
}

// Store opens reconciliation sessions.
type Store interface {
	// Begin starts a new session. Sessions are not safe for concurrent use.
	Begin(ctx context.Context) (Session, error)

	// Close releases the store's resources.
	Close()
}

// Session is one unit of work against the store.
type Session interface {
	// Lookup returns a handle on the row with the given natural key, or
	// (nil, nil) when no such row exists. Rows flushed earlier in the same
	// session are visible. Repeated lookups return the same handle.
	Lookup(ctx context.Context, entity record.Entity, key string) (*Row, error)

	// Insert stages a new row. An empty key requests a surrogate key,
	// assigned at flush. The row is not visible to Lookup until flushed.
	Insert(entity record.Entity, key string, fields record.Fields)

	// Flush writes staged inserts and dirty fields of looked-up rows. A key
	// collision surfaces as *DuplicateKeyError; the colliding insert is
	// discarded and the session remains usable.
	Flush(ctx context.Context) error

	// Commit makes all flushed writes durable and ends the session.
	Commit(ctx context.Context) error

	// Rollback discards all writes and ends the session. Safe to call after
	// Commit.
	Rollback(ctx context.Context) error
}

// Row is a handle on a stored row. Writes are tracked per field so a flush
// only touches columns that actually changed.
type Row struct {
	fields record.Fields
	dirty  []string
}

func newRow(fields record.Fields) *Row {
	return &Row{fields: fields.Clone()}
}

// Get returns the current value of a field, nil if absent.
func (r *Row) Get(name string) record.Value {
	return r.fields.Get(name)
}

// Set writes a field. Writing the value the field already holds is a no-op.
func (r *Row) Set(name string, v record.Value) {
	if r.fields.Has(name) && r.fields.Get(name) == v {
		return
	}
	r.fields.Set(name, v)
	for _, d := range r.dirty {
		if d == name {
			return
		}
	}
	r.dirty = append(r.dirty, name)
}

// Dirty reports whether the row has unflushed field writes.
func (r *Row) Dirty() bool {
	return len(r.dirty) > 0
}

// Fields returns a copy of the row's current fields.
func (r *Row) Fields() record.Fields {
	return r.fields.Clone()
}

func (r *Row) clearDirty() {
	r.dirty = r.dirty[:0]
}
