// Package reconcile applies normalized record batches to the store: lookups
// by natural key, per-field diffs, and insert-or-update with per-record
// failure isolation.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mjoubert/kraken-sync/internal/record"
	"github.com/mjoubert/kraken-sync/internal/report"
	"github.com/mjoubert/kraken-sync/internal/store"
)

// duplicateCategory collects key-collision warnings across all categories.
const duplicateCategory = "duplicate_errors"

// missingRefCategory collects records whose referenced row does not exist.
const missingRefCategory = "missing_reference"

// Result counts the per-record outcomes of one batch.
type Result struct {
	Created   int
	Updated   int
	Unchanged int
	Failed    int
}

func (r Result) total() int {
	return r.Created + r.Updated + r.Unchanged + r.Failed
}

type Engine struct {
	logger *slog.Logger
}

func New(logger *slog.Logger) *Engine {
	return &Engine{logger: logger}
}

// Reconcile applies a batch of records within the given session. Each record
// is flushed individually: a key collision fails only that record, recorded
// as a warning, and the batch continues. A missing referenced row fails the
// record with an error. Any other store failure aborts the batch.
//
// The caller owns the session and decides whether to commit.
func (e *Engine) Reconcile(ctx context.Context, sess store.Session, categoryName string, recs []record.Record, rep *report.Recorder) (Result, error) {
	var res Result
	for i := range recs {
		outcome, err := e.reconcileOne(ctx, sess, &recs[i], rep)
		if err != nil {
			rep.Error(categoryName, err.Error())
			return res, fmt.Errorf("reconcile %s: %w", categoryName, err)
		}
		switch outcome {
		case record.Created:
			res.Created++
		case record.Updated:
			res.Updated++
		case record.Unchanged:
			res.Unchanged++
		case record.Failed:
			res.Failed++
		}
	}

	e.logger.Info("batch reconciled",
		"category", categoryName,
		"records", res.total(),
		"created", res.Created,
		"updated", res.Updated,
		"unchanged", res.Unchanged,
		"failed", res.Failed,
	)
	return res, nil
}

// reconcileOne applies a single record and its dependent child. The child is
// flushed before the parent is staged so the parent's reference resolves.
func (e *Engine) reconcileOne(ctx context.Context, sess store.Session, rec *record.Record, rep *report.Recorder) (record.Outcome, error) {
	if rec.Requires != nil {
		row, err := sess.Lookup(ctx, rec.Requires.Entity, rec.Requires.Key)
		if err != nil {
			return record.Failed, err
		}
		if row == nil {
			rep.Error(missingRefCategory, fmt.Sprintf(
				"%s %q requires %s %q, which does not exist",
				rec.Entity, rec.Key, rec.Requires.Entity, rec.Requires.Key))
			return record.Failed, nil
		}
	}

	outcome := record.Unchanged
	if rec.Child != nil {
		childOutcome, failed, err := e.applyAndFlush(ctx, sess, rec.Child, rep)
		if err != nil || failed {
			return record.Failed, err
		}
		outcome = maxOutcome(outcome, childOutcome)
	}

	recOutcome, failed, err := e.applyAndFlush(ctx, sess, rec, rep)
	if err != nil || failed {
		return record.Failed, err
	}
	return maxOutcome(outcome, recOutcome), nil
}

// applyAndFlush stages one row and flushes it. A duplicate key discards the
// row, records a warning and reports failed=true; the session stays usable.
func (e *Engine) applyAndFlush(ctx context.Context, sess store.Session, rec *record.Record, rep *report.Recorder) (outcome record.Outcome, failed bool, err error) {
	outcome, err = apply(ctx, sess, rec)
	if err != nil {
		return record.Failed, true, err
	}

	if err := sess.Flush(ctx); err != nil {
		var dup *store.DuplicateKeyError
		if errors.As(err, &dup) {
			rep.Warning(duplicateCategory, fmt.Sprintf(
				"%s %q already exists, record skipped", dup.Entity, dup.Key))
			e.logger.Warn("duplicate key", "entity", string(dup.Entity), "key", dup.Key)
			return record.Failed, true, nil
		}
		return record.Failed, true, err
	}
	return outcome, false, nil
}

// apply stages a single row: insert when absent, field-level update when
// present. Records without a natural key are always appended.
func apply(ctx context.Context, sess store.Session, rec *record.Record) (record.Outcome, error) {
	if rec.Key == "" {
		sess.Insert(rec.Entity, "", rec.Fields)
		return record.Created, nil
	}

	row, err := sess.Lookup(ctx, rec.Entity, rec.Key)
	if err != nil {
		return record.Failed, err
	}
	if row == nil {
		sess.Insert(rec.Entity, rec.Key, rec.Fields)
		return record.Created, nil
	}

	for _, name := range rec.Fields.Names() {
		row.Set(name, rec.Fields.Get(name))
	}
	if row.Dirty() {
		return record.Updated, nil
	}
	return record.Unchanged, nil
}

func maxOutcome(a, b record.Outcome) record.Outcome {
	if b > a {
		return b
	}
	return a
}
