// Package store provides the durable row store the reconciliation engine
// writes through. A Store opens Sessions; a Session is one unit of work with
// staged inserts, dirty-field tracking on looked-up rows, and explicit
// Flush/Commit/Rollback.
//
// Two implementations exist: a PostgreSQL store backed by pgx, and an
// in-memory store used for dry runs and tests. Both give the same
// semantics: flushed rows are visible to later lookups in the same session,
// and nothing is durable until Commit.
package store
