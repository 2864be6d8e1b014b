// Package normalize converts validated venue payloads into normalized
// records for the reconciliation engine.
//
// Every entity has one explicit field-by-field mapper, so a missing or
// renamed column is a compile error rather than a silent no-op. Composite
// payloads are decomposed here: an order splits into a header record and a
// description child, positions split into two disjoint key spaces.
//
// Normalization is all-or-nothing per category: one malformed entry aborts
// the whole call with a StructuralError, partial batches are never returned.
package normalize
