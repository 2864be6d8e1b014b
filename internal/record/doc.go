// Package record defines the normalized record types the reconciliation
// pipeline operates on.
//
// Conventions:
//   - Natural keys: venue-assigned string identifiers (order id, trade id,
//     ledger id, pair name, asset code)
//   - Field values: comparable scalars (string, int64, float64, bool) or nil
//   - Monetary amounts: decimal strings, exactly as the venue reports them
package record
