// Package api provides the Kraken REST client and response validation.
//
// The client:
//   - Signs private endpoint requests (API-Key / API-Sign headers)
//   - Paces calls with a shared rate limiter
//   - Validates the response envelope before decoding the result
//
// Transport failures, venue-reported errors and malformed envelopes surface
// as distinct typed errors; retry policy belongs to the caller.
package api
