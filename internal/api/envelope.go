package api

import (
	"errors"
	"fmt"
	"strings"

	json "github.com/goccy/go-json"
)

// invalidKeyMarker is the venue's error string for a rejected API key.
const invalidKeyMarker = "EAPI:Invalid key"

// MalformedEnvelopeError reports a response that is not a recognizable venue
// envelope: undecodable, or lacking both the "error" and "result" fields.
type MalformedEnvelopeError struct {
	Detail string
}

func (e *MalformedEnvelopeError) Error() string {
	return "malformed response envelope: " + e.Detail
}

// InvalidKeyError reports that the venue rejected the API key. Fatal for the
// run; retrying cannot help.
type InvalidKeyError struct {
	Errors []string
}

func (e *InvalidKeyError) Error() string {
	return "invalid api key: " + strings.Join(e.Errors, "; ")
}

// FetchResponseError carries the venue-reported error list.
type FetchResponseError struct {
	Errors []string
}

func (e *FetchResponseError) Error() string {
	return "venue reported errors: " + strings.Join(e.Errors, "; ")
}

// MissingFieldError reports a result that lacks an expected collection field
// entirely, which usually means a schema mismatch.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("result missing field %q", e.Field)
}

// ErrNoItems reports a valid response whose collection field is present but
// empty. Callers routinely treat this as "nothing to reconcile" rather than
// a failure, so it is a sentinel checked with errors.Is, never unwrapped
// into a run abort by the validator itself.
var ErrNoItems = errors.New("no items returned")

// CheckEnvelope validates the outer structure of a venue response and
// returns the raw result payload for decoding.
//
// Rules, in order: a body lacking both "error" and "result" is malformed; a
// non-empty error list is fatal (InvalidKeyError if the invalid-key marker
// is present, FetchResponseError otherwise); anything else is ok.
func CheckEnvelope(body []byte) (json.RawMessage, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, &MalformedEnvelopeError{Detail: err.Error()}
	}

	errRaw, hasErr := raw["error"]
	result, hasResult := raw["result"]
	if !hasErr && !hasResult {
		return nil, &MalformedEnvelopeError{Detail: `missing both "error" and "result" fields`}
	}

	if hasErr {
		var list []string
		if err := json.Unmarshal(errRaw, &list); err != nil {
			return nil, &MalformedEnvelopeError{Detail: "error field is not a string list: " + err.Error()}
		}
		if len(list) > 0 {
			for _, msg := range list {
				if strings.Contains(msg, invalidKeyMarker) {
					return nil, &InvalidKeyError{Errors: list}
				}
			}
			return nil, &FetchResponseError{Errors: list}
		}
	}

	return result, nil
}

// NonEmptyMap distinguishes a collection field that is absent (nil map,
// MissingFieldError) from one that is present but empty (ErrNoItems).
func NonEmptyMap[V any](field string, m map[string]V) error {
	if m == nil {
		return &MissingFieldError{Field: field}
	}
	if len(m) == 0 {
		return ErrNoItems
	}
	return nil
}

// NonEmptySlice is NonEmptyMap for list-shaped result fields. Decoding
// cannot distinguish an absent list from an empty one, so both report
// ErrNoItems.
func NonEmptySlice[V any](s []V) error {
	if len(s) == 0 {
		return ErrNoItems
	}
	return nil
}
