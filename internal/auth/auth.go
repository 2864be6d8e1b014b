// Package auth implements Kraken private-endpoint request signing.
package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"fmt"
	"net/url"
	"strconv"
)

// Params is an insertion-ordered request parameter set. The venue signature
// covers the form-encoded body byte-for-byte, so encoding order must match
// the order parameters were added in.
type Params struct {
	keys   []string
	values map[string]string
}

// NewParams returns an empty parameter set.
func NewParams() *Params {
	return &Params{values: make(map[string]string)}
}

// Set adds or replaces a parameter. Accepted value types: string, int, int64.
func (p *Params) Set(key string, value any) {
	var s string
	switch v := value.(type) {
	case string:
		s = v
	case int:
		s = strconv.Itoa(v)
	case int64:
		s = strconv.FormatInt(v, 10)
	default:
		s = fmt.Sprint(v)
	}
	if _, ok := p.values[key]; !ok {
		p.keys = append(p.keys, key)
	}
	p.values[key] = s
}

// Get returns the parameter value, or "" if absent.
func (p *Params) Get(key string) string {
	return p.values[key]
}

// Len returns the number of parameters.
func (p *Params) Len() int {
	return len(p.keys)
}

// Encode form-encodes the parameters in insertion order.
func (p *Params) Encode() string {
	var buf []byte
	for i, k := range p.keys {
		if i > 0 {
			buf = append(buf, '&')
		}
		buf = append(buf, url.QueryEscape(k)...)
		buf = append(buf, '=')
		buf = append(buf, url.QueryEscape(p.values[k])...)
	}
	return string(buf)
}

// Sign produces the API-Sign header value for a private endpoint request.
//
// The message is path || SHA-256(nonce || form-encoded params), signed with
// HMAC-SHA512 keyed by the base64-decoded secret, and the result is base64
// encoded. The venue rejects any request whose signature does not match this
// construction exactly.
//
// Sign is deterministic: identical inputs always yield an identical
// signature. It does not enforce nonce monotonicity; see NonceSource.
func Sign(path string, params *Params, secret string) (string, error) {
	key, err := base64.StdEncoding.DecodeString(secret)
	if err != nil {
		return "", fmt.Errorf("decode api secret: %w", err)
	}

	digest := sha256.Sum256([]byte(params.Get("nonce") + params.Encode()))

	mac := hmac.New(sha512.New, key)
	mac.Write([]byte(path))
	mac.Write(digest[:])

	return base64.StdEncoding.EncodeToString(mac.Sum(nil)), nil
}
