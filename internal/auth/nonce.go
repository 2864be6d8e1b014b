package auth

import (
	"sync"
	"time"
)

// NonceSource issues strictly increasing millisecond nonces. The venue
// rejects any private request whose nonce is not greater than the last one
// seen for the same key, so all requests sharing a secret must share one
// source.
type NonceSource struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

// NewNonceSource returns a nonce source backed by the wall clock.
func NewNonceSource() *NonceSource {
	return &NonceSource{now: time.Now}
}

// Next returns the next nonce. If the clock has not advanced past the last
// issued value, the last value plus one is returned instead.
func (n *NonceSource) Next() int64 {
	n.mu.Lock()
	defer n.mu.Unlock()

	v := n.now().UnixMilli()
	if v <= n.last {
		v = n.last + 1
	}
	n.last = v
	return v
}
