package api

import (
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/mjoubert/kraken-sync/internal/auth"
)

// Client provides access to the Kraken REST API.
type Client struct {
	baseURL    string
	apiKey     string
	apiSecret  string
	httpClient *http.Client
	logger     *slog.Logger
	limiter    *rate.Limiter
	nonce      *auth.NonceSource
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// NewClient creates a new REST API client. Key and secret may be empty for
// clients that only call public endpoints.
func NewClient(baseURL, apiKey, apiSecret string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:   baseURL,
		apiKey:    apiKey,
		apiSecret: apiSecret,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: slog.Default(),
		// Private endpoint counter decays at ~0.33/s on the starter tier.
		limiter: rate.NewLimiter(rate.Limit(0.33), 1),
		nonce:   auth.NewNonceSource(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithRateLimit sets the request pacing limit.
func WithRateLimit(limit rate.Limit, burst int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(limit, burst)
	}
}

// WithNonceSource sets a shared nonce source. Clients sharing one API secret
// must share one source.
func WithNonceSource(n *auth.NonceSource) ClientOption {
	return func(c *Client) {
		c.nonce = n
	}
}
