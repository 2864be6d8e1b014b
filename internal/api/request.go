package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/mjoubert/kraken-sync/internal/auth"
)

// TransportError reports a network-level failure reaching the venue
// (timeout, connection refused). Not retried here; the scheduler decides.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport failure during %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// APIError represents an HTTP-level error from the venue.
type APIError struct {
	StatusCode int
	Message    string
	Body       []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("kraken api error %d: %s", e.StatusCode, e.Message)
}

// private performs a signed POST to a private endpoint and decodes the
// validated result into result. Params must already carry the nonce as
// their first entry.
func (c *Client) private(ctx context.Context, path string, params *auth.Params, result any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	sig, err := auth.Sign(path, params, c.apiSecret)
	if err != nil {
		return fmt.Errorf("sign request %s: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, strings.NewReader(params.Encode()))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("API-Key", c.apiKey)
	req.Header.Set("API-Sign", sig)

	return c.do(req, path, result)
}

// public performs an unsigned GET to a public endpoint.
func (c *Client) public(ctx context.Context, path string, query url.Values, result any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	fullURL := c.baseURL + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	return c.do(req, path, result)
}

// do executes the request, validates the envelope and decodes the result.
func (c *Client) do(req *http.Request, path string, result any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Op: path, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Op: path, Err: err}
	}

	if resp.StatusCode >= 400 {
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    http.StatusText(resp.StatusCode),
			Body:       body,
		}
	}

	raw, err := CheckEnvelope(body)
	if err != nil {
		return err
	}

	if result != nil && raw != nil {
		if err := json.Unmarshal(raw, result); err != nil {
			return fmt.Errorf("unmarshal %s result: %w", path, err)
		}
	}

	c.logger.Debug("api call complete", "path", path, "bytes", len(body))
	return nil
}
