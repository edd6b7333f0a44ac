package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const maxErrorBody = 64 << 10

// StatusError is a non-2xx answer. Body holds at most 64KiB of the response so
// callers can decode an error envelope.
type StatusError struct {
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, bytes.TrimSpace(e.Body))
}

// RequestError means no complete response was received: dial failure,
// timeout, a cancelled context or a body that stopped short.
type RequestError struct {
	Err error
}

func (e *RequestError) Error() string { return "request failed: " + e.Err.Error() }
func (e *RequestError) Unwrap() error { return e.Err }

// DecodeError is a 2xx answer whose body is not the expected JSON.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string { return "decode json: " + e.Err.Error() }
func (e *DecodeError) Unwrap() error { return e.Err }

type ClientOption func(*Client)

type RequestOptions struct {
	Method  string
	URL     string
	Headers map[string]string
	// Body is sent as is when it is []byte or an io.Reader, otherwise as JSON.
	Body interface{}
}

// Client is a small JSON client over net/http.
type Client struct {
	hc        *http.Client
	timeout   time.Duration
	userAgent string
}

func NewClient(opts ...ClientOption) *Client {
	c := &Client{timeout: 30 * time.Second, userAgent: "niftydash"}
	for _, opt := range opts {
		opt(c)
	}
	if c.hc == nil {
		c.hc = &http.Client{Timeout: c.timeout}
	}
	return c
}

// SendRequest returns the raw response; the caller closes its body.
func (c *Client) SendRequest(ctx context.Context, opts *RequestOptions) (*http.Response, error) {
	body, isJSON, err := encodeBody(opts.Body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, opts.Method, opts.URL, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if isJSON {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range opts.Headers {
		req.Header.Set(k, v)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, &RequestError{Err: err}
	}
	return resp, nil
}

// SendAndParse decodes a 2xx JSON body into dest, which may be nil. Any other
// status becomes a *StatusError.
func (c *Client) SendAndParse(ctx context.Context, opts *RequestOptions, dest interface{}) error {
	resp, err := c.SendRequest(ctx, opts)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{StatusCode: resp.StatusCode, Body: b}
	}
	if dest == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	// a body cut short by a timeout or reset is a transport failure, not a bad payload
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return &RequestError{Err: fmt.Errorf("read body: %w", err)}
	}
	if err := json.Unmarshal(b, dest); err != nil {
		return &DecodeError{Err: err}
	}
	return nil
}

func encodeBody(body interface{}) (io.Reader, bool, error) {
	switch v := body.(type) {
	case nil:
		return nil, false, nil
	case []byte:
		return bytes.NewReader(v), false, nil
	case io.Reader:
		return v, false, nil
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, false, fmt.Errorf("marshal request body: %w", err)
		}
		return bytes.NewReader(b), true, nil
	}
}

// WithHTTPClient replaces the underlying client; its own Timeout applies.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.hc = hc }
}

func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) { c.timeout = timeout }
}

func WithUserAgent(ua string) ClientOption {
	return func(c *Client) { c.userAgent = ua }
}
