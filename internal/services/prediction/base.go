package prediction

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	xhttp "NiftyDash/pkg/http"
)

// HTTPServiceBase centralizes client construction and JSON requests against
// the prediction service base URL (".../api").
type HTTPServiceBase struct {
	baseURL string
	client  *xhttp.Client
}

// NewHTTPServiceBase builds an HTTP client with timeout and base URL.
func NewHTTPServiceBase(baseURL string, timeout time.Duration, opts ...xhttp.ClientOption) *HTTPServiceBase {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	opts = append([]xhttp.ClientOption{xhttp.WithTimeout(timeout), xhttp.WithUserAgent("niftydash-gateway")}, opts...)
	return &HTTPServiceBase{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  xhttp.NewClient(opts...),
	}
}

// GetJSON issues GET baseURL+path and decodes JSON into dest.
func (b *HTTPServiceBase) GetJSON(ctx context.Context, path string, dest interface{}) error {
	return b.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:  http.MethodGet,
		URL:     b.baseURL + path,
		Headers: map[string]string{"Accept": "application/json"},
	}, dest)
}

// PostJSON posts payload (nil sends an empty JSON object) and decodes JSON into dest.
func (b *HTTPServiceBase) PostJSON(ctx context.Context, path string, payload interface{}, dest interface{}) error {
	if payload == nil {
		payload = struct{}{}
	}
	return b.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:  http.MethodPost,
		URL:     b.baseURL + path,
		Headers: map[string]string{"Accept": "application/json"},
		Body:    payload,
	}, dest)
}

// Ping reports whether GET baseURL+path answers with a 2xx status. The body is ignored.
func (b *HTTPServiceBase) Ping(ctx context.Context, path string) error {
	resp, err := b.client.SendRequest(ctx, &xhttp.RequestOptions{
		Method: http.MethodGet,
		URL:    b.baseURL + path,
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("health status %d", resp.StatusCode)
	}
	return nil
}
