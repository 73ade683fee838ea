package widgets

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bnema/aula-cli/internal/domain"
	"github.com/hashicorp/go-hclog"
)

const maxResponseBytes = 8 << 20

const (
	aulaOrigin  = "https://www.aula.dk"
	aulaReferer = "https://www.aula.dk/"
)

// Client is the plain HTTP client vendor adapters share. Vendor APIs are
// authorised by the widget token alone, so no cookies are kept.
type Client struct {
	HTTPClient     *http.Client
	RequestTimeout time.Duration
	Logger         hclog.Logger
}

type StatusError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("%s: status %d: %s", e.URL, e.StatusCode, e.Body)
}

func (e *StatusError) Unwrap() error { return domain.ErrUnexpectedStatus }

// GetJSON fetches rawURL and decodes the body into out.
func (c Client) GetJSON(ctx context.Context, rawURL string, headers http.Header, out any) error {
	return c.do(ctx, http.MethodGet, rawURL, headers, nil, out)
}

// PostJSON encodes payload as the request body and decodes the reply into out.
func (c Client) PostJSON(ctx context.Context, rawURL string, headers http.Header, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	if headers == nil {
		headers = http.Header{}
	}
	headers.Set("Content-Type", "application/json")
	return c.do(ctx, http.MethodPost, rawURL, headers, body, out)
}

func (c Client) do(ctx context.Context, method string, rawURL string, headers http.Header, body []byte, out any) error {
	requestCtx, cancel := c.requestContext(ctx)
	defer cancel()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(requestCtx, method, rawURL, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Origin", aulaOrigin)
	req.Header.Set("Referer", aulaReferer)
	for key, values := range headers {
		req.Header.Del(key)
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	c.logger().Trace("vendor request", "method", method, "url", rawURL)
	resp, err := c.httpClient().Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, rawURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("read %s: %w", rawURL, err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return &StatusError{URL: rawURL, StatusCode: resp.StatusCode, Body: truncate(string(data), 200)}
	}

	if err := json.Unmarshal(Lenient(data), out); err != nil {
		return fmt.Errorf("decode %s: %w: %v", rawURL, domain.ErrMalformedResponse, err)
	}
	return nil
}

func (c Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

func (c Client) logger() hclog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return hclog.NewNullLogger()
}

func (c Client) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}

	requestTimeout := c.RequestTimeout
	if requestTimeout <= 0 {
		requestTimeout = 30 * time.Second
	}

	return context.WithTimeout(ctx, requestTimeout)
}

// Lenient escapes raw control characters inside JSON strings. Some vendors
// emit literal newlines in free text.
func Lenient(data []byte) []byte {
	var out []byte
	inString, escaped := false, false
	for i, b := range data {
		switch {
		case escaped:
			escaped = false
		case inString && b == '\\':
			escaped = true
		case b == '"':
			inString = !inString
		case inString && b < 0x20:
			if out == nil {
				out = append(make([]byte, 0, len(data)+16), data[:i]...)
			}
			out = append(out, []byte(fmt.Sprintf(`\u%04x`, b))...)
			continue
		}
		if out != nil {
			out = append(out, b)
		}
	}
	if out == nil {
		return data
	}
	return out
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
