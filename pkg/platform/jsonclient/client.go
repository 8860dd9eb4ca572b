// Package jsonclient is the JSON-over-HTTP transport shared by the external
// collaborator clients (presence, social proof, feature flags).
package jsonclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	dErrors "nilgate/pkg/domain-errors"
	"nilgate/pkg/platform/sentinel"
)

const maxResponseBytes = 1 << 20

// StatusError is a non-2xx response. Detail is the collaborator's
// human-readable message when it sent one.
type StatusError struct {
	StatusCode int
	Detail     string
}

func (e *StatusError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("http %d", e.StatusCode)
	}
	return fmt.Sprintf("http %d: %s", e.StatusCode, e.Detail)
}

// Client issues JSON requests against one base URL.
type Client struct {
	baseURL string
	http    *http.Client
	headers http.Header
}

type Option func(*Client)

// WithHTTPClient replaces the default client, e.g. with httptest's.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithHeader adds a header to every request.
func WithHeader(key, value string) Option {
	return func(c *Client) {
		c.headers.Set(key, value)
	}
}

// New returns a client whose every call is bounded by timeout.
func New(baseURL string, timeout time.Duration, opts ...Option) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		return nil, errors.New("base url is required")
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	c := &Client{
		baseURL: base,
		http:    &http.Client{Timeout: timeout},
		headers: make(http.Header),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Do sends in as the JSON body (nil for none) and decodes a 2xx body into out
// (nil to discard). Transport failures wrap sentinel.ErrUnavailable and keep
// context.DeadlineExceeded visible to errors.Is.
func (c *Client) Do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, vs := range c.headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if isTimeout(err) {
			return fmt.Errorf("%s %s: %w: %w", method, path, sentinel.ErrUnavailable, context.DeadlineExceeded)
		}
		return fmt.Errorf("%s %s: %w: %v", method, path, sentinel.ErrUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("%s %s: read body: %w: %v", method, path, sentinel.ErrUnavailable, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{StatusCode: resp.StatusCode, Detail: detailOf(raw)}
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", method, path, err)
	}
	return nil
}

// detailOf extracts a message from common error envelopes, else the raw body.
func detailOf(raw []byte) string {
	var envelope struct {
		Detail      string `json:"detail"`
		Error       string `json:"error"`
		Description string `json:"error_description"`
		Message     string `json:"message"`
	}
	if json.Unmarshal(raw, &envelope) == nil {
		for _, s := range []string{envelope.Detail, envelope.Description, envelope.Message, envelope.Error} {
			if s != "" {
				return s
			}
		}
	}
	s := strings.TrimSpace(string(raw))
	if len(s) > 256 {
		s = s[:256]
	}
	return s
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var te interface{ Timeout() bool }
	return errors.As(err, &te) && te.Timeout()
}

// AsStatus unwraps a *StatusError.
func AsStatus(err error) (*StatusError, bool) {
	var se *StatusError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// ToDomain translates a Do error into the domain taxonomy: 404 means the
// collaborator does not know the referenced resource (configuration), other
// 4xx carry its refusal detail, and 5xx or transport failures are transient.
func ToDomain(err error, what string) error {
	if err == nil {
		return nil
	}
	if se, ok := AsStatus(err); ok {
		msg := what + " failed"
		if se.Detail != "" {
			msg = se.Detail
		}
		switch {
		case se.StatusCode == http.StatusNotFound:
			return dErrors.Wrap(err, dErrors.CodeConfiguration, msg)
		case se.StatusCode == http.StatusConflict:
			return dErrors.Wrap(err, dErrors.CodeConflict, msg)
		case se.StatusCode >= 400 && se.StatusCode < 500:
			return dErrors.Wrap(err, dErrors.CodeVerificationFailed, msg)
		}
		return dErrors.Wrap(err, dErrors.CodeUnavailable, what+" service unavailable")
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return dErrors.Wrap(err, dErrors.CodeTimeout, what+" timed out")
	}
	if errors.Is(err, sentinel.ErrUnavailable) {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, what+" service unavailable")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, what+" failed")
}
