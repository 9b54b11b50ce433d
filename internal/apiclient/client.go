// Package apiclient talks to the clinical REST backend: it builds URLs from
// the configured base, attaches credentials and normalises failures into
// RejectionError or ErrUnreachable.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultTimeout = 15 * time.Second
	maxBodyBytes   = 8 << 20
)

// Credentials identify the signed-in user to the backend.
type Credentials struct {
	Token  string
	UserID string
}

// Options configures a single request.
type Options struct {
	Method      string
	Body        any
	Header      http.Header
	Credentials Credentials
}

// Response is a fully read 2xx response.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// Decode unmarshals the JSON body into v. Empty bodies leave v untouched.
func (r *Response) Decode(v any) error {
	if r == nil || len(bytes.TrimSpace(r.Body)) == 0 || v == nil {
		return nil
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("apiclient: decode response: %w", err)
	}
	return nil
}

// Observer receives one callback per completed call.
type Observer interface {
	ObserveBackendCall(method, endpoint string, status int, elapsed time.Duration)
}

// Config collects client settings.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	Observer   Observer
	HTTPClient *http.Client
}

// Client wraps interactions with the clinical API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	observer   Observer
}

// New constructs a client. BaseURL must be absolute, e.g.
// http://localhost:4000/api.
func New(cfg Config) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	parsed, err := url.Parse(base)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("apiclient: invalid base url %q", cfg.BaseURL)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{baseURL: base, httpClient: httpClient, observer: cfg.Observer}, nil
}

// BaseURL returns the normalised base.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Request sends a call to endpoint, relative to the base URL.
func (c *Client) Request(ctx context.Context, endpoint string, opts Options) (*Response, error) {
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}
	if !strings.HasPrefix(endpoint, "/") {
		endpoint = "/" + endpoint
	}

	var body io.Reader
	if opts.Body != nil {
		data, err := json.Marshal(opts.Body)
		if err != nil {
			return nil, fmt.Errorf("apiclient: encode body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("apiclient: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := strings.TrimSpace(opts.Credentials.Token); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if id := strings.TrimSpace(opts.Credentials.UserID); id != "" {
		req.Header.Set("User-ID", id)
	}
	for key, values := range opts.Header {
		req.Header.Del(key)
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.observe(method, endpoint, 0, start)
		return nil, fmt.Errorf("%w: %s %s: %w", ErrUnreachable, method, endpoint, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	c.observe(method, endpoint, resp.StatusCode, start)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s %s: %w", ErrUnreachable, method, endpoint, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newRejection(resp.StatusCode, data)
	}
	return &Response{Status: resp.StatusCode, Header: resp.Header, Body: data}, nil
}

// GetJSON performs a GET and decodes the body into out.
func (c *Client) GetJSON(ctx context.Context, endpoint string, creds Credentials, out any) error {
	resp, err := c.Request(ctx, endpoint, Options{Method: http.MethodGet, Credentials: creds})
	if err != nil {
		return err
	}
	return resp.Decode(out)
}

// PostJSON posts payload and decodes the reply into out, which may be nil.
func (c *Client) PostJSON(ctx context.Context, endpoint string, creds Credentials, payload, out any) error {
	resp, err := c.Request(ctx, endpoint, Options{Method: http.MethodPost, Body: payload, Credentials: creds})
	if err != nil {
		return err
	}
	return resp.Decode(out)
}

// PutJSON replaces a resource.
func (c *Client) PutJSON(ctx context.Context, endpoint string, creds Credentials, payload, out any) error {
	resp, err := c.Request(ctx, endpoint, Options{Method: http.MethodPut, Body: payload, Credentials: creds})
	if err != nil {
		return err
	}
	return resp.Decode(out)
}

// Delete removes a resource.
func (c *Client) Delete(ctx context.Context, endpoint string, creds Credentials) error {
	_, err := c.Request(ctx, endpoint, Options{Method: http.MethodDelete, Credentials: creds})
	return err
}

// Ping checks that the backend answers on /health.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.Request(ctx, "/health", Options{Method: http.MethodGet})
	return err
}

// Path joins a resource group with escaped segments.
func Path(group string, segments ...string) string {
	var b strings.Builder
	b.WriteString(strings.TrimRight(group, "/"))
	for _, s := range segments {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(s))
	}
	return b.String()
}

func (c *Client) observe(method, endpoint string, status int, start time.Time) {
	if c.observer == nil {
		return
	}
	c.observer.ObserveBackendCall(method, routeOf(endpoint), status, time.Since(start))
}

// routeOf trims query strings and collapses id-like segments so metrics keep
// a bounded label set.
func routeOf(endpoint string) string {
	if i := strings.IndexByte(endpoint, '?'); i >= 0 {
		endpoint = endpoint[:i]
	}
	parts := strings.Split(endpoint, "/")
	for i, p := range parts {
		if p != "" && strings.IndexFunc(p, func(r rune) bool { return r < '0' || r > '9' }) < 0 {
			parts[i] = ":id"
		}
	}
	return strings.Join(parts, "/")
}

// IsTimeout reports whether err is a deadline exceeded while calling the backend.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr interface{ Timeout() bool }
	return errors.As(err, &netErr) && netErr.Timeout()
}
