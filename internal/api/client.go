package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

const (
	defaultTimeout  = 10 * time.Second
	maxBodyBytes    = 8 << 20
	requestIDHeader = "X-Request-ID"
)

// Options configures a Client.
type Options struct {
	// BaseURL is the backend root, e.g. "https://api.example.com/api".
	BaseURL string
	// Timeout bounds each request when HTTPClient is nil. Zero means 10s.
	Timeout time.Duration
	// HTTPClient overrides the underlying client. Its default headers are
	// never mutated.
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client performs JSON requests against the commerce backend. It is safe for
// concurrent use and holds no per-operator state: the credential and request
// id travel in the request context.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a Client. BaseURL must be an absolute http(s) URL.
func NewClient(opts Options) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	u, err := url.Parse(base)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("invalid backend base url %q", opts.BaseURL)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:    base,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// BaseURL returns the normalized backend root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

type credentialKey struct{}
type requestIDKey struct{}

// WithCredential returns a context carrying the operator's bearer token.
// Requests made with the returned context are authenticated with it.
func WithCredential(ctx context.Context, tok *oauth2.Token) context.Context {
	return context.WithValue(ctx, credentialKey{}, tok)
}

// CredentialFrom extracts the bearer token stored by WithCredential.
func CredentialFrom(ctx context.Context) (*oauth2.Token, bool) {
	tok, ok := ctx.Value(credentialKey{}).(*oauth2.Token)
	return tok, ok && tok != nil && tok.AccessToken != ""
}

// WithRequestID returns a context whose backend requests carry the given
// X-Request-ID header.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// do sends one request and returns the unwrapped "data" payload of a 2xx
// response. Non-2xx responses and transport failures come back as *Error.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any) (json.RawMessage, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok, ok := CredentialFrom(ctx); ok {
		tok.SetAuthHeader(req)
	}
	if id, ok := ctx.Value(requestIDKey{}).(string); ok && id != "" {
		req.Header.Set(requestIDHeader, id)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.DebugContext(ctx, "backend request failed",
			slog.String("method", method),
			slog.String("path", path),
			slog.Any("error", err),
		)
		return nil, &Error{Method: method, Path: path, Transport: true, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &Error{Method: method, Path: path, Status: resp.StatusCode, Transport: true, Err: err}
	}

	c.logger.DebugContext(ctx, "backend request",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", resp.StatusCode),
		slog.Duration("latency", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, intercept(method, path, resp.StatusCode, raw)
	}

	return unwrapData(raw), nil
}

// unwrapData returns the value under the top-level "data" key, or the whole
// body when the key is absent.
func unwrapData(raw []byte) json.RawMessage {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return trimmed
	}
	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &wrapper); err != nil {
		return trimmed
	}
	if data, ok := wrapper["data"]; ok {
		return data
	}
	return trimmed
}

// decode unmarshals a payload, treating an empty or null payload as an error.
func decode[T any](payload json.RawMessage, what string) (*T, error) {
	if len(payload) == 0 || string(payload) == "null" {
		return nil, fmt.Errorf("decode %s: %w", what, errEmptyPayload)
	}
	var v T
	if err := json.Unmarshal(payload, &v); err != nil {
		return nil, fmt.Errorf("decode %s: %w", what, err)
	}
	return &v, nil
}

var errEmptyPayload = errors.New("empty payload")
