// Package api is the HTTP client for the remote lead API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"leaddesk/internal/logging"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// Config configures a Client.
type Config struct {
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64 // <= 0 disables limiting
	Burst             int
	UserAgent         string
}

// TokenSource provides the stored bearer token, "" when none.
type TokenSource interface {
	Token() (string, error)
}

// Client talks to the lead API. It is safe for concurrent use.
//
// Requests are credentialed: session cookies live in a persistent jar,
// and the stored bearer token is attached when present. Nothing is
// retried.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	transport  *http.Transport
	jar        *persistentJar
	limiter    *rate.Limiter
	tokens     TokenSource
}

// NewClient creates a client. cookies and tokens may be nil.
func NewClient(cfg Config, cookies CookieStore, tokens TokenSource) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "leaddesk"
	}

	limit := rate.Inf
	burst := cfg.Burst
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	if burst < 1 {
		burst = 1
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	jar := newPersistentJar(cookies)

	return &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		userAgent: cfg.UserAgent,
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: transport,
			Jar:       jar,
		},
		transport: transport,
		jar:       jar,
		limiter:   rate.NewLimiter(limit, burst),
		tokens:    tokens,
	}
}

// BaseURL returns the API root.
func (c *Client) BaseURL() string { return c.baseURL }

// Close releases idle connections.
func (c *Client) Close() {
	c.transport.CloseIdleConnections()
}

// ClearCookies drops the session cookies in memory and on disk.
func (c *Client) ClearCookies() error {
	return c.jar.Clear()
}

type bearerMode int

const (
	bearerStored bearerMode = iota // attach the stored token if any
	bearerNone                     // cookies only
	bearerExplicit
)

type request struct {
	method string
	path   string
	query  url.Values
	body   interface{}
	bearer bearerMode
	token  string
}

// do sends r and returns the raw body of a 2xx response.
func (c *Client) do(ctx context.Context, r request) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	u := c.baseURL + r.path
	if len(r.query) > 0 {
		u += "?" + r.query.Encode()
	}

	var body io.Reader
	if r.body != nil {
		data, err := json.Marshal(r.body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, u, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	if r.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := c.bearerFor(r); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	log := logging.WithRequestID(logging.CategoryAPI, requestID)
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Error("%s %s: %v", r.method, r.path, err)
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	log.WithField("status", resp.StatusCode).
		WithField("elapsed_ms", time.Since(start).Milliseconds()).
		Info("%s %s", r.method, r.path)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, parseError(resp.StatusCode, data, requestID)
	}
	return data, nil
}

func (c *Client) bearerFor(r request) string {
	switch r.bearer {
	case bearerNone:
		return ""
	case bearerExplicit:
		return r.token
	}
	if c.tokens == nil {
		return ""
	}
	tok, err := c.tokens.Token()
	if err != nil {
		logging.APIError("reading stored token: %v", err)
		return ""
	}
	return tok
}

func decode(data []byte, out interface{}) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return fmt.Errorf("empty response body")
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
