// Package gateway is the console's only path to the backend REST API. Every
// request goes through Client.Do, which attaches the bearer credential and
// turns a 401 from any endpoint into a forced logout.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/matheus3301/botadmin/internal/logging"
)

var (
	// ErrUnauthorized means the backend rejected the credential. The
	// credential has already been cleared and the forced-logout handler run
	// by the time a caller sees it.
	ErrUnauthorized = errors.New("gateway: unauthorized")

	// ErrInvalidCredentials is returned by Login for a rejected
	// username/password pair.
	ErrInvalidCredentials = errors.New("gateway: invalid username or password")
)

// StatusError is a non-2xx, non-401 response.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend returned %d %s", e.Code, http.StatusText(e.Code))
	}
	return fmt.Sprintf("backend returned %d: %s", e.Code, e.Message)
}

// Credentials is the session state the gateway reads and clears.
type Credentials interface {
	Credential() string
	ClearCredential()
}

// Client issues REST calls against the backend API base URL.
type Client struct {
	baseURL  string
	http     *http.Client
	creds    Credentials
	logger   *zap.Logger
	onLogout func()
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces http.DefaultClient.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = logging.OrNop(l) }
}

// WithForcedLogout sets the handler run after a 401 clears the credential.
// The TUI uses it to switch to the login page.
func WithForcedLogout(fn func()) Option {
	return func(c *Client) { c.onLogout = fn }
}

// New creates a client for baseURL, e.g. http://localhost:8888/api.
// creds may be nil for unauthenticated use.
func New(baseURL string, creds Credentials, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    http.DefaultClient,
		creds:   creds,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetForcedLogout replaces the forced-logout handler after construction.
func (c *Client) SetForcedLogout(fn func()) {
	c.onLogout = fn
}

// BaseURL returns the API base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do sends a JSON request to path and decodes a JSON response into out.
// in and out may be nil.
func (c *Client) Do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if token := c.credential(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusUnauthorized {
		c.logger.Warn("backend rejected credential",
			zap.String("method", method),
			zap.String("path", path),
			zap.String("request_id", req.Header.Get("X-Request-ID")),
		)
		c.ForceLogout()
		return ErrUnauthorized
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return readStatusError(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s %s: %w", method, path, err)
	}
	return nil
}

// ForceLogout clears the credential and runs the forced-logout handler.
func (c *Client) ForceLogout() {
	if c.creds != nil {
		c.creds.ClearCredential()
	}
	if c.onLogout != nil {
		c.onLogout()
	}
}

func (c *Client) credential() string {
	if c.creds == nil {
		return ""
	}
	return c.creds.Credential()
}

func readStatusError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	msg := strings.TrimSpace(string(data))

	var errResp struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(data, &errResp) == nil && errResp.Error != "" {
		msg = errResp.Error
	}
	return &StatusError{Code: resp.StatusCode, Message: msg}
}
