// Package client is the Go SDK for the Hireloop API. It owns the bearer
// credential, attaches it to every outgoing request, and clears it on any
// 401 so a stale session can never be replayed.
package client

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
)

// ErrUnauthorized is returned when the server rejects the credential. The
// stored session has already been cleared by the time callers see it.
var ErrUnauthorized = errors.New("client: unauthorized")

// APIError carries a non-2xx response body.
type APIError struct {
	Status  int
	Message string
}

// Error implements error.
func (e *APIError) Error() string {
	return fmt.Sprintf("client: api error %d: %s", e.Status, e.Message)
}

// Client talks to the Hireloop API.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	sessions       SessionStore
	logger         *slog.Logger
	onUnauthorized func()
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithSessionStore overrides the default in-memory session store.
func WithSessionStore(store SessionStore) Option {
	return func(c *Client) { c.sessions = store }
}

// WithLogger sets the logger used for advisory failures.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithUnauthorizedHook installs a callback invoked after a 401 clears the
// session. The dashboard uses it to route back to the login view.
func WithUnauthorizedHook(fn func()) Option {
	return func(c *Client) { c.onUnauthorized = fn }
}

// New constructs a Client for the given base URL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: http.DefaultClient,
		sessions:   NewMemoryStore(),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Session returns the stored session. A zero session means signed out.
func (c *Client) Session() Session {
	session, err := c.sessions.Load()
	if err != nil {
		c.logger.Warn("load session", slog.Any("error", err))
		return Session{}
	}
	return session
}

// Token returns the stored bearer credential, empty when signed out.
func (c *Client) Token() string {
	return c.Session().Token
}

// JSON performs an authenticated request with optional JSON body and
// response decoding. Any 401 clears the stored session, fires the
// unauthorized hook and returns ErrUnauthorized.
func (c *Client) JSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("client: encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("client: build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("client: %s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusUnauthorized {
		c.dropSession()
		return ErrUnauthorized
	}
	if resp.StatusCode >= 400 {
		var envelope struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&envelope)
		if envelope.Error == "" {
			envelope.Error = http.StatusText(resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Message: envelope.Error}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("client: decode response: %w", err)
	}
	return nil
}

func (c *Client) dropSession() {
	if err := c.sessions.Clear(); err != nil {
		c.logger.Warn("clear session", slog.Any("error", err))
	}
	if c.onUnauthorized != nil {
		c.onUnauthorized()
	}
}

// User is the account record returned by the auth endpoints.
type User struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
	IsActive bool   `json:"is_active"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	User        User   `json:"user"`
}

// Login exchanges credentials for a bearer token and persists the session.
func (c *Client) Login(ctx context.Context, login, password string) (User, error) {
	var resp loginResponse
	if err := c.JSON(ctx, http.MethodPost, "/api/auth/login", loginRequest{Username: login, Password: password}, &resp); err != nil {
		return User{}, err
	}
	session := Session{
		Token: resp.AccessToken,
		Profile: Profile{
			ID:       resp.User.ID,
			FullName: resp.User.FullName,
			Role:     resp.User.Role,
		},
	}
	if err := c.sessions.Save(session); err != nil {
		return User{}, fmt.Errorf("client: persist session: %w", err)
	}
	return resp.User, nil
}

// Logout revokes the server session and clears local state. Local state is
// cleared even when revocation fails.
func (c *Client) Logout(ctx context.Context) error {
	err := c.JSON(ctx, http.MethodPost, "/api/auth/logout", nil, nil)
	if clearErr := c.sessions.Clear(); clearErr != nil && err == nil {
		err = clearErr
	}
	if errors.Is(err, ErrUnauthorized) {
		// Already signed out server-side; local state is clean.
		return nil
	}
	return err
}

// Me fetches the current account.
func (c *Client) Me(ctx context.Context) (User, error) {
	var user User
	if err := c.JSON(ctx, http.MethodGet, "/api/auth/me", nil, &user); err != nil {
		return User{}, err
	}
	return user, nil
}

// Permissions is the capability map for the signed-in user.
type Permissions struct {
	Permissions map[string]bool `json:"permissions"`
	Role        string          `json:"role"`
}

// MyPermissions fetches the capability map the permission store caches.
func (c *Client) MyPermissions(ctx context.Context) (Permissions, error) {
	var perms Permissions
	if err := c.JSON(ctx, http.MethodGet, "/api/users/me/permissions", nil, &perms); err != nil {
		return Permissions{}, err
	}
	return perms, nil
}

// LiveURL is the websocket endpoint for the live update channel, with the
// current credential in the handshake query.
func (c *Client) LiveURL() (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("client: parse base url: %w", err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/ws"
	if token := c.Token(); token != "" {
		q := u.Query()
		q.Set("token", token)
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}
