// Package portal is the client for the club portal HTTP API.
package portal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"vereinsportal/internal/models"
	"vereinsportal/internal/session"
)

// Client talks to the portal API. All requests go through the auth transport,
// which attaches the session's bearer token whenever one exists.
type Client struct {
	baseURL  string
	http     *http.Client
	sessions *session.Store
	logger   *slog.Logger
}

// NewClient creates a portal client for the given base URL (including the
// /api prefix).
func NewClient(logger *slog.Logger, baseURL string, sessions *session.Store, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http: &http.Client{
			Timeout: timeout,
			Transport: &authTransport{
				sessions:  sessions,
				transport: http.DefaultTransport,
			},
		},
		sessions: sessions,
		logger:   logger,
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login exchanges credentials for a session. It does not touch the session
// store; storing the returned session is the caller's decision.
func (c *Client) Login(ctx context.Context, username, password string) (models.Session, error) {
	var sess models.Session
	err := c.do(ctx, http.MethodPost, "/login", loginRequest{Username: username, Password: password}, &sess)
	if err != nil {
		return models.Session{}, err
	}
	c.logger.Info("Logged in to portal", "username", sess.Username, "role", sess.Role)
	return sess, nil
}

// ListTermine fetches all club events. Works without a session.
func (c *Client) ListTermine(ctx context.Context) ([]models.Termin, error) {
	var termine []models.Termin
	if err := c.do(ctx, http.MethodGet, "/termine", nil, &termine); err != nil {
		return nil, err
	}
	return termine, nil
}

// ListMyTermine fetches the events the current session's identity is
// registered for. Requires a session.
func (c *Client) ListMyTermine(ctx context.Context) ([]models.Termin, error) {
	if _, ok := c.sessions.Current(); !ok {
		return nil, ErrNoSession
	}
	var termine []models.Termin
	if err := c.do(ctx, http.MethodGet, "/profile/termine", nil, &termine); err != nil {
		return nil, err
	}
	return termine, nil
}

// Profile fetches the current user's profile. Requires a session.
func (c *Client) Profile(ctx context.Context) (models.UserAccount, error) {
	if _, ok := c.sessions.Current(); !ok {
		return models.UserAccount{}, ErrNoSession
	}
	var account models.UserAccount
	if err := c.do(ctx, http.MethodGet, "/profile", nil, &account); err != nil {
		return models.UserAccount{}, err
	}
	return account, nil
}

// JoinTermin registers the current identity for the given event.
func (c *Client) JoinTermin(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/termine/%d/teilnehmen", id), nil, nil)
}

// LeaveTermin removes the current identity's registration for the given event.
func (c *Client) LeaveTermin(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/termine/%d/teilnehmen", id), nil, nil)
}

// CreateTermin creates a new event. Admin only.
func (c *Client) CreateTermin(ctx context.Context, t models.Termin) (models.Termin, error) {
	var created models.Termin
	if err := c.do(ctx, http.MethodPost, "/termine", t, &created); err != nil {
		return models.Termin{}, err
	}
	return created, nil
}

// UpdateTermin replaces an existing event. Admin only.
func (c *Client) UpdateTermin(ctx context.Context, t models.Termin) error {
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/termine/%d", t.ID), t, nil)
}

// DeleteTermin removes an event. Admin only.
func (c *Client) DeleteTermin(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/termine/%d", id), nil, nil)
}

// ListUsers fetches all user accounts. Admin only.
func (c *Client) ListUsers(ctx context.Context) ([]models.UserAccount, error) {
	var users []models.UserAccount
	if err := c.do(ctx, http.MethodGet, "/users", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// CreateUser creates a new account. Admin only.
func (c *Client) CreateUser(ctx context.Context, u models.UserAccount) error {
	return c.do(ctx, http.MethodPost, "/users", u, nil)
}

// UpdateUser updates an existing account, keyed by username. Admin only.
func (c *Client) UpdateUser(ctx context.Context, u models.UserAccount) error {
	return c.do(ctx, http.MethodPut, "/users/"+u.Username, u, nil)
}

// DeleteUser removes an account. Admin only.
func (c *Client) DeleteUser(ctx context.Context, username string) error {
	return c.do(ctx, http.MethodDelete, "/users/"+username, nil, nil)
}

// do issues one JSON request and decodes the response into out, if non-nil.
// Non-2xx statuses are mapped onto the package's sentinel errors.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug("Calling portal API", "method", method, "path", path)
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	if err := statusError(resp.StatusCode); err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", path, err)
	}
	return nil
}

// statusError maps an HTTP status onto a sentinel error, or nil for success.
func statusError(status int) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusUnauthorized:
		return ErrUnauthorized
	case status == http.StatusForbidden:
		return ErrForbidden
	case status == http.StatusNotFound:
		return ErrNotFound
	case status >= 500:
		return fmt.Errorf("%w (status %d)", ErrServer, status)
	default:
		return fmt.Errorf("unexpected status %d", status)
	}
}
