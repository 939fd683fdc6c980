// Package client implements the HTTP client the CLI uses to reach a running
// shopclockd API server.
package client

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

	"shopclock/internal/api"
	"shopclock/internal/services"
)

// ErrAPIUnavailable reports that no API server address is configured.
var ErrAPIUnavailable = errors.New("shopclock API unavailable")

// Client talks to the shopclockd HTTP API.
type Client struct {
	base  *url.URL
	token string
	http  *http.Client
}

// New builds a client for the given bind address ("host:port" or full URL).
// Returns nil when bind is empty.
func New(bind, token string) (*Client, error) {
	bind = strings.TrimSpace(bind)
	if bind == "" {
		return nil, nil
	}
	if !strings.Contains(bind, "://") {
		bind = "http://" + bind
	}
	base, err := url.Parse(bind)
	if err != nil {
		return nil, err
	}
	base.Path = ""
	base.RawQuery = ""
	base.Fragment = ""

	return &Client{
		base:  base,
		token: token,
		http:  &http.Client{Timeout: 15 * time.Second},
	}, nil
}

// Status fetches daemon runtime information.
func (c *Client) Status(ctx context.Context) (api.DaemonStatus, error) {
	var out api.DaemonStatus
	err := c.do(ctx, http.MethodGet, "/api/status", nil, nil, &out)
	return out, err
}

// Active returns the operator's active session, or nil.
func (c *Client) Active(ctx context.Context, owner string) (*api.Session, error) {
	var out api.SessionResponse
	query := url.Values{"owner": {owner}}
	if err := c.do(ctx, http.MethodGet, "/api/sessions/active", query, nil, &out); err != nil {
		return nil, err
	}
	return out.Session, nil
}

// ListOpen returns the operator's active and paused sessions.
func (c *Client) ListOpen(ctx context.Context, owner string) ([]api.Session, error) {
	var out api.SessionListResponse
	query := url.Values{"owner": {owner}}
	if err := c.do(ctx, http.MethodGet, "/api/sessions", query, nil, &out); err != nil {
		return nil, err
	}
	return out.Sessions, nil
}

// History returns the operator's finished sessions.
func (c *Client) History(ctx context.Context, owner string) ([]api.Session, error) {
	var out api.SessionListResponse
	query := url.Values{"owner": {owner}}
	if err := c.do(ctx, http.MethodGet, "/api/sessions/history", query, nil, &out); err != nil {
		return nil, err
	}
	return out.Sessions, nil
}

// Search returns sessions across operators matching the filter values.
func (c *Client) Search(ctx context.Context, owner, status, job, subject string) ([]api.Session, error) {
	var out api.SessionListResponse
	query := url.Values{}
	if owner != "" {
		query.Set("owner", owner)
	}
	if status != "" {
		query.Set("status", status)
	}
	if job != "" {
		query.Set("job", job)
	}
	if subject != "" {
		query.Set("subject", subject)
	}
	if err := c.do(ctx, http.MethodGet, "/api/sessions/search", query, nil, &out); err != nil {
		return nil, err
	}
	return out.Sessions, nil
}

// Create starts a new active session.
func (c *Client) Create(ctx context.Context, req api.CreateSessionRequest) (*api.Session, error) {
	var out api.SessionResponse
	if err := c.do(ctx, http.MethodPost, "/api/sessions", nil, req, &out); err != nil {
		return nil, err
	}
	return out.Session, nil
}

// Switch pauses the active session and creates a new one atomically.
func (c *Client) Switch(ctx context.Context, req api.SwitchSessionRequest) (*api.Session, error) {
	var out api.SessionResponse
	if err := c.do(ctx, http.MethodPost, "/api/sessions/switch", nil, req, &out); err != nil {
		return nil, err
	}
	return out.Session, nil
}

// Pause pauses a session with an observation.
func (c *Client) Pause(ctx context.Context, id int64, owner, observation string) error {
	req := api.PauseSessionRequest{Owner: owner, Observation: observation}
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/api/sessions/%d/pause", id), nil, req, nil)
}

// Resume reactivates a paused session.
func (c *Client) Resume(ctx context.Context, id int64, owner string) error {
	req := api.OwnerRequest{Owner: owner}
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/api/sessions/%d/resume", id), nil, req, nil)
}

// Finish terminates a session and returns its frozen total seconds.
func (c *Client) Finish(ctx context.Context, id int64, owner string) (int64, error) {
	req := api.OwnerRequest{Owner: owner}
	var out api.FinishResponse
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/sessions/%d/finish", id), nil, req, &out); err != nil {
		return 0, err
	}
	return out.TotalSeconds, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	if c == nil {
		return ErrAPIUnavailable
	}

	target := *c.base
	target.Path = path
	if query != nil {
		target.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrAPIUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// decodeError re-tags API failures with the matching service sentinel so
// callers can classify remote errors the same way as local ones.
func decodeError(resp *http.Response) error {
	var payload api.ErrorResponse
	message := resp.Status
	if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil && payload.Error != "" {
		message = payload.Error
	}

	var marker error
	switch resp.StatusCode {
	case http.StatusBadRequest:
		marker = services.ErrValidation
	case http.StatusNotFound:
		marker = services.ErrNotFound
	case http.StatusUnprocessableEntity:
		marker = services.ErrInvalidState
	case http.StatusConflict:
		marker = services.ErrConflict
	default:
		return errors.New(message)
	}
	// The server's message already carries the marker prefix; avoid doubling it.
	return fmt.Errorf("%w: %s", marker, strings.TrimPrefix(message, marker.Error()+": "))
}
