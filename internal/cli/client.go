package cli

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

	"github.com/arielspace/listing-board/internal/core/domain"
)

// APIError is a non-2xx answer from the listing API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %d %s", e.Status, e.Message)
}

// IsUnauthorized reports whether err is a 401 from the API.
func IsUnauthorized(err error) bool {
	var ae *APIError
	return errors.As(err, &ae) && ae.Status == http.StatusUnauthorized
}

// Client talks to the listing API. token is read on every request so the
// client always uses the session manager's current credential.
type Client struct {
	baseURL string
	http    *http.Client
	token   func() string
}

func NewClient(baseURL string, hc *http.Client, token func() string) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: 15 * time.Second}
	}
	if token == nil {
		token = func() string { return "" }
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: hc, token: token}
}

type LoginResult struct {
	User      domain.User `json:"user"`
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	Session   struct {
		SessionID      string `json:"session_id"`
		TimeoutSeconds int    `json:"timeout_seconds"`
		WarningSeconds int    `json:"warning_seconds"`
	} `json:"session"`
}

type SessionStatus struct {
	SessionID        string    `json:"session_id"`
	State            string    `json:"state"`
	ExpiresAt        time.Time `json:"expires_at"`
	RemainingSeconds int       `json:"remaining_seconds"`
}

// Listing mirrors the API's listing representation; the deadline stays a
// YYYY-MM-DD string.
type Listing struct {
	ID               string         `json:"id"`
	Title            string         `json:"title"`
	ShortDescription string         `json:"short_description"`
	FullDetails      string         `json:"full_details"`
	DetailBlocks     []domain.Block `json:"detail_blocks,omitempty"`
	HasCertification bool           `json:"has_certification"`
	ApplyURL         string         `json:"apply_url"`
	Location         *string        `json:"location,omitempty"`
	Duration         *string        `json:"duration,omitempty"`
	Deadline         *string        `json:"deadline,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
}

type ListingInput struct {
	Title            string  `json:"title"`
	ShortDescription string  `json:"short_description"`
	FullDetails      string  `json:"full_details"`
	HasCertification bool    `json:"has_certification"`
	ApplyURL         string  `json:"apply_url"`
	Location         *string `json:"location,omitempty"`
	Duration         *string `json:"duration,omitempty"`
	Deadline         *string `json:"deadline,omitempty"`
}

func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	var out LoginResult
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/login", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", nil, nil)
}

func (c *Client) Me(ctx context.Context) (*domain.User, error) {
	var out struct {
		User domain.User `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

func (c *Client) ExtendSession(ctx context.Context) (*SessionStatus, error) {
	var out SessionStatus
	if err := c.do(ctx, http.MethodPost, "/auth/session/extend", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListListings(ctx context.Context, query string) ([]Listing, error) {
	path := "/listings"
	if query != "" {
		path += "?q=" + url.QueryEscape(query)
	}
	var out struct {
		Listings []Listing `json:"listings"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Listings, nil
}

func (c *Client) GetListing(ctx context.Context, id string) (*Listing, error) {
	var out struct {
		Listing Listing `json:"listing"`
	}
	if err := c.do(ctx, http.MethodGet, "/listings/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out.Listing, nil
}

func (c *Client) CreateListing(ctx context.Context, in ListingInput) (*Listing, error) {
	var out struct {
		Listing Listing `json:"listing"`
	}
	if err := c.do(ctx, http.MethodPost, "/listings", in, &out); err != nil {
		return nil, err
	}
	return &out.Listing, nil
}

func (c *Client) DeleteListing(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/listings/"+url.PathEscape(id), nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := c.token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var env struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&env)
		if env.Error == "" {
			env.Error = http.StatusText(resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Message: env.Error}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
