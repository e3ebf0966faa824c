package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Session mirrors the token pair returned by the auth endpoints.
type Session struct {
	AccessToken      string    `json:"access_token"`
	RefreshToken     string    `json:"refresh_token"`
	ExpiresAt        time.Time `json:"expires_at"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
}

type Submission struct {
	ID        uuid.UUID `json:"id"`
	JobID     uuid.UUID `json:"job_id"`
	JobTitle  string    `json:"job_title"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

type SubmissionCounts struct {
	Total    int `json:"total"`
	Pending  int `json:"pending"`
	Approved int `json:"approved"`
	Rejected int `json:"rejected"`
}

type SubmissionList struct {
	Items  []Submission     `json:"items"`
	Counts SubmissionCounts `json:"counts"`
}

// APIError carries the status and message of a non-2xx response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: status=%d message=%s", e.Status, e.Message)
}

type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Client talks to the /api/v1 surface.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *log.Logger
}

func New(baseURL string, logger *log.Logger) *Client {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
		logger:  logger,
	}
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) Login(ctx context.Context, email, password string) (Session, error) {
	var out struct {
		Session Session `json:"session"`
	}
	body := map[string]string{"email": strings.TrimSpace(email), "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/v1/auth/login", "", body, &out); err != nil {
		return Session{}, err
	}
	return out.Session, nil
}

func (c *Client) Refresh(ctx context.Context, refreshToken string) (Session, error) {
	var out struct {
		Session Session `json:"session"`
	}
	body := map[string]string{"refresh_token": refreshToken}
	if err := c.do(ctx, http.MethodPost, "/api/v1/auth/refresh", "", body, &out); err != nil {
		return Session{}, err
	}
	return out.Session, nil
}

func (c *Client) Logout(ctx context.Context, s Session) error {
	body := map[string]string{"refresh_token": s.RefreshToken}
	return c.do(ctx, http.MethodPost, "/api/v1/auth/logout", s.AccessToken, body, nil)
}

func (c *Client) MySubmissions(ctx context.Context, accessToken string) (SubmissionList, error) {
	var out SubmissionList
	if err := c.do(ctx, http.MethodGet, "/api/v1/submissions", accessToken, nil, &out); err != nil {
		return SubmissionList{}, err
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path, token string, body any, out any) error {
	if c == nil || c.http == nil {
		return errors.New("nil api client")
	}
	endpoint := c.baseURL + path

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(io.LimitReader(resp.Body, 8<<20)).Decode(&env); err != nil {
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		}
		return fmt.Errorf("decode response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Printf("[Client] request failed method=%s path=%s status=%d message=%q", method, path, resp.StatusCode, env.Message)
		return &APIError{Status: resp.StatusCode, Message: env.Message}
	}
	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	return json.Unmarshal(env.Data, out)
}
