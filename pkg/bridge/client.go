package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"gryffintwin/pkg/api"
)

var (
	// ErrUnavailable covers transport failures and timeouts; the API never answered.
	ErrUnavailable = errors.New("backend unavailable")
	// ErrUnauthorized is a 401 from the API: bad credentials or a token it no longer accepts.
	ErrUnauthorized = errors.New("backend rejected credentials")
	// ErrBadResponse is a success status whose body is not the expected JSON.
	ErrBadResponse = errors.New("undecodable backend response")
	// ErrInvalidRequest means the request body could not be encoded, so nothing was sent.
	ErrInvalidRequest = errors.New("request not encodable")
)

// UpstreamError is any other non-2xx answer from the API.
type UpstreamError struct {
	Status  int
	Message string // the API's error message, if it sent one
	Body    string
}

func (e *UpstreamError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend status %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("backend status %d", e.Status)
}

const maxErrorBody = 64 << 10

// Client calls the JSON API on behalf of a browser session.
type Client struct {
	base string
	http *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{base: baseURL, http: &http.Client{Timeout: timeout}}
}

func (c *Client) do(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%w: %s %s: %v", ErrInvalidRequest, method, path, err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", ErrUnavailable, method, path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
		return ErrUnauthorized
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		uerr := &UpstreamError{Status: resp.StatusCode, Body: string(raw)}
		var e api.ErrorResponse
		if json.Unmarshal(raw, &e) == nil {
			uerr.Message = e.Error
		}
		return uerr
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %s %s status %d: %v", ErrBadResponse, method, path, resp.StatusCode, err)
	}
	return nil
}

func (c *Client) Login(ctx context.Context, email, password string) (api.AuthResponse, error) {
	var out api.AuthResponse
	err := c.do(ctx, http.MethodPost, "/api/auth/login", "", api.LoginRequest{Email: email, Password: password}, &out)
	return out, err
}

func (c *Client) Register(ctx context.Context, name, email, password string) (api.AuthResponse, error) {
	var out api.AuthResponse
	err := c.do(ctx, http.MethodPost, "/api/auth/register", "", api.RegisterRequest{Name: name, Email: email, Password: password}, &out)
	return out, err
}

func (c *Client) Dashboard(ctx context.Context, token string) (api.DashboardSummary, error) {
	var out api.DashboardSummary
	err := c.do(ctx, http.MethodGet, "/api/dashboard/summary", token, nil, &out)
	return out, err
}

func (c *Client) Expenses(ctx context.Context, token string) (api.ExpenseListing, error) {
	var out api.ExpenseListing
	err := c.do(ctx, http.MethodGet, "/api/expenses", token, nil, &out)
	return out, err
}

func (c *Client) CreateExpense(ctx context.Context, token string, req api.ExpenseRequest) (api.Expense, error) {
	var out api.Expense
	err := c.do(ctx, http.MethodPost, "/api/expenses", token, req, &out)
	return out, err
}

func (c *Client) DeleteExpense(ctx context.Context, token string, id uint) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/expenses/%d", id), token, nil, nil)
}

func (c *Client) Goals(ctx context.Context, token string) (api.GoalListing, error) {
	var out api.GoalListing
	err := c.do(ctx, http.MethodGet, "/api/goals", token, nil, &out)
	return out, err
}

func (c *Client) CreateGoal(ctx context.Context, token string, req api.GoalRequest) (api.Goal, error) {
	var out api.Goal
	err := c.do(ctx, http.MethodPost, "/api/goals", token, req, &out)
	return out, err
}

func (c *Client) UpdateGoal(ctx context.Context, token string, id uint, req api.GoalUpdate) (api.Goal, error) {
	var out api.Goal
	err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/api/goals/%d", id), token, req, &out)
	return out, err
}

func (c *Client) DeleteGoal(ctx context.Context, token string, id uint) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/goals/%d", id), token, nil, nil)
}

func (c *Client) Analytics(ctx context.Context, token string) (api.Analytics, error) {
	var out api.Analytics
	err := c.do(ctx, http.MethodGet, "/api/analytics", token, nil, &out)
	return out, err
}

func (c *Client) Security(ctx context.Context, token string) (api.SecurityPosture, error) {
	var out api.SecurityPosture
	err := c.do(ctx, http.MethodGet, "/api/security", token, nil, &out)
	return out, err
}

func (c *Client) ResolveAlert(ctx context.Context, token string, id uint) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/api/security/alerts/%d/resolve", id), token, nil, nil)
}
