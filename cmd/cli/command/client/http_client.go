package client

// http_client.go = the single shared HTTP client for the bookhub CLI.
// Fixed base URL, one mutable bearer token snapshotted at send time, and
// an injected callback fired whenever any response comes back 401.

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"bookhub/internal/books"
)

// ErrUnauthorized marks an authentication-failure response. It is still
// returned to the original call site after the failure callback has run.
var ErrUnauthorized = errors.New("authentication failed")

type Client struct {
	baseURL    string
	httpClient *http.Client

	mu            sync.RWMutex
	token         string
	onAuthFailure func()
}

// LoginRequest is the body for POST /api/auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthResponse carries the bearer credential issued by the backend.
type AuthResponse struct {
	AccessToken string `json:"accessToken"`
}

// NewClient creates the shared client for one API origin.
func NewClient(apiURL string) *Client {
	return &Client{
		baseURL: apiURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// SetToken installs the shared bearer header for subsequent requests.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// ClearToken removes the shared bearer header.
func (c *Client) ClearToken() {
	c.SetToken("")
}

// OnAuthFailure registers the callback invoked when any response carries
// an authentication-failure status. Register once at application start and
// pass nil on teardown so the hook cannot fire twice.
func (c *Client) OnAuthFailure(fn func()) {
	c.mu.Lock()
	c.onAuthFailure = fn
	c.mu.Unlock()
}

// do performs one request. The bearer token is read once at send time, so
// a login or logout racing an in-flight request cannot change what that
// request already sent.
func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Request-ID", uuid.NewString())

	c.mu.RLock()
	token := c.token
	c.mu.RUnlock()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		c.mu.RLock()
		onAuthFailure := c.onAuthFailure
		c.mu.RUnlock()
		if onAuthFailure != nil {
			onAuthFailure()
		}
		return fmt.Errorf("%s %s: %w", method, path, ErrUnauthorized)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%s %s failed with status: %s", method, path, resp.Status)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// Login exchanges credentials for a bearer token. It is the one call made
// without the shared header.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	var result AuthResponse
	req := LoginRequest{Username: username, Password: password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", req, &result); err != nil {
		return "", err
	}
	if result.AccessToken == "" {
		return "", fmt.Errorf("login response carried no token")
	}
	return result.AccessToken, nil
}

// Book and category endpoints.

func (c *Client) ListBooks(ctx context.Context) ([]books.Book, error) {
	var result []books.Book
	if err := c.do(ctx, http.MethodGet, "/api/book", nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) ListCategories(ctx context.Context) ([]books.Category, error) {
	var result []books.Category
	if err := c.do(ctx, http.MethodGet, "/api/book-category", nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) CreateBook(ctx context.Context, req books.CreateBookRequest) error {
	return c.do(ctx, http.MethodPost, "/api/book", req, nil)
}

func (c *Client) UpdateBook(ctx context.Context, id int64, payload map[string]any) error {
	return c.do(ctx, http.MethodPatch, fmt.Sprintf("/api/book/%d", id), payload, nil)
}

func (c *Client) DeleteBook(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/book/%d", id), nil, nil)
}
