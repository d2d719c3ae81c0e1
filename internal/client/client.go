// Package client talks to the lifetrack API and keeps the bearer token on local storage.
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
	"sync"
	"time"

	"example.com/lifetrack/internal/clock"
	"example.com/lifetrack/internal/logger"
	"example.com/lifetrack/internal/storage"
)

// TokenKey is the substrate key holding the raw bearer token.
const TokenKey = "auth_token"

// DefaultBaseURL is used when no API URL is configured.
const DefaultBaseURL = "http://localhost:3001/api"

// ErrNotAuthenticated is returned by data calls made without a token.
var ErrNotAuthenticated = errors.New("not authenticated")

// APIError is a non-2xx response. Message comes from the server's {"error": ...} body.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// User identifies an account.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Client calls the API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     storage.Substrate
	clock      clock.Clock
	log        *logger.Logger

	mu    sync.RWMutex
	token string
}

// Option configures a Client.
type Option func(*Client)

func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.httpClient = h } }

func WithClock(clk clock.Clock) Option { return func(c *Client) { c.clock = clk } }

func WithLogger(l *logger.Logger) Option { return func(c *Client) { c.log = l } }

// New constructs a client and restores a saved token from tokens.
func New(baseURL string, tokens storage.Substrate, opts ...Option) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		tokens:     tokens,
		clock:      clock.Real(),
		log:        logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	raw, ok, err := tokens.Get(TokenKey)
	if err != nil {
		return nil, fmt.Errorf("load token: %w", err)
	}
	if ok {
		c.token = strings.TrimSpace(string(raw))
	}
	return c, nil
}

// Token returns the current bearer token, or "".
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) setToken(token string) error {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
	if token == "" {
		return c.tokens.Delete(TokenKey)
	}
	return c.tokens.Set(TokenKey, []byte(token))
}

// Register creates an account and stores the returned token.
func (c *Client) Register(ctx context.Context, username, password string) (AuthResponse, error) {
	return c.authenticate(ctx, "/register", username, password)
}

// Login exchanges credentials for a token and stores it.
func (c *Client) Login(ctx context.Context, username, password string) (AuthResponse, error) {
	return c.authenticate(ctx, "/login", username, password)
}

func (c *Client) authenticate(ctx context.Context, path, username, password string) (AuthResponse, error) {
	var resp AuthResponse
	body := map[string]string{"username": username, "password": password}
	if err := c.do(ctx, http.MethodPost, path, body, &resp); err != nil {
		return AuthResponse{}, err
	}
	if err := c.setToken(resp.Token); err != nil {
		return AuthResponse{}, fmt.Errorf("save token: %w", err)
	}
	return resp, nil
}

// Logout forgets the token.
func (c *Client) Logout() error {
	return c.setToken("")
}

// GetData fetches the blob stored under key. A key never written returns nil.
func (c *Client) GetData(ctx context.Context, key string) (json.RawMessage, error) {
	if c.Token() == "" {
		return nil, ErrNotAuthenticated
	}
	var resp struct {
		Data json.RawMessage `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/data/"+url.PathEscape(key), nil, &resp); err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 || string(resp.Data) == "null" {
		return nil, nil
	}
	return resp.Data, nil
}

// SaveData replaces the blob stored under key.
func (c *Client) SaveData(ctx context.Context, key string, data any) error {
	if c.Token() == "" {
		return ErrNotAuthenticated
	}
	return c.do(ctx, http.MethodPost, "/data/"+url.PathEscape(key), data, nil)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var payload struct {
			Error string `json:"error"`
		}
		data, _ := io.ReadAll(resp.Body)
		if json.Unmarshal(data, &payload) != nil || payload.Error == "" {
			payload.Error = "Request failed"
		}
		return &APIError{Status: resp.StatusCode, Message: payload.Error}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
