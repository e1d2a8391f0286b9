// Package api is the HTTP transport to a ProjectHub data service. Client
// implements both the row client and the auth provider.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/tgienger/projecthub/internal/auth"
	"github.com/tgienger/projecthub/internal/rowstore"
)

const API_VERSION = "v1"

// Client handles communication with the API server
type Client struct {
	// Base URL of the API server
	BaseURL string

	// HTTP client with a timeout
	client *http.Client

	// Token store for managing authentication tokens
	tokenStore *auth.TokenStore

	mu        sync.RWMutex
	authToken string
}

var (
	_ rowstore.Client = (*Client)(nil)
	_ auth.Provider   = (*Client)(nil)
)

// NewClient creates a new API client. A token already in the store is used
// for requests right away.
func NewClient(baseURL string, tokenStore *auth.TokenStore) *Client {
	token := ""
	if tokenStore != nil {
		storedToken, err := tokenStore.GetToken()
		if err == nil && storedToken != "" {
			token = storedToken
		}
	}

	return &Client{
		BaseURL:    strings.TrimSuffix(baseURL, "/"),
		authToken:  token,
		tokenStore: tokenStore,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.client = hc
	return c
}

func (c *Client) token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.authToken
}

func (c *Client) setToken(token string) {
	c.mu.Lock()
	c.authToken = token
	c.mu.Unlock()
}

func (c *Client) url(path string) string {
	return fmt.Sprintf("%s/%s/%s", c.BaseURL, API_VERSION, strings.TrimPrefix(path, "/"))
}

// do sends a JSON request and decodes a JSON response into out when out is
// non-nil. Non-2xx answers become rowstore errors.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%w: encoding request: %v", rowstore.ErrQuery, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url(path), reader)
	if err != nil {
		return fmt.Errorf("%w: creating request: %v", rowstore.ErrTransport, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if token := c.token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %w", rowstore.ErrTransport, method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("%w: decoding response: %v", rowstore.ErrTransport, err)
	}
	return nil
}

// StatusError is a non-2xx answer from the server.
type StatusError struct {
	Code    int
	Message string
	kind    error
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%v: %s (%d)", e.kind, e.Message, e.Code)
}

func (e *StatusError) Unwrap() error {
	return e.kind
}

func statusError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var payload struct {
		Error string `json:"error"`
	}
	msg := strings.TrimSpace(string(body))
	if json.Unmarshal(body, &payload) == nil && payload.Error != "" {
		msg = payload.Error
	}

	var kind error
	switch {
	case resp.StatusCode == http.StatusBadRequest, resp.StatusCode == http.StatusConflict:
		kind = rowstore.ErrQuery
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		kind = rowstore.ErrUnauthorized
	case resp.StatusCode == http.StatusNotFound:
		kind = rowstore.ErrNotFound
	default:
		kind = rowstore.ErrTransport
	}
	return &StatusError{Code: resp.StatusCode, Message: msg, kind: kind}
}

func statusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code
	}
	return 0
}
