package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/tgienger/projecthub/internal/auth"
	"github.com/tgienger/projecthub/internal/models"
	"github.com/tgienger/projecthub/internal/rowstore"
)

type authResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// Restore checks the stored token with the server.
func (c *Client) Restore(ctx context.Context) (models.User, error) {
	if c.token() == "" {
		return models.User{}, auth.ErrNoSession
	}
	var resp struct {
		User models.User `json:"user"`
	}
	err := c.do(ctx, http.MethodGet, "auth/user", nil, &resp)
	if errors.Is(err, rowstore.ErrUnauthorized) {
		// expired or revoked; forget it
		c.clear()
		return models.User{}, auth.ErrNoSession
	}
	if err != nil {
		return models.User{}, err
	}
	return resp.User, nil
}

// SignIn authenticates the user with the server
func (c *Client) SignIn(ctx context.Context, email, password string) (models.User, error) {
	u, err := c.authenticate(ctx, "auth/signin", email, password)
	if statusCode(err) == http.StatusUnauthorized {
		return models.User{}, auth.ErrInvalidCredentials
	}
	return u, err
}

// SignUp creates a new user account and signs it in
func (c *Client) SignUp(ctx context.Context, email, password string) (models.User, error) {
	u, err := c.authenticate(ctx, "auth/signup", email, password)
	switch statusCode(err) {
	case http.StatusConflict:
		return models.User{}, auth.ErrEmailTaken
	case http.StatusBadRequest:
		var se *StatusError
		errors.As(err, &se)
		return models.User{}, badCredentials(se.Message)
	}
	return u, err
}

// SignOut notifies the server and always clears the local token.
func (c *Client) SignOut(ctx context.Context) error {
	var serverErr error
	if c.token() != "" {
		serverErr = c.do(ctx, http.MethodPost, "auth/signout", nil, nil)
	}
	if err := c.clear(); err != nil {
		return err
	}
	if serverErr != nil && !errors.Is(serverErr, rowstore.ErrUnauthorized) {
		return fmt.Errorf("signing out: %w", serverErr)
	}
	return nil
}

func (c *Client) authenticate(ctx context.Context, path, email, password string) (models.User, error) {
	var resp authResponse
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, path, body, &resp); err != nil {
		return models.User{}, err
	}
	if resp.Token == "" {
		return models.User{}, fmt.Errorf("%w: no authentication token found in server response", rowstore.ErrTransport)
	}

	c.setToken(resp.Token)
	if c.tokenStore != nil {
		if err := c.tokenStore.SaveToken(resp.Token); err != nil {
			return models.User{}, fmt.Errorf("failed to save auth token: %w", err)
		}
	}
	return resp.User, nil
}

func (c *Client) clear() error {
	c.setToken("")
	if c.tokenStore != nil {
		return c.tokenStore.ClearToken()
	}
	return nil
}

// badCredentials maps a 400 message back onto the auth sentinel it came from.
func badCredentials(msg string) error {
	for _, known := range []error{auth.ErrInvalidEmail, auth.ErrWeakPassword} {
		if strings.Contains(msg, known.Error()) {
			return known
		}
	}
	return fmt.Errorf("%w: %s", rowstore.ErrQuery, msg)
}
