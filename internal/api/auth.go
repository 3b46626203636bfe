package api

import (
	"context"
	"fmt"
	"net/http"

	"leaddesk/internal/session"
)

type userEnvelope struct {
	User *session.User `json:"user"`
}

// Me returns the current identity. An empty bearer probes with cookies
// only; otherwise the given token is sent.
func (c *Client) Me(ctx context.Context, bearer string) (*session.User, error) {
	r := request{method: http.MethodGet, path: "/api/auth/me", bearer: bearerNone}
	if bearer != "" {
		r.bearer = bearerExplicit
		r.token = bearer
	}
	data, err := c.do(ctx, r)
	if err != nil {
		return nil, err
	}

	var env userEnvelope
	if err := decode(data, &env); err != nil {
		return nil, err
	}
	if env.User == nil {
		return nil, fmt.Errorf("identity response has no user")
	}
	return env.User, nil
}

// Login posts credentials.
func (c *Client) Login(ctx context.Context, creds session.Credentials) (*session.AuthResult, error) {
	return c.authenticate(ctx, "/api/auth/login", creds)
}

// Register creates an account.
func (c *Client) Register(ctx context.Context, p session.Profile) (*session.AuthResult, error) {
	return c.authenticate(ctx, "/api/auth/register", p)
}

func (c *Client) authenticate(ctx context.Context, path string, body interface{}) (*session.AuthResult, error) {
	data, err := c.do(ctx, request{method: http.MethodPost, path: path, body: body, bearer: bearerNone})
	if err != nil {
		return nil, err
	}
	var res session.AuthResult
	if err := decode(data, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Logout ends the server session.
func (c *Client) Logout(ctx context.Context) error {
	_, err := c.do(ctx, request{method: http.MethodPost, path: "/api/auth/logout"})
	return err
}
