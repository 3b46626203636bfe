// Package session resolves and holds the signed-in identity.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"leaddesk/internal/leads"
	"leaddesk/internal/logging"
	"leaddesk/internal/notify"
	"leaddesk/internal/validate"

	"golang.org/x/sync/singleflight"
)

// ErrInvalidCredentials wraps client-side validation failures of the
// login and register forms. The *validate.ValidationError is also wrapped.
var ErrInvalidCredentials = errors.New("invalid credentials")

// User is the server's profile of the signed-in account.
type User struct {
	ID        leads.ID   `json:"id"`
	Email     string     `json:"email"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

// DisplayName returns "first last", or the email when both are empty.
func (u User) DisplayName() string {
	if n := strings.TrimSpace(u.FirstName + " " + u.LastName); n != "" {
		return n
	}
	return u.Email
}

// Credentials is the login form.
type Credentials struct {
	Email    string `json:"email" validate:"required,leademail"`
	Password string `json:"password" validate:"required"`
}

// Profile is the register form.
type Profile struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Email     string `json:"email" validate:"required,leademail"`
	Password  string `json:"password" validate:"required,min=6"`
}

var formMessages = validate.Messages{
	"first_name.required": "First name is required",
	"last_name.required":  "Last name is required",
	"email.required":      "Email is required",
	"email.leademail":     "Invalid email address",
	"password.required":   "Password is required",
	"password.min":        "Password must be at least 6 characters",
}

// Validate checks the login form.
func (c Credentials) Validate() error {
	c.Email = strings.TrimSpace(c.Email)
	if err := validate.Default().Struct(c, formMessages); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidCredentials, err)
	}
	return nil
}

// Validate checks the register form.
func (p Profile) Validate() error {
	p.FirstName = strings.TrimSpace(p.FirstName)
	p.LastName = strings.TrimSpace(p.LastName)
	p.Email = strings.TrimSpace(p.Email)
	if err := validate.Default().Struct(p, formMessages); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidCredentials, err)
	}
	return nil
}

// AuthResult is what login and register return.
type AuthResult struct {
	User  User   `json:"user"`
	Token string `json:"token,omitempty"`
}

// AuthAPI is the remote half of authentication.
type AuthAPI interface {
	// Me looks up the current identity. An empty bearer sends cookies only.
	Me(ctx context.Context, bearer string) (*User, error)
	Login(ctx context.Context, c Credentials) (*AuthResult, error)
	Register(ctx context.Context, p Profile) (*AuthResult, error)
	Logout(ctx context.Context) error
}

// TokenStore persists the fallback bearer token.
type TokenStore interface {
	Token() (string, error)
	SetToken(token string) error
	ClearToken() error
}

// cookieClearer is implemented by clients that keep session cookies.
type cookieClearer interface {
	ClearCookies() error
}

// State is a snapshot of the session.
type State struct {
	User    *User
	Loading bool
}

// Authenticated reports whether an identity is resolved.
func (s State) Authenticated() bool { return s.User != nil }

// Resolver owns the session for the life of the process. It is the only
// writer of the identity.
type Resolver struct {
	api      AuthAPI
	tokens   TokenStore
	notifier notify.Notifier

	mu    sync.RWMutex
	state State

	group singleflight.Group
}

// NewResolver creates a resolver in the loading state; nothing is known
// until Resolve runs.
func NewResolver(api AuthAPI, tokens TokenStore, n notify.Notifier) *Resolver {
	if n == nil {
		n = notify.Discard
	}
	return &Resolver{
		api:      api,
		tokens:   tokens,
		notifier: n,
		state:    State{Loading: true},
	}
}

// State returns the current snapshot.
func (r *Resolver) State() State {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s := r.state
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	return s
}

func (r *Resolver) set(u *User, loading bool) {
	r.mu.Lock()
	r.state = State{User: u, Loading: loading}
	r.mu.Unlock()
}

// Resolve establishes the identity: cookie first, then the stored bearer
// token. It never fails; an unresolved identity is simply signed out.
// Concurrent calls share one lookup.
func (r *Resolver) Resolve(ctx context.Context) State {
	v, _, _ := r.group.Do("resolve", func() (interface{}, error) {
		r.mu.Lock()
		r.state.Loading = true
		r.mu.Unlock()

		u := r.lookup(ctx)
		r.set(u, false)
		return r.State(), nil
	})
	return v.(State)
}

func (r *Resolver) lookup(ctx context.Context) *User {
	timer := logging.StartTimer(logging.CategorySession, "resolve")
	defer timer.Stop()

	u, err := r.api.Me(ctx, "")
	if err == nil && u != nil {
		logging.Session("resolved %s via cookie", u.Email)
		return u
	}
	logging.SessionDebug("cookie lookup failed: %v", err)

	tok, err := r.tokens.Token()
	if err != nil {
		logging.SessionWarn("reading stored token: %v", err)
		return nil
	}
	if tok == "" {
		logging.SessionDebug("no stored token, signed out")
		return nil
	}

	u, err = r.api.Me(ctx, tok)
	if err == nil && u != nil {
		logging.Session("resolved %s via stored token", u.Email)
		return u
	}

	logging.SessionWarn("stored token rejected, clearing: %v", err)
	if err := r.tokens.ClearToken(); err != nil {
		logging.SessionError("clearing stored token: %v", err)
	}
	return nil
}

// Login signs in. Failures are notified and returned.
func (r *Resolver) Login(ctx context.Context, email, password string) error {
	creds := Credentials{Email: strings.TrimSpace(email), Password: password}
	if err := creds.Validate(); err != nil {
		return err
	}

	res, err := r.api.Login(ctx, creds)
	if err != nil {
		logging.SessionError("login failed for %s: %v", creds.Email, err)
		notify.Error(r.notifier, notify.MessageOr(err, "Login failed"))
		return err
	}

	r.adopt(res)
	notify.Success(r.notifier, "Login successful!")
	return nil
}

// Register creates an account and signs in.
func (r *Resolver) Register(ctx context.Context, p Profile) error {
	p.FirstName = strings.TrimSpace(p.FirstName)
	p.LastName = strings.TrimSpace(p.LastName)
	p.Email = strings.TrimSpace(p.Email)
	if err := p.Validate(); err != nil {
		return err
	}

	res, err := r.api.Register(ctx, p)
	if err != nil {
		logging.SessionError("register failed for %s: %v", p.Email, err)
		notify.Error(r.notifier, notify.MessageOr(err, "Registration failed"))
		return err
	}

	r.adopt(res)
	notify.Success(r.notifier, "Registration successful!")
	return nil
}

func (r *Resolver) adopt(res *AuthResult) {
	u := res.User
	r.set(&u, false)
	logging.Session("signed in as %s", u.Email)

	if res.Token != "" {
		if err := r.tokens.SetToken(res.Token); err != nil {
			logging.SessionError("persisting token: %v", err)
		}
	}
}

// Logout signs out. The local identity, stored token and cookies are
// cleared whether or not the server call succeeds.
func (r *Resolver) Logout(ctx context.Context) {
	err := r.api.Logout(ctx)

	r.set(nil, false)
	if cerr := r.tokens.ClearToken(); cerr != nil {
		logging.SessionError("clearing stored token: %v", cerr)
	}
	if cc, ok := r.api.(cookieClearer); ok {
		if cerr := cc.ClearCookies(); cerr != nil {
			logging.SessionError("clearing cookies: %v", cerr)
		}
	}

	if err != nil {
		logging.SessionError("logout: %v", err)
		return
	}
	logging.Session("signed out")
	notify.Success(r.notifier, "Logout successful!")
}
