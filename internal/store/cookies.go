package store

import (
	"fmt"
	"time"

	"leaddesk/internal/logging"
)

// StoredCookie is a cookie persisted for a request origin (scheme://host).
type StoredCookie struct {
	Origin   string
	Name     string
	Value    string
	Path     string
	Domain   string
	Expires  time.Time // zero means session cookie
	Secure   bool
	HttpOnly bool
}

// Expired reports whether the cookie has expired at now.
func (c StoredCookie) Expired(now time.Time) bool {
	return !c.Expires.IsZero() && !c.Expires.After(now)
}

// SaveCookies upserts cookies. Expired cookies are deleted instead, which
// is how servers clear a cookie.
func (s *LocalStore) SaveCookies(cookies []StoredCookie) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin cookie tx: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	for _, c := range cookies {
		path := c.Path
		if path == "" {
			path = "/"
		}
		if c.Expired(now) {
			if _, err := tx.Exec(`DELETE FROM cookies WHERE origin = ? AND name = ? AND path = ?`,
				c.Origin, c.Name, path); err != nil {
				return fmt.Errorf("failed to delete cookie %s: %w", c.Name, err)
			}
			continue
		}
		var expires int64
		if !c.Expires.IsZero() {
			expires = c.Expires.Unix()
		}
		if _, err := tx.Exec(`
			INSERT INTO cookies (origin, name, path, value, domain, expires_at, secure, http_only)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(origin, name, path) DO UPDATE SET
				value = excluded.value, domain = excluded.domain, expires_at = excluded.expires_at,
				secure = excluded.secure, http_only = excluded.http_only`,
			c.Origin, c.Name, path, c.Value, c.Domain, expires, boolInt(c.Secure), boolInt(c.HttpOnly)); err != nil {
			return fmt.Errorf("failed to save cookie %s: %w", c.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit cookies: %w", err)
	}
	logging.StoreDebug("saved %d cookies", len(cookies))
	return nil
}

// LoadCookies returns every unexpired cookie. Expired rows are pruned.
func (s *LocalStore) LoadCookies() ([]StoredCookie, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if _, err := s.db.Exec(`DELETE FROM cookies WHERE expires_at > 0 AND expires_at <= ?`, now.Unix()); err != nil {
		return nil, fmt.Errorf("failed to prune cookies: %w", err)
	}

	rows, err := s.db.Query(`
		SELECT origin, name, path, value, COALESCE(domain, ''), expires_at, secure, http_only
		FROM cookies ORDER BY origin, name`)
	if err != nil {
		return nil, fmt.Errorf("failed to load cookies: %w", err)
	}
	defer rows.Close()

	var out []StoredCookie
	for rows.Next() {
		var (
			c                StoredCookie
			expires          int64
			secure, httpOnly int
		)
		if err := rows.Scan(&c.Origin, &c.Name, &c.Path, &c.Value, &c.Domain, &expires, &secure, &httpOnly); err != nil {
			return nil, fmt.Errorf("failed to scan cookie: %w", err)
		}
		if expires > 0 {
			c.Expires = time.Unix(expires, 0)
		}
		c.Secure = secure != 0
		c.HttpOnly = httpOnly != 0
		out = append(out, c)
	}
	return out, rows.Err()
}

// ClearCookies removes every stored cookie.
func (s *LocalStore) ClearCookies() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec(`DELETE FROM cookies`); err != nil {
		return fmt.Errorf("failed to clear cookies: %w", err)
	}
	logging.StoreDebug("cleared cookies")
	return nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
