package api

import (
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sync"
	"time"

	"leaddesk/internal/logging"
	"leaddesk/internal/store"

	"golang.org/x/net/publicsuffix"
)

// CookieStore persists cookies between runs.
type CookieStore interface {
	SaveCookies(cookies []store.StoredCookie) error
	LoadCookies() ([]store.StoredCookie, error)
	ClearCookies() error
}

// persistentJar is a cookiejar.Jar that writes every cookie it accepts
// through to a CookieStore and reloads them on start.
type persistentJar struct {
	mu    sync.RWMutex
	jar   *cookiejar.Jar
	store CookieStore
}

func newJar() *cookiejar.Jar {
	// cookiejar.New never returns a non-nil error.
	jar, _ := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	return jar
}

func newPersistentJar(cs CookieStore) *persistentJar {
	j := &persistentJar{jar: newJar(), store: cs}
	j.load()
	return j
}

func (j *persistentJar) load() {
	if j.store == nil {
		return
	}
	stored, err := j.store.LoadCookies()
	if err != nil {
		logging.StoreError("loading cookies: %v", err)
		return
	}

	byOrigin := map[string][]*http.Cookie{}
	for _, sc := range stored {
		byOrigin[sc.Origin] = append(byOrigin[sc.Origin], &http.Cookie{
			Name:     sc.Name,
			Value:    sc.Value,
			Path:     sc.Path,
			Domain:   sc.Domain,
			Expires:  sc.Expires,
			Secure:   sc.Secure,
			HttpOnly: sc.HttpOnly,
		})
	}
	for origin, cookies := range byOrigin {
		u, err := url.Parse(origin)
		if err != nil {
			continue
		}
		j.jar.SetCookies(u, cookies)
	}
	logging.StoreDebug("restored %d cookies", len(stored))
}

// SetCookies implements http.CookieJar.
func (j *persistentJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.mu.RLock()
	j.jar.SetCookies(u, cookies)
	j.mu.RUnlock()

	if j.store == nil || len(cookies) == 0 {
		return
	}

	origin := u.Scheme + "://" + u.Host
	now := time.Now()
	out := make([]store.StoredCookie, 0, len(cookies))
	for _, c := range cookies {
		sc := store.StoredCookie{
			Origin:   origin,
			Name:     c.Name,
			Value:    c.Value,
			Path:     c.Path,
			Domain:   c.Domain,
			Expires:  c.Expires,
			Secure:   c.Secure,
			HttpOnly: c.HttpOnly,
		}
		switch {
		case c.MaxAge < 0:
			sc.Expires = time.Unix(1, 0)
		case c.MaxAge > 0:
			sc.Expires = now.Add(time.Duration(c.MaxAge) * time.Second)
		}
		out = append(out, sc)
	}
	if err := j.store.SaveCookies(out); err != nil {
		logging.StoreError("saving cookies: %v", err)
	}
}

// Cookies implements http.CookieJar.
func (j *persistentJar) Cookies(u *url.URL) []*http.Cookie {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.jar.Cookies(u)
}

// Clear forgets every cookie in memory and on disk.
func (j *persistentJar) Clear() error {
	j.mu.Lock()
	j.jar = newJar()
	j.mu.Unlock()

	if j.store == nil {
		return nil
	}
	return j.store.ClearCookies()
}
