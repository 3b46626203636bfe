// Package notify carries user-facing notifications (toasts in the console,
// colored lines on the CLI).
package notify

import (
	"errors"
	"strings"
	"sync"
	"time"
)

// Level is the severity of a notice.
type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelSuccess:
		return "success"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// Notice is a single notification.
type Notice struct {
	Level     Level
	Text      string
	ExpiresAt time.Time
}

// Expired reports whether the notice should no longer be shown.
func (n Notice) Expired(now time.Time) bool {
	return !n.ExpiresAt.IsZero() && !now.Before(n.ExpiresAt)
}

// Notifier receives notifications. Implementations must be safe for
// concurrent use; commands raise notices off the UI goroutine.
type Notifier interface {
	Notify(level Level, text string)
}

// Success raises a success notice on n.
func Success(n Notifier, text string) { n.Notify(LevelSuccess, text) }

// Error raises an error notice on n.
func Error(n Notifier, text string) { n.Notify(LevelError, text) }

// Info raises an informational notice on n.
func Info(n Notifier, text string) { n.Notify(LevelInfo, text) }

// Discard drops every notice.
var Discard Notifier = discard{}

type discard struct{}

func (discard) Notify(Level, string) {}

// Queue buffers notices until the event loop drains them.
type Queue struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	pending []Notice
}

// NewQueue returns a queue whose notices expire ttl after being raised.
func NewQueue(ttl time.Duration) *Queue {
	return &Queue{ttl: ttl, now: time.Now}
}

// Notify implements Notifier.
func (q *Queue) Notify(level Level, text string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := Notice{Level: level, Text: text}
	if q.ttl > 0 {
		n.ExpiresAt = q.now().Add(q.ttl)
	}
	q.pending = append(q.pending, n)
}

// SetTTL changes the lifetime of notices raised from now on.
func (q *Queue) SetTTL(ttl time.Duration) {
	q.mu.Lock()
	q.ttl = ttl
	q.mu.Unlock()
}

// Drain returns the pending notices in order and empties the queue.
func (q *Queue) Drain() []Notice {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.pending
	q.pending = nil
	return out
}

// Recorder keeps every notice. Used by tests.
type Recorder struct {
	mu      sync.Mutex
	notices []Notice
}

// Notify implements Notifier.
func (r *Recorder) Notify(level Level, text string) {
	r.mu.Lock()
	r.notices = append(r.notices, Notice{Level: level, Text: text})
	r.mu.Unlock()
}

// Notices returns a copy of everything recorded.
func (r *Recorder) Notices() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notice(nil), r.notices...)
}

// Texts returns the recorded texts.
func (r *Recorder) Texts() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.notices))
	for i, n := range r.notices {
		out[i] = n.Text
	}
	return out
}

// Last returns the most recent notice, if any.
func (r *Recorder) Last() (Notice, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.notices) == 0 {
		return Notice{}, false
	}
	return r.notices[len(r.notices)-1], true
}

// serverMessager is implemented by errors that carry a message from the API.
type serverMessager interface {
	ServerMessage() string
}

// MessageOr returns the server-provided message inside err, or fallback
// when there is none.
func MessageOr(err error, fallback string) string {
	var sm serverMessager
	if errors.As(err, &sm) {
		if msg := strings.TrimSpace(sm.ServerMessage()); msg != "" {
			return msg
		}
	}
	return fallback
}
