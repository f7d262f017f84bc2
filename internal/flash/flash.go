// Package flash provides one-time notices carried in the visitor session
// and shown on the next page render.
package flash

import (
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/middleware/session"
)

const sessionKey = "_flash"

// Kind classifies flash notice presentation.
type Kind string

const (
	KindSuccess Kind = "success"
	KindInfo    Kind = "info"
	KindWarning Kind = "warning"
	KindError   Kind = "error"
)

// Message is one flash notice.
type Message struct {
	Kind Kind   `json:"kind"`
	Text string `json:"message"`
}

// Success creates a success notice.
func Success(text string) Message { return Message{Kind: KindSuccess, Text: text} }

// Error creates an error notice.
func Error(text string) Message { return Message{Kind: KindError, Text: text} }

// Info creates an informational notice.
func Info(text string) Message { return Message{Kind: KindInfo, Text: text} }

func normalize(m Message) (Message, bool) {
	m.Text = strings.TrimSpace(m.Text)
	if m.Text == "" {
		return Message{}, false
	}
	m.Kind = Kind(strings.ToLower(strings.TrimSpace(string(m.Kind))))
	switch m.Kind {
	case KindSuccess, KindInfo, KindWarning, KindError:
		return m, true
	case "":
		m.Kind = KindInfo
		return m, true
	default:
		return Message{}, false
	}
}

// Push queues a notice in the session for the next render. The caller saves the session.
func Push(sess *session.Session, msg Message) {
	msg, ok := normalize(msg)
	if !ok || sess == nil {
		return
	}
	queued := decode(sess.Get(sessionKey))
	queued = append(queued, msg)
	if raw, err := json.Marshal(queued); err == nil {
		sess.Set(sessionKey, string(raw))
	}
}

// Pull returns and clears the queued notices. The caller saves the session.
func Pull(sess *session.Session) []Message {
	if sess == nil {
		return nil
	}
	queued := decode(sess.Get(sessionKey))
	if len(queued) > 0 {
		sess.Delete(sessionKey)
	}
	return queued
}

func decode(v any) []Message {
	raw, ok := v.(string)
	if !ok || raw == "" {
		return nil
	}
	var msgs []Message
	if err := json.Unmarshal([]byte(raw), &msgs); err != nil {
		return nil
	}
	out := msgs[:0]
	for _, m := range msgs {
		if n, ok := normalize(m); ok {
			out = append(out, n)
		}
	}
	return out
}

// Deduper suppresses a notice already shown to the same visitor within a window.
type Deduper struct {
	window time.Duration
	now    func() time.Time

	mu    sync.Mutex
	shown map[string]time.Time
}

// NewDeduper creates a Deduper with the given suppression window.
func NewDeduper(window time.Duration) *Deduper {
	return &Deduper{window: window, now: time.Now, shown: map[string]time.Time{}}
}

// SetClock replaces the time source.
func (d *Deduper) SetClock(now func() time.Time) {
	d.mu.Lock()
	d.now = now
	d.mu.Unlock()
}

// Allow reports whether text may be shown to scope now, and records it if so.
func (d *Deduper) Allow(scope, text string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	now := d.now()
	key := scope + "\x00" + text
	if last, ok := d.shown[key]; ok && now.Sub(last) < d.window {
		return false
	}
	d.shown[key] = now
	if len(d.shown) > 4096 {
		d.sweep(now)
	}
	return true
}

// Filter keeps the notices Allow accepts, in order.
func (d *Deduper) Filter(scope string, msgs []Message) []Message {
	out := make([]Message, 0, len(msgs))
	for _, m := range msgs {
		if d.Allow(scope, m.Text) {
			out = append(out, m)
		}
	}
	return out
}

func (d *Deduper) sweep(now time.Time) {
	for k, at := range d.shown {
		if now.Sub(at) >= d.window {
			delete(d.shown, k)
		}
	}
}
