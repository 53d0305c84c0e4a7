// ABOUTME: One-shot flash notifications carried across a redirect
// ABOUTME: Backed by a gorilla/sessions cookie store separate from the auth cookies

package services

import (
	"encoding/gob"
	"log/slog"
	"net/http"

	"github.com/gorilla/sessions"
)

const flashSession = "lms_flash"

type NotificationKind string

const (
	NotifySuccess NotificationKind = "success"
	NotifyError   NotificationKind = "error"
	NotifyInfo    NotificationKind = "info"
)

type Notification struct {
	Kind    NotificationKind
	Message string
}

func init() {
	gob.Register(Notification{})
}

type Notifier struct {
	store *sessions.CookieStore
}

func NewNotifier(secret string, secure bool) *Notifier {
	store := sessions.NewCookieStore(deriveKey("flash", secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   300,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &Notifier{store: store}
}

// Add queues a notification for the next rendered page. Must be called
// before the response header is written.
func (n *Notifier) Add(w http.ResponseWriter, r *http.Request, kind NotificationKind, message string) {
	sess, _ := n.store.Get(r, flashSession)
	sess.AddFlash(Notification{Kind: kind, Message: message})
	if err := sess.Save(r, w); err != nil {
		slog.Warn("Failed to save flash", "error", err)
	}
}

func (n *Notifier) Success(w http.ResponseWriter, r *http.Request, message string) {
	n.Add(w, r, NotifySuccess, message)
}

func (n *Notifier) Error(w http.ResponseWriter, r *http.Request, message string) {
	n.Add(w, r, NotifyError, message)
}

// Pop returns and clears pending notifications.
func (n *Notifier) Pop(w http.ResponseWriter, r *http.Request) []Notification {
	sess, err := n.store.Get(r, flashSession)
	if err != nil {
		// Undecodable cookie from an older key; start fresh
		slog.Debug("Discarding flash cookie", "error", err)
	}
	flashes := sess.Flashes()
	if len(flashes) == 0 {
		return nil
	}
	if err := sess.Save(r, w); err != nil {
		slog.Warn("Failed to clear flashes", "error", err)
	}
	out := make([]Notification, 0, len(flashes))
	for _, f := range flashes {
		if note, ok := f.(Notification); ok {
			out = append(out, note)
		}
	}
	return out
}
