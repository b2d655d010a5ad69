package web

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const sessionCookieName = "taskline_session"

// flashStore keeps one-shot messages per browser session.
type flashStore struct {
	mu   sync.Mutex
	msgs map[string]string
}

func newFlashStore() *flashStore {
	return &flashStore{msgs: map[string]string{}}
}

func (f *flashStore) set(sessionID, msg string) {
	if sessionID == "" {
		return
	}
	f.mu.Lock()
	f.msgs[sessionID] = msg
	f.mu.Unlock()
}

// take returns and clears the message for sessionID.
func (f *flashStore) take(sessionID string) string {
	if sessionID == "" {
		return ""
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	msg := f.msgs[sessionID]
	delete(f.msgs, sessionID)
	return msg
}

// sessionID returns the browser session id, issuing a cookie when there is none.
func sessionID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(sessionCookieName); err == nil {
		if id, err := uuid.Parse(strings.TrimSpace(c.Value)); err == nil {
			return id.String()
		}
	}
	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(30 * 24 * time.Hour),
	})
	return id
}
