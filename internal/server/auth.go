package server

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"strings"
	"sync"
	"time"
)

const (
	sessionCookieName = "nxtg_session"
	sessionDuration   = 30 * 24 * time.Hour // 30 days
)

// sessionStore holds active session tokens in memory.
// For a personal single-admin gallery this is perfectly sufficient.
type sessionStore struct {
	mu     sync.RWMutex
	tokens map[string]time.Time // token -> expiry
}

func newSessionStore() *sessionStore {
	return &sessionStore{tokens: make(map[string]time.Time)}
}

// create generates a new random session token, stores it, and returns it.
func (s *sessionStore) create() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	token := hex.EncodeToString(buf)
	expiry := time.Now().Add(sessionDuration)

	s.mu.Lock()
	s.tokens[token] = expiry
	s.mu.Unlock()
	return token, nil
}

// valid returns true if token exists and has not expired.
func (s *sessionStore) valid(token string) bool {
	s.mu.RLock()
	exp, ok := s.tokens[token]
	s.mu.RUnlock()
	if !ok {
		return false
	}
	if time.Now().After(exp) {
		s.mu.Lock()
		delete(s.tokens, token)
		s.mu.Unlock()
		return false
	}
	return true
}

// delete removes a session token (logout).
func (s *sessionStore) delete(token string) {
	s.mu.Lock()
	delete(s.tokens, token)
	s.mu.Unlock()
}

// authMiddleware returns a middleware that enforces session-cookie
// authentication on the admin surface. HTTP Basic Auth is accepted as a
// fallback for API clients. If password is empty, auth is disabled
// (development mode).
func authMiddleware(password string, sessions *sessionStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if password == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// 1. Check session cookie
			if c, err := r.Cookie(sessionCookieName); err == nil {
				if sessions.valid(c.Value) {
					next.ServeHTTP(w, r)
					return
				}
			}

			// 2. Fallback: HTTP Basic Auth (for scripts / API clients)
			if _, pass, ok := r.BasicAuth(); ok {
				if subtle.ConstantTimeCompare([]byte(pass), []byte(password)) == 1 {
					next.ServeHTTP(w, r)
					return
				}
			}

			// 3. Not authenticated – redirect browser requests to /login,
			//    return 401 for API requests.
			if !strings.HasPrefix(r.URL.Path, "/api/") && acceptsHTML(r.Header.Get("Accept")) {
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}

			w.Header().Set("WWW-Authenticate", `Basic realm="nxt-gallery"`)
			http.Error(w, "unauthorized", http.StatusUnauthorized)
		})
	}
}

// acceptsHTML reports whether an Accept header value includes text/html.
// An empty header counts as accepting HTML (plain browser navigation).
func acceptsHTML(accept string) bool {
	if accept == "" {
		return true
	}
	for _, part := range strings.Split(accept, ",") {
		mediaType := strings.TrimSpace(strings.SplitN(part, ";", 2)[0])
		if mediaType == "text/html" || mediaType == "text/*" || mediaType == "*/*" {
			return true
		}
	}
	return false
}
