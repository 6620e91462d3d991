package server

import (
	"crypto/subtle"
	"encoding/json"
	"html/template"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/banux/nxt-gallery/internal/feed"
	"github.com/banux/nxt-gallery/internal/gallery"
)

// validSlug is the only shape of slug accepted on retraction. Anything
// else is rejected outright before touching the filesystem, which also
// rules out path traversal.
var validSlug = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// writeJSON writes v as a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// errorResponse is the JSON body for failed requests.
type errorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// handleHealth serves a simple health-check endpoint.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// previewRequest is the JSON body accepted by POST /api/preview.
type previewRequest struct {
	URL string `json:"url"`
}

// handlePreview scrapes preview metadata from a source URL.
// Extraction failures are soft: the response is still 200, with isError
// set so the frontend prompts for manual entry. Only a missing or
// malformed URL is a client error.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	var req previewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "URL is required"})
		return
	}
	if _, err := url.ParseRequestURI(req.URL); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "Invalid URL"})
		return
	}

	preview := s.extractor.Extract(r.Context(), req.URL)
	writeJSON(w, http.StatusOK, preview)
}

// publishRequest is the JSON body accepted by POST /api/publish.
type publishRequest struct {
	ImageURL    string `json:"imageUrl"`
	Title       string `json:"title"`
	Author      string `json:"author"`
	OriginalURL string `json:"originalUrl"`
}

// handlePublish downloads the chosen image and persists the gallery entry
// through the storage strategy selected at startup. Unlike extraction, a
// failed image download aborts the publish: a record without its image
// would violate the store invariant.
func (s *Server) handlePublish(w http.ResponseWriter, r *http.Request) {
	var req publishRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "Invalid JSON body"})
		return
	}
	if req.ImageURL == "" || req.Title == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "Missing required fields"})
		return
	}

	image, err := s.fetcher.Get(r.Context(), req.ImageURL)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Message: "Error processing upload",
			Error:   err.Error(),
		})
		return
	}

	author := strings.TrimPrefix(req.Author, "@")
	rec := gallery.NewRecord(req.Title, author, req.OriginalURL, time.Now())

	msg, err := s.publisher.Publish(r.Context(), rec, image)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Message: "Error processing upload",
			Error:   err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": msg})
}

// listItems returns the catalog, filling in external image URLs when the
// remote strategy is active.
func (s *Server) listItems() []gallery.Item {
	items := s.library.List()
	if s.opts.RemoteImageURL == nil {
		return items
	}
	for i, it := range items {
		filename := strings.TrimPrefix(it.Image, "../../assets/images/uploads/")
		if filename == "" || strings.Contains(filename, "/") {
			continue
		}
		items[i].ImageURL = s.opts.RemoteImageURL(filename)
	}
	return items
}

// handleList serves the catalog as JSON. The listing is best-effort
// display data and never fails: an unreadable store yields an empty list.
func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"items": s.listItems()})
}

// deleteRequest is the JSON body accepted by POST /api/delete.
type deleteRequest struct {
	Slug string `json:"slug"`
}

// handleDelete retracts a gallery entry by slug. Deleting an entry that
// does not exist succeeds: the desired end state (absence) already holds.
func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	var req deleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Slug == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "Slug is required"})
		return
	}
	if !validSlug.MatchString(req.Slug) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "Invalid slug"})
		return
	}

	if err := s.library.Delete(r.Context(), req.Slug); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Message: "Error deleting item",
			Error:   err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Deleted successfully"})
}

// handleFeed serves the Atom feed of recent gallery entries.
func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	f := feed.New(s.opts.SiteTitle, "/feed.xml", s.listItems())
	data, err := f.MarshalToXML()
	if err != nil {
		http.Error(w, "feed serialization error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", feed.MIMEAtomFeed+"; charset=utf-8")
	_, _ = w.Write(data)
}

// handleLoginPage serves the GET /login HTML form.
func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	// If auth is disabled, redirect straight to home.
	if s.opts.Password == "" {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	// If already logged in, redirect to home.
	if c, err := r.Cookie(sessionCookieName); err == nil && s.sessions.valid(c.Value) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	redirect := r.URL.Query().Get("redirect")
	if redirect == "" {
		redirect = "/"
	}
	s.renderLoginPage(w, redirect, "")
}

// handleLoginPost processes the POST /login form submission.
func (s *Server) handleLoginPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	password := r.FormValue("password")
	redirect := r.FormValue("redirect")
	if redirect == "" || redirect[0] != '/' {
		redirect = "/"
	}

	// Constant-time password comparison to prevent timing attacks.
	passwordOK := s.opts.Password == "" ||
		(subtle.ConstantTimeCompare([]byte(password), []byte(s.opts.Password)) == 1)

	if passwordOK {
		token, err := s.sessions.create()
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		http.SetCookie(w, &http.Cookie{
			Name:     sessionCookieName,
			Value:    token,
			Path:     "/",
			MaxAge:   int(sessionDuration.Seconds()),
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
		http.Redirect(w, r, redirect, http.StatusSeeOther)
		return
	}

	// Wrong password – re-render the form with an error.
	s.renderLoginPage(w, redirect, "Incorrect password. Please try again.")
}

// handleLogout clears the session cookie and redirects to /login.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(sessionCookieName); err == nil {
		s.sessions.delete(c.Value)
	}
	http.SetCookie(w, &http.Cookie{
		Name:    sessionCookieName,
		Value:   "",
		Path:    "/",
		MaxAge:  -1,
		Expires: time.Unix(0, 0),
	})
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// loginPageHTML is the standalone login form served at GET /login.
// It is self-contained so it works even when the admin SPA cannot be
// served yet (not authenticated).
const loginPageHTML = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8"/>
  <meta name="viewport" content="width=device-width,initial-scale=1.0"/>
  <title>Login – nxt-gallery</title>
  <style>
    body { min-height: 100vh; margin: 0; display: flex; align-items: center; justify-content: center;
           background: #f3f4f6; font-family: system-ui, sans-serif; }
    .card { background: #fff; border-radius: 1rem; box-shadow: 0 4px 12px rgba(0,0,0,.08);
            padding: 2rem; width: 100%; max-width: 20rem; }
    h1 { font-size: 1.25rem; margin: 0 0 .25rem; text-align: center; }
    p  { color: #6b7280; font-size: .875rem; margin: 0 0 1.5rem; text-align: center; }
    .error { background: #fef2f2; border: 1px solid #fecaca; color: #b91c1c;
             border-radius: .5rem; font-size: .875rem; padding: .5rem .75rem; margin-bottom: 1rem; }
    input { width: 100%; box-sizing: border-box; padding: .5rem .75rem; font-size: .875rem;
            border: 1px solid #d1d5db; border-radius: .5rem; margin-bottom: 1rem; }
    button { width: 100%; padding: .5rem 1rem; background: #2563eb; color: #fff; border: 0;
             border-radius: .5rem; font-size: .875rem; font-weight: 500; cursor: pointer; }
    button:hover { background: #1d4ed8; }
  </style>
</head>
<body>
  <div class="card">
    <h1>nxt-gallery</h1>
    <p>Enter your password to continue</p>
    {{if .Error}}<div class="error">{{.Error}}</div>{{end}}
    <form method="POST" action="/login">
      <input type="hidden" name="redirect" value="{{.Redirect}}"/>
      <input id="password" name="password" type="password" autocomplete="current-password"
             autofocus required placeholder="Password"/>
      <button type="submit">Sign in</button>
    </form>
  </div>
</body>
</html>`

// renderLoginPage writes the login HTML page with the given error message.
func (s *Server) renderLoginPage(w http.ResponseWriter, redirect, errMsg string) {
	type data struct {
		Error    string
		Redirect string
	}
	tmpl, err := template.New("login").Parse(loginPageHTML)
	if err != nil {
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if errMsg != "" {
		w.WriteHeader(http.StatusUnauthorized)
	}
	_ = tmpl.Execute(w, data{Error: errMsg, Redirect: redirect})
}
