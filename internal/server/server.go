// Package server implements the HTTP server and routing for nxt-gallery.
package server

import (
	"io/fs"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/banux/nxt-gallery/internal/fetch"
	"github.com/banux/nxt-gallery/internal/gallery"
	"github.com/banux/nxt-gallery/internal/scrape"
	"github.com/banux/nxt-gallery/internal/store/local"
)

// Options holds optional configuration for the Server.
type Options struct {
	// Password is the shared password for session authentication on the
	// admin surface. If empty, authentication is disabled (development).
	Password string

	// StaticFS is the filesystem containing the admin frontend assets.
	// If nil, the frontend is not served.
	StaticFS fs.FS

	// SiteTitle names the gallery in the Atom feed.
	SiteTitle string

	// RemoteImageURL maps an uploaded image file name to its publicly
	// fetchable raw-content URL. Nil when the local storage strategy is
	// active; the listing then carries no external image URLs.
	RemoteImageURL func(filename string) string
}

// Server is the HTTP server for the gallery.
type Server struct {
	router    *mux.Router
	extractor *scrape.Extractor
	fetcher   *fetch.Client
	publisher gallery.Publisher
	library   *local.Store
	sessions  *sessionStore
	opts      Options
}

// New creates and configures a Server.
// publisher is the storage strategy selected at startup (remote or local);
// library is the filesystem view of the site checkout used for listing and
// retraction regardless of which strategy publishes.
func New(extractor *scrape.Extractor, fetcher *fetch.Client, publisher gallery.Publisher, library *local.Store, opts Options) *Server {
	if opts.SiteTitle == "" {
		opts.SiteTitle = "nxt-gallery"
	}
	s := &Server{
		router:    mux.NewRouter(),
		extractor: extractor,
		fetcher:   fetcher,
		publisher: publisher,
		library:   library,
		sessions:  newSessionStore(),
		opts:      opts,
	}
	s.registerRoutes()
	return s
}

// ServeHTTP implements http.Handler, delegating to the mux router.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// registerRoutes sets up all endpoint routes.
func (s *Server) registerRoutes() {
	r := s.router
	auth := authMiddleware(s.opts.Password, s.sessions)

	// Always-public endpoints (no auth required)
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/login", s.handleLoginPage).Methods(http.MethodGet)
	r.HandleFunc("/login", s.handleLoginPost).Methods(http.MethodPost)
	r.HandleFunc("/logout", s.handleLogout).Methods(http.MethodPost, http.MethodGet)

	// The feed is public: the gallery content itself is public, only the
	// publishing surface is gated.
	r.HandleFunc("/feed.xml", s.handleFeed).Methods(http.MethodGet)

	// All other routes are wrapped with the auth middleware.
	protected := r.NewRoute().Subrouter()
	protected.Use(auth)

	// Publishing pipeline
	protected.HandleFunc("/api/preview", s.handlePreview).Methods(http.MethodPost)
	protected.HandleFunc("/api/publish", s.handlePublish).Methods(http.MethodPost)

	// Catalog listing and retraction
	protected.HandleFunc("/api/gallery", s.handleList).Methods(http.MethodGet)
	protected.HandleFunc("/api/delete", s.handleDelete).Methods(http.MethodPost)

	// Frontend static assets – serves index.html at / and any static files.
	// When StaticFS is nil (e.g. in tests), a catch-all 404 handler is
	// registered so that the auth middleware still runs for all paths.
	if s.opts.StaticFS != nil {
		fileServer := http.FileServer(http.FS(s.opts.StaticFS))
		protected.PathPrefix("/").Handler(fileServer)
	} else {
		protected.PathPrefix("/").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.NotFound(w, r)
		})
	}
}
