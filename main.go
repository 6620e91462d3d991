package main

import (
	"log"
	"net/http"
	"time"

	"github.com/google/go-github/v66/github"
	"github.com/joho/godotenv"

	"github.com/banux/nxt-gallery/internal/config"
	"github.com/banux/nxt-gallery/internal/fetch"
	"github.com/banux/nxt-gallery/internal/gallery"
	"github.com/banux/nxt-gallery/internal/scrape"
	"github.com/banux/nxt-gallery/internal/server"
	"github.com/banux/nxt-gallery/internal/store/local"
	"github.com/banux/nxt-gallery/internal/store/remote"
	"github.com/banux/nxt-gallery/web"
)

func main() {
	// Load a .env file if present; real environment variables win.
	_ = godotenv.Load()

	cfg, err := config.Load(config.FindConfigFile())
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	if cfg.AdminPassword == "" {
		log.Printf("WARNING: admin password is not set – authentication is disabled")
	}

	fetcher, err := fetch.New(cfg.ProxyAddr)
	if err != nil {
		log.Fatalf("http client error: %v", err)
	}
	extractor := scrape.NewExtractor(fetcher)

	// The local store always exists: listing and retraction operate on the
	// site checkout even when publishing goes to GitHub.
	library := local.New(cfg.ContentDir, cfg.AssetsDir, cfg.CacheDir)

	var publisher gallery.Publisher
	var remoteImageURL func(filename string) string
	if cfg.RemoteConfigured() {
		client := github.NewClient(&http.Client{Timeout: 30 * time.Second}).
			WithAuthToken(cfg.GitHubToken)
		publisher = remote.New(client, cfg.GitHubOwner, cfg.GitHubRepo, cfg.GitHubBranch)
		remoteImageURL = func(filename string) string {
			return remote.RawURL(cfg.GitHubOwner, cfg.GitHubRepo, cfg.GitHubBranch, filename)
		}
		log.Printf("publishing to github.com/%s/%s@%s", cfg.GitHubOwner, cfg.GitHubRepo, cfg.GitHubBranch)
	} else {
		if cfg.Production {
			log.Fatalf("production mode requires GitHub credentials (token, owner, repo)")
		}
		publisher = library
		log.Printf("publishing to local filesystem (%s)", cfg.ContentDir)
	}

	opts := server.Options{
		Password:       cfg.AdminPassword,
		StaticFS:       web.FS,
		RemoteImageURL: remoteImageURL,
	}
	srv := server.New(extractor, fetcher, publisher, library, opts)

	log.Printf("nxt-gallery starting on %s", cfg.ListenAddr)
	log.Printf("Web UI available at http://localhost%s/", cfg.ListenAddr)
	if err := http.ListenAndServe(cfg.ListenAddr, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
