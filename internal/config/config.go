// Package config handles loading application configuration from a YAML file
// with environment variable overrides.
//
// Config file format (nxt-gallery.yaml):
//
//	listen_addr: ":8080"
//	admin_password: "mysecretpassword"
//	github_owner: "someone"
//	github_repo: "gallery-site"
//
// Configuration sources, in increasing priority order:
//  1. Built-in defaults
//  2. YAML config file (located by FindConfigFile or explicit path)
//  3. Environment variables (LISTEN_ADDR, ADMIN_PASSWORD, GITHUB_TOKEN, ...)
//
// The result is a single immutable struct built once in main and passed
// explicitly into each component; nothing reads the environment after
// startup.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	// ListenAddr is the TCP address for the HTTP server (e.g. ":8080").
	ListenAddr string `yaml:"listen_addr"`

	// AdminPassword is the shared password gating the admin API.
	// Leave empty to disable authentication (development use only).
	AdminPassword string `yaml:"admin_password"`

	// GitHubToken, GitHubOwner and GitHubRepo select the remote storage
	// strategy. When all three are set, publishes become commits on the
	// site repository; otherwise the local filesystem strategy is used.
	GitHubToken string `yaml:"github_token"`
	GitHubOwner string `yaml:"github_owner"`
	GitHubRepo  string `yaml:"github_repo"`

	// GitHubBranch is the branch publishes are committed to.
	GitHubBranch string `yaml:"github_branch"`

	// ProxyAddr is an optional HTTP(S) proxy for page scraping and image
	// downloads. The GitHub API is never proxied.
	ProxyAddr string `yaml:"https_proxy"`

	// Production, when true, makes an unconfigured remote store a startup
	// error instead of silently falling back to the local filesystem.
	Production bool `yaml:"production"`

	// ContentDir and AssetsDir are where records and images live on the
	// local filesystem, laid out like the site repository.
	ContentDir string `yaml:"content_dir"`
	AssetsDir  string `yaml:"assets_dir"`

	// CacheDir is the site generator's derived content cache, removed on
	// retraction so a stale index cannot resurrect deleted entries.
	// Empty disables cache invalidation.
	CacheDir string `yaml:"cache_dir"`
}

// RemoteConfigured reports whether the remote storage strategy has all the
// credentials it needs.
func (c Config) RemoteConfigured() bool {
	return c.GitHubToken != "" && c.GitHubOwner != "" && c.GitHubRepo != ""
}

// Default returns a Config populated with sensible defaults.
func Default() Config {
	return Config{
		ListenAddr:   ":8080",
		GitHubBranch: "main",
		ContentDir:   "src/content/gallery",
		AssetsDir:    "src/assets/images/uploads",
		CacheDir:     ".cache",
	}
}

// Load reads configuration from the YAML file at path (if non-empty), then
// applies environment variable overrides on top. Returns the merged Config.
// If path is empty, only defaults and environment variables are applied.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %q: %w", path, err)
		}
	}

	// Environment variables always override file values so that Docker /
	// systemd overrides still work even when a config file is present.
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv("ADMIN_PASSWORD"); v != "" {
		cfg.AdminPassword = v
	}
	if v := os.Getenv("GITHUB_TOKEN"); v != "" {
		cfg.GitHubToken = v
	}
	if v := os.Getenv("GITHUB_OWNER"); v != "" {
		cfg.GitHubOwner = v
	}
	if v := os.Getenv("GITHUB_REPO"); v != "" {
		cfg.GitHubRepo = v
	}
	if v := os.Getenv("GITHUB_BRANCH"); v != "" {
		cfg.GitHubBranch = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.ProxyAddr = v
	}
	if v := os.Getenv("PRODUCTION"); v != "" {
		cfg.Production = v == "1" || v == "true"
	}
	if v := os.Getenv("CONTENT_DIR"); v != "" {
		cfg.ContentDir = v
	}
	if v := os.Getenv("ASSETS_DIR"); v != "" {
		cfg.AssetsDir = v
	}
	if v := os.Getenv("CACHE_DIR"); v != "" {
		cfg.CacheDir = v
	}

	return cfg, nil
}

// FindConfigFile returns the path to the first config file found in the
// standard search order, or "" if none is found.
//
// Search order:
//  1. NXT_GALLERY_CONFIG environment variable (explicit override)
//  2. ./nxt-gallery.yaml (current working directory)
//  3. ~/.config/nxt-gallery/config.yaml (XDG user config)
func FindConfigFile() string {
	// 1. Explicit path via environment variable.
	if p := os.Getenv("NXT_GALLERY_CONFIG"); p != "" {
		return p
	}

	// 2. Config file in the current working directory.
	if _, err := os.Stat("nxt-gallery.yaml"); err == nil {
		return "nxt-gallery.yaml"
	}

	// 3. XDG user config directory.
	if home, err := os.UserHomeDir(); err == nil {
		p := filepath.Join(home, ".config", "nxt-gallery", "config.yaml")
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}
