package scrape

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"github.com/banux/nxt-gallery/internal/fetch"
)

// parseHTML builds a goquery document from an HTML fixture.
func parseHTML(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}
	return doc
}

func TestExtractTwitterAuthorFromURL(t *testing.T) {
	// The OG tags claim a different author; the URL path must win.
	html := `<html><head>
		<meta property="og:image" content="https://img.example/x.jpg">
		<meta property="og:title" content="Somebody Else (@mallory) on X">
		<meta property="og:description" content="A sunny day #weather  #nice">
	</head></html>`
	doc := parseHTML(t, html)

	p := extract("https://x.com/alice/status/123", doc)
	if p.IsError {
		t.Fatalf("unexpected soft failure: %+v", p)
	}
	if p.Author != "alice" {
		t.Errorf("author: got %q, want alice", p.Author)
	}
	if p.Title != "A sunny day" {
		t.Errorf("title: got %q, want hashtags stripped", p.Title)
	}
	if p.ImageURL != "https://img.example/x.jpg" {
		t.Errorf("image: got %q", p.ImageURL)
	}
}

func TestExtractTwitterFallbackTitle(t *testing.T) {
	html := `<html><head>
		<meta property="og:image" content="https://img.example/x.jpg">
		<meta property="og:description" content="#a #b">
	</head></html>`
	doc := parseHTML(t, html)

	p := extract("https://twitter.com/bob/status/9", doc)
	if p.Title != "Tweet by @bob" {
		t.Errorf("title: got %q, want fallback", p.Title)
	}
}

func TestExtractTwitterCardImageOnly(t *testing.T) {
	// No og:image; the twitter:image meta tag must still be picked up.
	html := `<html><head>
		<meta name="twitter:image" content="https://img.example/card.jpg">
		<meta property="og:title" content="Some page">
	</head></html>`
	doc := parseHTML(t, html)

	p := extract("https://example.com/page", doc)
	if p.IsError {
		t.Fatalf("unexpected soft failure: %+v", p)
	}
	if p.ImageURL != "https://img.example/card.jpg" {
		t.Errorf("image: got %q, want twitter card image", p.ImageURL)
	}
}

func TestExtractImagePriorityOrder(t *testing.T) {
	html := `<html><head>
		<meta name="twitter:image" content="https://img.example/card.jpg">
		<meta property="og:image" content="https://img.example/og.jpg">
		<link rel="image_src" href="https://img.example/legacy.jpg">
	</head></html>`
	doc := parseHTML(t, html)

	p := extract("https://example.com/page", doc)
	if p.ImageURL != "https://img.example/og.jpg" {
		t.Errorf("image: got %q, want og:image to win", p.ImageURL)
	}
}

func TestExtractNoImageSoftFailure(t *testing.T) {
	html := `<html><head><title>A page with nothing useful</title></head></html>`
	doc := parseHTML(t, html)

	p := extract("https://example.com/page", doc)
	if !p.IsError {
		t.Fatal("expected IsError for image-less page")
	}
	if p.ImageURL != "" {
		t.Errorf("image: got %q, want empty", p.ImageURL)
	}
	// The page title was real information, so it is kept.
	if p.Title != "A page with nothing useful" {
		t.Errorf("title: got %q", p.Title)
	}
	// The author was never derived, so the placeholder is cleared.
	if p.Author != "" {
		t.Errorf("author: got %q, want empty", p.Author)
	}
}

func TestExtractNoImageClearsPlaceholders(t *testing.T) {
	doc := parseHTML(t, `<html><head></head></html>`)

	p := extract("https://example.com/empty", doc)
	if !p.IsError {
		t.Fatal("expected IsError")
	}
	if p.Title != "" || p.Author != "" || p.ImageURL != "" {
		t.Errorf("expected empty fields, got %+v", p)
	}
}

func TestExtractInstagramHandleFromTitle(t *testing.T) {
	html := `<html><head>
		<meta property="og:image" content="https://img.example/ig.jpg">
		<meta property="og:title" content="@real.artist on Instagram">
		<meta property="og:description" content="New piece #art">
	</head></html>`
	doc := parseHTML(t, html)

	p := extract("https://www.instagram.com/someone/p/abc/", doc)
	if p.Author != "real.artist" {
		t.Errorf("author: got %q, want real.artist", p.Author)
	}
	if p.Title != "New piece" {
		t.Errorf("title: got %q", p.Title)
	}
}

func TestExtractGenericHandleInTitle(t *testing.T) {
	html := `<html><head>
		<meta property="og:image" content="https://img.example/g.jpg">
		<meta property="og:title" content="Post by @carol">
		<meta property="og:description" content="Long description here">
	</head></html>`
	doc := parseHTML(t, html)

	p := extract("https://gallery.example/post/1", doc)
	if p.Author != "carol" {
		t.Errorf("author: got %q, want carol", p.Author)
	}
	if p.Title != "Long description here" {
		t.Errorf("title: got %q", p.Title)
	}
}

func TestExtractGenericFallbacks(t *testing.T) {
	html := `<html><head>
		<meta property="og:image" content="https://img.example/g.jpg">
		<meta property="og:site_name" content="Example Gallery">
		<title>Fallback Page Title</title>
	</head></html>`
	doc := parseHTML(t, html)

	p := extract("https://gallery.example/post/2", doc)
	if p.Title != "Fallback Page Title" {
		t.Errorf("title: got %q", p.Title)
	}
	if p.Author != "Example Gallery" {
		t.Errorf("author: got %q", p.Author)
	}
}

func TestExtractorFetchesPage(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><head>
			<meta property="og:image" content="https://img.example/live.jpg">
			<meta property="og:title" content="Live Page">
		</head></html>`))
	}))
	defer ts.Close()

	client, err := fetch.New("")
	if err != nil {
		t.Fatalf("fetch.New: %v", err)
	}
	e := NewExtractor(client)

	p := e.Extract(context.Background(), ts.URL+"/post")
	if p.IsError {
		t.Fatalf("unexpected soft failure: %+v", p)
	}
	if p.ImageURL != "https://img.example/live.jpg" {
		t.Errorf("image: got %q", p.ImageURL)
	}
	if p.OriginalURL != ts.URL+"/post" {
		t.Errorf("originalUrl: got %q", p.OriginalURL)
	}
}

func TestExtractorUnreachablePage(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer ts.Close()

	client, _ := fetch.New("")
	e := NewExtractor(client)

	p := e.Extract(context.Background(), ts.URL)
	if !p.IsError {
		t.Fatal("expected soft failure for 404 page")
	}
	if p.ImageURL != "" || p.Title != "" || p.Author != "" {
		t.Errorf("expected empty fields, got %+v", p)
	}
}
