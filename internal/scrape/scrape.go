// Package scrape implements metadata extraction for the publishing
// pipeline: given a source URL it fetches the page (via a mirror host for
// platforms that hide their Open Graph tags behind JavaScript) and derives
// a best-effort image/title/author preview.
package scrape

import (
	"bytes"
	"context"
	"log"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/banux/nxt-gallery/internal/fetch"
	"github.com/banux/nxt-gallery/internal/gallery"
)

// Heuristic patterns evaluated against the original (non-rewritten) URL
// and the Open Graph title.
var (
	twitterURLPattern   = regexp.MustCompile(`(?:twitter\.com|x\.com)/([A-Za-z0-9_]+)/status`)
	instagramURLPattern = regexp.MustCompile(`instagram\.com/([A-Za-z0-9_.]+)`)
	instagramHandle     = regexp.MustCompile(`@?[A-Za-z0-9_.]+`)
	genericHandle       = regexp.MustCompile(`@([A-Za-z0-9_]+)`)
	hashtag             = regexp.MustCompile(`#\w+`)
	whitespace          = regexp.MustCompile(`\s+`)
)

// Extractor scrapes preview metadata from third-party pages.
type Extractor struct {
	client *fetch.Client
}

// NewExtractor creates an Extractor that fetches pages through client.
func NewExtractor(client *fetch.Client) *Extractor {
	return &Extractor{client: client}
}

// Extract fetches rawURL (possibly via a mirror host) and derives a
// Preview. Extraction never fails hard: an unreachable page, a parse
// error, or a page without a usable image all yield a Preview with
// IsError set, leaving the caller to prompt for manual entry.
func (e *Extractor) Extract(ctx context.Context, rawURL string) gallery.Preview {
	fetchURL := rewriteURL(rawURL)
	log.Printf("[preview] original URL: %s", rawURL)
	log.Printf("[preview] fetch URL: %s", fetchURL)

	body, err := e.client.Get(ctx, fetchURL)
	if err != nil {
		log.Printf("[preview] fetch failed: %v", err)
		return softFailure(rawURL)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		log.Printf("[preview] parse failed: %v", err)
		return softFailure(rawURL)
	}

	return extract(rawURL, doc)
}

// softFailure is the empty-fields soft-failure shape returned when the
// page could not be fetched or parsed at all.
func softFailure(rawURL string) gallery.Preview {
	return gallery.Preview{
		OriginalURL: rawURL,
		IsError:     true,
		Message:     "Failed to fetch metadata. Please enter details manually.",
	}
}

// extract derives the preview from a parsed document. originalURL is the
// user-submitted URL; platform heuristics match against it, never against
// the mirror URL actually fetched.
func extract(originalURL string, doc *goquery.Document) gallery.Preview {
	image := firstAttr(doc,
		attrSource{`meta[property="og:image"]`, "content"},
		attrSource{`meta[name="twitter:image"]`, "content"},
		attrSource{`meta[name="twitter:image:src"]`, "content"},
		attrSource{`link[rel="image_src"]`, "href"},
	)

	ogDescription, _ := doc.Find(`meta[property="og:description"]`).Attr("content")
	ogTitle, _ := doc.Find(`meta[property="og:title"]`).Attr("content")
	pageTitle := doc.Find("title").First().Text()
	siteName, _ := doc.Find(`meta[property="og:site_name"]`).Attr("content")
	metaAuthor, _ := doc.Find(`meta[name="author"]`).Attr("content")

	title := "Untitled"
	author := "Unknown"

	switch {
	case twitterURLPattern.MatchString(originalURL):
		// The URL path segment before /status is always the posting
		// account, regardless of what the mirror put in its tags.
		author = twitterURLPattern.FindStringSubmatch(originalURL)[1]
		title = cleanDescription(ogDescription)
		if title == "" {
			title = "Tweet by @" + author
		}

	case instagramURLPattern.MatchString(originalURL):
		if m := instagramHandle.FindString(ogTitle); m != "" {
			author = strings.TrimPrefix(m, "@")
		} else {
			author = instagramURLPattern.FindStringSubmatch(originalURL)[1]
		}
		title = cleanDescription(ogDescription)
		if title == "" {
			title = ogTitle
		}
		if title == "" {
			title = "Post by @" + author
		}

	default:
		if m := genericHandle.FindStringSubmatch(ogTitle); m != nil {
			author = m[1]
			title = ogDescription
			if title == "" {
				title = "Tweet by @" + author
			}
		} else {
			title = firstNonEmpty(ogDescription, ogTitle, strings.TrimSpace(pageTitle), "Untitled")
			author = firstNonEmpty(metaAuthor, siteName, "Unknown")
		}
	}

	author = strings.TrimPrefix(author, "@")

	log.Printf("[preview] extracted image=%q title=%q author=%q", image, title, author)

	if image == "" {
		// Soft failure: keep whatever was derived, but clear values
		// that are still the generic placeholders.
		if title == "Untitled" {
			title = ""
		}
		if author == "Unknown" {
			author = ""
		}
		return gallery.Preview{
			OriginalURL: originalURL,
			Title:       title,
			Author:      author,
			IsError:     true,
			Message:     "Could not extract image. Please enter manually.",
		}
	}

	return gallery.Preview{
		ImageURL:    image,
		Title:       title,
		Author:      author,
		OriginalURL: originalURL,
	}
}

// attrSource names a selector/attribute pair to probe for a value.
type attrSource struct {
	selector string
	attr     string
}

// firstAttr returns the first non-empty attribute value among sources,
// probed in order.
func firstAttr(doc *goquery.Document, sources ...attrSource) string {
	for _, s := range sources {
		if v, ok := doc.Find(s.selector).Attr(s.attr); ok && v != "" {
			return v
		}
	}
	return ""
}

// cleanDescription strips hashtags from an Open Graph description and
// collapses runs of whitespace. Descriptions of three characters or fewer
// are treated as empty; the mirrors emit stub descriptions that short.
func cleanDescription(desc string) string {
	if len(desc) <= 3 {
		return ""
	}
	out := hashtag.ReplaceAllString(desc, "")
	out = whitespace.ReplaceAllString(out, " ")
	return strings.TrimSpace(out)
}

// firstNonEmpty returns the first non-empty string among vals.
func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
