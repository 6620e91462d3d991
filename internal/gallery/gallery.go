// Package gallery provides the core domain types for nxt-gallery.
// It defines the persisted record, the transient scrape preview, and the
// Publisher interface that storage backends implement.
package gallery

import (
	"context"
	"time"
)

// ImageDir is the path of the image directory inside the site repository.
const ImageDir = "src/assets/images/uploads"

// ContentDir is the path of the record directory inside the site repository.
const ContentDir = "src/content/gallery"

// Record represents a persisted gallery entry: one frontmatter document
// plus one image file, both keyed by Slug.
type Record struct {
	// Slug is the unique identifier, derived once at creation and
	// immutable afterwards. It names both files in the store.
	Slug string

	// Title is the display title, human-supplied or scraped.
	Title string

	// Author is the display name or handle, without a leading "@".
	Author string

	// OriginalURL is the user-submitted source URL (not the mirror URL
	// used internally for scraping).
	OriginalURL string

	// ImagePath is the path to the stored image relative to the record
	// document. Always written with a .jpg extension regardless of the
	// source content type.
	ImagePath string

	// Description is derived from the author ("Image by {author}").
	Description string

	// CreatedAt is set at publish time.
	CreatedAt time.Time
}

// NewRecord builds a Record for the given fields, allocating a fresh slug
// and filling in the derived description and image path.
func NewRecord(title, author, originalURL string, now time.Time) Record {
	slug := NewSlug(title, now)
	return Record{
		Slug:        slug,
		Title:       title,
		Author:      author,
		OriginalURL: originalURL,
		ImagePath:   "../../assets/images/uploads/" + slug + ".jpg",
		Description: "Image by " + author,
		CreatedAt:   now,
	}
}

// ImageFilename returns the file name of the record's image ("{slug}.jpg").
func (r Record) ImageFilename() string {
	return r.Slug + ".jpg"
}

// Preview is the transient result of metadata extraction. It is produced
// per request and never persisted.
type Preview struct {
	// ImageURL may be empty if extraction failed.
	ImageURL string `json:"imageUrl"`

	// Title and Author are best-effort values; empty when extraction
	// found nothing usable.
	Title  string `json:"title"`
	Author string `json:"author"`

	// OriginalURL echoes the submitted source URL.
	OriginalURL string `json:"originalUrl"`

	// IsError signals a soft failure: the caller should prompt for
	// manual entry instead of treating the request as failed.
	IsError bool `json:"isError"`

	// Message carries a human-readable hint on soft failure.
	Message string `json:"message,omitempty"`
}

// Item is a catalog listing entry as returned to the frontend.
type Item struct {
	Slug   string `json:"slug"`
	Title  string `json:"title"`
	Author string `json:"author"`

	// Image is the image path relative to the record document.
	Image string `json:"image"`

	// ImageURL is the externally reachable raw-content URL for the
	// image. Only populated when the remote store is active.
	ImageURL string `json:"imageUrl"`

	OriginalURL string `json:"originalUrl"`
}

// Publisher is the interface that storage backends implement to persist a
// record and its image as one logical unit under the record's slug.
// Implementations return a human-readable message naming the backend that
// handled the request.
type Publisher interface {
	Publish(ctx context.Context, rec Record, image []byte) (string, error)
}
