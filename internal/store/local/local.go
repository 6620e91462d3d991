// Package local implements the filesystem storage strategy for nxt-gallery.
// It writes records and images into the site repository checkout, lists the
// catalog by scanning the content directory, and handles retraction.
//
// Publishing through this backend is the development fallback: the image
// and the record are two separate writes, so a crash between them can
// leave an orphaned image. The remote backend has no such window.
package local

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/banux/nxt-gallery/internal/gallery"
)

// Store is a filesystem-backed gallery store rooted at a site checkout.
type Store struct {
	contentDir string // record documents ({slug}.md)
	assetsDir  string // image files ({slug}.jpg)
	cacheDir   string // site generator's derived content cache
}

// New creates a Store over the given directories. cacheDir may be empty,
// in which case retraction skips cache invalidation.
func New(contentDir, assetsDir, cacheDir string) *Store {
	return &Store{
		contentDir: contentDir,
		assetsDir:  assetsDir,
		cacheDir:   cacheDir,
	}
}

// Publish writes the image and then the record document, creating the
// target directories as needed. It implements gallery.Publisher.
func (s *Store) Publish(ctx context.Context, rec gallery.Record, image []byte) (string, error) {
	if err := os.MkdirAll(s.assetsDir, 0755); err != nil {
		return "", fmt.Errorf("create assets dir: %w", err)
	}
	if err := os.MkdirAll(s.contentDir, 0755); err != nil {
		return "", fmt.Errorf("create content dir: %w", err)
	}

	imagePath := filepath.Join(s.assetsDir, rec.ImageFilename())
	if err := os.WriteFile(imagePath, image, 0644); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}

	doc, err := gallery.EncodeRecord(rec)
	if err != nil {
		return "", err
	}
	recordPath := filepath.Join(s.contentDir, rec.Slug+".md")
	if err := os.WriteFile(recordPath, doc, 0644); err != nil {
		return "", fmt.Errorf("write record: %w", err)
	}

	log.Printf("[publish] saved %s to local filesystem", rec.Slug)
	return "Saved to local filesystem.", nil
}

// List returns all records in the content directory, newest first.
// Slugs embed a millisecond timestamp suffix, so descending lexicographic
// slug order approximates publication order. The listing is best-effort
// display data: a missing or unreadable directory yields an empty list,
// and individual unreadable documents are skipped.
func (s *Store) List() []gallery.Item {
	entries, err := os.ReadDir(s.contentDir)
	if err != nil {
		log.Printf("[list] read content dir: %v", err)
		return []gallery.Item{}
	}

	items := make([]gallery.Item, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".md") {
			continue
		}
		slug := strings.TrimSuffix(name, ".md")
		data, err := os.ReadFile(filepath.Join(s.contentDir, name))
		if err != nil {
			log.Printf("[list] read %s: %v", name, err)
			continue
		}
		rec := gallery.DecodeRecord(slug, data)
		items = append(items, gallery.Item{
			Slug:        rec.Slug,
			Title:       rec.Title,
			Author:      rec.Author,
			Image:       rec.ImagePath,
			OriginalURL: rec.OriginalURL,
		})
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].Slug > items[j].Slug
	})
	return items
}

// Delete removes the record and image for slug. The desired end state is
// absence, so files that are already missing are logged and tolerated.
// The image is tried under both supported extensions. Any derived content
// cache is removed so a later listing cannot resurrect the entry.
//
// The caller is responsible for slug sanitization; Delete itself never
// joins anything but "{slug}.{ext}" onto its configured directories.
func (s *Store) Delete(ctx context.Context, slug string) error {
	recordPath := filepath.Join(s.contentDir, slug+".md")
	if err := os.Remove(recordPath); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("delete record: %w", err)
		}
		log.Printf("[delete] record not found: %s", recordPath)
	} else {
		log.Printf("[delete] removed %s", recordPath)
	}

	removed := false
	for _, ext := range []string{".jpg", ".png"} {
		imagePath := filepath.Join(s.assetsDir, slug+ext)
		if err := os.Remove(imagePath); err == nil {
			log.Printf("[delete] removed %s", imagePath)
			removed = true
			break
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("delete image: %w", err)
		}
	}
	if !removed {
		log.Printf("[delete] image not found for %s", slug)
	}

	if s.cacheDir != "" {
		if err := os.RemoveAll(s.cacheDir); err != nil {
			log.Printf("[delete] clear content cache: %v", err)
		}
	}
	return nil
}
