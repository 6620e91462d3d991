package gallery

import (
	"bytes"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// delimiter separates the YAML frontmatter block from the document body.
var delimiter = []byte("---\n")

// frontMatter is the on-disk YAML representation of a Record. Field order
// here is the field order in the written document.
type frontMatter struct {
	Title       string    `yaml:"title"`
	Description string    `yaml:"description"`
	Image       string    `yaml:"image"`
	OriginalURL string    `yaml:"originalUrl"`
	Author      string    `yaml:"author"`
	Date        time.Time `yaml:"date"`
}

// EncodeRecord renders rec as a markdown document with YAML frontmatter.
func EncodeRecord(rec Record) ([]byte, error) {
	fm := frontMatter{
		Title:       rec.Title,
		Description: rec.Description,
		Image:       rec.ImagePath,
		OriginalURL: rec.OriginalURL,
		Author:      rec.Author,
		Date:        rec.CreatedAt.UTC(),
	}
	body, err := yaml.Marshal(fm)
	if err != nil {
		return nil, fmt.Errorf("marshal frontmatter: %w", err)
	}
	var buf bytes.Buffer
	buf.Grow(len(body) + 2*len(delimiter))
	buf.Write(delimiter)
	buf.Write(body)
	buf.Write(delimiter)
	return buf.Bytes(), nil
}

// DecodeRecord parses a record document for the given slug. Parsing is
// deliberately tolerant: a missing or malformed frontmatter block and any
// absent field fall back to placeholders (slug for the title, "Unknown"
// for the author, empty strings otherwise) so that one bad document never
// fails a whole listing.
func DecodeRecord(slug string, data []byte) Record {
	rec := Record{Slug: slug}

	var fm frontMatter
	if block, ok := frontMatterBlock(data); ok {
		// Unmarshal errors leave fm at its zero value, which the
		// placeholder rules below already handle.
		_ = yaml.Unmarshal(block, &fm)
	}

	rec.Title = fm.Title
	if rec.Title == "" {
		rec.Title = slug
	}
	rec.Author = fm.Author
	if rec.Author == "" {
		rec.Author = "Unknown"
	}
	rec.ImagePath = fm.Image
	rec.OriginalURL = fm.OriginalURL
	rec.Description = fm.Description
	rec.CreatedAt = fm.Date
	return rec
}

// frontMatterBlock extracts the YAML block between the leading and
// trailing "---" delimiters. Returns false if the document has no
// well-formed frontmatter block.
func frontMatterBlock(data []byte) ([]byte, bool) {
	if !bytes.HasPrefix(data, delimiter) {
		return nil, false
	}
	rest := data[len(delimiter):]
	end := bytes.Index(rest, delimiter)
	if end < 0 {
		// Tolerate a trailing delimiter without a final newline.
		if bytes.HasSuffix(rest, []byte("---")) {
			return rest[:len(rest)-3], true
		}
		return nil, false
	}
	return rest[:end], true
}
