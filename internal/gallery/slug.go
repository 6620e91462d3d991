package gallery

import (
	"strconv"
	"strings"
	"time"
)

// Slugify lowercases title, collapses every run of characters outside
// [a-z0-9] into a single hyphen, and trims leading/trailing hyphens.
func Slugify(title string) string {
	var b strings.Builder
	b.Grow(len(title))
	hyphen := false
	for _, r := range strings.ToLower(title) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if hyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			hyphen = false
			b.WriteRune(r)
			continue
		}
		hyphen = true
	}
	return b.String()
}

// NewSlug derives a unique slug from title and the given creation time by
// appending the time in milliseconds since epoch. Two publishes for the
// same title within the same millisecond would collide; that window is an
// accepted limitation, not something the store checks for.
func NewSlug(title string, now time.Time) string {
	base := Slugify(title)
	ms := strconv.FormatInt(now.UnixMilli(), 10)
	if base == "" {
		return ms
	}
	return base + "-" + ms
}
