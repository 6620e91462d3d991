// Package feed implements the Atom feed of recently published gallery
// entries, served at /feed.xml so the gallery can be followed from a feed
// reader.
package feed

import (
	"encoding/xml"
	"time"

	"github.com/banux/nxt-gallery/internal/gallery"
)

const (
	// NSAtom is the Atom namespace.
	NSAtom = "http://www.w3.org/2005/Atom"

	// RelAlternate links an entry to the original source page.
	RelAlternate = "alternate"
	// RelEnclosure links an entry to its image.
	RelEnclosure = "enclosure"
	// RelSelf links the feed to itself.
	RelSelf = "self"

	// MIMEAtomFeed is the media type of the served feed.
	MIMEAtomFeed = "application/atom+xml"
)

// Feed represents the gallery Atom feed.
type Feed struct {
	XMLName xml.Name `xml:"feed"`
	Xmlns   string   `xml:"xmlns,attr"`

	ID      string   `xml:"id"`
	Title   string   `xml:"title"`
	Updated AtomDate `xml:"updated"`

	Links   []Link  `xml:"link"`
	Entries []Entry `xml:"entry"`
}

// Entry represents one published gallery record in the feed.
type Entry struct {
	ID      string   `xml:"id"`
	Title   string   `xml:"title"`
	Updated AtomDate `xml:"updated"`
	Author  *Author  `xml:"author,omitempty"`
	Summary string   `xml:"summary,omitempty"`
	Links   []Link   `xml:"link"`
}

// Author represents the author of an entry.
type Author struct {
	Name string `xml:"name"`
}

// Link represents an Atom link element.
type Link struct {
	Rel  string `xml:"rel,attr,omitempty"`
	Href string `xml:"href,attr"`
	Type string `xml:"type,attr,omitempty"`
}

// AtomDate wraps time.Time for RFC 3339 XML serialization.
type AtomDate struct {
	Time time.Time
}

func (d AtomDate) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	return e.EncodeElement(d.Time.UTC().Format(time.RFC3339), start)
}

func (d *AtomDate) UnmarshalXML(dec *xml.Decoder, start xml.StartElement) error {
	var s string
	if err := dec.DecodeElement(&s, &start); err != nil {
		return err
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// New builds the gallery feed from catalog items, which arrive newest
// first. Entries without an externally reachable image URL (local
// development) still appear with their source link only.
func New(title, selfURL string, items []gallery.Item) *Feed {
	f := &Feed{
		Xmlns:   NSAtom,
		ID:      "urn:nxt-gallery:feed",
		Title:   title,
		Updated: AtomDate{Time: time.Now()},
		Links: []Link{
			{Rel: RelSelf, Href: selfURL, Type: MIMEAtomFeed},
		},
	}

	for _, it := range items {
		entry := Entry{
			ID:      "urn:nxt-gallery:entry:" + it.Slug,
			Title:   it.Title,
			Updated: AtomDate{Time: time.Now()},
			Summary: "Image by " + it.Author,
		}
		if it.Author != "" {
			entry.Author = &Author{Name: it.Author}
		}
		if it.OriginalURL != "" {
			entry.Links = append(entry.Links, Link{Rel: RelAlternate, Href: it.OriginalURL})
		}
		if it.ImageURL != "" {
			entry.Links = append(entry.Links, Link{Rel: RelEnclosure, Href: it.ImageURL, Type: "image/jpeg"})
		}
		f.Entries = append(f.Entries, entry)
	}
	return f
}

// MarshalToXML serializes the feed to XML bytes with a proper XML declaration.
func (f *Feed) MarshalToXML() ([]byte, error) {
	data, err := xml.MarshalIndent(f, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), data...), nil
}
