// Package fetch provides the outbound HTTP client used for page scraping
// and image downloads. Every request carries a crawler User-Agent (some
// hosts return 403 to unrecognized clients) and can be routed through an
// HTTP proxy taken from configuration.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// userAgent mimics the Facebook link-preview crawler, which most sites
// serve full Open Graph metadata to.
const userAgent = "facebookexternalhit/1.1 (+http://www.facebook.com/externalhit_uatext.php)"

// requestTimeout bounds every outbound call (page fetch and image fetch).
const requestTimeout = 30 * time.Second

// Client is an HTTP fetcher with a fixed identity and timeout.
type Client struct {
	http *http.Client
}

// New creates a Client. proxyAddr, when non-empty, is an HTTP(S) proxy URL
// applied to all requests.
func New(proxyAddr string) (*Client, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if proxyAddr != "" {
		proxyURL, err := url.Parse(proxyAddr)
		if err != nil {
			return nil, fmt.Errorf("parse proxy address %q: %w", proxyAddr, err)
		}
		transport.Proxy = http.ProxyURL(proxyURL)
	}
	return &Client{
		http: &http.Client{
			Transport: transport,
			Timeout:   requestTimeout,
		},
	}, nil
}

// Get fetches rawURL and returns the response body. A transport error or
// a non-2xx status is returned as an error; interpretation (soft failure
// for page scrapes, fatal for image downloads) is up to the caller.
func (c *Client) Get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("build request for %q: %w", rawURL, err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %q: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch %q: unexpected status %s", rawURL, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body of %q: %w", rawURL, err)
	}
	return body, nil
}
