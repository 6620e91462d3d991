package scrape

import "regexp"

// rewriteRule maps a platform host pattern to a mirror host that serves
// richer Open Graph metadata for the same content.
type rewriteRule struct {
	pattern *regexp.Regexp
	mirror  string
}

// rewriteRules is the ordered rewrite table. Order matters: the first
// matching rule wins and Twitter/X is checked before Instagram. Adding a
// platform means adding a row here, nothing else.
var rewriteRules = []rewriteRule{
	{regexp.MustCompile(`^https?://(www\.)?twitter\.com/`), "https://vxtwitter.com/"},
	{regexp.MustCompile(`^https?://(www\.)?x\.com/`), "https://vxtwitter.com/"},
	{regexp.MustCompile(`^https?://(www\.)?instagram\.com/`), "https://ddinstagram.com/"},
}

// rewriteURL returns the mirror URL to fetch for rawURL, or rawURL itself
// when no platform rule matches.
func rewriteURL(rawURL string) string {
	for _, rule := range rewriteRules {
		if loc := rule.pattern.FindStringIndex(rawURL); loc != nil {
			return rule.mirror + rawURL[loc[1]:]
		}
	}
	return rawURL
}
