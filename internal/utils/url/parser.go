// internal/utils/url/parser.go
package urlutil

import (
	"fmt"
	"net/url"

	"github.com/law-makers/rostercrawl/pkg/models"
)

// ValidateURL checks that urlStr is an absolute http(s) URL
func ValidateURL(urlStr string) error {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("invalid URL scheme: must be http or https, got %s", parsed.Scheme)
	}

	if parsed.Host == "" {
		return fmt.Errorf("invalid URL: missing host")
	}

	return nil
}

// ResolveURL resolves a possibly-relative href against a base URL and returns a string
func ResolveURL(base, href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if u.IsAbs() {
		return href
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return href
	}
	return baseURL.ResolveReference(u).String()
}

// ResolveProfileLinks makes every record's profile URL absolute against
// the listing it was read from.
func ResolveProfileLinks(base string, records []models.Record) {
	for i := range records {
		records[i].ProfileURL = ResolveURL(base, records[i].ProfileURL)
	}
}
