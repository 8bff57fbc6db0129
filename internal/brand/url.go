package brand

import (
	"fmt"
	"net/url"
	"strings"
)

// CanonicalBaseURL normalizes a user-supplied site URL into the profile's
// natural key. A missing scheme defaults to https, the host is lowercased,
// and any trailing slash is stripped.
func CanonicalBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty website url")
	}
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse website url: %w", err)
	}
	if u.Host == "" {
		return "", fmt.Errorf("website url %q has no host", raw)
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	return strings.TrimRight(u.String(), "/"), nil
}

// AbsoluteURL resolves href against base. Already-absolute links are
// returned unchanged; unparsable links fall back to the raw string.
func AbsoluteURL(base, href string) string {
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	b, err := url.Parse(base)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return b.ResolveReference(ref).String()
}

// JoinPath appends path to base, normalizing the slash between them.
func JoinPath(base, path string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}

// ProductPath builds the product-detail-page path for a handle.
func ProductPath(handle string) string {
	return "/products/" + handle
}

// CanonicalPath extracts the lowercased, trailing-slash-stripped path of a
// link for product-detail-page matching.
func CanonicalPath(href string) string {
	u, err := url.Parse(href)
	path := href
	if err == nil {
		path = u.Path
	}
	return strings.ToLower(strings.TrimRight(path, "/"))
}
