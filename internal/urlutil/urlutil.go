// Package urlutil canonicalizes user-supplied URLs and resolves page links.
package urlutil

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/sells-group/selda-cli/internal/resilience"
)

// DefaultScheme is prepended to inputs that carry no scheme.
const DefaultScheme = "https"

var schemeRe = regexp.MustCompile(`^[a-zA-Z][a-zA-Z\d+\-.]*:`)

// Normalize turns raw into a fetchable absolute URL string. Inputs without
// a scheme get "https://" prepended; an empty path serializes as "/".
func Normalize(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", resilience.InvalidInput("URL is required", nil)
	}

	candidate := raw
	if !hasScheme(raw) {
		candidate = DefaultScheme + "://" + raw
	}

	u, err := url.Parse(candidate)
	if err != nil {
		return "", resilience.InvalidInput("invalid URL provided: "+raw, err)
	}
	if u.Host == "" || strings.ContainsAny(u.Host, " \t") {
		return "", resilience.InvalidInput("invalid URL provided: "+raw, nil)
	}

	u.Host = strings.ToLower(u.Host)
	u.Scheme = strings.ToLower(u.Scheme)
	if u.Path == "" && u.RawPath == "" && u.Opaque == "" {
		u.Path = "/"
	}
	return u.String(), nil
}

// hasScheme reports whether raw begins with a URL scheme. "host:port"
// inputs such as "localhost:8080" are not treated as schemes.
func hasScheme(raw string) bool {
	loc := schemeRe.FindStringIndex(raw)
	if loc == nil {
		return false
	}
	rest := raw[loc[1]:]
	if strings.HasPrefix(rest, "//") {
		return true
	}
	// Digits after the colon mean a port, as in "example.com:8080/path".
	return rest == "" || !isDigit(rest[0])
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

// Resolve returns href as an absolute URL relative to base. Empty,
// javascript:, tel: and pure-fragment hrefs are skipped, as are hrefs that
// fail to parse.
func Resolve(base *url.URL, href string) (string, bool) {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return "", false
	}
	lower := strings.ToLower(href)
	if strings.HasPrefix(lower, "javascript:") || strings.HasPrefix(lower, "tel:") {
		return "", false
	}

	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	if base == nil {
		if !ref.IsAbs() {
			return "", false
		}
		return ref.String(), true
	}
	return base.ResolveReference(ref).String(), true
}
