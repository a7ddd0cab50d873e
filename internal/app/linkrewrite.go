package app

import (
	"net/url"
	"strings"
	"unicode"
)

// withQuery appends key=value to href, keeping any fragment last.
func withQuery(href, key, value string) string {
	fragment := ""
	if idx := strings.Index(href, "#"); idx >= 0 {
		fragment = href[idx:]
		href = href[:idx]
	}

	pair := url.QueryEscape(key) + "=" + url.QueryEscape(value)
	if strings.Contains(href, "?") {
		href = href + "&" + pair
	} else {
		href = href + "?" + pair
	}

	return href + fragment
}

// localRedirect accepts only same-site absolute paths. Browsers drop tabs
// and newlines inside URLs, so any control character is refused.
func localRedirect(target, fallback string) string {
	if !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") ||
		strings.Contains(target, "\\") || strings.ContainsFunc(target, unicode.IsControl) {
		return fallback
	}
	u, err := url.Parse(target)
	if err != nil || u.Scheme != "" || u.Host != "" || !strings.HasPrefix(u.Path, "/") {
		return fallback
	}
	return target
}
