// Package urlutil builds absolute urls for the scraped campus sites.
// It never fails: malformed input degrades to a syntactically valid
// url with an empty segment rather than an error.
package urlutil

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// Join concatenates a base url and a path, normalizing the slashes
// between them.
func Join(base, path string) string {
	base = strings.TrimRight(base, "/")
	if path == "" {
		return base
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return base + path
}

// WithQuery appends a query string built from params to a url. Values
// are coerced to their default string form. Keys are serialized in
// sorted order so the output is deterministic for cache keys.
func WithQuery(base string, params map[string]any) string {
	if len(params) == 0 {
		return base
	}

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	query := url.Values{}
	for _, k := range keys {
		query.Set(k, fmt.Sprint(params[k]))
	}

	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return base + sep + query.Encode()
}
