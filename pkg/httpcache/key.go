package httpcache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// KeyFunc computes the cache key for a request given the caller identity.
// Returning an empty string disables caching for that request.
type KeyFunc func(r *http.Request, caller string) string

// DefaultKey generates the standard response cache key.
// Format: METHOD:PATH[:sorted-query]:user:CALLER
//
// Example:
//
//	GET:/api/reports:limit=10&page=1:user:scanner-7
//
// Two requests identical in method, path, query parameter set (regardless
// of insertion order), and caller always map to the same key.
func DefaultKey(r *http.Request, caller string) string {
	parts := []string{r.Method, r.URL.Path}
	if query := canonicalQuery(r.URL.Query()); query != "" {
		parts = append(parts, query)
	}
	parts = append(parts, "user", caller)
	return strings.Join(parts, ":")
}

// BoundedListKey returns a key generator for list endpoints that hashes the
// canonical query string and refuses to cache pathological pagination
// requests (page or limit beyond the given bounds) that would never repeat.
func BoundedListKey(maxPage, maxLimit int) KeyFunc {
	return func(r *http.Request, caller string) string {
		query := r.URL.Query()
		if intQuery(query, "page", 1) > maxPage || intQuery(query, "limit", 20) > maxLimit {
			return ""
		}

		sum := sha256.Sum256([]byte(canonicalQuery(query)))
		return fmt.Sprintf("%s:%s:q=%s:user:%s",
			r.Method, r.URL.Path, hex.EncodeToString(sum[:8]), caller)
	}
}

// canonicalQuery produces a stable encoding of the query parameters: keys
// sorted, repeated values kept in received order.
func canonicalQuery(values url.Values) string {
	if len(values) == 0 {
		return ""
	}

	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(values))
	for _, key := range keys {
		for _, value := range values[key] {
			pairs = append(pairs, key+"="+value)
		}
	}
	return strings.Join(pairs, "&")
}

func intQuery(values url.Values, name string, fallback int) int {
	raw := values.Get(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
