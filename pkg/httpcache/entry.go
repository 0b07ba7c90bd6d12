package httpcache

import "encoding/json"

// ResponseEntry is the cached form of a JSON API response: body, the
// replayed subset of response headers, and the status code.
type ResponseEntry struct {
	Body       json.RawMessage   `json:"body"`
	Headers    map[string]string `json:"headers"`
	StatusCode int               `json:"status_code"`
}

// cachedHeaders are the response headers captured into a ResponseEntry and
// replayed on a hit.
var cachedHeaders = []string{"Content-Type", "Content-Language"}
