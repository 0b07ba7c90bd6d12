// Package httpcache implements cache-aside response caching and
// post-mutation pattern invalidation as HTTP middleware.
//
// Read (GET) routes are wrapped by a ResponseCache: a stored response is
// replayed verbatim with X-Cache: HIT, a miss runs the downstream handler
// while the emitted response is captured and written back asynchronously.
// Mutating routes are wrapped by an Invalidator that evicts the declared
// key families after a successful response. Both write paths are
// fire-and-forget with respect to the client response.
package httpcache

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/triageworks/bounty-admin-api/pkg/auth"
	"github.com/triageworks/bounty-admin-api/pkg/cache"
	"github.com/triageworks/bounty-admin-api/pkg/logging"
)

const (
	// ResponsePrefix namespaces every response cache key.
	ResponsePrefix = "response"

	// HeaderXCache reports the cache outcome to the client.
	HeaderXCache = "X-Cache"

	// writeBackTimeout bounds a single async cache write or invalidation.
	writeBackTimeout = 5 * time.Second
)

// Store is the cache surface the middlewares depend on. *cache.Store
// satisfies it; tests substitute fakes.
type Store interface {
	Get(ctx context.Context, key string, opts cache.Options) *cache.Value
	Set(ctx context.Context, key string, value any, opts cache.Options) bool
	InvalidatePattern(ctx context.Context, pattern string) int
	Connected() bool
}

// Config holds per-route response cache settings.
type Config struct {
	// TTL is the route's cache TTL. cache.DefaultTTL when zero.
	TTL time.Duration

	// KeyFunc generates the cache key. DefaultKey when nil.
	KeyFunc KeyFunc

	// Caller resolves the caller identity. auth.CallerID when nil.
	Caller func(r *http.Request) string

	// Skip bypasses the cache entirely for matching requests.
	Skip func(r *http.Request) bool
}

// ResponseCache provides the cache-aside middleware for read endpoints and
// tracks its in-flight asynchronous write-backs for draining at shutdown.
type ResponseCache struct {
	store  Store
	logger zerolog.Logger
	wg     sync.WaitGroup
}

// NewResponseCache creates a response cache over the given store.
func NewResponseCache(store Store) *ResponseCache {
	return &ResponseCache{
		store:  store,
		logger: logging.NewLogger("httpcache"),
	}
}

// captureWriter streams the response through to the client while recording
// status and body for the cache write-back.
type captureWriter struct {
	http.ResponseWriter
	buf         bytes.Buffer
	status      int
	wroteHeader bool
}

func (w *captureWriter) WriteHeader(status int) {
	if w.wroteHeader {
		return
	}
	w.wroteHeader = true
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *captureWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

// Middleware returns the cache-aside middleware for one route class.
//
// Hits replay the stored status, headers, and body without invoking the
// downstream handler. Misses run the handler and, when the response is
// cacheable (2xx, no no-store directive, JSON body), write it back to the
// store in a detached goroutine so a slow or hung store never delays the
// client response. A store reporting disconnected is bypassed entirely and
// the response carries no X-Cache header.
func (c *ResponseCache) Middleware(cfg Config) func(http.Handler) http.Handler {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = cache.DefaultTTL
	}
	keyFn := cfg.KeyFunc
	if keyFn == nil {
		keyFn = DefaultKey
	}
	callerFn := cfg.Caller
	if callerFn == nil {
		callerFn = auth.CallerID
	}
	opts := cache.Options{Prefix: ResponsePrefix, TTL: ttl}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet || (cfg.Skip != nil && cfg.Skip(r)) {
				next.ServeHTTP(w, r)
				return
			}

			key := keyFn(r, callerFn(r))
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}

			// A disconnected store serves uncached with no X-Cache header:
			// degradation stays invisible apart from the missing header.
			if !c.store.Connected() {
				next.ServeHTTP(w, r)
				return
			}

			if v := c.store.Get(r.Context(), key, opts); v != nil {
				var entry ResponseEntry
				if err := v.Decode(&entry); err == nil && entry.StatusCode != 0 {
					c.replay(w, entry, ttl)
					return
				}
				// Entry no longer decodes; treat as a miss and overwrite.
			}

			w.Header().Set(HeaderXCache, "MISS")
			cw := &captureWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(cw, r)

			if !cacheable(cw) {
				return
			}

			entry := ResponseEntry{
				Body:       json.RawMessage(bytes.Clone(cw.buf.Bytes())),
				Headers:    selectHeaders(cw.Header()),
				StatusCode: cw.status,
			}

			c.wg.Add(1)
			go func() {
				defer c.wg.Done()
				ctx, cancel := context.WithTimeout(context.Background(), writeBackTimeout)
				defer cancel()
				c.store.Set(ctx, key, entry, opts)
			}()
		})
	}
}

// replay writes a cached response verbatim.
func (c *ResponseCache) replay(w http.ResponseWriter, entry ResponseEntry, ttl time.Duration) {
	for name, value := range entry.Headers {
		w.Header().Set(name, value)
	}
	w.Header().Set(HeaderXCache, "HIT")
	w.Header().Set("Cache-Control", fmt.Sprintf("max-age=%d", int(ttl.Seconds())))
	w.WriteHeader(entry.StatusCode)
	if _, err := w.Write(entry.Body); err != nil {
		c.logger.Warn().Err(err).Msg("failed to write cached response")
	}
}

// Drain waits for in-flight write-backs, bounded by the context. Called
// during graceful shutdown.
func (c *ResponseCache) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// cacheable reports whether a captured response may be stored: terminal
// success status, no no-store directive, JSON body. Responses that never
// reached a 2xx status must not populate the cache.
func cacheable(cw *captureWriter) bool {
	if cw.status < 200 || cw.status >= 300 {
		return false
	}
	directive := strings.ToLower(cw.Header().Get("Cache-Control"))
	if strings.Contains(directive, "no-store") || strings.Contains(directive, "no-cache") {
		return false
	}
	return json.Valid(cw.buf.Bytes())
}

// selectHeaders captures the replayed subset of response headers.
func selectHeaders(h http.Header) map[string]string {
	headers := make(map[string]string, len(cachedHeaders))
	for _, name := range cachedHeaders {
		if value := h.Get(name); value != "" {
			headers[name] = value
		}
	}
	return headers
}
