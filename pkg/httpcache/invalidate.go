package httpcache

import (
	"context"
	"net/http"
	"sync"

	"github.com/rs/zerolog"

	"github.com/triageworks/bounty-admin-api/pkg/logging"
)

// Invalidator wraps mutating routes and evicts the declared cache key
// families after a successful response. Eviction is best-effort and
// fire-and-forget: the client never waits for cache cleanup, and a cleanup
// failure is logged, not surfaced.
type Invalidator struct {
	store  Store
	logger zerolog.Logger
	wg     sync.WaitGroup
}

// NewInvalidator creates an invalidator over the given store.
func NewInvalidator(store Store) *Invalidator {
	return &Invalidator{
		store:  store,
		logger: logging.NewLogger("httpcache"),
	}
}

// statusWriter records the response status for the post-response hook.
type statusWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusWriter) WriteHeader(status int) {
	if !w.wroteHeader {
		w.wroteHeader = true
		w.status = status
	}
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}

// Middleware returns the invalidation middleware for the given glob
// patterns (namespaced under the response prefix, e.g. "response:GET:/api/reports*").
// Patterns are applied only after the wrapped handler responds with a
// success status. Pattern deletion is scan-then-delete, so a read racing
// the invalidation may observe a bounded-staleness window.
func (i *Invalidator) Middleware(patterns ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				next.ServeHTTP(w, r)
				return
			}

			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sw, r)

			if sw.status < 200 || sw.status >= 400 {
				return
			}

			i.wg.Add(1)
			go func() {
				defer i.wg.Done()
				ctx, cancel := context.WithTimeout(context.Background(), writeBackTimeout)
				defer cancel()
				for _, pattern := range patterns {
					removed := i.store.InvalidatePattern(ctx, pattern)
					i.logger.Debug().
						Str("pattern", pattern).
						Int("keys", removed).
						Msg("cache invalidated after mutation")
				}
			}()
		})
	}
}

// Drain waits for in-flight invalidations, bounded by the context.
func (i *Invalidator) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		i.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
