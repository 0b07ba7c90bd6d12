// Package api wires the report endpoints, the cache middlewares, and the
// operational endpoints into one router.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/triageworks/bounty-admin-api/internal/reports"
	"github.com/triageworks/bounty-admin-api/pkg/cache"
	"github.com/triageworks/bounty-admin-api/pkg/httpcache"
)

// reportPatterns are the cache key families evicted after any report
// mutation. Both the plain and the hashed-query list keys live under the
// same GET:/api/reports prefix, so one family covers list, detail, and
// stats entries.
var reportPatterns = []string{"response:GET:/api/reports*"}

// Config holds the API's collaborators and per-route cache TTLs.
type Config struct {
	Reports *reports.Store
	Cache   *cache.Store

	// TTL classes per route volatility. Zero values fall back to
	// cache.DefaultTTL.
	ListTTL   time.Duration
	DetailTTL time.Duration
	StatsTTL  time.Duration
}

// API is the assembled HTTP surface plus the drainable cache middlewares.
type API struct {
	router        *mux.Router
	responseCache *httpcache.ResponseCache
	invalidator   *httpcache.Invalidator
}

// New assembles the router. Read routes are wrapped by the response cache
// with their TTL class; mutating routes are wrapped by the invalidator.
func New(cfg Config) *API {
	h := NewHandler(cfg.Reports, cfg.Cache)
	responseCache := httpcache.NewResponseCache(cfg.Cache)
	invalidator := httpcache.NewInvalidator(cfg.Cache)

	// Bound the list key space: pagination beyond page 10 / limit 100 is
	// served uncached.
	listCache := responseCache.Middleware(httpcache.Config{
		TTL:     cfg.ListTTL,
		KeyFunc: httpcache.BoundedListKey(10, 100),
	})
	detailCache := responseCache.Middleware(httpcache.Config{TTL: cfg.DetailTTL})
	statsCache := responseCache.Middleware(httpcache.Config{TTL: cfg.StatsTTL})
	invalidate := invalidator.Middleware(reportPatterns...)

	r := mux.NewRouter()
	r.Use(RequestObserver)

	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	apiRouter := r.PathPrefix("/api").Subrouter()

	apiRouter.Handle("/reports", invalidate(http.HandlerFunc(h.CreateReport))).Methods(http.MethodPost)
	apiRouter.Handle("/reports", listCache(http.HandlerFunc(h.ListReports))).Methods(http.MethodGet)
	apiRouter.Handle("/reports/stats", statsCache(http.HandlerFunc(h.ReportStats))).Methods(http.MethodGet)
	apiRouter.Handle("/reports/{id}", detailCache(http.HandlerFunc(h.GetReport))).Methods(http.MethodGet)
	apiRouter.Handle("/reports/{id}/assign", invalidate(http.HandlerFunc(h.AssignReport))).Methods(http.MethodPut)
	apiRouter.Handle("/reports/{id}/status", invalidate(http.HandlerFunc(h.UpdateReportStatus))).Methods(http.MethodPut)

	apiRouter.HandleFunc("/cache/stats", h.CacheStats).Methods(http.MethodGet)
	apiRouter.HandleFunc("/cache/stats/reset", h.ResetCacheStats).Methods(http.MethodPost)
	apiRouter.HandleFunc("/cache/flush", h.FlushCache).Methods(http.MethodPost)
	apiRouter.HandleFunc("/health/cache", h.CacheHealth).Methods(http.MethodGet)

	return &API{
		router:        r,
		responseCache: responseCache,
		invalidator:   invalidator,
	}
}

// Router returns the HTTP handler.
func (a *API) Router() http.Handler {
	return a.router
}

// Drain waits for in-flight cache write-backs and invalidations, bounded by
// the context. Called during graceful shutdown.
func (a *API) Drain(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return a.responseCache.Drain(ctx) })
	g.Go(func() error { return a.invalidator.Drain(ctx) })
	return g.Wait()
}
