package cache

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/triageworks/bounty-admin-api/pkg/logging"
)

const (
	// DefaultTTL is the write TTL applied when none is given.
	DefaultTTL = 300 * time.Second

	// DefaultNamespace is the physical key prefix applied to every key.
	DefaultNamespace = "bounty"

	// MaxKeyLength is the maximum allowed length for a logical cache key.
	MaxKeyLength = 512

	// monitorInterval is how often the connection monitor re-probes the store.
	monitorInterval = 15 * time.Second

	// probeTimeout bounds a single monitor probe.
	probeTimeout = 2 * time.Second

	// scanBatchSize is the COUNT hint for pattern scans.
	scanBatchSize = 100
)

var (
	// ErrInvalidKey indicates an empty key or a key with control characters.
	ErrInvalidKey = errors.New("cache: key is invalid")

	// ErrKeyTooLong indicates the key exceeds MaxKeyLength.
	ErrKeyTooLong = errors.New("cache: key exceeds max length")
)

// ValidateKey checks whether a logical key is acceptable for storage.
func ValidateKey(key string) error {
	if key == "" || strings.TrimSpace(key) == "" {
		return ErrInvalidKey
	}
	if len(key) > MaxKeyLength {
		return ErrKeyTooLong
	}
	if strings.ContainsAny(key, "\n\r") {
		return ErrInvalidKey
	}
	return nil
}

// Options adjust a single cache call.
type Options struct {
	// TTL is the write TTL. DefaultTTL when zero. Ignored on reads.
	TTL time.Duration

	// Prefix is a logical prefix inserted between the namespace and the key.
	Prefix string
}

// Entry is one key/value pair for SetMultiple.
type Entry struct {
	Key   string
	Value any

	// TTL overrides the option TTL for this entry when non-zero.
	TTL time.Duration
}

// Store is the fail-open cache facade over a shared Redis client.
//
// All operations degrade to safe defaults instead of returning errors: a
// disconnected or failing store makes every lookup a miss and every write a
// no-op, never a request failure.
type Store struct {
	rdb       *redis.Client
	namespace string
	logger    zerolog.Logger

	stats     counters
	connected atomic.Bool

	stop     chan struct{}
	stopOnce sync.Once
	started  atomic.Bool
}

// Option configures a Store.
type Option func(*Store)

// WithNamespace overrides the physical key namespace.
func WithNamespace(ns string) Option {
	return func(s *Store) { s.namespace = ns }
}

// WithLogger overrides the store logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// New creates a cache store over the given Redis client. The store starts
// disconnected; call Connect to probe the backing store and begin the
// connection monitor.
func New(rdb *redis.Client, opts ...Option) *Store {
	if rdb == nil {
		panic("redis client cannot be nil")
	}
	s := &Store{
		rdb:       rdb,
		namespace: DefaultNamespace,
		logger:    logging.NewLogger("cache"),
		stop:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Connect probes the backing store and starts the background connection
// monitor. The connected flag reflects the probe result either way: a failed
// probe is logged and the store runs in fail-open mode until the next
// successful probe; the process never refuses to start because the cache is
// down.
func (s *Store) Connect(ctx context.Context) {
	err := s.rdb.Ping(ctx).Err()
	s.connected.Store(err == nil)
	if err != nil {
		s.logger.Warn().Err(err).Msg("cache store unreachable, continuing without cache")
	} else {
		s.logger.Info().Str("namespace", s.namespace).Msg("cache store connected")
	}
	if s.started.CompareAndSwap(false, true) {
		go s.monitor()
	}
}

// Close stops the connection monitor. The Redis client itself is owned and
// closed by the caller.
func (s *Store) Close() {
	s.stopOnce.Do(func() { close(s.stop) })
}

// Connected reports whether the store currently believes the backing store
// is reachable.
func (s *Store) Connected() bool {
	return s.connected.Load()
}

// Ping issues a round-trip probe against the backing store.
func (s *Store) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

// monitor re-probes the store on an interval and flips the connected flag in
// both directions, so operations resume normal behavior after a reconnect
// without a process restart.
func (s *Store) monitor() {
	ticker := time.NewTicker(monitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
			err := s.rdb.Ping(ctx).Err()
			cancel()

			was := s.connected.Swap(err == nil)
			if err != nil && was {
				s.logger.Warn().Err(err).Msg("cache store connection lost, failing open")
			} else if err == nil && !was {
				s.logger.Info().Msg("cache store connection restored")
			}
		}
	}
}

// buildKey composes the physical key: namespace, optional logical prefix,
// logical key.
func (s *Store) buildKey(key string, opts Options) string {
	parts := make([]string, 0, 3)
	if s.namespace != "" {
		parts = append(parts, s.namespace)
	}
	if opts.Prefix != "" {
		parts = append(parts, opts.Prefix)
	}
	parts = append(parts, key)
	return strings.Join(parts, ":")
}

// fail records a store operation failure: errors counter, metric, warn log.
func (s *Store) fail(op string, err error) {
	s.stats.errors.Add(1)
	cacheErrors.WithLabelValues(op).Inc()
	s.logger.Warn().Err(err).Str("operation", op).Msg("cache operation failed")
}

func (s *Store) miss() {
	s.stats.misses.Add(1)
	cacheMisses.Inc()
}

func (s *Store) hit() {
	s.stats.hits.Add(1)
	cacheHits.Inc()
}

// Get retrieves a value. Returns nil on miss, on invalid key, and on any
// store failure. A disconnected store counts the lookup as a miss without
// attempting the call.
func (s *Store) Get(ctx context.Context, key string, opts Options) *Value {
	if ValidateKey(key) != nil {
		s.miss()
		return nil
	}
	if !s.connected.Load() {
		s.miss()
		return nil
	}

	start := time.Now()
	payload, err := s.rdb.Get(ctx, s.buildKey(key, opts)).Result()
	if err == redis.Nil {
		s.miss()
		observeOp("get", "miss", start)
		return nil
	}
	if err != nil {
		s.fail("get", err)
		observeOp("get", "error", start)
		return nil
	}

	s.hit()
	observeOp("get", "hit", start)
	return decode(payload)
}

// Set stores a value with the given TTL (DefaultTTL when zero). Strings are
// stored verbatim, other values JSON-encoded. Returns false on invalid key,
// disconnection, or store failure.
func (s *Store) Set(ctx context.Context, key string, value any, opts Options) bool {
	if ValidateKey(key) != nil {
		return false
	}
	if !s.connected.Load() {
		return false
	}

	payload, err := encode(value)
	if err != nil {
		s.fail("set", err)
		return false
	}

	ttl := opts.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	start := time.Now()
	if err := s.rdb.Set(ctx, s.buildKey(key, opts), payload, ttl).Err(); err != nil {
		s.fail("set", err)
		observeOp("set", "error", start)
		return false
	}

	s.stats.sets.Add(1)
	cacheSets.Inc()
	observeOp("set", "ok", start)
	return true
}

// Delete removes a key. Returns true iff the key existed and was removed.
func (s *Store) Delete(ctx context.Context, key string, opts Options) bool {
	if ValidateKey(key) != nil {
		return false
	}
	if !s.connected.Load() {
		return false
	}

	start := time.Now()
	removed, err := s.rdb.Del(ctx, s.buildKey(key, opts)).Result()
	if err != nil {
		s.fail("delete", err)
		observeOp("delete", "error", start)
		return false
	}
	observeOp("delete", "ok", start)
	if removed == 0 {
		return false
	}

	s.stats.deletes.Add(removed)
	cacheDeletes.Add(float64(removed))
	return true
}

// Exists reports whether a key is present.
func (s *Store) Exists(ctx context.Context, key string, opts Options) bool {
	if ValidateKey(key) != nil || !s.connected.Load() {
		return false
	}

	n, err := s.rdb.Exists(ctx, s.buildKey(key, opts)).Result()
	if err != nil {
		s.fail("exists", err)
		return false
	}
	return n > 0
}

// GetMultiple retrieves several keys in a single MGET round trip. The result
// has the same length and order as keys, with nil at missed positions. A
// disconnected store yields all nils and counts every key as a miss.
func (s *Store) GetMultiple(ctx context.Context, keys []string, opts Options) []*Value {
	values := make([]*Value, len(keys))
	if len(keys) == 0 {
		return values
	}
	if !s.connected.Load() {
		s.stats.misses.Add(int64(len(keys)))
		cacheMisses.Add(float64(len(keys)))
		return values
	}

	physical := make([]string, len(keys))
	for i, key := range keys {
		physical[i] = s.buildKey(key, opts)
	}

	start := time.Now()
	results, err := s.rdb.MGet(ctx, physical...).Result()
	if err != nil {
		s.fail("mget", err)
		observeOp("mget", "error", start)
		// Every key degrades to a miss, in both the stats snapshot and the
		// Prometheus counter.
		s.stats.misses.Add(int64(len(keys)))
		cacheMisses.Add(float64(len(keys)))
		return values
	}
	observeOp("mget", "ok", start)

	for i, res := range results {
		payload, ok := res.(string)
		if !ok {
			s.miss()
			continue
		}
		s.hit()
		values[i] = decode(payload)
	}
	return values
}

// SetMultiple stores several entries in a single pipelined round trip. Each
// entry may carry its own TTL overriding the option TTL. Returns false when
// any key is invalid, the store is disconnected, or the pipeline fails.
func (s *Store) SetMultiple(ctx context.Context, entries []Entry, opts Options) bool {
	if len(entries) == 0 {
		return true
	}
	if !s.connected.Load() {
		return false
	}

	defaultTTL := opts.TTL
	if defaultTTL <= 0 {
		defaultTTL = DefaultTTL
	}

	pipe := s.rdb.Pipeline()
	for _, entry := range entries {
		if ValidateKey(entry.Key) != nil {
			return false
		}
		payload, err := encode(entry.Value)
		if err != nil {
			s.fail("mset", err)
			return false
		}
		ttl := entry.TTL
		if ttl <= 0 {
			ttl = defaultTTL
		}
		pipe.Set(ctx, s.buildKey(entry.Key, opts), payload, ttl)
	}

	start := time.Now()
	if _, err := pipe.Exec(ctx); err != nil {
		s.fail("mset", err)
		observeOp("mset", "error", start)
		return false
	}

	s.stats.sets.Add(int64(len(entries)))
	cacheSets.Add(float64(len(entries)))
	observeOp("mset", "ok", start)
	return true
}

// InvalidatePattern removes every key matching the glob pattern as observed
// at scan time and returns the number of keys removed. Scan-then-delete is
// not transactional: keys written concurrently may or may not be included.
func (s *Store) InvalidatePattern(ctx context.Context, pattern string) int {
	if pattern == "" || !s.connected.Load() {
		return 0
	}
	removed, _ := s.invalidate(ctx, pattern)
	return removed
}

// invalidate runs the scan-then-delete cycle and surfaces the failure so
// callers that must report success can distinguish "no match" from "broken".
func (s *Store) invalidate(ctx context.Context, pattern string) (int, error) {
	physical := pattern
	if s.namespace != "" {
		physical = s.namespace + ":" + pattern
	}

	start := time.Now()
	var keys []string
	iter := s.rdb.Scan(ctx, 0, physical, scanBatchSize).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		s.fail("invalidate", err)
		observeOp("invalidate", "error", start)
		return 0, err
	}
	if len(keys) == 0 {
		observeOp("invalidate", "ok", start)
		return 0, nil
	}

	removed, err := s.rdb.Del(ctx, keys...).Result()
	if err != nil {
		s.fail("invalidate", err)
		observeOp("invalidate", "error", start)
		return 0, err
	}

	s.stats.deletes.Add(removed)
	cacheDeletes.Add(float64(removed))
	observeOp("invalidate", "ok", start)
	return int(removed), nil
}

// Flush clears the entire store when pattern is empty, otherwise only the
// keys matching the pattern. Returns false when the underlying scan, delete,
// or flush did not complete.
func (s *Store) Flush(ctx context.Context, pattern string) bool {
	if !s.connected.Load() {
		return false
	}
	if pattern != "" {
		_, err := s.invalidate(ctx, pattern)
		return err == nil
	}
	if err := s.rdb.FlushDB(ctx).Err(); err != nil {
		s.fail("flush", err)
		return false
	}
	return true
}

// Stats returns the current counter snapshot including the derived hit rate.
func (s *Store) Stats() Stats {
	return s.stats.snapshot()
}

// ResetStats zeroes all counters.
func (s *Store) ResetStats() {
	s.stats.reset()
}
