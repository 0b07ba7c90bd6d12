package cache

import "context"

// Loader produces the authoritative value for a cache key.
type Loader[T any] func(ctx context.Context) (T, error)

// Wrap returns a cache-aside version of load: a hit under key short-circuits
// the loader, a miss runs it and writes the result back under the option
// TTL. Loader errors are returned unchanged and never cached; cache failures
// only force the loader path.
func Wrap[T any](s *Store, key string, opts Options, load Loader[T]) Loader[T] {
	return func(ctx context.Context) (T, error) {
		if v := s.Get(ctx, key, opts); v != nil {
			var cached T
			if err := v.Decode(&cached); err == nil {
				return cached, nil
			}
			// Stored shape no longer matches T: fall through to the loader,
			// which overwrites the entry.
		}

		value, err := load(ctx)
		if err != nil {
			var zero T
			return zero, err
		}

		s.Set(ctx, key, value, opts)
		return value, nil
	}
}
