// Command bounty-api runs the bug bounty admin API with a Redis-backed
// response cache in front of the report store.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/triageworks/bounty-admin-api/internal/api"
	"github.com/triageworks/bounty-admin-api/internal/config"
	"github.com/triageworks/bounty-admin-api/internal/reports"
	"github.com/triageworks/bounty-admin-api/pkg/cache"
	"github.com/triageworks/bounty-admin-api/pkg/logging"
)

func main() {
	cfg := config.Load()

	logger := logging.Setup(logging.Config{
		Level:  logging.LogLevel(cfg.LogLevel),
		Pretty: cfg.LogPretty,
		Output: os.Stderr,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	store := cache.New(rdb,
		cache.WithNamespace(cfg.CacheNamespace),
		cache.WithLogger(logging.NewLogger("cache")),
	)
	// Best effort: the service serves uncached when Redis is down.
	store.Connect(ctx)

	a := api.New(api.Config{
		Reports:   reports.NewStore(),
		Cache:     store,
		ListTTL:   cfg.ListTTL,
		DetailTTL: cfg.DetailTTL,
		StatsTTL:  cfg.StatsTTL,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           a.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info().Str("addr", srv.Addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("server shutdown")
		}

		drainCtx, cancelDrain := context.WithTimeout(context.Background(), cfg.DrainTimeout)
		defer cancelDrain()
		if err := a.Drain(drainCtx); err != nil {
			logger.Warn().Err(err).Msg("cache drain incomplete")
		}

		store.Close()
		return rdb.Close()
	})

	if err := g.Wait(); err != nil {
		logger.Fatal().Err(err).Msg("server error")
	}
	logger.Info().Msg("server stopped")
}
