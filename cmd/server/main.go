package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"discordcore/internal/events"
	"discordcore/internal/platform/config"
	"discordcore/internal/platform/httpserver"
	"discordcore/internal/platform/kafka/consumer"
	"discordcore/internal/platform/logger"
	"discordcore/internal/platform/metrics"
	"discordcore/internal/platform/redis"
	"discordcore/internal/resolve"
	resolvemetrics "discordcore/internal/resolve/metrics"
	"discordcore/internal/resolve/store"
	httptransport "discordcore/internal/transport/http"
	"discordcore/internal/transport/rest"
	"discordcore/pkg/platform/circuit"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Entity semantics live in internal packages.
func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "discordcore:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log, err := logger.New(cfg.Log)
	if err != nil {
		return err
	}
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	checks := map[string]httptransport.HealthCheck{}

	local := store.NewInMemoryCache(cfg.Cache.TTL)
	entityStore, closeStore, err := buildStore(ctx, cfg, local, log, checks)
	if err != nil {
		return err
	}
	defer closeStore()

	client, err := rest.New(rest.Config{
		BaseURL:           cfg.Discord.BaseURL,
		Token:             cfg.Discord.Token,
		UserAgent:         cfg.Discord.UserAgent,
		Timeout:           cfg.Discord.Timeout,
		RequestsPerSecond: cfg.Discord.RequestsPerSecond,
		Burst:             cfg.Discord.Burst,
		MaxRetries:        &cfg.Discord.MaxRetries,
	}, rest.WithLogger(log.With("component", "rest")))
	if err != nil {
		return err
	}

	rc := resolve.New(client, entityStore,
		resolve.WithLogger(log.With("component", "resolve")),
		resolve.WithMetrics(resolvemetrics.New(m.Registry)),
		resolve.WithFetchTimeout(cfg.Resolve.FetchTimeout),
	)

	g, gctx := errgroup.WithContext(ctx)

	if cfg.Cache.TTL > 0 {
		g.Go(func() error {
			sweep(gctx, local, cfg.Cache.SweepInterval, log)
			return nil
		})
	}

	if cfg.Kafka.Enabled() {
		c, err := consumer.New(consumer.Config{
			Brokers: cfg.Kafka.Brokers,
			GroupID: cfg.Kafka.GroupID,
			Topics:  []string{cfg.Kafka.Topic},
		}, events.NewPrimingHandler(rc, log.With("component", "priming")), log.With("component", "kafka"))
		if err != nil {
			return err
		}
		defer c.Close()
		if cfg.Kafka.CreateTopics {
			if err := consumer.EnsureTopics(ctx, c.Client(), cfg.Kafka.Partitions, cfg.Kafka.ReplicationFactor, cfg.Kafka.Topic); err != nil {
				return err
			}
		}
		checks["kafka"] = c.Ping
		g.Go(func() error {
			err := c.Run(gctx)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}

	router := httptransport.NewRouter(httptransport.RouterDeps{
		Entities:     httptransport.NewHandler(rc, log.With("component", "http"), cfg.Resolve.Concurrency),
		Logger:       log,
		Metrics:      m,
		HealthChecks: checks,
	})
	srv := httpserver.New(cfg.Server.Addr, router)

	g.Go(func() error {
		log.InfoContext(gctx, "starting discordcore", "addr", cfg.Server.Addr, "cache", cfg.Cache.Backend)
		return httpserver.Run(gctx, srv, cfg.Server.ShutdownTimeout)
	})

	err = g.Wait()
	log.Info("discordcore stopped", "error", err)
	return err
}

// buildStore returns the local cache alone, or Redis with the local cache as
// its fallback during outages.
func buildStore(
	ctx context.Context,
	cfg *config.Config,
	local *store.InMemoryCache,
	log *slog.Logger,
	checks map[string]httptransport.HealthCheck,
) (resolve.Store, func(), error) {
	if cfg.Cache.Backend != config.CacheRedis {
		return local, func() {}, nil
	}
	rdb, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return nil, nil, err
	}
	checks["redis"] = rdb.Health
	shared := store.NewRedisCache(rdb.Client, cfg.Cache.TTL, cfg.Cache.KeyPrefix)
	fallback := store.NewFallbackCache(shared, local, circuit.New("redis"), log.With("component", "cache"))
	return fallback, func() { _ = rdb.Close() }, nil
}

func sweep(ctx context.Context, c *store.InMemoryCache, interval time.Duration, log *slog.Logger) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := c.Sweep(); n > 0 {
				log.DebugContext(ctx, "swept expired cache entries", "count", n)
			}
		}
	}
}
