package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/extra/redisotel/v9"
	redis "github.com/redis/go-redis/v9"

	"github.com/andes-labs/backend-precios/internal/audit"
	"github.com/andes-labs/backend-precios/internal/config"
	"github.com/andes-labs/backend-precios/internal/obs"
	"github.com/andes-labs/backend-precios/internal/queue"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := obs.NewLogger(cfg.LogFormat, cfg.LogLevel).With().
		Str("env", cfg.AppEnv).
		Str("component", "worker").
		Logger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	bootCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse database config")
	}
	poolConfig.ConnConfig.Tracer = obs.PGXTracer{}
	if poolConfig.ConnConfig.RuntimeParams == nil {
		poolConfig.ConnConfig.RuntimeParams = map[string]string{}
	}
	poolConfig.ConnConfig.RuntimeParams["application_name"] = "precios-worker"

	pool, err := pgxpool.NewWithConfig(bootCtx, poolConfig)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect database")
	}
	defer pool.Close()

	if err := pool.Ping(bootCtx); err != nil {
		logger.Fatal().Err(err).Msg("ping database")
	}

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse redis url")
	}
	redisClient := redis.NewClient(redisOpts)
	if err := redisotel.InstrumentTracing(redisClient); err != nil {
		logger.Error().Err(err).Msg("instrument redis tracing")
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Error().Err(err).Msg("close redis")
		}
	}()
	if err := redisClient.Ping(bootCtx).Err(); err != nil {
		logger.Fatal().Err(err).Msg("ping redis")
	}

	auditWorker := &audit.Worker{
		Store:  audit.NewStore(pool),
		Logger: logger,
	}

	consumer := queue.Worker{
		R:                 redisClient,
		Prefix:            cfg.QueuePrefix,
		Kind:              audit.TaskKind,
		Concurrency:       cfg.QueueConcurrency,
		VisibilityTimeout: cfg.QueueVisibilityTimeout,
		SoftDeadline:      cfg.QueueVisibilityTimeout * 8 / 10,
		RetryBase:         200 * time.Millisecond,
		RetryJitter:       0.2,
		Logger:            &logger,
		Store:             queue.NewStore(pool),
		Handler:           auditWorker.Handle,
	}

	logger.Info().
		Str("kind", audit.TaskKind).
		Int("concurrency", cfg.QueueConcurrency).
		Msg("worker starting")

	if err := consumer.Run(ctx); err != nil {
		logger.Fatal().Err(err).Msg("worker exited unexpectedly")
	}
	logger.Info().Msg("worker shutdown complete")
}
