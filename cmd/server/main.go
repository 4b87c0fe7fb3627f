package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/iho/udaancredit/internal/adapter/csvledger"
	httpAdapter "github.com/iho/udaancredit/internal/adapter/http"
	"github.com/iho/udaancredit/internal/adapter/http/handler"
	"github.com/iho/udaancredit/internal/adapter/http/middleware"
	redisRepo "github.com/iho/udaancredit/internal/adapter/repository/redis"
	"github.com/iho/udaancredit/internal/domain"
	"github.com/iho/udaancredit/internal/infrastructure/config"
	"github.com/iho/udaancredit/internal/infrastructure/eventpublisher"
	"github.com/iho/udaancredit/internal/infrastructure/idgen"
	"github.com/iho/udaancredit/internal/infrastructure/logger"
	"github.com/iho/udaancredit/internal/infrastructure/metrics"
	"github.com/iho/udaancredit/internal/infrastructure/redis"
	"github.com/iho/udaancredit/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}

func run(cfg *config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	policy, err := buildRiskPolicy(cfg)
	if err != nil {
		return err
	}

	m := metrics.New(prometheus.DefaultRegisterer)

	// Redis is optional: without it there is no cache, no idempotency
	// and events go to the log.
	var (
		redisClient      *goredis.Client
		cache            usecase.AssessmentCache
		idempotencyStore usecase.IdempotencyStore
		publisher        eventpublisher.Publisher = eventpublisher.NewLogPublisher(log)
		readiness        handler.Pinger
	)

	if cfg.RedisEnabled() {
		redisClient, err = redis.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("connect to redis: %w", err)
		}
		defer redisClient.Close()
		log.Info().Msg("connected to redis")

		retrier := redisRepo.NewRetrier().WithLogger(log)
		cache = redisRepo.NewAssessmentCache(redisClient, retrier)
		idempotencyStore = redisRepo.NewIdempotencyStore(redisClient)
		publisher = redisRepo.NewStreamPublisher(redisClient, retrier, cfg.EventStream, cfg.EventStreamMaxLen)
		readiness = handler.PingFunc(func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
	} else {
		log.Warn().Msg("REDIS_URL not set, running without cache and idempotency")
	}

	events := eventpublisher.NewEventPublisher(eventpublisher.Config{
		Publisher:  publisher,
		Observer:   m,
		Logger:     log,
		BufferSize: cfg.EventBufferSize,
		Interval:   cfg.EventFlushPeriod,
	})

	assessmentUC, err := usecase.NewAssessmentUseCase(
		usecase.AssessmentConfig{
			Policy:           policy,
			CacheTTL:         cfg.CacheTTL,
			MaxLedgerRows:    cfg.MaxLedgerRows,
			BatchConcurrency: cfg.BatchConcurrency,
		},
		idgen.NewULIDGenerator(),
		cache,
		events,
		m,
		log,
	)
	if err != nil {
		return err
	}

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)

	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		AssessmentHandler: handler.NewAssessmentHandler(assessmentUC, csvledger.NewParser(cfg.MaxLedgerRows), cfg.MaxBodyBytes),
		HealthHandler:     handler.NewHealthHandler(readiness),
		IdempotencyStore:  idempotencyStore,
		IdempotencyTTL:    cfg.IdempotencyTTL,
		RateLimiter:       rateLimiter,
		Logger:            log,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()

	publisherDone := make(chan struct{})
	go func() {
		defer close(publisherDone)
		events.Start(workerCtx)
	}()

	go cleanupLimiters(workerCtx, rateLimiter, log)

	serverErr := make(chan error, 1)
	go func() {
		log.Info().
			Str("port", cfg.HTTPPort).
			Str("risk_policy", policy.Name).
			Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	// Flush queued events before closing Redis.
	cancelWorkers()
	<-publisherDone

	log.Info().Msg("server stopped")
	return nil
}

// buildRiskPolicy resolves RISK_POLICY and applies threshold overrides.
func buildRiskPolicy(cfg *config.Config) (domain.RiskPolicy, error) {
	policy, err := domain.RiskPolicyByName(cfg.RiskPolicy)
	if err != nil {
		return domain.RiskPolicy{}, err
	}

	if cfg.RiskLowThreshold > 0 {
		policy.LowThreshold = domain.CreditScore(cfg.RiskLowThreshold)
	}
	if cfg.RiskModerateThreshold > 0 {
		policy.ModerateThreshold = domain.CreditScore(cfg.RiskModerateThreshold)
	}

	if err := policy.Validate(); err != nil {
		return domain.RiskPolicy{}, err
	}

	return policy, nil
}

func cleanupLimiters(ctx context.Context, rl *middleware.RateLimiter, log zerolog.Logger) {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := rl.CleanupLimiters(time.Hour); n > 0 {
				log.Debug().Int("removed", n).Msg("rate limiters cleaned up")
			}
		}
	}
}
