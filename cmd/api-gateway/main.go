// Package main API Gateway 服务入口
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"pixgen-ai-api/internal/application/credits"
	"pixgen-ai-api/internal/application/generation"
	"pixgen-ai-api/internal/config"
	"pixgen-ai-api/internal/domain/repository"
	"pixgen-ai-api/internal/infrastructure/messaging"
	"pixgen-ai-api/internal/infrastructure/persistence/postgres"
	"pixgen-ai-api/internal/infrastructure/persistence/redis"
	"pixgen-ai-api/internal/infrastructure/replicate"
	"pixgen-ai-api/internal/interfaces/http/handler"
	"pixgen-ai-api/internal/interfaces/http/middleware"
	"pixgen-ai-api/internal/interfaces/http/router"
	"pixgen-ai-api/pkg/logger"
	"pixgen-ai-api/pkg/tracer"
)

// Version 版本信息，构建时注入
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// 加载 .env 文件（如果存在）
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(
		cfg.Observability.Logging.Level,
		cfg.Observability.Logging.Format,
	)

	ctx := context.Background()
	log := logger.FromContext(ctx)
	log.Info("starting api-gateway",
		"version", Version,
		"build_time", BuildTime,
		"env", cfg.App.Env,
	)

	shutdown, err := tracer.Init(ctx, tracer.Config{
		ServiceName: cfg.App.Name,
		Endpoint:    cfg.Observability.Tracing.Endpoint,
		SampleRate:  cfg.Observability.Tracing.SampleRate,
		Enabled:     cfg.Observability.Tracing.Enabled,
	})
	if err != nil {
		log.Error("failed to init tracer", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := shutdown(ctx); err != nil {
			log.Error("failed to shutdown tracer", "error", err)
		}
	}()

	app, cleanup, err := buildApp(cfg)
	if err != nil {
		logger.Fatal(ctx, "failed to initialize app", err)
	}
	defer cleanup()

	addr := fmt.Sprintf("%s:%d", cfg.Server.HTTP.Host, cfg.Server.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      app.Engine(),
		ReadTimeout:  cfg.Server.HTTP.ReadTimeout,
		WriteTimeout: cfg.Server.HTTP.WriteTimeout,
		IdleTimeout:  cfg.Server.HTTP.IdleTimeout,
	}

	go func() {
		log.Info("http server starting", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("http server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", "error", err)
	}

	log.Info("server exited")
}

// buildApp 组装应用依赖。Postgres 与 Redis 都是可选项：
// 未配置时服务以纯生成模式运行，积分、媒体库与事件流自动关闭。
func buildApp(cfg *config.Config) (*router.Router, func(), error) {
	newID := func() string { return uuid.New().String() }

	var closers []func() error
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			_ = closers[i]()
		}
	}

	var pgClient *postgres.Client
	if cfg.Database.Postgres.Host != "" {
		var err error
		pgClient, err = postgres.NewClient(&cfg.Database.Postgres)
		if err != nil {
			return nil, nil, fmt.Errorf("postgres: %w", err)
		}
		closers = append(closers, pgClient.Close)
	}

	var redisClient *redis.Client
	if cfg.Cache.Redis.Host != "" {
		var err error
		redisClient, err = redis.NewClient(&cfg.Cache.Redis)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("redis: %w", err)
		}
		closers = append(closers, redisClient.Close)
	}

	var cache *redis.Cache
	var limiter middleware.RateLimiter
	var producer *messaging.Producer
	if redisClient != nil {
		cache = redis.NewCache(redisClient)
		limiter = redis.NewRateLimiter(redisClient)
		if cfg.Messaging.Streams.Enabled {
			producer = messaging.NewProducer(redisClient.Redis(), cfg.Messaging.Streams.MaxLen)
		}
	}

	creditsEnabled := cfg.Credits.Enabled && pgClient != nil
	var creditRepo *postgres.CreditRepository
	var txm repository.Transactor
	if pgClient != nil {
		creditRepo = postgres.NewCreditRepository(pgClient)
		txm = postgres.NewTxManager(pgClient)
	}
	creditSvc := credits.NewService(creditRepo, txm, cache, creditsEnabled, cfg.Credits.BalanceCacheTTL, newID)

	var media generation.MediaStore
	var mediaHandler *handler.MediaHandler
	if pgClient != nil {
		mediaRepo := postgres.NewMediaRepository(pgClient)
		media = mediaRepo
		mediaHandler = handler.NewMediaHandler(mediaRepo)
	}

	var events generation.EventPublisher
	if producer != nil {
		events = producer
	}

	invoker := replicate.NewClient(cfg.Provider.Replicate)
	genSvc := generation.NewService(invoker, creditSvc, media, events, int64(cfg.Credits.DefaultCost), newID)

	handlers := router.Handlers{
		Health:   handler.NewHealthHandler(pgClient, redisClient),
		Tools:    handler.NewToolsHandler(),
		Generate: handler.NewGenerateHandler(genSvc),
		Media:    mediaHandler,
	}

	return router.New(cfg, handlers, limiter, producer), cleanup, nil
}
