// PricingService 主程序
// 功能：上传波动率微笑行情，按 Black-76 为欧式期货期权定价
// 架构：DDD 分层 + Gin HTTP + Prometheus 指标 + 可选 Kafka 事件与 Redis 限流
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

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/wyfcoding/smilepricing/internal/pricing/application"
	"github.com/wyfcoding/smilepricing/internal/pricing/domain"
	"github.com/wyfcoding/smilepricing/internal/pricing/infrastructure/messaging"
	"github.com/wyfcoding/smilepricing/internal/pricing/infrastructure/persistence/memory"
	httphandler "github.com/wyfcoding/smilepricing/internal/pricing/interfaces/http"
	"github.com/wyfcoding/smilepricing/pkg/cache"
	"github.com/wyfcoding/smilepricing/pkg/config"
	"github.com/wyfcoding/smilepricing/pkg/logger"
	"github.com/wyfcoding/smilepricing/pkg/metrics"
	"github.com/wyfcoding/smilepricing/pkg/middleware"
	"github.com/wyfcoding/smilepricing/pkg/mq"
	"github.com/wyfcoding/smilepricing/pkg/ratelimit"
)

func main() {
	// 1. 加载配置
	configPath := config.GetEnv("APP_CONFIG", "configs/pricing.toml")
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	loggerCfg := logger.Config{
		Level:      cfg.Logger.Level,
		Format:     cfg.Logger.Format,
		Output:     cfg.Logger.Output,
		FilePath:   cfg.Logger.FilePath,
		MaxSize:    cfg.Logger.MaxSize,
		MaxBackups: cfg.Logger.MaxBackups,
		MaxAge:     cfg.Logger.MaxAge,
		Compress:   cfg.Logger.Compress,
		WithCaller: cfg.Logger.WithCaller,
	}
	if err := logger.Init(loggerCfg); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	today := valuationClock(cfg.Pricing)
	logger.Info(ctx, "Starting PricingService",
		"service", cfg.ServiceName,
		"environment", cfg.Environment,
		"config", configPath,
		"valuation_date", today().Format(config.DateLayout),
		"risk_free_rate", cfg.Pricing.RiskFreeRate,
	)

	// 3. 初始化指标
	metricsInstance := metrics.New(cfg.ServiceName)

	// 4. 事件发布（Kafka 可选）
	publisher, closePublisher, err := newPublisher(cfg.Kafka)
	if err != nil {
		logger.Fatal(ctx, "Failed to initialize Kafka producer", "error", err)
	}
	defer closePublisher()

	// 5. 限流器（Redis 可选，否则进程内令牌桶）
	limiter, closeLimiter, err := newRateLimiter(ctx, cfg)
	if err != nil {
		logger.Fatal(ctx, "Failed to initialize rate limiter", "error", err)
	}
	defer closeLimiter()

	// 6. 初始化仓储与应用服务
	pricingService := application.NewPricingService(application.Options{
		Repo:         memory.NewSnapshotRepository(),
		Publisher:    publisher,
		Metrics:      metricsInstance,
		Today:        today,
		RiskFreeRate: cfg.Pricing.RiskFreeRate,
	})

	// 7. 创建 HTTP 服务器
	httpServer := createHTTPServer(cfg, pricingService, limiter, metricsInstance)

	// 8. 启动服务，任一服务退出或收到信号时整体关停
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info(gctx, "Starting HTTP server", "addr", httpServer.Addr)
		return serve(httpServer)
	})

	var metricsServer *http.Server
	if cfg.Metrics.Enabled {
		metricsServer = metrics.NewServer(fmt.Sprintf(":%d", cfg.Metrics.Port), cfg.Metrics.Path, metricsInstance)
		g.Go(func() error {
			return serve(metricsServer)
		})
	}

	// 9. 优雅关停
	g.Go(func() error {
		<-gctx.Done()
		logger.Info(context.Background(), "Shutting down PricingService")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownTimeout)*time.Second)
		defer cancel()

		errs := []error{httpServer.Shutdown(shutdownCtx)}
		if metricsServer != nil {
			errs = append(errs, metricsServer.Shutdown(shutdownCtx))
		}
		return errors.Join(errs...)
	})

	if err := g.Wait(); err != nil {
		logger.Error(context.Background(), "PricingService exited with error", "error", err)
		os.Exit(1)
	}
	logger.Info(context.Background(), "PricingService stopped")
}

func serve(srv *http.Server) error {
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server %s: %w", srv.Addr, err)
	}
	return nil
}

// createHTTPServer 创建 HTTP 服务器
func createHTTPServer(cfg *config.Config, svc *application.PricingService, limiter ratelimit.RateLimiter, m *metrics.Metrics) *http.Server {
	if cfg.Environment == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// 添加中间件
	router.Use(middleware.GinLoggingMiddleware())
	router.Use(middleware.GinRecoveryMiddleware())
	router.Use(middleware.GinCORSMiddleware())
	router.Use(middleware.GinMetricsMiddleware(m))
	router.Use(middleware.RateLimitMiddleware(limiter, cfg.RateLimit))

	httphandler.NewPricingHandler(svc, cfg.Pricing.MaxUploadBytes).RegisterRoutes(router)

	return &http.Server{
		Addr:              cfg.HTTP.Addr(),
		Handler:           router,
		ReadTimeout:       time.Duration(cfg.HTTP.ReadTimeout) * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      time.Duration(cfg.HTTP.WriteTimeout) * time.Second,
	}
}

// valuationClock 返回估值日：配置了固定日期时始终返回该日，否则取当天 (UTC)
func valuationClock(cfg config.PricingConfig) func() time.Time {
	if cfg.ValuationDate != "" {
		fixed, _ := cfg.Today() // Load 已校验
		return func() time.Time { return fixed }
	}
	return func() time.Time {
		t, _ := cfg.Today()
		return t
	}
}

// newPublisher 未启用 Kafka 时返回丢弃事件的发布者
func newPublisher(cfg config.KafkaConfig) (domain.EventPublisher, func(), error) {
	if !cfg.Enabled {
		return messaging.NopEventPublisher{}, func() {}, nil
	}

	producer, err := mq.NewProducer(mq.KafkaConfig{
		Brokers:      cfg.Brokers,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
	})
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		if err := producer.Close(); err != nil {
			logger.Error(context.Background(), "Failed to close Kafka producer", "error", err)
		}
	}
	return messaging.NewKafkaEventPublisher(producer, cfg.Topic, 0), closeFn, nil
}

// newRateLimiter 启用 Redis 时使用分布式限流，否则使用进程内令牌桶
func newRateLimiter(ctx context.Context, cfg *config.Config) (ratelimit.RateLimiter, func(), error) {
	if !cfg.Redis.Enabled {
		return ratelimit.NewLocalRateLimiter(), func() {}, nil
	}

	client, err := cache.NewClient(ctx, cache.Config{
		Host:         cfg.Redis.Host,
		Port:         cfg.Redis.Port,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		MaxPoolSize:  cfg.Redis.MaxPoolSize,
		ConnTimeout:  cfg.Redis.ConnTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		if err := client.Close(); err != nil {
			logger.Error(context.Background(), "Failed to close Redis client", "error", err)
		}
	}
	return ratelimit.NewRedisRateLimiter(client), closeFn, nil
}
