package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gomodule/redigo/redis"
	"go.uber.org/zap"

	"shorturl-go/internal/codegen"
	"shorturl-go/internal/config"
	"shorturl-go/internal/i18n"
	"shorturl-go/internal/repository"
	"shorturl-go/internal/router"
	"shorturl-go/internal/service"
	"shorturl-go/pkg/logging"
	"shorturl-go/pkg/logsink"
)

// sinkNotifier Notify 之外还需要在退出时关闭
type sinkNotifier interface {
	Notify(level logsink.Level, pkg logsink.Package, message string)
	Close(ctx context.Context) error
}

type discardCloser struct {
	logsink.Discard
}

func (discardCloser) Close(context.Context) error { return nil }

func newNotifier(cfg config.LogSinkConfig, logger *zap.Logger) sinkNotifier {
	if !cfg.Enabled {
		logger.Info("Remote log sink disabled")
		return discardCloser{}
	}

	stack, err := logsink.ParseStack(cfg.Stack)
	if err != nil {
		logger.Warn("Invalid log sink stack, falling back to backend", zap.String("stack", cfg.Stack))
		stack = logsink.StackBackend
	}

	client := logsink.NewClient(logsink.Config{
		Endpoint: cfg.Endpoint,
		Token:    cfg.Token,
		Timeout:  cfg.Timeout,
	})
	return logsink.NewNotifier(client, logsink.NotifierOptions{
		Stack:     stack,
		QueueSize: cfg.QueueSize,
		Workers:   cfg.Workers,
		Timeout:   cfg.Timeout,
		Logger:    logger,
	})
}

func startServer(r *gin.Engine, addr string) {
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// 启动服务器
	go func() {
		logging.Logger.Info("Server is running on " + addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// 等待中断信号以优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logging.Logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logging.Logger.Error("Server forced to shutdown", zap.Error(err))
	}
}

func main() {
	configFile := flag.String("config", "", "path to config file (default ./config.yaml if present)")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := logging.InitLogger(logging.Options{
		Level:      cfg.Log.Level,
		Path:       cfg.Log.Path,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
		Compress:   cfg.Log.Compress,
	})
	defer func() { _ = logger.Sync() }()
	logger.Info("Application started")

	bundle, err := i18n.InitI18n()
	if err != nil {
		logger.Fatal("Failed to initialize i18n", zap.Error(err))
	}

	notifier := newNotifier(cfg.LogSink, logger)

	store := repository.NewMemoryStore()
	opts := []service.Option{
		service.WithNotifier(notifier),
		service.WithDefaultValidity(cfg.ShortCode.DefaultValidity),
		service.WithMaxAttempts(cfg.ShortCode.MaxAttempts),
	}

	var (
		mirror    *service.ClickMirror
		redisPool *redis.Pool
	)
	if cfg.Redis.Addr != "" {
		redisPool = repository.NewRedisPool(repository.RedisOptions{
			Addr:      cfg.Redis.Addr,
			Password:  cfg.Redis.Password,
			MaxActive: cfg.Redis.MaxActive,
		}, logger)
		mirror = service.NewClickMirror(redisPool, service.ClickMirrorOptions{
			QueueSize: cfg.Redis.MirrorQueue,
			Workers:   cfg.Redis.MirrorWorkers,
		})
		opts = append(opts, service.WithClickRecorder(mirror))
		logger.Info("Click mirror enabled", zap.String("redis_addr", cfg.Redis.Addr))
	}

	svc := service.NewShortURLService(store, codegen.NewGenerator(cfg.ShortCode.Length), opts...)

	var reporter *service.StatsReporter
	if cfg.Stats.Enabled {
		var reporterOpts []service.ReporterOption
		if mirror != nil {
			reporterOpts = append(reporterOpts, service.WithMirror(mirror))
		}
		reporter = service.NewStatsReporter(store, notifier, reporterOpts...)
		if err := reporter.Start(cfg.Stats.Cron); err != nil {
			logger.Fatal("Failed to schedule cron job", zap.Error(err))
		}
	}

	gin.SetMode(gin.ReleaseMode)
	r, err := router.NewRouter(svc, router.Options{
		BaseURL:        cfg.Server.BaseURL,
		TrustedProxies: cfg.Server.TrustedProxies,
		Logger:         logger,
		Bundle:         bundle,
		Notifier:       notifier,
	})
	if err != nil {
		logger.Fatal("Failed to build router", zap.Error(err))
	}

	startServer(r, cfg.Server.Addr)

	if reporter != nil {
		reporter.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if mirror != nil {
		if err := mirror.Close(ctx); err != nil {
			logger.Warn("Click mirror did not drain before shutdown", zap.Error(err))
		}
	}
	if redisPool != nil {
		if err := redisPool.Close(); err != nil {
			logger.Warn("Redis pool close failed", zap.Error(err))
		}
	}
	if err := notifier.Close(ctx); err != nil {
		logger.Warn("Log sink did not drain before shutdown", zap.Error(err))
	}

	logger.Info("Server exiting")
}
