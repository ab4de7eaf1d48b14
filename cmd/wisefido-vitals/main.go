package main

import (
	"context"
	"database/sql"
	"fmt"
	"os/signal"
	"syscall"

	"wisefido-vitals/internal/config"
	"wisefido-vitals/internal/database"
	httpapi "wisefido-vitals/internal/http"
	"wisefido-vitals/internal/logger"
	"wisefido-vitals/internal/notifier"
	"wisefido-vitals/internal/repository"
	"wisefido-vitals/internal/service"

	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

func main() {
	// 1. 加载配置
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// 2. 初始化日志
	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, "wisefido-vitals")
	if err != nil {
		panic(fmt.Sprintf("Failed to init logger: %v", err))
	}
	defer log.Sync()

	// 3. SIGINT / SIGTERM 取消上下文
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 4. Redis（可选：实时缓存 + redis 通知通道）
	var redisClient *redis.Client
	if cfg.RedisEnabled {
		redisClient, err = database.NewRedisClient(ctx, &cfg.Redis)
		if err != nil {
			log.Fatal("Failed to connect redis", zap.Error(err))
		}
		defer redisClient.Close()
	}

	// 5. PostgreSQL（可选：归档）
	var db *sql.DB
	if cfg.DBEnabled {
		db, err = database.NewPostgresDB(ctx, &cfg.Database)
		if err != nil {
			log.Fatal("Failed to connect database", zap.Error(err))
		}
		defer db.Close()
	}

	// 6. 通知通道
	n, closeNotifier, err := notifier.New(cfg, redisClient, log)
	if err != nil {
		log.Fatal("Failed to create notifier", zap.Error(err))
	}
	defer closeNotifier()

	// 7. 指标
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := service.NewMetrics(reg)

	// 8. 服务
	dispatcher := service.NewAlertDispatcher(n, cfg.Notifier.Recipient, metrics, log)
	svc := service.NewVitalsService(dispatcher, metrics, log)

	if db != nil {
		archive := repository.NewReadingArchive(db, log)
		if err := archive.EnsureSchema(ctx); err != nil {
			log.Fatal("Failed to prepare archive schema", zap.Error(err))
		}
		svc.WithArchive(archive)
	}
	if redisClient != nil {
		svc.WithRealtimeCache(repository.NewRealtimeCache(cfg, redisClient, log))
	}

	if cfg.Patient.Name != "" {
		if err := svc.Register(cfg.Patient.Name, cfg.Patient.ID); err != nil {
			log.Fatal("Failed to register patient", zap.Error(err))
		}
	}

	// 9. HTTP
	router := httpapi.NewRouter(log)
	router.RegisterVitalsRoutes(httpapi.NewVitalsHandler(svc, log))
	router.RegisterOpsRoutes(reg)

	log.Info("Vitals service starting",
		zap.String("addr", cfg.HTTP.Addr),
		zap.String("notifier", cfg.Notifier.Transport),
		zap.Bool("db_enabled", cfg.DBEnabled),
		zap.Bool("redis_enabled", cfg.RedisEnabled),
	)

	if err := service.NewServer(cfg.HTTP.Addr, router, log).Run(ctx); err != nil {
		log.Error("HTTP server error", zap.Error(err))
		return
	}
	log.Info("Vitals service stopped")
}
