package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"github.com/paincake00/radarcore/internal/config"
	delivery "github.com/paincake00/radarcore/internal/delivery/http"
	"github.com/paincake00/radarcore/internal/infrastructure/memory"
	"github.com/paincake00/radarcore/internal/infrastructure/postgres"
	"github.com/paincake00/radarcore/internal/infrastructure/push"
	"github.com/paincake00/radarcore/internal/infrastructure/redis"
	"github.com/paincake00/radarcore/internal/logger"
	"github.com/paincake00/radarcore/internal/metrics"
	"github.com/paincake00/radarcore/internal/usecase"
	"github.com/paincake00/radarcore/internal/worker"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	// Загружаем .env (опционально)
	if err := godotenv.Load(); err != nil {
		logger.Infof("No .env file found or failed to load, relying on environment variables")
	}

	// 1. Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Invalid configuration: %v", err)
	}
	logger.Init(cfg.LogLevel)

	// 2. Подключение к базе данных (PostgreSQL): токены устройств и журнал доставок
	pgRepo, err := postgres.New(cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("Failed to connect to postgres: %v", err)
	}
	defer pgRepo.Close()

	// 3. Подключение к Redis: гео-индекс, лента событий, дедупликация, очередь
	redisRepo, err := redis.New(redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
	if err != nil {
		logger.Fatalf("Failed to connect to redis: %v", err)
	}
	defer redisRepo.Close()

	m := metrics.New(prometheus.DefaultRegisterer)

	// 4. Очередь push-уведомлений: список Redis (по умолчанию) или asynq
	deliveryRecords := usecase.NewDeduper(redisRepo, usecase.DeliveryRecordKey, cfg.DeliveryRecordTTL, m)
	pushRetries := cfg.PushMaxRetries
	if cfg.PushQueueBackend == "asynq" {
		pushRetries = 0 // повторяет сервер asynq
	}
	w := worker.New(
		redisRepo,
		cfg.PushQueue,
		push.NewClient(cfg.PushGatewayURL, pushRetries, time.Second),
		deliveryRecords,
		pgRepo,
		m,
	)

	var gateway usecase.DeliveryGateway
	bgCtx, bgCancel := context.WithCancel(context.Background())
	workerDone := make(chan struct{})
	if cfg.PushQueueBackend == "asynq" {
		redisOpt := asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB}
		asynqClient := asynq.NewClient(redisOpt)
		defer asynqClient.Close()
		gateway = worker.NewAsynqGateway(asynqClient, cfg.PushQueue, cfg.PushMaxRetries)

		asynqSrv, mux := worker.NewAsynqServer(redisOpt, cfg.PushQueue, cfg.PushConcurrency, w)
		if err := asynqSrv.Start(mux); err != nil {
			logger.Fatalf("Failed to start asynq server: %v", err)
		}
		go func() {
			<-bgCtx.Done()
			asynqSrv.Shutdown()
			close(workerDone)
		}()
	} else {
		gateway = worker.NewQueueGateway(redisRepo, cfg.PushQueue)
		// 5. Запуск воркера (Background Worker)
		go func() {
			w.Start(bgCtx)
			close(workerDone)
		}()
	}
	logger.Infof("Push queue backend: %s", cfg.PushQueueBackend)

	// 6. Инициализация сервисов (Application Layer)
	locations := memory.NewLocationCache(cfg.UserLocationTTL)
	matcher := usecase.NewEventMatcher(redisRepo)
	matcher.GeoKey = redisRepo.EventsGeoKey
	radarService := usecase.NewRadarService(
		usecase.NewMovementGate(cfg.MinDistanceChangeMeters, cfg.MaxCacheAge),
		matcher,
		usecase.NewDeduper(redisRepo, usecase.NotificationKey, cfg.NotificationCacheTTL, m),
		redisRepo,
		redisRepo,
		redisRepo,
		locations,
		pgRepo,
		gateway,
		m,
		usecase.RadarSettings{
			SearchRadius:    cfg.SearchRadiusMeters,
			TimeWindow:      cfg.TimeWindow(),
			UserLocationTTL: cfg.UserLocationTTL,
		},
	)
	eventService := usecase.NewEventService(redisRepo, pgRepo)

	// Чистка кеша позиций от пользователей, которые перестали присылать координаты
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-bgCtx.Done():
				return
			case <-ticker.C:
				if n := locations.Sweep(); n > 0 {
					logger.Debugf("Evicted %d stale cached locations", n)
				}
			}
		}
	}()

	// 7. Инициализация HTTP-обработчика и роутера
	// Внедряем репозитории как "Pingers" для health-check
	handler := delivery.NewHandler(radarService, eventService, pgRepo, redisRepo, cfg.APIKey, cfg.StatsWindowMinutes)
	handler.Metrics = m
	handler.RateLimit = delivery.RateLimit{
		Limiter:     redisRepo,
		MaxRequests: cfg.RateLimitMaxRequests,
		Window:      cfg.RateLimitWindow,
	}
	router := handler.InitRoutes()

	// 8. Запуск HTTP-сервера
	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: router,
	}

	go func() {
		logger.Infof("Server listening on %s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("listen: %s", err)
		}
	}()

	// 9. Graceful Shutdown (Плавное завершение)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Infof("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	bgCancel() // Останавливаем воркер и чистку кеша
	select {
	case <-workerDone:
	case <-ctx.Done():
		logger.Warnf("Worker did not finish in time")
	}

	logger.Infof("Server exiting")
}
