package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	cancelBookingHandler "github.com/groovetime/booking-engine/internal/api/handlers/cancel_booking"
	createBlockHandler "github.com/groovetime/booking-engine/internal/api/handlers/create_block"
	createBookingHandler "github.com/groovetime/booking-engine/internal/api/handlers/create_booking"
	deleteBlockHandler "github.com/groovetime/booking-engine/internal/api/handlers/delete_block"
	getAvailabilityHandler "github.com/groovetime/booking-engine/internal/api/handlers/get_availability"
	getBookingHandler "github.com/groovetime/booking-engine/internal/api/handlers/get_booking"
	getProviderBookingsHandler "github.com/groovetime/booking-engine/internal/api/handlers/get_provider_bookings"
	getUserBookingsHandler "github.com/groovetime/booking-engine/internal/api/handlers/get_user_bookings"
	listProvidersHandler "github.com/groovetime/booking-engine/internal/api/handlers/list_providers"
	markCompletedHandler "github.com/groovetime/booking-engine/internal/api/handlers/mark_completed"
	markPaidHandler "github.com/groovetime/booking-engine/internal/api/handlers/mark_paid"
	"github.com/groovetime/booking-engine/internal/api/middleware"
	"github.com/groovetime/booking-engine/internal/config"
	"github.com/groovetime/booking-engine/internal/domain"
	"github.com/groovetime/booking-engine/internal/infra/cache"
	outboxPublisher "github.com/groovetime/booking-engine/internal/infra/outbox"
	blockRepo "github.com/groovetime/booking-engine/internal/infra/storage/block"
	bookingRepo "github.com/groovetime/booking-engine/internal/infra/storage/booking"
	outboxRepo "github.com/groovetime/booking-engine/internal/infra/storage/outbox"
	"github.com/groovetime/booking-engine/internal/integrations/payments"
	blocksService "github.com/groovetime/booking-engine/internal/service/blocks"
	bookingsService "github.com/groovetime/booking-engine/internal/service/bookings"
	cancelBookingUC "github.com/groovetime/booking-engine/internal/usecase/cancel_booking"
	createBookingUC "github.com/groovetime/booking-engine/internal/usecase/create_booking"
	getAvailabilityUC "github.com/groovetime/booking-engine/internal/usecase/get_availability"
	markPaidUC "github.com/groovetime/booking-engine/internal/usecase/mark_paid"
	"github.com/groovetime/booking-engine/pkg/dbmetrics"
	"github.com/groovetime/booking-engine/pkg/logger"
	"github.com/groovetime/booking-engine/pkg/metrics"
	"github.com/groovetime/booking-engine/pkg/simpletxmanager"
	"github.com/groovetime/booking-engine/pkg/txmanager"
)

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load("config.toml")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting booking-engine...")
	log.Info("Configuration loaded from config.toml")

	// Реестр провайдеров из конфигурации
	providers := make([]domain.Provider, len(cfg.Providers))
	for i, p := range cfg.Providers {
		providers[i] = domain.Provider{
			ID:         p.ID,
			Type:       domain.ServiceType(p.Type),
			Name:       p.Name,
			HourlyRate: p.HourlyRate,
			DailyRate:  p.DailyRate,
		}
	}
	registry, err := domain.NewProviderRegistry(providers)
	if err != nil {
		log.Fatal("Failed to build provider registry: %v", err)
	}
	log.Info("Provider registry loaded: %d providers", len(providers))

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	var wrappedDB *dbmetrics.DB
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Подключаемся к базе данных
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	// Проверяем соединение
	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	// Инициализируем репозитории (с метриками или без)
	var (
		bookingRepository *bookingRepo.Repository
		blockRepository   *blockRepo.Repository
		outboxRepository  *outboxRepo.Repository
	)

	type TxManager interface {
		Do(ctx context.Context, fn func(ctx context.Context) error) error
		DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
	}
	var txMgr TxManager

	if cfg.Metrics.Enabled {
		wrappedDB = dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Metrics.ServiceName, stopMetricsCh)
		log.Info("Database metrics collection started")

		bookingRepository = bookingRepo.NewRepository(wrappedDB)
		blockRepository = blockRepo.NewRepository(wrappedDB)
		outboxRepository = outboxRepo.NewRepository(wrappedDB)
		txMgr = txmanager.NewTransactionManager(wrappedDB)
	} else {
		bookingRepository = bookingRepo.NewRepository(db)
		blockRepository = blockRepo.NewRepository(db)
		outboxRepository = outboxRepo.NewRepository(db)
		txMgr = simpletxmanager.NewTransactionManager(db)
	}

	// Кеш доступности (если включен)
	var availabilityCache *cache.AvailabilityCache
	if cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()

		pingCtx, cancelPing := context.WithTimeout(context.Background(), 3*time.Second)
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			log.Fatal("Failed to ping redis at %s: %v", cfg.Redis.Addr, err)
		}
		cancelPing()

		availabilityCache = cache.NewAvailabilityCache(rdb, time.Duration(cfg.Redis.TTLSeconds)*time.Second)
		log.Info("Availability cache enabled (redis=%s, ttl=%ds)", cfg.Redis.Addr, cfg.Redis.TTLSeconds)
	}

	// Интерфейсы кеша по потребителям; остаются nil при выключенном Redis
	var (
		createCache createBookingUC.AvailabilityCache
		cancelCache cancelBookingUC.AvailabilityCache
		availCache  getAvailabilityUC.AvailabilityCache
		blocksCache blocksService.AvailabilityCache
	)
	if availabilityCache != nil {
		createCache = availabilityCache
		cancelCache = availabilityCache
		availCache = availabilityCache
		blocksCache = availabilityCache
	}

	// Платежный клиент (возвраты при отмене)
	paymentsClient := payments.NewClient(cfg.Payments.StripeAPIKey, cfg.Payments.Enabled, log)
	if cfg.Payments.Enabled {
		log.Info("Payments client enabled (stripe)")
	} else {
		log.Info("Payments client disabled, refunds will be logged only")
	}

	// Инициализируем сервисы
	bookingSvc := bookingsService.NewService(
		bookingRepository,
		outboxRepository,
		registry,
		txMgr,
		log,
	)
	blockSvc := blocksService.NewService(
		blockRepository,
		registry,
		blocksCache,
		log,
	)

	// Инициализируем use cases
	createBookingUseCase := createBookingUC.NewUseCase(
		bookingRepository,
		blockRepository,
		outboxRepository,
		registry,
		txMgr,
		createCache,
		log,
	)
	markPaidUseCase := markPaidUC.NewUseCase(
		bookingRepository,
		outboxRepository,
		txMgr,
		log,
	)
	cancelBookingUseCase := cancelBookingUC.NewUseCase(
		bookingRepository,
		outboxRepository,
		paymentsClient,
		txMgr,
		cancelCache,
		log,
	)
	getAvailabilityUseCase := getAvailabilityUC.NewUseCase(
		bookingRepository,
		blockRepository,
		registry,
		availCache,
		log,
	)

	// Инициализируем handlers
	createBooking := createBookingHandler.NewHandler(createBookingUseCase, log)
	markPaid := markPaidHandler.NewHandler(markPaidUseCase, log)
	cancelBooking := cancelBookingHandler.NewHandler(cancelBookingUseCase, log)
	getAvailability := getAvailabilityHandler.NewHandler(getAvailabilityUseCase, log)
	getBooking := getBookingHandler.NewHandler(bookingSvc, log)
	getUserBookings := getUserBookingsHandler.NewHandler(bookingSvc, log)
	getProviderBookings := getProviderBookingsHandler.NewHandler(bookingSvc, log)
	listProviders := listProvidersHandler.NewHandler(bookingSvc, log)
	markCompleted := markCompletedHandler.NewHandler(bookingSvc, log)
	createBlock := createBlockHandler.NewHandler(blockSvc, log)
	deleteBlock := deleteBlockHandler.NewHandler(blockSvc, log)

	// Outbox relay в Kafka (если включен)
	publisherCtx, stopPublisher := context.WithCancel(context.Background())
	defer stopPublisher()

	if cfg.Kafka.Enabled {
		var pubMetrics outboxPublisher.Metrics
		if metricsCollector != nil {
			pubMetrics = metricsCollector
		}
		publisher := outboxPublisher.NewPublisher(
			outboxRepository,
			txMgr,
			pubMetrics,
			log,
			cfg.Kafka.Brokers,
			time.Duration(cfg.Kafka.PollEverySeconds)*time.Second,
			cfg.Kafka.BatchSize,
		)
		go publisher.Run(publisherCtx)
	} else {
		log.Info("Kafka disabled, lifecycle events stay in outbox table")
	}

	// Настраиваем роутер
	r := mux.NewRouter()

	// Добавляем metrics middleware и endpoint (если метрики включены)
	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector, cfg.Metrics.ServiceName))
		log.Info("HTTP metrics middleware enabled")

		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	// Каталог провайдеров
	api.HandleFunc("/providers", listProviders.Handle).Methods(http.MethodGet)

	// Карта доступности провайдера за месяц
	api.HandleFunc("/providers/{providerId}/availability",
		getAvailability.Handle).Methods(http.MethodGet)

	// Колбэк платежного шлюза (подпись проверяется на API-шлюзе)
	api.HandleFunc("/bookings/{bookingId}/mark-paid", markPaid.Handle).Methods(http.MethodPost)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth(log))

	// --- Бронирования ---
	// Создание бронирования
	protected.HandleFunc("/bookings", createBooking.Handle).Methods(http.MethodPost)

	// Получение бронирования по ID
	protected.HandleFunc("/bookings/{bookingId}", getBooking.Handle).Methods(http.MethodGet)

	// Отмена бронирования
	protected.HandleFunc("/bookings/{bookingId}/cancel", cancelBooking.Handle).Methods(http.MethodPatch)

	// Завершение бронирования (только администратор)
	protected.HandleFunc("/bookings/{bookingId}/complete", markCompleted.Handle).Methods(http.MethodPost)

	// История бронирований пользователя
	protected.HandleFunc("/users/{userId}/bookings", getUserBookings.Handle).Methods(http.MethodGet)

	// --- Администрирование провайдеров ---
	// Список бронирований провайдера
	protected.HandleFunc("/providers/{providerId}/bookings", getProviderBookings.Handle).Methods(http.MethodGet)

	// Блокировка даты
	protected.HandleFunc("/providers/{providerId}/blocks", createBlock.Handle).Methods(http.MethodPost)

	// Снятие блокировки
	protected.HandleFunc("/blocks/{blockId}", deleteBlock.Handle).Methods(http.MethodDelete)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Останавливаем relay и сбор метрик connection pool
	stopPublisher()
	if cfg.Metrics.Enabled {
		close(stopMetricsCh)
		log.Info("Metrics collection stopped")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	log.Info("Server stopped gracefully")
}
