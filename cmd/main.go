package main

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	cancelReservationHandler "github.com/m04kA/SMC-ParkingService/internal/api/handlers/cancel_reservation"
	createReservationHandler "github.com/m04kA/SMC-ParkingService/internal/api/handlers/create_reservation"
	deleteReservationHandler "github.com/m04kA/SMC-ParkingService/internal/api/handlers/delete_reservation"
	extendReservationHandler "github.com/m04kA/SMC-ParkingService/internal/api/handlers/extend_reservation"
	getReservationHandler "github.com/m04kA/SMC-ParkingService/internal/api/handlers/get_reservation"
	getUserReservationsHandler "github.com/m04kA/SMC-ParkingService/internal/api/handlers/get_user_reservations"
	listAvailableSlotsHandler "github.com/m04kA/SMC-ParkingService/internal/api/handlers/list_available_slots"
	listLocationsHandler "github.com/m04kA/SMC-ParkingService/internal/api/handlers/list_locations"
	listSlotsHandler "github.com/m04kA/SMC-ParkingService/internal/api/handlers/list_slots"
	nearbyLocationsHandler "github.com/m04kA/SMC-ParkingService/internal/api/handlers/nearby_locations"
	"github.com/m04kA/SMC-ParkingService/internal/api/middleware"
	"github.com/m04kA/SMC-ParkingService/internal/config"
	"github.com/m04kA/SMC-ParkingService/internal/events"
	"github.com/m04kA/SMC-ParkingService/internal/infra/cache"
	locationRepo "github.com/m04kA/SMC-ParkingService/internal/infra/storage/location"
	reservationRepo "github.com/m04kA/SMC-ParkingService/internal/infra/storage/reservation"
	slotRepo "github.com/m04kA/SMC-ParkingService/internal/infra/storage/slot"
	locationsService "github.com/m04kA/SMC-ParkingService/internal/service/locations"
	reservationsService "github.com/m04kA/SMC-ParkingService/internal/service/reservations"
	slotsService "github.com/m04kA/SMC-ParkingService/internal/service/slots"
	createReservationUC "github.com/m04kA/SMC-ParkingService/internal/usecase/create_reservation"
	expireReservationsUC "github.com/m04kA/SMC-ParkingService/internal/usecase/expire_reservations"
	"github.com/m04kA/SMC-ParkingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-ParkingService/pkg/logger"
	"github.com/m04kA/SMC-ParkingService/pkg/metrics"
	"github.com/m04kA/SMC-ParkingService/pkg/simpletxmanager"
	"github.com/m04kA/SMC-ParkingService/pkg/txmanager"
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

	log.Info("Starting SMC-ParkingService...")
	log.Info("Configuration loaded from config.toml")

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
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
		locationRepository    *locationRepo.Repository
		slotRepository        *slotRepo.Repository
		reservationRepository *reservationRepo.Repository
	)

	// Общий интерфейс обоих менеджеров транзакций
	type TxManager interface {
		Do(ctx context.Context, fn func(ctx context.Context) error) error
		DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
		DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
	}
	var txMgr TxManager

	if cfg.Metrics.Enabled {
		wrappedDB := dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Metrics.ServiceName, stopMetricsCh)
		log.Info("Database metrics collection started")

		locationRepository = locationRepo.NewRepository(wrappedDB)
		slotRepository = slotRepo.NewRepository(wrappedDB)
		reservationRepository = reservationRepo.NewRepository(wrappedDB)
		txMgr = txmanager.NewTransactionManager(wrappedDB)
	} else {
		locationRepository = locationRepo.NewRepository(db)
		slotRepository = slotRepo.NewRepository(db)
		reservationRepository = reservationRepo.NewRepository(db)
		txMgr = simpletxmanager.NewTransactionManager(db)
	}

	// Кэш локаций (опционально). Запись и чтение идут через сервис
	// локаций, жизненный цикл бронирований только сбрасывает кэш.
	var (
		locationsCache      locationsService.LocationsCache
		createCacheReset    createReservationUC.LocationsCache
		lifecycleCacheReset reservationsService.LocationsCache
		sweeperCacheReset   expireReservationsUC.LocationsCache
	)
	if cfg.Redis.Enabled {
		redisCache := cache.NewLocationsCache(
			cfg.Redis.Addr,
			cfg.Redis.Password,
			cfg.Redis.DB,
			time.Duration(cfg.Redis.LocationsTTLSeconds)*time.Second,
		)
		defer redisCache.Close()
		locationsCache = redisCache
		createCacheReset = redisCache
		lifecycleCacheReset = redisCache
		sweeperCacheReset = redisCache
		log.Info("Redis locations cache enabled (addr=%s, ttl=%ds)", cfg.Redis.Addr, cfg.Redis.LocationsTTLSeconds)
	}

	// Продюсер событий бронирований (опционально).
	// Nil-значение безопасно, методы становятся no-op.
	var producer *events.Producer
	if cfg.Kafka.Enabled {
		producer = events.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.ReservationsTopic)
		defer producer.Close()
		log.Info("Kafka producer enabled (brokers=%v, topic=%s)", cfg.Kafka.Brokers, cfg.Kafka.ReservationsTopic)
	}

	// Инициализируем сервисы
	locationsSvc := locationsService.NewService(locationRepository, locationsCache, log)

	if cfg.Demo.SimulateOccupancy {
		log.Warn("Demo occupancy simulation is ON: slot statuses in listings are randomized")
	}
	slotsSvc := slotsService.NewService(
		slotRepository,
		locationRepository,
		log,
		cfg.Demo.SimulateOccupancy,
		rand.New(rand.NewSource(time.Now().UnixNano())),
	)

	reservationsSvc := reservationsService.NewService(
		reservationRepository,
		slotRepository,
		locationRepository,
		txMgr,
		producer,
		lifecycleCacheReset,
		log,
	)

	// Инициализируем use cases
	createReservationUseCase := createReservationUC.NewUseCase(
		reservationRepository,
		slotRepository,
		locationRepository,
		txMgr,
		producer,
		createCacheReset,
		log,
	)

	var sweeperMetrics expireReservationsUC.Metrics
	if metricsCollector != nil {
		sweeperMetrics = metricsCollector
	}
	expireReservationsUseCase := expireReservationsUC.NewUseCase(
		reservationRepository,
		slotRepository,
		locationRepository,
		txMgr,
		producer,
		sweeperCacheReset,
		sweeperMetrics,
		log,
	)

	// Инициализируем handlers
	listLocations := listLocationsHandler.NewHandler(locationsSvc, log)
	nearbyLocations := nearbyLocationsHandler.NewHandler(locationsSvc, log)
	listSlots := listSlotsHandler.NewHandler(slotsSvc, log)
	listAvailableSlots := listAvailableSlotsHandler.NewHandler(slotsSvc, log)
	createReservation := createReservationHandler.NewHandler(createReservationUseCase, log)
	getReservation := getReservationHandler.NewHandler(reservationsSvc, log)
	getUserReservations := getUserReservationsHandler.NewHandler(reservationsSvc, log)
	extendReservation := extendReservationHandler.NewHandler(reservationsSvc, log)
	cancelReservation := cancelReservationHandler.NewHandler(reservationsSvc, log)
	deleteReservation := deleteReservationHandler.NewHandler(reservationsSvc, log)

	// Настраиваем роутер
	r := mux.NewRouter()
	r.Use(middleware.RequestID)

	if cfg.Metrics.Enabled {
		r.Use(middleware.Metrics(metricsCollector))
		log.Info("HTTP metrics middleware enabled")

		// Metrics endpoint (публичный, без аутентификации)
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// API prefix, все маршруты требуют заголовок X-User-ID
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.Auth(log))

	// --- Локации ---
	api.HandleFunc("/locations", listLocations.Handle).Methods(http.MethodGet)
	api.HandleFunc("/locations/nearby", nearbyLocations.Handle).Methods(http.MethodGet)

	// --- Слоты локации ---
	api.HandleFunc("/locations/{locationId}/slots", listSlots.Handle).Methods(http.MethodGet)
	api.HandleFunc("/locations/{locationId}/slots/available", listAvailableSlots.Handle).Methods(http.MethodGet)

	// --- Бронирования ---
	api.HandleFunc("/reservations", createReservation.Handle).Methods(http.MethodPost)
	api.HandleFunc("/reservations/{reservationId}", getReservation.Handle).Methods(http.MethodGet)
	api.HandleFunc("/reservations/{reservationId}/extend", extendReservation.Handle).Methods(http.MethodPatch)
	api.HandleFunc("/reservations/{reservationId}/cancel", cancelReservation.Handle).Methods(http.MethodPatch)
	api.HandleFunc("/reservations/{reservationId}", deleteReservation.Handle).Methods(http.MethodDelete)

	// История бронирований пользователя
	api.HandleFunc("/users/{userId}/reservations", getUserReservations.Handle).Methods(http.MethodGet)

	// Фоновое завершение просроченных бронирований
	sweeperCtx, stopSweeper := context.WithCancel(context.Background())
	defer stopSweeper()

	if cfg.Sweeper.Enabled {
		interval := time.Duration(cfg.Sweeper.IntervalSeconds) * time.Second
		go func() {
			log.Info("Expiry sweeper started (interval=%s)", interval)
			ticker := time.NewTicker(interval)
			defer ticker.Stop()

			for {
				select {
				case <-sweeperCtx.Done():
					log.Info("Expiry sweeper stopped")
					return
				case <-ticker.C:
					if _, err := expireReservationsUseCase.Execute(sweeperCtx); err != nil {
						log.Error("Expiry sweeper pass failed: %v", err)
					}
				}
			}
		}()
	}

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

	// Останавливаем фоновый обработчик и сбор метрик
	stopSweeper()
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
