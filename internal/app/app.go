// Package app собирает ядро сервиса из конфигурации: БД, репозитории, use cases и сервисы.
// Веб-слой получает готовые use cases через App.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/redis/go-redis/v9"

	"github.com/RealTimGFM/ScheduleBooker/internal/config"
	"github.com/RealTimGFM/ScheduleBooker/internal/domain"
	"github.com/RealTimGFM/ScheduleBooker/internal/infra/ratelimit"
	bookingRepo "github.com/RealTimGFM/ScheduleBooker/internal/infra/storage/booking"
	catalogRepo "github.com/RealTimGFM/ScheduleBooker/internal/infra/storage/catalog"
	bookingsService "github.com/RealTimGFM/ScheduleBooker/internal/service/bookings"
	catalogService "github.com/RealTimGFM/ScheduleBooker/internal/service/catalog"
	cancelBookingUC "github.com/RealTimGFM/ScheduleBooker/internal/usecase/cancel_booking"
	createBookingUC "github.com/RealTimGFM/ScheduleBooker/internal/usecase/create_booking"
	getAvailableSlotsUC "github.com/RealTimGFM/ScheduleBooker/internal/usecase/get_available_slots"
	"github.com/RealTimGFM/ScheduleBooker/pkg/bookingcode"
	"github.com/RealTimGFM/ScheduleBooker/pkg/dbmetrics"
	"github.com/RealTimGFM/ScheduleBooker/pkg/logger"
	"github.com/RealTimGFM/ScheduleBooker/pkg/metrics"
	"github.com/RealTimGFM/ScheduleBooker/pkg/txmanager"
)

// App собранное ядро сервиса
type App struct {
	Schedule domain.ShopSchedule
	DB       *dbmetrics.DB
	Metrics  *metrics.Metrics

	GetAvailableSlots *getAvailableSlotsUC.UseCase
	CreateBooking     *createBookingUC.UseCase
	CancelBooking     *cancelBookingUC.UseCase
	Bookings          *bookingsService.Service
	Catalog           *catalogService.Service

	sqlDB         *sql.DB
	redisClient   *redis.Client
	stopMetricsCh chan struct{}
}

// New подключается к БД (и Redis, если включен) и собирает use cases
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*App, error) {
	schedule, err := cfg.Shop.Schedule()
	if err != nil {
		return nil, fmt.Errorf("shop schedule: %w", err)
	}

	a := &App{
		Schedule:      schedule,
		stopMetricsCh: make(chan struct{}),
	}

	// Метрики (если включены)
	var collector dbmetrics.MetricsCollector
	if cfg.Metrics.Enabled {
		a.Metrics = metrics.New(cfg.Metrics.ServiceName)
		collector = a.Metrics
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Подключаемся к базе данных
	a.sqlDB, err = sql.Open(cfg.Database.Driver, cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Настраиваем connection pool
	a.sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	a.sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	a.sqlDB.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	if err := a.sqlDB.PingContext(ctx); err != nil {
		a.sqlDB.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	log.Info("Successfully connected to database (driver=%s)", cfg.Database.Driver)

	a.DB = dbmetrics.WrapWithDefault(a.sqlDB, collector, a.stopMetricsCh)

	// Репозитории и менеджер транзакций зависят от драйвера
	var (
		bookingOpts []bookingRepo.Option
		txOpts      []txmanager.Option
	)
	switch cfg.Database.Driver {
	case config.DriverPostgres:
		bookingOpts = append(bookingOpts, bookingRepo.WithRowLocking())
	case config.DriverSQLite:
		txOpts = append(txOpts, txmanager.WithoutIsolationLevels())
	}

	bookingRepository := bookingRepo.NewRepository(a.DB, bookingOpts...)
	catalogRepository := catalogRepo.NewRepository(a.DB)
	txMgr := txmanager.NewTransactionManager(a.DB, txOpts...)

	// Лимитер попыток отмены
	var limiter cancelBookingUC.Limiter
	if cfg.Redis.Enabled {
		a.redisClient = ratelimit.NewRedisClient(cfg.Redis)
		if err := a.redisClient.Ping(ctx).Err(); err != nil {
			a.Close()
			return nil, fmt.Errorf("ping redis: %w", err)
		}
		limiter = ratelimit.NewRedisLimiter(a.redisClient, cfg.RateLimit.CancelAttempts, cfg.RateLimit.CancelWindow())
		log.Info("Cancellation rate limit backed by redis at %s", cfg.Redis.Address)
	} else {
		limiter = ratelimit.NewLocalLimiter(cfg.RateLimit.CancelAttempts, cfg.RateLimit.CancelWindow())
		log.Info("Cancellation rate limit kept in memory")
	}

	// Use cases и сервисы
	a.GetAvailableSlots = getAvailableSlotsUC.NewUseCase(
		bookingRepository,
		catalogRepository,
		schedule,
		a.Metrics,
		log,
	)
	a.CreateBooking = createBookingUC.NewUseCase(
		bookingRepository,
		catalogRepository,
		txMgr,
		bookingcode.NewGenerator(cfg.Shop.BookingCodeLength),
		schedule,
		cfg.Shop.BookingCodeAttempts,
		a.Metrics,
		log,
	)
	a.CancelBooking = cancelBookingUC.NewUseCase(
		bookingRepository,
		txMgr,
		limiter,
		schedule,
		a.Metrics,
		log,
	)
	a.Bookings = bookingsService.NewService(
		bookingRepository,
		catalogRepository,
		txMgr,
		schedule,
		a.Metrics,
		log,
	)
	a.Catalog = catalogService.NewService(catalogRepository, log)

	return a, nil
}

// Close останавливает сбор метрик и закрывает соединения
func (a *App) Close() error {
	select {
	case <-a.stopMetricsCh:
	default:
		close(a.stopMetricsCh)
	}

	if a.redisClient != nil {
		_ = a.redisClient.Close()
	}
	return a.sqlDB.Close()
}
