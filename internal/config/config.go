package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/RealTimGFM/ScheduleBooker/internal/domain"
	"github.com/RealTimGFM/ScheduleBooker/pkg/types"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

// Config конфигурация приложения
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Database  DatabaseConfig  `toml:"database"`
	Logs      LogsConfig      `toml:"logs"`
	Metrics   MetricsConfig   `toml:"metrics"`
	Shop      ShopConfig      `toml:"shop"`
	Redis     RedisConfig     `toml:"redis"`
	RateLimit RateLimitConfig `toml:"ratelimit"`
}

// ServerConfig настройки HTTP-сервера служебных эндпоинтов (таймауты в секундах)
type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`
	WriteTimeout    int `toml:"write_timeout"`
	IdleTimeout     int `toml:"idle_timeout"`
	ShutdownTimeout int `toml:"shutdown_timeout"`
}

// DatabaseConfig настройки подключения к БД
type DatabaseConfig struct {
	Driver          string `toml:"driver"`
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	Path            string `toml:"path"` // файл БД для sqlite3
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"` // секунды
}

// LogsConfig настройки логирования
type LogsConfig struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

// MetricsConfig настройки метрик
type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

// ShopConfig расписание и правила бронирования
type ShopConfig struct {
	Timezone                  string   `toml:"timezone"`
	OpenTime                  string   `toml:"open_time"`
	CloseTime                 string   `toml:"close_time"`
	SlotStepMinutes           int      `toml:"slot_step_minutes"`
	ClosedWeekdays            []string `toml:"closed_weekdays"`
	CapacityPerSlot           int      `toml:"capacity_per_slot"`
	DailyBookingLimit         int      `toml:"daily_booking_limit"`
	CancellationCutoffMinutes int      `toml:"cancellation_cutoff_minutes"`
	BookingCodeAttempts       int      `toml:"booking_code_attempts"`
	BookingCodeLength         int      `toml:"booking_code_length"`
}

// RedisConfig настройки Redis для ограничения попыток отмены
type RedisConfig struct {
	Enabled  bool   `toml:"enabled"`
	Address  string `toml:"address"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
	PoolSize int    `toml:"pool_size"`
}

// RateLimitConfig ограничение попыток гостевой отмены
type RateLimitConfig struct {
	CancelAttempts      int `toml:"cancel_attempts"`
	CancelWindowSeconds int `toml:"cancel_window_seconds"`
}

// Load читает конфигурацию из TOML-файла.
// Перед разбором загружается .env (если есть) и подставляются переменные окружения вида ${VAR}.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	return Parse(os.ExpandEnv(string(data)))
}

// Parse разбирает конфигурацию из строки
func Parse(data string) (*Config, error) {
	var cfg Config
	if _, err := toml.Decode(data, &cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.HTTPPort == 0 {
		c.Server.HTTPPort = 8080
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 10
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 10
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = 60
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10
	}

	if c.Database.Driver == "" {
		c.Database.Driver = DriverPostgres
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Database.Port == 0 {
		c.Database.Port = 5432
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = 25
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = 5
	}
	if c.Database.ConnMaxLifetime == 0 {
		c.Database.ConnMaxLifetime = 300
	}

	if c.Logs.Level == "" {
		c.Logs.Level = "info"
	}

	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
	if c.Metrics.ServiceName == "" {
		c.Metrics.ServiceName = "schedulebooker"
	}

	if c.Shop.Timezone == "" {
		c.Shop.Timezone = domain.DefaultTimezone
	}
	if c.Shop.OpenTime == "" {
		c.Shop.OpenTime = domain.DefaultOpenTime
	}
	if c.Shop.CloseTime == "" {
		c.Shop.CloseTime = domain.DefaultCloseTime
	}
	if c.Shop.SlotStepMinutes == 0 {
		c.Shop.SlotStepMinutes = domain.DefaultSlotStepMinutes
	}
	if c.Shop.ClosedWeekdays == nil {
		c.Shop.ClosedWeekdays = []string{time.Monday.String()}
	}
	if c.Shop.CapacityPerSlot == 0 {
		c.Shop.CapacityPerSlot = domain.DefaultCapacityPerSlot
	}
	if c.Shop.DailyBookingLimit == 0 {
		c.Shop.DailyBookingLimit = domain.DefaultDailyBookingLimit
	}
	if c.Shop.CancellationCutoffMinutes == 0 {
		c.Shop.CancellationCutoffMinutes = domain.DefaultCancellationCutoffMinutes
	}
	if c.Shop.BookingCodeAttempts == 0 {
		c.Shop.BookingCodeAttempts = 5
	}
	if c.Shop.BookingCodeLength == 0 {
		c.Shop.BookingCodeLength = 8
	}

	if c.Redis.Address == "" {
		c.Redis.Address = "localhost:6379"
	}
	if c.Redis.PoolSize == 0 {
		c.Redis.PoolSize = 10
	}

	if c.RateLimit.CancelAttempts == 0 {
		c.RateLimit.CancelAttempts = 5
	}
	if c.RateLimit.CancelWindowSeconds == 0 {
		c.RateLimit.CancelWindowSeconds = 600
	}
}

// Validate проверяет корректность конфигурации
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverPostgres:
		if c.Database.Host == "" || c.Database.DBName == "" {
			return errors.New("config: database.host and database.dbname are required for postgres")
		}
	case DriverSQLite:
		if c.Database.Path == "" {
			return errors.New("config: database.path is required for sqlite3")
		}
	default:
		return fmt.Errorf("config: unsupported database.driver %q", c.Database.Driver)
	}

	if c.Shop.BookingCodeAttempts < 1 {
		return errors.New("config: shop.booking_code_attempts must be positive")
	}
	if c.RateLimit.CancelAttempts < 1 || c.RateLimit.CancelWindowSeconds < 1 {
		return errors.New("config: ratelimit values must be positive")
	}

	if _, err := c.Shop.Schedule(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	return nil
}

// DSN возвращает строку подключения для выбранного драйвера
func (d DatabaseConfig) DSN() string {
	if d.Driver == DriverSQLite {
		// BEGIN IMMEDIATE сериализует пишущие транзакции
		return fmt.Sprintf("file:%s?_txlock=immediate&_busy_timeout=10000&_journal_mode=WAL&_foreign_keys=on", d.Path)
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

// Schedule переводит настройки магазина в доменное расписание
func (s ShopConfig) Schedule() (domain.ShopSchedule, error) {
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return domain.ShopSchedule{}, fmt.Errorf("shop.timezone: %w", err)
	}

	open, err := types.NewTimeStringFromString(s.OpenTime)
	if err != nil {
		return domain.ShopSchedule{}, fmt.Errorf("shop.open_time: %w", err)
	}
	closeTime, err := types.NewTimeStringFromString(s.CloseTime)
	if err != nil {
		return domain.ShopSchedule{}, fmt.Errorf("shop.close_time: %w", err)
	}

	closed := make([]time.Weekday, 0, len(s.ClosedWeekdays))
	for _, name := range s.ClosedWeekdays {
		wd, err := parseWeekday(name)
		if err != nil {
			return domain.ShopSchedule{}, err
		}
		closed = append(closed, wd)
	}

	schedule := domain.ShopSchedule{
		Location:                  loc,
		OpenTime:                  open,
		CloseTime:                 closeTime,
		SlotStepMinutes:           s.SlotStepMinutes,
		ClosedWeekdays:            closed,
		CapacityPerSlot:           s.CapacityPerSlot,
		DailyBookingLimit:         s.DailyBookingLimit,
		CancellationCutoffMinutes: s.CancellationCutoffMinutes,
	}
	if err := schedule.Validate(); err != nil {
		return domain.ShopSchedule{}, err
	}

	return schedule, nil
}

// CancelWindow возвращает окно ограничения попыток отмены
func (r RateLimitConfig) CancelWindow() time.Duration {
	return time.Duration(r.CancelWindowSeconds) * time.Second
}

func parseWeekday(name string) (time.Weekday, error) {
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		if strings.EqualFold(strings.TrimSpace(name), wd.String()) {
			return wd, nil
		}
	}
	return 0, fmt.Errorf("shop.closed_weekdays: unknown weekday %q", name)
}
