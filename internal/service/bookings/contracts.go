package bookings

import (
	"context"
	"time"

	"github.com/RealTimGFM/ScheduleBooker/internal/domain"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	GetWithFilter(ctx context.Context, filter domain.BookingsFilter) ([]*domain.Booking, error)
	GetByContact(ctx context.Context, contact string) ([]*domain.Booking, error)
	UpdateStatus(ctx context.Context, id int64, from, to domain.BookingStatus, updatedAt time.Time) error
	Update(ctx context.Context, booking *domain.Booking) error
	CreateCancellationRecord(ctx context.Context, record *domain.CancellationRecord) (*domain.CancellationRecord, error)
	GetCancellationRecords(ctx context.Context, bookingID int64) ([]*domain.CancellationRecord, error)
}

// CatalogRepository интерфейс репозитория услуг и мастеров
type CatalogRepository interface {
	GetServiceByID(ctx context.Context, id int64) (*domain.Service, error)
	GetBarberByID(ctx context.Context, id int64) (*domain.Barber, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
	DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}

// Metrics счетчики сервиса
type Metrics interface {
	IncCancellation(result string)
}

// TimeProvider интерфейс для получения текущего времени
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

type realTimeProvider struct{}

func (realTimeProvider) Now() time.Time { return time.Now() }
