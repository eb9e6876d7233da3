package create_booking

import (
	"context"
	"time"

	"github.com/RealTimGFM/ScheduleBooker/internal/domain"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error)
	GetWithFilter(ctx context.Context, filter domain.BookingsFilter) ([]*domain.Booking, error)
	CountActiveForContact(ctx context.Context, phone, email string, from, to time.Time) (int, error)
}

// CatalogRepository интерфейс репозитория услуг и мастеров
type CatalogRepository interface {
	GetServiceByID(ctx context.Context, id int64) (*domain.Service, error)
	GetBarberByID(ctx context.Context, id int64) (*domain.Barber, error)
	GetActiveBarbers(ctx context.Context) ([]*domain.Barber, error)
}

// CodeGenerator генератор кодов подтверждения
type CodeGenerator interface {
	Generate() (string, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// Metrics счетчики use case
type Metrics interface {
	IncBookingCreated(path string)
	IncBookingRejected(reason string)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
