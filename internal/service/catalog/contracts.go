package catalog

import (
	"context"
	"time"

	"github.com/RealTimGFM/ScheduleBooker/internal/domain"
)

// CatalogRepository интерфейс репозитория услуг и мастеров
type CatalogRepository interface {
	CreateService(ctx context.Context, service *domain.Service) (*domain.Service, error)
	UpdateService(ctx context.Context, service *domain.Service) error
	GetServiceByID(ctx context.Context, id int64) (*domain.Service, error)
	GetServices(ctx context.Context, activeOnly bool) ([]*domain.Service, error)

	CreateBarber(ctx context.Context, barber *domain.Barber) (*domain.Barber, error)
	UpdateBarber(ctx context.Context, barber *domain.Barber) error
	GetBarberByID(ctx context.Context, id int64) (*domain.Barber, error)
	GetBarbers(ctx context.Context, activeOnly bool) ([]*domain.Barber, error)
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
