package catalog

import (
	"errors"

	"github.com/RealTimGFM/ScheduleBooker/internal/domain"
)

var (
	// ErrServiceNotFound возвращается, когда услуга не найдена
	ErrServiceNotFound = domain.ErrServiceNotFound

	// ErrBarberNotFound возвращается, когда мастер не найден
	ErrBarberNotFound = domain.ErrBarberNotFound

	// ErrInvalidName возвращается при пустом названии
	ErrInvalidName = errors.New("catalog: name must not be empty")

	// ErrInvalidDuration возвращается при длительности вне допустимого диапазона
	ErrInvalidDuration = errors.New("catalog: invalid service duration")

	// ErrInvalidPrice возвращается при отрицательной цене
	ErrInvalidPrice = errors.New("catalog: price must not be negative")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("catalog: internal error")
)
