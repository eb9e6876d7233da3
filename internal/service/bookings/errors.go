package bookings

import (
	"errors"

	"github.com/RealTimGFM/ScheduleBooker/internal/domain"
)

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = domain.ErrBookingNotFound

	// ErrServiceNotFound возвращается, когда услуга не найдена
	ErrServiceNotFound = domain.ErrServiceNotFound

	// ErrBarberNotFound возвращается, когда мастер не найден
	ErrBarberNotFound = domain.ErrBarberNotFound

	// ErrAlreadyCancelled возвращается при повторной отмене
	ErrAlreadyCancelled = domain.ErrAlreadyCancelled

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("bookings: invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("bookings: internal error")
)
