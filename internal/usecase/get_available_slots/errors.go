package get_available_slots

import (
	"errors"

	"github.com/RealTimGFM/ScheduleBooker/internal/domain"
)

var (
	// ErrServiceNotFound возвращается, когда услуга не найдена или неактивна
	ErrServiceNotFound = domain.ErrServiceNotFound

	// ErrBarberNotFound возвращается, когда мастер с указанным ID не существует
	ErrBarberNotFound = domain.ErrBarberNotFound

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("get_available_slots: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("get_available_slots: internal error")
)
