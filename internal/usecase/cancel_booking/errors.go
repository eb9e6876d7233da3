package cancel_booking

import (
	"errors"

	"github.com/RealTimGFM/ScheduleBooker/internal/domain"
)

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = domain.ErrBookingNotFound

	// ErrInvalidCredentials возвращается при несовпадении контакта или кода.
	// Сообщение не раскрывает, какое из полей неверно.
	ErrInvalidCredentials = domain.ErrInvalidCredentials

	// ErrTooManyAttempts возвращается при превышении лимита попыток
	ErrTooManyAttempts = domain.ErrTooManyAttempts

	// ErrAlreadyCancelled возвращается, если бронирование уже отменено
	ErrAlreadyCancelled = domain.ErrAlreadyCancelled

	// ErrCancelPast возвращается, если время бронирования уже наступило
	ErrCancelPast = domain.ErrCancelPast

	// ErrCancelTooLate возвращается, если до начала осталось меньше допустимого
	ErrCancelTooLate = domain.ErrCancelTooLate

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = domain.ErrMissingField

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("cancel_booking: internal error")
)
