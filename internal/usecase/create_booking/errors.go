package create_booking

import (
	"errors"

	"github.com/RealTimGFM/ScheduleBooker/internal/domain"
)

var (
	// ErrServiceNotFound возвращается, когда услуга не найдена (или неактивна для публичной записи)
	ErrServiceNotFound = domain.ErrServiceNotFound

	// ErrBarberNotFound возвращается, когда мастер не найден (или неактивен для публичной записи)
	ErrBarberNotFound = domain.ErrBarberNotFound

	// ErrShopClosed возвращается, когда магазин закрыт в указанный день
	ErrShopClosed = domain.ErrClosedDay

	// ErrInvalidTimeSlot возвращается, когда время вне сетки или вне рабочих часов
	ErrInvalidTimeSlot = domain.ErrOffGrid

	// ErrOutsideHours возвращается, когда услуга не помещается в рабочие часы
	ErrOutsideHours = domain.ErrOutsideHours

	// ErrTooLateToBook возвращается при попытке записаться на прошедшее время
	ErrTooLateToBook = domain.ErrInPast

	// ErrSlotNotAvailable возвращается, когда слот занят (мастер или вместимость)
	ErrSlotNotAvailable = domain.ErrSlotUnavailable

	// ErrDoubleBooking возвращается, когда у клиента уже есть запись, пересекающаяся с выбранным временем
	ErrDoubleBooking = domain.ErrDoubleBooking

	// ErrDailyLimitReached возвращается, когда клиент исчерпал лимит записей на день
	ErrDailyLimitReached = domain.ErrDailyLimit

	// ErrMissingField возвращается, когда не заполнено обязательное поле
	ErrMissingField = domain.ErrMissingField

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = domain.ErrInvalidField

	// ErrCodeAllocation возвращается, когда все попытки получить уникальный код закончились коллизиями
	ErrCodeAllocation = errors.New("create_booking: failed to allocate unique booking code")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_booking: internal error")
)
