package create_booking

import (
	"time"

	"github.com/RealTimGFM/ScheduleBooker/pkg/types"
)

// PublicRequest модель запроса гостя на создание бронирования
type PublicRequest struct {
	ServiceID     int64            // ID услуги
	BarberID      *int64           // Мастер (nil = любой мастер)
	Date          time.Time        // Дата (используются только год, месяц, день)
	StartTime     types.TimeString // Время начала слота (например, "14:00")
	CustomerName  string
	CustomerPhone string
	CustomerEmail string  // Опционально
	Notes         *string // Дополнительные заметки (опционально)
	UserID        *int64  // Аккаунт клиента, если есть
}

// AdminRequest модель запроса администратора.
// Расписание, вместимость и лимиты не проверяются.
type AdminRequest struct {
	ServiceID     int64
	BarberID      *int64
	Date          time.Time
	StartTime     types.TimeString
	CustomerName  string
	CustomerPhone string
	CustomerEmail string
	Notes         *string
	UserID        *int64
}

// Response модель ответа с созданным бронированием (общая для обоих вариантов)
type Response struct {
	ID              int64
	BookingCode     string
	ServiceID       int64
	ServiceName     string
	BarberID        *int64
	UserID          *int64
	CustomerName    string
	CustomerPhone   *string
	CustomerEmail   *string
	Start           time.Time // в часовом поясе магазина
	End             time.Time
	DurationMinutes int
	Status          string
	Notes           *string
	CreatedAt       time.Time
}
