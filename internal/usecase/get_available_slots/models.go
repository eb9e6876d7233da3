package get_available_slots

import (
	"time"

	"github.com/RealTimGFM/ScheduleBooker/pkg/types"
)

// Request модель запроса на получение слотов
type Request struct {
	ServiceID int64     // ID услуги
	Date      time.Time // Дата (используются только год, месяц, день)
	BarberID  *int64    // Мастер (nil = любой мастер)
}

// Response модель ответа со списком слотов
type Response struct {
	Date            time.Time // Дата, на которую запрашивались слоты
	ServiceID       int64     // ID услуги
	BarberID        *int64    // Мастер из запроса
	DurationMinutes int       // Длительность услуги
	Slots           []Slot    // Слоты по возрастанию времени
}

// Slot модель временного слота
type Slot struct {
	Time        types.TimeString // Время начала (например, "11:30")
	IsAvailable bool
	Reason      *string // Причина недоступности, nil для свободного слота
}
