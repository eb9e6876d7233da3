package get_available_slots

import (
	"fmt"
	"time"

	"github.com/RealTimGFM/ScheduleBooker/internal/domain"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req == nil {
		return fmt.Errorf("%w: request is required", ErrInvalidInput)
	}

	if req.ServiceID <= 0 {
		return fmt.Errorf("%w: serviceID must be positive", ErrInvalidInput)
	}

	if req.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	if req.BarberID != nil && *req.BarberID <= 0 {
		return fmt.Errorf("%w: barberID must be positive", ErrInvalidInput)
	}

	return nil
}

// toResponseSlots конвертирует доменные слоты в модели ответа
func toResponseSlots(slots []domain.Slot) []Slot {
	result := make([]Slot, len(slots))
	for i, s := range slots {
		result[i] = Slot{
			Time:        s.Time,
			IsAvailable: s.IsAvailable,
			Reason:      s.Reason,
		}
	}
	return result
}

// civilDate отбрасывает время и часовой пояс
func civilDate(date time.Time) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
