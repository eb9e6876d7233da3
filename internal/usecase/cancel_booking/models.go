package cancel_booking

import "time"

// Request модель запроса гостя на отмену
type Request struct {
	BookingID   int64
	Contact     string // телефон в любом формате или email
	BookingCode string
	ClientKey   string // идентификатор клиента для лимита попыток (например, IP), опционально
}

// Response модель ответа
type Response struct {
	BookingID   int64
	BookingCode string
	Start       time.Time
	Status      string
	CancelledAt time.Time
}
