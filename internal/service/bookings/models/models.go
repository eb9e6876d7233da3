package models

import (
	"errors"
	"time"

	"github.com/RealTimGFM/ScheduleBooker/internal/domain"
	"github.com/RealTimGFM/ScheduleBooker/pkg/types"
)

var (
	// ErrInvalidStatus возвращается при некорректном статусе
	ErrInvalidStatus = errors.New("invalid booking status")
)

// Request модели

// ListForDayRequest запрос на получение бронирований дня (панель администратора)
type ListForDayRequest struct {
	Date            time.Time `json:"date"`
	BarberID        *int64    `json:"barberId,omitempty"`
	IncludeInactive bool      `json:"includeInactive"`
}

// UpdateBookingRequest запрос на редактирование бронирования администратором.
// nil означает "не менять".
type UpdateBookingRequest struct {
	ServiceID     *int64            `json:"serviceId,omitempty"`
	BarberID      *int64            `json:"barberId,omitempty"`
	ClearBarber   bool              `json:"clearBarber"` // перевести на "любого мастера"
	Date          *time.Time        `json:"date,omitempty"`
	StartTime     *types.TimeString `json:"startTime,omitempty"`
	CustomerName  *string           `json:"customerName,omitempty"`
	CustomerPhone *string           `json:"customerPhone,omitempty"`
	CustomerEmail *string           `json:"customerEmail,omitempty"`
	Notes         *string           `json:"notes,omitempty"`
	Status        *string           `json:"status,omitempty"`
}

// Response модели

// BookingResponse ответ с данными бронирования
type BookingResponse struct {
	ID              int64            `json:"id"`
	BookingCode     string           `json:"bookingCode"`
	UserID          *int64           `json:"userId,omitempty"`
	BarberID        *int64           `json:"barberId,omitempty"`
	ServiceID       int64            `json:"serviceId"`
	CustomerName    string           `json:"customerName"`
	CustomerPhone   *string          `json:"customerPhone,omitempty"`
	CustomerEmail   *string          `json:"customerEmail,omitempty"`
	Date            string           `json:"date"`      // YYYY-MM-DD в часовом поясе магазина
	StartTime       types.TimeString `json:"startTime"` // HH:MM
	Start           time.Time        `json:"start"`
	End             time.Time        `json:"end"`
	DurationMinutes int              `json:"durationMinutes"`
	Status          string           `json:"status"`
	Notes           *string          `json:"notes,omitempty"`
	CreatedAt       time.Time        `json:"createdAt"`
	UpdatedAt       time.Time        `json:"updatedAt"`
}

// BookingListResponse ответ со списком бронирований
type BookingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
	Total    int               `json:"total"`
}

// CancellationResponse запись журнала отмен
type CancellationResponse struct {
	BookingID   int64     `json:"bookingId"`
	BookingCode string    `json:"bookingCode"`
	CancelledBy string    `json:"cancelledBy"`
	CancelledAt time.Time `json:"cancelledAt"`
}

// Конвертеры

// FromDomainBooking конвертирует доменную модель в ответ; время переводится в loc
func FromDomainBooking(b *domain.Booking, loc *time.Location) *BookingResponse {
	start := b.Start.In(loc)
	return &BookingResponse{
		ID:              b.ID,
		BookingCode:     b.BookingCode,
		UserID:          b.UserID,
		BarberID:        b.BarberID,
		ServiceID:       b.ServiceID,
		CustomerName:    b.CustomerName,
		CustomerPhone:   b.CustomerPhone,
		CustomerEmail:   b.CustomerEmail,
		Date:            start.Format(domain.DateFormat),
		StartTime:       types.NewTimeString(start),
		Start:           start,
		End:             b.End.In(loc),
		DurationMinutes: int(b.End.Sub(b.Start).Minutes()),
		Status:          string(b.Status),
		Notes:           b.Notes,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
}

// FromDomainBookingList конвертирует список доменных моделей в ответ
func FromDomainBookingList(bookings []*domain.Booking, loc *time.Location) *BookingListResponse {
	result := make([]BookingResponse, len(bookings))
	for i, b := range bookings {
		result[i] = *FromDomainBooking(b, loc)
	}
	return &BookingListResponse{
		Bookings: result,
		Total:    len(result),
	}
}

// FromDomainCancellation конвертирует запись журнала отмен
func FromDomainCancellation(r *domain.CancellationRecord) CancellationResponse {
	return CancellationResponse{
		BookingID:   r.BookingID,
		BookingCode: r.BookingCode,
		CancelledBy: string(r.CancelledBy),
		CancelledAt: r.CancelledAt,
	}
}

// ToDomainBookingStatus конвертирует строку в статус
func ToDomainBookingStatus(status string) (domain.BookingStatus, error) {
	s := domain.BookingStatus(status)
	if !s.IsValid() {
		return "", ErrInvalidStatus
	}
	return s, nil
}
