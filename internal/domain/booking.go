package domain

import (
	"strings"
	"time"
)

// BookingStatus represents the status of a booking
type BookingStatus string

const (
	StatusBooked    BookingStatus = "booked"
	StatusCancelled BookingStatus = "cancelled"
)

// IsValid returns true for known statuses
func (s BookingStatus) IsValid() bool {
	return s == StatusBooked || s == StatusCancelled
}

// Booking represents a customer appointment
type Booking struct {
	ID        int64
	UserID    *int64 // аккаунт клиента, если бронирование сделано из личного кабинета
	BarberID  *int64 // nil = "any barber"
	ServiceID int64

	CustomerName  string
	CustomerPhone *string
	CustomerEmail *string

	// Start и End хранятся как моменты времени; End фиксируется при создании
	// и не пересчитывается при изменении длительности услуги
	Start time.Time
	End   time.Time

	Notes       *string
	Status      BookingStatus
	BookingCode string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActive returns true if the booking occupies schedule capacity
func (b *Booking) IsActive() bool {
	return b.Status == StatusBooked
}

// IsCancelled returns true if the booking has been cancelled
func (b *Booking) IsCancelled() bool {
	return b.Status == StatusCancelled
}

// HasBarber returns true if a specific barber is assigned
func (b *Booking) HasBarber() bool {
	return b.BarberID != nil
}

// IsAssignedTo returns true if the booking is assigned to the given barber
func (b *Booking) IsAssignedTo(barberID int64) bool {
	return b.BarberID != nil && *b.BarberID == barberID
}

// Interval returns the booked time range
func (b *Booking) Interval() Interval {
	return Interval{Start: b.Start, End: b.End}
}

// MatchesContact reports whether the supplied contact equals the stored phone or email
// after normalization. A contact containing "@" is compared as an email only.
// Empty input never matches.
func (b *Booking) MatchesContact(contact string) bool {
	if strings.Contains(contact, "@") {
		email := NormalizeEmail(contact)
		return email != "" && b.CustomerEmail != nil && NormalizeEmail(*b.CustomerEmail) == email
	}

	phone := NormalizePhone(contact)
	return phone != "" && b.CustomerPhone != nil && NormalizePhone(*b.CustomerPhone) == phone
}

// BelongsTo reports whether the booking was made with the given phone or email,
// compared after normalization. Empty values never match.
func (b *Booking) BelongsTo(phone, email string) bool {
	if phone = NormalizePhone(phone); phone != "" && b.CustomerPhone != nil && NormalizePhone(*b.CustomerPhone) == phone {
		return true
	}
	email = NormalizeEmail(email)
	return email != "" && b.CustomerEmail != nil && NormalizeEmail(*b.CustomerEmail) == email
}

// BookingsFilter фильтр выборки бронирований
type BookingsFilter struct {
	From            time.Time // начало периода (включительно)
	To              time.Time // конец периода (не включительно)
	BarberID        *int64
	IncludeInactive bool
}
