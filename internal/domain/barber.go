package domain

import "time"

// Barber represents a shop barber.
// Inactive barbers are excluded from scheduling but their historical bookings stay valid.
type Barber struct {
	ID        int64
	Name      string
	Phone     *string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// BarberFilter selects either a specific barber or any barber
type BarberFilter struct {
	BarberID *int64
}

// AnyBarber returns a filter matching any active barber
func AnyBarber() BarberFilter {
	return BarberFilter{}
}

// SpecificBarber returns a filter for a single barber
func SpecificBarber(id int64) BarberFilter {
	return BarberFilter{BarberID: &id}
}

// IsAny returns true if the filter does not name a barber
func (f BarberFilter) IsAny() bool {
	return f.BarberID == nil
}
