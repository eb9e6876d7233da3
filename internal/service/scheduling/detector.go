package scheduling

import (
	"github.com/RealTimGFM/ScheduleBooker/internal/domain"
)

// Detector decides whether a candidate interval can be booked against a snapshot
// of active barbers and bookings. It never touches storage.
type Detector struct {
	schedule domain.ShopSchedule
	barbers  map[int64]struct{}
	bookings []*domain.Booking
	capacity int
}

// NewDetector builds a detector over the given state.
// Inactive barbers and cancelled bookings are ignored.
func NewDetector(schedule domain.ShopSchedule, barbers []*domain.Barber, bookings []*domain.Booking) *Detector {
	active := make(map[int64]struct{}, len(barbers))
	for _, b := range barbers {
		if b.IsActive {
			active[b.ID] = struct{}{}
		}
	}

	booked := make([]*domain.Booking, 0, len(bookings))
	for _, b := range bookings {
		if b.IsActive() {
			booked = append(booked, b)
		}
	}

	return &Detector{
		schedule: schedule,
		barbers:  active,
		bookings: booked,
		capacity: schedule.EffectiveCapacity(len(active)),
	}
}

// IsSlotBlocked returns true and a reason when the candidate cannot be booked.
//
// Checks run in order: no active barbers, unknown or inactive requested barber,
// shop capacity per grid segment, then barber calendars. A booking without a barber
// takes shop capacity but never blocks a named barber.
func (d *Detector) IsSlotBlocked(candidate domain.Interval, filter domain.BarberFilter) (bool, string) {
	if len(d.barbers) == 0 {
		return true, domain.ReasonNoBarbers
	}

	if !filter.IsAny() {
		if _, ok := d.barbers[*filter.BarberID]; !ok {
			return true, domain.ReasonInvalidBarber
		}
	}

	if d.capacityReached(candidate) {
		return true, domain.ReasonFullyBooked
	}

	if !filter.IsAny() {
		if !d.barberFree(*filter.BarberID, candidate) {
			return true, domain.ReasonBarberUnavailable
		}
		return false, ""
	}

	for id := range d.barbers {
		if d.barberFree(id, candidate) {
			return false, ""
		}
	}
	return true, domain.ReasonFullyBooked
}

// CustomerOverlaps reports whether the customer identified by phone or email
// already holds an active booking overlapping the candidate, with any barber.
func (d *Detector) CustomerOverlaps(candidate domain.Interval, phone, email string) bool {
	for _, b := range d.bookings {
		if b.BelongsTo(phone, email) && b.Interval().Overlaps(candidate) {
			return true
		}
	}
	return false
}

// OverlappingCount returns the number of active bookings overlapping the interval
func (d *Detector) OverlappingCount(interval domain.Interval) int {
	count := 0
	for _, b := range d.bookings {
		if b.Interval().Overlaps(interval) {
			count++
		}
	}
	return count
}

// Capacity returns the effective concurrent booking ceiling
func (d *Detector) Capacity() int {
	return d.capacity
}

func (d *Detector) capacityReached(candidate domain.Interval) bool {
	for _, segment := range candidate.Split(d.schedule.Step()) {
		if d.OverlappingCount(segment) >= d.capacity {
			return true
		}
	}
	return false
}

func (d *Detector) barberFree(barberID int64, candidate domain.Interval) bool {
	for _, b := range d.bookings {
		if b.IsAssignedTo(barberID) && b.Interval().Overlaps(candidate) {
			return false
		}
	}
	return true
}
