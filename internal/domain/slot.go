package domain

import (
	"time"

	"github.com/RealTimGFM/ScheduleBooker/pkg/types"
)

// Slot unavailability reasons shown to customers
const (
	ReasonInPast            = "In the past"
	ReasonFullyBooked       = "Fully booked"
	ReasonBarberUnavailable = "Barber unavailable"
	ReasonInvalidBarber     = "Invalid barber"
	ReasonNoBarbers         = "No barbers available"
)

// ClosedDayReason returns the reason used for every slot of a closed weekday
func ClosedDayReason(date time.Time) string {
	return "Closed (" + date.Weekday().String() + ")"
}

// Slot represents a candidate booking start time with its availability verdict
type Slot struct {
	Time        types.TimeString
	Start       time.Time
	End         time.Time
	IsAvailable bool
	Reason      *string // nil when available
}

// Available builds an available slot
func Available(t types.TimeString, interval Interval) Slot {
	return Slot{Time: t, Start: interval.Start, End: interval.End, IsAvailable: true}
}

// Unavailable builds a blocked slot with a reason
func Unavailable(t types.TimeString, interval Interval, reason string) Slot {
	return Slot{Time: t, Start: interval.Start, End: interval.End, Reason: &reason}
}

// ReasonText returns the reason or an empty string
func (s Slot) ReasonText() string {
	if s.Reason == nil {
		return ""
	}
	return *s.Reason
}
