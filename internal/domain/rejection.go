package domain

import (
	"fmt"
	"time"
)

// RejectionKind groups expected rule violations
type RejectionKind string

const (
	KindValidation    RejectionKind = "validation"
	KindSchedule      RejectionKind = "schedule"
	KindConflict      RejectionKind = "conflict"
	KindQuota         RejectionKind = "quota"
	KindNotFound      RejectionKind = "not_found"
	KindAuthorization RejectionKind = "authorization"
)

// Rejection is an expected, user-facing outcome of validation.
// Two rejections are equal for errors.Is when their codes match, so the message
// may be specialised without breaking callers.
type Rejection struct {
	Code    string
	Kind    RejectionKind
	Message string
}

func (r *Rejection) Error() string {
	return r.Message
}

// Is matches rejections by code
func (r *Rejection) Is(target error) bool {
	t, ok := target.(*Rejection)
	return ok && t.Code == r.Code
}

// WithMessage returns a copy with a different message
func (r *Rejection) WithMessage(msg string) *Rejection {
	return &Rejection{Code: r.Code, Kind: r.Kind, Message: msg}
}

// Stable guest-facing messages
const (
	MsgSlotUnavailable  = "That time is no longer available. Please choose another slot."
	MsgInPast           = "Cannot book in the past."
	MsgInvalidContact   = "Invalid contact or booking code."
	MsgAlreadyCancelled = "This booking is already cancelled."
	MsgCancelPast       = "Cannot cancel a past booking."
	MsgTooManyAttempts  = "Too many attempts. Please try again later."
	MsgDoubleBooking    = "You already have an appointment at this time. Cannot double-book."
)

var (
	// ErrClosedDay the shop is closed on the requested weekday
	ErrClosedDay = &Rejection{Code: "closed_day", Kind: KindSchedule, Message: "Closed (Monday)"}

	// ErrOutsideHours the requested interval does not fit into opening hours
	ErrOutsideHours = &Rejection{Code: "outside_hours", Kind: KindSchedule, Message: "Selected time is outside business hours."}

	// ErrOffGrid the requested time is not a slot grid point
	ErrOffGrid = &Rejection{Code: "off_grid", Kind: KindSchedule, Message: "Please choose one of the offered time slots."}

	// ErrInPast the requested start has already passed
	ErrInPast = &Rejection{Code: "in_past", Kind: KindSchedule, Message: MsgInPast}

	// ErrSlotUnavailable the slot is taken by a barber overlap or shop capacity
	ErrSlotUnavailable = &Rejection{Code: "slot_unavailable", Kind: KindConflict, Message: MsgSlotUnavailable}

	// ErrDoubleBooking the customer already holds an active booking overlapping the candidate
	ErrDoubleBooking = &Rejection{Code: "double_booking", Kind: KindConflict, Message: MsgDoubleBooking}

	// ErrDailyLimit the customer reached the per-day booking quota
	ErrDailyLimit = &Rejection{Code: "daily_limit", Kind: KindQuota, Message: "If you want more than 2 bookings in a day, contact the barber."}

	// ErrMissingField a required field is absent
	ErrMissingField = &Rejection{Code: "missing_field", Kind: KindValidation, Message: "Missing required fields."}

	// ErrInvalidField a field is present but malformed
	ErrInvalidField = &Rejection{Code: "invalid_field", Kind: KindValidation, Message: "Invalid date/time."}

	// ErrBookingNotFound the booking id does not resolve
	ErrBookingNotFound = &Rejection{Code: "booking_not_found", Kind: KindNotFound, Message: "Booking not found."}

	// ErrServiceNotFound the service id does not resolve to an active service
	ErrServiceNotFound = &Rejection{Code: "service_not_found", Kind: KindNotFound, Message: "Invalid service."}

	// ErrBarberNotFound the barber id does not resolve
	ErrBarberNotFound = &Rejection{Code: "barber_not_found", Kind: KindNotFound, Message: "Invalid barber."}

	// ErrInvalidCredentials contact or booking code mismatch; never says which one
	ErrInvalidCredentials = &Rejection{Code: "invalid_credentials", Kind: KindAuthorization, Message: MsgInvalidContact}

	// ErrTooManyAttempts cancellation attempts limit exceeded
	ErrTooManyAttempts = &Rejection{Code: "too_many_attempts", Kind: KindAuthorization, Message: MsgTooManyAttempts}

	// ErrAlreadyCancelled the booking was cancelled before
	ErrAlreadyCancelled = &Rejection{Code: "already_cancelled", Kind: KindValidation, Message: MsgAlreadyCancelled}

	// ErrCancelPast the booking has already started
	ErrCancelPast = &Rejection{Code: "cancel_past", Kind: KindSchedule, Message: MsgCancelPast}

	// ErrCancelTooLate the booking starts within the cancellation cutoff
	ErrCancelTooLate = &Rejection{Code: "cancel_too_late", Kind: KindSchedule, Message: "Cancellations must be made at least 30 minutes in advance."}
)

// ClosedDayRejection specialises ErrClosedDay for the actual weekday
func ClosedDayRejection(date time.Time) *Rejection {
	return ErrClosedDay.WithMessage(ClosedDayReason(date))
}

// DailyLimitRejection specialises ErrDailyLimit for the configured limit
func DailyLimitRejection(limit int) *Rejection {
	return ErrDailyLimit.WithMessage(fmt.Sprintf("If you want more than %d bookings in a day, contact the barber.", limit))
}

// CancelTooLateRejection specialises ErrCancelTooLate for the configured cutoff
func CancelTooLateRejection(cutoffMinutes int) *Rejection {
	return ErrCancelTooLate.WithMessage(fmt.Sprintf("Cancellations must be made at least %d minutes in advance.", cutoffMinutes))
}
