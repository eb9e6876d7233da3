package domain

// Default shop configuration values
const (
	DefaultOpenTime                  = "11:00"
	DefaultCloseTime                 = "19:00"
	DefaultSlotStepMinutes           = 30
	DefaultCapacityPerSlot           = 3
	DefaultDailyBookingLimit         = 2
	DefaultCancellationCutoffMinutes = 30
	DefaultTimezone                  = "America/Toronto"
)

// Business validation constants
const (
	MinServiceDurationMinutes = 1
	MaxServiceDurationMinutes = 480 // 8 hours
	MaxNotesLength            = 1000
	MaxCustomerNameLength     = 200
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// ActiveStatuses статусы, которые занимают место в расписании
var ActiveStatuses = []BookingStatus{
	StatusBooked,
}
