package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/RealTimGFM/ScheduleBooker/pkg/types"
)

// ShopSchedule describes the shop operating calendar and booking policy.
// Dates passed to its methods are civil dates: only year, month and day are used.
type ShopSchedule struct {
	Location                  *time.Location
	OpenTime                  types.TimeString
	CloseTime                 types.TimeString
	SlotStepMinutes           int
	ClosedWeekdays            []time.Weekday
	CapacityPerSlot           int
	DailyBookingLimit         int
	CancellationCutoffMinutes int
}

// DefaultShopSchedule returns the schedule used when nothing is configured
func DefaultShopSchedule() ShopSchedule {
	loc, err := time.LoadLocation(DefaultTimezone)
	if err != nil {
		loc = time.UTC
	}
	return ShopSchedule{
		Location:                  loc,
		OpenTime:                  DefaultOpenTime,
		CloseTime:                 DefaultCloseTime,
		SlotStepMinutes:           DefaultSlotStepMinutes,
		ClosedWeekdays:            []time.Weekday{time.Monday},
		CapacityPerSlot:           DefaultCapacityPerSlot,
		DailyBookingLimit:         DefaultDailyBookingLimit,
		CancellationCutoffMinutes: DefaultCancellationCutoffMinutes,
	}
}

// Validate checks that the schedule is internally consistent
func (s ShopSchedule) Validate() error {
	if s.Location == nil {
		return errors.New("shop schedule: location is required")
	}
	if err := s.OpenTime.Validate(); err != nil {
		return fmt.Errorf("shop schedule: open time: %w", err)
	}
	if err := s.CloseTime.Validate(); err != nil {
		return fmt.Errorf("shop schedule: close time: %w", err)
	}
	if !s.OpenTime.IsBefore(s.CloseTime) {
		return errors.New("shop schedule: open time must be before close time")
	}
	if s.SlotStepMinutes <= 0 {
		return errors.New("shop schedule: slot step must be positive")
	}
	if s.CapacityPerSlot <= 0 {
		return errors.New("shop schedule: capacity per slot must be positive")
	}
	if s.DailyBookingLimit <= 0 {
		return errors.New("shop schedule: daily booking limit must be positive")
	}
	if s.CancellationCutoffMinutes < 0 {
		return errors.New("shop schedule: cancellation cutoff must not be negative")
	}
	return nil
}

// Step returns the slot grid increment
func (s ShopSchedule) Step() time.Duration {
	return time.Duration(s.SlotStepMinutes) * time.Minute
}

// DayStart returns midnight of the civil date in the shop timezone
func (s ShopSchedule) DayStart(date time.Time) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, s.Location)
}

// DayRange returns [midnight, next midnight) of the civil date in the shop timezone
func (s ShopSchedule) DayRange(date time.Time) (time.Time, time.Time) {
	start := s.DayStart(date)
	return start, start.AddDate(0, 0, 1)
}

// CivilDate converts an instant into the shop-local civil date
func (s ShopSchedule) CivilDate(instant time.Time) time.Time {
	return s.DayStart(instant.In(s.Location))
}

// IsClosed returns true if the shop does not open on the given date
func (s ShopSchedule) IsClosed(date time.Time) bool {
	weekday := s.DayStart(date).Weekday()
	for _, closed := range s.ClosedWeekdays {
		if closed == weekday {
			return true
		}
	}
	return false
}

// OpenAt returns the opening instant on the given date
func (s ShopSchedule) OpenAt(date time.Time) time.Time {
	return s.OpenTime.On(date, s.Location)
}

// CloseAt returns the closing instant on the given date
func (s ShopSchedule) CloseAt(date time.Time) time.Time {
	return s.CloseTime.On(date, s.Location)
}

// IsOnGrid returns true if the time-of-day is a grid point within opening hours
func (s ShopSchedule) IsOnGrid(t types.TimeString) bool {
	if t.Validate() != nil || s.SlotStepMinutes <= 0 {
		return false
	}
	offset := t.Minutes() - s.OpenTime.Minutes()
	return offset >= 0 && t.IsBefore(s.CloseTime) && offset%s.SlotStepMinutes == 0
}

// EffectiveCapacity returns the concurrent booking ceiling for the given number of active barbers
func (s ShopSchedule) EffectiveCapacity(activeBarbers int) int {
	if activeBarbers < s.CapacityPerSlot {
		return activeBarbers
	}
	return s.CapacityPerSlot
}

// CancellationCutoff returns the minimum notice required for a guest cancellation
func (s ShopSchedule) CancellationCutoff() time.Duration {
	return time.Duration(s.CancellationCutoffMinutes) * time.Minute
}
