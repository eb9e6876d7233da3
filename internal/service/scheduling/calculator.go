package scheduling

import (
	"time"

	"github.com/RealTimGFM/ScheduleBooker/internal/domain"
	"github.com/RealTimGFM/ScheduleBooker/pkg/types"
)

// GridPoint is a candidate start on the slot grid with the service interval it would occupy
type GridPoint struct {
	Time     types.TimeString
	Interval domain.Interval
}

// SlotsInput is everything needed to evaluate one day
type SlotsInput struct {
	Date     time.Time // civil date, only Y-M-D is used
	Duration time.Duration
	Filter   domain.BarberFilter
	Now      time.Time
	Barbers  []*domain.Barber
	Bookings []*domain.Booking
}

// Calculator builds the slot grid and availability verdicts
type Calculator struct {
	schedule domain.ShopSchedule
}

// NewCalculator creates a calculator for the given schedule
func NewCalculator(schedule domain.ShopSchedule) *Calculator {
	return &Calculator{schedule: schedule}
}

// Grid returns every grid start whose service interval ends no later than closing time.
// Starts are ascending; a start that would overrun closing is not emitted at all.
func (c *Calculator) Grid(date time.Time, duration time.Duration) []GridPoint {
	if duration <= 0 {
		return []GridPoint{}
	}

	open := c.schedule.OpenAt(date)
	closeAt := c.schedule.CloseAt(date)
	step := c.schedule.Step()

	points := make([]GridPoint, 0)
	for start := open; !start.Add(duration).After(closeAt); start = start.Add(step) {
		points = append(points, GridPoint{
			Time:     types.NewTimeString(start),
			Interval: domain.NewInterval(start, duration),
		})
	}
	return points
}

// ComputeSlots evaluates every grid point of the day.
// Closed weekdays and past dates yield the grid with every slot unavailable.
// On the current date, slots that already started are marked as past.
func (c *Calculator) ComputeSlots(in SlotsInput) []domain.Slot {
	grid := c.Grid(in.Date, in.Duration)
	slots := make([]domain.Slot, 0, len(grid))

	if c.schedule.IsClosed(in.Date) {
		reason := domain.ClosedDayReason(c.schedule.DayStart(in.Date))
		for _, p := range grid {
			slots = append(slots, domain.Unavailable(p.Time, p.Interval, reason))
		}
		return slots
	}

	now := in.Now.In(c.schedule.Location).Truncate(time.Minute)
	detector := NewDetector(c.schedule, in.Barbers, in.Bookings)

	for _, p := range grid {
		if p.Interval.Start.Before(now) {
			slots = append(slots, domain.Unavailable(p.Time, p.Interval, domain.ReasonInPast))
			continue
		}

		if blocked, reason := detector.IsSlotBlocked(p.Interval, in.Filter); blocked {
			slots = append(slots, domain.Unavailable(p.Time, p.Interval, reason))
			continue
		}

		slots = append(slots, domain.Available(p.Time, p.Interval))
	}

	return slots
}

// ResolveStart validates a requested start against the operating calendar and returns
// the interval the service would occupy. It does not look at other bookings.
//
// Order: closed weekday, off-grid time, interval running past closing.
func (c *Calculator) ResolveStart(date time.Time, start types.TimeString, duration time.Duration) (domain.Interval, error) {
	if c.schedule.IsClosed(date) {
		return domain.Interval{}, domain.ClosedDayRejection(c.schedule.DayStart(date))
	}

	if start.Validate() != nil {
		return domain.Interval{}, domain.ErrOffGrid
	}

	if start.IsBefore(c.schedule.OpenTime) || !start.IsBefore(c.schedule.CloseTime) {
		return domain.Interval{}, domain.ErrOutsideHours
	}

	if !c.schedule.IsOnGrid(start) {
		return domain.Interval{}, domain.ErrOffGrid
	}

	interval := domain.NewInterval(start.On(date, c.schedule.Location), duration)
	if interval.End.After(c.schedule.CloseAt(date)) {
		return domain.Interval{}, domain.ErrOutsideHours
	}

	return interval, nil
}
