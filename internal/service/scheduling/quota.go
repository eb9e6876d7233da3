package scheduling

import (
	"context"
	"time"

	"github.com/RealTimGFM/ScheduleBooker/internal/domain"
)

// ContactCounter counts active bookings for a contact whose start falls in [from, to)
type ContactCounter interface {
	CountActiveForContact(ctx context.Context, phone, email string, from, to time.Time) (int, error)
}

// QuotaChecker enforces the per-customer daily booking limit
type QuotaChecker struct {
	counter  ContactCounter
	schedule domain.ShopSchedule
}

// NewQuotaChecker creates a daily-limit checker
func NewQuotaChecker(counter ContactCounter, schedule domain.ShopSchedule) *QuotaChecker {
	return &QuotaChecker{counter: counter, schedule: schedule}
}

// CountActiveBookingsForCustomer counts active bookings starting on the civil date that match
// the normalized phone or the case-folded email. A booking matching both counts once.
func (q *QuotaChecker) CountActiveBookingsForCustomer(ctx context.Context, phone, email string, date time.Time) (int, error) {
	phone = domain.NormalizePhone(phone)
	email = domain.NormalizeEmail(email)
	if phone == "" && email == "" {
		return 0, nil
	}

	from, to := q.schedule.DayRange(date)
	return q.counter.CountActiveForContact(ctx, phone, email, from, to)
}

// LimitReached returns true when the customer already holds the maximum number of bookings that day
func (q *QuotaChecker) LimitReached(ctx context.Context, phone, email string, date time.Time) (bool, error) {
	count, err := q.CountActiveBookingsForCustomer(ctx, phone, email, date)
	if err != nil {
		return false, err
	}
	return count >= q.schedule.DailyBookingLimit, nil
}

// Limit returns the configured daily limit
func (q *QuotaChecker) Limit() int {
	return q.schedule.DailyBookingLimit
}
