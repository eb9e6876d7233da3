package domain

import "time"

// CancelledBy identifies who cancelled a booking
type CancelledBy string

const (
	CancelledByCustomer CancelledBy = "customer"
	CancelledByAdmin    CancelledBy = "admin"
)

// CancellationRecord is an audit entry written alongside a booking cancellation.
// It keeps a copy of the contact data so it stays readable after admin edits.
type CancellationRecord struct {
	ID            int64
	BookingID     int64
	BookingCode   string
	CustomerName  string
	CustomerPhone *string
	CustomerEmail *string
	Start         time.Time
	CancelledBy   CancelledBy
	CancelledAt   time.Time
}

// NewCancellationRecord snapshots a booking for the audit log
func NewCancellationRecord(b *Booking, by CancelledBy, at time.Time) *CancellationRecord {
	return &CancellationRecord{
		BookingID:     b.ID,
		BookingCode:   b.BookingCode,
		CustomerName:  b.CustomerName,
		CustomerPhone: b.CustomerPhone,
		CustomerEmail: b.CustomerEmail,
		Start:         b.Start,
		CancelledBy:   by,
		CancelledAt:   at,
	}
}
