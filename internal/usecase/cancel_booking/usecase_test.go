package cancel_booking_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RealTimGFM/ScheduleBooker/internal/domain"
	"github.com/RealTimGFM/ScheduleBooker/internal/infra/ratelimit"
	bookingRepo "github.com/RealTimGFM/ScheduleBooker/internal/infra/storage/booking"
	"github.com/RealTimGFM/ScheduleBooker/internal/infra/storage/storagetest"
	"github.com/RealTimGFM/ScheduleBooker/internal/usecase/cancel_booking"
	"github.com/RealTimGFM/ScheduleBooker/pkg/logger"
	"github.com/RealTimGFM/ScheduleBooker/pkg/metrics"
	"github.com/RealTimGFM/ScheduleBooker/pkg/ptr"
	"github.com/RealTimGFM/ScheduleBooker/pkg/txmanager"
)

type fixedTime struct{ now time.Time }

func (f fixedTime) Now() time.Time { return f.now }

type fixture struct {
	bookings  *bookingRepo.Repository
	tx        *txmanager.TransactionManager
	schedule  domain.ShopSchedule
	serviceID int64
	start     time.Time
}

func setup(t *testing.T) fixture {
	t.Helper()

	db := storagetest.NewSQLite(t)
	schedule := domain.DefaultShopSchedule()

	return fixture{
		bookings:  bookingRepo.NewRepository(db),
		tx:        txmanager.NewTransactionManager(db, txmanager.WithoutIsolationLevels()),
		schedule:  schedule,
		serviceID: storagetest.SeedService(t, db, "Coupe (Homme)", 30, true),
		start:     time.Date(2025, 12, 24, 14, 0, 0, 0, schedule.Location),
	}
}

func (f fixture) useCase(now time.Time, attempts int) *cancel_booking.UseCase {
	return cancel_booking.NewUseCase(
		f.bookings,
		f.tx,
		ratelimit.NewLocalLimiter(attempts, 10*time.Minute),
		f.schedule,
		metrics.New("test"),
		logger.Nop(),
	).WithTimeProvider(fixedTime{now: now})
}

func (f fixture) seed(t *testing.T, code string) *domain.Booking {
	t.Helper()

	created, err := f.bookings.Create(context.Background(), &domain.Booking{
		ServiceID:     f.serviceID,
		CustomerName:  "Jane Doe",
		CustomerPhone: ptr.Ptr("(514) 123-4567"),
		CustomerEmail: ptr.Ptr("Jane@Example.com"),
		Start:         f.start,
		End:           f.start.Add(30 * time.Minute),
		Status:        domain.StatusBooked,
		BookingCode:   code,
		CreatedAt:     f.start.Add(-48 * time.Hour),
		UpdatedAt:     f.start.Add(-48 * time.Hour),
	})
	require.NoError(t, err)
	return created
}

func TestExecute_Scenario(t *testing.T) {
	f := setup(t)
	b := f.seed(t, "ABC123")
	uc := f.useCase(f.start.Add(-2*time.Hour), 10)
	ctx := context.Background()

	_, err := uc.Execute(ctx, &cancel_booking.Request{BookingID: b.ID, Contact: "5149999999", BookingCode: "ABC123"})
	require.ErrorIs(t, err, cancel_booking.ErrInvalidCredentials)
	assert.Equal(t, domain.MsgInvalidContact, err.Error())

	_, err = uc.Execute(ctx, &cancel_booking.Request{BookingID: b.ID, Contact: "5141234567", BookingCode: "XYZ999"})
	require.ErrorIs(t, err, cancel_booking.ErrInvalidCredentials)
	assert.Equal(t, domain.MsgInvalidContact, err.Error())

	resp, err := uc.Execute(ctx, &cancel_booking.Request{BookingID: b.ID, Contact: "5141234567", BookingCode: "ABC123"})
	require.NoError(t, err)
	assert.Equal(t, b.ID, resp.BookingID)
	assert.Equal(t, string(domain.StatusCancelled), resp.Status)

	stored, err := f.bookings.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, stored.Status)

	records, err := f.bookings.GetCancellationRecords(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, domain.CancelledByCustomer, records[0].CancelledBy)
	assert.Equal(t, "ABC123", records[0].BookingCode)

	_, err = uc.Execute(ctx, &cancel_booking.Request{BookingID: b.ID, Contact: "5141234567", BookingCode: "ABC123"})
	require.ErrorIs(t, err, cancel_booking.ErrAlreadyCancelled)
}

func TestExecute_ContactFormats(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		contact string
		code    string
	}{
		{name: "formatted phone", contact: "(514) 123 4567", code: "ABC123"},
		{name: "email any case", contact: "  jane@EXAMPLE.com ", code: "ABC123"},
		{name: "dotted phone", contact: "514.123.4567", code: "ABC123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setup(t)
			b := f.seed(t, "ABC123")
			uc := f.useCase(f.start.Add(-2*time.Hour), 10)

			_, err := uc.Execute(ctx, &cancel_booking.Request{BookingID: b.ID, Contact: tt.contact, BookingCode: tt.code})
			require.NoError(t, err)
		})
	}
}

func TestExecute_CodeMustMatchExactly(t *testing.T) {
	ctx := context.Background()

	for _, code := range []string{"abc123", "Abc123", " ABC123", "ABC123 ", "ABC12"} {
		t.Run(code, func(t *testing.T) {
			f := setup(t)
			b := f.seed(t, "ABC123")
			uc := f.useCase(f.start.Add(-2*time.Hour), 10)

			_, err := uc.Execute(ctx, &cancel_booking.Request{BookingID: b.ID, Contact: "5141234567", BookingCode: code})
			require.ErrorIs(t, err, cancel_booking.ErrInvalidCredentials)

			stored, err := f.bookings.GetByID(ctx, b.ID)
			require.NoError(t, err)
			assert.Equal(t, domain.StatusBooked, stored.Status)
		})
	}
}

func TestExecute_Rejections(t *testing.T) {
	ctx := context.Background()

	t.Run("not found", func(t *testing.T) {
		f := setup(t)
		uc := f.useCase(f.start.Add(-2*time.Hour), 10)

		_, err := uc.Execute(ctx, &cancel_booking.Request{BookingID: 42, Contact: "5141234567", BookingCode: "ABC123"})
		require.ErrorIs(t, err, cancel_booking.ErrBookingNotFound)
	})

	t.Run("missing fields", func(t *testing.T) {
		f := setup(t)
		uc := f.useCase(f.start.Add(-2*time.Hour), 10)

		_, err := uc.Execute(ctx, &cancel_booking.Request{BookingID: 1, Contact: " "})
		require.ErrorIs(t, err, cancel_booking.ErrInvalidInput)
	})

	t.Run("already started", func(t *testing.T) {
		f := setup(t)
		b := f.seed(t, "ABC123")
		uc := f.useCase(f.start.Add(5*time.Minute), 10)

		_, err := uc.Execute(ctx, &cancel_booking.Request{BookingID: b.ID, Contact: "5141234567", BookingCode: "ABC123"})
		require.ErrorIs(t, err, cancel_booking.ErrCancelPast)
	})

	t.Run("within cutoff", func(t *testing.T) {
		f := setup(t)
		b := f.seed(t, "ABC123")
		uc := f.useCase(f.start.Add(-20*time.Minute), 10)

		_, err := uc.Execute(ctx, &cancel_booking.Request{BookingID: b.ID, Contact: "5141234567", BookingCode: "ABC123"})
		require.ErrorIs(t, err, cancel_booking.ErrCancelTooLate)
		assert.Equal(t, "Cancellations must be made at least 30 minutes in advance.", err.Error())

		stored, err := f.bookings.GetByID(ctx, b.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusBooked, stored.Status)
	})

	t.Run("exactly at cutoff", func(t *testing.T) {
		f := setup(t)
		b := f.seed(t, "ABC123")
		uc := f.useCase(f.start.Add(-30*time.Minute), 10)

		_, err := uc.Execute(ctx, &cancel_booking.Request{BookingID: b.ID, Contact: "5141234567", BookingCode: "ABC123"})
		require.NoError(t, err)
	})

	t.Run("too many attempts", func(t *testing.T) {
		f := setup(t)
		b := f.seed(t, "ABC123")
		uc := f.useCase(f.start.Add(-2*time.Hour), 2)

		for i := 0; i < 2; i++ {
			_, err := uc.Execute(ctx, &cancel_booking.Request{BookingID: b.ID, Contact: "5141234567", BookingCode: "WRONG1"})
			require.ErrorIs(t, err, cancel_booking.ErrInvalidCredentials)
		}

		// даже верные данные отклоняются до истечения окна
		_, err := uc.Execute(ctx, &cancel_booking.Request{BookingID: b.ID, Contact: "5141234567", BookingCode: "ABC123"})
		require.ErrorIs(t, err, cancel_booking.ErrTooManyAttempts)
	})
}
