package create_booking_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/RealTimGFM/ScheduleBooker/internal/domain"
	bookingRepo "github.com/RealTimGFM/ScheduleBooker/internal/infra/storage/booking"
	catalogRepo "github.com/RealTimGFM/ScheduleBooker/internal/infra/storage/catalog"
	"github.com/RealTimGFM/ScheduleBooker/internal/infra/storage/storagetest"
	"github.com/RealTimGFM/ScheduleBooker/internal/usecase/create_booking"
	"github.com/RealTimGFM/ScheduleBooker/pkg/bookingcode"
	"github.com/RealTimGFM/ScheduleBooker/pkg/logger"
	"github.com/RealTimGFM/ScheduleBooker/pkg/metrics"
	"github.com/RealTimGFM/ScheduleBooker/pkg/txmanager"
	"github.com/RealTimGFM/ScheduleBooker/pkg/types"
)

// 2025-12-24 среда
var bookingDay = time.Date(2025, 12, 24, 0, 0, 0, 0, time.UTC)

type fixedTime struct{ now time.Time }

func (f fixedTime) Now() time.Time { return f.now }

type codeGeneratorMock struct {
	mock.Mock
}

func (m *codeGeneratorMock) Generate() (string, error) {
	args := m.Called()
	return args.String(0), args.Error(1)
}

type fixture struct {
	uc        *create_booking.UseCase
	bookings  *bookingRepo.Repository
	schedule  domain.ShopSchedule
	serviceID int64
	barbers   []int64
}

func setup(t *testing.T, codes create_booking.CodeGenerator) fixture {
	t.Helper()

	db := storagetest.NewSQLite(t)
	schedule := domain.DefaultShopSchedule()

	f := fixture{
		bookings:  bookingRepo.NewRepository(db),
		schedule:  schedule,
		serviceID: storagetest.SeedService(t, db, "Coupe (Homme)", 30, true),
	}
	for _, name := range []string{"Alex", "Sam", "Mo"} {
		f.barbers = append(f.barbers, storagetest.SeedBarber(t, db, name, true))
	}

	if codes == nil {
		codes = bookingcode.NewGenerator(bookingcode.DefaultLength)
	}

	now := time.Date(2025, 12, 23, 10, 0, 0, 0, schedule.Location)
	f.uc = create_booking.NewUseCase(
		f.bookings,
		catalogRepo.NewRepository(db),
		txmanager.NewTransactionManager(db, txmanager.WithoutIsolationLevels()),
		codes,
		schedule,
		5,
		metrics.New("test"),
		logger.Nop(),
	).WithTimeProvider(fixedTime{now: now})

	return f
}

func publicRequest(f fixture, start types.TimeString, phone string) *create_booking.PublicRequest {
	return &create_booking.PublicRequest{
		ServiceID:     f.serviceID,
		Date:          bookingDay,
		StartTime:     start,
		CustomerName:  "Jane Doe",
		CustomerPhone: phone,
	}
}

func TestCreatePublic_Success(t *testing.T) {
	f := setup(t, nil)
	ctx := context.Background()

	req := publicRequest(f, "14:00", "(514) 555-0000")
	req.BarberID = &f.barbers[0]
	req.CustomerEmail = "Jane@Example.com"

	resp, err := f.uc.CreatePublic(ctx, req)
	require.NoError(t, err)

	assert.NotZero(t, resp.ID)
	assert.Len(t, resp.BookingCode, bookingcode.DefaultLength)
	assert.Equal(t, "Coupe (Homme)", resp.ServiceName)
	assert.Equal(t, f.barbers[0], *resp.BarberID)
	assert.Equal(t, "14:00", resp.Start.Format(domain.TimeFormat))
	assert.Equal(t, "14:30", resp.End.Format(domain.TimeFormat))
	assert.Equal(t, 30, resp.DurationMinutes)
	assert.Equal(t, string(domain.StatusBooked), resp.Status)

	found, err := f.bookings.GetByContact(ctx, "5145550000")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, resp.BookingCode, found[0].BookingCode)
	assert.True(t, found[0].Start.Equal(resp.Start))
}

func TestCreatePublic_AnyBarberStoredWithoutBarber(t *testing.T) {
	f := setup(t, nil)

	resp, err := f.uc.CreatePublic(context.Background(), publicRequest(f, "11:00", "5145550001"))
	require.NoError(t, err)
	assert.Nil(t, resp.BarberID)
}

func TestCreatePublic_DailyLimit(t *testing.T) {
	f := setup(t, nil)
	ctx := context.Background()

	_, err := f.uc.CreatePublic(ctx, publicRequest(f, "14:00", "5145550000"))
	require.NoError(t, err)

	_, err = f.uc.CreatePublic(ctx, publicRequest(f, "15:00", "(514) 555-0000"))
	require.NoError(t, err)

	_, err = f.uc.CreatePublic(ctx, publicRequest(f, "16:00", "514-555-0000"))
	require.ErrorIs(t, err, create_booking.ErrDailyLimitReached)
	assert.Equal(t, "If you want more than 2 bookings in a day, contact the barber.", err.Error())

	// администратор не ограничен лимитом
	admin, err := f.uc.CreateAdmin(ctx, &create_booking.AdminRequest{
		ServiceID:     f.serviceID,
		Date:          bookingDay,
		StartTime:     "16:00",
		CustomerName:  "Jane Doe",
		CustomerPhone: "5145550000",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, admin.BookingCode)
}

func TestCreatePublic_Capacity(t *testing.T) {
	f := setup(t, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := f.uc.CreatePublic(ctx, publicRequest(f, "14:00", fmt.Sprintf("51455500%02d", i)))
		require.NoError(t, err)
	}

	_, err := f.uc.CreatePublic(ctx, publicRequest(f, "14:00", "5145550099"))
	require.ErrorIs(t, err, create_booking.ErrSlotNotAvailable)

	req := publicRequest(f, "14:00", "5145550098")
	req.BarberID = &f.barbers[0]
	_, err = f.uc.CreatePublic(ctx, req)
	require.ErrorIs(t, err, create_booking.ErrSlotNotAvailable)
}

func TestCreatePublic_BarberOverlap(t *testing.T) {
	f := setup(t, nil)
	ctx := context.Background()

	first := publicRequest(f, "14:00", "5145550001")
	first.BarberID = &f.barbers[0]
	_, err := f.uc.CreatePublic(ctx, first)
	require.NoError(t, err)

	second := publicRequest(f, "14:00", "5145550002")
	second.BarberID = &f.barbers[0]
	_, err = f.uc.CreatePublic(ctx, second)
	require.ErrorIs(t, err, create_booking.ErrSlotNotAvailable)

	// соседний слот свободен: интервалы полуоткрытые
	third := publicRequest(f, "14:30", "5145550003")
	third.BarberID = &f.barbers[0]
	_, err = f.uc.CreatePublic(ctx, third)
	require.NoError(t, err)

	// другой мастер свободен
	fourth := publicRequest(f, "14:00", "5145550004")
	fourth.BarberID = &f.barbers[1]
	_, err = f.uc.CreatePublic(ctx, fourth)
	require.NoError(t, err)
}

func TestCreatePublic_CustomerDoubleBooking(t *testing.T) {
	f := setup(t, nil)
	ctx := context.Background()

	_, err := f.uc.CreatePublic(ctx, publicRequest(f, "14:00", "5145550000"))
	require.NoError(t, err)

	// тот же клиент, другой мастер, вместимость еще есть
	req := publicRequest(f, "14:00", "(514) 555-0000")
	req.BarberID = &f.barbers[1]
	_, err = f.uc.CreatePublic(ctx, req)
	require.ErrorIs(t, err, create_booking.ErrDoubleBooking)
	assert.Equal(t, domain.MsgDoubleBooking, err.Error())

	// совпадение по email
	first := publicRequest(f, "16:00", "5145557777")
	first.CustomerEmail = "jane@example.com"
	_, err = f.uc.CreatePublic(ctx, first)
	require.NoError(t, err)

	byEmail := publicRequest(f, "16:00", "5145558888")
	byEmail.CustomerEmail = "JANE@example.com"
	_, err = f.uc.CreatePublic(ctx, byEmail)
	require.ErrorIs(t, err, create_booking.ErrDoubleBooking)

	// соседний слот не пересекается
	_, err = f.uc.CreatePublic(ctx, publicRequest(f, "14:30", "5145550000"))
	require.NoError(t, err)

	// другой клиент в то же время
	_, err = f.uc.CreatePublic(ctx, publicRequest(f, "14:00", "5145550001"))
	require.NoError(t, err)
}

func TestCreatePublic_CustomerMayRebookAfterCancel(t *testing.T) {
	f := setup(t, nil)
	ctx := context.Background()

	first, err := f.uc.CreatePublic(ctx, publicRequest(f, "14:00", "5145550000"))
	require.NoError(t, err)
	require.NoError(t, f.bookings.UpdateStatus(ctx, first.ID, domain.StatusBooked, domain.StatusCancelled, time.Now()))

	_, err = f.uc.CreatePublic(ctx, publicRequest(f, "14:00", "5145550000"))
	require.NoError(t, err)
}

func TestCreatePublic_Rejections(t *testing.T) {
	f := setup(t, nil)
	ctx := context.Background()
	monday := time.Date(2025, 12, 22, 0, 0, 0, 0, time.UTC)
	unknown := int64(999)

	tests := []struct {
		name    string
		mutate  func(r *create_booking.PublicRequest)
		wantErr error
		wantMsg string
	}{
		{
			name:    "closed monday",
			mutate:  func(r *create_booking.PublicRequest) { r.Date = monday },
			wantErr: create_booking.ErrShopClosed,
			wantMsg: "Closed (Monday)",
		},
		{
			name:    "off grid",
			mutate:  func(r *create_booking.PublicRequest) { r.StartTime = "14:15" },
			wantErr: create_booking.ErrInvalidTimeSlot,
		},
		{
			name:    "before opening",
			mutate:  func(r *create_booking.PublicRequest) { r.StartTime = "10:30" },
			wantErr: create_booking.ErrOutsideHours,
		},
		{
			name:    "at closing",
			mutate:  func(r *create_booking.PublicRequest) { r.StartTime = "19:00" },
			wantErr: create_booking.ErrOutsideHours,
		},
		{
			name:    "in the past",
			mutate:  func(r *create_booking.PublicRequest) { r.Date = time.Date(2025, 12, 21, 0, 0, 0, 0, time.UTC) },
			wantErr: create_booking.ErrTooLateToBook,
			wantMsg: "Cannot book in the past.",
		},
		{
			name:    "unknown service",
			mutate:  func(r *create_booking.PublicRequest) { r.ServiceID = 999 },
			wantErr: create_booking.ErrServiceNotFound,
		},
		{
			name:    "unknown barber",
			mutate:  func(r *create_booking.PublicRequest) { r.BarberID = &unknown },
			wantErr: create_booking.ErrBarberNotFound,
		},
		{
			name:    "missing time",
			mutate:  func(r *create_booking.PublicRequest) { r.StartTime = "" },
			wantErr: create_booking.ErrMissingField,
		},
		{
			name:    "missing name",
			mutate:  func(r *create_booking.PublicRequest) { r.CustomerName = "  " },
			wantErr: create_booking.ErrMissingField,
		},
		{
			name:    "missing phone",
			mutate:  func(r *create_booking.PublicRequest) { r.CustomerPhone = "" },
			wantErr: create_booking.ErrMissingField,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := publicRequest(f, "14:00", "5145550000")
			tt.mutate(req)

			resp, err := f.uc.CreatePublic(ctx, req)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, resp)
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, err.Error())
			}
		})
	}

	found, err := f.bookings.GetByContact(ctx, "5145550000")
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestCreatePublic_ConcurrentSameBarber(t *testing.T) {
	f := setup(t, nil)
	ctx := context.Background()

	const workers = 10
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			req := publicRequest(f, "15:00", fmt.Sprintf("51455501%02d", i))
			req.BarberID = &f.barbers[0]
			_, err := f.uc.CreatePublic(ctx, req)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case assert.ErrorIs(t, err, create_booking.ErrSlotNotAvailable):
				conflicts++
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, workers-1, conflicts)

	from, to := f.schedule.DayRange(bookingDay)
	stored, err := f.bookings.GetWithFilter(ctx, domain.BookingsFilter{From: from, To: to})
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}

func TestCreatePublic_RetriesDuplicateCode(t *testing.T) {
	codes := &codeGeneratorMock{}
	codes.On("Generate").Return("TAKEN234", nil).Twice()
	codes.On("Generate").Return("FRESH234", nil).Once()

	f := setup(t, codes)
	ctx := context.Background()

	first, err := f.uc.CreatePublic(ctx, publicRequest(f, "12:00", "5145550001"))
	require.NoError(t, err)
	assert.Equal(t, "TAKEN234", first.BookingCode)

	second, err := f.uc.CreatePublic(ctx, publicRequest(f, "12:00", "5145550002"))
	require.NoError(t, err)
	assert.Equal(t, "FRESH234", second.BookingCode)

	codes.AssertExpectations(t)
}

func TestCreatePublic_CodeAttemptsExhausted(t *testing.T) {
	codes := &codeGeneratorMock{}
	codes.On("Generate").Return("SAMECODE", nil)

	f := setup(t, codes)
	ctx := context.Background()

	_, err := f.uc.CreatePublic(ctx, publicRequest(f, "12:00", "5145550001"))
	require.NoError(t, err)

	_, err = f.uc.CreatePublic(ctx, publicRequest(f, "13:00", "5145550002"))
	require.ErrorIs(t, err, create_booking.ErrCodeAllocation)

	// 1 успешная попытка + 5 коллизий
	codes.AssertNumberOfCalls(t, "Generate", 6)
}

func TestCreateAdmin(t *testing.T) {
	f := setup(t, nil)
	ctx := context.Background()

	t.Run("ignores calendar and capacity", func(t *testing.T) {
		monday := time.Date(2025, 12, 22, 0, 0, 0, 0, time.UTC)
		resp, err := f.uc.CreateAdmin(ctx, &create_booking.AdminRequest{
			ServiceID:    f.serviceID,
			BarberID:     &f.barbers[0],
			Date:         monday,
			StartTime:    "09:15",
			CustomerName: "Walk-in",
		})
		require.NoError(t, err)
		assert.Equal(t, "09:15", resp.Start.Format(domain.TimeFormat))
		assert.Nil(t, resp.CustomerPhone)
	})

	t.Run("double booking allowed", func(t *testing.T) {
		for i := 0; i < 2; i++ {
			_, err := f.uc.CreateAdmin(ctx, &create_booking.AdminRequest{
				ServiceID:    f.serviceID,
				BarberID:     &f.barbers[1],
				Date:         bookingDay,
				StartTime:    "17:00",
				CustomerName: fmt.Sprintf("Client %d", i),
			})
			require.NoError(t, err)
		}
	})

	t.Run("missing name", func(t *testing.T) {
		_, err := f.uc.CreateAdmin(ctx, &create_booking.AdminRequest{
			ServiceID: f.serviceID,
			Date:      bookingDay,
			StartTime: "17:00",
		})
		require.ErrorIs(t, err, create_booking.ErrMissingField)
	})

	t.Run("invalid time", func(t *testing.T) {
		_, err := f.uc.CreateAdmin(ctx, &create_booking.AdminRequest{
			ServiceID:    f.serviceID,
			Date:         bookingDay,
			StartTime:    "25:00",
			CustomerName: "Walk-in",
		})
		require.ErrorIs(t, err, create_booking.ErrInvalidInput)
	})

	t.Run("unknown barber", func(t *testing.T) {
		unknown := int64(999)
		_, err := f.uc.CreateAdmin(ctx, &create_booking.AdminRequest{
			ServiceID:    f.serviceID,
			BarberID:     &unknown,
			Date:         bookingDay,
			StartTime:    "17:00",
			CustomerName: "Walk-in",
		})
		require.ErrorIs(t, err, create_booking.ErrBarberNotFound)
	})
}
