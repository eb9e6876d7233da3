package get_available_slots_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RealTimGFM/ScheduleBooker/internal/domain"
	bookingRepo "github.com/RealTimGFM/ScheduleBooker/internal/infra/storage/booking"
	catalogRepo "github.com/RealTimGFM/ScheduleBooker/internal/infra/storage/catalog"
	"github.com/RealTimGFM/ScheduleBooker/internal/infra/storage/storagetest"
	"github.com/RealTimGFM/ScheduleBooker/internal/usecase/get_available_slots"
	"github.com/RealTimGFM/ScheduleBooker/pkg/logger"
	"github.com/RealTimGFM/ScheduleBooker/pkg/metrics"
	"github.com/RealTimGFM/ScheduleBooker/pkg/types"
)

// 2025-12-24 среда
var slotsDay = time.Date(2025, 12, 24, 0, 0, 0, 0, time.UTC)

type fixedTime struct{ now time.Time }

func (f fixedTime) Now() time.Time { return f.now }

type fixture struct {
	uc         *get_available_slots.UseCase
	bookings   *bookingRepo.Repository
	schedule   domain.ShopSchedule
	haircut    int64
	beard      int64
	hidden     int64
	barbers    []int64
	inactiveID int64
}

func setup(t *testing.T, now time.Time) fixture {
	t.Helper()

	db := storagetest.NewSQLite(t)
	schedule := domain.DefaultShopSchedule()

	f := fixture{
		bookings:   bookingRepo.NewRepository(db),
		schedule:   schedule,
		haircut:    storagetest.SeedService(t, db, "Coupe (Homme)", 30, true),
		beard:      storagetest.SeedService(t, db, "Coupe + Barbe", 60, true),
		hidden:     storagetest.SeedService(t, db, "Old service", 30, false),
		inactiveID: storagetest.SeedBarber(t, db, "Retired", false),
	}
	for _, name := range []string{"Alex", "Sam", "Mo"} {
		f.barbers = append(f.barbers, storagetest.SeedBarber(t, db, name, true))
	}

	f.uc = get_available_slots.NewUseCase(
		f.bookings,
		catalogRepo.NewRepository(db),
		schedule,
		metrics.New("test"),
		logger.Nop(),
	).WithTimeProvider(fixedTime{now: now})

	return f
}

func (f fixture) book(t *testing.T, code string, barberID *int64, start types.TimeString, minutes int) {
	t.Helper()

	begin := start.On(slotsDay, f.schedule.Location)
	_, err := f.bookings.Create(context.Background(), &domain.Booking{
		BarberID:     barberID,
		ServiceID:    f.haircut,
		CustomerName: "Client " + code,
		Start:        begin,
		End:          begin.Add(time.Duration(minutes) * time.Minute),
		Status:       domain.StatusBooked,
		BookingCode:  code,
		CreatedAt:    slotsDay,
		UpdatedAt:    slotsDay,
	})
	require.NoError(t, err)
}

func slotByTime(t *testing.T, slots []get_available_slots.Slot, at types.TimeString) get_available_slots.Slot {
	t.Helper()
	for _, s := range slots {
		if s.Time == at {
			return s
		}
	}
	t.Fatalf("slot %s not found", at)
	return get_available_slots.Slot{}
}

func reason(s get_available_slots.Slot) string {
	if s.Reason == nil {
		return ""
	}
	return *s.Reason
}

func dayBefore(schedule domain.ShopSchedule) time.Time {
	return time.Date(2025, 12, 23, 10, 0, 0, 0, schedule.Location)
}

func TestExecute_EmptyDay(t *testing.T) {
	f := setup(t, dayBefore(domain.DefaultShopSchedule()))

	resp, err := f.uc.Execute(context.Background(), &get_available_slots.Request{ServiceID: f.haircut, Date: slotsDay})
	require.NoError(t, err)

	require.Len(t, resp.Slots, 16)
	assert.Equal(t, types.TimeString("11:00"), resp.Slots[0].Time)
	assert.Equal(t, types.TimeString("18:30"), resp.Slots[len(resp.Slots)-1].Time)
	for _, s := range resp.Slots {
		assert.True(t, s.IsAvailable, s.Time)
		assert.Nil(t, s.Reason)
	}
	assert.Equal(t, 30, resp.DurationMinutes)
}

func TestExecute_LongServiceEndsBeforeClosing(t *testing.T) {
	f := setup(t, dayBefore(domain.DefaultShopSchedule()))

	resp, err := f.uc.Execute(context.Background(), &get_available_slots.Request{ServiceID: f.beard, Date: slotsDay})
	require.NoError(t, err)

	require.Len(t, resp.Slots, 15)
	assert.Equal(t, types.TimeString("18:00"), resp.Slots[len(resp.Slots)-1].Time)
}

func TestExecute_Capacity(t *testing.T) {
	f := setup(t, dayBefore(domain.DefaultShopSchedule()))
	for i := 0; i < 3; i++ {
		f.book(t, fmt.Sprintf("CAP%d", i), nil, "14:00", 30)
	}

	resp, err := f.uc.Execute(context.Background(), &get_available_slots.Request{ServiceID: f.haircut, Date: slotsDay})
	require.NoError(t, err)

	full := slotByTime(t, resp.Slots, "14:00")
	assert.False(t, full.IsAvailable)
	assert.Equal(t, domain.ReasonFullyBooked, reason(full))
	assert.True(t, slotByTime(t, resp.Slots, "13:30").IsAvailable)
	assert.True(t, slotByTime(t, resp.Slots, "14:30").IsAvailable)

	// 60-минутная услуга в 13:30 задевает заполненный сегмент 14:00
	resp, err = f.uc.Execute(context.Background(), &get_available_slots.Request{ServiceID: f.beard, Date: slotsDay})
	require.NoError(t, err)
	assert.False(t, slotByTime(t, resp.Slots, "13:30").IsAvailable)
}

func TestExecute_SpecificBarber(t *testing.T) {
	f := setup(t, dayBefore(domain.DefaultShopSchedule()))
	f.book(t, "ALEX1", &f.barbers[0], "15:00", 60)

	resp, err := f.uc.Execute(context.Background(), &get_available_slots.Request{
		ServiceID: f.haircut,
		Date:      slotsDay,
		BarberID:  &f.barbers[0],
	})
	require.NoError(t, err)

	for _, at := range []types.TimeString{"15:00", "15:30"} {
		s := slotByTime(t, resp.Slots, at)
		assert.False(t, s.IsAvailable, at)
		assert.Equal(t, domain.ReasonBarberUnavailable, reason(s))
	}
	assert.True(t, slotByTime(t, resp.Slots, "16:00").IsAvailable)

	// другой мастер свободен
	resp, err = f.uc.Execute(context.Background(), &get_available_slots.Request{
		ServiceID: f.haircut,
		Date:      slotsDay,
		BarberID:  &f.barbers[1],
	})
	require.NoError(t, err)
	assert.True(t, slotByTime(t, resp.Slots, "15:00").IsAvailable)
}

func TestExecute_ClosedMonday(t *testing.T) {
	f := setup(t, dayBefore(domain.DefaultShopSchedule()))
	monday := time.Date(2025, 12, 29, 0, 0, 0, 0, time.UTC)

	resp, err := f.uc.Execute(context.Background(), &get_available_slots.Request{ServiceID: f.haircut, Date: monday})
	require.NoError(t, err)

	require.NotEmpty(t, resp.Slots)
	for _, s := range resp.Slots {
		assert.False(t, s.IsAvailable)
		assert.Equal(t, "Closed (Monday)", reason(s))
	}
}

func TestExecute_Today(t *testing.T) {
	schedule := domain.DefaultShopSchedule()
	f := setup(t, time.Date(2025, 12, 24, 14, 10, 0, 0, schedule.Location))

	resp, err := f.uc.Execute(context.Background(), &get_available_slots.Request{ServiceID: f.haircut, Date: slotsDay})
	require.NoError(t, err)

	assert.Equal(t, domain.ReasonInPast, reason(slotByTime(t, resp.Slots, "11:00")))
	assert.Equal(t, domain.ReasonInPast, reason(slotByTime(t, resp.Slots, "14:00")))
	assert.True(t, slotByTime(t, resp.Slots, "14:30").IsAvailable)
}

func TestExecute_InactiveBarber(t *testing.T) {
	f := setup(t, dayBefore(domain.DefaultShopSchedule()))

	resp, err := f.uc.Execute(context.Background(), &get_available_slots.Request{
		ServiceID: f.haircut,
		Date:      slotsDay,
		BarberID:  &f.inactiveID,
	})
	require.NoError(t, err)

	for _, s := range resp.Slots {
		assert.False(t, s.IsAvailable)
		assert.Equal(t, domain.ReasonInvalidBarber, reason(s))
	}
}

func TestExecute_Errors(t *testing.T) {
	f := setup(t, dayBefore(domain.DefaultShopSchedule()))
	unknown := int64(999)

	tests := []struct {
		name    string
		req     *get_available_slots.Request
		wantErr error
	}{
		{name: "nil request", req: nil, wantErr: get_available_slots.ErrInvalidInput},
		{name: "missing date", req: &get_available_slots.Request{ServiceID: f.haircut}, wantErr: get_available_slots.ErrInvalidInput},
		{name: "unknown service", req: &get_available_slots.Request{ServiceID: 999, Date: slotsDay}, wantErr: get_available_slots.ErrServiceNotFound},
		{name: "inactive service", req: &get_available_slots.Request{ServiceID: f.hidden, Date: slotsDay}, wantErr: get_available_slots.ErrServiceNotFound},
		{name: "unknown barber", req: &get_available_slots.Request{ServiceID: f.haircut, Date: slotsDay, BarberID: &unknown}, wantErr: get_available_slots.ErrBarberNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := f.uc.Execute(context.Background(), tt.req)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, resp)
		})
	}
}

func TestExecute_Idempotent(t *testing.T) {
	f := setup(t, dayBefore(domain.DefaultShopSchedule()))
	f.book(t, "IDEM1", &f.barbers[2], "12:00", 30)

	req := &get_available_slots.Request{ServiceID: f.haircut, Date: slotsDay}
	first, err := f.uc.Execute(context.Background(), req)
	require.NoError(t, err)
	second, err := f.uc.Execute(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, first.Slots, second.Slots)
}
