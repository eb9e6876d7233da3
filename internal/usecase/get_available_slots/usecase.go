package get_available_slots

import (
	"context"
	"errors"
	"fmt"

	"github.com/RealTimGFM/ScheduleBooker/internal/domain"
	catalogRepo "github.com/RealTimGFM/ScheduleBooker/internal/infra/storage/catalog"
	"github.com/RealTimGFM/ScheduleBooker/internal/service/scheduling"
)

// UseCase use case для расчета слотов на день.
// Результат не кешируется: каждый вызов читает актуальное состояние.
type UseCase struct {
	bookingRepo  BookingRepository
	catalogRepo  CatalogRepository
	schedule     domain.ShopSchedule
	calculator   *scheduling.Calculator
	metrics      Metrics
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	catalogRepo CatalogRepository,
	schedule domain.ShopSchedule,
	metrics Metrics,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:  bookingRepo,
		catalogRepo:  catalogRepo,
		schedule:     schedule,
		calculator:   scheduling.NewCalculator(schedule),
		metrics:      metrics,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// WithTimeProvider подменяет источник времени
func (uc *UseCase) WithTimeProvider(tp TimeProvider) *UseCase {
	uc.timeProvider = tp
	return uc
}

// Execute выполняет use case получения слотов
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("GetAvailableSlots: validation failed: %v", err)
		return nil, err
	}

	date := civilDate(req.Date)
	uc.logger.Info("GetAvailableSlots: service=%d, date=%s, barber=%s",
		req.ServiceID, date.Format(domain.DateFormat), barberLabel(req.BarberID))

	// 1. Получаем услугу
	service, err := uc.catalogRepo.GetServiceByID(ctx, req.ServiceID)
	if err != nil {
		if errors.Is(err, catalogRepo.ErrServiceNotFound) {
			uc.logger.Warn("GetAvailableSlots: service id=%d not found", req.ServiceID)
			return nil, ErrServiceNotFound
		}
		uc.logger.Error("GetAvailableSlots: failed to get service id=%d: %v", req.ServiceID, err)
		return nil, fmt.Errorf("%w: failed to get service: %w", ErrInternal, err)
	}
	if !service.IsActive || !service.HasValidDuration() {
		uc.logger.Warn("GetAvailableSlots: service id=%d is not bookable", req.ServiceID)
		return nil, ErrServiceNotFound
	}

	// 2. Проверяем, что мастер существует (неактивный мастер даст слоты с причиной "Invalid barber")
	filter := domain.AnyBarber()
	if req.BarberID != nil {
		if _, err := uc.catalogRepo.GetBarberByID(ctx, *req.BarberID); err != nil {
			if errors.Is(err, catalogRepo.ErrBarberNotFound) {
				uc.logger.Warn("GetAvailableSlots: barber id=%d not found", *req.BarberID)
				return nil, ErrBarberNotFound
			}
			uc.logger.Error("GetAvailableSlots: failed to get barber id=%d: %v", *req.BarberID, err)
			return nil, fmt.Errorf("%w: failed to get barber: %w", ErrInternal, err)
		}
		filter = domain.SpecificBarber(*req.BarberID)
	}

	// 3. Загружаем состояние дня
	var (
		barbers  []*domain.Barber
		bookings []*domain.Booking
	)
	if !uc.schedule.IsClosed(date) {
		barbers, err = uc.catalogRepo.GetActiveBarbers(ctx)
		if err != nil {
			uc.logger.Error("GetAvailableSlots: failed to get barbers: %v", err)
			return nil, fmt.Errorf("%w: failed to get barbers: %w", ErrInternal, err)
		}

		from, to := uc.schedule.DayRange(date)
		bookings, err = uc.bookingRepo.GetWithFilter(ctx, domain.BookingsFilter{From: from, To: to})
		if err != nil {
			uc.logger.Error("GetAvailableSlots: failed to get bookings: %v", err)
			return nil, fmt.Errorf("%w: failed to get bookings: %w", ErrInternal, err)
		}
	}

	// 4. Считаем слоты
	slots := uc.calculator.ComputeSlots(scheduling.SlotsInput{
		Date:     date,
		Duration: service.Duration(),
		Filter:   filter,
		Now:      uc.timeProvider.Now(),
		Barbers:  barbers,
		Bookings: bookings,
	})
	uc.metrics.IncSlotComputation()

	available := 0
	for _, s := range slots {
		if s.IsAvailable {
			available++
		}
	}
	uc.logger.Info("GetAvailableSlots: %d/%d slots available for service=%d on %s",
		available, len(slots), service.ID, date.Format(domain.DateFormat))

	return &Response{
		Date:            date,
		ServiceID:       service.ID,
		BarberID:        req.BarberID,
		DurationMinutes: service.DurationMinutes,
		Slots:           toResponseSlots(slots),
	}, nil
}

func barberLabel(id *int64) string {
	if id == nil {
		return "any"
	}
	return fmt.Sprintf("%d", *id)
}

