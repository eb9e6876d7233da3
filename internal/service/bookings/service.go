package bookings

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/RealTimGFM/ScheduleBooker/internal/domain"
	bookingRepo "github.com/RealTimGFM/ScheduleBooker/internal/infra/storage/booking"
	catalogRepo "github.com/RealTimGFM/ScheduleBooker/internal/infra/storage/catalog"
	"github.com/RealTimGFM/ScheduleBooker/internal/service/bookings/models"
	"github.com/RealTimGFM/ScheduleBooker/pkg/types"
)

// Service сервис администрирования бронирований.
// Проверки расписания, вместимости и лимитов здесь не выполняются.
type Service struct {
	bookingRepo  BookingRepository
	catalogRepo  CatalogRepository
	txManager    TransactionManager
	schedule     domain.ShopSchedule
	metrics      Metrics
	timeProvider TimeProvider
	logger       Logger
}

// NewService создает новый экземпляр сервиса бронирований
func NewService(
	bookingRepo BookingRepository,
	catalogRepo CatalogRepository,
	txManager TransactionManager,
	schedule domain.ShopSchedule,
	metrics Metrics,
	logger Logger,
) *Service {
	return &Service{
		bookingRepo:  bookingRepo,
		catalogRepo:  catalogRepo,
		txManager:    txManager,
		schedule:     schedule,
		metrics:      metrics,
		timeProvider: realTimeProvider{},
		logger:       logger,
	}
}

// WithTimeProvider подменяет источник времени
func (s *Service) WithTimeProvider(tp TimeProvider) *Service {
	s.timeProvider = tp
	return s
}

// GetByID получает бронирование по ID
func (s *Service) GetByID(ctx context.Context, id int64) (*models.BookingResponse, error) {
	s.logger.Info("GetByID: fetching booking id=%d", id)

	booking, err := s.getBooking(ctx, "GetByID", id)
	if err != nil {
		return nil, err
	}

	return models.FromDomainBooking(booking, s.schedule.Location), nil
}

// ListForDay получает бронирования на дату, опционально по мастеру
func (s *Service) ListForDay(ctx context.Context, req *models.ListForDayRequest) (*models.BookingListResponse, error) {
	if req == nil || req.Date.IsZero() {
		return nil, fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	logMsg := fmt.Sprintf("ListForDay: fetching bookings for %s", req.Date.Format(domain.DateFormat))
	if req.BarberID != nil {
		logMsg += fmt.Sprintf(", barber=%d", *req.BarberID)
	}
	if req.IncludeInactive {
		logMsg += ", includeInactive=true"
	}
	s.logger.Info(logMsg)

	from, to := s.schedule.DayRange(req.Date)
	bookings, err := s.bookingRepo.GetWithFilter(ctx, domain.BookingsFilter{
		From:            from,
		To:              to,
		BarberID:        req.BarberID,
		IncludeInactive: req.IncludeInactive,
	})
	if err != nil {
		s.logger.Error("ListForDay: repository error: %v", err)
		return nil, fmt.Errorf("%w: ListForDay - repository error: %w", ErrInternal, err)
	}

	s.logger.Info("ListForDay: successfully fetched %d bookings", len(bookings))
	return models.FromDomainBookingList(bookings, s.schedule.Location), nil
}

// FindByContact ищет бронирования клиента по телефону или email
func (s *Service) FindByContact(ctx context.Context, contact string) (*models.BookingListResponse, error) {
	if strings.TrimSpace(contact) == "" {
		return nil, fmt.Errorf("%w: contact is required", ErrInvalidInput)
	}

	bookings, err := s.bookingRepo.GetByContact(ctx, contact)
	if err != nil {
		s.logger.Error("FindByContact: repository error: %v", err)
		return nil, fmt.Errorf("%w: FindByContact - repository error: %w", ErrInternal, err)
	}

	s.logger.Info("FindByContact: found %d bookings", len(bookings))
	return models.FromDomainBookingList(bookings, s.schedule.Location), nil
}

// Cancel отменяет бронирование от имени администратора.
// Ограничение по времени до начала не применяется.
func (s *Service) Cancel(ctx context.Context, id int64) error {
	s.logger.Info("Cancel: cancelling booking id=%d by admin", id)

	booking, err := s.getBooking(ctx, "Cancel", id)
	if err != nil {
		return err
	}
	if booking.IsCancelled() {
		s.logger.Warn("Cancel: booking id=%d already cancelled", id)
		return ErrAlreadyCancelled
	}

	now := s.timeProvider.Now()
	err = s.txManager.Do(ctx, func(txCtx context.Context) error {
		if err := s.bookingRepo.UpdateStatus(txCtx, id, domain.StatusBooked, domain.StatusCancelled, now); err != nil {
			return err
		}
		_, err := s.bookingRepo.CreateCancellationRecord(txCtx, domain.NewCancellationRecord(booking, domain.CancelledByAdmin, now))
		return err
	})
	if err != nil {
		if errors.Is(err, bookingRepo.ErrStatusConflict) {
			s.logger.Warn("Cancel: booking id=%d cancelled concurrently", id)
			return ErrAlreadyCancelled
		}
		s.logger.Error("Cancel: repository error for booking id=%d: %v", id, err)
		return fmt.Errorf("%w: Cancel - repository error: %w", ErrInternal, err)
	}

	s.metrics.IncCancellation("admin")
	s.logger.Info("Cancel: successfully cancelled booking id=%d", id)
	return nil
}

// GetCancellations возвращает журнал отмен бронирования
func (s *Service) GetCancellations(ctx context.Context, id int64) ([]models.CancellationResponse, error) {
	records, err := s.bookingRepo.GetCancellationRecords(ctx, id)
	if err != nil {
		s.logger.Error("GetCancellations: repository error for booking id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: GetCancellations - repository error: %w", ErrInternal, err)
	}

	result := make([]models.CancellationResponse, len(records))
	for i, r := range records {
		result[i] = models.FromDomainCancellation(r)
	}
	return result, nil
}

// Update редактирует бронирование. При смене услуги, даты или времени
// окончание пересчитывается по текущей длительности услуги.
func (s *Service) Update(ctx context.Context, id int64, req *models.UpdateBookingRequest) (*models.BookingResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: request is required", ErrInvalidInput)
	}

	s.logger.Info("Update: updating booking id=%d by admin", id)

	var result *domain.Booking
	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		booking, err := s.getBooking(txCtx, "Update", id)
		if err != nil {
			return err
		}

		if err := s.applyUpdate(txCtx, booking, req); err != nil {
			return err
		}
		booking.UpdatedAt = s.timeProvider.Now()

		if err := s.bookingRepo.Update(txCtx, booking); err != nil {
			if errors.Is(err, bookingRepo.ErrBookingNotFound) {
				return ErrBookingNotFound
			}
			s.logger.Error("Update: repository error for booking id=%d: %v", id, err)
			return fmt.Errorf("%w: Update - repository error: %w", ErrInternal, err)
		}

		result = booking
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Update: successfully updated booking id=%d", id)
	return models.FromDomainBooking(result, s.schedule.Location), nil
}

func (s *Service) applyUpdate(ctx context.Context, b *domain.Booking, req *models.UpdateBookingRequest) error {
	local := b.Start.In(s.schedule.Location)
	date := local
	startTime := types.NewTimeString(local)
	reschedule := false

	if req.ServiceID != nil && *req.ServiceID != b.ServiceID {
		b.ServiceID = *req.ServiceID
		reschedule = true
	}
	if req.Date != nil {
		date = *req.Date
		reschedule = true
	}
	if req.StartTime != nil {
		if err := req.StartTime.Validate(); err != nil {
			return fmt.Errorf("%w: invalid startTime: %v", ErrInvalidInput, err)
		}
		startTime = *req.StartTime
		reschedule = true
	}

	if req.ClearBarber {
		b.BarberID = nil
	} else if req.BarberID != nil {
		if _, err := s.catalogRepo.GetBarberByID(ctx, *req.BarberID); err != nil {
			return s.mapCatalogError("Update", err)
		}
		b.BarberID = req.BarberID
	}

	if req.CustomerName != nil {
		name := strings.TrimSpace(*req.CustomerName)
		if name == "" {
			return fmt.Errorf("%w: customerName must not be empty", ErrInvalidInput)
		}
		b.CustomerName = name
	}
	if req.CustomerPhone != nil {
		b.CustomerPhone = emptyToNil(*req.CustomerPhone)
	}
	if req.CustomerEmail != nil {
		b.CustomerEmail = emptyToNil(*req.CustomerEmail)
	}
	if req.Notes != nil {
		b.Notes = emptyToNil(*req.Notes)
	}
	if req.Status != nil {
		status, err := models.ToDomainBookingStatus(*req.Status)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		b.Status = status
	}

	if !reschedule {
		return nil
	}

	service, err := s.catalogRepo.GetServiceByID(ctx, b.ServiceID)
	if err != nil {
		return s.mapCatalogError("Update", err)
	}
	if !service.HasValidDuration() {
		return ErrServiceNotFound
	}

	b.Start = startTime.On(date, s.schedule.Location)
	b.End = b.Start.Add(service.Duration())
	return nil
}

// Вспомогательные методы

func (s *Service) getBooking(ctx context.Context, op string, id int64) (*domain.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("%s: booking id=%d not found", op, id)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("%s: repository error for booking id=%d: %v", op, id, err)
		return nil, fmt.Errorf("%w: %s - repository error: %w", ErrInternal, op, err)
	}
	return booking, nil
}

func (s *Service) mapCatalogError(op string, err error) error {
	switch {
	case errors.Is(err, catalogRepo.ErrServiceNotFound):
		return ErrServiceNotFound
	case errors.Is(err, catalogRepo.ErrBarberNotFound):
		return ErrBarberNotFound
	default:
		s.logger.Error("%s: catalog error: %v", op, err)
		return fmt.Errorf("%w: %s - catalog error: %w", ErrInternal, op, err)
	}
}

func emptyToNil(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
