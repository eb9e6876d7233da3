package create_booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/RealTimGFM/ScheduleBooker/internal/domain"
	bookingRepo "github.com/RealTimGFM/ScheduleBooker/internal/infra/storage/booking"
	catalogRepo "github.com/RealTimGFM/ScheduleBooker/internal/infra/storage/catalog"
	"github.com/RealTimGFM/ScheduleBooker/internal/service/scheduling"
)

const (
	pathPublic = "public"
	pathAdmin  = "admin"
)

// UseCase use case для создания бронирования
type UseCase struct {
	bookingRepo  BookingRepository
	catalogRepo  CatalogRepository
	txManager    TransactionManager
	codes        CodeGenerator
	schedule     domain.ShopSchedule
	calculator   *scheduling.Calculator
	quota        *scheduling.QuotaChecker
	codeAttempts int
	metrics      Metrics
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case.
// codeAttempts ограничивает число повторов при коллизии кода подтверждения.
func NewUseCase(
	bookingRepo BookingRepository,
	catalogRepo CatalogRepository,
	txManager TransactionManager,
	codes CodeGenerator,
	schedule domain.ShopSchedule,
	codeAttempts int,
	metrics Metrics,
	logger Logger,
) *UseCase {
	if codeAttempts <= 0 {
		codeAttempts = 1
	}
	return &UseCase{
		bookingRepo:  bookingRepo,
		catalogRepo:  catalogRepo,
		txManager:    txManager,
		codes:        codes,
		schedule:     schedule,
		calculator:   scheduling.NewCalculator(schedule),
		quota:        scheduling.NewQuotaChecker(bookingRepo, schedule),
		codeAttempts: codeAttempts,
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

// CreatePublic создает бронирование от имени гостя.
// Все проверки доступности выполняются в сериализуемой транзакции вместе со вставкой,
// поэтому два параллельных запроса не могут занять один и тот же слот.
func (uc *UseCase) CreatePublic(ctx context.Context, req *PublicRequest) (*Response, error) {
	if err := validatePublicRequest(req); err != nil {
		uc.logger.Warn("CreateBooking: validation failed: %v", err)
		return nil, uc.reject(err)
	}

	date := civilDate(req.Date)
	uc.logger.Info("CreateBooking: service=%d, barber=%s, date=%s, time=%s",
		req.ServiceID, barberLabel(req.BarberID), date.Format(domain.DateFormat), req.StartTime)

	// 1. Получаем услугу
	service, err := uc.getService(ctx, req.ServiceID)
	if err != nil {
		return nil, uc.reject(err)
	}
	if !service.IsActive || !service.HasValidDuration() {
		uc.logger.Warn("CreateBooking: service id=%d is not bookable", req.ServiceID)
		return nil, uc.reject(ErrServiceNotFound)
	}

	// 2. Проверяем календарь: выходной, сетка, рабочие часы
	interval, err := uc.calculator.ResolveStart(date, req.StartTime, service.Duration())
	if err != nil {
		uc.logger.Warn("CreateBooking: %s %s rejected by calendar: %v", date.Format(domain.DateFormat), req.StartTime, err)
		return nil, uc.reject(err)
	}

	// 3. Нельзя записаться на прошедшее время
	now := uc.timeProvider.Now()
	if interval.Start.Before(now.Truncate(time.Minute)) {
		uc.logger.Warn("CreateBooking: start %s is in the past", interval.Start.Format("2006-01-02 15:04"))
		return nil, uc.reject(ErrTooLateToBook)
	}

	// 4. Мастер должен существовать и быть активным
	filter := domain.AnyBarber()
	if req.BarberID != nil {
		barber, err := uc.getBarber(ctx, *req.BarberID)
		if err != nil {
			return nil, uc.reject(err)
		}
		if !barber.IsActive {
			uc.logger.Warn("CreateBooking: barber id=%d is inactive", barber.ID)
			return nil, uc.reject(ErrBarberNotFound)
		}
		filter = domain.SpecificBarber(barber.ID)
	}

	phone := strings.TrimSpace(req.CustomerPhone)
	email := strings.TrimSpace(req.CustomerEmail)

	build := func(code string) *domain.Booking {
		return &domain.Booking{
			UserID:        req.UserID,
			BarberID:      filter.BarberID,
			ServiceID:     service.ID,
			CustomerName:  strings.TrimSpace(req.CustomerName),
			CustomerPhone: optional(phone),
			CustomerEmail: optional(email),
			Start:         interval.Start,
			End:           interval.End,
			Notes:         req.Notes,
			Status:        domain.StatusBooked,
			BookingCode:   code,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
	}

	// 5. Проверки состояния и вставка в одной сериализуемой транзакции
	check := func(txCtx context.Context) error {
		// 5.1. Активные мастера и бронирования дня (FOR UPDATE в postgres)
		barbers, err := uc.catalogRepo.GetActiveBarbers(txCtx)
		if err != nil {
			uc.logger.Error("CreateBooking: failed to get barbers: %v", err)
			return fmt.Errorf("%w: failed to get barbers: %w", ErrInternal, err)
		}

		from, to := uc.schedule.DayRange(date)
		bookings, err := uc.bookingRepo.GetWithFilter(txCtx, domain.BookingsFilter{From: from, To: to})
		if err != nil {
			uc.logger.Error("CreateBooking: failed to get bookings: %v", err)
			return fmt.Errorf("%w: failed to get bookings: %w", ErrInternal, err)
		}

		// 5.2. Конфликты по мастеру и вместимости
		detector := scheduling.NewDetector(uc.schedule, barbers, bookings)
		if blocked, reason := detector.IsSlotBlocked(interval, filter); blocked {
			uc.logger.Warn("CreateBooking: slot %s blocked: %s", req.StartTime, reason)
			return ErrSlotNotAvailable
		}

		// 5.3. Клиент не может записаться поверх своей же записи
		if detector.CustomerOverlaps(interval, phone, email) {
			uc.logger.Warn("CreateBooking: customer already has a booking overlapping %s", req.StartTime)
			return ErrDoubleBooking
		}

		// 5.4. Дневной лимит клиента
		reached, err := uc.quota.LimitReached(txCtx, phone, email, date)
		if err != nil {
			uc.logger.Error("CreateBooking: failed to count customer bookings: %v", err)
			return fmt.Errorf("%w: failed to count customer bookings: %w", ErrInternal, err)
		}
		if reached {
			uc.logger.Warn("CreateBooking: daily limit %d reached for customer", uc.quota.Limit())
			return domain.DailyLimitRejection(uc.quota.Limit())
		}

		// 5.5. Обязательные поля клиента
		return validateCustomer(req.CustomerName, phone, email, req.Notes)
	}

	created, err := uc.commit(ctx, build, check, true)
	if err != nil {
		return nil, uc.reject(err)
	}

	uc.metrics.IncBookingCreated(pathPublic)
	uc.logger.Info("CreateBooking: successfully created booking id=%d code=%s", created.ID, created.BookingCode)

	return uc.toResponse(created, service), nil
}

// CreateAdmin создает бронирование от имени администратора.
// Выходные, рабочие часы, сетка, вместимость и дневной лимит не проверяются.
func (uc *UseCase) CreateAdmin(ctx context.Context, req *AdminRequest) (*Response, error) {
	if err := validateAdminRequest(req); err != nil {
		uc.logger.Warn("CreateBooking(admin): validation failed: %v", err)
		return nil, uc.reject(err)
	}

	date := civilDate(req.Date)
	uc.logger.Info("CreateBooking(admin): service=%d, barber=%s, date=%s, time=%s",
		req.ServiceID, barberLabel(req.BarberID), date.Format(domain.DateFormat), req.StartTime)

	// 1. Получаем услугу (администратор может использовать скрытую услугу)
	service, err := uc.getService(ctx, req.ServiceID)
	if err != nil {
		return nil, uc.reject(err)
	}
	if !service.HasValidDuration() {
		uc.logger.Warn("CreateBooking(admin): service id=%d has invalid duration", req.ServiceID)
		return nil, uc.reject(ErrServiceNotFound)
	}

	// 2. Мастер должен существовать
	if req.BarberID != nil {
		if _, err := uc.getBarber(ctx, *req.BarberID); err != nil {
			return nil, uc.reject(err)
		}
	}

	interval := domain.NewInterval(req.StartTime.On(date, uc.schedule.Location), service.Duration())
	now := uc.timeProvider.Now()
	phone := strings.TrimSpace(req.CustomerPhone)
	email := strings.TrimSpace(req.CustomerEmail)

	build := func(code string) *domain.Booking {
		return &domain.Booking{
			UserID:        req.UserID,
			BarberID:      req.BarberID,
			ServiceID:     service.ID,
			CustomerName:  strings.TrimSpace(req.CustomerName),
			CustomerPhone: optional(phone),
			CustomerEmail: optional(email),
			Start:         interval.Start,
			End:           interval.End,
			Notes:         req.Notes,
			Status:        domain.StatusBooked,
			BookingCode:   code,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
	}

	created, err := uc.commit(ctx, build, nil, false)
	if err != nil {
		return nil, uc.reject(err)
	}

	uc.metrics.IncBookingCreated(pathAdmin)
	uc.logger.Info("CreateBooking(admin): successfully created booking id=%d code=%s", created.ID, created.BookingCode)

	return uc.toResponse(created, service), nil
}

// commit выполняет проверку и вставку в транзакции.
// При коллизии кода подтверждения вся транзакция повторяется с новым кодом.
func (uc *UseCase) commit(
	ctx context.Context,
	build func(code string) *domain.Booking,
	check func(txCtx context.Context) error,
	serializable bool,
) (*domain.Booking, error) {
	run := uc.txManager.Do
	if serializable {
		run = uc.txManager.DoSerializable
	}

	for attempt := 1; attempt <= uc.codeAttempts; attempt++ {
		code, err := uc.codes.Generate()
		if err != nil {
			uc.logger.Error("CreateBooking: failed to generate booking code: %v", err)
			return nil, fmt.Errorf("%w: failed to generate booking code: %w", ErrInternal, err)
		}

		var result *domain.Booking
		err = run(ctx, func(txCtx context.Context) error {
			if check != nil {
				if err := check(txCtx); err != nil {
					return err
				}
			}

			created, err := uc.bookingRepo.Create(txCtx, build(code))
			if err != nil {
				return err
			}
			result = created
			return nil
		})

		switch {
		case err == nil:
			return result, nil
		case errors.Is(err, bookingRepo.ErrDuplicateCode):
			uc.logger.Warn("CreateBooking: booking code collision, attempt %d/%d", attempt, uc.codeAttempts)
			continue
		default:
			var rejection *domain.Rejection
			if errors.As(err, &rejection) || errors.Is(err, ErrInternal) {
				return nil, err
			}
			uc.logger.Error("CreateBooking: failed to create booking: %v", err)
			return nil, fmt.Errorf("%w: failed to create booking: %w", ErrInternal, err)
		}
	}

	uc.logger.Error("CreateBooking: booking code collisions exhausted %d attempts", uc.codeAttempts)
	return nil, ErrCodeAllocation
}

func (uc *UseCase) getService(ctx context.Context, id int64) (*domain.Service, error) {
	service, err := uc.catalogRepo.GetServiceByID(ctx, id)
	if err != nil {
		if errors.Is(err, catalogRepo.ErrServiceNotFound) {
			uc.logger.Warn("CreateBooking: service id=%d not found", id)
			return nil, ErrServiceNotFound
		}
		uc.logger.Error("CreateBooking: failed to get service id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: failed to get service: %w", ErrInternal, err)
	}
	return service, nil
}

func (uc *UseCase) getBarber(ctx context.Context, id int64) (*domain.Barber, error) {
	barber, err := uc.catalogRepo.GetBarberByID(ctx, id)
	if err != nil {
		if errors.Is(err, catalogRepo.ErrBarberNotFound) {
			uc.logger.Warn("CreateBooking: barber id=%d not found", id)
			return nil, ErrBarberNotFound
		}
		uc.logger.Error("CreateBooking: failed to get barber id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: failed to get barber: %w", ErrInternal, err)
	}
	return barber, nil
}

// reject учитывает отказ в метриках и возвращает ошибку без изменений
func (uc *UseCase) reject(err error) error {
	var rejection *domain.Rejection
	if errors.As(err, &rejection) {
		uc.metrics.IncBookingRejected(rejection.Code)
	} else {
		uc.metrics.IncBookingRejected("internal")
	}
	return err
}

func (uc *UseCase) toResponse(b *domain.Booking, service *domain.Service) *Response {
	return &Response{
		ID:              b.ID,
		BookingCode:     b.BookingCode,
		ServiceID:       b.ServiceID,
		ServiceName:     service.Name,
		BarberID:        b.BarberID,
		UserID:          b.UserID,
		CustomerName:    b.CustomerName,
		CustomerPhone:   b.CustomerPhone,
		CustomerEmail:   b.CustomerEmail,
		Start:           b.Start.In(uc.schedule.Location),
		End:             b.End.In(uc.schedule.Location),
		DurationMinutes: int(b.End.Sub(b.Start).Minutes()),
		Status:          string(b.Status),
		Notes:           b.Notes,
		CreatedAt:       b.CreatedAt,
	}
}
