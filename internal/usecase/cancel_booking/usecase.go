package cancel_booking

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"

	"github.com/RealTimGFM/ScheduleBooker/internal/domain"
	bookingRepo "github.com/RealTimGFM/ScheduleBooker/internal/infra/storage/booking"
)

const (
	resultCancelled = "cancelled"
	resultRejected  = "rejected"
)

// UseCase use case гостевой отмены бронирования
type UseCase struct {
	bookingRepo  BookingRepository
	txManager    TransactionManager
	limiter      Limiter
	schedule     domain.ShopSchedule
	metrics      Metrics
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	txManager TransactionManager,
	limiter Limiter,
	schedule domain.ShopSchedule,
	metrics Metrics,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:  bookingRepo,
		txManager:    txManager,
		limiter:      limiter,
		schedule:     schedule,
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

// Execute отменяет бронирование по паре контакт + код подтверждения
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	if req == nil || req.BookingID <= 0 || strings.TrimSpace(req.Contact) == "" || strings.TrimSpace(req.BookingCode) == "" {
		uc.logger.Warn("CancelBooking: validation failed")
		return nil, uc.reject(ErrInvalidInput)
	}

	uc.logger.Info("CancelBooking: booking id=%d", req.BookingID)

	// 1. Лимит попыток
	allowed, err := uc.limiter.Allow(ctx, limiterKey(req))
	if err != nil {
		uc.logger.Error("CancelBooking: limiter failed: %v", err)
		return nil, fmt.Errorf("%w: limiter: %w", ErrInternal, err)
	}
	if !allowed {
		uc.logger.Warn("CancelBooking: too many attempts for booking id=%d", req.BookingID)
		return nil, uc.reject(ErrTooManyAttempts)
	}

	// 2. Получаем бронирование
	booking, err := uc.bookingRepo.GetByID(ctx, req.BookingID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			uc.logger.Warn("CancelBooking: booking id=%d not found", req.BookingID)
			return nil, uc.reject(ErrBookingNotFound)
		}
		uc.logger.Error("CancelBooking: failed to get booking id=%d: %v", req.BookingID, err)
		return nil, fmt.Errorf("%w: failed to get booking: %w", ErrInternal, err)
	}

	// 3. Контакт и код должны совпасть
	if !booking.MatchesContact(req.Contact) || !codeMatches(booking.BookingCode, req.BookingCode) {
		uc.logger.Warn("CancelBooking: credentials mismatch for booking id=%d", req.BookingID)
		return nil, uc.reject(ErrInvalidCredentials)
	}

	// 4. Статус и время
	if booking.IsCancelled() {
		uc.logger.Warn("CancelBooking: booking id=%d already cancelled", req.BookingID)
		return nil, uc.reject(ErrAlreadyCancelled)
	}

	now := uc.timeProvider.Now()
	if !booking.Start.After(now) {
		uc.logger.Warn("CancelBooking: booking id=%d already started", req.BookingID)
		return nil, uc.reject(ErrCancelPast)
	}
	if booking.Start.Sub(now) < uc.schedule.CancellationCutoff() {
		uc.logger.Warn("CancelBooking: booking id=%d starts within cutoff", req.BookingID)
		return nil, uc.reject(domain.CancelTooLateRejection(uc.schedule.CancellationCutoffMinutes))
	}

	// 5. Меняем статус и пишем запись об отмене в одной транзакции
	err = uc.txManager.Do(ctx, func(txCtx context.Context) error {
		if err := uc.bookingRepo.UpdateStatus(txCtx, booking.ID, domain.StatusBooked, domain.StatusCancelled, now); err != nil {
			if errors.Is(err, bookingRepo.ErrStatusConflict) {
				return ErrAlreadyCancelled
			}
			return fmt.Errorf("%w: failed to update status: %w", ErrInternal, err)
		}

		record := domain.NewCancellationRecord(booking, domain.CancelledByCustomer, now)
		if _, err := uc.bookingRepo.CreateCancellationRecord(txCtx, record); err != nil {
			return fmt.Errorf("%w: failed to create cancellation record: %w", ErrInternal, err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrAlreadyCancelled) {
			uc.logger.Warn("CancelBooking: booking id=%d cancelled concurrently", booking.ID)
			return nil, uc.reject(ErrAlreadyCancelled)
		}
		uc.logger.Error("CancelBooking: failed to cancel booking id=%d: %v", booking.ID, err)
		if !errors.Is(err, ErrInternal) {
			err = fmt.Errorf("%w: %w", ErrInternal, err)
		}
		return nil, err
	}

	uc.metrics.IncCancellation(resultCancelled)
	uc.logger.Info("CancelBooking: booking id=%d cancelled by customer", booking.ID)

	return &Response{
		BookingID:   booking.ID,
		BookingCode: booking.BookingCode,
		Start:       booking.Start.In(uc.schedule.Location),
		Status:      string(domain.StatusCancelled),
		CancelledAt: now,
	}, nil
}

func (uc *UseCase) reject(err error) error {
	uc.metrics.IncCancellation(resultRejected)
	return err
}

// codeMatches точное сравнение кода с учетом регистра
func codeMatches(stored, given string) bool {
	return subtle.ConstantTimeCompare([]byte(stored), []byte(given)) == 1
}

func limiterKey(req *Request) string {
	if req.ClientKey == "" {
		return fmt.Sprintf("cancel:%d", req.BookingID)
	}
	return fmt.Sprintf("cancel:%d:%s", req.BookingID, req.ClientKey)
}
