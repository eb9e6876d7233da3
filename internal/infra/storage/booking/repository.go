package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/RealTimGFM/ScheduleBooker/internal/domain"
	"github.com/RealTimGFM/ScheduleBooker/pkg/dberrors"
	"github.com/RealTimGFM/ScheduleBooker/pkg/dbmetrics"
	"github.com/RealTimGFM/ScheduleBooker/pkg/psqlbuilder"
)

var bookingColumns = []string{
	"id",
	"user_id",
	"barber_id",
	"service_id",
	"customer_name",
	"customer_phone",
	"customer_email",
	"start_time",
	"end_time",
	"notes",
	"status",
	"booking_code",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы с бронированиями.
// Время хранится в UTC, перевод в часовой пояс магазина выполняют вызывающие.
type Repository struct {
	db         DBExecutor
	rowLocking bool
}

// Option настройка репозитория
type Option func(*Repository)

// WithRowLocking включает SELECT ... FOR UPDATE для выборок внутри транзакции (postgres)
func WithRowLocking() Option {
	return func(r *Repository) {
		r.rowLocking = true
	}
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor, opts ...Option) *Repository {
	r := &Repository{db: db}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Create создает новое бронирование.
// Если в контексте передана активная транзакция, использует её.
// Нарушение уникальности booking_code возвращается как ErrDuplicateCode.
func (r *Repository) Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("bookings").
		Columns(
			"user_id",
			"barber_id",
			"service_id",
			"customer_name",
			"customer_phone",
			"customer_email",
			"phone_digits",
			"email_normalized",
			"start_time",
			"end_time",
			"notes",
			"status",
			"booking_code",
			"created_at",
			"updated_at",
		).
		Values(
			booking.UserID,
			booking.BarberID,
			booking.ServiceID,
			booking.CustomerName,
			booking.CustomerPhone,
			booking.CustomerEmail,
			phoneDigits(booking.CustomerPhone),
			emailNormalized(booking.CustomerEmail),
			booking.Start.UTC(),
			booking.End.UTC(),
			booking.Notes,
			booking.Status,
			booking.BookingCode,
			booking.CreatedAt.UTC(),
			booking.UpdatedAt.UTC(),
		).
		Suffix("RETURNING id").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(&booking.ID)
	if err != nil {
		if dberrors.IsUniqueViolation(err) {
			return nil, fmt.Errorf("%w: Create - code %s: %w", ErrDuplicateCode, booking.BookingCode, err)
		}
		return nil, fmt.Errorf("%w: Create - execute insert: %w", ErrExecQuery, err)
	}

	return booking, nil
}

// GetByID получает бронирование по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"id": id})

	if r.lockRows(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	booking, err := scanBooking(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan booking: %w", ErrScanRow, err)
	}

	return booking, nil
}

// GetWithFilter получает бронирования, пересекающиеся с периодом [From, To).
// Внутри транзакции при включенной блокировке строки выбираются FOR UPDATE,
// чтобы параллельные попытки занять тот же слот ждали друг друга.
func (r *Repository) GetWithFilter(ctx context.Context, filter domain.BookingsFilter) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Lt{"start_time": filter.To.UTC()}).
		Where(squirrel.Gt{"end_time": filter.From.UTC()}).
		OrderBy("start_time ASC", "id ASC")

	if filter.BarberID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"barber_id": *filter.BarberID})
	}

	if !filter.IncludeInactive {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": activeStatusStrings()})
	}

	if r.lockRows(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetWithFilter - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetWithFilter - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

// CountActiveForContact считает активные бронирования клиента с началом в [from, to).
// Клиент определяется по нормализованному телефону ИЛИ email; бронирование,
// совпавшее по обоим признакам, считается один раз.
func (r *Repository) CountActiveForContact(ctx context.Context, phone, email string, from, to time.Time) (int, error) {
	phone = domain.NormalizePhone(phone)
	email = domain.NormalizeEmail(email)

	contact := squirrel.Or{}
	if phone != "" {
		contact = append(contact, squirrel.Eq{"phone_digits": phone})
	}
	if email != "" {
		contact = append(contact, squirrel.Eq{"email_normalized": email})
	}
	if len(contact) == 0 {
		return 0, nil
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("COUNT(*)").
		From("bookings").
		Where(squirrel.Eq{"status": activeStatusStrings()}).
		Where(squirrel.GtOrEq{"start_time": from.UTC()}).
		Where(squirrel.Lt{"start_time": to.UTC()}).
		Where(contact).
		ToSql()

	if err != nil {
		return 0, fmt.Errorf("%w: CountActiveForContact - build select query: %v", ErrBuildQuery, err)
	}

	var count int
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: CountActiveForContact - scan count: %w", ErrScanRow, err)
	}

	return count, nil
}

// GetByContact получает бронирования по телефону или email, новые сверху
func (r *Repository) GetByContact(ctx context.Context, contact string) ([]*domain.Booking, error) {
	var where squirrel.Sqlizer
	if strings.Contains(contact, "@") {
		email := domain.NormalizeEmail(contact)
		if email == "" {
			return []*domain.Booking{}, nil
		}
		where = squirrel.Eq{"email_normalized": email}
	} else {
		phone := domain.NormalizePhone(contact)
		if phone == "" {
			return []*domain.Booking{}, nil
		}
		where = squirrel.Eq{"phone_digits": phone}
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(where).
		OrderBy("start_time DESC", "id DESC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByContact - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByContact - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

// UpdateStatus переводит бронирование из статуса from в статус to.
// Если текущий статус уже не from, возвращает ErrStatusConflict.
func (r *Repository) UpdateStatus(ctx context.Context, id int64, from, to domain.BookingStatus, updatedAt time.Time) error {
	if !to.IsValid() {
		return fmt.Errorf("%w: %s", ErrInvalidStatus, to)
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("status", to).
		Set("updated_at", updatedAt.UTC()).
		Where(squirrel.Eq{"id": id, "status": from}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - execute update: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - get rows affected: %w", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrStatusConflict
	}

	return nil
}

// Update перезаписывает редактируемые поля бронирования (админский сценарий, без проверок расписания).
// booking_code и created_at не меняются.
func (r *Repository) Update(ctx context.Context, booking *domain.Booking) error {
	if !booking.Status.IsValid() {
		return fmt.Errorf("%w: %s", ErrInvalidStatus, booking.Status)
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("user_id", booking.UserID).
		Set("barber_id", booking.BarberID).
		Set("service_id", booking.ServiceID).
		Set("customer_name", booking.CustomerName).
		Set("customer_phone", booking.CustomerPhone).
		Set("customer_email", booking.CustomerEmail).
		Set("phone_digits", phoneDigits(booking.CustomerPhone)).
		Set("email_normalized", emailNormalized(booking.CustomerEmail)).
		Set("start_time", booking.Start.UTC()).
		Set("end_time", booking.End.UTC()).
		Set("notes", booking.Notes).
		Set("status", booking.Status).
		Set("updated_at", booking.UpdatedAt.UTC()).
		Where(squirrel.Eq{"id": booking.ID}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Update - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Update - execute update: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Update - get rows affected: %w", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrBookingNotFound
	}

	return nil
}

// CreateCancellationRecord сохраняет запись журнала отмен
func (r *Repository) CreateCancellationRecord(ctx context.Context, record *domain.CancellationRecord) (*domain.CancellationRecord, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("cancellations").
		Columns(
			"booking_id",
			"booking_code",
			"customer_name",
			"customer_phone",
			"customer_email",
			"start_time",
			"cancelled_by",
			"cancelled_at",
		).
		Values(
			record.BookingID,
			record.BookingCode,
			record.CustomerName,
			record.CustomerPhone,
			record.CustomerEmail,
			record.Start.UTC(),
			record.CancelledBy,
			record.CancelledAt.UTC(),
		).
		Suffix("RETURNING id").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: CreateCancellationRecord - build insert query: %v", ErrBuildQuery, err)
	}

	if err := executor.QueryRowContext(ctx, query, args...).Scan(&record.ID); err != nil {
		return nil, fmt.Errorf("%w: CreateCancellationRecord - execute insert: %w", ErrExecQuery, err)
	}

	return record, nil
}

// GetCancellationRecords получает журнал отмен бронирования
func (r *Repository) GetCancellationRecords(ctx context.Context, bookingID int64) ([]*domain.CancellationRecord, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"booking_id",
		"booking_code",
		"customer_name",
		"customer_phone",
		"customer_email",
		"start_time",
		"cancelled_by",
		"cancelled_at",
	).
		From("cancellations").
		Where(squirrel.Eq{"booking_id": bookingID}).
		OrderBy("cancelled_at ASC", "id ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetCancellationRecords - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetCancellationRecords - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	records := make([]*domain.CancellationRecord, 0)
	for rows.Next() {
		var rec domain.CancellationRecord
		if err := rows.Scan(
			&rec.ID,
			&rec.BookingID,
			&rec.BookingCode,
			&rec.CustomerName,
			&rec.CustomerPhone,
			&rec.CustomerEmail,
			&rec.Start,
			&rec.CancelledBy,
			&rec.CancelledAt,
		); err != nil {
			return nil, fmt.Errorf("%w: GetCancellationRecords - scan row: %w", ErrScanRow, err)
		}
		records = append(records, &rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetCancellationRecords - rows error: %w", ErrScanRow, err)
	}

	return records, nil
}

func (r *Repository) lockRows(ctx context.Context) bool {
	return r.rowLocking && dbmetrics.IsInTransaction(ctx)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBooking(row rowScanner) (*domain.Booking, error) {
	var booking domain.Booking
	var userID, barberID sql.NullInt64

	err := row.Scan(
		&booking.ID,
		&userID,
		&barberID,
		&booking.ServiceID,
		&booking.CustomerName,
		&booking.CustomerPhone,
		&booking.CustomerEmail,
		&booking.Start,
		&booking.End,
		&booking.Notes,
		&booking.Status,
		&booking.BookingCode,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if userID.Valid {
		booking.UserID = &userID.Int64
	}
	if barberID.Valid {
		booking.BarberID = &barberID.Int64
	}

	return &booking, nil
}

// scanBookings сканирует результаты запроса в слайс бронирований
func scanBookings(rows *sql.Rows) ([]*domain.Booking, error) {
	bookings := make([]*domain.Booking, 0)

	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanBookings - scan row: %w", ErrScanRow, err)
		}
		bookings = append(bookings, booking)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanBookings - rows error: %w", ErrScanRow, err)
	}

	return bookings, nil
}

func activeStatusStrings() []string {
	statuses := make([]string, len(domain.ActiveStatuses))
	for i, s := range domain.ActiveStatuses {
		statuses[i] = string(s)
	}
	return statuses
}

func phoneDigits(phone *string) *string {
	if phone == nil {
		return nil
	}
	digits := domain.NormalizePhone(*phone)
	if digits == "" {
		return nil
	}
	return &digits
}

func emailNormalized(email *string) *string {
	if email == nil {
		return nil
	}
	normalized := domain.NormalizeEmail(*email)
	if normalized == "" {
		return nil
	}
	return &normalized
}
