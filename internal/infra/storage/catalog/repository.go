package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/RealTimGFM/ScheduleBooker/internal/domain"
	"github.com/RealTimGFM/ScheduleBooker/pkg/dbmetrics"
	"github.com/RealTimGFM/ScheduleBooker/pkg/psqlbuilder"
)

var serviceColumns = []string{
	"id",
	"name",
	"category",
	"duration_min",
	"price",
	"price_is_from",
	"price_label",
	"is_active",
	"is_popular",
	"sort_order",
	"created_at",
	"updated_at",
}

var barberColumns = []string{
	"id",
	"name",
	"phone",
	"is_active",
	"created_at",
	"updated_at",
}

// Repository репозиторий услуг и мастеров
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория каталога
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// CreateService создает услугу
func (r *Repository) CreateService(ctx context.Context, service *domain.Service) (*domain.Service, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("services").
		Columns(
			"name",
			"category",
			"duration_min",
			"price",
			"price_is_from",
			"price_label",
			"is_active",
			"is_popular",
			"sort_order",
			"created_at",
			"updated_at",
		).
		Values(
			service.Name,
			service.Category,
			service.DurationMinutes,
			service.Price,
			service.PriceIsFrom,
			service.PriceLabel,
			service.IsActive,
			service.IsPopular,
			service.SortOrder,
			service.CreatedAt.UTC(),
			service.UpdatedAt.UTC(),
		).
		Suffix("RETURNING id").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: CreateService - build insert query: %v", ErrBuildQuery, err)
	}

	if err := executor.QueryRowContext(ctx, query, args...).Scan(&service.ID); err != nil {
		return nil, fmt.Errorf("%w: CreateService - execute insert: %w", ErrExecQuery, err)
	}

	return service, nil
}

// UpdateService перезаписывает поля услуги.
// Длительность уже созданных бронирований не меняется: end_time хранится в самом бронировании.
func (r *Repository) UpdateService(ctx context.Context, service *domain.Service) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("services").
		Set("name", service.Name).
		Set("category", service.Category).
		Set("duration_min", service.DurationMinutes).
		Set("price", service.Price).
		Set("price_is_from", service.PriceIsFrom).
		Set("price_label", service.PriceLabel).
		Set("is_active", service.IsActive).
		Set("is_popular", service.IsPopular).
		Set("sort_order", service.SortOrder).
		Set("updated_at", service.UpdatedAt.UTC()).
		Where(squirrel.Eq{"id": service.ID}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: UpdateService - build update query: %v", ErrBuildQuery, err)
	}

	return r.execAffectingOne(ctx, executor, query, args, ErrServiceNotFound, "UpdateService")
}

// GetServiceByID получает услугу по ID (включая неактивные)
func (r *Repository) GetServiceByID(ctx context.Context, id int64) (*domain.Service, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(serviceColumns...).
		From("services").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetServiceByID - build select query: %v", ErrBuildQuery, err)
	}

	service, err := scanService(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrServiceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetServiceByID - scan service: %w", ErrScanRow, err)
	}

	return service, nil
}

// GetServices получает услуги, отсортированные по sort_order и названию
func (r *Repository) GetServices(ctx context.Context, activeOnly bool) ([]*domain.Service, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(serviceColumns...).
		From("services").
		OrderBy("sort_order ASC", "name ASC", "id ASC")

	if activeOnly {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"is_active": true})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetServices - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetServices - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	services := make([]*domain.Service, 0)
	for rows.Next() {
		service, err := scanService(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: GetServices - scan row: %w", ErrScanRow, err)
		}
		services = append(services, service)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetServices - rows error: %w", ErrScanRow, err)
	}

	return services, nil
}

// CreateBarber создает мастера
func (r *Repository) CreateBarber(ctx context.Context, barber *domain.Barber) (*domain.Barber, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("barbers").
		Columns("name", "phone", "is_active", "created_at", "updated_at").
		Values(barber.Name, barber.Phone, barber.IsActive, barber.CreatedAt.UTC(), barber.UpdatedAt.UTC()).
		Suffix("RETURNING id").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: CreateBarber - build insert query: %v", ErrBuildQuery, err)
	}

	if err := executor.QueryRowContext(ctx, query, args...).Scan(&barber.ID); err != nil {
		return nil, fmt.Errorf("%w: CreateBarber - execute insert: %w", ErrExecQuery, err)
	}

	return barber, nil
}

// UpdateBarber перезаписывает поля мастера
func (r *Repository) UpdateBarber(ctx context.Context, barber *domain.Barber) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("barbers").
		Set("name", barber.Name).
		Set("phone", barber.Phone).
		Set("is_active", barber.IsActive).
		Set("updated_at", barber.UpdatedAt.UTC()).
		Where(squirrel.Eq{"id": barber.ID}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: UpdateBarber - build update query: %v", ErrBuildQuery, err)
	}

	return r.execAffectingOne(ctx, executor, query, args, ErrBarberNotFound, "UpdateBarber")
}

// GetBarberByID получает мастера по ID (включая неактивных)
func (r *Repository) GetBarberByID(ctx context.Context, id int64) (*domain.Barber, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(barberColumns...).
		From("barbers").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetBarberByID - build select query: %v", ErrBuildQuery, err)
	}

	barber, err := scanBarber(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBarberNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetBarberByID - scan barber: %w", ErrScanRow, err)
	}

	return barber, nil
}

// GetBarbers получает мастеров по имени
func (r *Repository) GetBarbers(ctx context.Context, activeOnly bool) ([]*domain.Barber, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(barberColumns...).
		From("barbers").
		OrderBy("name ASC", "id ASC")

	if activeOnly {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"is_active": true})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetBarbers - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetBarbers - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	barbers := make([]*domain.Barber, 0)
	for rows.Next() {
		barber, err := scanBarber(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: GetBarbers - scan row: %w", ErrScanRow, err)
		}
		barbers = append(barbers, barber)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetBarbers - rows error: %w", ErrScanRow, err)
	}

	return barbers, nil
}

// GetActiveBarbers получает активных мастеров
func (r *Repository) GetActiveBarbers(ctx context.Context) ([]*domain.Barber, error) {
	return r.GetBarbers(ctx, true)
}

func (r *Repository) execAffectingOne(ctx context.Context, executor DBExecutor, query string, args []interface{}, notFound error, op string) error {
	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: %s - execute update: %w", ErrExecQuery, op, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %s - get rows affected: %w", ErrExecQuery, op, err)
	}

	if rowsAffected == 0 {
		return notFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanService(row rowScanner) (*domain.Service, error) {
	var s domain.Service
	err := row.Scan(
		&s.ID,
		&s.Name,
		&s.Category,
		&s.DurationMinutes,
		&s.Price,
		&s.PriceIsFrom,
		&s.PriceLabel,
		&s.IsActive,
		&s.IsPopular,
		&s.SortOrder,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func scanBarber(row rowScanner) (*domain.Barber, error) {
	var b domain.Barber
	err := row.Scan(
		&b.ID,
		&b.Name,
		&b.Phone,
		&b.IsActive,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}
