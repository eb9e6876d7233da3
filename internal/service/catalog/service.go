package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/RealTimGFM/ScheduleBooker/internal/domain"
	catalogRepo "github.com/RealTimGFM/ScheduleBooker/internal/infra/storage/catalog"
	"github.com/RealTimGFM/ScheduleBooker/internal/service/catalog/models"
)

// Service сервис каталога услуг и мастеров
type Service struct {
	catalogRepo  CatalogRepository
	timeProvider TimeProvider
	logger       Logger
}

// NewService создает новый экземпляр сервиса каталога
func NewService(catalogRepo CatalogRepository, logger Logger) *Service {
	return &Service{
		catalogRepo:  catalogRepo,
		timeProvider: realTimeProvider{},
		logger:       logger,
	}
}

// WithTimeProvider подменяет источник времени
func (s *Service) WithTimeProvider(tp TimeProvider) *Service {
	s.timeProvider = tp
	return s
}

// GetCatalog возвращает активные услуги, разделенные на популярные и остальные.
// Порядок внутри групп: sort_order, затем название.
func (s *Service) GetCatalog(ctx context.Context) (*models.CatalogResponse, error) {
	services, err := s.catalogRepo.GetServices(ctx, true)
	if err != nil {
		s.logger.Error("GetCatalog: repository error: %v", err)
		return nil, fmt.Errorf("%w: GetCatalog - repository error: %w", ErrInternal, err)
	}

	resp := &models.CatalogResponse{
		Popular: []models.ServiceResponse{},
		Other:   []models.ServiceResponse{},
	}
	for _, svc := range services {
		if svc.IsPopular {
			resp.Popular = append(resp.Popular, models.FromDomainService(svc))
		} else {
			resp.Other = append(resp.Other, models.FromDomainService(svc))
		}
	}

	s.logger.Info("GetCatalog: %d popular, %d other services", len(resp.Popular), len(resp.Other))
	return resp, nil
}

// ListServices возвращает все услуги (для администратора, включая неактивные)
func (s *Service) ListServices(ctx context.Context) ([]models.ServiceResponse, error) {
	services, err := s.catalogRepo.GetServices(ctx, false)
	if err != nil {
		s.logger.Error("ListServices: repository error: %v", err)
		return nil, fmt.Errorf("%w: ListServices - repository error: %w", ErrInternal, err)
	}
	return models.FromDomainServices(services), nil
}

// CreateService создает услугу
func (s *Service) CreateService(ctx context.Context, req *models.ServiceRequest) (*models.ServiceResponse, error) {
	s.logger.Info("CreateService: name=%q, duration=%d", req.Name, req.DurationMinutes)

	if err := validateService(req); err != nil {
		s.logger.Warn("CreateService: validation failed: %v", err)
		return nil, err
	}

	now := s.timeProvider.Now()
	svc := &domain.Service{CreatedAt: now, UpdatedAt: now}
	req.ToDomainService(svc)
	svc.Name = strings.TrimSpace(svc.Name)

	created, err := s.catalogRepo.CreateService(ctx, svc)
	if err != nil {
		s.logger.Error("CreateService: repository error: %v", err)
		return nil, fmt.Errorf("%w: CreateService - repository error: %w", ErrInternal, err)
	}

	s.logger.Info("CreateService: successfully created service id=%d", created.ID)
	resp := models.FromDomainService(created)
	return &resp, nil
}

// UpdateService заменяет поля услуги.
// Уже созданные бронирования сохраняют свою длительность.
func (s *Service) UpdateService(ctx context.Context, id int64, req *models.ServiceRequest) (*models.ServiceResponse, error) {
	s.logger.Info("UpdateService: id=%d", id)

	if err := validateService(req); err != nil {
		s.logger.Warn("UpdateService: validation failed: %v", err)
		return nil, err
	}

	svc, err := s.catalogRepo.GetServiceByID(ctx, id)
	if err != nil {
		return nil, s.mapError("UpdateService", err)
	}

	req.ToDomainService(svc)
	svc.Name = strings.TrimSpace(svc.Name)
	svc.UpdatedAt = s.timeProvider.Now()

	if err := s.catalogRepo.UpdateService(ctx, svc); err != nil {
		return nil, s.mapError("UpdateService", err)
	}

	resp := models.FromDomainService(svc)
	return &resp, nil
}

// ListBarbers возвращает мастеров
func (s *Service) ListBarbers(ctx context.Context, activeOnly bool) ([]models.BarberResponse, error) {
	barbers, err := s.catalogRepo.GetBarbers(ctx, activeOnly)
	if err != nil {
		s.logger.Error("ListBarbers: repository error: %v", err)
		return nil, fmt.Errorf("%w: ListBarbers - repository error: %w", ErrInternal, err)
	}

	result := make([]models.BarberResponse, len(barbers))
	for i, b := range barbers {
		result[i] = models.FromDomainBarber(b)
	}
	return result, nil
}

// CreateBarber создает мастера
func (s *Service) CreateBarber(ctx context.Context, req *models.BarberRequest) (*models.BarberResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrInvalidName
	}

	now := s.timeProvider.Now()
	created, err := s.catalogRepo.CreateBarber(ctx, &domain.Barber{
		Name:      name,
		Phone:     req.Phone,
		IsActive:  req.IsActive,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		s.logger.Error("CreateBarber: repository error: %v", err)
		return nil, fmt.Errorf("%w: CreateBarber - repository error: %w", ErrInternal, err)
	}

	s.logger.Info("CreateBarber: successfully created barber id=%d", created.ID)
	resp := models.FromDomainBarber(created)
	return &resp, nil
}

// UpdateBarber заменяет поля мастера. Деактивированный мастер исчезает из расчета слотов,
// его бронирования остаются в силе.
func (s *Service) UpdateBarber(ctx context.Context, id int64, req *models.BarberRequest) (*models.BarberResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrInvalidName
	}

	barber, err := s.catalogRepo.GetBarberByID(ctx, id)
	if err != nil {
		return nil, s.mapError("UpdateBarber", err)
	}

	barber.Name = name
	barber.Phone = req.Phone
	barber.IsActive = req.IsActive
	barber.UpdatedAt = s.timeProvider.Now()

	if err := s.catalogRepo.UpdateBarber(ctx, barber); err != nil {
		return nil, s.mapError("UpdateBarber", err)
	}

	s.logger.Info("UpdateBarber: barber id=%d active=%t", id, barber.IsActive)
	resp := models.FromDomainBarber(barber)
	return &resp, nil
}

// validateService проверяет бизнес-ограничения услуги
func validateService(req *models.ServiceRequest) error {
	if strings.TrimSpace(req.Name) == "" {
		return ErrInvalidName
	}
	if req.DurationMinutes < domain.MinServiceDurationMinutes || req.DurationMinutes > domain.MaxServiceDurationMinutes {
		return fmt.Errorf("%w: must be between %d and %d minutes",
			ErrInvalidDuration, domain.MinServiceDurationMinutes, domain.MaxServiceDurationMinutes)
	}
	if req.Price < 0 {
		return ErrInvalidPrice
	}
	return nil
}

func (s *Service) mapError(op string, err error) error {
	switch {
	case errors.Is(err, catalogRepo.ErrServiceNotFound):
		s.logger.Warn("%s: service not found", op)
		return ErrServiceNotFound
	case errors.Is(err, catalogRepo.ErrBarberNotFound):
		s.logger.Warn("%s: barber not found", op)
		return ErrBarberNotFound
	default:
		s.logger.Error("%s: repository error: %v", op, err)
		return fmt.Errorf("%w: %s - repository error: %w", ErrInternal, op, err)
	}
}
