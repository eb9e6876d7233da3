package models

import (
	"time"

	"github.com/RealTimGFM/ScheduleBooker/internal/domain"
)

// Request модели

// ServiceRequest создание или полная замена услуги
type ServiceRequest struct {
	Name            string  `json:"name"`
	Category        string  `json:"category"`
	DurationMinutes int     `json:"durationMinutes"`
	Price           float64 `json:"price"`
	PriceIsFrom     bool    `json:"priceIsFrom"`
	PriceLabel      *string `json:"priceLabel,omitempty"`
	IsActive        bool    `json:"isActive"`
	IsPopular       bool    `json:"isPopular"`
	SortOrder       int     `json:"sortOrder"`
}

// BarberRequest создание или полная замена мастера
type BarberRequest struct {
	Name     string  `json:"name"`
	Phone    *string `json:"phone,omitempty"`
	IsActive bool    `json:"isActive"`
}

// Response модели

// ServiceResponse услуга в каталоге
type ServiceResponse struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	Category        string    `json:"category"`
	DurationMinutes int       `json:"durationMinutes"`
	Price           float64   `json:"price"`
	DisplayPrice    string    `json:"displayPrice"`
	IsActive        bool      `json:"isActive"`
	IsPopular       bool      `json:"isPopular"`
	SortOrder       int       `json:"sortOrder"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// CatalogResponse публичный каталог: популярные услуги отдельно от остальных
type CatalogResponse struct {
	Popular []ServiceResponse `json:"popular"`
	Other   []ServiceResponse `json:"other"`
}

// BarberResponse мастер
type BarberResponse struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Phone    *string `json:"phone,omitempty"`
	IsActive bool    `json:"isActive"`
}

// Конвертеры

// FromDomainService конвертирует услугу
func FromDomainService(s *domain.Service) ServiceResponse {
	return ServiceResponse{
		ID:              s.ID,
		Name:            s.Name,
		Category:        s.Category,
		DurationMinutes: s.DurationMinutes,
		Price:           s.Price,
		DisplayPrice:    s.DisplayPrice(),
		IsActive:        s.IsActive,
		IsPopular:       s.IsPopular,
		SortOrder:       s.SortOrder,
		UpdatedAt:       s.UpdatedAt,
	}
}

// FromDomainServices конвертирует список услуг
func FromDomainServices(services []*domain.Service) []ServiceResponse {
	result := make([]ServiceResponse, len(services))
	for i, s := range services {
		result[i] = FromDomainService(s)
	}
	return result
}

// FromDomainBarber конвертирует мастера
func FromDomainBarber(b *domain.Barber) BarberResponse {
	return BarberResponse{
		ID:       b.ID,
		Name:     b.Name,
		Phone:    b.Phone,
		IsActive: b.IsActive,
	}
}

// ToDomainService заполняет доменную модель из запроса
func (r *ServiceRequest) ToDomainService(s *domain.Service) {
	s.Name = r.Name
	s.Category = r.Category
	s.DurationMinutes = r.DurationMinutes
	s.Price = r.Price
	s.PriceIsFrom = r.PriceIsFrom
	s.PriceLabel = r.PriceLabel
	s.IsActive = r.IsActive
	s.IsPopular = r.IsPopular
	s.SortOrder = r.SortOrder
}
