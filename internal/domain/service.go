package domain

import (
	"fmt"
	"time"
)

// Service represents a bookable barbershop service
type Service struct {
	ID              int64
	Name            string
	Category        string
	DurationMinutes int
	Price           float64
	PriceIsFrom     bool    // цена "от", итоговая уточняется у мастера
	PriceLabel      *string // произвольная подпись вместо цены
	IsActive        bool
	IsPopular       bool
	SortOrder       int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Duration returns the service duration
func (s *Service) Duration() time.Duration {
	return time.Duration(s.DurationMinutes) * time.Minute
}

// HasValidDuration returns true if the duration is within business limits
func (s *Service) HasValidDuration() bool {
	return s.DurationMinutes >= MinServiceDurationMinutes && s.DurationMinutes <= MaxServiceDurationMinutes
}

// DisplayPrice returns the price as shown to customers
func (s *Service) DisplayPrice() string {
	if s.PriceLabel != nil && *s.PriceLabel != "" {
		return *s.PriceLabel
	}
	if s.PriceIsFrom {
		return fmt.Sprintf("from $%.2f", s.Price)
	}
	return fmt.Sprintf("$%.2f", s.Price)
}
