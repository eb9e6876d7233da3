package create_booking

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/RealTimGFM/ScheduleBooker/internal/domain"
	"github.com/RealTimGFM/ScheduleBooker/pkg/types"
)

// validatePublicRequest проверяет поля, без которых нельзя определить слот
func validatePublicRequest(req *PublicRequest) error {
	if req == nil {
		return ErrMissingField
	}
	return validateSlotFields(req.ServiceID, req.BarberID, req.Date, req.StartTime)
}

// validateAdminRequest проверяет минимальный набор полей административной записи
func validateAdminRequest(req *AdminRequest) error {
	if req == nil {
		return ErrMissingField
	}
	if err := validateSlotFields(req.ServiceID, req.BarberID, req.Date, req.StartTime); err != nil {
		return err
	}
	if err := req.StartTime.Validate(); err != nil {
		return ErrInvalidInput
	}
	if strings.TrimSpace(req.CustomerName) == "" {
		return ErrMissingField.WithMessage("Customer name is required.")
	}
	if req.Notes != nil && utf8.RuneCountInString(*req.Notes) > domain.MaxNotesLength {
		return ErrInvalidInput.WithMessage(fmt.Sprintf("Notes must be at most %d characters.", domain.MaxNotesLength))
	}
	return nil
}

func validateSlotFields(serviceID int64, barberID *int64, date time.Time, start types.TimeString) error {
	if serviceID <= 0 || date.IsZero() || start.IsZero() {
		return ErrMissingField
	}
	if barberID != nil && *barberID <= 0 {
		return ErrBarberNotFound
	}
	return nil
}

// validateCustomer проверяет данные клиента публичной записи.
// Телефон обязателен: по нему считается дневной лимит.
func validateCustomer(name, phone, email string, notes *string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrMissingField.WithMessage("Customer name is required.")
	}
	if utf8.RuneCountInString(name) > domain.MaxCustomerNameLength {
		return ErrInvalidInput.WithMessage(fmt.Sprintf("Name must be at most %d characters.", domain.MaxCustomerNameLength))
	}
	if domain.NormalizePhone(phone) == "" {
		return ErrMissingField.WithMessage("Phone number is required.")
	}
	if email != "" && domain.NormalizeEmail(email) == "" {
		return ErrInvalidInput.WithMessage("Invalid email address.")
	}
	if notes != nil && utf8.RuneCountInString(*notes) > domain.MaxNotesLength {
		return ErrInvalidInput.WithMessage(fmt.Sprintf("Notes must be at most %d characters.", domain.MaxNotesLength))
	}
	return nil
}

// civilDate отбрасывает время и часовой пояс
func civilDate(date time.Time) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func barberLabel(id *int64) string {
	if id == nil {
		return "any"
	}
	return fmt.Sprintf("%d", *id)
}
