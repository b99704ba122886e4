package claim_slot

import (
	"fmt"
	"strings"

	"github.com/avkor/SMB-SchedulingService/internal/domain"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.BusinessID <= 0 {
		return fmt.Errorf("%w: businessID must be positive", ErrInvalidInput)
	}

	if req.StartAt.IsZero() || req.EndAt.IsZero() {
		return fmt.Errorf("%w: slot interval is required", ErrInvalidInput)
	}

	if !req.StartAt.Before(req.EndAt) {
		return fmt.Errorf("%w: slot start must be before slot end", ErrInvalidInput)
	}

	if strings.TrimSpace(req.CustomerName) == "" {
		return fmt.Errorf("%w: customer name is required", ErrInvalidInput)
	}

	if err := validatePhone(req.CustomerPhone); err != nil {
		return err
	}

	if req.ServiceName == "" {
		return fmt.Errorf("%w: service name is required", ErrInvalidInput)
	}

	if req.Notes != nil && len(*req.Notes) > domain.MaxNotesLength {
		return fmt.Errorf("%w: notes must not exceed %d characters", ErrInvalidInput, domain.MaxNotesLength)
	}

	if req.RescheduleAppointmentID != nil && *req.RescheduleAppointmentID <= 0 {
		return fmt.Errorf("%w: reschedule appointment id must be positive", ErrInvalidInput)
	}

	return nil
}

// validatePhone проверяет нормализованный телефон (только цифры)
func validatePhone(phone string) error {
	if len(phone) < domain.MinPhoneDigits || len(phone) > domain.MaxPhoneDigits {
		return fmt.Errorf("%w: phone must contain %d-%d digits", ErrInvalidInput, domain.MinPhoneDigits, domain.MaxPhoneDigits)
	}
	for _, c := range phone {
		if c < '0' || c > '9' {
			return fmt.Errorf("%w: phone must contain only digits", ErrInvalidInput)
		}
	}
	return nil
}
