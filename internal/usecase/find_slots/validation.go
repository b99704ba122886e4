package find_slots

import "fmt"

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.BusinessID <= 0 {
		return fmt.Errorf("%w: businessID must be positive", ErrInvalidInput)
	}

	if req.DurationMinutes <= 0 {
		return fmt.Errorf("%w: durationMinutes must be positive", ErrInvalidInput)
	}

	if req.Limit < 0 {
		return fmt.Errorf("%w: limit must not be negative", ErrInvalidInput)
	}

	if req.RangeStart.IsZero() || req.RangeEnd.IsZero() {
		return fmt.Errorf("%w: date range is required", ErrInvalidRange)
	}

	if req.RangeEnd.Before(req.RangeStart) {
		return fmt.Errorf("%w: range end is before range start", ErrInvalidRange)
	}

	if req.Window != nil && !req.Window.From.IsBefore(req.Window.To) {
		return fmt.Errorf("%w: time window must have from before to", ErrInvalidInput)
	}

	return nil
}
