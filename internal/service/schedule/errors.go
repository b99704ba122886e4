package schedule

import "errors"

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInvalidTimeRange возвращается при некорректном рабочем диапазоне
	ErrInvalidTimeRange = errors.New("invalid time range")

	// ErrInvalidPolicy возвращается, когда значения политики выходят за допустимые границы
	ErrInvalidPolicy = errors.New("invalid policy values")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
