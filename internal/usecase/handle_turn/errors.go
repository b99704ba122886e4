package handle_turn

import "errors"

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	// (недоступность хранилищ, каталога услуг)
	ErrInternal = errors.New("usecase: internal error")
)
