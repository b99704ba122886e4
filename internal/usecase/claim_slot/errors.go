package claim_slot

import "errors"

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrSlotTaken возвращается, когда слот уже занят другой записью
	ErrSlotTaken = errors.New("slot is already taken")

	// ErrDailyLimitReached возвращается при достижении дневного лимита записей
	ErrDailyLimitReached = errors.New("daily appointment limit reached")

	// ErrOutsideSchedule возвращается, когда слот выходит за рабочие часы
	// или приходится на закрытую дату
	ErrOutsideSchedule = errors.New("slot is outside working hours")

	// ErrTooSoon возвращается при нарушении минимального времени до записи
	ErrTooSoon = errors.New("slot violates minimum notice")

	// ErrAppointmentNotFound возвращается, когда переносимая запись не найдена
	ErrAppointmentNotFound = errors.New("appointment not found")

	// ErrCannotReschedule возвращается, когда запись нельзя перенести
	// (например, она уже отменена)
	ErrCannotReschedule = errors.New("appointment cannot be rescheduled")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("usecase: internal error")
)
