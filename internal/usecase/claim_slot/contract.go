package claim_slot

import (
	"context"
	"time"

	"github.com/avkor/SMB-SchedulingService/internal/domain"
)

// AppointmentRepository интерфейс репозитория записей
type AppointmentRepository interface {
	Create(ctx context.Context, appt *domain.Appointment) (*domain.Appointment, error)
	GetByID(ctx context.Context, id int64) (*domain.Appointment, error)
	// ListBlocking получает блокирующие записи бизнеса в диапазоне времени
	// Внутри транзакции выборка выполняется с блокировкой FOR UPDATE
	ListBlocking(ctx context.Context, businessID int64, rangeStart, rangeEnd time.Time) ([]*domain.Appointment, error)
	UpdateTime(ctx context.Context, id int64, startAt, endAt time.Time) error
}

// ScheduleRepository интерфейс репозитория расписания
type ScheduleRepository interface {
	GetWeeklyHours(ctx context.Context, businessID int64) ([]*domain.WeeklyHours, error)
	GetException(ctx context.Context, businessID int64, date time.Time) (*domain.DateException, error)
}

// PolicyRepository интерфейс репозитория политики бронирования
type PolicyRepository interface {
	GetByBusiness(ctx context.Context, businessID int64) (*domain.BookingPolicy, error)
}

// TransactionManager интерфейс менеджера транзакций
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
