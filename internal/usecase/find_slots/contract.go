package find_slots

import (
	"context"
	"time"

	"github.com/avkor/SMB-SchedulingService/internal/domain"
)

// AppointmentRepository интерфейс репозитория записей
type AppointmentRepository interface {
	// ListBlocking получает все блокирующие записи бизнеса в диапазоне времени
	ListBlocking(ctx context.Context, businessID int64, rangeStart, rangeEnd time.Time) ([]*domain.Appointment, error)
}

// ScheduleRepository интерфейс репозитория расписания
type ScheduleRepository interface {
	GetWeeklyHours(ctx context.Context, businessID int64) ([]*domain.WeeklyHours, error)
	ListExceptions(ctx context.Context, businessID int64, from time.Time) ([]*domain.DateException, error)
}

// PolicyRepository интерфейс репозитория политики бронирования
type PolicyRepository interface {
	GetByBusiness(ctx context.Context, businessID int64) (*domain.BookingPolicy, error)
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
