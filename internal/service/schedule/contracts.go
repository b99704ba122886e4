package schedule

import (
	"context"
	"time"

	"github.com/avkor/SMB-SchedulingService/internal/domain"
)

// ScheduleRepository интерфейс репозитория расписания
type ScheduleRepository interface {
	GetWeeklyHours(ctx context.Context, businessID int64) ([]*domain.WeeklyHours, error)
	UpsertWeeklyHours(ctx context.Context, h *domain.WeeklyHours) error
	ListExceptions(ctx context.Context, businessID int64, from time.Time) ([]*domain.DateException, error)
	UpsertException(ctx context.Context, exc *domain.DateException) error
	DeleteException(ctx context.Context, businessID int64, date time.Time) error
}

// PolicyRepository интерфейс репозитория политики бронирования
type PolicyRepository interface {
	GetByBusiness(ctx context.Context, businessID int64) (*domain.BookingPolicy, error)
	Upsert(ctx context.Context, p *domain.BookingPolicy) error
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
