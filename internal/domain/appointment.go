package domain

import "time"

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	StatusPending     AppointmentStatus = "pending"
	StatusConfirmed   AppointmentStatus = "confirmed"
	StatusCompleted   AppointmentStatus = "completed"
	StatusRescheduled AppointmentStatus = "rescheduled"
	StatusCancelled   AppointmentStatus = "cancelled"
	StatusNoShow      AppointmentStatus = "no_show"
)

// Appointment represents a committed unit of work for a business
type Appointment struct {
	ID             int64
	BusinessID     int64
	ServiceID      *int64
	ConversationID *string

	CustomerName  string
	CustomerPhone string // только цифры

	StartAt  time.Time // абсолютный момент (UTC)
	EndAt    time.Time // абсолютный момент (UTC)
	Timezone string    // IANA-зона бизнеса, хранится для отображения

	Status AppointmentStatus

	// Denormalized data for history
	ServiceName  string
	ServicePrice float64
	Notes        *string

	CancelledAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsBlocking returns true if the appointment occupies its time interval
// Отменённые и no-show записи не блокируют слоты
func (a *Appointment) IsBlocking() bool {
	return a.Status == StatusPending ||
		a.Status == StatusConfirmed ||
		a.Status == StatusRescheduled
}

// CanBeCancelled returns true if the appointment can be cancelled
func (a *Appointment) CanBeCancelled() bool {
	return a.Status == StatusPending ||
		a.Status == StatusConfirmed ||
		a.Status == StatusRescheduled
}

// CanBeRescheduled returns true if the appointment time can still be changed
func (a *Appointment) CanBeRescheduled() bool {
	return a.CanBeCancelled()
}

// IsCancelled returns true if the appointment has been cancelled
func (a *Appointment) IsCancelled() bool {
	return a.Status == StatusCancelled
}

// OverlapsWithBuffer проверяет пересечение записи с интервалом [start, end)
// с учетом буфера с обеих сторон
// Используются строгие неравенства: граничащие интервалы не пересекаются
func (a *Appointment) OverlapsWithBuffer(start, end time.Time, buffer time.Duration) bool {
	return a.StartAt.Before(end.Add(buffer)) && a.EndAt.After(start.Add(-buffer))
}

// AppointmentsFilter фильтр для получения записей бизнеса
type AppointmentsFilter struct {
	BusinessID      int64              // Обязательный параметр
	StartAt         *time.Time         // Начало периода (опционально)
	EndAt           *time.Time         // Конец периода (опционально)
	Status          *AppointmentStatus // Фильтр по статусу (опционально)
	IncludeInactive bool               // Включать ли отменённые и no-show записи
}
