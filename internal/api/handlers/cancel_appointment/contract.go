package cancel_appointment

import (
	"context"

	"github.com/avkor/SMB-SchedulingService/internal/domain"
)

type AppointmentsService interface {
	Cancel(ctx context.Context, businessID, appointmentID int64) (*domain.Appointment, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
