package update_policy

import (
	"context"

	"github.com/avkor/SMB-SchedulingService/internal/service/schedule/models"
)

type ScheduleService interface {
	UpdatePolicy(ctx context.Context, req *models.UpdatePolicyRequest) (*models.PolicyResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
