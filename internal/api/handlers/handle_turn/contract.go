package handle_turn

import (
	"context"

	handleTurn "github.com/avkor/SMB-SchedulingService/internal/usecase/handle_turn"
)

type HandleTurnUseCase interface {
	Execute(ctx context.Context, req *handleTurn.Request) (*handleTurn.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
