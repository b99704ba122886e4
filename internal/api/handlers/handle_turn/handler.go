package handle_turn

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/avkor/SMB-SchedulingService/internal/api/handlers"
	handleTurn "github.com/avkor/SMB-SchedulingService/internal/usecase/handle_turn"
)

const (
	msgInvalidRequestBody    = "некорректное тело запроса"
	msgMissingConversationID = "ID разговора обязателен"
	msgInvalidTurn           = "некорректные данные сообщения"
)

type Handler struct {
	useCase HandleTurnUseCase
	logger  Logger
}

func NewHandler(useCase HandleTurnUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/conversations/{conversationId}/turns
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	conversationID := vars["conversationId"]
	if conversationID == "" {
		h.logger.Warn("POST /conversations/{id}/turns - Missing conversation ID")
		handlers.RespondBadRequest(w, msgMissingConversationID)
		return
	}

	var req TurnRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /conversations/{id}/turns - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.useCase.Execute(r.Context(), req.ToUseCaseRequest(conversationID))
	if err != nil {
		switch {
		case errors.Is(err, handleTurn.ErrInvalidInput):
			h.logger.Warn("POST /conversations/{id}/turns - Invalid input: conversation_id=%s, business_id=%d, error=%v",
				conversationID, req.BusinessID, err)
			handlers.RespondBadRequest(w, msgInvalidTurn)

		default:
			h.logger.Error("POST /conversations/{id}/turns - Failed to handle turn: conversation_id=%s, business_id=%d, error=%v",
				conversationID, req.BusinessID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /conversations/{id}/turns - Turn handled: conversation_id=%s, status=%s, duplicate=%t",
		conversationID, result.ConversationStatus, result.Duplicate)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
