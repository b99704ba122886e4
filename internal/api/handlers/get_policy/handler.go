package get_policy

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/avkor/SMB-SchedulingService/internal/api/handlers"
	scheduleService "github.com/avkor/SMB-SchedulingService/internal/service/schedule"
)

const (
	msgInvalidBusinessID = "некорректный ID бизнеса"
)

type Handler struct {
	service ScheduleService
	logger  Logger
}

func NewHandler(service ScheduleService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/businesses/{businessId}/policy
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	businessID, err := strconv.ParseInt(vars["businessId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /businesses/{id}/policy - Invalid business ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBusinessID)
		return
	}

	result, err := h.service.GetPolicy(r.Context(), businessID)
	if err != nil {
		switch {
		case errors.Is(err, scheduleService.ErrInvalidInput):
			h.logger.Warn("GET /businesses/{id}/policy - Invalid input: business_id=%d", businessID)
			handlers.RespondBadRequest(w, msgInvalidBusinessID)

		default:
			h.logger.Error("GET /businesses/{id}/policy - Failed to get policy: business_id=%d, error=%v", businessID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /businesses/{id}/policy - Policy fetched: business_id=%d, is_default=%t", businessID, result.IsDefault)
	handlers.RespondJSON(w, http.StatusOK, result)
}
