package update_policy

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/avkor/SMB-SchedulingService/internal/api/handlers"
	scheduleService "github.com/avkor/SMB-SchedulingService/internal/service/schedule"
	"github.com/avkor/SMB-SchedulingService/internal/service/schedule/models"
)

const (
	msgInvalidBusinessID  = "некорректный ID бизнеса"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidPolicyData  = "некорректные данные политики"
	msgInvalidPolicy      = "значения политики вне допустимых границ"
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

// Handle PUT /api/v1/businesses/{businessId}/policy
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	businessID, err := strconv.ParseInt(vars["businessId"], 10, 64)
	if err != nil {
		h.logger.Warn("PUT /businesses/{id}/policy - Invalid business ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBusinessID)
		return
	}

	var req models.UpdatePolicyRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /businesses/{id}/policy - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}
	// ID бизнеса берётся из URL, не из тела
	req.BusinessID = businessID

	result, err := h.service.UpdatePolicy(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, scheduleService.ErrInvalidPolicy):
			h.logger.Warn("PUT /businesses/{id}/policy - Policy out of bounds: business_id=%d, error=%v", businessID, err)
			handlers.RespondBadRequest(w, msgInvalidPolicy)

		case errors.Is(err, scheduleService.ErrInvalidInput):
			h.logger.Warn("PUT /businesses/{id}/policy - Invalid policy data: business_id=%d, error=%v", businessID, err)
			handlers.RespondBadRequest(w, msgInvalidPolicyData)

		default:
			h.logger.Error("PUT /businesses/{id}/policy - Failed to update policy: business_id=%d, error=%v", businessID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PUT /businesses/{id}/policy - Policy updated: business_id=%d", businessID)
	handlers.RespondJSON(w, http.StatusOK, result)
}
