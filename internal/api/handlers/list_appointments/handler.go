package list_appointments

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/avkor/SMB-SchedulingService/internal/api/handlers"
	"github.com/avkor/SMB-SchedulingService/internal/domain"
	appointmentsService "github.com/avkor/SMB-SchedulingService/internal/service/appointments"
	"github.com/avkor/SMB-SchedulingService/internal/service/appointments/models"
)

const (
	msgInvalidBusinessID = "некорректный ID бизнеса"
	msgInvalidDate       = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgInvalidFilter     = "некорректные параметры фильтрации"
)

type Handler struct {
	service AppointmentsService
	logger  Logger
}

func NewHandler(service AppointmentsService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/businesses/{businessId}/appointments
// Query params: from, to (YYYY-MM-DD), status, includeInactive
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	businessID, err := strconv.ParseInt(vars["businessId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /businesses/{id}/appointments - Invalid business ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBusinessID)
		return
	}

	query := r.URL.Query()

	req := &models.ListAppointmentsRequest{
		BusinessID:      businessID,
		IncludeInactive: query.Get("includeInactive") == "true",
	}

	if fromStr := query.Get("from"); fromStr != "" {
		from, err := time.Parse(domain.DateFormat, fromStr)
		if err != nil {
			h.logger.Warn("GET /businesses/{id}/appointments - Invalid from date: %v", err)
			handlers.RespondBadRequest(w, msgInvalidDate)
			return
		}
		req.StartAt = &from
	}

	if toStr := query.Get("to"); toStr != "" {
		to, err := time.Parse(domain.DateFormat, toStr)
		if err != nil {
			h.logger.Warn("GET /businesses/{id}/appointments - Invalid to date: %v", err)
			handlers.RespondBadRequest(w, msgInvalidDate)
			return
		}
		// Конец периода включает весь день
		toEnd := to.AddDate(0, 0, 1)
		req.EndAt = &toEnd
	}

	if status := query.Get("status"); status != "" {
		req.Status = &status
	}

	result, err := h.service.List(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, appointmentsService.ErrInvalidInput):
			h.logger.Warn("GET /businesses/{id}/appointments - Invalid filter: business_id=%d, error=%v", businessID, err)
			handlers.RespondBadRequest(w, msgInvalidFilter)

		default:
			h.logger.Error("GET /businesses/{id}/appointments - Failed to list: business_id=%d, error=%v", businessID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /businesses/{id}/appointments - Listed %d appointments: business_id=%d",
		len(result.Appointments), businessID)
	handlers.RespondJSON(w, http.StatusOK, result)
}
