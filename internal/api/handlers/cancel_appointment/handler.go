package cancel_appointment

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/avkor/SMB-SchedulingService/internal/api/handlers"
	appointmentsService "github.com/avkor/SMB-SchedulingService/internal/service/appointments"
	"github.com/avkor/SMB-SchedulingService/internal/service/appointments/models"
)

const (
	msgInvalidBusinessID    = "некорректный ID бизнеса"
	msgInvalidAppointmentID = "некорректный ID записи"
	msgAppointmentNotFound  = "запись не найдена"
	msgCannotCancel         = "запись не может быть отменена"
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

// Handle PATCH /api/v1/businesses/{businessId}/appointments/{appointmentId}/cancel
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	businessID, err := strconv.ParseInt(vars["businessId"], 10, 64)
	if err != nil {
		h.logger.Warn("PATCH /businesses/{id}/appointments/{id}/cancel - Invalid business ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBusinessID)
		return
	}

	appointmentID, err := strconv.ParseInt(vars["appointmentId"], 10, 64)
	if err != nil {
		h.logger.Warn("PATCH /businesses/{id}/appointments/{id}/cancel - Invalid appointment ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidAppointmentID)
		return
	}

	cancelled, err := h.service.Cancel(r.Context(), businessID, appointmentID)
	if err != nil {
		switch {
		case errors.Is(err, appointmentsService.ErrAppointmentNotFound):
			h.logger.Warn("PATCH /businesses/{id}/appointments/{id}/cancel - Appointment not found: business_id=%d, appointment_id=%d",
				businessID, appointmentID)
			handlers.RespondNotFound(w, msgAppointmentNotFound)

		case errors.Is(err, appointmentsService.ErrCannotCancel):
			h.logger.Warn("PATCH /businesses/{id}/appointments/{id}/cancel - Cannot cancel: business_id=%d, appointment_id=%d",
				businessID, appointmentID)
			handlers.RespondError(w, http.StatusConflict, msgCannotCancel)

		default:
			h.logger.Error("PATCH /businesses/{id}/appointments/{id}/cancel - Failed to cancel: business_id=%d, appointment_id=%d, error=%v",
				businessID, appointmentID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PATCH /businesses/{id}/appointments/{id}/cancel - Appointment cancelled: business_id=%d, appointment_id=%d",
		businessID, appointmentID)
	handlers.RespondJSON(w, http.StatusOK, models.FromDomainAppointment(cancelled))
}
