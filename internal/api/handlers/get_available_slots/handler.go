package get_available_slots

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/avkor/SMB-SchedulingService/internal/api/handlers"
	findSlots "github.com/avkor/SMB-SchedulingService/internal/usecase/find_slots"
)

const (
	msgInvalidBusinessID = "некорректный ID бизнеса"
	msgMissingDuration   = "длительность услуги обязательна"
	msgInvalidDuration   = "некорректная длительность услуги"
	msgMissingFrom       = "дата начала поиска обязательна"
	msgInvalidDate       = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgInvalidWindow     = "некорректное окно времени, ожидается HH:MM"
	msgInvalidLimit      = "некорректный лимит"
	msgInvalidRange      = "некорректный диапазон поиска"
)

type Handler struct {
	useCase FindSlotsUseCase
	logger  Logger
}

func NewHandler(useCase FindSlotsUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/businesses/{businessId}/available-slots
// Query params: durationMinutes (required), from (required, YYYY-MM-DD),
// to, windowFrom, windowTo (HH:MM), limit
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	businessID, err := strconv.ParseInt(vars["businessId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /businesses/{id}/available-slots - Invalid business ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBusinessID)
		return
	}

	query := r.URL.Query()

	durationStr := query.Get("durationMinutes")
	if durationStr == "" {
		h.logger.Warn("GET /businesses/{id}/available-slots - Missing duration")
		handlers.RespondBadRequest(w, msgMissingDuration)
		return
	}
	durationMinutes, err := strconv.Atoi(durationStr)
	if err != nil {
		h.logger.Warn("GET /businesses/{id}/available-slots - Invalid duration: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDuration)
		return
	}

	fromStr := query.Get("from")
	if fromStr == "" {
		h.logger.Warn("GET /businesses/{id}/available-slots - Missing from date")
		handlers.RespondBadRequest(w, msgMissingFrom)
		return
	}

	limit := 0
	if limitStr := query.Get("limit"); limitStr != "" {
		limit, err = strconv.Atoi(limitStr)
		if err != nil {
			h.logger.Warn("GET /businesses/{id}/available-slots - Invalid limit: %v", err)
			handlers.RespondBadRequest(w, msgInvalidLimit)
			return
		}
	}

	useCaseReq, err := ToUseCaseRequest(businessID, durationMinutes, fromStr, query.Get("to"),
		query.Get("windowFrom"), query.Get("windowTo"), limit)
	if err != nil {
		h.logger.Warn("GET /businesses/{id}/available-slots - Invalid request params: %v", err)
		if query.Get("windowFrom") != "" || query.Get("windowTo") != "" {
			handlers.RespondBadRequest(w, msgInvalidWindow)
		} else {
			handlers.RespondBadRequest(w, msgInvalidDate)
		}
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, findSlots.ErrInvalidRange):
			h.logger.Warn("GET /businesses/{id}/available-slots - Invalid range: business_id=%d", businessID)
			handlers.RespondBadRequest(w, msgInvalidRange)

		case errors.Is(err, findSlots.ErrInvalidInput):
			h.logger.Warn("GET /businesses/{id}/available-slots - Invalid input: business_id=%d, error=%v", businessID, err)
			handlers.RespondBadRequest(w, msgInvalidDuration)

		default:
			h.logger.Error("GET /businesses/{id}/available-slots - Failed to find slots: business_id=%d, error=%v", businessID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /businesses/{id}/available-slots - Found %d slots: business_id=%d", len(result.Slots), businessID)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
