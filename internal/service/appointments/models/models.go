package models

import (
	"errors"
	"time"

	"github.com/avkor/SMB-SchedulingService/internal/domain"
)

var (
	// ErrInvalidStatus возвращается при некорректном статусе
	ErrInvalidStatus = errors.New("invalid appointment status")
)

// Request модели

// ListAppointmentsRequest запрос на получение записей бизнеса
type ListAppointmentsRequest struct {
	BusinessID      int64      `json:"businessId"`
	StartAt         *time.Time `json:"startAt,omitempty"`         // Начало периода (опционально)
	EndAt           *time.Time `json:"endAt,omitempty"`           // Конец периода (опционально)
	Status          *string    `json:"status,omitempty"`          // Фильтр по статусу (опционально)
	IncludeInactive bool       `json:"includeInactive,omitempty"` // Включить отменённые и no-show записи
}

// ToDomainFilter конвертирует request в domain фильтр
func (r *ListAppointmentsRequest) ToDomainFilter() (domain.AppointmentsFilter, error) {
	filter := domain.AppointmentsFilter{
		BusinessID:      r.BusinessID,
		StartAt:         r.StartAt,
		EndAt:           r.EndAt,
		IncludeInactive: r.IncludeInactive,
	}

	// Конвертируем статус если указан
	if r.Status != nil {
		status, err := ToDomainAppointmentStatus(*r.Status)
		if err != nil {
			return filter, err
		}
		filter.Status = &status
	}

	return filter, nil
}

// Response модели

// AppointmentResponse ответ с данными записи
type AppointmentResponse struct {
	ID             int64   `json:"id"`
	BusinessID     int64   `json:"businessId"`
	ServiceID      *int64  `json:"serviceId,omitempty"`
	ConversationID *string `json:"conversationId,omitempty"`

	CustomerName  string `json:"customerName"`
	CustomerPhone string `json:"customerPhone"`

	StartAt  time.Time `json:"startAt"`
	EndAt    time.Time `json:"endAt"`
	Timezone string    `json:"timezone"`

	Status string `json:"status"`

	// Денормализованные данные
	ServiceName  string  `json:"serviceName"`
	ServicePrice float64 `json:"servicePrice"`
	Notes        *string `json:"notes,omitempty"`

	CancelledAt *string `json:"cancelledAt,omitempty"` // ISO 8601 format

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// AppointmentListResponse ответ со списком записей
type AppointmentListResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
}

// Методы конвертации

// FromDomainAppointment конвертирует domain модель в DTO
func FromDomainAppointment(a *domain.Appointment) *AppointmentResponse {
	if a == nil {
		return nil
	}

	resp := &AppointmentResponse{
		ID:             a.ID,
		BusinessID:     a.BusinessID,
		ServiceID:      a.ServiceID,
		ConversationID: a.ConversationID,
		CustomerName:   a.CustomerName,
		CustomerPhone:  a.CustomerPhone,
		StartAt:        a.StartAt,
		EndAt:          a.EndAt,
		Timezone:       a.Timezone,
		Status:         string(a.Status),
		ServiceName:    a.ServiceName,
		ServicePrice:   a.ServicePrice,
		Notes:          a.Notes,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}

	// Конвертируем CancelledAt в строку ISO 8601
	if a.CancelledAt != nil {
		cancelledStr := a.CancelledAt.Format(time.RFC3339)
		resp.CancelledAt = &cancelledStr
	}

	return resp
}

// FromDomainAppointmentList конвертирует список domain моделей в DTO
func FromDomainAppointmentList(appointments []*domain.Appointment) *AppointmentListResponse {
	if appointments == nil {
		return &AppointmentListResponse{
			Appointments: []AppointmentResponse{},
		}
	}

	resp := &AppointmentListResponse{
		Appointments: make([]AppointmentResponse, len(appointments)),
	}

	for i, appointment := range appointments {
		if apptResp := FromDomainAppointment(appointment); apptResp != nil {
			resp.Appointments[i] = *apptResp
		}
	}

	return resp
}

// ToDomainAppointmentStatus конвертирует строку в domain.AppointmentStatus с валидацией
func ToDomainAppointmentStatus(status string) (domain.AppointmentStatus, error) {
	s := domain.AppointmentStatus(status)

	// Валидируем статус
	validStatuses := []domain.AppointmentStatus{
		domain.StatusPending,
		domain.StatusConfirmed,
		domain.StatusCompleted,
		domain.StatusRescheduled,
		domain.StatusCancelled,
		domain.StatusNoShow,
	}

	for _, valid := range validStatuses {
		if s == valid {
			return s, nil
		}
	}

	return "", ErrInvalidStatus
}
