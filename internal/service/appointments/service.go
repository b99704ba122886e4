package appointments

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/avkor/SMB-SchedulingService/internal/domain"
	appointmentRepo "github.com/avkor/SMB-SchedulingService/internal/infra/storage/appointment"
	"github.com/avkor/SMB-SchedulingService/internal/service/appointments/models"
)

// Service сервис для работы с записями
type Service struct {
	appointmentRepo AppointmentRepository
	logger          Logger
	timeProvider    TimeProvider
}

// NewService создает новый экземпляр сервиса записей
func NewService(
	appointmentRepo AppointmentRepository,
	logger Logger,
) *Service {
	return &Service{
		appointmentRepo: appointmentRepo,
		logger:          logger,
		timeProvider:    &RealTimeProvider{},
	}
}

// GetByID получает запись по ID
// Запись доступна только в рамках своего бизнеса
func (s *Service) GetByID(ctx context.Context, businessID, id int64) (*models.AppointmentResponse, error) {
	s.logger.Info("GetByID: fetching appointment id=%d for business=%d", id, businessID)

	appt, err := s.appointmentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
			s.logger.Warn("GetByID: appointment id=%d not found", id)
			return nil, ErrAppointmentNotFound
		}
		s.logger.Error("GetByID: repository error for appointment id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: GetByID - repository error: %v", ErrInternal, err)
	}

	if appt.BusinessID != businessID {
		s.logger.Warn("GetByID: appointment id=%d belongs to business=%d, requested by business=%d", id, appt.BusinessID, businessID)
		return nil, ErrAppointmentNotFound
	}

	s.logger.Info("GetByID: successfully fetched appointment id=%d", id)
	return models.FromDomainAppointment(appt), nil
}

// List получает записи бизнеса с гибкой фильтрацией
// Поддерживает фильтрацию по периоду, статусу и включению неактивных записей
func (s *Service) List(ctx context.Context, req *models.ListAppointmentsRequest) (*models.AppointmentListResponse, error) {
	logMsg := fmt.Sprintf("List: fetching appointments for business=%d", req.BusinessID)
	if req.StartAt != nil && req.EndAt != nil {
		logMsg += fmt.Sprintf(", period=%s to %s", req.StartAt.Format(domain.DateFormat), req.EndAt.Format(domain.DateFormat))
	}
	if req.Status != nil {
		logMsg += fmt.Sprintf(", status=%s", *req.Status)
	}
	if req.IncludeInactive {
		logMsg += ", includeInactive=true"
	}
	s.logger.Info(logMsg)

	if req.BusinessID <= 0 {
		s.logger.Warn("List: invalid business id=%d", req.BusinessID)
		return nil, fmt.Errorf("%w: business id must be positive", ErrInvalidInput)
	}

	filter, err := req.ToDomainFilter()
	if err != nil {
		s.logger.Warn("List: invalid filter for business=%d: %v", req.BusinessID, err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	appointments, err := s.appointmentRepo.ListByBusinessWithFilter(ctx, filter)
	if err != nil {
		s.logger.Error("List: repository error for business=%d: %v", req.BusinessID, err)
		return nil, fmt.Errorf("%w: List - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("List: successfully fetched %d appointments for business=%d", len(appointments), req.BusinessID)
	return models.FromDomainAppointmentList(appointments), nil
}

// FindUpcomingByPhone находит ближайшую активную запись клиента по номеру телефона
// Используется в диалоговых потоках отмены и переноса
func (s *Service) FindUpcomingByPhone(ctx context.Context, businessID int64, phone string) (*domain.Appointment, error) {
	normalized := normalizePhone(phone)
	s.logger.Info("FindUpcomingByPhone: searching appointment for business=%d", businessID)

	if businessID <= 0 || normalized == "" {
		s.logger.Warn("FindUpcomingByPhone: invalid input for business=%d", businessID)
		return nil, fmt.Errorf("%w: business id and phone are required", ErrInvalidInput)
	}

	now := s.timeProvider.Now()
	appt, err := s.appointmentRepo.FindUpcomingByPhone(ctx, businessID, normalized, now)
	if err != nil {
		if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
			s.logger.Warn("FindUpcomingByPhone: no upcoming appointment for business=%d", businessID)
			return nil, ErrAppointmentNotFound
		}
		s.logger.Error("FindUpcomingByPhone: repository error for business=%d: %v", businessID, err)
		return nil, fmt.Errorf("%w: FindUpcomingByPhone - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("FindUpcomingByPhone: found appointment id=%d for business=%d", appt.ID, businessID)
	return appt, nil
}

// Cancel отменяет запись
// Отменять можно только активные записи (pending, confirmed, rescheduled)
func (s *Service) Cancel(ctx context.Context, businessID, appointmentID int64) (*domain.Appointment, error) {
	s.logger.Info("Cancel: cancelling appointment id=%d for business=%d", appointmentID, businessID)

	appt, err := s.appointmentRepo.GetByID(ctx, appointmentID)
	if err != nil {
		if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
			s.logger.Warn("Cancel: appointment id=%d not found", appointmentID)
			return nil, ErrAppointmentNotFound
		}
		s.logger.Error("Cancel: repository error for appointment id=%d: %v", appointmentID, err)
		return nil, fmt.Errorf("%w: Cancel - repository error: %v", ErrInternal, err)
	}

	if appt.BusinessID != businessID {
		s.logger.Warn("Cancel: appointment id=%d belongs to business=%d, requested by business=%d", appointmentID, appt.BusinessID, businessID)
		return nil, ErrAppointmentNotFound
	}

	if !appt.CanBeCancelled() {
		s.logger.Warn("Cancel: appointment id=%d has status=%s and cannot be cancelled", appointmentID, appt.Status)
		return nil, fmt.Errorf("%w: status=%s", ErrCannotCancel, appt.Status)
	}

	now := s.timeProvider.Now()
	if err := s.appointmentRepo.UpdateStatus(ctx, appointmentID, domain.StatusCancelled, &now); err != nil {
		s.logger.Error("Cancel: failed to update status for appointment id=%d: %v", appointmentID, err)
		return nil, fmt.Errorf("%w: Cancel - repository error: %v", ErrInternal, err)
	}

	appt.Status = domain.StatusCancelled
	appt.CancelledAt = &now

	s.logger.Info("Cancel: successfully cancelled appointment id=%d", appointmentID)
	return appt, nil
}

// normalizePhone убирает из номера все символы кроме цифр
func normalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
