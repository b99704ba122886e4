package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avkor/SMB-SchedulingService/internal/domain"
	policyRepo "github.com/avkor/SMB-SchedulingService/internal/infra/storage/policy"
	"github.com/avkor/SMB-SchedulingService/internal/service/schedule/models"
)

// Service сервис для работы с расписанием и политикой бронирования
type Service struct {
	scheduleRepo ScheduleRepository
	policyRepo   PolicyRepository
	logger       Logger
	timeProvider TimeProvider
}

// NewService создает новый экземпляр сервиса расписания
func NewService(
	scheduleRepo ScheduleRepository,
	policyRepo PolicyRepository,
	logger Logger,
) *Service {
	return &Service{
		scheduleRepo: scheduleRepo,
		policyRepo:   policyRepo,
		logger:       logger,
		timeProvider: &RealTimeProvider{},
	}
}

// GetSchedule возвращает недельное расписание и будущие исключения бизнеса
func (s *Service) GetSchedule(ctx context.Context, businessID int64) (*models.ScheduleResponse, error) {
	s.logger.Info("GetSchedule: fetching schedule for business=%d", businessID)

	if businessID <= 0 {
		s.logger.Warn("GetSchedule: invalid business id=%d", businessID)
		return nil, fmt.Errorf("%w: business id must be positive", ErrInvalidInput)
	}

	hours, err := s.scheduleRepo.GetWeeklyHours(ctx, businessID)
	if err != nil {
		s.logger.Error("GetSchedule: failed to get weekly hours for business=%d: %v", businessID, err)
		return nil, fmt.Errorf("%w: GetSchedule - repository error: %v", ErrInternal, err)
	}

	now := s.timeProvider.Now()
	exceptions, err := s.scheduleRepo.ListExceptions(ctx, businessID, now)
	if err != nil {
		s.logger.Error("GetSchedule: failed to list exceptions for business=%d: %v", businessID, err)
		return nil, fmt.Errorf("%w: GetSchedule - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetSchedule: fetched %d weekday entries and %d exceptions for business=%d", len(hours), len(exceptions), businessID)
	return models.FromDomainSchedule(businessID, hours, exceptions), nil
}

// UpdateSchedule обновляет недельное расписание и исключения бизнеса
// Переданные дни недели и исключения заменяют существующие записи,
// не переданные остаются без изменений
func (s *Service) UpdateSchedule(ctx context.Context, req *models.UpdateScheduleRequest) (*models.ScheduleResponse, error) {
	s.logger.Info("UpdateSchedule: updating schedule for business=%d (%d weekdays, %d exceptions, %d removals)",
		req.BusinessID, len(req.WeeklyHours), len(req.Exceptions), len(req.RemoveExceptionDates))

	if req.BusinessID <= 0 {
		s.logger.Warn("UpdateSchedule: invalid business id=%d", req.BusinessID)
		return nil, fmt.Errorf("%w: business id must be positive", ErrInvalidInput)
	}

	// 1. Валидируем и конвертируем все записи до первой записи в БД
	hours := make([]*domain.WeeklyHours, 0, len(req.WeeklyHours))
	for _, entry := range req.WeeklyHours {
		h, err := entry.ToDomainWeeklyHours(req.BusinessID)
		if err != nil {
			s.logger.Warn("UpdateSchedule: invalid weekday entry for business=%d: %v", req.BusinessID, err)
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		if err := s.validateDayRanges(h.IsOpen, h.Range1, h.Range2); err != nil {
			s.logger.Warn("UpdateSchedule: invalid ranges for weekday=%d, business=%d: %v", entry.Weekday, req.BusinessID, err)
			return nil, err
		}
		hours = append(hours, h)
	}

	exceptions := make([]*domain.DateException, 0, len(req.Exceptions))
	for _, entry := range req.Exceptions {
		exc, err := entry.ToDomainException(req.BusinessID)
		if err != nil {
			s.logger.Warn("UpdateSchedule: invalid exception entry for business=%d: %v", req.BusinessID, err)
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		if err := s.validateDayRanges(!exc.IsClosed, exc.Range1, exc.Range2); err != nil {
			s.logger.Warn("UpdateSchedule: invalid ranges for exception date=%s, business=%d: %v", entry.Date, req.BusinessID, err)
			return nil, err
		}
		exceptions = append(exceptions, exc)
	}

	removeDates := make([]time.Time, 0, len(req.RemoveExceptionDates))
	for _, raw := range req.RemoveExceptionDates {
		date, err := time.Parse(domain.DateFormat, raw)
		if err != nil {
			s.logger.Warn("UpdateSchedule: invalid removal date=%s for business=%d", raw, req.BusinessID)
			return nil, fmt.Errorf("%w: invalid date format: %s", ErrInvalidInput, raw)
		}
		removeDates = append(removeDates, date)
	}

	// 2. Применяем изменения
	for _, h := range hours {
		if err := s.scheduleRepo.UpsertWeeklyHours(ctx, h); err != nil {
			s.logger.Error("UpdateSchedule: failed to upsert weekday=%d for business=%d: %v", h.Weekday, req.BusinessID, err)
			return nil, fmt.Errorf("%w: UpdateSchedule - repository error: %v", ErrInternal, err)
		}
	}
	for _, exc := range exceptions {
		if err := s.scheduleRepo.UpsertException(ctx, exc); err != nil {
			s.logger.Error("UpdateSchedule: failed to upsert exception for business=%d: %v", req.BusinessID, err)
			return nil, fmt.Errorf("%w: UpdateSchedule - repository error: %v", ErrInternal, err)
		}
	}
	for _, date := range removeDates {
		if err := s.scheduleRepo.DeleteException(ctx, req.BusinessID, date); err != nil {
			s.logger.Error("UpdateSchedule: failed to delete exception for business=%d: %v", req.BusinessID, err)
			return nil, fmt.Errorf("%w: UpdateSchedule - repository error: %v", ErrInternal, err)
		}
	}

	s.logger.Info("UpdateSchedule: successfully updated schedule for business=%d", req.BusinessID)

	// 3. Возвращаем актуальное состояние
	return s.GetSchedule(ctx, req.BusinessID)
}

// GetPolicy возвращает политику бронирования бизнеса
// Если бизнес ещё не настроил политику, возвращаются дефолтные значения
func (s *Service) GetPolicy(ctx context.Context, businessID int64) (*models.PolicyResponse, error) {
	s.logger.Info("GetPolicy: fetching policy for business=%d", businessID)

	if businessID <= 0 {
		s.logger.Warn("GetPolicy: invalid business id=%d", businessID)
		return nil, fmt.Errorf("%w: business id must be positive", ErrInvalidInput)
	}

	policy, err := s.policyRepo.GetByBusiness(ctx, businessID)
	if err != nil {
		if errors.Is(err, policyRepo.ErrPolicyNotFound) {
			s.logger.Info("GetPolicy: business=%d has no policy, returning defaults", businessID)
			return models.FromDomainPolicy(domain.DefaultPolicy(businessID), true), nil
		}
		s.logger.Error("GetPolicy: repository error for business=%d: %v", businessID, err)
		return nil, fmt.Errorf("%w: GetPolicy - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetPolicy: successfully fetched policy for business=%d", businessID)
	return models.FromDomainPolicy(policy, false), nil
}

// UpdatePolicy обновляет политику бронирования бизнеса
func (s *Service) UpdatePolicy(ctx context.Context, req *models.UpdatePolicyRequest) (*models.PolicyResponse, error) {
	s.logger.Info("UpdatePolicy: updating policy for business=%d", req.BusinessID)

	if req.BusinessID <= 0 {
		s.logger.Warn("UpdatePolicy: invalid business id=%d", req.BusinessID)
		return nil, fmt.Errorf("%w: business id must be positive", ErrInvalidInput)
	}

	policy, err := req.ToDomainPolicy()
	if err != nil {
		s.logger.Warn("UpdatePolicy: invalid request for business=%d: %v", req.BusinessID, err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if err := s.validatePolicy(policy); err != nil {
		s.logger.Warn("UpdatePolicy: validation failed for business=%d: %v", req.BusinessID, err)
		return nil, err
	}

	if err := s.policyRepo.Upsert(ctx, policy); err != nil {
		s.logger.Error("UpdatePolicy: failed to upsert policy for business=%d: %v", req.BusinessID, err)
		return nil, fmt.Errorf("%w: UpdatePolicy - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("UpdatePolicy: successfully updated policy for business=%d", req.BusinessID)
	return models.FromDomainPolicy(policy, false), nil
}

// validateDayRanges проверяет рабочие диапазоны открытого дня
// Закрытый день диапазоны игнорирует
func (s *Service) validateDayRanges(isOpen bool, r1, r2 *domain.TimeRange) error {
	if !isOpen {
		return nil
	}

	if r1 == nil && r2 != nil {
		return fmt.Errorf("%w: range2 without range1", ErrInvalidTimeRange)
	}
	if r1 == nil {
		return fmt.Errorf("%w: open day requires at least one range", ErrInvalidTimeRange)
	}
	if !r1.IsValid() {
		return fmt.Errorf("%w: %s-%s", ErrInvalidTimeRange, r1.Start, r1.End)
	}
	if r2 != nil {
		if !r2.IsValid() {
			return fmt.Errorf("%w: %s-%s", ErrInvalidTimeRange, r2.Start, r2.End)
		}
		if r2.Start.IsBefore(r1.End) {
			return fmt.Errorf("%w: ranges overlap", ErrInvalidTimeRange)
		}
	}
	return nil
}

// validatePolicy проверяет значения политики на допустимые границы
func (s *Service) validatePolicy(p *domain.BookingPolicy) error {
	if _, err := time.LoadLocation(p.Timezone); err != nil {
		return fmt.Errorf("%w: unknown timezone %q", ErrInvalidPolicy, p.Timezone)
	}
	if p.BufferMinutes < domain.MinBufferMinutes || p.BufferMinutes > domain.MaxBufferMinutes {
		return fmt.Errorf("%w: bufferMinutes must be between %d and %d", ErrInvalidPolicy, domain.MinBufferMinutes, domain.MaxBufferMinutes)
	}
	if p.GranularityMinutes < domain.MinGranularityMinutes || p.GranularityMinutes > domain.MaxGranularityMinutes {
		return fmt.Errorf("%w: granularityMinutes must be between %d and %d", ErrInvalidPolicy, domain.MinGranularityMinutes, domain.MaxGranularityMinutes)
	}
	if p.MinNoticeHours < domain.MinNoticeHoursLimit || p.MinNoticeHours > domain.MaxNoticeHoursLimit {
		return fmt.Errorf("%w: minNoticeHours must be between %d and %d", ErrInvalidPolicy, domain.MinNoticeHoursLimit, domain.MaxNoticeHoursLimit)
	}
	if p.MaxDailyAppointments < 0 || p.MaxDailyAppointments > domain.MaxDailyLimit {
		return fmt.Errorf("%w: maxDailyAppointments must be between 0 and %d", ErrInvalidPolicy, domain.MaxDailyLimit)
	}
	if p.BookingWindowDays < domain.MinBookingWindowDays || p.BookingWindowDays > domain.MaxBookingWindowDays {
		return fmt.Errorf("%w: bookingWindowDays must be between %d and %d", ErrInvalidPolicy, domain.MinBookingWindowDays, domain.MaxBookingWindowDays)
	}
	return nil
}
