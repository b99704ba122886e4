package claim_slot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/avkor/SMB-SchedulingService/internal/domain"
	appointmentRepo "github.com/avkor/SMB-SchedulingService/internal/infra/storage/appointment"
	policyRepo "github.com/avkor/SMB-SchedulingService/internal/infra/storage/policy"
	scheduleRepo "github.com/avkor/SMB-SchedulingService/internal/infra/storage/schedule"
)

// UseCase use case для захвата слота
// Атомарно перепроверяет доступность интервала и создаёт (или переносит)
// запись в сериализуемой транзакции - единственная точка записи в календарь
type UseCase struct {
	appointmentRepo AppointmentRepository
	scheduleRepo    ScheduleRepository
	policyRepo      PolicyRepository
	txManager       TransactionManager
	timeProvider    TimeProvider
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	appointmentRepo AppointmentRepository,
	scheduleRepo ScheduleRepository,
	policyRepo PolicyRepository,
	txManager TransactionManager,
	logger Logger,
) *UseCase {
	return &UseCase{
		appointmentRepo: appointmentRepo,
		scheduleRepo:    scheduleRepo,
		policyRepo:      policyRepo,
		txManager:       txManager,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// Execute выполняет use case захвата слота
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("ClaimSlot: business=%d, start=%s, phone=%s",
		req.BusinessID, req.StartAt.Format(time.RFC3339), req.CustomerPhone)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("ClaimSlot: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем текущее время
	now := uc.timeProvider.Now()

	startAt := req.StartAt.UTC()
	endAt := req.EndAt.UTC()

	var result *domain.Appointment
	var timezone string

	// 3. Перепроверка и запись в одной сериализуемой транзакции
	claim := func(txCtx context.Context) error {
		// 3.1. Политика бронирования (дефолтная, если не настроена)
		policy, err := uc.policyRepo.GetByBusiness(txCtx, req.BusinessID)
		if err != nil {
			if !errors.Is(err, policyRepo.ErrPolicyNotFound) {
				uc.logger.Error("ClaimSlot: failed to get policy for business=%d: %v", req.BusinessID, err)
				return fmt.Errorf("%w: failed to get policy: %w", ErrInternal, err)
			}
			policy = domain.DefaultPolicy(req.BusinessID)
		}

		loc := policy.Location()
		timezone = policy.Timezone
		localDate := time.Date(startAt.In(loc).Year(), startAt.In(loc).Month(), startAt.In(loc).Day(), 0, 0, 0, 0, loc)

		// 3.2. Минимальное время до начала записи
		if startAt.Before(now.Add(time.Duration(policy.MinNoticeHours) * time.Hour)) {
			uc.logger.Warn("ClaimSlot: slot %s violates min notice for business=%d",
				startAt.Format(time.RFC3339), req.BusinessID)
			return ErrTooSoon
		}

		// 3.3. Закрытые даты и рабочие часы
		if policy.IsBlackout(localDate) {
			uc.logger.Warn("ClaimSlot: %s is a blackout date for business=%d",
				localDate.Format(domain.DateFormat), req.BusinessID)
			return ErrOutsideSchedule
		}

		if err := uc.checkWithinSchedule(txCtx, req.BusinessID, localDate, startAt, endAt, loc); err != nil {
			return err
		}

		// 3.4. Получаем блокирующие записи дня с блокировкой FOR UPDATE
		dayStart := localDate
		dayEnd := localDate.AddDate(0, 0, 1)
		buffer := time.Duration(policy.BufferMinutes) * time.Minute

		appointments, err := uc.appointmentRepo.ListBlocking(txCtx, req.BusinessID,
			dayStart.Add(-buffer).UTC(), dayEnd.Add(buffer).UTC())
		if err != nil {
			uc.logger.Error("ClaimSlot: failed to get appointments: %v", err)
			return fmt.Errorf("%w: failed to get appointments: %w", ErrInternal, err)
		}

		// 3.5. Перепроверяем пересечения (без учёта переносимой записи)
		for _, appt := range appointments {
			if req.RescheduleAppointmentID != nil && appt.ID == *req.RescheduleAppointmentID {
				continue
			}
			if appt.OverlapsWithBuffer(startAt, endAt, buffer) {
				uc.logger.Warn("ClaimSlot: slot %s already taken by appointment id=%d",
					startAt.Format(time.RFC3339), appt.ID)
				return ErrSlotTaken
			}
		}

		// 3.6. Перепроверяем дневной лимит
		if policy.HasDailyLimit() {
			count := 0
			for _, appt := range appointments {
				if req.RescheduleAppointmentID != nil && appt.ID == *req.RescheduleAppointmentID {
					continue
				}
				ay, am, ad := appt.StartAt.In(loc).Date()
				if ay == localDate.Year() && am == localDate.Month() && ad == localDate.Day() {
					count++
				}
			}
			if count >= policy.MaxDailyAppointments {
				uc.logger.Warn("ClaimSlot: daily limit %d reached for business=%d on %s",
					policy.MaxDailyAppointments, req.BusinessID, localDate.Format(domain.DateFormat))
				return ErrDailyLimitReached
			}
		}

		// 3.7. Переносим существующую запись или создаём новую
		if req.RescheduleAppointmentID != nil {
			result, err = uc.reschedule(txCtx, *req.RescheduleAppointmentID, req.BusinessID, startAt, endAt)
			return err
		}

		status := domain.StatusConfirmed
		if policy.RequireConfirmation || req.RequiresDeposit {
			status = domain.StatusPending
		}

		// Цена каталога опциональна, в записи хранится нулевая по умолчанию
		price := 0.0
		if req.ServicePrice != nil {
			price = *req.ServicePrice
		}

		appointment := &domain.Appointment{
			BusinessID:     req.BusinessID,
			ServiceID:      req.ServiceID,
			ConversationID: req.ConversationID,
			CustomerName:   req.CustomerName,
			CustomerPhone:  req.CustomerPhone,
			StartAt:        startAt,
			EndAt:          endAt,
			Timezone:       policy.Timezone,
			Status:         status,
			ServiceName:    req.ServiceName,
			ServicePrice:   price,
			Notes:          req.Notes,
		}

		result, err = uc.appointmentRepo.Create(txCtx, appointment)
		if err != nil {
			uc.logger.Error("ClaimSlot: failed to create appointment: %v", err)
			return fmt.Errorf("%w: failed to create appointment: %w", ErrInternal, err)
		}

		return nil
	}

	err := uc.txManager.DoSerializable(ctx, claim)
	if isSerializationFailure(err) {
		// Конкурирующая транзакция оборвала фиксацию (SQLSTATE 40001):
		// повторяем перепроверку один раз на свежем снимке
		uc.logger.Warn("ClaimSlot: serialization failure for business=%d, retrying", req.BusinessID)
		err = uc.txManager.DoSerializable(ctx, claim)
		if isSerializationFailure(err) {
			uc.logger.Warn("ClaimSlot: slot %s lost to concurrent claim for business=%d",
				startAt.Format(time.RFC3339), req.BusinessID)
			return nil, ErrSlotTaken
		}
	}
	if err != nil {
		return nil, err
	}

	uc.logger.Info("ClaimSlot: appointment id=%d %s for business=%d at %s",
		result.ID, result.Status, req.BusinessID, startAt.Format(time.RFC3339))

	return &Response{
		ID:            result.ID,
		BusinessID:    result.BusinessID,
		ServiceID:     result.ServiceID,
		ServiceName:   result.ServiceName,
		ServicePrice:  result.ServicePrice,
		StartAt:       result.StartAt,
		EndAt:         result.EndAt,
		Timezone:      timezone,
		Status:        string(result.Status),
		CustomerName:  result.CustomerName,
		CustomerPhone: result.CustomerPhone,
		Notes:         result.Notes,
		CreatedAt:     result.CreatedAt,
	}, nil
}

// checkWithinSchedule проверяет, что интервал целиком помещается
// в один из рабочих диапазонов дня
func (uc *UseCase) checkWithinSchedule(ctx context.Context, businessID int64, localDate, startAt, endAt time.Time, loc *time.Location) error {
	exception, err := uc.scheduleRepo.GetException(ctx, businessID, localDate)
	if err != nil && !errors.Is(err, scheduleRepo.ErrExceptionNotFound) {
		uc.logger.Error("ClaimSlot: failed to get date exception: %v", err)
		return fmt.Errorf("%w: failed to get date exception: %w", ErrInternal, err)
	}

	weeklyHours, err := uc.scheduleRepo.GetWeeklyHours(ctx, businessID)
	if err != nil {
		uc.logger.Error("ClaimSlot: failed to get weekly hours: %v", err)
		return fmt.Errorf("%w: failed to get weekly hours: %w", ErrInternal, err)
	}

	var dayHours *domain.WeeklyHours
	for _, h := range weeklyHours {
		if h.Weekday == localDate.Weekday() {
			dayHours = h
			break
		}
	}

	schedule := domain.ResolveDaySchedule(dayHours, exception)
	if !schedule.IsOpen {
		uc.logger.Warn("ClaimSlot: business=%d is closed on %s", businessID, localDate.Format(domain.DateFormat))
		return ErrOutsideSchedule
	}

	for _, r := range schedule.Ranges {
		rangeStart := r.Start.At(localDate, loc)
		rangeEnd := r.End.At(localDate, loc)
		if !startAt.Before(rangeStart) && !endAt.After(rangeEnd) {
			return nil
		}
	}

	uc.logger.Warn("ClaimSlot: interval %s-%s is outside working hours of business=%d",
		startAt.Format(time.RFC3339), endAt.Format(time.RFC3339), businessID)
	return ErrOutsideSchedule
}

// reschedule переносит существующую запись на новый интервал
func (uc *UseCase) reschedule(ctx context.Context, appointmentID, businessID int64, startAt, endAt time.Time) (*domain.Appointment, error) {
	appointment, err := uc.appointmentRepo.GetByID(ctx, appointmentID)
	if err != nil {
		if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
			uc.logger.Warn("ClaimSlot: appointment id=%d not found", appointmentID)
			return nil, ErrAppointmentNotFound
		}
		uc.logger.Error("ClaimSlot: failed to get appointment id=%d: %v", appointmentID, err)
		return nil, fmt.Errorf("%w: failed to get appointment: %w", ErrInternal, err)
	}

	if appointment.BusinessID != businessID {
		uc.logger.Warn("ClaimSlot: appointment id=%d belongs to another business", appointmentID)
		return nil, ErrAppointmentNotFound
	}

	if !appointment.CanBeRescheduled() {
		uc.logger.Warn("ClaimSlot: appointment id=%d in status %s cannot be rescheduled",
			appointmentID, appointment.Status)
		return nil, ErrCannotReschedule
	}

	if err := uc.appointmentRepo.UpdateTime(ctx, appointmentID, startAt, endAt); err != nil {
		uc.logger.Error("ClaimSlot: failed to update appointment id=%d: %v", appointmentID, err)
		return nil, fmt.Errorf("%w: failed to update appointment: %w", ErrInternal, err)
	}

	appointment.StartAt = startAt
	appointment.EndAt = endAt
	appointment.Status = domain.StatusRescheduled

	return appointment, nil
}

// isSerializationFailure распознаёт обрыв сериализуемой транзакции Postgres
// В таком случае интервал оспаривается конкурирующим захватом
func isSerializationFailure(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "40001"
}
