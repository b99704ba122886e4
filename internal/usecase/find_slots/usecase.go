package find_slots

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avkor/SMB-SchedulingService/internal/domain"
	policyRepo "github.com/avkor/SMB-SchedulingService/internal/infra/storage/policy"
)

// UseCase use case для поиска доступных слотов
type UseCase struct {
	appointmentRepo AppointmentRepository
	scheduleRepo    ScheduleRepository
	policyRepo      PolicyRepository
	timeProvider    TimeProvider
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	appointmentRepo AppointmentRepository,
	scheduleRepo ScheduleRepository,
	policyRepo PolicyRepository,
	logger Logger,
) *UseCase {
	return &UseCase{
		appointmentRepo: appointmentRepo,
		scheduleRepo:    scheduleRepo,
		policyRepo:      policyRepo,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// Execute выполняет use case поиска доступных слотов
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("FindSlots: business=%d, duration=%d, range=[%s .. %s]",
		req.BusinessID, req.DurationMinutes,
		req.RangeStart.Format(domain.DateFormat), req.RangeEnd.Format(domain.DateFormat))

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("FindSlots: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем текущее время
	now := uc.timeProvider.Now()

	// 3. Получаем политику бронирования (дефолтная, если бизнес её не настроил)
	policy, err := uc.policyRepo.GetByBusiness(ctx, req.BusinessID)
	if err != nil {
		if !errors.Is(err, policyRepo.ErrPolicyNotFound) {
			uc.logger.Error("FindSlots: failed to get policy for business=%d: %v", req.BusinessID, err)
			return nil, fmt.Errorf("%w: failed to get policy: %v", ErrInternal, err)
		}
		policy = domain.DefaultPolicy(req.BusinessID)
		uc.logger.Info("FindSlots: using default policy for business=%d", req.BusinessID)
	}

	loc := policy.Location()

	// 4. Обрезаем диапазон поиска до окна бронирования
	startDate, endDate := clampRange(req, policy, now, loc)
	if startDate.After(endDate) {
		uc.logger.Info("FindSlots: requested range is outside the booking window for business=%d", req.BusinessID)
		return &Response{BusinessID: req.BusinessID, Timezone: policy.Timezone, Slots: []domain.Slot{}}, nil
	}

	// 5. Получаем недельное расписание и исключения дат
	weeklyHours, err := uc.scheduleRepo.GetWeeklyHours(ctx, req.BusinessID)
	if err != nil {
		uc.logger.Error("FindSlots: failed to get weekly hours for business=%d: %v", req.BusinessID, err)
		return nil, fmt.Errorf("%w: failed to get weekly hours: %v", ErrInternal, err)
	}

	hoursByWeekday := make(map[time.Weekday]*domain.WeeklyHours, len(weeklyHours))
	for _, h := range weeklyHours {
		hoursByWeekday[h.Weekday] = h
	}

	exceptions, err := uc.scheduleRepo.ListExceptions(ctx, req.BusinessID, startDate)
	if err != nil {
		uc.logger.Error("FindSlots: failed to get date exceptions for business=%d: %v", req.BusinessID, err)
		return nil, fmt.Errorf("%w: failed to get date exceptions: %v", ErrInternal, err)
	}

	exceptionsByDate := make(map[string]*domain.DateException, len(exceptions))
	for _, exc := range exceptions {
		exceptionsByDate[exc.Date.In(loc).Format(domain.DateFormat)] = exc
	}

	// 6. Получаем блокирующие записи на весь диапазон
	// Запрашиваем с запасом на буфер, чтобы учесть записи на границах дней
	buffer := time.Duration(policy.BufferMinutes) * time.Minute
	appointments, err := uc.appointmentRepo.ListBlocking(ctx, req.BusinessID,
		startDate.Add(-buffer).UTC(), endDate.AddDate(0, 0, 1).Add(buffer).UTC())
	if err != nil {
		uc.logger.Error("FindSlots: failed to get appointments for business=%d: %v", req.BusinessID, err)
		return nil, fmt.Errorf("%w: failed to get appointments: %v", ErrInternal, err)
	}

	// 7. Обходим дни диапазона и собираем свободные слоты
	earliestStart := now.Add(time.Duration(policy.MinNoticeHours) * time.Hour)
	slots := make([]domain.Slot, 0)

	for date := startDate; !date.After(endDate); date = date.AddDate(0, 0, 1) {
		if policy.IsBlackout(date) {
			continue
		}

		exception := exceptionsByDate[date.Format(domain.DateFormat)]
		schedule := domain.ResolveDaySchedule(hoursByWeekday[date.Weekday()], exception)
		if !schedule.IsOpen {
			continue
		}

		remaining := -1
		if policy.HasDailyLimit() {
			remaining = policy.MaxDailyAppointments - countAppointmentsOnDay(appointments, date, loc)
			if remaining <= 0 {
				continue
			}
		}

		daySlots := buildDaySlots(date, schedule, policy, req.DurationMinutes,
			earliestStart, req.Window, appointments, remaining, loc)
		slots = append(slots, daySlots...)

		if req.Limit > 0 && len(slots) >= req.Limit {
			slots = slots[:req.Limit]
			break
		}
	}

	uc.logger.Info("FindSlots: found %d slots for business=%d", len(slots), req.BusinessID)

	return &Response{
		BusinessID: req.BusinessID,
		Timezone:   policy.Timezone,
		Slots:      slots,
	}, nil
}

// clampRange обрезает запрошенный диапазон дат до допустимых границ:
// не раньше сегодня (или завтра при запрете same-day), не позже
// горизонта бронирования
func clampRange(req *Request, policy *domain.BookingPolicy, now time.Time, loc *time.Location) (time.Time, time.Time) {
	today := localMidnight(now, loc)

	startDate := localMidnight(req.RangeStart, loc)
	if startDate.Before(today) {
		startDate = today
	}
	if !policy.AllowSameDay && startDate.Equal(today) {
		startDate = today.AddDate(0, 0, 1)
	}

	endDate := localMidnight(req.RangeEnd, loc)
	maxDate := today.AddDate(0, 0, policy.BookingWindowDays)
	if endDate.After(maxDate) {
		endDate = maxDate
	}

	return startDate, endDate
}
