package find_slots

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avkor/SMB-SchedulingService/internal/domain"
	policyRepo "github.com/avkor/SMB-SchedulingService/internal/infra/storage/policy"
	"github.com/avkor/SMB-SchedulingService/pkg/ptr"
	"github.com/avkor/SMB-SchedulingService/pkg/types"
)

type stubAppointmentRepo struct {
	appointments []*domain.Appointment
}

func (s *stubAppointmentRepo) ListBlocking(_ context.Context, _ int64, _, _ time.Time) ([]*domain.Appointment, error) {
	return s.appointments, nil
}

type stubScheduleRepo struct {
	hours      []*domain.WeeklyHours
	exceptions []*domain.DateException
}

func (s *stubScheduleRepo) GetWeeklyHours(_ context.Context, _ int64) ([]*domain.WeeklyHours, error) {
	return s.hours, nil
}

func (s *stubScheduleRepo) ListExceptions(_ context.Context, _ int64, _ time.Time) ([]*domain.DateException, error) {
	return s.exceptions, nil
}

type stubPolicyRepo struct {
	policy *domain.BookingPolicy
}

func (s *stubPolicyRepo) GetByBusiness(_ context.Context, businessID int64) (*domain.BookingPolicy, error) {
	if s.policy == nil {
		return nil, policyRepo.ErrPolicyNotFound
	}
	return s.policy, nil
}

type fixedTimeProvider struct {
	now time.Time
}

func (p *fixedTimeProvider) Now() time.Time { return p.now }

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func timeRange(start, end types.TimeString) *domain.TimeRange {
	return &domain.TimeRange{Start: start, End: end}
}

// Понедельник с перерывом на обед, остальные дни закрыты
func mondayHours() []*domain.WeeklyHours {
	hours := make([]*domain.WeeklyHours, 0, 7)
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		h := &domain.WeeklyHours{BusinessID: 1, Weekday: wd, IsOpen: false}
		if wd == time.Monday {
			h.IsOpen = true
			h.Range1 = timeRange("09:00", "12:00")
			h.Range2 = timeRange("14:00", "18:00")
		}
		hours = append(hours, h)
	}
	return hours
}

func testPolicy() *domain.BookingPolicy {
	return &domain.BookingPolicy{
		BusinessID:         1,
		Timezone:           "UTC",
		BufferMinutes:      10,
		GranularityMinutes: 30,
		MinNoticeHours:     2,
		BookingWindowDays:  14,
		AllowSameDay:       true,
	}
}

func newTestUseCase(appts *stubAppointmentRepo, sched *stubScheduleRepo, pol *stubPolicyRepo, now time.Time) *UseCase {
	uc := NewUseCase(appts, sched, pol, nopLogger{})
	uc.timeProvider = &fixedTimeProvider{now: now}
	return uc
}

// Воскресенье перед тестовым понедельником 15 сентября 2025
var sunday = time.Date(2025, 9, 14, 18, 0, 0, 0, time.UTC)

var monday = time.Date(2025, 9, 15, 0, 0, 0, 0, time.UTC)

func mondayAt(hour, minute int) time.Time {
	return time.Date(2025, 9, 15, hour, minute, 0, 0, time.UTC)
}

func TestExecute_EmptyCalendar(t *testing.T) {
	uc := newTestUseCase(
		&stubAppointmentRepo{},
		&stubScheduleRepo{hours: mondayHours()},
		&stubPolicyRepo{policy: testPolicy()},
		sunday,
	)

	resp, err := uc.Execute(context.Background(), &Request{
		BusinessID:      1,
		DurationMinutes: 60,
		RangeStart:      monday,
		RangeEnd:        monday,
	})
	require.NoError(t, err)

	// Утро: 09:00-11:00 с шагом 30 (слот 11:30 не помещается до 12:00)
	// День: 14:00-17:00 с шагом 30
	require.Len(t, resp.Slots, 12)
	assert.True(t, resp.Slots[0].StartAt.Equal(mondayAt(9, 0)))
	assert.True(t, resp.Slots[0].EndAt.Equal(mondayAt(10, 0)))
	assert.True(t, resp.Slots[4].StartAt.Equal(mondayAt(11, 0)))
	assert.True(t, resp.Slots[5].StartAt.Equal(mondayAt(14, 0)))
	assert.True(t, resp.Slots[11].StartAt.Equal(mondayAt(17, 0)))

	// Ни один слот не пересекает обеденный перерыв
	for _, s := range resp.Slots {
		if s.StartAt.Before(mondayAt(12, 0)) {
			assert.False(t, s.EndAt.After(mondayAt(12, 0)), "slot %s crosses the lunch break", s.Label)
		}
	}
}

func TestExecute_ExistingAppointmentBlocksWithBuffer(t *testing.T) {
	existing := &domain.Appointment{
		BusinessID: 1,
		StartAt:    mondayAt(10, 0),
		EndAt:      mondayAt(11, 0),
		Status:     domain.StatusConfirmed,
	}

	uc := newTestUseCase(
		&stubAppointmentRepo{appointments: []*domain.Appointment{existing}},
		&stubScheduleRepo{hours: mondayHours()},
		&stubPolicyRepo{policy: testPolicy()},
		sunday,
	)

	resp, err := uc.Execute(context.Background(), &Request{
		BusinessID:      1,
		DurationMinutes: 60,
		RangeStart:      monday,
		RangeEnd:        monday,
	})
	require.NoError(t, err)

	// Занятый интервал с буфером: 09:50-11:10
	// Часовой слот не помещается в утро ни до, ни после него
	for _, s := range resp.Slots {
		assert.False(t, s.StartAt.Before(mondayAt(14, 0)), "morning slot %s should be blocked", s.Label)
	}
	require.Len(t, resp.Slots, 7)
	assert.True(t, resp.Slots[0].StartAt.Equal(mondayAt(14, 0)))
}

func TestExecute_ShortServiceFitsAroundAppointment(t *testing.T) {
	existing := &domain.Appointment{
		BusinessID: 1,
		StartAt:    mondayAt(10, 0),
		EndAt:      mondayAt(11, 0),
		Status:     domain.StatusConfirmed,
	}

	uc := newTestUseCase(
		&stubAppointmentRepo{appointments: []*domain.Appointment{existing}},
		&stubScheduleRepo{hours: mondayHours()},
		&stubPolicyRepo{policy: testPolicy()},
		sunday,
	)

	resp, err := uc.Execute(context.Background(), &Request{
		BusinessID:      1,
		DurationMinutes: 30,
		RangeStart:      monday,
		RangeEnd:        monday,
	})
	require.NoError(t, err)

	// 09:00-09:30 свободен (заканчивается до 09:50), 09:30 пересекает буфер,
	// 11:30-12:00 свободен (начинается после 11:10)
	starts := make(map[string]bool)
	for _, s := range resp.Slots {
		starts[s.StartAt.Format("15:04")] = true
	}
	assert.True(t, starts["09:00"])
	assert.False(t, starts["09:30"])
	assert.False(t, starts["10:00"])
	assert.False(t, starts["10:30"])
	assert.False(t, starts["11:00"])
	assert.True(t, starts["11:30"])
}

func TestExecute_MinNoticeRoundsUpToGrid(t *testing.T) {
	// Сейчас понедельник 13:10, minNotice 2 часа -> порог 15:10
	// Сетка привязана к началу диапазона 14:00, первый слот 15:30
	uc := newTestUseCase(
		&stubAppointmentRepo{},
		&stubScheduleRepo{hours: mondayHours()},
		&stubPolicyRepo{policy: testPolicy()},
		mondayAt(13, 10),
	)

	resp, err := uc.Execute(context.Background(), &Request{
		BusinessID:      1,
		DurationMinutes: 60,
		RangeStart:      monday,
		RangeEnd:        monday,
	})
	require.NoError(t, err)

	require.NotEmpty(t, resp.Slots)
	assert.True(t, resp.Slots[0].StartAt.Equal(mondayAt(15, 30)))
}

func TestExecute_TimeWindowFilter(t *testing.T) {
	uc := newTestUseCase(
		&stubAppointmentRepo{},
		&stubScheduleRepo{hours: mondayHours()},
		&stubPolicyRepo{policy: testPolicy()},
		sunday,
	)

	resp, err := uc.Execute(context.Background(), &Request{
		BusinessID:      1,
		DurationMinutes: 60,
		RangeStart:      monday,
		RangeEnd:        monday,
		Window:          &TimeWindow{From: "12:00", To: "18:00"},
	})
	require.NoError(t, err)

	require.Len(t, resp.Slots, 7)
	for _, s := range resp.Slots {
		assert.False(t, s.StartAt.Before(mondayAt(12, 0)))
	}
}

func TestExecute_BlackoutDateSkipped(t *testing.T) {
	policy := testPolicy()
	policy.BlackoutDates = []time.Time{monday}

	uc := newTestUseCase(
		&stubAppointmentRepo{},
		&stubScheduleRepo{hours: mondayHours()},
		&stubPolicyRepo{policy: policy},
		sunday,
	)

	resp, err := uc.Execute(context.Background(), &Request{
		BusinessID:      1,
		DurationMinutes: 60,
		RangeStart:      monday,
		RangeEnd:        monday,
	})
	require.NoError(t, err)
	assert.Empty(t, resp.Slots)
}

func TestExecute_ExceptionClosesDay(t *testing.T) {
	uc := newTestUseCase(
		&stubAppointmentRepo{},
		&stubScheduleRepo{
			hours: mondayHours(),
			exceptions: []*domain.DateException{
				{BusinessID: 1, Date: monday, IsClosed: true, Reason: ptr.Ptr("holiday")},
			},
		},
		&stubPolicyRepo{policy: testPolicy()},
		sunday,
	)

	resp, err := uc.Execute(context.Background(), &Request{
		BusinessID:      1,
		DurationMinutes: 60,
		RangeStart:      monday,
		RangeEnd:        monday,
	})
	require.NoError(t, err)
	assert.Empty(t, resp.Slots)
}

func TestExecute_ExceptionOverridesHours(t *testing.T) {
	// Сокращённый день: исключение полностью заменяет недельное расписание
	uc := newTestUseCase(
		&stubAppointmentRepo{},
		&stubScheduleRepo{
			hours: mondayHours(),
			exceptions: []*domain.DateException{
				{BusinessID: 1, Date: monday, Range1: timeRange("10:00", "13:00")},
			},
		},
		&stubPolicyRepo{policy: testPolicy()},
		sunday,
	)

	resp, err := uc.Execute(context.Background(), &Request{
		BusinessID:      1,
		DurationMinutes: 60,
		RangeStart:      monday,
		RangeEnd:        monday,
	})
	require.NoError(t, err)

	// 10:00, 10:30, 11:00, 11:30, 12:00
	require.Len(t, resp.Slots, 5)
	assert.True(t, resp.Slots[0].StartAt.Equal(mondayAt(10, 0)))
	assert.True(t, resp.Slots[4].StartAt.Equal(mondayAt(12, 0)))
}

func TestExecute_DailyLimit(t *testing.T) {
	policy := testPolicy()
	policy.MaxDailyAppointments = 2

	existing := &domain.Appointment{
		BusinessID: 1,
		StartAt:    mondayAt(9, 0),
		EndAt:      mondayAt(9, 30),
		Status:     domain.StatusConfirmed,
	}

	uc := newTestUseCase(
		&stubAppointmentRepo{appointments: []*domain.Appointment{existing}},
		&stubScheduleRepo{hours: mondayHours()},
		&stubPolicyRepo{policy: policy},
		sunday,
	)

	resp, err := uc.Execute(context.Background(), &Request{
		BusinessID:      1,
		DurationMinutes: 30,
		RangeStart:      monday,
		RangeEnd:        monday,
	})
	require.NoError(t, err)

	// Лимит 2, одна запись уже есть - предлагаем не больше одного слота
	assert.Len(t, resp.Slots, 1)
}

func TestExecute_DayAtLimitSkipped(t *testing.T) {
	policy := testPolicy()
	policy.MaxDailyAppointments = 1

	existing := &domain.Appointment{
		BusinessID: 1,
		StartAt:    mondayAt(9, 0),
		EndAt:      mondayAt(9, 30),
		Status:     domain.StatusConfirmed,
	}

	uc := newTestUseCase(
		&stubAppointmentRepo{appointments: []*domain.Appointment{existing}},
		&stubScheduleRepo{hours: mondayHours()},
		&stubPolicyRepo{policy: policy},
		sunday,
	)

	resp, err := uc.Execute(context.Background(), &Request{
		BusinessID:      1,
		DurationMinutes: 30,
		RangeStart:      monday,
		RangeEnd:        monday,
	})
	require.NoError(t, err)
	assert.Empty(t, resp.Slots)
}

func TestExecute_SameDayForbidden(t *testing.T) {
	policy := testPolicy()
	policy.AllowSameDay = false

	uc := newTestUseCase(
		&stubAppointmentRepo{},
		&stubScheduleRepo{hours: mondayHours()},
		&stubPolicyRepo{policy: policy},
		mondayAt(8, 0),
	)

	resp, err := uc.Execute(context.Background(), &Request{
		BusinessID:      1,
		DurationMinutes: 60,
		RangeStart:      monday,
		RangeEnd:        monday,
	})
	require.NoError(t, err)
	assert.Empty(t, resp.Slots)
}

func TestExecute_RangeClampedToBookingWindow(t *testing.T) {
	policy := testPolicy()
	policy.BookingWindowDays = 3

	uc := newTestUseCase(
		&stubAppointmentRepo{},
		&stubScheduleRepo{hours: mondayHours()},
		&stubPolicyRepo{policy: policy},
		sunday,
	)

	// Запрашиваем следующий понедельник (22-е), он за горизонтом 3 дня
	nextMonday := monday.AddDate(0, 0, 7)
	resp, err := uc.Execute(context.Background(), &Request{
		BusinessID:      1,
		DurationMinutes: 60,
		RangeStart:      nextMonday,
		RangeEnd:        nextMonday,
	})
	require.NoError(t, err)
	assert.Empty(t, resp.Slots)
}

func TestExecute_DefaultPolicyWhenNotConfigured(t *testing.T) {
	uc := newTestUseCase(
		&stubAppointmentRepo{},
		&stubScheduleRepo{hours: mondayHours()},
		&stubPolicyRepo{},
		sunday,
	)

	resp, err := uc.Execute(context.Background(), &Request{
		BusinessID:      1,
		DurationMinutes: 60,
		RangeStart:      monday,
		RangeEnd:        monday,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Slots)
	assert.Equal(t, domain.DefaultTimezone, resp.Timezone)
}

func TestExecute_Limit(t *testing.T) {
	uc := newTestUseCase(
		&stubAppointmentRepo{},
		&stubScheduleRepo{hours: mondayHours()},
		&stubPolicyRepo{policy: testPolicy()},
		sunday,
	)

	resp, err := uc.Execute(context.Background(), &Request{
		BusinessID:      1,
		DurationMinutes: 60,
		RangeStart:      monday,
		RangeEnd:        monday.AddDate(0, 0, 7),
		Limit:           3,
	})
	require.NoError(t, err)
	assert.Len(t, resp.Slots, 3)
}

func TestExecute_Validation(t *testing.T) {
	uc := newTestUseCase(
		&stubAppointmentRepo{},
		&stubScheduleRepo{hours: mondayHours()},
		&stubPolicyRepo{policy: testPolicy()},
		sunday,
	)

	_, err := uc.Execute(context.Background(), &Request{
		BusinessID:      0,
		DurationMinutes: 60,
		RangeStart:      monday,
		RangeEnd:        monday,
	})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = uc.Execute(context.Background(), &Request{
		BusinessID:      1,
		DurationMinutes: 60,
		RangeStart:      monday,
		RangeEnd:        monday.AddDate(0, 0, -1),
	})
	assert.ErrorIs(t, err, ErrInvalidRange)
}
