package appointments

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avkor/SMB-SchedulingService/internal/domain"
	appointmentRepo "github.com/avkor/SMB-SchedulingService/internal/infra/storage/appointment"
	"github.com/avkor/SMB-SchedulingService/internal/service/appointments/models"
)

type stubRepo struct {
	byID     map[int64]*domain.Appointment
	upcoming *domain.Appointment
	listed   []*domain.Appointment

	updatedID     int64
	updatedStatus domain.AppointmentStatus
	cancelledAt   *time.Time
	gotPhone      string
	gotFilter     domain.AppointmentsFilter
}

func (r *stubRepo) GetByID(_ context.Context, id int64) (*domain.Appointment, error) {
	appt, ok := r.byID[id]
	if !ok {
		return nil, appointmentRepo.ErrAppointmentNotFound
	}
	cp := *appt
	return &cp, nil
}

func (r *stubRepo) ListByBusinessWithFilter(_ context.Context, filter domain.AppointmentsFilter) ([]*domain.Appointment, error) {
	r.gotFilter = filter
	return r.listed, nil
}

func (r *stubRepo) FindUpcomingByPhone(_ context.Context, _ int64, phone string, _ time.Time) (*domain.Appointment, error) {
	r.gotPhone = phone
	if r.upcoming == nil {
		return nil, appointmentRepo.ErrAppointmentNotFound
	}
	cp := *r.upcoming
	return &cp, nil
}

func (r *stubRepo) UpdateStatus(_ context.Context, id int64, status domain.AppointmentStatus, cancelledAt *time.Time) error {
	r.updatedID = id
	r.updatedStatus = status
	r.cancelledAt = cancelledAt
	return nil
}

type fixedTimeProvider struct {
	now time.Time
}

func (p *fixedTimeProvider) Now() time.Time {
	return p.now
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func testAppointment(id, businessID int64, status domain.AppointmentStatus) *domain.Appointment {
	return &domain.Appointment{
		ID:            id,
		BusinessID:    businessID,
		CustomerName:  "Anna",
		CustomerPhone: "79990001122",
		StartAt:       time.Date(2025, 9, 16, 11, 0, 0, 0, time.UTC),
		EndAt:         time.Date(2025, 9, 16, 12, 0, 0, 0, time.UTC),
		Timezone:      "Europe/Moscow",
		Status:        status,
		ServiceName:   "Haircut",
	}
}

func newTestService(repo *stubRepo, now time.Time) *Service {
	svc := NewService(repo, nopLogger{})
	svc.timeProvider = &fixedTimeProvider{now: now}
	return svc
}

func TestCancel_Success(t *testing.T) {
	now := time.Date(2025, 9, 15, 10, 0, 0, 0, time.UTC)
	repo := &stubRepo{byID: map[int64]*domain.Appointment{
		42: testAppointment(42, 1, domain.StatusConfirmed),
	}}
	svc := newTestService(repo, now)

	appt, err := svc.Cancel(context.Background(), 1, 42)

	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, appt.Status)
	require.NotNil(t, appt.CancelledAt)
	assert.Equal(t, now, *appt.CancelledAt)
	assert.Equal(t, int64(42), repo.updatedID)
	assert.Equal(t, domain.StatusCancelled, repo.updatedStatus)
}

func TestCancel_NotFound(t *testing.T) {
	repo := &stubRepo{byID: map[int64]*domain.Appointment{}}
	svc := newTestService(repo, time.Now())

	_, err := svc.Cancel(context.Background(), 1, 42)

	assert.ErrorIs(t, err, ErrAppointmentNotFound)
}

func TestCancel_WrongBusiness(t *testing.T) {
	repo := &stubRepo{byID: map[int64]*domain.Appointment{
		42: testAppointment(42, 2, domain.StatusConfirmed),
	}}
	svc := newTestService(repo, time.Now())

	_, err := svc.Cancel(context.Background(), 1, 42)

	assert.ErrorIs(t, err, ErrAppointmentNotFound)
}

func TestCancel_AlreadyCancelled(t *testing.T) {
	repo := &stubRepo{byID: map[int64]*domain.Appointment{
		42: testAppointment(42, 1, domain.StatusCancelled),
	}}
	svc := newTestService(repo, time.Now())

	_, err := svc.Cancel(context.Background(), 1, 42)

	assert.ErrorIs(t, err, ErrCannotCancel)
}

func TestCancel_Completed(t *testing.T) {
	repo := &stubRepo{byID: map[int64]*domain.Appointment{
		42: testAppointment(42, 1, domain.StatusCompleted),
	}}
	svc := newTestService(repo, time.Now())

	_, err := svc.Cancel(context.Background(), 1, 42)

	assert.ErrorIs(t, err, ErrCannotCancel)
}

func TestFindUpcomingByPhone_NormalizesPhone(t *testing.T) {
	repo := &stubRepo{upcoming: testAppointment(7, 1, domain.StatusConfirmed)}
	svc := newTestService(repo, time.Now())

	appt, err := svc.FindUpcomingByPhone(context.Background(), 1, "+7 (999) 000-11-22")

	require.NoError(t, err)
	assert.Equal(t, int64(7), appt.ID)
	assert.Equal(t, "79990001122", repo.gotPhone)
}

func TestFindUpcomingByPhone_NotFound(t *testing.T) {
	repo := &stubRepo{}
	svc := newTestService(repo, time.Now())

	_, err := svc.FindUpcomingByPhone(context.Background(), 1, "79990001122")

	assert.ErrorIs(t, err, ErrAppointmentNotFound)
}

func TestFindUpcomingByPhone_EmptyPhone(t *testing.T) {
	repo := &stubRepo{}
	svc := newTestService(repo, time.Now())

	_, err := svc.FindUpcomingByPhone(context.Background(), 1, "---")

	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestList_FilterConversion(t *testing.T) {
	repo := &stubRepo{listed: []*domain.Appointment{
		testAppointment(1, 1, domain.StatusConfirmed),
		testAppointment(2, 1, domain.StatusPending),
	}}
	svc := newTestService(repo, time.Now())

	status := "confirmed"
	start := time.Date(2025, 9, 15, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 9, 22, 0, 0, 0, 0, time.UTC)

	resp, err := svc.List(context.Background(), &models.ListAppointmentsRequest{
		BusinessID: 1,
		StartAt:    &start,
		EndAt:      &end,
		Status:     &status,
	})

	require.NoError(t, err)
	assert.Len(t, resp.Appointments, 2)
	require.NotNil(t, repo.gotFilter.Status)
	assert.Equal(t, domain.StatusConfirmed, *repo.gotFilter.Status)
	assert.Equal(t, &start, repo.gotFilter.StartAt)
}

func TestList_InvalidStatus(t *testing.T) {
	repo := &stubRepo{}
	svc := newTestService(repo, time.Now())

	status := "parked"
	_, err := svc.List(context.Background(), &models.ListAppointmentsRequest{
		BusinessID: 1,
		Status:     &status,
	})

	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestGetByID_WrongBusiness(t *testing.T) {
	repo := &stubRepo{byID: map[int64]*domain.Appointment{
		42: testAppointment(42, 2, domain.StatusConfirmed),
	}}
	svc := newTestService(repo, time.Now())

	_, err := svc.GetByID(context.Background(), 1, 42)

	assert.ErrorIs(t, err, ErrAppointmentNotFound)
}
