package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avkor/SMB-SchedulingService/pkg/ptr"
	"github.com/avkor/SMB-SchedulingService/pkg/types"
)

func TestConversationDraft_Expiry(t *testing.T) {
	now := time.Date(2025, 9, 15, 12, 0, 0, 0, time.UTC)
	draft := NewDraft("conv-1", 10, now)

	assert.False(t, draft.IsExpired(now))
	assert.False(t, draft.IsExpired(now.Add(DefaultDraftTTLMinutes*time.Minute-time.Second)))
	assert.True(t, draft.IsExpired(now.Add(DefaultDraftTTLMinutes*time.Minute)))

	// Touch продлевает время жизни
	later := now.Add(20 * time.Minute)
	draft.Touch(later)
	assert.False(t, draft.IsExpired(now.Add(DefaultDraftTTLMinutes*time.Minute)))
}

func TestConversationDraft_IsComplete(t *testing.T) {
	now := time.Date(2025, 9, 15, 12, 0, 0, 0, time.UTC)
	draft := NewDraft("conv-1", 10, now)
	require.False(t, draft.IsComplete())

	draft.ServiceID = ptr.Ptr(int64(5))
	draft.ServiceName = "Haircut"
	date := time.Date(2025, 9, 16, 0, 0, 0, 0, time.UTC)
	draft.Date = &date
	draft.DayPart = "morning"
	require.False(t, draft.IsComplete())

	draft.CustomerName = "Maria"
	require.False(t, draft.IsComplete())

	draft.CustomerPhone = "5511988887777"
	assert.True(t, draft.IsComplete())
}

func TestConversationDraft_ClearTime(t *testing.T) {
	now := time.Date(2025, 9, 15, 12, 0, 0, 0, time.UTC)
	draft := NewDraft("conv-1", 10, now)
	draft.ServiceID = ptr.Ptr(int64(5))
	draft.CustomerName = "Maria"
	draft.CustomerPhone = "5511988887777"

	date := time.Date(2025, 9, 16, 0, 0, 0, 0, time.UTC)
	draft.Date = &date
	tod := types.TimeString("15:00")
	draft.TimeOfDay = &tod
	start := time.Date(2025, 9, 16, 18, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)
	draft.ChosenStartAt = &start
	draft.ChosenEndAt = &end
	draft.SetOffers([]OfferedSlot{{StartAt: start, EndAt: end, Label: "Tue 16/09 at 15:00"}}, now)

	draft.ClearTime()

	// Время сброшено, остальные поля сохранены
	assert.Nil(t, draft.TimeOfDay)
	assert.Empty(t, draft.DayPart)
	assert.False(t, draft.HasChosenSlot())
	assert.Empty(t, draft.OfferedSlots)
	assert.True(t, draft.HasService())
	assert.True(t, draft.HasDate())
	assert.True(t, draft.HasName())
	assert.True(t, draft.HasPhone())
}

func TestConversationDraft_OffersValid(t *testing.T) {
	now := time.Date(2025, 9, 15, 12, 0, 0, 0, time.UTC)
	draft := NewDraft("conv-1", 10, now)

	assert.False(t, draft.OffersValid(now))

	start := now.Add(24 * time.Hour)
	draft.SetOffers([]OfferedSlot{{StartAt: start, EndAt: start.Add(time.Hour)}}, now)
	assert.True(t, draft.OffersValid(now))
	assert.False(t, draft.OffersValid(now.Add(DefaultOfferTTLMinutes*time.Minute+time.Second)))
}

func TestResolveDaySchedule(t *testing.T) {
	hours := &WeeklyHours{
		BusinessID: 10,
		Weekday:    time.Monday,
		IsOpen:     true,
		Range1:     &TimeRange{Start: "09:00", End: "12:00"},
		Range2:     &TimeRange{Start: "14:00", End: "18:00"},
	}

	t.Run("no exception uses weekly hours", func(t *testing.T) {
		day := ResolveDaySchedule(hours, nil)
		require.True(t, day.IsOpen)
		require.Len(t, day.Ranges, 2)
		assert.Equal(t, types.TimeString("09:00"), day.Ranges[0].Start)
	})

	t.Run("closed exception overrides open day", func(t *testing.T) {
		day := ResolveDaySchedule(hours, &DateException{IsClosed: true})
		assert.False(t, day.IsOpen)
	})

	t.Run("custom ranges replace weekly ranges", func(t *testing.T) {
		exc := &DateException{
			Range1: &TimeRange{Start: "10:00", End: "13:00"},
		}
		day := ResolveDaySchedule(hours, exc)
		require.True(t, day.IsOpen)
		require.Len(t, day.Ranges, 1)
		assert.Equal(t, types.TimeString("10:00"), day.Ranges[0].Start)
	})

	t.Run("malformed range means closed", func(t *testing.T) {
		bad := &WeeklyHours{
			IsOpen: true,
			Range1: &TimeRange{Start: "18:00", End: "09:00"},
		}
		day := ResolveDaySchedule(bad, nil)
		assert.False(t, day.IsOpen)
	})

	t.Run("overlapping ranges mean closed", func(t *testing.T) {
		bad := &WeeklyHours{
			IsOpen: true,
			Range1: &TimeRange{Start: "09:00", End: "14:00"},
			Range2: &TimeRange{Start: "12:00", End: "18:00"},
		}
		day := ResolveDaySchedule(bad, nil)
		assert.False(t, day.IsOpen)
	})
}

func TestAppointment_OverlapsWithBuffer(t *testing.T) {
	appt := &Appointment{
		Status:  StatusConfirmed,
		StartAt: time.Date(2025, 9, 15, 10, 0, 0, 0, time.UTC),
		EndAt:   time.Date(2025, 9, 15, 11, 0, 0, 0, time.UTC),
	}
	buffer := 10 * time.Minute

	// Слот 10:00-10:30 пересекается напрямую
	assert.True(t, appt.OverlapsWithBuffer(
		time.Date(2025, 9, 15, 10, 0, 0, 0, time.UTC),
		time.Date(2025, 9, 15, 10, 30, 0, 0, time.UTC), buffer))

	// Слот 11:00-12:00 граничит, но буфер делает его пересекающимся
	assert.True(t, appt.OverlapsWithBuffer(
		time.Date(2025, 9, 15, 11, 0, 0, 0, time.UTC),
		time.Date(2025, 9, 15, 12, 0, 0, 0, time.UTC), buffer))

	// Слот 11:10-12:10 за пределами буфера не пересекается
	assert.False(t, appt.OverlapsWithBuffer(
		time.Date(2025, 9, 15, 11, 10, 0, 0, time.UTC),
		time.Date(2025, 9, 15, 12, 10, 0, 0, time.UTC), buffer))

	// Без буфера граничащие интервалы не пересекаются
	assert.False(t, appt.OverlapsWithBuffer(
		time.Date(2025, 9, 15, 11, 0, 0, 0, time.UTC),
		time.Date(2025, 9, 15, 12, 0, 0, 0, time.UTC), 0))
}
