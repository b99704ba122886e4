package find_slots

import (
	"time"

	"github.com/avkor/SMB-SchedulingService/internal/domain"
	"github.com/avkor/SMB-SchedulingService/pkg/types"
)

// buildDaySlots генерирует доступные слоты на один календарный день
// date - локальная полночь дня в зоне бизнеса
// earliestStart - абсолютный нижний порог начала слота (now + minNotice)
// remaining - сколько слотов ещё можно добавить в этот день (математика
// дневного лимита), отрицательное значение означает "без ограничения"
func buildDaySlots(
	date time.Time,
	schedule domain.DaySchedule,
	policy *domain.BookingPolicy,
	durationMinutes int,
	earliestStart time.Time,
	window *TimeWindow,
	appointments []*domain.Appointment,
	remaining int,
	loc *time.Location,
) []domain.Slot {
	if !schedule.IsOpen || remaining == 0 {
		return nil
	}

	granularity := time.Duration(policy.GranularityMinutes) * time.Minute
	duration := time.Duration(durationMinutes) * time.Minute
	buffer := time.Duration(policy.BufferMinutes) * time.Minute

	slots := make([]domain.Slot, 0)

	for _, r := range schedule.Ranges {
		rangeStart := r.Start.At(date, loc)
		rangeEnd := r.End.At(date, loc)

		// Сетка слотов привязана к началу рабочего диапазона:
		// порог minNotice округляется вверх до ближайшего шага сетки
		cursor := rangeStart
		if cursor.Before(earliestStart) {
			steps := (earliestStart.Sub(cursor) + granularity - 1) / granularity
			cursor = cursor.Add(granularity * steps)
		}

		for {
			slotEnd := cursor.Add(duration)
			// Слот должен целиком помещаться в рабочий диапазон
			if slotEnd.After(rangeEnd) {
				break
			}

			if window.Contains(types.NewTimeString(cursor.In(loc))) && !hasConflict(cursor, slotEnd, buffer, appointments) {
				slots = append(slots, domain.Slot{
					StartAt: cursor.UTC(),
					EndAt:   slotEnd.UTC(),
					Label:   domain.FormatSlotLabel(cursor, loc),
				})
				if remaining > 0 && len(slots) >= remaining {
					return slots
				}
			}

			cursor = cursor.Add(granularity)
		}
	}

	return slots
}

// hasConflict проверяет пересечение кандидата с существующими записями
// Буфер применяется с обеих сторон каждой записи, границы считаются
// свободными только при строгом неравенстве
func hasConflict(start, end time.Time, buffer time.Duration, appointments []*domain.Appointment) bool {
	for _, appt := range appointments {
		if appt.OverlapsWithBuffer(start, end, buffer) {
			return true
		}
	}
	return false
}

// countAppointmentsOnDay считает блокирующие записи, начинающиеся
// в указанную локальную дату
func countAppointmentsOnDay(appointments []*domain.Appointment, date time.Time, loc *time.Location) int {
	y, m, d := date.Date()
	count := 0
	for _, appt := range appointments {
		ay, am, ad := appt.StartAt.In(loc).Date()
		if ay == y && am == m && ad == d {
			count++
		}
	}
	return count
}

// localMidnight обрезает момент времени до локальной полуночи в зоне loc
func localMidnight(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}
