package domain

import (
	"time"

	"github.com/avkor/SMB-SchedulingService/pkg/types"
)

// TimeRange временной диапазон внутри одного дня в локальном времени бизнеса
type TimeRange struct {
	Start types.TimeString
	End   types.TimeString
}

// IsValid returns true if the range is well-formed (start strictly before end)
func (r TimeRange) IsValid() bool {
	if r.Start.IsZero() || r.End.IsZero() {
		return false
	}
	if r.Start.Validate() != nil || r.End.Validate() != nil {
		return false
	}
	return r.Start.IsBefore(r.End)
}

// WeeklyHours расписание работы бизнеса на один день недели
// Поддерживает до двух непересекающихся диапазонов (например, до и после обеда)
type WeeklyHours struct {
	ID         int64
	BusinessID int64
	Weekday    time.Weekday
	IsOpen     bool
	Range1     *TimeRange
	Range2     *TimeRange
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// OpenRanges возвращает валидные рабочие диапазоны дня
// Некорректная конфигурация (range1 после range2, start после end)
// трактуется как "день закрыт", а не как ошибка
func (h *WeeklyHours) OpenRanges() []TimeRange {
	if h == nil || !h.IsOpen {
		return nil
	}
	return validRanges(h.Range1, h.Range2)
}

// DateException переопределение расписания на конкретную календарную дату
// Полностью заменяет WeeklyHours этого дня: закрытый день остаётся закрытым,
// кастомные диапазоны заменяют дефолтные
type DateException struct {
	ID         int64
	BusinessID int64
	Date       time.Time // дата без времени, в локальной зоне бизнеса
	IsClosed   bool
	Range1     *TimeRange
	Range2     *TimeRange
	Reason     *string
	CreatedAt  time.Time
}

// OpenRanges возвращает валидные рабочие диапазоны исключения
func (e *DateException) OpenRanges() []TimeRange {
	if e == nil || e.IsClosed {
		return nil
	}
	return validRanges(e.Range1, e.Range2)
}

// validRanges отбрасывает некорректные диапазоны
// Если оба диапазона заданы, range1 должен заканчиваться не позже начала range2
func validRanges(r1, r2 *TimeRange) []TimeRange {
	ranges := make([]TimeRange, 0, 2)

	if r1 != nil && r1.IsValid() {
		ranges = append(ranges, *r1)
	}
	if r2 != nil && r2.IsValid() {
		// Диапазоны не должны пересекаться
		if len(ranges) == 0 {
			ranges = append(ranges, *r2)
		} else if !r2.Start.IsBefore(ranges[0].End) {
			ranges = append(ranges, *r2)
		} else {
			// Пересекающиеся диапазоны - считаем весь день некорректным (закрытым)
			return nil
		}
	}

	return ranges
}

// DaySchedule разрешённое расписание на конкретную дату
// (после применения DateException поверх WeeklyHours)
type DaySchedule struct {
	IsOpen bool
	Ranges []TimeRange
}

// ResolveDaySchedule применяет исключение поверх недельного расписания
func ResolveDaySchedule(hours *WeeklyHours, exception *DateException) DaySchedule {
	if exception != nil {
		ranges := exception.OpenRanges()
		return DaySchedule{IsOpen: len(ranges) > 0, Ranges: ranges}
	}

	ranges := hours.OpenRanges()
	return DaySchedule{IsOpen: len(ranges) > 0, Ranges: ranges}
}
