package domain

import "time"

// Slot represents a candidate time interval available for booking
// Эфемерное значение: не персистится, живёт в пределах одного предложения
type Slot struct {
	StartAt time.Time // абсолютный момент начала
	EndAt   time.Time // абсолютный момент конца
	Label   string    // человекочитаемая подпись в локальном времени бизнеса
}

// Duration returns the slot length
func (s Slot) Duration() time.Duration {
	return s.EndAt.Sub(s.StartAt)
}

// SameInterval проверяет совпадение интервалов двух слотов
func (s Slot) SameInterval(other Slot) bool {
	return s.StartAt.Equal(other.StartAt) && s.EndAt.Equal(other.EndAt)
}

// FormatSlotLabel строит подпись слота в локальном времени бизнеса
// Пример: "Mon 15/09 at 09:00"
func FormatSlotLabel(startAt time.Time, loc *time.Location) string {
	local := startAt.In(loc)
	return local.Format("Mon 02/01 at 15:04")
}
