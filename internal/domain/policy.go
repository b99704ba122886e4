package domain

import "time"

// BookingPolicy represents the booking policy of a business
// Read-only input for the availability calculator and the conflict guard
type BookingPolicy struct {
	ID         int64
	BusinessID int64

	Timezone string // IANA-зона бизнеса (например, "America/Sao_Paulo")

	BufferMinutes        int // минимальный зазор до и после каждой записи
	GranularityMinutes   int // шаг генерации слотов
	MinNoticeHours       int // минимальное время до начала записи
	MaxDailyAppointments int // 0 = без ограничения
	BookingWindowDays    int // горизонт поиска слотов

	BlackoutDates []time.Time // даты, полностью закрытые для бронирования

	AllowSameDay        bool
	RequireConfirmation bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// DefaultPolicy возвращает политику с дефолтными значениями
// Используется, когда бизнес ещё не настроил собственную
func DefaultPolicy(businessID int64) *BookingPolicy {
	return &BookingPolicy{
		BusinessID:           businessID,
		Timezone:             DefaultTimezone,
		BufferMinutes:        DefaultBufferMinutes,
		GranularityMinutes:   DefaultGranularityMinutes,
		MinNoticeHours:       DefaultMinNoticeHours,
		MaxDailyAppointments: DefaultMaxDailyAppointments,
		BookingWindowDays:    DefaultBookingWindowDays,
		AllowSameDay:         true,
		RequireConfirmation:  false,
	}
}

// Location возвращает временную зону бизнеса
// При некорректной зоне возвращает UTC
func (p *BookingPolicy) Location() *time.Location {
	loc, err := time.LoadLocation(p.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// HasDailyLimit returns true if there's a cap on appointments per day
func (p *BookingPolicy) HasDailyLimit() bool {
	return p.MaxDailyAppointments > 0
}

// IsBlackout проверяет, является ли дата полностью закрытой для бронирования
// Сравнение по календарной дате, без учета времени
func (p *BookingPolicy) IsBlackout(date time.Time) bool {
	y, m, d := date.Date()
	for _, b := range p.BlackoutDates {
		by, bm, bd := b.Date()
		if y == by && m == bm && d == bd {
			return true
		}
	}
	return false
}
