package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/avkor/SMB-SchedulingService/internal/domain"
	"github.com/avkor/SMB-SchedulingService/pkg/types"
)

var (
	// ErrInvalidWeekday возвращается при некорректном дне недели
	ErrInvalidWeekday = errors.New("invalid weekday")

	// ErrInvalidDate возвращается при некорректном формате даты
	ErrInvalidDate = errors.New("invalid date format, expected YYYY-MM-DD")

	// ErrInvalidTime возвращается при некорректном формате времени
	ErrInvalidTime = errors.New("invalid time format, expected HH:MM")
)

// Request/Response модели

// TimeRangeDTO рабочий диапазон в формате "HH:MM"
type TimeRangeDTO struct {
	Start string `json:"start"` // "09:00"
	End   string `json:"end"`   // "18:00"
}

// WeeklyHoursEntry расписание на один день недели
type WeeklyHoursEntry struct {
	Weekday int           `json:"weekday"` // 0 = воскресенье ... 6 = суббота
	IsOpen  bool          `json:"isOpen"`
	Range1  *TimeRangeDTO `json:"range1,omitempty"`
	Range2  *TimeRangeDTO `json:"range2,omitempty"`
}

// DateExceptionEntry переопределение расписания на конкретную дату
type DateExceptionEntry struct {
	Date     string        `json:"date"` // "2025-10-15"
	IsClosed bool          `json:"isClosed"`
	Range1   *TimeRangeDTO `json:"range1,omitempty"`
	Range2   *TimeRangeDTO `json:"range2,omitempty"`
	Reason   *string       `json:"reason,omitempty"`
}

// ScheduleResponse полное расписание бизнеса
type ScheduleResponse struct {
	BusinessID  int64                `json:"businessId"`
	WeeklyHours []WeeklyHoursEntry   `json:"weeklyHours"`
	Exceptions  []DateExceptionEntry `json:"exceptions"`
}

// UpdateScheduleRequest запрос на обновление расписания
// Переданные дни недели и исключения заменяют существующие
type UpdateScheduleRequest struct {
	BusinessID           int64                `json:"businessId"`
	WeeklyHours          []WeeklyHoursEntry   `json:"weeklyHours,omitempty"`
	Exceptions           []DateExceptionEntry `json:"exceptions,omitempty"`
	RemoveExceptionDates []string             `json:"removeExceptionDates,omitempty"`
}

// PolicyResponse политика бронирования бизнеса
type PolicyResponse struct {
	BusinessID           int64    `json:"businessId"`
	Timezone             string   `json:"timezone"`
	BufferMinutes        int      `json:"bufferMinutes"`
	GranularityMinutes   int      `json:"granularityMinutes"`
	MinNoticeHours       int      `json:"minNoticeHours"`
	MaxDailyAppointments int      `json:"maxDailyAppointments"`
	BookingWindowDays    int      `json:"bookingWindowDays"`
	BlackoutDates        []string `json:"blackoutDates"`
	AllowSameDay         bool     `json:"allowSameDay"`
	RequireConfirmation  bool     `json:"requireConfirmation"`
	IsDefault            bool     `json:"isDefault"` // true, если бизнес ещё не настроил политику
}

// UpdatePolicyRequest запрос на обновление политики бронирования
type UpdatePolicyRequest struct {
	BusinessID           int64    `json:"businessId"`
	Timezone             string   `json:"timezone"`
	BufferMinutes        int      `json:"bufferMinutes"`
	GranularityMinutes   int      `json:"granularityMinutes"`
	MinNoticeHours       int      `json:"minNoticeHours"`
	MaxDailyAppointments int      `json:"maxDailyAppointments"`
	BookingWindowDays    int      `json:"bookingWindowDays"`
	BlackoutDates        []string `json:"blackoutDates,omitempty"`
	AllowSameDay         bool     `json:"allowSameDay"`
	RequireConfirmation  bool     `json:"requireConfirmation"`
}

// Методы конвертации

// FromDomainWeeklyHours конвертирует domain модель в DTO
func FromDomainWeeklyHours(h *domain.WeeklyHours) WeeklyHoursEntry {
	return WeeklyHoursEntry{
		Weekday: int(h.Weekday),
		IsOpen:  h.IsOpen,
		Range1:  fromDomainRange(h.Range1),
		Range2:  fromDomainRange(h.Range2),
	}
}

// FromDomainException конвертирует domain модель в DTO
func FromDomainException(e *domain.DateException) DateExceptionEntry {
	return DateExceptionEntry{
		Date:     e.Date.Format(domain.DateFormat),
		IsClosed: e.IsClosed,
		Range1:   fromDomainRange(e.Range1),
		Range2:   fromDomainRange(e.Range2),
		Reason:   e.Reason,
	}
}

// FromDomainSchedule собирает полный ответ из domain моделей
func FromDomainSchedule(businessID int64, hours []*domain.WeeklyHours, exceptions []*domain.DateException) *ScheduleResponse {
	resp := &ScheduleResponse{
		BusinessID:  businessID,
		WeeklyHours: make([]WeeklyHoursEntry, 0, len(hours)),
		Exceptions:  make([]DateExceptionEntry, 0, len(exceptions)),
	}
	for _, h := range hours {
		resp.WeeklyHours = append(resp.WeeklyHours, FromDomainWeeklyHours(h))
	}
	for _, e := range exceptions {
		resp.Exceptions = append(resp.Exceptions, FromDomainException(e))
	}
	return resp
}

// ToDomainWeeklyHours конвертирует DTO в domain модель с валидацией
func (e *WeeklyHoursEntry) ToDomainWeeklyHours(businessID int64) (*domain.WeeklyHours, error) {
	if e.Weekday < 0 || e.Weekday > 6 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidWeekday, e.Weekday)
	}

	r1, err := toDomainRange(e.Range1)
	if err != nil {
		return nil, err
	}
	r2, err := toDomainRange(e.Range2)
	if err != nil {
		return nil, err
	}

	return &domain.WeeklyHours{
		BusinessID: businessID,
		Weekday:    time.Weekday(e.Weekday),
		IsOpen:     e.IsOpen,
		Range1:     r1,
		Range2:     r2,
	}, nil
}

// ToDomainException конвертирует DTO в domain модель с валидацией
func (e *DateExceptionEntry) ToDomainException(businessID int64) (*domain.DateException, error) {
	date, err := time.Parse(domain.DateFormat, e.Date)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidDate, e.Date)
	}

	r1, err := toDomainRange(e.Range1)
	if err != nil {
		return nil, err
	}
	r2, err := toDomainRange(e.Range2)
	if err != nil {
		return nil, err
	}

	return &domain.DateException{
		BusinessID: businessID,
		Date:       date,
		IsClosed:   e.IsClosed,
		Range1:     r1,
		Range2:     r2,
		Reason:     e.Reason,
	}, nil
}

// FromDomainPolicy конвертирует domain модель в DTO
func FromDomainPolicy(p *domain.BookingPolicy, isDefault bool) *PolicyResponse {
	blackouts := make([]string, 0, len(p.BlackoutDates))
	for _, d := range p.BlackoutDates {
		blackouts = append(blackouts, d.Format(domain.DateFormat))
	}

	return &PolicyResponse{
		BusinessID:           p.BusinessID,
		Timezone:             p.Timezone,
		BufferMinutes:        p.BufferMinutes,
		GranularityMinutes:   p.GranularityMinutes,
		MinNoticeHours:       p.MinNoticeHours,
		MaxDailyAppointments: p.MaxDailyAppointments,
		BookingWindowDays:    p.BookingWindowDays,
		BlackoutDates:        blackouts,
		AllowSameDay:         p.AllowSameDay,
		RequireConfirmation:  p.RequireConfirmation,
		IsDefault:            isDefault,
	}
}

// ToDomainPolicy конвертирует DTO в domain модель
func (r *UpdatePolicyRequest) ToDomainPolicy() (*domain.BookingPolicy, error) {
	blackouts := make([]time.Time, 0, len(r.BlackoutDates))
	for _, s := range r.BlackoutDates {
		d, err := time.Parse(domain.DateFormat, s)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidDate, s)
		}
		blackouts = append(blackouts, d)
	}

	return &domain.BookingPolicy{
		BusinessID:           r.BusinessID,
		Timezone:             r.Timezone,
		BufferMinutes:        r.BufferMinutes,
		GranularityMinutes:   r.GranularityMinutes,
		MinNoticeHours:       r.MinNoticeHours,
		MaxDailyAppointments: r.MaxDailyAppointments,
		BookingWindowDays:    r.BookingWindowDays,
		BlackoutDates:        blackouts,
		AllowSameDay:         r.AllowSameDay,
		RequireConfirmation:  r.RequireConfirmation,
	}, nil
}

func fromDomainRange(r *domain.TimeRange) *TimeRangeDTO {
	if r == nil {
		return nil
	}
	return &TimeRangeDTO{Start: r.Start.String(), End: r.End.String()}
}

func toDomainRange(dto *TimeRangeDTO) (*domain.TimeRange, error) {
	if dto == nil {
		return nil, nil
	}

	start, err := types.NewTimeStringFromString(dto.Start)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidTime, dto.Start)
	}
	end, err := types.NewTimeStringFromString(dto.End)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidTime, dto.End)
	}

	return &domain.TimeRange{Start: start, End: end}, nil
}
