package domain

import (
	"time"

	"github.com/avkor/SMB-SchedulingService/pkg/types"
)

// DraftStage стадия диалога бронирования
type DraftStage string

const (
	StageIdle    DraftStage = "idle"    // нет активной попытки бронирования
	StageOffer   DraftStage = "offer"   // собираем поля / предложены слоты
	StageConfirm DraftStage = "confirm" // все поля собраны, ждём да/нет
)

// DraftIntent целевая операция текущего диалога
type DraftIntent string

const (
	IntentBook       DraftIntent = "book"
	IntentReschedule DraftIntent = "reschedule"
	IntentCancel     DraftIntent = "cancel"
)

// OfferedSlot слот, предложенный клиенту в рамках диалога
type OfferedSlot struct {
	StartAt time.Time `json:"startAt"`
	EndAt   time.Time `json:"endAt"`
	Label   string    `json:"label"`
}

// ConversationDraft накопительный черновик бронирования одного разговора
// Хранится целиком как один JSON-блоб по conversation id
// и перезаписывается полностью на каждом ходе диалога
type ConversationDraft struct {
	ConversationID string      `json:"conversationId"`
	BusinessID     int64       `json:"businessId"`
	Stage          DraftStage  `json:"stage"`
	Intent         DraftIntent `json:"intent,omitempty"`

	// Частично заполненные поля бронирования
	ServiceID       *int64            `json:"serviceId,omitempty"`
	ServiceName     string            `json:"serviceName,omitempty"`
	DurationMinutes int               `json:"durationMinutes,omitempty"`
	Date            *time.Time        `json:"date,omitempty"`    // желаемая дата (локальная полночь)
	TimeOfDay       *types.TimeString `json:"timeOfDay,omitempty"` // точное время, если названо
	DayPart         string            `json:"dayPart,omitempty"` // morning/afternoon/evening
	RawTimeHint     string            `json:"rawTimeHint,omitempty"`
	CustomerName    string            `json:"customerName,omitempty"`
	CustomerPhone   string            `json:"customerPhone,omitempty"`

	// Выбранный кандидат (заполняется при переходе в confirm)
	ChosenStartAt *time.Time `json:"chosenStartAt,omitempty"`
	ChosenEndAt   *time.Time `json:"chosenEndAt,omitempty"`

	// Для reschedule: запись, которую переносим
	RescheduleAppointmentID *int64 `json:"rescheduleAppointmentId,omitempty"`

	// Кэш предложенных слотов с собственным сроком актуальности
	OfferedSlots   []OfferedSlot `json:"offeredSlots,omitempty"`
	OffersExpireAt *time.Time    `json:"offersExpireAt,omitempty"`

	ExpiresAt time.Time `json:"expiresAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewDraft создает пустой черновик в стадии idle
func NewDraft(conversationID string, businessID int64, now time.Time) *ConversationDraft {
	return &ConversationDraft{
		ConversationID: conversationID,
		BusinessID:     businessID,
		Stage:          StageIdle,
		ExpiresAt:      now.Add(DefaultDraftTTLMinutes * time.Minute),
		UpdatedAt:      now,
	}
}

// IsExpired проверяет, истёк ли черновик
// Истёкший черновик целиком отбрасывается, диалог начинается заново с idle
func (d *ConversationDraft) IsExpired(now time.Time) bool {
	return !d.ExpiresAt.After(now)
}

// Touch продлевает время жизни черновика
// Вызывается на каждом успешном чтении/записи
func (d *ConversationDraft) Touch(now time.Time) {
	d.ExpiresAt = now.Add(DefaultDraftTTLMinutes * time.Minute)
	d.UpdatedAt = now
}

// HasService returns true if a service has been resolved
func (d *ConversationDraft) HasService() bool {
	return d.ServiceID != nil
}

// HasDate returns true if a desired date is known
func (d *ConversationDraft) HasDate() bool {
	return d.Date != nil
}

// HasTimeChoice returns true if either an exact time or a day part is known
func (d *ConversationDraft) HasTimeChoice() bool {
	return d.TimeOfDay != nil || d.DayPart != ""
}

// HasName returns true if the customer name is known
func (d *ConversationDraft) HasName() bool {
	return d.CustomerName != ""
}

// HasPhone returns true if the customer phone is known
func (d *ConversationDraft) HasPhone() bool {
	return d.CustomerPhone != ""
}

// IsComplete проверяет, что собраны все поля, необходимые для confirm:
// услуга, понятные дата и время (точное или часть дня), имя и телефон
func (d *ConversationDraft) IsComplete() bool {
	return d.HasService() && d.HasDate() && d.HasTimeChoice() && d.HasName() && d.HasPhone()
}

// HasChosenSlot returns true if a concrete candidate slot has been picked
func (d *ConversationDraft) HasChosenSlot() bool {
	return d.ChosenStartAt != nil && d.ChosenEndAt != nil
}

// OffersValid проверяет, что предложенные слоты ещё актуальны
func (d *ConversationDraft) OffersValid(now time.Time) bool {
	return len(d.OfferedSlots) > 0 && d.OffersExpireAt != nil && d.OffersExpireAt.After(now)
}

// SetOffers запоминает предложенные слоты с окном актуальности
func (d *ConversationDraft) SetOffers(slots []OfferedSlot, now time.Time) {
	d.OfferedSlots = slots
	expires := now.Add(DefaultOfferTTLMinutes * time.Minute)
	d.OffersExpireAt = &expires
}

// ClearTime сбрасывает только выбор времени, сохраняя остальные поля
// Используется при ответе "change" на стадии confirm
func (d *ConversationDraft) ClearTime() {
	d.TimeOfDay = nil
	d.DayPart = ""
	d.RawTimeHint = ""
	d.ChosenStartAt = nil
	d.ChosenEndAt = nil
	d.OfferedSlots = nil
	d.OffersExpireAt = nil
}
