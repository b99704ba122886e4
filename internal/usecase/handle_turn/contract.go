package handle_turn

import (
	"context"
	"time"

	"github.com/avkor/SMB-SchedulingService/internal/domain"
	"github.com/avkor/SMB-SchedulingService/internal/integrations/catalogservice"
	"github.com/avkor/SMB-SchedulingService/internal/usecase/claim_slot"
	"github.com/avkor/SMB-SchedulingService/internal/usecase/find_slots"
)

// DraftStore интерфейс хранилища черновиков разговоров
type DraftStore interface {
	Get(ctx context.Context, conversationID string) (*domain.ConversationDraft, error)
	Set(ctx context.Context, d *domain.ConversationDraft) error
	Delete(ctx context.Context, conversationID string) error
}

// IdempotencyCache интерфейс кэша дедупликации сообщений и ответов
type IdempotencyCache interface {
	// MarkMessage возвращает false, если сообщение уже обрабатывалось
	MarkMessage(ctx context.Context, messageID string) (bool, error)
	// MarkReply возвращает false, если на это же сообщение уже отвечали
	MarkReply(ctx context.Context, conversationID, utterance string) (bool, error)
	// ForgetMessage снимает отметку сообщения, чтобы неудачный ход
	// можно было повторить
	ForgetMessage(ctx context.Context, messageID string) error
	// ForgetReply снимает отметку данного ответа
	ForgetReply(ctx context.Context, conversationID, utterance string) error
}

// CatalogClient интерфейс клиента каталога услуг
type CatalogClient interface {
	ListServices(ctx context.Context, businessID int64) ([]catalogservice.Service, error)
	GetService(ctx context.Context, businessID, serviceID int64) (*catalogservice.Service, error)
}

// SlotFinder интерфейс калькулятора доступных слотов
type SlotFinder interface {
	Execute(ctx context.Context, req *find_slots.Request) (*find_slots.Response, error)
}

// SlotClaimer интерфейс захвата слота
type SlotClaimer interface {
	Execute(ctx context.Context, req *claim_slot.Request) (*claim_slot.Response, error)
}

// AppointmentsService интерфейс сервиса записей для cancel/reschedule потоков
type AppointmentsService interface {
	FindUpcomingByPhone(ctx context.Context, businessID int64, phone string) (*domain.Appointment, error)
	Cancel(ctx context.Context, businessID, appointmentID int64) (*domain.Appointment, error)
}

// PolicyRepository интерфейс репозитория политики бронирования
type PolicyRepository interface {
	GetByBusiness(ctx context.Context, businessID int64) (*domain.BookingPolicy, error)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
