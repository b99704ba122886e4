package handle_turn

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/avkor/SMB-SchedulingService/internal/domain"
	"github.com/avkor/SMB-SchedulingService/internal/extract"
	draftStore "github.com/avkor/SMB-SchedulingService/internal/infra/storage/draft"
	policyRepo "github.com/avkor/SMB-SchedulingService/internal/infra/storage/policy"
	"github.com/avkor/SMB-SchedulingService/internal/integrations/catalogservice"
	appointmentsService "github.com/avkor/SMB-SchedulingService/internal/service/appointments"
	"github.com/avkor/SMB-SchedulingService/internal/usecase/claim_slot"
	"github.com/avkor/SMB-SchedulingService/internal/usecase/find_slots"
)

// UseCase use case обработки одного хода диалога бронирования
// Единственная точка входа для входящих сообщений: дедупликация,
// машина состояний черновика, маршрутизация в калькулятор и guard,
// ровно один ответ за ход
type UseCase struct {
	draftStore    DraftStore
	idempotency   IdempotencyCache
	catalogClient CatalogClient
	slotFinder    SlotFinder
	slotClaimer   SlotClaimer
	appointments  AppointmentsService
	policyRepo    PolicyRepository
	timeProvider  TimeProvider
	logger        Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	draftStore DraftStore,
	idempotency IdempotencyCache,
	catalogClient CatalogClient,
	slotFinder SlotFinder,
	slotClaimer SlotClaimer,
	appointments AppointmentsService,
	policyRepo PolicyRepository,
	logger Logger,
) *UseCase {
	return &UseCase{
		draftStore:    draftStore,
		idempotency:   idempotency,
		catalogClient: catalogClient,
		slotFinder:    slotFinder,
		slotClaimer:   slotClaimer,
		appointments:  appointments,
		policyRepo:    policyRepo,
		timeProvider:  &RealTimeProvider{},
		logger:        logger,
	}
}

// Execute обрабатывает один ход диалога
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("HandleTurn: conversation=%s, business=%d", req.ConversationID, req.BusinessID)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("HandleTurn: validation failed: %v", err)
		return nil, err
	}

	messageID := req.MessageID
	if messageID == "" {
		messageID = uuid.NewString()
	}

	// 2. Дедупликация: и по ID сообщения, и по отпечатку последней реплики
	first, err := uc.idempotency.MarkMessage(ctx, messageID)
	if err != nil {
		uc.logger.Error("HandleTurn: idempotency check failed: %v", err)
		return nil, fmt.Errorf("%w: idempotency check failed: %v", ErrInternal, err)
	}
	if !first {
		uc.logger.Info("HandleTurn: duplicate message id=%s, skipping", messageID)
		return &Response{Duplicate: true, ConversationStatus: StatusAnswered}, nil
	}

	first, err = uc.idempotency.MarkReply(ctx, req.ConversationID, req.Text)
	if err != nil {
		uc.logger.Error("HandleTurn: reply dedup check failed: %v", err)
		uc.forgetMarks(ctx, messageID, req)
		return nil, fmt.Errorf("%w: reply dedup check failed: %v", ErrInternal, err)
	}
	if !first {
		uc.logger.Info("HandleTurn: already replied to this utterance in conversation=%s", req.ConversationID)
		return &Response{Duplicate: true, ConversationStatus: StatusAnswered}, nil
	}

	// 3. Обработка хода; неудачный ход снимает отметки дедупликации,
	// иначе повторная доставка того же сообщения останется без ответа
	resp, err := uc.processTurn(ctx, req)
	if err != nil {
		uc.forgetMarks(ctx, messageID, req)
		return nil, err
	}

	return resp, nil
}

// processTurn выполняет содержательную часть хода после дедупликации
func (uc *UseCase) processTurn(ctx context.Context, req *Request) (*Response, error) {
	// 1. Получаем текущее время
	now := uc.timeProvider.Now()

	// 2. Загружаем черновик с ленивой проверкой срока жизни
	draft, err := uc.loadDraft(ctx, req.ConversationID, req.BusinessID, now)
	if err != nil {
		return nil, err
	}

	// 3. Политика бронирования задаёт зону бизнеса для разбора дат
	policy, err := uc.policyRepo.GetByBusiness(ctx, req.BusinessID)
	if err != nil {
		if !errors.Is(err, policyRepo.ErrPolicyNotFound) {
			uc.logger.Error("HandleTurn: failed to get policy for business=%d: %v", req.BusinessID, err)
			return nil, fmt.Errorf("%w: failed to get policy: %v", ErrInternal, err)
		}
		policy = domain.DefaultPolicy(req.BusinessID)
	}

	// 4. Классификация намерения и маршрутизация по машине состояний
	outcome, err := uc.route(ctx, draft, classifyIntent(req.Text), req.Text, policy, now)
	if err != nil {
		return nil, err
	}

	// 5. Сохраняем черновик целиком (или удаляем завершённый)
	if outcome.dropDraft {
		if err := uc.draftStore.Delete(ctx, draft.ConversationID); err != nil {
			uc.logger.Error("HandleTurn: failed to delete draft conversation=%s: %v", draft.ConversationID, err)
			return nil, fmt.Errorf("%w: failed to delete draft: %v", ErrInternal, err)
		}
	} else {
		draft.Touch(now)
		if err := uc.draftStore.Set(ctx, draft); err != nil {
			uc.logger.Error("HandleTurn: failed to save draft conversation=%s: %v", draft.ConversationID, err)
			return nil, fmt.Errorf("%w: failed to save draft: %v", ErrInternal, err)
		}
	}

	uc.logger.Info("HandleTurn: conversation=%s status=%s stage=%s",
		req.ConversationID, outcome.status, draft.Stage)

	return &Response{ReplyText: outcome.reply, ConversationStatus: outcome.status}, nil
}

// forgetMarks снимает отметки дедупликации неудачного хода
// Ошибки удаления только логируются: повтор в худшем случае получит no-op
func (uc *UseCase) forgetMarks(ctx context.Context, messageID string, req *Request) {
	if err := uc.idempotency.ForgetMessage(ctx, messageID); err != nil {
		uc.logger.Error("HandleTurn: failed to release message mark id=%s: %v", messageID, err)
	}
	if err := uc.idempotency.ForgetReply(ctx, req.ConversationID, req.Text); err != nil {
		uc.logger.Error("HandleTurn: failed to release reply mark conversation=%s: %v", req.ConversationID, err)
	}
}

// loadDraft читает черновик; истёкший или отсутствующий заменяется пустым
func (uc *UseCase) loadDraft(ctx context.Context, conversationID string, businessID int64, now time.Time) (*domain.ConversationDraft, error) {
	draft, err := uc.draftStore.Get(ctx, conversationID)
	if err != nil {
		if errors.Is(err, draftStore.ErrDraftNotFound) {
			return domain.NewDraft(conversationID, businessID, now), nil
		}
		uc.logger.Error("HandleTurn: failed to load draft conversation=%s: %v", conversationID, err)
		return nil, fmt.Errorf("%w: failed to load draft: %v", ErrInternal, err)
	}

	if draft.IsExpired(now) {
		uc.logger.Info("HandleTurn: draft for conversation=%s expired, starting over", conversationID)
		return domain.NewDraft(conversationID, businessID, now), nil
	}

	return draft, nil
}

// route применяет правила машины состояний к одному ходу
func (uc *UseCase) route(ctx context.Context, draft *domain.ConversationDraft, intent intentKind, text string, policy *domain.BookingPolicy, now time.Time) (*turnOutcome, error) {
	loc := policy.Location()

	// Стадия confirm: ждём явного да/нет/поменять
	if draft.Stage == domain.StageConfirm {
		switch intent {
		case intentAffirm:
			return uc.commit(ctx, draft, policy, now)
		case intentDecline, intentCancel:
			return &turnOutcome{reply: abandonedReply(), status: StatusAnswered, dropDraft: true}, nil
		case intentChange:
			draft.ClearTime()
			draft.Stage = domain.StageOffer
			return &turnOutcome{reply: askDateTimeReply(draft), status: StatusInProgress}, nil
		default:
			return &turnOutcome{reply: repeatConfirmReply(), status: StatusInProgress}, nil
		}
	}

	// Явная отмена: активная попытка бронирования отбрасывается,
	// без неё - это запрос на отмену существующей записи
	if intent == intentCancel {
		if draft.Stage == domain.StageOffer && draft.Intent != domain.IntentCancel {
			return &turnOutcome{reply: abandonedReply(), status: StatusAnswered, dropDraft: true}, nil
		}
		draft.Intent = domain.IntentCancel
		draft.Stage = domain.StageOffer
	}

	if intent == intentReschedule {
		draft.Intent = domain.IntentReschedule
		draft.Stage = domain.StageOffer
	}

	// Обогащаем черновик полями из сообщения
	changed, options, err := uc.mergeFields(ctx, draft, text, loc, now)
	if err != nil {
		return nil, err
	}

	// Потоки отмены и переноса сначала находят запись по телефону
	switch draft.Intent {
	case domain.IntentCancel:
		return uc.routeCancel(ctx, draft)
	case domain.IntentReschedule:
		if draft.RescheduleAppointmentID == nil {
			if outcome, done, err := uc.attachAppointment(ctx, draft); done {
				return outcome, err
			}
		}
	}

	// Выбор слота из ранее предложенных (если в сообщении нет новой даты/времени)
	if draft.Stage == domain.StageOffer && draft.OffersValid(now) {
		if _, hasClock := extract.ClockTime(text); !hasClock {
			if _, hasDate := extract.Date(text, now, loc); !hasDate {
				if n, ok := parseOrdinal(text, len(draft.OfferedSlots)); ok {
					return uc.chooseOffer(draft, n)
				}
			}
		}
	}

	// Стадия idle без намёка на бронирование - короткий ответ-приглашение
	if draft.Stage == domain.StageIdle {
		if intent != intentBook && !changed {
			return &turnOutcome{reply: greetingReply(options), status: StatusAnswered}, nil
		}
		draft.Stage = domain.StageOffer
		if draft.Intent == "" {
			draft.Intent = domain.IntentBook
		}
	}

	// Недостающие поля запрашиваются в стабильном порядке:
	// услуга -> дата/время -> имя -> телефон
	if !draftComplete(draft) {
		return &turnOutcome{reply: uc.askMissing(draft, options), status: StatusInProgress}, nil
	}

	// Все поля собраны - предлагаем слоты или переходим к подтверждению
	return uc.proposeSlots(ctx, draft, policy, now, "")
}

// routeCancel ведёт поток отмены записи по телефону
func (uc *UseCase) routeCancel(ctx context.Context, draft *domain.ConversationDraft) (*turnOutcome, error) {
	if !draft.HasPhone() {
		return &turnOutcome{reply: askPhoneForLookupReply(), status: StatusInProgress}, nil
	}

	appt, err := uc.appointments.FindUpcomingByPhone(ctx, draft.BusinessID, draft.CustomerPhone)
	if err != nil {
		if errors.Is(err, appointmentsService.ErrAppointmentNotFound) {
			uc.logger.Info("HandleTurn: no upcoming appointment for phone=%s business=%d", draft.CustomerPhone, draft.BusinessID)
			return &turnOutcome{reply: appointmentNotFoundReply(), status: StatusNeedsHuman, dropDraft: true}, nil
		}
		uc.logger.Error("HandleTurn: failed to look up appointment by phone: %v", err)
		return nil, fmt.Errorf("%w: failed to look up appointment: %v", ErrInternal, err)
	}

	cancelled, err := uc.appointments.Cancel(ctx, draft.BusinessID, appt.ID)
	if err != nil {
		uc.logger.Error("HandleTurn: failed to cancel appointment id=%d: %v", appt.ID, err)
		return nil, fmt.Errorf("%w: failed to cancel appointment: %v", ErrInternal, err)
	}

	loc, err := time.LoadLocation(cancelled.Timezone)
	if err != nil {
		loc = time.UTC
	}
	label := domain.FormatSlotLabel(cancelled.StartAt, loc)

	uc.logger.Info("HandleTurn: cancelled appointment id=%d for business=%d", cancelled.ID, draft.BusinessID)
	return &turnOutcome{reply: cancelledAppointmentReply(cancelled, label), status: StatusNeedsHuman, dropDraft: true}, nil
}

// attachAppointment находит переносимую запись по телефону и заполняет
// черновик её полями. done=false означает "запись уже привязана дальше по ходу"
func (uc *UseCase) attachAppointment(ctx context.Context, draft *domain.ConversationDraft) (*turnOutcome, bool, error) {
	if !draft.HasPhone() {
		return &turnOutcome{reply: askPhoneForLookupReply(), status: StatusInProgress}, true, nil
	}

	appt, err := uc.appointments.FindUpcomingByPhone(ctx, draft.BusinessID, draft.CustomerPhone)
	if err != nil {
		if errors.Is(err, appointmentsService.ErrAppointmentNotFound) {
			return &turnOutcome{reply: appointmentNotFoundReply(), status: StatusNeedsHuman, dropDraft: true}, true, nil
		}
		uc.logger.Error("HandleTurn: failed to look up appointment by phone: %v", err)
		return nil, true, fmt.Errorf("%w: failed to look up appointment: %v", ErrInternal, err)
	}

	draft.RescheduleAppointmentID = &appt.ID
	draft.ServiceID = appt.ServiceID
	draft.ServiceName = appt.ServiceName
	draft.DurationMinutes = int(appt.EndAt.Sub(appt.StartAt) / time.Minute)
	draft.CustomerName = appt.CustomerName

	uc.logger.Info("HandleTurn: rescheduling appointment id=%d (%s)", appt.ID, appt.ServiceName)
	return nil, false, nil
}

// chooseOffer фиксирует выбранный из предложенных слот и переходит к confirm
func (uc *UseCase) chooseOffer(draft *domain.ConversationDraft, n int) (*turnOutcome, error) {
	slot := draft.OfferedSlots[n-1]
	draft.ChosenStartAt = &slot.StartAt
	draft.ChosenEndAt = &slot.EndAt
	draft.Stage = domain.StageConfirm

	if draft.Intent == domain.IntentReschedule {
		return &turnOutcome{reply: confirmRescheduleReply(draft, slot.Label), status: StatusInProgress}, nil
	}
	return &turnOutcome{reply: confirmReply(draft, slot.Label), status: StatusInProgress}, nil
}

// askMissing строит уточняющий вопрос ровно о недостающих полях
func (uc *UseCase) askMissing(draft *domain.ConversationDraft, options []extract.ServiceOption) string {
	switch {
	case !draft.HasService():
		return askServiceReply(options)
	case !draft.HasDate() || !hasTimeChoice(draft):
		return askDateTimeReply(draft)
	default:
		return askContactReply(draft)
	}
}

// proposeSlots запрашивает у калькулятора слоты под собранный черновик
// Точное время сразу уходит в confirm, иначе предлагается короткий список
func (uc *UseCase) proposeSlots(ctx context.Context, draft *domain.ConversationDraft, policy *domain.BookingPolicy, now time.Time, prefix string) (*turnOutcome, error) {
	resp, err := uc.slotFinder.Execute(ctx, &find_slots.Request{
		BusinessID:      draft.BusinessID,
		DurationMinutes: durationOf(draft),
		RangeStart:      *draft.Date,
		RangeEnd:        *draft.Date,
		Window:          searchWindow(draft),
		Limit:           domain.DefaultMaxOfferedSlots,
	})
	if err != nil {
		uc.logger.Error("HandleTurn: failed to find slots for business=%d: %v", draft.BusinessID, err)
		return nil, fmt.Errorf("%w: failed to find slots: %v", ErrInternal, err)
	}

	// Точное время: единственный подходящий слот сразу идёт на подтверждение
	if draft.TimeOfDay != nil && len(resp.Slots) > 0 {
		slot := resp.Slots[0]
		draft.ChosenStartAt = &slot.StartAt
		draft.ChosenEndAt = &slot.EndAt
		draft.Stage = domain.StageConfirm

		if draft.Intent == domain.IntentReschedule {
			return &turnOutcome{reply: prefix + confirmRescheduleReply(draft, slot.Label), status: StatusInProgress}, nil
		}
		return &turnOutcome{reply: prefix + confirmReply(draft, slot.Label), status: StatusInProgress}, nil
	}

	// Точное время занято - предлагаем альтернативы того же дня
	if draft.TimeOfDay != nil {
		exact := draft.TimeOfDay
		draft.TimeOfDay = nil
		alt, err := uc.slotFinder.Execute(ctx, &find_slots.Request{
			BusinessID:      draft.BusinessID,
			DurationMinutes: durationOf(draft),
			RangeStart:      *draft.Date,
			RangeEnd:        *draft.Date,
			Limit:           domain.DefaultMaxOfferedSlots,
		})
		if err != nil {
			uc.logger.Error("HandleTurn: failed to find alternative slots: %v", err)
			return nil, fmt.Errorf("%w: failed to find slots: %v", ErrInternal, err)
		}

		if len(alt.Slots) == 0 {
			draft.TimeOfDay = exact
			return uc.noAvailability(draft), nil
		}

		offered := toOffered(alt.Slots)
		draft.SetOffers(offered, now)
		draft.Stage = domain.StageOffer
		reply := prefix + fmt.Sprintf("%s isn't available. ", exact.String()) + offerSlotsReply(offered)
		return &turnOutcome{reply: reply, status: StatusInProgress}, nil
	}

	if len(resp.Slots) == 0 {
		return uc.noAvailability(draft), nil
	}

	offered := toOffered(resp.Slots)
	draft.SetOffers(offered, now)
	draft.Stage = domain.StageOffer
	return &turnOutcome{reply: prefix + offerSlotsReply(offered), status: StatusInProgress}, nil
}

// noAvailability сбрасывает выбор даты/времени и просит другой день
func (uc *UseCase) noAvailability(draft *domain.ConversationDraft) *turnOutcome {
	draft.Date = nil
	draft.ClearTime()
	draft.Stage = domain.StageOffer
	return &turnOutcome{reply: noAvailabilityReply(), status: StatusInProgress}
}

// commit вызывает guard для выбранного слота на явное "да"
func (uc *UseCase) commit(ctx context.Context, draft *domain.ConversationDraft, policy *domain.BookingPolicy, now time.Time) (*turnOutcome, error) {
	if !draft.HasChosenSlot() {
		// Подтверждать нечего: слоты устарели, предлагаем заново
		draft.Stage = domain.StageOffer
		return uc.proposeSlots(ctx, draft, policy, now, "")
	}

	loc := policy.Location()

	var price *float64
	requiresDeposit := false
	if draft.ServiceID != nil {
		svc, err := uc.catalogClient.GetService(ctx, draft.BusinessID, *draft.ServiceID)
		if err != nil {
			if !errors.Is(err, catalogservice.ErrServiceNotFound) {
				uc.logger.Error("HandleTurn: failed to get service id=%d: %v", *draft.ServiceID, err)
				return nil, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
			}
		} else {
			price = svc.Price
			requiresDeposit = svc.RequiresDeposit
		}
	}

	claimResp, err := uc.slotClaimer.Execute(ctx, &claim_slot.Request{
		BusinessID:              draft.BusinessID,
		ConversationID:          &draft.ConversationID,
		ServiceID:               draft.ServiceID,
		ServiceName:             draft.ServiceName,
		ServicePrice:            price,
		RequiresDeposit:         requiresDeposit,
		StartAt:                 *draft.ChosenStartAt,
		EndAt:                   *draft.ChosenEndAt,
		CustomerName:            draft.CustomerName,
		CustomerPhone:           draft.CustomerPhone,
		RescheduleAppointmentID: draft.RescheduleAppointmentID,
	})

	if err != nil {
		if isSlotRejection(err) {
			// Слот увели между предложением и подтверждением:
			// возвращаемся в offer со свежими слотами
			uc.logger.Warn("HandleTurn: claim rejected for conversation=%s: %v", draft.ConversationID, err)
			draft.ChosenStartAt = nil
			draft.ChosenEndAt = nil
			draft.TimeOfDay = nil
			draft.OfferedSlots = nil
			draft.OffersExpireAt = nil
			draft.Stage = domain.StageOffer
			return uc.proposeSlots(ctx, draft, policy, now, slotTakenReply())
		}
		uc.logger.Error("HandleTurn: claim failed for conversation=%s: %v", draft.ConversationID, err)
		return nil, fmt.Errorf("%w: claim failed: %v", ErrInternal, err)
	}

	label := domain.FormatSlotLabel(claimResp.StartAt, loc)

	if draft.Intent == domain.IntentReschedule {
		uc.logger.Info("HandleTurn: rescheduled appointment id=%d for conversation=%s", claimResp.ID, draft.ConversationID)
		return &turnOutcome{reply: rescheduledReply(draft.ServiceName, label), status: StatusNeedsHuman, dropDraft: true}, nil
	}

	pending := claimResp.Status == string(domain.StatusPending)
	uc.logger.Info("HandleTurn: booked appointment id=%d status=%s for conversation=%s",
		claimResp.ID, claimResp.Status, draft.ConversationID)
	return &turnOutcome{reply: bookedReply(draft.ServiceName, label, pending), status: StatusAnswered, dropDraft: true}, nil
}

// isSlotRejection отличает бизнес-отказ guard'a от настоящего сбоя
func isSlotRejection(err error) bool {
	return errors.Is(err, claim_slot.ErrSlotTaken) ||
		errors.Is(err, claim_slot.ErrOutsideSchedule) ||
		errors.Is(err, claim_slot.ErrTooSoon) ||
		errors.Is(err, claim_slot.ErrDailyLimitReached)
}

// durationOf возвращает длительность услуги черновика
func durationOf(draft *domain.ConversationDraft) int {
	if draft.DurationMinutes > 0 {
		return draft.DurationMinutes
	}
	return domain.DefaultServiceDurationMinutes
}

// toOffered конвертирует слоты калькулятора в формат черновика
func toOffered(slots []domain.Slot) []domain.OfferedSlot {
	offered := make([]domain.OfferedSlot, 0, len(slots))
	for _, s := range slots {
		offered = append(offered, domain.OfferedSlot{StartAt: s.StartAt, EndAt: s.EndAt, Label: s.Label})
	}
	return offered
}

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.ConversationID == "" {
		return fmt.Errorf("%w: conversationID is required", ErrInvalidInput)
	}
	if req.BusinessID <= 0 {
		return fmt.Errorf("%w: businessID must be positive", ErrInvalidInput)
	}
	if strings.TrimSpace(req.Text) == "" {
		return fmt.Errorf("%w: message text is required", ErrInvalidInput)
	}
	return nil
}
