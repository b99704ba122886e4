package handle_turn

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avkor/SMB-SchedulingService/internal/domain"
	draftStore "github.com/avkor/SMB-SchedulingService/internal/infra/storage/draft"
	policyRepo "github.com/avkor/SMB-SchedulingService/internal/infra/storage/policy"
	"github.com/avkor/SMB-SchedulingService/internal/integrations/catalogservice"
	appointmentsService "github.com/avkor/SMB-SchedulingService/internal/service/appointments"
	"github.com/avkor/SMB-SchedulingService/internal/usecase/claim_slot"
	"github.com/avkor/SMB-SchedulingService/internal/usecase/find_slots"
)

// Понедельник 15.09.2025, 10:00 UTC
var testNow = time.Date(2025, 9, 15, 10, 0, 0, 0, time.UTC)

type memDraftStore struct {
	drafts  map[string]*domain.ConversationDraft
	deleted []string
}

func newMemDraftStore() *memDraftStore {
	return &memDraftStore{drafts: map[string]*domain.ConversationDraft{}}
}

func (s *memDraftStore) Get(_ context.Context, conversationID string) (*domain.ConversationDraft, error) {
	d, ok := s.drafts[conversationID]
	if !ok {
		return nil, draftStore.ErrDraftNotFound
	}
	cp := *d
	return &cp, nil
}

func (s *memDraftStore) Set(_ context.Context, d *domain.ConversationDraft) error {
	cp := *d
	s.drafts[d.ConversationID] = &cp
	return nil
}

func (s *memDraftStore) Delete(_ context.Context, conversationID string) error {
	delete(s.drafts, conversationID)
	s.deleted = append(s.deleted, conversationID)
	return nil
}

// fakeIdempotency хранит отметки в памяти; флаги dupMessage/dupReply
// принудительно объявляют ход дубликатом
type fakeIdempotency struct {
	dupMessage bool
	dupReply   bool
	messages   map[string]bool
	replies    map[string]bool
}

func newFakeIdempotency() *fakeIdempotency {
	return &fakeIdempotency{messages: map[string]bool{}, replies: map[string]bool{}}
}

func (f *fakeIdempotency) MarkMessage(_ context.Context, messageID string) (bool, error) {
	if f.dupMessage || f.messages[messageID] {
		return false, nil
	}
	f.messages[messageID] = true
	return true, nil
}

func (f *fakeIdempotency) MarkReply(_ context.Context, conversationID, utterance string) (bool, error) {
	key := conversationID + ":" + utterance
	if f.dupReply || f.replies[key] {
		return false, nil
	}
	f.replies[key] = true
	return true, nil
}

func (f *fakeIdempotency) ForgetMessage(_ context.Context, messageID string) error {
	delete(f.messages, messageID)
	return nil
}

func (f *fakeIdempotency) ForgetReply(_ context.Context, conversationID, utterance string) error {
	delete(f.replies, conversationID+":"+utterance)
	return nil
}

type stubCatalog struct {
	services []catalogservice.Service
}

func (c *stubCatalog) ListServices(_ context.Context, _ int64) ([]catalogservice.Service, error) {
	return c.services, nil
}

func (c *stubCatalog) GetService(_ context.Context, _, serviceID int64) (*catalogservice.Service, error) {
	for i := range c.services {
		if c.services[i].ID == serviceID {
			return &c.services[i], nil
		}
	}
	return nil, catalogservice.ErrServiceNotFound
}

// fakeFinder отдаёт заготовленные наборы слотов по одному на вызов
type fakeFinder struct {
	err       error
	responses [][]domain.Slot
	requests  []*find_slots.Request
}

func (f *fakeFinder) Execute(_ context.Context, req *find_slots.Request) (*find_slots.Response, error) {
	cp := *req
	f.requests = append(f.requests, &cp)

	if f.err != nil {
		return nil, f.err
	}

	var slots []domain.Slot
	if len(f.responses) > 0 {
		slots = f.responses[0]
		f.responses = f.responses[1:]
	}
	return &find_slots.Response{BusinessID: req.BusinessID, Timezone: "UTC", Slots: slots}, nil
}

type fakeClaimer struct {
	err      error
	status   string
	requests []*claim_slot.Request
}

func (f *fakeClaimer) Execute(_ context.Context, req *claim_slot.Request) (*claim_slot.Response, error) {
	cp := *req
	f.requests = append(f.requests, &cp)

	if f.err != nil {
		return nil, f.err
	}

	status := f.status
	if status == "" {
		status = string(domain.StatusConfirmed)
	}
	return &claim_slot.Response{
		ID:        101,
		StartAt:   req.StartAt,
		EndAt:     req.EndAt,
		Timezone:  "UTC",
		Status:    status,
		CreatedAt: testNow,
	}, nil
}

type stubAppointments struct {
	upcoming    *domain.Appointment
	cancelledID int64
}

func (s *stubAppointments) FindUpcomingByPhone(_ context.Context, _ int64, _ string) (*domain.Appointment, error) {
	if s.upcoming == nil {
		return nil, appointmentsService.ErrAppointmentNotFound
	}
	cp := *s.upcoming
	return &cp, nil
}

func (s *stubAppointments) Cancel(_ context.Context, _ int64, appointmentID int64) (*domain.Appointment, error) {
	s.cancelledID = appointmentID
	cp := *s.upcoming
	cp.Status = domain.StatusCancelled
	return &cp, nil
}

type stubPolicyRepo struct {
	policy *domain.BookingPolicy
}

func (r *stubPolicyRepo) GetByBusiness(_ context.Context, _ int64) (*domain.BookingPolicy, error) {
	if r.policy == nil {
		return nil, policyRepo.ErrPolicyNotFound
	}
	return r.policy, nil
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

type turnFixture struct {
	uc      *UseCase
	drafts  *memDraftStore
	idem    *fakeIdempotency
	catalog *stubCatalog
	finder  *fakeFinder
	claimer *fakeClaimer
	appts   *stubAppointments
	policy  *stubPolicyRepo

	msgSeq int
}

func price(v float64) *float64 {
	return &v
}

func newFixture() *turnFixture {
	f := &turnFixture{
		drafts: newMemDraftStore(),
		idem:   newFakeIdempotency(),
		catalog: &stubCatalog{services: []catalogservice.Service{
			{ID: 1, Name: "Haircut", Aliases: []string{"cut"}, DurationMinutes: 60, Price: price(50), IsActive: true},
			{ID: 2, Name: "Manicure", Aliases: []string{"nails"}, DurationMinutes: 30, IsActive: true},
		}},
		finder:  &fakeFinder{},
		claimer: &fakeClaimer{},
		appts:   &stubAppointments{},
		policy:  &stubPolicyRepo{},
	}

	f.uc = NewUseCase(f.drafts, f.idem, f.catalog, f.finder, f.claimer, f.appts, f.policy, nopLogger{})
	f.uc.timeProvider = &fixedTimeProvider{now: testNow}
	return f
}

// turn отправляет одно сообщение с уникальным message id
func (f *turnFixture) turn(t *testing.T, text string) *Response {
	t.Helper()
	f.msgSeq++

	resp, err := f.uc.Execute(context.Background(), &Request{
		ConversationID: "conv-1",
		BusinessID:     1,
		MessageID:      fmt.Sprintf("msg-%d", f.msgSeq),
		Text:           text,
	})
	require.NoError(t, err)
	return resp
}

func (f *turnFixture) draft() *domain.ConversationDraft {
	return f.drafts.drafts["conv-1"]
}

func daySlot(date time.Time, hour, durationMinutes int) domain.Slot {
	start := time.Date(date.Year(), date.Month(), date.Day(), hour, 0, 0, 0, time.UTC)
	end := start.Add(time.Duration(durationMinutes) * time.Minute)
	return domain.Slot{StartAt: start, EndAt: end, Label: domain.FormatSlotLabel(start, time.UTC)}
}

func TestExecute_Validation(t *testing.T) {
	f := newFixture()

	tests := []struct {
		name string
		req  *Request
	}{
		{"empty conversation", &Request{BusinessID: 1, Text: "hi"}},
		{"bad business", &Request{ConversationID: "c", BusinessID: 0, Text: "hi"}},
		{"empty text", &Request{ConversationID: "c", BusinessID: 1, Text: "   "}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.uc.Execute(context.Background(), tt.req)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestExecute_DuplicateMessage(t *testing.T) {
	f := newFixture()
	f.idem.dupMessage = true

	resp := f.turn(t, "hello")

	assert.True(t, resp.Duplicate)
	assert.Equal(t, StatusAnswered, resp.ConversationStatus)
	assert.Empty(t, resp.ReplyText)
	assert.Nil(t, f.draft())
}

func TestExecute_DuplicateReply(t *testing.T) {
	f := newFixture()
	f.idem.dupReply = true

	resp := f.turn(t, "hello")

	assert.True(t, resp.Duplicate)
	assert.Nil(t, f.draft())
}

func TestExecute_FailedTurnRemainsRetryable(t *testing.T) {
	f := newFixture()
	f.finder.err = errors.New("calculator unavailable")

	req := &Request{
		ConversationID: "conv-1",
		BusinessID:     1,
		MessageID:      "msg-1",
		Text:           "haircut today at 3pm, I'm Bob, 79991112233",
	}

	_, err := f.uc.Execute(context.Background(), req)
	require.ErrorIs(t, err, ErrInternal)

	// Отметки дедупликации сняты: повторная доставка того же
	// сообщения обрабатывается заново, а не отбрасывается
	f.finder.err = nil
	f.finder.responses = [][]domain.Slot{{daySlot(testNow, 15, 60)}}

	resp, err := f.uc.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, resp.Duplicate)
	assert.Equal(t, StatusInProgress, resp.ConversationStatus)
	assert.Contains(t, resp.ReplyText, "15:00")
}

func TestExecute_GreetingAtIdle(t *testing.T) {
	f := newFixture()

	resp := f.turn(t, "hello there")

	assert.Equal(t, StatusAnswered, resp.ConversationStatus)
	assert.Contains(t, resp.ReplyText, "Haircut")
	assert.Contains(t, resp.ReplyText, "Manicure")
	require.NotNil(t, f.draft())
	assert.Equal(t, domain.StageIdle, f.draft().Stage)
}

func TestExecute_FullBookingFlow(t *testing.T) {
	f := newFixture()
	tomorrow := testNow.AddDate(0, 0, 1)
	f.finder.responses = [][]domain.Slot{
		{daySlot(tomorrow, 13, 60), daySlot(tomorrow, 14, 60), daySlot(tomorrow, 16, 60)},
	}

	// 1. Услуга названа сразу, остальное собирается по шагам
	resp := f.turn(t, "I'd like to book a haircut")
	assert.Equal(t, StatusInProgress, resp.ConversationStatus)
	assert.Contains(t, resp.ReplyText, "day and time")
	assert.Equal(t, "Haircut", f.draft().ServiceName)

	// 2. Дата и часть дня
	resp = f.turn(t, "tomorrow afternoon")
	assert.Equal(t, StatusInProgress, resp.ConversationStatus)
	assert.Contains(t, resp.ReplyText, "name and phone")

	// 3. Контакты - черновик полон, запрашиваются слоты
	resp = f.turn(t, "My name is Anna, phone 79990001122")
	assert.Equal(t, StatusInProgress, resp.ConversationStatus)
	assert.Contains(t, resp.ReplyText, "1)")
	assert.Contains(t, resp.ReplyText, "3)")

	require.Len(t, f.finder.requests, 1)
	req := f.finder.requests[0]
	assert.Equal(t, 60, req.DurationMinutes)
	require.NotNil(t, req.Window)
	assert.Equal(t, "12:00", req.Window.From.String())
	assert.Equal(t, "18:00", req.Window.To.String())

	// 4. Выбор по номеру
	resp = f.turn(t, "option 2")
	assert.Equal(t, StatusInProgress, resp.ConversationStatus)
	assert.Contains(t, resp.ReplyText, "Shall I book Haircut")
	assert.Contains(t, resp.ReplyText, "Anna")
	assert.Equal(t, domain.StageConfirm, f.draft().Stage)

	// 5. Подтверждение - запись создана, черновик удалён
	resp = f.turn(t, "yes")
	assert.Equal(t, StatusAnswered, resp.ConversationStatus)
	assert.Contains(t, resp.ReplyText, "All set")
	assert.Nil(t, f.draft())

	require.Len(t, f.claimer.requests, 1)
	claim := f.claimer.requests[0]
	assert.Equal(t, daySlot(tomorrow, 14, 60).StartAt, claim.StartAt)
	assert.Equal(t, "Anna", claim.CustomerName)
	assert.Equal(t, "79990001122", claim.CustomerPhone)
	require.NotNil(t, claim.ServicePrice)
	assert.Equal(t, 50.0, *claim.ServicePrice)
}

func TestExecute_ExactTimeGoesStraightToConfirm(t *testing.T) {
	f := newFixture()
	f.finder.responses = [][]domain.Slot{
		{daySlot(testNow, 15, 60)},
	}

	resp := f.turn(t, "Can I book a haircut today at 3pm? I'm Bob, 79991112233")

	assert.Equal(t, StatusInProgress, resp.ConversationStatus)
	assert.Contains(t, resp.ReplyText, "Shall I book Haircut")
	assert.Equal(t, domain.StageConfirm, f.draft().Stage)

	require.Len(t, f.finder.requests, 1)
	req := f.finder.requests[0]
	require.NotNil(t, req.Window)
	assert.Equal(t, "15:00", req.Window.From.String())
	assert.Equal(t, "15:01", req.Window.To.String())
}

func TestExecute_ExactTimeTakenOffersAlternatives(t *testing.T) {
	f := newFixture()
	f.finder.responses = [][]domain.Slot{
		{}, // точное время занято
		{daySlot(testNow, 16, 60), daySlot(testNow, 17, 60)},
	}

	resp := f.turn(t, "haircut today at 3pm, I'm Bob, 79991112233")

	assert.Equal(t, StatusInProgress, resp.ConversationStatus)
	assert.Contains(t, resp.ReplyText, "15:00 isn't available")
	assert.Contains(t, resp.ReplyText, "1)")
	assert.Equal(t, domain.StageOffer, f.draft().Stage)
	assert.Len(t, f.draft().OfferedSlots, 2)
}

func TestExecute_NoAvailabilityResetsDate(t *testing.T) {
	f := newFixture()
	// И точное время, и альтернативы пустые
	f.finder.responses = [][]domain.Slot{{}, {}}

	resp := f.turn(t, "haircut today at 3pm, I'm Bob, 79991112233")

	assert.Equal(t, StatusInProgress, resp.ConversationStatus)
	assert.Contains(t, resp.ReplyText, "another day or time")
	assert.Nil(t, f.draft().Date)
	assert.Nil(t, f.draft().TimeOfDay)
}

func TestExecute_OrdinalIgnoredWhenMessageCarriesTime(t *testing.T) {
	f := newFixture()
	tomorrow := testNow.AddDate(0, 0, 1)
	f.finder.responses = [][]domain.Slot{
		{daySlot(tomorrow, 13, 60), daySlot(tomorrow, 14, 60)},
		{daySlot(tomorrow, 15, 60)},
	}

	f.turn(t, "book a haircut tomorrow afternoon, I'm Anna, 79990001122")
	resp := f.turn(t, "3pm works")

	// "3" не трактуется как выбор варианта - это новое точное время
	assert.Contains(t, resp.ReplyText, "Shall I book Haircut")
	require.Len(t, f.finder.requests, 2)
	require.NotNil(t, f.finder.requests[1].Window)
	assert.Equal(t, "15:00", f.finder.requests[1].Window.From.String())
}

func TestExecute_DeclineAtConfirmDropsDraft(t *testing.T) {
	f := newFixture()
	f.finder.responses = [][]domain.Slot{{daySlot(testNow, 15, 60)}}

	f.turn(t, "haircut today at 3pm, I'm Bob, 79991112233")
	resp := f.turn(t, "no thanks")

	assert.Equal(t, StatusAnswered, resp.ConversationStatus)
	assert.Contains(t, resp.ReplyText, "discarded")
	assert.Nil(t, f.draft())
	assert.Empty(t, f.claimer.requests)
}

func TestExecute_ChangeAtConfirmClearsTime(t *testing.T) {
	f := newFixture()
	f.finder.responses = [][]domain.Slot{{daySlot(testNow, 15, 60)}}

	f.turn(t, "haircut today at 3pm, I'm Bob, 79991112233")
	resp := f.turn(t, "change")

	assert.Equal(t, StatusInProgress, resp.ConversationStatus)
	assert.Contains(t, resp.ReplyText, "What time works")
	assert.Equal(t, domain.StageOffer, f.draft().Stage)
	assert.Nil(t, f.draft().ChosenStartAt)
	assert.Nil(t, f.draft().TimeOfDay)
	// Услуга и контакты сохраняются
	assert.Equal(t, "Haircut", f.draft().ServiceName)
	assert.Equal(t, "Bob", f.draft().CustomerName)
}

func TestExecute_GibberishAtConfirmRepeatsQuestion(t *testing.T) {
	f := newFixture()
	f.finder.responses = [][]domain.Slot{{daySlot(testNow, 15, 60)}}

	f.turn(t, "haircut today at 3pm, I'm Bob, 79991112233")
	resp := f.turn(t, "what's the weather")

	assert.Equal(t, StatusInProgress, resp.ConversationStatus)
	assert.Contains(t, resp.ReplyText, "Just to confirm")
	assert.Equal(t, domain.StageConfirm, f.draft().Stage)
}

func TestExecute_SlotTakenOnConfirmReoffers(t *testing.T) {
	f := newFixture()
	f.finder.responses = [][]domain.Slot{
		{daySlot(testNow, 15, 60)},
		{daySlot(testNow, 16, 60), daySlot(testNow, 17, 60)},
	}

	f.turn(t, "haircut today at 3pm, I'm Bob, 79991112233")
	f.claimer.err = claim_slot.ErrSlotTaken
	resp := f.turn(t, "yes")

	assert.Equal(t, StatusInProgress, resp.ConversationStatus)
	assert.Contains(t, resp.ReplyText, "just taken")
	assert.Contains(t, resp.ReplyText, "1)")
	assert.Equal(t, domain.StageOffer, f.draft().Stage)
	assert.Nil(t, f.draft().ChosenStartAt)
}

func TestExecute_PendingWhenConfirmationRequired(t *testing.T) {
	f := newFixture()
	f.finder.responses = [][]domain.Slot{{daySlot(testNow, 15, 60)}}
	f.claimer.status = string(domain.StatusPending)

	f.turn(t, "haircut today at 3pm, I'm Bob, 79991112233")
	resp := f.turn(t, "yes")

	assert.Equal(t, StatusAnswered, resp.ConversationStatus)
	assert.Contains(t, resp.ReplyText, "awaiting confirmation")
}

func TestExecute_CancelDuringBookingAbandons(t *testing.T) {
	f := newFixture()

	f.turn(t, "I'd like to book a haircut")
	resp := f.turn(t, "actually, cancel")

	assert.Equal(t, StatusAnswered, resp.ConversationStatus)
	assert.Contains(t, resp.ReplyText, "discarded")
	assert.Nil(t, f.draft())
}

func TestExecute_CancelAppointmentFlow(t *testing.T) {
	f := newFixture()
	f.appts.upcoming = &domain.Appointment{
		ID:            42,
		BusinessID:    1,
		ServiceName:   "Haircut",
		CustomerPhone: "79990001122",
		StartAt:       time.Date(2025, 9, 17, 11, 0, 0, 0, time.UTC),
		EndAt:         time.Date(2025, 9, 17, 12, 0, 0, 0, time.UTC),
		Timezone:      "UTC",
		Status:        domain.StatusConfirmed,
	}

	resp := f.turn(t, "I want to cancel my appointment")
	assert.Equal(t, StatusInProgress, resp.ConversationStatus)
	assert.Contains(t, resp.ReplyText, "phone number")

	resp = f.turn(t, "79990001122")
	assert.Equal(t, StatusNeedsHuman, resp.ConversationStatus)
	assert.Contains(t, resp.ReplyText, "has been cancelled")
	assert.Equal(t, int64(42), f.appts.cancelledID)
	assert.Nil(t, f.draft())
}

func TestExecute_CancelAppointmentNotFound(t *testing.T) {
	f := newFixture()

	f.turn(t, "I want to cancel my appointment")
	resp := f.turn(t, "79990001122")

	assert.Equal(t, StatusNeedsHuman, resp.ConversationStatus)
	assert.Contains(t, resp.ReplyText, "couldn't find")
	assert.Nil(t, f.draft())
}

func TestExecute_RescheduleFlow(t *testing.T) {
	f := newFixture()
	serviceID := int64(1)
	f.appts.upcoming = &domain.Appointment{
		ID:            42,
		BusinessID:    1,
		ServiceID:     &serviceID,
		ServiceName:   "Haircut",
		CustomerName:  "Anna",
		CustomerPhone: "79990001122",
		StartAt:       time.Date(2025, 9, 17, 11, 0, 0, 0, time.UTC),
		EndAt:         time.Date(2025, 9, 17, 12, 0, 0, 0, time.UTC),
		Timezone:      "UTC",
		Status:        domain.StatusConfirmed,
	}
	tomorrow := testNow.AddDate(0, 0, 1)
	f.finder.responses = [][]domain.Slot{{daySlot(tomorrow, 10, 60)}}
	f.claimer.status = string(domain.StatusRescheduled)

	resp := f.turn(t, "I need to reschedule")
	assert.Equal(t, StatusInProgress, resp.ConversationStatus)
	assert.Contains(t, resp.ReplyText, "phone number")

	// Телефон привязывает запись и наследует её поля
	resp = f.turn(t, "79990001122")
	assert.Equal(t, StatusInProgress, resp.ConversationStatus)
	require.NotNil(t, f.draft().RescheduleAppointmentID)
	assert.Equal(t, int64(42), *f.draft().RescheduleAppointmentID)
	assert.Equal(t, "Haircut", f.draft().ServiceName)
	assert.Equal(t, "Anna", f.draft().CustomerName)

	resp = f.turn(t, "tomorrow at 10am")
	assert.Contains(t, resp.ReplyText, "Shall I move your Haircut")

	resp = f.turn(t, "yes")
	assert.Equal(t, StatusNeedsHuman, resp.ConversationStatus)
	assert.Contains(t, resp.ReplyText, "has been moved")
	assert.Nil(t, f.draft())

	require.Len(t, f.claimer.requests, 1)
	require.NotNil(t, f.claimer.requests[0].RescheduleAppointmentID)
	assert.Equal(t, int64(42), *f.claimer.requests[0].RescheduleAppointmentID)
}

func TestExecute_RescheduleAppointmentNotFound(t *testing.T) {
	f := newFixture()

	f.turn(t, "I need to reschedule")
	resp := f.turn(t, "79990001122")

	assert.Equal(t, StatusNeedsHuman, resp.ConversationStatus)
	assert.Contains(t, resp.ReplyText, "couldn't find")
	assert.Nil(t, f.draft())
}

func TestExecute_ExpiredDraftStartsOver(t *testing.T) {
	f := newFixture()
	stale := domain.NewDraft("conv-1", 1, testNow.Add(-2*time.Hour))
	stale.Stage = domain.StageConfirm
	stale.ServiceName = "Haircut"
	require.NoError(t, f.drafts.Set(context.Background(), stale))

	resp := f.turn(t, "hello")

	// Истёкший черновик отброшен: обычное приветствие вместо повтора confirm
	assert.Equal(t, StatusAnswered, resp.ConversationStatus)
	assert.Contains(t, resp.ReplyText, "Hi!")
	assert.Equal(t, domain.StageIdle, f.draft().Stage)
}

func TestExecute_KnownFieldsNeverReAsked(t *testing.T) {
	f := newFixture()

	f.turn(t, "book a manicure, I'm Carla, 79995556677")
	resp := f.turn(t, "friday")

	// Услуга и контакты уже известны - спрашивается только время
	assert.Contains(t, resp.ReplyText, "What time works")
	assert.NotContains(t, resp.ReplyText, "name")
}

func TestClassifyIntent(t *testing.T) {
	tests := []struct {
		text string
		want intentKind
	}{
		{"I want to book a haircut", intentBook},
		{"any slots tomorrow?", intentBook},
		{"yes please", intentAffirm},
		{"sounds good", intentAffirm},
		{"no", intentDecline},
		{"nope, not now", intentDecline},
		{"cancel my appointment", intentCancel},
		{"never mind", intentCancel},
		{"I need to reschedule", intentReschedule},
		{"change my appointment please", intentReschedule},
		{"another time maybe", intentChange},
		{"hello there", intentOther},
		{"notable weather today", intentOther}, // "no" внутри слова не считается
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, classifyIntent(tt.text))
		})
	}
}

func TestParseOrdinal(t *testing.T) {
	tests := []struct {
		text   string
		max    int
		want   int
		wantOK bool
	}{
		{"1", 3, 1, true},
		{"option 2", 3, 2, true},
		{"the first one", 3, 1, true},
		{"third", 3, 3, true},
		{"4", 3, 0, false},     // вне предложенного списка
		{"second", 1, 0, false},
		{"maybe", 3, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, ok := parseOrdinal(tt.text, tt.max)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}
