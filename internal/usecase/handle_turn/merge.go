package handle_turn

import (
	"context"
	"fmt"
	"time"

	"github.com/avkor/SMB-SchedulingService/internal/domain"
	"github.com/avkor/SMB-SchedulingService/internal/extract"
	"github.com/avkor/SMB-SchedulingService/internal/usecase/find_slots"
)

// mergeFields обогащает черновик полями, извлечёнными из сообщения
// Заполненные поля никогда не затираются пустыми извлечениями;
// непустое извлечение перезаписывает прежнее значение (last non-empty wins)
// Возвращает признак изменения черновика и загруженный каталог услуг
// (он же нужен для уточняющих вопросов)
func (uc *UseCase) mergeFields(ctx context.Context, draft *domain.ConversationDraft, text string, loc *time.Location, now time.Time) (bool, []extract.ServiceOption, error) {
	changed := false

	options, err := uc.serviceOptions(ctx, draft.BusinessID)
	if err != nil {
		return false, nil, err
	}

	if svc, ok := extract.Service(text, options); ok && (draft.ServiceID == nil || *draft.ServiceID != svc.ID) {
		draft.ServiceID = &svc.ID
		draft.ServiceName = svc.Name
		draft.DurationMinutes = svc.DurationMinutes
		changed = true
	}

	if date, ok := extract.Date(text, now, loc); ok {
		if draft.Date == nil || !draft.Date.Equal(date) {
			draft.Date = &date
			changed = true
		}
	}

	// Точное время и часть дня взаимоисключающие: новое значение
	// одного сбрасывает другое
	if clock, ok := extract.ClockTime(text); ok {
		draft.TimeOfDay = &clock
		draft.DayPart = ""
		draft.RawTimeHint = ""
		changed = true
	} else if part, ok := extract.Part(text); ok {
		draft.DayPart = string(part)
		draft.TimeOfDay = nil
		changed = true
	}

	// Граница "before/after HH:MM" уточняет окно поиска
	if _, ok := extract.Bound(text); ok {
		draft.RawTimeHint = text
		draft.TimeOfDay = nil
		changed = true
	}

	if name, ok := extract.Name(text); ok && draft.CustomerName != name {
		draft.CustomerName = name
		changed = true
	}

	if phone, ok := extract.Phone(text); ok && draft.CustomerPhone != phone {
		draft.CustomerPhone = phone
		changed = true
	}

	return changed, options, nil
}

// serviceOptions загружает активный каталог услуг (одно обращение на ход)
func (uc *UseCase) serviceOptions(ctx context.Context, businessID int64) ([]extract.ServiceOption, error) {
	services, err := uc.catalogClient.ListServices(ctx, businessID)
	if err != nil {
		uc.logger.Error("HandleTurn: failed to list services for business=%d: %v", businessID, err)
		return nil, fmt.Errorf("%w: failed to list services: %v", ErrInternal, err)
	}

	options := make([]extract.ServiceOption, 0, len(services))
	for _, svc := range services {
		if !svc.IsActive {
			continue
		}
		options = append(options, extract.ServiceOption{
			ID:              svc.ID,
			Name:            svc.Name,
			Aliases:         svc.Aliases,
			DurationMinutes: svc.DurationMinutes,
			Price:           svc.Price,
			RequiresDeposit: svc.RequiresDeposit,
		})
	}

	return options, nil
}

// hasTimeChoice проверяет, есть ли у черновика понятный выбор времени:
// точное время, часть дня или граница "before/after"
func hasTimeChoice(draft *domain.ConversationDraft) bool {
	return draft.HasTimeChoice() || draft.RawTimeHint != ""
}

// draftComplete проверяет готовность черновика к стадии confirm
func draftComplete(draft *domain.ConversationDraft) bool {
	return draft.HasService() && draft.HasDate() && hasTimeChoice(draft) && draft.HasName() && draft.HasPhone()
}

// searchWindow строит окно фильтрации слотов из выбора времени черновика
func searchWindow(draft *domain.ConversationDraft) *find_slots.TimeWindow {
	if draft.TimeOfDay != nil {
		// Точное время: окно в один шаг, чтобы слот начинался ровно в него
		to, err := draft.TimeOfDay.AddMinutes(1)
		if err != nil {
			to = "23:59"
		}
		return &find_slots.TimeWindow{From: *draft.TimeOfDay, To: to}
	}

	if draft.RawTimeHint != "" {
		if w, ok := extract.HintWindow(draft.RawTimeHint); ok {
			return &find_slots.TimeWindow{From: w.From, To: w.To}
		}
	}

	if draft.DayPart != "" {
		w := extract.DayPart(draft.DayPart).Window()
		return &find_slots.TimeWindow{From: w.From, To: w.To}
	}

	return nil
}
