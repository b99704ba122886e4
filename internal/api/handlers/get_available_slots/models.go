package get_available_slots

import (
	"time"

	"github.com/avkor/SMB-SchedulingService/internal/domain"
	findSlots "github.com/avkor/SMB-SchedulingService/internal/usecase/find_slots"
	"github.com/avkor/SMB-SchedulingService/pkg/types"
)

// AvailableSlotsResponse HTTP response model
type AvailableSlotsResponse struct {
	BusinessID int64           `json:"businessId"`
	Timezone   string          `json:"timezone"`
	Slots      []AvailableSlot `json:"slots"`
}

// AvailableSlot модель доступного слота
type AvailableSlot struct {
	StartAt string `json:"startAt"` // RFC3339, UTC
	EndAt   string `json:"endAt"`   // RFC3339, UTC
	Label   string `json:"label"`   // подпись в локальном времени бизнеса
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *findSlots.Response) *AvailableSlotsResponse {
	slots := make([]AvailableSlot, len(resp.Slots))
	for i, slot := range resp.Slots {
		slots[i] = AvailableSlot{
			StartAt: slot.StartAt.Format(time.RFC3339),
			EndAt:   slot.EndAt.Format(time.RFC3339),
			Label:   slot.Label,
		}
	}

	return &AvailableSlotsResponse{
		BusinessID: resp.BusinessID,
		Timezone:   resp.Timezone,
		Slots:      slots,
	}
}

// ToUseCaseRequest создает запрос use case из query параметров
// to по умолчанию равен from (поиск в пределах одного дня)
func ToUseCaseRequest(businessID int64, durationMinutes int, fromStr, toStr, windowFromStr, windowToStr string, limit int) (*findSlots.Request, error) {
	from, err := time.Parse(domain.DateFormat, fromStr)
	if err != nil {
		return nil, err
	}

	to := from
	if toStr != "" {
		to, err = time.Parse(domain.DateFormat, toStr)
		if err != nil {
			return nil, err
		}
	}

	var window *findSlots.TimeWindow
	if windowFromStr != "" && windowToStr != "" {
		wFrom, err := types.NewTimeStringFromString(windowFromStr)
		if err != nil {
			return nil, err
		}
		wTo, err := types.NewTimeStringFromString(windowToStr)
		if err != nil {
			return nil, err
		}
		window = &findSlots.TimeWindow{From: wFrom, To: wTo}
	}

	return &findSlots.Request{
		BusinessID:      businessID,
		DurationMinutes: durationMinutes,
		RangeStart:      from,
		RangeEnd:        to,
		Window:          window,
		Limit:           limit,
	}, nil
}
