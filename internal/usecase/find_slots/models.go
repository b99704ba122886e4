package find_slots

import (
	"time"

	"github.com/avkor/SMB-SchedulingService/internal/domain"
	"github.com/avkor/SMB-SchedulingService/pkg/types"
)

// TimeWindow опциональный фильтр по локальному времени начала слота
// Слот подходит, если From <= start < To
type TimeWindow struct {
	From types.TimeString
	To   types.TimeString
}

// Contains проверяет, попадает ли локальное время начала слота в окно
func (w *TimeWindow) Contains(start types.TimeString) bool {
	if w == nil {
		return true
	}
	return !start.IsBefore(w.From) && start.IsBefore(w.To)
}

// Request модель запроса на поиск доступных слотов
type Request struct {
	BusinessID      int64
	DurationMinutes int        // длительность услуги
	RangeStart      time.Time  // первая дата поиска (включительно)
	RangeEnd        time.Time  // последняя дата поиска (включительно)
	Window          *TimeWindow // опциональный фильтр по времени дня
	Limit           int        // максимум слотов в ответе, 0 = без ограничения
}

// Response модель ответа со списком доступных слотов
type Response struct {
	BusinessID int64
	Timezone   string        // зона бизнеса, в которой построены подписи слотов
	Slots      []domain.Slot // слоты в хронологическом порядке
}
