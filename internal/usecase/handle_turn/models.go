package handle_turn

// Статусы разговора, возвращаемые вызывающей стороне
// needs_human сигнализирует о необходимости передать диалог оператору
const (
	StatusAnswered   = "answered"
	StatusInProgress = "in_progress"
	StatusNeedsHuman = "needs_human"
)

// Request модель одного хода диалога
type Request struct {
	ConversationID string
	BusinessID     int64
	MessageID      string // ID входящего сообщения; пустой - сгенерируется
	Text           string // текст сообщения клиента
}

// Response модель результата хода
type Response struct {
	ReplyText          string
	ConversationStatus string
	// Duplicate выставляется, когда сообщение уже обрабатывалось
	// и повторный ответ не требуется
	Duplicate bool
}

// turnOutcome внутренний результат маршрутизации одного хода
type turnOutcome struct {
	reply     string
	status    string
	dropDraft bool // черновик завершён и должен быть удалён
}
