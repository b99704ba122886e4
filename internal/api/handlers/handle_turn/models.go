package handle_turn

import (
	handleTurn "github.com/avkor/SMB-SchedulingService/internal/usecase/handle_turn"
)

// TurnRequest HTTP request model
type TurnRequest struct {
	BusinessID int64  `json:"businessId"`
	MessageID  string `json:"messageId,omitempty"` // опционально: без него сгенерируется
	Text       string `json:"text"`
}

// TurnResponse HTTP response model
type TurnResponse struct {
	ReplyText          string `json:"replyText"`
	ConversationStatus string `json:"conversationStatus"` // answered | in_progress | needs_human
	Duplicate          bool   `json:"duplicate,omitempty"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *TurnRequest) ToUseCaseRequest(conversationID string) *handleTurn.Request {
	return &handleTurn.Request{
		ConversationID: conversationID,
		BusinessID:     r.BusinessID,
		MessageID:      r.MessageID,
		Text:           r.Text,
	}
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *handleTurn.Response) *TurnResponse {
	return &TurnResponse{
		ReplyText:          resp.ReplyText,
		ConversationStatus: resp.ConversationStatus,
		Duplicate:          resp.Duplicate,
	}
}
