package claim_slot

import "time"

// Request модель запроса на захват слота
type Request struct {
	BusinessID     int64
	ConversationID *string // ID диалога, породившего запись (опционально)

	ServiceID       *int64
	ServiceName     string
	ServicePrice    *float64
	RequiresDeposit bool

	StartAt time.Time // момент начала в UTC
	EndAt   time.Time // момент конца в UTC

	CustomerName  string
	CustomerPhone string // только цифры
	Notes         *string

	// RescheduleAppointmentID задан, когда вместо создания новой записи
	// переносится существующая
	RescheduleAppointmentID *int64
}

// Response модель ответа с созданной или перенесённой записью
type Response struct {
	ID            int64
	BusinessID    int64
	ServiceID     *int64
	ServiceName   string
	ServicePrice  float64
	StartAt       time.Time
	EndAt         time.Time
	Timezone      string
	Status        string
	CustomerName  string
	CustomerPhone string
	Notes         *string
	CreatedAt     time.Time
}
