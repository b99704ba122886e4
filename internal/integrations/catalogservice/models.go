package catalogservice

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Service модель услуги из каталога бизнеса
type Service struct {
	ID              int64    `json:"id"`
	BusinessID      int64    `json:"business_id"`
	Name            string   `json:"name"`
	Aliases         []string `json:"aliases,omitempty"` // разговорные синонимы названия
	DurationMinutes int      `json:"duration_minutes"`
	Price           *float64 `json:"price,omitempty"`
	RequiresDeposit bool     `json:"requires_deposit"`
	IsActive        bool     `json:"is_active"`
}

// ErrorResponse модель ошибки от CatalogService
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
