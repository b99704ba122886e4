package domain

// Default policy values
const (
	DefaultTimezone             = "UTC"
	DefaultBufferMinutes        = 10
	DefaultGranularityMinutes   = 30
	DefaultMinNoticeHours       = 2
	DefaultMaxDailyAppointments = 0 // 0 = без ограничения
	DefaultBookingWindowDays    = 14

	// Длительность услуги, если каталог её не сообщил
	DefaultServiceDurationMinutes = 60
)

// Business validation constants
const (
	MinBufferMinutes      = 0
	MaxBufferMinutes      = 120
	MinGranularityMinutes = 5
	MaxGranularityMinutes = 240
	MinNoticeHoursLimit   = 0
	MaxNoticeHoursLimit   = 168 // 1 week
	MinBookingWindowDays  = 1
	MaxBookingWindowDays  = 365
	MaxDailyLimit         = 100
	MaxNotesLength        = 500
)

// Dialogue engine defaults
const (
	DefaultDraftTTLMinutes    = 30 // время жизни незавершённого черновика
	DefaultOfferTTLMinutes    = 10 // время актуальности предложенных слотов
	DefaultDedupWindowSeconds = 90 // окно дедупликации входящих сообщений
	DefaultMaxOfferedSlots    = 3  // сколько слотов предлагать за один ход
)

// Phone number constraints (после нормализации до цифр)
const (
	MinPhoneDigits = 8
	MaxPhoneDigits = 15
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// BlockingStatuses статусы записей, занимающих временной интервал
// Используются при расчёте доступных слотов и проверке пересечений
var BlockingStatuses = []AppointmentStatus{
	StatusPending,
	StatusConfirmed,
	StatusRescheduled,
}

// InactiveStatuses статусы записей, не блокирующих слоты
var InactiveStatuses = []AppointmentStatus{
	StatusCancelled,
	StatusNoShow,
}
