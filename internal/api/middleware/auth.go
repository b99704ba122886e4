package middleware

import (
	"net/http"
	"strconv"

	"github.com/avkor/SMB-SchedulingService/internal/api/handlers"
)

// UserIDHeader заголовок с идентификатором пользователя,
// проставляется API-гейтвеем после аутентификации
const UserIDHeader = "X-User-ID"

// Auth проверяет наличие валидного X-User-ID у защищённых маршрутов
func Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get(UserIDHeader)
		if raw == "" {
			handlers.RespondUnauthorized(w, "требуется заголовок X-User-ID")
			return
		}

		userID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || userID <= 0 {
			handlers.RespondUnauthorized(w, "некорректный заголовок X-User-ID")
			return
		}

		next.ServeHTTP(w, r)
	})
}
