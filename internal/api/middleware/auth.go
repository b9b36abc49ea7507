package middleware

import (
	"context"
	"net/http"
	"strconv"

	"github.com/m04kA/SMC-ParkingService/internal/api/handlers"
)

// HeaderUserID заголовок аутентификации пользователя
const HeaderUserID = "X-User-ID"

type userIDKey struct{}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Auth извлекает ID пользователя из заголовка X-User-ID и кладет его
// в контекст. Запросы без валидного заголовка отклоняются с 401.
func Auth(logger Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.Header.Get(HeaderUserID)
			if raw == "" {
				logger.Warn("Auth: missing %s header for %s %s", HeaderUserID, r.Method, r.URL.Path)
				handlers.RespondUnauthorized(w, "отсутствует заголовок X-User-ID")
				return
			}

			userID, err := strconv.ParseInt(raw, 10, 64)
			if err != nil || userID <= 0 {
				logger.Warn("Auth: invalid %s header value %q for %s %s", HeaderUserID, raw, r.Method, r.URL.Path)
				handlers.RespondUnauthorized(w, "некорректный заголовок X-User-ID")
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey{}, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserID возвращает ID пользователя из контекста запроса
func GetUserID(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(userIDKey{}).(int64)
	return userID, ok
}
