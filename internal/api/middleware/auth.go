package middleware

import (
	"context"
	"net/http"
	"strconv"

	"github.com/groovetime/booking-engine/internal/api/handlers"
	"github.com/groovetime/booking-engine/internal/domain"
)

type contextKey string

const (
	userIDKey   contextKey = "userID"
	userRoleKey contextKey = "userRole"
)

// Logger интерфейс для логирования
type Logger interface {
	Warn(format string, v ...interface{})
}

// Auth извлекает идентификацию из заголовков X-User-ID и X-User-Role.
// Аутентификация выполняется на API-шлюзе, сервис доверяет заголовкам
func Auth(logger Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rawID := r.Header.Get("X-User-ID")
			if rawID == "" {
				logger.Warn("%s %s - missing X-User-ID header", r.Method, r.URL.Path)
				handlers.RespondUnauthorized(w, "отсутствует заголовок X-User-ID")
				return
			}

			userID, err := strconv.ParseInt(rawID, 10, 64)
			if err != nil || userID <= 0 {
				logger.Warn("%s %s - invalid X-User-ID header: %s", r.Method, r.URL.Path, rawID)
				handlers.RespondUnauthorized(w, "некорректный заголовок X-User-ID")
				return
			}

			role := domain.ActorRole(r.Header.Get("X-User-Role"))
			if role == "" {
				role = domain.RoleUser
			}
			if !role.Valid() {
				logger.Warn("%s %s - invalid X-User-Role header: %s", r.Method, r.URL.Path, role)
				handlers.RespondUnauthorized(w, "некорректный заголовок X-User-Role")
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			ctx = context.WithValue(ctx, userRoleKey, string(role))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserID возвращает ID пользователя из контекста запроса
func GetUserID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userIDKey).(int64)
	return id, ok
}

// GetUserRole возвращает роль пользователя из контекста запроса
func GetUserRole(ctx context.Context) (string, bool) {
	role, ok := ctx.Value(userRoleKey).(string)
	return role, ok
}
