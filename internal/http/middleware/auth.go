package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	apierrors "github.com/pribylovaa/go-auth-api/internal/errors"
	logctx "github.com/pribylovaa/go-auth-api/internal/pkg/log"
	"github.com/pribylovaa/go-auth-api/internal/service"
)

// TokenVerifier проверяет access-токен и возвращает id пользователя.
type TokenVerifier interface {
	Verify(token string) (uuid.UUID, error)
}

type userIDKey struct{}

// Authenticate пропускает запрос дальше только с валидным
// "Authorization: Bearer <token>" и кладёт id пользователя в контекст.
// Любой отказ — одинаковый 401; причина пишется только в debug-лог.
// Хранилище пользователей не опрашивается.
func Authenticate(v TokenVerifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				apierrors.WriteError(w, r, service.ErrUnauthenticated)
				return
			}

			uid, err := v.Verify(raw)
			if err != nil {
				logctx.From(r.Context()).Debug("access_token_rejected", slog.String("err", err.Error()))
				apierrors.WriteError(w, r, service.ErrUnauthenticated)
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey{}, uid)
			ctx = logctx.With(ctx, slog.String("user_id", uid.String()))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserIDFromContext возвращает id пользователя, положенный Authenticate.
func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	uid, ok := ctx.Value(userIDKey{}).(uuid.UUID)
	return uid, ok && uid != uuid.Nil
}

// WithUserID кладёт id пользователя в контекст (для тестов хендлеров).
func WithUserID(ctx context.Context, uid uuid.UUID) context.Context {
	return context.WithValue(ctx, userIDKey{}, uid)
}

// bearerToken извлекает токен из заголовка Authorization.
// Схема сравнивается без учёта регистра.
func bearerToken(header string) (string, bool) {
	const prefix = "bearer "

	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}

	tok := strings.TrimSpace(header[len(prefix):])
	if tok == "" || strings.ContainsAny(tok, " \t") {
		return "", false
	}

	return tok, true
}
