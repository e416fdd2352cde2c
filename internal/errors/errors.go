// errors стандартизирует ответы об ошибках HTTP-слоя.
// На вход он принимает доменную ошибку (service/token), а на выход даёт:
//   - корректный HTTP-статус;
//   - краткое безопасное message без утечки деталей.
//
// Все причины отказа в аутентификации (неверный пароль, неизвестный email,
// битый/просроченный токен, отозванная сессия) сводятся к одному ответу 401.
package errors

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/pribylovaa/go-auth-api/internal/service"
	"github.com/pribylovaa/go-auth-api/internal/token"
)

// Нестандартный код часто используемый для "клиент закрыл соединение".
const StatusClientClosedRequest = 499

var (
	// ErrInvalidArgument — тело запроса не разобрано или не прошло валидацию.
	ErrInvalidArgument = stderrors.New("invalid argument")
	// ErrRouteNotFound — маршрут не зарегистрирован.
	ErrRouteNotFound = stderrors.New("route not found")
	// ErrMethodNotAllowed — маршрут есть, метод не поддерживается.
	ErrMethodNotAllowed = stderrors.New("method not allowed")
)

// APIError — единый формат для фронта.
// Code — короткий стабильный код для машиночитаемой обработки на FE.
// Message — безопасное человекочитаемое описание.
// RequestID — прокидывается из X-Request-Id, если есть (для трассировки).
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// ErrorResponse — корневой объект в ответе.
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// ToHTTP конвертирует ошибку в HTTP-статус и унифицированный ответ.
//
// Поведение:
//   - err == nil - программная ошибка вызова: 500/internal,
//     чтобы не послать "200 OK" с телом ошибки и не маскировать баг;
//   - сбой хранилища всегда 503, даже если причина в дедлайне контекста;
//   - прочие отмена/дедлайн контекста дают 499/504;
//   - доменные ошибки маппятся через classify;
//   - прочее - 500/internal без утечки деталей.
func ToHTTP(err error) (int, ErrorResponse) {
	status, code, msg := classify(err)
	return status, ErrorResponse{
		Error: APIError{
			Code:    code,
			Message: msg,
		},
	}
}

// WriteError — хелпер для HTTP-хендлеров.
// Пишет корректный статус/тело, добавляет request_id из заголовка, если он есть.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status, resp := ToHTTP(err)

	if rid := r.Header.Get("X-Request-Id"); rid != "" {
		resp.Error.RequestID = rid
	}

	w.Header().Set("Content-Type", "application/json")
	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", `Bearer realm="auth-api"`)
	}
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

// classify — таблица маппинга:
//   - ErrStoreUnavailable -> 503 (проверяется первым)
//   - Canceled -> 499, DeadlineExceeded -> 504
//   - ErrInvalidArgument/ErrInvalidEmail/ErrInvalidName/ErrEmptyPassword/ErrPasswordTooLong -> 400
//   - ErrInvalidCredentials/ErrSessionInvalid/ErrUnauthenticated/token.Err* -> 401
//   - ErrUserNotFound/ErrRouteNotFound -> 404
//   - ErrMethodNotAllowed -> 405
//   - ErrEmailTaken -> 409
//   - прочее -> 500
func classify(err error) (int, string, string) {
	switch {
	case err == nil:
		return http.StatusInternalServerError, "internal", "internal error"
	case stderrors.Is(err, service.ErrStoreUnavailable):
		return http.StatusServiceUnavailable, "unavailable", "service unavailable"
	case stderrors.Is(err, context.Canceled):
		return StatusClientClosedRequest, "canceled", "canceled"
	case stderrors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "deadline_exceeded", "deadline exceeded"
	case stderrors.Is(err, ErrInvalidArgument),
		stderrors.Is(err, service.ErrInvalidEmail),
		stderrors.Is(err, service.ErrInvalidName),
		stderrors.Is(err, service.ErrEmptyPassword),
		stderrors.Is(err, service.ErrPasswordTooLong):
		return http.StatusBadRequest, "invalid_argument", "invalid argument"
	case stderrors.Is(err, service.ErrInvalidCredentials),
		stderrors.Is(err, service.ErrSessionInvalid),
		stderrors.Is(err, service.ErrUnauthenticated),
		stderrors.Is(err, token.ErrMalformed),
		stderrors.Is(err, token.ErrInvalidSignature),
		stderrors.Is(err, token.ErrExpired):
		return http.StatusUnauthorized, "unauthenticated", "unauthenticated"
	case stderrors.Is(err, service.ErrUserNotFound), stderrors.Is(err, ErrRouteNotFound):
		return http.StatusNotFound, "not_found", "not found"
	case stderrors.Is(err, ErrMethodNotAllowed):
		return http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed"
	case stderrors.Is(err, service.ErrEmailTaken):
		return http.StatusConflict, "already_exists", "already exists"
	default:
		return http.StatusInternalServerError, "internal", "internal error"
	}
}
