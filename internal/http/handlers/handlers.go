package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	apierrors "github.com/pribylovaa/go-auth-api/internal/errors"
	"github.com/pribylovaa/go-auth-api/internal/models"
)

// maxBodyBytes ограничивает размер JSON-тела запроса.
const maxBodyBytes = 1 << 20

// HeaderRefreshSession — альтернатива cookie для клиентов без cookie-хранилища.
const HeaderRefreshSession = "X-Refresh-Session"

// AuthService — операции, которые HTTP-слой вызывает у service.Service.
type AuthService interface {
	Register(ctx context.Context, name, email, password string) (*models.User, error)
	Login(ctx context.Context, email, password string) (*models.TokenPair, error)
	Refresh(ctx context.Context, sessionID string) (*models.AccessToken, error)
	Logout(ctx context.Context, sessionID string) error
	CurrentUser(ctx context.Context, userID uuid.UUID) (*models.User, error)
}

// CookieOptions — параметры cookie с id refresh-сессии.
type CookieOptions struct {
	Name     string
	Domain   string
	Path     string
	Secure   bool
	SameSite http.SameSite
	MaxAge   time.Duration
}

// Handlers агрегирует зависимости REST-хендлеров.
type Handlers struct {
	auth     AuthService
	cookie   CookieOptions
	validate *validator.Validate
}

func New(auth AuthService, cookie CookieOptions) *Handlers {
	if cookie.Name == "" {
		cookie.Name = "refresh_session"
	}
	if cookie.Path == "" {
		cookie.Path = "/"
	}

	return &Handlers{
		auth:     auth,
		cookie:   cookie,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// writeJSON — единый ответ JSON с нужным Content-Type.
// Ошибки выводим через apierrors.WriteError.
func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

// decodeStrict — строгий JSON-декодер: запрещаем неизвестные поля,
// лишние данные после объекта и тела больше maxBodyBytes.
// Затем структура проверяется тегами validate.
func (h *Handlers) decodeStrict(w http.ResponseWriter, r *http.Request, value any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(value); err != nil {
		return apierrors.ErrInvalidArgument
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return apierrors.ErrInvalidArgument
	}

	if err := h.validate.Struct(value); err != nil {
		return apierrors.ErrInvalidArgument
	}

	return nil
}

// sessionID берёт id refresh-сессии из заголовка X-Refresh-Session или из cookie.
func (h *Handlers) sessionID(r *http.Request) string {
	if v := r.Header.Get(HeaderRefreshSession); v != "" {
		return v
	}

	if c, err := r.Cookie(h.cookie.Name); err == nil {
		return c.Value
	}

	return ""
}

func (h *Handlers) setSessionCookie(w http.ResponseWriter, sid string) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    sid,
		Domain:   h.cookie.Domain,
		Path:     h.cookie.Path,
		MaxAge:   int(h.cookie.MaxAge.Seconds()),
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: h.cookie.SameSite,
	})
}

func (h *Handlers) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    "",
		Domain:   h.cookie.Domain,
		Path:     h.cookie.Path,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: h.cookie.SameSite,
	})
}
