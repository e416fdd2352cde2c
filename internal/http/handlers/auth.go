package handlers

import (
	"net/http"

	apierrors "github.com/pribylovaa/go-auth-api/internal/errors"
	"github.com/pribylovaa/go-auth-api/internal/models"
)

func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var in models.RegisterRequest
	if err := h.decodeStrict(w, r, &in); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	user, err := h.auth.Register(r.Context(), in.Name, in.Email, in.Password)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, models.UserEnvelope{
		Status: models.StatusSuccess,
		User:   models.UserFromModel(user),
	})
}

// Login выдаёт access-токен в теле и id сессии в теле и HttpOnly cookie.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var in models.LoginRequest
	if err := h.decodeStrict(w, r, &in); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	pair, err := h.auth.Login(r.Context(), in.Email, in.Password)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	h.setSessionCookie(w, pair.SessionID)
	writeJSON(w, http.StatusOK, models.LoginResponse{
		Status:          models.StatusSuccess,
		AccessToken:     pair.AccessToken,
		AccessExpiresAt: pair.AccessExpiresAt.Unix(),
		SessionID:       pair.SessionID,
	})
}

// Refresh выпускает новый access-токен по живой сессии.
// При отказе cookie сессии сбрасывается, чтобы клиент не повторял попытку.
func (h *Handlers) Refresh(w http.ResponseWriter, r *http.Request) {
	at, err := h.auth.Refresh(r.Context(), h.sessionID(r))
	if err != nil {
		h.clearSessionCookie(w)
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, models.RefreshResponse{
		Status:          models.StatusSuccess,
		AccessToken:     at.Token,
		AccessExpiresAt: at.ExpiresAt.Unix(),
	})
}

// Logout отзывает предъявленную сессию. Повторный вызов тоже 200.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.auth.Logout(r.Context(), h.sessionID(r)); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	h.clearSessionCookie(w)
	writeJSON(w, http.StatusOK, models.StatusResponse{Status: models.StatusSuccess})
}
