package handlers

import (
	"net/http"

	apierrors "github.com/pribylovaa/go-auth-api/internal/errors"
	"github.com/pribylovaa/go-auth-api/internal/http/middleware"
	"github.com/pribylovaa/go-auth-api/internal/models"
	"github.com/pribylovaa/go-auth-api/internal/service"
)

// Me возвращает профиль владельца access-токена.
// Маршрут закрыт middleware.Authenticate; без субъекта в контексте отвечаем 401.
func (h *Handlers) Me(w http.ResponseWriter, r *http.Request) {
	uid, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		apierrors.WriteError(w, r, service.ErrUnauthenticated)
		return
	}

	user, err := h.auth.CurrentUser(r.Context(), uid)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, models.UserEnvelope{
		Status: models.StatusSuccess,
		User:   models.UserFromModel(user),
	})
}
