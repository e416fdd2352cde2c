package errors

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/go-auth-api/internal/service"
	"github.com/pribylovaa/go-auth-api/internal/token"
)

func wrap(err error) error { return fmt.Errorf("service.auth.Op: %w", err) }

func TestToHTTP_BaseMapping(t *testing.T) {
	tcs := []struct {
		name       string
		in         error
		wantStatus int
		wantCode   string
	}{
		{"invalid_argument", ErrInvalidArgument, http.StatusBadRequest, "invalid_argument"},
		{"invalid_email", wrap(service.ErrInvalidEmail), http.StatusBadRequest, "invalid_argument"},
		{"invalid_name", wrap(service.ErrInvalidName), http.StatusBadRequest, "invalid_argument"},
		{"empty_password", wrap(service.ErrEmptyPassword), http.StatusBadRequest, "invalid_argument"},
		{"long_password", wrap(service.ErrPasswordTooLong), http.StatusBadRequest, "invalid_argument"},
		{"bad_credentials", wrap(service.ErrInvalidCredentials), http.StatusUnauthorized, "unauthenticated"},
		{"session_invalid", wrap(service.ErrSessionInvalid), http.StatusUnauthorized, "unauthenticated"},
		{"no_token", service.ErrUnauthenticated, http.StatusUnauthorized, "unauthenticated"},
		{"token_malformed", wrap(token.ErrMalformed), http.StatusUnauthorized, "unauthenticated"},
		{"token_signature", wrap(token.ErrInvalidSignature), http.StatusUnauthorized, "unauthenticated"},
		{"token_expired", wrap(token.ErrExpired), http.StatusUnauthorized, "unauthenticated"},
		{"not_found", wrap(service.ErrUserNotFound), http.StatusNotFound, "not_found"},
		{"route_not_found", ErrRouteNotFound, http.StatusNotFound, "not_found"},
		{"method_not_allowed", ErrMethodNotAllowed, http.StatusMethodNotAllowed, "method_not_allowed"},
		{"conflict", wrap(service.ErrEmailTaken), http.StatusConflict, "already_exists"},
		{"unavailable", wrap(service.ErrStoreUnavailable), http.StatusServiceUnavailable, "unavailable"},
		{"canceled", wrap(context.Canceled), StatusClientClosedRequest, "canceled"},
		{"deadline", wrap(context.DeadlineExceeded), http.StatusGatewayTimeout, "deadline_exceeded"},
		{"store_timeout_is_unavailable", fmt.Errorf("op: %w: %w", service.ErrStoreUnavailable, context.DeadlineExceeded), http.StatusServiceUnavailable, "unavailable"},
		{"store_canceled_is_unavailable", fmt.Errorf("op: %w: %w", service.ErrStoreUnavailable, context.Canceled), http.StatusServiceUnavailable, "unavailable"},
		{"internal", stderrors.New("boom"), http.StatusInternalServerError, "internal"},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			gotStatus, resp := ToHTTP(tc.in)
			require.Equal(t, tc.wantStatus, gotStatus)
			require.Equal(t, tc.wantCode, resp.Error.Code)
			require.NotEmpty(t, resp.Error.Message)
		})
	}
}

func TestToHTTP_NilError_Returns500Internal(t *testing.T) {
	gotStatus, resp := ToHTTP(nil)
	require.Equal(t, http.StatusInternalServerError, gotStatus)
	require.Equal(t, "internal", resp.Error.Code)
	require.Equal(t, "internal error", resp.Error.Message)
}

// TestToHTTP_NoLeak — сообщение не содержит текста исходной ошибки.
func TestToHTTP_NoLeak(t *testing.T) {
	err := fmt.Errorf("op: %w: %w", service.ErrStoreUnavailable, stderrors.New("dial tcp 10.0.0.5:5432: connection refused"))

	_, resp := ToHTTP(err)
	require.Equal(t, "service unavailable", resp.Error.Message)
	require.NotContains(t, resp.Error.Message, "10.0.0.5")
}

// TestToHTTP_AuthFailuresIndistinguishable — все причины 401 дают одинаковое тело.
func TestToHTTP_AuthFailuresIndistinguishable(t *testing.T) {
	_, a := ToHTTP(wrap(service.ErrInvalidCredentials))
	_, b := ToHTTP(wrap(token.ErrExpired))
	_, c := ToHTTP(wrap(service.ErrSessionInvalid))

	require.Equal(t, a, b)
	require.Equal(t, a, c)
}

func TestWriteError_WithRequestID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Request-Id", "rid-1")
	rr := httptest.NewRecorder()

	WriteError(rr, req, wrap(service.ErrInvalidCredentials))

	require.Equal(t, http.StatusUnauthorized, rr.Code)
	require.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	require.NotEmpty(t, rr.Header().Get("WWW-Authenticate"))

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Equal(t, "unauthenticated", body.Error.Code)
	require.Equal(t, "rid-1", body.Error.RequestID)
}

func TestWriteError_WithoutRequestID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	rr := httptest.NewRecorder()

	WriteError(rr, req, wrap(service.ErrEmailTaken))

	require.Equal(t, http.StatusConflict, rr.Code)
	require.Empty(t, rr.Header().Get("WWW-Authenticate"))
	require.NotContains(t, rr.Body.String(), "request_id")
}
