package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/pribylovaa/go-auth-api/internal/models"
	logctx "github.com/pribylovaa/go-auth-api/internal/pkg/log"
)

// Pinger — зависимость, доступность которой проверяет readiness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthChecker — публичная проверка того, что API отвечает.
func (h *Handlers) HealthChecker(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, models.StatusResponse{
		Status:  models.StatusSuccess,
		Message: "The API is working fine!",
	})
}

// Liveness — процесс жив.
func Liveness(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// Readiness отвечает 200, пока ready выставлен и все зависимости пингуются
// за timeout; иначе 503.
func Readiness(ready *atomic.Bool, timeout time.Duration, deps map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !ready.Load() {
			http.Error(w, "not ready", http.StatusServiceUnavailable)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		for name, dep := range deps {
			if err := dep.Ping(ctx); err != nil {
				logctx.From(r.Context()).Warn("readiness_failed",
					slog.String("dependency", name),
					slog.String("err", err.Error()),
				)
				http.Error(w, "not ready", http.StatusServiceUnavailable)
				return
			}
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}
}
