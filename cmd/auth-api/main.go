package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pribylovaa/go-auth-api/internal/config"
	httpapi "github.com/pribylovaa/go-auth-api/internal/http"
	"github.com/pribylovaa/go-auth-api/internal/http/handlers"
	"github.com/pribylovaa/go-auth-api/internal/metrics"
	"github.com/pribylovaa/go-auth-api/internal/pkg/password"
	"github.com/pribylovaa/go-auth-api/internal/service"
	"github.com/pribylovaa/go-auth-api/internal/storage/postgres"
	"github.com/pribylovaa/go-auth-api/internal/storage/redis"
	"github.com/pribylovaa/go-auth-api/internal/token"
)

// Константы для определения окружения.
const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "path to config file")
	flag.Parse()

	// .env необязателен: в контейнере переменные приходят из окружения.
	_ = godotenv.Load()

	cfg := config.MustLoad(configPath)

	log := setupLogger(cfg.Env)
	slog.SetDefault(log)
	log.Info("starting application", "env", cfg.Env)

	// Корневой контекст по сигналам.
	rootCtx, rootCancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer rootCancel()

	if err := run(rootCtx, cfg, log); err != nil {
		log.Error("service_failed", slog.String("err", err.Error()))
		rootCancel()
		os.Exit(1)
	}

	log.Info("service_stopped")
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	if !cfg.DB.SkipMigrate {
		migrateCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		err := postgres.Migrate(migrateCtx, cfg.DB.DatabaseURL)
		cancel()
		if err != nil {
			return err
		}
		log.Info("migrations_applied")
	}

	// Подключение к БД c таймаутом.
	dbCtx, dbCancel := context.WithTimeout(ctx, 10*time.Second)
	users, err := postgres.New(dbCtx, cfg.DB.DatabaseURL, cfg.DB.MaxConns)
	dbCancel()
	if err != nil {
		return err
	}
	defer users.Close()
	log.Info("postgres_connected")

	redisCtx, redisCancel := context.WithTimeout(ctx, 10*time.Second)
	sessions, err := redis.New(redisCtx, cfg.Redis.RedisURL, cfg.Redis.Prefix)
	redisCancel()
	if err != nil {
		return err
	}
	defer func() { _ = sessions.Close() }()
	log.Info("redis_connected")

	codec, err := token.NewCodec(cfg.Auth)
	if err != nil {
		return err
	}

	m := metrics.New(nil)

	srvc, err := service.New(users, sessions, codec, password.NewBcrypt(cfg.Auth.BcryptCost), cfg.Auth)
	if err != nil {
		return err
	}
	srvc.SetMetrics(m)
	log.Info("service_initialized")

	h := handlers.New(srvc, handlers.CookieOptions{
		Name:     cfg.Cookie.Name,
		Domain:   cfg.Cookie.Domain,
		Path:     cfg.Cookie.Path,
		Secure:   !cfg.Cookie.Insecure,
		SameSite: cfg.Cookie.SameSiteMode(),
		MaxAge:   cfg.Auth.SessionTTL,
	})

	api := httpapi.NewRouter(h, codec, httpapi.Options{
		Logger:  log,
		Timeout: cfg.Timeouts.Service,
		Metrics: m,
	})

	var ready atomic.Bool

	mux := http.NewServeMux()
	mux.HandleFunc("/livez", handlers.Liveness)
	mux.Handle("/healthz", handlers.Readiness(&ready, cfg.Timeouts.Service, map[string]handlers.Pinger{
		"postgres": users,
		"redis":    sessions,
	}))
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", api)

	httpSrv := &http.Server{
		Addr:              cfg.HTTP.Addr(),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serveErrCh := make(chan error, 1)
	go func() {
		log.Info("http_listen_start", slog.String("addr", httpSrv.Addr))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErrCh <- err
		}
		close(serveErrCh)
	}()

	ready.Store(true)

	// Ожидание сигнала завершения или фатальной ошибки сервера.
	select {
	case <-ctx.Done():
		log.Info("shutdown_requested")
	case err := <-serveErrCh:
		if err != nil {
			return err
		}
	}

	ready.Store(false)

	// Graceful stop с таймаутом.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Timeouts.Shutdown)
	defer shutdownCancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http_force_stop", slog.String("err", err.Error()))
		_ = httpSrv.Close()
	}

	return nil
}

// setupLogger настраивает slog по окружению.
func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	default:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	}

	return log
}
