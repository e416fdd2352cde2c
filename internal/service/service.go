// service содержит бизнес-логику аутентификации:
// регистрацию, вход, продление доступа по refresh-сессии, выход
// и получение текущего пользователя.
//
// Основные аспекты:
//   - Service не хранит состояние запроса и безопасен для конкурентного
//     использования при условии потокобезопасных хранилищ.
//   - Ошибки возвращаются как обёртки над переменными ниже и далее
//     маппятся HTTP-слоем (см. комментарии к переменным).
//   - Любой сбой хранилищ превращается в ErrStoreUnavailable; исходная
//     ошибка остаётся в цепочке для логов.
package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pribylovaa/go-auth-api/internal/config"
	"github.com/pribylovaa/go-auth-api/internal/metrics"
	"github.com/pribylovaa/go-auth-api/internal/storage"
	"github.com/pribylovaa/go-auth-api/internal/token"
)

var (
	// ErrInvalidCredentials — пара email/пароль неверна, пользователя нет
	// или запрос на вход пуст. Причина наружу не раскрывается. HTTP 401.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrSessionInvalid — refresh-сессия отсутствует, истекла, отозвана
	// или id имеет неверную форму. HTTP 401.
	ErrSessionInvalid = errors.New("session invalid")

	// ErrUnauthenticated — запрос без действительного access-токена. HTTP 401.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrEmailTaken — e-mail уже занят (без учёта регистра). HTTP 409.
	ErrEmailTaken = errors.New("email already taken")

	// ErrUserNotFound — владелец валидного токена больше не существует. HTTP 404.
	ErrUserNotFound = errors.New("user not found")

	// ErrStoreUnavailable — хранилище пользователей или сессий не ответило. HTTP 503.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrInvalidEmail — e-mail имеет некорректный формат. HTTP 400.
	ErrInvalidEmail = errors.New("invalid email format")

	// ErrInvalidName — имя пустое или длиннее maxNameLen. HTTP 400.
	ErrInvalidName = errors.New("invalid name")

	// ErrEmptyPassword — пароль пустой. HTTP 400.
	ErrEmptyPassword = errors.New("password is empty")

	// ErrPasswordTooLong — пароль длиннее предела bcrypt (72 байта). HTTP 400.
	ErrPasswordTooLong = errors.New("password is too long")
)

// TokenIssuer выпускает access-токены.
type TokenIssuer interface {
	Issue(subject uuid.UUID, ttl time.Duration) (string, time.Time, error)
}

// PasswordHasher считает и проверяет дайджесты паролей.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

// Service описывает бизнес-логику аутентификации.
type Service struct {
	users    storage.UserStorage
	sessions storage.SessionStorage
	tokens   TokenIssuer
	hasher   PasswordHasher
	cfg      config.AuthConfig
	metrics  *metrics.Metrics // может быть nil

	// dummyHash сравнивается с паролем, когда пользователь не найден,
	// чтобы время ответа не выдавало наличие email.
	dummyHash    string
	now          func() time.Time
	newSessionID func() (string, error)
}

// New создаёт новый экземпляр Service.
func New(
	users storage.UserStorage,
	sessions storage.SessionStorage,
	tokens TokenIssuer,
	hasher PasswordHasher,
	cfg config.AuthConfig,
) (*Service, error) {
	const op = "service.New"

	dummy, err := hasher.Hash("dummy-password-for-timing")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Service{
		users:        users,
		sessions:     sessions,
		tokens:       tokens,
		hasher:       hasher,
		cfg:          cfg,
		dummyHash:    dummy,
		now:          time.Now,
		newSessionID: token.NewSessionID,
	}, nil
}

// SetMetrics подключает Prometheus-метрики (опционально).
func (s *Service) SetMetrics(m *metrics.Metrics) {
	s.metrics = m
}

// observe учитывает исход операции в метриках.
func (s *Service) observe(event string, err error) {
	switch {
	case err == nil:
		s.metrics.AuthEvent(event, metrics.ResultOK)
	case errors.Is(err, ErrStoreUnavailable):
		s.metrics.AuthEvent(event, metrics.ResultError)
	case errors.Is(err, ErrInvalidCredentials),
		errors.Is(err, ErrSessionInvalid),
		errors.Is(err, ErrEmailTaken),
		errors.Is(err, ErrUserNotFound),
		errors.Is(err, ErrInvalidEmail),
		errors.Is(err, ErrInvalidName),
		errors.Is(err, ErrEmptyPassword),
		errors.Is(err, ErrPasswordTooLong):
		s.metrics.AuthEvent(event, metrics.ResultRejected)
	default:
		s.metrics.AuthEvent(event, metrics.ResultError)
	}
}

// unavailable оборачивает сбой хранилища: ErrStoreUnavailable + исходная ошибка.
func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
}
