// storage описывает контракты хранилищ пользователей и refresh-сессий
// и общие для всех реализаций ошибки.
package storage

//go:generate mockgen -source=storage.go -destination=../../mocks/storage.go -package=mocks

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/pribylovaa/go-auth-api/internal/models"
)

var (
	// ErrNotFound — запись не найдена (пользователь/сессия).
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists — нарушение уникальности (email/id).
	ErrAlreadyExists = errors.New("already exists")
	// ErrUnavailable — хранилище не ответило (сеть, пул, таймаут).
	// Оборачивается вместе с исходной ошибкой драйвера.
	ErrUnavailable = errors.New("storage unavailable")
	// ErrInvalidTTL — попытка сохранить сессию без положительного TTL.
	ErrInvalidTTL = errors.New("ttl must be positive")
)

// UserStorage выполняет операции над пользователями.
type UserStorage interface {
	// SaveUser создает нового пользователя. Email уникален без учёта регистра.
	SaveUser(ctx context.Context, user *models.User) error
	// UserByEmail находит пользователя по email.
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	// UserByID находит пользователя по ID.
	UserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// SessionStorage — реестр refresh-сессий: id сессии -> id пользователя с TTL.
type SessionStorage interface {
	// SaveSession сохраняет (или перезаписывает) сессию.
	SaveSession(ctx context.Context, sessionID string, userID uuid.UUID, ttl time.Duration) error
	// SessionUserID возвращает владельца живой сессии или ErrNotFound.
	SessionUserID(ctx context.Context, sessionID string) (uuid.UUID, error)
	// ExtendSession продлевает живую сессию на ttl; ErrNotFound, если её уже нет.
	ExtendSession(ctx context.Context, sessionID string, ttl time.Duration) error
	// DeleteSession удаляет сессию; отсутствие сессии ошибкой не считается.
	DeleteSession(ctx context.Context, sessionID string) error
}
