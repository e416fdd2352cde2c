// redis реализует реестр refresh-сессий поверх Redis.
//
// Ключ — prefix + sha256(id сессии) в base64url, значение — UUID пользователя.
// Сам id сессии в Redis не попадает. Срок жизни задаётся TTL ключа,
// поэтому просроченные сессии исчезают без фоновой очистки.
package redis

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/pribylovaa/go-auth-api/internal/storage"
)

// DefaultPrefix — префикс ключей, если не задан в конфигурации.
const DefaultPrefix = "auth:session:"

type Storage struct {
	rdb    *redis.Client
	prefix string
}

// New создаёт клиент Redis из URL (например, redis://:pass@host:6379/0)
// и проверяет соединение (fail-fast на старте).
func New(ctx context.Context, redisURL, prefix string) (*Storage, error) {
	const op = "storage.redis.New"

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rdb := redis.NewClient(opt)

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("%s: %w: %w", op, storage.ErrUnavailable, err)
	}

	return NewWithClient(rdb, prefix), nil
}

// NewWithClient оборачивает готовый клиент. Пустой prefix заменяется DefaultPrefix.
func NewWithClient(rdb *redis.Client, prefix string) *Storage {
	if prefix == "" {
		prefix = DefaultPrefix
	}

	return &Storage{rdb: rdb, prefix: prefix}
}

func (s *Storage) key(sessionID string) string {
	sum := sha256.Sum256([]byte(sessionID))
	return s.prefix + base64.RawURLEncoding.EncodeToString(sum[:])
}

// SaveSession сохраняет сессию с TTL, перезаписывая существующую.
func (s *Storage) SaveSession(ctx context.Context, sessionID string, userID uuid.UUID, ttl time.Duration) error {
	const op = "storage.redis.SaveSession"

	// SET без срока хранил бы сессию вечно.
	if ttl <= 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrInvalidTTL)
	}

	if err := s.rdb.Set(ctx, s.key(sessionID), userID.String(), ttl).Err(); err != nil {
		return fmt.Errorf("%s: %w: %w", op, storage.ErrUnavailable, err)
	}

	return nil
}

// SessionUserID возвращает владельца сессии.
// Отсутствующий, истёкший, отозванный или повреждённый ключ даёт storage.ErrNotFound.
func (s *Storage) SessionUserID(ctx context.Context, sessionID string) (uuid.UUID, error) {
	const op = "storage.redis.SessionUserID"

	v, err := s.rdb.Get(ctx, s.key(sessionID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return uuid.Nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return uuid.Nil, fmt.Errorf("%s: %w: %w", op, storage.ErrUnavailable, err)
	}

	uid, err := uuid.Parse(v)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s: corrupt value: %w", op, storage.ErrNotFound)
	}

	return uid, nil
}

// ExtendSession выставляет сессии новый TTL (скользящее продление).
func (s *Storage) ExtendSession(ctx context.Context, sessionID string, ttl time.Duration) error {
	const op = "storage.redis.ExtendSession"

	if ttl <= 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrInvalidTTL)
	}

	ok, err := s.rdb.Expire(ctx, s.key(sessionID), ttl).Result()
	if err != nil {
		return fmt.Errorf("%s: %w: %w", op, storage.ErrUnavailable, err)
	}

	// Ключ исчез между чтением и продлением (logout/истечение).
	if !ok {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return nil
}

// DeleteSession удаляет сессию. Повторное удаление — не ошибка.
func (s *Storage) DeleteSession(ctx context.Context, sessionID string) error {
	const op = "storage.redis.DeleteSession"

	if err := s.rdb.Del(ctx, s.key(sessionID)).Err(); err != nil {
		return fmt.Errorf("%s: %w: %w", op, storage.ErrUnavailable, err)
	}

	return nil
}

// Ping проверяет доступность Redis (readiness).
func (s *Storage) Ping(ctx context.Context) error {
	const op = "storage.redis.Ping"

	if err := s.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%s: %w: %w", op, storage.ErrUnavailable, err)
	}

	return nil
}

// Close закрывает клиент Redis.
func (s *Storage) Close() error {
	return s.rdb.Close()
}

var _ storage.SessionStorage = (*Storage)(nil)
