// token выпускает и проверяет access-токены (JWT HS256) и генерирует
// непрозрачные идентификаторы refresh-сессий.
//
// Codec не выполняет I/O и неизменяем после создания, поэтому безопасен
// для конкурентного использования.
package token

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/pribylovaa/go-auth-api/internal/config"
)

var (
	// ErrMalformed — строка не является access-токеном этого сервиса:
	// битая структура, чужие issuer/audience/назначение, subject не UUID.
	// Транспорт: HTTP 401.
	ErrMalformed = errors.New("token malformed")

	// ErrInvalidSignature — подпись не сходится или алгоритм не HS256.
	// Транспорт: HTTP 401.
	ErrInvalidSignature = errors.New("token signature invalid")

	// ErrExpired — срок действия истёк. Транспорт: HTTP 401.
	ErrExpired = errors.New("token expired")

	// ErrNegativeTTL — попытка выпустить токен с отрицательным сроком жизни.
	ErrNegativeTTL = errors.New("negative token ttl")

	// ErrEmptySecret — не задан ключ подписи.
	ErrEmptySecret = errors.New("empty signing secret")
)

// purposeAccess отличает access-токен от любых других JWT с тем же ключом.
const purposeAccess = "access"

type accessClaims struct {
	Purpose string `json:"typ"`
	jwt.RegisteredClaims
}

// Codec выпускает и проверяет access-токены.
type Codec struct {
	secret   []byte
	issuer   string
	audience []string
	now      func() time.Time
	parser   *jwt.Parser
}

// Option настраивает Codec.
type Option func(*Codec)

// WithClock подменяет источник времени (для тестов).
func WithClock(now func() time.Time) Option {
	return func(c *Codec) {
		if now != nil {
			c.now = now
		}
	}
}

// NewCodec создаёт Codec из настроек auth-секции конфигурации.
func NewCodec(cfg config.AuthConfig, opts ...Option) (*Codec, error) {
	const op = "token.NewCodec"

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrEmptySecret)
	}

	c := &Codec{
		secret:   []byte(cfg.JWTSecret),
		issuer:   cfg.Issuer,
		audience: append([]string(nil), cfg.Audience...),
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(cfg.Leeway),
		jwt.WithTimeFunc(c.now),
		jwt.WithStrictDecoding(),
	}
	if c.issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(c.issuer))
	}
	if len(c.audience) > 0 {
		parserOpts = append(parserOpts, jwt.WithAudience(c.audience...))
	}
	c.parser = jwt.NewParser(parserOpts...)

	return c, nil
}

// Issue выпускает access-токен для subject со сроком жизни ttl.
// Возвращает токен и момент истечения (точность — секунда).
func (c *Codec) Issue(subject uuid.UUID, ttl time.Duration) (string, time.Time, error) {
	const op = "token.Issue"

	if ttl < 0 {
		return "", time.Time{}, fmt.Errorf("%s: %w", op, ErrNegativeTTL)
	}

	now := c.now().UTC()
	exp := jwt.NewNumericDate(now.Add(ttl))

	claims := accessClaims{
		Purpose: purposeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   subject.String(),
			Issuer:    c.issuer,
			Audience:  jwt.ClaimStrings(c.audience),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: exp,
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%s: %w", op, err)
	}

	return signed, exp.Time, nil
}

// Verify проверяет подпись, срок и назначение токена и возвращает subject.
// Ошибка всегда оборачивает ровно одну из ErrMalformed, ErrInvalidSignature, ErrExpired.
func (c *Codec) Verify(tokenStr string) (uuid.UUID, error) {
	const op = "token.Verify"

	claims := &accessClaims{}
	tok, err := c.parser.ParseWithClaims(tokenStr, claims, c.key)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenMalformed) && badSignatureEncoding(tokenStr) {
			return uuid.Nil, fmt.Errorf("%s: %w", op, ErrInvalidSignature)
		}
		return uuid.Nil, fmt.Errorf("%s: %w", op, classify(err))
	}

	if !tok.Valid || claims.Purpose != purposeAccess {
		return uuid.Nil, fmt.Errorf("%s: %w", op, ErrMalformed)
	}

	uid, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s: %w", op, ErrMalformed)
	}

	return uid, nil
}

// badSignatureEncoding сообщает, что заголовок и claims декодируются строго,
// а подпись нет. Так выглядит подпись с изменёнными битами дополнения
// последнего символа: jwt отвечает на неё ErrTokenMalformed.
func badSignatureEncoding(tokenStr string) bool {
	parts := strings.Split(tokenStr, ".")
	if len(parts) != 3 {
		return false
	}

	enc := base64.RawURLEncoding.Strict()
	for _, p := range parts[:2] {
		if _, err := enc.DecodeString(p); err != nil {
			return false
		}
	}

	_, err := enc.DecodeString(parts[2])
	return err != nil
}

func (c *Codec) key(*jwt.Token) (any, error) {
	return c.secret, nil
}

// classify сводит ошибки jwt к трём доменным.
// Подпись в jwt/v5 проверяется до claims, поэтому подделанный
// просроченный токен даёт ErrInvalidSignature.
func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrMalformed
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return ErrInvalidSignature
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	default:
		return ErrMalformed
	}
}
