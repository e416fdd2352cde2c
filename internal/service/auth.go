package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/pribylovaa/go-auth-api/internal/models"
	"github.com/pribylovaa/go-auth-api/internal/pkg/log"
	"github.com/pribylovaa/go-auth-api/internal/pkg/password"
	"github.com/pribylovaa/go-auth-api/internal/pkg/redact"
	"github.com/pribylovaa/go-auth-api/internal/storage"
	"github.com/pribylovaa/go-auth-api/internal/token"
)

const (
	maxNameLen  = 100
	maxEmailLen = 254
)

// Register регистрирует нового пользователя.
// Email нормализуется в нижний регистр; повтор email в любом регистре даёт ErrEmailTaken.
func (s *Service) Register(ctx context.Context, name, email, pw string) (_ *models.User, err error) {
	const op = "service.auth.Register"

	defer func() { s.observe("register", err) }()
	lg := log.From(ctx)

	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > maxNameLen {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidName)
	}

	normEmail, err := validateEmail(email)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := validatePassword(pw); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	_, err = s.users.UserByEmail(ctx, normEmail)
	if err == nil {
		lg.Info("register_email_taken", slog.String("email", redact.Email(normEmail)))
		return nil, fmt.Errorf("%s: %w", op, ErrEmailTaken)
	}
	if !errors.Is(err, storage.ErrNotFound) {
		lg.Error("register_lookup_failed", slog.String("op", op), slog.String("err", err.Error()))
		return nil, unavailable(op, err)
	}

	hash, err := s.hasher.Hash(pw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	now := s.now().UTC()
	user := &models.User{
		ID:           uuid.New(),
		Name:         name,
		Email:        normEmail,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.SaveUser(ctx, user); err != nil {
		// Гонка двух регистраций: уникальный индекс решает, кто второй.
		if errors.Is(err, storage.ErrAlreadyExists) {
			return nil, fmt.Errorf("%s: %w", op, ErrEmailTaken)
		}

		lg.Error("register_save_failed", slog.String("op", op), slog.String("err", err.Error()))
		return nil, unavailable(op, err)
	}

	lg.Info("user_registered", slog.String("user_id", user.ID.String()))

	return user, nil
}

// Login проверяет email и пароль, выпускает access-токен и открывает refresh-сессию.
// Все причины отказа неотличимы снаружи: ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, email, pw string) (_ *models.TokenPair, err error) {
	const op = "service.auth.Login"

	defer func() { s.observe("login", err) }()
	lg := log.From(ctx)

	normEmail, err := validateEmail(email)
	if err != nil || pw == "" || len(pw) > password.MaxLength {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	user, err := s.users.UserByEmail(ctx, normEmail)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.hasher.Verify(pw, s.dummyHash)
			lg.Info("login_failed", slog.String("email", redact.Email(normEmail)))
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}

		lg.Error("login_lookup_failed", slog.String("op", op), slog.String("err", err.Error()))
		return nil, unavailable(op, err)
	}

	if !s.hasher.Verify(pw, user.PasswordHash) {
		lg.Info("login_failed", slog.String("email", redact.Email(normEmail)))
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	access, exp, err := s.tokens.Issue(user.ID, s.cfg.AccessTokenTTL)
	if err != nil {
		lg.Error("access_token_issue_failed", slog.String("op", op), slog.String("err", err.Error()))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	sid, err := s.newSessionID()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.sessions.SaveSession(ctx, sid, user.ID, s.cfg.SessionTTL); err != nil {
		lg.Error("session_save_failed", slog.String("op", op), slog.String("err", err.Error()))
		return nil, unavailable(op, err)
	}

	lg.Info("user_logged_in", slog.String("user_id", user.ID.String()))

	return &models.TokenPair{
		AccessToken:     access,
		AccessExpiresAt: exp,
		SessionID:       sid,
	}, nil
}

// Refresh выпускает новый access-токен по живой refresh-сессии.
// По умолчанию срок сессии фиксирован с момента входа; при SlidingSessions
// каждое успешное продление сдвигает его на SessionTTL.
func (s *Service) Refresh(ctx context.Context, sessionID string) (_ *models.AccessToken, err error) {
	const op = "service.auth.Refresh"

	defer func() { s.observe("refresh", err) }()
	lg := log.From(ctx)

	if !token.ValidSessionID(sessionID) {
		return nil, fmt.Errorf("%s: %w", op, ErrSessionInvalid)
	}

	uid, err := s.sessions.SessionUserID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			lg.Debug("refresh_session_not_found")
			return nil, fmt.Errorf("%s: %w", op, ErrSessionInvalid)
		}

		lg.Error("session_lookup_failed", slog.String("op", op), slog.String("err", err.Error()))
		return nil, unavailable(op, err)
	}

	if s.cfg.SlidingSessions {
		if err := s.sessions.ExtendSession(ctx, sessionID, s.cfg.SessionTTL); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return nil, fmt.Errorf("%s: %w", op, ErrSessionInvalid)
			}

			lg.Error("session_extend_failed", slog.String("op", op), slog.String("err", err.Error()))
			return nil, unavailable(op, err)
		}
	}

	access, exp, err := s.tokens.Issue(uid, s.cfg.AccessTokenTTL)
	if err != nil {
		lg.Error("access_token_issue_failed", slog.String("op", op), slog.String("err", err.Error()))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &models.AccessToken{Token: access, ExpiresAt: exp}, nil
}

// Logout отзывает ровно одну refresh-сессию. Повторный вызов и неизвестный
// id не считаются ошибкой; прочие сессии пользователя не затрагиваются.
func (s *Service) Logout(ctx context.Context, sessionID string) (err error) {
	const op = "service.auth.Logout"

	defer func() { s.observe("logout", err) }()

	if !token.ValidSessionID(sessionID) {
		return nil
	}

	if err := s.sessions.DeleteSession(ctx, sessionID); err != nil {
		log.From(ctx).Error("session_delete_failed", slog.String("op", op), slog.String("err", err.Error()))
		return unavailable(op, err)
	}

	return nil
}

// CurrentUser возвращает пользователя, чей id извлечён из access-токена.
func (s *Service) CurrentUser(ctx context.Context, userID uuid.UUID) (_ *models.User, err error) {
	const op = "service.auth.CurrentUser"

	defer func() { s.observe("me", err) }()

	user, err := s.users.UserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}

		log.From(ctx).Error("user_lookup_failed", slog.String("op", op), slog.String("err", err.Error()))
		return nil, unavailable(op, err)
	}

	return user, nil
}

// validateEmail проверяет формат email, обрезает пробелы и приводит к нижнему регистру.
// Форма "Name <addr>" не принимается.
func validateEmail(raw string) (string, error) {
	const op = "service.auth.validateEmail"

	email := strings.TrimSpace(raw)
	if email == "" || len(email) > maxEmailLen {
		return "", fmt.Errorf("%s: %w", op, ErrInvalidEmail)
	}

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", fmt.Errorf("%s: %w", op, ErrInvalidEmail)
	}

	return strings.ToLower(email), nil
}

// validatePassword проверяет пароль перед хэшированием.
func validatePassword(pw string) error {
	const op = "service.auth.validatePassword"

	if pw == "" {
		return fmt.Errorf("%s: %w", op, ErrEmptyPassword)
	}

	if len(pw) > password.MaxLength {
		return fmt.Errorf("%s: %w", op, ErrPasswordTooLong)
	}

	return nil
}
