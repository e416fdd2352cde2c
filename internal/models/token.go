package models

import "time"

// AccessToken — короткоживущий JWT и момент его истечения (UTC).
type AccessToken struct {
	Token     string
	ExpiresAt time.Time
}

// TokenPair — результат успешного входа.
//
// Описание:
//   - AccessToken — JWT для авторизации запросов;
//   - AccessExpiresAt — время истечения access-токена (UTC);
//   - SessionID — непрозрачный id refresh-сессии; сервер хранит только его хэш.
type TokenPair struct {
	AccessToken     string
	AccessExpiresAt time.Time
	SessionID       string
}
