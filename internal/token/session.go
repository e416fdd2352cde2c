package token

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// sessionIDBytes — 256 бит энтропии.
const sessionIDBytes = 32

var sessionIDLen = base64.RawURLEncoding.EncodedLen(sessionIDBytes)

// NewSessionID генерирует непрозрачный id refresh-сессии (base64url без паддинга).
func NewSessionID() (string, error) {
	const op = "token.NewSessionID"

	b := make([]byte, sessionIDBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return base64.RawURLEncoding.EncodeToString(b), nil
}

// ValidSessionID проверяет форму id без обращения к хранилищу.
// Access-токен (три сегмента через точку) форму не проходит.
func ValidSessionID(s string) bool {
	if len(s) != sessionIDLen {
		return false
	}

	_, err := base64.RawURLEncoding.Strict().DecodeString(s)
	return err == nil
}
