package models

import (
	"time"

	"github.com/google/uuid"
)

// User - модель пользователя в системе.
// Email хранится в нормализованном (нижнем) регистре.
type User struct {
	ID           uuid.UUID
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
