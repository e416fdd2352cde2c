// password инкапсулирует хэширование паролей bcrypt.
package password

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// MaxLength — предел bcrypt: байты сверх 72 игнорируются алгоритмом.
const MaxLength = 72

// ErrTooLong — пароль длиннее MaxLength байт.
var ErrTooLong = errors.New("password is too long")

// Bcrypt — Hasher поверх golang.org/x/crypto/bcrypt.
type Bcrypt struct {
	cost int
}

// NewBcrypt создаёт хэшер с заданной стоимостью.
// Значения вне [bcrypt.MinCost, bcrypt.MaxCost] заменяются на bcrypt.DefaultCost.
func NewBcrypt(cost int) *Bcrypt {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}

	return &Bcrypt{cost: cost}
}

// Hash возвращает дайджест пароля (соль внутри дайджеста).
func (b *Bcrypt) Hash(password string) (string, error) {
	const op = "password.Hash"

	if len(password) > MaxLength {
		return "", fmt.Errorf("%s: %w", op, ErrTooLong)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), b.cost)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return string(hash), nil
}

// Verify сравнивает пароль с дайджестом за время, не зависящее от совпадения.
// Битый дайджест считается несовпадением.
func (b *Bcrypt) Verify(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
