// Package password hashea y compara la contraseña del dashboard con bcrypt.
package password

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrMismatch = errors.New("password mismatch")
	ErrEmpty    = errors.New("password is empty")
)

func Hash(plain string) (string, error) {
	return HashWithCost(plain, bcrypt.DefaultCost)
}

// HashWithCost existe para tests (bcrypt.MinCost).
func HashWithCost(plain string, cost int) (string, error) {
	if strings.TrimSpace(plain) == "" {
		return "", ErrEmpty
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Check devuelve ErrMismatch si no coincide; otros errores son hashes corruptos.
func Check(hash, plain string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrMismatch
	}
	return err
}
