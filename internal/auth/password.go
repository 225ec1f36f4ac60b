package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// bcrypt caps input at 72 bytes; registration enforces a shorter max anyway.
const maxPasswordBytes = 72

var ErrPasswordLength = errors.New("password is empty or too long")

func HashPassword(password string) (string, error) {
	if password == "" || len(password) > maxPasswordBytes {
		return "", ErrPasswordLength
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// ComparePassword reports nil when password matches the stored bcrypt hash.
// An empty hash, e.g. a user row written before passwords were required,
// never matches.
func ComparePassword(hash, password string) error {
	if hash == "" || password == "" {
		return bcrypt.ErrMismatchedHashAndPassword
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
