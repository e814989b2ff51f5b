package auth

import (
	"errors"
	"fmt"

	"github.com/oneday/onedayclass/internal/pkg/apperrors"
	"golang.org/x/crypto/bcrypt"
)

// BcryptCost is the work factor used for stored password hashes.
var BcryptCost = 12

// HashPassword returns a salted one-way hash of password. bcrypt reads at most
// 72 bytes, so longer passwords are refused as a form error on "password1".
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", apperrors.NewCustomError(apperrors.ErrValidationFailed, "Passwords can be at most 72 bytes.").WithField("password1")
		}
		return "", fmt.Errorf("bcrypt: %w", err)
	}
	return string(hashed), nil
}

// CheckPassword reports whether password matches hashedPassword. A malformed stored hash never matches.
func CheckPassword(hashedPassword, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)) == nil
}
