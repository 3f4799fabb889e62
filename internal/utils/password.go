package utils

import (
	"regexp"

	"golang.org/x/crypto/bcrypt"

	"github.com/jaswanth12321/carequo-insure-tech/internal/apperr"
)

var (
	lowerRe   = regexp.MustCompile(`[a-z]`)
	upperRe   = regexp.MustCompile(`[A-Z]`)
	digitRe   = regexp.MustCompile(`\d`)
	specialRe = regexp.MustCompile(`[!@#\$%\^&\*\(\)_\+\-=\[\]{};:'"\\|,.<>\/\?` + "`" + `~]`)
)

func HashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	return string(b), err
}

func CheckPassword(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}

// ValidatePasswordStrong enforces:
// - min 8 chars (bcrypt ignores anything past 72 bytes)
// - at least 1 lowercase
// - at least 1 uppercase
// - at least 1 digit
// - at least 1 special character
func ValidatePasswordStrong(pw string) error {
	if len(pw) < 8 {
		return apperr.Validation("password must be at least 8 characters")
	}
	if len(pw) > 72 {
		return apperr.Validation("password must be at most 72 bytes")
	}
	if !lowerRe.MatchString(pw) {
		return apperr.Validation("password must contain a lowercase letter (a-z)")
	}
	if !upperRe.MatchString(pw) {
		return apperr.Validation("password must contain an uppercase letter (A-Z)")
	}
	if !digitRe.MatchString(pw) {
		return apperr.Validation("password must contain a digit (0-9)")
	}
	if !specialRe.MatchString(pw) {
		return apperr.Validation("password must contain a special character (e.g. !@#)")
	}
	return nil
}
