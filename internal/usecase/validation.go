package usecase

import (
	"net/mail"
	"strings"
)

// normalizeEmail lowercases and trims a visitor-supplied address. Cookie
// values arrive exactly as the landing page set them.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func isValidEmail(email string) bool {
	if email == "" {
		return false
	}
	_, err := mail.ParseAddress(email)
	return err == nil
}
