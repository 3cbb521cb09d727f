package usecase

import (
	"net/mail"
	"strings"

	"telegram-giveaway-bot/internal/domain"
)

// NormalizeEmail validates a raw user message as a bare email address and
// normalizes it to lower case. Display names, angle brackets, and dotless
// domains are rejected; no deliverability probing is done.
func NormalizeEmail(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", domain.ErrInvalidEmail
	}
	addr, err := mail.ParseAddress(raw)
	if err != nil || addr.Address != raw {
		return "", domain.ErrInvalidEmail
	}
	at := strings.LastIndex(addr.Address, "@")
	if at < 1 || !strings.Contains(addr.Address[at+1:], ".") {
		return "", domain.ErrInvalidEmail
	}
	return strings.ToLower(addr.Address), nil
}
