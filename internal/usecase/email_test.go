package usecase

import (
	"errors"
	"testing"

	"telegram-giveaway-bot/internal/domain"
)

func TestNormalizeEmail(t *testing.T) {
	t.Parallel()

	valid := []struct{ in, want string }{
		{"user@example.com", "user@example.com"},
		{"  user@example.com  ", "user@example.com"},
		{"User.Name+tag@Example.COM", "user.name+tag@example.com"},
	}
	for _, tc := range valid {
		got, err := NormalizeEmail(tc.in)
		if err != nil {
			t.Errorf("NormalizeEmail(%q) unexpected error: %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("NormalizeEmail(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}

	invalid := []string{
		"",
		"   ",
		"not-an-email",
		"missing@domain",
		"two words@example.com",
		"Display Name <user@example.com>",
		"@example.com",
		"user@",
	}
	for _, in := range invalid {
		if _, err := NormalizeEmail(in); !errors.Is(err, domain.ErrInvalidEmail) {
			t.Errorf("NormalizeEmail(%q): expected ErrInvalidEmail, got %v", in, err)
		}
	}
}
