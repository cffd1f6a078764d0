package utils

import (
	"strings"
	"testing"
)

func TestGenerateRandomPassword(t *testing.T) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	for i := 0; i < 20; i++ {
		password := GenerateRandomPassword()
		if len(password) != 10 {
			t.Fatalf("expected 10 characters, got %d", len(password))
		}
		for _, c := range password {
			if !strings.ContainsRune(charset, c) {
				t.Fatalf("unexpected character %q in password", c)
			}
		}
	}
}
