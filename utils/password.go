package utils

import (
	"math/rand"
)

// GenerateRandomPassword returns a 10 character initial password for a freshly
// provisioned member. It is mailed in plaintext once and bcrypt-hashed at rest.
func GenerateRandomPassword() string {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	password := make([]byte, 10)
	for i := range password {
		password[i] = charset[rand.Intn(len(charset))]
	}
	return string(password)
}
