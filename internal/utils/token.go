package utils

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const tokenBytes = 16

// GenerateToken returns a new opaque bearer token: 16 random bytes, hex encoded.
func GenerateToken() (string, error) {
	var b [tokenBytes]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return hex.EncodeToString(b[:]), nil
}

// HashPassword hashes a plaintext password with bcrypt.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", errors.New("password is empty")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

// CheckPasswordHash reports whether password matches the bcrypt hash.
func CheckPasswordHash(password, hash string) bool {
	if password == "" || hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// ParseAuthorization extracts the token from an Authorization header value of
// the form "<scheme> <token>". The scheme itself is not checked. A "token="
// prefix on the value is stripped, so "Token token=abc" yields "abc".
func ParseAuthorization(header string) string {
	parts := strings.Fields(header)
	if len(parts) != 2 {
		return ""
	}
	token := parts[1]
	if strings.HasPrefix(strings.ToLower(token), "token=") {
		token = token[len("token="):]
	}
	return strings.Trim(token, `"`)
}
