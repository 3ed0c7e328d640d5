package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"
)

// RandomString generates a random string of specified length
func RandomString(length int) string {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	b := make([]byte, length)
	for i := range b {
		n, _ := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		b[i] = charset[n.Int64()]
	}
	return string(b)
}

// GenerateMessageID generates a unique queue message ID for a member
func GenerateMessageID(username string) string {
	return fmt.Sprintf("%s_%d_%s", SanitizeString(username), time.Now().UnixNano(), RandomString(8))
}

// SanitizeString lowercases, trims and collapses inner whitespace
func SanitizeString(input string) string {
	sanitized := strings.TrimSpace(strings.ToLower(input))
	return strings.Join(strings.Fields(sanitized), "_")
}

// MaskSensitiveData masks sensitive information for logging
func MaskSensitiveData(data string) string {
	if len(data) <= 4 {
		return strings.Repeat("*", len(data))
	}

	return data[:2] + strings.Repeat("*", len(data)-4) + data[len(data)-2:]
}

// ShortenWallet abbreviates a wallet address for display, e.g. 0xa1b2…9f3c
func ShortenWallet(address string) string {
	if len(address) <= 12 {
		return address
	}
	return address[:6] + "…" + address[len(address)-4:]
}
