package env

import (
	"os"
	"strings"
)

// Get returns the value of the given environment variable or a fallback.
func Get(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

// Trimmed returns the whitespace-trimmed value of key, empty when unset.
func Trimmed(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}
