package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Hash returns the hex encoded SHA-256 of input
func Hash(input string) string {
	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:])
}

// Key hashes parts into a fixed-length key. Parts are NUL separated so
// ("a b", "c") and ("a", "b c") never collide.
func Key(parts ...string) string {
	return Hash(strings.Join(parts, "\x00"))[:40]
}
