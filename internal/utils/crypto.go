package utils

import (
	"crypto/rand"
	"encoding/hex"
)

// GenerateBetID returns a fresh random 32-byte bet id, hex encoded.
// Clients may supply their own; this is the server-side convenience.
func GenerateBetID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
