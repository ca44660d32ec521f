package zotero

import (
	"crypto/rand"
	"fmt"
)

// keyAlphabet matches the character set the owning application uses for its
// own item keys.
const keyAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// keyLength is fixed by the store's key format.
const keyLength = 8

// generateItemKey returns a new 8-character alphanumeric item key. Keys are
// drawn from crypto/rand for unpredictability but are not checked against
// existing rows; a collision trips the items.key uniqueness constraint on
// insert and the caller may retry with a fresh key.
func generateItemKey() (string, error) {
	buf := make([]byte, keyLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate item key: %w", err)
	}
	for i, b := range buf {
		buf[i] = keyAlphabet[int(b)%len(keyAlphabet)]
	}
	return string(buf), nil
}
