package identity

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// NewRoomID returns an opaque 128-bit room token, hex encoded (32 chars).
func NewRoomID() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate room id: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
