package cvar

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/binary"
	"fmt"
)

const secretBytes = 12

// NewSecret returns a fresh auth-secret value: 12 random bytes in
// standard base64 with no line breaks. Generated on initialize,
// revoke-sessions, and reset-password.
func NewSecret() (string, error) {
	buf := make([]byte, secretBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate secret: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf), nil
}

// NewModSeed returns the initial lastmod counter value, uniform in
// [1, 4096]. 4096 divides the 32-bit draw space, so the modulo is
// bias-free.
func NewModSeed() (uint32, error) {
	var buf [4]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0, fmt.Errorf("generate counter seed: %w", err)
	}
	return binary.BigEndian.Uint32(buf[:])%4096 + 1, nil
}
