package store

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"
)

// codeAlphabet is the 32-symbol invite code alphabet. Visually ambiguous
// characters (I, O, 0, 1) are excluded.
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// codeLength is the length of a room invite code.
const codeLength = 6

// NewRoomCode generates a random 6-character invite code. Uniqueness across
// rooms is the caller's job: backends regenerate on collision.
func NewRoomCode() (string, error) {
	b := make([]byte, codeLength)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate room code: %w", err)
	}
	code := make([]byte, codeLength)
	for i, v := range b {
		// 32 divides 256 evenly, so the modulo is unbiased.
		code[i] = codeAlphabet[int(v)%len(codeAlphabet)]
	}
	return string(code), nil
}

// NewSessionToken generates a random URL-safe bearer token with 192 bits of
// entropy.
func NewSessionToken() (string, error) {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}
	return strings.TrimRight(base64.URLEncoding.EncodeToString(b), "="), nil
}
