// Package roomcode generates the short codes players type to join a room.
package roomcode

import (
	"crypto/rand"
	"fmt"
	"strings"
)

// Crockford's base32 alphabet, uppercased for readability on phone screens.
// Excludes I, L, O and U to avoid transcription mistakes.
const alphabet = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

// Length is the number of characters in a room code.
const Length = 6

// RandSource allows injecting deterministic randomness in tests.
type RandSource interface {
	IntN(n int) int
}

// Generate creates a new room code using crypto/rand.
func Generate() string {
	var buf [Length]byte
	if _, err := rand.Read(buf[:]); err != nil {
		panic("roomcode: failed to read random bytes: " + err.Error())
	}
	for i := range buf {
		buf[i] = alphabet[int(buf[i])%len(alphabet)]
	}
	return string(buf[:])
}

// GenerateWith creates a new room code from the provided RandSource.
func GenerateWith(src RandSource) string {
	var buf [Length]byte
	for i := range buf {
		buf[i] = alphabet[src.IntN(len(alphabet))]
	}
	return string(buf[:])
}

// Normalize uppercases a code and maps the easily-confused letters onto
// their canonical digits, so "0lI2" and "0112" join the same room.
func Normalize(code string) string {
	up := strings.ToUpper(strings.TrimSpace(code))
	var b strings.Builder
	b.Grow(len(up))
	for _, r := range up {
		switch r {
		case 'I', 'L':
			b.WriteRune('1')
		case 'O':
			b.WriteRune('0')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Validate checks that a code is well formed after normalization.
func Validate(code string) error {
	if len(code) != Length {
		return fmt.Errorf("room code must be exactly %d characters, got %d", Length, len(code))
	}
	for i, r := range code {
		if !strings.ContainsRune(alphabet, r) {
			return fmt.Errorf("invalid character %c at position %d", r, i)
		}
	}
	return nil
}
